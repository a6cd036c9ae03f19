//go:build integration

package postgres

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/jhoicas/Operaciones-api/internal/application/inventory"
	"github.com/jhoicas/Operaciones-api/internal/domain"
	"github.com/jhoicas/Operaciones-api/internal/domain/entity"
	"github.com/jhoicas/Operaciones-api/internal/domain/repository"
	"github.com/jhoicas/Operaciones-api/pkg/config"
	"github.com/jhoicas/Operaciones-api/pkg/logger"
)

func setupPool(t *testing.T) *pgxpool.Pool {
	t.Helper()
	ctx := context.Background()

	container, err := tcpostgres.Run(ctx,
		"postgres:16-alpine",
		tcpostgres.WithDatabase("operaciones"),
		tcpostgres.WithUsername("test"),
		tcpostgres.WithPassword("test"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second),
		),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = container.Terminate(ctx) })

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)
	require.NoError(t, Migrate(dsn, logger.Nop()))
	// idempotente
	require.NoError(t, Migrate(dsn, logger.Nop()))

	pool, err := NewPool(ctx, config.DBConfig{DatabaseURL: dsn})
	require.NoError(t, err)
	t.Cleanup(pool.Close)

	_, err = pool.Exec(ctx, `
		INSERT INTO warehouses (id, name) VALUES ('WH', 'Patio');
		INSERT INTO locations (id, warehouse_id, name) VALUES ('A', 'WH', 'Tanque A'), ('B', 'WH', 'Tanque B');
		INSERT INTO items (id, sku, name, unit) VALUES ('X', 'ACPM', 'Diésel', 'gal');`)
	require.NoError(t, err)
	return pool
}

func newTx(id string, typ entity.TransactionType, qty int64, src, dst string) *entity.StockTransaction {
	now := time.Now().UTC().Truncate(time.Microsecond)
	return &entity.StockTransaction{
		ID: id, Type: typ, ItemID: "X", Quantity: decimal.NewFromInt(qty), Unit: "gal",
		SourceLocationID: src, DestinationLocationID: dst,
		Status: entity.StatusRequested, RequestedBy: "op", Version: 1, CreatedAt: now, UpdatedAt: now,
	}
}

func TestIntegration_StockTransactionRepo_CRUD(t *testing.T) {
	pool := setupPool(t)
	ctx := context.Background()
	repo := NewStockTransactionRepository(pool)

	tx := newTx("11111111-1111-1111-1111-111111111111", entity.TransactionTypeReceipt, 100, "", "A")
	require.NoError(t, repo.Create(ctx, tx))

	got, err := repo.GetByID(ctx, tx.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, entity.StatusRequested, got.Status)
	assert.True(t, got.Quantity.Equal(decimal.NewFromInt(100)))
	assert.Empty(t, got.SourceLocationID)

	missing, err := repo.GetByID(ctx, "no-existe")
	require.NoError(t, err)
	assert.Nil(t, missing)

	got.Status = entity.StatusApproved
	got.ApprovedBy = "ana"
	require.NoError(t, repo.Save(ctx, got, 1))
	assert.Equal(t, int64(2), got.Version)

	stale := got.Clone()
	stale.Notes = "tarde"
	assert.ErrorIs(t, repo.Save(ctx, stale, 1), domain.ErrConcurrencyConflict)

	// approved_by no se sobrescribe una vez sellado
	got.ApprovedBy = "otro"
	got.Status = entity.StatusPosted
	got.PostedBy = "luis"
	require.NoError(t, repo.Save(ctx, got, 2))
	reloaded, err := repo.GetByID(ctx, tx.ID)
	require.NoError(t, err)
	assert.Equal(t, "ana", reloaded.ApprovedBy)
	assert.Equal(t, "luis", reloaded.PostedBy)

	posted, err := repo.ListPosted(ctx, "X", "A")
	require.NoError(t, err)
	assert.Len(t, posted, 1)

	list, err := repo.List(ctx, repository.TransactionFilter{Status: entity.StatusPosted, LocationID: "A"}, 10, 0)
	require.NoError(t, err)
	assert.Len(t, list, 1)
}

func TestIntegration_StockTransactionRepo_UbicacionInexistente(t *testing.T) {
	pool := setupPool(t)
	repo := NewStockTransactionRepository(pool)

	err := repo.Create(context.Background(), newTx("22222222-2222-2222-2222-222222222222", entity.TransactionTypeReceipt, 1, "", "Q"))
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestIntegration_LifecycleSobrePostgres(t *testing.T) {
	pool := setupPool(t)
	ctx := context.Background()

	runner := NewTxRunner(pool)
	repo := NewStockTransactionRepository(pool)
	projector := inventory.NewStockLevelProjector(runner, nil, nil, logger.Nop())
	uc := inventory.NewLifecycleUseCase(runner, repo, NewItemRepository(pool), NewLocationRepository(pool), projector, nil, logger.Nop())

	in, err := uc.CreateTransaction(ctx, inventory.CreateInput{Type: "receipt", ItemID: "X", Quantity: decimal.NewFromInt(80), DestinationLocationID: "A"}, "op")
	require.NoError(t, err)
	assert.Equal(t, "gal", in.Unit)
	_, err = uc.Transition(ctx, in.ID, entity.StatusApproved, inventory.Patch{}, "ana")
	require.NoError(t, err)
	_, err = uc.Transition(ctx, in.ID, entity.StatusPosted, inventory.Patch{}, "luis")
	require.NoError(t, err)

	tr, err := uc.CreateTransaction(ctx, inventory.CreateInput{Type: "transfer", ItemID: "X", Quantity: decimal.NewFromInt(50), SourceLocationID: "A", DestinationLocationID: "B"}, "op")
	require.NoError(t, err)
	_, err = uc.Transition(ctx, tr.ID, entity.StatusApproved, inventory.Patch{}, "ana")
	require.NoError(t, err)

	// dos transiciones en carrera sobre la misma fila: el FOR UPDATE serializa y la segunda ve el estado nuevo
	targets := []entity.TransactionStatus{entity.StatusPosted, entity.StatusRejected}
	errs := make([]error, 2)
	var wg sync.WaitGroup
	for i, target := range targets {
		wg.Add(1)
		go func(i int, target entity.TransactionStatus) {
			defer wg.Done()
			_, errs[i] = uc.Transition(ctx, tr.ID, target, inventory.Patch{}, "root")
		}(i, target)
	}
	wg.Wait()

	success := 0
	var winner entity.TransactionStatus
	for i, err := range errs {
		if err == nil {
			success++
			winner = targets[i]
			continue
		}
		assert.True(t, errors.Is(err, domain.ErrInvalidTransition) || errors.Is(err, domain.ErrConcurrencyConflict), "got %v", err)
	}
	require.Equal(t, 1, success)

	final, err := uc.GetTransaction(ctx, tr.ID)
	require.NoError(t, err)
	assert.Equal(t, winner, final.Status)

	a, err := projector.Recompute(ctx, "X", "A")
	require.NoError(t, err)
	b, err := projector.Recompute(ctx, "X", "B")
	require.NoError(t, err)
	assert.True(t, a.Quantity.Add(b.Quantity).Equal(decimal.NewFromInt(80)), "la suma entre ubicaciones se conserva")
}
