package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/Operaciones-api/internal/domain"
	"github.com/jhoicas/Operaciones-api/internal/domain/entity"
	"github.com/jhoicas/Operaciones-api/internal/domain/repository"
)

var _ repository.StockTransactionRepository = (*StockTransactionRepo)(nil)

const transactionColumns = `id, type, item_id, quantity, unit, source_location_id, destination_location_id,
		status, requested_by, approved_by, posted_by, reference, notes, version, created_at, updated_at`

// StockTransactionRepo implementación sobre PostgreSQL (usable con pool o tx).
type StockTransactionRepo struct {
	q Querier
}

// NewStockTransactionRepository construye el adaptador. Pasar pool o tx (Querier).
func NewStockTransactionRepository(q Querier) *StockTransactionRepo {
	return &StockTransactionRepo{q: q}
}

// Create inserta la transacción tal como llega (ID, versión y timestamps ya asignados).
func (r *StockTransactionRepo) Create(ctx context.Context, tx *entity.StockTransaction) error {
	query := `
		INSERT INTO stock_transactions (` + transactionColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)`
	_, err := r.q.Exec(ctx, query,
		tx.ID, string(tx.Type), tx.ItemID, tx.Quantity, tx.Unit,
		nullIfEmpty(tx.SourceLocationID), nullIfEmpty(tx.DestinationLocationID),
		string(tx.Status), tx.RequestedBy, nullIfEmpty(tx.ApprovedBy), nullIfEmpty(tx.PostedBy),
		nullIfEmpty(tx.Reference), nullIfEmpty(tx.Notes), tx.Version, tx.CreatedAt, tx.UpdatedAt,
	)
	if err != nil {
		if isForeignKeyViolation(err) {
			return fmt.Errorf("create stock transaction: %w", domain.ErrNotFound)
		}
		if isUniqueViolation(err) {
			return fmt.Errorf("create stock transaction: id duplicado %s", tx.ID)
		}
		return fmt.Errorf("create stock transaction: %w", err)
	}
	return nil
}

// GetByID obtiene una transacción por ID. (nil, nil) si no existe.
func (r *StockTransactionRepo) GetByID(ctx context.Context, id string) (*entity.StockTransaction, error) {
	return r.getOne(ctx, `SELECT `+transactionColumns+` FROM stock_transactions WHERE id = $1`, id)
}

// GetForUpdate obtiene y bloquea la fila (SELECT FOR UPDATE). Debe llamarse dentro de una tx.
func (r *StockTransactionRepo) GetForUpdate(ctx context.Context, id string) (*entity.StockTransaction, error) {
	return r.getOne(ctx, `SELECT `+transactionColumns+` FROM stock_transactions WHERE id = $1 FOR UPDATE`, id)
}

func (r *StockTransactionRepo) getOne(ctx context.Context, query, id string) (*entity.StockTransaction, error) {
	tx, err := scanTransaction(r.q.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get stock transaction: %w", err)
	}
	return tx, nil
}

// Save hace compare-and-swap sobre version. Los actores solo se escriben si la columna está vacía.
func (r *StockTransactionRepo) Save(ctx context.Context, tx *entity.StockTransaction, expectedVersion int64) error {
	query := `
		UPDATE stock_transactions
		SET quantity = $3,
		    source_location_id = $4,
		    destination_location_id = $5,
		    status = $6,
		    approved_by = COALESCE(approved_by, $7),
		    posted_by = COALESCE(posted_by, $8),
		    reference = $9,
		    notes = $10,
		    updated_at = $11,
		    version = version + 1
		WHERE id = $1 AND version = $2
		RETURNING version, updated_at`
	err := r.q.QueryRow(ctx, query,
		tx.ID, expectedVersion, tx.Quantity,
		nullIfEmpty(tx.SourceLocationID), nullIfEmpty(tx.DestinationLocationID),
		string(tx.Status), nullIfEmpty(tx.ApprovedBy), nullIfEmpty(tx.PostedBy),
		nullIfEmpty(tx.Reference), nullIfEmpty(tx.Notes), tx.UpdatedAt,
	).Scan(&tx.Version, &tx.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.ErrConcurrencyConflict
		}
		if isForeignKeyViolation(err) {
			return fmt.Errorf("save stock transaction: %w", domain.ErrNotFound)
		}
		return fmt.Errorf("save stock transaction: %w", err)
	}
	return nil
}

// ListPosted devuelve las transacciones posted del ítem que tocan la ubicación.
func (r *StockTransactionRepo) ListPosted(ctx context.Context, itemID, locationID string) ([]*entity.StockTransaction, error) {
	query := `
		SELECT ` + transactionColumns + `
		FROM stock_transactions
		WHERE status = 'posted' AND item_id = $1
		  AND (source_location_id = $2 OR destination_location_id = $2)
		ORDER BY created_at, id`
	rows, err := r.q.Query(ctx, query, itemID, locationID)
	if err != nil {
		return nil, fmt.Errorf("list posted: %w", err)
	}
	return collectTransactions(rows)
}

// List filtra por estado, tipo, ítem y ubicación (origen o destino), más recientes primero.
func (r *StockTransactionRepo) List(ctx context.Context, filter repository.TransactionFilter, limit, offset int) ([]*entity.StockTransaction, error) {
	query := `SELECT ` + transactionColumns + ` FROM stock_transactions WHERE 1=1`
	var args []any
	pos := 1
	if filter.Status != "" {
		query += fmt.Sprintf(" AND status = $%d", pos)
		args = append(args, string(filter.Status))
		pos++
	}
	if filter.Type != "" {
		query += fmt.Sprintf(" AND type = $%d", pos)
		args = append(args, string(filter.Type))
		pos++
	}
	if filter.ItemID != "" {
		query += fmt.Sprintf(" AND item_id = $%d", pos)
		args = append(args, filter.ItemID)
		pos++
	}
	if filter.LocationID != "" {
		query += fmt.Sprintf(" AND (source_location_id = $%d OR destination_location_id = $%d)", pos, pos)
		args = append(args, filter.LocationID)
		pos++
	}
	query += fmt.Sprintf(" ORDER BY created_at DESC, id LIMIT $%d OFFSET $%d", pos, pos+1)
	args = append(args, limit, offset)

	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list stock transactions: %w", err)
	}
	return collectTransactions(rows)
}

func collectTransactions(rows pgx.Rows) ([]*entity.StockTransaction, error) {
	defer rows.Close()
	var list []*entity.StockTransaction
	for rows.Next() {
		tx, err := scanTransaction(rows)
		if err != nil {
			return nil, fmt.Errorf("scan stock transaction: %w", err)
		}
		list = append(list, tx)
	}
	return list, rows.Err()
}

func scanTransaction(row pgx.Row) (*entity.StockTransaction, error) {
	var (
		t                    entity.StockTransaction
		typ, status          string
		src, dst             *string
		approvedBy, postedBy *string
		reference, notes     *string
	)
	if err := row.Scan(
		&t.ID, &typ, &t.ItemID, &t.Quantity, &t.Unit, &src, &dst,
		&status, &t.RequestedBy, &approvedBy, &postedBy, &reference, &notes,
		&t.Version, &t.CreatedAt, &t.UpdatedAt,
	); err != nil {
		return nil, err
	}

	var ok bool
	if t.Type, ok = entity.ParseTransactionType(typ); !ok {
		return nil, fmt.Errorf("tipo desconocido %q en transacción %s", typ, t.ID)
	}
	if t.Status, ok = entity.ParseTransactionStatus(status); !ok {
		return nil, fmt.Errorf("estado desconocido %q en transacción %s", status, t.ID)
	}
	t.SourceLocationID = derefString(src)
	t.DestinationLocationID = derefString(dst)
	t.ApprovedBy = derefString(approvedBy)
	t.PostedBy = derefString(postedBy)
	t.Reference = derefString(reference)
	t.Notes = derefString(notes)
	return &t, nil
}
