package inventory

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/jhoicas/Operaciones-api/internal/domain"
	"github.com/jhoicas/Operaciones-api/internal/domain/entity"
	domaininv "github.com/jhoicas/Operaciones-api/internal/domain/inventory"
	"github.com/jhoicas/Operaciones-api/internal/domain/repository"
	"github.com/jhoicas/Operaciones-api/pkg/logger"
)

// StockLevelProjector deriva el stock de un par (ítem, ubicación) a partir de las transacciones posted.
// La caché es opcional y solo se sobrescribe con un recálculo completo; el ledger es la fuente de verdad.
type StockLevelProjector struct {
	txRunner TxRunner
	cache    StockLevelCache
	locker   PairLocker
	log      *logger.Logger
	tracer   trace.Tracer
	now      func() time.Time
}

// NewStockLevelProjector construye el proyector. cache y locker pueden ser nil.
func NewStockLevelProjector(txRunner TxRunner, cache StockLevelCache, locker PairLocker, log *logger.Logger) *StockLevelProjector {
	if log == nil {
		log = logger.Nop()
	}
	return &StockLevelProjector{
		txRunner: txRunner,
		cache:    cache,
		locker:   locker,
		log:      log.Component("stock_projector"),
		tracer:   otel.Tracer("operaciones/inventory"),
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// Get devuelve el nivel de stock leyendo primero la caché; en un fallo o ausencia recalcula.
func (p *StockLevelProjector) Get(ctx context.Context, itemID, locationID string) (*entity.StockLevel, error) {
	if err := validatePair(itemID, locationID); err != nil {
		return nil, err
	}
	if p.cache != nil {
		level, err := p.cache.Get(ctx, itemID, locationID)
		if err != nil {
			p.log.Warn().Err(err).Str("item_id", itemID).Str("location_id", locationID).Msg("caché de stock no disponible, se recalcula")
		} else if level != nil {
			return level, nil
		}
	}
	return p.Recompute(ctx, itemID, locationID)
}

// Recompute recorre todas las transacciones posted del par y sobrescribe la entrada de caché.
// Es idempotente: sin nuevas contabilizaciones devuelve siempre el mismo valor.
func (p *StockLevelProjector) Recompute(ctx context.Context, itemID, locationID string) (*entity.StockLevel, error) {
	if err := validatePair(itemID, locationID); err != nil {
		return nil, err
	}
	ctx, span := p.tracer.Start(ctx, "inventory.stock_level.recompute", trace.WithAttributes(
		attribute.String("item_id", itemID),
		attribute.String("location_id", locationID),
	))
	defer span.End()

	if p.locker == nil {
		level, err := p.computeAndCache(ctx, itemID, locationID)
		return level, spanErr(span, err)
	}

	var (
		level      *entity.StockLevel
		computeErr error
		ran        bool
	)
	lockErr := p.locker.WithLock(ctx, pairLockKey(itemID, locationID), func(ctx context.Context) error {
		ran = true
		level, computeErr = p.computeAndCache(ctx, itemID, locationID)
		return computeErr
	})
	if ran {
		return level, spanErr(span, computeErr)
	}

	// Sin lock no se escribe la caché; se borra la entrada para que ningún valor previo
	// al recálculo sobreviva y el siguiente Get vuelva al ledger.
	p.log.Warn().Err(lockErr).Str("item_id", itemID).Str("location_id", locationID).Msg("no se obtuvo el lock del par, se calcula sin caché")
	level, err := p.compute(ctx, itemID, locationID)
	p.invalidate(ctx, itemID, locationID)
	return level, spanErr(span, err)
}

func (p *StockLevelProjector) invalidate(ctx context.Context, itemID, locationID string) {
	if p.cache == nil {
		return
	}
	if err := p.cache.Delete(ctx, itemID, locationID); err != nil {
		p.log.Warn().Err(err).Str("item_id", itemID).Str("location_id", locationID).Msg("no se pudo invalidar la caché de stock")
	}
}

// Refresh invalida la entrada de caché y recalcula. Lo usa el ciclo de vida tras cada cambio del conjunto posted:
// si el recálculo falla la entrada queda ausente y el siguiente Get vuelve al ledger.
func (p *StockLevelProjector) Refresh(ctx context.Context, itemID, locationID string) (*entity.StockLevel, error) {
	p.invalidate(ctx, itemID, locationID)
	return p.Recompute(ctx, itemID, locationID)
}

func (p *StockLevelProjector) computeAndCache(ctx context.Context, itemID, locationID string) (*entity.StockLevel, error) {
	level, err := p.compute(ctx, itemID, locationID)
	if err != nil {
		return nil, err
	}
	if p.cache != nil {
		if err := p.cache.Set(ctx, level); err != nil {
			p.log.Warn().Err(err).Str("item_id", itemID).Str("location_id", locationID).Msg("no se pudo guardar el stock en caché")
		}
	}
	return level, nil
}

func (p *StockLevelProjector) compute(ctx context.Context, itemID, locationID string) (*entity.StockLevel, error) {
	var posted []*entity.StockTransaction
	err := p.txRunner.RunSnapshot(ctx, func(repo repository.StockTransactionRepository) error {
		var err error
		posted, err = repo.ListPosted(ctx, itemID, locationID)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("leer transacciones posted: %w", err)
	}

	qty, unit, n := domaininv.ProjectStockLevel(itemID, locationID, posted)
	p.log.Debug().Str("item_id", itemID).Str("location_id", locationID).Str("quantity", qty.String()).Int("postings", n).Msg("stock recalculado")
	return &entity.StockLevel{
		ItemID:     itemID,
		LocationID: locationID,
		Quantity:   qty,
		Unit:       unit,
		Postings:   n,
		ComputedAt: p.now(),
	}, nil
}

func pairLockKey(itemID, locationID string) string {
	return "lock:stock_level:" + itemID + ":" + locationID
}

func validatePair(itemID, locationID string) error {
	if itemID == "" {
		return domain.NewValidationError("item_id", "es requerido")
	}
	if locationID == "" {
		return domain.NewValidationError("location_id", "es requerido")
	}
	return nil
}

func spanErr(span trace.Span, err error) error {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	return err
}
