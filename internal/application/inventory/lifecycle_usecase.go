package inventory

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
	"go.opentelemetry.io/otel/trace"

	"github.com/jhoicas/Operaciones-api/internal/domain"
	"github.com/jhoicas/Operaciones-api/internal/domain/entity"
	"github.com/jhoicas/Operaciones-api/internal/domain/repository"
	"github.com/jhoicas/Operaciones-api/internal/domain/workflow"
	"github.com/jhoicas/Operaciones-api/pkg/logger"
)

const (
	defaultListLimit = 50
	maxListLimit     = 200
)

// StockRefresher recalcula el stock de un par tras un cambio del conjunto posted.
type StockRefresher interface {
	Refresh(ctx context.Context, itemID, locationID string) (*entity.StockLevel, error)
}

// LifecycleUseCase orquesta la creación y las transiciones de transacciones de stock.
// Cada transición corre en una transacción de BD con la fila bloqueada (SELECT FOR UPDATE)
// y el guardado condicionado a la versión leída.
type LifecycleUseCase struct {
	txRunner     TxRunner
	repo         repository.StockTransactionRepository
	itemRepo     repository.ItemRepository
	locationRepo repository.LocationRepository
	projector    StockRefresher
	publisher    EventPublisher
	log          *logger.Logger
	tracer       trace.Tracer
	transitions  metric.Int64Counter
	now          func() time.Time
}

// NewLifecycleUseCase construye el caso de uso. publisher puede ser nil.
func NewLifecycleUseCase(
	txRunner TxRunner,
	repo repository.StockTransactionRepository,
	itemRepo repository.ItemRepository,
	locationRepo repository.LocationRepository,
	projector StockRefresher,
	publisher EventPublisher,
	log *logger.Logger,
) *LifecycleUseCase {
	if log == nil {
		log = logger.Nop()
	}
	counter, err := otel.Meter("operaciones/inventory").Int64Counter(
		"inventory.transaction.transitions",
		metric.WithDescription("Transiciones de transacciones de stock por estado destino y resultado"),
	)
	if err != nil {
		counter, _ = noop.NewMeterProvider().Meter("operaciones/inventory").Int64Counter("inventory.transaction.transitions")
	}
	return &LifecycleUseCase{
		txRunner:     txRunner,
		repo:         repo,
		itemRepo:     itemRepo,
		locationRepo: locationRepo,
		projector:    projector,
		publisher:    publisher,
		log:          log.Component("lifecycle"),
		tracer:       otel.Tracer("operaciones/inventory"),
		transitions:  counter,
		now:          func() time.Time { return time.Now().UTC() },
	}
}

// CreateTransaction valida la entrada, resuelve ítem y ubicaciones en el catálogo y persiste
// la transacción en estado requested.
func (uc *LifecycleUseCase) CreateTransaction(ctx context.Context, in CreateInput, actorID string) (*entity.StockTransaction, error) {
	ctx, span := uc.tracer.Start(ctx, "inventory.transaction.create")
	defer span.End()

	if actorID == "" {
		return nil, domain.ErrUnauthorized
	}
	typ, ok := entity.ParseTransactionType(in.Type)
	if !ok {
		return nil, spanErr(span, domain.NewValidationError("type", fmt.Sprintf("tipo desconocido %q", in.Type)))
	}

	tx := &entity.StockTransaction{
		Type:                  typ,
		ItemID:                in.ItemID,
		Quantity:              in.Quantity,
		SourceLocationID:      in.SourceLocationID,
		DestinationLocationID: in.DestinationLocationID,
		Status:                entity.StatusRequested,
		Reference:             in.Reference,
		Notes:                 in.Notes,
	}
	if err := workflow.ValidateForStatus(entity.StatusRequested, tx); err != nil {
		return nil, spanErr(span, err)
	}

	item, err := uc.itemRepo.GetByID(ctx, in.ItemID)
	if err != nil {
		return nil, spanErr(span, fmt.Errorf("buscar ítem: %w", err))
	}
	if item == nil {
		return nil, spanErr(span, domain.NewNotFoundError("item", in.ItemID))
	}
	if err := uc.ensureLocations(ctx, tx.Locations()); err != nil {
		return nil, spanErr(span, err)
	}

	now := uc.now()
	tx.ID = uuid.New().String()
	tx.Unit = item.Unit
	tx.RequestedBy = actorID
	tx.Version = 1
	tx.CreatedAt = now
	tx.UpdatedAt = now

	if err := uc.repo.Create(ctx, tx); err != nil {
		return nil, spanErr(span, err)
	}
	span.SetAttributes(attribute.String("transaction_id", tx.ID), attribute.String("type", string(tx.Type)))
	uc.log.Info().Str("transaction_id", tx.ID).Str("type", string(tx.Type)).Str("item_id", tx.ItemID).Str("actor", actorID).Msg("transacción creada")

	uc.publish(ctx, EventTransactionCreated, tx)
	return tx, nil
}

// Transition lleva la transacción id al estado target aplicando patch. target vacío significa
// el estado actual, es decir una edición sin cambio de estado.
//
// Si el destino es posted (o void desde posted) el stock de las ubicaciones afectadas se recalcula
// antes de volver. Un fallo de ese recálculo no deshace la transición: se devuelve el registro
// guardado junto con un error ErrProjectionFailed.
func (uc *LifecycleUseCase) Transition(ctx context.Context, id string, target entity.TransactionStatus, patch Patch, actorID string) (*entity.StockTransaction, error) {
	ctx, span := uc.tracer.Start(ctx, "inventory.transaction.transition", trace.WithAttributes(
		attribute.String("transaction_id", id),
		attribute.String("target", string(target)),
	))
	defer span.End()

	if actorID == "" {
		return nil, domain.ErrUnauthorized
	}
	if target != "" && !target.Valid() {
		return nil, spanErr(span, domain.NewValidationError("status", fmt.Sprintf("estado desconocido %q", target)))
	}

	var saved, previous *entity.StockTransaction
	err := uc.txRunner.Run(ctx, func(repo repository.StockTransactionRepository) error {
		current, err := repo.GetForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if current == nil {
			return domain.NewNotFoundError("transaction", id)
		}

		next, err := uc.plan(current, target, patch, actorID)
		if err != nil {
			return err
		}
		if err := uc.ensureLocations(ctx, changedLocations(current, next)); err != nil {
			return err
		}
		if err := repo.Save(ctx, next, current.Version); err != nil {
			return err
		}
		previous, saved = current, next
		return nil
	})
	if err != nil {
		uc.countTransition(ctx, target, "error")
		uc.log.Warn().Err(err).Str("transaction_id", id).Str("target", string(target)).Str("actor", actorID).Msg("transición rechazada")
		return nil, spanErr(span, err)
	}

	uc.countTransition(ctx, saved.Status, "ok")
	uc.log.Info().
		Str("transaction_id", saved.ID).
		Str("from", string(previous.Status)).
		Str("to", string(saved.Status)).
		Str("actor", actorID).
		Int64("version", saved.Version).
		Msg("transición aplicada")

	var projErr error
	if affectsLedger(previous.Status, saved.Status) {
		projErr = uc.refreshLocations(ctx, saved)
	}
	uc.publish(ctx, EventTransactionUpdated, saved)

	if projErr != nil {
		return saved, spanErr(span, projErr)
	}
	return saved, nil
}

// plan construye el registro resultante sin tocar current.
func (uc *LifecycleUseCase) plan(current *entity.StockTransaction, target entity.TransactionStatus, patch Patch, actorID string) (*entity.StockTransaction, error) {
	if target == "" {
		target = current.Status
	}
	if err := checkFrozen(current, patch); err != nil {
		return nil, err
	}

	next := current.Clone()
	patch.applyTo(next)

	if target == current.Status {
		if err := workflow.ValidateForStatus(current.Status, next); err != nil {
			return nil, err
		}
	} else {
		if err := workflow.CheckTransition(current.Status, target); err != nil {
			return nil, err
		}
		next.Status = target
		if err := workflow.ValidateForStatus(target, next); err != nil {
			return nil, err
		}
		workflow.StampActor(next, target, actorID)
	}
	next.UpdatedAt = uc.now()
	return next, nil
}

// GetTransaction devuelve la transacción o un NotFoundError.
func (uc *LifecycleUseCase) GetTransaction(ctx context.Context, id string) (*entity.StockTransaction, error) {
	tx, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if tx == nil {
		return nil, domain.NewNotFoundError("transaction", id)
	}
	return tx, nil
}

// ListTransactions lista transacciones por filtro. limit se acota a [1, 200].
func (uc *LifecycleUseCase) ListTransactions(ctx context.Context, filter repository.TransactionFilter, limit, offset int) ([]*entity.StockTransaction, error) {
	if filter.Status != "" && !filter.Status.Valid() {
		return nil, domain.NewValidationError("status", fmt.Sprintf("estado desconocido %q", filter.Status))
	}
	if filter.Type != "" && !filter.Type.Valid() {
		return nil, domain.NewValidationError("type", fmt.Sprintf("tipo desconocido %q", filter.Type))
	}
	if limit <= 0 {
		limit = defaultListLimit
	}
	if limit > maxListLimit {
		limit = maxListLimit
	}
	if offset < 0 {
		offset = 0
	}
	return uc.repo.List(ctx, filter, limit, offset)
}

func (uc *LifecycleUseCase) ensureLocations(ctx context.Context, ids []string) error {
	for _, id := range ids {
		loc, err := uc.locationRepo.GetByID(ctx, id)
		if err != nil {
			return fmt.Errorf("buscar ubicación: %w", err)
		}
		if loc == nil {
			return domain.NewNotFoundError("location", id)
		}
	}
	return nil
}

func (uc *LifecycleUseCase) refreshLocations(ctx context.Context, tx *entity.StockTransaction) error {
	if uc.projector == nil {
		return nil
	}
	var errs []error
	for _, loc := range tx.Locations() {
		if _, err := uc.projector.Refresh(ctx, tx.ItemID, loc); err != nil {
			uc.log.Error().Err(err).Str("transaction_id", tx.ID).Str("item_id", tx.ItemID).Str("location_id", loc).Msg("recálculo de stock falló")
			errs = append(errs, fmt.Errorf("%s/%s: %w", tx.ItemID, loc, err))
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("%w: %w", domain.ErrProjectionFailed, errors.Join(errs...))
	}
	return nil
}

func (uc *LifecycleUseCase) publish(ctx context.Context, event string, tx *entity.StockTransaction) {
	if uc.publisher == nil {
		return
	}
	if err := uc.publisher.Publish(ctx, event, tx); err != nil {
		uc.log.Warn().Err(err).Str("event", event).Str("transaction_id", tx.ID).Msg("no se pudo publicar el evento")
	}
}

func (uc *LifecycleUseCase) countTransition(ctx context.Context, target entity.TransactionStatus, outcome string) {
	uc.transitions.Add(ctx, 1, metric.WithAttributes(
		attribute.String("target", string(target)),
		attribute.String("outcome", outcome),
	))
}

// affectsLedger indica si pasar de from a to cambia el conjunto posted.
func affectsLedger(from, to entity.TransactionStatus) bool {
	if from == to {
		return false
	}
	return to == entity.StatusPosted || (from == entity.StatusPosted && to == entity.StatusVoid)
}

// changedLocations ubicaciones nuevas introducidas por el patch.
func changedLocations(current, next *entity.StockTransaction) []string {
	var out []string
	if next.SourceLocationID != "" && next.SourceLocationID != current.SourceLocationID {
		out = append(out, next.SourceLocationID)
	}
	if next.DestinationLocationID != "" && next.DestinationLocationID != current.DestinationLocationID {
		out = append(out, next.DestinationLocationID)
	}
	return out
}
