package inventory

import (
	"context"

	"github.com/jhoicas/Operaciones-api/internal/domain/entity"
	"github.com/jhoicas/Operaciones-api/internal/domain/repository"
)

// Nombres de evento que se entregan al publicador externo.
const (
	EventTransactionCreated = "transaction:created"
	EventTransactionUpdated = "transaction:updated"
)

// TxRunner ejecuta una función dentro de una transacción de BD, pasando el repositorio atado a esa tx.
// Run garantiza atomicidad para las transiciones; RunSnapshot abre una transacción de solo lectura
// con lectura repetible para que la proyección vea un conjunto posted consistente.
type TxRunner interface {
	Run(ctx context.Context, fn func(repo repository.StockTransactionRepository) error) error
	RunSnapshot(ctx context.Context, fn func(repo repository.StockTransactionRepository) error) error
}

// StockLevelCache caché de niveles de stock por (ítem, ubicación). Get devuelve (nil, nil) si no hay entrada.
// Set siempre sobrescribe la entrada completa; no hay actualizaciones incrementales.
type StockLevelCache interface {
	Get(ctx context.Context, itemID, locationID string) (*entity.StockLevel, error)
	Set(ctx context.Context, level *entity.StockLevel) error
	Delete(ctx context.Context, itemID, locationID string) error
}

// PairLocker serializa recálculos de un mismo par (ítem, ubicación).
type PairLocker interface {
	WithLock(ctx context.Context, key string, fn func(ctx context.Context) error) error
}

// EventPublisher entrega el registro actualizado al canal de difusión (fuera del núcleo).
type EventPublisher interface {
	Publish(ctx context.Context, event string, tx *entity.StockTransaction) error
}

// TransactionVoucher datos que se imprimen en el comprobante de una transacción.
// Item y las ubicaciones pueden ser nil si ya no existen en el catálogo.
type TransactionVoucher struct {
	Transaction *entity.StockTransaction
	Item        *entity.Item
	Source      *entity.Location
	Destination *entity.Location
}

// VoucherGenerator genera el comprobante en PDF de una transacción.
type VoucherGenerator interface {
	GenerateTransactionPDF(ctx context.Context, v TransactionVoucher) ([]byte, error)
}
