package repository

import (
	"context"

	"github.com/jhoicas/Operaciones-api/internal/domain/entity"
)

// TransactionFilter criterios opcionales para listar transacciones; campos vacíos no filtran.
type TransactionFilter struct {
	Status     entity.TransactionStatus
	Type       entity.TransactionType
	ItemID     string
	LocationID string // coincide con origen o destino
}

// StockTransactionRepository define el puerto de persistencia para transacciones de stock (DIP).
// GetByID y GetForUpdate devuelven (nil, nil) si el registro no existe.
type StockTransactionRepository interface {
	Create(ctx context.Context, tx *entity.StockTransaction) error
	GetByID(ctx context.Context, id string) (*entity.StockTransaction, error)
	// GetForUpdate bloquea la fila hasta que termine la transacción de BD (SELECT FOR UPDATE).
	GetForUpdate(ctx context.Context, id string) (*entity.StockTransaction, error)
	// Save persiste tx solo si la versión almacenada es expectedVersion; en ese caso deja
	// tx.Version = expectedVersion+1. Si la versión no coincide devuelve domain.ErrConcurrencyConflict.
	Save(ctx context.Context, tx *entity.StockTransaction, expectedVersion int64) error
	// ListPosted devuelve las transacciones posted del ítem con locationID como origen o destino.
	ListPosted(ctx context.Context, itemID, locationID string) ([]*entity.StockTransaction, error)
	List(ctx context.Context, filter TransactionFilter, limit, offset int) ([]*entity.StockTransaction, error)
}
