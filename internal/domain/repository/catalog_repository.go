package repository

import (
	"context"

	"github.com/jhoicas/Operaciones-api/internal/domain/entity"
)

// ItemRepository puerto de lectura del catálogo de ítems. GetByID devuelve (nil, nil) si no existe.
type ItemRepository interface {
	GetByID(ctx context.Context, id string) (*entity.Item, error)
	List(ctx context.Context, limit, offset int) ([]*entity.Item, error)
}

// LocationRepository puerto de lectura de ubicaciones. GetByID devuelve (nil, nil) si no existe.
type LocationRepository interface {
	GetByID(ctx context.Context, id string) (*entity.Location, error)
	ListByWarehouse(ctx context.Context, warehouseID string, limit, offset int) ([]*entity.Location, error)
}
