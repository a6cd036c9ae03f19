package usecase

import (
	"context"

	"github.com/jhoicas/Operaciones-api/internal/application/dto"
	"github.com/jhoicas/Operaciones-api/internal/domain/entity"
	"github.com/jhoicas/Operaciones-api/internal/domain/repository"
)

// CatalogUseCase consultas de solo lectura sobre ítems y ubicaciones.
type CatalogUseCase struct {
	items     repository.ItemRepository
	locations repository.LocationRepository
}

// NewCatalogUseCase construye el caso de uso.
func NewCatalogUseCase(items repository.ItemRepository, locations repository.LocationRepository) *CatalogUseCase {
	return &CatalogUseCase{items: items, locations: locations}
}

// GetItem obtiene un ítem por ID. Devuelve (nil, nil) si no existe.
func (uc *CatalogUseCase) GetItem(ctx context.Context, id string) (*dto.ItemResponse, error) {
	item, err := uc.items.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, nil
	}
	return toItemResponse(item), nil
}

// ListItems lista ítems con paginación.
func (uc *CatalogUseCase) ListItems(ctx context.Context, limit, offset int) (*dto.ItemListResponse, error) {
	list, err := uc.items.List(ctx, limit, offset)
	if err != nil {
		return nil, err
	}
	items := make([]dto.ItemResponse, 0, len(list))
	for _, it := range list {
		items = append(items, *toItemResponse(it))
	}
	return &dto.ItemListResponse{
		Items: items,
		Page:  dto.PageResponse{Limit: limit, Offset: offset},
	}, nil
}

// GetLocation obtiene una ubicación por ID. Devuelve (nil, nil) si no existe.
func (uc *CatalogUseCase) GetLocation(ctx context.Context, id string) (*dto.LocationResponse, error) {
	loc, err := uc.locations.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if loc == nil {
		return nil, nil
	}
	return toLocationResponse(loc), nil
}

// ListLocations lista las ubicaciones de una bodega.
func (uc *CatalogUseCase) ListLocations(ctx context.Context, warehouseID string, limit, offset int) (*dto.LocationListResponse, error) {
	list, err := uc.locations.ListByWarehouse(ctx, warehouseID, limit, offset)
	if err != nil {
		return nil, err
	}
	items := make([]dto.LocationResponse, 0, len(list))
	for _, l := range list {
		items = append(items, *toLocationResponse(l))
	}
	return &dto.LocationListResponse{
		Items: items,
		Page:  dto.PageResponse{Limit: limit, Offset: offset},
	}, nil
}

func toItemResponse(it *entity.Item) *dto.ItemResponse {
	return &dto.ItemResponse{
		ID:         it.ID,
		SKU:        it.SKU,
		Name:       it.Name,
		Unit:       it.Unit,
		CategoryID: it.CategoryID,
		Supplier:   it.Supplier,
	}
}

func toLocationResponse(l *entity.Location) *dto.LocationResponse {
	return &dto.LocationResponse{ID: l.ID, WarehouseID: l.WarehouseID, Name: l.Name}
}
