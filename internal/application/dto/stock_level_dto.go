package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/Operaciones-api/internal/domain/entity"
)

// StockLevelResponse nivel de stock proyectado para un par (ítem, ubicación).
type StockLevelResponse struct {
	ItemID     string          `json:"item_id"`
	LocationID string          `json:"location_id"`
	Quantity   decimal.Decimal `json:"quantity"`
	Unit       string          `json:"unit,omitempty"`
	Postings   int             `json:"postings"`
	ComputedAt time.Time       `json:"computed_at"`
}

func NewStockLevelResponse(l *entity.StockLevel) StockLevelResponse {
	return StockLevelResponse{
		ItemID:     l.ItemID,
		LocationID: l.LocationID,
		Quantity:   l.Quantity,
		Unit:       l.Unit,
		Postings:   l.Postings,
		ComputedAt: l.ComputedAt,
	}
}

// ItemResponse salida de un ítem del catálogo.
type ItemResponse struct {
	ID         string `json:"id"`
	SKU        string `json:"sku"`
	Name       string `json:"name"`
	Unit       string `json:"unit"`
	CategoryID string `json:"category_id,omitempty"`
	Supplier   string `json:"supplier,omitempty"`
}

// ItemListResponse lista paginada de ítems.
type ItemListResponse struct {
	Items []ItemResponse `json:"items"`
	Page  PageResponse   `json:"page"`
}

// LocationResponse salida de una ubicación.
type LocationResponse struct {
	ID          string `json:"id"`
	WarehouseID string `json:"warehouse_id"`
	Name        string `json:"name"`
}

// LocationListResponse lista paginada de ubicaciones.
type LocationListResponse struct {
	Items []LocationResponse `json:"items"`
	Page  PageResponse       `json:"page"`
}
