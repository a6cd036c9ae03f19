package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/Operaciones-api/internal/domain/entity"
	"github.com/jhoicas/Operaciones-api/internal/domain/workflow"
)

// CreateTransactionRequest body para POST /api/inventory/transactions.
// Para receipt y adjustment se usa destination_location_id; para issue source_location_id; transfer ambas.
type CreateTransactionRequest struct {
	Type                  string          `json:"type" validate:"required,oneof=receipt issue transfer adjustment"`
	ItemID                string          `json:"item_id" validate:"required,max=64"`
	Quantity              decimal.Decimal `json:"quantity"`
	SourceLocationID      string          `json:"source_location_id,omitempty" validate:"max=64"`
	DestinationLocationID string          `json:"destination_location_id,omitempty" validate:"max=64"`
	Reference             string          `json:"reference,omitempty" validate:"max=120"`
	Notes                 string          `json:"notes,omitempty" validate:"max=2000"`
}

// TransitionRequest body para PATCH/PUT /api/inventory/transactions/:id.
// status vacío edita sin cambiar de estado. approved_by y posted_by se aceptan pero se ignoran.
type TransitionRequest struct {
	Status                string           `json:"status,omitempty" validate:"omitempty,oneof=requested approved posted rejected void"`
	Quantity              *decimal.Decimal `json:"quantity,omitempty"`
	SourceLocationID      *string          `json:"source_location_id,omitempty" validate:"omitempty,max=64"`
	DestinationLocationID *string          `json:"destination_location_id,omitempty" validate:"omitempty,max=64"`
	Reference             *string          `json:"reference,omitempty" validate:"omitempty,max=120"`
	Notes                 *string          `json:"notes,omitempty" validate:"omitempty,max=2000"`
	ApprovedBy            *string          `json:"approved_by,omitempty"`
	PostedBy              *string          `json:"posted_by,omitempty"`
}

// TransactionFilterQuery filtros de GET /api/inventory/transactions.
type TransactionFilterQuery struct {
	Limit      int    `query:"limit" validate:"omitempty,min=1,max=200"`
	Offset     int    `query:"offset" validate:"omitempty,min=0"`
	Status     string `query:"status" validate:"omitempty,oneof=requested approved posted rejected void"`
	Type       string `query:"type" validate:"omitempty,oneof=receipt issue transfer adjustment"`
	ItemID     string `query:"item_id"`
	LocationID string `query:"location_id"`
}

// TransactionResponse salida de una transacción de stock.
type TransactionResponse struct {
	ID                    string          `json:"id"`
	Type                  string          `json:"type"`
	ItemID                string          `json:"item_id"`
	Quantity              decimal.Decimal `json:"quantity"`
	Unit                  string          `json:"unit"`
	SourceLocationID      string          `json:"source_location_id,omitempty"`
	DestinationLocationID string          `json:"destination_location_id,omitempty"`
	Status                string          `json:"status"`
	RequestedBy           string          `json:"requested_by"`
	ApprovedBy            string          `json:"approved_by,omitempty"`
	PostedBy              string          `json:"posted_by,omitempty"`
	Reference             string          `json:"reference,omitempty"`
	Notes                 string          `json:"notes,omitempty"`
	Version               int64           `json:"version"`
	AllowedTransitions    []string        `json:"allowed_transitions"`
	CreatedAt             time.Time       `json:"created_at"`
	UpdatedAt             time.Time       `json:"updated_at"`
}

// TransactionListResponse lista paginada de transacciones.
type TransactionListResponse struct {
	Items []TransactionResponse `json:"items"`
	Page  PageResponse          `json:"page"`
}

// NewTransactionResponse mapea la entidad a la respuesta, incluyendo los estados alcanzables.
func NewTransactionResponse(tx *entity.StockTransaction) TransactionResponse {
	next := workflow.AllowedTransitions(tx.Status)
	allowed := make([]string, 0, len(next))
	for _, s := range next {
		allowed = append(allowed, string(s))
	}
	return TransactionResponse{
		ID:                    tx.ID,
		Type:                  string(tx.Type),
		ItemID:                tx.ItemID,
		Quantity:              tx.Quantity,
		Unit:                  tx.Unit,
		SourceLocationID:      tx.SourceLocationID,
		DestinationLocationID: tx.DestinationLocationID,
		Status:                string(tx.Status),
		RequestedBy:           tx.RequestedBy,
		ApprovedBy:            tx.ApprovedBy,
		PostedBy:              tx.PostedBy,
		Reference:             tx.Reference,
		Notes:                 tx.Notes,
		Version:               tx.Version,
		AllowedTransitions:    allowed,
		CreatedAt:             tx.CreatedAt,
		UpdatedAt:             tx.UpdatedAt,
	}
}

// TransactionEvent payload que se difunde por pub/sub tras crear o actualizar una transacción.
type TransactionEvent struct {
	Event       string              `json:"event"`
	Transaction TransactionResponse `json:"transaction"`
	EmittedAt   time.Time           `json:"emitted_at"`
}
