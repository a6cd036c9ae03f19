package inventory

import (
	"github.com/shopspring/decimal"

	"github.com/jhoicas/Operaciones-api/internal/domain"
	"github.com/jhoicas/Operaciones-api/internal/domain/entity"
)

// CreateInput entrada para CreateTransaction. Las ubicaciones requeridas dependen del tipo.
type CreateInput struct {
	Type                  string
	ItemID                string
	Quantity              decimal.Decimal
	SourceLocationID      string
	DestinationLocationID string
	Reference             string
	Notes                 string
}

// Patch cambios parciales que acompañan a una transición. Campos nil no se tocan.
// ApprovedBy y PostedBy se aceptan solo para descartarlos: los actores los resuelve el servidor.
type Patch struct {
	Quantity              *decimal.Decimal
	SourceLocationID      *string
	DestinationLocationID *string
	Reference             *string
	Notes                 *string

	ApprovedBy *string
	PostedBy   *string
}

// touchesMovement indica si el patch cambia cantidad o ubicaciones.
func (p Patch) touchesMovement() bool {
	return p.Quantity != nil || p.SourceLocationID != nil || p.DestinationLocationID != nil
}

// applyTo aplica los campos editables sobre tx. Los campos de actor nunca se copian.
func (p Patch) applyTo(tx *entity.StockTransaction) {
	if p.Quantity != nil {
		tx.Quantity = *p.Quantity
	}
	if p.SourceLocationID != nil {
		tx.SourceLocationID = *p.SourceLocationID
	}
	if p.DestinationLocationID != nil {
		tx.DestinationLocationID = *p.DestinationLocationID
	}
	if p.Reference != nil {
		tx.Reference = *p.Reference
	}
	if p.Notes != nil {
		tx.Notes = *p.Notes
	}
}

// movementFrozen indica si cantidad y ubicaciones ya no se pueden editar en ese estado.
func movementFrozen(status entity.TransactionStatus) bool {
	switch status {
	case entity.StatusPosted, entity.StatusRejected, entity.StatusVoid:
		return true
	}
	return false
}

func checkFrozen(current *entity.StockTransaction, p Patch) error {
	if movementFrozen(current.Status) && p.touchesMovement() {
		return domain.NewValidationError("quantity", "cantidad y ubicaciones no se pueden modificar en estado "+string(current.Status))
	}
	return nil
}
