package workflow

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/Operaciones-api/internal/domain"
	"github.com/jhoicas/Operaciones-api/internal/domain/entity"
)

// ValidateForStatus valida la vista combinada (registro actual + patch) contra las exigencias
// del estado target. No modifica tx.
//
//   - requested, approved: forma del movimiento (cantidad y ubicaciones según el tipo).
//   - posted: lo de approved más approved_by presente.
//   - rejected, void: sin exigencias de campos.
func ValidateForStatus(target entity.TransactionStatus, tx *entity.StockTransaction) error {
	if tx == nil {
		return domain.NewValidationError("", "transacción vacía")
	}
	switch target {
	case entity.StatusRequested, entity.StatusApproved:
		return ValidateShape(tx)
	case entity.StatusPosted:
		if err := ValidateShape(tx); err != nil {
			return err
		}
		if tx.ApprovedBy == "" {
			return domain.NewValidationError("approved_by", "no se puede contabilizar una transacción que nunca fue aprobada")
		}
		return nil
	case entity.StatusRejected, entity.StatusVoid:
		return nil
	default:
		return domain.NewValidationError("status", fmt.Sprintf("estado desconocido %q", target))
	}
}

// Límites de la columna quantity NUMERIC(18,4): 14 dígitos enteros y 4 decimales.
const quantityScale = 4

var maxQuantity = decimal.New(1, 14)

// ValidateShape verifica tipo, ítem, cantidad y ubicaciones requeridas por el tipo.
func ValidateShape(tx *entity.StockTransaction) error {
	if !tx.Type.Valid() {
		return domain.NewValidationError("type", fmt.Sprintf("tipo desconocido %q", tx.Type))
	}
	if tx.ItemID == "" {
		return domain.NewValidationError("item_id", "es requerido")
	}

	if tx.Type == entity.TransactionTypeAdjustment {
		if tx.Quantity.IsZero() {
			return domain.NewValidationError("quantity", "un ajuste no puede ser cero")
		}
	} else if !tx.Quantity.IsPositive() {
		return domain.NewValidationError("quantity", "debe ser mayor que cero")
	}
	if !tx.Quantity.Equal(tx.Quantity.Truncate(quantityScale)) {
		return domain.NewValidationError("quantity", "admite como máximo 4 decimales")
	}
	if tx.Quantity.Abs().GreaterThanOrEqual(maxQuantity) {
		return domain.NewValidationError("quantity", "excede el máximo permitido")
	}

	src, dst := tx.SourceLocationID, tx.DestinationLocationID
	switch tx.Type {
	case entity.TransactionTypeReceipt, entity.TransactionTypeAdjustment:
		if dst == "" {
			return domain.NewValidationError("destination_location_id", "es requerido para "+string(tx.Type))
		}
		if src != "" {
			return domain.NewValidationError("source_location_id", "no aplica para "+string(tx.Type))
		}
	case entity.TransactionTypeIssue:
		if src == "" {
			return domain.NewValidationError("source_location_id", "es requerido para issue")
		}
		if dst != "" {
			return domain.NewValidationError("destination_location_id", "no aplica para issue")
		}
	case entity.TransactionTypeTransfer:
		if src == "" || dst == "" {
			return domain.NewValidationError("location", "transfer requiere origen y destino")
		}
		if src == dst {
			return domain.NewValidationError("destination_location_id", "origen y destino deben ser distintos")
		}
	}
	return nil
}
