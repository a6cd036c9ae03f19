package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// StockLevel cantidad disponible de un ítem en una ubicación.
// Es una proyección de las transacciones posted; no existe ninguna ruta que lo escriba directamente.
type StockLevel struct {
	ItemID     string
	LocationID string
	Quantity   decimal.Decimal
	Unit       string
	Postings   int // transacciones posted que contribuyeron
	ComputedAt time.Time
}
