package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// TransactionType tipo de movimiento de stock. Conjunto cerrado; inmutable tras la creación.
type TransactionType string

const (
	TransactionTypeReceipt    TransactionType = "receipt"    // entrada a una ubicación
	TransactionTypeIssue      TransactionType = "issue"      // salida de una ubicación
	TransactionTypeTransfer   TransactionType = "transfer"   // traslado entre ubicaciones
	TransactionTypeAdjustment TransactionType = "adjustment" // ajuste con signo sobre una ubicación
)

// Valid indica si t pertenece al conjunto de tipos conocidos.
func (t TransactionType) Valid() bool {
	switch t {
	case TransactionTypeReceipt, TransactionTypeIssue, TransactionTypeTransfer, TransactionTypeAdjustment:
		return true
	}
	return false
}

// ParseTransactionType convierte un string externo en TransactionType.
func ParseTransactionType(s string) (TransactionType, bool) {
	t := TransactionType(s)
	return t, t.Valid()
}

// TransactionStatus estado del flujo de una transacción de stock.
type TransactionStatus string

const (
	StatusRequested TransactionStatus = "requested" // inicial
	StatusApproved  TransactionStatus = "approved"
	StatusPosted    TransactionStatus = "posted"   // afecta el ledger
	StatusRejected  TransactionStatus = "rejected" // terminal
	StatusVoid      TransactionStatus = "void"     // terminal
)

// Valid indica si s pertenece al conjunto de estados conocidos.
func (s TransactionStatus) Valid() bool {
	switch s {
	case StatusRequested, StatusApproved, StatusPosted, StatusRejected, StatusVoid:
		return true
	}
	return false
}

// ParseTransactionStatus convierte un string externo en TransactionStatus.
func ParseTransactionStatus(s string) (TransactionStatus, bool) {
	st := TransactionStatus(s)
	return st, st.Valid()
}

// StockTransaction representa un único movimiento de un ítem (entrada, salida, traslado o ajuste).
// Nunca se borra: rejected y void se conservan para auditoría.
// Para adjustment la ubicación afectada es DestinationLocationID y Quantity lleva signo.
type StockTransaction struct {
	ID                    string
	Type                  TransactionType
	ItemID                string
	Quantity              decimal.Decimal
	Unit                  string // copiada del ítem al crear
	SourceLocationID      string
	DestinationLocationID string
	Status                TransactionStatus
	RequestedBy           string
	ApprovedBy            string
	PostedBy              string
	Reference             string
	Notes                 string
	Version               int64 // control de concurrencia optimista
	CreatedAt             time.Time
	UpdatedAt             time.Time
}

// Clone devuelve una copia independiente.
func (t *StockTransaction) Clone() *StockTransaction {
	if t == nil {
		return nil
	}
	c := *t
	return &c
}

// Locations devuelve las ubicaciones cuyo stock depende de esta transacción.
func (t *StockTransaction) Locations() []string {
	var out []string
	if t.SourceLocationID != "" {
		out = append(out, t.SourceLocationID)
	}
	if t.DestinationLocationID != "" && t.DestinationLocationID != t.SourceLocationID {
		out = append(out, t.DestinationLocationID)
	}
	return out
}

// SignedQuantityAt devuelve el efecto de la transacción sobre locationID:
// receipt, destino de transfer y adjustment suman; issue y origen de transfer restan.
func (t *StockTransaction) SignedQuantityAt(locationID string) decimal.Decimal {
	delta := decimal.Zero
	switch t.Type {
	case TransactionTypeReceipt, TransactionTypeAdjustment:
		if t.DestinationLocationID == locationID {
			delta = t.Quantity
		}
	case TransactionTypeIssue:
		if t.SourceLocationID == locationID {
			delta = t.Quantity.Neg()
		}
	case TransactionTypeTransfer:
		if t.DestinationLocationID == locationID {
			delta = delta.Add(t.Quantity)
		}
		if t.SourceLocationID == locationID {
			delta = delta.Sub(t.Quantity)
		}
	}
	return delta
}
