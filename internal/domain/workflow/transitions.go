// Package workflow contiene las reglas del flujo de transacciones de stock:
// tabla de transiciones, resolución del campo de actor y validación por estado.
// Son funciones puras; no acceden a persistencia.
package workflow

import (
	"github.com/jhoicas/Operaciones-api/internal/domain"
	"github.com/jhoicas/Operaciones-api/internal/domain/entity"
)

// transitions es la única fuente de verdad de las aristas permitidas.
var transitions = map[entity.TransactionStatus][]entity.TransactionStatus{
	entity.StatusRequested: {entity.StatusApproved, entity.StatusRejected},
	entity.StatusApproved:  {entity.StatusPosted, entity.StatusRejected, entity.StatusVoid},
	entity.StatusPosted:    {entity.StatusVoid},
	entity.StatusRejected:  nil,
	entity.StatusVoid:      nil,
}

// CanTransition indica si existe la arista from -> to.
func CanTransition(from, to entity.TransactionStatus) bool {
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// CheckTransition devuelve *domain.TransitionError si la arista no existe.
func CheckTransition(from, to entity.TransactionStatus) error {
	if !CanTransition(from, to) {
		return &domain.TransitionError{From: string(from), To: string(to)}
	}
	return nil
}

// AllowedTransitions devuelve los estados alcanzables desde from (copia; vacío si es terminal).
func AllowedTransitions(from entity.TransactionStatus) []entity.TransactionStatus {
	next := transitions[from]
	out := make([]entity.TransactionStatus, len(next))
	copy(out, next)
	return out
}

// IsTerminal indica si desde s no sale ninguna arista.
func IsTerminal(s entity.TransactionStatus) bool {
	return s.Valid() && len(transitions[s]) == 0
}
