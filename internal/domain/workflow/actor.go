package workflow

import "github.com/jhoicas/Operaciones-api/internal/domain/entity"

// ActorField campo de la transacción que registra quién ejecutó una transición.
type ActorField int

const (
	ActorNone ActorField = iota
	ActorApprovedBy
	ActorPostedBy
)

func (f ActorField) String() string {
	switch f {
	case ActorApprovedBy:
		return "approved_by"
	case ActorPostedBy:
		return "posted_by"
	default:
		return "none"
	}
}

// ActorFieldFor resuelve el campo a sellar al llegar a target.
func ActorFieldFor(target entity.TransactionStatus) ActorField {
	switch target {
	case entity.StatusApproved:
		return ActorApprovedBy
	case entity.StatusPosted:
		return ActorPostedBy
	default:
		return ActorNone
	}
}

// StampActor escribe actorID en el campo resuelto para target.
// Un campo ya sellado no se sobrescribe. Devuelve el campo tocado (ActorNone si ninguno).
func StampActor(tx *entity.StockTransaction, target entity.TransactionStatus, actorID string) ActorField {
	field := ActorFieldFor(target)
	switch field {
	case ActorApprovedBy:
		if tx.ApprovedBy != "" {
			return ActorNone
		}
		tx.ApprovedBy = actorID
	case ActorPostedBy:
		if tx.PostedBy != "" {
			return ActorNone
		}
		tx.PostedBy = actorID
	}
	return field
}
