package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/jhoicas/Operaciones-api/internal/application/dto"
	"github.com/jhoicas/Operaciones-api/internal/application/inventory"
	"github.com/jhoicas/Operaciones-api/internal/domain/entity"
)

var _ inventory.EventPublisher = (*EventPublisher)(nil)

// EventPublisher difunde transacciones por Redis pub/sub; el canal es el nombre del evento.
// Sin suscriptores el mensaje se pierde: no hay garantía de entrega.
type EventPublisher struct {
	rdb goredis.UniversalClient
	now func() time.Time
}

func NewEventPublisher(rdb goredis.UniversalClient) *EventPublisher {
	return &EventPublisher{rdb: rdb, now: func() time.Time { return time.Now().UTC() }}
}

func (p *EventPublisher) Publish(ctx context.Context, event string, tx *entity.StockTransaction) error {
	payload, err := json.Marshal(dto.TransactionEvent{
		Event:       event,
		Transaction: dto.NewTransactionResponse(tx),
		EmittedAt:   p.now(),
	})
	if err != nil {
		return err
	}
	if err := p.rdb.Publish(ctx, event, payload).Err(); err != nil {
		return fmt.Errorf("publicar %s: %w", event, err)
	}
	return nil
}
