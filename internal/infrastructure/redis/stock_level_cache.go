package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/sony/gobreaker"

	"github.com/jhoicas/Operaciones-api/internal/application/inventory"
	"github.com/jhoicas/Operaciones-api/internal/domain/entity"
	"github.com/jhoicas/Operaciones-api/pkg/logger"
)

var _ inventory.StockLevelCache = (*StockLevelCache)(nil)

// StockLevelCache guarda el nivel proyectado por par en un JSON bajo stock_level:{item}:{ubicación}.
// Las llamadas pasan por un circuit breaker: con Redis caído se falla rápido y el proyector
// vuelve al ledger.
type StockLevelCache struct {
	rdb     goredis.UniversalClient
	ttl     time.Duration
	breaker *gobreaker.CircuitBreaker
}

type cachedStockLevel struct {
	ItemID     string          `json:"item_id"`
	LocationID string          `json:"location_id"`
	Quantity   decimal.Decimal `json:"quantity"`
	Unit       string          `json:"unit,omitempty"`
	Postings   int             `json:"postings"`
	ComputedAt time.Time       `json:"computed_at"`
}

// NewStockLevelCache construye la caché. ttl <= 0 deja las entradas sin expiración.
func NewStockLevelCache(rdb goredis.UniversalClient, ttl time.Duration, log *logger.Logger) *StockLevelCache {
	if log == nil {
		log = logger.Nop()
	}
	log = log.Component("stock_cache")
	breaker := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "redis-stock-cache",
		MaxRequests: 1,
		Interval:    time.Minute,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			log.Warn().Str("breaker", name).Str("from", from.String()).Str("to", to.String()).Msg("cambio de estado del circuit breaker")
		},
	})
	return &StockLevelCache{rdb: rdb, ttl: ttl, breaker: breaker}
}

func stockLevelKey(itemID, locationID string) string {
	return fmt.Sprintf("stock_level:%s:%s", itemID, locationID)
}

// Get devuelve (nil, nil) si no hay entrada.
func (c *StockLevelCache) Get(ctx context.Context, itemID, locationID string) (*entity.StockLevel, error) {
	res, err := c.breaker.Execute(func() (interface{}, error) {
		raw, err := c.rdb.Get(ctx, stockLevelKey(itemID, locationID)).Bytes()
		if errors.Is(err, goredis.Nil) {
			return nil, nil
		}
		return raw, err
	})
	if err != nil {
		return nil, fmt.Errorf("leer stock en caché: %w", err)
	}
	raw, _ := res.([]byte)
	if raw == nil {
		return nil, nil
	}
	var v cachedStockLevel
	if err := json.Unmarshal(raw, &v); err != nil {
		return nil, fmt.Errorf("decodificar stock en caché: %w", err)
	}
	return &entity.StockLevel{
		ItemID:     v.ItemID,
		LocationID: v.LocationID,
		Quantity:   v.Quantity,
		Unit:       v.Unit,
		Postings:   v.Postings,
		ComputedAt: v.ComputedAt,
	}, nil
}

// Set sobrescribe la entrada completa.
func (c *StockLevelCache) Set(ctx context.Context, level *entity.StockLevel) error {
	raw, err := json.Marshal(cachedStockLevel{
		ItemID:     level.ItemID,
		LocationID: level.LocationID,
		Quantity:   level.Quantity,
		Unit:       level.Unit,
		Postings:   level.Postings,
		ComputedAt: level.ComputedAt,
	})
	if err != nil {
		return err
	}
	_, err = c.breaker.Execute(func() (interface{}, error) {
		return nil, c.rdb.Set(ctx, stockLevelKey(level.ItemID, level.LocationID), raw, c.ttl).Err()
	})
	if err != nil {
		return fmt.Errorf("guardar stock en caché: %w", err)
	}
	return nil
}

// Delete elimina la entrada; no existir no es error.
func (c *StockLevelCache) Delete(ctx context.Context, itemID, locationID string) error {
	_, err := c.breaker.Execute(func() (interface{}, error) {
		return nil, c.rdb.Del(ctx, stockLevelKey(itemID, locationID)).Err()
	})
	if err != nil {
		return fmt.Errorf("invalidar stock en caché: %w", err)
	}
	return nil
}
