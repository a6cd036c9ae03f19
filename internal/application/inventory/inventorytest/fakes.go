package inventorytest

import (
	"context"
	"errors"
	"sync"

	"github.com/jhoicas/Operaciones-api/internal/domain/entity"
	"github.com/jhoicas/Operaciones-api/internal/domain/repository"
)

var (
	_ repository.ItemRepository     = ItemCatalog(nil)
	_ repository.LocationRepository = LocationCatalog(nil)
)

// ItemCatalog catálogo de ítems indexado por ID.
type ItemCatalog map[string]*entity.Item

func (c ItemCatalog) GetByID(_ context.Context, id string) (*entity.Item, error) {
	return c[id], nil
}

func (c ItemCatalog) List(_ context.Context, limit, offset int) ([]*entity.Item, error) {
	var out []*entity.Item
	for _, it := range c {
		out = append(out, it)
	}
	return page(out, limit, offset), nil
}

// LocationCatalog catálogo de ubicaciones indexado por ID.
type LocationCatalog map[string]*entity.Location

func (c LocationCatalog) GetByID(_ context.Context, id string) (*entity.Location, error) {
	return c[id], nil
}

func (c LocationCatalog) ListByWarehouse(_ context.Context, warehouseID string, limit, offset int) ([]*entity.Location, error) {
	var out []*entity.Location
	for _, l := range c {
		if l.WarehouseID == warehouseID {
			out = append(out, l)
		}
	}
	return page(out, limit, offset), nil
}

// Locations crea un LocationCatalog con una ubicación por ID, todas en la bodega "WH".
func Locations(ids ...string) LocationCatalog {
	c := LocationCatalog{}
	for _, id := range ids {
		c[id] = &entity.Location{ID: id, WarehouseID: "WH", Name: id}
	}
	return c
}

func page[T any](list []T, limit, offset int) []T {
	if offset >= len(list) {
		return nil
	}
	list = list[offset:]
	if limit > 0 && limit < len(list) {
		list = list[:limit]
	}
	return list
}

// MemoryCache caché de niveles de stock en memoria. Err, si no es nil, lo devuelven todas las operaciones.
type MemoryCache struct {
	mu      sync.Mutex
	Err     error
	entries map[string]*entity.StockLevel
	Sets    int
	Deletes int
}

// NewMemoryCache crea una caché vacía.
func NewMemoryCache() *MemoryCache {
	return &MemoryCache{entries: map[string]*entity.StockLevel{}}
}

func (c *MemoryCache) key(itemID, locationID string) string { return itemID + "|" + locationID }

func (c *MemoryCache) Get(_ context.Context, itemID, locationID string) (*entity.StockLevel, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.Err != nil {
		return nil, c.Err
	}
	lvl, ok := c.entries[c.key(itemID, locationID)]
	if !ok {
		return nil, nil
	}
	cp := *lvl
	return &cp, nil
}

func (c *MemoryCache) Set(_ context.Context, level *entity.StockLevel) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.Err != nil {
		return c.Err
	}
	cp := *level
	c.entries[c.key(level.ItemID, level.LocationID)] = &cp
	c.Sets++
	return nil
}

func (c *MemoryCache) Delete(_ context.Context, itemID, locationID string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.Err != nil {
		return c.Err
	}
	delete(c.entries, c.key(itemID, locationID))
	c.Deletes++
	return nil
}

// Seed escribe una entrada sin contar como Set.
func (c *MemoryCache) Seed(level *entity.StockLevel) {
	c.mu.Lock()
	defer c.mu.Unlock()
	cp := *level
	c.entries[c.key(level.ItemID, level.LocationID)] = &cp
}

// ErrLockUnavailable lo devuelve FailingLocker.
var ErrLockUnavailable = errors.New("lock no disponible")

// MutexLocker serializa por clave en memoria.
type MutexLocker struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
	Keys  []string
}

func (l *MutexLocker) WithLock(ctx context.Context, key string, fn func(ctx context.Context) error) error {
	l.mu.Lock()
	if l.locks == nil {
		l.locks = map[string]*sync.Mutex{}
	}
	m, ok := l.locks[key]
	if !ok {
		m = &sync.Mutex{}
		l.locks[key] = m
	}
	l.Keys = append(l.Keys, key)
	l.mu.Unlock()

	m.Lock()
	defer m.Unlock()
	return fn(ctx)
}

// FailingLocker nunca obtiene el lock.
type FailingLocker struct{}

func (FailingLocker) WithLock(context.Context, string, func(ctx context.Context) error) error {
	return ErrLockUnavailable
}

// PublishedEvent evento capturado por RecordingPublisher.
type PublishedEvent struct {
	Event string
	Tx    *entity.StockTransaction
}

// RecordingPublisher guarda los eventos publicados. Err, si no es nil, se devuelve tras registrar.
type RecordingPublisher struct {
	mu     sync.Mutex
	Err    error
	events []PublishedEvent
}

func (p *RecordingPublisher) Publish(_ context.Context, event string, tx *entity.StockTransaction) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, PublishedEvent{Event: event, Tx: tx.Clone()})
	return p.Err
}

// Events copia de los eventos publicados en orden.
func (p *RecordingPublisher) Events() []PublishedEvent {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]PublishedEvent(nil), p.events...)
}
