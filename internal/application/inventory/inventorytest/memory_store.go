// Package inventorytest provee dobles en memoria de los puertos de inventario para tests.
package inventorytest

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/jhoicas/Operaciones-api/internal/domain"
	"github.com/jhoicas/Operaciones-api/internal/domain/entity"
	"github.com/jhoicas/Operaciones-api/internal/domain/repository"
)

var _ repository.StockTransactionRepository = (*MemoryStore)(nil)

// MemoryStore repositorio de transacciones en memoria que además hace de TxRunner.
// Con Serial en true (valor de NewMemoryStore) Run se ejecuta bajo un mutex, como el bloqueo
// de fila de PostgreSQL; en false solo queda el control por versión de Save.
type MemoryStore struct {
	Serial bool
	// AfterLoad se invoca dentro de GetForUpdate tras leer el registro.
	AfterLoad func(id string)
	// ListPostedErr, si no es nil, lo devuelve ListPosted.
	ListPostedErr error

	runMu sync.Mutex
	mu    sync.RWMutex
	data  map[string]*entity.StockTransaction
	saves int
}

// NewMemoryStore crea un store serializado vacío.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{Serial: true, data: map[string]*entity.StockTransaction{}}
}

// Run ejecuta fn con el propio store como repositorio.
func (s *MemoryStore) Run(ctx context.Context, fn func(repo repository.StockTransactionRepository) error) error {
	if s.Serial {
		s.runMu.Lock()
		defer s.runMu.Unlock()
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	return fn(s)
}

// RunSnapshot ejecuta fn sin serializar.
func (s *MemoryStore) RunSnapshot(ctx context.Context, fn func(repo repository.StockTransactionRepository) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return fn(s)
}

// Put inserta o reemplaza un registro tal cual, sin validar versión.
func (s *MemoryStore) Put(tx *entity.StockTransaction) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[tx.ID] = tx.Clone()
}

// Saves número de Save exitosos.
func (s *MemoryStore) Saves() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.saves
}

func (s *MemoryStore) Create(_ context.Context, tx *entity.StockTransaction) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.data[tx.ID]; ok {
		return fmt.Errorf("transacción %s ya existe", tx.ID)
	}
	s.data[tx.ID] = tx.Clone()
	return nil
}

func (s *MemoryStore) GetByID(_ context.Context, id string) (*entity.StockTransaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.data[id].Clone(), nil
}

func (s *MemoryStore) GetForUpdate(ctx context.Context, id string) (*entity.StockTransaction, error) {
	tx, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if s.AfterLoad != nil {
		s.AfterLoad(id)
	}
	return tx, nil
}

func (s *MemoryStore) Save(_ context.Context, tx *entity.StockTransaction, expectedVersion int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	stored, ok := s.data[tx.ID]
	if !ok || stored.Version != expectedVersion {
		return domain.ErrConcurrencyConflict
	}
	tx.Version = expectedVersion + 1
	s.data[tx.ID] = tx.Clone()
	s.saves++
	return nil
}

func (s *MemoryStore) ListPosted(_ context.Context, itemID, locationID string) ([]*entity.StockTransaction, error) {
	if s.ListPostedErr != nil {
		return nil, s.ListPostedErr
	}
	return s.filter(repository.TransactionFilter{Status: entity.StatusPosted, ItemID: itemID, LocationID: locationID}), nil
}

func (s *MemoryStore) List(_ context.Context, filter repository.TransactionFilter, limit, offset int) ([]*entity.StockTransaction, error) {
	list := s.filter(filter)
	if offset >= len(list) {
		return nil, nil
	}
	list = list[offset:]
	if limit > 0 && limit < len(list) {
		list = list[:limit]
	}
	return list, nil
}

func (s *MemoryStore) filter(f repository.TransactionFilter) []*entity.StockTransaction {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*entity.StockTransaction
	for _, tx := range s.data {
		if f.Status != "" && tx.Status != f.Status {
			continue
		}
		if f.Type != "" && tx.Type != f.Type {
			continue
		}
		if f.ItemID != "" && tx.ItemID != f.ItemID {
			continue
		}
		if f.LocationID != "" && tx.SourceLocationID != f.LocationID && tx.DestinationLocationID != f.LocationID {
			continue
		}
		out = append(out, tx.Clone())
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out
}
