package redis

import (
	"github.com/shopspring/decimal"

	"github.com/jhoicas/Operaciones-api/internal/application/inventory/inventorytest"
	"github.com/jhoicas/Operaciones-api/internal/domain/entity"
)

func newPostedStore() *inventorytest.MemoryStore {
	s := inventorytest.NewMemoryStore()
	s.Put(&entity.StockTransaction{
		ID: "t1", Type: entity.TransactionTypeReceipt, ItemID: "X", Quantity: decimal.NewFromInt(10),
		DestinationLocationID: "A", Status: entity.StatusPosted, ApprovedBy: "a", PostedBy: "p", Version: 3,
	})
	return s
}
