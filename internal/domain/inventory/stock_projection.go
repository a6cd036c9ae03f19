package inventory

import (
	"github.com/shopspring/decimal"

	"github.com/jhoicas/Operaciones-api/internal/domain/entity"
)

// ProjectStockLevel implementa la proyección de stock (servicio de dominio).
// Stock(ítem, ubicación) = Σ entradas posted a la ubicación − Σ salidas posted desde la ubicación.
// Ignora transacciones de otro ítem o que no estén posted, así que el resultado no depende
// de qué tan preciso sea el filtro del repositorio.
func ProjectStockLevel(itemID, locationID string, txs []*entity.StockTransaction) (qty decimal.Decimal, unit string, postings int) {
	qty = decimal.Zero
	for _, tx := range txs {
		if tx == nil || tx.Status != entity.StatusPosted || tx.ItemID != itemID {
			continue
		}
		if tx.SourceLocationID != locationID && tx.DestinationLocationID != locationID {
			continue
		}
		qty = qty.Add(tx.SignedQuantityAt(locationID))
		postings++
		if unit == "" {
			unit = tx.Unit
		}
	}
	return qty, unit, postings
}
