package inventory

import (
	"context"
	"fmt"

	"github.com/jhoicas/Operaciones-api/internal/domain"
	"github.com/jhoicas/Operaciones-api/internal/domain/entity"
	"github.com/jhoicas/Operaciones-api/internal/domain/repository"
)

// VoucherUseCase arma el comprobante imprimible de una transacción de stock.
// Es de solo lectura: no toma locks ni modifica el registro.
type VoucherUseCase struct {
	repo         repository.StockTransactionRepository
	itemRepo     repository.ItemRepository
	locationRepo repository.LocationRepository
	generator    VoucherGenerator
}

// NewVoucherUseCase construye el caso de uso.
func NewVoucherUseCase(
	repo repository.StockTransactionRepository,
	itemRepo repository.ItemRepository,
	locationRepo repository.LocationRepository,
	generator VoucherGenerator,
) *VoucherUseCase {
	return &VoucherUseCase{repo: repo, itemRepo: itemRepo, locationRepo: locationRepo, generator: generator}
}

// DownloadVoucher devuelve el PDF y el nombre de archivo sugerido.
// Retorna *domain.NotFoundError si la transacción no existe. Un ítem o ubicación ausente en el
// catálogo no impide generar el comprobante.
func (uc *VoucherUseCase) DownloadVoucher(ctx context.Context, id string) (pdfBytes []byte, filename string, err error) {
	tx, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, "", fmt.Errorf("voucher: obtener transacción: %w", err)
	}
	if tx == nil {
		return nil, "", domain.NewNotFoundError("transaction", id)
	}

	v := TransactionVoucher{Transaction: tx}
	if v.Item, err = uc.itemRepo.GetByID(ctx, tx.ItemID); err != nil {
		return nil, "", fmt.Errorf("voucher: obtener ítem: %w", err)
	}
	if v.Source, err = uc.location(ctx, tx.SourceLocationID); err != nil {
		return nil, "", err
	}
	if v.Destination, err = uc.location(ctx, tx.DestinationLocationID); err != nil {
		return nil, "", err
	}

	pdfBytes, err = uc.generator.GenerateTransactionPDF(ctx, v)
	if err != nil {
		return nil, "", fmt.Errorf("voucher: generación fallida: %w", err)
	}
	return pdfBytes, voucherFilename(tx), nil
}

func (uc *VoucherUseCase) location(ctx context.Context, id string) (*entity.Location, error) {
	if id == "" {
		return nil, nil
	}
	loc, err := uc.locationRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("voucher: obtener ubicación: %w", err)
	}
	return loc, nil
}

func voucherFilename(tx *entity.StockTransaction) string {
	id := tx.ID
	if len(id) > 8 {
		id = id[:8]
	}
	return fmt.Sprintf("movimiento_%s_%s.pdf", tx.Type, id)
}
