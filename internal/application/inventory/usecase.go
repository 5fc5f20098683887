package inventory

import (
	"context"
	"time"

	"github.com/tu-usuario/warehouse-api/internal/application/dto"
	"github.com/tu-usuario/warehouse-api/internal/domain"
	"github.com/tu-usuario/warehouse-api/internal/domain/entity"
	"github.com/tu-usuario/warehouse-api/internal/domain/repository"
)

// StockUseCase es el ledger de producto: mantiene la consistencia de
// StockQuantity y produce el rastro de auditoría inmutable de cada cambio.
// Cada ajuste ejecuta en una transacción con bloqueo de fila (SELECT FOR UPDATE)
// sobre el producto, así dos ajustes concurrentes al mismo producto no se pierden
// y ajustes a productos distintos no se bloquean entre sí.
type StockUseCase struct {
	txRunner     TxRunner
	productRepo  repository.ProductRepository
	movementRepo repository.StockMovementRepository
	pdfGen       ReportPDFGenerator
}

// NewStockUseCase construye el caso de uso. pdfGen puede ser nil si no se
// expone el reporte PDF.
func NewStockUseCase(
	txRunner TxRunner,
	productRepo repository.ProductRepository,
	movementRepo repository.StockMovementRepository,
	pdfGen ReportPDFGenerator,
) *StockUseCase {
	return &StockUseCase{
		txRunner:     txRunner,
		productRepo:  productRepo,
		movementRepo: movementRepo,
		pdfGen:       pdfGen,
	}
}

// AdjustStock aplica un delta al stock de un producto y registra el movimiento
// en el ledger, todo en una transacción. Falla con ErrInsufficientStock si el
// resultado sería negativo, dejando stock y ledger intactos.
func (uc *StockUseCase) AdjustStock(ctx context.Context, productID string, in dto.AdjustStockRequest) (*dto.ProductResponse, error) {
	if in.Quantity == 0 {
		return nil, domain.ErrInvalidInput
	}
	if !entity.ValidMovementType(in.MovementType) {
		return nil, domain.ErrInvalidInput
	}

	var updated *entity.Product
	err := uc.txRunner.Run(ctx, func(
		productRepo repository.ProductRepository,
		movementRepo repository.StockMovementRepository,
	) error {
		// Bloquea la fila del producto para evitar updates perdidos
		product, err := productRepo.GetForUpdate(ctx, productID)
		if err != nil {
			return err
		}
		if product == nil {
			return domain.ErrNotFound
		}

		newQuantity := product.StockQuantity + in.Quantity
		if newQuantity < 0 {
			return domain.ErrInsufficientStock
		}

		now := time.Now()
		if err := productRepo.UpdateStock(ctx, productID, newQuantity); err != nil {
			return err
		}
		mov := &entity.StockMovement{
			ProductID: productID,
			Quantity:  in.Quantity,
			Type:      in.MovementType,
			Notes:     in.Notes,
			CreatedAt: now,
		}
		if err := movementRepo.Create(ctx, mov); err != nil {
			return err
		}

		product.StockQuantity = newQuantity
		product.UpdatedAt = now
		updated = product
		return nil
	})
	if err != nil {
		return nil, err
	}
	return toLedgerProductResponse(updated), nil
}

// GetStockHistory devuelve los movimientos de un producto, más recientes primero
// (created_at DESC, desempate por orden de inserción).
func (uc *StockUseCase) GetStockHistory(ctx context.Context, productID string, limit, offset int) (*dto.StockHistoryResponse, error) {
	product, err := uc.productRepo.GetByID(ctx, productID)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, domain.ErrNotFound
	}
	movements, err := uc.movementRepo.ListByProduct(ctx, productID, limit, offset)
	if err != nil {
		return nil, err
	}
	items := make([]dto.StockMovementResponse, 0, len(movements))
	for _, m := range movements {
		items = append(items, dto.StockMovementResponse{
			ID:           m.ID,
			ProductID:    m.ProductID,
			Quantity:     m.Quantity,
			MovementType: m.Type,
			Notes:        m.Notes,
			CreatedAt:    m.CreatedAt,
		})
	}
	return &dto.StockHistoryResponse{
		Items: items,
		Page:  dto.PageResponse{Limit: limit, Offset: offset},
	}, nil
}

// ListLowStock devuelve los productos con stock en o bajo su umbral de
// reposición (la igualdad cuenta como stock bajo), ordenados del más crítico
// al menos crítico (mayor déficit primero, empate por nombre).
func (uc *StockUseCase) ListLowStock(ctx context.Context) ([]dto.LowStockProductResponse, error) {
	products, err := uc.productRepo.ListLowStock(ctx)
	if err != nil {
		return nil, err
	}
	items := make([]dto.LowStockProductResponse, 0, len(products))
	for _, p := range products {
		items = append(items, dto.LowStockProductResponse{
			ID:            p.ID,
			Name:          p.Name,
			SKU:           p.SKU,
			StockQuantity: p.StockQuantity,
			ReorderLevel:  p.ReorderLevel,
		})
	}
	return items, nil
}

// LowStockReport genera el reporte de reposición en PDF.
func (uc *StockUseCase) LowStockReport(ctx context.Context) ([]byte, error) {
	products, err := uc.productRepo.ListLowStock(ctx)
	if err != nil {
		return nil, err
	}
	return uc.pdfGen.GenerateLowStockReport(ctx, products, time.Now())
}

func toLedgerProductResponse(p *entity.Product) *dto.ProductResponse {
	if p == nil {
		return nil
	}
	return &dto.ProductResponse{
		ID:            p.ID,
		SKU:           p.SKU,
		Name:          p.Name,
		Description:   p.Description,
		Price:         p.Price,
		StockQuantity: p.StockQuantity,
		ReorderLevel:  p.ReorderLevel,
		NeedsReorder:  p.NeedsReorder(),
		CategoryID:    p.CategoryID,
		SupplierID:    p.SupplierID,
		CreatedAt:     p.CreatedAt,
		UpdatedAt:     p.UpdatedAt,
	}
}
