package usecase

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/tu-usuario/warehouse-api/internal/application/dto"
	"github.com/tu-usuario/warehouse-api/internal/application/inventory"
	"github.com/tu-usuario/warehouse-api/internal/domain"
	"github.com/tu-usuario/warehouse-api/internal/domain/entity"
	"github.com/tu-usuario/warehouse-api/internal/domain/repository"
)

// defaultReorderLevel umbral de reposición cuando la petición no lo informa.
const defaultReorderLevel = 10

// ProductUseCase casos de uso CRUD para productos. StockQuantity no se
// modifica por aquí: el stock solo cambia vía el ledger de movimientos.
type ProductUseCase struct {
	repo         repository.ProductRepository
	categoryRepo repository.CategoryRepository
	supplierRepo repository.SupplierRepository
	txRunner     inventory.TxRunner
}

// NewProductUseCase construye el caso de uso.
func NewProductUseCase(
	repo repository.ProductRepository,
	categoryRepo repository.CategoryRepository,
	supplierRepo repository.SupplierRepository,
	txRunner inventory.TxRunner,
) *ProductUseCase {
	return &ProductUseCase{
		repo:         repo,
		categoryRepo: categoryRepo,
		supplierRepo: supplierRepo,
		txRunner:     txRunner,
	}
}

// Create crea un producto. Si el stock inicial es mayor a cero registra el
// movimiento initial_stock en la misma transacción, así el invariante
// stock == suma de movimientos se cumple desde la creación.
func (uc *ProductUseCase) Create(ctx context.Context, in dto.CreateProductRequest) (*dto.ProductWithRelations, error) {
	if !in.Price.GreaterThan(decimal.Zero) {
		return nil, domain.ErrInvalidInput
	}
	reorderLevel := defaultReorderLevel
	if in.ReorderLevel != nil {
		reorderLevel = *in.ReorderLevel
	}
	if in.StockQuantity < 0 || reorderLevel < 0 {
		return nil, domain.ErrInvalidInput
	}
	sku := NormalizeSKU(in.SKU)
	if sku == "" {
		return nil, domain.ErrInvalidInput
	}

	existing, err := uc.repo.GetBySKU(ctx, sku)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, domain.ErrDuplicate
	}
	if err := uc.checkReferences(ctx, in.CategoryID, in.SupplierID); err != nil {
		return nil, err
	}

	now := time.Now()
	product := &entity.Product{
		ID:            uuid.New().String(),
		SKU:           sku,
		Name:          in.Name,
		Description:   in.Description,
		Price:         in.Price,
		StockQuantity: in.StockQuantity,
		ReorderLevel:  reorderLevel,
		CategoryID:    in.CategoryID,
		SupplierID:    in.SupplierID,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	err = uc.txRunner.Run(ctx, func(
		productRepo repository.ProductRepository,
		movementRepo repository.StockMovementRepository,
	) error {
		if err := productRepo.Create(ctx, product); err != nil {
			return err
		}
		if product.StockQuantity > 0 {
			return movementRepo.Create(ctx, &entity.StockMovement{
				ProductID: product.ID,
				Quantity:  product.StockQuantity,
				Type:      entity.MovementTypeInitialStock,
				Notes:     "stock inicial",
				CreatedAt: now,
			})
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return uc.withRelations(ctx, product)
}

// GetByID obtiene un producto con su categoría y proveedor embebidos.
func (uc *ProductUseCase) GetByID(ctx context.Context, id string) (*dto.ProductWithRelations, error) {
	product, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, domain.ErrNotFound
	}
	return uc.withRelations(ctx, product)
}

// List lista productos con filtros opcionales (categoría, proveedor, búsqueda
// por subcadena en name/description/sku) y paginación.
func (uc *ProductUseCase) List(ctx context.Context, filter repository.ProductFilter) (*dto.ProductListResponse, error) {
	list, err := uc.repo.List(ctx, filter)
	if err != nil {
		return nil, err
	}

	// Cache por listado: varias filas suelen compartir categoría/proveedor.
	categories := map[string]*dto.CategoryResponse{}
	suppliers := map[string]*dto.SupplierResponse{}

	items := make([]dto.ProductWithRelations, 0, len(list))
	for _, p := range list {
		item := dto.ProductWithRelations{ProductResponse: *toProductResponse(p)}
		if p.CategoryID != "" {
			if _, ok := categories[p.CategoryID]; !ok {
				c, err := uc.categoryRepo.GetByID(ctx, p.CategoryID)
				if err != nil {
					return nil, err
				}
				categories[p.CategoryID] = toCategoryResponse(c)
			}
			item.Category = categories[p.CategoryID]
		}
		if p.SupplierID != "" {
			if _, ok := suppliers[p.SupplierID]; !ok {
				s, err := uc.supplierRepo.GetByID(ctx, p.SupplierID)
				if err != nil {
					return nil, err
				}
				suppliers[p.SupplierID] = toSupplierResponse(s)
			}
			item.Supplier = suppliers[p.SupplierID]
		}
		items = append(items, item)
	}
	return &dto.ProductListResponse{
		Items: items,
		Page:  dto.PageResponse{Limit: filter.Limit, Offset: filter.Offset},
	}, nil
}

// Update actualiza un producto (parcial). El SKU mantiene su unicidad y el
// stock no es actualizable: se maneja vía movimientos.
func (uc *ProductUseCase) Update(ctx context.Context, id string, in dto.UpdateProductRequest) (*dto.ProductWithRelations, error) {
	product, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, domain.ErrNotFound
	}

	if in.SKU != nil {
		sku := NormalizeSKU(*in.SKU)
		if sku == "" {
			return nil, domain.ErrInvalidInput
		}
		if sku != product.SKU {
			existing, err := uc.repo.GetBySKU(ctx, sku)
			if err != nil {
				return nil, err
			}
			if existing != nil && existing.ID != id {
				return nil, domain.ErrDuplicate
			}
		}
		product.SKU = sku
	}
	if in.Name != nil {
		if *in.Name == "" {
			return nil, domain.ErrInvalidInput
		}
		product.Name = *in.Name
	}
	if in.Description != nil {
		product.Description = *in.Description
	}
	if in.Price != nil {
		if !in.Price.GreaterThan(decimal.Zero) {
			return nil, domain.ErrInvalidInput
		}
		product.Price = *in.Price
	}
	if in.ReorderLevel != nil {
		if *in.ReorderLevel < 0 {
			return nil, domain.ErrInvalidInput
		}
		product.ReorderLevel = *in.ReorderLevel
	}
	newCategory := product.CategoryID
	if in.CategoryID != nil {
		newCategory = *in.CategoryID
	}
	newSupplier := product.SupplierID
	if in.SupplierID != nil {
		newSupplier = *in.SupplierID
	}
	if err := uc.checkReferences(ctx, newCategory, newSupplier); err != nil {
		return nil, err
	}
	product.CategoryID = newCategory
	product.SupplierID = newSupplier

	product.UpdatedAt = time.Now()
	if err := uc.repo.Update(ctx, product); err != nil {
		return nil, err
	}
	return uc.withRelations(ctx, product)
}

// Delete elimina un producto. Sus movimientos se eliminan en cascada
// (ON DELETE CASCADE en stock_movements).
func (uc *ProductUseCase) Delete(ctx context.Context, id string) error {
	product, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if product == nil {
		return domain.ErrNotFound
	}
	return uc.repo.Delete(ctx, id)
}

// checkReferences valida que categoría y proveedor existan si vienen informados.
func (uc *ProductUseCase) checkReferences(ctx context.Context, categoryID, supplierID string) error {
	if categoryID != "" {
		category, err := uc.categoryRepo.GetByID(ctx, categoryID)
		if err != nil {
			return err
		}
		if category == nil {
			return domain.ErrConstraintViolation
		}
	}
	if supplierID != "" {
		supplier, err := uc.supplierRepo.GetByID(ctx, supplierID)
		if err != nil {
			return err
		}
		if supplier == nil {
			return domain.ErrConstraintViolation
		}
	}
	return nil
}

func (uc *ProductUseCase) withRelations(ctx context.Context, p *entity.Product) (*dto.ProductWithRelations, error) {
	out := &dto.ProductWithRelations{ProductResponse: *toProductResponse(p)}
	if p.CategoryID != "" {
		category, err := uc.categoryRepo.GetByID(ctx, p.CategoryID)
		if err != nil {
			return nil, err
		}
		out.Category = toCategoryResponse(category)
	}
	if p.SupplierID != "" {
		supplier, err := uc.supplierRepo.GetByID(ctx, p.SupplierID)
		if err != nil {
			return nil, err
		}
		out.Supplier = toSupplierResponse(supplier)
	}
	return out, nil
}

func toProductResponse(p *entity.Product) *dto.ProductResponse {
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
