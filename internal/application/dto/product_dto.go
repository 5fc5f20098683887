package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// CreateProductRequest entrada para crear un producto.
// StockQuantity es el stock inicial: si es mayor a cero se registra un
// movimiento initial_stock en la misma transacción.
// ReorderLevel omitido toma el umbral por defecto (10).
type CreateProductRequest struct {
	SKU           string          `json:"sku" validate:"required,min=1,max=100"`
	Name          string          `json:"name" validate:"required,min=1,max=200"`
	Description   string          `json:"description"`
	Price         decimal.Decimal `json:"price"`
	StockQuantity int             `json:"stock_quantity" validate:"min=0"`
	ReorderLevel  *int            `json:"reorder_level" validate:"omitempty,min=0"`
	CategoryID    string          `json:"category_id"`
	SupplierID    string          `json:"supplier_id"`
}

// UpdateProductRequest entrada para actualizar un producto (parcial).
// No incluye StockQuantity: el stock solo cambia vía movimientos del ledger.
type UpdateProductRequest struct {
	SKU          *string          `json:"sku" validate:"omitempty,min=1,max=100"`
	Name         *string          `json:"name" validate:"omitempty,min=1,max=200"`
	Description  *string          `json:"description"`
	Price        *decimal.Decimal `json:"price"`
	ReorderLevel *int             `json:"reorder_level" validate:"omitempty,min=0"`
	CategoryID   *string          `json:"category_id"`
	SupplierID   *string          `json:"supplier_id"`
}

// ProductResponse salida de un producto.
type ProductResponse struct {
	ID            string          `json:"id"`
	SKU           string          `json:"sku"`
	Name          string          `json:"name"`
	Description   string          `json:"description"`
	Price         decimal.Decimal `json:"price"`
	StockQuantity int             `json:"stock_quantity"`
	ReorderLevel  int             `json:"reorder_level"`
	NeedsReorder  bool            `json:"needs_reorder"`
	CategoryID    string          `json:"category_id,omitempty"`
	SupplierID    string          `json:"supplier_id,omitempty"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

// ProductWithRelations producto con su categoría y proveedor embebidos.
type ProductWithRelations struct {
	ProductResponse
	Category *CategoryResponse `json:"category,omitempty"`
	Supplier *SupplierResponse `json:"supplier,omitempty"`
}

// ProductListResponse lista paginada de productos.
type ProductListResponse struct {
	Items []ProductWithRelations `json:"items"`
	Page  PageResponse           `json:"page"`
}

// LowStockProductResponse producto que necesita reposición.
type LowStockProductResponse struct {
	ID            string `json:"id"`
	Name          string `json:"name"`
	SKU           string `json:"sku"`
	StockQuantity int    `json:"stock_quantity"`
	ReorderLevel  int    `json:"reorder_level"`
}
