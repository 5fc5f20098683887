package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Product representa un producto o SKU del inventario de bodega.
// StockQuantity es el valor denormalizado del ledger: siempre debe ser igual
// a la suma de los StockMovement del producto. Solo se modifica vía movimientos.
type Product struct {
	ID            string
	SKU           string // código único, normalizado en mayúsculas
	Name          string
	Description   string
	Price         decimal.Decimal // precio unitario de venta
	StockQuantity int
	ReorderLevel  int    // umbral de reposición
	CategoryID    string // vacío si no tiene categoría
	SupplierID    string // vacío si no tiene proveedor
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// NeedsReorder indica si el stock está en o por debajo del umbral de reposición.
func (p *Product) NeedsReorder() bool {
	return p.StockQuantity <= p.ReorderLevel
}
