package entity

import "time"

// Tipos de movimiento de stock aceptados por la API.
const (
	MovementTypeRestock    = "restock"
	MovementTypeSale       = "sale"
	MovementTypeAdjustment = "adjustment"
	MovementTypeCorrection = "correction"

	// MovementTypeInitialStock se escribe internamente al crear un producto
	// con stock inicial mayor a cero. No se acepta como entrada de la API.
	MovementTypeInitialStock = "initial_stock"
)

// ValidMovementType verifica que el tipo pertenezca al conjunto cerrado de la API.
func ValidMovementType(t string) bool {
	switch t {
	case MovementTypeRestock, MovementTypeSale, MovementTypeAdjustment, MovementTypeCorrection:
		return true
	}
	return false
}

// StockMovement es una entrada del ledger de stock: registro inmutable de
// cada cambio de cantidad. Nunca se actualiza ni se elimina individualmente;
// es la fuente de verdad de cómo se llegó al StockQuantity actual.
// El ID es secuencial (BIGSERIAL) para desempatar movimientos con el mismo timestamp.
type StockMovement struct {
	ID        int64
	ProductID string
	Quantity  int // positivo entrada, negativo salida
	Type      string
	Notes     string
	CreatedAt time.Time
}
