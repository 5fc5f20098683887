package dto

import "time"

// AdjustStockRequest entrada para ajustar el stock de un producto.
// Quantity positivo entra stock, negativo saca; nunca cero.
type AdjustStockRequest struct {
	Quantity     int    `json:"quantity" validate:"required"`
	MovementType string `json:"movement_type" validate:"required,oneof=restock sale adjustment correction"`
	Notes        string `json:"notes"`
}

// StockMovementResponse salida de un movimiento del ledger.
type StockMovementResponse struct {
	ID           int64     `json:"id"`
	ProductID    string    `json:"product_id"`
	Quantity     int       `json:"quantity"`
	MovementType string    `json:"movement_type"`
	Notes        string    `json:"notes,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}

// StockHistoryResponse historial paginado de movimientos de un producto.
type StockHistoryResponse struct {
	Items []StockMovementResponse `json:"items"`
	Page  PageResponse            `json:"page"`
}
