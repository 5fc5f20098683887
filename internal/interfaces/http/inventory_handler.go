package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/tu-usuario/warehouse-api/internal/application/dto"
	"github.com/tu-usuario/warehouse-api/internal/application/inventory"
)

// InventoryHandler maneja las peticiones HTTP del ledger de stock.
type InventoryHandler struct {
	uc *inventory.StockUseCase
}

// NewInventoryHandler construye el handler.
func NewInventoryHandler(uc *inventory.StockUseCase) *InventoryHandler {
	return &InventoryHandler{uc: uc}
}

// AdjustStock godoc
// @Summary      Ajustar stock de un producto
// @Description  Aplica un delta (positivo entra, negativo saca) y registra el
// @Description  movimiento en el ledger, en una sola transacción.
// @Tags         inventory
// @Accept       json
// @Produce      json
// @Param        id    path  string  true  "ID del producto"
// @Param        body  body  dto.AdjustStockRequest  true  "quantity, movement_type, notes"
// @Success      200   {object}  dto.ProductResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      422   {object}  dto.ErrorResponse
// @Router       /api/v1/products/{id}/adjust-stock [post]
func (h *InventoryHandler) AdjustStock(c *fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return badRequest(c, "MISSING_ID", "id es requerido")
	}
	var in dto.AdjustStockRequest
	if err := c.BodyParser(&in); err != nil {
		return badRequest(c, "INVALID_BODY", "cuerpo inválido")
	}
	out, err := h.uc.AdjustStock(c.Context(), id, in)
	if err != nil {
		return writeDomainError(c, err)
	}
	return c.JSON(out)
}

// StockHistory godoc
// @Summary      Historial de movimientos de un producto
// @Description  Más recientes primero; desempate por orden de inserción.
// @Tags         inventory
// @Produce      json
// @Param        id      path   string  true   "ID del producto"
// @Param        limit   query  int     false  "Límite"   default(20)
// @Param        offset  query  int     false  "Offset"   default(0)
// @Success      200     {object}  dto.StockHistoryResponse
// @Failure      404     {object}  dto.ErrorResponse
// @Router       /api/v1/products/{id}/stock-history [get]
func (h *InventoryHandler) StockHistory(c *fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return badRequest(c, "MISSING_ID", "id es requerido")
	}
	out, err := h.uc.GetStockHistory(c.Context(), id, pageLimit(c), pageOffset(c))
	if err != nil {
		return writeDomainError(c, err)
	}
	return c.JSON(out)
}

// LowStock godoc
// @Summary      Productos en o bajo su umbral de reposición
// @Description  Ordenados del más crítico al menos crítico.
// @Tags         inventory
// @Produce      json
// @Success      200  {array}  dto.LowStockProductResponse
// @Router       /api/v1/products/low-stock [get]
func (h *InventoryHandler) LowStock(c *fiber.Ctx) error {
	out, err := h.uc.ListLowStock(c.Context())
	if err != nil {
		return writeDomainError(c, err)
	}
	return c.JSON(out)
}

// LowStockReport godoc
// @Summary      Reporte PDF de reposición de stock
// @Tags         inventory
// @Produce      application/pdf
// @Success      200  {file}  binary
// @Router       /api/v1/products/low-stock/report [get]
func (h *InventoryHandler) LowStockReport(c *fiber.Ctx) error {
	pdfBytes, err := h.uc.LowStockReport(c.Context())
	if err != nil {
		return writeDomainError(c, err)
	}
	c.Set(fiber.HeaderContentType, "application/pdf")
	c.Set(fiber.HeaderContentDisposition, `attachment; filename="reporte-reposicion.pdf"`)
	return c.Send(pdfBytes)
}
