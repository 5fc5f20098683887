package inventory

import (
	"context"
	"time"

	"github.com/tu-usuario/warehouse-api/internal/domain/entity"
	"github.com/tu-usuario/warehouse-api/internal/domain/repository"
)

// TxRunner ejecuta una función dentro de una transacción de BD, pasando
// repositorios atados a esa tx. Garantiza atomicidad para el ledger:
// la mutación de stock y el movimiento de auditoría se confirman juntos o ninguno.
type TxRunner interface {
	Run(ctx context.Context, fn func(
		productRepo repository.ProductRepository,
		movementRepo repository.StockMovementRepository,
	) error) error
}

// ReportPDFGenerator genera la representación PDF del reporte de reposición.
type ReportPDFGenerator interface {
	GenerateLowStockReport(ctx context.Context, products []*entity.Product, generatedAt time.Time) ([]byte, error)
}
