package inventory_test

import (
	"context"
	"sort"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tu-usuario/warehouse-api/internal/application/dto"
	"github.com/tu-usuario/warehouse-api/internal/application/inventory"
	"github.com/tu-usuario/warehouse-api/internal/domain"
	"github.com/tu-usuario/warehouse-api/internal/domain/entity"
	"github.com/tu-usuario/warehouse-api/internal/domain/repository"
)

// ──────────────────────────────────────────────────────────────────────────────
// Fakes en memoria
// ──────────────────────────────────────────────────────────────────────────────

type fakeProductRepo struct {
	products map[string]*entity.Product
}

func newFakeProductRepo() *fakeProductRepo {
	return &fakeProductRepo{products: map[string]*entity.Product{}}
}

func (r *fakeProductRepo) Create(_ context.Context, p *entity.Product) error {
	cp := *p
	r.products[p.ID] = &cp
	return nil
}

func (r *fakeProductRepo) GetByID(_ context.Context, id string) (*entity.Product, error) {
	p, ok := r.products[id]
	if !ok {
		return nil, nil
	}
	cp := *p
	return &cp, nil
}

func (r *fakeProductRepo) GetBySKU(_ context.Context, sku string) (*entity.Product, error) {
	for _, p := range r.products {
		if p.SKU == sku {
			cp := *p
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *fakeProductRepo) GetForUpdate(ctx context.Context, id string) (*entity.Product, error) {
	return r.GetByID(ctx, id)
}

func (r *fakeProductRepo) Update(_ context.Context, p *entity.Product) error {
	cp := *p
	r.products[p.ID] = &cp
	return nil
}

func (r *fakeProductRepo) UpdateStock(_ context.Context, id string, quantity int) error {
	if p, ok := r.products[id]; ok {
		p.StockQuantity = quantity
	}
	return nil
}

func (r *fakeProductRepo) List(_ context.Context, _ repository.ProductFilter) ([]*entity.Product, error) {
	var list []*entity.Product
	for _, p := range r.products {
		cp := *p
		list = append(list, &cp)
	}
	return list, nil
}

func (r *fakeProductRepo) ListLowStock(_ context.Context) ([]*entity.Product, error) {
	var list []*entity.Product
	for _, p := range r.products {
		if p.StockQuantity <= p.ReorderLevel {
			cp := *p
			list = append(list, &cp)
		}
	}
	// Mismo orden que la consulta real: déficit ascendente, nombre como desempate
	sort.Slice(list, func(i, j int) bool {
		di := list[i].StockQuantity - list[i].ReorderLevel
		dj := list[j].StockQuantity - list[j].ReorderLevel
		if di != dj {
			return di < dj
		}
		return list[i].Name < list[j].Name
	})
	return list, nil
}

func (r *fakeProductRepo) Delete(_ context.Context, id string) error {
	delete(r.products, id)
	return nil
}

type fakeMovementRepo struct {
	movements []*entity.StockMovement
	nextID    int64
}

func newFakeMovementRepo() *fakeMovementRepo {
	return &fakeMovementRepo{nextID: 1}
}

func (r *fakeMovementRepo) Create(_ context.Context, m *entity.StockMovement) error {
	cp := *m
	cp.ID = r.nextID
	r.nextID++
	r.movements = append(r.movements, &cp)
	m.ID = cp.ID
	return nil
}

func (r *fakeMovementRepo) ListByProduct(_ context.Context, productID string, limit, offset int) ([]*entity.StockMovement, error) {
	var all []*entity.StockMovement
	for _, m := range r.movements {
		if m.ProductID == productID {
			cp := *m
			all = append(all, &cp)
		}
	}
	// created_at DESC con desempate por id DESC, igual que la consulta real
	sort.Slice(all, func(i, j int) bool {
		if !all[i].CreatedAt.Equal(all[j].CreatedAt) {
			return all[i].CreatedAt.After(all[j].CreatedAt)
		}
		return all[i].ID > all[j].ID
	})
	if offset >= len(all) {
		return nil, nil
	}
	all = all[offset:]
	if limit < len(all) {
		all = all[:limit]
	}
	return all, nil
}

// fakeTxRunner ejecuta el closure sobre los mismos fakes y simula el rollback
// restaurando el estado previo si el closure falla.
type fakeTxRunner struct {
	products  *fakeProductRepo
	movements *fakeMovementRepo
}

func (tx *fakeTxRunner) Run(ctx context.Context, fn func(repository.ProductRepository, repository.StockMovementRepository) error) error {
	snapProducts := map[string]*entity.Product{}
	for id, p := range tx.products.products {
		cp := *p
		snapProducts[id] = &cp
	}
	snapMovements := make([]*entity.StockMovement, len(tx.movements.movements))
	copy(snapMovements, tx.movements.movements)
	snapNextID := tx.movements.nextID

	if err := fn(tx.products, tx.movements); err != nil {
		tx.products.products = snapProducts
		tx.movements.movements = snapMovements
		tx.movements.nextID = snapNextID
		return err
	}
	return nil
}

// ──────────────────────────────────────────────────────────────────────────────
// Helpers
// ──────────────────────────────────────────────────────────────────────────────

func buildStockUseCase() (*inventory.StockUseCase, *fakeProductRepo, *fakeMovementRepo) {
	products := newFakeProductRepo()
	movements := newFakeMovementRepo()
	tx := &fakeTxRunner{products: products, movements: movements}
	return inventory.NewStockUseCase(tx, products, movements, nil), products, movements
}

func seedProduct(t *testing.T, repo *fakeProductRepo, id string, stock, reorder int) {
	t.Helper()
	now := time.Now()
	err := repo.Create(context.Background(), &entity.Product{
		ID:            id,
		SKU:           "SKU-" + id,
		Name:          "Producto " + id,
		Price:         decimal.NewFromInt(100),
		StockQuantity: stock,
		ReorderLevel:  reorder,
		CreatedAt:     now,
		UpdatedAt:     now,
	})
	require.NoError(t, err)
}

func adjust(quantity int, movementType string) dto.AdjustStockRequest {
	return dto.AdjustStockRequest{Quantity: quantity, MovementType: movementType}
}

// ──────────────────────────────────────────────────────────────────────────────
// AdjustStock
// ──────────────────────────────────────────────────────────────────────────────

func TestAdjustStock_EntradaYSalida(t *testing.T) {
	uc, products, _ := buildStockUseCase()
	seedProduct(t, products, "p1", 0, 5)

	ctx := context.Background()
	out, err := uc.AdjustStock(ctx, "p1", adjust(10, entity.MovementTypeRestock))
	require.NoError(t, err)
	assert.Equal(t, 10, out.StockQuantity)

	out, err = uc.AdjustStock(ctx, "p1", adjust(-3, entity.MovementTypeSale))
	require.NoError(t, err)
	assert.Equal(t, 7, out.StockQuantity, "10 - 3 debe dejar stock en 7")
}

// El invariante del ledger: el stock siempre es la suma de sus movimientos.
func TestAdjustStock_StockEsSumaDeMovimientos(t *testing.T) {
	uc, products, movements := buildStockUseCase()
	seedProduct(t, products, "p1", 0, 0)

	ctx := context.Background()
	deltas := []struct {
		quantity int
		mtype    string
	}{
		{10, entity.MovementTypeRestock},
		{-4, entity.MovementTypeSale},
		{7, entity.MovementTypeRestock},
		{-2, entity.MovementTypeAdjustment},
		{1, entity.MovementTypeCorrection},
	}
	for _, d := range deltas {
		_, err := uc.AdjustStock(ctx, "p1", adjust(d.quantity, d.mtype))
		require.NoError(t, err)
	}

	sum := 0
	for _, m := range movements.movements {
		sum += m.Quantity
	}
	p, err := products.GetByID(ctx, "p1")
	require.NoError(t, err)
	assert.Equal(t, sum, p.StockQuantity,
		"el stock debe ser exactamente la suma de los movimientos del ledger")
	assert.Equal(t, 12, p.StockQuantity)
}

func TestAdjustStock_StockInsuficiente_NoCambiaNada(t *testing.T) {
	uc, products, movements := buildStockUseCase()
	seedProduct(t, products, "p1", 10, 0)

	ctx := context.Background()
	_, err := uc.AdjustStock(ctx, "p1", adjust(-3, entity.MovementTypeSale))
	require.NoError(t, err)

	// Sacar 8 de 7 debe fallar sin tocar stock ni ledger
	_, err = uc.AdjustStock(ctx, "p1", adjust(-8, entity.MovementTypeSale))
	assert.ErrorIs(t, err, domain.ErrInsufficientStock)

	p, err := products.GetByID(ctx, "p1")
	require.NoError(t, err)
	assert.Equal(t, 7, p.StockQuantity, "el stock debe quedar como estaba antes del ajuste fallido")
	assert.Len(t, movements.movements, 1, "el ajuste fallido no debe dejar movimiento en el ledger")
}

func TestAdjustStock_CantidadCero_Invalida(t *testing.T) {
	uc, products, _ := buildStockUseCase()
	seedProduct(t, products, "p1", 10, 0)

	_, err := uc.AdjustStock(context.Background(), "p1", adjust(0, entity.MovementTypeRestock))
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestAdjustStock_TipoDeMovimientoInvalido(t *testing.T) {
	uc, products, _ := buildStockUseCase()
	seedProduct(t, products, "p1", 10, 0)

	_, err := uc.AdjustStock(context.Background(), "p1", adjust(5, "transfer"))
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	// initial_stock es interno: no se acepta desde fuera
	_, err = uc.AdjustStock(context.Background(), "p1", adjust(5, entity.MovementTypeInitialStock))
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestAdjustStock_ProductoInexistente(t *testing.T) {
	uc, _, _ := buildStockUseCase()

	_, err := uc.AdjustStock(context.Background(), "no-existe", adjust(5, entity.MovementTypeRestock))
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

// Bajar el stock exactamente a cero es válido.
func TestAdjustStock_VaciarStockEsValido(t *testing.T) {
	uc, products, _ := buildStockUseCase()
	seedProduct(t, products, "p1", 5, 0)

	out, err := uc.AdjustStock(context.Background(), "p1", adjust(-5, entity.MovementTypeSale))
	require.NoError(t, err)
	assert.Equal(t, 0, out.StockQuantity)
}

// ──────────────────────────────────────────────────────────────────────────────
// GetStockHistory
// ──────────────────────────────────────────────────────────────────────────────

func TestGetStockHistory_MasRecientesPrimero(t *testing.T) {
	uc, products, _ := buildStockUseCase()
	seedProduct(t, products, "p1", 0, 0)

	ctx := context.Background()
	for _, q := range []int{10, -2, 5} {
		mtype := entity.MovementTypeRestock
		if q < 0 {
			mtype = entity.MovementTypeSale
		}
		_, err := uc.AdjustStock(ctx, "p1", adjust(q, mtype))
		require.NoError(t, err)
	}

	out, err := uc.GetStockHistory(ctx, "p1", 20, 0)
	require.NoError(t, err)
	require.Len(t, out.Items, 3)

	// El último ajuste aparece primero; con timestamps iguales desempata el id
	assert.Equal(t, 5, out.Items[0].Quantity)
	assert.Equal(t, -2, out.Items[1].Quantity)
	assert.Equal(t, 10, out.Items[2].Quantity)
	for i := 1; i < len(out.Items); i++ {
		assert.Greater(t, out.Items[i-1].ID, out.Items[i].ID,
			"los IDs deben decrecer: orden de inserción inverso")
	}
}

func TestGetStockHistory_Paginacion(t *testing.T) {
	uc, products, _ := buildStockUseCase()
	seedProduct(t, products, "p1", 0, 0)

	ctx := context.Background()
	for i := 0; i < 5; i++ {
		_, err := uc.AdjustStock(ctx, "p1", adjust(1, entity.MovementTypeRestock))
		require.NoError(t, err)
	}

	out, err := uc.GetStockHistory(ctx, "p1", 2, 0)
	require.NoError(t, err)
	assert.Len(t, out.Items, 2)
	assert.Equal(t, 2, out.Page.Limit)

	out, err = uc.GetStockHistory(ctx, "p1", 2, 4)
	require.NoError(t, err)
	assert.Len(t, out.Items, 1, "la última página debe traer solo el resto")
}

func TestGetStockHistory_ProductoInexistente(t *testing.T) {
	uc, _, _ := buildStockUseCase()

	_, err := uc.GetStockHistory(context.Background(), "no-existe", 20, 0)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestGetStockHistory_ProductoSinMovimientos(t *testing.T) {
	uc, products, _ := buildStockUseCase()
	seedProduct(t, products, "p1", 0, 0)

	out, err := uc.GetStockHistory(context.Background(), "p1", 20, 0)
	require.NoError(t, err)
	assert.Empty(t, out.Items)
}

// ──────────────────────────────────────────────────────────────────────────────
// ListLowStock
// ──────────────────────────────────────────────────────────────────────────────

func TestListLowStock_IgualdadCuentaComoBajo(t *testing.T) {
	uc, products, _ := buildStockUseCase()
	seedProduct(t, products, "critico", 1, 10)  // déficit -9
	seedProduct(t, products, "enUmbral", 5, 5)  // déficit 0: igual cuenta
	seedProduct(t, products, "sobrado", 20, 10) // fuera del reporte

	out, err := uc.ListLowStock(context.Background())
	require.NoError(t, err)
	require.Len(t, out, 2, "stock == umbral debe contar como bajo; stock > umbral no")

	// Más crítico primero
	assert.Equal(t, "critico", out[0].ID)
	assert.Equal(t, "enUmbral", out[1].ID)
}

func TestListLowStock_SinProductosBajos(t *testing.T) {
	uc, products, _ := buildStockUseCase()
	seedProduct(t, products, "p1", 50, 10)

	out, err := uc.ListLowStock(context.Background())
	require.NoError(t, err)
	assert.Empty(t, out)
}
