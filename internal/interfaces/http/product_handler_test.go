package http_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tu-usuario/warehouse-api/internal/application/inventory"
	"github.com/tu-usuario/warehouse-api/internal/application/usecase"
	"github.com/tu-usuario/warehouse-api/internal/domain/entity"
	"github.com/tu-usuario/warehouse-api/internal/domain/repository"
	apphttp "github.com/tu-usuario/warehouse-api/internal/interfaces/http"
)

// ──────────────────────────────────────────────────────────────────────────────
// Fakes en memoria (solo lo que el router necesita)
// ──────────────────────────────────────────────────────────────────────────────

type stubProductRepo struct {
	products map[string]*entity.Product
}

func (r *stubProductRepo) Create(_ context.Context, p *entity.Product) error {
	cp := *p
	r.products[p.ID] = &cp
	return nil
}

func (r *stubProductRepo) GetByID(_ context.Context, id string) (*entity.Product, error) {
	p, ok := r.products[id]
	if !ok {
		return nil, nil
	}
	cp := *p
	return &cp, nil
}

func (r *stubProductRepo) GetBySKU(_ context.Context, sku string) (*entity.Product, error) {
	for _, p := range r.products {
		if p.SKU == sku {
			cp := *p
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *stubProductRepo) GetForUpdate(ctx context.Context, id string) (*entity.Product, error) {
	return r.GetByID(ctx, id)
}

func (r *stubProductRepo) Update(_ context.Context, p *entity.Product) error {
	cp := *p
	r.products[p.ID] = &cp
	return nil
}

func (r *stubProductRepo) UpdateStock(_ context.Context, id string, quantity int) error {
	if p, ok := r.products[id]; ok {
		p.StockQuantity = quantity
	}
	return nil
}

func (r *stubProductRepo) List(_ context.Context, filter repository.ProductFilter) ([]*entity.Product, error) {
	var list []*entity.Product
	for _, p := range r.products {
		if filter.CategoryID != "" && p.CategoryID != filter.CategoryID {
			continue
		}
		if filter.SupplierID != "" && p.SupplierID != filter.SupplierID {
			continue
		}
		cp := *p
		list = append(list, &cp)
	}
	return list, nil
}

func (r *stubProductRepo) ListLowStock(_ context.Context) ([]*entity.Product, error) {
	var list []*entity.Product
	for _, p := range r.products {
		if p.StockQuantity <= p.ReorderLevel {
			cp := *p
			list = append(list, &cp)
		}
	}
	return list, nil
}

func (r *stubProductRepo) Delete(_ context.Context, id string) error {
	delete(r.products, id)
	return nil
}

type stubMovementRepo struct {
	movements []*entity.StockMovement
	nextID    int64
}

func (r *stubMovementRepo) Create(_ context.Context, m *entity.StockMovement) error {
	r.nextID++
	cp := *m
	cp.ID = r.nextID
	r.movements = append(r.movements, &cp)
	m.ID = cp.ID
	return nil
}

func (r *stubMovementRepo) ListByProduct(_ context.Context, productID string, _, _ int) ([]*entity.StockMovement, error) {
	var list []*entity.StockMovement
	for _, m := range r.movements {
		if m.ProductID == productID {
			cp := *m
			list = append(list, &cp)
		}
	}
	return list, nil
}

type stubCategoryRepo struct {
	categories map[string]*entity.Category
}

func (r *stubCategoryRepo) Create(_ context.Context, c *entity.Category) error {
	cp := *c
	r.categories[c.ID] = &cp
	return nil
}

func (r *stubCategoryRepo) GetByID(_ context.Context, id string) (*entity.Category, error) {
	c, ok := r.categories[id]
	if !ok {
		return nil, nil
	}
	cp := *c
	return &cp, nil
}

func (r *stubCategoryRepo) GetByName(_ context.Context, name string) (*entity.Category, error) {
	for _, c := range r.categories {
		if c.Name == name {
			cp := *c
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *stubCategoryRepo) Update(_ context.Context, c *entity.Category) error {
	cp := *c
	r.categories[c.ID] = &cp
	return nil
}

func (r *stubCategoryRepo) List(_ context.Context, _, _ int) ([]*entity.Category, error) {
	return nil, nil
}

func (r *stubCategoryRepo) Delete(_ context.Context, id string) error {
	delete(r.categories, id)
	return nil
}

type stubSupplierRepo struct {
	suppliers map[string]*entity.Supplier
}

func (r *stubSupplierRepo) Create(_ context.Context, s *entity.Supplier) error {
	cp := *s
	r.suppliers[s.ID] = &cp
	return nil
}

func (r *stubSupplierRepo) GetByID(_ context.Context, id string) (*entity.Supplier, error) {
	s, ok := r.suppliers[id]
	if !ok {
		return nil, nil
	}
	cp := *s
	return &cp, nil
}

func (r *stubSupplierRepo) GetByName(_ context.Context, name string) (*entity.Supplier, error) {
	for _, s := range r.suppliers {
		if s.Name == name {
			cp := *s
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *stubSupplierRepo) Update(_ context.Context, s *entity.Supplier) error {
	cp := *s
	r.suppliers[s.ID] = &cp
	return nil
}

func (r *stubSupplierRepo) List(_ context.Context, _, _ int) ([]*entity.Supplier, error) {
	return nil, nil
}

func (r *stubSupplierRepo) Delete(_ context.Context, id string) error {
	delete(r.suppliers, id)
	return nil
}

type stubTxRunner struct {
	products  *stubProductRepo
	movements *stubMovementRepo
}

func (tx *stubTxRunner) Run(_ context.Context, fn func(repository.ProductRepository, repository.StockMovementRepository) error) error {
	return fn(tx.products, tx.movements)
}

// ──────────────────────────────────────────────────────────────────────────────
// Helpers
// ──────────────────────────────────────────────────────────────────────────────

// buildTestApp construye la app Fiber completa con repos en memoria.
func buildTestApp() *fiber.App {
	products := &stubProductRepo{products: map[string]*entity.Product{}}
	movements := &stubMovementRepo{}
	categories := &stubCategoryRepo{categories: map[string]*entity.Category{}}
	suppliers := &stubSupplierRepo{suppliers: map[string]*entity.Supplier{}}
	tx := &stubTxRunner{products: products, movements: movements}

	productUC := usecase.NewProductUseCase(products, categories, suppliers, tx)
	categoryUC := usecase.NewCategoryUseCase(categories)
	supplierUC := usecase.NewSupplierUseCase(suppliers)
	stockUC := inventory.NewStockUseCase(tx, products, movements, nil)

	app := fiber.New()
	apphttp.Router(app, apphttp.RouterDeps{
		ProductUC:  productUC,
		CategoryUC: categoryUC,
		SupplierUC: supplierUC,
		StockUC:    stockUC,
	})
	return app
}

func doJSON(t *testing.T, app *fiber.App, method, path string, body any) *http.Response {
	t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

func decodeBody(t *testing.T, resp *http.Response) map[string]any {
	t.Helper()
	defer resp.Body.Close()
	var out map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return out
}

func createProduct(t *testing.T, app *fiber.App, sku string, stock int) string {
	t.Helper()
	resp := doJSON(t, app, http.MethodPost, "/api/v1/products", map[string]any{
		"sku":            sku,
		"name":           "Producto " + sku,
		"price":          "19.99",
		"stock_quantity": stock,
		"reorder_level":  5,
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	body := decodeBody(t, resp)
	id, _ := body["id"].(string)
	require.NotEmpty(t, id)
	return id
}

// ──────────────────────────────────────────────────────────────────────────────
// Products CRUD
// ──────────────────────────────────────────────────────────────────────────────

func TestProductHandler_Create_Retorna201(t *testing.T) {
	app := buildTestApp()
	id := createProduct(t, app, "HTTP-001", 10)
	assert.NotEmpty(t, id)
}

func TestProductHandler_Create_CuerpoInvalido_Retorna400(t *testing.T) {
	app := buildTestApp()

	req := httptest.NewRequest(http.MethodPost, "/api/v1/products", bytes.NewReader([]byte("{no es json")))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestProductHandler_Create_SKUDuplicado_Retorna422(t *testing.T) {
	app := buildTestApp()
	createProduct(t, app, "HTTP-002", 0)

	resp := doJSON(t, app, http.MethodPost, "/api/v1/products", map[string]any{
		"sku": "http-002", "name": "Duplicado", "price": "5.00",
	})
	defer resp.Body.Close()

	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
	raw, _ := io.ReadAll(resp.Body)
	assert.Contains(t, string(raw), "DUPLICATE")
}

func TestProductHandler_GetByID_NoEncontrado_Retorna404(t *testing.T) {
	app := buildTestApp()

	resp := doJSON(t, app, http.MethodGet, "/api/v1/products/no-existe", nil)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	raw, _ := io.ReadAll(resp.Body)
	assert.Contains(t, string(raw), "NOT_FOUND")
}

func TestProductHandler_Delete_Retorna204(t *testing.T) {
	app := buildTestApp()
	id := createProduct(t, app, "HTTP-003", 0)

	resp := doJSON(t, app, http.MethodDelete, "/api/v1/products/"+id, nil)
	resp.Body.Close()
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)

	resp = doJSON(t, app, http.MethodGet, "/api/v1/products/"+id, nil)
	resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

// ──────────────────────────────────────────────────────────────────────────────
// Ledger de stock
// ──────────────────────────────────────────────────────────────────────────────

func TestInventoryHandler_AdjustStock_Retorna200(t *testing.T) {
	app := buildTestApp()
	id := createProduct(t, app, "HTTP-004", 10)

	resp := doJSON(t, app, http.MethodPost, "/api/v1/products/"+id+"/adjust-stock", map[string]any{
		"quantity": -3, "movement_type": "sale",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	body := decodeBody(t, resp)
	assert.Equal(t, float64(7), body["stock_quantity"])
}

func TestInventoryHandler_AdjustStock_StockInsuficiente_Retorna422(t *testing.T) {
	app := buildTestApp()
	id := createProduct(t, app, "HTTP-005", 3)

	resp := doJSON(t, app, http.MethodPost, "/api/v1/products/"+id+"/adjust-stock", map[string]any{
		"quantity": -10, "movement_type": "sale",
	})
	defer resp.Body.Close()

	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
	raw, _ := io.ReadAll(resp.Body)
	assert.Contains(t, string(raw), "INSUFFICIENT_STOCK")
}

func TestInventoryHandler_AdjustStock_TipoInvalido_Retorna400(t *testing.T) {
	app := buildTestApp()
	id := createProduct(t, app, "HTTP-006", 3)

	resp := doJSON(t, app, http.MethodPost, "/api/v1/products/"+id+"/adjust-stock", map[string]any{
		"quantity": 1, "movement_type": "transfer",
	})
	resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestInventoryHandler_StockHistory_IncluyeStockInicial(t *testing.T) {
	app := buildTestApp()
	id := createProduct(t, app, "HTTP-007", 10)

	resp := doJSON(t, app, http.MethodGet, "/api/v1/products/"+id+"/stock-history", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	body := decodeBody(t, resp)
	items, ok := body["items"].([]any)
	require.True(t, ok)
	require.Len(t, items, 1, "la creación con stock inicial deja un movimiento")
	first := items[0].(map[string]any)
	assert.Equal(t, "initial_stock", first["movement_type"])
}

// La ruta estática low-stock no debe ser capturada por /:id.
func TestInventoryHandler_LowStock_Retorna200(t *testing.T) {
	app := buildTestApp()
	createProduct(t, app, "HTTP-008", 2) // reorder_level 5: queda bajo umbral

	resp := doJSON(t, app, http.MethodGet, "/api/v1/products/low-stock", nil)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var items []map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&items))
	require.Len(t, items, 1)
	assert.Equal(t, "HTTP-008", items[0]["sku"])
}

// ──────────────────────────────────────────────────────────────────────────────
// Subrecursos de categorías y proveedores
// ──────────────────────────────────────────────────────────────────────────────

func TestCategoryHandler_Products_CategoriaInexistente_Retorna404(t *testing.T) {
	app := buildTestApp()

	resp := doJSON(t, app, http.MethodGet, "/api/v1/categories/no-existe/products", nil)
	resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestCategoryHandler_CreateYProducts(t *testing.T) {
	app := buildTestApp()

	resp := doJSON(t, app, http.MethodPost, "/api/v1/categories", map[string]any{"name": "Ferretería"})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	catID := decodeBody(t, resp)["id"].(string)

	resp = doJSON(t, app, http.MethodPost, "/api/v1/products", map[string]any{
		"sku": "HTTP-009", "name": "Martillo", "price": "9.99", "category_id": catID,
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	resp.Body.Close()

	resp = doJSON(t, app, http.MethodGet, "/api/v1/categories/"+catID+"/products", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	body := decodeBody(t, resp)
	items := body["items"].([]any)
	assert.Len(t, items, 1)
}

func TestSupplierHandler_Create_NombreDuplicado_Retorna422(t *testing.T) {
	app := buildTestApp()

	resp := doJSON(t, app, http.MethodPost, "/api/v1/suppliers", map[string]any{"name": "ACME"})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	resp.Body.Close()

	resp = doJSON(t, app, http.MethodPost, "/api/v1/suppliers", map[string]any{"name": "ACME"})
	resp.Body.Close()
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
}

func TestProductHandler_Create_CategoriaInexistente_Retorna422(t *testing.T) {
	app := buildTestApp()

	resp := doJSON(t, app, http.MethodPost, "/api/v1/products", map[string]any{
		"sku": "HTTP-010", "name": "Huérfano", "price": "1.00", "category_id": "no-existe",
	})
	defer resp.Body.Close()

	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
	raw, _ := io.ReadAll(resp.Body)
	assert.Contains(t, string(raw), "CONSTRAINT_VIOLATION")
}
