package http_test

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/estoques-api/internal/application/audit"
	"github.com/jhoicas/estoques-api/internal/application/dto"
	"github.com/jhoicas/estoques-api/internal/application/inventory"
	"github.com/jhoicas/estoques-api/internal/application/order"
	"github.com/jhoicas/estoques-api/internal/application/usecase"
	"github.com/jhoicas/estoques-api/internal/infrastructure/memory"
	apphttp "github.com/jhoicas/estoques-api/internal/interfaces/http"
)

// buildAPI aplicación completa sobre la base en memoria.
func buildAPI(t *testing.T) *fiber.App {
	t.Helper()
	db := memory.NewDB()
	repos := db.Repos()
	recorder := audit.NewRecorder()
	movement := inventory.NewRegisterMovementUseCase(db, recorder)

	app := fiber.New()
	apphttp.Router(app, apphttp.RouterDeps{
		ProductUC:        usecase.NewProductUseCase(db, repos, recorder),
		StockUC:          usecase.NewStockUseCase(db, repos, recorder),
		StoreUC:          usecase.NewStoreUseCase(db, repos, recorder),
		RegisterMovement: movement,
		MovementQuery:    inventory.NewMovementQueryUseCase(repos.Movements, repos.Products),
		OrderUC:          order.NewOrderUseCase(db, repos, movement, recorder, nil),
		AuditQuery:       audit.NewQueryUseCase(repos.Audit),
		JWTSecret:        testJWTSecret,
	})
	return app
}

// call envía body como JSON con token válido y decodifica la respuesta en out (si no es nil).
func call(t *testing.T, app *fiber.App, method, path string, body, out any) int {
	t.Helper()
	var r io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		r = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, r)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", bearer(t, "admin"))
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	if out != nil {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
	}
	return resp.StatusCode
}

type seeded struct {
	storeID   string
	stockID   string
	productID string
}

// seed tienda, estoque y producto de precio 10 con qty unidades.
func seed(t *testing.T, app *fiber.App, qty int64) seeded {
	t.Helper()
	var store dto.StoreResponse
	require.Equal(t, http.StatusCreated, call(t, app, http.MethodPost, "/api/stores/",
		dto.CreateStoreRequest{Name: "Loja Centro", CNPJ: "12345678000199", Email: "centro@loja.com"}, &store))

	var stock dto.StockResponse
	require.Equal(t, http.StatusCreated, call(t, app, http.MethodPost, "/api/stocks/",
		dto.CreateStockRequest{StoreID: &store.ID, Name: "Depósito"}, &stock))

	var product dto.ProductResponse
	require.Equal(t, http.StatusCreated, call(t, app, http.MethodPost, "/api/products/",
		dto.CreateProductRequest{SKU: "CAF-1", Name: "Café", Price: decimal.NewFromInt(10), StockID: stock.ID, Quantity: qty}, &product))

	return seeded{storeID: store.ID, stockID: stock.ID, productID: product.ID}
}

func TestRouter_SinTokenDevuelve401(t *testing.T) {
	app := buildAPI(t)
	for _, path := range []string{"/api/products/", "/api/orders/", "/api/auditoria"} {
		resp := doGet(t, app, path, "")
		resp.Body.Close()
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode, path)
	}
}

func TestRouter_MapeoDeErrores(t *testing.T) {
	app := buildAPI(t)
	s := seed(t, app, 5)

	var errBody dto.ErrorResponse
	assert.Equal(t, http.StatusNotFound, call(t, app, http.MethodGet, "/api/products/no-existe", nil, &errBody))
	assert.Equal(t, "NOT_FOUND", errBody.Code)

	assert.Equal(t, http.StatusConflict, call(t, app, http.MethodPost, "/api/stores/",
		dto.CreateStoreRequest{Name: "Otra", CNPJ: "12345678000199", Email: "otra@loja.com"}, &errBody))
	assert.Equal(t, "DUPLICATE", errBody.Code)

	assert.Equal(t, http.StatusBadRequest, call(t, app, http.MethodPost, "/api/stocks/movements",
		dto.RegisterMovementRequest{ProductID: s.productID, OriginStockID: s.stockID, Type: "out", Quantity: 6}, &errBody))
	assert.Equal(t, "INSUFFICIENT_STOCK", errBody.Code)

	assert.Equal(t, http.StatusBadRequest, call(t, app, http.MethodPost, "/api/stocks/movements",
		dto.RegisterMovementRequest{ProductID: s.productID, OriginStockID: s.stockID, Type: "robo", Quantity: 1}, &errBody))
	assert.Equal(t, "VALIDATION", errBody.Code)

	req := httptest.NewRequest(http.MethodPost, "/api/products/", bytes.NewBufferString("{"))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", bearer(t, ""))
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestRouter_MovimientosYConsulta(t *testing.T) {
	app := buildAPI(t)
	s := seed(t, app, 5)

	var mov dto.StockMovementResponse
	require.Equal(t, http.StatusCreated, call(t, app, http.MethodPost, "/api/stocks/movements",
		dto.RegisterMovementRequest{ProductID: s.productID, DestinationStockID: s.stockID, Type: "in", Quantity: 3}, &mov))
	assert.Equal(t, int64(3), mov.Quantity)
	assert.Equal(t, testUserID, mov.CreatedBy)

	var got dto.StockMovementResponse
	assert.Equal(t, http.StatusOK, call(t, app, http.MethodGet, "/api/stocks/movements/"+mov.ID, nil, &got))
	assert.Equal(t, mov.ID, got.ID)

	var stock dto.StockResponse
	require.Equal(t, http.StatusOK, call(t, app, http.MethodGet, "/api/stocks/"+s.stockID, nil, &stock))
	require.Len(t, stock.Holdings, 1)
	assert.Equal(t, int64(8), stock.Holdings[0].Quantity)
}

func TestRouter_CheckoutEnLinea(t *testing.T) {
	app := buildAPI(t)
	s := seed(t, app, 5)

	var o dto.OrderResponse
	require.Equal(t, http.StatusCreated, call(t, app, http.MethodPost, "/api/orders/", dto.CreateOrderRequest{StoreID: s.storeID}, &o))
	assert.Equal(t, "draft", o.Status)

	var item dto.OrderItemResponse
	require.Equal(t, http.StatusCreated, call(t, app, http.MethodPost, "/api/orders/"+o.ID+"/items",
		dto.AddOrderItemRequest{ProductID: s.productID, StockID: s.stockID, Quantity: 2}, &item))
	assert.True(t, decimal.NewFromInt(20).Equal(item.Subtotal))

	var out dto.CheckoutResponse
	require.Equal(t, http.StatusOK, call(t, app, http.MethodPost, "/api/orders/"+o.ID+"/checkout", nil, &out))
	assert.Equal(t, order.CheckoutSettled, out.Status)

	var paid dto.OrderResponse
	require.Equal(t, http.StatusOK, call(t, app, http.MethodGet, "/api/orders/"+o.ID, nil, &paid))
	assert.Equal(t, "paid", paid.Status)

	var store dto.StoreResponse
	require.Equal(t, http.StatusOK, call(t, app, http.MethodGet, "/api/stores/"+s.storeID, nil, &store))
	assert.True(t, decimal.NewFromInt(20).Equal(store.Balance), "saldo %s", store.Balance)

	var errBody dto.ErrorResponse
	assert.Equal(t, http.StatusConflict, call(t, app, http.MethodPatch, "/api/orders/"+o.ID+"/finalize", nil, &errBody))

	var trail dto.AuditListResponse
	require.Equal(t, http.StatusOK, call(t, app, http.MethodGet, "/api/auditoria/store/"+s.storeID, nil, &trail))
	require.NotEmpty(t, trail.Items)
	assert.Equal(t, testUserID, trail.Items[0].ChangedBy)

	assert.Equal(t, http.StatusBadRequest, call(t, app, http.MethodGet, "/api/auditoria/planeta", nil, &errBody))
}

func TestRouter_Paginacion(t *testing.T) {
	app := buildAPI(t)
	seed(t, app, 1)

	cases := []struct {
		path  string
		limit int
		off   int
	}{
		{"/api/products/", dto.DefaultLimit, 0},
		{"/api/products/?limit=500&offset=3", dto.MaxLimit, 3},
		{"/api/products/?limit=abc", dto.DefaultLimit, 0},
		{"/api/products/?limit=5&offset=-2", 5, 0},
	}
	for _, tc := range cases {
		var list dto.ProductListResponse
		require.Equal(t, http.StatusOK, call(t, app, http.MethodGet, tc.path, nil, &list), tc.path)
		assert.Equal(t, tc.limit, list.Page.Limit, tc.path)
		assert.Equal(t, tc.off, list.Page.Offset, tc.path)
	}

	var trail dto.AuditListResponse
	require.Equal(t, http.StatusOK, call(t, app, http.MethodGet, "/api/auditoria", nil, &trail))
	assert.Equal(t, 50, trail.Page.Limit)
}
