package order_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/estoques-api/internal/application/audit"
	"github.com/jhoicas/estoques-api/internal/application/dto"
	"github.com/jhoicas/estoques-api/internal/application/inventory"
	"github.com/jhoicas/estoques-api/internal/application/order"
	"github.com/jhoicas/estoques-api/internal/domain"
	"github.com/jhoicas/estoques-api/internal/domain/entity"
	domorder "github.com/jhoicas/estoques-api/internal/domain/order"
	"github.com/jhoicas/estoques-api/internal/domain/repository"
	"github.com/jhoicas/estoques-api/internal/infrastructure/memory"
)

const (
	userID    = "u-1"
	storeID   = "st-1"
	productID = "p-1"
	stockID   = "s-1"
)

type fixture struct {
	db       *memory.DB
	uc       *order.OrderUseCase
	movement *inventory.RegisterMovementUseCase
}

// newFixture tienda con saldo 0, producto de precio 10 y un estoque con qty unidades.
func newFixture(t *testing.T, qty int64, strategy domorder.TotalStrategy) *fixture {
	t.Helper()
	db := memory.NewDB()
	ctx := context.Background()
	now := time.Now()
	err := db.Run(ctx, func(r repository.Repos) error {
		if err := r.Stores.Create(ctx, &entity.Store{ID: storeID, Name: "Loja", CNPJ: "1", Email: "a@b.c", Balance: decimal.Zero, CreatedAt: now}); err != nil {
			return err
		}
		if err := r.Products.Create(ctx, &entity.Product{ID: productID, SKU: "SKU-1", Name: "Café", Price: decimal.NewFromInt(10), CreatedAt: now}); err != nil {
			return err
		}
		sid := storeID
		if err := r.Stocks.Create(ctx, &entity.Stock{ID: stockID, StoreID: &sid, Name: "Depósito", CreatedAt: now}); err != nil {
			return err
		}
		return r.Holdings.Create(ctx, &entity.Holding{ProductID: productID, StockID: stockID, Quantity: qty})
	})
	require.NoError(t, err)

	recorder := audit.NewRecorder()
	mov := inventory.NewRegisterMovementUseCase(db, recorder)
	return &fixture{
		db:       db,
		uc:       order.NewOrderUseCase(db, db.Repos(), mov, recorder, strategy),
		movement: mov,
	}
}

func (f *fixture) draft(t *testing.T) string {
	t.Helper()
	o, err := f.uc.Create(context.Background(), userID, dto.CreateOrderRequest{StoreID: storeID})
	require.NoError(t, err)
	return o.ID
}

func (f *fixture) add(t *testing.T, orderID string, qty int64) *dto.OrderItemResponse {
	t.Helper()
	it, err := f.uc.AddItem(context.Background(), orderID, userID, dto.AddOrderItemRequest{ProductID: productID, StockID: stockID, Quantity: qty})
	require.NoError(t, err)
	return it
}

func (f *fixture) holding(t *testing.T) int64 {
	t.Helper()
	h, err := f.db.Repos().Holdings.Get(context.Background(), productID, stockID)
	require.NoError(t, err)
	require.NotNil(t, h)
	return h.Quantity
}

func (f *fixture) balance(t *testing.T) decimal.Decimal {
	t.Helper()
	s, err := f.db.Repos().Stores.GetByID(context.Background(), storeID)
	require.NoError(t, err)
	return s.Balance
}

func (f *fixture) orders(t *testing.T) []*entity.Order {
	t.Helper()
	list, err := f.db.Repos().Orders.List(context.Background(), userID, 100, 0)
	require.NoError(t, err)
	return list
}

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func TestCreate_SiempreBorrador(t *testing.T) {
	f := newFixture(t, 5, nil)

	o, err := f.uc.Create(context.Background(), userID, dto.CreateOrderRequest{StoreID: storeID})
	require.NoError(t, err)
	assert.Equal(t, entity.OrderStatusDraft, o.Status)
	assert.True(t, o.TotalValue.IsZero())
	assert.Equal(t, userID, o.UserID)

	_, err = f.uc.Create(context.Background(), userID, dto.CreateOrderRequest{StoreID: "nope"})
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = f.uc.Create(context.Background(), userID, dto.CreateOrderRequest{})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestFinalizeOrder_LiquidaYAbreBorrador(t *testing.T) {
	f := newFixture(t, 5, nil)
	ctx := context.Background()
	orderID := f.draft(t)
	f.add(t, orderID, 2)

	draft, err := f.uc.FinalizeOrder(ctx, orderID, userID)
	require.NoError(t, err)

	assert.True(t, dec("20").Equal(f.balance(t)), "saldo = 2 x 10")
	assert.Equal(t, int64(3), f.holding(t))

	paid, err := f.uc.GetByID(ctx, orderID)
	require.NoError(t, err)
	assert.Equal(t, entity.OrderStatusPaid, paid.Status)

	require.NotNil(t, draft)
	assert.NotEqual(t, orderID, draft.ID)
	assert.Equal(t, entity.OrderStatusDraft, draft.Status)
	assert.Equal(t, storeID, draft.StoreID)
	assert.Equal(t, userID, draft.UserID)
	assert.True(t, draft.TotalValue.IsZero())
	assert.Len(t, f.orders(t), 2)

	movs, err := f.db.Repos().Movements.ListByProduct(ctx, productID)
	require.NoError(t, err)
	require.Len(t, movs, 1)
	assert.Equal(t, entity.MovementTypeOUT, movs[0].Type)
	assert.Equal(t, int64(2), movs[0].Quantity)

	storeAudit, err := f.db.Repos().Audit.List(ctx, repository.AuditFilter{EntityKind: entity.AuditKindStore, EntityID: storeID})
	require.NoError(t, err)
	require.Len(t, storeAudit, 1)
	assert.Equal(t, entity.AuditOpUpdate, storeAudit[0].Operation)
}

func TestFinalizeOrder_SegundaVezConflicto(t *testing.T) {
	f := newFixture(t, 5, nil)
	ctx := context.Background()
	orderID := f.draft(t)
	f.add(t, orderID, 2)

	_, err := f.uc.FinalizeOrder(ctx, orderID, userID)
	require.NoError(t, err)

	_, err = f.uc.FinalizeOrder(ctx, orderID, userID)
	assert.ErrorIs(t, err, domain.ErrConflict)
	assert.ErrorIs(t, err, domain.ErrOrderNotDraft)
	assert.True(t, dec("20").Equal(f.balance(t)), "el saldo no se acredita dos veces")
	assert.Equal(t, int64(3), f.holding(t))
	assert.Len(t, f.orders(t), 2)
}

func TestFinalizeOrder_SinStockRevierteTodo(t *testing.T) {
	f := newFixture(t, 5, nil)
	ctx := context.Background()
	orderID := f.draft(t)
	f.add(t, orderID, 4)

	// Otro proceso vacía el estoque entre el alta del ítem y la liquidación.
	_, err := f.movement.RegisterMovement(ctx, inventory.MovementInputDTO{
		UserID: userID, ProductID: productID, OriginStockID: stockID,
		Type: entity.MovementTypeOUT, Quantity: 3,
	})
	require.NoError(t, err)

	_, err = f.uc.FinalizeOrder(ctx, orderID, userID)
	assert.ErrorIs(t, err, domain.ErrInsufficientStock)

	o, err := f.uc.GetByID(ctx, orderID)
	require.NoError(t, err)
	assert.Equal(t, entity.OrderStatusDraft, o.Status)
	assert.True(t, f.balance(t).IsZero())
	assert.Equal(t, int64(2), f.holding(t))
	assert.Len(t, f.orders(t), 1)
}

func TestFinalizeOrder_PedidoInexistente(t *testing.T) {
	f := newFixture(t, 5, nil)
	_, err := f.uc.FinalizeOrder(context.Background(), "nope", userID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestFinalizeOrder_SinItems(t *testing.T) {
	f := newFixture(t, 5, nil)
	orderID := f.draft(t)

	draft, err := f.uc.FinalizeOrder(context.Background(), orderID, "")
	require.NoError(t, err)
	assert.True(t, f.balance(t).IsZero())

	entries, err := f.db.Repos().Audit.List(context.Background(), repository.AuditFilter{EntityID: draft.ID})
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, userID, entries[0].ChangedBy, "actor vacío usa el dueño del pedido")
}

func TestFinalizeOrder_FallaPersistenciaRevierte(t *testing.T) {
	f := newFixture(t, 5, nil)
	orderID := f.draft(t)
	f.add(t, orderID, 2)
	f.db.FailOn("stores.update_balance", errors.New("conexión perdida"))

	_, err := f.uc.FinalizeOrder(context.Background(), orderID, userID)
	assert.ErrorIs(t, err, domain.ErrPersistence)
	assert.Equal(t, int64(5), f.holding(t))
	assert.Len(t, f.orders(t), 1)
}

func TestAddItem_FusionaYRespetaDisponible(t *testing.T) {
	f := newFixture(t, 5, nil)
	ctx := context.Background()
	orderID := f.draft(t)

	first := f.add(t, orderID, 2)
	second := f.add(t, orderID, 3)
	assert.Equal(t, first.ID, second.ID, "mismo producto y estoque se fusionan")
	assert.Equal(t, int64(5), second.Quantity)
	assert.True(t, dec("50").Equal(second.Subtotal))

	_, err := f.uc.AddItem(ctx, orderID, userID, dto.AddOrderItemRequest{ProductID: productID, StockID: stockID, Quantity: 1})
	assert.ErrorIs(t, err, domain.ErrInsufficientStock)

	items, err := f.uc.ListItems(ctx, orderID)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, int64(5), items[0].Quantity)
}

func TestAddItem_PrecioExplicito(t *testing.T) {
	f := newFixture(t, 5, nil)
	price := dec("7.25")

	it, err := f.uc.AddItem(context.Background(), f.draft(t), userID, dto.AddOrderItemRequest{
		ProductID: productID, StockID: stockID, Quantity: 2, UnitPrice: &price,
	})
	require.NoError(t, err)
	assert.True(t, dec("14.50").Equal(it.Subtotal))
}

func TestAddItem_PrecioEnCentavos(t *testing.T) {
	f := newFixture(t, 5, nil)
	ctx := context.Background()
	orderID := f.draft(t)
	tooFine := dec("0.005")

	_, err := f.uc.AddItem(ctx, orderID, userID, dto.AddOrderItemRequest{
		ProductID: productID, StockID: stockID, Quantity: 3, UnitPrice: &tooFine,
	})
	require.ErrorIs(t, err, domain.ErrInvalidInput)
	items, err := f.uc.ListItems(ctx, orderID)
	require.NoError(t, err)
	assert.Empty(t, items)

	padded := dec("7.250")
	it, err := f.uc.AddItem(ctx, orderID, userID, dto.AddOrderItemRequest{
		ProductID: productID, StockID: stockID, Quantity: 3, UnitPrice: &padded,
	})
	require.NoError(t, err)
	assert.Equal(t, "7.25", it.UnitPrice.String())
	assert.True(t, dec("21.75").Equal(it.Subtotal))

	_, err = f.uc.PatchItem(ctx, it.ID, userID, dto.PatchOrderItemRequest{UnitPrice: &tooFine})
	require.ErrorIs(t, err, domain.ErrInvalidInput)

	// Lo auditado coincide con lo que guarda la columna: centavos y microsegundos.
	entries, err := f.db.Repos().Audit.List(ctx, repository.AuditFilter{EntityKind: entity.AuditKindOrderItem, EntityID: it.ID})
	require.NoError(t, err)
	require.Len(t, entries, 1)
	var data map[string]any
	require.NoError(t, json.Unmarshal(entries[0].NewData, &data))
	assert.Equal(t, "7.25", data["unit_price"])
	assert.Equal(t, "21.75", data["subtotal"])
	created, err := time.Parse(time.RFC3339Nano, data["created_at"].(string))
	require.NoError(t, err)
	assert.True(t, created.Equal(created.Truncate(time.Microsecond)), "created_at %s", created)
}

func TestAddItem_Validaciones(t *testing.T) {
	f := newFixture(t, 5, nil)
	ctx := context.Background()
	orderID := f.draft(t)
	neg := dec("-1")

	_, err := f.uc.AddItem(ctx, orderID, userID, dto.AddOrderItemRequest{ProductID: productID, StockID: stockID})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	_, err = f.uc.AddItem(ctx, orderID, userID, dto.AddOrderItemRequest{ProductID: productID, StockID: stockID, Quantity: 1, UnitPrice: &neg})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	_, err = f.uc.AddItem(ctx, orderID, userID, dto.AddOrderItemRequest{ProductID: "nope", StockID: stockID, Quantity: 1})
	assert.ErrorIs(t, err, domain.ErrNotFound)
	_, err = f.uc.AddItem(ctx, "nope", userID, dto.AddOrderItemRequest{ProductID: productID, StockID: stockID, Quantity: 1})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestAddItem_PedidoPagado(t *testing.T) {
	f := newFixture(t, 5, nil)
	orderID := f.draft(t)
	_, err := f.uc.FinalizeOrder(context.Background(), orderID, userID)
	require.NoError(t, err)

	_, err = f.uc.AddItem(context.Background(), orderID, userID, dto.AddOrderItemRequest{ProductID: productID, StockID: stockID, Quantity: 1})
	assert.ErrorIs(t, err, domain.ErrOrderNotDraft)
}

func TestTotal_SiempreIgualALaEstrategia(t *testing.T) {
	f := newFixture(t, 10, nil)
	ctx := context.Background()
	orderID := f.draft(t)

	it := f.add(t, orderID, 2)
	assertTotal(t, f, orderID, "20")

	qty := int64(4)
	_, err := f.uc.PatchItem(ctx, it.ID, userID, dto.PatchOrderItemRequest{Quantity: &qty})
	require.NoError(t, err)
	assertTotal(t, f, orderID, "40")

	price := dec("2.5")
	_, err = f.uc.PatchItem(ctx, it.ID, userID, dto.PatchOrderItemRequest{UnitPrice: &price})
	require.NoError(t, err)
	assertTotal(t, f, orderID, "10")

	require.NoError(t, f.uc.DeleteItem(ctx, it.ID, userID))
	assertTotal(t, f, orderID, "0")
}

func TestTotal_EstrategiaConDescuento(t *testing.T) {
	f := newFixture(t, 10, domorder.DiscountedTotal{Rate: dec("0.10")})
	ctx := context.Background()
	orderID := f.draft(t)
	f.add(t, orderID, 3)

	assertTotal(t, f, orderID, "27")

	out, err := f.uc.RecalculateOrderTotal(ctx, orderID, userID)
	require.NoError(t, err)
	assert.True(t, dec("27").Equal(out.TotalValue))
}

func TestPatchItem_StockInsuficiente(t *testing.T) {
	f := newFixture(t, 5, nil)
	it := f.add(t, f.draft(t), 2)
	qty := int64(6)

	_, err := f.uc.PatchItem(context.Background(), it.ID, userID, dto.PatchOrderItemRequest{Quantity: &qty})
	assert.ErrorIs(t, err, domain.ErrInsufficientStock)
}

func TestDelete_PedidoConItemsConflicto(t *testing.T) {
	f := newFixture(t, 5, nil)
	ctx := context.Background()
	orderID := f.draft(t)
	it := f.add(t, orderID, 1)

	err := f.uc.Delete(ctx, orderID, userID)
	assert.ErrorIs(t, err, domain.ErrConflict)
	assert.ErrorIs(t, err, domain.ErrOrderHasItems)

	require.NoError(t, f.uc.DeleteItem(ctx, it.ID, userID))
	require.NoError(t, f.uc.Delete(ctx, orderID, userID))
	_, err = f.uc.GetByID(ctx, orderID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

type fakePublisher struct {
	published []string
}

func (p *fakePublisher) PublishCheckout(_ context.Context, orderID string) error {
	p.published = append(p.published, orderID)
	return nil
}

func TestCheckout_EncolaOLiquida(t *testing.T) {
	f := newFixture(t, 5, nil)
	ctx := context.Background()

	inline := f.draft(t)
	f.add(t, inline, 1)
	out, err := f.uc.Checkout(ctx, inline, userID)
	require.NoError(t, err)
	assert.Equal(t, order.CheckoutSettled, out.Status)
	assert.True(t, dec("10").Equal(f.balance(t)))

	pub := &fakePublisher{}
	f.uc.WithPublisher(pub)
	queued := f.draft(t)
	out, err = f.uc.Checkout(ctx, queued, userID)
	require.NoError(t, err)
	assert.Equal(t, order.CheckoutQueued, out.Status)
	assert.Equal(t, []string{queued}, pub.published)

	_, err = f.uc.Checkout(ctx, inline, userID)
	assert.ErrorIs(t, err, domain.ErrOrderNotDraft)
}

func assertTotal(t *testing.T, f *fixture, orderID, want string) {
	t.Helper()
	o, err := f.uc.GetByID(context.Background(), orderID)
	require.NoError(t, err)
	assert.True(t, dec(want).Equal(o.TotalValue), "total %s, esperado %s", o.TotalValue, want)
}
