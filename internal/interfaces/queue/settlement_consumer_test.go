package queue_test

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/estoques-api/internal/application/audit"
	"github.com/jhoicas/estoques-api/internal/application/dto"
	"github.com/jhoicas/estoques-api/internal/application/inventory"
	"github.com/jhoicas/estoques-api/internal/application/order"
	"github.com/jhoicas/estoques-api/internal/domain"
	"github.com/jhoicas/estoques-api/internal/domain/entity"
	"github.com/jhoicas/estoques-api/internal/domain/repository"
	"github.com/jhoicas/estoques-api/internal/infrastructure/memory"
	"github.com/jhoicas/estoques-api/internal/interfaces/queue"
	"github.com/jhoicas/estoques-api/pkg/logger"
)

// fakeReader entrega los mensajes en orden y luego bloquea hasta que ctx se cancele.
type fakeReader struct {
	mu        sync.Mutex
	pending   []kafka.Message
	committed []int64
	drained   chan struct{}
}

func newFakeReader(values ...string) *fakeReader {
	r := &fakeReader{drained: make(chan struct{})}
	for i, v := range values {
		r.pending = append(r.pending, kafka.Message{Topic: "order_queue", Offset: int64(i), Value: []byte(v)})
	}
	return r
}

func (r *fakeReader) FetchMessage(ctx context.Context) (kafka.Message, error) {
	r.mu.Lock()
	if len(r.pending) > 0 {
		msg := r.pending[0]
		r.pending = r.pending[1:]
		r.mu.Unlock()
		return msg, nil
	}
	r.mu.Unlock()
	select {
	case <-r.drained:
	default:
		close(r.drained)
	}
	<-ctx.Done()
	return kafka.Message{}, ctx.Err()
}

func (r *fakeReader) CommitMessages(_ context.Context, msgs ...kafka.Message) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, m := range msgs {
		r.committed = append(r.committed, m.Offset)
	}
	return nil
}

func (r *fakeReader) Close() error { return nil }

func (r *fakeReader) commits() []int64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]int64(nil), r.committed...)
}

// fakeSettler devuelve los errores de script en orden; agotado el script, liquida.
type fakeSettler struct {
	mu     sync.Mutex
	script []error
	calls  []string
}

func (s *fakeSettler) FinalizeOrder(_ context.Context, orderID, _ string) (*entity.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = append(s.calls, orderID)
	if len(s.script) > 0 {
		err := s.script[0]
		s.script = s.script[1:]
		if err != nil {
			return nil, err
		}
	}
	return &entity.Order{ID: "draft-" + orderID, Status: entity.OrderStatusDraft}, nil
}

type fakeGuard struct {
	settled map[string]bool
	marks   []string
	err     error
}

func newFakeGuard() *fakeGuard { return &fakeGuard{settled: map[string]bool{}} }

func (g *fakeGuard) Settled(_ context.Context, orderID string) (bool, error) {
	if g.err != nil {
		return false, g.err
	}
	return g.settled[orderID], nil
}

func (g *fakeGuard) MarkSettled(_ context.Context, orderID string) error {
	g.settled[orderID] = true
	g.marks = append(g.marks, orderID)
	return nil
}

func persistence() error {
	return fmt.Errorf("orders.update: %w: %w", domain.ErrPersistence, errors.New("conexión perdida"))
}

func msg(v string) kafka.Message {
	return kafka.Message{Topic: "order_queue", Value: []byte(v)}
}

func newConsumer(settler queue.Settler, guard queue.Guard) *queue.SettlementConsumer {
	return queue.NewSettlementConsumer(newFakeReader(), settler, guard, logger.Nop()).
		WithBackoff(time.Millisecond, 4*time.Millisecond)
}

func TestHandle_Liquida(t *testing.T) {
	settler := &fakeSettler{}
	c := newConsumer(settler, nil)

	out := c.Handle(context.Background(), msg(`{"order_id":"o-1"}`))
	assert.Equal(t, queue.OutcomeSettled, out)
	assert.Equal(t, []string{"o-1"}, settler.calls)
}

func TestHandle_PayloadInvalido(t *testing.T) {
	settler := &fakeSettler{}
	c := newConsumer(settler, nil)

	for _, v := range []string{`no-json`, `{}`, `{"order_id":"  "}`} {
		assert.Equal(t, queue.OutcomeDropped, c.Handle(context.Background(), msg(v)), v)
	}
	assert.Empty(t, settler.calls)
}

func TestHandle_ErrorDeNegocioEsFinal(t *testing.T) {
	for _, err := range []error{domain.ErrNotFound, domain.ErrInsufficientStock, domain.ErrOrderNotDraft} {
		settler := &fakeSettler{script: []error{err}}
		c := newConsumer(settler, nil)

		assert.Equal(t, queue.OutcomeRejected, c.Handle(context.Background(), msg(`{"order_id":"o-1"}`)))
		assert.Len(t, settler.calls, 1, "no se reintenta: %v", err)
	}
}

func TestHandle_ReintentaFallosDePersistencia(t *testing.T) {
	settler := &fakeSettler{script: []error{persistence(), persistence()}}
	c := newConsumer(settler, nil)

	out := c.Handle(context.Background(), msg(`{"order_id":"o-1"}`))
	assert.Equal(t, queue.OutcomeSettled, out)
	assert.Len(t, settler.calls, 3)
}

func TestHandle_ApagadoDuranteReintentos(t *testing.T) {
	settler := &fakeSettler{script: []error{persistence(), persistence(), persistence(), persistence()}}
	guard := newFakeGuard()
	c := queue.NewSettlementConsumer(newFakeReader(), settler, guard, logger.Nop()).
		WithBackoff(50*time.Millisecond, 50*time.Millisecond)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	assert.Equal(t, queue.OutcomeAborted, c.Handle(ctx, msg(`{"order_id":"o-1"}`)))
	assert.Empty(t, guard.marks, "sin commit no hay marca")
}

func TestHandle_GuardiaSuprimeDuplicados(t *testing.T) {
	settler := &fakeSettler{}
	guard := newFakeGuard()
	c := newConsumer(settler, guard)

	assert.Equal(t, queue.OutcomeSettled, c.Handle(context.Background(), msg(`{"order_id":"o-1"}`)))
	assert.Equal(t, queue.OutcomeDuplicate, c.Handle(context.Background(), msg(`{"order_id":"o-1"}`)))
	assert.Len(t, settler.calls, 1)
	assert.Equal(t, []string{"o-1"}, guard.marks)
}

func TestHandle_ErrorDeNegocioNoMarca(t *testing.T) {
	settler := &fakeSettler{script: []error{domain.ErrInsufficientStock}}
	guard := newFakeGuard()
	c := newConsumer(settler, guard)

	assert.Equal(t, queue.OutcomeRejected, c.Handle(context.Background(), msg(`{"order_id":"o-1"}`)))
	assert.Empty(t, guard.marks)

	// Con el estoque repuesto, una nueva entrega sí se liquida.
	assert.Equal(t, queue.OutcomeSettled, c.Handle(context.Background(), msg(`{"order_id":"o-1"}`)))
}

func TestHandle_YaNoEsBorradorSeMarca(t *testing.T) {
	settler := &fakeSettler{script: []error{domain.ErrOrderNotDraft}}
	guard := newFakeGuard()
	c := newConsumer(settler, guard)

	assert.Equal(t, queue.OutcomeRejected, c.Handle(context.Background(), msg(`{"order_id":"o-1"}`)))
	assert.Equal(t, []string{"o-1"}, guard.marks)
}

func TestHandle_GuardiaCaidaNoImpideLiquidar(t *testing.T) {
	settler := &fakeSettler{}
	guard := newFakeGuard()
	guard.err = errors.New("redis: connection refused")
	c := newConsumer(settler, guard)

	assert.Equal(t, queue.OutcomeSettled, c.Handle(context.Background(), msg(`{"order_id":"o-1"}`)))
	assert.Len(t, settler.calls, 1)
}

// settlementFixture pedido en borrador con 2 unidades de un producto de precio 10 (holding de 5).
func settlementFixture(t *testing.T) (*memory.DB, *order.OrderUseCase, string) {
	t.Helper()
	db := memory.NewDB()
	ctx := context.Background()
	now := time.Now()
	storeID := "st-1"
	err := db.Run(ctx, func(r repository.Repos) error {
		if err := r.Stores.Create(ctx, &entity.Store{ID: storeID, Name: "Loja", CNPJ: "1", Email: "a@b.c", CreatedAt: now}); err != nil {
			return err
		}
		if err := r.Products.Create(ctx, &entity.Product{ID: "p-1", SKU: "SKU-1", Name: "Café", Price: decimal.NewFromInt(10), CreatedAt: now}); err != nil {
			return err
		}
		if err := r.Stocks.Create(ctx, &entity.Stock{ID: "s-1", StoreID: &storeID, Name: "Depósito", CreatedAt: now}); err != nil {
			return err
		}
		return r.Holdings.Create(ctx, &entity.Holding{ProductID: "p-1", StockID: "s-1", Quantity: 5})
	})
	require.NoError(t, err)

	recorder := audit.NewRecorder()
	uc := order.NewOrderUseCase(db, db.Repos(), inventory.NewRegisterMovementUseCase(db, recorder), recorder, nil)
	o, err := uc.Create(ctx, "u-1", dto.CreateOrderRequest{StoreID: storeID})
	require.NoError(t, err)
	_, err = uc.AddItem(ctx, o.ID, "u-1", dto.AddOrderItemRequest{ProductID: "p-1", StockID: "s-1", Quantity: 2})
	require.NoError(t, err)
	return db, uc, o.ID
}

func TestRun_ReentregaTrasCaidaLiquidaElPedido(t *testing.T) {
	db, uc, orderID := settlementFixture(t)
	guard := newFakeGuard()
	payload := `{"order_id":"` + orderID + `"}`

	// Primer worker: la BD falla y se apaga a mitad de los reintentos, sin confirmar.
	db.FailOn("orders.update", errors.New("conexión perdida"))
	crashed := queue.NewSettlementConsumer(newFakeReader(), uc, guard, logger.Nop()).
		WithBackoff(50*time.Millisecond, 50*time.Millisecond)
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	assert.Equal(t, queue.OutcomeAborted, crashed.Handle(ctx, msg(payload)))
	cancel()
	db.FailOn("orders.update", nil)

	// Reentrega al siguiente worker con la misma guardia.
	reader := newFakeReader(payload)
	c := queue.NewSettlementConsumer(reader, uc, guard, logger.Nop())
	runCtx, stop := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- c.Run(runCtx) }()
	select {
	case <-reader.drained:
	case <-time.After(2 * time.Second):
		t.Fatal("el consumidor no procesó la reentrega")
	}
	stop()
	require.NoError(t, <-done)

	assert.Equal(t, []int64{0}, reader.commits())
	settled, err := db.Repos().Orders.GetByID(context.Background(), orderID)
	require.NoError(t, err)
	assert.Equal(t, entity.OrderStatusPaid, settled.Status)
	store, err := db.Repos().Stores.GetByID(context.Background(), "st-1")
	require.NoError(t, err)
	assert.True(t, decimal.NewFromInt(20).Equal(store.Balance))

	assert.Equal(t, queue.OutcomeDuplicate, c.Handle(context.Background(), msg(payload)))
}

func TestRun_ConfirmaCadaMensajeYTerminaAlCancelar(t *testing.T) {
	reader := newFakeReader(`{"order_id":"o-1"}`, `basura`, `{"order_id":"o-2"}`)
	settler := &fakeSettler{script: []error{nil, domain.ErrNotFound}}
	c := queue.NewSettlementConsumer(reader, settler, nil, logger.Nop())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- c.Run(ctx) }()

	select {
	case <-reader.drained:
	case <-time.After(2 * time.Second):
		t.Fatal("el consumidor no procesó los mensajes")
	}
	cancel()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("Run no terminó al cancelar el contexto")
	}
	assert.Equal(t, []int64{0, 1, 2}, reader.commits())
	assert.Equal(t, []string{"o-1", "o-2"}, settler.calls)
}
