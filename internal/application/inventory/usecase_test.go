package inventory_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/estoques-api/internal/application/audit"
	"github.com/jhoicas/estoques-api/internal/application/dto"
	"github.com/jhoicas/estoques-api/internal/application/inventory"
	"github.com/jhoicas/estoques-api/internal/domain"
	"github.com/jhoicas/estoques-api/internal/domain/entity"
	"github.com/jhoicas/estoques-api/internal/domain/repository"
	"github.com/jhoicas/estoques-api/internal/infrastructure/memory"
)

const (
	userID    = "u-1"
	productID = "p-1"
	stockA    = "s-a"
	stockB    = "s-b"
)

// setup crea un producto y dos estoques con las cantidades iniciales dadas (-1 = sin holding).
func setup(t *testing.T, qtyA, qtyB int64) (*memory.DB, *inventory.RegisterMovementUseCase) {
	t.Helper()
	db := memory.NewDB()
	ctx := context.Background()
	now := time.Now()
	err := db.Run(ctx, func(r repository.Repos) error {
		if err := r.Products.Create(ctx, &entity.Product{ID: productID, SKU: "SKU-1", Name: "Café", Price: decimal.NewFromInt(10), CreatedAt: now}); err != nil {
			return err
		}
		for _, id := range []string{stockA, stockB} {
			if err := r.Stocks.Create(ctx, &entity.Stock{ID: id, Name: id, CreatedAt: now}); err != nil {
				return err
			}
		}
		for id, q := range map[string]int64{stockA: qtyA, stockB: qtyB} {
			if q < 0 {
				continue
			}
			if err := r.Holdings.Create(ctx, &entity.Holding{ProductID: productID, StockID: id, Quantity: q}); err != nil {
				return err
			}
		}
		return nil
	})
	require.NoError(t, err)
	return db, inventory.NewRegisterMovementUseCase(db, audit.NewRecorder())
}

func quantity(t *testing.T, db *memory.DB, stockID string) int64 {
	t.Helper()
	h, err := db.Repos().Holdings.Get(context.Background(), productID, stockID)
	require.NoError(t, err)
	if h == nil {
		return -1
	}
	return h.Quantity
}

func movements(t *testing.T, db *memory.DB) []*entity.StockMovement {
	t.Helper()
	list, err := db.Repos().Movements.List(context.Background(), 100, 0)
	require.NoError(t, err)
	return list
}

func auditOf(t *testing.T, db *memory.DB, kind string) []*entity.AuditEntry {
	t.Helper()
	list, err := db.Repos().Audit.List(context.Background(), repository.AuditFilter{EntityKind: kind})
	require.NoError(t, err)
	return list
}

func TestRegisterMovement_Transfer(t *testing.T) {
	db, uc := setup(t, 100, 0)

	mov, err := uc.RegisterMovement(context.Background(), inventory.MovementInputDTO{
		UserID: userID, ProductID: productID,
		OriginStockID: stockA, DestinationStockID: stockB,
		Type: entity.MovementTypeTRANSFER, Quantity: 30,
	})
	require.NoError(t, err)

	assert.Equal(t, int64(70), quantity(t, db, stockA))
	assert.Equal(t, int64(30), quantity(t, db, stockB))
	require.Len(t, movements(t, db), 1)
	assert.Equal(t, mov.ID, movements(t, db)[0].ID)
	assert.Equal(t, stockA, *mov.OriginStockID)
	assert.Equal(t, stockB, *mov.DestinationStockID)

	entries := auditOf(t, db, entity.AuditKindStockMovement)
	require.Len(t, entries, 1)
	assert.Equal(t, entity.AuditOpCreate, entries[0].Operation)
	assert.Equal(t, userID, entries[0].ChangedBy)
	assert.Nil(t, entries[0].OldData)
}

func TestRegisterMovement_TransferCreaHoldingDestino(t *testing.T) {
	db, uc := setup(t, 10, -1)

	_, err := uc.RegisterMovement(context.Background(), inventory.MovementInputDTO{
		UserID: userID, ProductID: productID,
		OriginStockID: stockA, DestinationStockID: stockB,
		Type: entity.MovementTypeTRANSFER, Quantity: 10,
	})
	require.NoError(t, err)
	assert.Equal(t, int64(0), quantity(t, db, stockA))
	assert.Equal(t, int64(10), quantity(t, db, stockB))
}

func TestRegisterMovement_TransferSinHoldingOrigen(t *testing.T) {
	db, uc := setup(t, -1, 5)

	_, err := uc.RegisterMovement(context.Background(), inventory.MovementInputDTO{
		UserID: userID, ProductID: productID,
		OriginStockID: stockA, DestinationStockID: stockB,
		Type: entity.MovementTypeTRANSFER, Quantity: 1,
	})
	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.Equal(t, int64(5), quantity(t, db, stockB))
	assert.Empty(t, movements(t, db))
}

func TestRegisterMovement_OutInsuficiente(t *testing.T) {
	db, uc := setup(t, 4, -1)

	_, err := uc.RegisterMovement(context.Background(), inventory.MovementInputDTO{
		UserID: userID, ProductID: productID, OriginStockID: stockA,
		Type: entity.MovementTypeOUT, Quantity: 10,
	})
	assert.ErrorIs(t, err, domain.ErrInsufficientStock)
	assert.Equal(t, int64(4), quantity(t, db, stockA))
	assert.Empty(t, movements(t, db))
	assert.Empty(t, auditOf(t, db, entity.AuditKindStockMovement))
}

func TestRegisterMovement_OutSinHolding(t *testing.T) {
	_, uc := setup(t, -1, -1)

	_, err := uc.RegisterMovement(context.Background(), inventory.MovementInputDTO{
		UserID: userID, ProductID: productID, OriginStockID: stockA,
		Type: entity.MovementTypeOUT, Quantity: 1,
	})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestRegisterMovement_OutExacto(t *testing.T) {
	db, uc := setup(t, 4, -1)

	mov, err := uc.RegisterMovement(context.Background(), inventory.MovementInputDTO{
		UserID: userID, ProductID: productID, OriginStockID: stockA, DestinationStockID: stockB,
		Type: entity.MovementTypeOUT, Quantity: 4,
	})
	require.NoError(t, err)
	assert.Equal(t, int64(0), quantity(t, db, stockA))
	assert.Nil(t, mov.DestinationStockID, "out ignora el destino")
}

func TestRegisterMovement_InCreaHolding(t *testing.T) {
	db, uc := setup(t, -1, -1)

	mov, err := uc.RegisterMovement(context.Background(), inventory.MovementInputDTO{
		UserID: userID, ProductID: productID, OriginStockID: stockA, DestinationStockID: stockB,
		Type: entity.MovementTypeIN, Quantity: 7,
	})
	require.NoError(t, err)
	assert.Equal(t, int64(7), quantity(t, db, stockB))
	assert.Equal(t, int64(-1), quantity(t, db, stockA))
	assert.Nil(t, mov.OriginStockID, "in ignora el origen")
}

// lockSpy registra qué destinos se acreditan vía LockOrCreate.
type lockSpy struct {
	repository.HoldingRepository
	ensured []string
}

func (s *lockSpy) LockOrCreate(ctx context.Context, productID, stockID string, now time.Time) (*entity.Holding, error) {
	s.ensured = append(s.ensured, stockID)
	return s.HoldingRepository.LockOrCreate(ctx, productID, stockID, now)
}

type spyRunner struct {
	db  *memory.DB
	spy *lockSpy
}

func (r spyRunner) Run(ctx context.Context, fn func(repository.Repos) error) error {
	return r.db.Run(ctx, func(repos repository.Repos) error {
		r.spy.HoldingRepository = repos.Holdings
		repos.Holdings = r.spy
		return fn(repos)
	})
}

func TestRegisterMovement_DestinoNuevoSeCreaBloqueado(t *testing.T) {
	db, _ := setup(t, 10, -1)
	spy := &lockSpy{}
	uc := inventory.NewRegisterMovementUseCase(spyRunner{db: db, spy: spy}, audit.NewRecorder())
	ctx := context.Background()

	_, err := uc.RegisterMovement(ctx, inventory.MovementInputDTO{
		UserID: userID, ProductID: productID, DestinationStockID: stockB, Type: entity.MovementTypeIN, Quantity: 2,
	})
	require.NoError(t, err)
	_, err = uc.RegisterMovement(ctx, inventory.MovementInputDTO{
		UserID: userID, ProductID: productID, OriginStockID: stockA, DestinationStockID: stockB,
		Type: entity.MovementTypeTRANSFER, Quantity: 3,
	})
	require.NoError(t, err)

	assert.Equal(t, []string{stockB, stockB}, spy.ensured)
	assert.Equal(t, int64(5), quantity(t, db, stockB))
}

func TestRegisterMovement_CreditosConcurrentesSumanTodos(t *testing.T) {
	db, uc := setup(t, -1, -1)
	ctx := context.Background()

	const workers = 8
	var wg sync.WaitGroup
	errs := make(chan error, workers)
	for i := 1; i <= workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := uc.RegisterMovement(ctx, inventory.MovementInputDTO{
				UserID: userID, ProductID: productID, DestinationStockID: stockB,
				Type: entity.MovementTypeIN, Quantity: int64(i),
			})
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}

	var ledger int64
	for _, m := range movements(t, db) {
		ledger += m.Quantity
	}
	assert.Equal(t, int64(workers*(workers+1)/2), quantity(t, db, stockB))
	assert.Equal(t, ledger, quantity(t, db, stockB), "el holding coincide con la suma de asientos")
}

func TestRegisterMovement_InFallidoNoDejaHolding(t *testing.T) {
	db, uc := setup(t, -1, -1)
	db.FailOn("audit.create", errors.New("disco lleno"))

	_, err := uc.RegisterMovement(context.Background(), inventory.MovementInputDTO{
		UserID: userID, ProductID: productID, DestinationStockID: stockB, Type: entity.MovementTypeIN, Quantity: 4,
	})
	assert.ErrorIs(t, err, domain.ErrPersistence)
	assert.Equal(t, int64(-1), quantity(t, db, stockB))
}

func TestRegisterMovement_MismaUbicacion(t *testing.T) {
	db, uc := setup(t, 10, -1)

	_, err := uc.RegisterMovement(context.Background(), inventory.MovementInputDTO{
		UserID: userID, ProductID: productID,
		OriginStockID: stockA, DestinationStockID: stockA,
		Type: entity.MovementTypeTRANSFER, Quantity: 1,
	})
	assert.ErrorIs(t, err, domain.ErrConflict)
	assert.ErrorIs(t, err, domain.ErrSameLocation)
	assert.Equal(t, int64(10), quantity(t, db, stockA))
	assert.Empty(t, movements(t, db))
}

func TestRegisterMovement_Validaciones(t *testing.T) {
	_, uc := setup(t, 10, 10)
	ctx := context.Background()

	cases := []struct {
		name string
		in   inventory.MovementInputDTO
		want error
	}{
		{"in sin destino", inventory.MovementInputDTO{ProductID: productID, OriginStockID: stockA, Type: entity.MovementTypeIN, Quantity: 1}, domain.ErrMissingDestination},
		{"out sin origen", inventory.MovementInputDTO{ProductID: productID, DestinationStockID: stockB, Type: entity.MovementTypeOUT, Quantity: 1}, domain.ErrMissingOrigin},
		{"transfer sin destino", inventory.MovementInputDTO{ProductID: productID, OriginStockID: stockA, Type: entity.MovementTypeTRANSFER, Quantity: 1}, domain.ErrMissingDestination},
		{"cantidad cero", inventory.MovementInputDTO{ProductID: productID, DestinationStockID: stockB, Type: entity.MovementTypeIN}, domain.ErrInvalidInput},
		{"cantidad negativa", inventory.MovementInputDTO{ProductID: productID, DestinationStockID: stockB, Type: entity.MovementTypeIN, Quantity: -3}, domain.ErrInvalidInput},
		{"tipo desconocido", inventory.MovementInputDTO{ProductID: productID, DestinationStockID: stockB, Type: "ADJUSTMENT", Quantity: 1}, domain.ErrInvalidInput},
		{"producto inexistente", inventory.MovementInputDTO{ProductID: "nope", DestinationStockID: stockB, Type: entity.MovementTypeIN, Quantity: 1}, domain.ErrNotFound},
		{"estoque inexistente", inventory.MovementInputDTO{ProductID: productID, DestinationStockID: "nope", Type: entity.MovementTypeIN, Quantity: 1}, domain.ErrNotFound},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := uc.RegisterMovement(ctx, tc.in)
			assert.ErrorIs(t, err, tc.want)
		})
	}
}

func TestRegisterMovement_FallaAuditoriaRevierte(t *testing.T) {
	db, uc := setup(t, 100, 0)
	db.FailOn("audit.create", errors.New("disco lleno"))

	_, err := uc.RegisterMovement(context.Background(), inventory.MovementInputDTO{
		UserID: userID, ProductID: productID,
		OriginStockID: stockA, DestinationStockID: stockB,
		Type: entity.MovementTypeTRANSFER, Quantity: 30,
	})
	assert.ErrorIs(t, err, domain.ErrPersistence)
	assert.Equal(t, int64(100), quantity(t, db, stockA))
	assert.Equal(t, int64(0), quantity(t, db, stockB))
	assert.Empty(t, movements(t, db))
}

func TestRegisterMovementFromRequest(t *testing.T) {
	_, uc := setup(t, -1, -1)

	out, err := uc.RegisterMovementFromRequest(context.Background(), userID, dto.RegisterMovementRequest{
		ProductID:          productID,
		DestinationStockID: stockA,
		Type:               entity.MovementTypeIN,
		Quantity:           3,
		Observation:        "compra",
	})
	require.NoError(t, err)
	assert.Equal(t, entity.MovementTypeIN, out.Type)
	assert.Equal(t, int64(3), out.Quantity)
	assert.Equal(t, userID, out.CreatedBy)
	assert.Equal(t, "compra", out.Observation)
}

func TestMovementQuery(t *testing.T) {
	db, uc := setup(t, 10, -1)
	ctx := context.Background()
	_, err := uc.RegisterMovement(ctx, inventory.MovementInputDTO{UserID: userID, ProductID: productID, DestinationStockID: stockA, Type: entity.MovementTypeIN, Quantity: 1})
	require.NoError(t, err)
	last, err := uc.RegisterMovement(ctx, inventory.MovementInputDTO{UserID: userID, ProductID: productID, OriginStockID: stockA, Type: entity.MovementTypeOUT, Quantity: 2})
	require.NoError(t, err)

	q := inventory.NewMovementQueryUseCase(db.Repos().Movements, db.Repos().Products)

	got, err := q.GetByID(ctx, last.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.MovementTypeOUT, got.Type)

	_, err = q.GetByID(ctx, "nope")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	list, err := q.List(ctx, 10, 0)
	require.NoError(t, err)
	require.Len(t, list.Items, 2)
	assert.Equal(t, last.ID, list.Items[0].ID, "más reciente primero")

	byProduct, err := q.ListByProduct(ctx, productID)
	require.NoError(t, err)
	assert.Len(t, byProduct, 2)

	_, err = q.ListByProduct(ctx, "nope")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
