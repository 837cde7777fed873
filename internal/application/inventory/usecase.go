package inventory

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/jhoicas/estoques-api/internal/application/audit"
	"github.com/jhoicas/estoques-api/internal/application/ports"
	"github.com/jhoicas/estoques-api/internal/domain"
	"github.com/jhoicas/estoques-api/internal/domain/entity"
	"github.com/jhoicas/estoques-api/internal/domain/repository"
)

// RegisterMovementUseCase registra movimientos de estoque (IN, OUT, TRANSFER) de forma transaccional,
// con bloqueo de fila (SELECT FOR UPDATE) sobre los holdings afectados y Commit/Rollback.
type RegisterMovementUseCase struct {
	txRunner ports.TxRunner
	recorder *audit.Recorder
	now      func() time.Time
}

// NewRegisterMovementUseCase construye el caso de uso.
func NewRegisterMovementUseCase(txRunner ports.TxRunner, recorder *audit.Recorder) *RegisterMovementUseCase {
	return &RegisterMovementUseCase{
		txRunner: txRunner,
		recorder: recorder,
		now:      domain.Now,
	}
}

// MovementInputDTO entrada para registrar un movimiento.
// IN: DestinationStockID. OUT: OriginStockID. TRANSFER: ambos, distintos.
type MovementInputDTO struct {
	UserID             string
	ProductID          string
	OriginStockID      string
	DestinationStockID string
	Type               string
	Quantity           int64
	Observation        string
}

// validate aplica las reglas que no requieren leer la BD.
func (in *MovementInputDTO) validate() error {
	if in.ProductID == "" || in.Quantity <= 0 {
		return domain.ErrInvalidInput
	}
	switch in.Type {
	case entity.MovementTypeIN:
		if in.DestinationStockID == "" {
			return domain.ErrMissingDestination
		}
		in.OriginStockID = ""
	case entity.MovementTypeOUT:
		if in.OriginStockID == "" {
			return domain.ErrMissingOrigin
		}
		in.DestinationStockID = ""
	case entity.MovementTypeTRANSFER:
		if in.OriginStockID == "" {
			return domain.ErrMissingOrigin
		}
		if in.DestinationStockID == "" {
			return domain.ErrMissingDestination
		}
		if in.OriginStockID == in.DestinationStockID {
			return domain.ErrSameLocation
		}
	default:
		return domain.ErrInvalidInput
	}
	return nil
}

// RegisterMovement valida la entrada, abre una transacción, bloquea los holdings afectados,
// verifica suficiencia antes de mutar, aplica el movimiento, lo asienta y lo audita.
// Si cualquier paso falla no queda ni cambio de cantidad ni movimiento ni auditoría.
func (uc *RegisterMovementUseCase) RegisterMovement(ctx context.Context, input MovementInputDTO) (*entity.StockMovement, error) {
	if err := input.validate(); err != nil {
		return nil, err
	}

	var created *entity.StockMovement
	err := uc.txRunner.Run(ctx, func(r repository.Repos) error {
		if err := uc.checkReferences(ctx, r, input); err != nil {
			return err
		}
		now := uc.now()
		var err error
		switch input.Type {
		case entity.MovementTypeIN:
			err = uc.doIN(ctx, r, input, now)
		case entity.MovementTypeOUT:
			err = uc.doOUT(ctx, r, input, now)
		case entity.MovementTypeTRANSFER:
			err = uc.doTRANSFER(ctx, r, input, now)
		}
		if err != nil {
			return err
		}
		created, err = uc.appendMovement(ctx, r, input, now)
		return err
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

// checkReferences verifica que producto y estoques existan.
func (uc *RegisterMovementUseCase) checkReferences(ctx context.Context, r repository.Repos, input MovementInputDTO) error {
	product, err := r.Products.GetByID(ctx, input.ProductID)
	if err != nil {
		return err
	}
	if product == nil {
		return domain.ErrNotFound
	}
	for _, id := range []string{input.OriginStockID, input.DestinationStockID} {
		if id == "" {
			continue
		}
		stock, err := r.Stocks.GetByID(ctx, id)
		if err != nil {
			return err
		}
		if stock == nil {
			return domain.ErrNotFound
		}
	}
	return nil
}

// doIN suma la cantidad al holding de destino, creándolo si no existe.
func (uc *RegisterMovementUseCase) doIN(ctx context.Context, r repository.Repos, input MovementInputDTO, now time.Time) error {
	dest, err := r.Holdings.LockOrCreate(ctx, input.ProductID, input.DestinationStockID, now)
	if err != nil {
		return err
	}
	dest.Quantity += input.Quantity
	dest.UpdatedAt = now
	return r.Holdings.Upsert(ctx, dest)
}

// doOUT verifica Quantity >= solicitada y resta del holding de origen.
func (uc *RegisterMovementUseCase) doOUT(ctx context.Context, r repository.Repos, input MovementInputDTO, now time.Time) error {
	origin, err := r.Holdings.GetForUpdate(ctx, input.ProductID, input.OriginStockID)
	if err != nil {
		return err
	}
	if origin == nil {
		return domain.ErrProductMissingAtOrigin
	}
	if origin.Quantity < input.Quantity {
		return domain.ErrInsufficientStock
	}
	origin.Quantity -= input.Quantity
	origin.UpdatedAt = now
	return r.Holdings.Upsert(ctx, origin)
}

// doTRANSFER resta del origen y suma en destino en la misma transacción.
// Los dos holdings se bloquean siempre en el mismo orden (por id de estoque) para evitar deadlocks.
func (uc *RegisterMovementUseCase) doTRANSFER(ctx context.Context, r repository.Repos, input MovementInputDTO, now time.Time) error {
	var origin, dest *entity.Holding
	var err error
	if input.OriginStockID < input.DestinationStockID {
		if origin, err = r.Holdings.GetForUpdate(ctx, input.ProductID, input.OriginStockID); err != nil {
			return err
		}
		if dest, err = r.Holdings.LockOrCreate(ctx, input.ProductID, input.DestinationStockID, now); err != nil {
			return err
		}
	} else {
		if dest, err = r.Holdings.LockOrCreate(ctx, input.ProductID, input.DestinationStockID, now); err != nil {
			return err
		}
		if origin, err = r.Holdings.GetForUpdate(ctx, input.ProductID, input.OriginStockID); err != nil {
			return err
		}
	}
	if origin == nil {
		return domain.ErrProductNotInStock
	}
	if origin.Quantity < input.Quantity {
		return domain.ErrInsufficientStock
	}

	origin.Quantity -= input.Quantity
	dest.Quantity += input.Quantity
	origin.UpdatedAt = now
	dest.UpdatedAt = now
	if err := r.Holdings.Upsert(ctx, origin); err != nil {
		return err
	}
	return r.Holdings.Upsert(ctx, dest)
}

// DebitInTx ejecuta una salida (OUT) usando los repositorios de la transacción del caller.
// Lo usa la liquidación de pedidos: verifica suficiencia, descuenta, asienta el movimiento y lo audita.
func (uc *RegisterMovementUseCase) DebitInTx(
	ctx context.Context,
	r repository.Repos,
	productID, stockID, userID string,
	quantity int64,
	observation string,
) (*entity.StockMovement, error) {
	input := MovementInputDTO{
		UserID:        userID,
		ProductID:     productID,
		OriginStockID: stockID,
		Type:          entity.MovementTypeOUT,
		Quantity:      quantity,
		Observation:   observation,
	}
	if err := input.validate(); err != nil {
		return nil, err
	}
	now := uc.now()
	origin, err := r.Holdings.GetForUpdate(ctx, productID, stockID)
	if err != nil {
		return nil, err
	}
	if origin == nil || origin.Quantity < quantity {
		return nil, domain.ErrInsufficientStock
	}
	origin.Quantity -= quantity
	origin.UpdatedAt = now
	if err := r.Holdings.Upsert(ctx, origin); err != nil {
		return nil, err
	}
	return uc.appendMovement(ctx, r, input, now)
}

// appendMovement guarda el asiento inmutable y su auditoría CREATE.
func (uc *RegisterMovementUseCase) appendMovement(ctx context.Context, r repository.Repos, input MovementInputDTO, now time.Time) (*entity.StockMovement, error) {
	mov := &entity.StockMovement{
		ID:                 uuid.New().String(),
		ProductID:          input.ProductID,
		OriginStockID:      optional(input.OriginStockID),
		DestinationStockID: optional(input.DestinationStockID),
		Quantity:           input.Quantity,
		Type:               input.Type,
		Observation:        input.Observation,
		CreatedBy:          input.UserID,
		CreatedAt:          now,
	}
	if err := r.Movements.Create(ctx, mov); err != nil {
		return nil, err
	}
	if err := uc.recorder.Created(ctx, r.Audit, entity.AuditKindStockMovement, mov.ID, mov, input.UserID); err != nil {
		return nil, err
	}
	return mov, nil
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
