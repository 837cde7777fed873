// Package order implementa el ciclo de vida del pedido: borrador, ítems, total y liquidación.
package order

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/estoques-api/internal/application/audit"
	"github.com/jhoicas/estoques-api/internal/application/dto"
	"github.com/jhoicas/estoques-api/internal/application/ports"
	"github.com/jhoicas/estoques-api/internal/domain"
	"github.com/jhoicas/estoques-api/internal/domain/entity"
	domorder "github.com/jhoicas/estoques-api/internal/domain/order"
	"github.com/jhoicas/estoques-api/internal/domain/repository"
)

// OrderUseCase casos de uso de pedidos. Las mutaciones corren en txRunner; las lecturas usan repos.
type OrderUseCase struct {
	txRunner  ports.TxRunner
	repos     repository.Repos
	debiter   StockDebiter
	recorder  *audit.Recorder
	strategy  domorder.TotalStrategy
	publisher CheckoutPublisher
	now       func() time.Time
}

// NewOrderUseCase construye el caso de uso. strategy nil usa RegularTotal.
func NewOrderUseCase(
	txRunner ports.TxRunner,
	repos repository.Repos,
	debiter StockDebiter,
	recorder *audit.Recorder,
	strategy domorder.TotalStrategy,
) *OrderUseCase {
	if strategy == nil {
		strategy = domorder.RegularTotal{}
	}
	return &OrderUseCase{
		txRunner: txRunner,
		repos:    repos,
		debiter:  debiter,
		recorder: recorder,
		strategy: strategy,
		now:      domain.Now,
	}
}

// WithPublisher habilita el checkout asíncrono.
func (uc *OrderUseCase) WithPublisher(p CheckoutPublisher) *OrderUseCase {
	uc.publisher = p
	return uc
}

// Create crea un pedido en borrador con total 0 para el usuario actor.
func (uc *OrderUseCase) Create(ctx context.Context, userID string, in dto.CreateOrderRequest) (*dto.OrderResponse, error) {
	if in.StoreID == "" {
		return nil, domain.ErrInvalidInput
	}
	var created *entity.Order
	err := uc.txRunner.Run(ctx, func(r repository.Repos) error {
		store, err := r.Stores.GetByID(ctx, in.StoreID)
		if err != nil {
			return err
		}
		if store == nil {
			return domain.ErrNotFound
		}
		now := uc.now()
		orderDate := now
		if in.OrderDate != nil {
			orderDate = in.OrderDate.Truncate(time.Microsecond)
		}
		created = &entity.Order{
			ID:         uuid.New().String(),
			UserID:     userID,
			StoreID:    in.StoreID,
			Status:     entity.OrderStatusDraft,
			OrderDate:  orderDate,
			TotalValue: decimal.Zero,
			CreatedAt:  now,
			UpdatedAt:  now,
		}
		if err := r.Orders.Create(ctx, created); err != nil {
			return err
		}
		return uc.recorder.Created(ctx, r.Audit, entity.AuditKindOrder, created.ID, created, userID)
	})
	if err != nil {
		return nil, err
	}
	return toOrderResponse(created, nil), nil
}

// GetByID obtiene un pedido con sus ítems.
func (uc *OrderUseCase) GetByID(ctx context.Context, id string) (*dto.OrderResponse, error) {
	o, err := uc.repos.Orders.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if o == nil {
		return nil, domain.ErrNotFound
	}
	items, err := uc.repos.OrderItems.ListByOrder(ctx, id)
	if err != nil {
		return nil, err
	}
	return toOrderResponse(o, items), nil
}

// List lista los pedidos de un usuario (todos si userID está vacío).
func (uc *OrderUseCase) List(ctx context.Context, userID string, limit, offset int) (*dto.OrderListResponse, error) {
	list, err := uc.repos.Orders.List(ctx, userID, limit, offset)
	if err != nil {
		return nil, err
	}
	items := make([]dto.OrderResponse, 0, len(list))
	for _, o := range list {
		items = append(items, *toOrderResponse(o, nil))
	}
	return &dto.OrderListResponse{
		Items: items,
		Page:  dto.PageResponse{Limit: limit, Offset: offset},
	}, nil
}

// Update cambia tienda y/o fecha de un pedido en borrador.
func (uc *OrderUseCase) Update(ctx context.Context, id, userID string, in dto.UpdateOrderRequest) (*dto.OrderResponse, error) {
	var updated *entity.Order
	err := uc.txRunner.Run(ctx, func(r repository.Repos) error {
		o, err := lockDraft(ctx, r, id)
		if err != nil {
			return err
		}
		before := o.Snapshot()
		if in.StoreID != nil && *in.StoreID != o.StoreID {
			store, err := r.Stores.GetByID(ctx, *in.StoreID)
			if err != nil {
				return err
			}
			if store == nil {
				return domain.ErrNotFound
			}
			o.StoreID = *in.StoreID
		}
		if in.OrderDate != nil {
			o.OrderDate = in.OrderDate.Truncate(time.Microsecond)
		}
		o.UpdatedAt = uc.now()
		if err := r.Orders.Update(ctx, o); err != nil {
			return err
		}
		updated = o
		return uc.recorder.Updated(ctx, r.Audit, entity.AuditKindOrder, o.ID, before, o, userID)
	})
	if err != nil {
		return nil, err
	}
	return toOrderResponse(updated, nil), nil
}

// Delete elimina un pedido solo si está en borrador y no tiene ítems.
func (uc *OrderUseCase) Delete(ctx context.Context, id, userID string) error {
	return uc.txRunner.Run(ctx, func(r repository.Repos) error {
		o, err := lockDraft(ctx, r, id)
		if err != nil {
			return err
		}
		items, err := r.OrderItems.ListByOrder(ctx, id)
		if err != nil {
			return err
		}
		if len(items) > 0 {
			return domain.ErrOrderHasItems
		}
		if err := r.Orders.Delete(ctx, id); err != nil {
			return err
		}
		return uc.recorder.Deleted(ctx, r.Audit, entity.AuditKindOrder, id, o.Snapshot(), userID)
	})
}

// lockDraft bloquea el pedido y exige estado borrador.
func lockDraft(ctx context.Context, r repository.Repos, id string) (*entity.Order, error) {
	o, err := r.Orders.GetForUpdate(ctx, id)
	if err != nil {
		return nil, err
	}
	if o == nil {
		return nil, domain.ErrNotFound
	}
	if !o.IsDraft() {
		return nil, domain.ErrOrderNotDraft
	}
	return o, nil
}

func toOrderResponse(o *entity.Order, items []*entity.OrderItem) *dto.OrderResponse {
	if o == nil {
		return nil
	}
	resp := &dto.OrderResponse{
		ID:         o.ID,
		UserID:     o.UserID,
		StoreID:    o.StoreID,
		Status:     o.Status,
		OrderDate:  o.OrderDate,
		TotalValue: o.TotalValue,
		CreatedAt:  o.CreatedAt,
		UpdatedAt:  o.UpdatedAt,
	}
	for _, it := range items {
		resp.Items = append(resp.Items, *toItemResponse(it))
	}
	return resp
}

func toItemResponse(it *entity.OrderItem) *dto.OrderItemResponse {
	if it == nil {
		return nil
	}
	return &dto.OrderItemResponse{
		ID:        it.ID,
		OrderID:   it.OrderID,
		ProductID: it.ProductID,
		StockID:   it.StockID,
		UnitPrice: it.UnitPrice,
		Quantity:  it.Quantity,
		Subtotal:  it.Subtotal,
		CreatedAt: it.CreatedAt,
		UpdatedAt: it.UpdatedAt,
	}
}
