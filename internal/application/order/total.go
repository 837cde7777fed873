package order

import (
	"context"

	"github.com/jhoicas/estoques-api/internal/application/dto"
	"github.com/jhoicas/estoques-api/internal/domain/entity"
	"github.com/jhoicas/estoques-api/internal/domain/repository"
)

// RecalculateOrderTotal recalcula y persiste el total de un pedido en borrador con la estrategia configurada.
func (uc *OrderUseCase) RecalculateOrderTotal(ctx context.Context, orderID, userID string) (*dto.OrderResponse, error) {
	var result *entity.Order
	err := uc.txRunner.Run(ctx, func(r repository.Repos) error {
		o, err := lockDraft(ctx, r, orderID)
		if err != nil {
			return err
		}
		if err := uc.applyTotal(ctx, r, o, userID); err != nil {
			return err
		}
		result = o
		return nil
	})
	if err != nil {
		return nil, err
	}
	return toOrderResponse(result, nil), nil
}

// applyTotal escribe total_value = strategy(items). Solo persiste y audita si el valor cambió.
func (uc *OrderUseCase) applyTotal(ctx context.Context, r repository.Repos, o *entity.Order, userID string) error {
	items, err := r.OrderItems.ListByOrder(ctx, o.ID)
	if err != nil {
		return err
	}
	total := uc.strategy.Calculate(items)
	if total.Equal(o.TotalValue) {
		return nil
	}
	before := o.Snapshot()
	o.TotalValue = total
	o.UpdatedAt = uc.now()
	if err := r.Orders.Update(ctx, o); err != nil {
		return err
	}
	return uc.recorder.Updated(ctx, r.Audit, entity.AuditKindOrder, o.ID, before, o, userID)
}
