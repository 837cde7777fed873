package order

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/estoques-api/internal/application/dto"
	"github.com/jhoicas/estoques-api/internal/domain"
	"github.com/jhoicas/estoques-api/internal/domain/entity"
	"github.com/jhoicas/estoques-api/internal/domain/repository"
)

// FinalizeOrder liquida un pedido en una sola transacción:
//  1. bloquea el pedido y exige borrador (un segundo finalize falla con ErrOrderNotDraft);
//  2. lo marca como pagado;
//  3. por cada ítem descuenta la cantidad del estoque del ítem (revalidando suficiencia)
//     y acumula el subtotal en el saldo de la tienda;
//  4. crea un nuevo pedido en borrador para el mismo usuario y tienda.
//
// Cualquier error revierte todo, incluidas las entradas de auditoría.
// userID vacío usa el dueño del pedido como actor (liquidación desde la cola).
func (uc *OrderUseCase) FinalizeOrder(ctx context.Context, orderID, userID string) (*entity.Order, error) {
	var draft *entity.Order
	err := uc.txRunner.Run(ctx, func(r repository.Repos) error {
		o, err := r.Orders.GetForUpdate(ctx, orderID)
		if err != nil {
			return err
		}
		if o == nil {
			return domain.ErrNotFound
		}
		if !o.IsDraft() {
			return domain.ErrOrderNotDraft
		}
		actor := userID
		if actor == "" {
			actor = o.UserID
		}
		store, err := r.Stores.GetForUpdate(ctx, o.StoreID)
		if err != nil {
			return err
		}
		if store == nil {
			return domain.ErrNotFound
		}

		now := uc.now()
		before := o.Snapshot()
		o.Status = entity.OrderStatusPaid
		o.UpdatedAt = now
		if err := r.Orders.Update(ctx, o); err != nil {
			return err
		}
		if err := uc.recorder.Updated(ctx, r.Audit, entity.AuditKindOrder, o.ID, before, o, actor); err != nil {
			return err
		}

		items, err := r.OrderItems.ListByOrder(ctx, o.ID)
		if err != nil {
			return err
		}
		credit := decimal.Zero
		for _, it := range items {
			product, err := r.Products.GetByID(ctx, it.ProductID)
			if err != nil {
				return err
			}
			if product == nil {
				return fmt.Errorf("%w: producto %s del ítem %s", domain.ErrNotFound, it.ProductID, it.ID)
			}
			note := fmt.Sprintf("pedido %s", o.ID)
			if _, err := uc.debiter.DebitInTx(ctx, r, it.ProductID, it.StockID, actor, it.Quantity, note); err != nil {
				return err
			}
			credit = credit.Add(it.Subtotal)
		}

		if len(items) > 0 {
			storeBefore := store.Snapshot()
			store.Balance = store.Balance.Add(credit)
			store.UpdatedAt = now
			if err := r.Stores.UpdateBalance(ctx, store.ID, store.Balance); err != nil {
				return err
			}
			if err := uc.recorder.Updated(ctx, r.Audit, entity.AuditKindStore, store.ID, storeBefore, store, actor); err != nil {
				return err
			}
		}

		draft = &entity.Order{
			ID:         uuid.New().String(),
			UserID:     o.UserID,
			StoreID:    o.StoreID,
			Status:     entity.OrderStatusDraft,
			OrderDate:  now,
			TotalValue: decimal.Zero,
			CreatedAt:  now,
			UpdatedAt:  now,
		}
		if err := r.Orders.Create(ctx, draft); err != nil {
			return err
		}
		return uc.recorder.Created(ctx, r.Audit, entity.AuditKindOrder, draft.ID, draft, actor)
	})
	if err != nil {
		return nil, err
	}
	return draft, nil
}

// Finalize es FinalizeOrder con salida DTO (handler HTTP).
func (uc *OrderUseCase) Finalize(ctx context.Context, orderID, userID string) (*dto.OrderResponse, error) {
	draft, err := uc.FinalizeOrder(ctx, orderID, userID)
	if err != nil {
		return nil, err
	}
	return toOrderResponse(draft, nil), nil
}
