package order

import (
	"context"

	"github.com/jhoicas/estoques-api/internal/application/dto"
	"github.com/jhoicas/estoques-api/internal/domain"
)

// Estados de respuesta del checkout.
const (
	CheckoutQueued  = "queued"
	CheckoutSettled = "settled"
)

// Checkout encola la liquidación del pedido. Sin publisher configurado liquida en línea.
// Solo valida que el pedido exista y esté en borrador; el worker revalida al liquidar.
func (uc *OrderUseCase) Checkout(ctx context.Context, orderID, userID string) (*dto.CheckoutResponse, error) {
	o, err := uc.repos.Orders.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if o == nil {
		return nil, domain.ErrNotFound
	}
	if !o.IsDraft() {
		return nil, domain.ErrOrderNotDraft
	}
	if uc.publisher == nil {
		if _, err := uc.FinalizeOrder(ctx, orderID, userID); err != nil {
			return nil, err
		}
		return &dto.CheckoutResponse{OrderID: orderID, Status: CheckoutSettled}, nil
	}
	if err := uc.publisher.PublishCheckout(ctx, orderID); err != nil {
		return nil, err
	}
	return &dto.CheckoutResponse{OrderID: orderID, Status: CheckoutQueued}, nil
}
