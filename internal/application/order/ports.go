package order

import (
	"context"

	"github.com/jhoicas/estoques-api/internal/domain/entity"
	"github.com/jhoicas/estoques-api/internal/domain/repository"
)

// StockDebiter descuenta estoque dentro de la transacción del caller (motor de inventario).
type StockDebiter interface {
	DebitInTx(
		ctx context.Context,
		r repository.Repos,
		productID, stockID, userID string,
		quantity int64,
		observation string,
	) (*entity.StockMovement, error)
}

// CheckoutPublisher encola la liquidación asíncrona de un pedido.
type CheckoutPublisher interface {
	PublishCheckout(ctx context.Context, orderID string) error
}
