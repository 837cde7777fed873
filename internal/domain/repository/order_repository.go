package repository

import (
	"context"

	"github.com/jhoicas/estoques-api/internal/domain/entity"
)

// OrderRepository define el puerto de persistencia para Order.
type OrderRepository interface {
	Create(ctx context.Context, order *entity.Order) error
	GetByID(ctx context.Context, id string) (*entity.Order, error)
	// GetForUpdate bloquea la fila del pedido; serializa finalizaciones concurrentes.
	GetForUpdate(ctx context.Context, id string) (*entity.Order, error)
	Update(ctx context.Context, order *entity.Order) error
	Delete(ctx context.Context, id string) error
	// List filtra por usuario si userID no está vacío.
	List(ctx context.Context, userID string, limit, offset int) ([]*entity.Order, error)
	ExistsByStore(ctx context.Context, storeID string) (bool, error)
}

// OrderItemRepository define el puerto de persistencia para OrderItem.
type OrderItemRepository interface {
	Create(ctx context.Context, item *entity.OrderItem) error
	GetByID(ctx context.Context, id string) (*entity.OrderItem, error)
	Update(ctx context.Context, item *entity.OrderItem) error
	Delete(ctx context.Context, id string) error
	ListByOrder(ctx context.Context, orderID string) ([]*entity.OrderItem, error)
	// FindByProduct devuelve nil, nil si el pedido no tiene ítem para ese producto y estoque.
	FindByProduct(ctx context.Context, orderID, productID, stockID string) (*entity.OrderItem, error)
}
