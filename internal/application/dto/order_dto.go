package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// CreateOrderRequest entrada para crear un pedido (siempre en borrador).
type CreateOrderRequest struct {
	StoreID   string     `json:"store_id"`
	OrderDate *time.Time `json:"order_date,omitempty"`
}

// UpdateOrderRequest entrada para actualizar un pedido en borrador.
type UpdateOrderRequest struct {
	StoreID   *string    `json:"store_id"`
	OrderDate *time.Time `json:"order_date"`
}

// OrderResponse salida de un pedido.
type OrderResponse struct {
	ID         string              `json:"id"`
	UserID     string              `json:"user_id"`
	StoreID    string              `json:"store_id"`
	Status     string              `json:"status"`
	OrderDate  time.Time           `json:"order_date"`
	TotalValue decimal.Decimal     `json:"total_value"`
	Items      []OrderItemResponse `json:"items,omitempty"`
	CreatedAt  time.Time           `json:"created_at"`
	UpdatedAt  time.Time           `json:"updated_at"`
}

// OrderListResponse lista paginada de pedidos.
type OrderListResponse struct {
	Items []OrderResponse `json:"items"`
	Page  PageResponse    `json:"page"`
}

// AddOrderItemRequest body para POST /api/orders/{id}/items.
// UnitPrice ausente o cero toma el precio del producto.
type AddOrderItemRequest struct {
	ProductID string           `json:"product_id"`
	StockID   string           `json:"stock_id"`
	Quantity  int64            `json:"quantity"`
	UnitPrice *decimal.Decimal `json:"unit_price,omitempty"`
}

// PatchOrderItemRequest actualización parcial de un ítem.
type PatchOrderItemRequest struct {
	StockID   *string          `json:"stock_id"`
	Quantity  *int64           `json:"quantity"`
	UnitPrice *decimal.Decimal `json:"unit_price"`
}

// OrderItemResponse salida de un ítem.
type OrderItemResponse struct {
	ID        string          `json:"id"`
	OrderID   string          `json:"order_id"`
	ProductID string          `json:"product_id"`
	StockID   string          `json:"stock_id"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	Quantity  int64           `json:"quantity"`
	Subtotal  decimal.Decimal `json:"subtotal"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// CheckoutResponse respuesta de POST /api/orders/{id}/checkout.
type CheckoutResponse struct {
	OrderID string `json:"order_id"`
	Status  string `json:"status"`
}
