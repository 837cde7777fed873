package entity

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/estoques-api/internal/domain/audit"
)

// OrderItem es una línea de pedido. Subtotal = UnitPrice * Quantity en todo momento.
type OrderItem struct {
	ID        string
	OrderID   string
	ProductID string
	StockID   string
	UnitPrice decimal.Decimal
	Quantity  int64
	Subtotal  decimal.Decimal
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Recalculate actualiza Subtotal a partir de precio y cantidad.
func (i *OrderItem) Recalculate() {
	i.Subtotal = i.UnitPrice.Mul(decimal.NewFromInt(i.Quantity))
}

// Snapshot implementa audit.Snapshotter.
func (i *OrderItem) Snapshot() audit.Fields {
	if i == nil {
		return nil
	}
	return audit.Fields{
		"id":         i.ID,
		"order_id":   i.OrderID,
		"product_id": i.ProductID,
		"stock_id":   i.StockID,
		"unit_price": audit.Decimal(i.UnitPrice),
		"quantity":   i.Quantity,
		"subtotal":   audit.Decimal(i.Subtotal),
		"created_at": audit.Time(i.CreatedAt),
		"updated_at": audit.Time(i.UpdatedAt),
	}
}
