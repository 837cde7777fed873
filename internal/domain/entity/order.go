package entity

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/estoques-api/internal/domain/audit"
)

// Estados del pedido. Transición válida: draft -> paid (finalizar).
// completed existe en la enumeración pero ninguna operación llega a él.
const (
	OrderStatusDraft     = "draft"
	OrderStatusPaid      = "paid"
	OrderStatusCompleted = "completed"
)

// Order representa un pedido de un usuario en una tienda.
type Order struct {
	ID         string
	UserID     string
	StoreID    string
	Status     string
	OrderDate  time.Time
	TotalValue decimal.Decimal
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// IsDraft indica si el pedido aún acepta cambios.
func (o *Order) IsDraft() bool {
	return o.Status == OrderStatusDraft
}

// Snapshot implementa audit.Snapshotter.
func (o *Order) Snapshot() audit.Fields {
	if o == nil {
		return nil
	}
	return audit.Fields{
		"id":          o.ID,
		"user_id":     o.UserID,
		"store_id":    o.StoreID,
		"status":      o.Status,
		"order_date":  audit.Date(o.OrderDate),
		"total_value": audit.Decimal(o.TotalValue),
		"created_at":  audit.Time(o.CreatedAt),
		"updated_at":  audit.Time(o.UpdatedAt),
	}
}
