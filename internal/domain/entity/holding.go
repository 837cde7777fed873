package entity

import (
	"time"

	"github.com/jhoicas/estoques-api/internal/domain/audit"
)

// Holding es la cantidad de un producto en un estoque (tabla product_stock).
// Invariante: Quantity >= 0.
type Holding struct {
	ProductID string
	StockID   string
	Quantity  int64
	UpdatedAt time.Time
}

// Snapshot implementa audit.Snapshotter.
func (h *Holding) Snapshot() audit.Fields {
	if h == nil {
		return nil
	}
	return audit.Fields{
		"product_id": h.ProductID,
		"stock_id":   h.StockID,
		"quantity":   h.Quantity,
		"updated_at": audit.Time(h.UpdatedAt),
	}
}
