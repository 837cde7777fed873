package entity

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/estoques-api/internal/domain/audit"
)

// Product representa un producto (SKU) del catálogo.
// Las cantidades por estoque viven en Holding; un producto puede estar en varios estoques.
type Product struct {
	ID          string
	SKU         string
	Name        string
	Description string
	Category    string
	Image       string
	Price       decimal.Decimal // precio de venta sugerido
	CreatedBy   string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Snapshot implementa audit.Snapshotter.
func (p *Product) Snapshot() audit.Fields {
	if p == nil {
		return nil
	}
	return audit.Fields{
		"id":          p.ID,
		"sku":         p.SKU,
		"name":        p.Name,
		"description": p.Description,
		"category":    p.Category,
		"image":       p.Image,
		"price":       audit.Decimal(p.Price),
		"created_by":  p.CreatedBy,
		"created_at":  audit.Time(p.CreatedAt),
		"updated_at":  audit.Time(p.UpdatedAt),
	}
}
