package entity

import (
	"time"

	"github.com/jhoicas/estoques-api/internal/domain/audit"
)

// Tipos de movimiento de estoque.
const (
	MovementTypeIN       = "in"       // entrada (compra, producción)
	MovementTypeOUT      = "out"      // salida (venta, pérdida)
	MovementTypeTRANSFER = "transfer" // traslado entre estoques
)

// StockMovement es un asiento inmutable del libro de estoque; nunca se actualiza.
type StockMovement struct {
	ID                 string
	ProductID          string
	OriginStockID      *string
	DestinationStockID *string
	Quantity           int64
	Type               string
	Observation        string
	CreatedBy          string
	CreatedAt          time.Time
}

// Snapshot implementa audit.Snapshotter.
func (m *StockMovement) Snapshot() audit.Fields {
	if m == nil {
		return nil
	}
	return audit.Fields{
		"id":                   m.ID,
		"product_id":           m.ProductID,
		"origin_stock_id":      audit.OptString(m.OriginStockID),
		"destination_stock_id": audit.OptString(m.DestinationStockID),
		"quantity":             m.Quantity,
		"movement_type":        m.Type,
		"observation":          m.Observation,
		"created_by":           m.CreatedBy,
		"created_at":           audit.Time(m.CreatedAt),
	}
}
