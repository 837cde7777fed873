package entity

import (
	"time"

	"github.com/jhoicas/estoques-api/internal/domain/audit"
)

// Stock representa un estoque (ubicación física) que pertenece opcionalmente a una tienda.
type Stock struct {
	ID        string
	StoreID   *string
	Name      string
	City      string
	UF        string
	ZipCode   string
	Address   string
	CreatedBy string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Snapshot implementa audit.Snapshotter.
func (s *Stock) Snapshot() audit.Fields {
	if s == nil {
		return nil
	}
	return audit.Fields{
		"id":         s.ID,
		"store_id":   audit.OptString(s.StoreID),
		"name":       s.Name,
		"city":       s.City,
		"uf":         s.UF,
		"zip_code":   s.ZipCode,
		"address":    s.Address,
		"created_by": s.CreatedBy,
		"created_at": audit.Time(s.CreatedAt),
		"updated_at": audit.Time(s.UpdatedAt),
	}
}
