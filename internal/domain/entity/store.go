package entity

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/estoques-api/internal/domain/audit"
)

// Store representa una tienda. Balance solo aumenta por la liquidación de pedidos.
type Store struct {
	ID          string
	Name        string
	CNPJ        string
	Email       string
	PhoneNumber string
	City        string
	UF          string
	ZipCode     string
	Address     string
	Image       string
	Balance     decimal.Decimal
	CreatedBy   string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Snapshot implementa audit.Snapshotter.
func (s *Store) Snapshot() audit.Fields {
	if s == nil {
		return nil
	}
	return audit.Fields{
		"id":           s.ID,
		"name":         s.Name,
		"cnpj":         s.CNPJ,
		"email":        s.Email,
		"phone_number": s.PhoneNumber,
		"city":         s.City,
		"uf":           s.UF,
		"zip_code":     s.ZipCode,
		"address":      s.Address,
		"image":        s.Image,
		"balance":      audit.Decimal(s.Balance),
		"created_by":   s.CreatedBy,
		"created_at":   audit.Time(s.CreatedAt),
		"updated_at":   audit.Time(s.UpdatedAt),
	}
}
