package repository

import (
	"context"

	"github.com/jhoicas/estoques-api/internal/domain/entity"
)

// AuditFilter criterios de consulta de la bitácora. Campos vacíos no filtran.
type AuditFilter struct {
	EntityKind string
	EntityID   string
	ChangedBy  string
	Limit      int
	Offset     int
}

// AuditRepository es el sumidero de auditoría: solo inserción y lectura.
type AuditRepository interface {
	Create(ctx context.Context, entry *entity.AuditEntry) error
	List(ctx context.Context, filter AuditFilter) ([]*entity.AuditEntry, error)
}
