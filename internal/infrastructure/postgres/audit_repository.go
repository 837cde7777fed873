package postgres

import (
	"context"

	"github.com/jhoicas/estoques-api/internal/domain/entity"
	"github.com/jhoicas/estoques-api/internal/domain/repository"
)

var _ repository.AuditRepository = (*AuditRepo)(nil)

// AuditRepo bitácora append-only sobre la tabla audit_log.
type AuditRepo struct {
	q Querier
}

// NewAuditRepository construye el adaptador. Dentro de una tx, la entrada se confirma junto con el cambio auditado.
func NewAuditRepository(q Querier) *AuditRepo {
	return &AuditRepo{q: q}
}

// Create inserta una entrada. old_data/new_data nil se guardan como NULL.
func (r *AuditRepo) Create(ctx context.Context, e *entity.AuditEntry) error {
	query := `
		INSERT INTO audit_log (id, entity_kind, entity_id, operation, old_data, new_data, changed_by, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
	_, err := r.q.Exec(ctx, query,
		e.ID, e.EntityKind, e.EntityID, e.Operation, nullJSON(e.OldData), nullJSON(e.NewData), e.ChangedBy, e.CreatedAt,
	)
	if err != nil {
		return persistErr("insert audit entry", err)
	}
	return nil
}

// List consulta la bitácora, más reciente primero.
func (r *AuditRepo) List(ctx context.Context, f repository.AuditFilter) ([]*entity.AuditEntry, error) {
	query := `
		SELECT id, entity_kind, entity_id, operation, old_data, new_data, changed_by, created_at
		FROM audit_log
		WHERE ($1 = '' OR entity_kind = $1)
		  AND ($2 = '' OR entity_id = $2)
		  AND ($3 = '' OR changed_by = $3)
		ORDER BY created_at DESC, id
		LIMIT $4 OFFSET $5`
	rows, err := r.q.Query(ctx, query, f.EntityKind, f.EntityID, f.ChangedBy, f.Limit, f.Offset)
	if err != nil {
		return nil, persistErr("list audit entries", err)
	}
	defer rows.Close()
	var list []*entity.AuditEntry
	for rows.Next() {
		var e entity.AuditEntry
		var oldData, newData []byte
		if err := rows.Scan(&e.ID, &e.EntityKind, &e.EntityID, &e.Operation, &oldData, &newData, &e.ChangedBy, &e.CreatedAt); err != nil {
			return nil, persistErr("scan audit entry", err)
		}
		e.OldData = oldData
		e.NewData = newData
		list = append(list, &e)
	}
	if err := rows.Err(); err != nil {
		return nil, persistErr("list audit entries", err)
	}
	return list, nil
}

// nullJSON convierte un payload vacío en NULL.
func nullJSON(b []byte) any {
	if len(b) == 0 {
		return nil
	}
	return string(b)
}
