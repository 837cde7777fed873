package audit

import (
	"context"
	"slices"

	"github.com/jhoicas/estoques-api/internal/application/dto"
	"github.com/jhoicas/estoques-api/internal/domain"
	"github.com/jhoicas/estoques-api/internal/domain/entity"
	"github.com/jhoicas/estoques-api/internal/domain/repository"
)

// QueryUseCase lectura de la bitácora (endpoints /auditoria).
type QueryUseCase struct {
	repo repository.AuditRepository
}

// NewQueryUseCase construye el caso de uso.
func NewQueryUseCase(repo repository.AuditRepository) *QueryUseCase {
	return &QueryUseCase{repo: repo}
}

// List devuelve las entradas más recientes primero. kind y entityID vacíos no filtran.
func (uc *QueryUseCase) List(ctx context.Context, kind, entityID string, limit, offset int) (*dto.AuditListResponse, error) {
	if kind != "" && !slices.Contains(entity.AuditKinds, kind) {
		return nil, domain.ErrInvalidInput
	}
	if limit <= 0 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}
	list, err := uc.repo.List(ctx, repository.AuditFilter{
		EntityKind: kind,
		EntityID:   entityID,
		Limit:      limit,
		Offset:     offset,
	})
	if err != nil {
		return nil, err
	}
	items := make([]dto.AuditEntryResponse, 0, len(list))
	for _, e := range list {
		items = append(items, toAuditResponse(e))
	}
	return &dto.AuditListResponse{
		Items: items,
		Page:  dto.PageResponse{Limit: limit, Offset: offset},
	}, nil
}

func toAuditResponse(e *entity.AuditEntry) dto.AuditEntryResponse {
	return dto.AuditEntryResponse{
		ID:         e.ID,
		EntityKind: e.EntityKind,
		EntityID:   e.EntityID,
		Operation:  e.Operation,
		OldData:    e.OldData,
		NewData:    e.NewData,
		ChangedBy:  e.ChangedBy,
		CreatedAt:  e.CreatedAt,
	}
}
