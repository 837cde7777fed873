// Package audit registra la bitácora de auditoría de las mutaciones de negocio.
//
// Cada operación mutante llama explícitamente a Recorder.Record con los snapshots
// antes/después y el actor, usando el repositorio de auditoría atado a su propia
// transacción: si la auditoría falla, la mutación también se revierte.
package audit

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/jhoicas/estoques-api/internal/domain"
	snap "github.com/jhoicas/estoques-api/internal/domain/audit"
	"github.com/jhoicas/estoques-api/internal/domain/entity"
	"github.com/jhoicas/estoques-api/internal/domain/repository"
)

// Recorder construye y persiste entradas de auditoría inmutables.
type Recorder struct {
	now func() time.Time
}

// NewRecorder construye el recorder con el reloj del sistema.
func NewRecorder() *Recorder {
	return &Recorder{now: domain.Now}
}

// WithClock reemplaza el reloj (tests).
func (r *Recorder) WithClock(now func() time.Time) *Recorder {
	return &Recorder{now: now}
}

// Record persiste una entrada en sink. before es nil en CREATE y after es nil en DELETE.
func (r *Recorder) Record(
	ctx context.Context,
	sink repository.AuditRepository,
	kind, entityID, operation string,
	before, after snap.Fields,
	actorID string,
) (*entity.AuditEntry, error) {
	if kind == "" || entityID == "" || operation == "" {
		return nil, fmt.Errorf("%w: entrada de auditoría incompleta", domain.ErrInvalidInput)
	}
	oldData, err := snap.Marshal(before)
	if err != nil {
		return nil, err
	}
	newData, err := snap.Marshal(after)
	if err != nil {
		return nil, err
	}
	entry := &entity.AuditEntry{
		ID:         uuid.New().String(),
		EntityKind: kind,
		EntityID:   entityID,
		Operation:  operation,
		OldData:    oldData,
		NewData:    newData,
		ChangedBy:  actorID,
		CreatedAt:  r.now().UTC(),
	}
	if err := sink.Create(ctx, entry); err != nil {
		return nil, fmt.Errorf("registrar auditoría %s/%s: %w", kind, operation, err)
	}
	return entry, nil
}

// Created registra un CREATE del snapshotter s.
func (r *Recorder) Created(ctx context.Context, sink repository.AuditRepository, kind, id string, s snap.Snapshotter, actorID string) error {
	_, err := r.Record(ctx, sink, kind, id, entity.AuditOpCreate, nil, snap.Of(s), actorID)
	return err
}

// Updated registra un UPDATE con el estado anterior ya capturado.
func (r *Recorder) Updated(ctx context.Context, sink repository.AuditRepository, kind, id string, before snap.Fields, after snap.Snapshotter, actorID string) error {
	_, err := r.Record(ctx, sink, kind, id, entity.AuditOpUpdate, before, snap.Of(after), actorID)
	return err
}

// Deleted registra un DELETE.
func (r *Recorder) Deleted(ctx context.Context, sink repository.AuditRepository, kind, id string, before snap.Fields, actorID string) error {
	_, err := r.Record(ctx, sink, kind, id, entity.AuditOpDelete, before, nil, actorID)
	return err
}
