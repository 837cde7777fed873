// Package audit contiene la captura de snapshots de entidades para la bitácora de auditoría.
//
// Un snapshot es un mapa plano columna -> valor listo para JSON: las fechas se
// serializan en ISO-8601 (RFC 3339, UTC) y los decimales como string para no
// perder precisión en montos.
package audit

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// Fields es el snapshot de una entidad.
type Fields map[string]any

// Snapshotter lo implementan las entidades auditadas; debe enumerar todas las columnas persistidas.
type Snapshotter interface {
	Snapshot() Fields
}

// Of devuelve el snapshot de s, o nil si s es nil. Las entidades devuelven nil desde receptores nil.
func Of(s Snapshotter) Fields {
	if s == nil {
		return nil
	}
	return s.Snapshot()
}

// Marshal serializa un snapshot; nil produce nil (columna NULL).
func Marshal(f Fields) (json.RawMessage, error) {
	if f == nil {
		return nil, nil
	}
	b, err := json.Marshal(f)
	if err != nil {
		return nil, fmt.Errorf("serializar snapshot: %w", err)
	}
	return b, nil
}

// Time formatea un instante en ISO-8601 UTC.
func Time(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

// Date formatea solo la fecha (YYYY-MM-DD).
func Date(t time.Time) string {
	return t.Format(time.DateOnly)
}

// Decimal conserva todos los dígitos del valor.
func Decimal(d decimal.Decimal) string {
	return d.String()
}

// OptString devuelve nil para punteros nil.
func OptString(s *string) any {
	if s == nil {
		return nil
	}
	return *s
}
