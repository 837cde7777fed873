package dto

import (
	"encoding/json"
	"time"
)

// AuditEntryResponse salida de una entrada de la bitácora.
type AuditEntryResponse struct {
	ID         string          `json:"id"`
	EntityKind string          `json:"entity_kind"`
	EntityID   string          `json:"entity_id"`
	Operation  string          `json:"operation"`
	OldData    json.RawMessage `json:"old_data"`
	NewData    json.RawMessage `json:"new_data"`
	ChangedBy  string          `json:"changed_by"`
	CreatedAt  time.Time       `json:"created_at"`
}

// AuditListResponse lista paginada de la bitácora.
type AuditListResponse struct {
	Items []AuditEntryResponse `json:"items"`
	Page  PageResponse         `json:"page"`
}
