package entity

import (
	"encoding/json"
	"time"
)

// Tipos de entidad auditada.
const (
	AuditKindProduct       = "product"
	AuditKindStock         = "stock"
	AuditKindStockMovement = "stock_movement"
	AuditKindStore         = "store"
	AuditKindOrder         = "order"
	AuditKindOrderItem     = "order_item"
)

// Operaciones de auditoría. Se admiten operaciones propias (ej. ADD_PRODUCT_TO_STOCK).
const (
	AuditOpCreate            = "CREATE"
	AuditOpUpdate            = "UPDATE"
	AuditOpDelete            = "DELETE"
	AuditOpAddProductToStock = "ADD_PRODUCT_TO_STOCK"
)

// AuditKinds lista los tipos válidos para consulta.
var AuditKinds = []string{
	AuditKindProduct, AuditKindStock, AuditKindStockMovement,
	AuditKindStore, AuditKindOrder, AuditKindOrderItem,
}

// AuditEntry registro inmutable de la bitácora; solo se inserta.
type AuditEntry struct {
	ID         string
	EntityKind string
	EntityID   string
	Operation  string
	OldData    json.RawMessage // nil en CREATE
	NewData    json.RawMessage // nil en DELETE
	ChangedBy  string
	CreatedAt  time.Time
}
