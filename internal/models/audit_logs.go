package models

import (
	"time"

	"github.com/google/uuid"
)

// JSONB is an opaque structured payload persisted as a jsonb column.
type JSONB map[string]interface{}

// AuditLog is one append-only entry in the system-wide audit trail. Entries
// exist for every mutable entity type, not just daily records, and are never
// updated or deleted by the application.
type AuditLog struct {
	ID        uuid.UUID  `json:"id" db:"id"`
	TableName string     `json:"table_name" db:"table_name"`
	RecordID  string     `json:"record_id" db:"record_id"`
	Action    string     `json:"action" db:"action"`
	OldValues JSONB      `json:"old_values" db:"old_values"`
	NewValues JSONB      `json:"new_values" db:"new_values"`
	UserID    *uuid.UUID `json:"user_id" db:"user_id"` // nil for system actions
	Reason    *string    `json:"reason" db:"reason"`
	IPAddress *string    `json:"ip_address" db:"ip_address"`
	UserAgent *string    `json:"user_agent" db:"user_agent"`
	CreatedAt time.Time  `json:"created_at" db:"created_at"`
}

// Action constants for audit logs
const (
	ActionInsert = "INSERT"
	ActionUpdate = "UPDATE"
	ActionDelete = "DELETE"
)

// AuditLogFilters represents filters for querying the audit trail
type AuditLogFilters struct {
	TableName *string    `json:"table_name"`
	RecordID  *string    `json:"record_id"`
	Action    *string    `json:"action"`
	UserID    *uuid.UUID `json:"user_id"`
	StartDate *time.Time `json:"start_date"`
	EndDate   *time.Time `json:"end_date"`
	Limit     int        `json:"limit"`
	Offset    int        `json:"offset"`
}

// RequestMeta carries the network/client provenance recorded with every
// audit entry. Zero values mean the origin is unknown (e.g. system jobs).
type RequestMeta struct {
	IPAddress string `json:"ip_address"`
	UserAgent string `json:"user_agent"`
}
