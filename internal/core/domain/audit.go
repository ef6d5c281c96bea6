package domain

import "time"

// AuditRecord is a fire-and-forget trace of a state-changing call. Failures
// to persist one are logged and never propagated to the caller.
type AuditRecord struct {
	AuditID    string    `json:"auditID"`
	TenantID   string    `json:"tenantID"`
	ActorID    string    `json:"actorID"`
	Action     string    `json:"action"`     // e.g. daybook.close, settlement.create
	EntityType string    `json:"entityType"` // e.g. daybook, settlement, journal_entry
	EntityID   string    `json:"entityID"`
	Detail     string    `json:"detail"` // Free-form context, reason codes included
	RecordedAt time.Time `json:"recordedAt"`
}
