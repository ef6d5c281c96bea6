package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// DayBookStatus is the lifecycle state of a tenant's business day.
type DayBookStatus string

const (
	DayOpen          DayBookStatus = "OPEN"
	DayEODInProgress DayBookStatus = "EOD_IN_PROGRESS"
	DayClosed        DayBookStatus = "CLOSED"
)

// DayBook is the per-tenant-per-date record controlling whether transactions
// are accepted for that day. Transitions move strictly forward
// (OPEN -> EOD_IN_PROGRESS -> CLOSED) except the reopen path, which returns
// CLOSED -> OPEN for the current calendar date only. Every write increments
// Version; all transitions are compare-and-swap on (id, status, version).
type DayBook struct {
	DayBookID         string          `json:"dayBookID"` // Primary Key (UUID)
	TenantID          string          `json:"tenantID"`
	Date              time.Time       `json:"date"` // Calendar day, time-truncated UTC
	Status            DayBookStatus   `json:"status"`
	OpeningCash       decimal.Decimal `json:"openingCash"` // Copied from the prior day's closing cash
	ClosingCash       decimal.Decimal `json:"closingCash"` // Vault balance stamped at close
	TransactionsCount int             `json:"transactionsCount"`
	OpenedBy          string          `json:"openedBy"`
	ClosedBy          *string         `json:"closedBy"`
	IsForceClosed     bool            `json:"isForceClosed"`
	Version           int64           `json:"version"`
	AuditFields
}

// IsActive reports whether the day still accepts or is finalising postings.
func (d DayBook) IsActive() bool {
	return d.Status == DayOpen || d.Status == DayEODInProgress
}
