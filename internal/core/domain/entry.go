package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// EntryStatus indicates the state of a journal entry.
type EntryStatus string

const (
	Posted   EntryStatus = "POSTED"
	Reversed EntryStatus = "REVERSED"
)

// JournalEntry represents a single, balanced financial event composed of
// multiple ledger lines. Entries are immutable once posted; corrections are
// recorded as new reversing entries.
type JournalEntry struct {
	EntryID          string          `json:"entryID"`          // Primary Key (UUID)
	TenantID         string          `json:"tenantID"`         // Owning tenant
	EntryNumber      string          `json:"entryNumber"`      // Human-readable, e.g. JV-2025-000042, counter resets yearly per tenant
	Description      string          `json:"description"`      // What the entry records
	EffectiveDate    time.Time       `json:"effectiveDate"`    // Date the event occurred
	Status           EntryStatus     `json:"status"`           // Default POSTED
	Amount           decimal.Decimal `json:"amount"`           // Total debit side, the economic value of the entry
	OriginalEntryID  *string         `json:"originalEntryID"`  // Set on a reversing entry
	ReversingEntryID *string         `json:"reversingEntryID"` // Set on an entry that has been reversed
	Lines            []LedgerLine    `json:"lines,omitempty"`  // Populated on demand
	AuditFields
}

// LineSide indicates whether a ledger line is a Debit or a Credit.
type LineSide string

const (
	Debit  LineSide = "DEBIT"
	Credit LineSide = "CREDIT"
)

// Opposite returns the reversing side.
func (s LineSide) Opposite() LineSide {
	if s == Debit {
		return Credit
	}
	return Debit
}

// LedgerLine represents a single account-level effect of a journal entry,
// carrying the account's running balance as of this line.
type LedgerLine struct {
	LineID         string          `json:"lineID"`         // Primary Key (UUID)
	EntryID        string          `json:"entryID"`        // FK -> JournalEntry.EntryID
	AccountID      string          `json:"accountID"`      // FK -> Account.AccountID
	Amount         decimal.Decimal `json:"amount"`         // Positive value
	Side           LineSide        `json:"side"`           // DEBIT or CREDIT
	Notes          string          `json:"notes"`          // Nullable
	RunningBalance decimal.Decimal `json:"runningBalance"` // Account balance after this line, computed at post time
	AuditFields
}
