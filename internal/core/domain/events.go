package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Event is a typed domain event emitted after a state change has committed.
// Downstream consumers (AML monitoring, reporting) subscribe through the
// Publisher port; the engines themselves never call consumers directly.
type Event interface {
	EventType() string
}

// EntryPostedEvent is emitted once per committed journal entry.
type EntryPostedEvent struct {
	TenantID      string          `json:"tenantID"`
	EntryID       string          `json:"entryID"`
	EntryNumber   string          `json:"entryNumber"`
	Description   string          `json:"description"`
	Amount        decimal.Decimal `json:"amount"`
	EffectiveDate time.Time       `json:"effectiveDate"`
	PostedAt      time.Time       `json:"postedAt"`
}

func (EntryPostedEvent) EventType() string { return "ledger.entry.posted" }

// DayOpenedEvent is emitted when a business day is started or reopened via
// the start-day path.
type DayOpenedEvent struct {
	TenantID    string          `json:"tenantID"`
	DayBookID   string          `json:"dayBookID"`
	Date        time.Time       `json:"date"`
	OpeningCash decimal.Decimal `json:"openingCash"`
	OpenedBy    string          `json:"openedBy"`
	Reopened    bool            `json:"reopened"`
}

func (DayOpenedEvent) EventType() string { return "daybook.opened" }

// DayClosedEvent is emitted when a business day reaches CLOSED.
type DayClosedEvent struct {
	TenantID          string          `json:"tenantID"`
	DayBookID         string          `json:"dayBookID"`
	Date              time.Time       `json:"date"`
	ClosingCash       decimal.Decimal `json:"closingCash"`
	TransactionsCount int             `json:"transactionsCount"`
	ClosedBy          string          `json:"closedBy"`
	Forced            bool            `json:"forced"`
}

func (DayClosedEvent) EventType() string { return "daybook.closed" }

// DayReopenedEvent is emitted when a closed current-date day returns to OPEN.
type DayReopenedEvent struct {
	TenantID   string    `json:"tenantID"`
	DayBookID  string    `json:"dayBookID"`
	Date       time.Time `json:"date"`
	ReopenedBy string    `json:"reopenedBy"`
	Reason     string    `json:"reason"`
}

func (DayReopenedEvent) EventType() string { return "daybook.reopened" }

// SettlementRecordedEvent is emitted once per committed teller settlement.
type SettlementRecordedEvent struct {
	TenantID     string           `json:"tenantID"`
	SettlementID string           `json:"settlementID"`
	TellerID     string           `json:"tellerID"`
	PhysicalCash decimal.Decimal  `json:"physicalCash"`
	SystemCash   decimal.Decimal  `json:"systemCash"`
	Difference   decimal.Decimal  `json:"difference"`
	Status       SettlementStatus `json:"status"`
}

func (SettlementRecordedEvent) EventType() string { return "settlement.recorded" }

// SettlementRevertedEvent is emitted when a settlement is unsettled.
type SettlementRevertedEvent struct {
	TenantID     string `json:"tenantID"`
	SettlementID string `json:"settlementID"`
	TellerID     string `json:"tellerID"`
	Reason       string `json:"reason"`
}

func (SettlementRevertedEvent) EventType() string { return "settlement.reverted" }
