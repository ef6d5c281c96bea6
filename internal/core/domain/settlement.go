package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// SettlementStatus is the lifecycle state of a teller settlement.
type SettlementStatus string

const (
	SettlementAutoApproved     SettlementStatus = "AUTO_APPROVED"
	SettlementRequiresApproval SettlementStatus = "REQUIRES_APPROVAL"
	SettlementReverted         SettlementStatus = "REVERTED"
)

// DenominationLine is one row of a counted-cash breakdown.
type DenominationLine struct {
	Denomination decimal.Decimal `json:"denomination"` // Face value of the note or coin
	Count        int64           `json:"count"`
}

// Total returns the weighted value of the line.
func (d DenominationLine) Total() decimal.Decimal {
	return d.Denomination.Mul(decimal.NewFromInt(d.Count))
}

// SumDenominations returns the weighted sum of a breakdown.
func SumDenominations(lines []DenominationLine) decimal.Decimal {
	sum := decimal.Zero
	for _, l := range lines {
		sum = sum.Add(l.Total())
	}
	return sum
}

// TellerSettlement records the reconciliation of a teller's physically
// counted cash against the system balance of their cash account, and the
// sweep of that cash into the vault. Settlements are never hard-deleted;
// an unsettle marks the row REVERTED after reversing its entries.
type TellerSettlement struct {
	SettlementID  string             `json:"settlementID"` // Primary Key (UUID)
	DayBookID     string             `json:"dayBookID"`
	TenantID      string             `json:"tenantID"`
	TellerID      string             `json:"tellerID"`
	PhysicalCash  decimal.Decimal    `json:"physicalCash"` // Counted
	SystemCash    decimal.Decimal    `json:"systemCash"`   // Ledger balance at settlement time
	Difference    decimal.Decimal    `json:"difference"`   // physical - system
	Status        SettlementStatus   `json:"status"`
	SettlementRef string             `json:"settlementRef"` // Idempotency token; settlement is write-once per ref
	IsForceClosed bool               `json:"isForceClosed"`
	AttachmentRef *string            `json:"attachmentRef"`
	Denominations []DenominationLine `json:"denominations,omitempty"`

	// Entries booked by the settlement, kept for reversal.
	VarianceEntryID *string `json:"varianceEntryID"` // Nil when counted cash matched
	VaultEntryID    *string `json:"vaultEntryID"`

	// Written by the external approval workflow; a set ApprovedAt closes the
	// reversal window regardless of Status.
	ApprovedBy *string    `json:"approvedBy"`
	ApprovedAt *time.Time `json:"approvedAt"`

	RevertReason *string `json:"revertReason"`
	AuditFields
}

// IsApproved reports whether the settlement has been formally approved.
func (s TellerSettlement) IsApproved() bool {
	return s.ApprovedAt != nil
}
