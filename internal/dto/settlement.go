package dto

import (
	"time"

	"github.com/sahakari/coopcore/internal/core/domain"
	"github.com/shopspring/decimal"
)

// DenominationLineRequest is one row of a counted-cash breakdown.
type DenominationLineRequest struct {
	Denomination decimal.Decimal `json:"denomination" binding:"required"`
	Count        int64           `json:"count" binding:"required,gt=0"`
}

// SettleRequest defines the payload for a teller settlement (and its
// preview). IdempotencyKey makes the settlement write-once: replays return
// the original settlement unchanged.
type SettleRequest struct {
	TellerID       string                    `json:"tellerID" binding:"required,max=100"`
	PhysicalCash   decimal.Decimal           `json:"physicalCash" binding:"required"`
	Denominations  []DenominationLineRequest `json:"denominations" binding:"omitempty,dive"`
	AttachmentRef  *string                   `json:"attachmentRef" binding:"omitempty,max=255"`
	IdempotencyKey *string                   `json:"idempotencyKey" binding:"omitempty,max=100"`
}

// ToDomainDenominations converts request breakdown lines.
func (r SettleRequest) ToDomainDenominations() []domain.DenominationLine {
	if len(r.Denominations) == 0 {
		return nil
	}
	out := make([]domain.DenominationLine, len(r.Denominations))
	for i, d := range r.Denominations {
		out[i] = domain.DenominationLine{Denomination: d.Denomination, Count: d.Count}
	}
	return out
}

// UnsettleRequest defines the payload for reverting a settlement.
type UnsettleRequest struct {
	Reason string `json:"reason" binding:"required,max=500"`
}

// ProposedLineResponse is one line of a proposed (not yet persisted) entry.
type ProposedLineResponse struct {
	AccountID   string          `json:"accountID"`
	AccountCode string          `json:"accountCode"`
	Side        domain.LineSide `json:"side"`
	Amount      decimal.Decimal `json:"amount"`
}

// ProposedEntryResponse describes one journal entry a settlement would book.
type ProposedEntryResponse struct {
	Description string                 `json:"description"`
	Lines       []ProposedLineResponse `json:"lines"`
}

// SettlementPreviewResponse shows the operator the impact of a settlement
// before committing it. Nothing is persisted when computing it.
type SettlementPreviewResponse struct {
	TellerID         string                  `json:"tellerID"`
	PhysicalCash     decimal.Decimal         `json:"physicalCash"`
	SystemCash       decimal.Decimal         `json:"systemCash"`
	Difference       decimal.Decimal         `json:"difference"`
	RequiresApproval bool                    `json:"requiresApproval"`
	ProposedEntries  []ProposedEntryResponse `json:"proposedEntries"`
}

// SettlementResponse is the API representation of a teller settlement.
type SettlementResponse struct {
	SettlementID  string                    `json:"settlementID"`
	DayBookID     string                    `json:"dayBookID"`
	TellerID      string                    `json:"tellerID"`
	PhysicalCash  decimal.Decimal           `json:"physicalCash"`
	SystemCash    decimal.Decimal           `json:"systemCash"`
	Difference    decimal.Decimal           `json:"difference"`
	Status        domain.SettlementStatus   `json:"status"`
	SettlementRef string                    `json:"settlementRef"`
	IsForceClosed bool                      `json:"isForceClosed"`
	AttachmentRef *string                   `json:"attachmentRef,omitempty"`
	Denominations []domain.DenominationLine `json:"denominations,omitempty"`
	RevertReason  *string                   `json:"revertReason,omitempty"`
	CreatedAt     time.Time                 `json:"createdAt"`
}

// ToSettlementResponse converts a domain settlement to its API
// representation.
func ToSettlementResponse(s *domain.TellerSettlement) SettlementResponse {
	return SettlementResponse{
		SettlementID:  s.SettlementID,
		DayBookID:     s.DayBookID,
		TellerID:      s.TellerID,
		PhysicalCash:  s.PhysicalCash,
		SystemCash:    s.SystemCash,
		Difference:    s.Difference,
		Status:        s.Status,
		SettlementRef: s.SettlementRef,
		IsForceClosed: s.IsForceClosed,
		AttachmentRef: s.AttachmentRef,
		Denominations: s.Denominations,
		RevertReason:  s.RevertReason,
		CreatedAt:     s.CreatedAt,
	}
}

// ToSettlementResponses converts a slice of domain settlements.
func ToSettlementResponses(settlements []domain.TellerSettlement) []SettlementResponse {
	out := make([]SettlementResponse, len(settlements))
	for i := range settlements {
		out[i] = ToSettlementResponse(&settlements[i])
	}
	return out
}
