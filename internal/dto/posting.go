package dto

import (
	"fmt"
	"time"

	"github.com/sahakari/coopcore/internal/apperrors"
	"github.com/sahakari/coopcore/internal/core/domain"
	"github.com/shopspring/decimal"
)

// PostingLineRequest is one debit-or-credit line of a manual journal entry.
// Exactly one of Debit and Credit must be positive.
type PostingLineRequest struct {
	AccountID string          `json:"accountID" binding:"required,uuid"`
	Debit     decimal.Decimal `json:"debit"`
	Credit    decimal.Decimal `json:"credit"`
	Notes     string          `json:"notes" binding:"omitempty,max=500"`
}

// PostEntryRequest defines the payload for posting a manual journal entry.
type PostEntryRequest struct {
	Description   string               `json:"description" binding:"required,max=500"`
	EffectiveDate time.Time            `json:"effectiveDate" binding:"required"`
	Lines         []PostingLineRequest `json:"lines" binding:"required,min=1,dive"`
}

// ToDomainLines converts request lines into domain ledger lines, rejecting
// lines that set both sides or neither side.
func (r PostEntryRequest) ToDomainLines() ([]domain.LedgerLine, error) {
	lines := make([]domain.LedgerLine, len(r.Lines))
	for i, l := range r.Lines {
		hasDebit := l.Debit.IsPositive()
		hasCredit := l.Credit.IsPositive()
		if hasDebit == hasCredit {
			return nil, fmt.Errorf("%w: line %d must carry exactly one of debit or credit", apperrors.ErrValidation, i)
		}
		if l.Debit.IsNegative() || l.Credit.IsNegative() {
			return nil, fmt.Errorf("%w: line %d has a negative amount", apperrors.ErrValidation, i)
		}
		side := domain.Debit
		amount := l.Debit
		if hasCredit {
			side = domain.Credit
			amount = l.Credit
		}
		lines[i] = domain.LedgerLine{
			AccountID: l.AccountID,
			Amount:    amount,
			Side:      side,
			Notes:     l.Notes,
		}
	}
	return lines, nil
}

// LedgerLineResponse is the API representation of a ledger line.
type LedgerLineResponse struct {
	LineID         string          `json:"lineID"`
	AccountID      string          `json:"accountID"`
	Amount         decimal.Decimal `json:"amount"`
	Side           domain.LineSide `json:"side"`
	Notes          string          `json:"notes,omitempty"`
	RunningBalance decimal.Decimal `json:"runningBalance"`
}

// EntryResponse is the API representation of a journal entry.
type EntryResponse struct {
	EntryID          string               `json:"entryID"`
	EntryNumber      string               `json:"entryNumber"`
	Description      string               `json:"description"`
	EffectiveDate    time.Time            `json:"effectiveDate"`
	Status           domain.EntryStatus   `json:"status"`
	Amount           decimal.Decimal      `json:"amount"`
	OriginalEntryID  *string              `json:"originalEntryID,omitempty"`
	ReversingEntryID *string              `json:"reversingEntryID,omitempty"`
	CreatedAt        time.Time            `json:"createdAt"`
	Lines            []LedgerLineResponse `json:"lines,omitempty"`
}

// ToEntryResponse converts a domain entry to its API representation.
func ToEntryResponse(e *domain.JournalEntry) EntryResponse {
	resp := EntryResponse{
		EntryID:          e.EntryID,
		EntryNumber:      e.EntryNumber,
		Description:      e.Description,
		EffectiveDate:    e.EffectiveDate,
		Status:           e.Status,
		Amount:           e.Amount,
		OriginalEntryID:  e.OriginalEntryID,
		ReversingEntryID: e.ReversingEntryID,
		CreatedAt:        e.CreatedAt,
	}
	if len(e.Lines) > 0 {
		resp.Lines = make([]LedgerLineResponse, len(e.Lines))
		for i, l := range e.Lines {
			resp.Lines[i] = LedgerLineResponse{
				LineID:         l.LineID,
				AccountID:      l.AccountID,
				Amount:         l.Amount,
				Side:           l.Side,
				Notes:          l.Notes,
				RunningBalance: l.RunningBalance,
			}
		}
	}
	return resp
}

// ToEntryResponses converts a slice of domain entries.
func ToEntryResponses(entries []domain.JournalEntry) []EntryResponse {
	out := make([]EntryResponse, len(entries))
	for i := range entries {
		out[i] = ToEntryResponse(&entries[i])
	}
	return out
}
