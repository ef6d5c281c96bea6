package apperrors

import (
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// DomainError is a precondition or invariant violation with a
// machine-readable reason code. Instances declared as package vars are
// sentinels: services wrap them with %w and handlers match with errors.Is.
type DomainError struct {
	Code    string
	Message string
}

func (e *DomainError) Error() string {
	return e.Message
}

// NewDomainError creates a reusable domain error sentinel.
func NewDomainError(code, message string) *DomainError {
	return &DomainError{Code: code, Message: message}
}

// Day lifecycle errors.
var (
	ErrPreviousDayNotClosed = NewDomainError("PREVIOUS_DAY_NOT_CLOSED", "previous business day is not closed")
	ErrDayAlreadyOpen       = NewDomainError("DAY_ALREADY_OPEN", "business day is already open")
	ErrCannotStartPastDay   = NewDomainError("CANNOT_START_PAST_DAY", "cannot start a business day for a past date")
	ErrNoActiveDay          = NewDomainError("NO_ACTIVE_DAY", "no open business day for tenant")
	ErrDayNotOpen           = NewDomainError("DAY_NOT_OPEN", "business day is not open")
	ErrAlreadyClosed        = NewDomainError("ALREADY_CLOSED", "business day is already closed")
	ErrConcurrentClose      = NewDomainError("CONCURRENT_CLOSE_IN_PROGRESS", "another close is already in progress")
	ErrNoDayForToday        = NewDomainError("NO_DAY_FOR_TODAY", "no business day exists for today")
	ErrCannotReopenPastDay  = NewDomainError("CANNOT_REOPEN_PAST_DAY", "only the current date's business day can be reopened")
	ErrNotClosed            = NewDomainError("NOT_CLOSED", "business day is not closed")
)

// Posting errors.
var (
	ErrDoubleEntryMismatch = NewDomainError("DOUBLE_ENTRY_MISMATCH", "debits and credits do not balance")
	ErrGroupAccountPosting = NewDomainError("GROUP_ACCOUNT_POSTING", "group accounts cannot be posted to")
	ErrAccountInactive     = NewDomainError("ACCOUNT_INACTIVE", "account is inactive")
)

// Settlement errors.
var (
	ErrTellerAccountNotMapped = NewDomainError("TELLER_ACCOUNT_NOT_MAPPED", "teller has no bound cash account")
	ErrDenominationMismatch   = NewDomainError("DENOMINATION_MISMATCH", "denomination breakdown does not sum to the counted cash")
	ErrAlreadyApproved        = NewDomainError("ALREADY_APPROVED", "settlement has already been approved")
	ErrAlreadyReverted        = NewDomainError("ALREADY_REVERTED", "settlement has already been reverted")
	ErrRoleAccountNotMapped   = NewDomainError("ROLE_ACCOUNT_NOT_MAPPED", "no account mapped for the requested role")
)

// Code extracts the machine-readable reason code from err, or falls back to
// INTERNAL for anything that is not a DomainError.
func Code(err error) string {
	var de *DomainError
	if errors.As(err, &de) {
		return de.Code
	}
	var pe *PendingSettlementError
	if errors.As(err, &pe) {
		return pe.Code()
	}
	return "INTERNAL"
}

// AccountBalance names an account and its balance inside an error payload.
type AccountBalance struct {
	AccountID string          `json:"accountID"`
	Code      string          `json:"code"`
	Name      string          `json:"name"`
	Balance   decimal.Decimal `json:"balance"`
}

// PendingSettlementError reports that a day close was refused because teller
// cash accounts still hold balances. It enumerates the offending accounts so
// the operator knows exactly what to settle.
type PendingSettlementError struct {
	Accounts []AccountBalance
}

func (e *PendingSettlementError) Error() string {
	names := make([]string, len(e.Accounts))
	for i, a := range e.Accounts {
		names[i] = fmt.Sprintf("%s (%s): %s", a.Name, a.Code, a.Balance.String())
	}
	return "tellers have unsettled balances: " + strings.Join(names, "; ")
}

// Code returns the reason code for the close-blocked condition.
func (e *PendingSettlementError) Code() string { return "TELLER_PENDING_SETTLEMENT" }
