package services

import (
	"context"
	"time"

	"github.com/sahakari/coopcore/internal/core/domain"
)

// DayBookSvcFacade governs the per-tenant business-day lifecycle.
type DayBookSvcFacade interface {
	// StartDay opens the business day for the given calendar date, creating
	// the day book (opening cash copied from the prior close) or reopening
	// today's closed one in place.
	StartDay(ctx context.Context, tenantID string, date time.Time, actorID string) (*domain.DayBook, error)

	// Status returns the tenant's active day book, or the most recent one,
	// or nil when the tenant has never started a day.
	Status(ctx context.Context, tenantID string) (*domain.DayBook, error)
}

// DayCloseSvcFacade orchestrates end-of-day closure and the reopen guard.
type DayCloseSvcFacade interface {
	// CloseDay validates all tellers are settled, stamps closing totals and
	// locks the day. Contention with a concurrent close is reported as a
	// distinct retryable condition.
	CloseDay(ctx context.Context, tenantID, actorID string) (*domain.DayBook, error)

	// ForceCloseDay zeroes remaining teller balances through the suspense
	// account and closes regardless of pending settlements.
	ForceCloseDay(ctx context.Context, tenantID, actorID, reason, approver string) (*domain.DayBook, error)

	// ReopenDay returns today's closed day book to OPEN. No other date can
	// ever be reopened.
	ReopenDay(ctx context.Context, tenantID, actorID, reason, approver string) (*domain.DayBook, error)
}
