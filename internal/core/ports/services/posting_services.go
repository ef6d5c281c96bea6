package services

import (
	"context"
	"time"

	"github.com/sahakari/coopcore/internal/core/domain"
)

// PostingSvcFacade is the double-entry posting engine. Given a balanced set
// of lines it atomically creates one journal entry plus one running-balance
// ledger line per account line. The engine itself has no side effects beyond
// the entry, its lines, and the account balances; domain events are enqueued
// for dispatch after commit.
type PostingSvcFacade interface {
	// Post validates and persists a balanced journal entry. Lines carry
	// AccountID, Side, Amount and optional Notes; everything else is filled
	// by the engine.
	Post(ctx context.Context, tenantID, description string, lines []domain.LedgerLine, effectiveDate time.Time, actorID string) (*domain.JournalEntry, error)

	// ReverseEntry books an equal-and-opposite entry for a posted entry and
	// links the two. Entries are never edited in place.
	ReverseEntry(ctx context.Context, tenantID, entryID, actorID string) (*domain.JournalEntry, error)

	// GetEntry retrieves an entry with its lines.
	GetEntry(ctx context.Context, tenantID, entryID string) (*domain.JournalEntry, error)

	// ListEntriesByDate retrieves a tenant's entries effective on a date.
	ListEntriesByDate(ctx context.Context, tenantID string, date time.Time) ([]domain.JournalEntry, error)
}
