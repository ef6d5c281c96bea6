package repositories

import (
	"context"
	"time"

	"github.com/sahakari/coopcore/internal/core/domain"
	"github.com/shopspring/decimal"
)

// EntryReader defines read operations for journal entries and ledger lines.
type EntryReader interface {
	// FindEntryByID retrieves a journal entry without its lines.
	FindEntryByID(ctx context.Context, entryID string) (*domain.JournalEntry, error)

	// FindLinesByEntryID retrieves all ledger lines of an entry in post order.
	FindLinesByEntryID(ctx context.Context, entryID string) ([]domain.LedgerLine, error)

	// ListEntriesByDate retrieves all of a tenant's entries effective on the
	// given calendar date.
	ListEntriesByDate(ctx context.Context, tenantID string, date time.Time) ([]domain.JournalEntry, error)

	// CountEntriesForDate counts a tenant's entries effective on the given
	// calendar date. Feeds the DayBook transactionsCount stamp.
	CountEntriesForDate(ctx context.Context, tenantID string, date time.Time) (int, error)

	// CountEntriesForYear counts a tenant's entries effective in the given
	// year. Must be called inside the transaction that will insert the next
	// entry so the yearly sequence stays gap-free under low concurrency.
	CountEntriesForYear(ctx context.Context, tenantID string, year int) (int64, error)
}

// EntryWriter defines write operations for journal entries.
type EntryWriter interface {
	// SaveEntry persists an entry with its lines, locking the affected
	// accounts, stamping each line's running balance, and applying the net
	// balance changes, all inside the ambient transaction.
	SaveEntry(ctx context.Context, entry domain.JournalEntry, lines []domain.LedgerLine, balanceChanges map[string]decimal.Decimal) error

	// UpdateEntryStatusAndLinks updates the status and reversal linkage of an
	// entry. Entries are otherwise immutable.
	UpdateEntryStatusAndLinks(ctx context.Context, entryID string, status domain.EntryStatus, reversingEntryID *string, actorID string, at time.Time) error
}

// LedgerRepositoryFacade combines all ledger repository interfaces.
type LedgerRepositoryFacade interface {
	EntryReader
	EntryWriter
}
