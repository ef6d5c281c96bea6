package pgsql

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/sahakari/coopcore/internal/apperrors"
	"github.com/sahakari/coopcore/internal/core/domain"
	portsrepo "github.com/sahakari/coopcore/internal/core/ports/repositories"
	"github.com/sahakari/coopcore/internal/utils/accounting"
	"github.com/shopspring/decimal"
)

const entryColumns = `entry_id, tenant_id, entry_number, description, effective_date, status, amount, original_entry_id, reversing_entry_id, created_at, created_by, last_updated_at, last_updated_by`

type PgxLedgerRepository struct {
	BaseRepository
	accountRepo portsrepo.AccountRepositoryFacade
}

// newPgxLedgerRepository creates a new repository for journal entries and
// ledger lines. The account repository is injected for the lock-and-update
// sequence inside SaveEntry.
func newPgxLedgerRepository(pool *pgxpool.Pool, accountRepo portsrepo.AccountRepositoryFacade) portsrepo.LedgerRepositoryFacade {
	return &PgxLedgerRepository{
		BaseRepository: BaseRepository{Pool: pool},
		accountRepo:    accountRepo,
	}
}

var _ portsrepo.LedgerRepositoryFacade = (*PgxLedgerRepository)(nil)

func scanEntry(row pgx.Row) (*domain.JournalEntry, error) {
	var e domain.JournalEntry
	err := row.Scan(
		&e.EntryID,
		&e.TenantID,
		&e.EntryNumber,
		&e.Description,
		&e.EffectiveDate,
		&e.Status,
		&e.Amount,
		&e.OriginalEntryID,
		&e.ReversingEntryID,
		&e.CreatedAt,
		&e.CreatedBy,
		&e.LastUpdatedAt,
		&e.LastUpdatedBy,
	)
	if err != nil {
		return nil, err
	}
	return &e, nil
}

// SaveEntry persists an entry with its lines inside the ambient transaction:
// insert the entry, lock the affected accounts, apply the net balance deltas,
// then insert the lines with their running balances stamped.
func (r *PgxLedgerRepository) SaveEntry(ctx context.Context, entry domain.JournalEntry, lines []domain.LedgerLine, balanceChanges map[string]decimal.Decimal) error {
	db := r.q(ctx)

	entryQuery := `
		INSERT INTO journal_entries (` + entryColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13);
	`
	_, err := db.Exec(ctx, entryQuery,
		entry.EntryID,
		entry.TenantID,
		entry.EntryNumber,
		entry.Description,
		entry.EffectiveDate,
		entry.Status,
		entry.Amount,
		entry.OriginalEntryID,
		entry.ReversingEntryID,
		entry.CreatedAt,
		entry.CreatedBy,
		entry.LastUpdatedAt,
		entry.LastUpdatedBy,
	)
	if err != nil {
		return fmt.Errorf("failed to insert entry %s: %w", entry.EntryID, err)
	}

	accountIDs := make([]string, 0, len(balanceChanges))
	for accID := range balanceChanges {
		accountIDs = append(accountIDs, accID)
	}

	lockedAccounts, err := r.accountRepo.FindAccountsByIDsForUpdate(ctx, accountIDs)
	if err != nil {
		return fmt.Errorf("failed to lock accounts for entry %s: %w", entry.EntryID, err)
	}

	if err := r.accountRepo.UpdateAccountBalances(ctx, balanceChanges, entry.CreatedBy, entry.CreatedAt); err != nil {
		return fmt.Errorf("failed to update account balances for entry %s: %w", entry.EntryID, err)
	}

	// Running balances start from the locked pre-entry balance and advance
	// line by line in deterministic order.
	runningBalances := make(map[string]decimal.Decimal, len(lockedAccounts))
	for accID, acc := range lockedAccounts {
		runningBalances[accID] = acc.Balance
	}
	sort.Slice(lines, func(i, j int) bool {
		return lines[i].LineID < lines[j].LineID
	})

	lineQuery := `
		INSERT INTO ledger_lines (line_id, entry_id, account_id, amount, side, notes, running_balance, created_at, created_by, last_updated_at, last_updated_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11);
	`
	batch := &pgx.Batch{}
	for _, line := range lines {
		lockedAccount, ok := lockedAccounts[line.AccountID]
		if !ok {
			return fmt.Errorf("%w: account %s not locked during entry save", apperrors.ErrInternal, line.AccountID)
		}
		signedAmount, err := accounting.CalculateSignedAmount(line, lockedAccount.AccountType)
		if err != nil {
			return fmt.Errorf("failed to calculate signed amount for line %s: %w", line.LineID, err)
		}
		newRunningBalance := runningBalances[line.AccountID].Add(signedAmount)
		runningBalances[line.AccountID] = newRunningBalance

		batch.Queue(lineQuery,
			line.LineID,
			entry.EntryID,
			line.AccountID,
			line.Amount,
			line.Side,
			line.Notes,
			newRunningBalance,
			entry.CreatedAt,
			entry.CreatedBy,
			entry.LastUpdatedAt,
			entry.LastUpdatedBy,
		)
	}

	br := db.SendBatch(ctx, batch)
	if err := br.Close(); err != nil {
		return fmt.Errorf("failed to execute line batch for entry %s: %w", entry.EntryID, err)
	}
	return nil
}

// UpdateEntryStatusAndLinks updates the status and reversal linkage of an
// entry.
func (r *PgxLedgerRepository) UpdateEntryStatusAndLinks(ctx context.Context, entryID string, status domain.EntryStatus, reversingEntryID *string, actorID string, at time.Time) error {
	query := `
		UPDATE journal_entries
		SET status = $2, reversing_entry_id = $3, last_updated_at = $4, last_updated_by = $5
		WHERE entry_id = $1;
	`
	cmdTag, err := r.q(ctx).Exec(ctx, query, entryID, status, reversingEntryID, at, actorID)
	if err != nil {
		return fmt.Errorf("failed to update status of entry %s: %w", entryID, err)
	}
	if cmdTag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

// FindEntryByID retrieves a journal entry without its lines.
func (r *PgxLedgerRepository) FindEntryByID(ctx context.Context, entryID string) (*domain.JournalEntry, error) {
	query := `SELECT ` + entryColumns + ` FROM journal_entries WHERE entry_id = $1;`
	entry, err := scanEntry(r.q(ctx).QueryRow(ctx, query, entryID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find entry by ID %s: %w", entryID, err)
	}
	return entry, nil
}

// FindLinesByEntryID retrieves all ledger lines of an entry in post order.
func (r *PgxLedgerRepository) FindLinesByEntryID(ctx context.Context, entryID string) ([]domain.LedgerLine, error) {
	query := `
		SELECT line_id, entry_id, account_id, amount, side, notes, running_balance, created_at, created_by, last_updated_at, last_updated_by
		FROM ledger_lines
		WHERE entry_id = $1
		ORDER BY line_id;
	`
	rows, err := r.q(ctx).Query(ctx, query, entryID)
	if err != nil {
		return nil, fmt.Errorf("failed to query lines of entry %s: %w", entryID, err)
	}
	defer rows.Close()

	lines := []domain.LedgerLine{}
	for rows.Next() {
		var line domain.LedgerLine
		err := rows.Scan(
			&line.LineID,
			&line.EntryID,
			&line.AccountID,
			&line.Amount,
			&line.Side,
			&line.Notes,
			&line.RunningBalance,
			&line.CreatedAt,
			&line.CreatedBy,
			&line.LastUpdatedAt,
			&line.LastUpdatedBy,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan ledger line row: %w", err)
		}
		lines = append(lines, line)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating ledger line rows: %w", err)
	}
	return lines, nil
}

// ListEntriesByDate retrieves all of a tenant's entries effective on the
// given calendar date, oldest first.
func (r *PgxLedgerRepository) ListEntriesByDate(ctx context.Context, tenantID string, date time.Time) ([]domain.JournalEntry, error) {
	query := `
		SELECT ` + entryColumns + `
		FROM journal_entries
		WHERE tenant_id = $1 AND effective_date::date = $2::date
		ORDER BY created_at, entry_id;
	`
	rows, err := r.q(ctx).Query(ctx, query, tenantID, date)
	if err != nil {
		return nil, fmt.Errorf("failed to query entries by date: %w", err)
	}
	defer rows.Close()

	entries := []domain.JournalEntry{}
	for rows.Next() {
		entry, err := scanEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan entry row: %w", err)
		}
		entries = append(entries, *entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating entry rows: %w", err)
	}
	return entries, nil
}

// CountEntriesForDate counts a tenant's entries effective on a calendar date.
func (r *PgxLedgerRepository) CountEntriesForDate(ctx context.Context, tenantID string, date time.Time) (int, error) {
	query := `SELECT COUNT(*) FROM journal_entries WHERE tenant_id = $1 AND effective_date::date = $2::date;`
	var count int
	if err := r.q(ctx).QueryRow(ctx, query, tenantID, date).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count entries for date: %w", err)
	}
	return count, nil
}

// CountEntriesForYear counts a tenant's entries effective in a year.
func (r *PgxLedgerRepository) CountEntriesForYear(ctx context.Context, tenantID string, year int) (int64, error) {
	query := `SELECT COUNT(*) FROM journal_entries WHERE tenant_id = $1 AND EXTRACT(YEAR FROM effective_date) = $2;`
	var count int64
	if err := r.q(ctx).QueryRow(ctx, query, tenantID, year).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count entries for year %d: %w", year, err)
	}
	return count, nil
}
