package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/sahakari/coopcore/internal/apperrors"
	"github.com/sahakari/coopcore/internal/core/domain"
	"github.com/sahakari/coopcore/internal/core/events"
	portsrepo "github.com/sahakari/coopcore/internal/core/ports/repositories"
	portssvc "github.com/sahakari/coopcore/internal/core/ports/services"
	"github.com/sahakari/coopcore/internal/middleware"
	"github.com/sahakari/coopcore/internal/utils/accounting"
	"github.com/shopspring/decimal"
)

// postingService is the double-entry posting engine. Every money movement in
// the system flows through Post: teller settlements, suspense adjustments and
// manual vouchers all compose it rather than writing ledger rows themselves.
type postingService struct {
	txManager   portsrepo.TxManager
	ledgerRepo  portsrepo.LedgerRepositoryFacade
	accountRepo portsrepo.AccountRepositoryFacade
	entryPrefix string
	clock       portssvc.Clock
}

// NewPostingService creates a new posting engine. entryPrefix is the leading
// segment of generated entry numbers (e.g. "JV").
func NewPostingService(txManager portsrepo.TxManager, ledgerRepo portsrepo.LedgerRepositoryFacade, accountRepo portsrepo.AccountRepositoryFacade, entryPrefix string, clock portssvc.Clock) portssvc.PostingSvcFacade {
	return &postingService{
		txManager:   txManager,
		ledgerRepo:  ledgerRepo,
		accountRepo: accountRepo,
		entryPrefix: entryPrefix,
		clock:       clock,
	}
}

var _ portssvc.PostingSvcFacade = (*postingService)(nil)

// validateAccounts fetches the referenced accounts and rejects lines against
// missing, foreign, inactive or group accounts. Returns the account map for
// balance-delta calculation.
func (s *postingService) validateAccounts(ctx context.Context, tenantID string, lines []domain.LedgerLine) (map[string]domain.Account, error) {
	accountIDs := make([]string, 0, len(lines))
	for _, line := range lines {
		accountIDs = append(accountIDs, line.AccountID)
	}
	uniqueIDs := uniqueStrings(accountIDs)

	accountsMap, err := s.accountRepo.FindAccountsByIDs(ctx, uniqueIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch accounts: %w", err)
	}

	for _, id := range uniqueIDs {
		acc, found := accountsMap[id]
		if !found {
			return nil, fmt.Errorf("%w: account %s", apperrors.ErrNotFound, id)
		}
		if acc.TenantID != tenantID {
			return nil, fmt.Errorf("%w: account %s", apperrors.ErrNotFound, id) // Obscure existence
		}
		if acc.IsGroup {
			return nil, fmt.Errorf("%w: account %s", apperrors.ErrGroupAccountPosting, acc.Code)
		}
		if !acc.IsActive {
			return nil, fmt.Errorf("%w: account %s", apperrors.ErrAccountInactive, acc.Code)
		}
	}
	return accountsMap, nil
}

// balanceChanges nets each line's signed delta per account.
func balanceChanges(lines []domain.LedgerLine, accountsMap map[string]domain.Account) (map[string]decimal.Decimal, error) {
	changes := make(map[string]decimal.Decimal)
	for _, line := range lines {
		acc := accountsMap[line.AccountID]
		signedAmount, err := accounting.CalculateSignedAmount(line, acc.AccountType)
		if err != nil {
			return nil, fmt.Errorf("internal error calculating balance changes: %w", err)
		}
		changes[line.AccountID] = changes[line.AccountID].Add(signedAmount)
	}
	return changes, nil
}

// Post validates and persists one balanced journal entry with its lines.
func (s *postingService) Post(ctx context.Context, tenantID, description string, lines []domain.LedgerLine, effectiveDate time.Time, actorID string) (*domain.JournalEntry, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	if description == "" {
		return nil, fmt.Errorf("%w: entry description is required", apperrors.ErrValidation)
	}
	if err := accounting.ValidateEntryBalance(lines); err != nil {
		return nil, err
	}

	accountsMap, err := s.validateAccounts(ctx, tenantID, lines)
	if err != nil {
		return nil, err
	}

	changes, err := balanceChanges(lines, accountsMap)
	if err != nil {
		logger.Error("Error calculating balance changes", slog.String("error", err.Error()))
		return nil, err
	}

	now := s.clock.Now()
	entry := domain.JournalEntry{
		EntryID:       uuid.NewString(),
		TenantID:      tenantID,
		Description:   description,
		EffectiveDate: effectiveDate,
		Status:        domain.Posted,
		Amount:        accounting.EntryAmount(lines),
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     actorID,
			LastUpdatedAt: now,
			LastUpdatedBy: actorID,
		},
	}

	entryLines := make([]domain.LedgerLine, len(lines))
	for i, line := range lines {
		line.LineID = uuid.NewString()
		line.EntryID = entry.EntryID
		line.AuditFields = entry.AuditFields
		entryLines[i] = line
	}

	err = s.txManager.WithinTx(ctx, func(txCtx context.Context) error {
		// The yearly sequence is read inside the same transaction as the
		// insert so numbering stays gap-free under low concurrency.
		seq, err := s.ledgerRepo.CountEntriesForYear(txCtx, tenantID, effectiveDate.Year())
		if err != nil {
			return fmt.Errorf("failed to compute entry sequence: %w", err)
		}
		entry.EntryNumber = fmt.Sprintf("%s-%d-%06d", s.entryPrefix, effectiveDate.Year(), seq+1)

		if err := s.ledgerRepo.SaveEntry(txCtx, entry, entryLines, changes); err != nil {
			return fmt.Errorf("failed to save entry: %w", err)
		}

		events.Enqueue(txCtx, domain.EntryPostedEvent{
			TenantID:      tenantID,
			EntryID:       entry.EntryID,
			EntryNumber:   entry.EntryNumber,
			Description:   entry.Description,
			Amount:        entry.Amount,
			EffectiveDate: entry.EffectiveDate,
			PostedAt:      now,
		})
		return nil
	})
	if err != nil {
		logger.Error("Failed to post entry", slog.String("error", err.Error()), slog.String("tenant_id", tenantID))
		return nil, err
	}

	logger.Info("Entry posted", slog.String("entry_id", entry.EntryID), slog.String("entry_number", entry.EntryNumber))
	entry.Lines = nil // Callers fetch lines separately when needed
	return &entry, nil
}

// ReverseEntry books an equal-and-opposite entry for a posted entry and
// marks the original REVERSED. Reversals of reversals are refused.
func (s *postingService) ReverseEntry(ctx context.Context, tenantID, entryID, actorID string) (*domain.JournalEntry, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	var reversing *domain.JournalEntry
	err := s.txManager.WithinTx(ctx, func(txCtx context.Context) error {
		original, err := s.ledgerRepo.FindEntryByID(txCtx, entryID)
		if err != nil {
			return fmt.Errorf("failed to find entry %s: %w", entryID, err)
		}
		if original.TenantID != tenantID {
			return apperrors.ErrNotFound // Obscure existence
		}
		if original.Status != domain.Posted {
			return fmt.Errorf("%w: entry status is %s, expected POSTED", apperrors.ErrConflict, original.Status)
		}
		if original.OriginalEntryID != nil {
			return fmt.Errorf("%w: cannot reverse an entry that is itself a reversal", apperrors.ErrConflict)
		}

		originalLines, err := s.ledgerRepo.FindLinesByEntryID(txCtx, entryID)
		if err != nil {
			return fmt.Errorf("failed to fetch lines of entry %s: %w", entryID, err)
		}

		now := s.clock.Now()
		newEntry := domain.JournalEntry{
			EntryID:         uuid.NewString(),
			TenantID:        tenantID,
			Description:     "Reversal of " + original.EntryNumber + ": " + original.Description,
			EffectiveDate:   original.EffectiveDate,
			Status:          domain.Posted,
			Amount:          original.Amount,
			OriginalEntryID: &original.EntryID,
			AuditFields: domain.AuditFields{
				CreatedAt:     now,
				CreatedBy:     actorID,
				LastUpdatedAt: now,
				LastUpdatedBy: actorID,
			},
		}

		reversedLines := make([]domain.LedgerLine, len(originalLines))
		for i, line := range originalLines {
			reversedLines[i] = domain.LedgerLine{
				LineID:      uuid.NewString(),
				EntryID:     newEntry.EntryID,
				AccountID:   line.AccountID,
				Amount:      line.Amount,
				Side:        line.Side.Opposite(),
				Notes:       line.Notes,
				AuditFields: newEntry.AuditFields,
			}
		}

		accountsMap, err := s.validateAccounts(txCtx, tenantID, reversedLines)
		if err != nil {
			return err
		}
		changes, err := balanceChanges(reversedLines, accountsMap)
		if err != nil {
			return err
		}

		seq, err := s.ledgerRepo.CountEntriesForYear(txCtx, tenantID, newEntry.EffectiveDate.Year())
		if err != nil {
			return fmt.Errorf("failed to compute entry sequence: %w", err)
		}
		newEntry.EntryNumber = fmt.Sprintf("%s-%d-%06d", s.entryPrefix, newEntry.EffectiveDate.Year(), seq+1)

		if err := s.ledgerRepo.SaveEntry(txCtx, newEntry, reversedLines, changes); err != nil {
			return fmt.Errorf("failed to save reversing entry: %w", err)
		}
		if err := s.ledgerRepo.UpdateEntryStatusAndLinks(txCtx, original.EntryID, domain.Reversed, &newEntry.EntryID, actorID, now); err != nil {
			return fmt.Errorf("failed to mark original entry reversed: %w", err)
		}

		events.Enqueue(txCtx, domain.EntryPostedEvent{
			TenantID:      tenantID,
			EntryID:       newEntry.EntryID,
			EntryNumber:   newEntry.EntryNumber,
			Description:   newEntry.Description,
			Amount:        newEntry.Amount,
			EffectiveDate: newEntry.EffectiveDate,
			PostedAt:      now,
		})

		reversing = &newEntry
		return nil
	})
	if err != nil {
		if !errors.Is(err, apperrors.ErrNotFound) {
			logger.Error("Failed to reverse entry", slog.String("error", err.Error()), slog.String("entry_id", entryID))
		}
		return nil, err
	}

	logger.Info("Entry reversed", slog.String("original_entry_id", entryID), slog.String("reversing_entry_id", reversing.EntryID))
	return reversing, nil
}

// GetEntry retrieves an entry with its lines.
func (s *postingService) GetEntry(ctx context.Context, tenantID, entryID string) (*domain.JournalEntry, error) {
	entry, err := s.ledgerRepo.FindEntryByID(ctx, entryID)
	if err != nil {
		return nil, fmt.Errorf("failed to find entry %s: %w", entryID, err)
	}
	if entry.TenantID != tenantID {
		return nil, apperrors.ErrNotFound // Obscure existence
	}
	lines, err := s.ledgerRepo.FindLinesByEntryID(ctx, entryID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch lines of entry %s: %w", entryID, err)
	}
	entry.Lines = lines
	return entry, nil
}

// ListEntriesByDate retrieves a tenant's entries effective on a date.
func (s *postingService) ListEntriesByDate(ctx context.Context, tenantID string, date time.Time) ([]domain.JournalEntry, error) {
	entries, err := s.ledgerRepo.ListEntriesByDate(ctx, tenantID, date)
	if err != nil {
		return nil, fmt.Errorf("failed to list entries: %w", err)
	}
	return entries, nil
}
