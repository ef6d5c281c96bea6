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
	"github.com/sahakari/coopcore/internal/utils/dates"
	"github.com/shopspring/decimal"
)

// Code and name of the suspense account created on first force-close when the
// tenant has not mapped one.
const (
	suspenseAccountCode = "9999-EOD-SUSPENSE"
	suspenseAccountName = "End-of-Day Suspense"
)

// dayCloseService orchestrates the end-of-day sequence: settle checks, the
// EOD_IN_PROGRESS guard, closing stamps and the reopen path. Only the status
// transitions live here; ledger movement goes through the posting engine.
type dayCloseService struct {
	txManager      portsrepo.TxManager
	dayBookRepo    portsrepo.DayBookRepositoryFacade
	accountRepo    portsrepo.AccountRepositoryFacade
	ledgerRepo     portsrepo.LedgerRepositoryFacade
	settlementRepo portsrepo.SettlementRepositoryFacade
	auditRepo      portsrepo.AuditRepository
	posting        portssvc.PostingSvcFacade
	clock          portssvc.Clock
}

// NewDayCloseService creates a new DayCloseService.
func NewDayCloseService(
	txManager portsrepo.TxManager,
	dayBookRepo portsrepo.DayBookRepositoryFacade,
	accountRepo portsrepo.AccountRepositoryFacade,
	ledgerRepo portsrepo.LedgerRepositoryFacade,
	settlementRepo portsrepo.SettlementRepositoryFacade,
	auditRepo portsrepo.AuditRepository,
	posting portssvc.PostingSvcFacade,
	clock portssvc.Clock,
) portssvc.DayCloseSvcFacade {
	return &dayCloseService{
		txManager:      txManager,
		dayBookRepo:    dayBookRepo,
		accountRepo:    accountRepo,
		ledgerRepo:     ledgerRepo,
		settlementRepo: settlementRepo,
		auditRepo:      auditRepo,
		posting:        posting,
		clock:          clock,
	}
}

var _ portssvc.DayCloseSvcFacade = (*dayCloseService)(nil)

// beginClose moves the active day book OPEN -> EOD_IN_PROGRESS. A version
// conflict is re-read and classified so the caller learns whether the day
// was already closed or another close is racing.
func (s *dayCloseService) beginClose(ctx context.Context, tenantID string) (*domain.DayBook, error) {
	dayBook, err := s.dayBookRepo.FindActiveDayBook(ctx, tenantID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, apperrors.ErrNoActiveDay
		}
		return nil, fmt.Errorf("failed to fetch active day book: %w", err)
	}
	if dayBook.Status == domain.DayEODInProgress {
		return nil, fmt.Errorf("%w: day %s", apperrors.ErrConcurrentClose, dayBook.Date.Format(time.DateOnly))
	}

	eod, err := s.dayBookRepo.TransitionDayBook(ctx, portsrepo.DayBookTransition{
		DayBookID:       dayBook.DayBookID,
		FromStatus:      domain.DayOpen,
		ExpectedVersion: dayBook.Version,
		ToStatus:        domain.DayEODInProgress,
		ActorID:         dayBook.OpenedBy,
		At:              s.clock.Now(),
	})
	if err != nil {
		if errors.Is(err, apperrors.ErrVersionConflict) {
			current, rerr := s.dayBookRepo.FindDayBookByID(ctx, dayBook.DayBookID)
			if rerr == nil && current.Status == domain.DayClosed {
				return nil, fmt.Errorf("%w: day %s", apperrors.ErrAlreadyClosed, current.Date.Format(time.DateOnly))
			}
			return nil, fmt.Errorf("%w: day %s", apperrors.ErrConcurrentClose, dayBook.Date.Format(time.DateOnly))
		}
		return nil, fmt.Errorf("failed to begin close: %w", err)
	}
	return eod, nil
}

// closingStamps computes the values stamped onto the closed day book. Closing
// cash is the vault role account's balance; zero when no vault is mapped.
func (s *dayCloseService) closingStamps(ctx context.Context, tenantID string, date time.Time) (decimal.Decimal, int, error) {
	closingCash := decimal.Zero
	vault, err := s.accountRepo.FindRoleAccount(ctx, tenantID, domain.RoleVault)
	if err == nil {
		closingCash = vault.Balance
	} else if !errors.Is(err, apperrors.ErrNotFound) {
		return decimal.Zero, 0, fmt.Errorf("failed to resolve vault account: %w", err)
	}

	count, err := s.ledgerRepo.CountEntriesForDate(ctx, tenantID, date)
	if err != nil {
		return decimal.Zero, 0, fmt.Errorf("failed to count entries: %w", err)
	}
	return closingCash, count, nil
}

func (s *dayCloseService) finishClose(ctx context.Context, tenantID, actorID string, eod *domain.DayBook, forced bool) (*domain.DayBook, error) {
	closingCash, count, err := s.closingStamps(ctx, tenantID, eod.Date)
	if err != nil {
		return nil, err
	}

	closed, err := s.dayBookRepo.TransitionDayBook(ctx, portsrepo.DayBookTransition{
		DayBookID:         eod.DayBookID,
		FromStatus:        domain.DayEODInProgress,
		ExpectedVersion:   eod.Version,
		ToStatus:          domain.DayClosed,
		ClosingCash:       &closingCash,
		TransactionsCount: &count,
		ClosedBy:          &actorID,
		ForceClosed:       &forced,
		ActorID:           actorID,
		At:                s.clock.Now(),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to finish close: %w", err)
	}

	events.Enqueue(ctx, domain.DayClosedEvent{
		TenantID:          tenantID,
		DayBookID:         closed.DayBookID,
		Date:              closed.Date,
		ClosingCash:       closed.ClosingCash,
		TransactionsCount: closed.TransactionsCount,
		ClosedBy:          actorID,
		Forced:            forced,
	})
	return closed, nil
}

// CloseDay closes the active business day. Every teller cash account must be
// at zero; otherwise the close is refused with the offending accounts
// enumerated, and the EOD_IN_PROGRESS claim rolls back with the transaction.
func (s *dayCloseService) CloseDay(ctx context.Context, tenantID, actorID string) (*domain.DayBook, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	var closed *domain.DayBook
	err := s.txManager.WithinTx(ctx, func(txCtx context.Context) error {
		eod, err := s.beginClose(txCtx, tenantID)
		if err != nil {
			return err
		}

		tellerAccounts, err := s.accountRepo.ListBoundTellerAccounts(txCtx, tenantID)
		if err != nil {
			return fmt.Errorf("failed to list teller accounts: %w", err)
		}
		epsilon := accounting.BalanceEpsilon
		var pending []apperrors.AccountBalance
		for _, acc := range tellerAccounts {
			if acc.Balance.Abs().GreaterThan(epsilon) {
				pending = append(pending, apperrors.AccountBalance{
					AccountID: acc.AccountID,
					Code:      acc.Code,
					Name:      acc.Name,
					Balance:   acc.Balance,
				})
			}
		}
		if len(pending) > 0 {
			return &apperrors.PendingSettlementError{Accounts: pending}
		}

		closed, err = s.finishClose(txCtx, tenantID, actorID, eod, false)
		return err
	})
	if err != nil {
		return nil, err
	}

	logger.Info("Business day closed",
		slog.String("day_book_id", closed.DayBookID),
		slog.String("closing_cash", closed.ClosingCash.String()),
		slog.Int("transactions_count", closed.TransactionsCount),
	)
	recordAudit(ctx, s.auditRepo, tenantID, actorID, "daybook.close", "daybook", closed.DayBookID, "date="+closed.Date.Format(time.DateOnly))
	return closed, nil
}

// suspenseAccount resolves the tenant's suspense account, creating and
// mapping one on first use.
func (s *dayCloseService) suspenseAccount(ctx context.Context, tenantID, actorID string) (*domain.Account, error) {
	account, err := s.accountRepo.FindRoleAccount(ctx, tenantID, domain.RoleSuspense)
	if err == nil {
		return account, nil
	}
	if !errors.Is(err, apperrors.ErrNotFound) {
		return nil, fmt.Errorf("failed to resolve suspense account: %w", err)
	}

	now := s.clock.Now()
	created := domain.Account{
		AccountID:   uuid.NewString(),
		TenantID:    tenantID,
		Code:        suspenseAccountCode,
		Name:        suspenseAccountName,
		AccountType: domain.Liability,
		IsActive:    true,
		Balance:     decimal.Zero,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     actorID,
			LastUpdatedAt: now,
			LastUpdatedBy: actorID,
		},
	}
	if err := s.accountRepo.SaveAccount(ctx, created); err != nil {
		return nil, fmt.Errorf("failed to create suspense account: %w", err)
	}
	if err := s.accountRepo.SaveRoleAccount(ctx, tenantID, domain.RoleSuspense, created.AccountID, actorID, now); err != nil {
		return nil, fmt.Errorf("failed to map suspense account: %w", err)
	}
	return &created, nil
}

// ForceCloseDay zeroes every remaining teller balance into the suspense
// account and closes the day regardless of pending settlements. Requires an
// explicit reason and approver, both stamped on the audit trail.
func (s *dayCloseService) ForceCloseDay(ctx context.Context, tenantID, actorID, reason, approver string) (*domain.DayBook, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	if reason == "" || approver == "" {
		return nil, fmt.Errorf("%w: force close requires a reason and an approver", apperrors.ErrValidation)
	}

	var closed *domain.DayBook
	err := s.txManager.WithinTx(ctx, func(txCtx context.Context) error {
		eod, err := s.beginClose(txCtx, tenantID)
		if err != nil {
			return err
		}

		tellerAccounts, err := s.accountRepo.ListBoundTellerAccounts(txCtx, tenantID)
		if err != nil {
			return fmt.Errorf("failed to list teller accounts: %w", err)
		}

		epsilon := accounting.BalanceEpsilon
		for _, acc := range tellerAccounts {
			if !acc.Balance.Abs().GreaterThan(epsilon) {
				continue
			}
			suspense, err := s.suspenseAccount(txCtx, tenantID, actorID)
			if err != nil {
				return err
			}

			amount := acc.Balance.Abs()
			// Positive cash balance leaves the teller and parks in suspense;
			// a negative one is funded from suspense.
			var lines []domain.LedgerLine
			if acc.Balance.IsPositive() {
				lines = []domain.LedgerLine{
					{AccountID: suspense.AccountID, Amount: amount, Side: domain.Debit},
					{AccountID: acc.AccountID, Amount: amount, Side: domain.Credit},
				}
			} else {
				lines = []domain.LedgerLine{
					{AccountID: acc.AccountID, Amount: amount, Side: domain.Debit},
					{AccountID: suspense.AccountID, Amount: amount, Side: domain.Credit},
				}
			}
			description := fmt.Sprintf("Force close: suspense transfer of unsettled balance on %s", acc.Code)
			if _, err := s.posting.Post(txCtx, tenantID, description, lines, eod.Date, actorID); err != nil {
				return fmt.Errorf("failed to post suspense transfer for %s: %w", acc.Code, err)
			}
		}

		if err := s.settlementRepo.MarkSettlementsForceClosed(txCtx, eod.DayBookID, actorID, s.clock.Now()); err != nil {
			return fmt.Errorf("failed to flag settlements force-closed: %w", err)
		}

		closed, err = s.finishClose(txCtx, tenantID, actorID, eod, true)
		return err
	})
	if err != nil {
		return nil, err
	}

	logger.Warn("Business day force-closed",
		slog.String("day_book_id", closed.DayBookID),
		slog.String("reason", reason),
		slog.String("approver", approver),
	)
	recordAudit(ctx, s.auditRepo, tenantID, actorID, "daybook.force_close", "daybook", closed.DayBookID,
		fmt.Sprintf("reason=%s approver=%s", reason, approver))
	return closed, nil
}

// ReopenDay returns today's closed day book to OPEN. Days for any earlier
// date stay closed forever; corrections there go through reversing entries.
func (s *dayCloseService) ReopenDay(ctx context.Context, tenantID, actorID, reason, approver string) (*domain.DayBook, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	if reason == "" || approver == "" {
		return nil, fmt.Errorf("%w: reopen requires a reason and an approver", apperrors.ErrValidation)
	}

	today := dates.Truncate(s.clock.Now())

	var reopened *domain.DayBook
	err := s.txManager.WithinTx(ctx, func(txCtx context.Context) error {
		latest, err := s.dayBookRepo.FindLatestDayBook(txCtx, tenantID)
		if err != nil {
			if errors.Is(err, apperrors.ErrNotFound) {
				return apperrors.ErrNoDayForToday
			}
			return fmt.Errorf("failed to fetch latest day book: %w", err)
		}
		if !dates.SameDate(latest.Date, today) {
			return fmt.Errorf("%w: latest day is %s", apperrors.ErrCannotReopenPastDay, latest.Date.Format(time.DateOnly))
		}
		if latest.Status != domain.DayClosed {
			return fmt.Errorf("%w: day is %s", apperrors.ErrNotClosed, latest.Status)
		}

		reopened, err = s.dayBookRepo.TransitionDayBook(txCtx, portsrepo.DayBookTransition{
			DayBookID:       latest.DayBookID,
			FromStatus:      domain.DayClosed,
			ExpectedVersion: latest.Version,
			ToStatus:        domain.DayOpen,
			ActorID:         actorID,
			At:              s.clock.Now(),
		})
		if err != nil {
			return fmt.Errorf("failed to reopen day book: %w", err)
		}

		events.Enqueue(txCtx, domain.DayReopenedEvent{
			TenantID:   tenantID,
			DayBookID:  reopened.DayBookID,
			Date:       reopened.Date,
			ReopenedBy: actorID,
			Reason:     reason,
		})
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.Warn("Business day reopened",
		slog.String("day_book_id", reopened.DayBookID),
		slog.String("reason", reason),
		slog.String("approver", approver),
	)
	recordAudit(ctx, s.auditRepo, tenantID, actorID, "daybook.reopen", "daybook", reopened.DayBookID,
		fmt.Sprintf("reason=%s approver=%s", reason, approver))
	return reopened, nil
}
