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
	"github.com/sahakari/coopcore/internal/utils/dates"
	"github.com/shopspring/decimal"
)

// dayBookService runs the business-day state machine: one record per tenant
// per date, at most one OPEN or EOD_IN_PROGRESS at a time.
type dayBookService struct {
	txManager   portsrepo.TxManager
	dayBookRepo portsrepo.DayBookRepositoryFacade
	auditRepo   portsrepo.AuditRepository
	clock       portssvc.Clock
}

// NewDayBookService creates a new DayBookService.
func NewDayBookService(txManager portsrepo.TxManager, dayBookRepo portsrepo.DayBookRepositoryFacade, auditRepo portsrepo.AuditRepository, clock portssvc.Clock) portssvc.DayBookSvcFacade {
	return &dayBookService{
		txManager:   txManager,
		dayBookRepo: dayBookRepo,
		auditRepo:   auditRepo,
		clock:       clock,
	}
}

var _ portssvc.DayBookSvcFacade = (*dayBookService)(nil)

// StartDay opens the business day for the given calendar date. A closed day
// book for today's date is reopened in place; any other closed date is
// refused. The new day's opening cash is the prior day's closing cash.
func (s *dayBookService) StartDay(ctx context.Context, tenantID string, date time.Time, actorID string) (*domain.DayBook, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	day := dates.Truncate(date)
	today := dates.Truncate(s.clock.Now())

	var result *domain.DayBook
	err := s.txManager.WithinTx(ctx, func(txCtx context.Context) error {
		prev, err := s.dayBookRepo.FindDayBookByDate(txCtx, tenantID, dates.PreviousDate(day))
		if err != nil && !errors.Is(err, apperrors.ErrNotFound) {
			return fmt.Errorf("failed to check previous day: %w", err)
		}
		if prev != nil && prev.Status != domain.DayClosed {
			return fmt.Errorf("%w: %s is %s", apperrors.ErrPreviousDayNotClosed, prev.Date.Format(time.DateOnly), prev.Status)
		}

		existing, err := s.dayBookRepo.FindDayBookByDate(txCtx, tenantID, day)
		if err != nil && !errors.Is(err, apperrors.ErrNotFound) {
			return fmt.Errorf("failed to check day book for %s: %w", day.Format(time.DateOnly), err)
		}

		if existing != nil {
			switch existing.Status {
			case domain.DayOpen:
				return fmt.Errorf("%w: %s", apperrors.ErrDayAlreadyOpen, day.Format(time.DateOnly))
			case domain.DayEODInProgress:
				return fmt.Errorf("%w: day %s is closing", apperrors.ErrConcurrentClose, day.Format(time.DateOnly))
			default: // CLOSED
				if !day.Equal(today) {
					return fmt.Errorf("%w: %s", apperrors.ErrCannotStartPastDay, day.Format(time.DateOnly))
				}
				reopened, err := s.dayBookRepo.TransitionDayBook(txCtx, portsrepo.DayBookTransition{
					DayBookID:       existing.DayBookID,
					FromStatus:      domain.DayClosed,
					ExpectedVersion: existing.Version,
					ToStatus:        domain.DayOpen,
					ActorID:         actorID,
					At:              s.clock.Now(),
				})
				if err != nil {
					return fmt.Errorf("failed to reopen day book: %w", err)
				}
				result = reopened
				events.Enqueue(txCtx, domain.DayOpenedEvent{
					TenantID:    tenantID,
					DayBookID:   reopened.DayBookID,
					Date:        reopened.Date,
					OpeningCash: reopened.OpeningCash,
					OpenedBy:    actorID,
					Reopened:    true,
				})
				return nil
			}
		}

		// An active day book for any earlier date also blocks starting.
		active, err := s.dayBookRepo.FindActiveDayBook(txCtx, tenantID)
		if err != nil && !errors.Is(err, apperrors.ErrNotFound) {
			return fmt.Errorf("failed to check active day book: %w", err)
		}
		if active != nil {
			return fmt.Errorf("%w: %s is %s", apperrors.ErrPreviousDayNotClosed, active.Date.Format(time.DateOnly), active.Status)
		}

		openingCash := decimal.Zero
		latest, err := s.dayBookRepo.FindLatestDayBook(txCtx, tenantID)
		if err != nil && !errors.Is(err, apperrors.ErrNotFound) {
			return fmt.Errorf("failed to fetch latest day book: %w", err)
		}
		if latest != nil {
			openingCash = latest.ClosingCash
		}

		now := s.clock.Now()
		dayBook := domain.DayBook{
			DayBookID:   uuid.NewString(),
			TenantID:    tenantID,
			Date:        day,
			Status:      domain.DayOpen,
			OpeningCash: openingCash,
			ClosingCash: decimal.Zero,
			OpenedBy:    actorID,
			Version:     1,
			AuditFields: domain.AuditFields{
				CreatedAt:     now,
				CreatedBy:     actorID,
				LastUpdatedAt: now,
				LastUpdatedBy: actorID,
			},
		}
		if err := s.dayBookRepo.CreateDayBook(txCtx, dayBook); err != nil {
			return fmt.Errorf("failed to create day book: %w", err)
		}
		result = &dayBook
		events.Enqueue(txCtx, domain.DayOpenedEvent{
			TenantID:    tenantID,
			DayBookID:   dayBook.DayBookID,
			Date:        dayBook.Date,
			OpeningCash: dayBook.OpeningCash,
			OpenedBy:    actorID,
			Reopened:    false,
		})
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.Info("Business day started", slog.String("day_book_id", result.DayBookID), slog.String("date", result.Date.Format(time.DateOnly)))
	recordAudit(ctx, s.auditRepo, tenantID, actorID, "daybook.start", "daybook", result.DayBookID, "date="+result.Date.Format(time.DateOnly))
	return result, nil
}

// Status returns the tenant's active day book, falling back to the most
// recent one, or nil when the tenant has never started a day.
func (s *dayBookService) Status(ctx context.Context, tenantID string) (*domain.DayBook, error) {
	active, err := s.dayBookRepo.FindActiveDayBook(ctx, tenantID)
	if err == nil {
		return active, nil
	}
	if !errors.Is(err, apperrors.ErrNotFound) {
		return nil, fmt.Errorf("failed to fetch active day book: %w", err)
	}

	latest, err := s.dayBookRepo.FindLatestDayBook(ctx, tenantID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, nil // Never started; empty state, not an error
		}
		return nil, fmt.Errorf("failed to fetch latest day book: %w", err)
	}
	return latest, nil
}
