package repositories

import (
	"context"
	"time"

	"github.com/sahakari/coopcore/internal/core/domain"
	"github.com/shopspring/decimal"
)

// DayBookTransition describes a compare-and-swap status change. The update
// matches (DayBookID, FromStatus, ExpectedVersion) in one statement; zero
// affected rows surface as apperrors.ErrVersionConflict so callers can
// distinguish contention from not-found.
type DayBookTransition struct {
	DayBookID       string
	FromStatus      domain.DayBookStatus
	ExpectedVersion int64
	ToStatus        domain.DayBookStatus

	// Optional close stamps, applied when transitioning to CLOSED.
	ClosingCash       *decimal.Decimal
	TransactionsCount *int
	ClosedBy          *string
	ForceClosed       *bool

	ActorID string
	At      time.Time
}

// DayBookReader defines read operations for business-day records.
type DayBookReader interface {
	// FindDayBookByID retrieves a day book by primary key.
	FindDayBookByID(ctx context.Context, dayBookID string) (*domain.DayBook, error)

	// FindDayBookByDate retrieves the day book for a tenant and calendar date.
	FindDayBookByDate(ctx context.Context, tenantID string, date time.Time) (*domain.DayBook, error)

	// FindLatestDayBook retrieves a tenant's most recent day book by date.
	FindLatestDayBook(ctx context.Context, tenantID string) (*domain.DayBook, error)

	// FindActiveDayBook retrieves the tenant's OPEN or EOD_IN_PROGRESS day
	// book. At most one may exist at a time.
	FindActiveDayBook(ctx context.Context, tenantID string) (*domain.DayBook, error)
}

// DayBookWriter defines write operations for business-day records.
type DayBookWriter interface {
	// CreateDayBook persists a new day book at version 1.
	CreateDayBook(ctx context.Context, dayBook domain.DayBook) error

	// TransitionDayBook performs a conditional status update and returns the
	// record as stored after the transition.
	TransitionDayBook(ctx context.Context, t DayBookTransition) (*domain.DayBook, error)
}

// DayBookRepositoryFacade combines all day-book repository interfaces.
type DayBookRepositoryFacade interface {
	DayBookReader
	DayBookWriter
}
