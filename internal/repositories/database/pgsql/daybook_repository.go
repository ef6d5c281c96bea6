package pgsql

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/sahakari/coopcore/internal/apperrors"
	"github.com/sahakari/coopcore/internal/core/domain"
	portsrepo "github.com/sahakari/coopcore/internal/core/ports/repositories"
)

const dayBookColumns = `day_book_id, tenant_id, date, status, opening_cash, closing_cash, transactions_count, opened_by, closed_by, is_force_closed, version, created_at, created_by, last_updated_at, last_updated_by`

type PgxDayBookRepository struct {
	BaseRepository
}

// newPgxDayBookRepository creates a new repository for business-day records.
func newPgxDayBookRepository(pool *pgxpool.Pool) portsrepo.DayBookRepositoryFacade {
	return &PgxDayBookRepository{BaseRepository: BaseRepository{Pool: pool}}
}

var _ portsrepo.DayBookRepositoryFacade = (*PgxDayBookRepository)(nil)

func scanDayBook(row pgx.Row) (*domain.DayBook, error) {
	var d domain.DayBook
	err := row.Scan(
		&d.DayBookID,
		&d.TenantID,
		&d.Date,
		&d.Status,
		&d.OpeningCash,
		&d.ClosingCash,
		&d.TransactionsCount,
		&d.OpenedBy,
		&d.ClosedBy,
		&d.IsForceClosed,
		&d.Version,
		&d.CreatedAt,
		&d.CreatedBy,
		&d.LastUpdatedAt,
		&d.LastUpdatedBy,
	)
	if err != nil {
		return nil, err
	}
	return &d, nil
}

// CreateDayBook persists a new day book. The partial unique index on active
// statuses enforces at most one OPEN or EOD_IN_PROGRESS day per tenant at the
// store level.
func (r *PgxDayBookRepository) CreateDayBook(ctx context.Context, dayBook domain.DayBook) error {
	query := `
		INSERT INTO day_books (` + dayBookColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15);
	`
	_, err := r.q(ctx).Exec(ctx, query,
		dayBook.DayBookID,
		dayBook.TenantID,
		dayBook.Date,
		dayBook.Status,
		dayBook.OpeningCash,
		dayBook.ClosingCash,
		dayBook.TransactionsCount,
		dayBook.OpenedBy,
		dayBook.ClosedBy,
		dayBook.IsForceClosed,
		dayBook.Version,
		dayBook.CreatedAt,
		dayBook.CreatedBy,
		dayBook.LastUpdatedAt,
		dayBook.LastUpdatedBy,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" { // Unique violation
			return fmt.Errorf("%w: day book for %s already exists", apperrors.ErrDuplicate, dayBook.Date.Format("2006-01-02"))
		}
		return fmt.Errorf("failed to create day book %s: %w", dayBook.DayBookID, err)
	}
	return nil
}

// TransitionDayBook performs a compare-and-swap status update. The statement
// matches (id, status, version); zero affected rows mean the record moved
// underneath the caller and surface as ErrVersionConflict.
func (r *PgxDayBookRepository) TransitionDayBook(ctx context.Context, t portsrepo.DayBookTransition) (*domain.DayBook, error) {
	query := `
		UPDATE day_books
		SET status = $4,
		    closing_cash = COALESCE($5, closing_cash),
		    transactions_count = COALESCE($6, transactions_count),
		    closed_by = COALESCE($7, closed_by),
		    is_force_closed = COALESCE($8, is_force_closed),
		    version = version + 1,
		    last_updated_at = $9,
		    last_updated_by = $10
		WHERE day_book_id = $1 AND status = $2 AND version = $3
		RETURNING ` + dayBookColumns + `;
	`
	dayBook, err := scanDayBook(r.q(ctx).QueryRow(ctx, query,
		t.DayBookID,
		t.FromStatus,
		t.ExpectedVersion,
		t.ToStatus,
		t.ClosingCash,
		t.TransactionsCount,
		t.ClosedBy,
		t.ForceClosed,
		t.At,
		t.ActorID,
	))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: day book %s is no longer %s at version %d",
				apperrors.ErrVersionConflict, t.DayBookID, t.FromStatus, t.ExpectedVersion)
		}
		return nil, fmt.Errorf("failed to transition day book %s: %w", t.DayBookID, err)
	}
	return dayBook, nil
}

// FindDayBookByID retrieves a day book by primary key.
func (r *PgxDayBookRepository) FindDayBookByID(ctx context.Context, dayBookID string) (*domain.DayBook, error) {
	query := `SELECT ` + dayBookColumns + ` FROM day_books WHERE day_book_id = $1;`
	dayBook, err := scanDayBook(r.q(ctx).QueryRow(ctx, query, dayBookID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find day book by ID %s: %w", dayBookID, err)
	}
	return dayBook, nil
}

// FindDayBookByDate retrieves the day book for a tenant and calendar date.
func (r *PgxDayBookRepository) FindDayBookByDate(ctx context.Context, tenantID string, date time.Time) (*domain.DayBook, error) {
	query := `SELECT ` + dayBookColumns + ` FROM day_books WHERE tenant_id = $1 AND date = $2::date;`
	dayBook, err := scanDayBook(r.q(ctx).QueryRow(ctx, query, tenantID, date))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find day book by date: %w", err)
	}
	return dayBook, nil
}

// FindLatestDayBook retrieves a tenant's most recent day book by date.
func (r *PgxDayBookRepository) FindLatestDayBook(ctx context.Context, tenantID string) (*domain.DayBook, error) {
	query := `SELECT ` + dayBookColumns + ` FROM day_books WHERE tenant_id = $1 ORDER BY date DESC LIMIT 1;`
	dayBook, err := scanDayBook(r.q(ctx).QueryRow(ctx, query, tenantID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find latest day book: %w", err)
	}
	return dayBook, nil
}

// FindActiveDayBook retrieves the tenant's OPEN or EOD_IN_PROGRESS day book.
func (r *PgxDayBookRepository) FindActiveDayBook(ctx context.Context, tenantID string) (*domain.DayBook, error) {
	query := `
		SELECT ` + dayBookColumns + `
		FROM day_books
		WHERE tenant_id = $1 AND status IN ('OPEN', 'EOD_IN_PROGRESS')
		ORDER BY date DESC
		LIMIT 1;
	`
	dayBook, err := scanDayBook(r.q(ctx).QueryRow(ctx, query, tenantID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find active day book: %w", err)
	}
	return dayBook, nil
}
