package pgsql

import (
	"context"
	"encoding/json"
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

const settlementColumns = `settlement_id, day_book_id, tenant_id, teller_id, physical_cash, system_cash, difference, status, settlement_ref, is_force_closed, attachment_ref, denominations, variance_entry_id, vault_entry_id, approved_by, approved_at, revert_reason, created_at, created_by, last_updated_at, last_updated_by`

type PgxSettlementRepository struct {
	BaseRepository
}

// newPgxSettlementRepository creates a new repository for teller settlements.
func newPgxSettlementRepository(pool *pgxpool.Pool) portsrepo.SettlementRepositoryFacade {
	return &PgxSettlementRepository{BaseRepository: BaseRepository{Pool: pool}}
}

var _ portsrepo.SettlementRepositoryFacade = (*PgxSettlementRepository)(nil)

func scanSettlement(row pgx.Row) (*domain.TellerSettlement, error) {
	var s domain.TellerSettlement
	var denominations []byte
	err := row.Scan(
		&s.SettlementID,
		&s.DayBookID,
		&s.TenantID,
		&s.TellerID,
		&s.PhysicalCash,
		&s.SystemCash,
		&s.Difference,
		&s.Status,
		&s.SettlementRef,
		&s.IsForceClosed,
		&s.AttachmentRef,
		&denominations,
		&s.VarianceEntryID,
		&s.VaultEntryID,
		&s.ApprovedBy,
		&s.ApprovedAt,
		&s.RevertReason,
		&s.CreatedAt,
		&s.CreatedBy,
		&s.LastUpdatedAt,
		&s.LastUpdatedBy,
	)
	if err != nil {
		return nil, err
	}
	if len(denominations) > 0 {
		if err := json.Unmarshal(denominations, &s.Denominations); err != nil {
			return nil, fmt.Errorf("failed to decode denominations of settlement %s: %w", s.SettlementID, err)
		}
	}
	return &s, nil
}

// SaveSettlement persists a new settlement. The denomination breakdown is
// stored as JSONB.
func (r *PgxSettlementRepository) SaveSettlement(ctx context.Context, settlement domain.TellerSettlement) error {
	var denominations []byte
	if len(settlement.Denominations) > 0 {
		var err error
		denominations, err = json.Marshal(settlement.Denominations)
		if err != nil {
			return fmt.Errorf("failed to encode denominations: %w", err)
		}
	}

	query := `
		INSERT INTO teller_settlements (` + settlementColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20, $21);
	`
	_, err := r.q(ctx).Exec(ctx, query,
		settlement.SettlementID,
		settlement.DayBookID,
		settlement.TenantID,
		settlement.TellerID,
		settlement.PhysicalCash,
		settlement.SystemCash,
		settlement.Difference,
		settlement.Status,
		settlement.SettlementRef,
		settlement.IsForceClosed,
		settlement.AttachmentRef,
		denominations,
		settlement.VarianceEntryID,
		settlement.VaultEntryID,
		settlement.ApprovedBy,
		settlement.ApprovedAt,
		settlement.RevertReason,
		settlement.CreatedAt,
		settlement.CreatedBy,
		settlement.LastUpdatedAt,
		settlement.LastUpdatedBy,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" { // Unique violation on (tenant_id, settlement_ref)
			return fmt.Errorf("%w: settlement ref %s already used", apperrors.ErrDuplicate, settlement.SettlementRef)
		}
		return fmt.Errorf("failed to save settlement %s: %w", settlement.SettlementID, err)
	}
	return nil
}

// FindSettlementByID retrieves a settlement by primary key.
func (r *PgxSettlementRepository) FindSettlementByID(ctx context.Context, settlementID string) (*domain.TellerSettlement, error) {
	query := `SELECT ` + settlementColumns + ` FROM teller_settlements WHERE settlement_id = $1;`
	settlement, err := scanSettlement(r.q(ctx).QueryRow(ctx, query, settlementID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find settlement by ID %s: %w", settlementID, err)
	}
	return settlement, nil
}

// FindSettlementByRef retrieves a settlement by its idempotency token.
func (r *PgxSettlementRepository) FindSettlementByRef(ctx context.Context, tenantID, settlementRef string) (*domain.TellerSettlement, error) {
	query := `SELECT ` + settlementColumns + ` FROM teller_settlements WHERE tenant_id = $1 AND settlement_ref = $2;`
	settlement, err := scanSettlement(r.q(ctx).QueryRow(ctx, query, tenantID, settlementRef))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find settlement by ref: %w", err)
	}
	return settlement, nil
}

// ListSettlementsByDayBook retrieves all settlements of a day book, newest
// first.
func (r *PgxSettlementRepository) ListSettlementsByDayBook(ctx context.Context, dayBookID string) ([]domain.TellerSettlement, error) {
	query := `SELECT ` + settlementColumns + ` FROM teller_settlements WHERE day_book_id = $1 ORDER BY created_at DESC;`
	rows, err := r.q(ctx).Query(ctx, query, dayBookID)
	if err != nil {
		return nil, fmt.Errorf("failed to query settlements for day book %s: %w", dayBookID, err)
	}
	defer rows.Close()

	settlements := []domain.TellerSettlement{}
	for rows.Next() {
		settlement, err := scanSettlement(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan settlement row: %w", err)
		}
		settlements = append(settlements, *settlement)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating settlement rows: %w", err)
	}
	return settlements, nil
}

// MarkSettlementReverted transitions a settlement to REVERTED.
func (r *PgxSettlementRepository) MarkSettlementReverted(ctx context.Context, settlementID, reason, actorID string, at time.Time) error {
	query := `
		UPDATE teller_settlements
		SET status = $2, revert_reason = $3, last_updated_at = $4, last_updated_by = $5
		WHERE settlement_id = $1 AND status <> $2;
	`
	cmdTag, err := r.q(ctx).Exec(ctx, query, settlementID, domain.SettlementReverted, reason, at, actorID)
	if err != nil {
		return fmt.Errorf("failed to mark settlement %s reverted: %w", settlementID, err)
	}
	if cmdTag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

// MarkSettlementsForceClosed flags every non-reverted settlement of a day
// book as force-closed.
func (r *PgxSettlementRepository) MarkSettlementsForceClosed(ctx context.Context, dayBookID, actorID string, at time.Time) error {
	query := `
		UPDATE teller_settlements
		SET is_force_closed = TRUE, last_updated_at = $2, last_updated_by = $3
		WHERE day_book_id = $1 AND status <> $4;
	`
	if _, err := r.q(ctx).Exec(ctx, query, dayBookID, at, actorID, domain.SettlementReverted); err != nil {
		return fmt.Errorf("failed to flag settlements of day book %s: %w", dayBookID, err)
	}
	return nil
}
