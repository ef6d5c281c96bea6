package pgsql

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/sahakari/coopcore/internal/core/domain"
	portsrepo "github.com/sahakari/coopcore/internal/core/ports/repositories"
)

type PgxAuditRepository struct {
	BaseRepository
}

// newPgxAuditRepository creates a new repository for audit records.
func newPgxAuditRepository(pool *pgxpool.Pool) portsrepo.AuditRepository {
	return &PgxAuditRepository{BaseRepository: BaseRepository{Pool: pool}}
}

var _ portsrepo.AuditRepository = (*PgxAuditRepository)(nil)

// SaveAuditRecord inserts an audit row. Always runs against the pool, never
// an ambient transaction: the trail should survive a rollback of the
// operation that produced it, and callers discard any error anyway.
func (r *PgxAuditRepository) SaveAuditRecord(ctx context.Context, record domain.AuditRecord) error {
	query := `
		INSERT INTO audit_logs (audit_id, tenant_id, actor_id, action, entity_type, entity_id, detail, recorded_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8);
	`
	_, err := r.Pool.Exec(ctx, query,
		record.AuditID,
		record.TenantID,
		record.ActorID,
		record.Action,
		record.EntityType,
		record.EntityID,
		record.Detail,
		record.RecordedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to save audit record %s: %w", record.AuditID, err)
	}
	return nil
}
