package repositories

import (
	"context"

	"github.com/sahakari/coopcore/internal/core/domain"
)

// AuditRepository is the fire-and-forget audit sink. Callers log and discard
// any error it returns.
type AuditRepository interface {
	SaveAuditRecord(ctx context.Context, record domain.AuditRecord) error
}
