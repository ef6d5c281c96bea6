package services

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/sahakari/coopcore/internal/core/domain"
	portsrepo "github.com/sahakari/coopcore/internal/core/ports/repositories"
	"github.com/sahakari/coopcore/internal/middleware"
)

// recordAudit writes a fire-and-forget audit row for a state-changing call.
// Persistence failures are logged and swallowed; the audit trail never blocks
// or fails the operation it describes.
func recordAudit(ctx context.Context, repo portsrepo.AuditRepository, tenantID, actorID, action, entityType, entityID, detail string) {
	if repo == nil {
		return
	}
	logger := middleware.GetLoggerFromCtx(ctx)
	record := domain.AuditRecord{
		AuditID:    uuid.NewString(),
		TenantID:   tenantID,
		ActorID:    actorID,
		Action:     action,
		EntityType: entityType,
		EntityID:   entityID,
		Detail:     detail,
		RecordedAt: time.Now().UTC(),
	}
	if err := repo.SaveAuditRecord(context.WithoutCancel(ctx), record); err != nil {
		logger.Warn("Failed to record audit entry",
			slog.String("action", action),
			slog.String("entity_id", entityID),
			slog.String("error", err.Error()),
		)
	}
}

// uniqueStrings returns a slice containing only the unique strings from the input.
func uniqueStrings(input []string) []string {
	seen := make(map[string]struct{}, len(input))
	result := make([]string, 0, len(input))
	for _, str := range input {
		if _, ok := seen[str]; !ok {
			seen[str] = struct{}{}
			result = append(result, str)
		}
	}
	return result
}
