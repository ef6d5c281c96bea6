package repositories

import (
	"context"
	"time"

	"github.com/sahakari/coopcore/internal/core/domain"
)

// SettlementReader defines read operations for teller settlements.
type SettlementReader interface {
	// FindSettlementByID retrieves a settlement by primary key.
	FindSettlementByID(ctx context.Context, settlementID string) (*domain.TellerSettlement, error)

	// FindSettlementByRef retrieves a settlement by its idempotency token.
	// Returns apperrors.ErrNotFound when the token has not been used.
	FindSettlementByRef(ctx context.Context, tenantID, settlementRef string) (*domain.TellerSettlement, error)

	// ListSettlementsByDayBook retrieves all settlements recorded against a
	// day book, newest first.
	ListSettlementsByDayBook(ctx context.Context, dayBookID string) ([]domain.TellerSettlement, error)
}

// SettlementWriter defines write operations for teller settlements.
type SettlementWriter interface {
	// SaveSettlement persists a new settlement.
	SaveSettlement(ctx context.Context, settlement domain.TellerSettlement) error

	// MarkSettlementReverted transitions a settlement to REVERTED.
	MarkSettlementReverted(ctx context.Context, settlementID, reason, actorID string, at time.Time) error

	// MarkSettlementsForceClosed flags every non-reverted settlement of a day
	// book as force-closed during an administrative override.
	MarkSettlementsForceClosed(ctx context.Context, dayBookID, actorID string, at time.Time) error
}

// SettlementRepositoryFacade combines all settlement repository interfaces.
type SettlementRepositoryFacade interface {
	SettlementReader
	SettlementWriter
}
