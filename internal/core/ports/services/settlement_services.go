package services

import (
	"context"

	"github.com/sahakari/coopcore/internal/core/domain"
	"github.com/sahakari/coopcore/internal/dto"
)

// SettlementSvcFacade reconciles teller cash against the ledger and sweeps
// counted cash into the vault.
type SettlementSvcFacade interface {
	// Preview computes the variance and the entries a settlement would book,
	// persisting nothing.
	Preview(ctx context.Context, tenantID string, req dto.SettleRequest) (*dto.SettlementPreviewResponse, error)

	// Settle books the variance and vault-transfer entries and records the
	// settlement. Replaying an idempotency key returns the original
	// settlement unchanged.
	Settle(ctx context.Context, tenantID string, req dto.SettleRequest, actorID string) (*domain.TellerSettlement, error)

	// Unsettle reverses every entry a settlement produced and marks it
	// REVERTED. The reversal window closes once the day closes or the
	// settlement is formally approved.
	Unsettle(ctx context.Context, tenantID, settlementID, reason, actorID string) (*domain.TellerSettlement, error)

	// ListForDayBook returns the settlements recorded against a day book.
	ListForDayBook(ctx context.Context, tenantID, dayBookID string) ([]domain.TellerSettlement, error)
}
