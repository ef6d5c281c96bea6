package services

import (
	"context"

	"github.com/sahakari/coopcore/internal/core/domain"
	"github.com/sahakari/coopcore/internal/dto"
)

// AccountSvcFacade exposes chart-of-accounts registry operations.
type AccountSvcFacade interface {
	// CreateAccount registers a new account in the tenant's chart.
	CreateAccount(ctx context.Context, tenantID string, req dto.CreateAccountRequest, actorID string) (*domain.Account, error)

	// GetAccountByID retrieves a tenant's account.
	GetAccountByID(ctx context.Context, tenantID, accountID string) (*domain.Account, error)

	// ListAccounts retrieves all accounts of a tenant, ordered by code.
	ListAccounts(ctx context.Context, tenantID string) ([]domain.Account, error)

	// SetRoleAccount maps a special-purpose role to an existing leaf account.
	SetRoleAccount(ctx context.Context, tenantID string, role domain.AccountRole, accountID, actorID string) error

	// GetRoleAccount resolves the account currently mapped to a role.
	GetRoleAccount(ctx context.Context, tenantID string, role domain.AccountRole) (*domain.Account, error)
}
