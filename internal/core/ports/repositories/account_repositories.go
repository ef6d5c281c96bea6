package repositories

import (
	"context"
	"time"

	"github.com/sahakari/coopcore/internal/core/domain"
	"github.com/shopspring/decimal"
)

// AccountReader defines read operations for chart-of-accounts data.
type AccountReader interface {
	// FindAccountByID retrieves a specific account by its unique identifier.
	FindAccountByID(ctx context.Context, accountID string) (*domain.Account, error)

	// FindAccountByCode retrieves an account by its hierarchical code within a tenant.
	FindAccountByCode(ctx context.Context, tenantID, code string) (*domain.Account, error)

	// FindAccountsByIDs retrieves multiple accounts keyed by ID.
	FindAccountsByIDs(ctx context.Context, accountIDs []string) (map[string]domain.Account, error)

	// ListAccounts retrieves all accounts of a tenant, ordered by code.
	ListAccounts(ctx context.Context, tenantID string) ([]domain.Account, error)

	// FindTellerCashAccounts retrieves the leaf cash accounts bound to the
	// given teller. The settlement engine requires exactly one.
	FindTellerCashAccounts(ctx context.Context, tenantID, tellerID string) ([]domain.Account, error)

	// ListBoundTellerAccounts retrieves every active leaf account bound to an
	// operator, with current balances. Used by the day-close check.
	ListBoundTellerAccounts(ctx context.Context, tenantID string) ([]domain.Account, error)
}

// AccountWriter defines write operations for chart-of-accounts data.
type AccountWriter interface {
	// SaveAccount persists a new account.
	SaveAccount(ctx context.Context, account domain.Account) error

	// FindAccountsByIDsForUpdate retrieves accounts by ID and locks their
	// rows for the remainder of the ambient transaction. The lock serialises
	// concurrent balance updates against the same accounts.
	FindAccountsByIDsForUpdate(ctx context.Context, accountIDs []string) (map[string]domain.Account, error)

	// UpdateAccountBalances applies signed balance deltas to the given
	// accounts. Must run inside the transaction that locked the rows.
	UpdateAccountBalances(ctx context.Context, balanceChanges map[string]decimal.Decimal, actorID string, now time.Time) error
}

// RoleMappingRepository resolves and maintains the explicit per-tenant
// role -> account configuration (vault, suspense, staff receivable, sundry
// income). There is deliberately no fallback lookup by code prefix.
type RoleMappingRepository interface {
	// FindRoleAccount resolves the account mapped to a role for a tenant.
	// Returns apperrors.ErrNotFound when no mapping exists.
	FindRoleAccount(ctx context.Context, tenantID string, role domain.AccountRole) (*domain.Account, error)

	// SaveRoleAccount creates or replaces a role mapping.
	SaveRoleAccount(ctx context.Context, tenantID string, role domain.AccountRole, accountID, actorID string, now time.Time) error
}

// AccountRepositoryFacade combines all account-related repository interfaces.
type AccountRepositoryFacade interface {
	AccountReader
	AccountWriter
	RoleMappingRepository
}
