package domain

import (
	"github.com/shopspring/decimal"
)

// AccountType defines the fundamental accounting type of an account.
type AccountType string

const (
	Asset     AccountType = "ASSET"
	Liability AccountType = "LIABILITY"
	Equity    AccountType = "EQUITY"
	Revenue   AccountType = "REVENUE"
	Expense   AccountType = "EXPENSE"
)

// AccountRole identifies a special-purpose account within a tenant's chart of
// accounts. Roles are resolved through an explicit per-tenant mapping, never
// by scanning account codes.
type AccountRole string

const (
	RoleVault           AccountRole = "VAULT"
	RoleSuspense        AccountRole = "SUSPENSE"
	RoleStaffReceivable AccountRole = "STAFF_RECEIVABLE"
	RoleSundryIncome    AccountRole = "SUNDRY_INCOME"
)

// ValidAccountRole reports whether the given role is one of the known roles.
func ValidAccountRole(role AccountRole) bool {
	switch role {
	case RoleVault, RoleSuspense, RoleStaffReceivable, RoleSundryIncome:
		return true
	}
	return false
}

// Account represents a financial account in a tenant's chart of accounts.
// Group accounts exist only for aggregation; postings target leaf accounts.
type Account struct {
	AccountID       string          `json:"accountID"`       // Primary Key (UUID)
	TenantID        string          `json:"tenantID"`        // Owning tenant (NON-NULL)
	Code            string          `json:"code"`            // Hierarchical code, unique per tenant (e.g. 1-20-01-003)
	Name            string          `json:"name"`            // User-defined name
	AccountType     AccountType     `json:"accountType"`     // ASSET, LIABILITY, etc.
	IsGroup         bool            `json:"isGroup"`         // Aggregation-only, never posted to
	IsActive        bool            `json:"isActive"`        // Soft delete or status flag
	ParentAccountID *string         `json:"parentAccountID"` // Nullable self reference
	BoundTellerID   *string         `json:"boundTellerID"`   // Set when this is a teller's personal cash account
	Balance         decimal.Decimal `json:"balance"`         // Persisted current balance
	AuditFields
}

// IsPostable reports whether the account may appear on a ledger line.
func (a Account) IsPostable() bool {
	return a.IsActive && !a.IsGroup
}
