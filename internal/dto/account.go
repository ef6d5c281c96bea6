package dto

import (
	"github.com/sahakari/coopcore/internal/core/domain"
	"github.com/shopspring/decimal"
)

// CreateAccountRequest defines the payload for creating a new account.
type CreateAccountRequest struct {
	Code            string             `json:"code" binding:"required,max=50"`
	Name            string             `json:"name" binding:"required,max=255"`
	AccountType     domain.AccountType `json:"accountType" binding:"required,oneof=ASSET LIABILITY EQUITY REVENUE EXPENSE"`
	IsGroup         bool               `json:"isGroup"`
	ParentAccountID *string            `json:"parentAccountID" binding:"omitempty,uuid"`
	BoundTellerID   *string            `json:"boundTellerID" binding:"omitempty,max=100"`
}

// SetRoleAccountRequest maps a special-purpose role to an existing account.
type SetRoleAccountRequest struct {
	AccountID string `json:"accountID" binding:"required,uuid"`
}

// AccountResponse defines the account representation returned by the API.
type AccountResponse struct {
	AccountID       string             `json:"accountID"`
	TenantID        string             `json:"tenantID"`
	Code            string             `json:"code"`
	Name            string             `json:"name"`
	AccountType     domain.AccountType `json:"accountType"`
	IsGroup         bool               `json:"isGroup"`
	IsActive        bool               `json:"isActive"`
	ParentAccountID *string            `json:"parentAccountID,omitempty"`
	BoundTellerID   *string            `json:"boundTellerID,omitempty"`
	Balance         decimal.Decimal    `json:"balance"`
}

// ToAccountResponse converts a domain account to its API representation.
func ToAccountResponse(a *domain.Account) AccountResponse {
	return AccountResponse{
		AccountID:       a.AccountID,
		TenantID:        a.TenantID,
		Code:            a.Code,
		Name:            a.Name,
		AccountType:     a.AccountType,
		IsGroup:         a.IsGroup,
		IsActive:        a.IsActive,
		ParentAccountID: a.ParentAccountID,
		BoundTellerID:   a.BoundTellerID,
		Balance:         a.Balance,
	}
}

// ToAccountResponses converts a slice of domain accounts.
func ToAccountResponses(accounts []domain.Account) []AccountResponse {
	out := make([]AccountResponse, len(accounts))
	for i := range accounts {
		out[i] = ToAccountResponse(&accounts[i])
	}
	return out
}
