package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/sahakari/coopcore/internal/apperrors"
	"github.com/sahakari/coopcore/internal/core/domain"
	portsrepo "github.com/sahakari/coopcore/internal/core/ports/repositories"
	portssvc "github.com/sahakari/coopcore/internal/core/ports/services"
	"github.com/sahakari/coopcore/internal/dto"
	"github.com/sahakari/coopcore/internal/middleware"
	"github.com/shopspring/decimal"
)

// accountService maintains the chart of accounts and the per-tenant role
// mapping used to locate the vault, suspense and variance accounts.
type accountService struct {
	accountRepo portsrepo.AccountRepositoryFacade
	auditRepo   portsrepo.AuditRepository
	clock       portssvc.Clock
}

// NewAccountService creates a new AccountService.
func NewAccountService(accountRepo portsrepo.AccountRepositoryFacade, auditRepo portsrepo.AuditRepository, clock portssvc.Clock) portssvc.AccountSvcFacade {
	return &accountService{
		accountRepo: accountRepo,
		auditRepo:   auditRepo,
		clock:       clock,
	}
}

var _ portssvc.AccountSvcFacade = (*accountService)(nil)

// CreateAccount registers a new account after checking code uniqueness and
// parent validity.
func (s *accountService) CreateAccount(ctx context.Context, tenantID string, req dto.CreateAccountRequest, actorID string) (*domain.Account, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	if existing, err := s.accountRepo.FindAccountByCode(ctx, tenantID, req.Code); err == nil && existing != nil {
		return nil, fmt.Errorf("%w: account code %s already exists", apperrors.ErrDuplicate, req.Code)
	} else if err != nil && !errors.Is(err, apperrors.ErrNotFound) {
		return nil, fmt.Errorf("failed to check code uniqueness: %w", err)
	}

	if req.ParentAccountID != nil {
		parent, err := s.accountRepo.FindAccountByID(ctx, *req.ParentAccountID)
		if err != nil {
			return nil, fmt.Errorf("failed to fetch parent account: %w", err)
		}
		if parent.TenantID != tenantID {
			return nil, apperrors.ErrNotFound // Obscure existence
		}
		if !parent.IsGroup {
			return nil, fmt.Errorf("%w: parent account %s is not a group account", apperrors.ErrValidation, parent.Code)
		}
	}

	if req.IsGroup && req.BoundTellerID != nil {
		return nil, fmt.Errorf("%w: a group account cannot be bound to a teller", apperrors.ErrValidation)
	}

	now := s.clock.Now()
	account := domain.Account{
		AccountID:       uuid.NewString(),
		TenantID:        tenantID,
		Code:            req.Code,
		Name:            req.Name,
		AccountType:     req.AccountType,
		IsGroup:         req.IsGroup,
		IsActive:        true,
		ParentAccountID: req.ParentAccountID,
		BoundTellerID:   req.BoundTellerID,
		Balance:         decimal.Zero,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     actorID,
			LastUpdatedAt: now,
			LastUpdatedBy: actorID,
		},
	}

	if err := s.accountRepo.SaveAccount(ctx, account); err != nil {
		logger.Error("Failed to save account", slog.String("error", err.Error()), slog.String("tenant_id", tenantID))
		return nil, fmt.Errorf("failed to save account: %w", err)
	}

	logger.Info("Account created", slog.String("account_id", account.AccountID), slog.String("code", account.Code))
	recordAudit(ctx, s.auditRepo, tenantID, actorID, "account.create", "account", account.AccountID, "code="+account.Code)
	return &account, nil
}

// GetAccountByID retrieves a tenant's account.
func (s *accountService) GetAccountByID(ctx context.Context, tenantID, accountID string) (*domain.Account, error) {
	account, err := s.accountRepo.FindAccountByID(ctx, accountID)
	if err != nil {
		return nil, fmt.Errorf("failed to find account %s: %w", accountID, err)
	}
	if account.TenantID != tenantID {
		return nil, apperrors.ErrNotFound // Obscure existence
	}
	return account, nil
}

// ListAccounts retrieves all accounts of a tenant.
func (s *accountService) ListAccounts(ctx context.Context, tenantID string) ([]domain.Account, error) {
	accounts, err := s.accountRepo.ListAccounts(ctx, tenantID)
	if err != nil {
		return nil, fmt.Errorf("failed to list accounts: %w", err)
	}
	return accounts, nil
}

// SetRoleAccount maps a special-purpose role to an existing leaf account.
// This is the only way role accounts are resolved; nothing falls back to
// matching account codes.
func (s *accountService) SetRoleAccount(ctx context.Context, tenantID string, role domain.AccountRole, accountID, actorID string) error {
	logger := middleware.GetLoggerFromCtx(ctx)

	if !domain.ValidAccountRole(role) {
		return fmt.Errorf("%w: unknown account role %q", apperrors.ErrValidation, role)
	}

	account, err := s.GetAccountByID(ctx, tenantID, accountID)
	if err != nil {
		return err
	}
	if !account.IsPostable() {
		return fmt.Errorf("%w: role accounts must be active leaf accounts", apperrors.ErrValidation)
	}

	if err := s.accountRepo.SaveRoleAccount(ctx, tenantID, role, accountID, actorID, s.clock.Now()); err != nil {
		logger.Error("Failed to save role mapping", slog.String("role", string(role)), slog.String("error", err.Error()))
		return fmt.Errorf("failed to save role mapping: %w", err)
	}

	logger.Info("Role account mapped", slog.String("role", string(role)), slog.String("account_id", accountID))
	recordAudit(ctx, s.auditRepo, tenantID, actorID, "account.map_role", "account", accountID, "role="+string(role))
	return nil
}

// GetRoleAccount resolves the account mapped to a role for a tenant.
func (s *accountService) GetRoleAccount(ctx context.Context, tenantID string, role domain.AccountRole) (*domain.Account, error) {
	account, err := s.accountRepo.FindRoleAccount(ctx, tenantID, role)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, fmt.Errorf("%w: %s", apperrors.ErrRoleAccountNotMapped, role)
		}
		return nil, fmt.Errorf("failed to resolve role account %s: %w", role, err)
	}
	return account, nil
}
