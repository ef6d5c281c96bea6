package pgsql

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/sahakari/coopcore/internal/apperrors"
	"github.com/sahakari/coopcore/internal/core/domain"
	portsrepo "github.com/sahakari/coopcore/internal/core/ports/repositories"
	"github.com/shopspring/decimal"
)

const accountColumns = `account_id, tenant_id, code, name, account_type, is_group, is_active, parent_account_id, bound_teller_id, balance, created_at, created_by, last_updated_at, last_updated_by`

type PgxAccountRepository struct {
	BaseRepository
}

// newPgxAccountRepository creates a new repository for chart-of-accounts data.
func newPgxAccountRepository(pool *pgxpool.Pool) portsrepo.AccountRepositoryFacade {
	return &PgxAccountRepository{BaseRepository: BaseRepository{Pool: pool}}
}

var _ portsrepo.AccountRepositoryFacade = (*PgxAccountRepository)(nil)

func scanAccount(row pgx.Row) (*domain.Account, error) {
	var acc domain.Account
	err := row.Scan(
		&acc.AccountID,
		&acc.TenantID,
		&acc.Code,
		&acc.Name,
		&acc.AccountType,
		&acc.IsGroup,
		&acc.IsActive,
		&acc.ParentAccountID,
		&acc.BoundTellerID,
		&acc.Balance,
		&acc.CreatedAt,
		&acc.CreatedBy,
		&acc.LastUpdatedAt,
		&acc.LastUpdatedBy,
	)
	if err != nil {
		return nil, err
	}
	return &acc, nil
}

func scanAccountRows(rows pgx.Rows) ([]domain.Account, error) {
	defer rows.Close()
	accounts := []domain.Account{}
	for rows.Next() {
		acc, err := scanAccount(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan account row: %w", err)
		}
		accounts = append(accounts, *acc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating account rows: %w", err)
	}
	return accounts, nil
}

// SaveAccount inserts a new account.
func (r *PgxAccountRepository) SaveAccount(ctx context.Context, account domain.Account) error {
	query := `
		INSERT INTO accounts (` + accountColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14);
	`
	_, err := r.q(ctx).Exec(ctx, query,
		account.AccountID,
		account.TenantID,
		account.Code,
		account.Name,
		account.AccountType,
		account.IsGroup,
		account.IsActive,
		account.ParentAccountID,
		account.BoundTellerID,
		account.Balance,
		account.CreatedAt,
		account.CreatedBy,
		account.LastUpdatedAt,
		account.LastUpdatedBy,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" { // Unique violation
			return fmt.Errorf("%w: account code %s already exists", apperrors.ErrDuplicate, account.Code)
		}
		return fmt.Errorf("failed to save account %s: %w", account.AccountID, err)
	}
	return nil
}

// FindAccountByID retrieves an account by its ID.
func (r *PgxAccountRepository) FindAccountByID(ctx context.Context, accountID string) (*domain.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE account_id = $1;`
	acc, err := scanAccount(r.q(ctx).QueryRow(ctx, query, accountID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find account by ID %s: %w", accountID, err)
	}
	return acc, nil
}

// FindAccountByCode retrieves an account by its code within a tenant.
func (r *PgxAccountRepository) FindAccountByCode(ctx context.Context, tenantID, code string) (*domain.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE tenant_id = $1 AND code = $2;`
	acc, err := scanAccount(r.q(ctx).QueryRow(ctx, query, tenantID, code))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find account by code %s: %w", code, err)
	}
	return acc, nil
}

// FindAccountsByIDs retrieves multiple accounts by their IDs.
func (r *PgxAccountRepository) FindAccountsByIDs(ctx context.Context, accountIDs []string) (map[string]domain.Account, error) {
	if len(accountIDs) == 0 {
		return map[string]domain.Account{}, nil
	}

	query := `SELECT ` + accountColumns + ` FROM accounts WHERE account_id = ANY($1);`
	rows, err := r.q(ctx).Query(ctx, query, accountIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to query accounts by IDs: %w", err)
	}
	accounts, err := scanAccountRows(rows)
	if err != nil {
		return nil, err
	}

	accountsMap := make(map[string]domain.Account, len(accounts))
	for _, acc := range accounts {
		accountsMap[acc.AccountID] = acc
	}
	// Missing IDs are simply absent from the map; the caller decides whether
	// that is an error.
	return accountsMap, nil
}

// ListAccounts retrieves all accounts of a tenant ordered by code.
func (r *PgxAccountRepository) ListAccounts(ctx context.Context, tenantID string) ([]domain.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE tenant_id = $1 ORDER BY code;`
	rows, err := r.q(ctx).Query(ctx, query, tenantID)
	if err != nil {
		return nil, fmt.Errorf("failed to query accounts for tenant %s: %w", tenantID, err)
	}
	return scanAccountRows(rows)
}

// FindTellerCashAccounts retrieves the active leaf cash accounts bound to a
// teller.
func (r *PgxAccountRepository) FindTellerCashAccounts(ctx context.Context, tenantID, tellerID string) ([]domain.Account, error) {
	query := `
		SELECT ` + accountColumns + `
		FROM accounts
		WHERE tenant_id = $1 AND bound_teller_id = $2 AND is_group = FALSE AND is_active = TRUE
		ORDER BY code;
	`
	rows, err := r.q(ctx).Query(ctx, query, tenantID, tellerID)
	if err != nil {
		return nil, fmt.Errorf("failed to query cash accounts for teller %s: %w", tellerID, err)
	}
	return scanAccountRows(rows)
}

// ListBoundTellerAccounts retrieves every active leaf account bound to an
// operator.
func (r *PgxAccountRepository) ListBoundTellerAccounts(ctx context.Context, tenantID string) ([]domain.Account, error) {
	query := `
		SELECT ` + accountColumns + `
		FROM accounts
		WHERE tenant_id = $1 AND bound_teller_id IS NOT NULL AND is_group = FALSE AND is_active = TRUE
		ORDER BY code;
	`
	rows, err := r.q(ctx).Query(ctx, query, tenantID)
	if err != nil {
		return nil, fmt.Errorf("failed to query bound teller accounts: %w", err)
	}
	return scanAccountRows(rows)
}

// FindAccountsByIDsForUpdate retrieves accounts by IDs and locks the rows for
// the remainder of the ambient transaction.
func (r *PgxAccountRepository) FindAccountsByIDsForUpdate(ctx context.Context, accountIDs []string) (map[string]domain.Account, error) {
	if len(accountIDs) == 0 {
		return map[string]domain.Account{}, nil
	}

	query := `
		SELECT ` + accountColumns + `
		FROM accounts
		WHERE account_id = ANY($1)
		ORDER BY account_id
		FOR UPDATE;
	`
	rows, err := r.q(ctx).Query(ctx, query, accountIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to query accounts by IDs for update: %w", err)
	}
	accounts, err := scanAccountRows(rows)
	if err != nil {
		return nil, err
	}

	accountsMap := make(map[string]domain.Account, len(accounts))
	for _, acc := range accounts {
		accountsMap[acc.AccountID] = acc
	}

	if len(accountsMap) != len(accountIDs) {
		missing := []string{}
		for _, id := range accountIDs {
			if _, found := accountsMap[id]; !found {
				missing = append(missing, id)
			}
		}
		slog.WarnContext(ctx, "Some accounts requested for update lock were not found", "missing_accounts", missing)
		return nil, fmt.Errorf("%w: could not find or lock all requested accounts, missing: %v", apperrors.ErrNotFound, missing)
	}
	return accountsMap, nil
}

// UpdateAccountBalances applies signed balance deltas. Must run inside the
// transaction that locked the rows.
func (r *PgxAccountRepository) UpdateAccountBalances(ctx context.Context, balanceChanges map[string]decimal.Decimal, actorID string, now time.Time) error {
	if len(balanceChanges) == 0 {
		return nil
	}

	query := `
		UPDATE accounts
		SET balance = COALESCE(balance, 0) + $2, last_updated_at = $3, last_updated_by = $4
		WHERE account_id = $1;
	`

	batch := &pgx.Batch{}
	accountIDs := make([]string, 0, len(balanceChanges))
	for accountID, delta := range balanceChanges {
		if !delta.IsZero() {
			batch.Queue(query, accountID, delta, now, actorID)
			accountIDs = append(accountIDs, accountID)
		}
	}
	if batch.Len() == 0 {
		return nil
	}

	br := r.q(ctx).SendBatch(ctx, batch)
	var batchErr error
	for i := 0; i < batch.Len(); i++ {
		ct, err := br.Exec()
		if err != nil {
			if batchErr == nil {
				batchErr = fmt.Errorf("failed to update balance for account %s: %w", accountIDs[i], err)
			}
		} else if ct.RowsAffected() == 0 && batchErr == nil {
			batchErr = fmt.Errorf("%w: account %s not found during balance update", apperrors.ErrNotFound, accountIDs[i])
		}
	}
	if err := br.Close(); err != nil && batchErr == nil {
		batchErr = fmt.Errorf("failed to close balance update batch: %w", err)
	}
	return batchErr
}

// FindRoleAccount resolves the account mapped to a role for a tenant.
func (r *PgxAccountRepository) FindRoleAccount(ctx context.Context, tenantID string, role domain.AccountRole) (*domain.Account, error) {
	query := `
		SELECT ` + accountColumns + `
		FROM accounts
		WHERE account_id = (
			SELECT account_id FROM ledger_account_roles
			WHERE tenant_id = $1 AND role = $2
		);
	`
	acc, err := scanAccount(r.q(ctx).QueryRow(ctx, query, tenantID, role))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to resolve role account %s: %w", role, err)
	}
	return acc, nil
}

// SaveRoleAccount creates or replaces a role mapping.
func (r *PgxAccountRepository) SaveRoleAccount(ctx context.Context, tenantID string, role domain.AccountRole, accountID, actorID string, now time.Time) error {
	query := `
		INSERT INTO ledger_account_roles (tenant_id, role, account_id, updated_at, updated_by)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (tenant_id, role)
		DO UPDATE SET account_id = EXCLUDED.account_id, updated_at = EXCLUDED.updated_at, updated_by = EXCLUDED.updated_by;
	`
	if _, err := r.q(ctx).Exec(ctx, query, tenantID, role, accountID, now, actorID); err != nil {
		return fmt.Errorf("failed to save role mapping %s: %w", role, err)
	}
	return nil
}
