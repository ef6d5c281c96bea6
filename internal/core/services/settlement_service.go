package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/sahakari/coopcore/internal/apperrors"
	"github.com/sahakari/coopcore/internal/core/domain"
	"github.com/sahakari/coopcore/internal/core/events"
	portsrepo "github.com/sahakari/coopcore/internal/core/ports/repositories"
	portssvc "github.com/sahakari/coopcore/internal/core/ports/services"
	"github.com/sahakari/coopcore/internal/dto"
	"github.com/sahakari/coopcore/internal/middleware"
	"github.com/sahakari/coopcore/internal/utils/accounting"
	"github.com/shopspring/decimal"
)

// VarianceThresholds bound the cash variance a settlement may carry before it
// needs a supervisor. Pct is a percentage of system cash (1 means 1%).
type VarianceThresholds struct {
	Abs decimal.Decimal
	Pct decimal.Decimal
}

// settlementService reconciles a teller's counted cash against the ledger
// balance of their cash account. All money movement is delegated to the
// posting engine; this service only decides which entries to book.
type settlementService struct {
	txManager      portsrepo.TxManager
	settlementRepo portsrepo.SettlementRepositoryFacade
	accountRepo    portsrepo.AccountRepositoryFacade
	dayBookRepo    portsrepo.DayBookRepositoryFacade
	auditRepo      portsrepo.AuditRepository
	posting        portssvc.PostingSvcFacade
	thresholds     VarianceThresholds
	clock          portssvc.Clock
}

// NewSettlementService creates a new SettlementService.
func NewSettlementService(
	txManager portsrepo.TxManager,
	settlementRepo portsrepo.SettlementRepositoryFacade,
	accountRepo portsrepo.AccountRepositoryFacade,
	dayBookRepo portsrepo.DayBookRepositoryFacade,
	auditRepo portsrepo.AuditRepository,
	posting portssvc.PostingSvcFacade,
	thresholds VarianceThresholds,
	clock portssvc.Clock,
) portssvc.SettlementSvcFacade {
	return &settlementService{
		txManager:      txManager,
		settlementRepo: settlementRepo,
		accountRepo:    accountRepo,
		dayBookRepo:    dayBookRepo,
		auditRepo:      auditRepo,
		posting:        posting,
		thresholds:     thresholds,
		clock:          clock,
	}
}

var _ portssvc.SettlementSvcFacade = (*settlementService)(nil)

// resolveTellerAccount finds the single cash account bound to a teller.
func (s *settlementService) resolveTellerAccount(ctx context.Context, tenantID, tellerID string) (*domain.Account, error) {
	accounts, err := s.accountRepo.FindTellerCashAccounts(ctx, tenantID, tellerID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch teller cash accounts: %w", err)
	}
	switch len(accounts) {
	case 0:
		return nil, fmt.Errorf("%w: teller %s", apperrors.ErrTellerAccountNotMapped, tellerID)
	case 1:
		return &accounts[0], nil
	default:
		return nil, fmt.Errorf("%w: teller %s is bound to %d cash accounts, expected exactly one", apperrors.ErrConflict, tellerID, len(accounts))
	}
}

// validateSettleRequest runs the checks that need no database state.
func validateSettleRequest(req dto.SettleRequest) error {
	if req.PhysicalCash.IsNegative() {
		return fmt.Errorf("%w: physical cash cannot be negative", apperrors.ErrValidation)
	}
	if len(req.Denominations) > 0 {
		counted := domain.SumDenominations(req.ToDomainDenominations())
		if counted.Sub(req.PhysicalCash).Abs().GreaterThan(accounting.BalanceEpsilon) {
			return fmt.Errorf("%w: breakdown totals %s, declared %s",
				apperrors.ErrDenominationMismatch, counted.String(), req.PhysicalCash.String())
		}
	}
	return nil
}

// requiresApproval applies the variance thresholds. A zero difference never
// needs approval.
func (s *settlementService) requiresApproval(difference, systemCash decimal.Decimal) bool {
	absDiff := difference.Abs()
	if absDiff.IsZero() {
		return false
	}
	if absDiff.GreaterThan(s.thresholds.Abs) {
		return true
	}
	if systemCash.IsPositive() {
		pct := absDiff.Div(systemCash).Mul(decimal.NewFromInt(100))
		if pct.GreaterThan(s.thresholds.Pct) {
			return true
		}
	}
	return false
}

// proposedEntry pairs an entry description with its lines before posting.
type proposedEntry struct {
	description string
	lines       []domain.LedgerLine
}

// buildSettlementEntries composes the variance entry (shortage to staff
// receivable, overage to sundry income) and the vault sweep of the full
// counted amount. Either may be absent when its amount is zero. Role accounts
// are resolved only for the entries actually needed.
func (s *settlementService) buildSettlementEntries(ctx context.Context, tenantID, tellerID string, tellerAccount *domain.Account, physicalCash, difference decimal.Decimal) (variance, vault *proposedEntry, err error) {
	if difference.IsNegative() {
		shortage := difference.Abs()
		receivable, err := s.roleAccount(ctx, tenantID, domain.RoleStaffReceivable)
		if err != nil {
			return nil, nil, err
		}
		variance = &proposedEntry{
			description: fmt.Sprintf("Cash shortage on settlement of teller %s", tellerID),
			lines: []domain.LedgerLine{
				{AccountID: receivable.AccountID, Amount: shortage, Side: domain.Debit},
				{AccountID: tellerAccount.AccountID, Amount: shortage, Side: domain.Credit},
			},
		}
	} else if difference.IsPositive() {
		income, err := s.roleAccount(ctx, tenantID, domain.RoleSundryIncome)
		if err != nil {
			return nil, nil, err
		}
		variance = &proposedEntry{
			description: fmt.Sprintf("Cash overage on settlement of teller %s", tellerID),
			lines: []domain.LedgerLine{
				{AccountID: tellerAccount.AccountID, Amount: difference, Side: domain.Debit},
				{AccountID: income.AccountID, Amount: difference, Side: domain.Credit},
			},
		}
	}

	if physicalCash.IsPositive() {
		vaultAccount, err := s.roleAccount(ctx, tenantID, domain.RoleVault)
		if err != nil {
			return nil, nil, err
		}
		vault = &proposedEntry{
			description: fmt.Sprintf("Vault sweep of counted cash from teller %s", tellerID),
			lines: []domain.LedgerLine{
				{AccountID: vaultAccount.AccountID, Amount: physicalCash, Side: domain.Debit},
				{AccountID: tellerAccount.AccountID, Amount: physicalCash, Side: domain.Credit},
			},
		}
	}
	return variance, vault, nil
}

func (s *settlementService) roleAccount(ctx context.Context, tenantID string, role domain.AccountRole) (*domain.Account, error) {
	account, err := s.accountRepo.FindRoleAccount(ctx, tenantID, role)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, fmt.Errorf("%w: %s", apperrors.ErrRoleAccountNotMapped, role)
		}
		return nil, fmt.Errorf("failed to resolve role account %s: %w", role, err)
	}
	return account, nil
}

// Preview computes the variance and the entries a settlement would book
// without persisting anything. The system balance is read without a lock, so
// the committed settlement may differ if the teller transacts in between.
func (s *settlementService) Preview(ctx context.Context, tenantID string, req dto.SettleRequest) (*dto.SettlementPreviewResponse, error) {
	if err := validateSettleRequest(req); err != nil {
		return nil, err
	}

	tellerAccount, err := s.resolveTellerAccount(ctx, tenantID, req.TellerID)
	if err != nil {
		return nil, err
	}

	systemCash := tellerAccount.Balance
	difference := req.PhysicalCash.Sub(systemCash)

	variance, vault, err := s.buildSettlementEntries(ctx, tenantID, req.TellerID, tellerAccount, req.PhysicalCash, difference)
	if err != nil {
		return nil, err
	}

	proposed := make([]dto.ProposedEntryResponse, 0, 2)
	for _, pe := range []*proposedEntry{variance, vault} {
		if pe == nil {
			continue
		}
		proposed = append(proposed, s.toProposedResponse(ctx, *pe))
	}

	return &dto.SettlementPreviewResponse{
		TellerID:         req.TellerID,
		PhysicalCash:     req.PhysicalCash,
		SystemCash:       systemCash,
		Difference:       difference,
		RequiresApproval: s.requiresApproval(difference, systemCash),
		ProposedEntries:  proposed,
	}, nil
}

func (s *settlementService) toProposedResponse(ctx context.Context, pe proposedEntry) dto.ProposedEntryResponse {
	lines := make([]dto.ProposedLineResponse, len(pe.lines))
	for i, line := range pe.lines {
		code := ""
		if acc, err := s.accountRepo.FindAccountByID(ctx, line.AccountID); err == nil {
			code = acc.Code
		}
		lines[i] = dto.ProposedLineResponse{
			AccountID:   line.AccountID,
			AccountCode: code,
			Side:        line.Side,
			Amount:      line.Amount,
		}
	}
	return dto.ProposedEntryResponse{Description: pe.description, Lines: lines}
}

// Settle books the variance and vault-sweep entries and records the
// settlement, all in one transaction. The teller's cash account row is locked
// before the system balance is read so concurrent postings cannot slip
// between the read and the sweep.
func (s *settlementService) Settle(ctx context.Context, tenantID string, req dto.SettleRequest, actorID string) (*domain.TellerSettlement, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	if err := validateSettleRequest(req); err != nil {
		return nil, err
	}

	var (
		settlement *domain.TellerSettlement
		replayed   bool
	)
	err := s.txManager.WithinTx(ctx, func(txCtx context.Context) error {
		if req.IdempotencyKey != nil {
			existing, err := s.settlementRepo.FindSettlementByRef(txCtx, tenantID, *req.IdempotencyKey)
			if err == nil {
				settlement = existing
				replayed = true
				return nil
			}
			if !errors.Is(err, apperrors.ErrNotFound) {
				return fmt.Errorf("failed to check settlement ref: %w", err)
			}
		}

		dayBook, err := s.dayBookRepo.FindActiveDayBook(txCtx, tenantID)
		if err != nil {
			if errors.Is(err, apperrors.ErrNotFound) {
				return apperrors.ErrNoActiveDay
			}
			return fmt.Errorf("failed to fetch active day book: %w", err)
		}
		if dayBook.Status != domain.DayOpen {
			return fmt.Errorf("%w: day is %s", apperrors.ErrDayNotOpen, dayBook.Status)
		}

		tellerAccount, err := s.resolveTellerAccount(txCtx, tenantID, req.TellerID)
		if err != nil {
			return err
		}

		locked, err := s.accountRepo.FindAccountsByIDsForUpdate(txCtx, []string{tellerAccount.AccountID})
		if err != nil {
			return fmt.Errorf("failed to lock teller cash account: %w", err)
		}
		lockedAccount, found := locked[tellerAccount.AccountID]
		if !found {
			return fmt.Errorf("%w: account %s", apperrors.ErrNotFound, tellerAccount.AccountID)
		}

		systemCash := lockedAccount.Balance
		difference := req.PhysicalCash.Sub(systemCash)

		variance, vault, err := s.buildSettlementEntries(txCtx, tenantID, req.TellerID, tellerAccount, req.PhysicalCash, difference)
		if err != nil {
			return err
		}

		now := s.clock.Now()
		var varianceEntryID, vaultEntryID *string
		if variance != nil {
			entry, err := s.posting.Post(txCtx, tenantID, variance.description, variance.lines, dayBook.Date, actorID)
			if err != nil {
				return fmt.Errorf("failed to post variance entry: %w", err)
			}
			varianceEntryID = &entry.EntryID
		}
		if vault != nil {
			entry, err := s.posting.Post(txCtx, tenantID, vault.description, vault.lines, dayBook.Date, actorID)
			if err != nil {
				return fmt.Errorf("failed to post vault sweep entry: %w", err)
			}
			vaultEntryID = &entry.EntryID
		}

		status := domain.SettlementAutoApproved
		if s.requiresApproval(difference, systemCash) {
			status = domain.SettlementRequiresApproval
		}

		ref := uuid.NewString()
		if req.IdempotencyKey != nil {
			ref = *req.IdempotencyKey
		}

		record := domain.TellerSettlement{
			SettlementID:    uuid.NewString(),
			DayBookID:       dayBook.DayBookID,
			TenantID:        tenantID,
			TellerID:        req.TellerID,
			PhysicalCash:    req.PhysicalCash,
			SystemCash:      systemCash,
			Difference:      difference,
			Status:          status,
			SettlementRef:   ref,
			AttachmentRef:   req.AttachmentRef,
			Denominations:   req.ToDomainDenominations(),
			VarianceEntryID: varianceEntryID,
			VaultEntryID:    vaultEntryID,
			AuditFields: domain.AuditFields{
				CreatedAt:     now,
				CreatedBy:     actorID,
				LastUpdatedAt: now,
				LastUpdatedBy: actorID,
			},
		}
		if err := s.settlementRepo.SaveSettlement(txCtx, record); err != nil {
			return fmt.Errorf("failed to save settlement: %w", err)
		}

		events.Enqueue(txCtx, domain.SettlementRecordedEvent{
			TenantID:     tenantID,
			SettlementID: record.SettlementID,
			TellerID:     record.TellerID,
			PhysicalCash: record.PhysicalCash,
			SystemCash:   record.SystemCash,
			Difference:   record.Difference,
			Status:       record.Status,
		})

		settlement = &record
		return nil
	})
	if err != nil {
		return nil, err
	}

	if replayed {
		logger.Info("Settlement replayed by idempotency key", slog.String("settlement_id", settlement.SettlementID))
		return settlement, nil
	}

	logger.Info("Teller settled",
		slog.String("settlement_id", settlement.SettlementID),
		slog.String("teller_id", settlement.TellerID),
		slog.String("difference", settlement.Difference.String()),
		slog.String("status", string(settlement.Status)),
	)
	recordAudit(ctx, s.auditRepo, tenantID, actorID, "settlement.record", "settlement", settlement.SettlementID,
		fmt.Sprintf("teller=%s difference=%s", settlement.TellerID, settlement.Difference.String()))
	return settlement, nil
}

// Unsettle reverses the settlement's entries and marks it REVERTED. Refused
// once the day has closed or the settlement has been formally approved.
func (s *settlementService) Unsettle(ctx context.Context, tenantID, settlementID, reason, actorID string) (*domain.TellerSettlement, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	if reason == "" {
		return nil, fmt.Errorf("%w: a revert reason is required", apperrors.ErrValidation)
	}

	var settlement *domain.TellerSettlement
	err := s.txManager.WithinTx(ctx, func(txCtx context.Context) error {
		found, err := s.settlementRepo.FindSettlementByID(txCtx, settlementID)
		if err != nil {
			return fmt.Errorf("failed to find settlement %s: %w", settlementID, err)
		}
		if found.TenantID != tenantID {
			return apperrors.ErrNotFound // Obscure existence
		}
		if found.Status == domain.SettlementReverted {
			return fmt.Errorf("%w: settlement %s", apperrors.ErrAlreadyReverted, settlementID)
		}
		if found.IsApproved() {
			return fmt.Errorf("%w: settlement %s", apperrors.ErrAlreadyApproved, settlementID)
		}

		dayBook, err := s.dayBookRepo.FindDayBookByID(txCtx, found.DayBookID)
		if err != nil {
			return fmt.Errorf("failed to fetch day book %s: %w", found.DayBookID, err)
		}
		if dayBook.Status != domain.DayOpen {
			return fmt.Errorf("%w: day is %s", apperrors.ErrDayNotOpen, dayBook.Status)
		}

		for _, entryID := range []*string{found.VarianceEntryID, found.VaultEntryID} {
			if entryID == nil {
				continue
			}
			if _, err := s.posting.ReverseEntry(txCtx, tenantID, *entryID, actorID); err != nil {
				return fmt.Errorf("failed to reverse settlement entry %s: %w", *entryID, err)
			}
		}

		now := s.clock.Now()
		if err := s.settlementRepo.MarkSettlementReverted(txCtx, settlementID, reason, actorID, now); err != nil {
			return fmt.Errorf("failed to mark settlement reverted: %w", err)
		}

		events.Enqueue(txCtx, domain.SettlementRevertedEvent{
			TenantID:     tenantID,
			SettlementID: settlementID,
			TellerID:     found.TellerID,
			Reason:       reason,
		})

		found.Status = domain.SettlementReverted
		found.RevertReason = &reason
		found.LastUpdatedAt = now
		found.LastUpdatedBy = actorID
		settlement = found
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.Info("Settlement reverted", slog.String("settlement_id", settlementID), slog.String("reason", reason))
	recordAudit(ctx, s.auditRepo, tenantID, actorID, "settlement.revert", "settlement", settlementID, "reason="+reason)
	return settlement, nil
}

// ListForDayBook returns the settlements recorded against a day book.
func (s *settlementService) ListForDayBook(ctx context.Context, tenantID, dayBookID string) ([]domain.TellerSettlement, error) {
	dayBook, err := s.dayBookRepo.FindDayBookByID(ctx, dayBookID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch day book %s: %w", dayBookID, err)
	}
	if dayBook.TenantID != tenantID {
		return nil, apperrors.ErrNotFound // Obscure existence
	}
	return s.settlementRepo.ListSettlementsByDayBook(ctx, dayBookID)
}
