package services_test

import (
	"context"
	"time"

	"github.com/sahakari/coopcore/internal/core/domain"
	portsrepo "github.com/sahakari/coopcore/internal/core/ports/repositories"
	portssvc "github.com/sahakari/coopcore/internal/core/ports/services"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
)

// Shared hand-written mocks for the service test suites. There is no real
// transaction at this level, so the TxManager stub simply runs the unit of
// work against the caller's context.

type stubTxManager struct{}

func (stubTxManager) WithinTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

var _ portsrepo.TxManager = stubTxManager{}

// fixedClock pins "now" so date-guarded transitions are deterministic.
type fixedClock struct {
	now time.Time
}

func (c fixedClock) Now() time.Time { return c.now }

var _ portssvc.Clock = fixedClock{}

// --- Account repository mock ---

type MockAccountRepository struct {
	mock.Mock
}

var _ portsrepo.AccountRepositoryFacade = (*MockAccountRepository)(nil)

func (m *MockAccountRepository) FindAccountByID(ctx context.Context, accountID string) (*domain.Account, error) {
	args := m.Called(ctx, accountID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Account), args.Error(1)
}

func (m *MockAccountRepository) FindAccountByCode(ctx context.Context, tenantID, code string) (*domain.Account, error) {
	args := m.Called(ctx, tenantID, code)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Account), args.Error(1)
}

func (m *MockAccountRepository) FindAccountsByIDs(ctx context.Context, accountIDs []string) (map[string]domain.Account, error) {
	args := m.Called(ctx, accountIDs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string]domain.Account), args.Error(1)
}

func (m *MockAccountRepository) ListAccounts(ctx context.Context, tenantID string) ([]domain.Account, error) {
	args := m.Called(ctx, tenantID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Account), args.Error(1)
}

func (m *MockAccountRepository) FindTellerCashAccounts(ctx context.Context, tenantID, tellerID string) ([]domain.Account, error) {
	args := m.Called(ctx, tenantID, tellerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Account), args.Error(1)
}

func (m *MockAccountRepository) ListBoundTellerAccounts(ctx context.Context, tenantID string) ([]domain.Account, error) {
	args := m.Called(ctx, tenantID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Account), args.Error(1)
}

func (m *MockAccountRepository) SaveAccount(ctx context.Context, account domain.Account) error {
	args := m.Called(ctx, account)
	return args.Error(0)
}

func (m *MockAccountRepository) FindAccountsByIDsForUpdate(ctx context.Context, accountIDs []string) (map[string]domain.Account, error) {
	args := m.Called(ctx, accountIDs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string]domain.Account), args.Error(1)
}

func (m *MockAccountRepository) UpdateAccountBalances(ctx context.Context, balanceChanges map[string]decimal.Decimal, actorID string, now time.Time) error {
	args := m.Called(ctx, balanceChanges, actorID, now)
	return args.Error(0)
}

func (m *MockAccountRepository) FindRoleAccount(ctx context.Context, tenantID string, role domain.AccountRole) (*domain.Account, error) {
	args := m.Called(ctx, tenantID, role)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Account), args.Error(1)
}

func (m *MockAccountRepository) SaveRoleAccount(ctx context.Context, tenantID string, role domain.AccountRole, accountID, actorID string, now time.Time) error {
	args := m.Called(ctx, tenantID, role, accountID, actorID, now)
	return args.Error(0)
}

// --- Ledger repository mock ---

type MockLedgerRepository struct {
	mock.Mock
}

var _ portsrepo.LedgerRepositoryFacade = (*MockLedgerRepository)(nil)

func (m *MockLedgerRepository) FindEntryByID(ctx context.Context, entryID string) (*domain.JournalEntry, error) {
	args := m.Called(ctx, entryID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.JournalEntry), args.Error(1)
}

func (m *MockLedgerRepository) FindLinesByEntryID(ctx context.Context, entryID string) ([]domain.LedgerLine, error) {
	args := m.Called(ctx, entryID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.LedgerLine), args.Error(1)
}

func (m *MockLedgerRepository) ListEntriesByDate(ctx context.Context, tenantID string, date time.Time) ([]domain.JournalEntry, error) {
	args := m.Called(ctx, tenantID, date)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.JournalEntry), args.Error(1)
}

func (m *MockLedgerRepository) CountEntriesForDate(ctx context.Context, tenantID string, date time.Time) (int, error) {
	args := m.Called(ctx, tenantID, date)
	return args.Int(0), args.Error(1)
}

func (m *MockLedgerRepository) CountEntriesForYear(ctx context.Context, tenantID string, year int) (int64, error) {
	args := m.Called(ctx, tenantID, year)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockLedgerRepository) SaveEntry(ctx context.Context, entry domain.JournalEntry, lines []domain.LedgerLine, balanceChanges map[string]decimal.Decimal) error {
	args := m.Called(ctx, entry, lines, balanceChanges)
	return args.Error(0)
}

func (m *MockLedgerRepository) UpdateEntryStatusAndLinks(ctx context.Context, entryID string, status domain.EntryStatus, reversingEntryID *string, actorID string, at time.Time) error {
	args := m.Called(ctx, entryID, status, reversingEntryID, actorID, at)
	return args.Error(0)
}

// --- Day book repository mock ---

type MockDayBookRepository struct {
	mock.Mock
}

var _ portsrepo.DayBookRepositoryFacade = (*MockDayBookRepository)(nil)

func (m *MockDayBookRepository) FindDayBookByID(ctx context.Context, dayBookID string) (*domain.DayBook, error) {
	args := m.Called(ctx, dayBookID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.DayBook), args.Error(1)
}

func (m *MockDayBookRepository) FindDayBookByDate(ctx context.Context, tenantID string, date time.Time) (*domain.DayBook, error) {
	args := m.Called(ctx, tenantID, date)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.DayBook), args.Error(1)
}

func (m *MockDayBookRepository) FindLatestDayBook(ctx context.Context, tenantID string) (*domain.DayBook, error) {
	args := m.Called(ctx, tenantID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.DayBook), args.Error(1)
}

func (m *MockDayBookRepository) FindActiveDayBook(ctx context.Context, tenantID string) (*domain.DayBook, error) {
	args := m.Called(ctx, tenantID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.DayBook), args.Error(1)
}

func (m *MockDayBookRepository) CreateDayBook(ctx context.Context, dayBook domain.DayBook) error {
	args := m.Called(ctx, dayBook)
	return args.Error(0)
}

func (m *MockDayBookRepository) TransitionDayBook(ctx context.Context, t portsrepo.DayBookTransition) (*domain.DayBook, error) {
	args := m.Called(ctx, t)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.DayBook), args.Error(1)
}

// --- Settlement repository mock ---

type MockSettlementRepository struct {
	mock.Mock
}

var _ portsrepo.SettlementRepositoryFacade = (*MockSettlementRepository)(nil)

func (m *MockSettlementRepository) FindSettlementByID(ctx context.Context, settlementID string) (*domain.TellerSettlement, error) {
	args := m.Called(ctx, settlementID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.TellerSettlement), args.Error(1)
}

func (m *MockSettlementRepository) FindSettlementByRef(ctx context.Context, tenantID, settlementRef string) (*domain.TellerSettlement, error) {
	args := m.Called(ctx, tenantID, settlementRef)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.TellerSettlement), args.Error(1)
}

func (m *MockSettlementRepository) ListSettlementsByDayBook(ctx context.Context, dayBookID string) ([]domain.TellerSettlement, error) {
	args := m.Called(ctx, dayBookID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.TellerSettlement), args.Error(1)
}

func (m *MockSettlementRepository) SaveSettlement(ctx context.Context, settlement domain.TellerSettlement) error {
	args := m.Called(ctx, settlement)
	return args.Error(0)
}

func (m *MockSettlementRepository) MarkSettlementReverted(ctx context.Context, settlementID, reason, actorID string, at time.Time) error {
	args := m.Called(ctx, settlementID, reason, actorID, at)
	return args.Error(0)
}

func (m *MockSettlementRepository) MarkSettlementsForceClosed(ctx context.Context, dayBookID, actorID string, at time.Time) error {
	args := m.Called(ctx, dayBookID, actorID, at)
	return args.Error(0)
}

// --- Audit repository mock ---

type MockAuditRepository struct {
	mock.Mock
}

var _ portsrepo.AuditRepository = (*MockAuditRepository)(nil)

func (m *MockAuditRepository) SaveAuditRecord(ctx context.Context, record domain.AuditRecord) error {
	args := m.Called(ctx, record)
	return args.Error(0)
}

// --- Posting service mock ---

type MockPostingService struct {
	mock.Mock
}

var _ portssvc.PostingSvcFacade = (*MockPostingService)(nil)

func (m *MockPostingService) Post(ctx context.Context, tenantID, description string, lines []domain.LedgerLine, effectiveDate time.Time, actorID string) (*domain.JournalEntry, error) {
	args := m.Called(ctx, tenantID, description, lines, effectiveDate, actorID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.JournalEntry), args.Error(1)
}

func (m *MockPostingService) ReverseEntry(ctx context.Context, tenantID, entryID, actorID string) (*domain.JournalEntry, error) {
	args := m.Called(ctx, tenantID, entryID, actorID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.JournalEntry), args.Error(1)
}

func (m *MockPostingService) GetEntry(ctx context.Context, tenantID, entryID string) (*domain.JournalEntry, error) {
	args := m.Called(ctx, tenantID, entryID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.JournalEntry), args.Error(1)
}

func (m *MockPostingService) ListEntriesByDate(ctx context.Context, tenantID string, date time.Time) ([]domain.JournalEntry, error) {
	args := m.Called(ctx, tenantID, date)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.JournalEntry), args.Error(1)
}
