package services_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/sahakari/coopcore/internal/apperrors"
	"github.com/sahakari/coopcore/internal/core/domain"
	portsrepo "github.com/sahakari/coopcore/internal/core/ports/repositories"
	portssvc "github.com/sahakari/coopcore/internal/core/ports/services"
	"github.com/sahakari/coopcore/internal/core/services"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
)

type DayCloseServiceTestSuite struct {
	suite.Suite
	mockDayBookRepo    *MockDayBookRepository
	mockAccountRepo    *MockAccountRepository
	mockLedgerRepo     *MockLedgerRepository
	mockSettlementRepo *MockSettlementRepository
	mockPosting        *MockPostingService
	service            portssvc.DayCloseSvcFacade
	now                time.Time
	today              time.Time
	tenantID           string
	actorID            string
	openDay            *domain.DayBook
	eodDay             *domain.DayBook
	closedDay          *domain.DayBook
	vaultAccount       domain.Account
	suspense           domain.Account
}

func (suite *DayCloseServiceTestSuite) SetupTest() {
	suite.mockDayBookRepo = new(MockDayBookRepository)
	suite.mockAccountRepo = new(MockAccountRepository)
	suite.mockLedgerRepo = new(MockLedgerRepository)
	suite.mockSettlementRepo = new(MockSettlementRepository)
	suite.mockPosting = new(MockPostingService)
	suite.now = time.Date(2025, 6, 17, 18, 0, 0, 0, time.UTC)
	suite.today = time.Date(2025, 6, 17, 0, 0, 0, 0, time.UTC)

	suite.service = services.NewDayCloseService(
		stubTxManager{},
		suite.mockDayBookRepo,
		suite.mockAccountRepo,
		suite.mockLedgerRepo,
		suite.mockSettlementRepo,
		nil,
		suite.mockPosting,
		fixedClock{now: suite.now},
	)

	suite.tenantID = uuid.NewString()
	suite.actorID = uuid.NewString()

	suite.openDay = &domain.DayBook{
		DayBookID: uuid.NewString(),
		TenantID:  suite.tenantID,
		Date:      suite.today,
		Status:    domain.DayOpen,
		OpenedBy:  uuid.NewString(),
		Version:   1,
	}
	eod := *suite.openDay
	eod.Status = domain.DayEODInProgress
	eod.Version = 2
	suite.eodDay = &eod

	closed := eod
	closed.Status = domain.DayClosed
	closed.Version = 3
	closed.ClosingCash = decimal.NewFromInt(75000)
	closed.TransactionsCount = 14
	suite.closedDay = &closed

	suite.vaultAccount = domain.Account{
		AccountID:   uuid.NewString(),
		TenantID:    suite.tenantID,
		Code:        "1-10-01-001",
		AccountType: domain.Asset,
		IsActive:    true,
		Balance:     decimal.NewFromInt(75000),
	}
	suite.suspense = domain.Account{
		AccountID:   uuid.NewString(),
		TenantID:    suite.tenantID,
		Code:        "9999-EOD-SUSPENSE",
		AccountType: domain.Liability,
		IsActive:    true,
	}
}

func (suite *DayCloseServiceTestSuite) tellerAccount(balance int64) domain.Account {
	tellerID := uuid.NewString()
	return domain.Account{
		AccountID:     uuid.NewString(),
		TenantID:      suite.tenantID,
		Code:          "1-10-02-001",
		Name:          "Teller till",
		AccountType:   domain.Asset,
		IsActive:      true,
		BoundTellerID: &tellerID,
		Balance:       decimal.NewFromInt(balance),
	}
}

func (suite *DayCloseServiceTestSuite) expectBeginClose() {
	suite.mockDayBookRepo.On("FindActiveDayBook", mock.Anything, suite.tenantID).Return(suite.openDay, nil).Once()
	suite.mockDayBookRepo.On("TransitionDayBook", mock.Anything, mock.MatchedBy(func(t portsrepo.DayBookTransition) bool {
		return t.DayBookID == suite.openDay.DayBookID &&
			t.FromStatus == domain.DayOpen &&
			t.ToStatus == domain.DayEODInProgress &&
			t.ExpectedVersion == 1
	})).Return(suite.eodDay, nil).Once()
}

func (suite *DayCloseServiceTestSuite) expectFinishClose(forced bool) {
	suite.mockAccountRepo.On("FindRoleAccount", mock.Anything, suite.tenantID, domain.RoleVault).Return(&suite.vaultAccount, nil).Once()
	suite.mockLedgerRepo.On("CountEntriesForDate", mock.Anything, suite.tenantID, suite.today).Return(14, nil).Once()
	suite.mockDayBookRepo.On("TransitionDayBook", mock.Anything, mock.MatchedBy(func(t portsrepo.DayBookTransition) bool {
		return t.FromStatus == domain.DayEODInProgress &&
			t.ToStatus == domain.DayClosed &&
			t.ExpectedVersion == 2 &&
			t.ClosingCash != nil && t.ClosingCash.Equal(decimal.NewFromInt(75000)) &&
			t.TransactionsCount != nil && *t.TransactionsCount == 14 &&
			t.ForceClosed != nil && *t.ForceClosed == forced
	})).Return(suite.closedDay, nil).Once()
}

func (suite *DayCloseServiceTestSuite) TestCloseDay_Success() {
	suite.expectBeginClose()
	suite.mockAccountRepo.On("ListBoundTellerAccounts", mock.Anything, suite.tenantID).
		Return([]domain.Account{suite.tellerAccount(0)}, nil).Once()
	suite.expectFinishClose(false)

	closed, err := suite.service.CloseDay(context.Background(), suite.tenantID, suite.actorID)

	suite.Require().NoError(err)
	suite.Equal(domain.DayClosed, closed.Status)
	suite.True(closed.ClosingCash.Equal(decimal.NewFromInt(75000)))
	suite.Equal(14, closed.TransactionsCount)
	suite.mockDayBookRepo.AssertExpectations(suite.T())
}

func (suite *DayCloseServiceTestSuite) TestCloseDay_PendingSettlements() {
	unsettled := suite.tellerAccount(1200)
	suite.expectBeginClose()
	suite.mockAccountRepo.On("ListBoundTellerAccounts", mock.Anything, suite.tenantID).
		Return([]domain.Account{unsettled, suite.tellerAccount(0)}, nil).Once()

	closed, err := suite.service.CloseDay(context.Background(), suite.tenantID, suite.actorID)

	suite.Require().Error(err)
	suite.Nil(closed)

	var pending *apperrors.PendingSettlementError
	suite.Require().ErrorAs(err, &pending)
	suite.Require().Len(pending.Accounts, 1)
	suite.Equal(unsettled.AccountID, pending.Accounts[0].AccountID)
	suite.True(pending.Accounts[0].Balance.Equal(decimal.NewFromInt(1200)))
	suite.mockLedgerRepo.AssertNotCalled(suite.T(), "CountEntriesForDate", mock.Anything, mock.Anything, mock.Anything)
}

func (suite *DayCloseServiceTestSuite) TestCloseDay_NoActiveDay() {
	suite.mockDayBookRepo.On("FindActiveDayBook", mock.Anything, suite.tenantID).Return(nil, apperrors.ErrNotFound).Once()

	_, err := suite.service.CloseDay(context.Background(), suite.tenantID, suite.actorID)

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrNoActiveDay)
}

func (suite *DayCloseServiceTestSuite) TestCloseDay_AlreadyClosing() {
	suite.mockDayBookRepo.On("FindActiveDayBook", mock.Anything, suite.tenantID).Return(suite.eodDay, nil).Once()

	_, err := suite.service.CloseDay(context.Background(), suite.tenantID, suite.actorID)

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrConcurrentClose)
}

func (suite *DayCloseServiceTestSuite) TestCloseDay_LostRaceToAnotherClose() {
	suite.mockDayBookRepo.On("FindActiveDayBook", mock.Anything, suite.tenantID).Return(suite.openDay, nil).Once()
	suite.mockDayBookRepo.On("TransitionDayBook", mock.Anything, mock.Anything).Return(nil, apperrors.ErrVersionConflict).Once()
	suite.mockDayBookRepo.On("FindDayBookByID", mock.Anything, suite.openDay.DayBookID).Return(suite.closedDay, nil).Once()

	_, err := suite.service.CloseDay(context.Background(), suite.tenantID, suite.actorID)

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrAlreadyClosed)
}

func (suite *DayCloseServiceTestSuite) TestCloseDay_RaceStillInProgress() {
	suite.mockDayBookRepo.On("FindActiveDayBook", mock.Anything, suite.tenantID).Return(suite.openDay, nil).Once()
	suite.mockDayBookRepo.On("TransitionDayBook", mock.Anything, mock.Anything).Return(nil, apperrors.ErrVersionConflict).Once()
	suite.mockDayBookRepo.On("FindDayBookByID", mock.Anything, suite.openDay.DayBookID).Return(suite.eodDay, nil).Once()

	_, err := suite.service.CloseDay(context.Background(), suite.tenantID, suite.actorID)

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrConcurrentClose)
}

func (suite *DayCloseServiceTestSuite) TestForceCloseDay_SweepsBothSignsToSuspense() {
	over := suite.tellerAccount(300)
	short := suite.tellerAccount(-80)

	suite.expectBeginClose()
	suite.mockAccountRepo.On("ListBoundTellerAccounts", mock.Anything, suite.tenantID).
		Return([]domain.Account{over, short}, nil).Once()
	suite.mockAccountRepo.On("FindRoleAccount", mock.Anything, suite.tenantID, domain.RoleSuspense).Return(&suite.suspense, nil).Twice()

	suite.mockPosting.On("Post", mock.Anything, suite.tenantID, mock.Anything, mock.MatchedBy(func(lines []domain.LedgerLine) bool {
		// Positive till balance: debit suspense, credit the teller account.
		return len(lines) == 2 &&
			lines[0].AccountID == suite.suspense.AccountID && lines[0].Side == domain.Debit && lines[0].Amount.Equal(decimal.NewFromInt(300)) &&
			lines[1].AccountID == over.AccountID && lines[1].Side == domain.Credit
	}), suite.today, suite.actorID).Return(&domain.JournalEntry{EntryID: uuid.NewString()}, nil).Once()
	suite.mockPosting.On("Post", mock.Anything, suite.tenantID, mock.Anything, mock.MatchedBy(func(lines []domain.LedgerLine) bool {
		// Negative till balance is funded from suspense.
		return len(lines) == 2 &&
			lines[0].AccountID == short.AccountID && lines[0].Side == domain.Debit && lines[0].Amount.Equal(decimal.NewFromInt(80)) &&
			lines[1].AccountID == suite.suspense.AccountID && lines[1].Side == domain.Credit
	}), suite.today, suite.actorID).Return(&domain.JournalEntry{EntryID: uuid.NewString()}, nil).Once()

	suite.mockSettlementRepo.On("MarkSettlementsForceClosed", mock.Anything, suite.openDay.DayBookID, suite.actorID, suite.now).Return(nil).Once()
	suite.expectFinishClose(true)

	closed, err := suite.service.ForceCloseDay(context.Background(), suite.tenantID, suite.actorID, "power outage", "branch-manager")

	suite.Require().NoError(err)
	suite.Equal(domain.DayClosed, closed.Status)
	suite.mockPosting.AssertExpectations(suite.T())
	suite.mockSettlementRepo.AssertExpectations(suite.T())
}

func (suite *DayCloseServiceTestSuite) TestForceCloseDay_CreatesSuspenseOnFirstUse() {
	till := suite.tellerAccount(500)

	suite.expectBeginClose()
	suite.mockAccountRepo.On("ListBoundTellerAccounts", mock.Anything, suite.tenantID).
		Return([]domain.Account{till}, nil).Once()
	suite.mockAccountRepo.On("FindRoleAccount", mock.Anything, suite.tenantID, domain.RoleSuspense).Return(nil, apperrors.ErrNotFound).Once()
	suite.mockAccountRepo.On("SaveAccount", mock.Anything, mock.MatchedBy(func(a domain.Account) bool {
		return a.Code == "9999-EOD-SUSPENSE" && a.AccountType == domain.Liability && a.IsActive
	})).Return(nil).Once()
	suite.mockAccountRepo.On("SaveRoleAccount", mock.Anything, suite.tenantID, domain.RoleSuspense, mock.AnythingOfType("string"), suite.actorID, suite.now).Return(nil).Once()
	suite.mockPosting.On("Post", mock.Anything, suite.tenantID, mock.Anything, mock.Anything, suite.today, suite.actorID).
		Return(&domain.JournalEntry{EntryID: uuid.NewString()}, nil).Once()
	suite.mockSettlementRepo.On("MarkSettlementsForceClosed", mock.Anything, suite.openDay.DayBookID, suite.actorID, suite.now).Return(nil).Once()
	suite.expectFinishClose(true)

	_, err := suite.service.ForceCloseDay(context.Background(), suite.tenantID, suite.actorID, "system migration", "branch-manager")

	suite.Require().NoError(err)
	suite.mockAccountRepo.AssertExpectations(suite.T())
}

func (suite *DayCloseServiceTestSuite) TestForceCloseDay_RequiresReasonAndApprover() {
	_, err := suite.service.ForceCloseDay(context.Background(), suite.tenantID, suite.actorID, "", "branch-manager")
	suite.ErrorIs(err, apperrors.ErrValidation)

	_, err = suite.service.ForceCloseDay(context.Background(), suite.tenantID, suite.actorID, "power outage", "")
	suite.ErrorIs(err, apperrors.ErrValidation)

	suite.mockDayBookRepo.AssertNotCalled(suite.T(), "FindActiveDayBook", mock.Anything, mock.Anything)
}

func (suite *DayCloseServiceTestSuite) TestReopenDay_Success() {
	reopened := *suite.closedDay
	reopened.Status = domain.DayOpen
	reopened.Version = 4

	suite.mockDayBookRepo.On("FindLatestDayBook", mock.Anything, suite.tenantID).Return(suite.closedDay, nil).Once()
	suite.mockDayBookRepo.On("TransitionDayBook", mock.Anything, mock.MatchedBy(func(t portsrepo.DayBookTransition) bool {
		return t.DayBookID == suite.closedDay.DayBookID &&
			t.FromStatus == domain.DayClosed &&
			t.ToStatus == domain.DayOpen &&
			t.ExpectedVersion == suite.closedDay.Version
	})).Return(&reopened, nil).Once()

	dayBook, err := suite.service.ReopenDay(context.Background(), suite.tenantID, suite.actorID, "missed voucher", "branch-manager")

	suite.Require().NoError(err)
	suite.Equal(domain.DayOpen, dayBook.Status)
	suite.mockDayBookRepo.AssertExpectations(suite.T())
}

func (suite *DayCloseServiceTestSuite) TestReopenDay_PastDateRefused() {
	past := *suite.closedDay
	past.Date = suite.today.AddDate(0, 0, -1)

	suite.mockDayBookRepo.On("FindLatestDayBook", mock.Anything, suite.tenantID).Return(&past, nil).Once()

	_, err := suite.service.ReopenDay(context.Background(), suite.tenantID, suite.actorID, "missed voucher", "branch-manager")

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrCannotReopenPastDay)
	suite.mockDayBookRepo.AssertNotCalled(suite.T(), "TransitionDayBook", mock.Anything, mock.Anything)
}

func (suite *DayCloseServiceTestSuite) TestReopenDay_NotClosed() {
	suite.mockDayBookRepo.On("FindLatestDayBook", mock.Anything, suite.tenantID).Return(suite.openDay, nil).Once()

	_, err := suite.service.ReopenDay(context.Background(), suite.tenantID, suite.actorID, "missed voucher", "branch-manager")

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrNotClosed)
}

func (suite *DayCloseServiceTestSuite) TestReopenDay_NoDayBooks() {
	suite.mockDayBookRepo.On("FindLatestDayBook", mock.Anything, suite.tenantID).Return(nil, apperrors.ErrNotFound).Once()

	_, err := suite.service.ReopenDay(context.Background(), suite.tenantID, suite.actorID, "missed voucher", "branch-manager")

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrNoDayForToday)
}

func TestDayCloseService(t *testing.T) {
	suite.Run(t, new(DayCloseServiceTestSuite))
}
