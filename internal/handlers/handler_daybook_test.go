package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sahakari/coopcore/internal/apperrors"
	"github.com/sahakari/coopcore/internal/core/domain"
	portssvc "github.com/sahakari/coopcore/internal/core/ports/services"
	"github.com/sahakari/coopcore/internal/dto"
	"github.com/sahakari/coopcore/internal/handlers"
	"github.com/sahakari/coopcore/internal/middleware"
	"github.com/sahakari/coopcore/internal/platform/config"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
)

// --- Mock DayBookService ---
type MockDayBookService struct {
	mock.Mock
}

func (m *MockDayBookService) StartDay(ctx context.Context, tenantID string, date time.Time, actorID string) (*domain.DayBook, error) {
	args := m.Called(ctx, tenantID, date, actorID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.DayBook), args.Error(1)
}

func (m *MockDayBookService) Status(ctx context.Context, tenantID string) (*domain.DayBook, error) {
	args := m.Called(ctx, tenantID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.DayBook), args.Error(1)
}

var _ portssvc.DayBookSvcFacade = (*MockDayBookService)(nil)

// --- Mock DayCloseService ---
type MockDayCloseService struct {
	mock.Mock
}

func (m *MockDayCloseService) CloseDay(ctx context.Context, tenantID, actorID string) (*domain.DayBook, error) {
	args := m.Called(ctx, tenantID, actorID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.DayBook), args.Error(1)
}

func (m *MockDayCloseService) ForceCloseDay(ctx context.Context, tenantID, actorID, reason, approver string) (*domain.DayBook, error) {
	args := m.Called(ctx, tenantID, actorID, reason, approver)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.DayBook), args.Error(1)
}

func (m *MockDayCloseService) ReopenDay(ctx context.Context, tenantID, actorID, reason, approver string) (*domain.DayBook, error) {
	args := m.Called(ctx, tenantID, actorID, reason, approver)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.DayBook), args.Error(1)
}

var _ portssvc.DayCloseSvcFacade = (*MockDayCloseService)(nil)

type DayBookHandlerTestSuite struct {
	suite.Suite
	router       *gin.Engine
	mockDayBook  *MockDayBookService
	mockDayClose *MockDayCloseService
	tenantID     string
	actorID      string
}

func (suite *DayBookHandlerTestSuite) SetupTest() {
	gin.SetMode(gin.TestMode)
	suite.mockDayBook = new(MockDayBookService)
	suite.mockDayClose = new(MockDayCloseService)
	suite.tenantID = uuid.NewString()
	suite.actorID = uuid.NewString()

	suite.router = gin.New()
	handlers.RegisterRoutes(suite.router, &config.Config{IsProduction: true}, &portssvc.ServiceContainer{
		DayBook:  suite.mockDayBook,
		DayClose: suite.mockDayClose,
	})
}

func (suite *DayBookHandlerTestSuite) request(method, path string, body any) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		suite.Require().NoError(json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(middleware.TenantIDHeader, suite.tenantID)
	req.Header.Set(middleware.ActorIDHeader, suite.actorID)

	w := httptest.NewRecorder()
	suite.router.ServeHTTP(w, req)
	return w
}

func (suite *DayBookHandlerTestSuite) TestMissingTenantHeaderRejected() {
	req := httptest.NewRequest(http.MethodGet, "/api/v1/daybook", nil)
	req.Header.Set(middleware.ActorIDHeader, suite.actorID)

	w := httptest.NewRecorder()
	suite.router.ServeHTTP(w, req)

	suite.Equal(http.StatusBadRequest, w.Code)
	suite.Contains(w.Body.String(), "TENANT_MISSING")
}

func (suite *DayBookHandlerTestSuite) TestStatus_NeverStarted() {
	suite.mockDayBook.On("Status", mock.Anything, suite.tenantID).Return(nil, nil).Once()

	w := suite.request(http.MethodGet, "/api/v1/daybook", nil)

	suite.Equal(http.StatusOK, w.Code)
	var resp dto.DayStatusResponse
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &resp))
	suite.False(resp.Started)
	suite.Nil(resp.DayBook)
}

func (suite *DayBookHandlerTestSuite) TestStartDay_Success() {
	dayBook := &domain.DayBook{
		DayBookID:   uuid.NewString(),
		TenantID:    suite.tenantID,
		Date:        time.Date(2025, 6, 17, 0, 0, 0, 0, time.UTC),
		Status:      domain.DayOpen,
		OpeningCash: decimal.NewFromInt(5000),
		OpenedBy:    suite.actorID,
		Version:     1,
	}
	suite.mockDayBook.On("StartDay", mock.Anything, suite.tenantID, dayBook.Date, suite.actorID).Return(dayBook, nil).Once()

	w := suite.request(http.MethodPost, "/api/v1/daybook/start", dto.StartDayRequest{Date: "2025-06-17"})

	suite.Equal(http.StatusCreated, w.Code)
	var resp dto.DayBookResponse
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &resp))
	suite.Equal("2025-06-17", resp.Date)
	suite.Equal(domain.DayOpen, resp.Status)
	suite.mockDayBook.AssertExpectations(suite.T())
}

func (suite *DayBookHandlerTestSuite) TestStartDay_InvalidDate() {
	w := suite.request(http.MethodPost, "/api/v1/daybook/start", gin.H{"date": "17/06/2025"})

	suite.Equal(http.StatusBadRequest, w.Code)
	suite.mockDayBook.AssertNotCalled(suite.T(), "StartDay", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func (suite *DayBookHandlerTestSuite) TestStartDay_PreviousDayNotClosed() {
	suite.mockDayBook.On("StartDay", mock.Anything, suite.tenantID, mock.Anything, suite.actorID).
		Return(nil, apperrors.ErrPreviousDayNotClosed).Once()

	w := suite.request(http.MethodPost, "/api/v1/daybook/start", dto.StartDayRequest{Date: "2025-06-17"})

	suite.Equal(http.StatusConflict, w.Code)
	suite.Contains(w.Body.String(), "PREVIOUS_DAY_NOT_CLOSED")
}

func (suite *DayBookHandlerTestSuite) TestCloseDay_PendingSettlements() {
	pendingErr := &apperrors.PendingSettlementError{Accounts: []apperrors.AccountBalance{
		{AccountID: uuid.NewString(), Code: "1-10-02-001", Name: "Teller till", Balance: decimal.NewFromInt(1200)},
	}}
	suite.mockDayClose.On("CloseDay", mock.Anything, suite.tenantID, suite.actorID).Return(nil, pendingErr).Once()

	w := suite.request(http.MethodPost, "/api/v1/daybook/close", nil)

	suite.Equal(http.StatusConflict, w.Code)
	suite.Contains(w.Body.String(), "TELLER_PENDING_SETTLEMENT")
	suite.Contains(w.Body.String(), "1-10-02-001")
}

func (suite *DayBookHandlerTestSuite) TestReopenDay_PastDateRefused() {
	suite.mockDayClose.On("ReopenDay", mock.Anything, suite.tenantID, suite.actorID, "missed voucher", "branch-manager").
		Return(nil, apperrors.ErrCannotReopenPastDay).Once()

	w := suite.request(http.MethodPost, "/api/v1/daybook/reopen", dto.OverrideRequest{Reason: "missed voucher", Approver: "branch-manager"})

	suite.Equal(http.StatusBadRequest, w.Code)
	suite.Contains(w.Body.String(), "CANNOT_REOPEN_PAST_DAY")
}

func (suite *DayBookHandlerTestSuite) TestForceCloseDay_RequiresBody() {
	w := suite.request(http.MethodPost, "/api/v1/daybook/force-close", gin.H{"reason": "power outage"})

	suite.Equal(http.StatusBadRequest, w.Code)
	suite.mockDayClose.AssertNotCalled(suite.T(), "ForceCloseDay", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestDayBookHandler(t *testing.T) {
	suite.Run(t, new(DayBookHandlerTestSuite))
}
