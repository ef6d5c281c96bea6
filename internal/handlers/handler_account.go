package handlers

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/sahakari/coopcore/internal/core/domain"
	"github.com/sahakari/coopcore/internal/dto"
	"github.com/sahakari/coopcore/internal/middleware"

	portssvc "github.com/sahakari/coopcore/internal/core/ports/services"
)

// accountHandler handles HTTP requests for the chart of accounts.
type accountHandler struct {
	accountService portssvc.AccountSvcFacade
}

func newAccountHandler(accountService portssvc.AccountSvcFacade) *accountHandler {
	return &accountHandler{accountService: accountService}
}

func registerAccountRoutes(rg *gin.RouterGroup, accountService portssvc.AccountSvcFacade) {
	h := newAccountHandler(accountService)
	accounts := rg.Group("/accounts")
	{
		accounts.POST("", h.createAccount)
		accounts.GET("", h.listAccounts)
		accounts.GET("/:accountID", h.getAccount)
		accounts.PUT("/roles/:role", h.setRoleAccount)
		accounts.GET("/roles/:role", h.getRoleAccount)
	}
}

// createAccount godoc
// @Summary Create an account
// @Description Registers a new account in the tenant's chart of accounts
// @Tags accounts
// @Accept json
// @Produce json
// @Param request body dto.CreateAccountRequest true "Account"
// @Success 201 {object} dto.AccountResponse
// @Failure 400 {object} map[string]string "Invalid request format"
// @Failure 409 {object} map[string]string "Code already exists"
// @Router /accounts [post]
func (h *accountHandler) createAccount(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	tenantID, actorID, ok := identity(c)
	if !ok {
		return
	}

	var req dto.CreateAccountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for createAccount", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"code": "VALIDATION_ERROR", "error": "Invalid request format"})
		return
	}

	account, err := h.accountService.CreateAccount(c.Request.Context(), tenantID, req, actorID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, dto.ToAccountResponse(account))
}

// listAccounts godoc
// @Summary List accounts
// @Description Returns all accounts of the tenant ordered by code
// @Tags accounts
// @Produce json
// @Success 200 {array} dto.AccountResponse
// @Router /accounts [get]
func (h *accountHandler) listAccounts(c *gin.Context) {
	tenantID, _, ok := identity(c)
	if !ok {
		return
	}

	accounts, err := h.accountService.ListAccounts(c.Request.Context(), tenantID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.ToAccountResponses(accounts))
}

// getAccount godoc
// @Summary Get an account
// @Tags accounts
// @Produce json
// @Param accountID path string true "Account ID"
// @Success 200 {object} dto.AccountResponse
// @Failure 404 {object} map[string]string "Account not found"
// @Router /accounts/{accountID} [get]
func (h *accountHandler) getAccount(c *gin.Context) {
	tenantID, _, ok := identity(c)
	if !ok {
		return
	}
	accountID := c.Param("accountID")

	account, err := h.accountService.GetAccountByID(c.Request.Context(), tenantID, accountID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.ToAccountResponse(account))
}

// setRoleAccount godoc
// @Summary Map a role to an account
// @Description Binds a special-purpose role (VAULT, SUSPENSE, STAFF_RECEIVABLE, SUNDRY_INCOME) to an account
// @Tags accounts
// @Accept json
// @Produce json
// @Param role path string true "Role"
// @Param request body dto.SetRoleAccountRequest true "Account to bind"
// @Success 200 {object} map[string]string
// @Failure 400 {object} map[string]string "Unknown role or unpostable account"
// @Router /accounts/roles/{role} [put]
func (h *accountHandler) setRoleAccount(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	tenantID, actorID, ok := identity(c)
	if !ok {
		return
	}
	role := domain.AccountRole(strings.ToUpper(c.Param("role")))

	var req dto.SetRoleAccountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for setRoleAccount", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"code": "VALIDATION_ERROR", "error": "Invalid request format"})
		return
	}

	if err := h.accountService.SetRoleAccount(c.Request.Context(), tenantID, role, req.AccountID, actorID); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"role": string(role), "accountID": req.AccountID})
}

// getRoleAccount godoc
// @Summary Resolve a role account
// @Tags accounts
// @Produce json
// @Param role path string true "Role"
// @Success 200 {object} dto.AccountResponse
// @Failure 409 {object} map[string]string "Role not mapped"
// @Router /accounts/roles/{role} [get]
func (h *accountHandler) getRoleAccount(c *gin.Context) {
	tenantID, _, ok := identity(c)
	if !ok {
		return
	}
	role := domain.AccountRole(strings.ToUpper(c.Param("role")))

	account, err := h.accountService.GetRoleAccount(c.Request.Context(), tenantID, role)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.ToAccountResponse(account))
}
