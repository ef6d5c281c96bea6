package handlers

import (
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sahakari/coopcore/internal/apperrors"
	"github.com/sahakari/coopcore/internal/core/domain"
	"github.com/sahakari/coopcore/internal/dto"
	"github.com/sahakari/coopcore/internal/middleware"

	portssvc "github.com/sahakari/coopcore/internal/core/ports/services"
)

// ledgerHandler handles HTTP requests for manual journal entries. The posting
// engine itself knows nothing about business days; the gate that manual
// vouchers require an open day lives here.
type ledgerHandler struct {
	postingService portssvc.PostingSvcFacade
	dayBookService portssvc.DayBookSvcFacade
}

func newLedgerHandler(postingService portssvc.PostingSvcFacade, dayBookService portssvc.DayBookSvcFacade) *ledgerHandler {
	return &ledgerHandler{
		postingService: postingService,
		dayBookService: dayBookService,
	}
}

func registerLedgerRoutes(rg *gin.RouterGroup, postingService portssvc.PostingSvcFacade, dayBookService portssvc.DayBookSvcFacade) {
	h := newLedgerHandler(postingService, dayBookService)
	ledger := rg.Group("/ledger")
	{
		ledger.POST("/entries", h.postEntry)
		ledger.GET("/entries", h.listEntries)
		ledger.GET("/entries/:entryID", h.getEntry)
		ledger.POST("/entries/:entryID/reverse", h.reverseEntry)
	}
}

// requireOpenDay refuses manual ledger writes unless the tenant's business
// day is OPEN.
func (h *ledgerHandler) requireOpenDay(c *gin.Context, tenantID string) bool {
	dayBook, err := h.dayBookService.Status(c.Request.Context(), tenantID)
	if err != nil {
		respondError(c, err)
		return false
	}
	if dayBook == nil || dayBook.Status != domain.DayOpen {
		respondError(c, fmt.Errorf("%w: manual entries require an open business day", apperrors.ErrDayNotOpen))
		return false
	}
	return true
}

// postEntry godoc
// @Summary Post a manual journal entry
// @Description Validates and books a balanced journal entry; requires an open business day
// @Tags ledger
// @Accept json
// @Produce json
// @Param request body dto.PostEntryRequest true "Entry"
// @Success 201 {object} dto.EntryResponse
// @Failure 400 {object} map[string]string "Invalid request format or unbalanced entry"
// @Failure 409 {object} map[string]string "Business day not open"
// @Router /ledger/entries [post]
func (h *ledgerHandler) postEntry(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	tenantID, actorID, ok := identity(c)
	if !ok {
		return
	}

	var req dto.PostEntryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for postEntry", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"code": "VALIDATION_ERROR", "error": "Invalid request format"})
		return
	}
	lines, err := req.ToDomainLines()
	if err != nil {
		respondError(c, err)
		return
	}

	if !h.requireOpenDay(c, tenantID) {
		return
	}

	entry, err := h.postingService.Post(c.Request.Context(), tenantID, req.Description, lines, req.EffectiveDate, actorID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, dto.ToEntryResponse(entry))
}

// listEntries godoc
// @Summary List entries by date
// @Description Returns the tenant's entries effective on the given date (default today)
// @Tags ledger
// @Produce json
// @Param date query string false "Date (YYYY-MM-DD)"
// @Success 200 {array} dto.EntryResponse
// @Router /ledger/entries [get]
func (h *ledgerHandler) listEntries(c *gin.Context) {
	tenantID, _, ok := identity(c)
	if !ok {
		return
	}

	date := time.Now().UTC()
	if dateStr := c.Query("date"); dateStr != "" {
		parsed, err := time.Parse(time.DateOnly, dateStr)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"code": "VALIDATION_ERROR", "error": "date must be YYYY-MM-DD"})
			return
		}
		date = parsed
	}

	entries, err := h.postingService.ListEntriesByDate(c.Request.Context(), tenantID, date)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.ToEntryResponses(entries))
}

// getEntry godoc
// @Summary Get a journal entry with its lines
// @Tags ledger
// @Produce json
// @Param entryID path string true "Entry ID"
// @Success 200 {object} dto.EntryResponse
// @Failure 404 {object} map[string]string "Entry not found"
// @Router /ledger/entries/{entryID} [get]
func (h *ledgerHandler) getEntry(c *gin.Context) {
	tenantID, _, ok := identity(c)
	if !ok {
		return
	}
	entryID := c.Param("entryID")

	entry, err := h.postingService.GetEntry(c.Request.Context(), tenantID, entryID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.ToEntryResponse(entry))
}

// reverseEntry godoc
// @Summary Reverse a journal entry
// @Description Books an equal-and-opposite entry and marks the original REVERSED; requires an open business day
// @Tags ledger
// @Produce json
// @Param entryID path string true "Entry ID"
// @Success 201 {object} dto.EntryResponse
// @Failure 404 {object} map[string]string "Entry not found"
// @Failure 409 {object} map[string]string "Entry not reversible"
// @Router /ledger/entries/{entryID}/reverse [post]
func (h *ledgerHandler) reverseEntry(c *gin.Context) {
	tenantID, actorID, ok := identity(c)
	if !ok {
		return
	}
	entryID := c.Param("entryID")

	if !h.requireOpenDay(c, tenantID) {
		return
	}

	entry, err := h.postingService.ReverseEntry(c.Request.Context(), tenantID, entryID, actorID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, dto.ToEntryResponse(entry))
}
