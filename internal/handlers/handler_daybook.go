package handlers

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sahakari/coopcore/internal/dto"
	"github.com/sahakari/coopcore/internal/middleware"

	portssvc "github.com/sahakari/coopcore/internal/core/ports/services"
)

// dayBookHandler handles HTTP requests for the business-day lifecycle.
type dayBookHandler struct {
	dayBookService  portssvc.DayBookSvcFacade
	dayCloseService portssvc.DayCloseSvcFacade
}

func newDayBookHandler(dayBookService portssvc.DayBookSvcFacade, dayCloseService portssvc.DayCloseSvcFacade) *dayBookHandler {
	return &dayBookHandler{
		dayBookService:  dayBookService,
		dayCloseService: dayCloseService,
	}
}

func registerDayBookRoutes(rg *gin.RouterGroup, dayBookService portssvc.DayBookSvcFacade, dayCloseService portssvc.DayCloseSvcFacade) {
	h := newDayBookHandler(dayBookService, dayCloseService)
	daybook := rg.Group("/daybook")
	{
		daybook.GET("", h.status)
		daybook.POST("/start", h.startDay)
		daybook.POST("/close", h.closeDay)
		daybook.POST("/force-close", h.forceCloseDay)
		daybook.POST("/reopen", h.reopenDay)
	}
}

// status godoc
// @Summary Get the business-day status
// @Description Returns the active day book, or the most recent one when none is active
// @Tags daybook
// @Produce json
// @Success 200 {object} dto.DayStatusResponse
// @Router /daybook [get]
func (h *dayBookHandler) status(c *gin.Context) {
	tenantID, _, ok := identity(c)
	if !ok {
		return
	}

	dayBook, err := h.dayBookService.Status(c.Request.Context(), tenantID)
	if err != nil {
		respondError(c, err)
		return
	}
	if dayBook == nil {
		c.JSON(http.StatusOK, dto.DayStatusResponse{Started: false})
		return
	}
	resp := dto.ToDayBookResponse(dayBook)
	c.JSON(http.StatusOK, dto.DayStatusResponse{Started: true, DayBook: &resp})
}

// startDay godoc
// @Summary Start a business day
// @Description Opens the day book for the given date, or reopens today's closed one
// @Tags daybook
// @Accept json
// @Produce json
// @Param request body dto.StartDayRequest true "Date to open"
// @Success 201 {object} dto.DayBookResponse
// @Failure 400 {object} map[string]string "Invalid request format"
// @Failure 409 {object} map[string]string "Lifecycle conflict"
// @Router /daybook/start [post]
func (h *dayBookHandler) startDay(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	tenantID, actorID, ok := identity(c)
	if !ok {
		return
	}

	var req dto.StartDayRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for startDay", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"code": "VALIDATION_ERROR", "error": "Invalid request format"})
		return
	}
	date, err := time.Parse(time.DateOnly, req.Date)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"code": "VALIDATION_ERROR", "error": "date must be YYYY-MM-DD"})
		return
	}

	dayBook, err := h.dayBookService.StartDay(c.Request.Context(), tenantID, date, actorID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, dto.ToDayBookResponse(dayBook))
}

// closeDay godoc
// @Summary Close the business day
// @Description Validates all tellers are settled and locks the active day
// @Tags daybook
// @Produce json
// @Success 200 {object} dto.DayBookResponse
// @Failure 409 {object} map[string]string "Pending settlements or lifecycle conflict"
// @Router /daybook/close [post]
func (h *dayBookHandler) closeDay(c *gin.Context) {
	tenantID, actorID, ok := identity(c)
	if !ok {
		return
	}

	dayBook, err := h.dayCloseService.CloseDay(c.Request.Context(), tenantID, actorID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.ToDayBookResponse(dayBook))
}

// forceCloseDay godoc
// @Summary Force-close the business day
// @Description Zeroes unsettled teller balances into suspense and closes the day
// @Tags daybook
// @Accept json
// @Produce json
// @Param request body dto.OverrideRequest true "Reason and approver"
// @Success 200 {object} dto.DayBookResponse
// @Failure 400 {object} map[string]string "Invalid request format"
// @Router /daybook/force-close [post]
func (h *dayBookHandler) forceCloseDay(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	tenantID, actorID, ok := identity(c)
	if !ok {
		return
	}

	var req dto.OverrideRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for forceCloseDay", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"code": "VALIDATION_ERROR", "error": "Invalid request format"})
		return
	}

	dayBook, err := h.dayCloseService.ForceCloseDay(c.Request.Context(), tenantID, actorID, req.Reason, req.Approver)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.ToDayBookResponse(dayBook))
}

// reopenDay godoc
// @Summary Reopen today's closed business day
// @Description Returns today's closed day book to OPEN; past dates are refused
// @Tags daybook
// @Accept json
// @Produce json
// @Param request body dto.OverrideRequest true "Reason and approver"
// @Success 200 {object} dto.DayBookResponse
// @Failure 400 {object} map[string]string "Invalid request format"
// @Router /daybook/reopen [post]
func (h *dayBookHandler) reopenDay(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	tenantID, actorID, ok := identity(c)
	if !ok {
		return
	}

	var req dto.OverrideRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for reopenDay", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"code": "VALIDATION_ERROR", "error": "Invalid request format"})
		return
	}

	dayBook, err := h.dayCloseService.ReopenDay(c.Request.Context(), tenantID, actorID, req.Reason, req.Approver)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.ToDayBookResponse(dayBook))
}
