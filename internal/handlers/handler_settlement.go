package handlers

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sahakari/coopcore/internal/dto"
	"github.com/sahakari/coopcore/internal/middleware"

	portssvc "github.com/sahakari/coopcore/internal/core/ports/services"
)

// settlementHandler handles HTTP requests for teller settlements.
type settlementHandler struct {
	settlementService portssvc.SettlementSvcFacade
	dayBookService    portssvc.DayBookSvcFacade
}

func newSettlementHandler(settlementService portssvc.SettlementSvcFacade, dayBookService portssvc.DayBookSvcFacade) *settlementHandler {
	return &settlementHandler{
		settlementService: settlementService,
		dayBookService:    dayBookService,
	}
}

func registerSettlementRoutes(rg *gin.RouterGroup, settlementService portssvc.SettlementSvcFacade, dayBookService portssvc.DayBookSvcFacade) {
	h := newSettlementHandler(settlementService, dayBookService)
	settlements := rg.Group("/settlements")
	{
		settlements.GET("", h.listSettlements)
		settlements.POST("", h.settle)
		settlements.POST("/preview", h.preview)
		settlements.POST("/:settlementID/unsettle", h.unsettle)
	}
}

// preview godoc
// @Summary Preview a teller settlement
// @Description Computes the variance and the entries a settlement would book, persisting nothing
// @Tags settlements
// @Accept json
// @Produce json
// @Param request body dto.SettleRequest true "Settlement to preview"
// @Success 200 {object} dto.SettlementPreviewResponse
// @Failure 400 {object} map[string]string "Invalid request format"
// @Router /settlements/preview [post]
func (h *settlementHandler) preview(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	tenantID, _, ok := identity(c)
	if !ok {
		return
	}

	var req dto.SettleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for settlement preview", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"code": "VALIDATION_ERROR", "error": "Invalid request format"})
		return
	}

	preview, err := h.settlementService.Preview(c.Request.Context(), tenantID, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, preview)
}

// settle godoc
// @Summary Settle a teller
// @Description Books variance and vault-sweep entries and records the settlement
// @Tags settlements
// @Accept json
// @Produce json
// @Param request body dto.SettleRequest true "Settlement"
// @Success 201 {object} dto.SettlementResponse
// @Failure 400 {object} map[string]string "Invalid request format"
// @Failure 409 {object} map[string]string "Day not open or teller not mapped"
// @Router /settlements [post]
func (h *settlementHandler) settle(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	tenantID, actorID, ok := identity(c)
	if !ok {
		return
	}

	var req dto.SettleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for settle", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"code": "VALIDATION_ERROR", "error": "Invalid request format"})
		return
	}

	settlement, err := h.settlementService.Settle(c.Request.Context(), tenantID, req, actorID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, dto.ToSettlementResponse(settlement))
}

// unsettle godoc
// @Summary Revert a settlement
// @Description Reverses the settlement's entries and marks it REVERTED
// @Tags settlements
// @Accept json
// @Produce json
// @Param settlementID path string true "Settlement ID"
// @Param request body dto.UnsettleRequest true "Revert reason"
// @Success 200 {object} dto.SettlementResponse
// @Failure 409 {object} map[string]string "Already approved, already reverted, or day closed"
// @Router /settlements/{settlementID}/unsettle [post]
func (h *settlementHandler) unsettle(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	tenantID, actorID, ok := identity(c)
	if !ok {
		return
	}
	settlementID := c.Param("settlementID")

	var req dto.UnsettleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for unsettle", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"code": "VALIDATION_ERROR", "error": "Invalid request format"})
		return
	}

	settlement, err := h.settlementService.Unsettle(c.Request.Context(), tenantID, settlementID, req.Reason, actorID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.ToSettlementResponse(settlement))
}

// listSettlements godoc
// @Summary List settlements of the current business day
// @Description Returns the settlements recorded against the active (or latest) day book
// @Tags settlements
// @Produce json
// @Success 200 {array} dto.SettlementResponse
// @Failure 404 {object} map[string]string "No business day"
// @Router /settlements [get]
func (h *settlementHandler) listSettlements(c *gin.Context) {
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
		c.JSON(http.StatusOK, []dto.SettlementResponse{})
		return
	}

	settlements, err := h.settlementService.ListForDayBook(c.Request.Context(), tenantID, dayBook.DayBookID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.ToSettlementResponses(settlements))
}
