package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sahakari/coopcore/internal/apperrors"
	"github.com/sahakari/coopcore/internal/middleware"
)

// errorCode derives the machine-readable reason code for a failure response.
func errorCode(err error) string {
	if code := apperrors.Code(err); code != "INTERNAL" {
		return code
	}
	switch {
	case errors.Is(err, apperrors.ErrNotFound):
		return "NOT_FOUND"
	case errors.Is(err, apperrors.ErrValidation):
		return "VALIDATION_ERROR"
	case errors.Is(err, apperrors.ErrDuplicate):
		return "DUPLICATE"
	case errors.Is(err, apperrors.ErrVersionConflict):
		return "VERSION_CONFLICT"
	case errors.Is(err, apperrors.ErrConflict):
		return "CONFLICT"
	}
	return "INTERNAL"
}

// respondError maps a service error to its HTTP response. Every failure body
// carries a reason code alongside the message; internal failures hide the
// underlying error.
func respondError(c *gin.Context, err error) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	var pending *apperrors.PendingSettlementError
	if errors.As(err, &pending) {
		c.JSON(http.StatusConflict, gin.H{
			"code":     pending.Code(),
			"error":    pending.Error(),
			"accounts": pending.Accounts,
		})
		return
	}

	var status int
	switch {
	case errors.Is(err, apperrors.ErrNotFound),
		errors.Is(err, apperrors.ErrNoDayForToday):
		status = http.StatusNotFound
	case errors.Is(err, apperrors.ErrValidation),
		errors.Is(err, apperrors.ErrDoubleEntryMismatch),
		errors.Is(err, apperrors.ErrGroupAccountPosting),
		errors.Is(err, apperrors.ErrAccountInactive),
		errors.Is(err, apperrors.ErrDenominationMismatch),
		errors.Is(err, apperrors.ErrCannotStartPastDay),
		errors.Is(err, apperrors.ErrCannotReopenPastDay):
		status = http.StatusBadRequest
	case errors.Is(err, apperrors.ErrDuplicate),
		errors.Is(err, apperrors.ErrConflict),
		errors.Is(err, apperrors.ErrVersionConflict),
		errors.Is(err, apperrors.ErrPreviousDayNotClosed),
		errors.Is(err, apperrors.ErrDayAlreadyOpen),
		errors.Is(err, apperrors.ErrNoActiveDay),
		errors.Is(err, apperrors.ErrDayNotOpen),
		errors.Is(err, apperrors.ErrAlreadyClosed),
		errors.Is(err, apperrors.ErrConcurrentClose),
		errors.Is(err, apperrors.ErrNotClosed),
		errors.Is(err, apperrors.ErrTellerAccountNotMapped),
		errors.Is(err, apperrors.ErrRoleAccountNotMapped),
		errors.Is(err, apperrors.ErrAlreadyApproved),
		errors.Is(err, apperrors.ErrAlreadyReverted):
		status = http.StatusConflict
	default:
		status = http.StatusInternalServerError
	}

	if status == http.StatusInternalServerError {
		logger.Error("Unhandled service error", slog.String("error", err.Error()))
		c.JSON(status, gin.H{"code": "INTERNAL", "error": "internal server error"})
		return
	}
	c.JSON(status, gin.H{"code": errorCode(err), "error": err.Error()})
}

// identity pulls the tenant and actor placed by the middleware. A missing
// pair means the middleware chain is misconfigured.
func identity(c *gin.Context) (tenantID, actorID string, ok bool) {
	tenantID, tenantOK := middleware.GetTenantIDFromContext(c)
	actorID, actorOK := middleware.GetActorIDFromContext(c)
	if !tenantOK || !actorOK {
		c.JSON(http.StatusBadRequest, gin.H{"code": "TENANT_MISSING", "error": "tenant or actor identity missing from request"})
		return "", "", false
	}
	return tenantID, actorID, true
}
