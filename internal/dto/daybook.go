package dto

import (
	"time"

	"github.com/sahakari/coopcore/internal/core/domain"
	"github.com/shopspring/decimal"
)

// StartDayRequest defines the payload for opening a business day.
type StartDayRequest struct {
	Date string `json:"date" binding:"required,datetime=2006-01-02"`
}

// OverrideRequest carries the reason and approver required by the
// administrative force-close and reopen paths.
type OverrideRequest struct {
	Reason   string `json:"reason" binding:"required,max=500"`
	Approver string `json:"approver" binding:"required,max=100"`
}

// DayBookResponse is the API representation of a business day.
type DayBookResponse struct {
	DayBookID         string               `json:"dayBookID"`
	TenantID          string               `json:"tenantID"`
	Date              string               `json:"date"`
	Status            domain.DayBookStatus `json:"status"`
	OpeningCash       decimal.Decimal      `json:"openingCash"`
	ClosingCash       decimal.Decimal      `json:"closingCash"`
	TransactionsCount int                  `json:"transactionsCount"`
	OpenedBy          string               `json:"openedBy"`
	ClosedBy          *string              `json:"closedBy,omitempty"`
	IsForceClosed     bool                 `json:"isForceClosed"`
	Version           int64                `json:"version"`
}

// DayStatusResponse wraps the current-or-last day book; Started is false when
// the tenant has never begun a business day.
type DayStatusResponse struct {
	Started bool             `json:"started"`
	DayBook *DayBookResponse `json:"dayBook,omitempty"`
}

// ToDayBookResponse converts a domain day book to its API representation.
func ToDayBookResponse(d *domain.DayBook) DayBookResponse {
	return DayBookResponse{
		DayBookID:         d.DayBookID,
		TenantID:          d.TenantID,
		Date:              d.Date.Format(time.DateOnly),
		Status:            d.Status,
		OpeningCash:       d.OpeningCash,
		ClosingCash:       d.ClosingCash,
		TransactionsCount: d.TransactionsCount,
		OpenedBy:          d.OpenedBy,
		ClosedBy:          d.ClosedBy,
		IsForceClosed:     d.IsForceClosed,
		Version:           d.Version,
	}
}
