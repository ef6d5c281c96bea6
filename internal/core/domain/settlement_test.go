package domain_test

import (
	"testing"
	"time"

	"github.com/sahakari/coopcore/internal/core/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestSumDenominations(t *testing.T) {
	tests := []struct {
		name  string
		lines []domain.DenominationLine
		want  decimal.Decimal
	}{
		{
			name: "mixed notes and coins",
			lines: []domain.DenominationLine{
				{Denomination: decimal.NewFromInt(1000), Count: 5},
				{Denomination: decimal.NewFromInt(500), Count: 3},
				{Denomination: decimal.NewFromFloat(0.50), Count: 10},
			},
			want: decimal.NewFromFloat(6505.00),
		},
		{
			name:  "empty breakdown",
			lines: nil,
			want:  decimal.Zero,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := domain.SumDenominations(tt.lines)
			assert.True(t, got.Equal(tt.want), "got %s, want %s", got, tt.want)
		})
	}
}

func TestTellerSettlement_IsApproved(t *testing.T) {
	var s domain.TellerSettlement
	assert.False(t, s.IsApproved())

	approvedAt := time.Now()
	s.ApprovedAt = &approvedAt
	assert.True(t, s.IsApproved())
}

func TestDayBook_IsActive(t *testing.T) {
	assert.True(t, domain.DayBook{Status: domain.DayOpen}.IsActive())
	assert.True(t, domain.DayBook{Status: domain.DayEODInProgress}.IsActive())
	assert.False(t, domain.DayBook{Status: domain.DayClosed}.IsActive())
}

func TestLineSide_Opposite(t *testing.T) {
	assert.Equal(t, domain.Credit, domain.Debit.Opposite())
	assert.Equal(t, domain.Debit, domain.Credit.Opposite())
}
