package accounting_test

import (
	"testing"

	"github.com/sahakari/coopcore/internal/apperrors"
	"github.com/sahakari/coopcore/internal/core/domain"
	"github.com/sahakari/coopcore/internal/utils/accounting"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCalculateSignedAmount(t *testing.T) {
	amount := decimal.NewFromInt(100)

	tests := []struct {
		name        string
		side        domain.LineSide
		accountType domain.AccountType
		want        decimal.Decimal
	}{
		{"debit to asset is positive", domain.Debit, domain.Asset, amount},
		{"credit to asset is negative", domain.Credit, domain.Asset, amount.Neg()},
		{"debit to expense is positive", domain.Debit, domain.Expense, amount},
		{"credit to expense is negative", domain.Credit, domain.Expense, amount.Neg()},
		{"debit to liability is negative", domain.Debit, domain.Liability, amount.Neg()},
		{"credit to liability is positive", domain.Credit, domain.Liability, amount},
		{"debit to equity is negative", domain.Debit, domain.Equity, amount.Neg()},
		{"credit to equity is positive", domain.Credit, domain.Equity, amount},
		{"debit to revenue is negative", domain.Debit, domain.Revenue, amount.Neg()},
		{"credit to revenue is positive", domain.Credit, domain.Revenue, amount},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			line := domain.LedgerLine{AccountID: "acc-1", Amount: amount, Side: tt.side}
			got, err := accounting.CalculateSignedAmount(line, tt.accountType)
			require.NoError(t, err)
			assert.True(t, got.Equal(tt.want), "got %s, want %s", got, tt.want)
		})
	}
}

func TestCalculateSignedAmount_UnknownAccountType(t *testing.T) {
	line := domain.LedgerLine{AccountID: "acc-1", Amount: decimal.NewFromInt(10), Side: domain.Debit}
	_, err := accounting.CalculateSignedAmount(line, domain.AccountType("MEMO"))
	assert.Error(t, err)
}

func TestValidateEntryBalance(t *testing.T) {
	tests := []struct {
		name    string
		lines   []domain.LedgerLine
		wantErr error
	}{
		{
			name:    "no lines",
			lines:   nil,
			wantErr: apperrors.ErrValidation,
		},
		{
			name: "balanced entry",
			lines: []domain.LedgerLine{
				{AccountID: "a", Amount: decimal.NewFromInt(100), Side: domain.Debit},
				{AccountID: "b", Amount: decimal.NewFromInt(100), Side: domain.Credit},
			},
		},
		{
			name: "balanced across multiple lines",
			lines: []domain.LedgerLine{
				{AccountID: "a", Amount: decimal.NewFromInt(60), Side: domain.Debit},
				{AccountID: "b", Amount: decimal.NewFromInt(40), Side: domain.Debit},
				{AccountID: "c", Amount: decimal.NewFromInt(100), Side: domain.Credit},
			},
		},
		{
			name: "within rounding epsilon",
			lines: []domain.LedgerLine{
				{AccountID: "a", Amount: decimal.NewFromFloat(100.00), Side: domain.Debit},
				{AccountID: "b", Amount: decimal.NewFromFloat(99.99), Side: domain.Credit},
			},
		},
		{
			name: "beyond rounding epsilon",
			lines: []domain.LedgerLine{
				{AccountID: "a", Amount: decimal.NewFromFloat(100.00), Side: domain.Debit},
				{AccountID: "b", Amount: decimal.NewFromFloat(99.98), Side: domain.Credit},
			},
			wantErr: apperrors.ErrDoubleEntryMismatch,
		},
		{
			name: "zero amount line",
			lines: []domain.LedgerLine{
				{AccountID: "a", Amount: decimal.Zero, Side: domain.Debit},
				{AccountID: "b", Amount: decimal.Zero, Side: domain.Credit},
			},
			wantErr: apperrors.ErrValidation,
		},
		{
			name: "negative amount line",
			lines: []domain.LedgerLine{
				{AccountID: "a", Amount: decimal.NewFromInt(-5), Side: domain.Debit},
				{AccountID: "b", Amount: decimal.NewFromInt(-5), Side: domain.Credit},
			},
			wantErr: apperrors.ErrValidation,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := accounting.ValidateEntryBalance(tt.lines)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestEntryAmount(t *testing.T) {
	lines := []domain.LedgerLine{
		{AccountID: "a", Amount: decimal.NewFromInt(60), Side: domain.Debit},
		{AccountID: "b", Amount: decimal.NewFromInt(40), Side: domain.Debit},
		{AccountID: "c", Amount: decimal.NewFromInt(100), Side: domain.Credit},
	}

	got := accounting.EntryAmount(lines)
	assert.True(t, got.Equal(decimal.NewFromInt(100)))
}
