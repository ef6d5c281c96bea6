package accounting

import (
	"fmt"

	"github.com/sahakari/coopcore/internal/apperrors"
	"github.com/sahakari/coopcore/internal/core/domain"
	"github.com/shopspring/decimal"
)

// BalanceEpsilon absorbs floating rounding from upstream callers: debit and
// credit totals may differ by at most this much and still be accepted.
var BalanceEpsilon = decimal.NewFromFloat(0.01)

// CalculateSignedAmount applies the correct sign to a ledger line amount
// based on the account's normal balance side.
// DEBIT to ASSET/EXPENSE -> Positive (+)
// CREDIT to ASSET/EXPENSE -> Negative (-)
// DEBIT to LIABILITY/EQUITY/REVENUE -> Negative (-)
// CREDIT to LIABILITY/EQUITY/REVENUE -> Positive (+)
func CalculateSignedAmount(line domain.LedgerLine, accountType domain.AccountType) (decimal.Decimal, error) {
	signedAmount := line.Amount
	isDebit := line.Side == domain.Debit

	switch accountType {
	case domain.Asset, domain.Expense:
		if !isDebit { // Credit to Asset/Expense
			signedAmount = signedAmount.Neg()
		}
	case domain.Liability, domain.Equity, domain.Revenue:
		if isDebit { // Debit to Liability/Equity/Revenue
			signedAmount = signedAmount.Neg()
		}
	default:
		return decimal.Zero, fmt.Errorf("unknown account type '%s' encountered for account ID %s", accountType, line.AccountID)
	}
	return signedAmount, nil
}

// ValidateEntryBalance checks that an entry's lines have positive amounts and
// that total debits equal total credits within BalanceEpsilon.
func ValidateEntryBalance(lines []domain.LedgerLine) error {
	if len(lines) == 0 {
		return fmt.Errorf("%w: entry must have at least one ledger line", apperrors.ErrValidation)
	}

	debitsSum := decimal.Zero
	creditsSum := decimal.Zero

	for _, line := range lines {
		if line.Amount.LessThanOrEqual(decimal.Zero) {
			return fmt.Errorf("%w: line amount must be positive for account %s", apperrors.ErrValidation, line.AccountID)
		}
		if line.Side == domain.Debit {
			debitsSum = debitsSum.Add(line.Amount)
		} else {
			creditsSum = creditsSum.Add(line.Amount)
		}
	}

	if debitsSum.Sub(creditsSum).Abs().GreaterThan(BalanceEpsilon) {
		return fmt.Errorf("%w: debits sum is %s and credits sum is %s",
			apperrors.ErrDoubleEntryMismatch, debitsSum.String(), creditsSum.String())
	}

	return nil
}

// EntryAmount computes the economic value of a balanced entry: the total of
// its debit side.
func EntryAmount(lines []domain.LedgerLine) decimal.Decimal {
	totalDebits := decimal.Zero
	for _, line := range lines {
		if line.Side == domain.Debit {
			totalDebits = totalDebits.Add(line.Amount)
		}
	}
	return totalDebits
}
