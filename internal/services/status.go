package services

import (
	"time"

	"github.com/lendbook/lendbook-api/internal/models"
	"github.com/shopspring/decimal"
)

// TotalOwed is the full balance on a loan: live principal plus the unpaid
// remainder of every interest entry.
func TotalOwed(principal, unpaidInterest decimal.Decimal) decimal.Decimal {
	return principal.Add(unpaidInterest).Round(2)
}

// ResolveStatus derives a loan's status from its balances and due date.
//
// The result is a pure function of its inputs: a settled balance is Paid, an
// outstanding balance past its due date is Overdue, anything else is Partial.
// missedDue reports whether the loan still carries interest from an earlier
// due date; accrual advances current_due_date past today, so without it a
// refreshed loan months in arrears would read as Partial.
// Callers persist the result; nothing else ever writes loan status.
func ResolveStatus(principal, unpaidInterest decimal.Decimal, dueDate, today time.Time, missedDue bool) string {
	if TotalOwed(principal, unpaidInterest).Sign() <= 0 {
		return models.LoanStatusPaid
	}
	if missedDue || dateOnly(today).After(dateOnly(dueDate)) {
		return models.LoanStatusOverdue
	}
	return models.LoanStatusPartial
}

// SummarizeUnpaid totals a loan's open interest entries and reports whether
// any of their due dates has already passed.
func SummarizeUnpaid(entries []models.InterestEntry, today time.Time) (decimal.Decimal, bool) {
	sum := decimal.Zero
	missed := false
	for i := range entries {
		if entries[i].IsPaid {
			continue
		}
		sum = sum.Add(entries[i].InterestAmount)
		if dateOnly(today).After(dateOnly(entries[i].DueDate)) {
			missed = true
		}
	}
	return sum.Round(2), missed
}
