package services

import (
	"testing"
	"time"

	"github.com/lendbook/lendbook-api/internal/models"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestResolveStatus(t *testing.T) {
	dueDate := date(2025, time.June, 15)

	tests := []struct {
		name           string
		principal      string
		unpaidInterest string
		today          time.Time
		missedDue      bool
		expected       string
	}{
		{
			name:           "Settled balance is paid",
			principal:      "0",
			unpaidInterest: "0",
			today:          date(2025, time.June, 1),
			expected:       models.LoanStatusPaid,
		},
		{
			name:           "Paid even when past due date",
			principal:      "0",
			unpaidInterest: "0",
			today:          date(2025, time.August, 1),
			expected:       models.LoanStatusPaid,
		},
		{
			name:           "Balance before due date is partial",
			principal:      "500",
			unpaidInterest: "200",
			today:          date(2025, time.June, 1),
			expected:       models.LoanStatusPartial,
		},
		{
			name:           "Balance on the due date is still partial",
			principal:      "500",
			unpaidInterest: "200",
			today:          date(2025, time.June, 15),
			expected:       models.LoanStatusPartial,
		},
		{
			name:           "Balance past due date is overdue",
			principal:      "500",
			unpaidInterest: "200",
			today:          date(2025, time.June, 16),
			expected:       models.LoanStatusOverdue,
		},
		{
			name:           "Interest-only balance past due date is overdue",
			principal:      "0",
			unpaidInterest: "0.01",
			today:          date(2025, time.July, 1),
			expected:       models.LoanStatusOverdue,
		},
		{
			name:           "Principal-only balance before due date is partial",
			principal:      "120.50",
			unpaidInterest: "0",
			today:          date(2025, time.June, 10),
			expected:       models.LoanStatusPartial,
		},
		{
			// Accrual walks current_due_date past today, so arrears show up
			// through the missed flag rather than the due date itself.
			name:           "Missed interest is overdue even before the advanced due date",
			principal:      "500",
			unpaidInterest: "400",
			today:          date(2025, time.June, 1),
			missedDue:      true,
			expected:       models.LoanStatusOverdue,
		},
		{
			name:           "Settled balance is paid regardless of missed flag",
			principal:      "0",
			unpaidInterest: "0",
			today:          date(2025, time.June, 1),
			missedDue:      true,
			expected:       models.LoanStatusPaid,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			principal := decimal.RequireFromString(tt.principal)
			unpaid := decimal.RequireFromString(tt.unpaidInterest)
			assert.Equal(t, tt.expected, ResolveStatus(principal, unpaid, dueDate, tt.today, tt.missedDue))
		})
	}
}

func TestSummarizeUnpaid(t *testing.T) {
	today := date(2025, time.April, 15)

	entries := []models.InterestEntry{
		{DueDate: date(2025, time.February, 15), InterestAmount: decimal.RequireFromString("200")},
		{DueDate: date(2025, time.March, 15), InterestAmount: decimal.RequireFromString("200"), IsPaid: true},
		{DueDate: date(2025, time.May, 15), InterestAmount: decimal.RequireFromString("200")},
	}

	sum, missed := SummarizeUnpaid(entries, today)
	assert.True(t, decimal.RequireFromString("400").Equal(sum), "paid entries are excluded")
	assert.True(t, missed, "February is unpaid and past due")

	sum, missed = SummarizeUnpaid(entries[2:], today)
	assert.True(t, decimal.RequireFromString("200").Equal(sum))
	assert.False(t, missed, "May has not arrived yet")

	sum, missed = SummarizeUnpaid(nil, today)
	assert.True(t, sum.IsZero())
	assert.False(t, missed)
}

func TestTotalOwed(t *testing.T) {
	principal := decimal.RequireFromString("500")
	unpaid := decimal.RequireFromString("400")
	assert.True(t, decimal.RequireFromString("900").Equal(TotalOwed(principal, unpaid)))

	assert.True(t, TotalOwed(decimal.Zero, decimal.Zero).IsZero())
}
