package services

import (
	"context"
	"testing"
	"time"

	"github.com/lendbook/lendbook-api/internal/models"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// paymentFixture wires a PaymentService to in-memory state so the waterfall
// can be observed end to end.
type paymentFixture struct {
	loan          *models.Loan
	entries       []*models.InterestEntry
	payments      []*models.Payment
	accrualCalled bool
	svc           *PaymentService
}

func newPaymentFixture(t *testing.T, loan *models.Loan, entries []*models.InterestEntry, now time.Time) *paymentFixture {
	t.Helper()

	f := &paymentFixture{loan: loan, entries: entries}

	loanRepo := &mockLoanRepository{
		mockFindByID: func(ctx context.Context, ownerID, id uint) (*models.Loan, error) {
			if ownerID == f.loan.UserID && id == f.loan.ID {
				return f.loan, nil
			}
			return nil, gorm.ErrRecordNotFound
		},
	}
	interestRepo := &mockInterestRepository{
		mockFindUnpaidByLoan: func(ctx context.Context, ownerID, loanID uint) ([]models.InterestEntry, error) {
			var unpaid []models.InterestEntry
			for _, e := range f.entries {
				if !e.IsPaid {
					unpaid = append(unpaid, *e)
				}
			}
			return unpaid, nil
		},
		mockSumUnpaidByLoan: func(ctx context.Context, ownerID, loanID uint) (decimal.Decimal, error) {
			sum := decimal.Zero
			for _, e := range f.entries {
				if !e.IsPaid {
					sum = sum.Add(e.InterestAmount)
				}
			}
			return sum, nil
		},
		mockExistsForDueDate: func(ctx context.Context, ownerID, loanID uint, dueDate string) (bool, error) {
			f.accrualCalled = true
			return true, nil
		},
		mockUpdate: func(ctx context.Context, entry *models.InterestEntry) error {
			for _, e := range f.entries {
				if e.ID == entry.ID {
					*e = *entry
					return nil
				}
			}
			return nil
		},
	}
	paymentRepo := &mockPaymentRepository{
		mockCreate: func(ctx context.Context, payment *models.Payment) error {
			payment.ID = uint(len(f.payments) + 1)
			f.payments = append(f.payments, payment)
			return nil
		},
	}

	repos := newTestRepos(loanRepo, interestRepo, paymentRepo, nil)
	interestSvc := NewInterestService()
	interestSvc.now = func() time.Time { return now }

	f.svc = NewPaymentService(repos, &mockTxManager{repos: repos}, interestSvc, NewAuditService(nil))
	f.svc.now = func() time.Time { return now }

	return f
}

func unpaidEntry(id uint, dueDate time.Time, amount string) *models.InterestEntry {
	return &models.InterestEntry{
		ID:              id,
		LoanID:          1,
		UserID:          7,
		DueDate:         dueDate,
		InterestAmount:  decimal.RequireFromString(amount),
		PrincipalAtTime: decimal.RequireFromString("500"),
		AddedDate:       dueDate,
	}
}

func TestApplyPaymentInterestFirstOldestFirst(t *testing.T) {
	now := date(2025, time.March, 1)
	loan := testLoan("500", date(2025, time.March, 15))
	f := newPaymentFixture(t, loan, []*models.InterestEntry{
		unpaidEntry(1, date(2025, time.January, 15), "200"),
		unpaidEntry(2, date(2025, time.February, 15), "200"),
	}, now)

	payment, err := f.svc.ApplyPayment(context.Background(), 7, 1, decimal.RequireFromString("300"), now)
	require.NoError(t, err)

	// 300 settles January in full and bites 100 out of February.
	assert.True(t, f.entries[0].IsPaid)
	assert.True(t, decimal.RequireFromString("200").Equal(f.entries[0].InterestAmount), "settled entry keeps its amount")
	assert.False(t, f.entries[1].IsPaid)
	assert.True(t, decimal.RequireFromString("100").Equal(f.entries[1].InterestAmount))

	// Principal is untouched until interest is clear.
	assert.True(t, decimal.RequireFromString("500").Equal(loan.CurrentPrincipal))
	assert.True(t, decimal.RequireFromString("300").Equal(payment.AppliedToInterest))
	assert.True(t, payment.AppliedToPrincipal.IsZero())
	assert.True(t, payment.RemainingAmount.IsZero())

	// February's interest is still open and past due, so the partial
	// payment does not clear the arrears.
	assert.Equal(t, models.LoanStatusOverdue, loan.Status)
}

func TestApplyPaymentSpillsIntoPrincipal(t *testing.T) {
	now := date(2025, time.March, 1)
	loan := testLoan("500", date(2025, time.March, 15))
	f := newPaymentFixture(t, loan, []*models.InterestEntry{
		unpaidEntry(1, date(2025, time.January, 15), "200"),
		unpaidEntry(2, date(2025, time.February, 15), "200"),
	}, now)

	payment, err := f.svc.ApplyPayment(context.Background(), 7, 1, decimal.RequireFromString("450"), now)
	require.NoError(t, err)

	assert.True(t, decimal.RequireFromString("400").Equal(payment.AppliedToInterest))
	assert.True(t, decimal.RequireFromString("50").Equal(payment.AppliedToPrincipal))
	assert.True(t, decimal.RequireFromString("450").Equal(loan.CurrentPrincipal))
	assert.Equal(t, models.LoanStatusPartial, loan.Status)
}

func TestApplyPaymentFullPayoff(t *testing.T) {
	now := date(2025, time.March, 1)
	loan := testLoan("500", date(2025, time.March, 15))
	f := newPaymentFixture(t, loan, []*models.InterestEntry{
		unpaidEntry(1, date(2025, time.January, 15), "200"),
		unpaidEntry(2, date(2025, time.February, 15), "200"),
	}, now)

	payment, err := f.svc.ApplyPayment(context.Background(), 7, 1, decimal.RequireFromString("900"), now)
	require.NoError(t, err)

	assert.True(t, decimal.RequireFromString("400").Equal(payment.AppliedToInterest))
	assert.True(t, decimal.RequireFromString("500").Equal(payment.AppliedToPrincipal))
	assert.True(t, payment.RemainingAmount.IsZero())
	assert.True(t, loan.CurrentPrincipal.IsZero())
	assert.Equal(t, models.LoanStatusPaid, loan.Status)
}

func TestApplyPaymentOverpaymentKeepsSurplus(t *testing.T) {
	now := date(2025, time.March, 1)
	loan := testLoan("500", date(2025, time.March, 15))
	f := newPaymentFixture(t, loan, []*models.InterestEntry{
		unpaidEntry(1, date(2025, time.January, 15), "200"),
		unpaidEntry(2, date(2025, time.February, 15), "200"),
	}, now)

	payment, err := f.svc.ApplyPayment(context.Background(), 7, 1, decimal.RequireFromString("1000"), now)
	require.NoError(t, err)

	// Principal never goes negative; the surplus stays on the payment.
	assert.True(t, loan.CurrentPrincipal.IsZero())
	assert.True(t, decimal.RequireFromString("100").Equal(payment.RemainingAmount))
	assert.True(t, payment.IsOverpayment())
	assert.Equal(t, models.LoanStatusPaid, loan.Status)

	// Every cent of the payment is accounted for.
	total := payment.AppliedToInterest.Add(payment.AppliedToPrincipal).Add(payment.RemainingAmount)
	assert.True(t, payment.Amount.Equal(total))
}

func TestApplyPaymentSkipsAccrualOnPaidLoan(t *testing.T) {
	now := date(2025, time.June, 1)
	loan := testLoan("0", date(2025, time.January, 15))
	loan.CurrentPrincipal = decimal.Zero
	loan.Status = models.LoanStatusPaid

	f := newPaymentFixture(t, loan, nil, now)

	payment, err := f.svc.ApplyPayment(context.Background(), 7, 1, decimal.RequireFromString("50"), now)
	require.NoError(t, err)

	// No new interest months appear on a settled loan, even long past due.
	assert.False(t, f.accrualCalled)
	assert.True(t, decimal.RequireFromString("50").Equal(payment.RemainingAmount))
	assert.Equal(t, models.LoanStatusPaid, loan.Status)
}

func TestApplyPaymentValidation(t *testing.T) {
	now := date(2025, time.March, 1)
	loan := testLoan("500", date(2025, time.March, 15))
	f := newPaymentFixture(t, loan, nil, now)

	_, err := f.svc.ApplyPayment(context.Background(), 7, 1, decimal.Zero, now)
	assert.ErrorIs(t, err, ErrInvalidArgument)

	_, err = f.svc.ApplyPayment(context.Background(), 7, 1, decimal.RequireFromString("-10"), now)
	assert.ErrorIs(t, err, ErrInvalidArgument)

	_, err = f.svc.ApplyPayment(context.Background(), 7, 99, decimal.RequireFromString("10"), now)
	assert.ErrorIs(t, err, ErrNotFound)
}
