package services

import (
	"context"
	"testing"
	"time"

	"github.com/lendbook/lendbook-api/internal/models"
	"github.com/lendbook/lendbook-api/internal/repository"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// loanFixture keeps the loan and its interest entries in memory behind the
// repository mocks so create/edit/refresh flows can be observed.
type loanFixture struct {
	loan    *models.Loan
	entries []*models.InterestEntry
	calls   []string
	svc     *LoanService
}

func newLoanFixture(t *testing.T, loan *models.Loan, now time.Time) *loanFixture {
	t.Helper()

	f := &loanFixture{loan: loan}

	loanRepo := &mockLoanRepository{
		mockFindByID: func(ctx context.Context, ownerID, id uint) (*models.Loan, error) {
			if f.loan != nil && ownerID == f.loan.UserID && id == f.loan.ID {
				return f.loan, nil
			}
			return nil, gorm.ErrRecordNotFound
		},
		mockCreate: func(ctx context.Context, l *models.Loan) error {
			l.ID = 1
			f.loan = l
			return nil
		},
		mockDelete: func(ctx context.Context, ownerID, id uint) error {
			f.calls = append(f.calls, "loan.Delete")
			f.loan = nil
			return nil
		},
	}
	interestRepo := &mockInterestRepository{
		mockCreate: func(ctx context.Context, entry *models.InterestEntry) error {
			entry.ID = uint(len(f.entries) + 1)
			f.entries = append(f.entries, entry)
			return nil
		},
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
		mockDeleteByLoan: func(ctx context.Context, ownerID, loanID uint) error {
			f.calls = append(f.calls, "interest.DeleteByLoan")
			f.entries = nil
			return nil
		},
	}
	paymentRepo := &mockPaymentRepository{
		mockDeleteByLoan: func(ctx context.Context, ownerID, loanID uint) error {
			f.calls = append(f.calls, "payment.DeleteByLoan")
			return nil
		},
	}
	clientRepo := &mockClientRepository{
		mockFindByID: func(ctx context.Context, ownerID, id uint) (*models.Client, error) {
			if id == 3 {
				return &models.Client{ID: 3, UserID: ownerID, GroupID: 1, Name: "Thandi M"}, nil
			}
			return nil, gorm.ErrRecordNotFound
		},
	}

	repos := &repository.Repositories{
		Loan:     loanRepo,
		Interest: interestRepo,
		Payment:  paymentRepo,
		Client:   clientRepo,
	}

	interestSvc := NewInterestService()
	interestSvc.now = func() time.Time { return now }

	f.svc = NewLoanService(repos, &mockTxManager{repos: repos}, interestSvc, NewAuditService(nil), decimal.RequireFromString("0.40"))
	f.svc.now = func() time.Time { return now }

	return f
}

func TestCreateLoan(t *testing.T) {
	now := date(2025, time.January, 10)
	f := newLoanFixture(t, nil, now)

	loan, err := f.svc.CreateLoan(context.Background(), 7, CreateLoanInput{
		ClientID:  3,
		Principal: decimal.RequireFromString("500"),
		LoanDate:  date(2025, time.January, 10),
		DueDate:   date(2025, time.February, 10),
	})
	require.NoError(t, err)

	assert.Equal(t, uint(7), loan.UserID)
	assert.True(t, decimal.RequireFromString("500").Equal(loan.OriginalPrincipal))
	assert.True(t, decimal.RequireFromString("500").Equal(loan.CurrentPrincipal))
	assert.Equal(t, date(2025, time.February, 10), loan.OriginalDueDate)
	assert.Equal(t, date(2025, time.February, 10), loan.CurrentDueDate)
	assert.True(t, decimal.RequireFromString("0.40").Equal(loan.InterestRate))
	assert.Equal(t, models.LoanStatusPartial, loan.Status)

	// The first month's interest is booked up front.
	require.Len(t, f.entries, 1)
	assert.Equal(t, date(2025, time.February, 10), f.entries[0].DueDate)
	assert.True(t, decimal.RequireFromString("200").Equal(f.entries[0].InterestAmount))
	assert.False(t, f.entries[0].IsPaid)
}

func TestCreateLoanValidation(t *testing.T) {
	now := date(2025, time.January, 10)
	f := newLoanFixture(t, nil, now)

	_, err := f.svc.CreateLoan(context.Background(), 7, CreateLoanInput{
		ClientID:  3,
		Principal: decimal.Zero,
		LoanDate:  date(2025, time.January, 10),
		DueDate:   date(2025, time.February, 10),
	})
	assert.ErrorIs(t, err, ErrInvalidArgument)

	_, err = f.svc.CreateLoan(context.Background(), 7, CreateLoanInput{
		ClientID:  3,
		Principal: decimal.RequireFromString("500"),
		LoanDate:  date(2025, time.February, 10),
		DueDate:   date(2025, time.January, 10),
	})
	assert.ErrorIs(t, err, ErrInvalidArgument)

	_, err = f.svc.CreateLoan(context.Background(), 7, CreateLoanInput{
		ClientID:  99,
		Principal: decimal.RequireFromString("500"),
		LoanDate:  date(2025, time.January, 10),
		DueDate:   date(2025, time.February, 10),
	})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestEditLoanResetsTermsWithSnapshotRate(t *testing.T) {
	now := date(2025, time.March, 1)
	loan := testLoan("500", date(2025, time.February, 10))
	// The loan was issued at 40%; a later config change must not touch it.
	loan.InterestRate = decimal.RequireFromString("0.40")

	f := newLoanFixture(t, loan, now)
	f.entries = []*models.InterestEntry{
		unpaidEntry(1, date(2025, time.February, 10), "200"),
	}
	f.svc.rate = decimal.RequireFromString("0.55")

	edited, err := f.svc.EditLoan(context.Background(), 7, 1, EditLoanInput{
		Principal: decimal.RequireFromString("800"),
		LoanDate:  date(2025, time.March, 1),
		DueDate:   date(2025, time.April, 1),
	})
	require.NoError(t, err)

	assert.True(t, decimal.RequireFromString("800").Equal(edited.OriginalPrincipal))
	assert.True(t, decimal.RequireFromString("800").Equal(edited.CurrentPrincipal))
	assert.Equal(t, date(2025, time.April, 1), edited.OriginalDueDate)
	assert.Equal(t, date(2025, time.April, 1), edited.CurrentDueDate)

	// Old entries are gone; the fresh entry uses the loan's own rate.
	assert.Contains(t, f.calls, "interest.DeleteByLoan")
	require.Len(t, f.entries, 1)
	assert.True(t, decimal.RequireFromString("320").Equal(f.entries[0].InterestAmount), f.entries[0].InterestAmount.String())
}

func TestDeleteLoanCascades(t *testing.T) {
	now := date(2025, time.March, 1)
	loan := testLoan("500", date(2025, time.April, 10))
	f := newLoanFixture(t, loan, now)

	err := f.svc.DeleteLoan(context.Background(), 7, 1)
	require.NoError(t, err)

	// Children go first.
	assert.Equal(t, []string{"payment.DeleteByLoan", "interest.DeleteByLoan", "loan.Delete"}, f.calls)

	err = f.svc.DeleteLoan(context.Background(), 7, 1)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestRefreshLoanSettledLoanAccruesNothing(t *testing.T) {
	now := date(2025, time.June, 1)
	loan := testLoan("0", date(2025, time.January, 15))
	loan.CurrentPrincipal = decimal.Zero
	loan.Status = models.LoanStatusOverdue

	f := newLoanFixture(t, loan, now)

	refreshed, err := f.svc.RefreshLoan(context.Background(), 7, 1)
	require.NoError(t, err)

	// Balance is zero, so the loan flips to paid and no interest entries
	// appear despite months of missed due dates.
	assert.Equal(t, models.LoanStatusPaid, refreshed.Status)
	assert.Empty(t, f.entries)
	assert.Equal(t, date(2025, time.January, 15), refreshed.CurrentDueDate)
}

func TestRefreshLoanAccruesMissedMonths(t *testing.T) {
	now := date(2025, time.April, 20)
	loan := testLoan("500", date(2025, time.February, 15))
	f := newLoanFixture(t, loan, now)

	refreshed, err := f.svc.RefreshLoan(context.Background(), 7, 1)
	require.NoError(t, err)

	// Feb, Mar and Apr were missed. The due date lands in May, but the loan
	// stays overdue while any of those months remains unpaid.
	require.Len(t, f.entries, 3)
	assert.Equal(t, date(2025, time.May, 15), refreshed.CurrentDueDate)
	assert.Equal(t, models.LoanStatusOverdue, refreshed.Status)
}

func TestRefreshLoanTwoMonthsPastDueGoesOverdue(t *testing.T) {
	now := date(2025, time.April, 15)
	loan := testLoan("500", date(2025, time.February, 15))
	f := newLoanFixture(t, loan, now)

	refreshed, err := f.svc.RefreshLoan(context.Background(), 7, 1)
	require.NoError(t, err)

	// Two missed months at 40% of R500 each; the due-date advance must not
	// wash the arrears out of the status.
	require.Len(t, f.entries, 2)
	assert.Equal(t, models.LoanStatusOverdue, refreshed.Status)
	assert.Equal(t, date(2025, time.April, 15), refreshed.CurrentDueDate)

	unpaid := decimal.Zero
	for _, e := range f.entries {
		unpaid = unpaid.Add(e.InterestAmount)
	}
	assert.True(t, decimal.RequireFromString("900").Equal(TotalOwed(refreshed.CurrentPrincipal, unpaid)))
}

func TestRefreshOwnedLoansSkipsFailures(t *testing.T) {
	now := date(2025, time.March, 1)
	loan := testLoan("500", date(2025, time.April, 10))
	f := newLoanFixture(t, loan, now)

	ids := []uint{1, 99}
	loanRepo := &mockLoanRepository{
		mockFindIDsNotPaid: func(ctx context.Context, ownerID uint) ([]uint, error) {
			return ids, nil
		},
		mockFindByID: func(ctx context.Context, ownerID, id uint) (*models.Loan, error) {
			if id == 1 {
				return f.loan, nil
			}
			return nil, gorm.ErrRecordNotFound
		},
	}
	repos := &repository.Repositories{
		Loan:     loanRepo,
		Interest: &mockInterestRepository{},
		Payment:  &mockPaymentRepository{},
		Client:   &mockClientRepository{},
	}
	interestSvc := NewInterestService()
	interestSvc.now = func() time.Time { return now }
	svc := NewLoanService(repos, &mockTxManager{repos: repos}, interestSvc, NewAuditService(nil), decimal.RequireFromString("0.40"))
	svc.now = func() time.Time { return now }

	refreshed, err := svc.RefreshOwnedLoans(context.Background(), 7)
	require.NoError(t, err)
	assert.Equal(t, 1, refreshed)
}
