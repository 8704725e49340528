package services

import (
	"context"
	"fmt"
	"time"

	"github.com/lendbook/lendbook-api/internal/models"
	"github.com/lendbook/lendbook-api/internal/repository"
	"github.com/lendbook/lendbook-api/pkg/logger"
)

// InterestService accrues monthly interest on loans whose due date has
// passed without full payment.
type InterestService struct {
	now func() time.Time
}

// NewInterestService creates a new interest accrual service
func NewInterestService() *InterestService {
	return &InterestService{now: time.Now}
}

// AccrueOverdueInterest walks the loan's due-date schedule from its current
// due date up to (but not including) today, creating one interest entry per
// missed month and advancing the due date as it goes. The walk is idempotent:
// a month that already has an entry is skipped but the due date still moves.
//
// The loan's in-memory due date and status are updated and persisted through
// the repositories in r, so callers must invoke this inside the loan's
// transaction. Returns the number of entries created.
func (s *InterestService) AccrueOverdueInterest(ctx context.Context, r *repository.Repositories, loan *models.Loan) (int, error) {
	today := dateOnly(s.now())
	due := dateOnly(loan.CurrentDueDate)
	anchor := loan.AnchorDay()

	created := 0
	advanced := false

	for due.Before(today) {
		exists, err := r.Interest.ExistsForDueDate(ctx, loan.UserID, loan.ID, due.Format("2006-01-02"))
		if err != nil {
			return created, fmt.Errorf("checking interest entry: %w", err)
		}

		if !exists {
			amount := loan.CurrentPrincipal.Mul(loan.InterestRate).Round(2)
			entry := &models.InterestEntry{
				LoanID:          loan.ID,
				UserID:          loan.UserID,
				DueDate:         due,
				InterestAmount:  amount,
				PrincipalAtTime: loan.CurrentPrincipal,
				AddedDate:       today,
				IsPaid:          false,
			}
			if err := r.Interest.Create(ctx, entry); err != nil {
				return created, fmt.Errorf("creating interest entry: %w", err)
			}
			created++

			logger.Info("accrued monthly interest",
				"loan_id", loan.ID,
				"due_date", due.Format("2006-01-02"),
				"amount", amount.String(),
			)
		}

		due = NextDueDate(due, anchor)
		advanced = true
	}

	if advanced {
		loan.CurrentDueDate = due
		if err := r.Loan.Update(ctx, loan); err != nil {
			return created, fmt.Errorf("advancing due date: %w", err)
		}
	}

	return created, nil
}
