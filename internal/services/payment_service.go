package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lendbook/lendbook-api/internal/models"
	"github.com/lendbook/lendbook-api/internal/repository"
	"github.com/lendbook/lendbook-api/pkg/logger"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// PaymentService applies payments to loans using an interest-first waterfall.
type PaymentService struct {
	repos    *repository.Repositories
	txm      repository.TxManager
	interest *InterestService
	audit    *AuditService
	now      func() time.Time
}

// NewPaymentService creates a new payment service
func NewPaymentService(repos *repository.Repositories, txm repository.TxManager, interest *InterestService, audit *AuditService) *PaymentService {
	return &PaymentService{
		repos:    repos,
		txm:      txm,
		interest: interest,
		audit:    audit,
		now:      time.Now,
	}
}

// ApplyPayment allocates a payment against a loan inside one transaction:
// accrue any missed interest first, then pay down unpaid interest entries
// oldest first, then principal, then record the payment and re-derive the
// loan status. Any surplus beyond the full balance stays on the payment as
// remaining_amount.
func (s *PaymentService) ApplyPayment(ctx context.Context, ownerID, loanID uint, amount decimal.Decimal, paymentDate time.Time) (*models.Payment, error) {
	amount = amount.Round(2)
	if !amount.IsPositive() {
		return nil, fmt.Errorf("%w: payment amount must be positive", ErrInvalidArgument)
	}
	if paymentDate.IsZero() {
		paymentDate = s.now()
	}

	var payment *models.Payment

	err := s.txm.WithinTransaction(ctx, func(r *repository.Repositories) error {
		loan, err := r.Loan.FindByID(ctx, ownerID, loanID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return fmt.Errorf("loading loan: %w", err)
		}

		if !loan.IsPaid() {
			if _, err := s.interest.AccrueOverdueInterest(ctx, r, loan); err != nil {
				return err
			}
		}

		entries, err := r.Interest.FindUnpaidByLoan(ctx, ownerID, loanID)
		if err != nil {
			return fmt.Errorf("loading unpaid interest: %w", err)
		}

		left := amount
		appliedToInterest := decimal.Zero

		for i := range entries {
			if !left.IsPositive() {
				break
			}
			entry := &entries[i]

			if left.GreaterThanOrEqual(entry.InterestAmount) {
				// Full settlement flips the flag and keeps the amount for
				// the record.
				left = left.Sub(entry.InterestAmount).Round(2)
				appliedToInterest = appliedToInterest.Add(entry.InterestAmount).Round(2)
				entry.IsPaid = true
			} else {
				entry.InterestAmount = entry.InterestAmount.Sub(left).Round(2)
				appliedToInterest = appliedToInterest.Add(left).Round(2)
				left = decimal.Zero
			}

			if err := r.Interest.Update(ctx, entry); err != nil {
				return fmt.Errorf("updating interest entry: %w", err)
			}
		}

		appliedToPrincipal := decimal.Min(left, loan.CurrentPrincipal).Round(2)
		loan.CurrentPrincipal = loan.CurrentPrincipal.Sub(appliedToPrincipal).Round(2)
		left = left.Sub(appliedToPrincipal).Round(2)

		if left.IsPositive() {
			logger.Warn("payment exceeds loan balance",
				"loan_id", loan.ID,
				"surplus", left.String(),
			)
		}

		payment = &models.Payment{
			LoanID:             loan.ID,
			UserID:             ownerID,
			Reference:          uuid.NewString(),
			Amount:             amount,
			PaymentDate:        dateOnly(paymentDate),
			AppliedToInterest:  appliedToInterest,
			AppliedToPrincipal: appliedToPrincipal,
			RemainingAmount:    left,
		}
		if err := r.Payment.Create(ctx, payment); err != nil {
			return fmt.Errorf("recording payment: %w", err)
		}

		remaining, err := r.Interest.FindUnpaidByLoan(ctx, ownerID, loanID)
		if err != nil {
			return fmt.Errorf("loading unpaid interest: %w", err)
		}
		unpaid, missed := SummarizeUnpaid(remaining, s.now())

		loan.Status = ResolveStatus(loan.CurrentPrincipal, unpaid, loan.CurrentDueDate, s.now(), missed)
		if err := r.Loan.Update(ctx, loan); err != nil {
			return fmt.Errorf("updating loan: %w", err)
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.Info("payment applied",
		"loan_id", loanID,
		"amount", amount.String(),
		"to_interest", payment.AppliedToInterest.String(),
		"to_principal", payment.AppliedToPrincipal.String(),
	)

	s.audit.LogAction(ownerID, "PAYMENT", "Payment", payment.ID,
		fmt.Sprintf("applied %s to loan %d", amount.String(), loanID), "", "")

	return payment, nil
}

// GetPayment returns a single payment by ID
func (s *PaymentService) GetPayment(ctx context.Context, ownerID, id uint) (*models.Payment, error) {
	payment, err := s.repos.Payment.FindByID(ctx, ownerID, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return payment, nil
}

// ListByLoan returns all payments recorded against a loan, oldest first
func (s *PaymentService) ListByLoan(ctx context.Context, ownerID, loanID uint) ([]models.Payment, error) {
	if _, err := s.repos.Loan.FindByID(ctx, ownerID, loanID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return s.repos.Payment.FindByLoan(ctx, ownerID, loanID)
}

// ListRecent returns the latest payments across all of the user's loans
func (s *PaymentService) ListRecent(ctx context.Context, ownerID uint, limit int) ([]models.Payment, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	return s.repos.Payment.ListRecent(ctx, ownerID, limit)
}
