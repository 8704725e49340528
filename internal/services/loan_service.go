package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/lendbook/lendbook-api/internal/models"
	"github.com/lendbook/lendbook-api/internal/repository"
	"github.com/lendbook/lendbook-api/pkg/logger"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// LoanService orchestrates the loan lifecycle: creation, edits, deletion and
// the accrue-then-resolve refresh that keeps balances and statuses current.
type LoanService struct {
	repos    *repository.Repositories
	txm      repository.TxManager
	interest *InterestService
	audit    *AuditService
	rate     decimal.Decimal
	now      func() time.Time
}

// NewLoanService creates a new loan service. rate is the monthly interest
// rate snapshotted onto new loans.
func NewLoanService(repos *repository.Repositories, txm repository.TxManager, interest *InterestService, audit *AuditService, rate decimal.Decimal) *LoanService {
	return &LoanService{
		repos:    repos,
		txm:      txm,
		interest: interest,
		audit:    audit,
		rate:     rate,
		now:      time.Now,
	}
}

// CreateLoanInput carries the fields needed to issue a loan
type CreateLoanInput struct {
	ClientID  uint
	Principal decimal.Decimal
	LoanDate  time.Time
	DueDate   time.Time
}

// CreateLoan issues a loan to a client: the loan row, its first interest
// entry (due on the first due date) and the initial status, all in one
// transaction.
func (s *LoanService) CreateLoan(ctx context.Context, ownerID uint, input CreateLoanInput) (*models.Loan, error) {
	principal := input.Principal.Round(2)
	if !principal.IsPositive() {
		return nil, fmt.Errorf("%w: principal must be positive", ErrInvalidArgument)
	}
	if input.DueDate.Before(input.LoanDate) {
		return nil, fmt.Errorf("%w: due date before loan date", ErrInvalidArgument)
	}

	var loan *models.Loan

	err := s.txm.WithinTransaction(ctx, func(r *repository.Repositories) error {
		if _, err := r.Client.FindByID(ctx, ownerID, input.ClientID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return fmt.Errorf("loading client: %w", err)
		}

		loan = &models.Loan{
			UserID:            ownerID,
			ClientID:          input.ClientID,
			LoanDate:          dateOnly(input.LoanDate),
			OriginalPrincipal: principal,
			CurrentPrincipal:  principal,
			OriginalDueDate:   dateOnly(input.DueDate),
			CurrentDueDate:    dateOnly(input.DueDate),
			InterestRate:      s.rate,
			Status:            models.LoanStatusPartial,
		}
		if err := r.Loan.Create(ctx, loan); err != nil {
			return fmt.Errorf("creating loan: %w", err)
		}

		entry := &models.InterestEntry{
			LoanID:          loan.ID,
			UserID:          ownerID,
			DueDate:         loan.OriginalDueDate,
			InterestAmount:  principal.Mul(s.rate).Round(2),
			PrincipalAtTime: principal,
			AddedDate:       dateOnly(s.now()),
			IsPaid:          false,
		}
		if err := r.Interest.Create(ctx, entry); err != nil {
			return fmt.Errorf("creating first interest entry: %w", err)
		}

		return s.refreshWithin(ctx, r, loan)
	})
	if err != nil {
		return nil, err
	}

	logger.Info("loan created",
		"loan_id", loan.ID,
		"client_id", loan.ClientID,
		"principal", principal.String(),
	)
	s.audit.LogAction(ownerID, "CREATE", "Loan", loan.ID,
		fmt.Sprintf("issued %s to client %d", principal.String(), loan.ClientID), "", "")

	return loan, nil
}

// EditLoanInput carries the fields a loan edit may replace
type EditLoanInput struct {
	Principal decimal.Decimal
	LoanDate  time.Time
	DueDate   time.Time
}

// EditLoan resets a loan to new terms: both principal figures, both due
// dates, a fresh interest entry for the new schedule, then a refresh. All
// existing interest entries are dropped; payments stay as history.
func (s *LoanService) EditLoan(ctx context.Context, ownerID, loanID uint, input EditLoanInput) (*models.Loan, error) {
	principal := input.Principal.Round(2)
	if !principal.IsPositive() {
		return nil, fmt.Errorf("%w: principal must be positive", ErrInvalidArgument)
	}
	if input.DueDate.Before(input.LoanDate) {
		return nil, fmt.Errorf("%w: due date before loan date", ErrInvalidArgument)
	}

	var loan *models.Loan

	err := s.txm.WithinTransaction(ctx, func(r *repository.Repositories) error {
		var err error
		loan, err = r.Loan.FindByID(ctx, ownerID, loanID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return fmt.Errorf("loading loan: %w", err)
		}

		loan.LoanDate = dateOnly(input.LoanDate)
		loan.OriginalPrincipal = principal
		loan.CurrentPrincipal = principal
		loan.OriginalDueDate = dateOnly(input.DueDate)
		loan.CurrentDueDate = dateOnly(input.DueDate)

		if err := r.Interest.DeleteByLoan(ctx, ownerID, loanID); err != nil {
			return fmt.Errorf("clearing interest entries: %w", err)
		}

		entry := &models.InterestEntry{
			LoanID:          loan.ID,
			UserID:          ownerID,
			DueDate:         loan.OriginalDueDate,
			InterestAmount:  principal.Mul(loan.InterestRate).Round(2),
			PrincipalAtTime: principal,
			AddedDate:       dateOnly(s.now()),
			IsPaid:          false,
		}
		if err := r.Interest.Create(ctx, entry); err != nil {
			return fmt.Errorf("recreating interest entry: %w", err)
		}

		return s.refreshWithin(ctx, r, loan)
	})
	if err != nil {
		return nil, err
	}

	s.audit.LogAction(ownerID, "UPDATE", "Loan", loan.ID,
		fmt.Sprintf("reset to principal %s due %s", principal.String(), loan.OriginalDueDate.Format("2006-01-02")), "", "")

	return loan, nil
}

// DeleteLoan removes a loan and everything hanging off it, children first,
// in one transaction.
func (s *LoanService) DeleteLoan(ctx context.Context, ownerID, loanID uint) error {
	err := s.txm.WithinTransaction(ctx, func(r *repository.Repositories) error {
		if _, err := r.Loan.FindByID(ctx, ownerID, loanID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return fmt.Errorf("loading loan: %w", err)
		}

		if err := r.Payment.DeleteByLoan(ctx, ownerID, loanID); err != nil {
			return fmt.Errorf("deleting payments: %w", err)
		}
		if err := r.Interest.DeleteByLoan(ctx, ownerID, loanID); err != nil {
			return fmt.Errorf("deleting interest entries: %w", err)
		}
		if err := r.Loan.Delete(ctx, ownerID, loanID); err != nil {
			return fmt.Errorf("deleting loan: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.audit.LogAction(ownerID, "DELETE", "Loan", loanID, "loan deleted with payments and interest entries", "", "")
	return nil
}

// RefreshLoan accrues any missed interest and re-derives the loan's status
// inside its own transaction.
func (s *LoanService) RefreshLoan(ctx context.Context, ownerID, loanID uint) (*models.Loan, error) {
	var loan *models.Loan

	err := s.txm.WithinTransaction(ctx, func(r *repository.Repositories) error {
		var err error
		loan, err = r.Loan.FindByID(ctx, ownerID, loanID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return fmt.Errorf("loading loan: %w", err)
		}
		return s.refreshWithin(ctx, r, loan)
	})
	if err != nil {
		return nil, err
	}
	return loan, nil
}

// refreshWithin runs accrue-then-resolve against an already-loaded loan
// inside the caller's transaction.
func (s *LoanService) refreshWithin(ctx context.Context, r *repository.Repositories, loan *models.Loan) error {
	entries, err := r.Interest.FindUnpaidByLoan(ctx, loan.UserID, loan.ID)
	if err != nil {
		return fmt.Errorf("loading unpaid interest: %w", err)
	}
	unpaid, missed := SummarizeUnpaid(entries, s.now())

	// Settled loans accrue nothing; the due date stays where it stopped.
	if ResolveStatus(loan.CurrentPrincipal, unpaid, loan.CurrentDueDate, s.now(), missed) != models.LoanStatusPaid {
		if _, err := s.interest.AccrueOverdueInterest(ctx, r, loan); err != nil {
			return err
		}
		entries, err = r.Interest.FindUnpaidByLoan(ctx, loan.UserID, loan.ID)
		if err != nil {
			return fmt.Errorf("loading unpaid interest: %w", err)
		}
		unpaid, missed = SummarizeUnpaid(entries, s.now())
	}

	loan.Status = ResolveStatus(loan.CurrentPrincipal, unpaid, loan.CurrentDueDate, s.now(), missed)
	if err := r.Loan.Update(ctx, loan); err != nil {
		return fmt.Errorf("updating loan: %w", err)
	}
	return nil
}

// RefreshOwnedLoans refreshes every unsettled loan belonging to one user.
// Each loan runs in its own transaction; one failure does not stop the rest.
func (s *LoanService) RefreshOwnedLoans(ctx context.Context, ownerID uint) (int, error) {
	ids, err := s.repos.Loan.FindIDsNotPaid(ctx, ownerID)
	if err != nil {
		return 0, fmt.Errorf("listing loans: %w", err)
	}

	refreshed := 0
	for _, id := range ids {
		if _, err := s.RefreshLoan(ctx, ownerID, id); err != nil {
			logger.Error("loan refresh failed", "loan_id", id, "error", err)
			continue
		}
		refreshed++
	}
	return refreshed, nil
}

// RefreshAllLoans refreshes every unsettled loan in the system. Driven by
// the nightly job.
func (s *LoanService) RefreshAllLoans(ctx context.Context) (int, error) {
	loans, err := s.repos.Loan.FindAllNotPaid(ctx)
	if err != nil {
		return 0, fmt.Errorf("listing loans: %w", err)
	}

	refreshed := 0
	for _, l := range loans {
		if _, err := s.RefreshLoan(ctx, l.UserID, l.ID); err != nil {
			logger.Error("loan refresh failed", "loan_id", l.ID, "error", err)
			continue
		}
		refreshed++
	}

	logger.Info("loan refresh pass complete", "refreshed", refreshed, "total", len(loans))
	return refreshed, nil
}

// GetLoan returns a loan with its client preloaded
func (s *LoanService) GetLoan(ctx context.Context, ownerID, loanID uint) (*models.Loan, error) {
	loan, err := s.repos.Loan.FindByID(ctx, ownerID, loanID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return loan, nil
}

// GetLoanSummary returns the loan's live balances after a refresh
func (s *LoanService) GetLoanSummary(ctx context.Context, ownerID, loanID uint) (*models.LoanSummary, error) {
	loan, err := s.RefreshLoan(ctx, ownerID, loanID)
	if err != nil {
		return nil, err
	}

	unpaid, err := s.repos.Interest.SumUnpaidByLoan(ctx, ownerID, loanID)
	if err != nil {
		return nil, fmt.Errorf("summing unpaid interest: %w", err)
	}

	return &models.LoanSummary{
		LoanID:         loan.ID,
		Principal:      loan.CurrentPrincipal,
		UnpaidInterest: unpaid,
		TotalOwed:      TotalOwed(loan.CurrentPrincipal, unpaid),
		Status:         loan.Status,
		DueDate:        loan.CurrentDueDate.Format("2006-01-02"),
	}, nil
}

// ListUnpaidInterest returns the loan's open interest entries, oldest first
func (s *LoanService) ListUnpaidInterest(ctx context.Context, ownerID, loanID uint) ([]models.InterestEntry, error) {
	if _, err := s.GetLoan(ctx, ownerID, loanID); err != nil {
		return nil, err
	}
	return s.repos.Interest.FindUnpaidByLoan(ctx, ownerID, loanID)
}

// ListInterestEntries returns the loan's full accrual history
func (s *LoanService) ListInterestEntries(ctx context.Context, ownerID, loanID uint) ([]models.InterestEntry, error) {
	if _, err := s.GetLoan(ctx, ownerID, loanID); err != nil {
		return nil, err
	}
	return s.repos.Interest.FindByLoan(ctx, ownerID, loanID)
}

// List returns a filtered, paginated page of loans
func (s *LoanService) List(ctx context.Context, ownerID uint, query *repository.ListQuery) ([]models.Loan, int64, error) {
	return s.repos.Loan.List(ctx, ownerID, query)
}

// BuildResponse assembles the response payload for one loan, pulling the
// unpaid-interest and collected sums from the child rows.
func (s *LoanService) BuildResponse(ctx context.Context, ownerID uint, loan *models.Loan) (models.LoanResponse, error) {
	unpaid, err := s.repos.Interest.SumUnpaidByLoan(ctx, ownerID, loan.ID)
	if err != nil {
		return models.LoanResponse{}, fmt.Errorf("summing unpaid interest: %w", err)
	}
	paid, err := s.repos.Payment.SumByLoan(ctx, ownerID, loan.ID)
	if err != nil {
		return models.LoanResponse{}, fmt.Errorf("summing payments: %w", err)
	}
	return loan.ToResponse(unpaid, paid), nil
}

// BuildResponses assembles response payloads for a page of loans
func (s *LoanService) BuildResponses(ctx context.Context, ownerID uint, loans []models.Loan) ([]models.LoanResponse, error) {
	responses := make([]models.LoanResponse, 0, len(loans))
	for i := range loans {
		resp, err := s.BuildResponse(ctx, ownerID, &loans[i])
		if err != nil {
			return nil, err
		}
		responses = append(responses, resp)
	}
	return responses, nil
}

// DashboardStats aggregates the figures the dashboard shows
type DashboardStats struct {
	LoansByStatus        map[string]int64 `json:"loans_by_status"`
	OutstandingPrincipal decimal.Decimal  `json:"outstanding_principal"`
	UnpaidInterest       decimal.Decimal  `json:"unpaid_interest"`
	CollectedThisMonth   decimal.Decimal  `json:"collected_this_month"`
}

// GetDashboardStats computes the dashboard aggregates for one user
func (s *LoanService) GetDashboardStats(ctx context.Context, ownerID uint) (*DashboardStats, error) {
	counts, err := s.repos.Loan.CountByStatus(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("counting loans: %w", err)
	}

	query := repository.NewListQuery()
	query.PerPage = 0
	loans, _, err := s.repos.Loan.List(ctx, ownerID, query)
	if err != nil {
		return nil, fmt.Errorf("listing loans: %w", err)
	}

	outstanding := decimal.Zero
	unpaid := decimal.Zero
	for i := range loans {
		if loans[i].IsPaid() {
			continue
		}
		outstanding = outstanding.Add(loans[i].CurrentPrincipal)

		sum, err := s.repos.Interest.SumUnpaidByLoan(ctx, ownerID, loans[i].ID)
		if err != nil {
			return nil, fmt.Errorf("summing unpaid interest: %w", err)
		}
		unpaid = unpaid.Add(sum)
	}

	today := s.now()
	collected, err := s.repos.Payment.SumByMonth(ctx, ownerID, today.Year(), int(today.Month()))
	if err != nil {
		return nil, fmt.Errorf("summing payments: %w", err)
	}

	return &DashboardStats{
		LoansByStatus:        counts,
		OutstandingPrincipal: outstanding.Round(2),
		UnpaidInterest:       unpaid.Round(2),
		CollectedThisMonth:   collected.Round(2),
	}, nil
}
