package services

import (
	"context"
	"time"

	"github.com/lendbook/lendbook-api/internal/models"
	"github.com/lendbook/lendbook-api/internal/repository"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Mock LoanRepository
type mockLoanRepository struct {
	mockFindByID       func(ctx context.Context, ownerID, id uint) (*models.Loan, error)
	mockFindIDsNotPaid func(ctx context.Context, ownerID uint) ([]uint, error)
	mockFindAllNotPaid func(ctx context.Context) ([]models.Loan, error)
	mockCreate         func(ctx context.Context, loan *models.Loan) error
	mockUpdate         func(ctx context.Context, loan *models.Loan) error
	mockDelete         func(ctx context.Context, ownerID, id uint) error
	mockCountByStatus  func(ctx context.Context, ownerID uint) (map[string]int64, error)
}

func (m *mockLoanRepository) FindByID(ctx context.Context, ownerID, id uint) (*models.Loan, error) {
	if m.mockFindByID != nil {
		return m.mockFindByID(ctx, ownerID, id)
	}
	return nil, gorm.ErrRecordNotFound
}
func (m *mockLoanRepository) FindByClient(ctx context.Context, ownerID, clientID uint) ([]models.Loan, error) {
	return nil, nil
}
func (m *mockLoanRepository) FindIDsNotPaid(ctx context.Context, ownerID uint) ([]uint, error) {
	if m.mockFindIDsNotPaid != nil {
		return m.mockFindIDsNotPaid(ctx, ownerID)
	}
	return nil, nil
}
func (m *mockLoanRepository) FindAllNotPaid(ctx context.Context) ([]models.Loan, error) {
	if m.mockFindAllNotPaid != nil {
		return m.mockFindAllNotPaid(ctx)
	}
	return nil, nil
}
func (m *mockLoanRepository) List(ctx context.Context, ownerID uint, query *repository.ListQuery) ([]models.Loan, int64, error) {
	return nil, 0, nil
}
func (m *mockLoanRepository) Create(ctx context.Context, loan *models.Loan) error {
	if m.mockCreate != nil {
		return m.mockCreate(ctx, loan)
	}
	return nil
}
func (m *mockLoanRepository) Update(ctx context.Context, loan *models.Loan) error {
	if m.mockUpdate != nil {
		return m.mockUpdate(ctx, loan)
	}
	return nil
}
func (m *mockLoanRepository) Delete(ctx context.Context, ownerID, id uint) error {
	if m.mockDelete != nil {
		return m.mockDelete(ctx, ownerID, id)
	}
	return nil
}
func (m *mockLoanRepository) CountByStatus(ctx context.Context, ownerID uint) (map[string]int64, error) {
	if m.mockCountByStatus != nil {
		return m.mockCountByStatus(ctx, ownerID)
	}
	return map[string]int64{}, nil
}

// Mock InterestRepository
type mockInterestRepository struct {
	mockFindByLoan       func(ctx context.Context, ownerID, loanID uint) ([]models.InterestEntry, error)
	mockFindUnpaidByLoan func(ctx context.Context, ownerID, loanID uint) ([]models.InterestEntry, error)
	mockSumUnpaidByLoan  func(ctx context.Context, ownerID, loanID uint) (decimal.Decimal, error)
	mockExistsForDueDate func(ctx context.Context, ownerID, loanID uint, dueDate string) (bool, error)
	mockCreate           func(ctx context.Context, entry *models.InterestEntry) error
	mockUpdate           func(ctx context.Context, entry *models.InterestEntry) error
	mockDeleteByLoan     func(ctx context.Context, ownerID, loanID uint) error
}

func (m *mockInterestRepository) FindByLoan(ctx context.Context, ownerID, loanID uint) ([]models.InterestEntry, error) {
	if m.mockFindByLoan != nil {
		return m.mockFindByLoan(ctx, ownerID, loanID)
	}
	return nil, nil
}
func (m *mockInterestRepository) FindUnpaidByLoan(ctx context.Context, ownerID, loanID uint) ([]models.InterestEntry, error) {
	if m.mockFindUnpaidByLoan != nil {
		return m.mockFindUnpaidByLoan(ctx, ownerID, loanID)
	}
	return nil, nil
}
func (m *mockInterestRepository) SumUnpaidByLoan(ctx context.Context, ownerID, loanID uint) (decimal.Decimal, error) {
	if m.mockSumUnpaidByLoan != nil {
		return m.mockSumUnpaidByLoan(ctx, ownerID, loanID)
	}
	return decimal.Zero, nil
}
func (m *mockInterestRepository) ExistsForDueDate(ctx context.Context, ownerID, loanID uint, dueDate string) (bool, error) {
	if m.mockExistsForDueDate != nil {
		return m.mockExistsForDueDate(ctx, ownerID, loanID, dueDate)
	}
	return false, nil
}
func (m *mockInterestRepository) Create(ctx context.Context, entry *models.InterestEntry) error {
	if m.mockCreate != nil {
		return m.mockCreate(ctx, entry)
	}
	return nil
}
func (m *mockInterestRepository) Update(ctx context.Context, entry *models.InterestEntry) error {
	if m.mockUpdate != nil {
		return m.mockUpdate(ctx, entry)
	}
	return nil
}
func (m *mockInterestRepository) DeleteByLoan(ctx context.Context, ownerID, loanID uint) error {
	if m.mockDeleteByLoan != nil {
		return m.mockDeleteByLoan(ctx, ownerID, loanID)
	}
	return nil
}

// Mock PaymentRepository
type mockPaymentRepository struct {
	mockFindByID     func(ctx context.Context, ownerID, id uint) (*models.Payment, error)
	mockFindByLoan   func(ctx context.Context, ownerID, loanID uint) ([]models.Payment, error)
	mockSumByLoan    func(ctx context.Context, ownerID, loanID uint) (decimal.Decimal, error)
	mockCreate       func(ctx context.Context, payment *models.Payment) error
	mockDeleteByLoan func(ctx context.Context, ownerID, loanID uint) error
}

func (m *mockPaymentRepository) FindByID(ctx context.Context, ownerID, id uint) (*models.Payment, error) {
	if m.mockFindByID != nil {
		return m.mockFindByID(ctx, ownerID, id)
	}
	return nil, gorm.ErrRecordNotFound
}
func (m *mockPaymentRepository) FindByLoan(ctx context.Context, ownerID, loanID uint) ([]models.Payment, error) {
	if m.mockFindByLoan != nil {
		return m.mockFindByLoan(ctx, ownerID, loanID)
	}
	return nil, nil
}
func (m *mockPaymentRepository) ListRecent(ctx context.Context, ownerID uint, limit int) ([]models.Payment, error) {
	return nil, nil
}
func (m *mockPaymentRepository) SumByLoan(ctx context.Context, ownerID, loanID uint) (decimal.Decimal, error) {
	if m.mockSumByLoan != nil {
		return m.mockSumByLoan(ctx, ownerID, loanID)
	}
	return decimal.Zero, nil
}
func (m *mockPaymentRepository) SumByMonth(ctx context.Context, ownerID uint, year, month int) (decimal.Decimal, error) {
	return decimal.Zero, nil
}
func (m *mockPaymentRepository) Create(ctx context.Context, payment *models.Payment) error {
	if m.mockCreate != nil {
		return m.mockCreate(ctx, payment)
	}
	return nil
}
func (m *mockPaymentRepository) DeleteByLoan(ctx context.Context, ownerID, loanID uint) error {
	if m.mockDeleteByLoan != nil {
		return m.mockDeleteByLoan(ctx, ownerID, loanID)
	}
	return nil
}

// Mock ClientRepository
type mockClientRepository struct {
	mockFindByID   func(ctx context.Context, ownerID, id uint) (*models.Client, error)
	mockCountLoans func(ctx context.Context, ownerID, id uint) (int64, error)
}

func (m *mockClientRepository) FindByID(ctx context.Context, ownerID, id uint) (*models.Client, error) {
	if m.mockFindByID != nil {
		return m.mockFindByID(ctx, ownerID, id)
	}
	return nil, gorm.ErrRecordNotFound
}
func (m *mockClientRepository) FindByGroup(ctx context.Context, ownerID, groupID uint) ([]models.Client, error) {
	return nil, nil
}
func (m *mockClientRepository) List(ctx context.Context, ownerID uint, query *repository.ListQuery) ([]models.Client, int64, error) {
	return nil, 0, nil
}
func (m *mockClientRepository) Create(ctx context.Context, client *models.Client) error { return nil }
func (m *mockClientRepository) Update(ctx context.Context, client *models.Client) error { return nil }
func (m *mockClientRepository) Delete(ctx context.Context, ownerID, id uint) error      { return nil }
func (m *mockClientRepository) CountLoans(ctx context.Context, ownerID, id uint) (int64, error) {
	if m.mockCountLoans != nil {
		return m.mockCountLoans(ctx, ownerID, id)
	}
	return 0, nil
}

// mockTxManager runs the callback against the same repositories, without a
// real transaction.
type mockTxManager struct {
	repos *repository.Repositories
}

func (m *mockTxManager) WithinTransaction(ctx context.Context, fn func(r *repository.Repositories) error) error {
	return fn(m.repos)
}

func newTestRepos(loan *mockLoanRepository, interest *mockInterestRepository, payment *mockPaymentRepository, client *mockClientRepository) *repository.Repositories {
	if loan == nil {
		loan = &mockLoanRepository{}
	}
	if interest == nil {
		interest = &mockInterestRepository{}
	}
	if payment == nil {
		payment = &mockPaymentRepository{}
	}
	if client == nil {
		client = &mockClientRepository{}
	}
	return &repository.Repositories{
		Loan:     loan,
		Interest: interest,
		Payment:  payment,
		Client:   client,
	}
}

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
