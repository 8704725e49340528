package repository

import (
	"context"

	"github.com/lendbook/lendbook-api/internal/models"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// InterestRepository defines the interface for interest entry data access.
// Unpaid entries are always returned oldest first; the payment waterfall
// depends on that order.
type InterestRepository interface {
	FindByLoan(ctx context.Context, ownerID, loanID uint) ([]models.InterestEntry, error)
	FindUnpaidByLoan(ctx context.Context, ownerID, loanID uint) ([]models.InterestEntry, error)
	SumUnpaidByLoan(ctx context.Context, ownerID, loanID uint) (decimal.Decimal, error)
	ExistsForDueDate(ctx context.Context, ownerID, loanID uint, dueDate string) (bool, error)
	Create(ctx context.Context, entry *models.InterestEntry) error
	Update(ctx context.Context, entry *models.InterestEntry) error
	DeleteByLoan(ctx context.Context, ownerID, loanID uint) error
}

type interestRepository struct {
	db *gorm.DB
}

// NewInterestRepository creates a new interest entry repository
func NewInterestRepository(db *gorm.DB) InterestRepository {
	return &interestRepository{db: db}
}

func (r *interestRepository) FindByLoan(ctx context.Context, ownerID, loanID uint) ([]models.InterestEntry, error) {
	var entries []models.InterestEntry
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND loan_id = ?", ownerID, loanID).
		Order("due_date ASC").
		Find(&entries).Error
	return entries, err
}

func (r *interestRepository) FindUnpaidByLoan(ctx context.Context, ownerID, loanID uint) ([]models.InterestEntry, error) {
	var entries []models.InterestEntry
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND loan_id = ? AND is_paid = false", ownerID, loanID).
		Order("due_date ASC").
		Find(&entries).Error
	return entries, err
}

func (r *interestRepository) SumUnpaidByLoan(ctx context.Context, ownerID, loanID uint) (decimal.Decimal, error) {
	var result struct {
		Total decimal.Decimal
	}
	err := r.db.WithContext(ctx).
		Model(&models.InterestEntry{}).
		Select("COALESCE(SUM(interest_amount), 0) as total").
		Where("user_id = ? AND loan_id = ? AND is_paid = false", ownerID, loanID).
		Scan(&result).Error
	return result.Total, err
}

func (r *interestRepository) ExistsForDueDate(ctx context.Context, ownerID, loanID uint, dueDate string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.InterestEntry{}).
		Where("user_id = ? AND loan_id = ? AND due_date = ?", ownerID, loanID, dueDate).
		Count(&count).Error
	return count > 0, err
}

func (r *interestRepository) Create(ctx context.Context, entry *models.InterestEntry) error {
	return r.db.WithContext(ctx).Create(entry).Error
}

func (r *interestRepository) Update(ctx context.Context, entry *models.InterestEntry) error {
	return r.db.WithContext(ctx).Save(entry).Error
}

func (r *interestRepository) DeleteByLoan(ctx context.Context, ownerID, loanID uint) error {
	return r.db.WithContext(ctx).
		Where("user_id = ? AND loan_id = ?", ownerID, loanID).
		Delete(&models.InterestEntry{}).Error
}
