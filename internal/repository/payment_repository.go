package repository

import (
	"context"

	"github.com/lendbook/lendbook-api/internal/models"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// PaymentRepository defines the interface for payment data access.
// Payments are append-only; there is no Update.
type PaymentRepository interface {
	FindByID(ctx context.Context, ownerID, id uint) (*models.Payment, error)
	FindByLoan(ctx context.Context, ownerID, loanID uint) ([]models.Payment, error)
	ListRecent(ctx context.Context, ownerID uint, limit int) ([]models.Payment, error)
	SumByLoan(ctx context.Context, ownerID, loanID uint) (decimal.Decimal, error)
	SumByMonth(ctx context.Context, ownerID uint, year, month int) (decimal.Decimal, error)
	Create(ctx context.Context, payment *models.Payment) error
	DeleteByLoan(ctx context.Context, ownerID, loanID uint) error
}

type paymentRepository struct {
	db *gorm.DB
}

// NewPaymentRepository creates a new payment repository
func NewPaymentRepository(db *gorm.DB) PaymentRepository {
	return &paymentRepository{db: db}
}

func (r *paymentRepository) FindByID(ctx context.Context, ownerID, id uint) (*models.Payment, error) {
	var payment models.Payment
	err := r.db.WithContext(ctx).
		Preload("Loan.Client").
		Where("user_id = ?", ownerID).
		First(&payment, id).Error
	if err != nil {
		return nil, err
	}
	return &payment, nil
}

func (r *paymentRepository) FindByLoan(ctx context.Context, ownerID, loanID uint) ([]models.Payment, error) {
	var payments []models.Payment
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND loan_id = ?", ownerID, loanID).
		Order("payment_date ASC, id ASC").
		Find(&payments).Error
	return payments, err
}

func (r *paymentRepository) ListRecent(ctx context.Context, ownerID uint, limit int) ([]models.Payment, error) {
	var payments []models.Payment
	err := r.db.WithContext(ctx).
		Preload("Loan.Client").
		Where("user_id = ?", ownerID).
		Order("payment_date DESC, id DESC").
		Limit(limit).
		Find(&payments).Error
	return payments, err
}

func (r *paymentRepository) SumByLoan(ctx context.Context, ownerID, loanID uint) (decimal.Decimal, error) {
	var result struct {
		Total decimal.Decimal
	}
	err := r.db.WithContext(ctx).
		Model(&models.Payment{}).
		Select("COALESCE(SUM(amount), 0) as total").
		Where("user_id = ? AND loan_id = ?", ownerID, loanID).
		Scan(&result).Error
	return result.Total, err
}

func (r *paymentRepository) SumByMonth(ctx context.Context, ownerID uint, year, month int) (decimal.Decimal, error) {
	var result struct {
		Total decimal.Decimal
	}
	err := r.db.WithContext(ctx).
		Model(&models.Payment{}).
		Select("COALESCE(SUM(amount), 0) as total").
		Where("user_id = ? AND EXTRACT(YEAR FROM payment_date) = ? AND EXTRACT(MONTH FROM payment_date) = ?",
			ownerID, year, month).
		Scan(&result).Error
	return result.Total, err
}

func (r *paymentRepository) Create(ctx context.Context, payment *models.Payment) error {
	return r.db.WithContext(ctx).Create(payment).Error
}

func (r *paymentRepository) DeleteByLoan(ctx context.Context, ownerID, loanID uint) error {
	return r.db.WithContext(ctx).
		Where("user_id = ? AND loan_id = ?", ownerID, loanID).
		Delete(&models.Payment{}).Error
}
