package repository

import (
	"context"

	"github.com/lendbook/lendbook-api/internal/models"
	"gorm.io/gorm"
)

// LoanRepository defines the interface for loan data access
type LoanRepository interface {
	FindByID(ctx context.Context, ownerID, id uint) (*models.Loan, error)
	FindByClient(ctx context.Context, ownerID, clientID uint) ([]models.Loan, error)
	FindIDsNotPaid(ctx context.Context, ownerID uint) ([]uint, error)
	FindAllNotPaid(ctx context.Context) ([]models.Loan, error)
	List(ctx context.Context, ownerID uint, query *ListQuery) ([]models.Loan, int64, error)
	Create(ctx context.Context, loan *models.Loan) error
	Update(ctx context.Context, loan *models.Loan) error
	Delete(ctx context.Context, ownerID, id uint) error
	CountByStatus(ctx context.Context, ownerID uint) (map[string]int64, error)
}

type loanRepository struct {
	db *gorm.DB
}

// NewLoanRepository creates a new loan repository
func NewLoanRepository(db *gorm.DB) LoanRepository {
	return &loanRepository{db: db}
}

func (r *loanRepository) FindByID(ctx context.Context, ownerID, id uint) (*models.Loan, error) {
	var loan models.Loan
	err := r.db.WithContext(ctx).
		Preload("Client.Group").
		Where("user_id = ?", ownerID).
		First(&loan, id).Error
	if err != nil {
		return nil, err
	}
	return &loan, nil
}

func (r *loanRepository) FindByClient(ctx context.Context, ownerID, clientID uint) ([]models.Loan, error) {
	var loans []models.Loan
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND client_id = ?", ownerID, clientID).
		Order("loan_date ASC, id ASC").
		Find(&loans).Error
	return loans, err
}

// FindIDsNotPaid returns the IDs of every loan still carrying a balance.
// Only IDs are loaded; the refresh pass re-reads each loan inside its own
// transaction.
func (r *loanRepository) FindIDsNotPaid(ctx context.Context, ownerID uint) ([]uint, error) {
	var ids []uint
	err := r.db.WithContext(ctx).
		Model(&models.Loan{}).
		Where("user_id = ? AND status <> ?", ownerID, models.LoanStatusPaid).
		Order("id ASC").
		Pluck("id", &ids).Error
	return ids, err
}

// FindAllNotPaid returns (id, user_id) pairs for every unsettled loan across
// all users. The nightly refresh uses it to fan out per-loan transactions.
func (r *loanRepository) FindAllNotPaid(ctx context.Context) ([]models.Loan, error) {
	var loans []models.Loan
	err := r.db.WithContext(ctx).
		Model(&models.Loan{}).
		Select("id", "user_id").
		Where("status <> ?", models.LoanStatusPaid).
		Order("id ASC").
		Find(&loans).Error
	return loans, err
}

func (r *loanRepository) List(ctx context.Context, ownerID uint, query *ListQuery) ([]models.Loan, int64, error) {
	var loans []models.Loan
	var total int64

	db := r.db.WithContext(ctx).
		Model(&models.Loan{}).
		Where("loans.user_id = ?", ownerID)

	if query.Search != "" {
		search := "%" + query.Search + "%"
		db = db.Joins("JOIN clients ON clients.id = loans.client_id").
			Where("clients.name ILIKE ?", search)
	}

	if query.Filters["status"] != "" {
		db = db.Where("loans.status = ?", query.Filters["status"])
	}
	if query.Filters["client_id"] != "" {
		db = db.Where("loans.client_id = ?", query.Filters["client_id"])
	}
	if query.Filters["group_id"] != "" {
		db = db.Joins("JOIN clients AS gc ON gc.id = loans.client_id").
			Where("gc.group_id = ?", query.Filters["group_id"])
	}
	if query.Filters["due_before"] != "" {
		db = db.Where("loans.current_due_date <= ?", query.Filters["due_before"])
	}
	if query.Filters["due_after"] != "" {
		db = db.Where("loans.current_due_date >= ?", query.Filters["due_after"])
	}

	countDb := db.Session(&gorm.Session{})
	if err := countDb.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if query.SortBy != "" {
		order := "loans." + query.SortBy
		if query.SortDir == "desc" {
			order += " DESC"
		}
		db = db.Order(order)
	} else {
		db = db.Order("loans.current_due_date ASC, loans.id ASC")
	}

	if query.PerPage > 0 {
		db = db.Offset((query.Page - 1) * query.PerPage).Limit(query.PerPage)
	}

	err := db.Preload("Client.Group").Find(&loans).Error
	return loans, total, err
}

func (r *loanRepository) Create(ctx context.Context, loan *models.Loan) error {
	return r.db.WithContext(ctx).Create(loan).Error
}

func (r *loanRepository) Update(ctx context.Context, loan *models.Loan) error {
	return r.db.WithContext(ctx).Save(loan).Error
}

func (r *loanRepository) Delete(ctx context.Context, ownerID, id uint) error {
	return r.db.WithContext(ctx).
		Where("user_id = ?", ownerID).
		Delete(&models.Loan{}, id).Error
}

func (r *loanRepository) CountByStatus(ctx context.Context, ownerID uint) (map[string]int64, error) {
	var rows []struct {
		Status string
		Count  int64
	}
	err := r.db.WithContext(ctx).
		Model(&models.Loan{}).
		Select("status, COUNT(*) as count").
		Where("user_id = ?", ownerID).
		Group("status").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	counts := make(map[string]int64, len(rows))
	for _, row := range rows {
		counts[row.Status] = row.Count
	}
	return counts, nil
}
