package repository

import (
	"context"

	"github.com/lendbook/lendbook-api/internal/models"
	"gorm.io/gorm"
)

// ClientRepository defines the interface for client data access
type ClientRepository interface {
	FindByID(ctx context.Context, ownerID, id uint) (*models.Client, error)
	FindByGroup(ctx context.Context, ownerID, groupID uint) ([]models.Client, error)
	List(ctx context.Context, ownerID uint, query *ListQuery) ([]models.Client, int64, error)
	Create(ctx context.Context, client *models.Client) error
	Update(ctx context.Context, client *models.Client) error
	Delete(ctx context.Context, ownerID, id uint) error
	CountLoans(ctx context.Context, ownerID, id uint) (int64, error)
}

type clientRepository struct {
	db *gorm.DB
}

// NewClientRepository creates a new client repository
func NewClientRepository(db *gorm.DB) ClientRepository {
	return &clientRepository{db: db}
}

func (r *clientRepository) FindByID(ctx context.Context, ownerID, id uint) (*models.Client, error) {
	var client models.Client
	err := r.db.WithContext(ctx).
		Preload("Group").
		Where("user_id = ?", ownerID).
		First(&client, id).Error
	if err != nil {
		return nil, err
	}
	return &client, nil
}

func (r *clientRepository) FindByGroup(ctx context.Context, ownerID, groupID uint) ([]models.Client, error) {
	var clients []models.Client
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND group_id = ?", ownerID, groupID).
		Order("name ASC").
		Find(&clients).Error
	return clients, err
}

func (r *clientRepository) List(ctx context.Context, ownerID uint, query *ListQuery) ([]models.Client, int64, error) {
	var clients []models.Client
	var total int64

	db := r.db.WithContext(ctx).
		Model(&models.Client{}).
		Where("user_id = ?", ownerID)

	if query.Search != "" {
		search := "%" + query.Search + "%"
		db = db.Where("name ILIKE ? OR phone ILIKE ?", search, search)
	}

	if query.Filters["group_id"] != "" {
		db = db.Where("group_id = ?", query.Filters["group_id"])
	}

	db.Count(&total)

	if query.PerPage > 0 {
		db = db.Offset((query.Page - 1) * query.PerPage).Limit(query.PerPage)
	}

	err := db.Preload("Group").Order("name ASC").Find(&clients).Error
	return clients, total, err
}

func (r *clientRepository) Create(ctx context.Context, client *models.Client) error {
	return r.db.WithContext(ctx).Create(client).Error
}

func (r *clientRepository) Update(ctx context.Context, client *models.Client) error {
	return r.db.WithContext(ctx).Save(client).Error
}

func (r *clientRepository) Delete(ctx context.Context, ownerID, id uint) error {
	return r.db.WithContext(ctx).
		Where("user_id = ?", ownerID).
		Delete(&models.Client{}, id).Error
}

func (r *clientRepository) CountLoans(ctx context.Context, ownerID, id uint) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Loan{}).
		Where("user_id = ? AND client_id = ?", ownerID, id).
		Count(&count).Error
	return count, err
}
