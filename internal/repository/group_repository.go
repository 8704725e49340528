package repository

import (
	"context"

	"github.com/lendbook/lendbook-api/internal/models"
	"gorm.io/gorm"
)

// GroupRepository defines the interface for group data access.
// Every method is scoped to the owning user; rows of other users are
// indistinguishable from rows that do not exist.
type GroupRepository interface {
	FindByID(ctx context.Context, ownerID, id uint) (*models.Group, error)
	FindAll(ctx context.Context, ownerID uint) ([]models.Group, error)
	Create(ctx context.Context, group *models.Group) error
	Update(ctx context.Context, group *models.Group) error
	Delete(ctx context.Context, ownerID, id uint) error
	CountClients(ctx context.Context, ownerID, id uint) (int64, error)
}

type groupRepository struct {
	db *gorm.DB
}

// NewGroupRepository creates a new group repository
func NewGroupRepository(db *gorm.DB) GroupRepository {
	return &groupRepository{db: db}
}

func (r *groupRepository) FindByID(ctx context.Context, ownerID, id uint) (*models.Group, error) {
	var group models.Group
	err := r.db.WithContext(ctx).
		Where("user_id = ?", ownerID).
		First(&group, id).Error
	if err != nil {
		return nil, err
	}
	return &group, nil
}

func (r *groupRepository) FindAll(ctx context.Context, ownerID uint) ([]models.Group, error) {
	var groups []models.Group
	err := r.db.WithContext(ctx).
		Preload("Clients").
		Where("user_id = ?", ownerID).
		Order("name ASC").
		Find(&groups).Error
	return groups, err
}

func (r *groupRepository) Create(ctx context.Context, group *models.Group) error {
	return r.db.WithContext(ctx).Create(group).Error
}

func (r *groupRepository) Update(ctx context.Context, group *models.Group) error {
	return r.db.WithContext(ctx).Save(group).Error
}

func (r *groupRepository) Delete(ctx context.Context, ownerID, id uint) error {
	return r.db.WithContext(ctx).
		Where("user_id = ?", ownerID).
		Delete(&models.Group{}, id).Error
}

func (r *groupRepository) CountClients(ctx context.Context, ownerID, id uint) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Client{}).
		Where("user_id = ? AND group_id = ?", ownerID, id).
		Count(&count).Error
	return count, err
}
