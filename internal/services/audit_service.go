package services

import (
	"context"

	"github.com/lendbook/lendbook-api/internal/models"
	"github.com/lendbook/lendbook-api/pkg/logger"
	"gorm.io/gorm"
)

type AuditService struct {
	db *gorm.DB
}

func NewAuditService(db *gorm.DB) *AuditService {
	return &AuditService{db: db}
}

// Log records an audit entry
func (s *AuditService) Log(ctx context.Context, userID uint, action, entity string, entityID uint, details, ip, userAgent string) error {
	if s.db == nil {
		return nil
	}
	logEntry := &models.AuditLog{
		UserID:    userID,
		Action:    action,
		Entity:    entity,
		EntityID:  entityID,
		Details:   details,
		IPAddress: ip,
		UserAgent: userAgent,
	}
	return s.db.Create(logEntry).Error
}

// LogAction is Log without a context or caller metadata, for use from
// service internals. Audit failures are logged and swallowed; they never
// fail the operation being audited.
func (s *AuditService) LogAction(userID uint, action, entity string, entityID uint, details, ip, userAgent string) {
	if err := s.Log(context.Background(), userID, action, entity, entityID, details, ip, userAgent); err != nil {
		logger.Warn("audit log write failed", "action", action, "entity", entity, "error", err)
	}
}

// List retrieves audit logs for one user, newest first
func (s *AuditService) List(ctx context.Context, userID uint, limit, offset int) ([]models.AuditLog, int64, error) {
	var logs []models.AuditLog
	var total int64

	if err := s.db.Model(&models.AuditLog{}).Where("user_id = ?", userID).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	result := s.db.Where("user_id = ?", userID).
		Order("created_at desc").Limit(limit).Offset(offset).Find(&logs)
	return logs, total, result.Error
}
