package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/lendbook/lendbook-api/internal/jobs"
	"github.com/lendbook/lendbook-api/internal/models"
	"github.com/lendbook/lendbook-api/internal/repository"
)

// UserService handles account-related business logic
type UserService struct {
	repo         repository.UserRepository
	settingRepo  repository.SettingRepository
	worker       *jobs.Worker
	emailService *EmailService
	auditSvc     *AuditService
}

func NewUserService(repo repository.UserRepository, settingRepo repository.SettingRepository, worker *jobs.Worker, emailService *EmailService, auditSvc *AuditService) *UserService {
	return &UserService{
		repo:         repo,
		settingRepo:  settingRepo,
		worker:       worker,
		emailService: emailService,
		auditSvc:     auditSvc,
	}
}

func (s *UserService) FindByID(ctx context.Context, id uint) (*models.User, error) {
	return s.repo.FindByID(ctx, id)
}

func (s *UserService) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	return s.repo.FindByEmail(ctx, email)
}

// Register creates a new lender account and sends the welcome email
func (s *UserService) Register(ctx context.Context, user *models.User, password string) error {
	user.Email = strings.ToLower(strings.TrimSpace(user.Email))
	if user.Email == "" || password == "" {
		return fmt.Errorf("%w: email and password are required", ErrInvalidArgument)
	}

	hashedPassword, err := HashPassword(password)
	if err != nil {
		return err
	}
	user.EncryptedPassword = hashedPassword

	if err := s.repo.Create(ctx, user); err != nil {
		return err
	}

	// Welcome email is best-effort; the account exists either way.
	s.worker.EnqueueAsync(func(ctx context.Context) error {
		return s.emailService.SendAccountCreated(ctx, user)
	})

	return s.auditSvc.Log(ctx, user.ID, "CREATE", "User", user.ID,
		fmt.Sprintf("account created: %s", user.Email), "", "")
}

func (s *UserService) Update(ctx context.Context, user *models.User) error {
	if err := s.repo.Update(ctx, user); err != nil {
		return err
	}
	return s.auditSvc.Log(ctx, user.ID, "UPDATE", "User", user.ID,
		fmt.Sprintf("account updated: %s", user.Email), "", "")
}

func (s *UserService) ChangePassword(ctx context.Context, userID uint, currentPassword, newPassword string) error {
	user, err := s.repo.FindByID(ctx, userID)
	if err != nil {
		return err
	}
	if !VerifyPassword(currentPassword, user.EncryptedPassword) {
		return ErrInvalidPassword
	}
	hashedPassword, err := HashPassword(newPassword)
	if err != nil {
		return err
	}
	user.EncryptedPassword = hashedPassword
	if err := s.repo.Update(ctx, user); err != nil {
		return err
	}
	return s.auditSvc.Log(ctx, userID, "CHANGE_PASSWORD", "User", userID, "password changed by user", "", "")
}

// GetBusinessName returns the name printed on statements, falling back to
// the user's full name when unset.
func (s *UserService) GetBusinessName(ctx context.Context, userID uint) (string, error) {
	name, err := s.settingRepo.Get(ctx, userID, models.SettingBusinessName)
	if err != nil {
		return "", err
	}
	if name != "" {
		return name, nil
	}

	user, err := s.repo.FindByID(ctx, userID)
	if err != nil {
		return "", err
	}
	return user.FullName, nil
}

// SetBusinessName stores the name printed on statements
func (s *UserService) SetBusinessName(ctx context.Context, userID uint, name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return fmt.Errorf("%w: business name is required", ErrInvalidArgument)
	}
	if err := s.settingRepo.Set(ctx, userID, models.SettingBusinessName, name); err != nil {
		return err
	}
	return s.auditSvc.Log(ctx, userID, "UPDATE", "Setting", userID, "business name set to "+name, "", "")
}
