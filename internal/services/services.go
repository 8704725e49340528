package services

import (
	"github.com/lendbook/lendbook-api/internal/config"
	"github.com/lendbook/lendbook-api/internal/jobs"
	"github.com/lendbook/lendbook-api/internal/repository"
	"gorm.io/gorm"
)

// Services holds all service instances
type Services struct {
	Auth     *AuthService
	User     *UserService
	Group    *GroupService
	Client   *ClientService
	Loan     *LoanService
	Interest *InterestService
	Payment  *PaymentService
	Report   *ReportService
	Export   *ExportService
	Audit    *AuditService
	Email    *EmailService
}

// NewServices creates all service instances
func NewServices(repos *repository.Repositories, txm repository.TxManager, worker *jobs.Worker, cfg *config.Config, db *gorm.DB) *Services {
	emailSvc := NewEmailService(cfg)
	auditSvc := NewAuditService(db)
	interestSvc := NewInterestService()

	userSvc := NewUserService(repos.User, repos.Setting, worker, emailSvc, auditSvc)

	return &Services{
		Auth:     NewAuthService(repos.User, repos.RefreshToken, cfg),
		User:     userSvc,
		Group:    NewGroupService(repos, txm, auditSvc),
		Client:   NewClientService(repos, txm, auditSvc),
		Loan:     NewLoanService(repos, txm, interestSvc, auditSvc, cfg.InterestRate),
		Interest: interestSvc,
		Payment:  NewPaymentService(repos, txm, interestSvc, auditSvc),
		Report:   NewReportService(repos, userSvc),
		Export:   NewExportService(repos),
		Audit:    auditSvc,
		Email:    emailSvc,
	}
}
