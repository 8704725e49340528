package repository

import (
	"context"

	"gorm.io/gorm"
)

// Repositories holds all repository instances
type Repositories struct {
	User         UserRepository
	Group        GroupRepository
	Client       ClientRepository
	Loan         LoanRepository
	Interest     InterestRepository
	Payment      PaymentRepository
	RefreshToken RefreshTokenRepository
	Setting      SettingRepository
}

// NewRepositories creates all repository instances
func NewRepositories(db *gorm.DB) *Repositories {
	return &Repositories{
		User:         NewUserRepository(db),
		Group:        NewGroupRepository(db),
		Client:       NewClientRepository(db),
		Loan:         NewLoanRepository(db),
		Interest:     NewInterestRepository(db),
		Payment:      NewPaymentRepository(db),
		RefreshToken: NewRefreshTokenRepository(db),
		Setting:      NewSettingRepository(db),
	}
}

// TxManager runs a function with every repository bound to one database
// transaction. A non-nil error from fn rolls the whole unit back.
type TxManager interface {
	WithinTransaction(ctx context.Context, fn func(r *Repositories) error) error
}

type gormTxManager struct {
	db *gorm.DB
}

// NewTxManager creates a TxManager backed by gorm transactions
func NewTxManager(db *gorm.DB) TxManager {
	return &gormTxManager{db: db}
}

func (m *gormTxManager) WithinTransaction(ctx context.Context, fn func(r *Repositories) error) error {
	return m.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(NewRepositories(tx))
	})
}
