package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// InterestEntry is one month of accrued interest on a loan.
//
// InterestAmount holds the unpaid remainder, not the original charge: partial
// payments reduce it in place, and a full settlement flips IsPaid without
// touching the amount. At most one entry exists per (loan, due date).
type InterestEntry struct {
	ID              uint            `gorm:"primaryKey" json:"id"`
	LoanID          uint            `gorm:"not null;index;uniqueIndex:idx_loan_due_date" json:"loan_id"`
	UserID          uint            `gorm:"not null;index" json:"user_id"`
	DueDate         time.Time       `gorm:"type:date;not null;uniqueIndex:idx_loan_due_date" json:"due_date"`
	InterestAmount  decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"interest_amount"`
	PrincipalAtTime decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"principal_at_time"`
	AddedDate       time.Time       `gorm:"type:date;not null" json:"added_date"`
	IsPaid          bool            `gorm:"not null;default:false;index" json:"is_paid"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`

	// Associations
	Loan Loan `gorm:"foreignKey:LoanID" json:"-"`
}

// TableName specifies the table name for InterestEntry
func (InterestEntry) TableName() string {
	return "interest_entries"
}

// InterestEntryResponse is the JSON response format for interest entries
type InterestEntryResponse struct {
	ID              uint            `json:"id"`
	LoanID          uint            `json:"loan_id"`
	DueDate         string          `json:"due_date"`
	InterestAmount  decimal.Decimal `json:"interest_amount"`
	PrincipalAtTime decimal.Decimal `json:"principal_at_time"`
	AddedDate       string          `json:"added_date"`
	IsPaid          bool            `json:"is_paid"`
}

// ToResponse converts InterestEntry to InterestEntryResponse
func (e *InterestEntry) ToResponse() InterestEntryResponse {
	return InterestEntryResponse{
		ID:              e.ID,
		LoanID:          e.LoanID,
		DueDate:         e.DueDate.Format("2006-01-02"),
		InterestAmount:  e.InterestAmount,
		PrincipalAtTime: e.PrincipalAtTime,
		AddedDate:       e.AddedDate.Format("2006-01-02"),
		IsPaid:          e.IsPaid,
	}
}
