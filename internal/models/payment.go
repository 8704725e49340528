package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Payment is an immutable record of money received against a loan.
//
// The allocation breakdown always balances:
// AppliedToInterest + AppliedToPrincipal + RemainingAmount == Amount.
// RemainingAmount is only non-zero on an over-payment.
type Payment struct {
	ID                 uint            `gorm:"primaryKey" json:"id"`
	LoanID             uint            `gorm:"not null;index" json:"loan_id"`
	UserID             uint            `gorm:"not null;index" json:"user_id"`
	Reference          string          `gorm:"uniqueIndex;not null" json:"reference"`
	Amount             decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"amount"`
	PaymentDate        time.Time       `gorm:"type:date;not null;index" json:"payment_date"`
	AppliedToInterest  decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"applied_to_interest"`
	AppliedToPrincipal decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"applied_to_principal"`
	RemainingAmount    decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"remaining_amount"`
	CreatedAt          time.Time       `gorm:"index" json:"created_at"`
	UpdatedAt          time.Time       `json:"updated_at"`

	// Associations
	Loan Loan `gorm:"foreignKey:LoanID" json:"loan,omitempty"`
}

// TableName specifies the table name for Payment
func (Payment) TableName() string {
	return "payments"
}

// IsOverpayment returns true when part of the amount could not be applied
func (p *Payment) IsOverpayment() bool {
	return p.RemainingAmount.IsPositive()
}

// PaymentResponse is the JSON response format for payments
type PaymentResponse struct {
	ID                 uint            `json:"id"`
	LoanID             uint            `json:"loan_id"`
	Reference          string          `json:"reference"`
	Amount             decimal.Decimal `json:"amount"`
	PaymentDate        string          `json:"payment_date"`
	AppliedToInterest  decimal.Decimal `json:"applied_to_interest"`
	AppliedToPrincipal decimal.Decimal `json:"applied_to_principal"`
	RemainingAmount    decimal.Decimal `json:"remaining_amount"`
	IsOverpayment      bool            `json:"is_overpayment"`
	ClientName         string          `json:"client_name,omitempty"`
	LoanStatus         string          `json:"loan_status,omitempty"`
}

// ToResponse converts Payment to PaymentResponse
func (p *Payment) ToResponse() PaymentResponse {
	resp := PaymentResponse{
		ID:                 p.ID,
		LoanID:             p.LoanID,
		Reference:          p.Reference,
		Amount:             p.Amount,
		PaymentDate:        p.PaymentDate.Format("2006-01-02"),
		AppliedToInterest:  p.AppliedToInterest,
		AppliedToPrincipal: p.AppliedToPrincipal,
		RemainingAmount:    p.RemainingAmount,
		IsOverpayment:      p.IsOverpayment(),
	}

	if p.Loan.ID != 0 {
		resp.LoanStatus = p.Loan.Status
		if p.Loan.Client.ID != 0 {
			resp.ClientName = p.Loan.Client.Name
		}
	}

	return resp
}
