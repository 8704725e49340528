package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Loan represents one borrowing instrument for a client.
//
// CurrentPrincipal and CurrentDueDate are the live figures; the Original*
// fields keep what the loan was created (or last reset) with. Status is a
// cached view of the resolver output and must never be trusted without a
// refresh.
type Loan struct {
	ID                uint            `gorm:"primaryKey" json:"id"`
	UserID            uint            `gorm:"not null;index" json:"user_id"`
	ClientID          uint            `gorm:"not null;index" json:"client_id"`
	LoanDate          time.Time       `gorm:"type:date;not null" json:"loan_date"`
	OriginalPrincipal decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"original_principal"`
	CurrentPrincipal  decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"current_principal"`
	OriginalDueDate   time.Time       `gorm:"type:date;not null" json:"original_due_date"`
	CurrentDueDate    time.Time       `gorm:"type:date;not null;index" json:"current_due_date"`
	InterestRate      decimal.Decimal `gorm:"type:decimal(6,4);not null" json:"interest_rate"`
	Status            string          `gorm:"not null;index;default:Partial" json:"status"`
	CreatedAt         time.Time       `json:"created_at"`
	UpdatedAt         time.Time       `json:"updated_at"`

	// Associations
	Client          Client          `gorm:"foreignKey:ClientID" json:"client,omitempty"`
	InterestEntries []InterestEntry `gorm:"foreignKey:LoanID" json:"interest_entries,omitempty"`
	Payments        []Payment       `gorm:"foreignKey:LoanID" json:"payments,omitempty"`
}

// TableName specifies the table name for Loan
func (Loan) TableName() string {
	return "loans"
}

// Loan status constants. Status is always derived from
// (principal, unpaid interest, due date, today) — there is no separate
// "new" or "active" state.
const (
	LoanStatusPartial = "Partial"
	LoanStatusOverdue = "Overdue"
	LoanStatusPaid    = "Paid"
)

// IsPaid returns true if the cached status says the loan is settled.
func (l *Loan) IsPaid() bool {
	return l.Status == LoanStatusPaid
}

// AnchorDay returns the day-of-month the due-date cadence is anchored to.
// Successive due dates land on this day, clamped to shorter months.
func (l *Loan) AnchorDay() int {
	return l.OriginalDueDate.Day()
}

// LoanResponse is the JSON response format for loans
type LoanResponse struct {
	ID               uint            `json:"id"`
	ClientID         uint            `json:"client_id"`
	ClientName       string          `json:"client_name,omitempty"`
	GroupName        string          `json:"group_name,omitempty"`
	LoanDate         string          `json:"loan_date"`
	DueDate          string          `json:"due_date"`
	Principal        decimal.Decimal `json:"principal"`
	InterestRate     decimal.Decimal `json:"interest_rate"`
	UnpaidInterest   decimal.Decimal `json:"unpaid_interest"`
	Paid             decimal.Decimal `json:"paid"`
	TotalOwed        decimal.Decimal `json:"total_owed"`
	Status           string          `json:"status"`
}

// ToResponse converts Loan to LoanResponse. The unpaid interest and paid
// totals are computed by the caller (they live in child rows).
func (l *Loan) ToResponse(unpaidInterest, paidTotal decimal.Decimal) LoanResponse {
	resp := LoanResponse{
		ID:             l.ID,
		ClientID:       l.ClientID,
		LoanDate:       l.LoanDate.Format("2006-01-02"),
		DueDate:        l.CurrentDueDate.Format("2006-01-02"),
		Principal:      l.CurrentPrincipal,
		InterestRate:   l.InterestRate,
		UnpaidInterest: unpaidInterest,
		Paid:           paidTotal,
		TotalOwed:      l.CurrentPrincipal.Add(unpaidInterest).Round(2),
		Status:         l.Status,
	}

	if l.Client.ID != 0 {
		resp.ClientName = l.Client.Name
		if l.Client.Group.ID != 0 {
			resp.GroupName = l.Client.Group.Name
		}
	}

	return resp
}

// LoanSummary is the read accessor payload for a single loan.
type LoanSummary struct {
	LoanID         uint            `json:"loan_id"`
	Principal      decimal.Decimal `json:"principal"`
	UnpaidInterest decimal.Decimal `json:"unpaid_interest"`
	TotalOwed      decimal.Decimal `json:"total_owed"`
	Status         string          `json:"status"`
	DueDate        string          `json:"due_date"`
}
