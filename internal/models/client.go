package models

import (
	"time"
)

// Client is a borrower belonging to a group.
type Client struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"not null;index" json:"user_id"`
	GroupID   uint      `gorm:"not null;index" json:"group_id"`
	Name      string    `gorm:"not null" json:"name"`
	Phone     string    `json:"phone"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Associations
	Group Group  `gorm:"foreignKey:GroupID" json:"group,omitempty"`
	Loans []Loan `gorm:"foreignKey:ClientID" json:"loans,omitempty"`
}

// TableName specifies the table name for Client
func (Client) TableName() string {
	return "clients"
}

// ClientResponse is the JSON response format for clients
type ClientResponse struct {
	ID        uint   `json:"id"`
	GroupID   uint   `json:"group_id"`
	GroupName string `json:"group_name,omitempty"`
	Name      string `json:"name"`
	Phone     string `json:"phone,omitempty"`
	LoanCount int    `json:"loan_count"`
}

// ToResponse converts Client to ClientResponse
func (c *Client) ToResponse() ClientResponse {
	resp := ClientResponse{
		ID:        c.ID,
		GroupID:   c.GroupID,
		Name:      c.Name,
		Phone:     c.Phone,
		LoanCount: len(c.Loans),
	}
	if c.Group.ID != 0 {
		resp.GroupName = c.Group.Name
	}
	return resp
}
