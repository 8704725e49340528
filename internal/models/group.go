package models

import (
	"time"
)

// Group is a lending batch, usually a month or a village round. Clients hang
// off a group; a group with clients cannot be deleted.
type Group struct {
	ID        uint       `gorm:"primaryKey" json:"id"`
	UserID    uint       `gorm:"not null;index" json:"user_id"`
	Name      string     `gorm:"not null" json:"name"`
	StartDate *time.Time `gorm:"type:date" json:"start_date"`
	EndDate   *time.Time `gorm:"type:date" json:"end_date"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`

	// Associations
	Clients []Client `gorm:"foreignKey:GroupID" json:"clients,omitempty"`
}

// TableName specifies the table name for Group
func (Group) TableName() string {
	return "groups"
}

// GroupResponse is the JSON response format for groups
type GroupResponse struct {
	ID          uint   `json:"id"`
	Name        string `json:"name"`
	StartDate   string `json:"start_date,omitempty"`
	EndDate     string `json:"end_date,omitempty"`
	ClientCount int    `json:"client_count"`
}

// ToResponse converts Group to GroupResponse
func (g *Group) ToResponse() GroupResponse {
	resp := GroupResponse{
		ID:          g.ID,
		Name:        g.Name,
		ClientCount: len(g.Clients),
	}
	if g.StartDate != nil {
		resp.StartDate = g.StartDate.Format("2006-01-02")
	}
	if g.EndDate != nil {
		resp.EndDate = g.EndDate.Format("2006-01-02")
	}
	return resp
}
