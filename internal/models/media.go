package models

import (
	"time"
)

// Media is an asset attached to exactly one of a project or a portfolio.
// The schema allows both columns to be null, but business logic must set
// exactly one parent at creation; rows with neither parent are treated as
// corrupt and never resolve to an owner.
type Media struct {
	ID          uint       `gorm:"primaryKey" json:"id"`
	PortfolioID *uint      `gorm:"index" json:"portfolio_id,omitempty"`
	Portfolio   *Portfolio `gorm:"foreignKey:PortfolioID;constraint:OnDelete:CASCADE" json:"-"`
	ProjectID   *uint      `gorm:"index" json:"project_id,omitempty"`
	Project     *Project   `gorm:"foreignKey:ProjectID;constraint:OnDelete:CASCADE" json:"-"`
	URL         string     `gorm:"not null" json:"url"`
	MimeType    string     `gorm:"size:100" json:"mime_type"`
	Caption     string     `json:"caption"`
	Position    int        `gorm:"not null;default:0" json:"position"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// TableName specifies the table name for GORM.
func (Media) TableName() string {
	return "media"
}

// HasParent reports whether exactly one parent relation is set.
func (m *Media) HasParent() bool {
	return (m.PortfolioID != nil) != (m.ProjectID != nil)
}
