package models

import (
	"time"
)

// Project groups related media inside a portfolio. Ownership is derived
// from the parent portfolio's owner.
type Project struct {
	ID          uint       `gorm:"primaryKey" json:"id"`
	PortfolioID uint       `gorm:"not null;index" json:"portfolio_id"`
	Portfolio   *Portfolio `gorm:"foreignKey:PortfolioID;constraint:OnDelete:CASCADE" json:"portfolio,omitempty"`
	Title       string     `gorm:"size:160;not null" json:"title"`
	Description string     `gorm:"type:text" json:"description"`
	Position    int        `gorm:"not null;default:0" json:"position"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
	Media       []Media    `gorm:"foreignKey:ProjectID;constraint:OnDelete:CASCADE" json:"media,omitempty"`
}

// TableName specifies the table name for GORM.
func (Project) TableName() string {
	return "projects"
}
