package models

import (
	"time"
)

// Portfolio is the top-level container a user shares with the world.
// ShareToken is the legacy inline sharing token that predates the share_links
// table; it never expires and is kept for backwards-compatible redemption.
type Portfolio struct {
	ID          uint        `gorm:"primaryKey" json:"id"`
	UserID      uint        `gorm:"not null;index" json:"user_id"`
	User        *User       `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"user,omitempty"`
	Title       string      `gorm:"size:160;not null" json:"title"`
	Description string      `gorm:"type:text" json:"description"`
	IsPublic    bool        `gorm:"not null;default:false" json:"is_public"`
	ShareToken  *string     `gorm:"uniqueIndex" json:"-"`
	CreatedAt   time.Time   `json:"created_at"`
	UpdatedAt   time.Time   `json:"updated_at"`
	Projects    []Project   `gorm:"foreignKey:PortfolioID;constraint:OnDelete:CASCADE" json:"projects,omitempty"`
	Media       []Media     `gorm:"foreignKey:PortfolioID;constraint:OnDelete:CASCADE" json:"media,omitempty"`
	ShareLinks  []ShareLink `gorm:"foreignKey:PortfolioID;constraint:OnDelete:CASCADE" json:"-"`
}

// TableName specifies the table name for GORM.
func (Portfolio) TableName() string {
	return "portfolios"
}
