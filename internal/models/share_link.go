package models

import (
	"time"
)

// ShareLink is a revocable token granting anonymous read access to a
// portfolio. ExpiresAt nil means the link never expires. Several rows may
// exist per portfolio from past expiry/reissue cycles; the most recently
// created non-expired row is the canonical active link.
type ShareLink struct {
	ID           uint       `gorm:"primaryKey" json:"id"`
	PortfolioID  uint       `gorm:"not null;index" json:"portfolio_id"`
	Portfolio    *Portfolio `gorm:"foreignKey:PortfolioID;constraint:OnDelete:CASCADE" json:"-"`
	Token        string     `gorm:"size:64;not null;uniqueIndex" json:"token"`
	ExpiresAt    *time.Time `json:"expires_at"`
	PasswordHash *string    `json:"-"` // reserved for password-protected links
	ViewCount    int64      `gorm:"not null;default:0" json:"view_count"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

// TableName specifies the table name for GORM.
func (ShareLink) TableName() string {
	return "share_links"
}

// Active reports whether the link is usable at the given instant.
func (l *ShareLink) Active(now time.Time) bool {
	return l.ExpiresAt == nil || l.ExpiresAt.After(now)
}
