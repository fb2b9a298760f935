package models

import (
	"time"
)

// EventType labels an analytics event. The enumeration is open; these are
// the values the API emits itself.
type EventType string

const (
	// EventTypeView records a portfolio being viewed.
	EventTypeView EventType = "view"
	// EventTypeInteraction records a viewer interacting with content.
	EventTypeInteraction EventType = "interaction"
	// EventTypeTimeSpent records viewer dwell time.
	EventTypeTimeSpent EventType = "time_spent"
)

// AnalyticsEvent is an append-only fact row about portfolio access.
// Rows are never updated or deleted by the API; aggregation happens
// elsewhere.
type AnalyticsEvent struct {
	ID          uint       `gorm:"primaryKey" json:"id"`
	PortfolioID uint       `gorm:"not null;index" json:"portfolio_id"`
	Portfolio   *Portfolio `gorm:"foreignKey:PortfolioID;constraint:OnDelete:CASCADE" json:"-"`
	EventType   EventType  `gorm:"size:40;not null;index" json:"event_type"`
	Payload     string     `gorm:"type:text" json:"payload,omitempty"`
	UserAgent   string     `gorm:"size:512" json:"user_agent,omitempty"`
	IP          string     `gorm:"size:64" json:"ip,omitempty"`
	DeviceClass string     `gorm:"size:40" json:"device_class,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
}

// TableName specifies the table name for GORM.
func (AnalyticsEvent) TableName() string {
	return "analytics_events"
}
