package repository

import (
	"context"

	"folio/internal/models"

	"gorm.io/gorm"
)

// AnalyticsRepository appends analytics events. There are no read, update,
// or delete operations: the table is write-once from the API's point of
// view and aggregation happens outside this service.
type AnalyticsRepository interface {
	Create(ctx context.Context, event *models.AnalyticsEvent) error
}

type analyticsRepository struct {
	db *gorm.DB
}

// NewAnalyticsRepository returns a new AnalyticsRepository implementation.
func NewAnalyticsRepository(db *gorm.DB) AnalyticsRepository {
	return &analyticsRepository{db: db}
}

func (r *analyticsRepository) Create(ctx context.Context, event *models.AnalyticsEvent) error {
	if err := r.db.WithContext(ctx).Create(event).Error; err != nil {
		return models.NewInternalError(err)
	}
	return nil
}
