package repository

import (
	"context"
	"errors"
	"time"

	"folio/internal/models"

	"gorm.io/gorm"
)

// ErrTokenTaken signals a unique constraint violation on the token column.
// Callers retry with a fresh token; it never reaches an HTTP response.
var ErrTokenTaken = errors.New("share link token already taken")

// ShareLinkRepository defines persistence operations for share links.
type ShareLinkRepository interface {
	Create(ctx context.Context, link *models.ShareLink) error
	// GetActiveByPortfolio returns the most recently created link for the
	// portfolio whose expiry is null or after now, or nil when none exists.
	GetActiveByPortfolio(ctx context.Context, portfolioID uint, now time.Time) (*models.ShareLink, error)
	// GetActiveByToken resolves a token among non-expired links only.
	GetActiveByToken(ctx context.Context, token string, now time.Time) (*models.ShareLink, error)
	IncrementViewCount(ctx context.Context, linkID uint) error
}

type shareLinkRepository struct {
	db *gorm.DB
}

// NewShareLinkRepository returns a new ShareLinkRepository implementation.
func NewShareLinkRepository(db *gorm.DB) ShareLinkRepository {
	return &shareLinkRepository{db: db}
}

func (r *shareLinkRepository) Create(ctx context.Context, link *models.ShareLink) error {
	if err := r.db.WithContext(ctx).Create(link).Error; err != nil {
		if isUniqueConstraintError(err) {
			return ErrTokenTaken
		}
		return models.NewInternalError(err)
	}
	return nil
}

func (r *shareLinkRepository) GetActiveByPortfolio(ctx context.Context, portfolioID uint, now time.Time) (*models.ShareLink, error) {
	var link models.ShareLink
	err := r.db.WithContext(ctx).
		Where("portfolio_id = ?", portfolioID).
		Where("expires_at IS NULL OR expires_at > ?", now).
		Order("created_at DESC").
		First(&link).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, models.NewInternalError(err)
	}
	return &link, nil
}

func (r *shareLinkRepository) GetActiveByToken(ctx context.Context, token string, now time.Time) (*models.ShareLink, error) {
	var link models.ShareLink
	err := r.db.WithContext(ctx).
		Where("token = ?", token).
		Where("expires_at IS NULL OR expires_at > ?", now).
		First(&link).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewTokenNotFoundError()
		}
		return nil, models.NewInternalError(err)
	}
	return &link, nil
}

func (r *shareLinkRepository) IncrementViewCount(ctx context.Context, linkID uint) error {
	err := r.db.WithContext(ctx).
		Model(&models.ShareLink{}).
		Where("id = ?", linkID).
		Update("view_count", gorm.Expr("view_count + 1")).Error
	if err != nil {
		return models.NewInternalError(err)
	}
	return nil
}
