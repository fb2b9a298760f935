package repository

import (
	"context"
	"errors"

	"folio/internal/cache"
	"folio/internal/models"

	"gorm.io/gorm"
)

// PortfolioRepository defines persistence operations for portfolios.
type PortfolioRepository interface {
	Create(ctx context.Context, portfolio *models.Portfolio) error
	GetByID(ctx context.Context, id uint) (*models.Portfolio, error)
	GetByIDWithContent(ctx context.Context, id uint) (*models.Portfolio, error)
	GetByShareToken(ctx context.Context, token string) (*models.Portfolio, error)
	ListByUser(ctx context.Context, userID uint, limit, offset int) ([]models.Portfolio, error)
	Update(ctx context.Context, portfolio *models.Portfolio) error
	BackfillShareToken(ctx context.Context, portfolioID uint, token string) error
	Delete(ctx context.Context, id uint) error
}

type portfolioRepository struct {
	db *gorm.DB
}

// NewPortfolioRepository returns a new PortfolioRepository implementation.
func NewPortfolioRepository(db *gorm.DB) PortfolioRepository {
	return &portfolioRepository{db: db}
}

func (r *portfolioRepository) Create(ctx context.Context, portfolio *models.Portfolio) error {
	if err := r.db.WithContext(ctx).Create(portfolio).Error; err != nil {
		if isUniqueConstraintError(err) {
			return models.NewConflictError("Portfolio share token already in use")
		}
		return models.NewInternalError(err)
	}
	return nil
}

// GetByID returns the bare portfolio row, cache-aside. Content reads stay
// uncached: projects and media change through their own repositories, which
// do not know about portfolio cache keys.
func (r *portfolioRepository) GetByID(ctx context.Context, id uint) (*models.Portfolio, error) {
	var portfolio models.Portfolio
	key := cache.PortfolioKey(id)

	err := cache.Aside(ctx, key, &portfolio, cache.PortfolioTTL, func() error {
		if err := r.db.WithContext(ctx).First(&portfolio, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return models.NewNotFoundError("Portfolio", id)
			}
			return models.NewInternalError(err)
		}
		return nil
	})

	if err != nil {
		return nil, err
	}
	return &portfolio, nil
}

// GetByIDWithContent loads the portfolio with its owner's public profile,
// projects (with media) and portfolio-level media, ordered for display.
func (r *portfolioRepository) GetByIDWithContent(ctx context.Context, id uint) (*models.Portfolio, error) {
	var portfolio models.Portfolio
	err := r.db.WithContext(ctx).
		Preload("User").
		Preload("Projects", func(db *gorm.DB) *gorm.DB {
			return db.Order("position ASC, created_at ASC")
		}).
		Preload("Projects.Media", func(db *gorm.DB) *gorm.DB {
			return db.Order("position ASC, created_at ASC")
		}).
		Preload("Media", func(db *gorm.DB) *gorm.DB {
			return db.Order("position ASC, created_at ASC")
		}).
		First(&portfolio, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Portfolio", id)
		}
		return nil, models.NewInternalError(err)
	}
	return &portfolio, nil
}

// GetByShareToken matches the legacy inline token. Legacy tokens never
// expire, so there is no time filter here. Content is preloaded the same
// way as GetByIDWithContent so both redemption paths return the same shape.
func (r *portfolioRepository) GetByShareToken(ctx context.Context, token string) (*models.Portfolio, error) {
	var portfolio models.Portfolio
	err := r.db.WithContext(ctx).
		Preload("User").
		Preload("Projects", func(db *gorm.DB) *gorm.DB {
			return db.Order("position ASC, created_at ASC")
		}).
		Preload("Projects.Media", func(db *gorm.DB) *gorm.DB {
			return db.Order("position ASC, created_at ASC")
		}).
		Preload("Media", func(db *gorm.DB) *gorm.DB {
			return db.Order("position ASC, created_at ASC")
		}).
		Where("share_token = ?", token).
		First(&portfolio).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewTokenNotFoundError()
		}
		return nil, models.NewInternalError(err)
	}
	return &portfolio, nil
}

func (r *portfolioRepository) ListByUser(ctx context.Context, userID uint, limit, offset int) ([]models.Portfolio, error) {
	var portfolios []models.Portfolio
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&portfolios).Error
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return portfolios, nil
}

// Update persists edits to the portfolio row. The share_token column is
// omitted: portfolio values round-trip through the cache, which never
// carries the token, and the token only changes through BackfillShareToken.
func (r *portfolioRepository) Update(ctx context.Context, portfolio *models.Portfolio) error {
	if err := r.db.WithContext(ctx).Omit("share_token").Save(portfolio).Error; err != nil {
		return models.NewInternalError(err)
	}
	cache.InvalidatePortfolio(ctx, portfolio.ID)
	return nil
}

// BackfillShareToken sets the legacy inline token only when none is present.
// The WHERE guard keeps a concurrent backfill from clobbering an existing token.
func (r *portfolioRepository) BackfillShareToken(ctx context.Context, portfolioID uint, token string) error {
	err := r.db.WithContext(ctx).
		Model(&models.Portfolio{}).
		Where("id = ? AND share_token IS NULL", portfolioID).
		Update("share_token", token).Error
	if err != nil {
		return models.NewInternalError(err)
	}
	cache.InvalidatePortfolio(ctx, portfolioID)
	return nil
}

func (r *portfolioRepository) Delete(ctx context.Context, id uint) error {
	result := r.db.WithContext(ctx).Delete(&models.Portfolio{}, id)
	if result.Error != nil {
		return models.NewInternalError(result.Error)
	}
	if result.RowsAffected == 0 {
		return models.NewNotFoundError("Portfolio", id)
	}
	cache.InvalidatePortfolio(ctx, id)
	return nil
}
