package repository

import (
	"context"
	"errors"

	"folio/internal/models"

	"gorm.io/gorm"
)

// Ownership is the result of resolving a resource to its owning user.
// Public carries the visibility of the portfolio the resource hangs off,
// so read authorization needs no second lookup.
type Ownership struct {
	OwnerID uint
	Public  bool
}

// OwnershipRepository resolves resources to their owning user. Every method
// is a single round trip: ownership is derived in SQL through the parent
// chain, never by walking it row by row.
type OwnershipRepository interface {
	PortfolioOwnership(ctx context.Context, id uint) (*Ownership, error)
	ProjectOwnership(ctx context.Context, id uint) (*Ownership, error)
	MediaOwnership(ctx context.Context, id uint) (*Ownership, error)
}

type ownershipRepository struct {
	db *gorm.DB
}

// NewOwnershipRepository returns a new OwnershipRepository implementation.
func NewOwnershipRepository(db *gorm.DB) OwnershipRepository {
	return &ownershipRepository{db: db}
}

// ownershipRow scans join results where the owner may be absent.
type ownershipRow struct {
	OwnerID  *uint
	IsPublic *bool
}

func (row ownershipRow) toOwnership() *Ownership {
	o := &Ownership{OwnerID: *row.OwnerID}
	if row.IsPublic != nil {
		o.Public = *row.IsPublic
	}
	return o
}

func (r *ownershipRepository) PortfolioOwnership(ctx context.Context, id uint) (*Ownership, error) {
	var row ownershipRow
	err := r.db.WithContext(ctx).
		Table("portfolios").
		Select("portfolios.user_id AS owner_id, portfolios.is_public AS is_public").
		Where("portfolios.id = ?", id).
		Take(&row).Error
	return finishOwnership("Portfolio", id, row, err)
}

func (r *ownershipRepository) ProjectOwnership(ctx context.Context, id uint) (*Ownership, error) {
	var row ownershipRow
	err := r.db.WithContext(ctx).
		Table("projects").
		Select("portfolios.user_id AS owner_id, portfolios.is_public AS is_public").
		Joins("JOIN portfolios ON portfolios.id = projects.portfolio_id").
		Where("projects.id = ?", id).
		Take(&row).Error
	return finishOwnership("Project", id, row, err)
}

// MediaOwnership resolves through whichever parent is populated. When both
// are set (corrupt data), the portfolio-direct relation wins, which the
// COALESCE argument order encodes.
func (r *ownershipRepository) MediaOwnership(ctx context.Context, id uint) (*Ownership, error) {
	var row ownershipRow
	err := r.db.WithContext(ctx).
		Table("media").
		Select("COALESCE(direct.user_id, derived.user_id) AS owner_id, COALESCE(direct.is_public, derived.is_public) AS is_public").
		Joins("LEFT JOIN portfolios direct ON direct.id = media.portfolio_id").
		Joins("LEFT JOIN projects ON projects.id = media.project_id").
		Joins("LEFT JOIN portfolios derived ON derived.id = projects.portfolio_id").
		Where("media.id = ?", id).
		Take(&row).Error
	return finishOwnership("Media", id, row, err)
}

func finishOwnership(resource string, id uint, row ownershipRow, err error) (*Ownership, error) {
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError(resource, id)
		}
		return nil, models.NewInternalError(err)
	}
	// A parentless row resolves to no owner. That is a data-integrity
	// violation and is reported the same as a missing row.
	if row.OwnerID == nil {
		return nil, models.NewNotFoundError(resource, id)
	}
	return row.toOwnership(), nil
}
