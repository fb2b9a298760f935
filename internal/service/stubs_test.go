package service

import (
	"context"
	"time"

	"folio/internal/models"
	"folio/internal/repository"
)

type ownershipRepoStub struct {
	portfolioFn func(context.Context, uint) (*repository.Ownership, error)
	projectFn   func(context.Context, uint) (*repository.Ownership, error)
	mediaFn     func(context.Context, uint) (*repository.Ownership, error)
}

func (s *ownershipRepoStub) PortfolioOwnership(ctx context.Context, id uint) (*repository.Ownership, error) {
	return s.portfolioFn(ctx, id)
}
func (s *ownershipRepoStub) ProjectOwnership(ctx context.Context, id uint) (*repository.Ownership, error) {
	return s.projectFn(ctx, id)
}
func (s *ownershipRepoStub) MediaOwnership(ctx context.Context, id uint) (*repository.Ownership, error) {
	return s.mediaFn(ctx, id)
}

type shareLinkRepoStub struct {
	createFn             func(context.Context, *models.ShareLink) error
	getActiveByPortfolio func(context.Context, uint, time.Time) (*models.ShareLink, error)
	getActiveByToken     func(context.Context, string, time.Time) (*models.ShareLink, error)
	incrementViewCountFn func(context.Context, uint) error
}

func (s *shareLinkRepoStub) Create(ctx context.Context, link *models.ShareLink) error {
	return s.createFn(ctx, link)
}
func (s *shareLinkRepoStub) GetActiveByPortfolio(ctx context.Context, portfolioID uint, now time.Time) (*models.ShareLink, error) {
	return s.getActiveByPortfolio(ctx, portfolioID, now)
}
func (s *shareLinkRepoStub) GetActiveByToken(ctx context.Context, token string, now time.Time) (*models.ShareLink, error) {
	return s.getActiveByToken(ctx, token, now)
}
func (s *shareLinkRepoStub) IncrementViewCount(ctx context.Context, linkID uint) error {
	return s.incrementViewCountFn(ctx, linkID)
}

type portfolioRepoStub struct {
	createFn             func(context.Context, *models.Portfolio) error
	getByIDFn            func(context.Context, uint) (*models.Portfolio, error)
	getByIDWithContentFn func(context.Context, uint) (*models.Portfolio, error)
	getByShareTokenFn    func(context.Context, string) (*models.Portfolio, error)
	listByUserFn         func(context.Context, uint, int, int) ([]models.Portfolio, error)
	updateFn             func(context.Context, *models.Portfolio) error
	backfillFn           func(context.Context, uint, string) error
	deleteFn             func(context.Context, uint) error
}

func (s *portfolioRepoStub) Create(ctx context.Context, portfolio *models.Portfolio) error {
	return s.createFn(ctx, portfolio)
}
func (s *portfolioRepoStub) GetByID(ctx context.Context, id uint) (*models.Portfolio, error) {
	return s.getByIDFn(ctx, id)
}
func (s *portfolioRepoStub) GetByIDWithContent(ctx context.Context, id uint) (*models.Portfolio, error) {
	return s.getByIDWithContentFn(ctx, id)
}
func (s *portfolioRepoStub) GetByShareToken(ctx context.Context, token string) (*models.Portfolio, error) {
	return s.getByShareTokenFn(ctx, token)
}
func (s *portfolioRepoStub) ListByUser(ctx context.Context, userID uint, limit, offset int) ([]models.Portfolio, error) {
	return s.listByUserFn(ctx, userID, limit, offset)
}
func (s *portfolioRepoStub) Update(ctx context.Context, portfolio *models.Portfolio) error {
	return s.updateFn(ctx, portfolio)
}
func (s *portfolioRepoStub) BackfillShareToken(ctx context.Context, portfolioID uint, token string) error {
	return s.backfillFn(ctx, portfolioID, token)
}
func (s *portfolioRepoStub) Delete(ctx context.Context, id uint) error {
	return s.deleteFn(ctx, id)
}

type analyticsRepoStub struct {
	createFn func(context.Context, *models.AnalyticsEvent) error
}

func (s *analyticsRepoStub) Create(ctx context.Context, event *models.AnalyticsEvent) error {
	return s.createFn(ctx, event)
}

func noopOwnershipRepo() *ownershipRepoStub {
	owned := func(context.Context, uint) (*repository.Ownership, error) {
		return &repository.Ownership{OwnerID: 1}, nil
	}
	return &ownershipRepoStub{portfolioFn: owned, projectFn: owned, mediaFn: owned}
}

func noopShareLinkRepo() *shareLinkRepoStub {
	return &shareLinkRepoStub{
		createFn: func(context.Context, *models.ShareLink) error { return nil },
		getActiveByPortfolio: func(context.Context, uint, time.Time) (*models.ShareLink, error) {
			return nil, nil
		},
		getActiveByToken: func(context.Context, string, time.Time) (*models.ShareLink, error) {
			return nil, models.NewTokenNotFoundError()
		},
		incrementViewCountFn: func(context.Context, uint) error { return nil },
	}
}

func noopPortfolioRepo() *portfolioRepoStub {
	return &portfolioRepoStub{
		createFn: func(context.Context, *models.Portfolio) error { return nil },
		getByIDFn: func(_ context.Context, id uint) (*models.Portfolio, error) {
			return &models.Portfolio{ID: id}, nil
		},
		getByIDWithContentFn: func(_ context.Context, id uint) (*models.Portfolio, error) {
			return &models.Portfolio{ID: id}, nil
		},
		getByShareTokenFn: func(context.Context, string) (*models.Portfolio, error) {
			return nil, models.NewTokenNotFoundError()
		},
		listByUserFn: func(context.Context, uint, int, int) ([]models.Portfolio, error) { return nil, nil },
		updateFn:     func(context.Context, *models.Portfolio) error { return nil },
		backfillFn:   func(context.Context, uint, string) error { return nil },
		deleteFn:     func(context.Context, uint) error { return nil },
	}
}

func noopAnalyticsRepo() *analyticsRepoStub {
	return &analyticsRepoStub{
		createFn: func(context.Context, *models.AnalyticsEvent) error { return nil },
	}
}
