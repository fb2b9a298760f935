package service

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"folio/internal/auth"
	"folio/internal/middleware"
	"folio/internal/models"
	"folio/internal/observability"
	"folio/internal/repository"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

const (
	// shareTokenBytes gives 64 hex characters of token, matching the
	// column width and leaving collisions a purely theoretical concern.
	shareTokenBytes = 32
	// maxTokenAttempts bounds the retry loop on a token collision. The
	// loop exists for databases restored with stale rows, not for random
	// collisions, so a small bound is plenty.
	maxTokenAttempts = 3

	issueTimeout  = 5 * time.Second
	redeemTimeout = 5 * time.Second
)

// ShareLinkManager issues and redeems share links. Issuance is idempotent
// per portfolio: while an unexpired link exists, repeat requests hand back
// that link instead of minting another.
type ShareLinkManager struct {
	links      repository.ShareLinkRepository
	portfolios repository.PortfolioRepository
	resolver   *OwnershipResolver
	analytics  *AnalyticsRecorder

	// generateToken and now are swapped out in tests.
	generateToken func() (string, error)
	now           func() time.Time
}

func NewShareLinkManager(
	links repository.ShareLinkRepository,
	portfolios repository.PortfolioRepository,
	resolver *OwnershipResolver,
	analytics *AnalyticsRecorder,
) *ShareLinkManager {
	return &ShareLinkManager{
		links:         links,
		portfolios:    portfolios,
		resolver:      resolver,
		analytics:     analytics,
		generateToken: generateShareToken,
		now:           time.Now,
	}
}

func generateShareToken() (string, error) {
	buf := make([]byte, shareTokenBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generating share token: %w", err)
	}
	return hex.EncodeToString(buf), nil
}

// Issue creates a share link for the portfolio, or returns the existing
// unexpired one. Only the portfolio owner may issue; public visibility does
// not substitute. expiresIn of nil means the link never expires.
func (m *ShareLinkManager) Issue(ctx context.Context, caller *auth.Identity, portfolioID uint, expiresIn *time.Duration) (*models.ShareLink, error) {
	ctx, cancel := context.WithTimeout(ctx, issueTimeout)
	defer cancel()
	span, ctx := observability.NewSpan(ctx, "share_link.issue",
		trace.WithAttributes(attribute.Int64("portfolio.id", int64(portfolioID))))
	defer span.End()

	link, err := m.issue(ctx, caller, portfolioID, expiresIn)
	if err != nil {
		span.SetError(err)
		return nil, err
	}
	span.AddAttributes(attribute.Int64("share_link.id", int64(link.ID)))
	return link, nil
}

func (m *ShareLinkManager) issue(ctx context.Context, caller *auth.Identity, portfolioID uint, expiresIn *time.Duration) (*models.ShareLink, error) {
	if err := m.resolver.Authorize(ctx, caller, ResourcePortfolio, portfolioID, AccessWrite); err != nil {
		return nil, asTimeout(err, "share link issuance")
	}

	existing, err := m.links.GetActiveByPortfolio(ctx, portfolioID, m.now())
	if err != nil {
		return nil, asTimeout(err, "share link issuance")
	}
	if existing != nil {
		observability.ShareLinksIssued.WithLabelValues("reused").Inc()
		return existing, nil
	}

	var expiresAt *time.Time
	if expiresIn != nil {
		t := m.now().Add(*expiresIn)
		expiresAt = &t
	}

	for attempt := 0; attempt < maxTokenAttempts; attempt++ {
		token, err := m.generateToken()
		if err != nil {
			return nil, models.NewInternalError(err)
		}
		link := &models.ShareLink{
			PortfolioID: portfolioID,
			Token:       token,
			ExpiresAt:   expiresAt,
		}
		err = m.links.Create(ctx, link)
		if errors.Is(err, repository.ErrTokenTaken) {
			observability.ShareTokenCollisions.Inc()
			continue
		}
		if err != nil {
			return nil, asTimeout(err, "share link issuance")
		}
		m.backfillPortfolioToken(ctx, portfolioID, token)
		observability.ShareLinksIssued.WithLabelValues("issued").Inc()
		return link, nil
	}
	return nil, models.NewInternalError(fmt.Errorf("share token collision persisted after %d attempts", maxTokenAttempts))
}

// backfillPortfolioToken mirrors the token onto the portfolio row that
// older clients still read it from. Best effort: the share link row is the
// source of truth and a failed mirror only costs the legacy read path.
func (m *ShareLinkManager) backfillPortfolioToken(ctx context.Context, portfolioID uint, token string) {
	if err := m.portfolios.BackfillShareToken(ctx, portfolioID, token); err != nil {
		middleware.Logger.WarnContext(ctx, "share token backfill failed",
			"portfolio_id", portfolioID,
			"error", err)
	}
}

// Redeem resolves a share token to the portfolio it grants, with projects
// and media preloaded. Tokens are looked up among unexpired share links
// first, then against the legacy token column on portfolios. An expired or
// unknown token produces the same not-found error either way.
//
// A successful redemption records a view event off the request path.
func (m *ShareLinkManager) Redeem(ctx context.Context, token string, meta RequestMeta) (*models.Portfolio, error) {
	ctx, cancel := context.WithTimeout(ctx, redeemTimeout)
	defer cancel()
	// the token itself never goes on the span; it is a capability
	span, ctx := observability.NewSpan(ctx, "share_link.redeem")
	defer span.End()

	portfolio, err := m.redeem(ctx, token, meta)
	if err != nil {
		span.SetError(err)
		return nil, err
	}
	span.AddAttributes(attribute.Int64("portfolio.id", int64(portfolio.ID)))
	return portfolio, nil
}

func (m *ShareLinkManager) redeem(ctx context.Context, token string, meta RequestMeta) (*models.Portfolio, error) {
	link, err := m.links.GetActiveByToken(ctx, token, m.now())
	switch {
	case err == nil:
		portfolio, err := m.portfolios.GetByIDWithContent(ctx, link.PortfolioID)
		if err != nil {
			return nil, asTimeout(err, "share link redemption")
		}
		if err := m.links.IncrementViewCount(ctx, link.ID); err != nil {
			middleware.Logger.WarnContext(ctx, "share link view count update failed",
				"share_link_id", link.ID,
				"error", err)
		}
		m.recordView(ctx, portfolio.ID, token, meta)
		observability.ShareLinksRedeemed.WithLabelValues("link").Inc()
		return portfolio, nil
	case isNotFound(err):
		portfolio, legacyErr := m.portfolios.GetByShareToken(ctx, token)
		if legacyErr != nil {
			observability.ShareLinksRedeemed.WithLabelValues("miss").Inc()
			return nil, asTimeout(legacyErr, "share link redemption")
		}
		m.recordView(ctx, portfolio.ID, token, meta)
		observability.ShareLinksRedeemed.WithLabelValues("legacy").Inc()
		return portfolio, nil
	default:
		return nil, asTimeout(err, "share link redemption")
	}
}

func (m *ShareLinkManager) recordView(ctx context.Context, portfolioID uint, token string, meta RequestMeta) {
	m.analytics.Record(ctx, &models.AnalyticsEvent{
		PortfolioID: portfolioID,
		EventType:   models.EventTypeView,
		Payload:     fmt.Sprintf(`{"source":"share_link","token":%q}`, token),
	}, meta)
}

// isNotFound reports whether err is the deliberately vague token not-found
// error, as opposed to a timeout or a database failure that must not fall
// through to the legacy lookup.
func isNotFound(err error) bool {
	var appErr *models.AppError
	return errors.As(err, &appErr) && appErr.Code == models.CodeNotFound
}

// asTimeout rewrites a deadline expiry into the timeout error so callers
// see an explicit slow-dependency outcome rather than a misleading
// not-found or internal failure.
func asTimeout(err error, operation string) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return models.NewTimeoutError(operation)
	}
	return err
}
