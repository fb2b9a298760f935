package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"folio/internal/models"
	"folio/internal/repository"
)

func newTestManager(links repository.ShareLinkRepository, portfolios repository.PortfolioRepository) *ShareLinkManager {
	resolver := NewOwnershipResolver(&ownershipRepoStub{
		portfolioFn: func(_ context.Context, id uint) (*repository.Ownership, error) {
			if id == 404 {
				return nil, models.NewNotFoundError("Portfolio", id)
			}
			return &repository.Ownership{OwnerID: 1}, nil
		},
	})
	return NewShareLinkManager(links, portfolios, resolver, NewAnalyticsRecorder(noopAnalyticsRepo()))
}

func TestIssueReusesActiveLink(t *testing.T) {
	createCalls := 0
	links := noopShareLinkRepo()
	links.createFn = func(context.Context, *models.ShareLink) error {
		createCalls++
		return nil
	}
	links.getActiveByPortfolio = func(context.Context, uint, time.Time) (*models.ShareLink, error) {
		return &models.ShareLink{ID: 3, PortfolioID: 7, Token: "existing-token"}, nil
	}

	mgr := newTestManager(links, noopPortfolioRepo())
	for i := 0; i < 2; i++ {
		link, err := mgr.Issue(context.Background(), caller(1), 7, nil)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if link.Token != "existing-token" {
			t.Fatalf("expected existing token back, got %q", link.Token)
		}
	}
	if createCalls != 0 {
		t.Fatalf("expected no inserts while a link is active, got %d", createCalls)
	}
}

func TestIssueRetriesOnTokenCollision(t *testing.T) {
	attempts := 0
	links := noopShareLinkRepo()
	links.createFn = func(_ context.Context, link *models.ShareLink) error {
		attempts++
		if attempts == 1 {
			return repository.ErrTokenTaken
		}
		link.ID = 1
		return nil
	}

	mgr := newTestManager(links, noopPortfolioRepo())
	seq := 0
	mgr.generateToken = func() (string, error) {
		seq++
		return fmt.Sprintf("token-%d", seq), nil
	}

	link, err := mgr.Issue(context.Background(), caller(1), 7, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if attempts != 2 {
		t.Fatalf("expected 2 insert attempts, got %d", attempts)
	}
	if link.Token != "token-2" {
		t.Fatalf("expected fresh token after collision, got %q", link.Token)
	}
}

func TestIssueCollisionExhaustionIsFatal(t *testing.T) {
	attempts := 0
	links := noopShareLinkRepo()
	links.createFn = func(context.Context, *models.ShareLink) error {
		attempts++
		return repository.ErrTokenTaken
	}

	mgr := newTestManager(links, noopPortfolioRepo())
	_, err := mgr.Issue(context.Background(), caller(1), 7, nil)
	assertAppError(t, err, models.CodeInternal)
	if attempts != maxTokenAttempts {
		t.Fatalf("expected %d attempts before giving up, got %d", maxTokenAttempts, attempts)
	}
}

func TestIssueAuthorization(t *testing.T) {
	mgr := newTestManager(noopShareLinkRepo(), noopPortfolioRepo())

	// issuance is owner-only even for readable portfolios
	_, err := mgr.Issue(context.Background(), caller(2), 7, nil)
	assertAppError(t, err, models.CodeForbidden)

	_, err = mgr.Issue(context.Background(), nil, 7, nil)
	assertAppError(t, err, models.CodeForbidden)

	_, err = mgr.Issue(context.Background(), caller(1), 404, nil)
	assertAppError(t, err, models.CodeNotFound)
}

func TestIssueSetsExpiry(t *testing.T) {
	var created *models.ShareLink
	links := noopShareLinkRepo()
	links.createFn = func(_ context.Context, link *models.ShareLink) error {
		created = link
		return nil
	}

	mgr := newTestManager(links, noopPortfolioRepo())
	issuedAt := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	mgr.now = func() time.Time { return issuedAt }

	ttl := 7 * 24 * time.Hour
	if _, err := mgr.Issue(context.Background(), caller(1), 7, &ttl); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if created.ExpiresAt == nil || !created.ExpiresAt.Equal(issuedAt.Add(ttl)) {
		t.Fatalf("expected expiry %v, got %v", issuedAt.Add(ttl), created.ExpiresAt)
	}

	created = nil
	if _, err := mgr.Issue(context.Background(), caller(1), 7, nil); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if created.ExpiresAt != nil {
		t.Fatalf("expected no expiry, got %v", created.ExpiresAt)
	}
}

func TestIssueBackfillFailureIsNonFatal(t *testing.T) {
	portfolios := noopPortfolioRepo()
	portfolios.backfillFn = func(context.Context, uint, string) error {
		return models.NewInternalError(errors.New("legacy column update failed"))
	}

	mgr := newTestManager(noopShareLinkRepo(), portfolios)
	link, err := mgr.Issue(context.Background(), caller(1), 7, nil)
	if err != nil {
		t.Fatalf("expected issuance to survive backfill failure, got %v", err)
	}
	if link == nil || link.Token == "" {
		t.Fatal("expected a usable link despite backfill failure")
	}
}

func TestRedeemActiveLink(t *testing.T) {
	incremented := 0
	links := noopShareLinkRepo()
	links.getActiveByToken = func(_ context.Context, token string, _ time.Time) (*models.ShareLink, error) {
		if token != "tok" {
			return nil, models.NewTokenNotFoundError()
		}
		return &models.ShareLink{ID: 5, PortfolioID: 9, Token: token}, nil
	}
	links.incrementViewCountFn = func(_ context.Context, id uint) error {
		incremented++
		return nil
	}

	events := make(chan *models.AnalyticsEvent, 1)
	analytics := NewAnalyticsRecorder(&analyticsRepoStub{
		createFn: func(_ context.Context, event *models.AnalyticsEvent) error {
			events <- event
			return nil
		},
	})

	resolver := NewOwnershipResolver(noopOwnershipRepo())
	mgr := NewShareLinkManager(links, noopPortfolioRepo(), resolver, analytics)

	portfolio, err := mgr.Redeem(context.Background(), "tok", RequestMeta{UserAgent: "test-agent"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if portfolio.ID != 9 {
		t.Fatalf("expected portfolio 9, got %d", portfolio.ID)
	}
	if incremented != 1 {
		t.Fatalf("expected one view count increment, got %d", incremented)
	}

	analytics.Wait()
	select {
	case event := <-events:
		if event.PortfolioID != 9 || event.EventType != models.EventTypeView {
			t.Fatalf("unexpected event %+v", event)
		}
		if event.UserAgent != "test-agent" {
			t.Fatalf("expected request metadata on event, got %q", event.UserAgent)
		}
		if event.Payload != `{"source":"share_link","token":"tok"}` {
			t.Fatalf("expected payload tagged with source and token, got %q", event.Payload)
		}
	default:
		t.Fatal("expected a view event to be recorded")
	}
}

func TestRedeemLegacyInlineToken(t *testing.T) {
	portfolios := noopPortfolioRepo()
	portfolios.getByShareTokenFn = func(_ context.Context, token string) (*models.Portfolio, error) {
		if token != "legacy-tok" {
			return nil, models.NewTokenNotFoundError()
		}
		return &models.Portfolio{ID: 12}, nil
	}

	mgr := newTestManager(noopShareLinkRepo(), portfolios)
	portfolio, err := mgr.Redeem(context.Background(), "legacy-tok", RequestMeta{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if portfolio.ID != 12 {
		t.Fatalf("expected portfolio 12, got %d", portfolio.ID)
	}
}

func TestRedeemUnknownAndExpiredAreIndistinguishable(t *testing.T) {
	links := noopShareLinkRepo()
	links.getActiveByToken = func(context.Context, string, time.Time) (*models.ShareLink, error) {
		// an expired row and a missing row both fall out of the expiry filter
		return nil, models.NewTokenNotFoundError()
	}

	mgr := newTestManager(links, noopPortfolioRepo())
	_, errExpired := mgr.Redeem(context.Background(), "once-valid", RequestMeta{})
	_, errUnknown := mgr.Redeem(context.Background(), "never-issued", RequestMeta{})

	assertAppError(t, errExpired, models.CodeNotFound)
	assertAppError(t, errUnknown, models.CodeNotFound)
	if errExpired.Error() != errUnknown.Error() {
		t.Fatalf("expired and unknown tokens must be indistinguishable: %q vs %q",
			errExpired.Error(), errUnknown.Error())
	}
}

func TestRedeemTimeoutIsNotNotFound(t *testing.T) {
	links := noopShareLinkRepo()
	links.getActiveByToken = func(context.Context, string, time.Time) (*models.ShareLink, error) {
		return nil, models.NewInternalError(context.DeadlineExceeded)
	}

	mgr := newTestManager(links, noopPortfolioRepo())
	_, err := mgr.Redeem(context.Background(), "tok", RequestMeta{})
	assertAppError(t, err, models.CodeTimeout)
}

// memoryLinkRepo backs the concurrency test with real uniqueness semantics.
type memoryLinkRepo struct {
	mu    sync.Mutex
	seq   uint
	links map[string]*models.ShareLink
}

func newMemoryLinkRepo() *memoryLinkRepo {
	return &memoryLinkRepo{links: make(map[string]*models.ShareLink)}
}

func (r *memoryLinkRepo) Create(_ context.Context, link *models.ShareLink) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, taken := r.links[link.Token]; taken {
		return repository.ErrTokenTaken
	}
	r.seq++
	link.ID = r.seq
	stored := *link
	r.links[link.Token] = &stored
	return nil
}

func (r *memoryLinkRepo) GetActiveByPortfolio(_ context.Context, portfolioID uint, now time.Time) (*models.ShareLink, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var latest *models.ShareLink
	for _, link := range r.links {
		if link.PortfolioID != portfolioID || !link.Active(now) {
			continue
		}
		if latest == nil || link.ID > latest.ID {
			latest = link
		}
	}
	if latest == nil {
		return nil, nil
	}
	found := *latest
	return &found, nil
}

func (r *memoryLinkRepo) GetActiveByToken(_ context.Context, token string, now time.Time) (*models.ShareLink, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	link, ok := r.links[token]
	if !ok || !link.Active(now) {
		return nil, models.NewTokenNotFoundError()
	}
	found := *link
	return &found, nil
}

func (r *memoryLinkRepo) IncrementViewCount(_ context.Context, linkID uint) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, link := range r.links {
		if link.ID == linkID {
			link.ViewCount++
			return nil
		}
	}
	return models.NewNotFoundError("ShareLink", linkID)
}

func TestIssueConcurrent(t *testing.T) {
	links := newMemoryLinkRepo()
	mgr := newTestManager(links, noopPortfolioRepo())

	const workers = 20
	tokens := make([]string, workers)
	errs := make([]error, workers)

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			link, err := mgr.Issue(context.Background(), caller(1), 7, nil)
			if err != nil {
				errs[i] = err
				return
			}
			tokens[i] = link.Token
		}(i)
	}
	wg.Wait()

	for i, err := range errs {
		if err != nil {
			t.Fatalf("worker %d: unexpected error %v", i, err)
		}
	}
	// concurrent issuance may mint more than one link, but every token it
	// hands out must redeem
	for i, token := range tokens {
		if _, err := mgr.Redeem(context.Background(), token, RequestMeta{}); err != nil {
			t.Fatalf("worker %d token failed to redeem: %v", i, err)
		}
	}
}
