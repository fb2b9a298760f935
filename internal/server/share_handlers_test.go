package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"folio/internal/auth"
	"folio/internal/config"
	"folio/internal/middleware"
	"folio/internal/models"
	"folio/internal/repository"
	"folio/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeStore is an in-memory backing store for handler tests that need
// several repositories to agree with each other.
type fakeStore struct {
	mu         sync.Mutex
	portfolios map[uint]*models.Portfolio
	links      map[string]*models.ShareLink
	events     []*models.AnalyticsEvent
	nextLinkID uint
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		portfolios: make(map[uint]*models.Portfolio),
		links:      make(map[string]*models.ShareLink),
	}
}

// PortfolioRepository

func (f *fakeStore) Create(_ context.Context, p *models.Portfolio) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.portfolios[p.ID] = p
	return nil
}

func (f *fakeStore) GetByID(_ context.Context, id uint) (*models.Portfolio, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.portfolios[id]
	if !ok {
		return nil, models.NewNotFoundError("Portfolio", id)
	}
	copied := *p
	return &copied, nil
}

func (f *fakeStore) GetByIDWithContent(ctx context.Context, id uint) (*models.Portfolio, error) {
	return f.GetByID(ctx, id)
}

func (f *fakeStore) GetByShareToken(_ context.Context, token string) (*models.Portfolio, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, p := range f.portfolios {
		if p.ShareToken != nil && *p.ShareToken == token {
			copied := *p
			return &copied, nil
		}
	}
	return nil, models.NewTokenNotFoundError()
}

func (f *fakeStore) ListByUser(_ context.Context, userID uint, _, _ int) ([]models.Portfolio, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.Portfolio
	for _, p := range f.portfolios {
		if p.UserID == userID {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (f *fakeStore) Update(_ context.Context, p *models.Portfolio) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.portfolios[p.ID] = p
	return nil
}

func (f *fakeStore) BackfillShareToken(_ context.Context, id uint, token string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if p, ok := f.portfolios[id]; ok && p.ShareToken == nil {
		p.ShareToken = &token
	}
	return nil
}

func (f *fakeStore) Delete(_ context.Context, id uint) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.portfolios[id]; !ok {
		return models.NewNotFoundError("Portfolio", id)
	}
	delete(f.portfolios, id)
	return nil
}

// OwnershipRepository

func (f *fakeStore) PortfolioOwnership(_ context.Context, id uint) (*repository.Ownership, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.portfolios[id]
	if !ok {
		return nil, models.NewNotFoundError("Portfolio", id)
	}
	return &repository.Ownership{OwnerID: p.UserID, Public: p.IsPublic}, nil
}

func (f *fakeStore) ProjectOwnership(_ context.Context, id uint) (*repository.Ownership, error) {
	return nil, models.NewNotFoundError("Project", id)
}

func (f *fakeStore) MediaOwnership(_ context.Context, id uint) (*repository.Ownership, error) {
	return nil, models.NewNotFoundError("Media", id)
}

// ShareLinkRepository

func (f *fakeStore) CreateLink(_ context.Context, link *models.ShareLink) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, taken := f.links[link.Token]; taken {
		return repository.ErrTokenTaken
	}
	f.nextLinkID++
	link.ID = f.nextLinkID
	stored := *link
	f.links[link.Token] = &stored
	return nil
}

func (f *fakeStore) GetActiveByPortfolio(_ context.Context, portfolioID uint, now time.Time) (*models.ShareLink, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var latest *models.ShareLink
	for _, link := range f.links {
		if link.PortfolioID == portfolioID && link.Active(now) {
			if latest == nil || link.ID > latest.ID {
				latest = link
			}
		}
	}
	if latest == nil {
		return nil, nil
	}
	copied := *latest
	return &copied, nil
}

func (f *fakeStore) GetActiveByToken(_ context.Context, token string, now time.Time) (*models.ShareLink, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	link, ok := f.links[token]
	if !ok || !link.Active(now) {
		return nil, models.NewTokenNotFoundError()
	}
	copied := *link
	return &copied, nil
}

func (f *fakeStore) IncrementViewCount(_ context.Context, linkID uint) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, link := range f.links {
		if link.ID == linkID {
			link.ViewCount++
			return nil
		}
	}
	return models.NewNotFoundError("ShareLink", linkID)
}

// AnalyticsRepository

func (f *fakeStore) CreateEvent(_ context.Context, event *models.AnalyticsEvent) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, event)
	return nil
}

func (f *fakeStore) eventCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.events)
}

func (f *fakeStore) lastEvent() *models.AnalyticsEvent {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.events) == 0 {
		return nil
	}
	return f.events[len(f.events)-1]
}

// adapters let one fakeStore satisfy interfaces with clashing method names.
type linkRepoAdapter struct{ *fakeStore }

func (a linkRepoAdapter) Create(ctx context.Context, link *models.ShareLink) error {
	return a.CreateLink(ctx, link)
}

type analyticsRepoAdapter struct{ *fakeStore }

func (a analyticsRepoAdapter) Create(ctx context.Context, event *models.AnalyticsEvent) error {
	return a.CreateEvent(ctx, event)
}

func newShareTestServer(store *fakeStore) (*Server, *fiber.App) {
	resolver := service.NewOwnershipResolver(store)
	recorder := service.NewAnalyticsRecorder(analyticsRepoAdapter{store})
	s := &Server{
		config: &config.Config{
			JWTSecret:    "test_secret",
			ShareBaseURL: "http://localhost:5173/share",
		},
		verifier:      auth.NewVerifier("test_secret"),
		portfolioRepo: store,
		resolver:      resolver,
		analytics:     recorder,
	}
	s.shares = service.NewShareLinkManager(linkRepoAdapter{store}, store, resolver, recorder)

	app := fiber.New()
	app.Post("/api/share/:portfolioId/generate", middleware.RequiredAuth(s.verifier, nil), s.GenerateShareLink)
	app.Get("/api/share/:token", s.RedeemShareLink)
	app.Get("/api/portfolios/:id", middleware.OptionalAuth(s.verifier), s.GetPortfolio)
	app.Put("/api/portfolios/:id", middleware.RequiredAuth(s.verifier, nil), s.UpdatePortfolio)
	return s, app
}

func bearer(t *testing.T, s *Server, userID uint, username string) string {
	t.Helper()
	token, err := s.verifier.Sign(userID, username)
	require.NoError(t, err)
	return "Bearer " + token
}

func doJSON(t *testing.T, app *fiber.App, method, path, authHeader string) (*http.Response, map[string]any) {
	t.Helper()
	req := httptest.NewRequest(method, path, nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	resp, err := app.Test(req)
	require.NoError(t, err)
	var body map[string]any
	_ = json.NewDecoder(resp.Body).Decode(&body)
	_ = resp.Body.Close()
	return resp, body
}

func TestGenerateShareLink(t *testing.T) {
	store := newFakeStore()
	store.portfolios[1] = &models.Portfolio{ID: 1, UserID: 10, Title: "Mine"}
	s, app := newShareTestServer(store)

	owner := bearer(t, s, 10, "owner")
	stranger := bearer(t, s, 11, "stranger")

	// owner issues a link
	resp, body := doJSON(t, app, http.MethodPost, "/api/share/1/generate", owner)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	token, _ := body["token"].(string)
	require.NotEmpty(t, token)
	assert.Equal(t, "http://localhost:5173/share/"+token, body["shareUrl"])
	assert.Nil(t, body["expiresAt"])

	// issuance is idempotent while the link is active
	resp, body = doJSON(t, app, http.MethodPost, "/api/share/1/generate", owner)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, token, body["token"])

	// non-owner gets 403, anonymous gets 401
	resp, _ = doJSON(t, app, http.MethodPost, "/api/share/1/generate", stranger)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	resp, _ = doJSON(t, app, http.MethodPost, "/api/share/1/generate", "")
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	// missing portfolio is 404 even for an authenticated caller
	resp, _ = doJSON(t, app, http.MethodPost, "/api/share/99/generate", owner)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestRedeemShareLink(t *testing.T) {
	store := newFakeStore()
	store.portfolios[1] = &models.Portfolio{ID: 1, UserID: 10, Title: "Mine"}
	s, app := newShareTestServer(store)

	owner := bearer(t, s, 10, "owner")
	resp, body := doJSON(t, app, http.MethodPost, "/api/share/1/generate", owner)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	token := body["token"].(string)

	// anonymous redemption returns the portfolio
	resp, body = doJSON(t, app, http.MethodGet, "/api/share/"+token, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, float64(1), body["id"])

	// the redemption produced exactly one view event tagged with the token
	s.analytics.Wait()
	require.Equal(t, 1, store.eventCount())
	event := store.lastEvent()
	assert.Equal(t, models.EventTypeView, event.EventType)
	assert.Contains(t, event.Payload, `"source":"share_link"`)
	assert.Contains(t, event.Payload, `"token":"`+token+`"`)

	// unknown token is 404
	resp, _ = doJSON(t, app, http.MethodGet, "/api/share/never-issued", "")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestRedeemLegacyInlineTokenHandler(t *testing.T) {
	store := newFakeStore()
	legacy := "grandfathered-token"
	store.portfolios[1] = &models.Portfolio{ID: 1, UserID: 10, Title: "Old", ShareToken: &legacy}
	_, app := newShareTestServer(store)

	resp, body := doJSON(t, app, http.MethodGet, "/api/share/"+legacy, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, float64(1), body["id"])
}

// TestShareLinkLifecycle walks one portfolio through issuance, redemption,
// and visibility changes across three callers.
func TestShareLinkLifecycle(t *testing.T) {
	store := newFakeStore()
	store.portfolios[1] = &models.Portfolio{ID: 1, UserID: 10, Title: "Private", IsPublic: false}
	s, app := newShareTestServer(store)

	owner := bearer(t, s, 10, "u1")
	stranger := bearer(t, s, 20, "u2")

	// owner issues a token
	resp, body := doJSON(t, app, http.MethodPost, "/api/share/1/generate", owner)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	token := body["token"].(string)

	// the token redeems to the portfolio
	resp, body = doJSON(t, app, http.MethodGet, "/api/share/"+token, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, float64(1), body["id"])

	// a non-owner cannot issue
	resp, _ = doJSON(t, app, http.MethodPost, "/api/share/1/generate", stranger)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	// anonymous direct read of the private portfolio fails
	resp, _ = doJSON(t, app, http.MethodGet, "/api/portfolios/1", "")
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	// owner flips it public
	req := httptest.NewRequest(http.MethodPut, "/api/portfolios/1",
		jsonBody(`{"is_public":true}`))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", owner)
	putResp, err := app.Test(req)
	require.NoError(t, err)
	_ = putResp.Body.Close()
	require.Equal(t, http.StatusOK, putResp.StatusCode)

	// now the anonymous read succeeds
	resp, body = doJSON(t, app, http.MethodGet, "/api/portfolios/1", "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, float64(1), body["id"])
}
