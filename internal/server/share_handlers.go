package server

import (
	"strings"
	"time"

	"folio/internal/models"

	"github.com/gofiber/fiber/v2"
)

// maxShareExpiryDays caps caller-chosen link lifetimes.
const maxShareExpiryDays = 365

// GenerateShareLink handles POST /api/share/:portfolioId/generate
// @Summary Issue (or reuse) a share link for a portfolio
// @Description While an unexpired link exists, repeat calls return the same token.
// @Tags share
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param portfolioId path int true "Portfolio ID"
// @Param request body object{expires_in_days=int} false "Optional expiry; omit for a permanent link"
// @Success 200 {object} object{shareUrl=string,token=string,expiresAt=string}
// @Failure 403 {object} object{error=string}
// @Failure 404 {object} object{error=string}
// @Router /share/{portfolioId}/generate [post]
func (s *Server) GenerateShareLink(c *fiber.Ctx) error {
	portfolioID, err := s.parseID(c, "portfolioId")
	if err != nil {
		return nil
	}

	var req struct {
		ExpiresInDays *int `json:"expires_in_days"`
	}
	// the body is optional; a bare POST issues a permanent link
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&req); err != nil {
			return models.RespondWithError(c, fiber.StatusBadRequest,
				models.NewValidationError("Invalid request body"))
		}
	}

	var expiresIn *time.Duration
	if req.ExpiresInDays != nil {
		days := *req.ExpiresInDays
		if days <= 0 || days > maxShareExpiryDays {
			return models.RespondWithError(c, fiber.StatusBadRequest,
				models.NewValidationError("expires_in_days must be between 1 and 365"))
		}
		d := time.Duration(days) * 24 * time.Hour
		expiresIn = &d
	}

	link, err := s.shares.Issue(c.Context(), s.caller(c), portfolioID, expiresIn)
	if err != nil {
		return models.RespondError(c, err)
	}

	var expiresAt *string
	if link.ExpiresAt != nil {
		v := link.ExpiresAt.UTC().Format(time.RFC3339)
		expiresAt = &v
	}

	return c.JSON(fiber.Map{
		"shareUrl":  s.shareURL(link.Token),
		"token":     link.Token,
		"expiresAt": expiresAt,
	})
}

// RedeemShareLink handles GET /api/share/:token
// @Summary Redeem a share token
// @Description Resolves a token to the shared portfolio with projects and media. Expired and unknown tokens are both 404.
// @Tags share
// @Produce json
// @Param token path string true "Share token"
// @Success 200 {object} models.Portfolio
// @Failure 404 {object} object{error=string}
// @Failure 504 {object} object{error=string}
// @Router /share/{token} [get]
func (s *Server) RedeemShareLink(c *fiber.Ctx) error {
	token := c.Params("token")
	if token == "" {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Share token is required"))
	}

	portfolio, err := s.shares.Redeem(c.Context(), token, requestMeta(c))
	if err != nil {
		return models.RespondError(c, err)
	}
	return c.JSON(portfolio)
}

func (s *Server) shareURL(token string) string {
	base := strings.TrimRight(s.config.ShareBaseURL, "/")
	return base + "/" + token
}
