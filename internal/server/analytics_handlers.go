package server

import (
	"folio/internal/models"
	"folio/internal/service"

	"github.com/gofiber/fiber/v2"
)

// TrackEvent handles POST /api/analytics/track
// @Summary Ingest an analytics event
// @Description Accepted events are written off the request path; the response never waits for storage.
// @Tags analytics
// @Accept json
// @Produce json
// @Param request body object{portfolio_id=int,event_type=string,payload=string} true "Event"
// @Success 202 {object} object{status=string}
// @Failure 400 {object} object{error=string}
// @Failure 404 {object} object{error=string}
// @Router /analytics/track [post]
func (s *Server) TrackEvent(c *fiber.Ctx) error {
	var req struct {
		PortfolioID uint   `json:"portfolio_id"`
		EventType   string `json:"event_type"`
		Payload     string `json:"payload"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}
	if req.PortfolioID == 0 {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("portfolio_id is required"))
	}
	if req.EventType == "" {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("event_type is required"))
	}

	// Only the portfolio's existence is checked, not readability: viewers
	// who reached a private portfolio through a share link still report
	// interaction and dwell-time events through this endpoint.
	if _, err := s.resolver.ResolveOwner(c.Context(), service.ResourcePortfolio, req.PortfolioID); err != nil {
		return models.RespondError(c, err)
	}

	s.analytics.Record(c.Context(), &models.AnalyticsEvent{
		PortfolioID: req.PortfolioID,
		EventType:   models.EventType(req.EventType),
		Payload:     req.Payload,
	}, requestMeta(c))

	return c.Status(fiber.StatusAccepted).JSON(fiber.Map{
		"status": "accepted",
	})
}
