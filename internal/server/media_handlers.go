package server

import (
	"folio/internal/models"
	"folio/internal/service"
	"folio/internal/validation"

	"github.com/gofiber/fiber/v2"
)

type mediaRequest struct {
	URL      string `json:"url"`
	MimeType string `json:"mime_type"`
	Caption  string `json:"caption"`
	Position int    `json:"position"`
}

func parseMediaRequest(c *fiber.Ctx) (*mediaRequest, error) {
	var req mediaRequest
	if err := c.BodyParser(&req); err != nil {
		_ = models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
		return nil, errResponseWritten
	}
	if err := validation.ValidateMediaURL(req.URL); err != nil {
		_ = models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError(err.Error()))
		return nil, errResponseWritten
	}
	return &req, nil
}

// CreatePortfolioMedia handles POST /api/portfolios/:id/media
// @Summary Attach media metadata directly to a portfolio
// @Tags media
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Portfolio ID"
// @Success 201 {object} models.Media
// @Failure 403 {object} object{error=string}
// @Failure 404 {object} object{error=string}
// @Router /portfolios/{id}/media [post]
func (s *Server) CreatePortfolioMedia(c *fiber.Ctx) error {
	portfolioID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	if err := s.resolver.Authorize(c.Context(), s.caller(c), service.ResourcePortfolio, portfolioID, service.AccessWrite); err != nil {
		return models.RespondError(c, err)
	}

	req, err := parseMediaRequest(c)
	if err != nil {
		return nil
	}

	media := &models.Media{
		PortfolioID: &portfolioID,
		URL:         req.URL,
		MimeType:    req.MimeType,
		Caption:     req.Caption,
		Position:    req.Position,
	}
	if err := s.mediaRepo.Create(c.Context(), media); err != nil {
		return models.RespondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(media)
}

// CreateProjectMedia handles POST /api/projects/:id/media
// @Summary Attach media metadata to a project
// @Tags media
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Project ID"
// @Success 201 {object} models.Media
// @Failure 403 {object} object{error=string}
// @Failure 404 {object} object{error=string}
// @Router /projects/{id}/media [post]
func (s *Server) CreateProjectMedia(c *fiber.Ctx) error {
	projectID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	if err := s.resolver.Authorize(c.Context(), s.caller(c), service.ResourceProject, projectID, service.AccessWrite); err != nil {
		return models.RespondError(c, err)
	}

	req, err := parseMediaRequest(c)
	if err != nil {
		return nil
	}

	media := &models.Media{
		ProjectID: &projectID,
		URL:       req.URL,
		MimeType:  req.MimeType,
		Caption:   req.Caption,
		Position:  req.Position,
	}
	if err := s.mediaRepo.Create(c.Context(), media); err != nil {
		return models.RespondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(media)
}

// GetMedia handles GET /api/media/:id
// @Summary Get a media item
// @Tags media
// @Produce json
// @Param id path int true "Media ID"
// @Success 200 {object} models.Media
// @Failure 403 {object} object{error=string}
// @Failure 404 {object} object{error=string}
// @Router /media/{id} [get]
func (s *Server) GetMedia(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	if err := s.resolver.Authorize(c.Context(), s.caller(c), service.ResourceMedia, id, service.AccessRead); err != nil {
		return models.RespondError(c, err)
	}

	media, err := s.mediaRepo.GetByID(c.Context(), id)
	if err != nil {
		return models.RespondError(c, err)
	}
	return c.JSON(media)
}

// UpdateMedia handles PUT /api/media/:id
// @Summary Update media metadata
// @Tags media
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Media ID"
// @Success 200 {object} models.Media
// @Failure 403 {object} object{error=string}
// @Failure 404 {object} object{error=string}
// @Router /media/{id} [put]
func (s *Server) UpdateMedia(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	if err := s.resolver.Authorize(c.Context(), s.caller(c), service.ResourceMedia, id, service.AccessWrite); err != nil {
		return models.RespondError(c, err)
	}

	var req struct {
		URL      *string `json:"url"`
		MimeType *string `json:"mime_type"`
		Caption  *string `json:"caption"`
		Position *int    `json:"position"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	media, err := s.mediaRepo.GetByID(c.Context(), id)
	if err != nil {
		return models.RespondError(c, err)
	}

	if req.URL != nil {
		if verr := validation.ValidateMediaURL(*req.URL); verr != nil {
			return models.RespondWithError(c, fiber.StatusBadRequest,
				models.NewValidationError(verr.Error()))
		}
		media.URL = *req.URL
	}
	if req.MimeType != nil {
		media.MimeType = *req.MimeType
	}
	if req.Caption != nil {
		media.Caption = *req.Caption
	}
	if req.Position != nil {
		media.Position = *req.Position
	}

	if err := s.mediaRepo.Update(c.Context(), media); err != nil {
		return models.RespondError(c, err)
	}
	return c.JSON(media)
}

// DeleteMedia handles DELETE /api/media/:id
// @Summary Delete a media item
// @Tags media
// @Security BearerAuth
// @Param id path int true "Media ID"
// @Success 204
// @Failure 403 {object} object{error=string}
// @Failure 404 {object} object{error=string}
// @Router /media/{id} [delete]
func (s *Server) DeleteMedia(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	if err := s.resolver.Authorize(c.Context(), s.caller(c), service.ResourceMedia, id, service.AccessWrite); err != nil {
		return models.RespondError(c, err)
	}

	if err := s.mediaRepo.Delete(c.Context(), id); err != nil {
		return models.RespondError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}
