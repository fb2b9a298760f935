package server

import (
	"folio/internal/models"
	"folio/internal/service"
	"folio/internal/validation"

	"github.com/gofiber/fiber/v2"
)

// GetMyPortfolios handles GET /api/portfolios
// @Summary List own portfolios
// @Tags portfolios
// @Produce json
// @Security BearerAuth
// @Param limit query int false "Page size" default(20)
// @Param offset query int false "Offset" default(0)
// @Success 200 {array} models.Portfolio
// @Router /portfolios [get]
func (s *Server) GetMyPortfolios(c *fiber.Ctx) error {
	p := parsePagination(c, 20)
	portfolios, err := s.portfolioRepo.ListByUser(c.Context(), s.callerID(c), p.Limit, p.Offset)
	if err != nil {
		return models.RespondError(c, err)
	}
	return c.JSON(portfolios)
}

// CreatePortfolio handles POST /api/portfolios
// @Summary Create a portfolio
// @Tags portfolios
// @Accept json
// @Produce json
// @Security BearerAuth
// @Success 201 {object} models.Portfolio
// @Failure 400 {object} object{error=string}
// @Router /portfolios [post]
func (s *Server) CreatePortfolio(c *fiber.Ctx) error {
	var req struct {
		Title       string `json:"title"`
		Description string `json:"description"`
		IsPublic    bool   `json:"is_public"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}
	if err := validation.ValidateTitle(req.Title); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError(err.Error()))
	}

	portfolio := &models.Portfolio{
		UserID:      s.callerID(c),
		Title:       req.Title,
		Description: req.Description,
		IsPublic:    req.IsPublic,
	}
	if err := s.portfolioRepo.Create(c.Context(), portfolio); err != nil {
		return models.RespondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(portfolio)
}

// GetPortfolio handles GET /api/portfolios/:id
// @Summary Get a portfolio with its projects and media
// @Description Owners always see their portfolio; anonymous callers only see public ones.
// @Tags portfolios
// @Produce json
// @Param id path int true "Portfolio ID"
// @Success 200 {object} models.Portfolio
// @Failure 403 {object} object{error=string}
// @Failure 404 {object} object{error=string}
// @Router /portfolios/{id} [get]
func (s *Server) GetPortfolio(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	if err := s.resolver.Authorize(c.Context(), s.caller(c), service.ResourcePortfolio, id, service.AccessRead); err != nil {
		return models.RespondError(c, err)
	}

	portfolio, err := s.portfolioRepo.GetByIDWithContent(c.Context(), id)
	if err != nil {
		return models.RespondError(c, err)
	}
	return c.JSON(portfolio)
}

// UpdatePortfolio handles PUT /api/portfolios/:id
// @Summary Update a portfolio
// @Tags portfolios
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Portfolio ID"
// @Success 200 {object} models.Portfolio
// @Failure 403 {object} object{error=string}
// @Failure 404 {object} object{error=string}
// @Router /portfolios/{id} [put]
func (s *Server) UpdatePortfolio(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	if err := s.resolver.Authorize(c.Context(), s.caller(c), service.ResourcePortfolio, id, service.AccessWrite); err != nil {
		return models.RespondError(c, err)
	}

	var req struct {
		Title       *string `json:"title"`
		Description *string `json:"description"`
		IsPublic    *bool   `json:"is_public"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	portfolio, err := s.portfolioRepo.GetByID(c.Context(), id)
	if err != nil {
		return models.RespondError(c, err)
	}

	if req.Title != nil {
		if verr := validation.ValidateTitle(*req.Title); verr != nil {
			return models.RespondWithError(c, fiber.StatusBadRequest,
				models.NewValidationError(verr.Error()))
		}
		portfolio.Title = *req.Title
	}
	if req.Description != nil {
		portfolio.Description = *req.Description
	}
	if req.IsPublic != nil {
		portfolio.IsPublic = *req.IsPublic
	}

	if err := s.portfolioRepo.Update(c.Context(), portfolio); err != nil {
		return models.RespondError(c, err)
	}
	return c.JSON(portfolio)
}

// DeletePortfolio handles DELETE /api/portfolios/:id
// @Summary Delete a portfolio and everything under it
// @Tags portfolios
// @Security BearerAuth
// @Param id path int true "Portfolio ID"
// @Success 204
// @Failure 403 {object} object{error=string}
// @Failure 404 {object} object{error=string}
// @Router /portfolios/{id} [delete]
func (s *Server) DeletePortfolio(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	if err := s.resolver.Authorize(c.Context(), s.caller(c), service.ResourcePortfolio, id, service.AccessWrite); err != nil {
		return models.RespondError(c, err)
	}

	if err := s.portfolioRepo.Delete(c.Context(), id); err != nil {
		return models.RespondError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}
