package server

import (
	"folio/internal/models"
	"folio/internal/service"
	"folio/internal/validation"

	"github.com/gofiber/fiber/v2"
)

// CreateProject handles POST /api/portfolios/:id/projects
// @Summary Add a project to a portfolio
// @Tags projects
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Portfolio ID"
// @Success 201 {object} models.Project
// @Failure 403 {object} object{error=string}
// @Failure 404 {object} object{error=string}
// @Router /portfolios/{id}/projects [post]
func (s *Server) CreateProject(c *fiber.Ctx) error {
	portfolioID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	if err := s.resolver.Authorize(c.Context(), s.caller(c), service.ResourcePortfolio, portfolioID, service.AccessWrite); err != nil {
		return models.RespondError(c, err)
	}

	var req struct {
		Title       string `json:"title"`
		Description string `json:"description"`
		Position    int    `json:"position"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}
	if err := validation.ValidateTitle(req.Title); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError(err.Error()))
	}

	project := &models.Project{
		PortfolioID: portfolioID,
		Title:       req.Title,
		Description: req.Description,
		Position:    req.Position,
	}
	if err := s.projectRepo.Create(c.Context(), project); err != nil {
		return models.RespondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(project)
}

// GetProject handles GET /api/projects/:id
// @Summary Get a project with its media
// @Tags projects
// @Produce json
// @Param id path int true "Project ID"
// @Success 200 {object} models.Project
// @Failure 403 {object} object{error=string}
// @Failure 404 {object} object{error=string}
// @Router /projects/{id} [get]
func (s *Server) GetProject(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	if err := s.resolver.Authorize(c.Context(), s.caller(c), service.ResourceProject, id, service.AccessRead); err != nil {
		return models.RespondError(c, err)
	}

	project, err := s.projectRepo.GetByID(c.Context(), id)
	if err != nil {
		return models.RespondError(c, err)
	}
	return c.JSON(project)
}

// UpdateProject handles PUT /api/projects/:id
// @Summary Update a project
// @Tags projects
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Project ID"
// @Success 200 {object} models.Project
// @Failure 403 {object} object{error=string}
// @Failure 404 {object} object{error=string}
// @Router /projects/{id} [put]
func (s *Server) UpdateProject(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	if err := s.resolver.Authorize(c.Context(), s.caller(c), service.ResourceProject, id, service.AccessWrite); err != nil {
		return models.RespondError(c, err)
	}

	var req struct {
		Title       *string `json:"title"`
		Description *string `json:"description"`
		Position    *int    `json:"position"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	project, err := s.projectRepo.GetByID(c.Context(), id)
	if err != nil {
		return models.RespondError(c, err)
	}

	if req.Title != nil {
		if verr := validation.ValidateTitle(*req.Title); verr != nil {
			return models.RespondWithError(c, fiber.StatusBadRequest,
				models.NewValidationError(verr.Error()))
		}
		project.Title = *req.Title
	}
	if req.Description != nil {
		project.Description = *req.Description
	}
	if req.Position != nil {
		project.Position = *req.Position
	}

	if err := s.projectRepo.Update(c.Context(), project); err != nil {
		return models.RespondError(c, err)
	}
	return c.JSON(project)
}

// DeleteProject handles DELETE /api/projects/:id
// @Summary Delete a project and its media
// @Tags projects
// @Security BearerAuth
// @Param id path int true "Project ID"
// @Success 204
// @Failure 403 {object} object{error=string}
// @Failure 404 {object} object{error=string}
// @Router /projects/{id} [delete]
func (s *Server) DeleteProject(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	if err := s.resolver.Authorize(c.Context(), s.caller(c), service.ResourceProject, id, service.AccessWrite); err != nil {
		return models.RespondError(c, err)
	}

	if err := s.projectRepo.Delete(c.Context(), id); err != nil {
		return models.RespondError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}
