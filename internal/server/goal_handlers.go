package server

import (
	"time"

	"aktiv/internal/models"
	"aktiv/internal/service"

	"github.com/gofiber/fiber/v2"
)

// CreateGoal handles POST /api/goals
func (s *Server) CreateGoal(c *fiber.Ctx) error {
	userID := c.Locals("userID").(uint)

	var req struct {
		Title          string     `json:"title"`
		Description    string     `json:"description"`
		Category       string     `json:"category"`
		Frequency      string     `json:"frequency"`
		FrequencyCount int        `json:"frequency_count"`
		IsPublic       *bool      `json:"is_public"`
		EndDate        *time.Time `json:"end_date"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	goal, err := s.goalService.CreateGoal(c.Context(), service.CreateGoalInput{
		UserID:         userID,
		Title:          req.Title,
		Description:    req.Description,
		Category:       req.Category,
		Frequency:      req.Frequency,
		FrequencyCount: req.FrequencyCount,
		IsPublic:       req.IsPublic,
		EndDate:        req.EndDate,
	})
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(goal)
}

// GetMyGoals handles GET /api/goals with an optional ?status= filter.
func (s *Server) GetMyGoals(c *fiber.Ctx) error {
	userID := c.Locals("userID").(uint)

	goals, err := s.goalService.ListGoals(c.Context(), userID, c.Query("status"))
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(goals)
}

// GetGoal handles GET /api/goals/:id
func (s *Server) GetGoal(c *fiber.Ctx) error {
	userID := c.Locals("userID").(uint)
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	goal, err := s.goalService.GetGoal(c.Context(), userID, id)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(goal)
}

// UpdateGoal handles PUT /api/goals/:id
func (s *Server) UpdateGoal(c *fiber.Ctx) error {
	userID := c.Locals("userID").(uint)
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	var req struct {
		Title       string `json:"title"`
		Description string `json:"description"`
		Frequency   string `json:"frequency"`
		IsPublic    *bool  `json:"is_public"`
		Status      string `json:"status"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	goal, err := s.goalService.UpdateGoal(c.Context(), service.UpdateGoalInput{
		UserID:      userID,
		GoalID:      id,
		Title:       req.Title,
		Description: req.Description,
		Frequency:   req.Frequency,
		IsPublic:    req.IsPublic,
		Status:      req.Status,
	})
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(goal)
}

// DeleteGoal handles DELETE /api/goals/:id
func (s *Server) DeleteGoal(c *fiber.Ctx) error {
	userID := c.Locals("userID").(uint)
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	if err := s.goalService.DeleteGoal(c.Context(), userID, id); err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(fiber.Map{"message": "Goal deleted"})
}
