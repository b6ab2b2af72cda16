package server

import (
	"aktiv/internal/models"
	"aktiv/internal/service"

	"github.com/gofiber/fiber/v2"
)

// CreateCheckin handles POST /api/goals/:id/checkins
func (s *Server) CreateCheckin(c *fiber.Ctx) error {
	userID := c.Locals("userID").(uint)
	goalID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	var req struct {
		Note string `json:"note"`
		Mood string `json:"mood"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	checkin, err := s.checkinService.CreateCheckin(c.Context(), service.CreateCheckinInput{
		UserID: userID,
		GoalID: goalID,
		Note:   req.Note,
		Mood:   req.Mood,
	})
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(checkin)
}

// GetGoalCheckins handles GET /api/goals/:id/checkins
func (s *Server) GetGoalCheckins(c *fiber.Ctx) error {
	userID := c.Locals("userID").(uint)
	goalID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	p := parsePagination(c, 20)

	checkins, err := s.checkinService.ListByGoal(c.Context(), userID, goalID, p.Limit, p.Offset)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(checkins)
}

// GetRecentCheckins handles GET /api/checkins/recent?days=30
func (s *Server) GetRecentCheckins(c *fiber.Ctx) error {
	userID := c.Locals("userID").(uint)
	days := c.QueryInt("days", 30)

	checkins, err := s.checkinService.RecentActivity(c.Context(), userID, days)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(checkins)
}
