package server

import (
	"time"

	"aktiv/internal/models"
	"aktiv/internal/service"

	"github.com/gofiber/fiber/v2"
)

// CreateActivity handles POST /api/activities
func (s *Server) CreateActivity(c *fiber.Ctx) error {
	userID := c.Locals("userID").(uint)

	var req struct {
		Title           string    `json:"title"`
		Description     string    `json:"description"`
		Category        string    `json:"category"`
		LocationName    string    `json:"location_name"`
		LocationAddress string    `json:"location_address"`
		Latitude        *float64  `json:"latitude"`
		Longitude       *float64  `json:"longitude"`
		ScheduledAt     time.Time `json:"scheduled_at"`
		DurationMinutes int       `json:"duration_minutes"`
		MaxParticipants int       `json:"max_participants"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	activity, err := s.activityService.CreateActivity(c.Context(), service.CreateActivityInput{
		CreatorID:       userID,
		Title:           req.Title,
		Description:     req.Description,
		Category:        req.Category,
		LocationName:    req.LocationName,
		LocationAddress: req.LocationAddress,
		Latitude:        req.Latitude,
		Longitude:       req.Longitude,
		ScheduledAt:     req.ScheduledAt,
		DurationMinutes: req.DurationMinutes,
		MaxParticipants: req.MaxParticipants,
	})
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(activity)
}

// GetActivities handles GET /api/activities?category=&lat=&lon=&radius_km=
func (s *Server) GetActivities(c *fiber.Ctx) error {
	p := parsePagination(c, 20)

	var near *service.NearFilter
	if c.Query("lat") != "" || c.Query("lon") != "" {
		if c.Query("lat") == "" || c.Query("lon") == "" {
			return models.RespondWithError(c, fiber.StatusBadRequest,
				models.NewValidationError("lat and lon must be provided together"))
		}
		near = &service.NearFilter{
			Latitude:  c.QueryFloat("lat"),
			Longitude: c.QueryFloat("lon"),
			RadiusKm:  c.QueryFloat("radius_km", 50),
		}
	}

	activities, err := s.activityService.ListUpcoming(c.Context(), c.Query("category"), near, p.Limit, p.Offset)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(activities)
}

// GetActivity handles GET /api/activities/:id
func (s *Server) GetActivity(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	activity, err := s.activityService.GetActivity(c.Context(), id)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(activity)
}

// JoinActivity handles POST /api/activities/:id/join
func (s *Server) JoinActivity(c *fiber.Ctx) error {
	userID := c.Locals("userID").(uint)
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	activity, err := s.activityService.JoinActivity(c.Context(), id, userID)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(activity)
}

// LeaveActivity handles POST /api/activities/:id/leave
func (s *Server) LeaveActivity(c *fiber.Ctx) error {
	userID := c.Locals("userID").(uint)
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	if err := s.activityService.LeaveActivity(c.Context(), id, userID); err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(fiber.Map{"message": "Left activity"})
}

// CancelActivity handles POST /api/activities/:id/cancel
func (s *Server) CancelActivity(c *fiber.Ctx) error {
	userID := c.Locals("userID").(uint)
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	activity, err := s.activityService.CancelActivity(c.Context(), id, userID)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(activity)
}
