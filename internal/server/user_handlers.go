package server

import (
	"aktiv/internal/models"
	"aktiv/internal/service"

	"github.com/gofiber/fiber/v2"
)

// GetMyProfile handles GET /api/users/me
func (s *Server) GetMyProfile(c *fiber.Ctx) error {
	userID := c.Locals("userID").(uint)

	user, err := s.userService.GetUserByID(c.Context(), userID)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(user)
}

// UpdateMyProfile handles PUT /api/users/me
func (s *Server) UpdateMyProfile(c *fiber.Ctx) error {
	userID := c.Locals("userID").(uint)

	var req struct {
		Username            string   `json:"username"`
		FullName            string   `json:"full_name"`
		Bio                 string   `json:"bio"`
		Avatar              string   `json:"avatar"`
		LocationCity        string   `json:"location_city"`
		LocationState       string   `json:"location_state"`
		LocationCountry     string   `json:"location_country"`
		PreferredCategories []string `json:"preferred_categories"`
		AccountabilityMode  *bool    `json:"accountability_mode"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	user, err := s.userService.UpdateProfile(c.Context(), service.UpdateProfileInput{
		UserID:              userID,
		Username:            req.Username,
		FullName:            req.FullName,
		Bio:                 req.Bio,
		Avatar:              req.Avatar,
		LocationCity:        req.LocationCity,
		LocationState:       req.LocationState,
		LocationCountry:     req.LocationCountry,
		PreferredCategories: req.PreferredCategories,
		AccountabilityMode:  req.AccountabilityMode,
	})
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(user)
}

// UpdateMyLocation handles PUT /api/users/me/location. Sending null
// coordinates clears the stored location and opts out of in-person matching.
func (s *Server) UpdateMyLocation(c *fiber.Ctx) error {
	userID := c.Locals("userID").(uint)

	var req struct {
		Latitude      *float64 `json:"latitude"`
		Longitude     *float64 `json:"longitude"`
		MaxDistanceKm float64  `json:"max_distance_km"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	user, err := s.userService.UpdateLocation(c.Context(), service.UpdateLocationInput{
		UserID:        userID,
		Latitude:      req.Latitude,
		Longitude:     req.Longitude,
		MaxDistanceKm: req.MaxDistanceKm,
	})
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(user)
}

// DeleteMyAccount handles DELETE /api/users/me
func (s *Server) DeleteMyAccount(c *fiber.Ctx) error {
	userID := c.Locals("userID").(uint)

	if err := s.userService.DeleteAccount(c.Context(), userID); err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(fiber.Map{"message": "Account deleted"})
}

// GetUserProfile handles GET /api/users/:id
func (s *Server) GetUserProfile(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	user, err := s.userService.GetUserByID(c.Context(), id)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(user)
}

// GetUserGoals handles GET /api/users/:id/goals and returns only the
// public active goals of the target user.
func (s *Server) GetUserGoals(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	p := parsePagination(c, 20)

	goals, err := s.goalService.ListPublicGoals(c.Context(), id, p.Limit)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(goals)
}

// GetAllUsers handles GET /api/users?q= — lists users, or searches by
// username/full name when q is present.
func (s *Server) GetAllUsers(c *fiber.Ctx) error {
	p := parsePagination(c, 20)

	var (
		users []models.User
		err   error
	)
	if q := c.Query("q"); q != "" {
		users, err = s.userService.SearchUsers(c.Context(), q, p.Limit, p.Offset)
	} else {
		users, err = s.userService.ListUsers(c.Context(), p.Limit, p.Offset)
	}
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(users)
}

// PromoteToAdmin handles POST /api/users/:id/promote-admin
func (s *Server) PromoteToAdmin(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	user, err := s.userService.SetAdmin(c.Context(), id, true)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(user)
}

// DemoteFromAdmin handles POST /api/users/:id/demote-admin
func (s *Server) DemoteFromAdmin(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	user, err := s.userService.SetAdmin(c.Context(), id, false)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(user)
}
