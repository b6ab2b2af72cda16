package server

import (
	"aktiv/internal/matching"
	"aktiv/internal/models"

	"github.com/gofiber/fiber/v2"
)

// GetSuggestions handles GET /api/matches/suggestions?mode=&limit=
func (s *Server) GetSuggestions(c *fiber.Ctx) error {
	userID := c.Locals("userID").(uint)

	mode := matching.Mode(c.Query("mode", string(matching.ModeAccountability)))
	limit := c.QueryInt("limit", s.config.MatchDefaultLimit)

	suggestions, err := s.matchService.GetSuggestions(c.Context(), userID, mode, limit)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(suggestions)
}

// SendMatchRequest handles POST /api/matches/requests/:userId
func (s *Server) SendMatchRequest(c *fiber.Ctx) error {
	userID := c.Locals("userID").(uint)
	targetID, err := s.parseID(c, "userId")
	if err != nil {
		return nil
	}

	var req struct {
		Mode string `json:"mode"`
	}
	// The body is optional; an empty body means an accountability request.
	_ = c.BodyParser(&req)
	mode := matching.ModeAccountability
	if req.Mode != "" {
		mode = matching.Mode(req.Mode)
	}

	match, err := s.matchService.SendMatchRequest(c.Context(), userID, targetID, mode)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(match)
}

// GetPendingReceived handles GET /api/matches/requests
func (s *Server) GetPendingReceived(c *fiber.Ctx) error {
	userID := c.Locals("userID").(uint)

	matches, err := s.matchService.GetPendingReceived(c.Context(), userID)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(matches)
}

// GetPendingSent handles GET /api/matches/requests/sent
func (s *Server) GetPendingSent(c *fiber.Ctx) error {
	userID := c.Locals("userID").(uint)

	matches, err := s.matchService.GetPendingSent(c.Context(), userID)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(matches)
}

// AcceptMatchRequest handles POST /api/matches/requests/:matchId/accept
func (s *Server) AcceptMatchRequest(c *fiber.Ctx) error {
	userID := c.Locals("userID").(uint)
	matchID, err := s.parseID(c, "matchId")
	if err != nil {
		return nil
	}

	match, err := s.matchService.AcceptMatchRequest(c.Context(), userID, matchID)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(match)
}

// RejectMatchRequest handles POST /api/matches/requests/:matchId/reject
func (s *Server) RejectMatchRequest(c *fiber.Ctx) error {
	userID := c.Locals("userID").(uint)
	matchID, err := s.parseID(c, "matchId")
	if err != nil {
		return nil
	}

	match, err := s.matchService.RejectMatchRequest(c.Context(), userID, matchID)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(match)
}

// EndMatch handles DELETE /api/matches/:matchId
func (s *Server) EndMatch(c *fiber.Ctx) error {
	userID := c.Locals("userID").(uint)
	matchID, err := s.parseID(c, "matchId")
	if err != nil {
		return nil
	}

	match, err := s.matchService.EndMatch(c.Context(), userID, matchID)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(match)
}

// GetMatches handles GET /api/matches?status=
func (s *Server) GetMatches(c *fiber.Ctx) error {
	userID := c.Locals("userID").(uint)
	status := models.MatchStatus(c.Query("status"))

	matches, err := s.matchService.GetMatches(c.Context(), userID, status)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(matches)
}
