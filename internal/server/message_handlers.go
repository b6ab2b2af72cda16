package server

import (
	"aktiv/internal/models"

	"github.com/gofiber/fiber/v2"
)

// SendMatchMessage handles POST /api/matches/:matchId/messages
func (s *Server) SendMatchMessage(c *fiber.Ctx) error {
	userID := c.Locals("userID").(uint)
	matchID, err := s.parseID(c, "matchId")
	if err != nil {
		return nil
	}

	var req struct {
		Content string `json:"content"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	message, err := s.messageService.SendMessage(c.Context(), userID, matchID, req.Content)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(message)
}

// GetMatchMessages handles GET /api/matches/:matchId/messages
func (s *Server) GetMatchMessages(c *fiber.Ctx) error {
	userID := c.Locals("userID").(uint)
	matchID, err := s.parseID(c, "matchId")
	if err != nil {
		return nil
	}
	p := parsePagination(c, 50)

	messages, err := s.messageService.GetMessages(c.Context(), userID, matchID, p.Limit, p.Offset)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(messages)
}

// GetUnreadCount handles GET /api/matches/:matchId/messages/unread
func (s *Server) GetUnreadCount(c *fiber.Ctx) error {
	userID := c.Locals("userID").(uint)
	matchID, err := s.parseID(c, "matchId")
	if err != nil {
		return nil
	}

	count, err := s.messageService.UnreadCount(c.Context(), userID, matchID)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(fiber.Map{"unread": count})
}
