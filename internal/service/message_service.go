package service

import (
	"context"
	"log/slog"

	"aktiv/internal/middleware"
	"aktiv/internal/models"
	"aktiv/internal/notifications"
	"aktiv/internal/repository"
)

// MessageService provides chat business logic inside accepted matches.
type MessageService struct {
	messageRepo repository.MessageRepository
	matchRepo   repository.MatchRepository
	notifier    *notifications.Notifier
}

// NewMessageService returns a new MessageService.
func NewMessageService(
	messageRepo repository.MessageRepository,
	matchRepo repository.MatchRepository,
	notifier *notifications.Notifier,
) *MessageService {
	return &MessageService{
		messageRepo: messageRepo,
		matchRepo:   matchRepo,
		notifier:    notifier,
	}
}

const (
	maxMessageLen     = 4000
	messagePreviewLen = 80
)

// SendMessage stores a message in an accepted match and notifies the partner.
func (s *MessageService) SendMessage(ctx context.Context, userID, matchID uint, content string) (*models.Message, error) {
	if content == "" {
		return nil, models.NewValidationError("Message content is required")
	}
	if len(content) > maxMessageLen {
		return nil, models.NewValidationError("Message too long (max 4000 characters)")
	}

	match, err := s.activeMatchFor(ctx, userID, matchID)
	if err != nil {
		return nil, err
	}

	message := &models.Message{
		MatchID:  matchID,
		SenderID: userID,
		Content:  content,
	}
	if err := s.messageRepo.Create(ctx, message); err != nil {
		return nil, err
	}

	if err := s.matchRepo.TouchInteraction(ctx, matchID); err != nil {
		middleware.Logger.WarnContext(ctx, "failed to touch match interaction",
			slog.Any("match_id", matchID), slog.String("error", err.Error()))
	}

	s.notifyChat(ctx, match.OtherUser(userID), match.ID, message)
	return message, nil
}

// GetMessages returns the match's messages newest first and marks the
// partner's messages as read.
func (s *MessageService) GetMessages(ctx context.Context, userID, matchID uint, limit, offset int) ([]models.Message, error) {
	if _, err := s.activeMatchFor(ctx, userID, matchID); err != nil {
		return nil, err
	}

	messages, err := s.messageRepo.ListByMatch(ctx, matchID, limit, offset)
	if err != nil {
		return nil, err
	}

	if err := s.messageRepo.MarkRead(ctx, matchID, userID); err != nil {
		middleware.Logger.WarnContext(ctx, "failed to mark messages read",
			slog.Any("match_id", matchID), slog.String("error", err.Error()))
	}
	return messages, nil
}

// UnreadCount returns how many partner messages the user has not read.
func (s *MessageService) UnreadCount(ctx context.Context, userID, matchID uint) (int64, error) {
	if _, err := s.activeMatchFor(ctx, userID, matchID); err != nil {
		return 0, err
	}
	return s.messageRepo.UnreadCount(ctx, matchID, userID)
}

func (s *MessageService) activeMatchFor(ctx context.Context, userID, matchID uint) (*models.Match, error) {
	match, err := s.matchRepo.GetByID(ctx, matchID)
	if err != nil {
		return nil, err
	}
	if !match.Involves(userID) {
		return nil, models.NewUnauthorizedError("You are not part of this match")
	}
	if match.Status != models.MatchStatusAccepted {
		return nil, models.NewValidationError("Messaging requires an active match")
	}
	return match, nil
}

func (s *MessageService) notifyChat(ctx context.Context, recipientID, matchID uint, message *models.Message) {
	if s.notifier == nil {
		return
	}
	preview := message.Content
	if len(preview) > messagePreviewLen {
		preview = preview[:messagePreviewLen]
	}
	payload, err := notifications.Encode(notifications.EventChatMessage, notifications.ChatEventPayload{
		MatchID:   matchID,
		MessageID: message.ID,
		SenderID:  message.SenderID,
		Preview:   preview,
	})
	if err != nil {
		middleware.Logger.ErrorContext(ctx, "failed to encode chat event", slog.String("error", err.Error()))
		return
	}
	if err := s.notifier.PublishUser(ctx, recipientID, payload); err != nil {
		middleware.Logger.WarnContext(ctx, "failed to publish chat event",
			slog.Any("recipient_id", recipientID), slog.String("error", err.Error()))
	}
}
