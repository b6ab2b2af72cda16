package repository

import (
	"context"
	"errors"
	"time"

	"aktiv/internal/models"

	"gorm.io/gorm"
)

// MessageRepository defines persistence operations for match chat messages.
type MessageRepository interface {
	Create(ctx context.Context, message *models.Message) error
	GetByID(ctx context.Context, id uint) (*models.Message, error)
	ListByMatch(ctx context.Context, matchID uint, limit, offset int) ([]models.Message, error)
	// MarkRead marks every unread message in the match not sent by readerID.
	MarkRead(ctx context.Context, matchID, readerID uint) error
	UnreadCount(ctx context.Context, matchID, readerID uint) (int64, error)
}

type messageRepository struct {
	db *gorm.DB
}

// NewMessageRepository returns a new MessageRepository implementation.
func NewMessageRepository(db *gorm.DB) MessageRepository {
	return &messageRepository{db: db}
}

func (r *messageRepository) Create(ctx context.Context, message *models.Message) error {
	if err := r.db.WithContext(ctx).Create(message).Error; err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

func (r *messageRepository) GetByID(ctx context.Context, id uint) (*models.Message, error) {
	var message models.Message
	if err := readDB(r.db).WithContext(ctx).First(&message, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Message", id)
		}
		return nil, models.NewInternalError(err)
	}
	return &message, nil
}

func (r *messageRepository) ListByMatch(ctx context.Context, matchID uint, limit, offset int) ([]models.Message, error) {
	if limit <= 0 {
		limit = 50
	}
	if limit > 200 {
		limit = 200
	}

	var messages []models.Message
	if err := readDB(r.db).WithContext(ctx).
		Where("match_id = ?", matchID).
		Preload("Sender").
		Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&messages).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return messages, nil
}

func (r *messageRepository) MarkRead(ctx context.Context, matchID, readerID uint) error {
	now := time.Now()
	if err := r.db.WithContext(ctx).Model(&models.Message{}).
		Where("match_id = ? AND sender_id != ? AND is_read = ?", matchID, readerID, false).
		Updates(map[string]interface{}{"is_read": true, "read_at": now}).Error; err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

func (r *messageRepository) UnreadCount(ctx context.Context, matchID, readerID uint) (int64, error) {
	var count int64
	if err := readDB(r.db).WithContext(ctx).Model(&models.Message{}).
		Where("match_id = ? AND sender_id != ? AND is_read = ?", matchID, readerID, false).
		Count(&count).Error; err != nil {
		return 0, models.NewInternalError(err)
	}
	return count, nil
}
