package repository

import (
	"context"

	"chat_relay_service/internal/chat/domain"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// MessageRepository 訊息存取
type MessageRepository interface {
	ExistsByFingerprint(ctx context.Context, fingerprint string) (bool, error)
	Create(ctx context.Context, msg *domain.Message) error
	FindByID(ctx context.Context, id int64) (*domain.Message, error)
	MarkRead(ctx context.Context, id int64) (*domain.Message, bool, error)
	ListByChat(ctx context.Context, chatID int64, limit, offset int) ([]domain.Message, error)
}

type messageRepository struct {
	db *gorm.DB
}

// NewMessageRepository create a MessageRepository
func NewMessageRepository(db *gorm.DB) MessageRepository {
	return &messageRepository{db: db}
}

func (r *messageRepository) ExistsByFingerprint(ctx context.Context, fingerprint string) (bool, error) {
	var n int64
	err := r.db.WithContext(ctx).
		Model(&domain.Message{}).
		Where("fingerprint = ?", fingerprint).
		Count(&n).Error
	return n > 0, err
}

// Create inserts msg in its own transaction; any failure leaves nothing behind.
func (r *messageRepository) Create(ctx context.Context, msg *domain.Message) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.Create(msg).Error
	})
}

func (r *messageRepository) FindByID(ctx context.Context, id int64) (*domain.Message, error) {
	var msg domain.Message
	if err := r.db.WithContext(ctx).First(&msg, id).Error; err != nil {
		return nil, err
	}
	return &msg, nil
}

// MarkRead flips read to true; changed is false when it already was.
func (r *messageRepository) MarkRead(ctx context.Context, id int64) (*domain.Message, bool, error) {
	var (
		msg     domain.Message
		changed bool
	)
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&msg, id).Error; err != nil {
			return err
		}
		if msg.Read {
			return nil
		}
		res := tx.Model(&domain.Message{}).
			Where("id = ? AND read = ?", id, false).
			Update("read", true)
		if res.Error != nil {
			return res.Error
		}
		changed = res.RowsAffected == 1
		msg.Read = true
		return nil
	})
	if err != nil {
		return nil, false, err
	}
	return &msg, changed, nil
}

// ListByChat pages a chat's messages oldest first.
func (r *messageRepository) ListByChat(ctx context.Context, chatID int64, limit, offset int) ([]domain.Message, error) {
	msgs := []domain.Message{}
	err := r.db.WithContext(ctx).
		Where("chat_id = ?", chatID).
		Order(clause.OrderByColumn{Column: clause.Column{Name: "timestamp"}}).
		Order(clause.OrderByColumn{Column: clause.Column{Name: "id"}}).
		Limit(limit).
		Offset(offset).
		Find(&msgs).Error
	return msgs, err
}
