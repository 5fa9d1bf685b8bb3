package repository

import (
	"context"

	"chat_relay_service/internal/chat/domain"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ChatRepository 聊天室存取
type ChatRepository interface {
	FindByID(ctx context.Context, id int64) (*domain.Chat, error)
	FindPrivate(ctx context.Context, a, b int64) (*domain.Chat, error)
	FindOrCreatePrivate(ctx context.Context, a, b int64) (*domain.Chat, error)
}

type chatRepository struct {
	db *gorm.DB
}

// NewChatRepository create a ChatRepository
func NewChatRepository(db *gorm.DB) ChatRepository {
	return &chatRepository{db: db}
}

// FindByID returns gorm.ErrRecordNotFound when the chat does not exist.
func (r *chatRepository) FindByID(ctx context.Context, id int64) (*domain.Chat, error) {
	var chat domain.Chat
	if err := r.db.WithContext(ctx).First(&chat, id).Error; err != nil {
		return nil, err
	}
	return &chat, nil
}

func (r *chatRepository) FindPrivate(ctx context.Context, a, b int64) (*domain.Chat, error) {
	var chat domain.Chat
	err := r.db.WithContext(ctx).
		Where("private_key = ? AND type = ?", domain.PrivateChatKey(a, b), string(domain.ChatKindPrivate)).
		First(&chat).Error
	if err != nil {
		return nil, err
	}
	return &chat, nil
}

// FindOrCreatePrivate converges concurrent creators of the same pair on one row via the
// unique private_key index.
func (r *chatRepository) FindOrCreatePrivate(ctx context.Context, a, b int64) (*domain.Chat, error) {
	chat, err := r.FindPrivate(ctx, a, b)
	if err == nil {
		return chat, nil
	}
	if !IsNotFound(err) {
		return nil, err
	}

	created := domain.NewPrivateChat(a, b)
	err = r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(created).Error
	if err != nil && !IsUniqueViolation(err) {
		return nil, err
	}
	if err == nil && created.ID != 0 {
		return created, nil
	}
	// someone else inserted it first
	return r.FindPrivate(ctx, a, b)
}
