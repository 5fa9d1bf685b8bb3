package repository

import (
	"context"

	"chat_relay_service/internal/chat/domain"

	"github.com/samber/lo"
	"gorm.io/gorm"
)

// GroupRepository 群組存取
type GroupRepository interface {
	Create(ctx context.Context, name string, creatorID int64, participantIDs []int64) (*domain.Group, error)
	FindByChatID(ctx context.Context, chatID int64) (*domain.Group, error)
}

type groupRepository struct {
	db *gorm.DB
}

// NewGroupRepository create a GroupRepository
func NewGroupRepository(db *gorm.DB) GroupRepository {
	return &groupRepository{db: db}
}

// Create writes the group chat, the group and its participants in one transaction.
func (r *groupRepository) Create(ctx context.Context, name string, creatorID int64, participantIDs []int64) (*domain.Group, error) {
	group := &domain.Group{
		Name:      name,
		CreatorID: creatorID,
		Participants: lo.Map(lo.Uniq(participantIDs), func(id int64, _ int) domain.GroupParticipant {
			return domain.GroupParticipant{UserID: id}
		}),
	}

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		chat := &domain.Chat{Name: name, Kind: domain.ChatKindGroup}
		if err := tx.Create(chat).Error; err != nil {
			return err
		}
		group.ChatID = chat.ID
		return tx.Create(group).Error
	})
	if err != nil {
		return nil, err
	}
	return group, nil
}

// FindByChatID returns gorm.ErrRecordNotFound for chats without a group.
func (r *groupRepository) FindByChatID(ctx context.Context, chatID int64) (*domain.Group, error) {
	var group domain.Group
	err := r.db.WithContext(ctx).
		Preload("Participants").
		Where("chat_id = ?", chatID).
		First(&group).Error
	if err != nil {
		return nil, err
	}
	return &group, nil
}
