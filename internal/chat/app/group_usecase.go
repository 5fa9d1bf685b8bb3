package app

import (
	"context"
	"strings"

	"chat_relay_service/internal/chat/domain"
	"chat_relay_service/internal/chat/repository"
	errprocess "chat_relay_service/pkg/err"
	"chat_relay_service/pkg/logger"

	"github.com/samber/lo"
	"go.uber.org/zap"
)

// UserDirectory answers which user ids are registered.
type UserDirectory interface {
	ExistingIDs(ctx context.Context, ids []int64) ([]int64, error)
}

// GroupUseCase 群組管理
type GroupUseCase struct {
	groups repository.GroupRepository
	users  UserDirectory
}

// NewGroupUseCase create a GroupUseCase
func NewGroupUseCase(groups repository.GroupRepository, users UserDirectory) *GroupUseCase {
	return &GroupUseCase{groups: groups, users: users}
}

// CreateGroup creates a group chat owned by creatorID. Unknown participant ids are dropped;
// the creator is always a participant.
func (uc *GroupUseCase) CreateGroup(ctx context.Context, name string, creatorID int64, participantIDs []int64) (*domain.Group, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, errprocess.New(domain.ErrValidation, "name must not be empty")
	}

	requested := lo.Without(lo.Uniq(participantIDs), creatorID)
	known := []int64{}
	if len(requested) > 0 {
		var err error
		known, err = uc.users.ExistingIDs(ctx, requested)
		if err != nil {
			return nil, errprocess.Wrap(domain.ErrPersistence, err, "Failed to resolve participants")
		}
	}
	if dropped := lo.Without(requested, known...); len(dropped) > 0 {
		logger.Log.Warn("dropping unknown group participants",
			zap.Int64("creator_id", creatorID),
			zap.Int64s("dropped", dropped),
		)
	}

	group, err := uc.groups.Create(ctx, name, creatorID, lo.Uniq(append([]int64{creatorID}, known...)))
	if err != nil {
		return nil, errprocess.Wrap(domain.ErrPersistence, err, "Failed to create group")
	}

	logger.Log.Info("group created",
		zap.Int64("group_id", group.ID),
		zap.Int64("chat_id", group.ChatID),
		zap.Int64s("participants", group.ParticipantIDs()),
	)
	return group, nil
}
