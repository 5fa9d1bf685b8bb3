package app

import (
	"context"
	"errors"
	"testing"

	"chat_relay_service/internal/chat/domain"
	errprocess "chat_relay_service/pkg/err"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestCreateGroup(t *testing.T) {
	env := newParticipantsEnv(t)
	ctx := context.Background()

	t.Run("unknown participants are dropped", func(t *testing.T) {
		users := new(MockUserDirectory)
		users.On("ExistingIDs", ctx, []int64{2, 3, 99}).Return([]int64{2, 3}, nil).Once()
		uc := NewGroupUseCase(env.groups, users)

		group, err := uc.CreateGroup(ctx, "  team ", 1, []int64{2, 3, 99, 1, 2})
		require.NoError(t, err)
		assert.Equal(t, "team", group.Name)
		assert.Equal(t, []int64{1, 2, 3}, group.Out().ParticipantIDs)
		users.AssertExpectations(t)

		chat, err := env.chats.FindByID(ctx, group.ChatID)
		require.NoError(t, err)
		assert.Equal(t, domain.ChatKindGroup, chat.Kind)
		assert.Nil(t, chat.PrivateKey)
	})

	t.Run("creator alone", func(t *testing.T) {
		users := new(MockUserDirectory)
		uc := NewGroupUseCase(env.groups, users)

		group, err := uc.CreateGroup(ctx, "solo", 5, nil)
		require.NoError(t, err)
		assert.Equal(t, []int64{5}, group.ParticipantIDs())
		users.AssertNotCalled(t, "ExistingIDs", mock.Anything, mock.Anything)
	})

	t.Run("blank name", func(t *testing.T) {
		uc := NewGroupUseCase(env.groups, new(MockUserDirectory))
		_, err := uc.CreateGroup(ctx, "   ", 1, nil)
		assert.ErrorIs(t, err, domain.ErrValidation)
	})

	t.Run("directory failure", func(t *testing.T) {
		users := new(MockUserDirectory)
		users.On("ExistingIDs", ctx, []int64{2}).Return(nil, errors.New("pg down")).Once()
		uc := NewGroupUseCase(env.groups, users)

		_, err := uc.CreateGroup(ctx, "team", 1, []int64{2})
		assert.Equal(t, 500, errprocess.Status(err))
	})
}

func TestResolverAudience(t *testing.T) {
	env := newParticipantsEnv(t)
	ctx := context.Background()

	private, err := env.chats.FindOrCreatePrivate(ctx, 4, 2)
	require.NoError(t, err)
	assert.ElementsMatch(t, []int64{2, 4}, env.resolver.Audience(ctx, private, 4))

	group, err := env.groups.Create(ctx, "g", 1, []int64{1, 2})
	require.NoError(t, err)
	groupChat, err := env.chats.FindByID(ctx, group.ChatID)
	require.NoError(t, err)

	// a sender outside the group still sees its own message
	assert.ElementsMatch(t, []int64{1, 2, 9}, env.resolver.Audience(ctx, groupChat, 9))

	orphan := &domain.Chat{ID: 777, Kind: domain.ChatKindGroup}
	assert.Equal(t, []int64{9}, env.resolver.Audience(ctx, orphan, 9))
}
