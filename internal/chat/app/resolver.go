package app

import (
	"context"

	"chat_relay_service/internal/chat/domain"
	"chat_relay_service/internal/chat/repository"
	errprocess "chat_relay_service/pkg/err"
	"chat_relay_service/pkg/logger"

	"github.com/samber/lo"
	"go.uber.org/zap"
)

// ChatResolver decides which chat a submission targets.
type ChatResolver struct {
	chats  repository.ChatRepository
	groups repository.GroupRepository
}

// NewChatResolver create a ChatResolver
func NewChatResolver(chats repository.ChatRepository, groups repository.GroupRepository) *ChatResolver {
	return &ChatResolver{chats: chats, groups: groups}
}

// Resolve picks the target chat:
//   - an existing explicit chat is used as is, group chats without membership checks
//   - an unknown explicit chat falls back to the private chat with the recipient, if any
//   - no explicit chat needs a recipient; the pair's private chat is found or created
func (r *ChatResolver) Resolve(ctx context.Context, sub domain.Submission) (*domain.Chat, error) {
	if sub.ChatID != nil {
		chat, err := r.chats.FindByID(ctx, *sub.ChatID)
		switch {
		case err == nil:
			return chat, nil
		case !repository.IsNotFound(err):
			return nil, errprocess.Wrap(domain.ErrPersistence, err, "Failed to load chat")
		case sub.RecipientID == nil:
			return nil, domain.ErrChatNotFound
		}
		logger.Log.Debug("explicit chat missing, falling back to recipient",
			zap.Int64("chat_id", *sub.ChatID), zap.Int64("recipient_id", *sub.RecipientID))
	}

	if sub.RecipientID == nil {
		return nil, domain.ErrTargetRequired
	}

	chat, err := r.chats.FindOrCreatePrivate(ctx, sub.SenderID, *sub.RecipientID)
	if err != nil {
		return nil, errprocess.Wrap(domain.ErrPersistence, err, "Failed to open private chat")
	}
	return chat, nil
}

// Audience user ids that live delivery for chat should reach; always contains senderID.
func (r *ChatResolver) Audience(ctx context.Context, chat *domain.Chat, senderID int64) []int64 {
	ids := []int64{senderID}

	switch chat.Kind {
	case domain.ChatKindPrivate:
		if chat.PrivateKey != nil {
			if a, b, ok := domain.ParsePrivateChatKey(*chat.PrivateKey); ok {
				ids = append(ids, a, b)
			}
		}
	case domain.ChatKindGroup:
		group, err := r.groups.FindByChatID(ctx, chat.ID)
		if err != nil {
			if !repository.IsNotFound(err) {
				logger.Log.Warn("group lookup failed, delivering to sender only", zap.Int64("chat_id", chat.ID), zap.Error(err))
			}
			break
		}
		ids = append(ids, group.ParticipantIDs()...)
	}
	return lo.Uniq(ids)
}
