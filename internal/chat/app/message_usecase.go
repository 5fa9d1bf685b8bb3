package app

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"chat_relay_service/internal/chat/domain"
	"chat_relay_service/internal/chat/hub"
	"chat_relay_service/internal/chat/repository"
	"chat_relay_service/pkg/config"
	errprocess "chat_relay_service/pkg/err"
	"chat_relay_service/pkg/logger"

	"go.uber.org/zap"
)

// MessageOptions tunables of the dispatcher.
type MessageOptions struct {
	DeliveryScope string
	DefaultLimit  int
	MaxLimit      int
}

// MessageUseCase 訊息派送: resolve, gate, dedup, persist, deliver.
type MessageUseCase struct {
	resolver *ChatResolver
	gates    *hub.Gates
	dedup    *Deduplicator
	messages repository.MessageRepository
	registry *hub.Registry
	events   repository.EventPublisher
	opts     MessageOptions
	now      func() time.Time
}

// NewMessageUseCase create a MessageUseCase
func NewMessageUseCase(
	resolver *ChatResolver,
	gates *hub.Gates,
	messages repository.MessageRepository,
	registry *hub.Registry,
	events repository.EventPublisher,
	opts MessageOptions,
) *MessageUseCase {
	if opts.DefaultLimit <= 0 {
		opts.DefaultLimit = 100
	}
	if opts.MaxLimit < opts.DefaultLimit {
		opts.MaxLimit = opts.DefaultLimit
	}
	if events == nil {
		events = repository.NewNopEventPublisher()
	}
	return &MessageUseCase{
		resolver: resolver,
		gates:    gates,
		dedup:    NewDeduplicator(messages),
		messages: messages,
		registry: registry,
		events:   events,
		opts:     opts,
		now:      time.Now,
	}
}

// Submit persists sub at most once and delivers it live. A repeated (sender, chat, text)
// yields domain.ErrDuplicate and leaves the store untouched.
func (uc *MessageUseCase) Submit(ctx context.Context, sub domain.Submission) (*domain.Message, error) {
	if strings.TrimSpace(sub.Text) == "" {
		return nil, domain.ErrEmptyText
	}

	chat, err := uc.resolver.Resolve(ctx, sub)
	if err != nil {
		return nil, err
	}

	msg := &domain.Message{
		ChatID:      chat.ID,
		SenderID:    sub.SenderID,
		Text:        sub.Text,
		Fingerprint: Fingerprint(sub.SenderID, chat.ID, sub.Text),
	}

	err = uc.gates.WithGate(ctx, chat.ID, func() error {
		admitted, err := uc.dedup.Admit(ctx, msg.Fingerprint)
		if err != nil {
			return errprocess.Wrap(domain.ErrPersistence, err, "Failed to send message")
		}
		if !admitted {
			return domain.ErrDuplicate
		}

		msg.Timestamp = uc.now().UTC().Truncate(time.Microsecond)
		if err := uc.messages.Create(ctx, msg); err != nil {
			if repository.IsUniqueViolation(err) {
				return domain.ErrDuplicate
			}
			return errprocess.Wrap(domain.ErrPersistence, err, "Failed to send message")
		}
		return nil
	})
	if err != nil {
		logger.Log.Debug("submission rejected",
			zap.Int64("chat_id", chat.ID),
			zap.Int64("sender_id", sub.SenderID),
			zap.Error(err),
		)
		return nil, err
	}

	uc.deliver(ctx, chat, msg)
	uc.publish(ctx, domain.EventMessageCreated, msg)
	return msg, nil
}

func (uc *MessageUseCase) deliver(ctx context.Context, chat *domain.Chat, msg *domain.Message) {
	payload, err := json.Marshal(msg.Out())
	if err != nil {
		logger.Log.Error("marshal message", zap.Int64("message_id", msg.ID), zap.Error(err))
		return
	}

	if uc.opts.DeliveryScope == config.DeliveryScopeSender {
		uc.registry.SendToUser(msg.SenderID, payload)
		return
	}
	uc.registry.Broadcast(ctx, uc.resolver.Audience(ctx, chat, msg.SenderID), payload)
}

// MarkRead sets the read flag and, on the first transition only, notifies the original
// sender's connections.
func (uc *MessageUseCase) MarkRead(ctx context.Context, messageID int64) (*domain.Message, error) {
	msg, changed, err := uc.messages.MarkRead(ctx, messageID)
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, domain.ErrMessageNotFound
		}
		return nil, errprocess.Wrap(domain.ErrPersistence, err, "Failed to mark message read")
	}

	if changed {
		payload, err := json.Marshal(msg.ReadNotification())
		if err == nil {
			uc.registry.SendToUser(msg.SenderID, payload)
		}
		uc.publish(ctx, domain.EventMessageRead, msg)
	}
	return msg, nil
}

// History pages a chat's messages oldest first; limit and offset are clamped.
func (uc *MessageUseCase) History(ctx context.Context, chatID int64, limit, offset int) ([]domain.Message, error) {
	if limit <= 0 {
		limit = uc.opts.DefaultLimit
	}
	if limit > uc.opts.MaxLimit {
		limit = uc.opts.MaxLimit
	}
	if offset < 0 {
		offset = 0
	}

	msgs, err := uc.messages.ListByChat(ctx, chatID, limit, offset)
	if err != nil {
		return nil, errprocess.Wrap(domain.ErrPersistence, err, "Failed to load history")
	}
	return msgs, nil
}

func (uc *MessageUseCase) publish(ctx context.Context, kind string, msg *domain.Message) {
	if err := uc.events.Publish(ctx, domain.MessageEvent{Type: kind, Message: msg.Out()}); err != nil {
		logger.Log.Warn("event export failed",
			zap.String("type", kind),
			zap.Int64("message_id", msg.ID),
			zap.Error(err),
		)
	}
}
