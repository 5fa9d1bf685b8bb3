package app

import (
	"context"
	"encoding/json"
	"sync"
	"testing"

	"chat_relay_service/internal/chat/domain"
	"chat_relay_service/internal/chat/hub"
	"chat_relay_service/internal/chat/repository"
	"chat_relay_service/pkg/config"
	"chat_relay_service/pkg/logger"
	testtool "chat_relay_service/pkg/test_tool"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// recordConn collects every payload pushed to it.
type recordConn struct {
	id string

	mu       sync.Mutex
	payloads [][]byte
	closed   bool
}

func newRecordConn(id string) *recordConn {
	return &recordConn{id: id}
}

func (c *recordConn) ID() string { return c.id }

func (c *recordConn) Send(payload []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.payloads = append(c.payloads, payload)
	return nil
}

func (c *recordConn) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
	return nil
}

func (c *recordConn) messages(t *testing.T) []domain.MessageOut {
	t.Helper()
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]domain.MessageOut, 0, len(c.payloads))
	for _, p := range c.payloads {
		var m domain.MessageOut
		require.NoError(t, json.Unmarshal(p, &m))
		out = append(out, m)
	}
	return out
}

// recordPublisher keeps exported events in memory.
type recordPublisher struct {
	mu     sync.Mutex
	events []domain.MessageEvent
}

func (p *recordPublisher) Publish(_ context.Context, e domain.MessageEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, e)
	return nil
}

func (p *recordPublisher) Close() error { return nil }

func (p *recordPublisher) types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, 0, len(p.events))
	for _, e := range p.events {
		out = append(out, e.Type)
	}
	return out
}

// MockUserDirectory Mock UserDirectory
type MockUserDirectory struct {
	mock.Mock
}

func (m *MockUserDirectory) ExistingIDs(ctx context.Context, ids []int64) ([]int64, error) {
	args := m.Called(ctx, ids)
	if args.Get(0) != nil {
		return args.Get(0).([]int64), args.Error(1)
	}
	return nil, args.Error(1)
}

type testEnv struct {
	db        *gorm.DB
	chats     repository.ChatRepository
	groups    repository.GroupRepository
	messages  repository.MessageRepository
	registry  *hub.Registry
	gates     *hub.Gates
	resolver  *ChatResolver
	events    *recordPublisher
	messageUC *MessageUseCase
}

func newTestEnv(t *testing.T, scope string) *testEnv {
	t.Helper()
	logger.SetNewNop()

	db := testtool.OpenSQLite(t)
	require.NoError(t, repository.Migrate(db))

	env := &testEnv{
		db:       db,
		chats:    repository.NewChatRepository(db),
		groups:   repository.NewGroupRepository(db),
		messages: repository.NewMessageRepository(db),
		registry: hub.NewRegistry(),
		gates:    hub.NewGates(),
		events:   &recordPublisher{},
	}
	env.resolver = NewChatResolver(env.chats, env.groups)
	env.messageUC = NewMessageUseCase(env.resolver, env.gates, env.messages, env.registry, env.events, MessageOptions{
		DeliveryScope: scope,
		DefaultLimit:  3,
		MaxLimit:      5,
	})
	return env
}

func newParticipantsEnv(t *testing.T) *testEnv {
	return newTestEnv(t, config.DeliveryScopeParticipants)
}

func (e *testEnv) countMessages(t *testing.T) int64 {
	t.Helper()
	var n int64
	require.NoError(t, e.db.Model(&domain.Message{}).Count(&n).Error)
	return n
}

func ptr(v int64) *int64 { return &v }
