package database_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"chat_relay_service/pkg/database"
	"chat_relay_service/pkg/logger"
	testtool "chat_relay_service/pkg/test_tool"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

type session struct {
	Token  string `json:"token"`
	UserID int64  `json:"user_id"`
}

func TestRedisRepository(t *testing.T) {
	if testing.Short() {
		t.Skip("redis container skipped in -short mode")
	}
	logger.SetNewNop()
	ctx := context.Background()

	container, host, port, err := startRedis(ctx)
	if err != nil {
		t.Skipf("docker unavailable: %v", err)
	}
	t.Cleanup(func() { _ = container.Terminate(context.Background()) })

	client, err := database.NewRedisClient(ctx, database.RedisConnection{Addr: fmt.Sprintf("%s:%s", host, port)})
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })

	repo := database.NewRedisRepository[session](client, "session:")

	_, err = repo.Get(ctx, "1")
	assert.ErrorIs(t, err, database.ErrCacheMiss)

	require.NoError(t, repo.Set(ctx, "1", session{Token: "abc", UserID: 1}, time.Minute))
	got, err := repo.Get(ctx, "1")
	require.NoError(t, err)
	assert.Equal(t, session{Token: "abc", UserID: 1}, got)

	raw, err := client.Get(ctx, "session:1").Result()
	require.NoError(t, err)
	assert.Contains(t, raw, `"token":"abc"`)

	require.NoError(t, repo.ExtendTTL(ctx, "1", 2*time.Minute))
	ttl, err := repo.GetTTL(ctx, "1")
	require.NoError(t, err)
	assert.Greater(t, ttl, 60)

	require.NoError(t, repo.Del(ctx, "1"))
	_, err = repo.Get(ctx, "1")
	assert.ErrorIs(t, err, database.ErrCacheMiss)

	ttl, err = repo.GetTTL(ctx, "1")
	require.NoError(t, err)
	assert.Zero(t, ttl)
}

func startRedis(ctx context.Context) (c testcontainers.Container, host, port string, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%v", r)
		}
	}()
	return testtool.SetupContainer(ctx, testcontainers.ContainerRequest{
		Image:        "redis:7-alpine",
		ExposedPorts: []string{"6379/tcp"},
		WaitingFor:   wait.ForListeningPort("6379/tcp"),
	})
}
