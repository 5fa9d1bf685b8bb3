package hub

import (
	"context"
	"sync"

	"chat_relay_service/pkg/logger"

	"github.com/samber/lo"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Connection is one live duplex channel of a user.
type Connection interface {
	ID() string
	Send(payload []byte) error
	Close() error
}

// Registry 連線表: user id -> live connections (multi-device).
type Registry struct {
	mu    sync.RWMutex
	conns map[int64]map[string]Connection
}

// NewRegistry create a Registry
func NewRegistry() *Registry {
	return &Registry{conns: make(map[int64]map[string]Connection)}
}

// Register adds conn to userID's live set; call it only once the handshake is done.
func (r *Registry) Register(userID int64, conn Connection) {
	r.mu.Lock()
	defer r.mu.Unlock()

	set, ok := r.conns[userID]
	if !ok {
		set = make(map[string]Connection)
		r.conns[userID] = set
	}
	set[conn.ID()] = conn
	logger.Log.Debug("connection registered", zap.Int64("user_id", userID), zap.String("conn_id", conn.ID()), zap.Int("live", len(set)))
}

// Unregister removes conn; the user entry goes away with its last connection.
func (r *Registry) Unregister(userID int64, conn Connection) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.unregisterLocked(userID, conn)
}

func (r *Registry) unregisterLocked(userID int64, conn Connection) bool {
	set, ok := r.conns[userID]
	if !ok {
		return false
	}
	// a reused id must not evict a newer handle
	if cur, ok := set[conn.ID()]; !ok || cur != conn {
		return false
	}
	delete(set, conn.ID())
	if len(set) == 0 {
		delete(r.conns, userID)
	}
	logger.Log.Debug("connection unregistered", zap.Int64("user_id", userID), zap.String("conn_id", conn.ID()))
	return true
}

// SendToUser writes payload to each of userID's connections in turn. A connection that fails
// is unregistered and closed; the others still get the payload.
func (r *Registry) SendToUser(userID int64, payload []byte) {
	for _, conn := range r.Connections(userID) {
		if err := conn.Send(payload); err != nil {
			logger.Log.Warn("drop connection after failed send",
				zap.Int64("user_id", userID),
				zap.String("conn_id", conn.ID()),
				zap.Error(err),
			)
			r.mu.Lock()
			removed := r.unregisterLocked(userID, conn)
			r.mu.Unlock()
			if removed {
				_ = conn.Close()
			}
		}
	}
}

// Broadcast runs SendToUser for every distinct user concurrently, so a stalled
// connection only holds up its own user.
func (r *Registry) Broadcast(ctx context.Context, userIDs []int64, payload []byte) {
	g, _ := errgroup.WithContext(ctx)
	for _, id := range lo.Uniq(userIDs) {
		id := id
		g.Go(func() error {
			r.SendToUser(id, payload)
			return nil
		})
	}
	_ = g.Wait()
}

// Connections snapshot of userID's live connections.
func (r *Registry) Connections(userID int64) []Connection {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return lo.Values(r.conns[userID])
}

// IsOnline reports whether userID has at least one live connection.
func (r *Registry) IsOnline(userID int64) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.conns[userID]
	return ok
}

// Users number of users with a live connection.
func (r *Registry) Users() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.conns)
}
