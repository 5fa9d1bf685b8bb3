package hub

import (
	"context"
	"sync"

	"golang.org/x/sync/semaphore"
)

// Gate serializes the admit-then-persist sequence of one chat. Acquire honours ctx.
type Gate struct {
	sem *semaphore.Weighted
}

func newGate() *Gate {
	return &Gate{sem: semaphore.NewWeighted(1)}
}

// Lock blocks until the gate is held or ctx is done.
func (g *Gate) Lock(ctx context.Context) error {
	return g.sem.Acquire(ctx, 1)
}

// Unlock releases the gate.
func (g *Gate) Unlock() {
	g.sem.Release(1)
}

// Gates 每個聊天室一把鎖, created on first use and kept for the life of the process.
type Gates struct {
	mu    sync.Mutex
	gates map[int64]*Gate
}

// NewGates create a Gates table
func NewGates() *Gates {
	return &Gates{gates: make(map[int64]*Gate)}
}

// GateFor returns the gate of chatID, creating it on first reference.
func (t *Gates) GateFor(chatID int64) *Gate {
	t.mu.Lock()
	defer t.mu.Unlock()

	g, ok := t.gates[chatID]
	if !ok {
		g = newGate()
		t.gates[chatID] = g
	}
	return g
}

// WithGate runs fn while holding chatID's gate and releases it on every exit path.
func (t *Gates) WithGate(ctx context.Context, chatID int64, fn func() error) error {
	g := t.GateFor(chatID)
	if err := g.Lock(ctx); err != nil {
		return err
	}
	defer g.Unlock()
	return fn()
}

// Len number of gates allocated so far.
func (t *Gates) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.gates)
}
