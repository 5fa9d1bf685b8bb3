package hub

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

type fakeConn struct {
	id string

	mu       sync.Mutex
	received [][]byte
	failSend bool
	closed   bool
	block    chan struct{}
}

func newFakeConn(id string) *fakeConn {
	return &fakeConn{id: id}
}

func (f *fakeConn) ID() string { return f.id }

func (f *fakeConn) Send(payload []byte) error {
	if f.block != nil {
		<-f.block
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failSend {
		return errors.New("broken pipe")
	}
	f.received = append(f.received, payload)
	return nil
}

func (f *fakeConn) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed = true
	return nil
}

func (f *fakeConn) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.received)
}

func (f *fakeConn) isClosed() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.closed
}

func TestRegistryMultiDevice(t *testing.T) {
	r := NewRegistry()
	phone, laptop := newFakeConn("phone"), newFakeConn("laptop")
	r.Register(1, phone)
	r.Register(1, laptop)

	r.SendToUser(1, []byte("hi"))

	assert.Equal(t, 1, phone.count())
	assert.Equal(t, 1, laptop.count())
	assert.Len(t, r.Connections(1), 2)
	assert.Equal(t, 1, r.Users())
}

func TestRegistryDisconnectCleanup(t *testing.T) {
	r := NewRegistry()
	c := newFakeConn("only")
	r.Register(1, c)

	r.Unregister(1, c)

	assert.False(t, r.IsOnline(1))
	assert.Equal(t, 0, r.Users())
	assert.NotPanics(t, func() { r.SendToUser(1, []byte("nobody home")) })
	assert.Equal(t, 0, c.count())

	// second unregister is a no-op
	r.Unregister(1, c)
	assert.Equal(t, 0, r.Users())
}

func TestRegistryFailedHandleUnregistersItself(t *testing.T) {
	r := NewRegistry()
	good, bad := newFakeConn("good"), newFakeConn("bad")
	bad.failSend = true
	r.Register(1, good)
	r.Register(1, bad)

	r.SendToUser(1, []byte("first"))

	assert.Equal(t, 1, good.count(), "healthy handle still served")
	assert.True(t, bad.isClosed())
	assert.Len(t, r.Connections(1), 1)

	r.SendToUser(1, []byte("second"))
	assert.Equal(t, 2, good.count())
}

func TestRegistryLastFailedHandleRemovesUser(t *testing.T) {
	r := NewRegistry()
	bad := newFakeConn("bad")
	bad.failSend = true
	r.Register(1, bad)

	r.SendToUser(1, []byte("x"))

	assert.False(t, r.IsOnline(1))
}

func TestRegistryStaleHandleKeepsNewer(t *testing.T) {
	r := NewRegistry()
	old, fresh := newFakeConn("same"), newFakeConn("same")
	r.Register(1, old)
	r.Register(1, fresh)

	r.Unregister(1, old)

	assert.True(t, r.IsOnline(1))
	assert.Same(t, fresh, r.Connections(1)[0].(*fakeConn))
}

func TestBroadcastDeliversOncePerHandle(t *testing.T) {
	r := NewRegistry()
	a, b, stranger := newFakeConn("a"), newFakeConn("b"), newFakeConn("s")
	r.Register(1, a)
	r.Register(2, b)
	r.Register(3, stranger)

	r.Broadcast(context.Background(), []int64{1, 2, 2, 1}, []byte("hello"))

	assert.Equal(t, 1, a.count())
	assert.Equal(t, 1, b.count())
	assert.Equal(t, 0, stranger.count())
}

func TestBroadcastSlowUserDoesNotStallOthers(t *testing.T) {
	r := NewRegistry()
	slow, fast := newFakeConn("slow"), newFakeConn("fast")
	slow.block = make(chan struct{})
	r.Register(1, slow)
	r.Register(2, fast)

	done := make(chan struct{})
	go func() {
		r.Broadcast(context.Background(), []int64{1, 2}, []byte("x"))
		close(done)
	}()

	assert.Eventually(t, func() bool { return fast.count() == 1 }, time.Second, 5*time.Millisecond)
	close(slow.block)
	<-done
	assert.Equal(t, 1, slow.count())
}

func TestRegistryConcurrentAccess(t *testing.T) {
	r := NewRegistry()
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			c := newFakeConn(string(rune('a' + i%26)))
			uid := int64(i % 5)
			r.Register(uid, c)
			r.SendToUser(uid, []byte("x"))
			r.Unregister(uid, c)
		}(i)
	}
	wg.Wait()
	assert.Equal(t, 0, r.Users())
}
