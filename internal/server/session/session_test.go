package session

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/palemoky/fakeplayers/internal/apperrors"
)

type recordingDispatcher struct {
	mu     sync.Mutex
	logins []*Context
}

func (d *recordingDispatcher) DispatchLogin(c *Context) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.logins = append(d.logins, c)
}

func newVirtualContext(d Dispatcher) *Context {
	vs := NewVirtualSession(d)
	c := NewContext(vs)
	vs.SetContext(c)
	return c
}

func TestVirtualSession_DefaultIDCollides(t *testing.T) {
	a := NewVirtualSession(nil)
	b := NewVirtualSession(nil)
	assert.Equal(t, 0, a.ID())
	assert.Equal(t, a.ID(), b.ID())
	assert.Equal(t, 7, New(nil, 7).ID())
}

func TestSetIDInterceptor(t *testing.T) {
	a := NewVirtualSession(nil)
	b := NewVirtualSession(nil)

	restore := SetIDInterceptor(func(s *VirtualSession) (int, bool) {
		if s == a {
			return 11, true
		}
		return 0, false
	})

	assert.Equal(t, 11, a.ID())
	assert.Equal(t, 0, b.ID(), "sessions without an entry fall through")

	restore()
	assert.Equal(t, 0, a.ID())
}

func TestSetIDInterceptor_RestoreOutOfOrder(t *testing.T) {
	a := NewVirtualSession(nil)
	b := NewVirtualSession(nil)

	restoreA := SetIDInterceptor(func(s *VirtualSession) (int, bool) {
		if s == a {
			return 11, true
		}
		return 0, false
	})
	restoreB := SetIDInterceptor(func(s *VirtualSession) (int, bool) {
		if s == b {
			return 21, true
		}
		return 0, false
	})

	// 后安装的拦截器不认识的会话交给先安装的
	assert.Equal(t, 11, a.ID())
	assert.Equal(t, 21, b.ID())

	restoreA()
	restoreA()
	assert.Equal(t, 0, a.ID())
	assert.Equal(t, 21, b.ID(), "removing the first interceptor keeps the second")

	restoreB()
	assert.Equal(t, 0, b.ID())
}

func TestContext_Login(t *testing.T) {
	t.Parallel()

	d := &recordingDispatcher{}
	c := newVirtualContext(d)
	c.Login(1000000, "token", 76561198000000000, "FakePlayer1", "", false, 0)

	snap := c.Snapshot()
	require.NotNil(t, snap)
	assert.Equal(t, int64(1000000), snap.AccountID)
	assert.Equal(t, uint64(76561198000000000), snap.NetworkID)
	assert.Equal(t, "FakePlayer1", snap.Name)
	assert.False(t, snap.IsHost)
	assert.Equal(t, "token", c.Token())
	assert.Len(t, d.logins, 1)
}

func TestContext_LoginMalformed(t *testing.T) {
	t.Parallel()

	d := &recordingDispatcher{}
	c := newVirtualContext(d)
	c.Login(1000000, "token", 76561198000000000, "", "", false, 0)

	assert.Nil(t, c.Snapshot())
	assert.Empty(t, d.logins, "no side effect without a snapshot")
}

func TestContext_Dispose(t *testing.T) {
	t.Parallel()

	c := newVirtualContext(nil)
	c.Dispose()
	c.Dispose()

	assert.True(t, c.Disposed())
	assert.True(t, c.Session().Closed())

	c.Login(1, "t", 2, "late", "", false, 0)
	assert.Nil(t, c.Snapshot())
}

func TestManager_AddGetRemove(t *testing.T) {
	t.Parallel()

	m := NewManager()
	defer m.Close()

	id := m.GetNewSessionID()
	c := NewContext(New(nil, id))
	require.NoError(t, m.Add(c))
	assert.Same(t, c, m.Get(id))
	assert.Equal(t, 1, m.Count())

	// 重复添加同一对象不报错
	assert.NoError(t, m.Add(c))

	assert.True(t, m.Remove(c))
	assert.False(t, m.Remove(c))
	assert.Nil(t, m.Get(id))
}

func TestManager_AddCollidingVirtualSessions(t *testing.T) {
	t.Parallel()

	m := NewManager()
	defer m.Close()

	require.NoError(t, m.Add(newVirtualContext(nil)))
	err := m.Add(newVirtualContext(nil))
	assert.ErrorIs(t, err, apperrors.ErrDuplicatePlayer)
}

func TestManager_GetNewSessionIDUnique(t *testing.T) {
	t.Parallel()

	m := NewManager()
	defer m.Close()

	var wg sync.WaitGroup
	ids := make(chan int, 100)
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ids <- m.GetNewSessionID()
		}()
	}
	wg.Wait()
	close(ids)

	seen := make(map[int]bool)
	for id := range ids {
		assert.False(t, seen[id], "duplicate id %d", id)
		assert.Positive(t, id)
		seen[id] = true
	}
}

func TestManager_Cleanup(t *testing.T) {
	t.Parallel()

	m := NewManager()
	defer m.Close()

	live := NewContext(New(nil, m.GetNewSessionID()))
	dead := NewContext(New(nil, m.GetNewSessionID()))
	require.NoError(t, m.Add(live))
	require.NoError(t, m.Add(dead))
	dead.Dispose()

	m.cleanup()
	assert.Equal(t, []int{live.Session().ID()}, m.IDs())
}
