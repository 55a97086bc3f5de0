package fakeplayer_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/palemoky/fakeplayers/internal/fakeplayer"
	"github.com/palemoky/fakeplayers/internal/testutil"
)

var (
	n0 = fakeplayer.DefaultNetworkBase
	n1 = fakeplayer.DefaultNetworkBase + 1
	n2 = fakeplayer.DefaultNetworkBase + 2
)

func newObservedLogger() (*zap.Logger, *observer.ObservedLogs) {
	core, logs := observer.New(zapcore.WarnLevel)
	return zap.New(core), logs
}

func newFabricator(host fakeplayer.Host, mode string, l *zap.Logger) *fakeplayer.Fabricator {
	monitor := fakeplayer.NewMonitor(host, 10*time.Millisecond, 100*time.Millisecond, l)
	return fakeplayer.NewFabricator(host, fakeplayer.NewDefaultAllocator(), monitor, fakeplayer.Options{
		Mode:        mode,
		SettleDelay: time.Millisecond,
		Logger:      l,
	})
}

// expectPartialConfirmation ids 0 和 2 在 30ms 内确认，id 1 永不确认
func expectPartialConfirmation(h *testutil.MockHost) {
	h.On("CreateSession").Return("h0", nil).Once()
	h.On("CreateSession").Return("h1", nil).Once()
	h.On("CreateSession").Return("h2", nil).Once()
	h.On("NewSessionID").Return(1).Once()
	h.On("NewSessionID").Return(2).Once()
	h.On("NewSessionID").Return(3).Once()
	h.On("AssignDisplayID", mock.Anything, mock.Anything).Return(nil)
	h.On("Login", mock.Anything, mock.Anything).Return(true, nil)

	h.On("InRoster", n0).Return(false, nil).Twice()
	h.On("InRoster", n0).Return(true, nil)
	h.On("InRoster", n1).Return(false, nil)
	h.On("InRoster", n2).Return(false, nil).Once()
	h.On("InRoster", n2).Return(true, nil)

	h.On("AddToRoster", "h0").Return(nil).Once()
	h.On("AddToRoster", "h2").Return(nil).Once()
	h.On("RemoveDisplayID", "h1").Return(nil).Once()
	h.On("ReleaseSession", "h1").Return(nil).Once()
}

func TestFabricate_PartialConfirmation(t *testing.T) {
	t.Parallel()

	for _, mode := range []string{fakeplayer.ModeParallel, fakeplayer.ModeSerial} {
		t.Run(mode, func(t *testing.T) {
			t.Parallel()

			h := &testutil.MockHost{}
			expectPartialConfirmation(h)
			l, logs := newObservedLogger()

			f := newFabricator(h, mode, l)
			res := f.Fabricate(context.Background(), 3)

			assert.Equal(t, fakeplayer.Result{Requested: 3, Created: 2, Failed: 1}, res)
			assert.ElementsMatch(t, []uint64{n0, n2}, f.Registry().NetworkIDs())
			assert.Equal(t, 1, logs.Len())
			assert.Equal(t, 1, logs.FilterMessage("fake player login not confirmed").Len())

			h.AssertExpectations(t)
			h.AssertNotCalled(t, "AddToRoster", "h1")
		})
	}
}

func TestFabricate_ZeroMakesNoHostCalls(t *testing.T) {
	t.Parallel()

	h := &testutil.MockHost{}
	f := newFabricator(h, fakeplayer.ModeParallel, zap.NewNop())

	res := f.Fabricate(context.Background(), 0)
	assert.Equal(t, fakeplayer.Result{}, res)
	assert.Zero(t, f.Registry().Len())
	assert.Empty(t, h.Calls)
}

func TestFabricate_NoSnapshotAbandons(t *testing.T) {
	t.Parallel()

	h := &testutil.MockHost{}
	h.On("CreateSession").Return("h0", nil).Once()
	h.On("NewSessionID").Return(9).Once()
	h.On("AssignDisplayID", "h0", 9).Return(nil).Once()
	h.On("Login", "h0", mock.MatchedBy(func(req fakeplayer.LoginRequest) bool {
		return req.Name == "FakePlayer1" && !req.IsHost && req.VoiceID == "" && req.HashCode == 0
	})).Return(false, nil).Once()
	h.On("RemoveDisplayID", "h0").Return(nil).Once()
	h.On("ReleaseSession", "h0").Return(nil).Once()

	l, logs := newObservedLogger()
	f := newFabricator(h, fakeplayer.ModeParallel, l)
	res := f.Fabricate(context.Background(), 1)

	assert.Equal(t, 0, res.Created)
	assert.Equal(t, 1, logs.FilterLevelExact(zapcore.ErrorLevel).Len())
	h.AssertExpectations(t)
	h.AssertNotCalled(t, "InRoster", mock.Anything)
}

func TestFabricate_CreateFailureIsIsolated(t *testing.T) {
	t.Parallel()

	h := &testutil.MockHost{}
	h.On("CreateSession").Return(nil, errors.New("constructor changed")).Once()
	h.On("CreateSession").Return("h1", nil).Once()
	h.On("NewSessionID").Return(1).Once()
	h.On("AssignDisplayID", "h1", 1).Return(nil).Once()
	h.On("Login", "h1", mock.Anything).Return(true, nil).Once()
	h.On("InRoster", n1).Return(true, nil)
	h.On("AddToRoster", "h1").Return(nil).Once()

	f := newFabricator(h, fakeplayer.ModeParallel, zap.NewNop())
	res := f.Fabricate(context.Background(), 2)

	assert.Equal(t, 1, res.Created)
	assert.Equal(t, []uint64{n1}, f.Registry().NetworkIDs())
	h.AssertExpectations(t)
}

func TestFabricate_RegisterFailureRollsBack(t *testing.T) {
	t.Parallel()

	h := &testutil.MockHost{}
	h.On("CreateSession").Return("h0", nil).Once()
	h.On("NewSessionID").Return(1).Once()
	h.On("AssignDisplayID", "h0", 1).Return(nil).Once()
	h.On("Login", "h0", mock.Anything).Return(true, nil).Once()
	h.On("InRoster", n0).Return(true, nil)
	h.On("AddToRoster", "h0").Return(errors.New("duplicate session")).Once()
	h.On("RemoveFromRoster", n0).Return(nil).Once()
	h.On("RemoveDisplayID", "h0").Return(nil).Once()
	h.On("ReleaseSession", "h0").Return(nil).Once()

	f := newFabricator(h, fakeplayer.ModeSerial, zap.NewNop())
	res := f.Fabricate(context.Background(), 1)

	assert.Equal(t, 0, res.Created)
	assert.Zero(t, f.Registry().Len())
	h.AssertExpectations(t)
}

func TestFabricate_ParallelStallBoundedByCeiling(t *testing.T) {
	t.Parallel()

	sim := newSimHost(5 * time.Millisecond)
	for i := range 16 {
		sim.never[fakeplayer.DefaultNetworkBase+uint64(i)] = true
	}
	f := newFabricator(sim, fakeplayer.ModeParallel, zap.NewNop())

	start := time.Now()
	res := f.Fabricate(context.Background(), 16)
	elapsed := time.Since(start)

	assert.Equal(t, 0, res.Created)
	assert.Less(t, elapsed, 16*100*time.Millisecond/2, "confirmations run concurrently")
	assert.Zero(t, sim.displayCount(), "abandoned identities leave no display ids")
}

func TestFabricate_CancelledContextMakesNoHostCalls(t *testing.T) {
	t.Parallel()

	h := &testutil.MockHost{}
	f := newFabricator(h, fakeplayer.ModeSerial, zap.NewNop())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	res := f.Fabricate(ctx, 2)

	assert.Equal(t, fakeplayer.Result{Requested: 2, Failed: 2}, res)
	assert.Empty(t, h.Calls)
}

func TestTeardown_WaitsForInFlightBatch(t *testing.T) {
	t.Parallel()

	sim := newSimHost(40 * time.Millisecond)
	f := newFabricator(sim, fakeplayer.ModeParallel, zap.NewNop())

	done := make(chan fakeplayer.Result, 1)
	go func() { done <- f.Fabricate(context.Background(), 2) }()

	// 等批量开始登录后再移除
	require.Eventually(t, func() bool { return sim.callCount() > 0 }, time.Second, time.Millisecond)
	removed := f.Teardown(context.Background())

	res := <-done
	assert.Equal(t, res.Created, removed, "teardown sees every identity the batch confirmed")
	assert.Zero(t, f.Registry().Len())
	assert.Zero(t, sim.rosterSize())
}

func TestTeardown_Idempotent(t *testing.T) {
	t.Parallel()

	sim := newSimHost(time.Millisecond)
	f := newFabricator(sim, fakeplayer.ModeParallel, zap.NewNop())
	require.Equal(t, 3, f.Fabricate(context.Background(), 3).Created)
	require.Equal(t, 3, sim.rosterSize())

	assert.Equal(t, 3, f.Teardown(context.Background()))
	assert.Zero(t, sim.rosterSize())
	assert.Zero(t, sim.displayCount())
	assert.Len(t, sim.releasedHandles(), 3)

	calls := sim.callCount()
	assert.Zero(t, f.Teardown(context.Background()))
	assert.Equal(t, calls, sim.callCount(), "second teardown makes no host calls")
}

func TestTeardown_ContinuesPastFailures(t *testing.T) {
	t.Parallel()

	h := &testutil.MockHost{}
	h.On("RemoveFromRoster", n0).Return(errors.New("gone")).Once()
	h.On("RemoveFromRoster", n1).Return(nil).Once()
	h.On("RemoveDisplayID", mock.Anything).Return(nil).Twice()
	h.On("ReleaseSession", mock.Anything).Return(nil).Twice()

	l, logs := newObservedLogger()
	f := newFabricator(h, fakeplayer.ModeParallel, l)
	f.Registry().Append(&fakeplayer.Identity{Name: "FakePlayer1", NetworkID: n0, Handle: "h0"})
	f.Registry().Append(&fakeplayer.Identity{Name: "FakePlayer2", NetworkID: n1, Handle: "h1"})

	assert.Equal(t, 2, f.Teardown(context.Background()))
	assert.Zero(t, f.Registry().Len())
	assert.Equal(t, 1, logs.FilterMessage("failed to remove fake player").Len())
	h.AssertExpectations(t)
}

// simHost 模拟主机：登录在 delay 之后异步进入名册
type simHost struct {
	delay time.Duration

	mu       sync.Mutex
	nextID   int
	calls    int
	roster   map[uint64]bool
	display  map[fakeplayer.Handle]int
	released []fakeplayer.Handle
	never    map[uint64]bool
}

type simSession struct {
	name string
}

func newSimHost(delay time.Duration) *simHost {
	return &simHost{
		delay:   delay,
		roster:  make(map[uint64]bool),
		display: make(map[fakeplayer.Handle]int),
		never:   make(map[uint64]bool),
	}
}

func (s *simHost) call() {
	s.mu.Lock()
	s.calls++
	s.mu.Unlock()
}

func (s *simHost) CreateSession() (fakeplayer.Handle, error) {
	s.call()
	return &simSession{}, nil
}

func (s *simHost) NewSessionID() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	s.nextID++
	return s.nextID
}

func (s *simHost) AssignDisplayID(h fakeplayer.Handle, id int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	s.display[h] = id
	return nil
}

func (s *simHost) RemoveDisplayID(h fakeplayer.Handle) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	delete(s.display, h)
	return nil
}

func (s *simHost) Login(h fakeplayer.Handle, req fakeplayer.LoginRequest) (bool, error) {
	s.call()
	h.(*simSession).name = req.Name
	if s.never[req.NetworkID] {
		return true, nil
	}
	time.AfterFunc(s.delay, func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		s.roster[req.NetworkID] = true
	})
	return true, nil
}

func (s *simHost) InRoster(networkID uint64) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.roster[networkID], nil
}

func (s *simHost) AddToRoster(fakeplayer.Handle) error {
	s.call()
	return nil
}

func (s *simHost) RemoveFromRoster(networkID uint64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	if !s.roster[networkID] {
		return errors.Newf("network id %d not in roster", networkID)
	}
	delete(s.roster, networkID)
	return nil
}

func (s *simHost) ReleaseSession(h fakeplayer.Handle) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	s.released = append(s.released, h)
	return nil
}

func (s *simHost) rosterSize() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.roster)
}

func (s *simHost) displayCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.display)
}

func (s *simHost) releasedHandles() []fakeplayer.Handle {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]fakeplayer.Handle(nil), s.released...)
}

func (s *simHost) callCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}
