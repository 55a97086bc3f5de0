package fakeplayer_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/palemoky/fakeplayers/internal/apperrors"
	"github.com/palemoky/fakeplayers/internal/fakeplayer"
	"github.com/palemoky/fakeplayers/internal/testutil"
)

func TestTrigger_FiresOnceForHost(t *testing.T) {
	t.Parallel()

	sim := newSimHost(time.Millisecond)
	f := newFabricator(sim, fakeplayer.ModeParallel, zap.NewNop())
	trig := fakeplayer.NewTrigger(context.Background(), f, true, 2, zap.NewNop())

	trig.OnPlayerRegistered(1, false, apperrors.Success)
	trig.OnPlayerRegistered(1, true, apperrors.DuplicatePlayer)
	assert.False(t, trig.Fired(), "only a successful host registration fires")
	_, ok := trig.LastResult()
	assert.False(t, ok)

	var wg sync.WaitGroup
	for range 4 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			trig.OnPlayerRegistered(1, true, apperrors.Success)
		}()
	}
	wg.Wait()

	assert.True(t, trig.Fired())
	res, ok := trig.LastResult()
	require.True(t, ok)
	assert.Equal(t, 2, res.Created)
	assert.Equal(t, 2, f.Registry().Len(), "latched: fabricated exactly once")
}

func TestTrigger_Disabled(t *testing.T) {
	t.Parallel()

	h := &testutil.MockHost{}
	f := newFabricator(h, fakeplayer.ModeParallel, zap.NewNop())
	trig := fakeplayer.NewTrigger(context.Background(), f, false, 3, nil)

	trig.OnPlayerRegistered(1, true, apperrors.Success)
	assert.False(t, trig.Fired())
	assert.Empty(t, h.Calls)
}

func TestTrigger_HostLeaveTearsDown(t *testing.T) {
	t.Parallel()

	sim := newSimHost(time.Millisecond)
	f := newFabricator(sim, fakeplayer.ModeParallel, zap.NewNop())
	trig := fakeplayer.NewTrigger(context.Background(), f, true, 3, zap.NewNop())

	trig.OnPlayerRegistered(1, true, apperrors.Success)
	require.Equal(t, 3, f.Registry().Len())

	trig.OnPlayerUnregistered(fakeplayer.DefaultNetworkBase, false)
	assert.Equal(t, 3, f.Registry().Len(), "fake players leaving do not tear down")

	trig.OnPlayerUnregistered(1, true)
	assert.Zero(t, f.Registry().Len())
	assert.Zero(t, sim.rosterSize())
}

func TestAdmission_Filter(t *testing.T) {
	t.Parallel()

	alloc := fakeplayer.NewDefaultAllocator()
	alloc.Batch(2)
	adm := fakeplayer.NewAdmission(alloc)

	code, handled := adm.Filter(fakeplayer.DefaultAccountBase+1, 4)
	assert.True(t, handled)
	assert.Equal(t, apperrors.Success, code)

	_, handled = adm.Filter(42, 4)
	assert.False(t, handled, "real players keep the room cap")
}

func TestDiagnostics_OnRoomEntered(t *testing.T) {
	t.Parallel()

	alloc := fakeplayer.NewDefaultAllocator()
	alloc.Batch(2)
	core, logs := observer.New(zapcore.InfoLevel)
	d := fakeplayer.NewDiagnostics(alloc, zap.New(core))

	d.OnRoomEntered(42, 1, true, apperrors.Success)
	d.OnRoomEntered(43, 2, false, apperrors.Success)
	d.OnRoomEntered(fakeplayer.DefaultAccountBase, 3, false, apperrors.Success)
	d.OnRoomEntered(fakeplayer.DefaultAccountBase+1, 4, false, apperrors.PlayerCountExceeded)

	assert.Equal(t, 1, logs.FilterMessage("host entered room").Len())
	assert.Equal(t, 1, logs.FilterMessage("fake player entered room").Len())
	assert.Equal(t, 1, logs.FilterLevelExact(zapcore.ErrorLevel).Len())
	assert.Equal(t, 3, logs.Len(), "real non-host players are not logged")
}
