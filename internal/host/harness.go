package host

import (
	"context"

	"go.uber.org/zap"

	"github.com/palemoky/fakeplayers/internal/config"
	"github.com/palemoky/fakeplayers/internal/fakeplayer"
	"github.com/palemoky/fakeplayers/internal/server/world"
)

// Harness 挂在主机世界上的假玩家组件
type Harness struct {
	Adapter    *Adapter
	Allocator  *fakeplayer.Allocator
	Fabricator *fakeplayer.Fabricator
	Trigger    *fakeplayer.Trigger

	cancel context.CancelFunc
}

// Install 创建假玩家组件并注册到世界的生命周期回调
//
// 禁用时仍然安装拦截器（始终回退到默认 ID），但不会创建假玩家，
// 也不安装房间准入规则和进入房间的诊断日志。
func Install(ctx context.Context, w *world.World, cfg config.FakePlayersConfig, l *zap.Logger) *Harness {
	if l == nil {
		l = zap.NewNop()
	}
	ctx, cancel := context.WithCancel(ctx)

	adapter := NewAdapter(w, cfg.Enabled)
	alloc := fakeplayer.NewDefaultAllocator()
	monitor := fakeplayer.NewMonitor(adapter, cfg.PollIntervalDuration(), cfg.PollCeilingDuration(), l.Named("monitor"))
	fab := fakeplayer.NewFabricator(adapter, alloc, monitor, fakeplayer.Options{
		Mode:        cfg.Mode,
		Workers:     cfg.Workers,
		SettleDelay: cfg.SettleDelayDuration(),
		Logger:      l,
	})
	trig := fakeplayer.NewTrigger(ctx, fab, cfg.Enabled, cfg.Count, l)

	w.OnPlayerRegistered(trig.OnPlayerRegistered)
	w.OnPlayerUnregistered(trig.OnPlayerUnregistered)
	if cfg.Enabled {
		w.Room().AddFilter(fakeplayer.NewAdmission(alloc).Filter)
		w.OnRoomEntered(fakeplayer.NewDiagnostics(alloc, l.Named("room")).OnRoomEntered)
	}

	l.Info("fake player harness installed",
		zap.Bool("enabled", cfg.Enabled), zap.Int("count", cfg.Count), zap.String("mode", cfg.Mode))

	return &Harness{
		Adapter:    adapter,
		Allocator:  alloc,
		Fabricator: fab,
		Trigger:    trig,
		cancel:     cancel,
	}
}

// Shutdown 移除假玩家并卸载拦截器
//
// 先中断进行中的批量创建，等它结束后再移除，最后才卸载拦截器。
func (h *Harness) Shutdown(ctx context.Context) int {
	h.cancel()
	n := h.Fabricator.Teardown(ctx)
	h.Adapter.Close()
	return n
}
