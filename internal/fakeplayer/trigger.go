package fakeplayer

import (
	"context"

	"go.uber.org/atomic"
	"go.uber.org/zap"

	"github.com/palemoky/fakeplayers/internal/apperrors"
)

// Trigger 主机玩家注册成功后创建一次假玩家
type Trigger struct {
	ctx     context.Context
	fab     *Fabricator
	enabled bool
	count   int
	log     *zap.Logger

	fired atomic.Bool
	last  atomic.Value // Result
}

// NewTrigger 创建触发器，ctx 只用于关闭时中断等待
func NewTrigger(ctx context.Context, fab *Fabricator, enabled bool, count int, l *zap.Logger) *Trigger {
	if l == nil {
		l = zap.NewNop()
	}
	return &Trigger{ctx: ctx, fab: fab, enabled: enabled, count: count, log: l}
}

// OnPlayerRegistered 玩家注册回调，在调用方的 goroutine 上同步执行
func (t *Trigger) OnPlayerRegistered(networkID uint64, isHost bool, code apperrors.ResultCode) {
	if !t.enabled || code != apperrors.Success || !isHost {
		return
	}
	if !t.fired.CompareAndSwap(false, true) {
		return
	}

	t.log.Info("host player registered, creating fake players",
		zap.Uint64("host", networkID), zap.Int("count", t.count))
	res := t.fab.Fabricate(t.ctx, t.count)
	t.last.Store(res)
}

// OnPlayerUnregistered 主机玩家离开时移除假玩家
func (t *Trigger) OnPlayerUnregistered(networkID uint64, isHost bool) {
	if !isHost || !t.fired.Load() {
		return
	}
	t.log.Info("host player left, removing fake players", zap.Uint64("host", networkID))
	t.fab.Teardown(t.ctx)
}

// Fired 是否已经触发
func (t *Trigger) Fired() bool {
	return t.fired.Load()
}

// LastResult 返回最近一次创建结果
func (t *Trigger) LastResult() (Result, bool) {
	res, ok := t.last.Load().(Result)
	return res, ok
}
