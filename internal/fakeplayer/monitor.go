package fakeplayer

import (
	"context"
	"time"

	"github.com/cenkalti/backoff/v4"
	"go.uber.org/zap"
)

const (
	DefaultPollInterval = 10 * time.Millisecond
	DefaultPollCeiling  = 500 * time.Millisecond
)

// Monitor 等待异步登录副作用（进入名册）完成
type Monitor struct {
	host     Host
	interval time.Duration
	ceiling  time.Duration
	log      *zap.Logger
}

// NewMonitor 创建监视器
func NewMonitor(host Host, interval, ceiling time.Duration, l *zap.Logger) *Monitor {
	if interval <= 0 {
		interval = DefaultPollInterval
	}
	if ceiling < interval {
		ceiling = interval
	}
	if l == nil {
		l = zap.NewNop()
	}
	return &Monitor{host: host, interval: interval, ceiling: ceiling, log: l}
}

// Wait 在上限时间内等待 networkID 出现在名册中
//
// 每隔 interval 查询一次，第一次查询立即进行。主机支持 RosterWatcher 时，
// 收到通知后立即返回而不必等到下一次查询。
func (m *Monitor) Wait(ctx context.Context, networkID uint64) bool {
	var notify <-chan struct{}
	if w, ok := m.host.(RosterWatcher); ok {
		ch, cancel := w.WatchRoster(networkID)
		defer cancel()
		notify = ch
	}

	retries := uint64(m.ceiling / m.interval)
	policy := backoff.WithContext(
		backoff.WithMaxRetries(backoff.NewConstantBackOff(m.interval), retries), ctx)
	ticker := backoff.NewTicker(policy)
	defer ticker.Stop()

	for {
		select {
		case <-notify:
			return true
		case _, ok := <-ticker.C:
			if !ok {
				return false
			}
			if m.poll(networkID) {
				return true
			}
		case <-ctx.Done():
			return false
		}
	}
}

// poll 查询一次，错误和 panic 都视为尚未确认
func (m *Monitor) poll(networkID uint64) (found bool) {
	defer func() {
		if r := recover(); r != nil {
			m.log.Debug("roster poll panicked", zap.Uint64("network_id", networkID), zap.Any("panic", r))
			found = false
		}
	}()

	in, err := m.host.InRoster(networkID)
	if err != nil {
		m.log.Debug("roster poll failed", zap.Uint64("network_id", networkID), zap.Error(err))
		return false
	}
	return in
}
