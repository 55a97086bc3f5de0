package fakeplayer

import (
	"context"

	"github.com/cockroachdb/errors"
	"go.uber.org/zap"

	"github.com/palemoky/fakeplayers/internal/metrics"
)

// Teardown 移除所有已创建的假玩家，返回移除数量
//
// 单个条目的失败只记录日志，不会中断其余条目。进行中的 Fabricate 结束后才开始移除。
func (f *Fabricator) Teardown(ctx context.Context) int {
	f.batch.Lock()
	defer f.batch.Unlock()

	entries := f.registry.Snapshot()
	if len(entries) == 0 {
		return 0
	}

	removed := 0
	for _, id := range entries {
		if ctx.Err() != nil {
			f.log.Warn("teardown interrupted", zap.Int("remaining", len(entries)-removed), zap.Error(ctx.Err()))
			break
		}
		if err := f.release(id); err != nil {
			f.log.Error("failed to remove fake player", zap.String("name", id.Name), zap.Error(err))
			metrics.FakePlayersFailed.WithLabelValues(metrics.ReasonTeardown).Inc()
		}
		if f.registry.Remove(id) {
			metrics.FakePlayersActive.Dec()
			removed++
		}
	}

	f.log.Info("fake players removed", zap.Int("count", removed))
	return removed
}

// release 依次执行所有释放步骤，返回合并后的错误
func (f *Fabricator) release(id *Identity) error {
	var errs error
	if err := f.host.RemoveFromRoster(id.NetworkID); err != nil {
		errs = errors.CombineErrors(errs, errors.Wrap(err, "remove from roster"))
	}
	if err := f.host.RemoveDisplayID(id.Handle); err != nil {
		errs = errors.CombineErrors(errs, errors.Wrap(err, "remove display id"))
	}
	if err := f.host.ReleaseSession(id.Handle); err != nil {
		errs = errors.CombineErrors(errs, errors.Wrap(err, "release session"))
	}
	return errs
}
