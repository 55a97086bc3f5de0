package fakeplayer

import (
	"context"
	"sync"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/panjf2000/ants/v2"
	"go.uber.org/zap"

	"github.com/palemoky/fakeplayers/internal/metrics"
)

const (
	ModeSerial   = "serial"
	ModeParallel = "parallel"

	DefaultSettleDelay = 50 * time.Millisecond
)

// Options 批量创建配置
type Options struct {
	Mode        string
	Workers     int           // 并行模式下的协程池大小，0 表示与批量大小相同
	SettleDelay time.Duration // 串行模式下登录后的等待时长
	Logger      *zap.Logger
}

// Result 一次批量创建的结果
type Result struct {
	Requested int
	Created   int
	Failed    int
}

// Fabricator 假玩家创建器
type Fabricator struct {
	host     Host
	alloc    *Allocator
	monitor  *Monitor
	registry *Registry

	batch sync.Mutex // Fabricate 与 Teardown 互斥

	mode    string
	workers int
	settle  time.Duration
	log     *zap.Logger
}

// NewFabricator 创建假玩家创建器
func NewFabricator(host Host, alloc *Allocator, monitor *Monitor, opts Options) *Fabricator {
	if opts.Mode == "" {
		opts.Mode = ModeParallel
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	return &Fabricator{
		host:     host,
		alloc:    alloc,
		monitor:  monitor,
		registry: NewRegistry(),
		mode:     opts.Mode,
		workers:  opts.Workers,
		settle:   opts.SettleDelay,
		log:      opts.Logger,
	}
}

// Registry 返回已确认的假玩家列表
func (f *Fabricator) Registry() *Registry {
	return f.registry
}

// Fabricate 创建 n 个假玩家
//
// 单个身份的失败只记录日志，不影响批量中的其他身份。ctx 取消后不再发起新的
// 登录，等待中的身份按未确认处理。
func (f *Fabricator) Fabricate(ctx context.Context, n int) Result {
	res := Result{Requested: max(n, 0)}
	if n <= 0 {
		return res
	}

	f.batch.Lock()
	defer f.batch.Unlock()

	if err := ctx.Err(); err != nil {
		f.log.Warn("fake player creation skipped", zap.Int("count", n), zap.Error(err))
		res.Failed = n
		return res
	}

	f.log.Info("creating fake players", zap.Int("count", n), zap.String("mode", f.mode))

	ids := f.alloc.Batch(n)
	var created int
	if f.mode == ModeSerial {
		created = f.fabricateSerial(ctx, ids)
	} else {
		created = f.fabricateParallel(ctx, ids)
	}

	res.Created = created
	res.Failed = n - created
	f.log.Info("fake players created",
		zap.Int("requested", n), zap.Int("created", created), zap.Int("active", f.registry.Len()))
	return res
}

func (f *Fabricator) fabricateSerial(ctx context.Context, ids []*Identity) int {
	created := 0
	for _, id := range ids {
		if ctx.Err() != nil {
			break
		}
		if err := f.begin(id); err != nil {
			continue
		}

		select {
		case <-time.After(f.settle):
		case <-ctx.Done():
		}

		if f.confirm(ctx, id, time.Now().Add(-f.settle)) {
			created++
		}
	}
	return created
}

func (f *Fabricator) fabricateParallel(ctx context.Context, ids []*Identity) int {
	type started struct {
		id *Identity
		at time.Time
	}

	// 所有身份先发起登录，再并发等待确认
	pending := make([]started, 0, len(ids))
	for _, id := range ids {
		if ctx.Err() != nil {
			break
		}
		at := time.Now()
		if err := f.begin(id); err != nil {
			continue
		}
		pending = append(pending, started{id: id, at: at})
	}
	if len(pending) == 0 {
		return 0
	}

	size := f.workers
	if size <= 0 || size > len(pending) {
		size = len(pending)
	}
	pool, err := ants.NewPool(size, ants.WithPanicHandler(func(v any) {
		f.log.Error("confirmation task panicked", zap.Any("panic", v), zap.Stack("stack"))
	}))
	if err != nil {
		f.log.Error("failed to create worker pool, confirming inline", zap.Error(err))
	} else {
		defer pool.Release()
	}

	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		created int
	)
	for _, p := range pending {
		wg.Add(1)
		task := func() {
			defer wg.Done()
			if f.confirm(ctx, p.id, p.at) {
				mu.Lock()
				created++
				mu.Unlock()
			}
		}
		if pool == nil {
			task()
			continue
		}
		if err := pool.Submit(task); err != nil {
			f.log.Error("failed to submit confirmation task", zap.Error(err))
			task()
		}
	}
	wg.Wait()
	return created
}

// begin 创建会话、分配 ID 并登录
func (f *Fabricator) begin(id *Identity) error {
	h, err := f.host.CreateSession()
	if err != nil {
		f.fail(id, metrics.ReasonCreate, errors.Wrap(err, "create session"))
		return err
	}
	id.Handle = h

	id.DisplayID = f.host.NewSessionID()
	if err := f.host.AssignDisplayID(h, id.DisplayID); err != nil {
		f.fail(id, metrics.ReasonCreate, errors.Wrap(err, "assign display id"))
		f.abandon(id)
		return err
	}

	ok, err := f.host.Login(h, LoginRequest{
		AccountID: id.AccountID,
		Token:     id.Token,
		NetworkID: id.NetworkID,
		Name:      id.Name,
	})
	if err != nil {
		f.fail(id, metrics.ReasonCreate, errors.Wrap(err, "login"))
		f.abandon(id)
		return err
	}
	if !ok {
		err := errors.Newf("login produced no snapshot for %s", id.Name)
		f.fail(id, metrics.ReasonNoSnapshot, err)
		f.abandon(id)
		return err
	}
	return nil
}

// confirm 等待名册确认后交给主机并记录
func (f *Fabricator) confirm(ctx context.Context, id *Identity, startedAt time.Time) bool {
	if !f.monitor.Wait(ctx, id.NetworkID) {
		f.log.Warn("fake player login not confirmed",
			zap.String("name", id.Name), zap.Uint64("network_id", id.NetworkID))
		metrics.FakePlayersFailed.WithLabelValues(metrics.ReasonUnconfirmed).Inc()
		f.abandon(id)
		if ctx.Err() != nil {
			// 等待被中断时登录副作用可能已经生效
			_ = f.host.RemoveFromRoster(id.NetworkID)
		}
		return false
	}
	metrics.ConfirmLatency.WithLabelValues(f.mode).Observe(float64(time.Since(startedAt).Milliseconds()))

	if err := f.host.AddToRoster(id.Handle); err != nil {
		f.fail(id, metrics.ReasonRegister, errors.Wrap(err, "register session"))
		if err := f.host.RemoveFromRoster(id.NetworkID); err != nil {
			f.log.Debug("remove unregistered fake player", zap.String("name", id.Name), zap.Error(err))
		}
		f.abandon(id)
		return false
	}

	f.registry.Append(id)
	metrics.FakePlayersCreated.WithLabelValues(f.mode).Inc()
	metrics.FakePlayersActive.Inc()
	f.log.Debug("fake player created",
		zap.String("name", id.Name), zap.Int("session_id", id.DisplayID), zap.Uint64("network_id", id.NetworkID))
	return true
}

func (f *Fabricator) fail(id *Identity, reason string, err error) {
	f.log.Error("failed to create fake player", zap.String("name", id.Name), zap.String("reason", reason), zap.Error(err))
	metrics.FakePlayersFailed.WithLabelValues(reason).Inc()
}

// abandon 释放 ID 覆盖和会话，避免遗留的 ID 影响后续会话
func (f *Fabricator) abandon(id *Identity) {
	if id.Handle == nil {
		return
	}
	if err := f.host.RemoveDisplayID(id.Handle); err != nil {
		f.log.Debug("remove display id", zap.String("name", id.Name), zap.Error(err))
	}
	if err := f.host.ReleaseSession(id.Handle); err != nil {
		f.log.Debug("release session", zap.String("name", id.Name), zap.Error(err))
	}
}
