package session

import (
	"slices"
	"sync"

	"github.com/samber/lo"
	"go.uber.org/atomic"
)

// Dispatcher 异步处理登录副作用（由 world 实现）
type Dispatcher interface {
	DispatchLogin(c *Context)
}

// IDInterceptor 拦截 VirtualSession.ID 的读取，ok 为 false 时使用原始值
type IDInterceptor func(s *VirtualSession) (id int, ok bool)

type interceptorEntry struct {
	fn IDInterceptor
}

var (
	interceptorMu sync.RWMutex
	interceptors  []*interceptorEntry // 后安装的优先
)

// SetIDInterceptor 安装 ID 拦截器，返回恢复函数
//
// 多个拦截器可以同时存在，读取时从最后安装的开始依次查询，
// 第一个 ok 的结果生效。恢复函数只移除自己安装的拦截器，可按任意顺序调用，
// 重复调用无副作用。
func SetIDInterceptor(fn IDInterceptor) (restore func()) {
	e := &interceptorEntry{fn: fn}

	interceptorMu.Lock()
	interceptors = append(slices.Clone(interceptors), e)
	interceptorMu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			interceptorMu.Lock()
			interceptors = lo.Without(interceptors, e)
			interceptorMu.Unlock()
		})
	}
}

// VirtualSession 主机侧的会话对象
//
// 没有底层连接的虚拟会话使用默认 ID 0，同一进程内的多个虚拟会话会互相冲突，
// 因此需要通过 IDInterceptor 为其提供唯一 ID。
type VirtualSession struct {
	dispatcher Dispatcher
	defaultID  int
	closed     atomic.Bool

	mu  sync.RWMutex
	ctx *Context
}

// New 创建带有固定 ID 的会话（真实连接使用）
func New(d Dispatcher, id int) *VirtualSession {
	return &VirtualSession{dispatcher: d, defaultID: id}
}

// NewVirtualSession 创建虚拟会话，登录副作用交给 d 异步处理
func NewVirtualSession(d Dispatcher) *VirtualSession {
	return New(d, 0)
}

// ID 返回会话 ID
func (s *VirtualSession) ID() int {
	interceptorMu.RLock()
	chain := interceptors
	interceptorMu.RUnlock()

	for i := len(chain) - 1; i >= 0; i-- {
		if chain[i].fn == nil {
			continue
		}
		if id, ok := chain[i].fn(s); ok {
			return id
		}
	}
	return s.defaultID
}

// SetContext 绑定会话上下文
func (s *VirtualSession) SetContext(c *Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ctx = c
}

// Context 返回绑定的会话上下文
func (s *VirtualSession) Context() *Context {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.ctx
}

// Close 关闭会话，重复调用无副作用
func (s *VirtualSession) Close() error {
	s.closed.Store(true)
	return nil
}

// Closed 会话是否已关闭
func (s *VirtualSession) Closed() bool {
	return s.closed.Load()
}
