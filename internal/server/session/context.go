package session

import (
	"sync"
	"time"
)

// PlayerSnapshot 登录后生成的玩家快照
type PlayerSnapshot struct {
	AccountID  int64
	NetworkID  uint64
	Name       string
	VoiceID    string
	IsHost     bool
	HashCode   int
	LoggedInAt time.Time
}

// Context 会话上下文，保存玩家登录信息
type Context struct {
	session *VirtualSession

	mu        sync.RWMutex
	accountID int64
	token     string
	networkID uint64
	name      string
	snapshot  *PlayerSnapshot
	disposed  bool
}

// NewContext 创建会话上下文
func NewContext(s *VirtualSession) *Context {
	return &Context{session: s}
}

// Login 登录
//
// 参数不完整时不会生成快照。会话带有 Dispatcher 时，名册注册以异步方式完成，
// 调用方只能通过名册观察结果。
func (c *Context) Login(accountID int64, token string, networkID uint64, name, voiceID string, isHost bool, hashCode int) {
	c.mu.Lock()
	c.accountID = accountID
	c.token = token
	c.networkID = networkID
	c.name = name
	if accountID == 0 || networkID == 0 || name == "" || c.disposed {
		c.snapshot = nil
		c.mu.Unlock()
		return
	}
	c.snapshot = &PlayerSnapshot{
		AccountID:  accountID,
		NetworkID:  networkID,
		Name:       name,
		VoiceID:    voiceID,
		IsHost:     isHost,
		HashCode:   hashCode,
		LoggedInAt: time.Now(),
	}
	c.mu.Unlock()

	if c.session != nil && c.session.dispatcher != nil {
		c.session.dispatcher.DispatchLogin(c)
	}
}

// Session 返回底层会话
func (c *Context) Session() *VirtualSession {
	return c.session
}

// AccountID 返回账号 ID
func (c *Context) AccountID() int64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.accountID
}

// NetworkID 返回网络 ID
func (c *Context) NetworkID() uint64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.networkID
}

// Name 返回玩家名称
func (c *Context) Name() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.name
}

// Token 返回登录令牌
func (c *Context) Token() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.token
}

// Snapshot 返回玩家快照，未成功登录时为 nil
func (c *Context) Snapshot() *PlayerSnapshot {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.snapshot
}

// Dispose 释放上下文并关闭会话
func (c *Context) Dispose() {
	c.mu.Lock()
	if c.disposed {
		c.mu.Unlock()
		return
	}
	c.disposed = true
	c.mu.Unlock()

	if c.session != nil {
		_ = c.session.Close()
	}
}

// Disposed 是否已释放
func (c *Context) Disposed() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.disposed
}
