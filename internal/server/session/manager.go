package session

import (
	"sort"
	"sync"
	"time"

	"go.uber.org/atomic"

	"github.com/palemoky/fakeplayers/internal/apperrors"
)

const cleanupInterval = 1 * time.Minute

// Manager 会话管理器（主机的会话注册表）
type Manager struct {
	nextID   atomic.Int32
	sessions map[int]*Context // sessionID -> context
	mu       sync.RWMutex

	done      chan struct{}
	closeOnce sync.Once
}

// NewManager 创建会话管理器
func NewManager() *Manager {
	m := &Manager{
		sessions: make(map[int]*Context),
		done:     make(chan struct{}),
	}

	// 启动会话清理协程
	go m.cleanupLoop()

	return m
}

// GetNewSessionID 分配新的会话 ID（从 1 开始，0 保留给虚拟会话默认值）
func (m *Manager) GetNewSessionID() int {
	return int(m.nextID.Inc())
}

// Add 注册会话，按会话当前对外可见的 ID 建立索引
func (m *Manager) Add(c *Context) error {
	if c == nil || c.Session() == nil {
		return apperrors.ErrInvalidLogin
	}
	id := c.Session().ID()

	m.mu.Lock()
	defer m.mu.Unlock()

	if existing, ok := m.sessions[id]; ok && existing != c {
		return apperrors.ErrDuplicatePlayer
	}
	m.sessions[id] = c
	return nil
}

// Get 获取会话
func (m *Manager) Get(id int) *Context {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.sessions[id]
}

// Remove 移除会话（按对象查找，与 ID 拦截状态无关）
func (m *Manager) Remove(c *Context) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	for id, existing := range m.sessions {
		if existing == c {
			delete(m.sessions, id)
			return true
		}
	}
	return false
}

// Count 返回会话数量
func (m *Manager) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

// IDs 返回所有会话 ID（升序）
func (m *Manager) IDs() []int {
	m.mu.RLock()
	ids := make([]int, 0, len(m.sessions))
	for id := range m.sessions {
		ids = append(ids, id)
	}
	m.mu.RUnlock()

	sort.Ints(ids)
	return ids
}

// Close 停止清理协程
func (m *Manager) Close() {
	m.closeOnce.Do(func() { close(m.done) })
}

// cleanupLoop 定期清理已释放的会话
func (m *Manager) cleanupLoop() {
	ticker := time.NewTicker(cleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			m.cleanup()
		case <-m.done:
			return
		}
	}
}

// cleanup 清理已释放的会话
func (m *Manager) cleanup() {
	m.mu.Lock()
	defer m.mu.Unlock()

	for id, c := range m.sessions {
		if c.Disposed() {
			delete(m.sessions, id)
		}
	}
}
