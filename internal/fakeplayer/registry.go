package fakeplayer

import (
	"sync"

	"github.com/samber/lo"
)

// Registry 已确认的假玩家列表（按确认顺序）
type Registry struct {
	mu      sync.Mutex
	entries []*Identity
}

// NewRegistry 创建列表
func NewRegistry() *Registry {
	return &Registry{}
}

// Append 追加已确认的身份
func (r *Registry) Append(id *Identity) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = append(r.entries, id)
}

// Remove 移除身份
func (r *Registry) Remove(id *Identity) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if !lo.Contains(r.entries, id) {
		return false
	}
	r.entries = lo.Without(r.entries, id)
	return true
}

// Snapshot 返回当前列表的副本
func (r *Registry) Snapshot() []*Identity {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]*Identity(nil), r.entries...)
}

// Len 数量
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.entries)
}

// NetworkIDs 返回所有网络 ID
func (r *Registry) NetworkIDs() []uint64 {
	return lo.Map(r.Snapshot(), func(id *Identity, _ int) uint64 { return id.NetworkID })
}
