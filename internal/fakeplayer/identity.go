package fakeplayer

import (
	"fmt"
	"sync"

	"github.com/google/uuid"
)

const (
	// DefaultAccountBase 假玩家账号 ID 起始值
	DefaultAccountBase int64 = 1_000_000
	// DefaultNetworkBase 假玩家网络 ID 起始值
	DefaultNetworkBase uint64 = 76561198000000000
)

// Identity 假玩家身份
type Identity struct {
	Ordinal   int
	AccountID int64
	NetworkID uint64
	Name      string
	Token     string // 关联令牌

	Handle    Handle
	DisplayID int
}

// Allocator 身份分配器
type Allocator struct {
	accountBase int64
	networkBase uint64

	mu   sync.Mutex
	next int
}

// NewAllocator 创建分配器
func NewAllocator(accountBase int64, networkBase uint64) *Allocator {
	return &Allocator{accountBase: accountBase, networkBase: networkBase}
}

// NewDefaultAllocator 使用默认起始值创建分配器
func NewDefaultAllocator() *Allocator {
	return NewAllocator(DefaultAccountBase, DefaultNetworkBase)
}

// Next 分配下一个身份
func (a *Allocator) Next() *Identity {
	a.mu.Lock()
	i := a.next
	a.next++
	a.mu.Unlock()

	return &Identity{
		Ordinal:   i,
		AccountID: a.accountBase + int64(i),
		NetworkID: a.networkBase + uint64(i),
		Name:      fmt.Sprintf("FakePlayer%d", i+1),
		Token:     uuid.NewString(),
	}
}

// Batch 分配 n 个连续身份
func (a *Allocator) Batch(n int) []*Identity {
	ids := make([]*Identity, 0, max(n, 0))
	for range n {
		ids = append(ids, a.Next())
	}
	return ids
}

// Allocated 已分配数量
func (a *Allocator) Allocated() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.next
}

// Owns 账号 ID 是否由本分配器分配
func (a *Allocator) Owns(accountID int64) bool {
	n := int64(a.Allocated())
	return accountID >= a.accountBase && accountID < a.accountBase+n
}

// OwnsNetwork 网络 ID 是否由本分配器分配
func (a *Allocator) OwnsNetwork(networkID uint64) bool {
	n := uint64(a.Allocated())
	return networkID >= a.networkBase && networkID < a.networkBase+n
}
