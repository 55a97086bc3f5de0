package roster

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/samber/lo"
	"go.uber.org/zap"

	"github.com/palemoky/fakeplayers/internal/apperrors"
	"github.com/palemoky/fakeplayers/internal/logger"
	"github.com/palemoky/fakeplayers/internal/server/storage"
)

const storeTimeout = 2 * time.Second

// Member 名册成员
type Member struct {
	NetworkID uint64
	AccountID int64
	Name      string
	IsHost    bool
	JoinedAt  time.Time
}

// Store 名册镜像存储（可选）
type Store interface {
	SaveRosterMember(ctx context.Context, m *storage.RosterMemberData) error
	RemoveRosterMember(ctx context.Context, networkID uint64) error
}

// Roster 主机名册（TotalPlayer 集合）
type Roster struct {
	capacity int
	store    Store
	log      *zap.Logger

	mu       sync.RWMutex
	members  map[uint64]*Member
	watchers map[uint64][]chan struct{}

	wg sync.WaitGroup // 未完成的镜像写入
}

// New 创建名册，store 可以为 nil
func New(capacity int, store Store) *Roster {
	return &Roster{
		capacity: capacity,
		store:    store,
		log:      logger.Named("roster"),
		members:  make(map[uint64]*Member),
		watchers: make(map[uint64][]chan struct{}),
	}
}

// Add 添加成员
func (r *Roster) Add(m Member) error {
	if m.NetworkID == 0 {
		return apperrors.ErrInvalidLogin
	}
	if m.JoinedAt.IsZero() {
		m.JoinedAt = time.Now()
	}

	r.mu.Lock()
	if _, ok := r.members[m.NetworkID]; ok {
		r.mu.Unlock()
		return apperrors.ErrDuplicatePlayer
	}
	if len(r.members) >= r.capacity {
		r.mu.Unlock()
		return apperrors.ErrRosterFull
	}
	r.members[m.NetworkID] = &m
	waiting := r.watchers[m.NetworkID]
	delete(r.watchers, m.NetworkID)
	r.mu.Unlock()

	for _, ch := range waiting {
		close(ch)
	}

	r.mirror(func(ctx context.Context) error {
		return r.store.SaveRosterMember(ctx, &storage.RosterMemberData{
			NetworkID: m.NetworkID,
			AccountID: m.AccountID,
			Name:      m.Name,
			IsHost:    m.IsHost,
			JoinedAt:  m.JoinedAt.Unix(),
		})
	})
	return nil
}

// Remove 移除成员
func (r *Roster) Remove(networkID uint64) error {
	r.mu.Lock()
	if _, ok := r.members[networkID]; !ok {
		r.mu.Unlock()
		return apperrors.ErrNotFound
	}
	delete(r.members, networkID)
	r.mu.Unlock()

	r.mirror(func(ctx context.Context) error {
		return r.store.RemoveRosterMember(ctx, networkID)
	})
	return nil
}

// Contains 是否在名册中
func (r *Roster) Contains(networkID uint64) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.members[networkID]
	return ok
}

// Get 获取成员副本
func (r *Roster) Get(networkID uint64) (Member, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	m, ok := r.members[networkID]
	if !ok {
		return Member{}, false
	}
	return *m, true
}

// Members 返回按加入时间排序的成员列表
func (r *Roster) Members() []Member {
	r.mu.RLock()
	list := lo.MapToSlice(r.members, func(_ uint64, m *Member) Member { return *m })
	r.mu.RUnlock()

	sort.Slice(list, func(i, j int) bool {
		if list[i].JoinedAt.Equal(list[j].JoinedAt) {
			return list[i].NetworkID < list[j].NetworkID
		}
		return list[i].JoinedAt.Before(list[j].JoinedAt)
	})
	return list
}

// Count 成员数量
func (r *Roster) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.members)
}

// Capacity 名册容量
func (r *Roster) Capacity() int {
	return r.capacity
}

// Watch 在 networkID 加入名册时收到通知（通道被关闭）
//
// 已在名册中时返回已关闭的通道。cancel 可以重复调用。
func (r *Roster) Watch(networkID uint64) (<-chan struct{}, func()) {
	ch := make(chan struct{})

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.members[networkID]; ok {
		close(ch)
		return ch, func() {}
	}
	r.watchers[networkID] = append(r.watchers[networkID], ch)

	return ch, func() {
		r.mu.Lock()
		defer r.mu.Unlock()
		list := r.watchers[networkID]
		list = lo.Without(list, ch)
		if len(list) == 0 {
			delete(r.watchers, networkID)
		} else {
			r.watchers[networkID] = list
		}
	}
}

// Flush 等待所有镜像写入完成
func (r *Roster) Flush() {
	r.wg.Wait()
}

func (r *Roster) mirror(fn func(ctx context.Context) error) {
	if r.store == nil {
		return
	}
	r.wg.Add(1)
	go func() {
		defer r.wg.Done()
		ctx, cancel := context.WithTimeout(context.Background(), storeTimeout)
		defer cancel()
		if err := fn(ctx); err != nil {
			r.log.Warn("roster mirror failed", zap.Error(err))
		}
	}()
}
