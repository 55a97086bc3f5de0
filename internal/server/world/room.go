package world

import (
	"sync"

	"github.com/samber/lo"

	"github.com/palemoky/fakeplayers/internal/apperrors"
)

// AdmissionFilter 房间准入过滤器，handled 为 true 时以 code 作为最终结果
type AdmissionFilter func(accountID int64, current int) (code apperrors.ResultCode, handled bool)

// Room 主机房间
type Room struct {
	maxPlayers int

	mu      sync.RWMutex
	order   []int64          // 进入顺序
	players map[int64]uint64 // accountID -> networkID
	filters []AdmissionFilter
}

// NewRoom 创建房间
func NewRoom(maxPlayers int) *Room {
	return &Room{
		maxPlayers: maxPlayers,
		players:    make(map[int64]uint64),
	}
}

// AddFilter 添加准入过滤器
func (r *Room) AddFilter(f AdmissionFilter) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.filters = append(r.filters, f)
}

// Enter 进入房间
func (r *Room) Enter(accountID int64, networkID uint64) apperrors.ResultCode {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.players[accountID]; ok {
		return apperrors.DuplicatePlayer
	}

	code := apperrors.Success
	handled := false
	for _, f := range r.filters {
		if code, handled = f(accountID, len(r.players)); handled {
			break
		}
	}
	if !handled {
		code = apperrors.Success
		if len(r.players) >= r.maxPlayers {
			code = apperrors.PlayerCountExceeded
		}
	}
	if code != apperrors.Success {
		return code
	}

	r.players[accountID] = networkID
	r.order = append(r.order, accountID)
	return apperrors.Success
}

// Leave 离开房间
func (r *Room) Leave(accountID int64) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.players[accountID]; !ok {
		return false
	}
	delete(r.players, accountID)
	r.order = lo.Without(r.order, accountID)
	return true
}

// Players 按进入顺序返回账号 ID
func (r *Room) Players() []int64 {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]int64(nil), r.order...)
}

// Count 房间人数
func (r *Room) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.players)
}
