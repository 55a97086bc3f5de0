package world

import (
	"sync"
	"time"

	"go.uber.org/atomic"
	"go.uber.org/zap"

	"github.com/palemoky/fakeplayers/internal/apperrors"
	"github.com/palemoky/fakeplayers/internal/logger"
	"github.com/palemoky/fakeplayers/internal/server/roster"
	"github.com/palemoky/fakeplayers/internal/server/session"
)

// RegisteredHook 玩家完成名册注册（无论成功与否）
type RegisteredHook func(networkID uint64, isHost bool, code apperrors.ResultCode)

// UnregisteredHook 玩家离开名册
type UnregisteredHook func(networkID uint64, isHost bool)

// RoomEnteredHook 玩家尝试进入房间
type RoomEnteredHook func(accountID int64, networkID uint64, isHost bool, code apperrors.ResultCode)

// Options 世界配置
type Options struct {
	RosterCapacity int
	MaxRoomPlayers int
	LoginLatency   time.Duration
	Store          roster.Store
	Logger         *zap.Logger
}

// World 主机世界：会话注册表、名册和房间
type World struct {
	sessions *session.Manager
	roster   *roster.Roster
	room     *Room
	latency  time.Duration
	log      *zap.Logger

	mu           sync.RWMutex
	hostID       uint64
	registered   []RegisteredHook
	unregistered []UnregisteredHook
	roomEntered  []RoomEnteredHook

	pending sync.WaitGroup
	stopped atomic.Bool
}

// New 创建世界
func New(opts Options) *World {
	l := opts.Logger
	if l == nil {
		l = logger.Named("world")
	}
	return &World{
		sessions: session.NewManager(),
		roster:   roster.New(opts.RosterCapacity, opts.Store),
		room:     NewRoom(opts.MaxRoomPlayers),
		latency:  opts.LoginLatency,
		log:      l,
	}
}

// Sessions 返回会话注册表
func (w *World) Sessions() *session.Manager { return w.sessions }

// Roster 返回名册
func (w *World) Roster() *roster.Roster { return w.roster }

// Room 返回房间
func (w *World) Room() *Room { return w.room }

// OnPlayerRegistered 注册名册回调
func (w *World) OnPlayerRegistered(h RegisteredHook) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.registered = append(w.registered, h)
}

// OnPlayerUnregistered 注册离开回调
func (w *World) OnPlayerUnregistered(h UnregisteredHook) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.unregistered = append(w.unregistered, h)
}

// OnRoomEntered 注册进入房间回调
func (w *World) OnRoomEntered(h RoomEnteredHook) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.roomEntered = append(w.roomEntered, h)
}

// HostID 返回主机玩家的网络 ID，没有主机时为 0
func (w *World) HostID() uint64 {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.hostID
}

// HasHost 是否已有主机玩家
func (w *World) HasHost() bool {
	return w.HostID() != 0
}

// NewVirtualContext 创建一个登录副作用由世界异步处理的会话
func (w *World) NewVirtualContext() *session.Context {
	vs := session.NewVirtualSession(w)
	c := session.NewContext(vs)
	vs.SetContext(c)
	return c
}

// DispatchLogin 在 latency 之后异步完成登录副作用
func (w *World) DispatchLogin(c *session.Context) {
	if w.stopped.Load() {
		return
	}

	w.pending.Add(1)
	time.AfterFunc(w.latency, func() {
		defer w.pending.Done()
		defer func() {
			if r := recover(); r != nil {
				logger.LogPanic(w.log, r)
			}
		}()
		if w.stopped.Load() || c.Disposed() {
			return
		}
		code := w.RegisterPlayer(c)
		w.log.Debug("async login applied",
			zap.Uint64("network_id", c.NetworkID()), zap.Stringer("code", code))
	})
}

// RegisterPlayer 将已登录的会话注册到名册并进入房间
//
// 回调在调用方的 goroutine 上执行，执行期间不持有任何锁。
func (w *World) RegisterPlayer(c *session.Context) apperrors.ResultCode {
	snap := c.Snapshot()
	if snap == nil {
		return apperrors.InvalidLogin
	}

	// 同一时间只允许一个主机，检查与占用在同一临界区内完成
	isHost := snap.IsHost
	w.mu.Lock()
	if isHost {
		if w.hostID != 0 {
			isHost = false
		} else {
			w.hostID = snap.NetworkID
		}
	}
	w.mu.Unlock()

	err := w.roster.Add(roster.Member{
		NetworkID: snap.NetworkID,
		AccountID: snap.AccountID,
		Name:      snap.Name,
		IsHost:    isHost,
	})
	code := apperrors.CodeOf(err)

	if isHost && code != apperrors.Success {
		w.mu.Lock()
		if w.hostID == snap.NetworkID {
			w.hostID = 0
		}
		w.mu.Unlock()
	}

	if code == apperrors.Success {
		if isHost {
			w.log.Info("host player registered", zap.Uint64("network_id", snap.NetworkID), zap.String("name", snap.Name))
		}

		roomCode := w.room.Enter(snap.AccountID, snap.NetworkID)
		for _, h := range w.roomHooks() {
			h(snap.AccountID, snap.NetworkID, isHost, roomCode)
		}
	}

	for _, h := range w.registeredHooks() {
		h(snap.NetworkID, isHost, code)
	}
	return code
}

// UnregisterPlayer 将玩家移出名册和房间
func (w *World) UnregisterPlayer(networkID uint64) error {
	m, ok := w.roster.Get(networkID)
	if err := w.roster.Remove(networkID); err != nil {
		return err
	}
	if ok {
		w.room.Leave(m.AccountID)
	}

	w.mu.Lock()
	isHost := w.hostID == networkID
	if isHost {
		w.hostID = 0
	}
	hooks := append([]UnregisteredHook(nil), w.unregistered...)
	w.mu.Unlock()

	for _, h := range hooks {
		h(networkID, isHost)
	}
	return nil
}

// Stop 停止异步登录并等待进行中的副作用完成
func (w *World) Stop() {
	if !w.stopped.CompareAndSwap(false, true) {
		return
	}
	w.pending.Wait()
	w.roster.Flush()
	w.sessions.Close()
}

func (w *World) registeredHooks() []RegisteredHook {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return append([]RegisteredHook(nil), w.registered...)
}

func (w *World) roomHooks() []RoomEnteredHook {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return append([]RoomEnteredHook(nil), w.roomEntered...)
}
