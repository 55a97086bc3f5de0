package host

import (
	"github.com/cockroachdb/errors"
	"go.uber.org/atomic"

	"github.com/palemoky/fakeplayers/internal/apperrors"
	"github.com/palemoky/fakeplayers/internal/fakeplayer"
	"github.com/palemoky/fakeplayers/internal/server/session"
	"github.com/palemoky/fakeplayers/internal/server/world"
)

// Adapter 基于 World 实现 fakeplayer.Host
type Adapter struct {
	world   *world.World
	ids     *fakeplayer.IDTable[session.VirtualSession]
	enabled atomic.Bool
	restore func()
}

var (
	_ fakeplayer.Host          = (*Adapter)(nil)
	_ fakeplayer.RosterWatcher = (*Adapter)(nil)
)

// NewAdapter 创建适配器并安装会话 ID 拦截器
func NewAdapter(w *world.World, enabled bool) *Adapter {
	a := &Adapter{
		world: w,
		ids:   fakeplayer.NewIDTable[session.VirtualSession](),
	}
	a.enabled.Store(enabled)
	a.restore = session.SetIDInterceptor(a.intercept)
	return a
}

// Close 卸载拦截器
func (a *Adapter) Close() {
	if a.restore != nil {
		a.restore()
		a.restore = nil
	}
}

// SetEnabled 开关拦截器
func (a *Adapter) SetEnabled(v bool) {
	a.enabled.Store(v)
}

func (a *Adapter) intercept(s *session.VirtualSession) (int, bool) {
	if !a.enabled.Load() {
		return 0, false
	}
	return a.ids.Lookup(s)
}

func (a *Adapter) CreateSession() (fakeplayer.Handle, error) {
	return a.world.NewVirtualContext(), nil
}

func (a *Adapter) NewSessionID() int {
	return a.world.Sessions().GetNewSessionID()
}

func (a *Adapter) AssignDisplayID(h fakeplayer.Handle, id int) error {
	c, err := contextOf(h)
	if err != nil {
		return err
	}
	a.ids.Set(c.Session(), id)
	return nil
}

func (a *Adapter) RemoveDisplayID(h fakeplayer.Handle) error {
	c, err := contextOf(h)
	if err != nil {
		return err
	}
	a.ids.Delete(c.Session())
	return nil
}

func (a *Adapter) Login(h fakeplayer.Handle, req fakeplayer.LoginRequest) (bool, error) {
	c, err := contextOf(h)
	if err != nil {
		return false, err
	}
	c.Login(req.AccountID, req.Token, req.NetworkID, req.Name, req.VoiceID, req.IsHost, req.HashCode)
	return c.Snapshot() != nil, nil
}

func (a *Adapter) InRoster(networkID uint64) (bool, error) {
	return a.world.Roster().Contains(networkID), nil
}

func (a *Adapter) AddToRoster(h fakeplayer.Handle) error {
	c, err := contextOf(h)
	if err != nil {
		return err
	}
	return a.world.Sessions().Add(c)
}

func (a *Adapter) RemoveFromRoster(networkID uint64) error {
	return a.world.UnregisterPlayer(networkID)
}

func (a *Adapter) ReleaseSession(h fakeplayer.Handle) error {
	c, err := contextOf(h)
	if err != nil {
		return err
	}
	a.world.Sessions().Remove(c)
	c.Dispose()
	return nil
}

func (a *Adapter) WatchRoster(networkID uint64) (<-chan struct{}, func()) {
	return a.world.Roster().Watch(networkID)
}

// DisplayIDs 当前 ID 覆盖条目数量
func (a *Adapter) DisplayIDs() int {
	return a.ids.Len()
}

func contextOf(h fakeplayer.Handle) (*session.Context, error) {
	c, ok := h.(*session.Context)
	if !ok || c == nil {
		return nil, errors.Wrapf(apperrors.ErrHostShape, "unexpected session handle %T", h)
	}
	return c, nil
}
