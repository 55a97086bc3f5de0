// Package fakeplayer 向运行中的主机注入假玩家会话（测试用）。
//
// 主机的会话、名册和房间对象只通过 Host 能力接口访问，本包不依赖任何主机实现。
package fakeplayer

// Handle 主机会话对象（不透明）
type Handle any

// LoginRequest 登录入口参数
type LoginRequest struct {
	AccountID int64
	Token     string
	NetworkID uint64
	Name      string
	VoiceID   string
	IsHost    bool
	HashCode  int
}

// Host 主机能力接口
type Host interface {
	// CreateSession 创建会话对象，登录副作用由主机异步完成
	CreateSession() (Handle, error)
	// NewSessionID 分配主机会话 ID
	NewSessionID() int
	// AssignDisplayID 让 h 对外报告 id
	AssignDisplayID(h Handle, id int) error
	// RemoveDisplayID 删除 h 的 ID 覆盖，重复调用无副作用
	RemoveDisplayID(h Handle) error
	// Login 调用主机登录入口，返回主机是否生成了玩家快照
	Login(h Handle, req LoginRequest) (snapshot bool, err error)
	// InRoster 查询名册成员
	InRoster(networkID uint64) (bool, error)
	// AddToRoster 将会话交给主机的会话注册表
	AddToRoster(h Handle) error
	// RemoveFromRoster 让主机忘记该网络 ID
	RemoveFromRoster(networkID uint64) error
	// ReleaseSession 释放会话对象
	ReleaseSession(h Handle) error
}

// RosterWatcher 可选能力：名册加入通知
type RosterWatcher interface {
	WatchRoster(networkID uint64) (<-chan struct{}, func())
}
