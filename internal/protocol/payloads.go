package protocol

// --- 客户端请求 Payloads ---

// LoginPayload 登录请求
type LoginPayload struct {
	AccountID int64  `json:"account_id"`
	NetworkID uint64 `json:"network_id"`
	Name      string `json:"name"`
}

// PingPayload 心跳请求
type PingPayload struct {
	Timestamp int64 `json:"timestamp"` // 客户端时间戳（毫秒）
}

// --- 服务端响应 Payloads ---

// ConnectedPayload 连接成功响应
type ConnectedPayload struct {
	ClientID string `json:"client_id"`
}

// LoggedInPayload 登录结果
type LoggedInPayload struct {
	SessionID int    `json:"session_id"`
	IsHost    bool   `json:"is_host"`
	Result    string `json:"result"`
}

// RosterMember 名册成员
type RosterMember struct {
	NetworkID uint64 `json:"network_id"`
	AccountID int64  `json:"account_id"`
	Name      string `json:"name"`
	IsHost    bool   `json:"is_host"`
}

// RosterResultPayload 名册结果
type RosterResultPayload struct {
	Members  []RosterMember `json:"members"`
	Capacity int            `json:"capacity"`
}

// PlayerJoinedPayload 玩家进入名册
type PlayerJoinedPayload struct {
	Player RosterMember `json:"player"`
}

// PlayerLeftPayload 玩家离开名册
type PlayerLeftPayload struct {
	NetworkID uint64 `json:"network_id"`
}

// PongPayload 心跳响应
type PongPayload struct {
	ClientTimestamp int64 `json:"client_timestamp"`
	ServerTimestamp int64 `json:"server_timestamp"`
}

// ErrorPayload 错误响应
type ErrorPayload struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}
