package protocol

import "encoding/json"

// Message 基础消息结构
type Message struct {
	Type    MessageType     `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// MessageType 消息类型
type MessageType string

// 客户端 → 服务端 消息类型
const (
	MsgLogin  MessageType = "login"  // 登录并注册到名册
	MsgRoster MessageType = "roster" // 查询名册
	MsgPing   MessageType = "ping"   // 心跳 ping
)

// 服务端 → 客户端 消息类型
const (
	MsgConnected    MessageType = "connected"     // 连接成功
	MsgLoggedIn     MessageType = "logged_in"     // 登录结果
	MsgRosterResult MessageType = "roster_result" // 名册结果
	MsgPlayerJoined MessageType = "player_joined" // 有玩家进入名册
	MsgPlayerLeft   MessageType = "player_left"   // 有玩家离开名册
	MsgPong         MessageType = "pong"          // 心跳 pong

	MsgError MessageType = "error" // 错误消息
)
