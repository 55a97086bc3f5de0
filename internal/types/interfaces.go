package types

import (
	"github.com/palemoky/fakeplayers/internal/protocol"
	"github.com/palemoky/fakeplayers/internal/server/session"
)

// ServerInterface 定义服务器接口（用于打破循环依赖）
type ServerInterface interface {
	GetOnlineCount() int
	Broadcast(msg *protocol.Message)
	GetClientByID(id string) ClientInterface
}

// ClientInterface 定义客户端接口
type ClientInterface interface {
	GetID() string
	GetName() string
	Session() *session.Context
	SetSession(c *session.Context)
	SendMessage(msg *protocol.Message)
	Close()
}
