package handler

import (
	"go.uber.org/zap"

	"github.com/palemoky/fakeplayers/internal/logger"
	"github.com/palemoky/fakeplayers/internal/protocol"
	"github.com/palemoky/fakeplayers/internal/protocol/codec"
	"github.com/palemoky/fakeplayers/internal/server/world"
	"github.com/palemoky/fakeplayers/internal/types"
)

// HandlerDeps 处理器依赖
type HandlerDeps struct {
	Server types.ServerInterface
	World  *world.World
	Logger *zap.Logger
}

// Handler 消息处理器
type Handler struct {
	server   types.ServerInterface
	world    *world.World
	log      *zap.Logger
	handlers map[protocol.MessageType]handlerFunc
}

// handlerFunc 统一的处理器函数签名
type handlerFunc func(client types.ClientInterface, msg *protocol.Message)

// NewHandler 创建处理器
func NewHandler(deps HandlerDeps) *Handler {
	l := deps.Logger
	if l == nil {
		l = logger.Named("handler")
	}
	h := &Handler{
		server: deps.Server,
		world:  deps.World,
		log:    l,
	}
	h.initHandlers()
	return h
}

// initHandlers 初始化消息处理器映射
func (h *Handler) initHandlers() {
	h.handlers = map[protocol.MessageType]handlerFunc{
		protocol.MsgPing:   h.handlePing,
		protocol.MsgLogin:  h.handleLogin,
		protocol.MsgRoster: func(c types.ClientInterface, _ *protocol.Message) { h.handleRoster(c) },
	}
}

// Handle 处理消息
func (h *Handler) Handle(client types.ClientInterface, msg *protocol.Message) {
	if handler, ok := h.handlers[msg.Type]; ok {
		handler(client, msg)
		return
	}

	h.log.Warn("unknown message type",
		zap.String("type", string(msg.Type)), zap.String("client", client.GetID()), zap.Int("payload_bytes", len(msg.Payload)))
	client.SendMessage(codec.NewErrorMessage(protocol.ErrCodeInvalidMsg))
}
