package handler

import (
	"time"

	"github.com/cockroachdb/errors"
	"go.uber.org/zap"

	"github.com/palemoky/fakeplayers/internal/apperrors"
	"github.com/palemoky/fakeplayers/internal/protocol"
	"github.com/palemoky/fakeplayers/internal/protocol/codec"
	"github.com/palemoky/fakeplayers/internal/types"
)

// handlePing 处理心跳消息
func (h *Handler) handlePing(client types.ClientInterface, msg *protocol.Message) {
	payload, err := codec.ParsePayload[protocol.PingPayload](msg)
	if err != nil {
		return
	}

	// 立即回复 pong
	client.SendMessage(codec.MustNewMessage(protocol.MsgPong, protocol.PongPayload{
		ClientTimestamp: payload.Timestamp,
		ServerTimestamp: time.Now().UnixMilli(),
	}))
}

// HandleDisconnect 客户端断开时将玩家移出名册并释放会话
func (h *Handler) HandleDisconnect(client types.ClientInterface) {
	c := client.Session()
	if c == nil {
		return
	}
	client.SetSession(nil)

	networkID := c.NetworkID()
	if err := h.world.UnregisterPlayer(networkID); err != nil && !errors.Is(err, apperrors.ErrNotFound) {
		h.log.Error("failed to unregister player", zap.Uint64("network_id", networkID), zap.Error(err))
	}
	h.world.Sessions().Remove(c)
	c.Dispose()

	h.log.Info("player left", zap.String("name", c.Name()), zap.Uint64("network_id", networkID))
}
