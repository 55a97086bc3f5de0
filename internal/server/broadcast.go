package server

import (
	"github.com/palemoky/fakeplayers/internal/apperrors"
	"github.com/palemoky/fakeplayers/internal/metrics"
	"github.com/palemoky/fakeplayers/internal/protocol"
	"github.com/palemoky/fakeplayers/internal/protocol/codec"
	"github.com/palemoky/fakeplayers/internal/server/handler"
)

// GetOnlineCount 获取在线连接数
func (s *Server) GetOnlineCount() int {
	s.clientsMu.RLock()
	defer s.clientsMu.RUnlock()
	return len(s.clients)
}

// Broadcast 广播消息给所有客户端
func (s *Server) Broadcast(msg *protocol.Message) {
	s.clientsMu.RLock()
	defer s.clientsMu.RUnlock()

	for _, client := range s.clients {
		client.SendMessage(msg)
	}
}

// onPlayerRegistered 通知客户端有玩家进入名册
func (s *Server) onPlayerRegistered(networkID uint64, _ bool, code apperrors.ResultCode) {
	metrics.RosterSize.Set(float64(s.world.Roster().Count()))
	if code != apperrors.Success {
		return
	}
	m, ok := s.world.Roster().Get(networkID)
	if !ok {
		return
	}
	s.Broadcast(codec.MustNewMessage(protocol.MsgPlayerJoined, protocol.PlayerJoinedPayload{
		Player: handler.MemberInfo(m),
	}))
}

// onPlayerUnregistered 通知客户端有玩家离开名册
func (s *Server) onPlayerUnregistered(networkID uint64, _ bool) {
	metrics.RosterSize.Set(float64(s.world.Roster().Count()))
	s.Broadcast(codec.MustNewMessage(protocol.MsgPlayerLeft, protocol.PlayerLeftPayload{
		NetworkID: networkID,
	}))
}
