package server

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/palemoky/fakeplayers/internal/metrics"
	"github.com/palemoky/fakeplayers/internal/protocol"
	"github.com/palemoky/fakeplayers/internal/protocol/codec"
	"github.com/palemoky/fakeplayers/internal/server/handler"
	"github.com/palemoky/fakeplayers/internal/types"
)

// handleWebSocket 处理 WebSocket 连接
func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	if s.ctx.Err() != nil {
		http.Error(w, "Server is shutting down", http.StatusServiceUnavailable)
		return
	}

	// 连接数限制检查
	select {
	case s.semaphore <- struct{}{}:
	default:
		s.log.Warn("connection limit reached", zap.Int("max", s.maxConnections), zap.String("remote", r.RemoteAddr))
		http.Error(w, "Server Full", http.StatusServiceUnavailable)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		<-s.semaphore
		s.log.Warn("websocket upgrade failed", zap.Error(err))
		return
	}

	// 创建客户端
	client := NewClient(s, conn)
	client.IP = r.RemoteAddr
	s.registerClient(client)

	client.SendMessage(codec.MustNewMessage(protocol.MsgConnected, protocol.ConnectedPayload{
		ClientID: client.ID,
	}))

	s.log.Debug("client connected", zap.String("client", client.ID), zap.String("remote", client.IP))

	// 启动客户端读写协程
	go client.ReadPump()
	go client.WritePump()
}

// handleHealth 健康检查接口
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("OK"))
}

// handleRoster 名册查询接口
func (s *Server) handleRoster(w http.ResponseWriter, r *http.Request) {
	data, err := json.Marshal(handler.RosterPayload(s.world.Roster()))
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write(data)
}

// registerClient 注册客户端
func (s *Server) registerClient(client *Client) {
	s.clientsMu.Lock()
	defer s.clientsMu.Unlock()
	s.clients[client.ID] = client
	metrics.ConnectedClients.Set(float64(len(s.clients)))
}

// unregisterClient 注销客户端
func (s *Server) unregisterClient(client *Client) {
	s.clientsMu.Lock()
	defer s.clientsMu.Unlock()

	if _, ok := s.clients[client.ID]; ok {
		delete(s.clients, client.ID)
		<-s.semaphore
		metrics.ConnectedClients.Set(float64(len(s.clients)))
		s.log.Debug("client disconnected", zap.String("client", client.ID), zap.String("name", client.GetName()))
	}
}

// Interface implementations for types.ServerInterface

func (s *Server) GetClientByID(id string) types.ClientInterface {
	s.clientsMu.RLock()
	defer s.clientsMu.RUnlock()
	if c, ok := s.clients[id]; ok {
		return c
	}
	return nil
}
