package server

import (
	"context"
	"net/http"
	"runtime"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/palemoky/fakeplayers/internal/protocol"
	"github.com/palemoky/fakeplayers/internal/protocol/codec"
)

const statsInterval = 30 * time.Second

// metricsHandler Prometheus 指标接口
func (s *Server) metricsHandler() http.Handler {
	return promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{})
}

// monitorStats 定期记录服务器状态
func (s *Server) monitorStats() {
	ticker := time.NewTicker(statsInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			var m runtime.MemStats
			runtime.ReadMemStats(&m)

			s.log.Info("stats",
				zap.Int("online", s.GetOnlineCount()),
				zap.Int("roster", s.world.Roster().Count()),
				zap.Int("fake_players", s.harness.Fabricator.Registry().Len()),
				zap.Int("goroutines", runtime.NumGoroutine()),
				zap.Int("active_conns", len(s.semaphore)),
				zap.Float64("mem_mb", float64(m.Alloc)/1024/1024))
		case <-s.ctx.Done():
			return
		}
	}
}

// Shutdown 关闭服务器：移除假玩家、断开客户端、停止世界
func (s *Server) Shutdown(ctx context.Context) error {
	var err error
	s.closeOnce.Do(func() {
		s.Broadcast(codec.MustNewMessage(protocol.MsgError, protocol.ErrorPayload{
			Code:    protocol.ErrCodeServerMaintenance,
			Message: protocol.ErrorMessages[protocol.ErrCodeServerMaintenance],
		}))

		// 假玩家要在世界停止前移除
		removed := s.harness.Shutdown(ctx)
		s.cancel()

		if s.httpServer != nil {
			err = s.httpServer.Shutdown(ctx)
		}

		// 关闭所有客户端连接
		s.clientsMu.RLock()
		for _, client := range s.clients {
			client.Close()
		}
		s.clientsMu.RUnlock()

		s.world.Stop()

		if s.redis != nil {
			_ = s.redis.Close()
		}

		s.log.Info("server stopped", zap.Int("fake_players_removed", removed))
	})
	return err
}
