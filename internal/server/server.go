package server

import (
	"context"
	"fmt"
	"net/http"
	"runtime"
	"sync"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/palemoky/fakeplayers/internal/config"
	"github.com/palemoky/fakeplayers/internal/host"
	"github.com/palemoky/fakeplayers/internal/logger"
	"github.com/palemoky/fakeplayers/internal/metrics"
	"github.com/palemoky/fakeplayers/internal/server/handler"
	"github.com/palemoky/fakeplayers/internal/server/roster"
	"github.com/palemoky/fakeplayers/internal/server/storage"
	"github.com/palemoky/fakeplayers/internal/server/world"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // 本地测试主机，允许所有来源
	},
}

// Server WebSocket 服务器（主机）
type Server struct {
	config     *config.Config
	redis      *redis.Client
	redisStore *storage.RedisStore
	world      *world.World
	harness    *host.Harness
	handler    *handler.Handler
	registry   *prometheus.Registry
	log        *zap.Logger

	clients   map[string]*Client
	clientsMu sync.RWMutex

	// 连接控制
	maxConnections int
	semaphore      chan struct{} // 信号量控制并发连接数

	ctx        context.Context
	cancel     context.CancelFunc
	httpServer *http.Server
	closeOnce  sync.Once
}

// NewServer 创建服务器实例
func NewServer(cfg *config.Config) (*Server, error) {
	s := &Server{
		config:         cfg,
		clients:        make(map[string]*Client),
		registry:       prometheus.NewRegistry(),
		log:            logger.Named("server"),
		maxConnections: cfg.Server.MaxConnections,
		semaphore:      make(chan struct{}, cfg.Server.MaxConnections),
	}
	s.ctx, s.cancel = context.WithCancel(context.Background())

	var store roster.Store
	if cfg.Redis.Enabled {
		if err := s.connectRedis(); err != nil {
			s.cancel()
			return nil, err
		}
		store = s.redisStore
	}

	s.registry.MustRegister(collectors.NewGoCollector())
	if err := metrics.Register(s.registry); err != nil {
		s.cancel()
		return nil, errors.Wrap(err, "注册指标失败")
	}

	s.world = world.New(world.Options{
		RosterCapacity: cfg.World.RosterCapacity,
		MaxRoomPlayers: cfg.World.MaxRoomPlayers,
		LoginLatency:   cfg.World.LoginLatencyDuration(),
		Store:          store,
		Logger:         logger.Named("world"),
	})
	s.world.OnPlayerRegistered(s.onPlayerRegistered)
	s.world.OnPlayerUnregistered(s.onPlayerUnregistered)

	// 假玩家组件挂在世界的生命周期回调上
	s.harness = host.Install(s.ctx, s.world, cfg.FakePlayers, logger.Named("fakeplayer"))

	s.handler = handler.NewHandler(handler.HandlerDeps{
		Server: s,
		World:  s.world,
		Logger: logger.Named("handler"),
	})

	s.log.Info("server configured",
		zap.Int("max_connections", cfg.Server.MaxConnections),
		zap.Int("roster_capacity", cfg.World.RosterCapacity),
		zap.Bool("redis", cfg.Redis.Enabled))

	return s, nil
}

// connectRedis 连接 Redis 并清空上次遗留的名册镜像
func (s *Server) connectRedis() error {
	rdb := redis.NewClient(&redis.Options{
		Addr:     s.config.Redis.Addr,
		Password: s.config.Redis.Password,
		DB:       s.config.Redis.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	store := storage.NewRedisStore(rdb)
	if err := store.Ping(ctx); err != nil {
		_ = rdb.Close()
		return errors.Wrap(err, "redis 连接失败")
	}
	if err := store.ClearRoster(ctx); err != nil {
		s.log.Warn("failed to clear stale roster mirror", zap.Error(err))
	}

	s.redis = rdb
	s.redisStore = store
	return nil
}

// Handler 返回 HTTP 路由
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", s.handleWebSocket)
	mux.HandleFunc("/health", s.handleHealth)
	mux.HandleFunc("/roster", s.handleRoster)
	mux.Handle("/metrics", s.metricsHandler())
	return mux
}

// Start 启动服务器
func (s *Server) Start() error {
	addr := fmt.Sprintf("%s:%d", s.config.Server.Host, s.config.Server.Port)

	// 启动监控 goroutine
	go s.monitorStats()

	s.log.Info("server listening", zap.String("addr", "ws://"+addr+"/ws"), zap.Int("cpus", runtime.NumCPU()))
	s.httpServer = &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second, // 防止 Slowloris 攻击
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// World 返回主机世界
func (s *Server) World() *world.World {
	return s.world
}

// Harness 返回假玩家组件
func (s *Server) Harness() *host.Harness {
	return s.harness
}
