package config

import (
	"os"
	"time"

	"github.com/cockroachdb/errors"
	"gopkg.in/yaml.v3"
)

const (
	// DefaultRosterCapacity 主机名册容量（与原游戏一致）
	DefaultRosterCapacity = 32766
	// ReservedRealPlayers 为真实玩家保留的名册位置
	ReservedRealPlayers = 4

	defaultFakeCount = 3

	ModeSerial   = "serial"
	ModeParallel = "parallel"
)

// Config 服务端配置
type Config struct {
	Server      ServerConfig      `yaml:"server"`
	Redis       RedisConfig       `yaml:"redis"`
	World       WorldConfig       `yaml:"world"`
	FakePlayers FakePlayersConfig `yaml:"fake_players"`
	Log         LogConfig         `yaml:"log"`
}

// ServerConfig WebSocket 服务器配置
type ServerConfig struct {
	Host           string `yaml:"host"`
	Port           int    `yaml:"port"`
	MaxConnections int    `yaml:"max_connections"`
}

// RedisConfig Redis 配置（名册镜像）
type RedisConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

// WorldConfig 主机世界配置
type WorldConfig struct {
	RosterCapacity int `yaml:"roster_capacity"`
	MaxRoomPlayers int `yaml:"max_room_players"`
	LoginLatencyMs int `yaml:"login_latency_ms"` // 登录副作用的异步延迟（毫秒）
}

// FakePlayersConfig 假玩家配置
type FakePlayersConfig struct {
	Enabled        bool   `yaml:"enabled"`
	Count          int    `yaml:"count"`
	Mode           string `yaml:"mode"` // serial / parallel
	Workers        int    `yaml:"workers"`
	PollIntervalMs int    `yaml:"poll_interval_ms"`
	PollCeilingMs  int    `yaml:"poll_ceiling_ms"`
	SettleDelayMs  int    `yaml:"settle_delay_ms"`
}

// LogConfig 日志配置
type LogConfig struct {
	Level      string `yaml:"level"`
	Format     string `yaml:"format"` // json / console
	File       string `yaml:"file"`
	MaxSizeMB  int    `yaml:"max_size_mb"`
	MaxBackups int    `yaml:"max_backups"`
}

// PollIntervalDuration 返回轮询间隔
func (c *FakePlayersConfig) PollIntervalDuration() time.Duration {
	return time.Duration(c.PollIntervalMs) * time.Millisecond
}

// PollCeilingDuration 返回轮询上限
func (c *FakePlayersConfig) PollCeilingDuration() time.Duration {
	return time.Duration(c.PollCeilingMs) * time.Millisecond
}

// SettleDelayDuration 返回串行模式下的等待时长
func (c *FakePlayersConfig) SettleDelayDuration() time.Duration {
	return time.Duration(c.SettleDelayMs) * time.Millisecond
}

// LoginLatencyDuration 返回登录副作用延迟
func (c *WorldConfig) LoginLatencyDuration() time.Duration {
	return time.Duration(c.LoginLatencyMs) * time.Millisecond
}

// MaxFakePlayers 返回允许的最大假玩家数量
func (c *Config) MaxFakePlayers() int {
	return max(c.World.RosterCapacity-ReservedRealPlayers, 0)
}

// Load 加载配置文件
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "读取配置文件 %s 失败", path)
	}

	// 未出现在文件中的字段保留默认值
	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, errors.Wrap(err, "解析配置文件失败")
	}

	cfg.applyDefaults()
	return cfg, nil
}

// Default 返回默认配置
func Default() *Config {
	cfg := &Config{
		Server: ServerConfig{
			Host:           "0.0.0.0",
			Port:           1780,
			MaxConnections: 1000,
		},
		Redis: RedisConfig{
			Addr: "localhost:6379",
		},
		World: WorldConfig{
			LoginLatencyMs: 5,
		},
		FakePlayers: FakePlayersConfig{
			Enabled:       true,
			Count:         defaultFakeCount,
			SettleDelayMs: 50,
		},
	}
	cfg.applyDefaults()
	return cfg
}

// applyDefaults 设置默认值
//
// 0 合法的字段（数量、登录延迟、稳定等待）只在 Default 中设置。
func (c *Config) applyDefaults() {
	if c.Server.Host == "" {
		c.Server.Host = "0.0.0.0"
	}
	if c.Server.Port == 0 {
		c.Server.Port = 1780
	}
	if c.Server.MaxConnections == 0 {
		c.Server.MaxConnections = 1000
	}
	if c.Redis.Addr == "" {
		c.Redis.Addr = "localhost:6379"
	}
	if c.World.RosterCapacity == 0 {
		c.World.RosterCapacity = DefaultRosterCapacity
	}
	if c.World.MaxRoomPlayers == 0 {
		c.World.MaxRoomPlayers = ReservedRealPlayers
	}
	if c.FakePlayers.Mode == "" {
		c.FakePlayers.Mode = ModeParallel
	}
	if c.FakePlayers.PollIntervalMs == 0 {
		c.FakePlayers.PollIntervalMs = 10
	}
	if c.FakePlayers.PollCeilingMs == 0 {
		c.FakePlayers.PollCeilingMs = 500
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.Format == "" {
		c.Log.Format = "console"
	}
	if c.Log.MaxSizeMB == 0 {
		c.Log.MaxSizeMB = 10
	}
	if c.Log.MaxBackups == 0 {
		c.Log.MaxBackups = 3
	}
}

// ClampFakeCount 将假玩家数量限制在 [0, 容量-4]，返回调整前的值与是否发生调整
func (c *Config) ClampFakeCount() (original int, clamped bool) {
	original = c.FakePlayers.Count
	limit := c.MaxFakePlayers()
	switch {
	case c.FakePlayers.Count < 0:
		c.FakePlayers.Count = 0
	case c.FakePlayers.Count > limit:
		c.FakePlayers.Count = limit
	default:
		return original, false
	}
	return original, true
}

// Validate 校验配置
func (c *Config) Validate() error {
	if c.FakePlayers.Mode != ModeSerial && c.FakePlayers.Mode != ModeParallel {
		return errors.Newf("未知的假玩家模式 %q", c.FakePlayers.Mode)
	}
	if c.FakePlayers.PollIntervalMs <= 0 || c.FakePlayers.PollCeilingMs < c.FakePlayers.PollIntervalMs {
		return errors.Newf("轮询间隔 %dms 与上限 %dms 不合法",
			c.FakePlayers.PollIntervalMs, c.FakePlayers.PollCeilingMs)
	}
	if c.World.RosterCapacity <= ReservedRealPlayers {
		return errors.Newf("名册容量 %d 过小", c.World.RosterCapacity)
	}
	return nil
}
