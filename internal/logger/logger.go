package logger

import (
	"os"
	"sync"

	"github.com/cockroachdb/errors"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/palemoky/fakeplayers/internal/config"
)

var (
	mu      sync.RWMutex
	global  = zap.NewNop()
	logPath string
	rotator *lumberjack.Logger
)

// Init initializes the global logger from cfg
func Init(cfg config.LogConfig) (*zap.Logger, error) {
	l, r, err := build(cfg)
	if err != nil {
		return nil, err
	}

	mu.Lock()
	defer mu.Unlock()
	global = l
	rotator = r
	logPath = cfg.File
	zap.ReplaceGlobals(l)
	return l, nil
}

func build(cfg config.LogConfig) (*zap.Logger, *lumberjack.Logger, error) {
	level := zapcore.InfoLevel
	if err := level.UnmarshalText([]byte(cfg.Level)); err != nil {
		return nil, nil, errors.Wrapf(err, "invalid log level %q", cfg.Level)
	}

	encCfg := zap.NewProductionEncoderConfig()
	encCfg.EncodeTime = zapcore.ISO8601TimeEncoder
	var enc zapcore.Encoder
	if cfg.Format == "json" {
		enc = zapcore.NewJSONEncoder(encCfg)
	} else {
		encCfg.EncodeLevel = zapcore.CapitalLevelEncoder
		enc = zapcore.NewConsoleEncoder(encCfg)
	}

	sinks := []zapcore.WriteSyncer{zapcore.Lock(os.Stderr)}
	var r *lumberjack.Logger
	if cfg.File != "" {
		// lumberjack rotates once the file exceeds MaxSize
		r = &lumberjack.Logger{
			Filename:   cfg.File,
			MaxSize:    cfg.MaxSizeMB,
			MaxBackups: cfg.MaxBackups,
			LocalTime:  true,
		}
		sinks = append(sinks, zapcore.AddSync(r))
	}

	core := zapcore.NewCore(enc, zap.CombineWriteSyncers(sinks...), level)
	return zap.New(core, zap.AddCaller()), r, nil
}

// L returns the global logger
func L() *zap.Logger {
	mu.RLock()
	defer mu.RUnlock()
	return global
}

// Named returns a child of the global logger
func Named(name string) *zap.Logger {
	return L().Named(name)
}

// Close flushes and closes the log file
func Close() {
	mu.Lock()
	defer mu.Unlock()
	_ = global.Sync()
	if rotator != nil {
		_ = rotator.Close()
		rotator = nil
	}
}

// LogPanic logs a recovered panic with stack trace
func LogPanic(l *zap.Logger, r any) {
	l.Error("panic recovered", zap.Any("panic", r), zap.Stack("stack"))
}

// GetLogPath returns the current log file path
func GetLogPath() string {
	mu.RLock()
	defer mu.RUnlock()
	return logPath
}
