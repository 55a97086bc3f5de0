package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/palemoky/fakeplayers/internal/config"
	"github.com/palemoky/fakeplayers/internal/logger"
	"github.com/palemoky/fakeplayers/internal/server"
)

const shutdownTimeout = 10 * time.Second

type serveOptions struct {
	configPath string
	fakeCount  int
	fakeMode   string
	noFake     bool
}

func newRootCmd() *cobra.Command {
	opts := &serveOptions{}

	rootCmd := &cobra.Command{
		Use:          "fakeplayers",
		Short:        "Game host with a fake player harness",
		Long:         "fakeplayers runs a websocket game host and fills its roster with fake player sessions once the host player registers.",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd, opts)
		},
	}

	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the game host",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd, opts)
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&opts.configPath, "config", "configs/config.yaml", "配置文件路径")
	flags.IntVar(&opts.fakeCount, "fake-count", -1, "假玩家数量（覆盖配置文件）")
	flags.StringVar(&opts.fakeMode, "fake-mode", "", "假玩家确认模式: serial / parallel")
	flags.BoolVar(&opts.noFake, "no-fake", false, "禁用假玩家")

	rootCmd.AddCommand(serveCmd)
	return rootCmd
}

// loadConfig 加载配置并应用命令行覆盖
func loadConfig(cmd *cobra.Command, opts *serveOptions) (*config.Config, []string, error) {
	var notes []string

	cfg, err := config.Load(opts.configPath)
	if err != nil {
		notes = append(notes, "加载配置文件失败，使用默认配置: "+err.Error())
		cfg = config.Default()
	}

	if cmd.Flags().Changed("fake-count") {
		cfg.FakePlayers.Count = opts.fakeCount
	}
	if opts.fakeMode != "" {
		cfg.FakePlayers.Mode = opts.fakeMode
	}
	if opts.noFake {
		cfg.FakePlayers.Enabled = false
	}

	if original, clamped := cfg.ClampFakeCount(); clamped {
		notes = append(notes, fmt.Sprintf("假玩家数量 %d 超出范围 [0, %d]，已调整为 %d",
			original, cfg.MaxFakePlayers(), cfg.FakePlayers.Count))
	}
	if err := cfg.Validate(); err != nil {
		return nil, notes, err
	}
	return cfg, notes, nil
}

func runServe(cmd *cobra.Command, opts *serveOptions) error {
	cfg, notes, err := loadConfig(cmd, opts)
	if err != nil {
		return err
	}

	log, err := logger.Init(cfg.Log)
	if err != nil {
		return err
	}
	defer logger.Close()

	for _, n := range notes {
		log.Warn(n)
	}
	log.Info("fake players configured",
		zap.Bool("enabled", cfg.FakePlayers.Enabled),
		zap.Int("count", cfg.FakePlayers.Count),
		zap.String("mode", cfg.FakePlayers.Mode))

	srv, err := server.NewServer(cfg)
	if err != nil {
		log.Error("failed to create server", zap.Error(err))
		return err
	}

	// 优雅关闭
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() { errCh <- srv.Start() }()

	select {
	case err := <-errCh:
		if err != nil {
			log.Error("server failed", zap.Error(err))
		}
		_ = srv.Shutdown(context.Background())
		return err
	case <-ctx.Done():
		log.Info("shutting down")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
