package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"runtime"
	"syscall"

	"github.com/eliotdl/yt-any/server"
	"github.com/eliotdl/yt-any/server/config"

	"github.com/spf13/viper"
)

func main() {
	// Parse optional config path from flag
	var configFile string
	flag.StringVar(&configFile, "conf", "./config.yml", "Config file path")
	flag.Parse()

	v := viper.New()
	v.SetConfigFile(configFile)
	v.SetConfigType("yaml")

	// Defaults
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8000)
	v.SetDefault("server.queue_size", 2)
	v.SetDefault("paths.download_path", "./downloads")
	v.SetDefault("paths.downloader_path", "yt-dlp")
	v.SetDefault("paths.cookies_path", "./cookies")
	v.SetDefault("paths.database_path", "activity.db")
	v.SetDefault("logging.log_path", "yt-any.log")
	v.SetDefault("logging.enable_file_logging", false)
	v.SetDefault("authentication.require_auth", false)
	v.SetDefault("sessions.evict", true)
	v.SetDefault("sessions.ttl", "1h")

	// Env binding
	v.SetEnvPrefix("APP")
	v.AutomaticEnv()

	// Load YAML file if exists
	if err := v.ReadInConfig(); err != nil {
		slog.Debug("using defaults")
	}

	cfg := config.Instance()
	if err := v.Unmarshal(&cfg); err != nil {
		slog.Error("failed to load config", "error", err)
	}

	if cfg.Server.QueueSize <= 0 || runtime.NumCPU() <= 2 {
		cfg.Server.QueueSize = 2
	}

	if err := os.MkdirAll(cfg.Paths.DownloadPath, 0755); err != nil {
		slog.Error("failed to create download directory", "error", err)
		os.Exit(1)
	}

	// Graceful shutdown
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	slog.Info("starting server",
		"host", cfg.Server.Host,
		"port", cfg.Server.Port,
		"queue_size", cfg.Server.QueueSize,
	)

	if err := server.Run(ctx); err != nil {
		slog.Error("server stopped with error", "error", err)
		os.Exit(1)
	}

	slog.Info("server exited cleanly")
}
