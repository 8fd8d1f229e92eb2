package config

import (
	"testing"
	"time"

	"github.com/spf13/viper"
)

func TestViperDecode(t *testing.T) {
	v := viper.New()

	v.SetDefault("server.host", "127.0.0.1")
	v.SetDefault("server.port", 8000)
	v.SetDefault("server.queue_size", 4)
	v.SetDefault("paths.download_path", "/data/downloads")
	v.SetDefault("paths.downloader_path", "yt-dlp")
	v.SetDefault("paths.cookies_path", "/data/cookies")
	v.SetDefault("paths.database_path", "/data/activity.db")
	v.SetDefault("logging.log_path", "app.log")
	v.SetDefault("logging.enable_file_logging", true)
	v.SetDefault("authentication.jwt_secret", "s3cret")
	v.SetDefault("platforms.config_path", "/data/platforms.yml")
	v.SetDefault("sessions.ttl", "2h")

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		t.Fatal(err)
	}

	if cfg.Server.QueueSize != 4 {
		t.Errorf("queue_size not decoded, got %d", cfg.Server.QueueSize)
	}
	if cfg.Paths.DownloadPath != "/data/downloads" {
		t.Errorf("download_path not decoded, got %q", cfg.Paths.DownloadPath)
	}
	if cfg.Paths.DownloaderPath != "yt-dlp" {
		t.Errorf("downloader_path not decoded, got %q", cfg.Paths.DownloaderPath)
	}
	if cfg.Paths.CookiesPath != "/data/cookies" {
		t.Errorf("cookies_path not decoded, got %q", cfg.Paths.CookiesPath)
	}
	if cfg.Paths.DatabasePath != "/data/activity.db" {
		t.Errorf("database_path not decoded, got %q", cfg.Paths.DatabasePath)
	}
	if !cfg.Logging.EnableFileLogging || cfg.Logging.LogPath != "app.log" {
		t.Errorf("logging section not decoded: %+v", cfg.Logging)
	}
	if cfg.Authentication.JwtSecret != "s3cret" {
		t.Error("jwt_secret not decoded")
	}
	if cfg.Platforms.ConfigPath != "/data/platforms.yml" {
		t.Error("platforms.config_path not decoded")
	}
	if cfg.Sessions.TTL != 2*time.Hour {
		t.Errorf("sessions.ttl not decoded, got %v", cfg.Sessions.TTL)
	}
}
