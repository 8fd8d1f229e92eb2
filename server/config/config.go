package config

import (
	"path/filepath"
	"sync"
	"time"
)

type Config struct {
	Server         ServerConfig    `yaml:"server" mapstructure:"server"`
	Logging        LoggingConfig   `yaml:"logging" mapstructure:"logging"`
	Paths          PathsConfig     `yaml:"paths" mapstructure:"paths"`
	Authentication AuthConfig      `yaml:"authentication" mapstructure:"authentication"`
	Sessions       SessionsConfig  `yaml:"sessions" mapstructure:"sessions"`
	Platforms      PlatformsConfig `yaml:"platforms" mapstructure:"platforms"`
	path           string
}

type ServerConfig struct {
	BaseURL   string `yaml:"base_url" mapstructure:"base_url"`
	Host      string `yaml:"host" mapstructure:"host"`
	Port      int    `yaml:"port" mapstructure:"port"`
	QueueSize int    `yaml:"queue_size" mapstructure:"queue_size"`
}

type LoggingConfig struct {
	LogPath           string `yaml:"log_path" mapstructure:"log_path"`
	EnableFileLogging bool   `yaml:"enable_file_logging" mapstructure:"enable_file_logging"`
}

type PathsConfig struct {
	DownloadPath   string `yaml:"download_path" mapstructure:"download_path"`
	DownloaderPath string `yaml:"downloader_path" mapstructure:"downloader_path"`
	FFmpegPath     string `yaml:"ffmpeg_path" mapstructure:"ffmpeg_path"`
	CookiesPath    string `yaml:"cookies_path" mapstructure:"cookies_path"`
	DatabasePath   string `yaml:"database_path" mapstructure:"database_path"`
}

type AuthConfig struct {
	RequireAuth bool   `yaml:"require_auth" mapstructure:"require_auth"`
	JwtSecret   string `yaml:"jwt_secret" mapstructure:"jwt_secret"`
}

type SessionsConfig struct {
	Evict bool          `yaml:"evict" mapstructure:"evict"`
	TTL   time.Duration `yaml:"ttl" mapstructure:"ttl"`
}

type PlatformsConfig struct {
	ConfigPath string `yaml:"config_path" mapstructure:"config_path"`
}

var (
	instance     *Config
	instanceOnce sync.Once
)

func Instance() *Config {
	if instance == nil {
		instanceOnce.Do(func() {
			instance = &Config{}
			instance.Sessions.Evict = true
			instance.Sessions.TTL = time.Hour
		})
	}
	return instance
}

// Path of the shared default cookie file, sibling of the uploads directory
func (c *Config) DefaultCookieFile() string {
	return filepath.Join(filepath.Dir(c.Paths.CookiesPath), "cookies.txt")
}

// Path of the directory containing the config file
func (c *Config) Dir() string { return filepath.Dir(c.path) }

// Absolute path of the config file
func (c *Config) Path() string { return c.path }
