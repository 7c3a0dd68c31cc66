package domain

import "time"

// Config represents the application configuration
type Config struct {
	Telegram TelegramConfig `mapstructure:"telegram"`
	Download DownloadConfig `mapstructure:"download"`
	History  HistoryConfig  `mapstructure:"history"`
	Server   ServerConfig   `mapstructure:"server"`
	Logging  LoggingConfig  `mapstructure:"logging"`
}

// TelegramConfig contains the chat-platform settings
type TelegramConfig struct {
	Token          string  `mapstructure:"token"`
	AllowedUserIDs []int64 `mapstructure:"allowed_user_ids"`
	Caption        string  `mapstructure:"caption"` // appended to delivered media
}

// DownloadConfig contains fetch-job settings
type DownloadConfig struct {
	BaseDir      string        `mapstructure:"base_dir"`
	LogsDir      string        `mapstructure:"logs_dir"`
	YTDLPBinary  string        `mapstructure:"ytdlp_binary"`
	FFmpegBinary string        `mapstructure:"ffmpeg_binary"`
	TrackTimeout time.Duration `mapstructure:"track_timeout"`
	VideoTimeout time.Duration `mapstructure:"video_timeout"`
	AlbumTimeout time.Duration `mapstructure:"album_timeout"`
	CleanupGrace time.Duration `mapstructure:"cleanup_grace"`
}

// HistoryConfig contains the job-history store settings
type HistoryConfig struct {
	DatabasePath string `mapstructure:"database_path"`
}

// ServerConfig contains the optional status API settings
type ServerConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Host    string `mapstructure:"host"`
	Port    int    `mapstructure:"port"`
}

// LoggingConfig contains logging-related configuration
type LoggingConfig struct {
	Level  string `mapstructure:"level"`  // debug, info, warn, error
	Format string `mapstructure:"format"` // json, console
}

// DefaultConfig returns a configuration with default values
func DefaultConfig() *Config {
	return &Config{
		Download: DownloadConfig{
			BaseDir:      "downloads",
			LogsDir:      "logs",
			YTDLPBinary:  "yt-dlp",
			FFmpegBinary: "ffmpeg",
			TrackTimeout: 3 * time.Minute,
			VideoTimeout: 5 * time.Minute,
			AlbumTimeout: 30 * time.Minute,
			CleanupGrace: 5 * time.Second,
		},
		History: HistoryConfig{
			DatabasePath: "data/history.db",
		},
		Server: ServerConfig{
			Enabled: false,
			Host:    "localhost",
			Port:    8080,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
	}
}
