package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config 是音乐组件的顶层配置结构。
type Config struct {
	DataDir string        `yaml:"data_dir"`
	Storage StorageConfig `yaml:"storage"`
	Meting  MetingConfig  `yaml:"meting"`
	Netease NeteaseConfig `yaml:"netease"`
	QQMusic QQMusicConfig `yaml:"qqmusic"`
	Catalog CatalogConfig `yaml:"catalog"`
	Server  ServerConfig  `yaml:"server"`
	Log     LogConfig     `yaml:"log"`
}

// StorageConfig 偏好设置持久化配置。
type StorageConfig struct {
	// Backend 可选 sqlite、file、memory。
	Backend string `yaml:"backend"`
	// Path 为 sqlite 数据库文件或 JSON 文件路径，为空时放在 DataDir 下。
	Path string `yaml:"path"`
}

// MetingConfig Meting 歌单 API 配置。
type MetingConfig struct {
	APIURL            string `yaml:"api_url"`
	DefaultPlatform   string `yaml:"default_platform"`
	DefaultPlaylistID string `yaml:"default_playlist_id"`
	TimeoutSec        int    `yaml:"timeout_sec"`
}

// NeteaseConfig 网易云音乐 API（NeteaseCloudMusicApi）配置。
// APIURL 为空时网易云歌单走 Meting API。
type NeteaseConfig struct {
	APIURL string `yaml:"api_url"`
}

// QQMusicConfig QQ 音乐 API（QQMusicApi）配置。
// APIURL 为空时 QQ 音乐歌单走 Meting API。
type QQMusicConfig struct {
	APIURL string `yaml:"api_url"`
}

// CatalogConfig 本地歌曲目录配置。
type CatalogConfig struct {
	// File 指向 YAML 歌曲列表，为空时使用内置歌曲。
	File string `yaml:"file"`
}

// ServerConfig HTTP 接口配置。
type ServerConfig struct {
	Addr string `yaml:"addr"`
	Mode string `yaml:"mode"` // gin 运行模式: debug, release, test
}

// LogConfig 日志配置。
type LogConfig struct {
	Level      string `yaml:"level"`
	Format     string `yaml:"format"`
	File       string `yaml:"file"`
	MaxSize    int    `yaml:"max_size"`
	MaxBackups int    `yaml:"max_backups"`
	MaxAge     int    `yaml:"max_age"`
}

// Default 返回全部使用默认值的配置，用于没有配置文件的场景。
func Default() *Config {
	cfg := &Config{}
	setDefaults(cfg)
	return cfg
}

// Load 读取 YAML 配置文件并返回 Config。
// 支持 ${VAR_NAME} 形式的环境变量展开。
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("读取配置文件 %s 失败: %w", path, err)
	}

	expanded := os.Expand(string(data), func(key string) string {
		return os.Getenv(key)
	})

	cfg := &Config{}
	if err := yaml.Unmarshal([]byte(expanded), cfg); err != nil {
		return nil, fmt.Errorf("解析配置文件 %s 失败: %w", path, err)
	}

	setDefaults(cfg)
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// setDefaults 为未设置的配置项填充默认值。
func setDefaults(cfg *Config) {
	cfg.DataDir = expandHome(cfg.DataDir)
	if cfg.DataDir == "" {
		home, _ := os.UserHomeDir()
		if home != "" {
			cfg.DataDir = filepath.Join(home, ".musicwidget")
		} else {
			cfg.DataDir = "./.musicwidget-data"
		}
	}

	if cfg.Storage.Backend == "" {
		cfg.Storage.Backend = "sqlite"
	}
	cfg.Storage.Path = expandHome(cfg.Storage.Path)
	if cfg.Storage.Path == "" {
		switch cfg.Storage.Backend {
		case "sqlite":
			cfg.Storage.Path = filepath.Join(cfg.DataDir, "musicwidget.db")
		case "file":
			cfg.Storage.Path = filepath.Join(cfg.DataDir, "settings.json")
		}
	}

	if cfg.Meting.APIURL == "" {
		cfg.Meting.APIURL = "https://api.i-meto.com/meting/api"
	}
	if cfg.Meting.DefaultPlatform == "" {
		cfg.Meting.DefaultPlatform = "netease"
	}
	if cfg.Meting.TimeoutSec == 0 {
		cfg.Meting.TimeoutSec = 30
	}

	cfg.Netease.APIURL = strings.TrimSuffix(strings.TrimSpace(cfg.Netease.APIURL), "/")
	cfg.QQMusic.APIURL = strings.TrimSuffix(strings.TrimSpace(cfg.QQMusic.APIURL), "/")
	cfg.Catalog.File = expandHome(cfg.Catalog.File)

	if cfg.Server.Addr == "" {
		cfg.Server.Addr = "127.0.0.1:8098"
	}
	if cfg.Server.Mode == "" {
		cfg.Server.Mode = "release"
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	cfg.Log.File = expandHome(cfg.Log.File)
}

func (cfg *Config) validate() error {
	switch cfg.Storage.Backend {
	case "sqlite", "file", "memory":
	default:
		return fmt.Errorf("不支持的存储后端: %s", cfg.Storage.Backend)
	}
	if cfg.Meting.TimeoutSec < 0 {
		return fmt.Errorf("meting.timeout_sec 不能为负数: %d", cfg.Meting.TimeoutSec)
	}
	return nil
}

// expandHome 手动展开 ~/ 前缀，Go 不会自动处理。
func expandHome(path string) string {
	if !strings.HasPrefix(path, "~/") {
		return path
	}
	home, _ := os.UserHomeDir()
	if home == "" {
		return path
	}
	return home + path[1:]
}
