package meting

import (
	"encoding/json"

	"github.com/iabetor/musicwidget/internal/logger"
	"github.com/iabetor/musicwidget/internal/music"
	"github.com/iabetor/musicwidget/internal/storage"
)

// KeyConfig 远程歌单配置的存储键，值为 {"platform","id"} JSON。
const KeyConfig = "meting_config"

// ConfigStore 把最近一次成功加载的远程歌单参数保存到 Storage。
type ConfigStore struct {
	store    storage.Storage
	defaults music.RemoteConfig
}

// NewConfigStore 创建配置存储，空字段使用 netease 和 DefaultPlaylistID。
func NewConfigStore(store storage.Storage, defaults music.RemoteConfig) *ConfigStore {
	if defaults.Platform == "" {
		defaults.Platform = music.DefaultPlatform
	}
	if defaults.ID == "" {
		defaults.ID = DefaultPlaylistID
	}
	return &ConfigStore{store: store, defaults: defaults}
}

// Load 实现 music.ConfigStore 接口。缺失或损坏的数据按默认值处理，缺失的字段单独补全。
func (s *ConfigStore) Load() music.RemoteConfig {
	raw, ok := s.store.Get(KeyConfig)
	if !ok || raw == "" {
		return s.defaults
	}

	var cfg music.RemoteConfig
	if err := json.Unmarshal([]byte(raw), &cfg); err != nil {
		logger.Warnf("[meting] 解析已保存的歌单配置失败，使用默认值: %v", err)
		return s.defaults
	}
	if cfg.Platform == "" {
		cfg.Platform = s.defaults.Platform
	}
	if cfg.ID == "" {
		cfg.ID = s.defaults.ID
	}
	return cfg
}

// Save 实现 music.ConfigStore 接口。
func (s *ConfigStore) Save(platform, id string) {
	data, err := json.Marshal(music.RemoteConfig{Platform: platform, ID: id})
	if err != nil {
		logger.Warnf("[meting] 序列化歌单配置失败: %v", err)
		return
	}
	s.store.Set(KeyConfig, string(data))
}
