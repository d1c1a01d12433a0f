package music

import "context"

// Fetcher 远程歌单服务。返回空列表不是错误。
type Fetcher interface {
	FetchPlaylist(ctx context.Context, platform, id string) ([]Song, error)
}

// ConfigStore 持久化最近一次成功加载的远程歌单参数。
type ConfigStore interface {
	// Load 读取已保存的配置，没有时返回默认值。
	Load() RemoteConfig
	// Save 保存配置。
	Save(platform, id string)
}

// LocalEntry 本地歌曲目录中的一项。
type LocalEntry struct {
	Title  string `yaml:"title"`
	Artist string `yaml:"artist"`
	Src    string `yaml:"src"`
	Album  string `yaml:"album,omitempty"`
}

// Catalog 本地歌曲目录，读取不会失败。
type Catalog interface {
	All() []LocalEntry
}
