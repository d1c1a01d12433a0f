// Package catalog 提供随组件打包的本地歌曲目录。
package catalog

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/iabetor/musicwidget/internal/logger"
	"github.com/iabetor/musicwidget/internal/music"
)

// builtin 内置歌曲，资源随前端一起发布在 /music 下。
var builtin = []music.LocalEntry{
	{Title: "Tell Your World", Artist: "livetune feat. 初音ミク", Src: "/music/tell-your-world.mp3", Album: "Project SEKAI COLORFUL STAGE!"},
	{Title: "セカイはまだ始まってすらいない", Artist: "Leo/need", Src: "/music/sekai-wa-mada.mp3", Album: "Project SEKAI Leo/need"},
	{Title: "群青", Artist: "YOASOBI", Src: "/music/gunjou.mp3", Album: "THE BOOK"},
	{Title: "千本桜", Artist: "黒うさP feat. 初音ミク", Src: "/music/senbonzakura.mp3", Album: "VOCALOID BEST"},
	{Title: "夜に駆ける", Artist: "YOASOBI", Src: "/music/yoru-ni-kakeru.mp3"},
}

// Catalog 本地歌曲目录，实现 music.Catalog。
type Catalog struct {
	entries []music.LocalEntry
}

// New 创建内置目录。
func New() *Catalog {
	return &Catalog{entries: copyEntries(builtin)}
}

// FromEntries 用给定歌曲创建目录。
func FromEntries(entries []music.LocalEntry) *Catalog {
	return &Catalog{entries: copyEntries(entries)}
}

// fileFormat 歌曲列表文件结构。
type fileFormat struct {
	Songs []music.LocalEntry `yaml:"songs"`
}

// Load 从 YAML 文件读取目录，path 为空时返回内置目录。
func Load(path string) (*Catalog, error) {
	if path == "" {
		return New(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("读取歌曲目录 %s 失败: %w", path, err)
	}
	var f fileFormat
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("解析歌曲目录 %s 失败: %w", path, err)
	}
	for i, e := range f.Songs {
		if e.Title == "" || e.Src == "" {
			return nil, fmt.Errorf("歌曲目录第 %d 项缺少 title 或 src", i+1)
		}
	}

	logger.Infof("[catalog] 从 %s 读取 %d 首本地歌曲", path, len(f.Songs))
	return FromEntries(f.Songs), nil
}

// All 实现 music.Catalog 接口，返回全部歌曲（副本）。
func (c *Catalog) All() []music.LocalEntry {
	return copyEntries(c.entries)
}

// Len 返回歌曲数量。
func (c *Catalog) Len() int {
	return len(c.entries)
}

func copyEntries(in []music.LocalEntry) []music.LocalEntry {
	out := make([]music.LocalEntry, len(in))
	copy(out, in)
	return out
}
