package music

import (
	"fmt"
	"strings"
)

// Song 是组件展示和播放使用的统一歌曲结构，本地目录和远程歌单都会转换成它。
type Song struct {
	Name   string `json:"name" yaml:"name"`
	Artist string `json:"artist" yaml:"artist"`
	URL    string `json:"url" yaml:"url"`     // 播放地址
	Cover  string `json:"cover" yaml:"cover"` // 封面地址
	Lrc    string `json:"lrc,omitempty" yaml:"lrc,omitempty"`
}

// String 实现 Stringer 接口。
func (s Song) String() string {
	return fmt.Sprintf("%s - %s", s.Name, s.Artist)
}

// SourceMode 歌曲来源。
type SourceMode string

const (
	SourceLocal  SourceMode = "local"  // 内置本地歌曲
	SourceRemote SourceMode = "meting" // 远程歌单（Meting）
)

// ParseSourceMode 解析用户输入的来源名称，"remote" 作为 "meting" 的别名。
func ParseSourceMode(s string) (SourceMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case string(SourceLocal):
		return SourceLocal, nil
	case string(SourceRemote), "remote":
		return SourceRemote, nil
	default:
		return "", fmt.Errorf("未知的歌曲来源: %q", s)
	}
}

// RemoteConfig 最近一次成功应用的远程歌单参数。
type RemoteConfig struct {
	Platform string `json:"platform"`
	ID       string `json:"id"`
}

// PlatformOption 可选的远程音乐平台。
type PlatformOption struct {
	Value string `json:"value"`
	Label string `json:"label"`
}

// DefaultPlatform 默认远程平台。
const DefaultPlatform = "netease"

var platforms = [...]PlatformOption{
	{Value: "netease", Label: "网易云"},
	{Value: "tencent", Label: "QQ音乐"},
	{Value: "kugou", Label: "酷狗"},
	{Value: "kuwo", Label: "酷我"},
}

// Platforms 返回支持的平台列表（副本）。
func Platforms() []PlatformOption {
	out := make([]PlatformOption, len(platforms))
	copy(out, platforms[:])
	return out
}

// IsKnownPlatform 判断平台是否在支持列表中。
func IsKnownPlatform(p string) bool {
	for _, opt := range platforms {
		if opt.Value == p {
			return true
		}
	}
	return false
}
