// Package meting 提供远程歌单服务：Meting API 客户端、网易云/QQ 音乐直连客户端、
// 按平台分发的 Router，以及远程歌单配置的持久化。
package meting

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/iabetor/musicwidget/internal/logger"
	"github.com/iabetor/musicwidget/internal/music"
)

// DefaultPlaylistID 默认远程歌单（网易云热歌榜）。
const DefaultPlaylistID = "3778678"

// DefaultAPIURL 公共 Meting API 地址。
const DefaultAPIURL = "https://api.i-meto.com/meting/api"

// Client 是 Meting API 客户端，支持 netease、tencent、kugou、kuwo 等平台。
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// metingItem Meting API 返回的歌曲项。不同部署返回 name/artist/cover 或 title/author/pic。
type metingItem struct {
	Name   string `json:"name"`
	Title  string `json:"title"`
	Artist string `json:"artist"`
	Author string `json:"author"`
	URL    string `json:"url"`
	Cover  string `json:"cover"`
	Pic    string `json:"pic"`
	Lrc    string `json:"lrc"`
}

func (it metingItem) song() music.Song {
	return music.Song{
		Name:   firstNonEmpty(it.Name, it.Title),
		Artist: firstNonEmpty(it.Artist, it.Author),
		URL:    it.URL,
		Cover:  firstNonEmpty(it.Cover, it.Pic),
		Lrc:    it.Lrc,
	}
}

// NewClient 创建 Meting API 客户端，baseURL 为空时使用公共地址。
func NewClient(baseURL string, timeout time.Duration) *Client {
	if baseURL == "" {
		baseURL = DefaultAPIURL
	}
	return &Client{
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		httpClient: newHTTPClient(timeout),
	}
}

// FetchPlaylist 实现 music.Fetcher 接口。
func (c *Client) FetchPlaylist(ctx context.Context, platform, id string) ([]music.Song, error) {
	if platform == "" || id == "" {
		return nil, fmt.Errorf("平台和歌单 ID 不能为空")
	}

	q := url.Values{}
	q.Set("server", platform)
	q.Set("type", "playlist")
	q.Set("id", id)
	u := c.baseURL + "?" + q.Encode()

	var items []metingItem
	if err := getJSON(ctx, c.httpClient, nil, u, &items); err != nil {
		return nil, fmt.Errorf("获取 Meting 歌单 %s/%s 失败: %w", platform, id, err)
	}

	songs := make([]music.Song, 0, len(items))
	for _, it := range items {
		songs = append(songs, it.song())
	}
	logger.Debugf("[meting] 歌单 %s/%s 返回 %d 首歌曲", platform, id, len(songs))
	return songs, nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
