package meting

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/iabetor/musicwidget/internal/logger"
	"github.com/iabetor/musicwidget/internal/music"
)

// QQMusicClient 通过 QQMusicApi 获取 QQ 音乐歌单。
// 需要部署 QQMusicApi 服务：https://github.com/jsososo/QQMusicApi
type QQMusicClient struct {
	baseURL    string
	httpClient *http.Client
	cookies    *cookieSource
	limiter    *rate.Limiter
}

// 逐首获取播放地址时的请求速率（次/秒）。
const qqSongURLRate = 10

// NewQQMusicClient 创建 QQ 音乐客户端。dataDir 中的 qq_cookie.json 会附加到请求上。
func NewQQMusicClient(baseURL, dataDir string, timeout time.Duration) *QQMusicClient {
	if baseURL == "" {
		baseURL = "http://localhost:3300"
	}
	return &QQMusicClient{
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		httpClient: newHTTPClient(timeout),
		cookies:    newCookieSource(dataDir, "qq_cookie.json", false),
		limiter:    rate.NewLimiter(rate.Limit(qqSongURLRate), 1),
	}
}

// qqSonglistResult /songlist 响应结构。
type qqSonglistResult struct {
	Result int `json:"result"`
	Data   struct {
		SongList []struct {
			SongID    int64  `json:"songid"`
			SongMID   string `json:"songmid"`
			SongName  string `json:"songname"`
			AlbumMID  string `json:"albummid"`
			AlbumName string `json:"albumname"`
			Singer    []struct {
				Name string `json:"name"`
			} `json:"singer"`
		} `json:"songlist"`
	} `json:"data"`
}

// qqSongURLResult /song/url 响应结构。
type qqSongURLResult struct {
	Result int    `json:"result"`
	Data   string `json:"data"`
}

// qqAlbumCover 根据专辑 mid 拼接封面地址。
func qqAlbumCover(albumMID string) string {
	if albumMID == "" {
		return ""
	}
	return fmt.Sprintf("https://y.gtimg.cn/music/photo_new/T002R300x300M000%s.jpg", albumMID)
}

// FetchPlaylist 实现 music.Fetcher 接口，platform 参数被忽略。
// 播放地址逐首获取，获取失败的歌曲 URL 为空（通常是 VIP 歌曲）。
func (c *QQMusicClient) FetchPlaylist(ctx context.Context, platform, id string) ([]music.Song, error) {
	if id == "" {
		return nil, fmt.Errorf("歌单 ID 不能为空")
	}
	u := fmt.Sprintf("%s/songlist?id=%s", c.baseURL, url.QueryEscape(id))

	var result qqSonglistResult
	if err := getJSON(ctx, c.httpClient, c.cookies, u, &result); err != nil {
		return nil, fmt.Errorf("获取 QQ 音乐歌单 %s 失败: %w", id, err)
	}
	if result.Result != 100 {
		return nil, fmt.Errorf("QQ 音乐 API 返回错误: result=%d", result.Result)
	}

	songs := make([]music.Song, 0, len(result.Data.SongList))
	for _, item := range result.Data.SongList {
		var artists []string
		for _, s := range item.Singer {
			artists = append(artists, s.Name)
		}

		if err := c.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("获取 QQ 音乐歌单 %s 被中断: %w", id, err)
		}
		songURL, err := c.songURL(ctx, item.SongMID)
		if err != nil {
			logger.Debugf("[qqmusic] 获取播放地址失败: %s: %v", item.SongName, err)
		}
		songs = append(songs, music.Song{
			Name:   item.SongName,
			Artist: joinArtists(artists),
			URL:    songURL,
			Cover:  qqAlbumCover(item.AlbumMID),
		})
	}

	logger.Debugf("[qqmusic] 歌单 %s 返回 %d 首歌曲", id, len(songs))
	return songs, nil
}

// songURL 使用 songmid 获取播放地址。
func (c *QQMusicClient) songURL(ctx context.Context, songMID string) (string, error) {
	if songMID == "" {
		return "", fmt.Errorf("缺少 songmid")
	}
	u := fmt.Sprintf("%s/song/url?id=%s&mediaId=%s", c.baseURL, url.QueryEscape(songMID), url.QueryEscape(songMID))

	var result qqSongURLResult
	if err := getJSON(ctx, c.httpClient, c.cookies, u, &result); err != nil {
		return "", err
	}
	if result.Result != 100 {
		return "", fmt.Errorf("QQ 音乐 API 返回错误: result=%d", result.Result)
	}
	if result.Data == "" {
		return "", fmt.Errorf("无法获取歌曲播放地址，可能是 VIP 歌曲")
	}
	return result.Data, nil
}
