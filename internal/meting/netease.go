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

// NeteaseClient 通过 NeteaseCloudMusicApi 获取网易云歌单。
// 需要部署 https://github.com/Binaryify/NeteaseCloudMusicApi 。
type NeteaseClient struct {
	baseURL    string
	httpClient *http.Client
	cookies    *cookieSource
}

// NewNeteaseClient 创建网易云音乐客户端。dataDir 中的 netease_cookie.json 会附加到请求上。
func NewNeteaseClient(baseURL, dataDir string, timeout time.Duration) *NeteaseClient {
	if baseURL == "" {
		baseURL = "http://localhost:3000"
	}
	return &NeteaseClient{
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		httpClient: newHTTPClient(timeout),
		cookies:    newCookieSource(dataDir, "netease_cookie.json", true),
	}
}

// playlistTracksResponse /playlist/track/all 响应结构。
type playlistTracksResponse struct {
	Code  int `json:"code"`
	Songs []struct {
		ID   int64  `json:"id"`
		Name string `json:"name"`
		Ar   []struct {
			Name string `json:"name"`
		} `json:"ar"`
		Al struct {
			Name   string `json:"name"`
			PicURL string `json:"picUrl"`
		} `json:"al"`
	} `json:"songs"`
}

// neteaseOuterURL 网易云外链播放地址。
func neteaseOuterURL(id int64) string {
	return fmt.Sprintf("https://music.163.com/song/media/outer/url?id=%d.mp3", id)
}

// FetchPlaylist 实现 music.Fetcher 接口，platform 参数被忽略。
func (c *NeteaseClient) FetchPlaylist(ctx context.Context, platform, id string) ([]music.Song, error) {
	if id == "" {
		return nil, fmt.Errorf("歌单 ID 不能为空")
	}
	u := fmt.Sprintf("%s/playlist/track/all?id=%s", c.baseURL, url.QueryEscape(id))

	var resp playlistTracksResponse
	if err := getJSON(ctx, c.httpClient, c.cookies, u, &resp); err != nil {
		return nil, fmt.Errorf("获取网易云歌单 %s 失败: %w", id, err)
	}
	if resp.Code != 200 {
		return nil, fmt.Errorf("获取网易云歌单失败，错误码: %d", resp.Code)
	}

	songs := make([]music.Song, 0, len(resp.Songs))
	for _, s := range resp.Songs {
		artists := make([]string, 0, len(s.Ar))
		for _, a := range s.Ar {
			artists = append(artists, a.Name)
		}
		songs = append(songs, music.Song{
			Name:   s.Name,
			Artist: joinArtists(artists),
			URL:    neteaseOuterURL(s.ID),
			Cover:  s.Al.PicURL,
		})
	}

	logger.Debugf("[netease] 歌单 %s 返回 %d 首歌曲", id, len(songs))
	return songs, nil
}
