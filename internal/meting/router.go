package meting

import (
	"context"
	"fmt"

	"github.com/iabetor/musicwidget/internal/logger"
	"github.com/iabetor/musicwidget/internal/music"
)

// Router 按平台把请求分发给对应的客户端，没有专用客户端的平台走 fallback。
type Router struct {
	routes   map[string]music.Fetcher
	fallback music.Fetcher
}

// NewRouter 创建路由，fallback 通常是 Meting API 客户端。
func NewRouter(fallback music.Fetcher) *Router {
	return &Router{
		routes:   make(map[string]music.Fetcher),
		fallback: fallback,
	}
}

// Handle 为平台注册专用客户端。
func (r *Router) Handle(platform string, f music.Fetcher) {
	r.routes[platform] = f
	logger.Infof("[meting] 平台 %s 使用专用客户端", platform)
}

// FetchPlaylist 实现 music.Fetcher 接口。
func (r *Router) FetchPlaylist(ctx context.Context, platform, id string) ([]music.Song, error) {
	if f, ok := r.routes[platform]; ok {
		return f.FetchPlaylist(ctx, platform, id)
	}
	if r.fallback == nil {
		return nil, fmt.Errorf("平台 %s 没有可用的歌单服务", platform)
	}
	return r.fallback.FetchPlaylist(ctx, platform, id)
}
