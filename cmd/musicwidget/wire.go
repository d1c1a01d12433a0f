package main

import (
	"fmt"
	"time"

	"github.com/iabetor/musicwidget/internal/catalog"
	"github.com/iabetor/musicwidget/internal/config"
	"github.com/iabetor/musicwidget/internal/database"
	"github.com/iabetor/musicwidget/internal/logger"
	"github.com/iabetor/musicwidget/internal/meting"
	"github.com/iabetor/musicwidget/internal/music"
	"github.com/iabetor/musicwidget/internal/storage"
)

// openStorage 按配置创建存储后端，返回的 closer 在退出时调用。
func openStorage(cfg config.StorageConfig) (storage.Storage, func() error, error) {
	noop := func() error { return nil }
	switch cfg.Backend {
	case "memory":
		return storage.NewMemory(nil), noop, nil
	case "file":
		s, err := storage.NewFile(cfg.Path)
		if err != nil {
			return nil, nil, err
		}
		return s, noop, nil
	case "sqlite":
		db, err := database.Open(cfg.Path)
		if err != nil {
			return nil, nil, err
		}
		if err := db.Migrate(); err != nil {
			db.Close()
			return nil, nil, err
		}
		return storage.NewSQLite(db), db.Close, nil
	default:
		return nil, nil, fmt.Errorf("不支持的存储后端: %s", cfg.Backend)
	}
}

// newFetcher 组装远程歌单服务：配置了直连 API 的平台走专用客户端，其余走 Meting API。
func newFetcher(cfg *config.Config) music.Fetcher {
	timeout := time.Duration(cfg.Meting.TimeoutSec) * time.Second
	router := meting.NewRouter(meting.NewClient(cfg.Meting.APIURL, timeout))
	if cfg.Netease.APIURL != "" {
		router.Handle("netease", meting.NewNeteaseClient(cfg.Netease.APIURL, cfg.DataDir, timeout))
	}
	if cfg.QQMusic.APIURL != "" {
		router.Handle("tencent", meting.NewQQMusicClient(cfg.QQMusic.APIURL, cfg.DataDir, timeout))
	}
	return router
}

// buildManager 根据配置组装 Manager。
func buildManager(cfg *config.Config) (*music.Manager, func() error, error) {
	store, closer, err := openStorage(cfg.Storage)
	if err != nil {
		return nil, nil, fmt.Errorf("打开存储失败: %w", err)
	}

	cat, err := catalog.Load(cfg.Catalog.File)
	if err != nil {
		closer()
		return nil, nil, err
	}

	defaultID := cfg.Meting.DefaultPlaylistID
	if defaultID == "" {
		defaultID = meting.DefaultPlaylistID
	}

	m, err := music.NewManager(music.Options{
		Storage: store,
		Fetcher: newFetcher(cfg),
		Config: meting.NewConfigStore(store, music.RemoteConfig{
			Platform: cfg.Meting.DefaultPlatform,
			ID:       defaultID,
		}),
		Catalog:           cat,
		DefaultPlaylistID: defaultID,
	})
	if err != nil {
		closer()
		return nil, nil, err
	}

	logger.Debugf("[main] 存储后端: %s (%s)，本地歌曲 %d 首", cfg.Storage.Backend, cfg.Storage.Path, cat.Len())
	return m, closer, nil
}
