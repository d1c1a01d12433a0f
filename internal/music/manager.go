package music

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/iabetor/musicwidget/internal/logger"
	"github.com/iabetor/musicwidget/internal/storage"
)

// 持久化使用的键。
const (
	KeySource     = "music_source"
	KeyPlaylistID = "playlist_id"
	KeyPlatform   = "music_platform"
)

// 本地歌曲封面：专辑名包含 CoverMarker 时使用 CoverMarked，否则使用 CoverDefault。
const (
	CoverMarker  = "SEKAI"
	CoverMarked  = "/4.webp"
	CoverDefault = "/123.webp"
)

// LoadStatus 一次加载的结果。
type LoadStatus string

const (
	LoadLocal  LoadStatus = "local"  // 已加载本地歌曲
	LoadLoaded LoadStatus = "loaded" // 远程歌单加载成功并已替换歌曲列表
	LoadEmpty  LoadStatus = "empty"  // 远程歌单为空，状态不变
	LoadFailed LoadStatus = "failed" // 远程请求失败，状态不变
)

// LoadResult 描述一次加载的结果。失败不会以 error 的形式返回，
// 状态语义与不看结果时完全一致，调用方可按需使用。
type LoadResult struct {
	RequestID string     `json:"requestId,omitempty"`
	Status    LoadStatus `json:"status"`
	Count     int        `json:"count"`
	Err       error      `json:"-"`
}

// Options 创建 Manager 所需的依赖。
type Options struct {
	Storage           storage.Storage
	Fetcher           Fetcher
	Config            ConfigStore
	Catalog           Catalog
	DefaultPlaylistID string
}

// Manager 管理歌曲来源选择状态：当前来源、远程歌单参数、歌曲列表和加载标记。
//
// 所有字段都在构造时从 Storage 读取初始值，之后只通过方法修改。
// 远程加载期间不持锁；重叠的远程加载以最后完成者为准。
type Manager struct {
	store             storage.Storage
	fetcher           Fetcher
	config            ConfigStore
	catalog           Catalog
	defaultPlaylistID string

	// commitMu 让持久化写入和对应的内存更新成为一个整体，
	// 保证并发修改后内存状态与已保存的值一致。
	commitMu sync.Mutex

	mu            sync.RWMutex
	songs         []Song
	loading       bool
	currentSource SourceMode
	metingConfig  RemoteConfig
	playlistID    string
	platform      string

	subs *broadcaster
}

// NewManager 创建管理器并读取已保存的偏好。
func NewManager(opts Options) (*Manager, error) {
	switch {
	case opts.Storage == nil:
		return nil, fmt.Errorf("缺少 Storage")
	case opts.Fetcher == nil:
		return nil, fmt.Errorf("缺少 Fetcher")
	case opts.Config == nil:
		return nil, fmt.Errorf("缺少 ConfigStore")
	case opts.Catalog == nil:
		return nil, fmt.Errorf("缺少 Catalog")
	case opts.DefaultPlaylistID == "":
		return nil, fmt.Errorf("缺少默认歌单 ID")
	}

	m := &Manager{
		store:             opts.Storage,
		fetcher:           opts.Fetcher,
		config:            opts.Config,
		catalog:           opts.Catalog,
		defaultPlaylistID: opts.DefaultPlaylistID,
		songs:             []Song{},
		currentSource:     SourceMode(storage.GetOr(opts.Storage, KeySource, string(SourceRemote))),
		metingConfig:      opts.Config.Load(),
		playlistID:        storage.GetOr(opts.Storage, KeyPlaylistID, opts.DefaultPlaylistID),
		platform:          storage.GetOr(opts.Storage, KeyPlatform, DefaultPlatform),
		subs:              newBroadcaster(),
	}

	logger.Infof("[music] 初始状态: source=%s, platform=%s, playlist=%s, meting=%s/%s",
		m.currentSource, m.platform, m.playlistID, m.metingConfig.Platform, m.metingConfig.ID)
	return m, nil
}

// DefaultPlaylistID 返回默认歌单 ID。
func (m *Manager) DefaultPlaylistID() string {
	return m.defaultPlaylistID
}

// ---- 状态读取 ----

// Songs 返回当前歌曲列表（副本）。
func (m *Manager) Songs() []Song {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return cloneSongs(m.songs)
}

// Loading 返回是否有远程加载正在进行。
func (m *Manager) Loading() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.loading
}

// CurrentSource 返回当前歌曲来源。
func (m *Manager) CurrentSource() SourceMode {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.currentSource
}

// MetingConfig 返回最近一次成功应用的远程歌单参数。
func (m *Manager) MetingConfig() RemoteConfig {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.metingConfig
}

// PlaylistID 返回当前选择的歌单 ID。
func (m *Manager) PlaylistID() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.playlistID
}

// Platform 返回当前选择的平台。
func (m *Manager) Platform() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.platform
}

// State 返回完整状态快照。
func (m *Manager) State() State {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return State{
		Songs:         cloneSongs(m.songs),
		Loading:       m.loading,
		CurrentSource: m.currentSource,
		MetingConfig:  m.metingConfig,
		PlaylistID:    m.playlistID,
		Platform:      m.platform,
	}
}

// Subscribe 订阅状态变化。返回的通道在每次变更后收到最新快照，
// 调用 cancel 取消订阅并关闭通道。
func (m *Manager) Subscribe() (<-chan State, func()) {
	id, ch := m.subs.subscribe()
	var once sync.Once
	return ch, func() {
		once.Do(func() { m.subs.unsubscribe(id) })
	}
}

// Close 关闭所有订阅通道。
func (m *Manager) Close() {
	m.subs.closeAll()
}

func (m *Manager) publish() {
	m.subs.publish(m.State)
}

// ---- 加载 ----

// LoadLocalSongs 用本地目录替换歌曲列表。
func (m *Manager) LoadLocalSongs() LoadResult {
	entries := m.catalog.All()
	songs := make([]Song, 0, len(entries))
	for _, e := range entries {
		songs = append(songs, LocalSong(e))
	}

	m.mu.Lock()
	m.songs = songs
	m.mu.Unlock()
	m.publish()

	logger.Infof("[music] 已加载 %d 首本地歌曲", len(songs))
	return LoadResult{Status: LoadLocal, Count: len(songs)}
}

// LocalSong 把本地目录项转换为 Song。
func LocalSong(e LocalEntry) Song {
	cover := CoverDefault
	if e.Album != "" && strings.Contains(e.Album, CoverMarker) {
		cover = CoverMarked
	}
	return Song{
		Name:   e.Title,
		Artist: e.Artist,
		URL:    e.Src,
		Cover:  cover,
	}
}

// LoadRemoteSongs 从远程歌单加载歌曲。
//
// 结果非空时替换歌曲列表、保存并更新远程配置；结果为空时不做任何修改；
// 请求失败只记录日志，歌曲列表保持不变。无论哪种情况返回时 loading 都为 false。
func (m *Manager) LoadRemoteSongs(ctx context.Context, platform, id string) LoadResult {
	reqID := uuid.NewString()
	m.setLoading(true)
	defer m.setLoading(false)

	logger.Debugf("[music] 加载远程歌单 (req=%s): %s/%s", reqID, platform, id)
	songs, err := m.fetcher.FetchPlaylist(ctx, platform, id)
	if err != nil {
		logger.Errorf("[music] 加载远程歌单失败 (req=%s, %s/%s): %v", reqID, platform, id, err)
		return LoadResult{RequestID: reqID, Status: LoadFailed, Err: err}
	}
	if len(songs) == 0 {
		logger.Warnf("[music] 远程歌单为空 (req=%s): %s/%s", reqID, platform, id)
		return LoadResult{RequestID: reqID, Status: LoadEmpty}
	}

	m.commitMu.Lock()
	m.config.Save(platform, id)
	m.mu.Lock()
	m.songs = cloneSongs(songs)
	m.metingConfig = RemoteConfig{Platform: platform, ID: id}
	m.mu.Unlock()
	m.commitMu.Unlock()
	m.publish()

	logger.Infof("[music] 已加载远程歌单 %s/%s，共 %d 首 (req=%s)", platform, id, len(songs), reqID)
	return LoadResult{RequestID: reqID, Status: LoadLoaded, Count: len(songs)}
}

func (m *Manager) setLoading(v bool) {
	m.mu.Lock()
	m.loading = v
	m.mu.Unlock()
	m.publish()
}

// LoadSongs 按当前来源加载歌曲：远程来源使用已保存的平台和当前歌单 ID。
func (m *Manager) LoadSongs(ctx context.Context) LoadResult {
	m.mu.RLock()
	source := m.currentSource
	platform := m.metingConfig.Platform
	id := m.playlistID
	m.mu.RUnlock()

	if source == SourceRemote {
		return m.LoadRemoteSongs(ctx, platform, id)
	}
	return m.LoadLocalSongs()
}

// ---- 修改 ----

// SwitchSource 切换并保存歌曲来源，然后重新加载。
func (m *Manager) SwitchSource(ctx context.Context, source SourceMode) LoadResult {
	m.setSource(source)
	return m.LoadSongs(ctx)
}

// UpdateRemotePlaylist 切换到远程来源并用指定参数加载，不读取已保存的平台和歌单选择。
func (m *Manager) UpdateRemotePlaylist(ctx context.Context, platform, id string) LoadResult {
	m.setSource(SourceRemote)
	return m.LoadRemoteSongs(ctx, platform, id)
}

// SetPlaylistID 设置并保存歌单 ID，不会触发重新加载。
func (m *Manager) SetPlaylistID(id string) {
	m.commitMu.Lock()
	m.store.Set(KeyPlaylistID, id)
	m.mu.Lock()
	m.playlistID = id
	m.mu.Unlock()
	m.commitMu.Unlock()
	m.publish()
}

// ResetPlaylistID 把歌单 ID 恢复为默认值并保存。
func (m *Manager) ResetPlaylistID() {
	m.SetPlaylistID(m.defaultPlaylistID)
}

// SetPlatform 设置并保存平台，不会触发重新加载。
func (m *Manager) SetPlatform(p string) {
	m.commitMu.Lock()
	m.store.Set(KeyPlatform, p)
	m.mu.Lock()
	m.platform = p
	m.mu.Unlock()
	m.commitMu.Unlock()
	m.publish()
}

// ApplyCustomPlaylist 同时设置平台、歌单 ID 和远程来源，然后加载该歌单。
func (m *Manager) ApplyCustomPlaylist(ctx context.Context, platform, id string) LoadResult {
	m.SetPlatform(platform)
	m.SetPlaylistID(id)
	m.setSource(SourceRemote)
	return m.LoadRemoteSongs(ctx, platform, id)
}

// ResetToLocal 把远程选择恢复为默认值（网易云 + 默认歌单）并加载默认歌单。
// 注意：尽管名字如此，它不会切换到本地来源，而是把来源设为远程。
func (m *Manager) ResetToLocal(ctx context.Context) LoadResult {
	m.setSource(SourceRemote)
	m.SetPlatform(DefaultPlatform)
	m.ResetPlaylistID()
	return m.LoadRemoteSongs(ctx, DefaultPlatform, m.defaultPlaylistID)
}

func (m *Manager) setSource(source SourceMode) {
	m.commitMu.Lock()
	m.store.Set(KeySource, string(source))
	m.mu.Lock()
	m.currentSource = source
	m.mu.Unlock()
	m.commitMu.Unlock()
	m.publish()
	logger.Debugf("[music] 歌曲来源切换为: %s", source)
}

func cloneSongs(songs []Song) []Song {
	out := make([]Song, len(songs))
	copy(out, songs)
	return out
}
