package server

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/iabetor/musicwidget/internal/catalog"
	"github.com/iabetor/musicwidget/internal/meting"
	"github.com/iabetor/musicwidget/internal/music"
	"github.com/iabetor/musicwidget/internal/storage"
)

type stubFetcher struct {
	mu    sync.Mutex
	songs []music.Song
	err   error
}

func (f *stubFetcher) FetchPlaylist(ctx context.Context, platform, id string) ([]music.Song, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.songs, f.err
}

func newTestServer(t *testing.T, fetcher *stubFetcher) (*Server, *music.Manager, *storage.Memory) {
	t.Helper()
	store := storage.NewMemory(nil)
	m, err := music.NewManager(music.Options{
		Storage:           store,
		Fetcher:           fetcher,
		Config:            meting.NewConfigStore(store, music.RemoteConfig{}),
		Catalog:           catalog.FromEntries([]music.LocalEntry{{Title: "本地", Artist: "A", Src: "/a.mp3"}}),
		DefaultPlaylistID: meting.DefaultPlaylistID,
	})
	if err != nil {
		t.Fatalf("NewManager failed: %v", err)
	}
	return New(m, gin.TestMode), m, store
}

func doJSON(t *testing.T, s *Server, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, req)
	return w
}

func decodeLoad(t *testing.T, w *httptest.ResponseRecorder) loadResponse {
	t.Helper()
	var resp loadResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("解析响应失败: %v, body=%s", err, w.Body.String())
	}
	return resp
}

func TestGetState(t *testing.T) {
	s, _, _ := newTestServer(t, &stubFetcher{})
	w := doJSON(t, s, http.MethodGet, "/api/state", "")

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	var st music.State
	if err := json.Unmarshal(w.Body.Bytes(), &st); err != nil {
		t.Fatalf("解析失败: %v", err)
	}
	if st.CurrentSource != music.SourceRemote || st.Platform != "netease" || st.PlaylistID != meting.DefaultPlaylistID {
		t.Errorf("state = %+v", st)
	}
	if !strings.Contains(w.Body.String(), `"currentSource":"meting"`) {
		t.Errorf("JSON 字段名错误: %s", w.Body.String())
	}
}

func TestGetPlatforms(t *testing.T) {
	s, _, _ := newTestServer(t, &stubFetcher{})
	w := doJSON(t, s, http.MethodGet, "/api/platforms", "")

	var body struct {
		Platforms         []music.PlatformOption `json:"platforms"`
		Sources           []string               `json:"sources"`
		DefaultPlaylistID string                 `json:"defaultPlaylistId"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("解析失败: %v", err)
	}
	if len(body.Platforms) != 4 || body.Platforms[1].Label != "QQ音乐" {
		t.Errorf("platforms = %+v", body.Platforms)
	}
	if len(body.Sources) != 2 || body.DefaultPlaylistID != meting.DefaultPlaylistID {
		t.Errorf("body = %+v", body)
	}
}

func TestSwitchSource(t *testing.T) {
	s, _, store := newTestServer(t, &stubFetcher{})

	w := doJSON(t, s, http.MethodPost, "/api/source", `{"source":"local"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body=%s", w.Code, w.Body.String())
	}
	resp := decodeLoad(t, w)
	if resp.Result.Status != music.LoadLocal || resp.State.CurrentSource != music.SourceLocal {
		t.Errorf("resp = %+v", resp)
	}
	if len(resp.State.Songs) != 1 || resp.State.Songs[0].Cover != music.CoverDefault {
		t.Errorf("songs = %+v", resp.State.Songs)
	}
	if v, _ := store.Get(music.KeySource); v != "local" {
		t.Errorf("persisted music_source = %q", v)
	}
}

func TestSwitchSource_BadRequest(t *testing.T) {
	s, _, _ := newTestServer(t, &stubFetcher{})
	tests := []struct {
		name string
		body string
	}{
		{"缺少 source", `{}`},
		{"未知 source", `{"source":"cloud"}`},
		{"无效 JSON", `{`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := doJSON(t, s, http.MethodPost, "/api/source", tt.body)
			if w.Code != http.StatusBadRequest {
				t.Errorf("status = %d, want 400", w.Code)
			}
		})
	}
}

func TestApplyCustom(t *testing.T) {
	fetcher := &stubFetcher{songs: []music.Song{{Name: "A", Artist: "歌手", URL: "u", Cover: "c"}}}
	s, _, _ := newTestServer(t, fetcher)

	w := doJSON(t, s, http.MethodPost, "/api/custom", `{"platform":"tencent","id":"Y"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body=%s", w.Code, w.Body.String())
	}
	resp := decodeLoad(t, w)
	if resp.Result.Status != music.LoadLoaded || resp.Result.Count != 1 {
		t.Errorf("result = %+v", resp.Result)
	}
	st := resp.State
	if st.Platform != "tencent" || st.PlaylistID != "Y" || st.CurrentSource != music.SourceRemote {
		t.Errorf("state = %+v", st)
	}
	if st.MetingConfig != (music.RemoteConfig{Platform: "tencent", ID: "Y"}) || st.Loading {
		t.Errorf("state = %+v", st)
	}
}

func TestApplyCustom_RejectsUnknownPlatform(t *testing.T) {
	s, m, _ := newTestServer(t, &stubFetcher{})
	w := doJSON(t, s, http.MethodPost, "/api/custom", `{"platform":"spotify","id":"1"}`)
	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", w.Code)
	}
	if m.Platform() != "netease" {
		t.Error("请求被拒绝时不应修改状态")
	}
}

func TestLoad_FailureReportsError(t *testing.T) {
	fetcher := &stubFetcher{err: errors.New("network down")}
	s, _, _ := newTestServer(t, fetcher)

	w := doJSON(t, s, http.MethodPost, "/api/load", "")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	resp := decodeLoad(t, w)
	if resp.Result.Status != music.LoadFailed || !strings.Contains(resp.Error, "network down") {
		t.Errorf("resp = %+v", resp)
	}
	if resp.State.Loading || len(resp.State.Songs) != 0 {
		t.Errorf("state = %+v", resp.State)
	}
}

func TestPlaylistIDAndPlatform(t *testing.T) {
	s, m, store := newTestServer(t, &stubFetcher{})

	w := doJSON(t, s, http.MethodPut, "/api/playlist-id", `{"id":"555"}`)
	if w.Code != http.StatusOK || m.PlaylistID() != "555" {
		t.Fatalf("set playlist id: status=%d id=%s", w.Code, m.PlaylistID())
	}

	w = doJSON(t, s, http.MethodDelete, "/api/playlist-id", "")
	if w.Code != http.StatusOK || m.PlaylistID() != meting.DefaultPlaylistID {
		t.Fatalf("reset playlist id: status=%d id=%s", w.Code, m.PlaylistID())
	}
	if v, _ := store.Get(music.KeyPlaylistID); v != meting.DefaultPlaylistID {
		t.Errorf("persisted playlist_id = %q", v)
	}

	w = doJSON(t, s, http.MethodPut, "/api/platform", `{"platform":"kuwo"}`)
	if w.Code != http.StatusOK || m.Platform() != "kuwo" {
		t.Fatalf("set platform: status=%d platform=%s", w.Code, m.Platform())
	}

	w = doJSON(t, s, http.MethodPut, "/api/platform", `{"platform":"unknown"}`)
	if w.Code != http.StatusBadRequest {
		t.Errorf("unknown platform status = %d", w.Code)
	}
}

func TestUpdatePlaylistAndReset(t *testing.T) {
	fetcher := &stubFetcher{songs: []music.Song{{Name: "A"}}}
	s, m, _ := newTestServer(t, fetcher)

	w := doJSON(t, s, http.MethodPost, "/api/playlist", `{"platform":"kugou","id":"9"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	if m.MetingConfig() != (music.RemoteConfig{Platform: "kugou", ID: "9"}) {
		t.Errorf("MetingConfig = %+v", m.MetingConfig())
	}

	w = doJSON(t, s, http.MethodPost, "/api/reset", "")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	resp := decodeLoad(t, w)
	if resp.State.CurrentSource != music.SourceRemote || resp.State.Platform != "netease" {
		t.Errorf("state = %+v", resp.State)
	}
	if resp.State.MetingConfig != (music.RemoteConfig{Platform: "netease", ID: meting.DefaultPlaylistID}) {
		t.Errorf("MetingConfig = %+v", resp.State.MetingConfig)
	}
}

func TestStreamEvents(t *testing.T) {
	s, m, _ := newTestServer(t, &stubFetcher{})
	ts := httptest.NewServer(s.Handler())
	defer ts.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	req, _ := http.NewRequestWithContext(ctx, http.MethodGet, ts.URL+"/api/events", nil)
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("请求失败: %v", err)
	}
	defer resp.Body.Close()

	if ct := resp.Header.Get("Content-Type"); !strings.HasPrefix(ct, "text/event-stream") {
		t.Errorf("Content-Type = %q", ct)
	}

	reader := bufio.NewReader(resp.Body)
	readData := func() music.State {
		t.Helper()
		for {
			line, err := reader.ReadString('\n')
			if err != nil {
				t.Fatalf("读取事件失败: %v", err)
			}
			if strings.HasPrefix(line, "data:") {
				var st music.State
				if err := json.Unmarshal([]byte(strings.TrimSpace(strings.TrimPrefix(line, "data:"))), &st); err != nil {
					t.Fatalf("解析事件失败: %v (%s)", err, line)
				}
				return st
			}
		}
	}

	first := readData()
	if first.Platform != "netease" {
		t.Errorf("初始事件 Platform = %q", first.Platform)
	}

	m.SetPlatform("kugou")
	next := readData()
	if next.Platform != "kugou" {
		t.Errorf("变更事件 Platform = %q", next.Platform)
	}
}
