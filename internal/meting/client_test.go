package meting

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestClient_FetchPlaylist(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		status     int
		wantErr    bool
		wantLen    int
		wantFirst  string
		wantArtist string
		wantCover  string
	}{
		{
			name:       "name/artist/cover 格式",
			body:       `[{"name":"晴天","artist":"周杰伦","url":"http://x/1.mp3","cover":"http://x/1.jpg","lrc":"http://x/1.lrc"},{"name":"七里香","artist":"周杰伦","url":"http://x/2.mp3","cover":"http://x/2.jpg"}]`,
			status:     http.StatusOK,
			wantLen:    2,
			wantFirst:  "晴天",
			wantArtist: "周杰伦",
			wantCover:  "http://x/1.jpg",
		},
		{
			name:       "title/author/pic 格式",
			body:       `[{"title":"稻香","author":"周杰伦","url":"http://x/3.mp3","pic":"http://x/3.jpg"}]`,
			status:     http.StatusOK,
			wantLen:    1,
			wantFirst:  "稻香",
			wantArtist: "周杰伦",
			wantCover:  "http://x/3.jpg",
		},
		{
			name:    "空歌单",
			body:    `[]`,
			status:  http.StatusOK,
			wantLen: 0,
		},
		{
			name:    "HTTP 错误状态码",
			body:    `{"error":"boom"}`,
			status:  http.StatusBadGateway,
			wantErr: true,
		},
		{
			name:    "无效 JSON",
			body:    `not json`,
			status:  http.StatusOK,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				q := r.URL.Query()
				if q.Get("server") != "tencent" || q.Get("type") != "playlist" || q.Get("id") != "8888" {
					t.Errorf("查询参数错误: %s", r.URL.RawQuery)
				}
				w.WriteHeader(tt.status)
				w.Write([]byte(tt.body))
			}))
			defer server.Close()

			client := NewClient(server.URL, 0)
			songs, err := client.FetchPlaylist(context.Background(), "tencent", "8888")

			if (err != nil) != tt.wantErr {
				t.Fatalf("FetchPlaylist() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr {
				return
			}
			if len(songs) != tt.wantLen {
				t.Fatalf("返回歌曲数量 = %d, want %d", len(songs), tt.wantLen)
			}
			if tt.wantLen > 0 {
				if songs[0].Name != tt.wantFirst || songs[0].Artist != tt.wantArtist || songs[0].Cover != tt.wantCover {
					t.Errorf("第一首歌曲 = %+v", songs[0])
				}
			}
		})
	}
}

func TestClient_FetchPlaylist_KeepsLyrics(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[{"name":"晴天","artist":"周杰伦","url":"u","cover":"c","lrc":"http://x/1.lrc"}]`))
	}))
	defer server.Close()

	songs, err := NewClient(server.URL, 0).FetchPlaylist(context.Background(), "netease", "1")
	if err != nil {
		t.Fatalf("FetchPlaylist failed: %v", err)
	}
	if songs[0].Lrc != "http://x/1.lrc" {
		t.Errorf("Lrc = %q", songs[0].Lrc)
	}
}

func TestClient_RejectsEmptyParams(t *testing.T) {
	client := NewClient("http://127.0.0.1:1", 0)
	if _, err := client.FetchPlaylist(context.Background(), "", "1"); err == nil {
		t.Error("空平台应返回错误")
	}
	if _, err := client.FetchPlaylist(context.Background(), "netease", ""); err == nil {
		t.Error("空歌单 ID 应返回错误")
	}
}

func TestClient_DefaultBaseURL(t *testing.T) {
	client := NewClient("", 0)
	if client.baseURL != DefaultAPIURL {
		t.Errorf("默认 baseURL 错误: got %s", client.baseURL)
	}
	if client.httpClient.Timeout != defaultTimeout {
		t.Errorf("默认超时错误: got %v", client.httpClient.Timeout)
	}
}

func TestJoinArtists(t *testing.T) {
	tests := []struct {
		name string
		in   []string
		want string
	}{
		{"无歌手", nil, ""},
		{"单个歌手", []string{"周杰伦"}, "周杰伦"},
		{"多个歌手", []string{"歌手A", "歌手B"}, "歌手A / 歌手B"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := joinArtists(tt.in); got != tt.want {
				t.Errorf("joinArtists(%v) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}
