package meting

import (
	"encoding/json"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"
)

// cookieFile 登录工具保存的 cookie 数据。
type cookieFile struct {
	Cookies []http.Cookie `json:"cookies"`
}

// cookieSource 从数据目录读取平台 cookie，带 1 分钟缓存。
type cookieSource struct {
	path   string
	escape bool // 网易云需要对名称和值做 URL 编码

	mu       sync.RWMutex
	cookies  []http.Cookie
	loadedAt time.Time
}

func newCookieSource(dataDir, fileName string, escape bool) *cookieSource {
	if dataDir == "" {
		return nil
	}
	return &cookieSource{path: filepath.Join(dataDir, fileName), escape: escape}
}

func (s *cookieSource) load() []http.Cookie {
	s.mu.RLock()
	if len(s.cookies) > 0 && time.Since(s.loadedAt) < time.Minute {
		cookies := s.cookies
		s.mu.RUnlock()
		return cookies
	}
	s.mu.RUnlock()

	s.mu.Lock()
	defer s.mu.Unlock()

	// 双重检查
	if len(s.cookies) > 0 && time.Since(s.loadedAt) < time.Minute {
		return s.cookies
	}

	content, err := os.ReadFile(s.path)
	if err != nil {
		return nil
	}
	var data cookieFile
	if err := json.Unmarshal(content, &data); err != nil {
		return nil
	}
	s.cookies = data.Cookies
	s.loadedAt = time.Now()
	return s.cookies
}

// header 生成 Cookie 请求头，没有 cookie 时返回空字符串。
func (s *cookieSource) header() string {
	if s == nil {
		return ""
	}
	cookies := s.load()
	if len(cookies) == 0 {
		return ""
	}
	parts := make([]string, 0, len(cookies))
	for _, c := range cookies {
		if s.escape {
			parts = append(parts, url.QueryEscape(c.Name)+"="+url.QueryEscape(c.Value))
		} else {
			parts = append(parts, c.Name+"="+c.Value)
		}
	}
	return strings.Join(parts, "; ")
}
