package storage

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/iabetor/musicwidget/internal/logger"
)

// File 把键值保存为一个 JSON 文件，每次写入整体重写。
type File struct {
	mu       sync.RWMutex
	filePath string
	data     map[string]string
}

// NewFile 创建 JSON 文件存储，文件不存在时从空表开始。
func NewFile(filePath string) (*File, error) {
	if err := os.MkdirAll(filepath.Dir(filePath), 0755); err != nil {
		return nil, fmt.Errorf("创建存储目录失败: %w", err)
	}
	s := &File{filePath: filePath}
	if err := s.load(); err != nil {
		logger.Warnf("[storage] 加载设置文件失败（将使用空表）: %v", err)
		s.data = make(map[string]string)
	}
	return s, nil
}

func (s *File) load() error {
	content, err := os.ReadFile(s.filePath)
	if err != nil {
		if os.IsNotExist(err) {
			s.data = make(map[string]string)
			return nil
		}
		return err
	}
	data := make(map[string]string)
	if err := json.Unmarshal(content, &data); err != nil {
		return err
	}
	s.data = data
	return nil
}

// save 先写临时文件再重命名，避免中途失败留下半截文件（调用方需持有锁）。
func (s *File) save() error {
	content, err := json.MarshalIndent(s.data, "", "  ")
	if err != nil {
		return err
	}
	tmp := s.filePath + ".tmp"
	if err := os.WriteFile(tmp, content, 0644); err != nil {
		return err
	}
	return os.Rename(tmp, s.filePath)
}

// Get 实现 Storage 接口。
func (s *File) Get(key string) (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.data[key]
	return v, ok
}

// Set 实现 Storage 接口。
func (s *File) Set(key, value string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[key] = value
	if err := s.save(); err != nil {
		logger.Warnf("[storage] 保存设置 %s 失败: %v", key, err)
	}
}
