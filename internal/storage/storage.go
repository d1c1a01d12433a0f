// Package storage 提供偏好设置的键值持久化能力。
package storage

import "sync"

// Storage 是注入给各组件的键值存储。
// 写入为尽力而为：后端错误只记录日志，不返回给调用方。
type Storage interface {
	// Get 读取键值，键不存在时 ok 为 false。
	Get(key string) (value string, ok bool)
	// Set 写入键值。
	Set(key, value string)
}

// Memory 是进程内存储，用于测试和不需要持久化的场景。
type Memory struct {
	mu   sync.RWMutex
	data map[string]string
}

// NewMemory 创建内存存储，可传入初始数据。
func NewMemory(initial map[string]string) *Memory {
	data := make(map[string]string, len(initial))
	for k, v := range initial {
		data[k] = v
	}
	return &Memory{data: data}
}

// Get 实现 Storage 接口。
func (m *Memory) Get(key string) (string, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.data[key]
	return v, ok
}

// Set 实现 Storage 接口。
func (m *Memory) Set(key, value string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = value
}

// GetOr 读取键值，不存在或为空时返回 def。
func GetOr(s Storage, key, def string) string {
	if v, ok := s.Get(key); ok && v != "" {
		return v
	}
	return def
}
