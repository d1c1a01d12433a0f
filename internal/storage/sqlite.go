package storage

import (
	"database/sql"
	"errors"

	"github.com/iabetor/musicwidget/internal/database"
	"github.com/iabetor/musicwidget/internal/logger"
)

// SQLite 使用 system_config 表保存键值。
type SQLite struct {
	db *database.DB
}

// NewSQLite 创建基于数据库的存储，db 需要已完成迁移。
func NewSQLite(db *database.DB) *SQLite {
	return &SQLite{db: db}
}

// Get 实现 Storage 接口。
func (s *SQLite) Get(key string) (string, bool) {
	var value string
	err := s.db.QueryRow(`SELECT value FROM system_config WHERE key = ?`, key).Scan(&value)
	if err != nil {
		if !errors.Is(err, sql.ErrNoRows) {
			logger.Warnf("[storage] 读取设置 %s 失败: %v", key, err)
		}
		return "", false
	}
	return value, true
}

// Set 实现 Storage 接口。
func (s *SQLite) Set(key, value string) {
	_, err := s.db.Exec(`INSERT INTO system_config (key, value, updated_at)
		VALUES (?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = CURRENT_TIMESTAMP`,
		key, value)
	if err != nil {
		logger.Warnf("[storage] 保存设置 %s 失败: %v", key, err)
	}
}
