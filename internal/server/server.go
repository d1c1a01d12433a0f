// Package server 通过 HTTP 把歌曲来源状态和操作暴露给展示层。
package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/iabetor/musicwidget/internal/logger"
	"github.com/iabetor/musicwidget/internal/music"
)

// Server HTTP 接口。
type Server struct {
	manager *music.Manager
	engine  *gin.Engine
}

// New 创建 HTTP 接口，mode 为 gin 运行模式（debug/release/test）。
func New(manager *music.Manager, mode string) *Server {
	if mode != "" {
		gin.SetMode(mode)
	}
	engine := gin.New()
	engine.Use(gin.Recovery(), requestLogger())

	s := &Server{manager: manager, engine: engine}
	s.routes()
	return s
}

// Handler 返回 http.Handler，便于测试或嵌入其他服务。
func (s *Server) Handler() http.Handler {
	return s.engine
}

// Run 在 addr 上监听，ctx 取消后优雅关闭。
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Infof("[server] 监听 %s", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		// SSE 连接会一直保持，先关闭订阅让它们退出
		s.manager.Close()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		logger.Info("[server] 正在关闭...")
		return srv.Shutdown(shutdownCtx)
	}
}

// requestLogger 以 debug 级别记录每个请求。
func requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		logger.Debugf("[server] %s %s %d %s", c.Request.Method, c.Request.URL.Path, c.Writer.Status(), time.Since(start))
	}
}
