package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/iabetor/musicwidget/internal/music"
)

func (s *Server) routes() {
	api := s.engine.Group("/api")
	api.GET("/state", s.getState)
	api.GET("/platforms", s.getPlatforms)
	api.GET("/events", s.streamEvents)

	api.POST("/load", s.load)
	api.POST("/source", s.switchSource)
	api.POST("/playlist", s.updatePlaylist)
	api.PUT("/playlist-id", s.setPlaylistID)
	api.DELETE("/playlist-id", s.resetPlaylistID)
	api.PUT("/platform", s.setPlatform)
	api.POST("/custom", s.applyCustom)
	api.POST("/reset", s.reset)
}

// loadResponse 触发了加载的操作返回加载结果和最新状态。
type loadResponse struct {
	Result music.LoadResult `json:"result"`
	Error  string           `json:"error,omitempty"`
	State  music.State      `json:"state"`
}

type sourceRequest struct {
	Source string `json:"source" binding:"required"`
}

type playlistRequest struct {
	Platform string `json:"platform" binding:"required"`
	ID       string `json:"id" binding:"required"`
}

type playlistIDRequest struct {
	ID string `json:"id" binding:"required"`
}

type platformRequest struct {
	Platform string `json:"platform" binding:"required"`
}

func (s *Server) respondLoad(c *gin.Context, res music.LoadResult) {
	resp := loadResponse{Result: res, State: s.manager.State()}
	if res.Err != nil {
		resp.Error = res.Err.Error()
	}
	c.JSON(http.StatusOK, resp)
}

func badRequest(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
}

func (s *Server) getState(c *gin.Context) {
	c.JSON(http.StatusOK, s.manager.State())
}

func (s *Server) getPlatforms(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"platforms":         music.Platforms(),
		"sources":           []music.SourceMode{music.SourceLocal, music.SourceRemote},
		"defaultPlaylistId": s.manager.DefaultPlaylistID(),
	})
}

func (s *Server) load(c *gin.Context) {
	s.respondLoad(c, s.manager.LoadSongs(c.Request.Context()))
}

func (s *Server) switchSource(c *gin.Context) {
	var req sourceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	source, err := music.ParseSourceMode(req.Source)
	if err != nil {
		badRequest(c, err)
		return
	}
	s.respondLoad(c, s.manager.SwitchSource(c.Request.Context(), source))
}

func (s *Server) updatePlaylist(c *gin.Context) {
	req, ok := bindPlaylist(c)
	if !ok {
		return
	}
	s.respondLoad(c, s.manager.UpdateRemotePlaylist(c.Request.Context(), req.Platform, req.ID))
}

func (s *Server) setPlaylistID(c *gin.Context) {
	var req playlistIDRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	s.manager.SetPlaylistID(req.ID)
	c.JSON(http.StatusOK, s.manager.State())
}

func (s *Server) resetPlaylistID(c *gin.Context) {
	s.manager.ResetPlaylistID()
	c.JSON(http.StatusOK, s.manager.State())
}

func (s *Server) setPlatform(c *gin.Context) {
	var req platformRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	if !music.IsKnownPlatform(req.Platform) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "不支持的平台: " + req.Platform})
		return
	}
	s.manager.SetPlatform(req.Platform)
	c.JSON(http.StatusOK, s.manager.State())
}

func (s *Server) applyCustom(c *gin.Context) {
	req, ok := bindPlaylist(c)
	if !ok {
		return
	}
	s.respondLoad(c, s.manager.ApplyCustomPlaylist(c.Request.Context(), req.Platform, req.ID))
}

func (s *Server) reset(c *gin.Context) {
	s.respondLoad(c, s.manager.ResetToLocal(c.Request.Context()))
}

// bindPlaylist 解析 {platform, id} 请求体，失败时已写入 400 响应。
func bindPlaylist(c *gin.Context) (playlistRequest, bool) {
	var req playlistRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return req, false
	}
	if !music.IsKnownPlatform(req.Platform) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "不支持的平台: " + req.Platform})
		return req, false
	}
	return req, true
}

// streamEvents 以 SSE 推送状态：连接后立即发送一次当前状态，之后每次变更推送最新快照。
func (s *Server) streamEvents(c *gin.Context) {
	ch, cancel := s.manager.Subscribe()
	defer cancel()

	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")

	c.SSEvent("state", s.manager.State())
	c.Writer.Flush()

	ctx := c.Request.Context()
	for {
		select {
		case st, ok := <-ch:
			if !ok {
				return
			}
			c.SSEvent("state", st)
			c.Writer.Flush()
		case <-ctx.Done():
			return
		}
	}
}
