package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/joho/godotenv"
	"github.com/urfave/cli/v3"

	"github.com/iabetor/musicwidget/internal/config"
	"github.com/iabetor/musicwidget/internal/logger"
	"github.com/iabetor/musicwidget/internal/music"
	"github.com/iabetor/musicwidget/internal/server"
)

// Runner 保存命令执行所需的依赖，Manager 在第一次使用时按配置创建。
type Runner struct {
	output  io.Writer
	cfg     *config.Config
	manager *music.Manager
	closer  func() error
}

// RunnerOpts 创建 Runner 的选项。
type RunnerOpts struct {
	Output io.Writer
}

// NewRunner 创建 Runner。
func NewRunner(opts RunnerOpts) *Runner {
	if opts.Output == nil {
		opts.Output = os.Stdout
	}
	return &Runner{output: opts.Output}
}

// Close 释放存储等资源。
func (r *Runner) Close() {
	if r.manager != nil {
		r.manager.Close()
	}
	if r.closer != nil {
		if err := r.closer(); err != nil {
			logger.Warnf("[main] 关闭存储失败: %v", err)
		}
	}
}

// setup 读取配置、初始化日志并创建 Manager。配置文件不存在时使用默认配置。
func (r *Runner) setup(cmd *cli.Command) (*music.Manager, error) {
	if r.manager != nil {
		return r.manager, nil
	}

	// .env 中的变量可在配置文件里以 ${VAR} 引用，文件不存在时忽略
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("读取 .env 失败: %w", err)
	}

	path := cmd.String("config")
	cfg := config.Default()
	if _, err := os.Stat(path); err == nil {
		loaded, err := config.Load(path)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	} else if cmd.IsSet("config") {
		return nil, fmt.Errorf("配置文件 %s 不存在", path)
	}

	if err := logger.Init(logger.Config{
		Level:      cfg.Log.Level,
		Format:     cfg.Log.Format,
		File:       cfg.Log.File,
		MaxSize:    cfg.Log.MaxSize,
		MaxBackups: cfg.Log.MaxBackups,
		MaxAge:     cfg.Log.MaxAge,
	}); err != nil {
		return nil, fmt.Errorf("初始化日志失败: %w", err)
	}

	m, closer, err := buildManager(cfg)
	if err != nil {
		return nil, err
	}
	r.cfg = cfg
	r.manager = m
	r.closer = closer
	return m, nil
}

func (r *Runner) writeJSON(v any) error {
	enc := json.NewEncoder(r.output)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(v)
}

// report 输出一次加载的结果和最新状态。
func (r *Runner) report(cmd *cli.Command, m *music.Manager, res music.LoadResult) error {
	if cmd.Bool("json") {
		out := struct {
			Result music.LoadResult `json:"result"`
			Error  string           `json:"error,omitempty"`
			State  music.State      `json:"state"`
		}{Result: res, State: m.State()}
		if res.Err != nil {
			out.Error = res.Err.Error()
		}
		return r.writeJSON(out)
	}

	switch res.Status {
	case music.LoadLocal:
		fmt.Fprintf(r.output, "已加载 %d 首本地歌曲\n", res.Count)
	case music.LoadLoaded:
		fmt.Fprintf(r.output, "已加载远程歌单，共 %d 首\n", res.Count)
	case music.LoadEmpty:
		fmt.Fprintln(r.output, "远程歌单为空，保持原歌曲列表")
	case music.LoadFailed:
		fmt.Fprintf(r.output, "加载远程歌单失败: %v\n", res.Err)
	}
	return r.printStatus(m.State())
}

func (r *Runner) printStatus(st music.State) error {
	fmt.Fprintf(r.output, "来源: %s\n", st.CurrentSource)
	fmt.Fprintf(r.output, "平台: %s\n", st.Platform)
	fmt.Fprintf(r.output, "歌单: %s\n", st.PlaylistID)
	fmt.Fprintf(r.output, "已应用: %s/%s\n", st.MetingConfig.Platform, st.MetingConfig.ID)
	fmt.Fprintf(r.output, "歌曲数: %d\n", len(st.Songs))
	return nil
}

// ---- 命令实现 ----

// Status 输出已保存的状态，不加载歌曲。
func (r *Runner) Status(ctx context.Context, cmd *cli.Command) error {
	m, err := r.setup(cmd)
	if err != nil {
		return err
	}
	if cmd.Bool("json") {
		return r.writeJSON(m.State())
	}
	return r.printStatus(m.State())
}

// Songs 按当前来源加载并列出歌曲。
func (r *Runner) Songs(ctx context.Context, cmd *cli.Command) error {
	m, err := r.setup(cmd)
	if err != nil {
		return err
	}
	res := m.LoadSongs(ctx)
	if res.Status == music.LoadFailed {
		logger.Warnf("[main] 加载失败，列出的是原有歌曲: %v", res.Err)
	}
	songs := m.Songs()
	if cmd.Bool("json") {
		return r.writeJSON(songs)
	}
	for i, s := range songs {
		fmt.Fprintf(r.output, "%3d. %s\n", i+1, s)
	}
	return nil
}

// Load 按当前来源加载歌曲。
func (r *Runner) Load(ctx context.Context, cmd *cli.Command) error {
	m, err := r.setup(cmd)
	if err != nil {
		return err
	}
	return r.report(cmd, m, m.LoadSongs(ctx))
}

// Switch 切换歌曲来源。
func (r *Runner) Switch(ctx context.Context, cmd *cli.Command) error {
	if cmd.NArg() != 1 {
		return fmt.Errorf("用法: switch <local|meting>")
	}
	source, err := music.ParseSourceMode(cmd.Args().First())
	if err != nil {
		return err
	}
	m, err := r.setup(cmd)
	if err != nil {
		return err
	}
	return r.report(cmd, m, m.SwitchSource(ctx, source))
}

// Playlist 设置或重置歌单 ID；同时给出 --platform 时直接加载该歌单。
func (r *Runner) Playlist(ctx context.Context, cmd *cli.Command) error {
	m, err := r.setup(cmd)
	if err != nil {
		return err
	}

	if cmd.Bool("reset") {
		m.ResetPlaylistID()
		fmt.Fprintf(r.output, "歌单已重置为默认: %s\n", m.PlaylistID())
		return nil
	}
	if cmd.NArg() != 1 {
		return fmt.Errorf("用法: playlist <id> [--platform p] 或 playlist --reset")
	}
	id := cmd.Args().First()

	if p := cmd.String("platform"); p != "" {
		if !music.IsKnownPlatform(p) {
			return fmt.Errorf("不支持的平台: %s", p)
		}
		return r.report(cmd, m, m.UpdateRemotePlaylist(ctx, p, id))
	}
	m.SetPlaylistID(id)
	fmt.Fprintf(r.output, "歌单已设置为: %s\n", id)
	return nil
}

// Platform 设置平台选择。
func (r *Runner) Platform(ctx context.Context, cmd *cli.Command) error {
	if cmd.NArg() != 1 {
		return fmt.Errorf("用法: platform <%s>", platformValues())
	}
	p := cmd.Args().First()
	if !music.IsKnownPlatform(p) {
		return fmt.Errorf("不支持的平台: %s", p)
	}
	m, err := r.setup(cmd)
	if err != nil {
		return err
	}
	m.SetPlatform(p)
	fmt.Fprintf(r.output, "平台已设置为: %s\n", p)
	return nil
}

// Apply 应用自定义歌单。
func (r *Runner) Apply(ctx context.Context, cmd *cli.Command) error {
	if cmd.NArg() != 2 {
		return fmt.Errorf("用法: apply <platform> <id>")
	}
	p, id := cmd.Args().Get(0), cmd.Args().Get(1)
	if !music.IsKnownPlatform(p) {
		return fmt.Errorf("不支持的平台: %s", p)
	}
	m, err := r.setup(cmd)
	if err != nil {
		return err
	}
	return r.report(cmd, m, m.ApplyCustomPlaylist(ctx, p, id))
}

// Reset 恢复默认远程歌单。
func (r *Runner) Reset(ctx context.Context, cmd *cli.Command) error {
	m, err := r.setup(cmd)
	if err != nil {
		return err
	}
	return r.report(cmd, m, m.ResetToLocal(ctx))
}

// Platforms 列出支持的平台。
func (r *Runner) Platforms(ctx context.Context, cmd *cli.Command) error {
	if cmd.Bool("json") {
		return r.writeJSON(music.Platforms())
	}
	for _, p := range music.Platforms() {
		fmt.Fprintf(r.output, "%-8s %s\n", p.Value, p.Label)
	}
	return nil
}

// Serve 启动 HTTP 接口，启动时先按当前来源加载一次歌曲。
func (r *Runner) Serve(ctx context.Context, cmd *cli.Command) error {
	m, err := r.setup(cmd)
	if err != nil {
		return err
	}
	addr := cmd.String("addr")
	if addr == "" {
		addr = r.cfg.Server.Addr
	}

	go m.LoadSongs(ctx)
	return server.New(m, r.cfg.Server.Mode).Run(ctx, addr)
}

func platformValues() string {
	s := ""
	for i, p := range music.Platforms() {
		if i > 0 {
			s += "|"
		}
		s += p.Value
	}
	return s
}
