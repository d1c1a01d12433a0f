package main

import "github.com/urfave/cli/v3"

func jsonFlag() cli.Flag {
	return &cli.BoolFlag{
		Name:  "json",
		Usage: "以 JSON 输出",
	}
}

// App 返回命令行定义。
func (r *Runner) App() *cli.Command {
	return &cli.Command{
		Name:  "musicwidget",
		Usage: "音乐组件歌曲来源管理",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "配置文件路径",
				Value:   "configs/musicwidget.yaml",
			},
		},
		Commands: []*cli.Command{
			{
				Name:   "status",
				Usage:  "查看当前来源、平台和歌单",
				Flags:  []cli.Flag{jsonFlag()},
				Action: r.Status,
			},
			{
				Name:   "songs",
				Usage:  "按当前来源加载并列出歌曲",
				Flags:  []cli.Flag{jsonFlag()},
				Action: r.Songs,
			},
			{
				Name:   "load",
				Usage:  "按当前来源加载歌曲",
				Flags:  []cli.Flag{jsonFlag()},
				Action: r.Load,
			},
			{
				Name:      "switch",
				Usage:     "切换歌曲来源并重新加载",
				ArgsUsage: "<local|meting>",
				Flags:     []cli.Flag{jsonFlag()},
				Action:    r.Switch,
			},
			{
				Name:      "playlist",
				Usage:     "设置歌单 ID（不重新加载）；带 --platform 时切换到远程并加载",
				ArgsUsage: "<id>",
				Flags: []cli.Flag{
					jsonFlag(),
					&cli.StringFlag{
						Name:  "platform",
						Usage: "直接加载该平台上的歌单",
					},
					&cli.BoolFlag{
						Name:  "reset",
						Usage: "恢复默认歌单 ID",
					},
				},
				Action: r.Playlist,
			},
			{
				Name:      "platform",
				Usage:     "设置平台（不重新加载）",
				ArgsUsage: "<platform>",
				Action:    r.Platform,
			},
			{
				Name:      "apply",
				Usage:     "应用自定义歌单：设置平台和歌单 ID 并加载",
				ArgsUsage: "<platform> <id>",
				Flags:     []cli.Flag{jsonFlag()},
				Action:    r.Apply,
			},
			{
				Name:   "reset",
				Usage:  "恢复默认远程歌单（网易云 + 默认歌单）",
				Flags:  []cli.Flag{jsonFlag()},
				Action: r.Reset,
			},
			{
				Name:   "platforms",
				Usage:  "列出支持的平台",
				Flags:  []cli.Flag{jsonFlag()},
				Action: r.Platforms,
			},
			{
				Name:  "serve",
				Usage: "启动 HTTP 接口",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "addr",
						Usage: "监听地址，默认使用配置中的 server.addr",
					},
				},
				Action: r.Serve,
			},
		},
	}
}
