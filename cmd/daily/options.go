package main

import (
	"flag"
	"time"
)

// ===== CLI 选项 =====
type options struct {
	dataDir  string // EchoTrace 镜像目录
	group    string // 社群 talker ID
	name     string // 输出目录名，默认取 talker
	date     string // 处理日期 YYYY-MM-DD
	out      string // 产物输出根目录
	env      string // .env 路径
	template string // 自定义报告模板路径
	title    string // 报告标题
	journal  string // Markdown 日志路径，空则跳过日志步骤
	topN     int    // 发言榜人数
	retries  int    // 分析阶段最大尝试次数
	clean    bool   // 忽略已有产物强制重跑（默认断点续跑）
	publish  bool   // 完成后把进度快照上传到 Redis
}

func parseFlags() options {
	var opts options
	flag.StringVar(&opts.dataDir, "data", "", "EchoTrace 镜像目录（默认取 DATA_DIR）")
	flag.StringVar(&opts.group, "group", "", "社群 talker ID（例如 20086666666@chatroom）")
	flag.StringVar(&opts.name, "name", "", "输出目录名（默认使用 talker ID）")
	flag.StringVar(&opts.date, "date", time.Now().Format("2006-01-02"), "处理日期（YYYY-MM-DD）")
	flag.StringVar(&opts.out, "out", "", "输出根目录（默认取 OUTPUT_DIR）")
	flag.StringVar(&opts.env, "env", ".env", ".env 配置文件路径")
	flag.StringVar(&opts.template, "template", "", "自定义报告模板路径（空则内置模板）")
	flag.StringVar(&opts.title, "title", "", "报告标题（默认 <name> 日报 <date>）")
	flag.StringVar(&opts.journal, "journal", "", "Markdown 日志路径（空则不写日志）")
	flag.IntVar(&opts.topN, "top", 10, "发言榜人数")
	flag.IntVar(&opts.retries, "retries", 3, "分析阶段最大尝试次数")
	flag.BoolVar(&opts.clean, "clean", false, "忽略已有产物强制重跑（默认断点续跑）")
	flag.BoolVar(&opts.publish, "publish", false, "完成后上传进度快照到 Redis")
	flag.Parse()
	if opts.name == "" {
		opts.name = opts.group
	}
	if opts.topN < 1 {
		opts.topN = 1
	}
	if opts.retries < 1 {
		opts.retries = 1
	}
	return opts
}
