package main

// 把某日的社群报告摘要写入 Markdown 日志：
// - 读取 output/<name>/<date>/ 的 messages.json 与 analysis.json
// - 生成当日小节并按日期幂等更新（重跑覆盖同日小节，不追加）
// - front-matter 的 date 字段随保存刷新

import (
	"flag"
	"log"
	"path/filepath"
	"time"

	"wxops/config"
	"wxops/journal"
	"wxops/pipeline"
	"wxops/report"
)

type options struct {
	name    string
	date    string
	out     string
	env     string
	journal string // Markdown 日志文件路径
	title   string // 首次创建时的 front-matter 标题
}

func parseFlags() options {
	var opts options
	flag.StringVar(&opts.name, "name", "", "社群输出目录名")
	flag.StringVar(&opts.date, "date", time.Now().Format("2006-01-02"), "日期（YYYY-MM-DD）")
	flag.StringVar(&opts.out, "out", "", "输出根目录（默认取 OUTPUT_DIR）")
	flag.StringVar(&opts.env, "env", ".env", ".env 配置文件路径")
	flag.StringVar(&opts.journal, "journal", "", "Markdown 日志文件路径")
	flag.StringVar(&opts.title, "title", "社群观察日志", "日志标题（仅首次创建时生效）")
	flag.Parse()
	return opts
}

func main() {
	log.SetFlags(log.LstdFlags | log.Lmicroseconds)
	opts := parseFlags()
	if opts.name == "" || opts.journal == "" {
		log.Fatalf("-name 与 -journal 必填")
	}

	cfg, err := config.Load(opts.env)
	if err != nil {
		log.Fatalf("load config failed: %v", err)
	}
	if opts.out == "" {
		opts.out = cfg.OutputDir
	}

	day, err := time.ParseInLocation("2006-01-02", opts.date, time.Local)
	if err != nil {
		log.Fatalf("invalid -date %q: %v", opts.date, err)
	}

	dir := pipeline.DayDir(opts.out, opts.name, opts.date)
	msgs, err := pipeline.ReadMessages(dir)
	if err != nil {
		log.Fatalf("read %s failed (先运行 extract): %v", pipeline.MessagesFile, err)
	}
	analysis, err := pipeline.ReadAnalysis(dir)
	if err != nil {
		log.Fatalf("read %s failed (先运行 analyze): %v", pipeline.AnalysisFile, err)
	}

	st := report.BuildStats(day, msgs, 10)
	topics := make([]string, 0, len(analysis.Topics))
	for _, t := range analysis.Topics {
		topics = append(topics, t.Title)
	}

	j, err := journal.Load(opts.journal, opts.title)
	if err != nil {
		log.Fatalf("load journal failed: %v", err)
	}
	reportPath := filepath.Join(dir, pipeline.ReportFile)
	j.Upsert(day, journal.DailyEntry(opts.name, reportPath, st.Total, st.ActiveMembers, topics))
	if err := j.Save(opts.journal); err != nil {
		log.Fatalf("save journal failed: %v", err)
	}
	log.Printf("[JOURNAL] date=%s sections=%d -> %s", opts.date, len(j.Dates()), opts.journal)
}
