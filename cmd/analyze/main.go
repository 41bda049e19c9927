package main

// 对已提取的聊天记录做 AI 分析：
// - 读取 output/<name>/<date>/messages.json
// - 调用 DeepSeek 生成【数据观察】【话题】【金句】三段结论
// - 超长记录自动分段并归并
// - 输出 output/<name>/<date>/analysis.json

import (
	"context"
	"flag"
	"log"
	"time"

	"wxops/config"
	"wxops/pipeline"
	"wxops/summarize"
)

type options struct {
	name    string
	date    string
	out     string
	env     string
	model   string
	timeout time.Duration
}

func parseFlags() options {
	var opts options
	flag.StringVar(&opts.name, "name", "", "社群输出目录名")
	flag.StringVar(&opts.date, "date", time.Now().Format("2006-01-02"), "分析日期（YYYY-MM-DD）")
	flag.StringVar(&opts.out, "out", "", "输出根目录（默认取 OUTPUT_DIR）")
	flag.StringVar(&opts.env, "env", ".env", ".env 配置文件路径")
	flag.StringVar(&opts.model, "model", "", "模型名称（默认取 DEEPSEEK_MODEL）")
	flag.DurationVar(&opts.timeout, "timeout", 10*time.Minute, "单日分析总超时")
	flag.Parse()
	return opts
}

func main() {
	log.SetFlags(log.LstdFlags | log.Lmicroseconds)
	opts := parseFlags()
	if opts.name == "" {
		log.Fatalf("-name 必填")
	}

	cfg, err := config.Load(opts.env)
	if err != nil {
		log.Fatalf("load config failed: %v", err)
	}
	if opts.out == "" {
		opts.out = cfg.OutputDir
	}
	if opts.model == "" {
		opts.model = cfg.DeepSeekModel
	}
	if cfg.DeepSeekKey == "" {
		log.Fatalf("DEEPSEEK_API_KEY 未配置")
	}

	dir := pipeline.DayDir(opts.out, opts.name, opts.date)
	msgs, err := pipeline.ReadMessages(dir)
	if err != nil {
		log.Fatalf("read %s failed (先运行 extract): %v", pipeline.MessagesFile, err)
	}
	if len(msgs) == 0 {
		log.Printf("[EMPTY] %s has no messages, skip", opts.date)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), opts.timeout)
	defer cancel()

	client := summarize.NewClient(cfg.DeepSeekKey, opts.model)
	defer client.Close()

	start := time.Now()
	log.Printf("[START] name=%s date=%s messages=%d model=%s", opts.name, opts.date, len(msgs), opts.model)
	analysis, err := client.Analyze(ctx, msgs)
	if err != nil {
		log.Fatalf("analyze failed: %v", err)
	}
	if err := pipeline.WriteAnalysis(dir, analysis); err != nil {
		log.Fatalf("write %s failed: %v", pipeline.AnalysisFile, err)
	}
	log.Printf("[DONE] topics=%d quotes=%d elapsed=%.1fs -> %s",
		len(analysis.Topics), len(analysis.Quotes), time.Since(start).Seconds(), dir)
}
