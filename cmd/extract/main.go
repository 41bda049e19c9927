package main

// 从 EchoTrace 镜像库提取指定社群某一天的聊天记录：
// - 自动发现 Msg/Multi 下的 MSG 分库并只保留含该社群的分库
// - 通讯录三级兜底解析显示名（备注 > 昵称 > wxid）
// - 输出 output/<name>/<date>/messages.json 与 messages.txt

import (
	"context"
	"flag"
	"log"
	"time"

	"wxops/config"
	"wxops/echodb"
	"wxops/pipeline"
	"wxops/summarize"
)

type options struct {
	dataDir string // EchoTrace 镜像目录
	group   string // 社群 talker（如 xxx@chatroom）
	name    string // 输出目录名，默认取 talker
	date    string // 提取日期 YYYY-MM-DD
	start   string // 起始日期（含），与 -end 搭配按天批量提取
	end     string // 结束日期（含）
	out     string // 产物输出根目录
	env     string // .env 路径
}

func parseFlags() options {
	var opts options
	flag.StringVar(&opts.dataDir, "data", "", "EchoTrace 镜像目录（默认取 DATA_DIR）")
	flag.StringVar(&opts.group, "group", "", "社群 talker ID（例如 20086666666@chatroom）")
	flag.StringVar(&opts.name, "name", "", "输出目录名（默认使用 talker ID）")
	flag.StringVar(&opts.date, "date", time.Now().Format("2006-01-02"), "提取日期（YYYY-MM-DD）")
	flag.StringVar(&opts.start, "start", "", "起始日期（含，YYYY-MM-DD；与 -end 搭配按天批量提取）")
	flag.StringVar(&opts.end, "end", "", "结束日期（含，YYYY-MM-DD）")
	flag.StringVar(&opts.out, "out", "", "输出根目录（默认取 OUTPUT_DIR）")
	flag.StringVar(&opts.env, "env", ".env", ".env 配置文件路径")
	flag.Parse()
	if opts.name == "" {
		opts.name = opts.group
	}
	return opts
}

func main() {
	log.SetFlags(log.LstdFlags | log.Lmicroseconds)
	opts := parseFlags()
	if opts.group == "" {
		log.Fatalf("-group 必填")
	}

	cfg, err := config.Load(opts.env)
	if err != nil {
		log.Fatalf("load config failed: %v", err)
	}
	if opts.dataDir == "" {
		opts.dataDir = cfg.DataDir
	}
	if opts.out == "" {
		opts.out = cfg.OutputDir
	}
	if opts.dataDir == "" {
		log.Fatalf("-data 或 DATA_DIR 必填")
	}

	// 单日或按天批量
	first, last := opts.date, opts.date
	if opts.start != "" || opts.end != "" {
		if opts.start == "" || opts.end == "" {
			log.Fatalf("-start 与 -end 需同时指定")
		}
		first, last = opts.start, opts.end
	}
	startDay, err := time.ParseInLocation("2006-01-02", first, time.Local)
	if err != nil {
		log.Fatalf("invalid start date %q: %v", first, err)
	}
	endDay, err := time.ParseInLocation("2006-01-02", last, time.Local)
	if err != nil {
		log.Fatalf("invalid end date %q: %v", last, err)
	}
	if endDay.Before(startDay) {
		log.Fatalf("-end 早于 -start")
	}

	ctx := context.Background()
	log.Printf("[START] group=%s range=%s..%s data=%s", opts.group, first, last, opts.dataDir)

	store, err := echodb.Open(opts.dataDir, opts.group)
	if err != nil {
		log.Fatalf("open mirror failed: %v", err)
	}
	defer store.Close()
	log.Printf("[SHARD] %d shard(s) contain talker %s", store.ShardCount(), opts.group)

	resolver := echodb.NewResolver(store)
	days, written := 0, 0
	for day := startDay; !day.After(endDay); day = day.AddDate(0, 0, 1) {
		days++
		date := day.Format("2006-01-02")
		msgs, err := store.MessagesOn(ctx, opts.group, day)
		if err != nil {
			log.Fatalf("query messages failed: %v", err)
		}
		if len(msgs) == 0 {
			log.Printf("[EMPTY] no messages on %s", date)
			continue
		}

		resolver.FillDisplay(msgs)
		countable := 0
		for i := range msgs {
			if echodb.IsCountable(msgs[i]) {
				countable++
			}
		}

		dir := pipeline.DayDir(opts.out, opts.name, date)
		if err := pipeline.WriteMessages(dir, msgs); err != nil {
			log.Fatalf("write %s failed: %v", pipeline.MessagesFile, err)
		}
		if err := pipeline.WriteTranscript(dir, summarize.Transcript(msgs)); err != nil {
			log.Fatalf("write %s failed: %v", pipeline.TranscriptFile, err)
		}
		written++
		log.Printf("[EXTRACT] %s total=%d countable=%d -> %s", date, len(msgs), countable, dir)
	}
	if n := resolver.MissCount(); n > 0 {
		log.Printf("[NAME-MISS] %d sender(s) fell back to wxid", n)
	}
	log.Printf("[DONE] %d/%d day(s) written", written, days)
}
