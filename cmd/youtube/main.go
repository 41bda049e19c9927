package main

// 拉取 YouTube 频道最近上传并生成 Markdown 选题摘要：
// - search.list 取最近上传，videos.list 补齐时长与播放量
// - 可选 -summarize 用 DeepSeek 为每条视频简介生成一句话摘要

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"wxops/config"
	"wxops/summarize"
	"wxops/youtube"
)

type options struct {
	channel   string
	title     string
	limit     int
	output    string // 输出 Markdown 路径，空则打印到 stdout
	env       string
	summarize bool
}

func parseFlags() options {
	var opts options
	flag.StringVar(&opts.channel, "channel", "", "YouTube 频道 ID（UC 开头）")
	flag.StringVar(&opts.title, "title", "", "频道名称（用于摘要标题，默认用频道 ID）")
	flag.IntVar(&opts.limit, "limit", 10, "拉取条数")
	flag.StringVar(&opts.output, "o", "", "输出 Markdown 路径（默认打印到 stdout）")
	flag.StringVar(&opts.env, "env", ".env", ".env 配置文件路径")
	flag.BoolVar(&opts.summarize, "summarize", false, "用 AI 为每条视频简介生成一句话摘要")
	flag.Parse()
	if opts.limit < 1 {
		opts.limit = 1
	}
	if opts.title == "" {
		opts.title = opts.channel
	}
	return opts
}

func main() {
	log.SetFlags(log.LstdFlags | log.Lmicroseconds)
	opts := parseFlags()
	if opts.channel == "" {
		log.Fatalf("-channel 必填")
	}

	cfg, err := config.Load(opts.env)
	if err != nil {
		log.Fatalf("load config failed: %v", err)
	}
	if cfg.YouTubeKey == "" {
		log.Fatalf("YOUTUBE_API_KEY 未配置")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	client := youtube.NewClient(cfg.YouTubeKey)
	videos, err := client.RecentUploads(ctx, opts.channel, opts.limit)
	if err != nil {
		log.Fatalf("fetch uploads failed: %v", err)
	}
	log.Printf("[FETCH] channel=%s videos=%d", opts.channel, len(videos))

	summaries := make(map[string]string)
	if opts.summarize && len(videos) > 0 {
		if cfg.DeepSeekKey == "" {
			log.Fatalf("-summarize 需要配置 DEEPSEEK_API_KEY")
		}
		ai := summarize.NewClient(cfg.DeepSeekKey, cfg.DeepSeekModel)
		defer ai.Close()
		for _, v := range videos {
			if v.Description == "" {
				continue
			}
			prompt := fmt.Sprintf("用一句中文概括这条视频简介，不超过40字：\n标题：%s\n简介：%s", v.Title, v.Description)
			s, err := ai.Chat(ctx, prompt)
			if err != nil {
				log.Printf("[SUMMARY-SKIP] video=%s: %v", v.ID, err)
				continue
			}
			summaries[v.ID] = s
		}
		log.Printf("[SUMMARY] %d/%d videos summarized", len(summaries), len(videos))
	}

	digest := youtube.BuildDigest(opts.title, videos, summaries)
	if opts.output == "" {
		fmt.Print(digest)
		return
	}
	if err := os.WriteFile(opts.output, []byte(digest), 0o644); err != nil {
		log.Fatalf("write digest failed: %v", err)
	}
	log.Printf("[DONE] -> %s", opts.output)
}
