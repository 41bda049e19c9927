package main

// 定时扫描各社群的产物目录，把进度快照上传 Redis 供 serve 端展示。

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"wxops/config"
	"wxops/progress"
)

type options struct {
	out    string
	groups string // 逗号分隔的社群目录名，默认取 GROUPS
	env    string
}

func parseFlags() options {
	var opts options
	flag.StringVar(&opts.out, "out", "", "输出根目录（默认取 OUTPUT_DIR）")
	flag.StringVar(&opts.groups, "groups", "", "逗号分隔的社群目录名（默认取 GROUPS）")
	flag.StringVar(&opts.env, "env", ".env", ".env 配置文件路径")
	flag.Parse()
	return opts
}

func main() {
	log.SetFlags(log.LstdFlags | log.Lmicroseconds)
	opts := parseFlags()

	cfg, err := config.Load(opts.env)
	if err != nil {
		log.Fatalf("load config failed: %v", err)
	}
	if opts.out == "" {
		opts.out = cfg.OutputDir
	}

	groups := cfg.Groups
	if opts.groups != "" {
		groups = groups[:0]
		for _, g := range strings.Split(opts.groups, ",") {
			if g = strings.TrimSpace(g); g != "" {
				groups = append(groups, g)
			}
		}
	}
	if len(groups) == 0 {
		log.Fatalf("-groups 或 GROUPS 必填")
	}

	log.Printf("Output dir: %s", opts.out)
	log.Printf("Groups: %v", groups)
	log.Printf("Scan interval: %ds", cfg.ScanInterval)

	rc, err := progress.NewClient(&progress.Config{
		Host:     cfg.RedisHost,
		Port:     cfg.RedisPort,
		Password: cfg.RedisPassword,
	})
	if err != nil {
		log.Fatalf("Failed to connect redis: %v", err)
	}
	defer rc.Close()
	log.Println("Redis connected")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	ticker := time.NewTicker(time.Duration(cfg.ScanInterval) * time.Second)
	defer ticker.Stop()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	// 立即执行一次扫描
	doScan(ctx, opts.out, groups, rc)

	log.Println("Monitoring started. Press Ctrl+C to exit.")

	for {
		select {
		case <-ticker.C:
			doScan(ctx, opts.out, groups, rc)
		case <-sigCh:
			log.Println("Shutting down...")
			return
		}
	}
}

func doScan(ctx context.Context, outRoot string, groups []string, rc *progress.Client) {
	for _, g := range groups {
		snap, err := progress.NewScanner(outRoot, g).Scan()
		if err != nil {
			log.Printf("Scan error (%s): %v", g, err)
			continue
		}
		if err := rc.Upload(ctx, g, snap); err != nil {
			log.Printf("Upload error (%s): %v", g, err)
			continue
		}
		fmt.Printf("\r[%s] %s: %.2f%% (%d/%d days done)",
			snap.ScanTime.Format("15:04:05"), g, snap.OverallPct, snap.DoneDays, snap.TotalDays)
	}
}
