package main

// 单日全流程编排：提取 -> 分析 -> 报告 -> 日志 -> 对账。
// - 断点续跑：已有 messages.json / analysis.json 直接复用，count.txt 有效则整天跳过
// - 分析阶段失败按 -retries 重试
// - 结束时写 count.txt 对账检查点，可选把进度快照上传 Redis

import (
	"context"
	"log"
	"os"
	"path/filepath"
	"time"

	"wxops/config"
	"wxops/echodb"
	"wxops/journal"
	"wxops/pipeline"
	"wxops/progress"
	"wxops/report"
	"wxops/summarize"
)

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
	if opts.title == "" {
		opts.title = opts.name + " 日报 " + opts.date
	}

	day, err := time.ParseInLocation("2006-01-02", opts.date, time.Local)
	if err != nil {
		log.Fatalf("invalid -date %q: %v", opts.date, err)
	}

	ctx := context.Background()
	dir := pipeline.DayDir(opts.out, opts.name, opts.date)
	countPath := filepath.Join(dir, pipeline.CountFile)
	reportPath := filepath.Join(dir, pipeline.ReportFile)

	// 已完成且对账通过的日期直接跳过。
	// 跳过前做三方对账：count.txt / messages.json / 镜像库实际消息数，
	// 任何一方不符都视为检查点过期，整天重跑。
	if !opts.clean {
		if ci, err := pipeline.ReadCount(countPath); err == nil && ci.Valid() {
			switch {
			case fileMissing(reportPath):
				log.Printf("[RECONCILE] count.txt 有效但 %s 缺失，重新生成报告", pipeline.ReportFile)
			case pipelineStale(ctx, opts, day, ci):
				opts.clean = true
			default:
				log.Printf("[SKIP] %s 已完成（total=%d countable=%d），如需重跑加 -clean", opts.date, ci.Total, ci.Countable)
				if opts.publish {
					publishProgress(ctx, cfg, opts.out, opts.name)
				}
				return
			}
		}
	}

	log.Printf("[START] group=%s name=%s date=%s", opts.group, opts.name, opts.date)

	// ===== 提取 =====
	var msgs []echodb.Message
	if !opts.clean {
		if m, err := pipeline.ReadMessages(dir); err == nil && len(m) > 0 {
			msgs = m
			log.Printf("[RESUME] reuse %s, messages=%d", pipeline.MessagesFile, len(msgs))
		}
	}
	if msgs == nil {
		if opts.dataDir == "" {
			log.Fatalf("-data 或 DATA_DIR 必填")
		}
		msgs, err = extractDay(ctx, opts.dataDir, opts.group, day, dir)
		if err != nil {
			log.Fatalf("extract failed: %v", err)
		}
		if len(msgs) == 0 {
			log.Printf("[EMPTY] %s 无消息，流程结束", opts.date)
			return
		}
	}
	countable := 0
	for i := range msgs {
		if echodb.IsCountable(msgs[i]) {
			countable++
		}
	}

	// ===== 分析 =====
	var analysis summarize.Analysis
	reused := false
	if !opts.clean {
		if a, err := pipeline.ReadAnalysis(dir); err == nil {
			analysis = a
			reused = true
			log.Printf("[RESUME] reuse %s, topics=%d quotes=%d", pipeline.AnalysisFile, len(a.Topics), len(a.Quotes))
		}
	}
	if !reused {
		if cfg.DeepSeekKey == "" {
			log.Fatalf("DEEPSEEK_API_KEY 未配置")
		}
		analysis, err = analyzeWithRetry(ctx, cfg, msgs, opts.retries)
		if err != nil {
			log.Fatalf("analyze failed after %d attempt(s): %v", opts.retries, err)
		}
		if err := pipeline.WriteAnalysis(dir, analysis); err != nil {
			log.Fatalf("write %s failed: %v", pipeline.AnalysisFile, err)
		}
	}

	// ===== 报告 =====
	tpl, err := report.LoadTemplate(opts.template)
	if err != nil {
		log.Fatalf("load template failed: %v", err)
	}
	st := report.BuildStats(day, msgs, opts.topN)
	rep := report.Render(tpl, opts.title, st, analysis)
	if err := rep.Write(reportPath); err != nil {
		log.Fatalf("write report failed: %v", err)
	}
	log.Printf("[REPORT] id=%s -> %s", rep.ID, reportPath)

	// ===== 日志 =====
	if opts.journal != "" {
		topics := make([]string, 0, len(analysis.Topics))
		for _, t := range analysis.Topics {
			topics = append(topics, t.Title)
		}
		j, err := journal.Load(opts.journal, "社群观察日志")
		if err != nil {
			log.Fatalf("load journal failed: %v", err)
		}
		j.Upsert(day, journal.DailyEntry(opts.name, reportPath, st.Total, st.ActiveMembers, topics))
		if err := j.Save(opts.journal); err != nil {
			log.Fatalf("save journal failed: %v", err)
		}
		log.Printf("[JOURNAL] -> %s", opts.journal)
	}

	// ===== 对账 =====
	ci := pipeline.CountInfo{
		Total:     len(msgs),
		Countable: countable,
		Topics:    len(analysis.Topics),
		Quotes:    len(analysis.Quotes),
	}
	if err := pipeline.WriteCount(countPath, ci); err != nil {
		log.Fatalf("write count.txt failed: %v", err)
	}
	recordIndex(ctx, opts, rep.ID, ci)
	log.Printf("[DONE] total=%d countable=%d topics=%d quotes=%d", ci.Total, ci.Countable, ci.Topics, ci.Quotes)

	if opts.publish {
		publishProgress(ctx, cfg, opts.out, opts.name)
	}
}

// recordIndex 把当天的报告落进社群台账库。台账只是查询索引，
// 写失败不影响当天产物，记一条日志继续。
func recordIndex(ctx context.Context, opts options, reportID string, ci pipeline.CountInfo) {
	idx, err := report.OpenIndex(filepath.Join(opts.out, opts.name, "index.db"))
	if err != nil {
		log.Printf("[INDEX-SKIP] open index db failed: %v", err)
		return
	}
	defer idx.Close()
	err = idx.Record(ctx, []report.IndexEntry{{
		Date:      opts.date,
		ReportID:  reportID,
		Total:     ci.Total,
		Countable: ci.Countable,
		Topics:    ci.Topics,
		Quotes:    ci.Quotes,
	}})
	if err != nil {
		log.Printf("[INDEX-SKIP] record failed: %v", err)
		return
	}
	log.Printf("[INDEX] %s -> index.db", opts.date)
}

func fileMissing(path string) bool {
	_, err := os.Stat(path)
	return err != nil
}

// pipelineStale 跳过前的对账。messages.json 与 count.txt 不符，
// 或镜像库中当天消息数已变化（补录/同步延迟），都判定检查点过期。
func pipelineStale(ctx context.Context, opts options, day time.Time, ci pipeline.CountInfo) bool {
	dir := pipeline.DayDir(opts.out, opts.name, opts.date)
	if err := pipeline.VerifyCount(dir, ci); err != nil {
		log.Printf("[RECONCILE] 检查点与产物不符，整天重跑: %v", err)
		return true
	}
	if opts.dataDir == "" {
		return false
	}

	store, err := echodb.Open(opts.dataDir, opts.group)
	if err != nil {
		log.Printf("[RECONCILE] open mirror failed, 暂信检查点: %v", err)
		return false
	}
	defer store.Close()
	msgs, err := store.MessagesOn(ctx, opts.group, day)
	if err != nil {
		log.Printf("[RECONCILE] query mirror failed, 暂信检查点: %v", err)
		return false
	}
	if len(msgs) != ci.Total {
		log.Printf("[RECONCILE] 镜像当天消息数 %d 与检查点 total=%d 不符，整天重跑", len(msgs), ci.Total)
		return true
	}
	return false
}

func extractDay(ctx context.Context, dataDir, group string, day time.Time, dir string) ([]echodb.Message, error) {
	store, err := echodb.Open(dataDir, group)
	if err != nil {
		return nil, err
	}
	defer store.Close()
	log.Printf("[SHARD] %d shard(s) contain talker %s", store.ShardCount(), group)

	msgs, err := store.MessagesOn(ctx, group, day)
	if err != nil {
		return nil, err
	}
	if len(msgs) == 0 {
		return msgs, nil
	}

	resolver := echodb.NewResolver(store)
	resolver.FillDisplay(msgs)
	if n := resolver.MissCount(); n > 0 {
		log.Printf("[NAME-MISS] %d sender(s) fell back to wxid", n)
	}

	if err := pipeline.WriteMessages(dir, msgs); err != nil {
		return nil, err
	}
	if err := pipeline.WriteTranscript(dir, summarize.Transcript(msgs)); err != nil {
		return nil, err
	}
	log.Printf("[EXTRACT] messages=%d -> %s", len(msgs), dir)
	return msgs, nil
}

func analyzeWithRetry(ctx context.Context, cfg *config.Config, msgs []echodb.Message, retries int) (summarize.Analysis, error) {
	client := summarize.NewClient(cfg.DeepSeekKey, cfg.DeepSeekModel)
	defer client.Close()

	var lastErr error
	for attempt := 1; attempt <= retries; attempt++ {
		actx, cancel := context.WithTimeout(ctx, 10*time.Minute)
		a, err := client.Analyze(actx, msgs)
		cancel()
		if err == nil {
			log.Printf("[ANALYZE] topics=%d quotes=%d attempt=%d", len(a.Topics), len(a.Quotes), attempt)
			return a, nil
		}
		lastErr = err
		log.Printf("[RETRY] analyze attempt %d/%d failed: %v", attempt, retries, err)
	}
	return summarize.Analysis{}, lastErr
}

func publishProgress(ctx context.Context, cfg *config.Config, outRoot, name string) {
	snap, err := progress.NewScanner(outRoot, name).Scan()
	if err != nil {
		log.Printf("[PUBLISH-SKIP] scan failed: %v", err)
		return
	}
	rc, err := progress.NewClient(&progress.Config{
		Host:     cfg.RedisHost,
		Port:     cfg.RedisPort,
		Password: cfg.RedisPassword,
	})
	if err != nil {
		log.Printf("[PUBLISH-SKIP] redis connect failed: %v", err)
		return
	}
	defer rc.Close()
	if err := rc.Upload(ctx, name, snap); err != nil {
		log.Printf("[PUBLISH-SKIP] upload failed: %v", err)
		return
	}
	log.Printf("[PUBLISH] %s overall=%.1f%% (%d/%d days done)", name, snap.OverallPct, snap.DoneDays, snap.TotalDays)
}
