package main

// 生成社群日报 HTML：
// - 读取 output/<name>/<date>/ 下的 messages.json 与 analysis.json
// - 本地统计（总量/活跃人数/高峰时段/发言榜）填充 [STATS]，AI 结论填充 [TOPIC]/[QUOTE]
// - 可选 -xlsx 汇总全部日期的成员活跃度（按月分 sheet）

import (
	"context"
	"flag"
	"log"
	"os"
	"path/filepath"
	"regexp"
	"time"

	"wxops/config"
	"wxops/echodb"
	"wxops/pipeline"
	"wxops/report"
)

type options struct {
	name     string
	date     string
	out      string
	env      string
	title    string
	template string // 自定义 HTML 模板路径，空则内置模板
	topN     int
	xlsxPath string // 成员活跃度工作簿输出路径，空则不生成
}

func parseFlags() options {
	var opts options
	flag.StringVar(&opts.name, "name", "", "社群输出目录名")
	flag.StringVar(&opts.date, "date", time.Now().Format("2006-01-02"), "报告日期（YYYY-MM-DD）")
	flag.StringVar(&opts.out, "out", "", "输出根目录（默认取 OUTPUT_DIR）")
	flag.StringVar(&opts.env, "env", ".env", ".env 配置文件路径")
	flag.StringVar(&opts.title, "title", "", "报告标题（默认 <name> 日报 <date>）")
	flag.StringVar(&opts.template, "template", "", "自定义模板路径（含 [STATS]/[TOPIC]/[QUOTE] 占位符）")
	flag.IntVar(&opts.topN, "top", 10, "发言榜人数")
	flag.StringVar(&opts.xlsxPath, "xlsx", "", "成员活跃度 xlsx 输出路径（可选，按月分 sheet）")
	flag.Parse()
	if opts.topN < 1 {
		opts.topN = 1
	}
	return opts
}

var dayDirRe = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)

// collectMonthly 汇总某社群目录下所有日期的消息，按 YYYY-MM 分组统计成员活跃度。
func collectMonthly(outRoot, name string) (map[string][]report.MemberActivity, error) {
	groupDir := filepath.Join(outRoot, name)
	entries, err := os.ReadDir(groupDir)
	if err != nil {
		return nil, err
	}
	byMonth := make(map[string][]echodb.Message)
	for _, e := range entries {
		if !e.IsDir() || !dayDirRe.MatchString(e.Name()) {
			continue
		}
		msgs, err := pipeline.ReadMessages(filepath.Join(groupDir, e.Name()))
		if err != nil {
			continue
		}
		month := e.Name()[:7]
		byMonth[month] = append(byMonth[month], msgs...)
	}
	months := make(map[string][]report.MemberActivity, len(byMonth))
	for m, msgs := range byMonth {
		months[m] = report.BuildMemberActivity(msgs)
	}
	return months, nil
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

	day, err := time.ParseInLocation("2006-01-02", opts.date, time.Local)
	if err != nil {
		log.Fatalf("invalid -date %q: %v", opts.date, err)
	}
	if opts.title == "" {
		opts.title = opts.name + " 日报 " + opts.date
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

	tpl, err := report.LoadTemplate(opts.template)
	if err != nil {
		log.Fatalf("load template failed: %v", err)
	}

	st := report.BuildStats(day, msgs, opts.topN)
	rep := report.Render(tpl, opts.title, st, analysis)
	reportPath := filepath.Join(dir, pipeline.ReportFile)
	if err := rep.Write(reportPath); err != nil {
		log.Fatalf("write report failed: %v", err)
	}
	log.Printf("[REPORT] id=%s total=%d active=%d peak=%02d:00 -> %s",
		rep.ID, st.Total, st.ActiveMembers, st.PeakHour, reportPath)

	// 落台账。台账只是查询索引，失败不影响已写出的报告。
	countable := 0
	for i := range msgs {
		if echodb.IsCountable(msgs[i]) {
			countable++
		}
	}
	if idx, err := report.OpenIndex(filepath.Join(opts.out, opts.name, "index.db")); err != nil {
		log.Printf("[INDEX-SKIP] open index db failed: %v", err)
	} else {
		err = idx.Record(context.Background(), []report.IndexEntry{{
			Date:      opts.date,
			ReportID:  rep.ID,
			Total:     len(msgs),
			Countable: countable,
			Topics:    len(analysis.Topics),
			Quotes:    len(analysis.Quotes),
		}})
		idx.Close()
		if err != nil {
			log.Printf("[INDEX-SKIP] record failed: %v", err)
		} else {
			log.Printf("[INDEX] %s -> index.db", opts.date)
		}
	}

	if opts.xlsxPath != "" {
		months, err := collectMonthly(opts.out, opts.name)
		if err != nil {
			log.Fatalf("collect monthly activity failed: %v", err)
		}
		if len(months) == 0 {
			log.Printf("[XLSX] no extracted days found, skip workbook")
			return
		}
		if err := report.WriteWorkbook(opts.xlsxPath, months); err != nil {
			log.Fatalf("write workbook failed: %v", err)
		}
		log.Printf("[XLSX] %d month(s) -> %s", len(months), opts.xlsxPath)
	}
}
