package progress

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"time"

	"wxops/pipeline"
)

var dayDirRe = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)

// Scanner 扫描某个社群的产物目录，推断每天的流水线阶段。
type Scanner struct {
	outRoot string
	group   string
}

func NewScanner(outRoot, group string) *Scanner {
	return &Scanner{outRoot: outRoot, group: group}
}

// Scan 生成进度快照。阶段按产物文件推断：
// transcript -> extracted, analysis.json -> analyzed, report.html -> reported,
// count.txt 有效 -> done。
func (s *Scanner) Scan() (*Snapshot, error) {
	groupDir := filepath.Join(s.outRoot, s.group)
	entries, err := os.ReadDir(groupDir)
	if err != nil {
		return nil, fmt.Errorf("read group dir failed: %w", err)
	}

	snap := &Snapshot{Group: s.group, ScanTime: time.Now()}
	for _, e := range entries {
		if !e.IsDir() || !dayDirRe.MatchString(e.Name()) {
			continue
		}
		day := s.scanDay(filepath.Join(groupDir, e.Name()), e.Name())
		if day == nil {
			continue
		}
		snap.Days = append(snap.Days, day)
		if day.Stage == StageDone {
			snap.DoneDays++
		}
	}

	sort.Slice(snap.Days, func(i, j int) bool { return snap.Days[i].Date > snap.Days[j].Date })
	snap.TotalDays = len(snap.Days)
	if snap.TotalDays > 0 {
		var sum float64
		for _, d := range snap.Days {
			sum += d.Pct
		}
		snap.OverallPct = sum / float64(snap.TotalDays)
	}
	return snap, nil
}

func (s *Scanner) scanDay(dir, date string) *DayProgress {
	exists := func(name string) (bool, time.Time) {
		info, err := os.Stat(filepath.Join(dir, name))
		if err != nil {
			return false, time.Time{}
		}
		return true, info.ModTime()
	}

	hasTranscript, t1 := exists(pipeline.TranscriptFile)
	hasAnalysis, t2 := exists(pipeline.AnalysisFile)
	hasReport, t3 := exists(pipeline.ReportFile)
	if !hasTranscript && !hasAnalysis && !hasReport {
		return nil
	}

	day := &DayProgress{Date: date, Stage: StageExtracted, UpdatedAt: t1}
	if hasAnalysis {
		day.Stage, day.UpdatedAt = StageAnalyzed, t2
	}
	if hasReport {
		day.Stage, day.UpdatedAt = StageReported, t3
	}
	if ci, err := pipeline.ReadCount(filepath.Join(dir, pipeline.CountFile)); err == nil && ci.Valid() {
		day.Stage = StageDone
		day.Messages = ci.Total
	}
	day.Pct = StagePct(day.Stage)
	return day
}
