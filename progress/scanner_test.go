package progress

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"wxops/pipeline"
)

func writeDay(t *testing.T, root, group, date string, files ...string) string {
	t.Helper()
	dir := pipeline.DayDir(root, group, date)
	require.NoError(t, os.MkdirAll(dir, 0o755))
	for _, f := range files {
		require.NoError(t, os.WriteFile(filepath.Join(dir, f), []byte("x"), 0o644))
	}
	return dir
}

func TestScan(t *testing.T) {
	root := t.TempDir()
	group := "ai-club"

	writeDay(t, root, group, "2025-06-01", pipeline.TranscriptFile)
	writeDay(t, root, group, "2025-06-02", pipeline.TranscriptFile, pipeline.AnalysisFile)
	doneDir := writeDay(t, root, group, "2025-06-03",
		pipeline.TranscriptFile, pipeline.AnalysisFile, pipeline.ReportFile)
	require.NoError(t, pipeline.WriteCount(filepath.Join(doneDir, pipeline.CountFile),
		pipeline.CountInfo{Total: 120, Countable: 98, Topics: 4, Quotes: 2}))
	// 非日期目录与空目录忽略
	require.NoError(t, os.MkdirAll(filepath.Join(root, group, "assets"), 0o755))
	writeDay(t, root, group, "2025-06-04")

	snap, err := NewScanner(root, group).Scan()
	require.NoError(t, err)
	require.Equal(t, 3, snap.TotalDays)
	require.Equal(t, 1, snap.DoneDays)

	// 新日期在前
	require.Equal(t, "2025-06-03", snap.Days[0].Date)
	require.Equal(t, StageDone, snap.Days[0].Stage)
	require.Equal(t, 120, snap.Days[0].Messages)
	require.Equal(t, StageAnalyzed, snap.Days[1].Stage)
	require.Equal(t, StageExtracted, snap.Days[2].Stage)
	require.Greater(t, snap.OverallPct, 0.0)
}

func TestScanMissingGroup(t *testing.T) {
	_, err := NewScanner(t.TempDir(), "nope").Scan()
	require.Error(t, err)
}
