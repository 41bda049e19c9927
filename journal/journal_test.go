package journal

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoadMissingFile(t *testing.T) {
	j, err := Load(filepath.Join(t.TempDir(), "journal.md"), "运营日志")
	require.NoError(t, err)
	require.Equal(t, "运营日志", j.Front.Title)
	require.Empty(t, j.Dates())
}

func TestUpsertSaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "journal.md")

	j, err := Load(path, "运营日志")
	require.NoError(t, err)
	j.Upsert(time.Date(2025, 6, 1, 0, 0, 0, 0, time.Local), "- 第一天内容")
	j.Upsert(time.Date(2025, 6, 2, 0, 0, 0, 0, time.Local), "- 第二天内容")
	require.NoError(t, j.Save(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	text := string(data)
	require.True(t, strings.HasPrefix(text, "---\n"))
	// 新日期在前
	require.Less(t, strings.Index(text, "## 2025-06-02"), strings.Index(text, "## 2025-06-01"))

	// 重新加载后小节保持
	j2, err := Load(path, "运营日志")
	require.NoError(t, err)
	require.Equal(t, "运营日志", j2.Front.Title)
	require.Equal(t, []string{"2025-06-02", "2025-06-01"}, j2.Dates())
	require.Equal(t, "- 第一天内容", j2.Section("2025-06-01"))
}

func TestUpsertIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "journal.md")
	day := time.Date(2025, 6, 1, 0, 0, 0, 0, time.Local)

	j, err := Load(path, "运营日志")
	require.NoError(t, err)
	j.Upsert(day, "- 初版")
	require.NoError(t, j.Save(path))

	// 同一天重写覆盖旧内容，不产生重复小节
	j, err = Load(path, "运营日志")
	require.NoError(t, err)
	j.Upsert(day, "- 修订版")
	require.NoError(t, j.Save(path))

	j, err = Load(path, "运营日志")
	require.NoError(t, err)
	require.Equal(t, []string{"2025-06-01"}, j.Dates())
	require.Equal(t, "- 修订版", j.Section("2025-06-01"))
}

func TestPreamblePreserved(t *testing.T) {
	path := filepath.Join(t.TempDir(), "journal.md")
	seed := `---
title: 运营日志
date: "2025-06-01"
description: 手工维护的日志
---

手工写的引言段落，更新时不能丢。

## 2025-06-01

- 第一天内容
`
	require.NoError(t, os.WriteFile(path, []byte(seed), 0o644))

	j, err := Load(path, "运营日志")
	require.NoError(t, err)
	j.Upsert(time.Date(2025, 6, 2, 0, 0, 0, 0, time.Local), "- 第二天内容")
	require.NoError(t, j.Save(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	text := string(data)
	require.Contains(t, text, "手工写的引言段落")
	// 引言在所有日期小节之前
	require.Less(t, strings.Index(text, "手工写的引言段落"), strings.Index(text, "## 2025-06-02"))
	require.Contains(t, text, "## 2025-06-01")
	require.Contains(t, text, "- 第二天内容")

	// 再次往返不重复、不丢失
	j2, err := Load(path, "运营日志")
	require.NoError(t, err)
	require.NoError(t, j2.Save(path))
	data, err = os.ReadFile(path)
	require.NoError(t, err)
	require.Equal(t, 1, strings.Count(string(data), "手工写的引言段落"))
}

func TestDailyEntry(t *testing.T) {
	entry := DailyEntry("AI俱乐部", "output/ai/2025-06-01/report.html", 120, 23,
		[]string{"工具对比", "线下聚会"})
	require.Contains(t, entry, "消息 120 条 / 活跃 23 人")
	require.Contains(t, entry, "工具对比；线下聚会")
	require.Contains(t, entry, "[report.html](output/ai/2025-06-01/report.html)")
}
