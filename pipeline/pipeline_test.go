package pipeline

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"wxops/echodb"
	"wxops/summarize"
)

func TestCountRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "count.txt")
	require.NoError(t, WriteCount(path, CountInfo{Total: 10, Countable: 8, Topics: 3, Quotes: 1}))

	ci, err := ReadCount(path)
	require.NoError(t, err)
	require.True(t, ci.Valid())
	require.Equal(t, 10, ci.Total)
	require.Equal(t, 8, ci.Countable)
	require.Equal(t, 3, ci.Topics)
}

func TestWriteCountRejectsMismatch(t *testing.T) {
	path := filepath.Join(t.TempDir(), "count.txt")
	require.Error(t, WriteCount(path, CountInfo{Total: 5, Countable: 8}))
	_, err := os.Stat(path)
	require.True(t, os.IsNotExist(err))
}

func TestReadCountMissingKeys(t *testing.T) {
	path := filepath.Join(t.TempDir(), "count.txt")
	require.NoError(t, os.WriteFile(path, []byte("total=10\nok=true\n"), 0o644))
	_, err := ReadCount(path)
	require.Error(t, err)

	require.NoError(t, os.WriteFile(path, []byte("garbage line"), 0o644))
	_, err = ReadCount(path)
	require.Error(t, err)
}

func TestVerifyCount(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "2025-06-01")
	msgs := []echodb.Message{
		{Type: echodb.TypeText, CreateTime: 1748740000, Sender: "wxid_a", Content: "你好"},
		{Type: echodb.TypeText, CreateTime: 1748740060, Sender: "wxid_b", Content: "好"},
		{Type: echodb.TypeSystem, CreateTime: 1748740120, Content: "系统提示"},
	}
	require.NoError(t, WriteMessages(dir, msgs))

	require.NoError(t, VerifyCount(dir, CountInfo{Total: 3, Countable: 2, OK: true}))

	// 检查点 total 与产物不符：当天消息后来变多时必须触发重跑
	err := VerifyCount(dir, CountInfo{Total: 2, Countable: 2, OK: true})
	require.Error(t, err)
	require.Contains(t, err.Error(), "count mismatch")

	// countable 不符同样算过期
	require.Error(t, VerifyCount(dir, CountInfo{Total: 3, Countable: 3, OK: true}))

	// messages.json 缺失视为产物损坏
	require.Error(t, VerifyCount(filepath.Join(t.TempDir(), "nothing"), CountInfo{Total: 0, OK: true}))
}

func TestArtifactsRoundTrip(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "2025-06-01")
	msgs := []echodb.Message{
		{Type: echodb.TypeText, CreateTime: time.Now().Unix(),
			Sender: "wxid_a", Display: "阿狸", Content: "你好"},
	}
	require.NoError(t, WriteMessages(dir, msgs))
	got, err := ReadMessages(dir)
	require.NoError(t, err)
	require.Equal(t, msgs, got)

	a := summarize.Analysis{
		StatsNote: "活跃",
		Topics:    []summarize.Topic{{Title: "话题", Detail: "描述"}},
		Quotes:    []summarize.Quote{{Text: "金句", Speaker: "阿狸"}},
	}
	require.NoError(t, WriteAnalysis(dir, a))
	gotA, err := ReadAnalysis(dir)
	require.NoError(t, err)
	require.Equal(t, a, gotA)

	require.NoError(t, WriteTranscript(dir, "09:00 阿狸: 你好\n"))
	data, err := os.ReadFile(filepath.Join(dir, TranscriptFile))
	require.NoError(t, err)
	require.Contains(t, string(data), "阿狸")
}
