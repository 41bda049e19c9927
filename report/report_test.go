package report

import (
	"bytes"
	"log"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"wxops/echodb"
	"wxops/summarize"
)

func msgAt(hour int, sender, display, content string) echodb.Message {
	at := time.Date(2025, 6, 1, hour, 0, 0, 0, time.Local)
	return echodb.Message{Type: echodb.TypeText, CreateTime: at.Unix(),
		Sender: sender, Display: display, Content: content}
}

func TestBuildStats(t *testing.T) {
	msgs := []echodb.Message{
		msgAt(9, "wxid_a", "阿狸", "1"),
		msgAt(9, "wxid_a", "阿狸", "2"),
		msgAt(9, "wxid_b", "小博", "3"),
		msgAt(14, "wxid_b", "小博", "4"),
		{Type: echodb.TypeSystem, CreateTime: time.Now().Unix(), Content: "系统"},
	}
	st := BuildStats(time.Date(2025, 6, 1, 0, 0, 0, 0, time.Local), msgs, 1)

	require.Equal(t, "2025-06-01", st.Date)
	require.Equal(t, 4, st.Total) // 系统消息不计入
	require.Equal(t, 2, st.ActiveMembers)
	require.Equal(t, 9, st.PeakHour)
	require.Equal(t, 3, st.PeakCount)
	// topN 截断，计数相同时按名称稳定排序
	require.Len(t, st.TopSpeakers, 1)
	require.Equal(t, 2, st.TopSpeakers[0].Count)
}

func TestBuildMemberActivity(t *testing.T) {
	day2 := time.Date(2025, 6, 2, 10, 0, 0, 0, time.Local)
	msgs := []echodb.Message{
		msgAt(9, "wxid_a", "阿狸", "1"),
		msgAt(20, "wxid_a", "阿狸", "2"),
		{Type: echodb.TypeText, CreateTime: day2.Unix(), Sender: "wxid_a", Display: "阿狸", Content: "3"},
		msgAt(9, "wxid_b", "小博", "x"),
	}
	rows := BuildMemberActivity(msgs)
	require.Len(t, rows, 2)
	require.Equal(t, "阿狸", rows[0].Name)
	require.Equal(t, 3, rows[0].Messages)
	require.Equal(t, 2, rows[0].ActiveDays)
	require.Equal(t, 9, rows[0].FirstSeen.Hour())
	require.Equal(t, day2.Unix(), rows[0].LastSeen.Unix())
}

func TestRender(t *testing.T) {
	st := Stats{Date: "2025-06-01", Total: 10, ActiveMembers: 3, PeakHour: 9, PeakCount: 5,
		TopSpeakers: []SpeakerCount{{Name: "阿狸<b>", Count: 5}}}
	a := summarize.Analysis{
		StatsNote: "氛围活跃",
		Topics:    []summarize.Topic{{Title: "工具对比", Detail: "讨论了 <script> 安全性"}},
		Quotes:    []summarize.Quote{{Text: "金句", Speaker: "阿狸"}},
	}

	r := Render(DefaultTemplate, "社群日报 2025-06-01", st, a)
	require.NotEmpty(t, r.ID)
	require.Contains(t, r.HTML, "社群日报 2025-06-01")
	require.Contains(t, r.HTML, r.ID)
	// 标记全部被替换
	require.NotContains(t, r.HTML, TagStats)
	require.NotContains(t, r.HTML, TagTopic)
	require.NotContains(t, r.HTML, TagQuote)
	// 用户内容经过转义
	require.Contains(t, r.HTML, "阿狸&lt;b&gt;")
	require.NotContains(t, r.HTML, "<script>")
	require.Contains(t, r.HTML, "氛围活跃")
	require.Contains(t, r.HTML, "「金句」")
}

func TestRenderEmptySections(t *testing.T) {
	r := Render(DefaultTemplate, "标题", Stats{}, summarize.Analysis{})
	require.Contains(t, r.HTML, "今日没有提炼出明确话题")
	require.Contains(t, r.HTML, "今日暂无金句")
}

func TestRenderUnknownTagKept(t *testing.T) {
	tpl := "<div>[STATS]</div><div>[BANNER]</div>"
	r := Render(tpl, "t", Stats{}, summarize.Analysis{})
	require.Contains(t, r.HTML, "[BANNER]")
}

func TestRenderWarnsTemplateTagsOnly(t *testing.T) {
	var buf bytes.Buffer
	log.SetOutput(&buf)
	defer log.SetOutput(os.Stderr)

	// 正文里的 [XXX] 是聊天内容，不是模板标记，不能告警
	a := summarize.Analysis{Quotes: []summarize.Quote{{Text: "记得看 [ABC] 那期", Speaker: "阿狸"}}}
	Render(DefaultTemplate, "t", Stats{}, a)
	require.NotContains(t, buf.String(), "[TAG-UNKNOWN]")

	// 模板自带的未知标记要告警
	buf.Reset()
	Render("<div>[STATS]</div><div>[BANNER]</div>", "t", Stats{}, a)
	require.Contains(t, buf.String(), "[TAG-UNKNOWN] [BANNER]")
	require.NotContains(t, buf.String(), "[ABC]")
}

func TestWriteWorkbook(t *testing.T) {
	path := filepath.Join(t.TempDir(), "activity.xlsx")
	months := map[string][]MemberActivity{
		"2025-05": {{Name: "阿狸", Messages: 10, ActiveDays: 4,
			FirstSeen: time.Date(2025, 5, 2, 9, 0, 0, 0, time.Local),
			LastSeen:  time.Date(2025, 5, 30, 21, 0, 0, 0, time.Local)}},
		"2025-06": {{Name: "小博", Messages: 3, ActiveDays: 2,
			FirstSeen: time.Date(2025, 6, 1, 9, 0, 0, 0, time.Local),
			LastSeen:  time.Date(2025, 6, 2, 9, 0, 0, 0, time.Local)}},
	}
	require.NoError(t, WriteWorkbook(path, months))

	wb, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer wb.Close()

	require.ElementsMatch(t, []string{"2025-05", "2025-06"}, wb.GetSheetList())
	v, err := wb.GetCellValue("2025-05", "A2")
	require.NoError(t, err)
	require.Equal(t, "阿狸", v)
	n, err := wb.GetCellValue("2025-06", "B2")
	require.NoError(t, err)
	require.Equal(t, "3", n)
}

func TestLoadTemplateDefault(t *testing.T) {
	tpl, err := LoadTemplate("")
	require.NoError(t, err)
	require.True(t, strings.Contains(tpl, TagStats))
	_, err = LoadTemplate(filepath.Join(t.TempDir(), "missing.html"))
	require.Error(t, err)
}
