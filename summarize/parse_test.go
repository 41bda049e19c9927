package summarize

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"wxops/echodb"
)

const sampleOutput = `【数据观察】
今天讨论集中在上午，氛围活跃，技术话题占主导。

【话题】
- **AI 编程工具对比**：成员分享了几款代码助手的使用体验，普遍认可补全质量的提升。
- **周末线下聚会**：确认了时间地点，报名接龙已满
额外补充了停车信息。
* **招聘信息**

【金句】
- 「工具只是放大器，放大的是你原本的判断力」——阿狸
- "Done is better than perfect" —— 小博
- 不带引号的句子也要能解析 —— 老王
`

func TestParse(t *testing.T) {
	a := Parse(sampleOutput)

	require.Contains(t, a.StatsNote, "技术话题占主导")

	require.Len(t, a.Topics, 3)
	require.Equal(t, "AI 编程工具对比", a.Topics[0].Title)
	require.Contains(t, a.Topics[0].Detail, "补全质量")
	// 换行续写并入上一条描述
	require.Contains(t, a.Topics[1].Detail, "停车信息")
	require.Equal(t, "招聘信息", a.Topics[2].Title)
	require.Equal(t, "", a.Topics[2].Detail)

	require.Len(t, a.Quotes, 3)
	require.Equal(t, "工具只是放大器，放大的是你原本的判断力", a.Quotes[0].Text)
	require.Equal(t, "阿狸", a.Quotes[0].Speaker)
	require.Equal(t, "Done is better than perfect", a.Quotes[1].Text)
	require.Equal(t, "老王", a.Quotes[2].Speaker)
}

func TestParseEmpty(t *testing.T) {
	a := Parse("模型偶尔不听话，输出一段没有小节标记的文本")
	require.Empty(t, a.Topics)
	require.Empty(t, a.Quotes)
	require.Equal(t, "", a.StatsNote)
}

func TestMerge(t *testing.T) {
	m := Merge([]Analysis{
		{StatsNote: "上半天", Topics: []Topic{{Title: "A"}}, Quotes: []Quote{{Text: "q1", Speaker: "x"}}},
		{StatsNote: "下半天", Topics: []Topic{{Title: "B"}}},
	})
	require.Equal(t, "上半天\n下半天", m.StatsNote)
	require.Len(t, m.Topics, 2)
	require.Len(t, m.Quotes, 1)
}

func TestSplitChunks(t *testing.T) {
	text := strings.Repeat("一二三四五六七八九十\n", 10)
	chunks := splitChunks(text, 33)
	require.Greater(t, len(chunks), 1)
	// 不丢内容
	require.Equal(t, text, strings.Join(chunks, ""))
	for _, c := range chunks {
		require.LessOrEqual(t, len([]rune(c)), 33)
	}

	// 预算内不切分
	require.Len(t, splitChunks("short", 100), 1)

	// 单行超长硬切
	long := strings.Repeat("长", 50)
	chunks = splitChunks(long+"\n", 20)
	require.Equal(t, long+"\n", strings.Join(chunks, ""))
}

func TestTranscript(t *testing.T) {
	at := time.Date(2025, 6, 1, 9, 30, 0, 0, time.Local)
	msgs := []echodb.Message{
		{Type: echodb.TypeText, CreateTime: at.Unix(), Sender: "wxid_a", Display: "阿狸", Content: "早"},
		{Type: echodb.TypePicture, CreateTime: at.Unix(), Sender: "wxid_b", Content: ""},
		{Type: echodb.TypeSystem, CreateTime: at.Unix(), Content: "撤回了一条消息"},
	}
	out := Transcript(msgs)
	require.Contains(t, out, "09:30 阿狸: 早")
	// 无展示名时退回 wxid
	require.Contains(t, out, "09:30 wxid_b: [图片]")
	// 系统消息不进入转写
	require.NotContains(t, out, "撤回")
}
