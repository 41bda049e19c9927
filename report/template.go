package report

import (
	"fmt"
	"html/template"
	"log"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/google/uuid"

	"wxops/summarize"
)

// 模板标记。模板里出现的 [STATS]/[TOPIC]/[QUOTE] 会被替换为渲染片段，
// 其他 [XXX] 形式的标记保持原样并告警一次。
const (
	TagStats = "[STATS]"
	TagTopic = "[TOPIC]"
	TagQuote = "[QUOTE]"
)

var unknownTagRe = regexp.MustCompile(`\[[A-Z]+\]`)

// DefaultTemplate 内置日报模板，-template 参数可覆盖。
const DefaultTemplate = `<!DOCTYPE html>
<html lang="zh-CN">
<head>
<meta charset="utf-8">
<title>{{TITLE}}</title>
<style>
body{font-family:"PingFang SC","Microsoft YaHei",sans-serif;max-width:720px;margin:24px auto;padding:0 16px;color:#24292f;}
h1{font-size:22px;border-bottom:2px solid #07c160;padding-bottom:8px;}
h2{font-size:17px;margin-top:28px;color:#07c160;}
.stats{background:#f6f8fa;border-radius:8px;padding:12px 16px;line-height:1.8;}
.topics li,.quotes li{margin:8px 0;line-height:1.7;}
.quotes li{border-left:3px solid #07c160;padding-left:10px;list-style:none;font-style:italic;}
.quotes .speaker{color:#57606a;font-style:normal;}
footer{margin-top:36px;color:#8c959f;font-size:12px;}
</style>
</head>
<body>
<h1>{{TITLE}}</h1>
<h2>今日数据</h2>
<div class="stats">[STATS]</div>
<h2>讨论话题</h2>
<ul class="topics">[TOPIC]</ul>
<h2>今日金句</h2>
<ul class="quotes">[QUOTE]</ul>
<footer>报告编号 {{REPORT_ID}} · 由 wxops 自动生成</footer>
</body>
</html>
`

// Report 一份渲染后的日报。
type Report struct {
	ID    string
	Title string
	HTML  string
}

func esc(s string) string { return template.HTMLEscapeString(s) }

func renderStats(st Stats, note string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "消息总数 <b>%d</b> 条，活跃成员 <b>%d</b> 人，高峰时段 <b>%02d:00-%02d:00</b>（%d 条）。<br>\n",
		st.Total, st.ActiveMembers, st.PeakHour, (st.PeakHour+1)%24, st.PeakCount)
	if len(st.TopSpeakers) > 0 {
		var names []string
		for _, s := range st.TopSpeakers {
			names = append(names, fmt.Sprintf("%s(%d)", esc(s.Name), s.Count))
		}
		fmt.Fprintf(&b, "发言榜：%s。<br>\n", strings.Join(names, "、"))
	}
	if note != "" {
		b.WriteString(esc(note))
	}
	return b.String()
}

func renderTopics(topics []summarize.Topic) string {
	if len(topics) == 0 {
		return "<li>今日没有提炼出明确话题。</li>"
	}
	var b strings.Builder
	for _, t := range topics {
		if t.Detail != "" {
			fmt.Fprintf(&b, "<li><b>%s</b>：%s</li>\n", esc(t.Title), esc(t.Detail))
		} else {
			fmt.Fprintf(&b, "<li><b>%s</b></li>\n", esc(t.Title))
		}
	}
	return b.String()
}

func renderQuotes(quotes []summarize.Quote) string {
	if len(quotes) == 0 {
		return "<li>今日暂无金句。</li>"
	}
	var b strings.Builder
	for _, q := range quotes {
		fmt.Fprintf(&b, "<li>「%s」<span class=\"speaker\">——%s</span></li>\n", esc(q.Text), esc(q.Speaker))
	}
	return b.String()
}

// Render 用统计与分析结果填充模板。
func Render(tpl, title string, st Stats, a summarize.Analysis) Report {
	id := uuid.NewString()

	// 只检查模板本身的标记，替换进去的正文（统计/话题/金句）里
	// 出现的 [XXX] 是内容，不告警。
	for _, tag := range unknownTagRe.FindAllString(tpl, -1) {
		switch tag {
		case TagStats, TagTopic, TagQuote:
		default:
			log.Printf("[TAG-UNKNOWN] %s left as-is", tag)
		}
	}

	page := strings.ReplaceAll(tpl, "{{TITLE}}", esc(title))
	page = strings.ReplaceAll(page, "{{REPORT_ID}}", id)
	page = strings.ReplaceAll(page, TagStats, renderStats(st, a.StatsNote))
	page = strings.ReplaceAll(page, TagTopic, renderTopics(a.Topics))
	page = strings.ReplaceAll(page, TagQuote, renderQuotes(a.Quotes))

	return Report{ID: id, Title: title, HTML: page}
}

// LoadTemplate 读取模板文件，path 为空时返回内置模板。
func LoadTemplate(path string) (string, error) {
	if path == "" {
		return DefaultTemplate, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read template failed: %w", err)
	}
	return string(data), nil
}

// Write 落盘日报 HTML。
func (r Report) Write(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(path, []byte(r.HTML), 0o644)
}
