package journal

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// FrontMatter 日志文件头部的 YAML 元信息。
type FrontMatter struct {
	Title       string `yaml:"title"`
	Date        string `yaml:"date"`
	Description string `yaml:"description"`
}

var sectionRe = regexp.MustCompile(`(?m)^## (\d{4}-\d{2}-\d{2})\s*$`)

// Journal 解析后的运营日志：front matter + 可选引言 + 按日期的小节。
type Journal struct {
	Front    FrontMatter
	preamble string            // front matter 与第一个日期小节之间的手写正文
	sections map[string]string // 日期 -> 小节正文（不含 "## date" 标题行）
}

// Load 读取并解析日志文件；文件不存在时返回带默认头的空日志。
func Load(path, title string) (*Journal, error) {
	j := &Journal{
		Front:    FrontMatter{Title: title, Description: title + "，由 wxops 自动维护。"},
		sections: make(map[string]string),
	}

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return j, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read journal failed: %w", err)
	}

	body := string(data)
	if strings.HasPrefix(body, "---\n") {
		rest := body[4:]
		if idx := strings.Index(rest, "\n---\n"); idx >= 0 {
			if err := yaml.Unmarshal([]byte(rest[:idx]), &j.Front); err != nil {
				return nil, fmt.Errorf("parse front matter failed: %w", err)
			}
			body = rest[idx+5:]
		}
	}

	// 按 "## 日期" 切分小节；第一个小节之前的手写引言原样保留
	locs := sectionRe.FindAllStringSubmatchIndex(body, -1)
	if len(locs) > 0 {
		j.preamble = strings.TrimSpace(body[:locs[0][0]])
	} else {
		j.preamble = strings.TrimSpace(body)
	}
	for i, loc := range locs {
		date := body[loc[2]:loc[3]]
		end := len(body)
		if i+1 < len(locs) {
			end = locs[i+1][0]
		}
		j.sections[date] = strings.TrimSpace(body[loc[1]:end])
	}
	return j, nil
}

// Upsert 写入/覆盖某天的小节。同一天重复执行结果一致。
func (j *Journal) Upsert(date time.Time, content string) {
	j.sections[date.Format("2006-01-02")] = strings.TrimSpace(content)
}

// Section 读取某天的小节正文，不存在时返回空串。
func (j *Journal) Section(date string) string { return j.sections[date] }

// Dates 已有小节的日期，新的在前。
func (j *Journal) Dates() []string {
	out := make([]string, 0, len(j.sections))
	for d := range j.sections {
		out = append(out, d)
	}
	sort.Sort(sort.Reverse(sort.StringSlice(out)))
	return out
}

// Save 原子写回：front matter 的 date 刷新为当天，小节按日期倒序排列。
func (j *Journal) Save(path string) error {
	j.Front.Date = time.Now().Format("2006-01-02")

	fm, err := yaml.Marshal(&j.Front)
	if err != nil {
		return fmt.Errorf("marshal front matter failed: %w", err)
	}

	var b strings.Builder
	b.WriteString("---\n")
	b.Write(fm)
	b.WriteString("---\n")
	if j.preamble != "" {
		fmt.Fprintf(&b, "\n%s\n", j.preamble)
	}
	for _, d := range j.Dates() {
		fmt.Fprintf(&b, "\n## %s\n\n%s\n", d, j.sections[d])
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, []byte(b.String()), 0o644); err != nil {
		return fmt.Errorf("write journal failed: %w", err)
	}
	return os.Rename(tmp, path)
}

// DailyEntry 由日报产物拼一段标准的小节正文。
func DailyEntry(group, reportPath string, total, members int, topics []string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "- 社群：%s\n", group)
	fmt.Fprintf(&b, "- 消息 %d 条 / 活跃 %d 人\n", total, members)
	if len(topics) > 0 {
		fmt.Fprintf(&b, "- 话题：%s\n", strings.Join(topics, "；"))
	}
	fmt.Fprintf(&b, "- 报告：[%s](%s)\n", filepath.Base(reportPath), reportPath)
	return b.String()
}
