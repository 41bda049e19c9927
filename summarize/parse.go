package summarize

import (
	"regexp"
	"strings"
)

// Topic 一条讨论话题。
type Topic struct {
	Title  string `json:"title"`
	Detail string `json:"detail"`
}

// Quote 一条金句。
type Quote struct {
	Text    string `json:"text"`
	Speaker string `json:"speaker"`
}

// Analysis 模型输出解析后的结构化结果。
type Analysis struct {
	StatsNote string  `json:"stats_note"`
	Topics    []Topic `json:"topics"`
	Quotes    []Quote `json:"quotes"`
}

var (
	sectionRe = regexp.MustCompile(`^【(数据观察|话题|金句)】`)
	// 话题条目：markdown 加粗标题 + 可选冒号与描述
	topicRe = regexp.MustCompile(`^\s*[\*\-•]\s+\*\*(.+?)\*\*[:：]?[\s–-]*(.*)$`)
	// 金句条目：「内容」——发言人（兼容英文引号与双连字符）
	quoteRe     = regexp.MustCompile(`^\s*[\*\-•]\s*[「"“](.+?)[」"”]\s*(?:——|--|—)\s*(.+)$`)
	quoteBareRe = regexp.MustCompile(`^\s*[\*\-•]\s*(.+?)\s*(?:——|--)\s*(.+)$`)
)

// Parse 按【小节】标记扫描模型输出。模型输出格式不稳定，逐行正则解析，
// 解析不出的行并入当前小节的自由文本（仅数据观察小节保留自由文本）。
func Parse(output string) Analysis {
	var a Analysis
	var section string
	var statsLines []string

	for _, line := range strings.Split(output, "\n") {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			continue
		}
		if m := sectionRe.FindStringSubmatch(trimmed); m != nil {
			section = m[1]
			// 标题同行可能直接跟内容
			rest := strings.TrimSpace(trimmed[len(m[0]):])
			if rest != "" && section == "数据观察" {
				statsLines = append(statsLines, rest)
			}
			continue
		}

		switch section {
		case "数据观察":
			statsLines = append(statsLines, trimmed)
		case "话题":
			if m := topicRe.FindStringSubmatch(trimmed); m != nil {
				a.Topics = append(a.Topics, Topic{
					Title:  strings.TrimSpace(m[1]),
					Detail: strings.TrimSpace(m[2]),
				})
			} else if len(a.Topics) > 0 {
				// 换行续写的描述并入上一条
				last := &a.Topics[len(a.Topics)-1]
				if last.Detail != "" {
					last.Detail += " "
				}
				last.Detail += trimmed
			}
		case "金句":
			if m := quoteRe.FindStringSubmatch(trimmed); m != nil {
				a.Quotes = append(a.Quotes, Quote{
					Text:    strings.TrimSpace(m[1]),
					Speaker: strings.TrimSpace(m[2]),
				})
			} else if m := quoteBareRe.FindStringSubmatch(trimmed); m != nil {
				a.Quotes = append(a.Quotes, Quote{
					Text:    strings.Trim(strings.TrimSpace(m[1]), `「」""“”`),
					Speaker: strings.TrimSpace(m[2]),
				})
			}
		}
	}

	a.StatsNote = strings.Join(statsLines, "\n")
	return a
}

// Merge 合并多个分块的解析结果（长聊天记录分块摘要后归并）。
func Merge(parts []Analysis) Analysis {
	var out Analysis
	var notes []string
	for _, p := range parts {
		if p.StatsNote != "" {
			notes = append(notes, p.StatsNote)
		}
		out.Topics = append(out.Topics, p.Topics...)
		out.Quotes = append(out.Quotes, p.Quotes...)
	}
	out.StatsNote = strings.Join(notes, "\n")
	return out
}
