package pipeline

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"wxops/echodb"
)

// CountInfo 当天流水线的对账检查点。
// - total: 时间范围内提取到的全部消息数（含系统消息）
// - countable: 计入统计的成员发言数
// - topics / quotes: 分析产出的条目数
// - ok: 落盘时三方一致（transcript/analysis/report 均存在且计数自洽）
type CountInfo struct {
	Total     int
	Countable int
	Topics    int
	Quotes    int
	OK        bool
}

func (c CountInfo) Valid() bool {
	if !c.OK {
		return false
	}
	if c.Total < 0 || c.Countable < 0 || c.Topics < 0 || c.Quotes < 0 {
		return false
	}
	return c.Countable <= c.Total
}

// ReadCount 读取 count.txt。键缺失或格式错误视为检查点无效。
func ReadCount(path string) (CountInfo, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return CountInfo{}, err
	}

	var out CountInfo
	var hasTotal, hasCountable, hasTopics, hasQuotes, hasOK bool

	for _, line := range strings.Split(string(b), "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		parts := strings.SplitN(line, "=", 2)
		if len(parts) != 2 {
			return CountInfo{}, fmt.Errorf("invalid count.txt line: %q", line)
		}
		key := strings.TrimSpace(parts[0])
		val := strings.TrimSpace(parts[1])
		switch key {
		case "total":
			n, err := strconv.Atoi(val)
			if err != nil {
				return CountInfo{}, fmt.Errorf("parse total failed: %w", err)
			}
			out.Total = n
			hasTotal = true
		case "countable":
			n, err := strconv.Atoi(val)
			if err != nil {
				return CountInfo{}, fmt.Errorf("parse countable failed: %w", err)
			}
			out.Countable = n
			hasCountable = true
		case "topics":
			n, err := strconv.Atoi(val)
			if err != nil {
				return CountInfo{}, fmt.Errorf("parse topics failed: %w", err)
			}
			out.Topics = n
			hasTopics = true
		case "quotes":
			n, err := strconv.Atoi(val)
			if err != nil {
				return CountInfo{}, fmt.Errorf("parse quotes failed: %w", err)
			}
			out.Quotes = n
			hasQuotes = true
		case "ok":
			switch strings.ToLower(val) {
			case "true":
				out.OK = true
			case "false":
				out.OK = false
			default:
				return CountInfo{}, fmt.Errorf("parse ok failed: %q", val)
			}
			hasOK = true
		}
	}

	if !hasTotal || !hasCountable || !hasTopics || !hasQuotes || !hasOK {
		return CountInfo{}, fmt.Errorf("count.txt missing keys (total=%v countable=%v topics=%v quotes=%v ok=%v)",
			hasTotal, hasCountable, hasTopics, hasQuotes, hasOK)
	}
	return out, nil
}

// VerifyCount 对账检查点与产物：messages.json 的消息数必须等于 total，
// 其中可计数消息数必须等于 countable。对不上说明产物被改动或提取不完整。
func VerifyCount(dir string, ci CountInfo) error {
	msgs, err := ReadMessages(dir)
	if err != nil {
		return fmt.Errorf("read %s failed: %w", MessagesFile, err)
	}
	if len(msgs) != ci.Total {
		return fmt.Errorf("count mismatch: count.txt total=%d but %s has %d", ci.Total, MessagesFile, len(msgs))
	}
	countable := 0
	for i := range msgs {
		if echodb.IsCountable(msgs[i]) {
			countable++
		}
	}
	if countable != ci.Countable {
		return fmt.Errorf("count mismatch: count.txt countable=%d but %s has %d", ci.Countable, MessagesFile, countable)
	}
	return nil
}

// WriteCount 写 count.txt（严格校验）。计数不自洽时拒绝写入，交由上层重试。
func WriteCount(path string, ci CountInfo) error {
	if ci.Countable > ci.Total || ci.Total < 0 {
		return fmt.Errorf("count mismatch: total=%d countable=%d", ci.Total, ci.Countable)
	}
	ci.OK = true
	content := fmt.Sprintf("total=%d\ncountable=%d\ntopics=%d\nquotes=%d\nok=%v\n",
		ci.Total, ci.Countable, ci.Topics, ci.Quotes, ci.OK)
	return os.WriteFile(path, []byte(content), 0o644)
}
