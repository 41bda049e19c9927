package summarize

import (
	"context"
	"fmt"
	"log"
	"strings"

	"wxops/echodb"
)

// 单次请求的转写文本预算（按 rune 计），超出则分块摘要再归并。
const chunkBudget = 12000

const analystPrompt = `你是一个微信社群的运营分析师。以下是社群某天的聊天转写，请完成：
1. 用一两句话概括当天讨论氛围与数据观察
2. 提炼 3-5 个讨论话题，每条一行，格式：- **话题标题**：一句话描述
3. 摘选 1-3 条值得回味的金句，格式：- 「原文」——发言人

严格按下面三个小节输出，不要添加其他内容：
【数据观察】
【话题】
【金句】

聊天转写：
%s`

const reducePrompt = `以下是同一天聊天记录分段分析后的多份结果，请合并去重，
保留最有代表性的 3-5 个话题与 1-3 条金句，输出格式与输入相同（【数据观察】【话题】【金句】三个小节）：

%s`

// Transcript 将消息渲染为 "HH:MM 发言人: 内容" 的转写文本。
func Transcript(msgs []echodb.Message) string {
	var b strings.Builder
	for _, m := range msgs {
		if m.Type == echodb.TypeSystem {
			continue
		}
		name := m.Display
		if name == "" {
			name = m.Sender
		}
		fmt.Fprintf(&b, "%s %s: %s\n", m.Time().Format("15:04"), name, echodb.RenderText(m))
	}
	return b.String()
}

// Analyze 对一天的消息做摘要。转写超过预算时分块请求再用一次归并请求收敛。
func (c *Client) Analyze(ctx context.Context, msgs []echodb.Message) (Analysis, error) {
	transcript := Transcript(msgs)
	if strings.TrimSpace(transcript) == "" {
		return Analysis{}, fmt.Errorf("transcript is empty")
	}

	chunks := splitChunks(transcript, chunkBudget)
	if len(chunks) == 1 {
		out, err := c.Chat(ctx, fmt.Sprintf(analystPrompt, chunks[0]))
		if err != nil {
			return Analysis{}, fmt.Errorf("analyze failed: %w", err)
		}
		return Parse(out), nil
	}

	log.Printf("[CHUNK] transcript split into %d parts", len(chunks))
	var raws []string
	for i, chunk := range chunks {
		out, err := c.Chat(ctx, fmt.Sprintf(analystPrompt, chunk))
		if err != nil {
			return Analysis{}, fmt.Errorf("analyze chunk %d/%d failed: %w", i+1, len(chunks), err)
		}
		raws = append(raws, out)
	}

	merged, err := c.Chat(ctx, fmt.Sprintf(reducePrompt, strings.Join(raws, "\n\n---\n\n")))
	if err != nil {
		// 归并请求失败时退化为本地合并，不丢弃已有结果
		log.Printf("[REDUCE-FALLBACK] merge call failed, fall back to local merge: %v", err)
		var parts []Analysis
		for _, raw := range raws {
			parts = append(parts, Parse(raw))
		}
		return Merge(parts), nil
	}
	return Parse(merged), nil
}

// splitChunks 按行切分，保证每块不超过 budget 个 rune；单行超长时硬切。
func splitChunks(text string, budget int) []string {
	if len([]rune(text)) <= budget {
		return []string{text}
	}
	var chunks []string
	var cur strings.Builder
	curLen := 0
	for _, line := range strings.SplitAfter(text, "\n") {
		n := len([]rune(line))
		if curLen > 0 && curLen+n > budget {
			chunks = append(chunks, cur.String())
			cur.Reset()
			curLen = 0
		}
		if n > budget {
			runes := []rune(line)
			for len(runes) > budget {
				chunks = append(chunks, string(runes[:budget]))
				runes = runes[budget:]
			}
			cur.WriteString(string(runes))
			curLen = len(runes)
			continue
		}
		cur.WriteString(line)
		curLen += n
	}
	if curLen > 0 {
		chunks = append(chunks, cur.String())
	}
	return chunks
}
