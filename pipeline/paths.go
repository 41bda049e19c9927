package pipeline

import "path/filepath"

// 每天一个产物目录：output/<group>/<date>/
const (
	TranscriptFile = "messages.txt"  // 转写文本（analyze 的输入）
	MessagesFile   = "messages.json" // 结构化消息
	AnalysisFile   = "analysis.json" // 模型分析结果
	ReportFile     = "report.html"   // 日报
	CountFile      = "count.txt"     // 对账检查点
)

// DayDir 某天的产物目录。
func DayDir(outRoot, group, date string) string {
	return filepath.Join(outRoot, group, date)
}
