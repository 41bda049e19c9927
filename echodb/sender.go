package echodb

import (
	"regexp"
	"strings"
)

// 群消息 StrContent 前缀形如 "wxid_abc123:\n正文" 或 "12345678@chatroom 成员id:\n正文"。
// 只认首行内、冒号前不含空白的 id，避免把正文里的冒号误判为前缀。
var senderPrefixRe = regexp.MustCompile(`^([0-9A-Za-z_\-@.]+):\n`)

// 引用消息 XML 里的标题
var referTitleRe = regexp.MustCompile(`<title>(?s)(.*?)</title>`)

// SplitSender 拆分群消息的发送者前缀与正文。
// 系统消息（Type=10000）无前缀；私聊文本同样无前缀，此时 sender 为空。
func SplitSender(raw string, msgType int) (sender, content string) {
	if msgType == TypeSystem {
		return "", strings.TrimSpace(raw)
	}
	if m := senderPrefixRe.FindStringSubmatch(raw); m != nil {
		return m[1], strings.TrimSpace(raw[len(m[0]):])
	}
	return "", strings.TrimSpace(raw)
}

func referTitle(content string) string {
	if m := referTitleRe.FindStringSubmatch(content); m != nil {
		return strings.TrimSpace(m[1])
	}
	return ""
}

// IsRecallNotice 撤回提示属于系统消息正文，不参与话题分析。
func IsRecallNotice(content string) bool {
	return strings.Contains(content, "撤回了一条消息")
}
