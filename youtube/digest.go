package youtube

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// ISO8601 时长，形如 PT1H23M45S / PT45S / P1DT2H
var isoDurationRe = regexp.MustCompile(`^P(?:(\d+)D)?T?(?:(\d+)H)?(?:(\d+)M)?(?:(\d+)S)?$`)

// ParseISODuration 解析 YouTube 返回的 ISO8601 时长，解析失败返回 0。
func ParseISODuration(s string) time.Duration {
	m := isoDurationRe.FindStringSubmatch(s)
	if m == nil {
		return 0
	}
	atoi := func(x string) int {
		if x == "" {
			return 0
		}
		n, _ := strconv.Atoi(x)
		return n
	}
	return time.Duration(atoi(m[1]))*24*time.Hour +
		time.Duration(atoi(m[2]))*time.Hour +
		time.Duration(atoi(m[3]))*time.Minute +
		time.Duration(atoi(m[4]))*time.Second
}

// FormatDuration 以 "1:23:45" / "12:34" 形式展示时长。
func FormatDuration(d time.Duration) string {
	total := int(d.Seconds())
	h, m, s := total/3600, total%3600/60, total%60
	if h > 0 {
		return fmt.Sprintf("%d:%02d:%02d", h, m, s)
	}
	return fmt.Sprintf("%d:%02d", m, s)
}

func formatViews(n int64) string {
	if n >= 10000 {
		return fmt.Sprintf("%.1f万", float64(n)/10000)
	}
	return strconv.FormatInt(n, 10)
}

// BuildDigest 生成频道近期视频的 markdown 摘要。summaries 按视频 ID 提供可选的 AI 摘要。
func BuildDigest(channelTitle string, videos []Video, summaries map[string]string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "## %s 近期更新\n\n", channelTitle)
	if len(videos) == 0 {
		b.WriteString("暂无新视频。\n")
		return b.String()
	}
	for _, v := range videos {
		fmt.Fprintf(&b, "- [%s](%s) · %s · %s 次播放 · %s\n",
			v.Title, v.URL(), FormatDuration(v.Duration), formatViews(v.ViewCount),
			v.PublishedAt.Local().Format("2006-01-02"))
		if s := strings.TrimSpace(summaries[v.ID]); s != "" {
			fmt.Fprintf(&b, "  - %s\n", s)
		}
	}
	return b.String()
}
