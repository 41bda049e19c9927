package report

import (
	"sort"
	"time"

	"wxops/echodb"
)

// SpeakerCount 发言榜单条目。
type SpeakerCount struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

// Stats 当天的本地统计。统计永远基于提取到的消息本身计算，不信任模型输出。
type Stats struct {
	Date          string         `json:"date"`
	Total         int            `json:"total"`
	ActiveMembers int            `json:"active_members"`
	PeakHour      int            `json:"peak_hour"`
	PeakCount     int            `json:"peak_count"`
	TopSpeakers   []SpeakerCount `json:"top_speakers"`
}

// BuildStats 计算当天统计。topN 控制发言榜长度。
func BuildStats(date time.Time, msgs []echodb.Message, topN int) Stats {
	st := Stats{Date: date.Format("2006-01-02")}
	if topN <= 0 {
		topN = 5
	}

	byMember := make(map[string]int)
	byHour := make(map[int]int)
	for _, m := range msgs {
		if !echodb.IsCountable(m) {
			continue
		}
		st.Total++
		name := m.Display
		if name == "" {
			name = m.Sender
		}
		byMember[name]++
		byHour[m.Time().Hour()]++
	}
	st.ActiveMembers = len(byMember)

	for h, n := range byHour {
		if n > st.PeakCount || (n == st.PeakCount && h < st.PeakHour) {
			st.PeakHour, st.PeakCount = h, n
		}
	}

	for name, n := range byMember {
		st.TopSpeakers = append(st.TopSpeakers, SpeakerCount{Name: name, Count: n})
	}
	sort.Slice(st.TopSpeakers, func(i, j int) bool {
		if st.TopSpeakers[i].Count != st.TopSpeakers[j].Count {
			return st.TopSpeakers[i].Count > st.TopSpeakers[j].Count
		}
		return st.TopSpeakers[i].Name < st.TopSpeakers[j].Name
	})
	if len(st.TopSpeakers) > topN {
		st.TopSpeakers = st.TopSpeakers[:topN]
	}
	return st
}

// MemberActivity 跨天的成员活跃汇总（用于 xlsx 导出）。
type MemberActivity struct {
	Name       string
	Messages   int
	ActiveDays int
	FirstSeen  time.Time
	LastSeen   time.Time
}

// BuildMemberActivity 汇总一段时间内每个成员的发言量、活跃天数与首末出现时间。
func BuildMemberActivity(msgs []echodb.Message) []MemberActivity {
	type acc struct {
		count int
		days  map[string]struct{}
		first time.Time
		last  time.Time
	}
	byName := make(map[string]*acc)
	for _, m := range msgs {
		if !echodb.IsCountable(m) {
			continue
		}
		name := m.Display
		if name == "" {
			name = m.Sender
		}
		a, ok := byName[name]
		if !ok {
			a = &acc{days: make(map[string]struct{}), first: m.Time(), last: m.Time()}
			byName[name] = a
		}
		a.count++
		a.days[m.Time().Format("2006-01-02")] = struct{}{}
		if m.Time().Before(a.first) {
			a.first = m.Time()
		}
		if m.Time().After(a.last) {
			a.last = m.Time()
		}
	}

	var out []MemberActivity
	for name, a := range byName {
		out = append(out, MemberActivity{
			Name:       name,
			Messages:   a.count,
			ActiveDays: len(a.days),
			FirstSeen:  a.first,
			LastSeen:   a.last,
		})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Messages != out[j].Messages {
			return out[i].Messages > out[j].Messages
		}
		return out[i].Name < out[j].Name
	})
	return out
}
