package echodb

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"
)

// 消息类型常量（与微信本地库 Type/SubType 对齐）
const (
	TypeText     = 1
	TypePicture  = 3
	TypeVoice    = 34
	TypeCard     = 42
	TypeVideo    = 43
	TypeEmoji    = 47
	TypeLocation = 48
	TypeMisc     = 49
	TypeVoip     = 50
	TypeSystem   = 10000
)

const (
	MiscFile      = 6
	MiscForward   = 19
	MiscApplet    = 33
	MiscApplet2   = 36
	MiscChannels  = 51
	MiscRefer     = 57
	MiscTransfer  = 2000
	MiscRedPacket = 2003
)

// Message 一条提取后的群消息。Sender 是 wxid，Display 由 Resolver 另行填充。
type Message struct {
	LocalID    int64  `json:"local_id"`
	Type       int    `json:"type"`
	SubType    int    `json:"sub_type"`
	IsSender   int    `json:"is_sender"`
	CreateTime int64  `json:"create_time"`
	Sender     string `json:"sender"`
	Display    string `json:"display"`
	Content    string `json:"content"`
}

// Time 消息本地时间。
func (m *Message) Time() time.Time { return time.Unix(m.CreateTime, 0) }

// MessagesBetween 按时间范围提取目标会话消息，跨分片合并后按 CreateTime 排序。
// 群消息的 StrContent 带 "wxid:\n正文" 前缀，这里完成发送者/正文拆分。
func (s *Store) MessagesBetween(ctx context.Context, talker string, start, end time.Time) ([]Message, error) {
	var all []Message
	for i, db := range s.shards {
		rows, err := db.QueryContext(ctx, `SELECT localId, Type, SubType, IsSender, CreateTime,
            ifnull(StrContent,'') as StrContent
            FROM MSG
            WHERE StrTalker = ? AND CreateTime >= ? AND CreateTime < ?
            ORDER BY CreateTime ASC`, talker, start.Unix(), end.Unix())
		if err != nil {
			return nil, fmt.Errorf("query shard %s failed: %w", s.shardPaths[i], err)
		}
		for rows.Next() {
			var m Message
			var raw string
			if err := rows.Scan(&m.LocalID, &m.Type, &m.SubType, &m.IsSender, &m.CreateTime, &raw); err != nil {
				rows.Close()
				return nil, fmt.Errorf("scan shard %s failed: %w", s.shardPaths[i], err)
			}
			m.Sender, m.Content = SplitSender(raw, m.Type)
			all = append(all, m)
		}
		err = rows.Err()
		rows.Close()
		if err != nil {
			return nil, fmt.Errorf("iterate shard %s failed: %w", s.shardPaths[i], err)
		}
	}

	sort.Slice(all, func(i, j int) bool {
		if all[i].CreateTime != all[j].CreateTime {
			return all[i].CreateTime < all[j].CreateTime
		}
		return all[i].LocalID < all[j].LocalID
	})
	return all, nil
}

// MessagesOn 提取某一天（本地时区）的消息。
func (s *Store) MessagesOn(ctx context.Context, talker string, day time.Time) ([]Message, error) {
	start := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, day.Location())
	return s.MessagesBetween(ctx, talker, start, start.AddDate(0, 0, 1))
}

// RenderText 将消息渲染为日报可读文本，媒体类型给出占位符。
func RenderText(m Message) string {
	switch m.Type {
	case TypeText:
		return m.Content
	case TypePicture:
		return "[图片]"
	case TypeVoice:
		return "[语音]"
	case TypeCard:
		return "[名片]"
	case TypeVideo:
		return "[视频]"
	case TypeEmoji:
		return "[表情]"
	case TypeLocation:
		return "[位置]"
	case TypeVoip:
		return "[通话]"
	case TypeSystem:
		return "[系统消息] " + m.Content
	case TypeMisc:
		switch m.SubType {
		case MiscFile:
			return "[文件]"
		case MiscForward:
			return "[聊天记录]"
		case MiscApplet, MiscApplet2:
			return "[小程序]"
		case MiscChannels:
			return "[视频号]"
		case MiscRefer:
			// 引用消息正文在 XML title 字段里，正则截取失败时整体占位
			if t := referTitle(m.Content); t != "" {
				return t
			}
			return "[引用消息]"
		case MiscTransfer:
			return "[转账]"
		case MiscRedPacket:
			return "[红包]"
		default:
			return "[链接]"
		}
	default:
		return strings.TrimSpace(m.Content)
	}
}

// IsCountable 是否计入活跃统计。系统消息、撤回提示不算成员发言。
func IsCountable(m Message) bool {
	if m.Type == TypeSystem || IsRecallNotice(m.Content) {
		return false
	}
	return m.Sender != ""
}
