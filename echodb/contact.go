package echodb

import (
	"database/sql"
	"log"
	"strings"
)

// Resolver 三级展示名解析：群备注(Remark) -> 联系人昵称(NickName) -> 原始 wxid。
// 同一次运行内带缓存；查不到的 wxid 只告警一次。
type Resolver struct {
	db     *sql.DB
	cache  map[string]string
	missed map[string]struct{}
}

func NewResolver(s *Store) *Resolver {
	return &Resolver{
		db:     s.MicroMsgDB,
		cache:  make(map[string]string),
		missed: make(map[string]struct{}),
	}
}

// Display 返回 wxid 的展示名。
func (r *Resolver) Display(wxid string) string {
	wxid = strings.TrimSpace(wxid)
	if wxid == "" {
		return ""
	}
	if name, ok := r.cache[wxid]; ok {
		return name
	}

	var remark, nick string
	err := r.db.QueryRow(`SELECT ifnull(Remark,''), ifnull(NickName,'') FROM Contact WHERE UserName = ?`, wxid).
		Scan(&remark, &nick)
	if err != nil {
		if _, warned := r.missed[wxid]; !warned {
			log.Printf("[NAME-MISS] %s: %v", wxid, err)
			r.missed[wxid] = struct{}{}
		}
		r.cache[wxid] = wxid
		return wxid
	}

	name := strings.TrimSpace(remark)
	if name == "" {
		name = strings.TrimSpace(nick)
	}
	if name == "" {
		name = wxid
	}
	r.cache[wxid] = name
	return name
}

// FillDisplay 批量填充消息的展示名。
func (r *Resolver) FillDisplay(msgs []Message) {
	for i := range msgs {
		if msgs[i].Sender != "" {
			msgs[i].Display = r.Display(msgs[i].Sender)
		}
	}
}

// MissCount 本次运行未能解析的 wxid 数。
func (r *Resolver) MissCount() int { return len(r.missed) }
