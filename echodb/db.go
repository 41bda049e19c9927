package echodb

import (
	"database/sql"
	"fmt"
	"log"
	"os"
	"path/filepath"

	_ "github.com/mattn/go-sqlite3"
)

// Store 持有 EchoTrace 镜像目录下的各个 SQLite 库连接。
// MicroMsg.db 存联系人/群信息，消息分片在 Msg/Multi/MSG*.db。
type Store struct {
	DataDir    string
	MicroMsgDB *sql.DB
	shards     []*sql.DB
	shardPaths []string
}

func openReadOnly(path string) (*sql.DB, error) {
	dsn := fmt.Sprintf("file:%s?mode=ro&_busy_timeout=10000", path)
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("open %s failed: %w", path, err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("connect %s failed: %w", path, err)
	}
	return db, nil
}

// Open 打开镜像目录并发现包含目标会话的消息分片。
// 分片命名兼容 MSG.db 与 MSG0.db 起始的两种布局，遇到第一个缺失编号即停止探测。
func Open(dataDir, talker string) (*Store, error) {
	microPath := filepath.Join(dataDir, "Msg", "MicroMsg.db")
	microDB, err := openReadOnly(microPath)
	if err != nil {
		return nil, err
	}

	s := &Store{DataDir: dataDir, MicroMsgDB: microDB}

	msgDir := filepath.Join(dataDir, "Msg", "Multi")
	for i := 0; ; i++ {
		var msgPath string
		if i == 0 {
			msgPath = filepath.Join(msgDir, "MSG.db")
			if _, err := os.Stat(msgPath); os.IsNotExist(err) {
				msgPath = filepath.Join(msgDir, "MSG0.db")
			}
		} else {
			msgPath = filepath.Join(msgDir, fmt.Sprintf("MSG%d.db", i))
		}
		if _, err := os.Stat(msgPath); os.IsNotExist(err) {
			break
		}

		db, err := openReadOnly(msgPath)
		if err != nil {
			log.Printf("[SHARD-SKIP] %s: %v", msgPath, err)
			continue
		}

		// 只保留含目标会话消息的分片
		var count int
		if err := db.QueryRow(`SELECT COUNT(1) FROM MSG WHERE StrTalker = ?`, talker).Scan(&count); err != nil {
			log.Printf("[SHARD-SKIP] %s: count failed: %v", msgPath, err)
			db.Close()
			continue
		}
		if count == 0 {
			db.Close()
			continue
		}
		log.Printf("[SHARD] %s: %d messages", filepath.Base(msgPath), count)
		s.shards = append(s.shards, db)
		s.shardPaths = append(s.shardPaths, msgPath)
	}

	if len(s.shards) == 0 {
		s.Close()
		return nil, fmt.Errorf("no message shard contains talker %s", talker)
	}
	return s, nil
}

func (s *Store) ShardCount() int { return len(s.shards) }

func (s *Store) Close() {
	if s.MicroMsgDB != nil {
		s.MicroMsgDB.Close()
		s.MicroMsgDB = nil
	}
	for _, db := range s.shards {
		db.Close()
	}
	s.shards = nil
}
