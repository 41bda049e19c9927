package report

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// IndexEntry 台账里一天的报告记录。
type IndexEntry struct {
	Date      string // 2006-01-02
	ReportID  string
	Total     int
	Countable int
	Topics    int
	Quotes    int
	UpdatedAt string // RFC3339，落库时刷新
}

// Index 报告产物台账（output/<group>/index.db）。
// 每个社群一个库，按日期一行，重复生成按日期 UPSERT。
type Index struct {
	db *sql.DB
}

// OpenIndex 打开（必要时创建）台账库。
func OpenIndex(path string) (*Index, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}
	// WAL / NORMAL / 忙等待，与镜像读取端互不阻塞
	dsn := fmt.Sprintf("file:%s?_journal_mode=WAL&_synchronous=NORMAL&_busy_timeout=60000", path)
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("open index db failed: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("connect index db failed: %w", err)
	}
	schema := []string{
		`CREATE TABLE IF NOT EXISTS reports (
            date TEXT PRIMARY KEY,
            report_id TEXT NOT NULL,
            total INTEGER NOT NULL,
            countable INTEGER NOT NULL,
            topics INTEGER NOT NULL,
            quotes INTEGER NOT NULL,
            updated_at TEXT NOT NULL
        );`,
		`CREATE INDEX IF NOT EXISTS idx_reports_updated ON reports(updated_at);`,
	}
	for _, stmt := range schema {
		if _, err := db.Exec(stmt); err != nil {
			db.Close()
			return nil, fmt.Errorf("init index schema failed: %w", err)
		}
	}
	return &Index{db: db}, nil
}

func (x *Index) Close() error { return x.db.Close() }

// Record 批量落账，单事务 + 预编译语句，按日期 UPSERT。
func (x *Index) Record(ctx context.Context, entries []IndexEntry) error {
	if len(entries) == 0 {
		return nil
	}
	now := time.Now().UTC().Format(time.RFC3339)

	tx, err := x.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	stmt, err := tx.PrepareContext(ctx, `INSERT INTO reports(date, report_id, total, countable, topics, quotes, updated_at)
        VALUES (?, ?, ?, ?, ?, ?, ?)
        ON CONFLICT(date) DO UPDATE SET
            report_id=excluded.report_id,
            total=excluded.total,
            countable=excluded.countable,
            topics=excluded.topics,
            quotes=excluded.quotes,
            updated_at=excluded.updated_at`)
	if err != nil {
		tx.Rollback()
		return err
	}
	for _, e := range entries {
		if _, err := stmt.ExecContext(ctx, e.Date, e.ReportID, e.Total, e.Countable, e.Topics, e.Quotes, now); err != nil {
			stmt.Close()
			tx.Rollback()
			return fmt.Errorf("record %s failed: %w", e.Date, err)
		}
	}
	stmt.Close()
	return tx.Commit()
}

// Day 读取某天的记录。
func (x *Index) Day(ctx context.Context, date string) (IndexEntry, error) {
	var e IndexEntry
	err := x.db.QueryRowContext(ctx, `SELECT date, report_id, total, countable, topics, quotes, updated_at
        FROM reports WHERE date = ?`, date).
		Scan(&e.Date, &e.ReportID, &e.Total, &e.Countable, &e.Topics, &e.Quotes, &e.UpdatedAt)
	if err != nil {
		return e, err
	}
	return e, nil
}

// Days 全部记录，新日期在前。
func (x *Index) Days(ctx context.Context) ([]IndexEntry, error) {
	rows, err := x.db.QueryContext(ctx, `SELECT date, report_id, total, countable, topics, quotes, updated_at
        FROM reports ORDER BY date DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []IndexEntry
	for rows.Next() {
		var e IndexEntry
		if err := rows.Scan(&e.Date, &e.ReportID, &e.Total, &e.Countable, &e.Topics, &e.Quotes, &e.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}
