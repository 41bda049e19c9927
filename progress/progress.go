package progress

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// DayProgress 单天流水线进度
type DayProgress struct {
	Date      string    `json:"date"`       // 2006-01-02
	Stage     string    `json:"stage"`      // extracted / analyzed / reported / done
	Messages  int       `json:"messages"`   // 当天提取消息数
	Pct       float64   `json:"pct"`        // 阶段进度百分比
	UpdatedAt time.Time `json:"updated_at"` // 最后更新时间
}

// Snapshot 某个社群的整体进度汇总
type Snapshot struct {
	Group      string         `json:"group"`
	TotalDays  int            `json:"total_days"`
	DoneDays   int            `json:"done_days"`
	OverallPct float64        `json:"overall_pct"`
	Days       []*DayProgress `json:"days"`
	ScanTime   time.Time      `json:"scan_time"`
}

// 阶段常量：extract -> analyze -> report 各占一档
const (
	StageExtracted = "extracted"
	StageAnalyzed  = "analyzed"
	StageReported  = "reported"
	StageDone      = "done"
)

var stagePct = map[string]float64{
	StageExtracted: 33.3,
	StageAnalyzed:  66.6,
	StageReported:  90.0,
	StageDone:      100.0,
}

// StagePct 阶段对应的进度百分比，未知阶段按 0。
func StagePct(stage string) float64 { return stagePct[stage] }

// Config Redis 连接配置
type Config struct {
	Host     string
	Port     string
	Password string
}

// Client Redis 客户端封装
type Client struct {
	rdb *redis.Client
}

// NewClient 创建 Redis 客户端并验证连通性。
func NewClient(cfg *Config) (*Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%s", cfg.Host, cfg.Port),
		Password: cfg.Password,
		DB:       0,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis connection failed: %w", err)
	}
	return &Client{rdb: rdb}, nil
}

// Upload 上传进度快照。
func (c *Client) Upload(ctx context.Context, key string, snap *Snapshot) error {
	data, err := json.Marshal(snap)
	if err != nil {
		return err
	}
	return c.rdb.Set(ctx, key, string(data), 0).Err()
}

// Get 读取进度快照。
func (c *Client) Get(ctx context.Context, key string, snap *Snapshot) error {
	data, err := c.rdb.Get(ctx, key).Result()
	if err != nil {
		return err
	}
	return json.Unmarshal([]byte(data), snap)
}

// Close 关闭连接
func (c *Client) Close() error {
	return c.rdb.Close()
}
