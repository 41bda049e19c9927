package config

import (
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Config 应用配置
type Config struct {
	DataDir       string // EchoTrace 镜像目录（含 Msg/MicroMsg.db 与 Msg/Multi/MSG*.db）
	OutputDir     string // 产物输出目录
	DeepSeekKey   string // DeepSeek API Key
	DeepSeekModel string // 模型名称
	YouTubeKey    string // YouTube Data API Key
	RedisHost     string
	RedisPort     string
	RedisPassword string
	Groups        []string // 被监控的社群目录名列表
	ScanInterval  int      // monitor 扫描间隔(秒)
}

// Load 加载配置。.env 不存在时不报错，全部回退到环境变量/默认值。
func Load(envPath string) (*Config, error) {
	if err := godotenv.Load(envPath); err != nil && !os.IsNotExist(err) {
		return nil, err
	}

	interval, _ := strconv.Atoi(os.Getenv("SCAN_INTERVAL"))
	if interval <= 0 {
		interval = 3
	}

	model := os.Getenv("DEEPSEEK_MODEL")
	if model == "" {
		model = "deepseek-chat"
	}

	var groups []string
	for _, g := range strings.Split(os.Getenv("GROUPS"), ",") {
		if g = strings.TrimSpace(g); g != "" {
			groups = append(groups, g)
		}
	}

	outputDir := os.Getenv("OUTPUT_DIR")
	if outputDir == "" {
		outputDir = "output"
	}

	return &Config{
		DataDir:       os.Getenv("DATA_DIR"),
		OutputDir:     outputDir,
		DeepSeekKey:   os.Getenv("DEEPSEEK_API_KEY"),
		DeepSeekModel: model,
		YouTubeKey:    os.Getenv("YOUTUBE_API_KEY"),
		RedisHost:     getEnv("REDIS_HOST", "localhost"),
		RedisPort:     getEnv("REDIS_PORT", "6379"),
		RedisPassword: os.Getenv("REDIS_PASSWORD"),
		Groups:        groups,
		ScanInterval:  interval,
	}, nil
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
