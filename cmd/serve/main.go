package main

// 进度查看服务：
// - /api/groups   被监控的社群列表
// - /api/progress 指定社群的进度快照（?group=）
// - /api/stream   SSE 实时推送全部社群快照
// - /            报告产物目录的静态文件服务

import (
	"log"
	"net/http"
	"os"
	"time"

	"github.com/rs/cors"

	"wxops/config"
	"wxops/progress"
	"wxops/serve"
)

func main() {
	cfg, err := config.Load(".env")
	if err != nil {
		log.Fatalf("load config failed: %v", err)
	}

	port := getEnv("PORT", "8080")
	groups := cfg.Groups
	if len(groups) == 0 {
		log.Fatalf("GROUPS 未配置")
	}

	log.Printf("Starting server on port %s", port)
	log.Printf("Monitoring groups: %v", groups)
	log.Printf("Update interval: %ds", cfg.ScanInterval)

	rc, err := progress.NewClient(&progress.Config{
		Host:     cfg.RedisHost,
		Port:     cfg.RedisPort,
		Password: cfg.RedisPassword,
	})
	if err != nil {
		log.Fatalf("Failed to connect Redis: %v", err)
	}
	defer rc.Close()

	progressHandler := serve.NewProgressHandler(rc, groups)
	sseHandler := serve.NewSSEHandler(rc, groups, time.Duration(cfg.ScanInterval)*time.Second)

	mux := http.NewServeMux()

	// 报告产物目录直接做静态文件服务，浏览器可直接打开日报 HTML
	mux.Handle("/", http.FileServer(http.Dir(cfg.OutputDir)))

	mux.HandleFunc("/api/groups", progressHandler.GetGroups)
	mux.HandleFunc("/api/progress", progressHandler.GetProgress)
	mux.Handle("/api/stream", sseHandler)

	c := cors.New(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"*"},
	})

	server := &http.Server{
		Addr:         ":" + port,
		Handler:      c.Handler(mux),
		ReadTimeout:  60 * time.Second,
		WriteTimeout: 300 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	if err := server.ListenAndServe(); err != nil {
		log.Fatalf("Server failed: %v", err)
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
