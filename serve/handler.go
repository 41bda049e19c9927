package serve

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"sync"
	"time"

	"wxops/progress"
)

// GroupsResponse 社群键列表响应
type GroupsResponse struct {
	Groups []string `json:"groups"`
}

// ProgressHandler 进度查询接口
type ProgressHandler struct {
	client *progress.Client
	groups []string
}

func NewProgressHandler(client *progress.Client, groups []string) *ProgressHandler {
	return &ProgressHandler{client: client, groups: groups}
}

// GetGroups 返回被监控的社群键列表。
func (h *ProgressHandler) GetGroups(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(GroupsResponse{Groups: h.groups})
}

// GetProgress 返回指定社群的进度快照。
func (h *ProgressHandler) GetProgress(w http.ResponseWriter, r *http.Request) {
	group := r.URL.Query().Get("group")
	if group == "" {
		http.Error(w, "group is required", http.StatusBadRequest)
		return
	}

	var snap progress.Snapshot
	if err := h.client.Get(r.Context(), group, &snap); err != nil {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(snap)
}

// SSEHandler 进度事件推送
type SSEHandler struct {
	client    *progress.Client
	groups    []string
	interval  time.Duration
	clients   map[chan string]bool
	mu        sync.RWMutex
	startOnce sync.Once
	stopChan  chan struct{}
}

func NewSSEHandler(client *progress.Client, groups []string, interval time.Duration) *SSEHandler {
	return &SSEHandler{
		client:   client,
		groups:   groups,
		interval: interval,
		clients:  make(map[chan string]bool),
		stopChan: make(chan struct{}),
	}
}

func (h *SSEHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no") // 禁用 nginx 缓冲

	h.startOnce.Do(func() {
		go h.pushLoop()
	})

	clientChan := make(chan string, 16)
	h.addClient(clientChan)
	defer h.removeClient(clientChan)

	// 连接建立后立即推一次当前快照
	if data := h.collect(r.Context()); data != "" {
		fmt.Fprintf(w, "data: %s\n\n", data)
	}
	if f, ok := w.(http.Flusher); ok {
		f.Flush()
	}

	heartbeat := time.NewTicker(20 * time.Second)
	defer heartbeat.Stop()

	for {
		select {
		case data, ok := <-clientChan:
			if !ok {
				return
			}
			fmt.Fprintf(w, "data: %s\n\n", data)
			if f, ok := w.(http.Flusher); ok {
				f.Flush()
			}
		case <-heartbeat.C:
			fmt.Fprintf(w, ": heartbeat\n\n")
			if f, ok := w.(http.Flusher); ok {
				f.Flush()
			}
		case <-r.Context().Done():
			return
		}
	}
}

// collect 汇总所有社群的快照为一条 JSON。
func (h *SSEHandler) collect(ctx context.Context) string {
	all := make(map[string]*progress.Snapshot)
	for _, g := range h.groups {
		var snap progress.Snapshot
		if err := h.client.Get(ctx, g, &snap); err == nil {
			all[g] = &snap
		}
	}
	if len(all) == 0 {
		return ""
	}
	data, err := json.Marshal(all)
	if err != nil {
		return ""
	}
	return string(data)
}

func (h *SSEHandler) addClient(c chan string) {
	h.mu.Lock()
	h.clients[c] = true
	h.mu.Unlock()
}

func (h *SSEHandler) removeClient(c chan string) {
	h.mu.Lock()
	delete(h.clients, c)
	close(c)
	h.mu.Unlock()
}

// Stop 停止推送循环（测试用）。
func (h *SSEHandler) Stop() { close(h.stopChan) }

func (h *SSEHandler) pushLoop() {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("[SSE-PANIC] push loop: %v", r)
		}
	}()

	ticker := time.NewTicker(h.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
			data := h.collect(ctx)
			cancel()
			if data == "" {
				continue
			}
			h.mu.RLock()
			for c := range h.clients {
				select {
				case c <- data:
				default: // 慢客户端丢弃本轮数据
				}
			}
			h.mu.RUnlock()
		case <-h.stopChan:
			return
		}
	}
}
