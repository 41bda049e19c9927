package summarize

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
	"sync"
	"time"
)

const (
	defaultAPIURL = "https://api.deepseek.com/v1/chat/completions"
	maxAttempts   = 3
)

// HTTP Client 连接池，避免频繁创建和销毁
var httpClientPool = sync.Pool{
	New: func() interface{} {
		return &http.Client{
			Timeout: 120 * time.Second,
			Transport: &http.Transport{
				MaxIdleConns:        20,
				MaxIdleConnsPerHost: 20,
				IdleConnTimeout:     90 * time.Second,
			},
		}
	},
}

// Client DeepSeek 聊天补全客户端（OpenAI 兼容协议）。
type Client struct {
	apiURL string
	apiKey string
	model  string
	client *http.Client
}

func NewClient(apiKey, model string) *Client {
	return &Client{
		apiURL: defaultAPIURL,
		apiKey: apiKey,
		model:  model,
		client: httpClientPool.Get().(*http.Client),
	}
}

// Close 释放资源，把 client 放回池中。
func (c *Client) Close() {
	if c.client != nil {
		httpClientPool.Put(c.client)
		c.client = nil
	}
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
	MaxTokens   int           `json:"max_tokens"`
	Stream      bool          `json:"stream"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// Chat 单轮对话。超时类错误带退避重试，最多三次。
func (c *Client) Chat(ctx context.Context, prompt string) (string, error) {
	var lastErr error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		out, err := c.chatOnce(ctx, prompt)
		if err == nil {
			return out, nil
		}
		lastErr = err
		if !retriable(err) || attempt == maxAttempts {
			break
		}
		log.Printf("[RETRY] chat attempt=%d: %v", attempt, err)
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-time.After(time.Duration(attempt) * 2 * time.Second):
		}
	}
	return "", lastErr
}

func (c *Client) chatOnce(ctx context.Context, prompt string) (string, error) {
	reqBody := chatRequest{
		Model:       c.model,
		Messages:    []chatMessage{{Role: "user", Content: prompt}},
		Temperature: 0.3,
		MaxTokens:   2048,
	}
	data, _ := json.Marshal(reqBody)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.apiURL, bytes.NewBuffer(data))
	if err != nil {
		return "", fmt.Errorf("build request failed: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("call deepseek failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("deepseek returned status %d: %s", resp.StatusCode, string(b))
	}

	var out chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("decode response failed: %w", err)
	}
	if len(out.Choices) == 0 {
		return "", fmt.Errorf("deepseek returned empty choices")
	}
	return strings.TrimSpace(out.Choices[0].Message.Content), nil
}

func retriable(err error) bool {
	msg := err.Error()
	return strings.Contains(msg, "timeout") ||
		strings.Contains(msg, "context deadline exceeded") ||
		strings.Contains(msg, "Client.Timeout") ||
		strings.Contains(msg, "status 429") ||
		strings.Contains(msg, "status 5")
}
