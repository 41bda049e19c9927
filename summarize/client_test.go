package summarize

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/require"
)

func fakeChatServer(t *testing.T, status int, content string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		var req chatRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		require.NotEmpty(t, req.Messages)

		if status != http.StatusOK {
			w.WriteHeader(status)
			return
		}
		json.NewEncoder(w).Encode(map[string]any{
			"choices": []map[string]any{
				{"message": map[string]string{"content": content}},
			},
		})
	}))
}

func TestChat(t *testing.T) {
	srv := fakeChatServer(t, http.StatusOK, "  你好  ")
	defer srv.Close()

	c := NewClient("test-key", "deepseek-chat")
	defer c.Close()
	c.apiURL = srv.URL

	out, err := c.Chat(context.Background(), "ping")
	require.NoError(t, err)
	require.Equal(t, "你好", out)
}

func TestChatBadStatus(t *testing.T) {
	srv := fakeChatServer(t, http.StatusUnauthorized, "")
	defer srv.Close()

	c := NewClient("test-key", "deepseek-chat")
	defer c.Close()
	c.apiURL = srv.URL

	_, err := c.Chat(context.Background(), "ping")
	require.Error(t, err)
	require.Contains(t, err.Error(), "status 401")
}

func TestChatRetriesOn5xx(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) < 2 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		w.Write([]byte(`{"choices":[{"message":{"content":"ok"}}]}`))
	}))
	defer srv.Close()

	c := NewClient("test-key", "deepseek-chat")
	defer c.Close()
	c.apiURL = srv.URL

	out, err := c.Chat(context.Background(), "ping")
	require.NoError(t, err)
	require.Equal(t, "ok", out)
	require.Equal(t, int32(2), atomic.LoadInt32(&calls))
}
