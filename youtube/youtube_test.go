package youtube

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestParseISODuration(t *testing.T) {
	require.Equal(t, time.Hour+23*time.Minute+45*time.Second, ParseISODuration("PT1H23M45S"))
	require.Equal(t, 45*time.Second, ParseISODuration("PT45S"))
	require.Equal(t, 26*time.Hour, ParseISODuration("P1DT2H"))
	require.Equal(t, time.Duration(0), ParseISODuration("garbage"))
}

func TestFormatDuration(t *testing.T) {
	require.Equal(t, "1:02:03", FormatDuration(time.Hour+2*time.Minute+3*time.Second))
	require.Equal(t, "12:05", FormatDuration(12*time.Minute+5*time.Second))
	require.Equal(t, "0:45", FormatDuration(45*time.Second))
}

func TestRecentUploads(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "test-key", r.URL.Query().Get("key"))
		switch r.URL.Path {
		case "/search":
			require.Equal(t, "UC123", r.URL.Query().Get("channelId"))
			w.Write([]byte(`{"items":[
                {"id":{"videoId":"v1"},"snippet":{"title":"第一期","description":"d1","publishedAt":"2025-06-01T08:00:00Z"}},
                {"id":{"videoId":"v2"},"snippet":{"title":"第二期","description":"d2","publishedAt":"2025-06-02T08:00:00Z"}}
            ]}`))
		case "/videos":
			require.Equal(t, "v1,v2", r.URL.Query().Get("id"))
			w.Write([]byte(`{"items":[
                {"id":"v1","contentDetails":{"duration":"PT10M30S"},"statistics":{"viewCount":"12345"}},
                {"id":"v2","contentDetails":{"duration":"PT1H2M"},"statistics":{"viewCount":"678"}}
            ]}`))
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	c := NewClient("test-key")
	c.baseURL = srv.URL

	videos, err := c.RecentUploads(context.Background(), "UC123", 5)
	require.NoError(t, err)
	require.Len(t, videos, 2)
	require.Equal(t, "第一期", videos[0].Title)
	require.Equal(t, 10*time.Minute+30*time.Second, videos[0].Duration)
	require.Equal(t, int64(12345), videos[0].ViewCount)
	require.Equal(t, "https://www.youtube.com/watch?v=v2", videos[1].URL())
}

func TestBuildDigest(t *testing.T) {
	videos := []Video{
		{ID: "v1", Title: "第一期", PublishedAt: time.Date(2025, 6, 1, 8, 0, 0, 0, time.UTC),
			Duration: 10 * time.Minute, ViewCount: 23456},
	}
	md := BuildDigest("示例频道", videos, map[string]string{"v1": "一句话摘要"})
	require.Contains(t, md, "## 示例频道 近期更新")
	require.Contains(t, md, "[第一期](https://www.youtube.com/watch?v=v1)")
	require.Contains(t, md, "2.3万 次播放")
	require.Contains(t, md, "  - 一句话摘要")

	require.Contains(t, BuildDigest("空", nil, nil), "暂无新视频")
}
