package youtube

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

const defaultBaseURL = "https://www.googleapis.com/youtube/v3"

// Video 一条视频元数据。
type Video struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	PublishedAt time.Time `json:"published_at"`
	Duration    time.Duration
	ViewCount   int64 `json:"view_count"`
}

// URL 视频链接。
func (v Video) URL() string { return "https://www.youtube.com/watch?v=" + v.ID }

// Client YouTube Data API v3 客户端。
type Client struct {
	apiKey  string
	baseURL string
	client  *http.Client
}

func NewClient(apiKey string) *Client {
	return &Client{
		apiKey:  apiKey,
		baseURL: defaultBaseURL,
		client: &http.Client{
			Timeout: 30 * time.Second,
			Transport: &http.Transport{
				MaxIdleConns:        10,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     60 * time.Second,
			},
		},
	}
}

func (c *Client) get(ctx context.Context, path string, params url.Values, out interface{}) error {
	params.Set("key", c.apiKey)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path+"?"+params.Encode(), nil)
	if err != nil {
		return fmt.Errorf("build request failed: %w", err)
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("call youtube api failed: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("youtube api returned status %d: %s", resp.StatusCode, string(b))
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response failed: %w", err)
	}
	return nil
}

type searchResponse struct {
	Items []struct {
		ID struct {
			VideoID string `json:"videoId"`
		} `json:"id"`
		Snippet struct {
			Title       string    `json:"title"`
			Description string    `json:"description"`
			PublishedAt time.Time `json:"publishedAt"`
		} `json:"snippet"`
	} `json:"items"`
}

type videosResponse struct {
	Items []struct {
		ID             string `json:"id"`
		ContentDetails struct {
			Duration string `json:"duration"`
		} `json:"contentDetails"`
		Statistics struct {
			ViewCount string `json:"viewCount"`
		} `json:"statistics"`
	} `json:"items"`
}

// RecentUploads 获取频道最近的视频：search 拿列表，videos 补时长与播放量。
func (c *Client) RecentUploads(ctx context.Context, channelID string, limit int) ([]Video, error) {
	if limit <= 0 || limit > 50 {
		limit = 10
	}

	params := url.Values{}
	params.Set("part", "snippet")
	params.Set("channelId", channelID)
	params.Set("order", "date")
	params.Set("type", "video")
	params.Set("maxResults", strconv.Itoa(limit))

	var sr searchResponse
	if err := c.get(ctx, "/search", params, &sr); err != nil {
		return nil, fmt.Errorf("search channel %s failed: %w", channelID, err)
	}
	if len(sr.Items) == 0 {
		return nil, nil
	}

	var ids []string
	videos := make([]Video, 0, len(sr.Items))
	for _, it := range sr.Items {
		if it.ID.VideoID == "" {
			continue
		}
		ids = append(ids, it.ID.VideoID)
		videos = append(videos, Video{
			ID:          it.ID.VideoID,
			Title:       it.Snippet.Title,
			Description: it.Snippet.Description,
			PublishedAt: it.Snippet.PublishedAt,
		})
	}

	params = url.Values{}
	params.Set("part", "contentDetails,statistics")
	params.Set("id", strings.Join(ids, ","))

	var vr videosResponse
	if err := c.get(ctx, "/videos", params, &vr); err != nil {
		return nil, fmt.Errorf("fetch video details failed: %w", err)
	}

	detail := make(map[string]struct {
		dur   time.Duration
		views int64
	}, len(vr.Items))
	for _, it := range vr.Items {
		views, _ := strconv.ParseInt(it.Statistics.ViewCount, 10, 64)
		detail[it.ID] = struct {
			dur   time.Duration
			views int64
		}{ParseISODuration(it.ContentDetails.Duration), views}
	}

	for i := range videos {
		if d, ok := detail[videos[i].ID]; ok {
			videos[i].Duration = d.dur
			videos[i].ViewCount = d.views
		}
	}
	return videos, nil
}
