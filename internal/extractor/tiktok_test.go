package extractor

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/factlens/social-factcheck-go/internal/platform"
)

func newTestTikTokClient(server *httptest.Server) *TikTokClient {
	client := NewTikTokClient("test-key", "tiktok.test", zap.NewNop())
	client.baseURL = server.URL
	return client
}

const tiktokDetailsJSON = `{
	"details": {
		"video_id": "7123456789",
		"description": "Une actu importante #vérité",
		"cover": "https://cdn.test/cover.jpg",
		"unwatermarked_download_url": "https://cdn.test/clean.mp4",
		"download_url": "https://cdn.test/watermarked.mp4",
		"duration": 42,
		"create_time": 1700000000,
		"statistics": {
			"number_of_hearts": 120,
			"number_of_comments": 30,
			"number_of_reposts": 8,
			"number_of_plays": 5000
		},
		"author": {
			"uniqueId": "creator",
			"author_name": "Creator Name",
			"verified": true
		}
	}
}`

func TestTikTokClient_Extract(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "test-key", r.Header.Get("X-RapidAPI-Key"))
		assert.Equal(t, "tiktok.test", r.Header.Get("X-RapidAPI-Host"))
		require.Equal(t, "/video/details", r.URL.Path)
		assert.Equal(t, "7123456789", r.URL.Query().Get("video_id"))

		_, _ = w.Write([]byte(tiktokDetailsJSON))
	}))
	defer server.Close()

	client := newTestTikTokClient(server)

	record, err := client.Extract(context.Background(), "https://www.tiktok.com/@creator/video/7123456789")
	require.NoError(t, err)

	assert.Equal(t, "7123456789", record.ContentID)
	assert.Equal(t, platform.TikTok, record.Platform)
	assert.Equal(t, "creator", record.Author)
	assert.Equal(t, "Une actu importante #vérité", record.Description)
	assert.Equal(t, "https://cdn.test/clean.mp4", record.MediaURL)
	assert.Equal(t, "https://cdn.test/cover.jpg", record.ThumbnailURL)
	assert.Equal(t, int64(5000), record.Views)
	assert.Equal(t, int64(120), record.Likes)
	assert.Equal(t, int64(30), record.Comments)
	assert.Equal(t, int64(8), record.Shares)
	assert.Equal(t, "42", record.Duration)
	assert.Equal(t, []string{"vérité"}, record.Hashtags)
	assert.Equal(t, int64(1700000000), record.PublishedAt.Unix())
}

func TestTikTokClient_Extract_FallbackToUserFeed(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/video/details":
			http.Error(w, "not found", http.StatusNotFound)
		case "/user/videos":
			assert.Equal(t, "creator", r.URL.Query().Get("username"))
			_, _ = w.Write([]byte(`{
				"videos": [
					{"video_id": "999", "description": "other", "author": "creator"},
					{"video_id": "7123456789", "description": "the one", "author": "creator",
					 "download_url": "https://cdn.test/feed.mp4",
					 "statistics": {"number_of_plays": 10}}
				]
			}`))
		default:
			t.Fatalf("unexpected path: %s", r.URL.Path)
		}
	}))
	defer server.Close()

	client := newTestTikTokClient(server)

	record, err := client.Extract(context.Background(), "https://www.tiktok.com/@creator/video/7123456789")
	require.NoError(t, err)
	assert.Equal(t, "7123456789", record.ContentID)
	assert.Equal(t, "the one", record.Description)
	assert.Equal(t, "https://cdn.test/feed.mp4", record.MediaURL)
	assert.Equal(t, int64(10), record.Views)
}

func TestTikTokClient_Extract_RateLimitAbortsFallback(t *testing.T) {
	feedCalled := false
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/video/details":
			http.Error(w, "slow down", http.StatusTooManyRequests)
		case "/user/videos":
			feedCalled = true
		}
	}))
	defer server.Close()

	client := newTestTikTokClient(server)

	_, err := client.Extract(context.Background(), "https://www.tiktok.com/@creator/video/7123456789")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrRateLimited))
	assert.False(t, feedCalled, "fallback must not run after a rate limit")
}

func TestTikTokClient_Extract_NotInRecentUploads(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/video/details":
			http.Error(w, "not found", http.StatusNotFound)
		case "/user/videos":
			_, _ = w.Write([]byte(`{"videos": [{"video_id": "111"}]}`))
		}
	}))
	defer server.Close()

	client := newTestTikTokClient(server)

	_, err := client.Extract(context.Background(), "https://www.tiktok.com/@creator/video/7123456789")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrContentNotFound))
	assert.Contains(t, err.Error(), "30 most recent uploads")
}

func TestTikTokClient_Extract_InvalidURL(t *testing.T) {
	client := NewTikTokClient("test-key", "tiktok.test", zap.NewNop())

	_, err := client.Extract(context.Background(), "https://www.tiktok.com/@creator")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInvalidURL))
}

func TestTikTokClient_UserInfo(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/user/info", r.URL.Path)
		assert.Equal(t, "creator", r.URL.Query().Get("unique_id"))

		_, _ = w.Write([]byte(`{
			"data": {
				"user": {
					"uid": "123",
					"unique_id": "creator",
					"nickname": "Creator Name",
					"avatar_larger": "https://cdn.test/avatar.jpg",
					"signature": "bio",
					"verified": true,
					"follower_count": 1000,
					"following_count": 50,
					"aweme_count": 200,
					"total_favorited": 9000
				}
			}
		}`))
	}))
	defer server.Close()

	client := newTestTikTokClient(server)

	info, err := client.UserInfo(context.Background(), "creator")
	require.NoError(t, err)
	assert.Equal(t, "123", info.UserID)
	assert.Equal(t, "creator", info.Username)
	assert.Equal(t, "Creator Name", info.Nickname)
	assert.True(t, info.Verified)
	assert.Equal(t, int64(1000), info.FollowerCount)
	assert.Equal(t, int64(200), info.VideoCount)
}

func TestTikTokClient_UserInfo_NotFound(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"data": {"user": {}}}`))
	}))
	defer server.Close()

	client := newTestTikTokClient(server)

	_, err := client.UserInfo(context.Background(), "ghost")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrContentNotFound))
}

func TestTikTokClient_RecentVideos(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/user/posts", r.URL.Path)
		assert.Equal(t, "creator", r.URL.Query().Get("unique_id"))
		assert.Equal(t, "5", r.URL.Query().Get("count"))

		_, _ = w.Write([]byte(`{
			"data": {
				"videos": [
					{"aweme_id": "333", "desc": "newest #breaking", "play": "https://cdn.test/333.mp4",
					 "digg_count": 7, "play_count": 100, "create_time": 1700000100},
					{"video_id": "222", "title": "older", "download_addr": "https://cdn.test/222.mp4"}
				]
			}
		}`))
	}))
	defer server.Close()

	client := newTestTikTokClient(server)

	videos, err := client.RecentVideos(context.Background(), "creator", 5)
	require.NoError(t, err)
	require.Len(t, videos, 2)

	assert.Equal(t, "333", videos[0].ContentID)
	assert.Equal(t, "https://www.tiktok.com/@creator/video/333", videos[0].URL)
	assert.Equal(t, "creator", videos[0].Author)
	assert.Equal(t, []string{"breaking"}, videos[0].Hashtags)
	assert.Equal(t, int64(7), videos[0].Likes)
	assert.Equal(t, int64(1700000100), videos[0].PublishedAt.Unix())

	assert.Equal(t, "222", videos[1].ContentID)
	assert.Equal(t, "https://cdn.test/222.mp4", videos[1].MediaURL)
}

func TestTiktokVideoID(t *testing.T) {
	tests := []struct {
		name string
		url  string
		want string
	}{
		{"standard video path", "https://www.tiktok.com/@user/video/7123456789012345678", "7123456789012345678"},
		{"short v path", "https://www.tiktok.com/v/123456/", "123456"},
		{"trailing id", "https://vm.tiktok.com/embed/987654", "987654"},
		{"no id", "https://www.tiktok.com/@user", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tiktokVideoID(tt.url))
		})
	}
}

func TestTiktokUsername(t *testing.T) {
	assert.Equal(t, "creator", tiktokUsername("https://www.tiktok.com/@creator/video/123"))
	assert.Equal(t, "", tiktokUsername("https://vm.tiktok.com/ZMabc/"))
}
