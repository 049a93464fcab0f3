package extractor

import (
	"context"
	"errors"
	"fmt"
	"math"
	"net/http"
	"regexp"
	"time"

	"go.uber.org/zap"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
	"google.golang.org/api/youtube/v3"

	"github.com/factlens/social-factcheck-go/internal/db/models"
	"github.com/factlens/social-factcheck-go/internal/platform"
)

var youtubeVideoIDPatterns = []*regexp.Regexp{
	regexp.MustCompile(`youtube\.com/watch\?(?:.*&)?v=([a-zA-Z0-9_-]{11})`),
	regexp.MustCompile(`youtu\.be/([a-zA-Z0-9_-]{11})`),
	regexp.MustCompile(`youtube\.com/embed/([a-zA-Z0-9_-]{11})`),
	regexp.MustCompile(`youtube\.com/v/([a-zA-Z0-9_-]{11})`),
	regexp.MustCompile(`youtube\.com/shorts/([a-zA-Z0-9_-]{11})`),
}

// YouTubeClient fetches video metadata through the official Data API.
type YouTubeClient struct {
	service *youtube.Service
	logger  *zap.Logger
}

// NewYouTubeClient creates a new YouTube Data API client.
func NewYouTubeClient(ctx context.Context, apiKey string, logger *zap.Logger) (*YouTubeClient, error) {
	service, err := youtube.NewService(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create youtube service: %w", err)
	}

	return &YouTubeClient{service: service, logger: logger}, nil
}

// Extract fetches a YouTube video by URL.
func (c *YouTubeClient) Extract(ctx context.Context, rawURL string) (*models.ContentRecord, error) {
	videoID := youtubeVideoID(rawURL)
	if videoID == "" {
		return nil, fmt.Errorf("youtube: %w", ErrInvalidURL)
	}

	call := c.service.Videos.List([]string{"snippet", "contentDetails", "statistics"}).
		Id(videoID).
		Context(ctx)

	resp, err := call.Do()
	if err != nil {
		return nil, youtubeError(err, videoID)
	}
	if len(resp.Items) == 0 {
		return nil, fmt.Errorf("youtube video %s: %w", videoID, ErrContentNotFound)
	}

	return normalizeYouTubeVideo(resp.Items[0], rawURL, time.Now()), nil
}

func youtubeError(err error, videoID string) error {
	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) {
		switch apiErr.Code {
		case http.StatusForbidden:
			return fmt.Errorf("youtube api (video %s): %w", videoID, ErrAccessDenied)
		case http.StatusTooManyRequests:
			return fmt.Errorf("youtube api (video %s): %w", videoID, ErrRateLimited)
		}
	}
	return fmt.Errorf("youtube api (video %s): %w", videoID, err)
}

func normalizeYouTubeVideo(v *youtube.Video, rawURL string, now time.Time) *models.ContentRecord {
	record := &models.ContentRecord{
		ContentID:   v.Id,
		Platform:    platform.YouTube,
		URL:         rawURL,
		Author:      models.UnknownAuthor,
		MediaURL:    "https://www.youtube.com/watch?v=" + v.Id,
		PublishedAt: now,
		ExtractedAt: now,
	}

	if v.Snippet != nil {
		if v.Snippet.ChannelTitle != "" {
			record.Author = v.Snippet.ChannelTitle
		}
		record.Title = v.Snippet.Title
		record.Description = v.Snippet.Description
		record.ThumbnailURL = youtubeThumbnail(v.Snippet.Thumbnails)
		record.Hashtags = Hashtags(v.Snippet.Description)
		if t, err := time.Parse(time.RFC3339, v.Snippet.PublishedAt); err == nil {
			record.PublishedAt = t
		}
	}

	if v.ContentDetails != nil {
		// ISO-8601 duration, stored as-is.
		record.Duration = v.ContentDetails.Duration
	}

	if v.Statistics != nil {
		record.Views = clampUint64(v.Statistics.ViewCount)
		record.Likes = clampUint64(v.Statistics.LikeCount)
		record.Comments = clampUint64(v.Statistics.CommentCount)
	}

	return record
}

func youtubeThumbnail(t *youtube.ThumbnailDetails) string {
	if t == nil {
		return ""
	}
	for _, candidate := range []*youtube.Thumbnail{t.Maxres, t.High, t.Default} {
		if candidate != nil && candidate.Url != "" {
			return candidate.Url
		}
	}
	return ""
}

func clampUint64(n uint64) int64 {
	if n > math.MaxInt64 {
		return math.MaxInt64
	}
	return int64(n)
}

func youtubeVideoID(rawURL string) string {
	for _, p := range youtubeVideoIDPatterns {
		if m := p.FindStringSubmatch(rawURL); m != nil {
			return m[1]
		}
	}
	return ""
}

var _ Extractor = (*YouTubeClient)(nil)
