package extractor

import (
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/factlens/social-factcheck-go/internal/db/models"
	"github.com/factlens/social-factcheck-go/internal/platform"
)

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

// unixOrFallback converts an epoch-seconds value to a time. Upstreams are
// inconsistent about integer vs float timestamps, so the value arrives as
// json.Number.
func unixOrFallback(n json.Number, fallback time.Time) time.Time {
	secs, err := n.Int64()
	if err != nil || secs <= 0 {
		return fallback
	}
	return time.Unix(secs, 0).UTC()
}

func normalizeTikTokDetails(v *tiktokVideoDetails, rawURL, urlUsername string, now time.Time) *models.ContentRecord {
	return &models.ContentRecord{
		ContentID:    v.VideoID,
		Platform:     platform.TikTok,
		URL:          rawURL,
		Author:       firstNonEmpty(v.Author.UniqueID, v.Author.Name, urlUsername, models.UnknownAuthor),
		Title:        v.Description,
		Description:  v.Description,
		ThumbnailURL: firstNonEmpty(v.Cover, v.AvatarThumb),
		MediaURL:     firstNonEmpty(v.CleanURL, v.DownloadURL),
		Views:        v.Statistics.Plays,
		Likes:        v.Statistics.Hearts,
		Comments:     v.Statistics.Comments,
		Shares:       v.Statistics.Reposts,
		Duration:     strconv.FormatInt(v.Duration, 10),
		Hashtags:     Hashtags(v.Description),
		PublishedAt:  unixOrFallback(v.CreateTime, now),
		ExtractedAt:  now,
	}
}

func normalizeTikTokFeedVideo(v *tiktokFeedVideo, rawURL, urlUsername string, now time.Time) *models.ContentRecord {
	return &models.ContentRecord{
		ContentID:    v.VideoID,
		Platform:     platform.TikTok,
		URL:          rawURL,
		Author:       firstNonEmpty(v.Author, urlUsername, models.UnknownAuthor),
		Title:        v.Description,
		Description:  v.Description,
		ThumbnailURL: v.Cover,
		MediaURL:     firstNonEmpty(v.CleanURL, v.DownloadURL),
		Views:        v.Statistics.Plays,
		Likes:        v.Statistics.Hearts,
		Comments:     v.Statistics.Comments,
		Shares:       v.Statistics.Reposts,
		Duration:     strconv.FormatInt(v.Duration, 10),
		Hashtags:     Hashtags(v.Description),
		PublishedAt:  unixOrFallback(v.CreateTime, now),
		ExtractedAt:  now,
	}
}

func normalizeTikTokPost(v *tiktokPostVideo, username string, now time.Time) *models.ContentRecord {
	id := firstNonEmpty(v.VideoID, v.AwemeID)
	text := firstNonEmpty(v.Title, v.Desc)
	return &models.ContentRecord{
		ContentID:    id,
		Platform:     platform.TikTok,
		URL:          fmt.Sprintf("https://www.tiktok.com/@%s/video/%s", username, id),
		Author:       username,
		Title:        text,
		Description:  text,
		ThumbnailURL: firstNonEmpty(v.Cover, v.DynamicCover),
		MediaURL:     firstNonEmpty(v.Play, v.DownloadAddr),
		Views:        v.PlayCount,
		Likes:        v.DiggCount,
		Comments:     v.CommentCount,
		Shares:       v.ShareCount,
		Duration:     strconv.FormatInt(v.Duration, 10),
		Hashtags:     Hashtags(text),
		PublishedAt:  unixOrFallback(v.CreateTime, now),
		ExtractedAt:  now,
	}
}
