package models

import (
	"time"

	"github.com/factlens/social-factcheck-go/internal/platform"
)

// UnknownAuthor is the sentinel stored when an upstream omits the author.
const UnknownAuthor = "Inconnu"

// ContentRecord is the canonical, platform-agnostic representation of one
// piece of extracted social content. Created once per (platform, content_id)
// on first successful extraction; metrics are a snapshot taken at that time.
type ContentRecord struct {
	ID             int64             `db:"id"`
	ContentID      string            `db:"content_id"`
	Platform       platform.Platform `db:"platform"`
	URL            string            `db:"url"`
	Author         string            `db:"author"`
	Title          string            `db:"title"`
	Description    string            `db:"description"`
	ThumbnailURL   string            `db:"thumbnail_url"`
	MediaURL       string            `db:"media_url"`
	ExtraMediaURLs []string          `db:"extra_media_urls"`
	Views          int64             `db:"views"`
	Likes          int64             `db:"likes"`
	Comments       int64             `db:"comments"`
	Shares         int64             `db:"shares"`
	Duration       string            `db:"duration"`
	Hashtags       []string          `db:"hashtags"`
	PublishedAt    time.Time         `db:"published_at"`
	ExtractedAt    time.Time         `db:"extracted_at"`
}
