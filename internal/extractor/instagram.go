package extractor

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"regexp"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/factlens/social-factcheck-go/internal/db/models"
	"github.com/factlens/social-factcheck-go/internal/platform"
)

var instagramShortcodePattern = regexp.MustCompile(`instagram\.com/(?:p|reel|tv)/([A-Za-z0-9_-]+)`)

// InstagramClient wraps the RapidAPI Instagram content upstream.
type InstagramClient struct {
	apiKey     string
	apiHost    string
	baseURL    string
	httpClient *http.Client
	logger     *zap.Logger
}

// NewInstagramClient creates a new Instagram extraction client.
func NewInstagramClient(apiKey, apiHost string, logger *zap.Logger) *InstagramClient {
	return &InstagramClient{
		apiKey:     apiKey,
		apiHost:    apiHost,
		baseURL:    "https://" + apiHost,
		httpClient: &http.Client{Timeout: 30 * time.Second},
		logger:     logger,
	}
}

type instagramMediaURL struct {
	URL string `json:"url"`
}

type instagramMedia struct {
	PK        json.Number `json:"pk"`
	ID        string      `json:"id"`
	Code      string      `json:"code"`
	MediaType int         `json:"media_type"`
	Caption   *struct {
		Text string `json:"text"`
	} `json:"caption"`
	ProductType string `json:"product_type"`
	User        struct {
		Username   string      `json:"username"`
		PK         json.Number `json:"pk"`
		IsVerified bool        `json:"is_verified"`
	} `json:"user"`
	ImageVersions2 struct {
		Candidates []instagramMediaURL `json:"candidates"`
	} `json:"image_versions2"`
	VideoVersions  []instagramMediaURL `json:"video_versions"`
	VideoDuration  float64             `json:"video_duration"`
	CarouselMedia  []instagramMedia    `json:"carousel_media"`
	LikeCount      int64               `json:"like_count"`
	CommentCount   int64               `json:"comment_count"`
	VideoViewCount int64               `json:"video_view_count"`
	ViewCount      int64               `json:"view_count"`
	PlayCount      int64               `json:"play_count"`
	TakenAt        json.Number         `json:"taken_at"`
	Location       *struct {
		Name string `json:"name"`
	} `json:"location"`
}

// Extract fetches an Instagram post, reel or IGTV item by URL.
func (c *InstagramClient) Extract(ctx context.Context, rawURL string) (*models.ContentRecord, error) {
	shortcode := instagramShortcode(rawURL)
	if shortcode == "" {
		return nil, fmt.Errorf("instagram: %w", ErrInvalidURL)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		c.baseURL+"/post?"+url.Values{"shortcode": {shortcode}}.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("X-RapidAPI-Key", c.apiKey)
	req.Header.Set("X-RapidAPI-Host", c.apiHost)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("instagram api request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, statusError(resp.StatusCode, "instagram api")
	}

	var media instagramMedia
	if err := json.NewDecoder(resp.Body).Decode(&media); err != nil {
		return nil, fmt.Errorf("decode instagram response: %w", err)
	}
	if media.PK.String() == "" && media.ID == "" && media.Code == "" {
		return nil, fmt.Errorf("instagram post %s: %w", shortcode, ErrContentNotFound)
	}

	return normalizeInstagramMedia(&media, rawURL, shortcode, time.Now()), nil
}

func (m *instagramMedia) isVideo() bool {
	return m.MediaType == 2 || m.ProductType == "igtv" || m.ProductType == "clips"
}

func (m *instagramMedia) imageURL() string {
	if len(m.ImageVersions2.Candidates) > 0 {
		return m.ImageVersions2.Candidates[0].URL
	}
	return ""
}

func (m *instagramMedia) videoURL() string {
	if len(m.VideoVersions) > 0 {
		return m.VideoVersions[0].URL
	}
	return ""
}

// mediaURL picks the playable asset for one media item: the video stream
// when present, the largest image otherwise.
func (m *instagramMedia) mediaURL() string {
	if m.isVideo() {
		if u := m.videoURL(); u != "" {
			return u
		}
	}
	return m.imageURL()
}

func normalizeInstagramMedia(m *instagramMedia, rawURL, shortcode string, now time.Time) *models.ContentRecord {
	caption := ""
	if m.Caption != nil {
		caption = m.Caption.Text
	}

	// Carousels expose the lead item as the primary media and carry the
	// rest along so verification can look at every frame.
	primary := m
	var extra []string
	if len(m.CarouselMedia) > 0 {
		primary = &m.CarouselMedia[0]
		for i := 1; i < len(m.CarouselMedia); i++ {
			if u := m.CarouselMedia[i].mediaURL(); u != "" {
				extra = append(extra, u)
			}
		}
	}

	duration := ""
	if primary.VideoDuration > 0 {
		duration = strconv.Itoa(int(primary.VideoDuration))
	}

	views := m.VideoViewCount
	if views == 0 {
		views = m.ViewCount
	}
	if views == 0 {
		views = m.PlayCount
	}

	return &models.ContentRecord{
		ContentID:      firstNonEmpty(m.PK.String(), m.ID, m.Code, shortcode),
		Platform:       platform.Instagram,
		URL:            rawURL,
		Author:         firstNonEmpty(m.User.Username, models.UnknownAuthor),
		Title:          caption,
		Description:    caption,
		ThumbnailURL:   firstNonEmpty(primary.imageURL(), m.imageURL()),
		MediaURL:       primary.mediaURL(),
		ExtraMediaURLs: extra,
		Views:          views,
		Likes:          m.LikeCount,
		Comments:       m.CommentCount,
		Duration:       duration,
		Hashtags:       Hashtags(caption),
		PublishedAt:    unixOrFallback(m.TakenAt, now),
		ExtractedAt:    now,
	}
}

func instagramShortcode(rawURL string) string {
	if m := instagramShortcodePattern.FindStringSubmatch(rawURL); m != nil {
		return m[1]
	}
	return ""
}

var _ Extractor = (*InstagramClient)(nil)
