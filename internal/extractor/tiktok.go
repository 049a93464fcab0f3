package extractor

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"regexp"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/factlens/social-factcheck-go/internal/db/models"
)

var (
	tiktokVideoIDPatterns = []*regexp.Regexp{
		regexp.MustCompile(`/video/(\d+)`),
		regexp.MustCompile(`/v/(\d+)`),
		regexp.MustCompile(`tiktok\.com/.*?/(\d+)`),
	}
	tiktokUsernamePattern = regexp.MustCompile(`@([^/]+)`)
)

// TikTokClient wraps the RapidAPI TikTok content upstream.
type TikTokClient struct {
	apiKey     string
	apiHost    string
	baseURL    string
	httpClient *http.Client
	logger     *zap.Logger
}

// NewTikTokClient creates a new TikTok extraction client.
func NewTikTokClient(apiKey, apiHost string, logger *zap.Logger) *TikTokClient {
	return &TikTokClient{
		apiKey:     apiKey,
		apiHost:    apiHost,
		baseURL:    "https://" + apiHost,
		httpClient: &http.Client{Timeout: 30 * time.Second},
		logger:     logger,
	}
}

// tiktokStrategy is one way of locating a video. Strategies are tried in
// order until one succeeds; each maps its own upstream failures.
type tiktokStrategy struct {
	name string
	run  func(ctx context.Context, videoID, username, rawURL string) (*models.ContentRecord, error)
}

// Extract locates a TikTok video by URL. The direct video-details endpoint is
// tried first; when it fails the author's recent uploads are scanned for the
// id (the upstream returns at most 30).
func (c *TikTokClient) Extract(ctx context.Context, rawURL string) (*models.ContentRecord, error) {
	videoID := tiktokVideoID(rawURL)
	if videoID == "" {
		return nil, fmt.Errorf("tiktok: %w", ErrInvalidURL)
	}
	username := tiktokUsername(rawURL)

	strategies := []tiktokStrategy{
		{name: "video-details", run: c.byVideoID},
		{name: "user-videos", run: c.scanUserFeed},
	}

	var lastErr error
	for _, s := range strategies {
		record, err := s.run(ctx, videoID, username, rawURL)
		if err == nil {
			return record, nil
		}

		// Throttling and credential failures apply to the fallback too,
		// so trying it would only burn quota.
		if isTerminal(err) {
			return nil, err
		}

		c.logger.Warn("tiktok extraction strategy failed",
			zap.String("strategy", s.name),
			zap.String("video_id", videoID),
			zap.Error(err),
		)
		lastErr = err
	}

	return nil, lastErr
}

func isTerminal(err error) bool {
	return errors.Is(err, ErrRateLimited) || errors.Is(err, ErrAccessDenied)
}

type tiktokStats struct {
	Hearts   int64 `json:"number_of_hearts"`
	Comments int64 `json:"number_of_comments"`
	Reposts  int64 `json:"number_of_reposts"`
	Saves    int64 `json:"number_of_saves"`
	Plays    int64 `json:"number_of_plays"`
}

type tiktokAuthor struct {
	UniqueID  string `json:"uniqueId"`
	Name      string `json:"author_name"`
	Verified  bool   `json:"verified"`
	Signature string `json:"signature"`
}

type tiktokVideoDetails struct {
	VideoID     string       `json:"video_id"`
	Description string       `json:"description"`
	Cover       string       `json:"cover"`
	AvatarThumb string       `json:"avatar_thumb"`
	CleanURL    string       `json:"unwatermarked_download_url"`
	DownloadURL string       `json:"download_url"`
	Duration    int64        `json:"duration"`
	CreateTime  json.Number  `json:"create_time"`
	Statistics  tiktokStats  `json:"statistics"`
	Author      tiktokAuthor `json:"author"`
}

type tiktokDetailsResponse struct {
	Details *tiktokVideoDetails `json:"details"`
}

func (c *TikTokClient) byVideoID(ctx context.Context, videoID, username, rawURL string) (*models.ContentRecord, error) {
	var resp tiktokDetailsResponse
	params := url.Values{"video_id": {videoID}}
	if err := c.get(ctx, "/video/details", params, &resp); err != nil {
		return nil, err
	}
	if resp.Details == nil {
		return nil, fmt.Errorf("tiktok video details: empty response")
	}

	return normalizeTikTokDetails(resp.Details, rawURL, username, time.Now()), nil
}

// tiktokFeedVideo is the shape returned by the user-videos feed, where the
// author is a bare string rather than an object.
type tiktokFeedVideo struct {
	VideoID     string      `json:"video_id"`
	Description string      `json:"description"`
	Cover       string      `json:"cover"`
	CleanURL    string      `json:"unwatermarked_download_url"`
	DownloadURL string      `json:"download_url"`
	Duration    int64       `json:"duration"`
	CreateTime  json.Number `json:"create_time"`
	Statistics  tiktokStats `json:"statistics"`
	Author      string      `json:"author"`
}

type tiktokFeedResponse struct {
	Videos []tiktokFeedVideo `json:"videos"`
}

func (c *TikTokClient) scanUserFeed(ctx context.Context, videoID, username, rawURL string) (*models.ContentRecord, error) {
	if username == "" {
		return nil, fmt.Errorf("tiktok fallback: no username in URL: %w", ErrContentNotFound)
	}

	var resp tiktokFeedResponse
	if err := c.get(ctx, "/user/videos", url.Values{"username": {username}}, &resp); err != nil {
		return nil, err
	}

	for i := range resp.Videos {
		if resp.Videos[i].VideoID == videoID {
			return normalizeTikTokFeedVideo(&resp.Videos[i], rawURL, username, time.Now()), nil
		}
	}

	return nil, fmt.Errorf(
		"tiktok video %s: may be private, deleted, or older than the author's 30 most recent uploads: %w",
		videoID, ErrContentNotFound,
	)
}

// TikTokUserInfo is the profile summary used to validate accounts before
// adding them to the watch-list.
type TikTokUserInfo struct {
	UserID         string
	Username       string
	Nickname       string
	Avatar         string
	Bio            string
	Verified       bool
	FollowerCount  int64
	FollowingCount int64
	VideoCount     int64
	LikesCount     int64
}

type tiktokUserInfoResponse struct {
	Data struct {
		User struct {
			UID            string `json:"uid"`
			ID             string `json:"id"`
			UniqueID       string `json:"unique_id"`
			Nickname       string `json:"nickname"`
			AvatarLarger   string `json:"avatar_larger"`
			AvatarMedium   string `json:"avatar_medium"`
			AvatarThumb    string `json:"avatar_thumb"`
			Signature      string `json:"signature"`
			Verified       bool   `json:"verified"`
			FollowerCount  int64  `json:"follower_count"`
			FollowingCount int64  `json:"following_count"`
			AwemeCount     int64  `json:"aweme_count"`
			TotalFavorited int64  `json:"total_favorited"`
		} `json:"user"`
	} `json:"data"`
}

// UserInfo fetches a TikTok profile by username.
func (c *TikTokClient) UserInfo(ctx context.Context, username string) (*TikTokUserInfo, error) {
	var resp tiktokUserInfoResponse
	if err := c.get(ctx, "/user/info", url.Values{"unique_id": {username}}, &resp); err != nil {
		return nil, err
	}

	u := resp.Data.User
	if u.UID == "" && u.ID == "" {
		return nil, fmt.Errorf("tiktok user @%s: %w", username, ErrContentNotFound)
	}

	return &TikTokUserInfo{
		UserID:         firstNonEmpty(u.UID, u.ID),
		Username:       firstNonEmpty(u.UniqueID, username),
		Nickname:       u.Nickname,
		Avatar:         firstNonEmpty(u.AvatarLarger, u.AvatarMedium, u.AvatarThumb),
		Bio:            u.Signature,
		Verified:       u.Verified,
		FollowerCount:  u.FollowerCount,
		FollowingCount: u.FollowingCount,
		VideoCount:     u.AwemeCount,
		LikesCount:     u.TotalFavorited,
	}, nil
}

type tiktokPostVideo struct {
	VideoID      string      `json:"video_id"`
	AwemeID      string      `json:"aweme_id"`
	Title        string      `json:"title"`
	Desc         string      `json:"desc"`
	Cover        string      `json:"cover"`
	DynamicCover string      `json:"dynamic_cover"`
	Play         string      `json:"play"`
	DownloadAddr string      `json:"download_addr"`
	Duration     int64       `json:"duration"`
	DiggCount    int64       `json:"digg_count"`
	CommentCount int64       `json:"comment_count"`
	ShareCount   int64       `json:"share_count"`
	PlayCount    int64       `json:"play_count"`
	CreateTime   json.Number `json:"create_time"`
}

type tiktokPostsResponse struct {
	Data struct {
		Videos []tiktokPostVideo `json:"videos"`
	} `json:"data"`
}

// RecentVideos lists a user's latest uploads in canonical form, newest
// first. Used by the watch-list sweep; capped at 30 by the upstream.
func (c *TikTokClient) RecentVideos(ctx context.Context, username string, maxCount int) ([]*models.ContentRecord, error) {
	if maxCount <= 0 || maxCount > 30 {
		maxCount = 30
	}

	params := url.Values{
		"unique_id": {username},
		"count":     {strconv.Itoa(maxCount)},
	}

	var resp tiktokPostsResponse
	if err := c.get(ctx, "/user/posts", params, &resp); err != nil {
		return nil, err
	}

	now := time.Now()
	records := make([]*models.ContentRecord, 0, len(resp.Data.Videos))
	for i := range resp.Data.Videos {
		if len(records) >= maxCount {
			break
		}
		records = append(records, normalizeTikTokPost(&resp.Data.Videos[i], username, now))
	}

	return records, nil
}

func (c *TikTokClient) get(ctx context.Context, path string, params url.Values, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path+"?"+params.Encode(), nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("X-RapidAPI-Key", c.apiKey)
	req.Header.Set("X-RapidAPI-Host", c.apiHost)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("tiktok api request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return statusError(resp.StatusCode, "tiktok api")
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode tiktok response: %w", err)
	}
	return nil
}

func tiktokVideoID(rawURL string) string {
	for _, p := range tiktokVideoIDPatterns {
		if m := p.FindStringSubmatch(rawURL); m != nil {
			return m[1]
		}
	}
	return ""
}

func tiktokUsername(rawURL string) string {
	if m := tiktokUsernamePattern.FindStringSubmatch(rawURL); m != nil {
		return m[1]
	}
	return ""
}

var _ Extractor = (*TikTokClient)(nil)
