// Package verify submits extracted content to the external fact-check
// service and turns its free-text analysis into a structured verdict.
package verify

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/factlens/social-factcheck-go/internal/db/models"
)

// ErrNotConfigured means no usable fact-check API key is present. Callers
// can treat this as demo mode rather than a hard failure.
var ErrNotConfigured = errors.New("fact-check API key is not configured")

const placeholderAPIKey = "your_vera_api_key_here"

// Client talks to the fact-check chat endpoint.
type Client struct {
	apiKey     string
	endpoint   string
	httpClient *http.Client
	logger     *zap.Logger
}

// NewClient creates a new fact-check client. The timeout has to cover full
// media analysis runs, which routinely take over a minute.
func NewClient(apiKey, endpoint string, timeout time.Duration, logger *zap.Logger) *Client {
	if timeout <= 0 {
		timeout = 120 * time.Second
	}
	return &Client{
		apiKey:     apiKey,
		endpoint:   strings.TrimRight(endpoint, "/"),
		httpClient: &http.Client{Timeout: timeout},
		logger:     logger,
	}
}

// Configured reports whether a real API key is set.
func (c *Client) Configured() bool {
	return c.apiKey != "" && c.apiKey != placeholderAPIKey
}

// MediaRef points the analysis service at one media asset.
type MediaRef struct {
	Type string `json:"type"`
	URL  string `json:"url"`
}

type chatMetadata struct {
	Source    string     `json:"source"`
	ContentID string     `json:"content_id"`
	Author    string     `json:"author"`
	MediaURLs []MediaRef `json:"media_urls"`
}

type chatRequest struct {
	UserID   string       `json:"userId"`
	Query    string       `json:"query"`
	Metadata chatMetadata `json:"metadata"`
}

// CheckContent submits one content record for verification and returns the
// classified result. The response body is plain text, possibly streamed, and
// is read to completion before classification.
func (c *Client) CheckContent(ctx context.Context, record *models.ContentRecord) (*models.Verification, error) {
	if !c.Configured() {
		return nil, ErrNotConfigured
	}

	media := mediaRefs(record)
	payload := chatRequest{
		UserID: fmt.Sprintf("%s_bot_%d", record.Platform, time.Now().UnixMilli()),
		Query:  buildPrompt(record, media),
		Metadata: chatMetadata{
			Source:    string(record.Platform),
			ContentID: record.ContentID,
			Author:    record.Author,
			MediaURLs: media,
		},
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal fact-check request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint+"/chat", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create fact-check request: %w", err)
	}
	req.Header.Set("X-API-Key", c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	c.logger.Info("submitting content for verification",
		zap.String("platform", string(record.Platform)),
		zap.String("content_id", record.ContentID),
		zap.Int("media_count", len(media)),
	)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fact-check request: %w", err)
	}
	defer resp.Body.Close()

	analysis, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read fact-check response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fact-check api: unexpected status %d", resp.StatusCode)
	}
	if len(analysis) == 0 {
		return nil, fmt.Errorf("fact-check api: empty response")
	}

	verification := Classify(string(analysis))
	verification.RequestID = "vera_" + uuid.NewString()
	return verification, nil
}

// mediaRefs collects the assets worth analyzing: the playable media first,
// then every image we have. The thumbnail only stands in when no other
// image exists.
func mediaRefs(record *models.ContentRecord) []MediaRef {
	var refs []MediaRef
	if record.MediaURL != "" {
		refs = append(refs, MediaRef{Type: "video", URL: record.MediaURL})
	}
	if len(record.ExtraMediaURLs) > 0 {
		for _, u := range record.ExtraMediaURLs {
			if u != "" {
				refs = append(refs, MediaRef{Type: "image", URL: u})
			}
		}
	} else if record.ThumbnailURL != "" {
		refs = append(refs, MediaRef{Type: "image", URL: record.ThumbnailURL})
	}
	return refs
}

func buildPrompt(record *models.ContentRecord, media []MediaRef) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Analyze this %s content and verify its authenticity:\n\n", record.Platform.DisplayName())

	if record.Title != "" {
		fmt.Fprintf(&b, "TITLE: %s\n", record.Title)
	}
	imageIndex := 0
	for _, m := range media {
		switch m.Type {
		case "video":
			fmt.Fprintf(&b, "VIDEO TO ANALYZE: %s\n", m.URL)
		case "image":
			imageIndex++
			fmt.Fprintf(&b, "IMAGE %d TO ANALYZE: %s\n", imageIndex, m.URL)
		}
	}

	b.WriteString(`
IMPORTANT: Use the analysis tools directly on the media URLs above:
- Video Deepfake Detection for the video
- Synthetic Image Detection for AI-generated images
- Image Forgery and Localization for image manipulation
- Synthetic Speech Detection for synthetic voices
- TruFor for full forensic analysis

CONTEXT:
`)
	fmt.Fprintf(&b, "Platform: %s\n", record.Platform.DisplayName())
	fmt.Fprintf(&b, "Author: @%s\n", record.Author)
	fmt.Fprintf(&b, "Description: %s\n", record.Description)
	fmt.Fprintf(&b, "Hashtags: %s\n", strings.Join(record.Hashtags, ", "))

	b.WriteString("\nMETRICS:\n")
	fmt.Fprintf(&b, "- %d views\n", record.Views)
	fmt.Fprintf(&b, "- %d likes\n", record.Likes)
	fmt.Fprintf(&b, "- %d comments\n", record.Comments)
	if record.Shares > 0 {
		fmt.Fprintf(&b, "- %d shares\n", record.Shares)
	}

	b.WriteString(`
REQUIRED ANALYSIS:
1. Run the tools on the media URLs above
2. Video and image authenticity (deepfake, manipulation)
3. Verification of factual claims in the content
4. Disinformation detection
5. Overall credibility assessment

Answer with one verdict: VERIFIED, MOSTLY_TRUE, MIXED, MOSTLY_FALSE, or FALSE
and explain your reasoning with the evidence from your tools.`)

	return b.String()
}
