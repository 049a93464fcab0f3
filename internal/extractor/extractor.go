// Package extractor wraps the upstream content APIs and maps their payloads
// into canonical content records.
package extractor

import (
	"context"

	"github.com/factlens/social-factcheck-go/internal/db/models"
	"github.com/factlens/social-factcheck-go/internal/platform"
)

// Extractor fetches one piece of content by URL and returns it in canonical
// form. Platform-specific field names never leak past this boundary.
type Extractor interface {
	Extract(ctx context.Context, url string) (*models.ContentRecord, error)
}

// Set maps each platform to its extractor.
type Set map[platform.Platform]Extractor
