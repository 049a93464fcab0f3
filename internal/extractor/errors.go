package extractor

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	// ErrContentNotFound means the upstream confirmed the content is absent,
	// private or deleted. Not retriable.
	ErrContentNotFound = errors.New("content not found")

	// ErrRateLimited means the upstream throttled us; retry after a delay.
	ErrRateLimited = errors.New("upstream rate limit reached")

	// ErrAccessDenied means the upstream rejected our credentials.
	ErrAccessDenied = errors.New("upstream access denied, check the API key")

	// ErrInvalidURL means no content id could be derived from the URL.
	ErrInvalidURL = errors.New("could not derive a content id from the URL")
)

// statusError maps an upstream HTTP status to the matching error kind, or
// returns a generic error for anything else unexpected.
func statusError(status int, upstream string) error {
	switch status {
	case http.StatusNotFound:
		return fmt.Errorf("%s: %w", upstream, ErrContentNotFound)
	case http.StatusTooManyRequests:
		return fmt.Errorf("%s: %w", upstream, ErrRateLimited)
	case http.StatusForbidden:
		return fmt.Errorf("%s: %w", upstream, ErrAccessDenied)
	default:
		return fmt.Errorf("%s: unexpected status %d", upstream, status)
	}
}
