// Package platform identifies which social platform owns a content URL.
package platform

import (
	"errors"
	"fmt"
	"regexp"
)

// Platform is a supported content platform.
type Platform string

const (
	TikTok    Platform = "tiktok"
	Instagram Platform = "instagram"
	YouTube   Platform = "youtube"
)

// ErrUnsupportedURL is returned when a URL matches no known platform.
var ErrUnsupportedURL = errors.New("unsupported URL: expected a TikTok, Instagram or YouTube link")

// matcher pairs a platform with the pattern that claims a URL for it.
// Classification walks this list in order and the first match wins, so the
// priority between platforms is the order below: TikTok, Instagram, YouTube.
type matcher struct {
	platform Platform
	pattern  *regexp.Regexp
}

var matchers = []matcher{
	{TikTok, regexp.MustCompile(`(?:vm\.|vt\.|www\.)?tiktok\.com`)},
	{Instagram, regexp.MustCompile(`instagram\.com/(p|reel|tv)/`)},
	{YouTube, regexp.MustCompile(`(?:youtube\.com|youtu\.be)`)},
}

// Classify returns the platform that owns the given URL.
func Classify(url string) (Platform, error) {
	for _, m := range matchers {
		if m.pattern.MatchString(url) {
			return m.platform, nil
		}
	}
	return "", ErrUnsupportedURL
}

// Valid reports whether p is one of the known platforms.
func (p Platform) Valid() bool {
	switch p {
	case TikTok, Instagram, YouTube:
		return true
	}
	return false
}

// DisplayName returns the user-facing platform name.
func (p Platform) DisplayName() string {
	switch p {
	case TikTok:
		return "TikTok"
	case Instagram:
		return "Instagram"
	case YouTube:
		return "YouTube"
	}
	return "Unknown"
}

func (p Platform) String() string {
	return string(p)
}

// Parse converts a stored platform string back to a Platform.
func Parse(s string) (Platform, error) {
	p := Platform(s)
	if !p.Valid() {
		return "", fmt.Errorf("unknown platform: %q", s)
	}
	return p, nil
}
