package platform

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name string
		url  string
		want Platform
	}{
		{"tiktok standard video", "https://www.tiktok.com/@user/video/7123456789012345678", TikTok},
		{"tiktok short vm link", "https://vm.tiktok.com/ZMabc123/", TikTok},
		{"tiktok short vt link", "https://vt.tiktok.com/ZSabc123/", TikTok},
		{"tiktok bare domain", "https://tiktok.com/@user/video/123", TikTok},
		{"instagram post", "https://www.instagram.com/p/Cxyz123abcd/", Instagram},
		{"instagram reel", "https://www.instagram.com/reel/Cxyz123abcd/", Instagram},
		{"instagram tv", "https://www.instagram.com/tv/Cxyz123abcd/", Instagram},
		{"youtube watch", "https://www.youtube.com/watch?v=dQw4w9WgXcQ", YouTube},
		{"youtube short link", "https://youtu.be/dQw4w9WgXcQ", YouTube},
		{"youtube shorts", "https://www.youtube.com/shorts/dQw4w9WgXcQ", YouTube},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Classify(tt.url)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestClassify_Priority(t *testing.T) {
	// When a URL matches several patterns the earlier matcher wins:
	// TikTok before Instagram before YouTube.
	tests := []struct {
		name string
		url  string
		want Platform
	}{
		{"tiktok beats instagram", "https://www.tiktok.com/@u/video/1?from=instagram.com/p/x/", TikTok},
		{"tiktok beats youtube", "https://www.tiktok.com/@u/video/1?src=youtu.be/abc", TikTok},
		{"instagram beats youtube", "https://www.instagram.com/reel/Cxyz123abcd/?utm=youtube.com", Instagram},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Classify(tt.url)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestClassify_Unsupported(t *testing.T) {
	tests := []struct {
		name string
		url  string
	}{
		{"twitter link", "https://twitter.com/user/status/123"},
		{"plain text", "not a url at all"},
		{"instagram profile page", "https://www.instagram.com/username/"},
		{"empty string", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Classify(tt.url)
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrUnsupportedURL))
		})
	}
}

func TestPlatform_Valid(t *testing.T) {
	assert.True(t, TikTok.Valid())
	assert.True(t, Instagram.Valid())
	assert.True(t, YouTube.Valid())
	assert.False(t, Platform("twitter").Valid())
	assert.False(t, Platform("").Valid())
}

func TestPlatform_DisplayName(t *testing.T) {
	assert.Equal(t, "TikTok", TikTok.DisplayName())
	assert.Equal(t, "Instagram", Instagram.DisplayName())
	assert.Equal(t, "YouTube", YouTube.DisplayName())
	assert.Equal(t, "Unknown", Platform("other").DisplayName())
}

func TestParse(t *testing.T) {
	p, err := Parse("tiktok")
	require.NoError(t, err)
	assert.Equal(t, TikTok, p)

	_, err = Parse("myspace")
	require.Error(t, err)
}
