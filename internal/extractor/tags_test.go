package extractor

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHashtags(t *testing.T) {
	tests := []struct {
		name string
		text string
		want []string
	}{
		{"simple tags", "check this #news #breaking", []string{"news", "breaking"}},
		{"accented tag", "la #vérité sur cette affaire", []string{"vérité"}},
		{"no tags", "nothing here", []string{}},
		{"tag with digits", "#covid19 update", []string{"covid19"}},
		{"hash alone is not a tag", "price # 100", []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Hashtags(tt.text))
		})
	}
}

func TestMentions(t *testing.T) {
	assert.Equal(t, []string{"journaliste", "media.officiel"}, Mentions("cc @journaliste et @media.officiel"))
	assert.Equal(t, []string{}, Mentions("no mentions"))
}

func TestFirstNonEmpty(t *testing.T) {
	assert.Equal(t, "a", firstNonEmpty("a", "b"))
	assert.Equal(t, "b", firstNonEmpty("", "b"))
	assert.Equal(t, "", firstNonEmpty("", ""))
}
