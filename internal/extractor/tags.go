package extractor

import "regexp"

// The character class covers word characters plus U+00C0..U+017F so accented
// tags like #vérité survive extraction.
var (
	hashtagPattern = regexp.MustCompile(`#[\w\x{00C0}-\x{017F}]+`)
	mentionPattern = regexp.MustCompile(`@[\w\x{00C0}-\x{017F}.]+`)
)

// Hashtags returns the hashtags found in text, without the leading '#'.
func Hashtags(text string) []string {
	matches := hashtagPattern.FindAllString(text, -1)
	tags := make([]string, 0, len(matches))
	for _, m := range matches {
		tags = append(tags, m[1:])
	}
	return tags
}

// Mentions returns the @-mentions found in text, without the leading '@'.
func Mentions(text string) []string {
	matches := mentionPattern.FindAllString(text, -1)
	mentions := make([]string, 0, len(matches))
	for _, m := range matches {
		mentions = append(mentions, m[1:])
	}
	return mentions
}
