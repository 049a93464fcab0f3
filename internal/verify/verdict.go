package verify

import (
	"strings"
	"time"

	"github.com/factlens/social-factcheck-go/internal/db/models"
)

// verdictRule matches one family of phrases in the analysis text. Rules are
// evaluated in order and the first match wins, so refusals and partial
// answers are caught before any factual keyword gets a chance to fire.
type verdictRule struct {
	match   func(text string) bool
	score   int
	verdict models.Verdict
	summary string
	flags   []models.Flag
}

var verdictRules = []verdictRule{
	{
		// The service refused or could not process the media.
		match: func(t string) bool {
			return containsAny(t, "ne suis pas capable", "cannot analyze", "ne peux pas analyser", "unable to") ||
				(strings.Contains(t, "pas capable") && strings.Contains(t, "analyser"))
		},
		score:   0,
		verdict: models.VerdictMixed,
		summary: "The analysis service cannot process this media",
		flags:   []models.Flag{{Type: models.FlagWarning, Message: "Media analysis unavailable"}},
	},
	{
		// A short "hold on" answer means the stream ended mid-analysis.
		match: func(t string) bool {
			return containsAny(t, "un moment", "veuillez patienter") ||
				(strings.Contains(t, "je vais") && len(t) < 200)
		},
		score:   50,
		verdict: models.VerdictMixed,
		summary: "Analysis incomplete, try again in a moment",
		flags:   []models.Flag{{Type: models.FlagWarning, Message: "Partial response received"}},
	},
	{
		match: func(t string) bool {
			return containsAny(t, "généré par ia", "generated by ai", "synthétique détecté",
				"synthetic detected", "contenu artificiel", "ai-generated")
		},
		score:   35,
		verdict: models.VerdictMostlyFalse,
		summary: "AI-generated content detected",
		flags:   []models.Flag{{Type: models.FlagWarning, Message: "AI-generated content detected"}},
	},
	{
		// Positive confirmation, guarded against negated forms.
		match: func(t string) bool {
			return containsAny(t, "confirme", "véridique", "exact", "correct") &&
				!strings.Contains(t, "ne confirme pas") &&
				!strings.Contains(t, "pas confirmé")
		},
		score:   85,
		verdict: models.VerdictVerified,
		summary: "Content verified as authentic",
	},
	{
		match: func(t string) bool {
			return containsAny(t, "faux", "false", "désinformation", "mensonge")
		},
		score:   25,
		verdict: models.VerdictFalse,
		summary: "Content identified as false or disinformation",
		flags:   []models.Flag{{Type: models.FlagDanger, Message: "Disinformation detected"}},
	},
	{
		match: func(t string) bool {
			return containsAny(t, "trompeur", "misleading", "manipulé")
		},
		score:   40,
		verdict: models.VerdictMostlyFalse,
		summary: "Potentially misleading or manipulated content",
		flags:   []models.Flag{{Type: models.FlagWarning, Message: "Potentially misleading content"}},
	},
	{
		match: func(t string) bool {
			return containsAny(t, "vérifié", "verified", "authentique")
		},
		score:   85,
		verdict: models.VerdictVerified,
		summary: "Content verified as authentic",
	},
	{
		match: func(t string) bool {
			return containsAny(t, "probable", "likely", "plutôt vrai")
		},
		score:   65,
		verdict: models.VerdictMostlyTrue,
		summary: "Content is probably accurate",
	},
	{
		match: func(t string) bool {
			return containsAny(t, "histoire", "conte", "fable", "fiction")
		},
		score:   50,
		verdict: models.VerdictMixed,
		summary: "Narrative or entertainment content, not factual",
	},
}

// toolSignal maps response keywords to the analysis tool that produced them.
// Unlike verdict rules these are independent; every match is recorded.
type toolSignal struct {
	keywords []string
	tool     string
}

var toolSignals = []toolSignal{
	{keywords: []string{"deepfake"}, tool: "Deepfake detection"},
	{keywords: []string{"synthetic", "synthétique"}, tool: "AI content detection"},
	{keywords: []string{"forgery", "manipulation"}, tool: "Forensic analysis"},
	{keywords: []string{"speech", "voix"}, tool: "Audio analysis"},
}

// Classify derives a structured verdict from the analysis text. The full
// text is preserved as the explanation; matching is case-insensitive.
func Classify(analysis string) *models.Verification {
	text := strings.ToLower(analysis)

	verification := &models.Verification{
		Status:      models.StatusCompleted,
		Score:       70,
		Verdict:     models.VerdictMixed,
		Summary:     "Analysis inconclusive",
		Explanation: analysis,
		VerifiedAt:  time.Now(),
	}

	for _, rule := range verdictRules {
		if rule.match(text) {
			verification.Score = rule.score
			verification.Verdict = rule.verdict
			verification.Summary = rule.summary
			verification.Flags = rule.flags
			break
		}
	}

	for _, signal := range toolSignals {
		if containsAny(text, signal.keywords...) {
			verification.ToolsUsed = append(verification.ToolsUsed, signal.tool)
		}
	}

	return verification
}

func containsAny(text string, phrases ...string) bool {
	for _, p := range phrases {
		if strings.Contains(text, p) {
			return true
		}
	}
	return false
}
