package models

import "time"

// VerificationStatus reflects whether the fact-check upstream produced an
// analysis for the content.
type VerificationStatus string

const (
	StatusCompleted VerificationStatus = "completed"
	StatusError     VerificationStatus = "error"
)

// Verdict is one of the five credibility labels the analysis text is
// classified into.
type Verdict string

const (
	VerdictVerified    Verdict = "VERIFIED"
	VerdictMostlyTrue  Verdict = "MOSTLY_TRUE"
	VerdictMixed       Verdict = "MIXED"
	VerdictMostlyFalse Verdict = "MOSTLY_FALSE"
	VerdictFalse       Verdict = "FALSE"
)

// Flag severity levels.
const (
	FlagWarning = "warning"
	FlagDanger  = "danger"
)

// Flag is a single alert raised by the verdict classifier.
type Flag struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

// Verification is one fact-check result for a content record. Rows are
// append-only; the newest row per content record is the latest verdict.
type Verification struct {
	ID          int64              `db:"id"`
	ContentID   int64              `db:"content_id"`
	RequestID   string             `db:"request_id"`
	Status      VerificationStatus `db:"status"`
	Score       int                `db:"score"`
	Verdict     Verdict            `db:"verdict"`
	Summary     string             `db:"summary"`
	Flags       []Flag             `db:"flags"`
	Sources     []string           `db:"sources"`
	Explanation string             `db:"explanation"`
	ToolsUsed   []string           `db:"tools_used"`
	VerifiedAt  time.Time          `db:"verified_at"`
}
