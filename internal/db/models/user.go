package models

import "time"

// BotUser is a chat user known to the bot, tracked for stats and rate
// accounting. Upserted on /start, counter bumped on every /check.
type BotUser struct {
	ID            int64      `db:"id"`
	TelegramID    int64      `db:"telegram_id"`
	Username      string     `db:"username"`
	FirstName     string     `db:"first_name"`
	LastName      string     `db:"last_name"`
	RequestCount  int64      `db:"request_count"`
	LastRequestAt *time.Time `db:"last_request_at"`
	JoinedAt      time.Time  `db:"joined_at"`
}

// UserStats is the aggregate view rendered by /stats.
type UserStats struct {
	RequestCount  int64
	WatchCount    int64
	VerifiedCount int64
	JoinedAt      *time.Time
}

// GlobalStats is the system-wide aggregate logged at startup and exposed on
// the admin API.
type GlobalStats struct {
	TotalContents      int64 `json:"total_contents"`
	TotalVerifications int64 `json:"total_verifications"`
	ActiveWatches      int64 `json:"active_watches"`
	TotalUsers         int64 `json:"total_users"`
}
