package models

import "time"

// WatchStatus is the lifecycle state of a watched account.
type WatchStatus string

const (
	WatchActive   WatchStatus = "active"
	WatchInactive WatchStatus = "inactive"
)

// WatchedAccount is a creator account a user asked to have re-checked
// periodically. Rows are soft-deleted by flipping status to inactive.
type WatchedAccount struct {
	ID                int64       `db:"id"`
	Username          string      `db:"username"`
	OwnerUserID       int64       `db:"owner_user_id"`
	Status            WatchStatus `db:"status"`
	LastCheckedAt     *time.Time  `db:"last_checked_at"`
	LastSeenContentID *string     `db:"last_seen_content_id"`
	CreatedAt         time.Time   `db:"created_at"`
	UpdatedAt         time.Time   `db:"updated_at"`
}

// NewWatchedAccount creates an active watch for the given owner.
func NewWatchedAccount(username string, ownerUserID int64) *WatchedAccount {
	now := time.Now()
	return &WatchedAccount{
		Username:    username,
		OwnerUserID: ownerUserID,
		Status:      WatchActive,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

// SweepLog is one audit entry written by the watch-list sweeper.
type SweepLog struct {
	ID          int64          `db:"id"`
	AccountID   int64          `db:"account_id"`
	Action      string         `db:"action"`
	VideosFound int            `db:"videos_found"`
	NewVideos   int            `db:"new_videos"`
	Details     map[string]any `db:"details"`
	CreatedAt   time.Time      `db:"created_at"`
}
