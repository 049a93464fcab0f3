// Package queue schedules and processes watch-list sweep jobs over asynq.
package queue

import (
	"encoding/json"
	"fmt"
)

// Task types
const (
	TypeSweepAccount = "watch:sweep"
)

// SweepAccountPayload is the payload for account sweep tasks.
type SweepAccountPayload struct {
	AccountID   int64          `json:"account_id"`
	Username    string         `json:"username"`
	OwnerUserID int64          `json:"owner_user_id"`
	Metadata    map[string]any `json:"metadata"`
}

// NewSweepAccountTask creates a sweep task payload.
func NewSweepAccountTask(accountID int64, username string, ownerUserID int64, metadata map[string]any) (*SweepAccountPayload, error) {
	if username == "" {
		return nil, fmt.Errorf("username is required")
	}

	if metadata == nil {
		metadata = make(map[string]any)
	}

	return &SweepAccountPayload{
		AccountID:   accountID,
		Username:    username,
		OwnerUserID: ownerUserID,
		Metadata:    metadata,
	}, nil
}

// Marshal serializes the payload to JSON.
func (p *SweepAccountPayload) Marshal() ([]byte, error) {
	return json.Marshal(p)
}

// UnmarshalSweepAccountPayload deserializes JSON to payload.
func UnmarshalSweepAccountPayload(data []byte) (*SweepAccountPayload, error) {
	var payload SweepAccountPayload
	if err := json.Unmarshal(data, &payload); err != nil {
		return nil, fmt.Errorf("failed to unmarshal payload: %w", err)
	}
	return &payload, nil
}
