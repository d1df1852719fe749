package models

import "time"

// Snapshot is a show captured by a save request.
type Snapshot struct {
	ID        string    `json:"id"`
	SessionID string    `json:"sessionId"`
	Show      Show      `json:"show"`
	SavedAt   time.Time `json:"savedAt"`
}
