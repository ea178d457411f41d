package model

import "time"

// Song represents an uploaded audio track.
type Song struct {
	ID        int64     `json:"id"`
	Title     string    `json:"title"`
	Artist    string    `json:"artist"`
	Duration  float32   `json:"duration"` // Duration in seconds
	FilePath  string    `json:"-"`        // Blob store key, not exposed in API directly
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}
