package events

import (
	"context"
	"time"
)

// EventType names a domain event.
type EventType string

const (
	EventTypeSongUploaded  EventType = "song_uploaded"
	EventTypeSongDeleted   EventType = "song_deleted"
	EventTypeCommentPosted EventType = "comment_posted"
)

// Event is the envelope written to the event stream.
type Event struct {
	Type      EventType `json:"type"`
	UserID    int64     `json:"userId"`
	Timestamp time.Time `json:"timestamp"`

	SongID     int64 `json:"songId,omitempty"`
	PlaylistID int64 `json:"playlistId,omitempty"`
	CommentID  int64 `json:"commentId,omitempty"`
}

// Publisher emits domain events. Publishing is best-effort; a failed
// publish never fails the request that produced it.
type Publisher interface {
	Publish(ctx context.Context, event Event) error
	Close() error
}

// NopPublisher discards events. Used when no brokers are configured and
// in tests.
type NopPublisher struct{}

func (NopPublisher) Publish(ctx context.Context, event Event) error { return nil }
func (NopPublisher) Close() error                                   { return nil }
