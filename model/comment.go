package model

import "time"

// The comment subsystem is GORM-managed; tags here drive AutoMigrate.

// Comment represents a single comment body in a playlist's thread.
type Comment struct {
	ID        int64     `gorm:"primaryKey" json:"id"`
	Text      string    `gorm:"type:text;not null" json:"text"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// UserComment links a comment to the user who authored it.
// The unique index on comment_id keeps authorship single-valued.
type UserComment struct {
	ID        int64     `gorm:"primaryKey" json:"id"`
	UserID    int64     `gorm:"index;not null" json:"userId"`
	CommentID int64     `gorm:"uniqueIndex;not null" json:"commentId"`
	CreatedAt time.Time `json:"createdAt"`
}

// PlaylistComment links a comment into a playlist's thread.
type PlaylistComment struct {
	ID         int64     `gorm:"primaryKey" json:"id"`
	PlaylistID int64     `gorm:"uniqueIndex:uq_playlist_comment;not null" json:"playlistId"`
	CommentID  int64     `gorm:"uniqueIndex:uq_playlist_comment;not null" json:"commentId"`
	CreatedAt  time.Time `json:"createdAt"`
}
