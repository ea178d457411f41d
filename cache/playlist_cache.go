package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"MixFM/db"

	"github.com/redis/go-redis/v9"
)

// Cached playlist song views. Only the requester-independent part of a
// playlist page is cached here; ownership flags are always computed per
// request.

const playlistSongsTTL = 15 * time.Minute

// SongView is one resolved song row in a playlist page.
type SongView struct {
	ID       int64   `json:"id"`
	Title    string  `json:"title"`
	Artist   string  `json:"artist"`
	Duration float32 `json:"duration"`
}

// playlistSongsKey builds the Redis key for a playlist's song list.
func playlistSongsKey(playlistID int64) string {
	return fmt.Sprintf("playlist:%d:songs", playlistID)
}

// GetPlaylistSongs returns the cached song list, or (nil, nil) on a miss.
func GetPlaylistSongs(ctx context.Context, playlistID int64) ([]SongView, error) {
	if db.RedisClient == nil {
		return nil, nil
	}

	raw, err := db.RedisClient.Get(ctx, playlistSongsKey(playlistID)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read playlist %d songs from cache: %w", playlistID, err)
	}

	var songs []SongView
	if err := json.Unmarshal([]byte(raw), &songs); err != nil {
		return nil, fmt.Errorf("failed to decode cached songs for playlist %d: %w", playlistID, err)
	}
	return songs, nil
}

// SetPlaylistSongs stores the resolved song list with a TTL.
func SetPlaylistSongs(ctx context.Context, playlistID int64, songs []SongView) error {
	if db.RedisClient == nil {
		return nil
	}

	raw, err := json.Marshal(songs)
	if err != nil {
		return fmt.Errorf("failed to encode songs for playlist %d: %w", playlistID, err)
	}
	if err := db.RedisClient.Set(ctx, playlistSongsKey(playlistID), raw, playlistSongsTTL).Err(); err != nil {
		return fmt.Errorf("failed to cache songs for playlist %d: %w", playlistID, err)
	}
	return nil
}

// InvalidatePlaylistSongs drops the cached song list after a membership
// change.
func InvalidatePlaylistSongs(ctx context.Context, playlistIDs ...int64) error {
	if db.RedisClient == nil || len(playlistIDs) == 0 {
		return nil
	}

	keys := make([]string, 0, len(playlistIDs))
	for _, id := range playlistIDs {
		keys = append(keys, playlistSongsKey(id))
	}
	if err := db.RedisClient.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("failed to invalidate playlist song cache: %w", err)
	}
	return nil
}
