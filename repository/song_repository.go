package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"MixFM/model"
)

// SongRepository defines the interface for song data operations.
type SongRepository interface {
	CreateSong(ctx context.Context, song *model.Song) (int64, error)
	GetSongByID(ctx context.Context, id int64) (*model.Song, error)
	GetAllSongs(ctx context.Context) ([]*model.Song, error)
	UpdateSongFilePath(ctx context.Context, songID int64, filePath string) error
	// DeleteSongCascade removes the song row together with its owner link
	// and every playlist membership row, in one transaction, so no
	// dangling link can survive the delete.
	DeleteSongCascade(ctx context.Context, songID int64) error
}

// mysqlSongRepository implements SongRepository for MySQL.
type mysqlSongRepository struct {
	db *sql.DB
}

// NewMySQLSongRepository creates a new mysqlSongRepository.
func NewMySQLSongRepository(db *sql.DB) SongRepository {
	return &mysqlSongRepository{db: db}
}

// CreateSong adds a new song to the database.
func (r *mysqlSongRepository) CreateSong(ctx context.Context, song *model.Song) (int64, error) {
	if strings.TrimSpace(song.Title) == "" {
		return 0, fmt.Errorf("song title is required: %w", ErrValidation)
	}

	query := "INSERT INTO songs (title, artist, duration, file_path) VALUES (?, ?, ?, ?)"
	res, err := r.db.ExecContext(ctx, query, song.Title, song.Artist, song.Duration, song.FilePath)
	if err != nil {
		return 0, fmt.Errorf("failed to execute create song statement: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get last insert ID for song: %w", err)
	}
	return id, nil
}

// GetSongByID retrieves a song by its ID.
func (r *mysqlSongRepository) GetSongByID(ctx context.Context, id int64) (*model.Song, error) {
	query := "SELECT id, title, artist, duration, file_path, created_at, updated_at FROM songs WHERE id = ?"
	row := r.db.QueryRowContext(ctx, query, id)

	song := &model.Song{}
	err := row.Scan(&song.ID, &song.Title, &song.Artist, &song.Duration, &song.FilePath, &song.CreatedAt, &song.UpdatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("song %d: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to scan song by ID %d: %w", id, err)
	}
	return song, nil
}

// GetAllSongs retrieves all songs in insertion order.
func (r *mysqlSongRepository) GetAllSongs(ctx context.Context) ([]*model.Song, error) {
	query := "SELECT id, title, artist, duration, file_path, created_at, updated_at FROM songs ORDER BY id"
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query songs: %w", err)
	}
	defer rows.Close()

	songs := make([]*model.Song, 0)
	for rows.Next() {
		song := &model.Song{}
		err := rows.Scan(&song.ID, &song.Title, &song.Artist, &song.Duration, &song.FilePath, &song.CreatedAt, &song.UpdatedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan song in GetAllSongs: %w", err)
		}
		songs = append(songs, song)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error during rows iteration in GetAllSongs: %w", err)
	}

	return songs, nil
}

// UpdateSongFilePath records where the song's audio payload was stored.
func (r *mysqlSongRepository) UpdateSongFilePath(ctx context.Context, songID int64, filePath string) error {
	query := "UPDATE songs SET file_path = ? WHERE id = ?"
	_, err := r.db.ExecContext(ctx, query, filePath, songID)
	if err != nil {
		return fmt.Errorf("failed to update file path for song ID %d: %w", songID, err)
	}
	return nil
}

// DeleteSongCascade removes the song and its dependent link rows.
func (r *mysqlSongRepository) DeleteSongCascade(ctx context.Context, songID int64) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin delete song transaction: %w", err)
	}
	defer tx.Rollback()

	// Link rows first so the foreign keys allow the row delete.
	if _, err := tx.ExecContext(ctx, "DELETE FROM user_songs WHERE song_id = ?", songID); err != nil {
		return fmt.Errorf("failed to delete owner link for song ID %d: %w", songID, err)
	}
	if _, err := tx.ExecContext(ctx, "DELETE FROM playlist_songs WHERE song_id = ?", songID); err != nil {
		return fmt.Errorf("failed to delete playlist links for song ID %d: %w", songID, err)
	}

	res, err := tx.ExecContext(ctx, "DELETE FROM songs WHERE id = ?", songID)
	if err != nil {
		return fmt.Errorf("failed to delete song ID %d: %w", songID, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read rows affected deleting song ID %d: %w", songID, err)
	}
	if affected == 0 {
		return fmt.Errorf("song %d: %w", songID, ErrNotFound)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit delete song transaction: %w", err)
	}
	return nil
}
