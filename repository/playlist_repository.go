package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"MixFM/model"
)

// PlaylistRepository defines the interface for playlist data operations.
type PlaylistRepository interface {
	// CreatePlaylistWithOwner inserts the playlist row and the owning
	// user_playlists link in one transaction; an orphan playlist with no
	// owner never becomes visible.
	CreatePlaylistWithOwner(ctx context.Context, playlist *model.Playlist, ownerID int64) (int64, error)
	GetPlaylistByID(ctx context.Context, id int64) (*model.Playlist, error)
	GetAllPlaylists(ctx context.Context) ([]*model.Playlist, error)
	GetPlaylistsByIDs(ctx context.Context, ids []int64) ([]*model.Playlist, error)
}

// mysqlPlaylistRepository implements PlaylistRepository for MySQL.
type mysqlPlaylistRepository struct {
	db *sql.DB
}

// NewMySQLPlaylistRepository creates a new mysqlPlaylistRepository.
func NewMySQLPlaylistRepository(db *sql.DB) PlaylistRepository {
	return &mysqlPlaylistRepository{db: db}
}

// CreatePlaylistWithOwner creates the playlist and links its creator.
func (r *mysqlPlaylistRepository) CreatePlaylistWithOwner(ctx context.Context, playlist *model.Playlist, ownerID int64) (int64, error) {
	if strings.TrimSpace(playlist.Name) == "" {
		return 0, fmt.Errorf("playlist name is required: %w", ErrValidation)
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin create playlist transaction: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx,
		"INSERT INTO playlists (name, description) VALUES (?, ?)",
		playlist.Name, playlist.Description)
	if err != nil {
		return 0, fmt.Errorf("failed to insert playlist: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get last insert ID for playlist: %w", err)
	}

	if _, err := tx.ExecContext(ctx,
		"INSERT INTO user_playlists (user_id, playlist_id) VALUES (?, ?)",
		ownerID, id); err != nil {
		if isForeignKeyViolation(err) {
			return 0, fmt.Errorf("owner %d for playlist: %w", ownerID, ErrMissingReference)
		}
		return 0, fmt.Errorf("failed to link playlist %d to owner %d: %w", id, ownerID, err)
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit create playlist transaction: %w", err)
	}
	return id, nil
}

// GetPlaylistByID retrieves a playlist by its ID.
func (r *mysqlPlaylistRepository) GetPlaylistByID(ctx context.Context, id int64) (*model.Playlist, error) {
	query := "SELECT id, name, description, created_at, updated_at FROM playlists WHERE id = ?"
	row := r.db.QueryRowContext(ctx, query, id)

	playlist := &model.Playlist{}
	var description sql.NullString
	err := row.Scan(&playlist.ID, &playlist.Name, &description, &playlist.CreatedAt, &playlist.UpdatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("playlist %d: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to scan playlist by ID %d: %w", id, err)
	}
	playlist.Description = description.String
	return playlist, nil
}

// GetAllPlaylists retrieves all playlists in insertion order.
func (r *mysqlPlaylistRepository) GetAllPlaylists(ctx context.Context) ([]*model.Playlist, error) {
	query := "SELECT id, name, description, created_at, updated_at FROM playlists ORDER BY id"
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query playlists: %w", err)
	}
	defer rows.Close()

	return scanPlaylists(rows)
}

// GetPlaylistsByIDs retrieves the playlists for the given ids, preserving
// the id order. Missing ids are skipped.
func (r *mysqlPlaylistRepository) GetPlaylistsByIDs(ctx context.Context, ids []int64) ([]*model.Playlist, error) {
	playlists := make([]*model.Playlist, 0, len(ids))
	for _, id := range ids {
		playlist, err := r.GetPlaylistByID(ctx, id)
		if err != nil {
			if isNotFound(err) {
				continue
			}
			return nil, err
		}
		playlists = append(playlists, playlist)
	}
	return playlists, nil
}

func scanPlaylists(rows *sql.Rows) ([]*model.Playlist, error) {
	playlists := make([]*model.Playlist, 0)
	for rows.Next() {
		playlist := &model.Playlist{}
		var description sql.NullString
		if err := rows.Scan(&playlist.ID, &playlist.Name, &description, &playlist.CreatedAt, &playlist.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan playlist row: %w", err)
		}
		playlist.Description = description.String
		playlists = append(playlists, playlist)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error during playlist rows iteration: %w", err)
	}
	return playlists, nil
}
