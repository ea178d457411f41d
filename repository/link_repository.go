package repository

import (
	"context"
	"database/sql"
	"fmt"
)

// LinkRepository is the generic contract for one join table. Each
// relationship gets its own instance; the semantics are identical across
// tables, only the table and column names differ.
type LinkRepository interface {
	// Link inserts a relationship row. The pair must not already exist
	// (ErrConflict) and both sides must resolve (ErrMissingReference).
	Link(ctx context.Context, ownerID, targetID int64) error
	// Unlink removes the row; removing an absent pair is a no-op.
	Unlink(ctx context.Context, ownerID, targetID int64) error
	// Owner returns the single owner of a target, or 0 when none. More
	// than one matching row means the table is corrupt (ErrIntegrity).
	Owner(ctx context.Context, targetID int64) (int64, error)
	// Targets returns the target ids for an owner, ordered by creation.
	Targets(ctx context.Context, ownerID int64) ([]int64, error)
	// Owners returns every owner id for a target, ordered by creation.
	// For many-to-many tables a target may have several owners; Owner is
	// the single-owner specialization.
	Owners(ctx context.Context, targetID int64) ([]int64, error)
}

// linkTable describes one join table.
type linkTable struct {
	table       string
	ownerCol    string
	targetCol   string
	ownerTable  string
	targetTable string
}

// mysqlLinkRepository implements LinkRepository for MySQL over one
// linkTable descriptor.
type mysqlLinkRepository struct {
	db   *sql.DB
	spec linkTable
}

// NewUserPlaylistRepository stores which user created which playlist.
func NewUserPlaylistRepository(db *sql.DB) LinkRepository {
	return &mysqlLinkRepository{db: db, spec: linkTable{
		table: "user_playlists", ownerCol: "user_id", targetCol: "playlist_id",
		ownerTable: "users", targetTable: "playlists",
	}}
}

// NewUserSongRepository stores which user uploaded which song. The table's
// unique index on song_id keeps ownership single-valued.
func NewUserSongRepository(db *sql.DB) LinkRepository {
	return &mysqlLinkRepository{db: db, spec: linkTable{
		table: "user_songs", ownerCol: "user_id", targetCol: "song_id",
		ownerTable: "users", targetTable: "songs",
	}}
}

// NewPlaylistSongRepository stores playlist membership of songs.
func NewPlaylistSongRepository(db *sql.DB) LinkRepository {
	return &mysqlLinkRepository{db: db, spec: linkTable{
		table: "playlist_songs", ownerCol: "playlist_id", targetCol: "song_id",
		ownerTable: "playlists", targetTable: "songs",
	}}
}

// Link inserts a relationship row.
func (r *mysqlLinkRepository) Link(ctx context.Context, ownerID, targetID int64) error {
	// Pre-check both sides so a bad reference surfaces as a typed error
	// rather than a driver error. The unique constraint still guards the
	// race between concurrent links.
	if err := r.checkExists(ctx, r.spec.ownerTable, ownerID); err != nil {
		return err
	}
	if err := r.checkExists(ctx, r.spec.targetTable, targetID); err != nil {
		return err
	}

	query := fmt.Sprintf("INSERT INTO %s (%s, %s) VALUES (?, ?)",
		r.spec.table, r.spec.ownerCol, r.spec.targetCol)
	if _, err := r.db.ExecContext(ctx, query, ownerID, targetID); err != nil {
		if isDuplicateEntry(err) {
			return fmt.Errorf("%s (%d, %d): %w", r.spec.table, ownerID, targetID, ErrConflict)
		}
		if isForeignKeyViolation(err) {
			return fmt.Errorf("%s (%d, %d): %w", r.spec.table, ownerID, targetID, ErrMissingReference)
		}
		return fmt.Errorf("failed to insert %s link (%d, %d): %w", r.spec.table, ownerID, targetID, err)
	}
	return nil
}

// Unlink removes the relationship row.
func (r *mysqlLinkRepository) Unlink(ctx context.Context, ownerID, targetID int64) error {
	query := fmt.Sprintf("DELETE FROM %s WHERE %s = ? AND %s = ?",
		r.spec.table, r.spec.ownerCol, r.spec.targetCol)
	if _, err := r.db.ExecContext(ctx, query, ownerID, targetID); err != nil {
		return fmt.Errorf("failed to delete %s link (%d, %d): %w", r.spec.table, ownerID, targetID, err)
	}
	return nil
}

// Owner returns the owner of a target, or 0 when the target is unowned.
func (r *mysqlLinkRepository) Owner(ctx context.Context, targetID int64) (int64, error) {
	owners, err := r.Owners(ctx, targetID)
	if err != nil {
		return 0, err
	}
	switch len(owners) {
	case 0:
		return 0, nil
	case 1:
		return owners[0], nil
	default:
		return 0, fmt.Errorf("%s has multiple owner rows for target %d: %w", r.spec.table, targetID, ErrIntegrity)
	}
}

// Owners returns every owner id for a target, ordered by creation.
func (r *mysqlLinkRepository) Owners(ctx context.Context, targetID int64) ([]int64, error) {
	query := fmt.Sprintf("SELECT %s FROM %s WHERE %s = ? ORDER BY id",
		r.spec.ownerCol, r.spec.table, r.spec.targetCol)
	rows, err := r.db.QueryContext(ctx, query, targetID)
	if err != nil {
		return nil, fmt.Errorf("failed to query owners in %s for target %d: %w", r.spec.table, targetID, err)
	}
	defer rows.Close()

	ids := make([]int64, 0)
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan owner in %s for target %d: %w", r.spec.table, targetID, err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error during owner rows iteration in %s: %w", r.spec.table, err)
	}
	return ids, nil
}

// Targets returns target ids for an owner, ordered by creation.
func (r *mysqlLinkRepository) Targets(ctx context.Context, ownerID int64) ([]int64, error) {
	query := fmt.Sprintf("SELECT %s FROM %s WHERE %s = ? ORDER BY id",
		r.spec.targetCol, r.spec.table, r.spec.ownerCol)
	rows, err := r.db.QueryContext(ctx, query, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to query targets in %s for owner %d: %w", r.spec.table, ownerID, err)
	}
	defer rows.Close()

	ids := make([]int64, 0)
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan target in %s for owner %d: %w", r.spec.table, ownerID, err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error during target rows iteration in %s: %w", r.spec.table, err)
	}
	return ids, nil
}

func (r *mysqlLinkRepository) checkExists(ctx context.Context, table string, id int64) error {
	var found int64
	query := fmt.Sprintf("SELECT id FROM %s WHERE id = ?", table)
	err := r.db.QueryRowContext(ctx, query, id).Scan(&found)
	if err != nil {
		if err == sql.ErrNoRows {
			return fmt.Errorf("%s row %d: %w", table, id, ErrMissingReference)
		}
		return fmt.Errorf("failed to check %s row %d: %w", table, id, err)
	}
	return nil
}
