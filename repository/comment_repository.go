package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"MixFM/model"

	"gorm.io/gorm"
)

// The comment subsystem is the newest part of the schema and runs on
// GORM; the older stores stay on database/sql.

// CommentRepository defines the interface for comment data operations.
type CommentRepository interface {
	CreateComment(ctx context.Context, comment *model.Comment) (int64, error)
	GetCommentByID(ctx context.Context, id int64) (*model.Comment, error)
	GetAllComments(ctx context.Context) ([]*model.Comment, error)
	DeleteComment(ctx context.Context, id int64) error
}

// gormCommentRepository implements CommentRepository with GORM.
type gormCommentRepository struct {
	db *gorm.DB
}

// NewGormCommentRepository creates a new gormCommentRepository.
func NewGormCommentRepository(db *gorm.DB) CommentRepository {
	return &gormCommentRepository{db: db}
}

// CreateComment adds a new comment.
func (r *gormCommentRepository) CreateComment(ctx context.Context, comment *model.Comment) (int64, error) {
	if strings.TrimSpace(comment.Text) == "" {
		return 0, fmt.Errorf("comment text is required: %w", ErrValidation)
	}
	if err := r.db.WithContext(ctx).Create(comment).Error; err != nil {
		return 0, fmt.Errorf("failed to create comment: %w", err)
	}
	return comment.ID, nil
}

// GetCommentByID retrieves a comment by its ID.
func (r *gormCommentRepository) GetCommentByID(ctx context.Context, id int64) (*model.Comment, error) {
	var comment model.Comment
	err := r.db.WithContext(ctx).First(&comment, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("comment %d: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get comment %d: %w", id, err)
	}
	return &comment, nil
}

// GetAllComments retrieves all comments in insertion order.
func (r *gormCommentRepository) GetAllComments(ctx context.Context) ([]*model.Comment, error) {
	var comments []*model.Comment
	if err := r.db.WithContext(ctx).Order("id").Find(&comments).Error; err != nil {
		return nil, fmt.Errorf("failed to list comments: %w", err)
	}
	return comments, nil
}

// DeleteComment removes a comment by its ID.
func (r *gormCommentRepository) DeleteComment(ctx context.Context, id int64) error {
	res := r.db.WithContext(ctx).Delete(&model.Comment{}, id)
	if res.Error != nil {
		return fmt.Errorf("failed to delete comment %d: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("comment %d: %w", id, ErrNotFound)
	}
	return nil
}

// gormUserCommentRepository links comments to their authors.
type gormUserCommentRepository struct {
	db *gorm.DB
}

// NewGormUserCommentRepository creates the comment authorship link store.
func NewGormUserCommentRepository(db *gorm.DB) LinkRepository {
	return &gormUserCommentRepository{db: db}
}

func (r *gormUserCommentRepository) Link(ctx context.Context, ownerID, targetID int64) error {
	if err := gormCheckExists(ctx, r.db, &model.User{}, ownerID, "users"); err != nil {
		return err
	}
	if err := gormCheckExists(ctx, r.db, &model.Comment{}, targetID, "comments"); err != nil {
		return err
	}
	link := &model.UserComment{UserID: ownerID, CommentID: targetID}
	if err := r.db.WithContext(ctx).Create(link).Error; err != nil {
		if isDuplicateEntry(err) || errors.Is(err, gorm.ErrDuplicatedKey) {
			return fmt.Errorf("user_comments (%d, %d): %w", ownerID, targetID, ErrConflict)
		}
		return fmt.Errorf("failed to link comment %d to user %d: %w", targetID, ownerID, err)
	}
	return nil
}

func (r *gormUserCommentRepository) Unlink(ctx context.Context, ownerID, targetID int64) error {
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND comment_id = ?", ownerID, targetID).
		Delete(&model.UserComment{}).Error
	if err != nil {
		return fmt.Errorf("failed to unlink comment %d from user %d: %w", targetID, ownerID, err)
	}
	return nil
}

func (r *gormUserCommentRepository) Owner(ctx context.Context, targetID int64) (int64, error) {
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
		return 0, fmt.Errorf("user_comments has multiple author rows for comment %d: %w", targetID, ErrIntegrity)
	}
}

func (r *gormUserCommentRepository) Owners(ctx context.Context, targetID int64) ([]int64, error) {
	var links []model.UserComment
	err := r.db.WithContext(ctx).Where("comment_id = ?", targetID).Order("id").Find(&links).Error
	if err != nil {
		return nil, fmt.Errorf("failed to query comment %d author: %w", targetID, err)
	}
	ids := make([]int64, 0, len(links))
	for _, link := range links {
		ids = append(ids, link.UserID)
	}
	return ids, nil
}

func (r *gormUserCommentRepository) Targets(ctx context.Context, ownerID int64) ([]int64, error) {
	var links []model.UserComment
	err := r.db.WithContext(ctx).Where("user_id = ?", ownerID).Order("id").Find(&links).Error
	if err != nil {
		return nil, fmt.Errorf("failed to query comments for user %d: %w", ownerID, err)
	}
	ids := make([]int64, 0, len(links))
	for _, link := range links {
		ids = append(ids, link.CommentID)
	}
	return ids, nil
}

// gormPlaylistCommentRepository links comments into playlist threads.
type gormPlaylistCommentRepository struct {
	db *gorm.DB
}

// NewGormPlaylistCommentRepository creates the playlist thread link store.
func NewGormPlaylistCommentRepository(db *gorm.DB) LinkRepository {
	return &gormPlaylistCommentRepository{db: db}
}

func (r *gormPlaylistCommentRepository) Link(ctx context.Context, ownerID, targetID int64) error {
	if err := gormCheckExists(ctx, r.db, &model.Playlist{}, ownerID, "playlists"); err != nil {
		return err
	}
	if err := gormCheckExists(ctx, r.db, &model.Comment{}, targetID, "comments"); err != nil {
		return err
	}
	link := &model.PlaylistComment{PlaylistID: ownerID, CommentID: targetID}
	if err := r.db.WithContext(ctx).Create(link).Error; err != nil {
		if isDuplicateEntry(err) || errors.Is(err, gorm.ErrDuplicatedKey) {
			return fmt.Errorf("playlist_comments (%d, %d): %w", ownerID, targetID, ErrConflict)
		}
		return fmt.Errorf("failed to link comment %d to playlist %d: %w", targetID, ownerID, err)
	}
	return nil
}

func (r *gormPlaylistCommentRepository) Unlink(ctx context.Context, ownerID, targetID int64) error {
	err := r.db.WithContext(ctx).
		Where("playlist_id = ? AND comment_id = ?", ownerID, targetID).
		Delete(&model.PlaylistComment{}).Error
	if err != nil {
		return fmt.Errorf("failed to unlink comment %d from playlist %d: %w", targetID, ownerID, err)
	}
	return nil
}

func (r *gormPlaylistCommentRepository) Owner(ctx context.Context, targetID int64) (int64, error) {
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
		return 0, fmt.Errorf("playlist_comments has multiple thread rows for comment %d: %w", targetID, ErrIntegrity)
	}
}

func (r *gormPlaylistCommentRepository) Owners(ctx context.Context, targetID int64) ([]int64, error) {
	var links []model.PlaylistComment
	err := r.db.WithContext(ctx).Where("comment_id = ?", targetID).Order("id").Find(&links).Error
	if err != nil {
		return nil, fmt.Errorf("failed to query comment %d thread: %w", targetID, err)
	}
	ids := make([]int64, 0, len(links))
	for _, link := range links {
		ids = append(ids, link.PlaylistID)
	}
	return ids, nil
}

func (r *gormPlaylistCommentRepository) Targets(ctx context.Context, ownerID int64) ([]int64, error) {
	var links []model.PlaylistComment
	err := r.db.WithContext(ctx).Where("playlist_id = ?", ownerID).Order("id").Find(&links).Error
	if err != nil {
		return nil, fmt.Errorf("failed to query comments for playlist %d: %w", ownerID, err)
	}
	ids := make([]int64, 0, len(links))
	for _, link := range links {
		ids = append(ids, link.CommentID)
	}
	return ids, nil
}

func gormCheckExists(ctx context.Context, db *gorm.DB, probe interface{}, id int64, table string) error {
	var count int64
	err := db.WithContext(ctx).Model(probe).Where("id = ?", id).Count(&count).Error
	if err != nil {
		return fmt.Errorf("failed to check %s row %d: %w", table, id, err)
	}
	if count == 0 {
		return fmt.Errorf("%s row %d: %w", table, id, ErrMissingReference)
	}
	return nil
}
