package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"MixFM/events"
	"MixFM/logger"
	"MixFM/repository"
	"MixFM/storage"
)

// APIHandler handles all API requests. It composes the entity stores and
// link stores into page-level operations; every store dependency comes in
// through the constructor so tests can substitute in-memory fakes.
type APIHandler struct {
	userRepo     repository.UserRepository
	songRepo     repository.SongRepository
	playlistRepo repository.PlaylistRepository
	commentRepo  repository.CommentRepository

	userPlaylists    repository.LinkRepository
	userSongs        repository.LinkRepository
	playlistSongs    repository.LinkRepository
	userComments     repository.LinkRepository
	playlistComments repository.LinkRepository

	blobs     storage.BlobStore
	publisher events.Publisher
}

// NewAPIHandler creates a new API handler.
func NewAPIHandler(
	userRepo repository.UserRepository,
	songRepo repository.SongRepository,
	playlistRepo repository.PlaylistRepository,
	commentRepo repository.CommentRepository,
	userPlaylists repository.LinkRepository,
	userSongs repository.LinkRepository,
	playlistSongs repository.LinkRepository,
	userComments repository.LinkRepository,
	playlistComments repository.LinkRepository,
	blobs storage.BlobStore,
	publisher events.Publisher,
) *APIHandler {
	if publisher == nil {
		publisher = events.NopPublisher{}
	}
	return &APIHandler{
		userRepo:         userRepo,
		songRepo:         songRepo,
		playlistRepo:     playlistRepo,
		commentRepo:      commentRepo,
		userPlaylists:    userPlaylists,
		userSongs:        userSongs,
		playlistSongs:    playlistSongs,
		userComments:     userComments,
		playlistComments: playlistComments,
		blobs:            blobs,
		publisher:        publisher,
	}
}

// respondJSON writes a JSON response body.
func respondJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if body != nil {
		if err := json.NewEncoder(w).Encode(body); err != nil {
			logger.Error("Failed to encode response body", logger.ErrorField(err))
		}
	}
}

// respondError translates a store error into an HTTP status with a JSON
// error body. Validation, not-found and conflict failures are
// user-correctable; anything unmatched is an internal error.
func respondError(w http.ResponseWriter, err error) {
	var status int
	switch {
	case errors.Is(err, repository.ErrValidation):
		status = http.StatusBadRequest
	case errors.Is(err, repository.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, repository.ErrConflict):
		status = http.StatusConflict
	case errors.Is(err, repository.ErrDuplicateUser):
		status = http.StatusConflict
	case errors.Is(err, repository.ErrMissingReference):
		status = http.StatusBadRequest
	case errors.Is(err, repository.ErrIntegrity):
		status = http.StatusInternalServerError
	default:
		status = http.StatusInternalServerError
	}

	if status == http.StatusInternalServerError {
		logger.Error("Request failed", logger.ErrorField(err))
		respondJSON(w, status, map[string]string{"error": "internal server error"})
		return
	}
	respondJSON(w, status, map[string]string{"error": err.Error()})
}

// publish emits a domain event without letting a broker failure affect
// the request.
func (h *APIHandler) publish(ctx context.Context, event events.Event) {
	if err := h.publisher.Publish(ctx, event); err != nil {
		logger.Warn("Failed to publish event",
			logger.String("type", string(event.Type)),
			logger.ErrorField(err))
	}
}
