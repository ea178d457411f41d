package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"MixFM/cache"
	"MixFM/logger"
	"MixFM/model"
	"MixFM/repository"
)

// CommentView is one comment row in the playlist detail view.
type CommentView struct {
	ID           int64  `json:"id"`
	Text         string `json:"text"`
	Author       string `json:"author,omitempty"`
	IsOwnComment bool   `json:"isOwnComment"`
}

// PlaylistView is the playlist detail page view model.
type PlaylistView struct {
	ID          int64            `json:"id"`
	Name        string           `json:"name"`
	Description string           `json:"description"`
	Songs       []cache.SongView `json:"songs"`
	Comments    []CommentView    `json:"comments"`
}

// CreatePlaylistRequest represents the playlist creation request body.
type CreatePlaylistRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"` // optional
}

// CreatePlaylistHandler creates a playlist owned by the requester. The
// playlist row and the owner link are written in one transaction.
func (h *APIHandler) CreatePlaylistHandler(w http.ResponseWriter, r *http.Request) {
	userID, err := GetUserIDFromContext(r.Context())
	if err != nil {
		respondJSON(w, http.StatusUnauthorized, map[string]string{"error": "authentication required"})
		return
	}

	var req CreatePlaylistRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	playlist := &model.Playlist{
		Name:        req.Name,
		Description: req.Description,
	}

	playlistID, err := h.playlistRepo.CreatePlaylistWithOwner(r.Context(), playlist, userID)
	if err != nil {
		respondError(w, err)
		return
	}
	playlist.ID = playlistID

	logger.Info("[CreatePlaylist] Playlist created",
		logger.Int64("playlistId", playlistID),
		logger.Int64("userId", userID),
		logger.String("name", playlist.Name))

	respondJSON(w, http.StatusCreated, playlist)
}

// GetPlaylistsHandler lists every playlist.
func (h *APIHandler) GetPlaylistsHandler(w http.ResponseWriter, r *http.Request) {
	playlists, err := h.playlistRepo.GetAllPlaylists(r.Context())
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{"playlists": playlists})
}

// GetMyPlaylistsHandler lists the requester's own playlists; the upload
// form uses it to offer the target playlist choice.
func (h *APIHandler) GetMyPlaylistsHandler(w http.ResponseWriter, r *http.Request) {
	userID, err := GetUserIDFromContext(r.Context())
	if err != nil {
		respondJSON(w, http.StatusUnauthorized, map[string]string{"error": "authentication required"})
		return
	}

	ids, err := h.userPlaylists.Targets(r.Context(), userID)
	if err != nil {
		respondError(w, err)
		return
	}

	playlists, err := h.playlistRepo.GetPlaylistsByIDs(r.Context(), ids)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{"playlists": playlists})
}

// GetPlaylistHandler assembles the playlist detail view: playlist fields,
// its songs, and its comment thread with ownership flags for the
// requester. A comment that fails to load is logged and skipped rather
// than failing the whole page.
func (h *APIHandler) GetPlaylistHandler(w http.ResponseWriter, r *http.Request) {
	playlistID, err := pathID(r, "id")
	if err != nil {
		respondError(w, err)
		return
	}

	playlist, err := h.playlistRepo.GetPlaylistByID(r.Context(), playlistID)
	if err != nil {
		respondError(w, err)
		return
	}

	// Anonymous requesters get requesterID 0, which never matches an
	// author id.
	requesterID, _ := GetUserIDFromContext(r.Context())

	songs, err := h.playlistSongViews(r, playlistID)
	if err != nil {
		respondError(w, err)
		return
	}

	commentIDs, err := h.playlistComments.Targets(r.Context(), playlistID)
	if err != nil {
		respondError(w, err)
		return
	}

	comments := make([]CommentView, 0, len(commentIDs))
	for _, commentID := range commentIDs {
		comment, err := h.commentRepo.GetCommentByID(r.Context(), commentID)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				logger.Warn("[PlaylistView] Skipping missing comment",
					logger.Int64("playlistId", playlistID),
					logger.Int64("commentId", commentID))
				continue
			}
			respondError(w, err)
			return
		}

		authorID, err := h.userComments.Owner(r.Context(), commentID)
		if err != nil {
			respondError(w, err)
			return
		}

		view := CommentView{
			ID:           comment.ID,
			Text:         comment.Text,
			IsOwnComment: authorID != 0 && authorID == requesterID,
		}
		if authorID != 0 {
			author, err := h.userRepo.GetUserByID(r.Context(), authorID)
			if err != nil {
				if !errors.Is(err, repository.ErrNotFound) {
					respondError(w, err)
					return
				}
				logger.Warn("[PlaylistView] Comment author row missing",
					logger.Int64("commentId", commentID),
					logger.Int64("authorId", authorID))
			} else {
				view.Author = author.Username
			}
		}
		comments = append(comments, view)
	}

	respondJSON(w, http.StatusOK, PlaylistView{
		ID:          playlist.ID,
		Name:        playlist.Name,
		Description: playlist.Description,
		Songs:       songs,
		Comments:    comments,
	})
}

// playlistSongViews resolves a playlist's member songs, consulting the
// cache first. The song list is the same for every requester, so it is
// safe to share.
func (h *APIHandler) playlistSongViews(r *http.Request, playlistID int64) ([]cache.SongView, error) {
	if cached, err := cache.GetPlaylistSongs(r.Context(), playlistID); err != nil {
		logger.Warn("Playlist song cache read failed",
			logger.Int64("playlistId", playlistID),
			logger.ErrorField(err))
	} else if cached != nil {
		return cached, nil
	}

	songIDs, err := h.playlistSongs.Targets(r.Context(), playlistID)
	if err != nil {
		return nil, err
	}

	songs := make([]cache.SongView, 0, len(songIDs))
	for _, songID := range songIDs {
		song, err := h.songRepo.GetSongByID(r.Context(), songID)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				logger.Warn("[PlaylistView] Skipping missing song",
					logger.Int64("playlistId", playlistID),
					logger.Int64("songId", songID))
				continue
			}
			return nil, err
		}
		songs = append(songs, cache.SongView{
			ID:       song.ID,
			Title:    song.Title,
			Artist:   song.Artist,
			Duration: song.Duration,
		})
	}

	if err := cache.SetPlaylistSongs(r.Context(), playlistID, songs); err != nil {
		logger.Warn("Playlist song cache write failed",
			logger.Int64("playlistId", playlistID),
			logger.ErrorField(err))
	}
	return songs, nil
}
