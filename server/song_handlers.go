package server

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strconv"

	"MixFM/cache"
	"MixFM/core/meta"
	"MixFM/events"
	"MixFM/logger"
	"MixFM/model"
	"MixFM/repository"
	"MixFM/storage"

	"github.com/gorilla/mux"
)

// SongView is the song page view model.
type SongView struct {
	ID       int64   `json:"id"`
	Title    string  `json:"title"`
	Artist   string  `json:"artist"`
	Duration float32 `json:"duration"`
	IsOwner  bool    `json:"isOwner"`
}

// GetSongsHandler lists every song.
func (h *APIHandler) GetSongsHandler(w http.ResponseWriter, r *http.Request) {
	songs, err := h.songRepo.GetAllSongs(r.Context())
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{"songs": songs})
}

// GetSongHandler returns one song with an ownership flag for the
// requester.
func (h *APIHandler) GetSongHandler(w http.ResponseWriter, r *http.Request) {
	songID, err := pathID(r, "id")
	if err != nil {
		respondError(w, err)
		return
	}

	song, err := h.songRepo.GetSongByID(r.Context(), songID)
	if err != nil {
		respondError(w, err)
		return
	}

	view := SongView{
		ID:       song.ID,
		Title:    song.Title,
		Artist:   song.Artist,
		Duration: song.Duration,
	}

	if requesterID, err := GetUserIDFromContext(r.Context()); err == nil {
		owner, err := h.userSongs.Owner(r.Context(), songID)
		if err != nil {
			respondError(w, err)
			return
		}
		view.IsOwner = owner != 0 && owner == requesterID
	}

	respondJSON(w, http.StatusOK, view)
}

// UploadSongHandler handles audio file uploads.
// Expected multipart form fields:
// - songFile: the audio file
// - playlistId: id of the playlist the song is added to
func (h *APIHandler) UploadSongHandler(w http.ResponseWriter, r *http.Request) {
	userID, err := GetUserIDFromContext(r.Context())
	if err != nil {
		respondJSON(w, http.StatusUnauthorized, map[string]string{"error": "authentication required"})
		return
	}

	if err := r.ParseMultipartForm(32 << 20); err != nil { // 32MB max memory
		respondJSON(w, http.StatusBadRequest, map[string]string{"error": "failed to parse multipart form"})
		return
	}

	playlistRaw := r.FormValue("playlistId")
	if playlistRaw == "" || playlistRaw == "0" {
		respondError(w, fmt.Errorf("a target playlist must be selected: %w", repository.ErrValidation))
		return
	}
	playlistID, err := strconv.ParseInt(playlistRaw, 10, 64)
	if err != nil {
		respondError(w, fmt.Errorf("invalid playlist id %q: %w", playlistRaw, repository.ErrValidation))
		return
	}
	if _, err := h.playlistRepo.GetPlaylistByID(r.Context(), playlistID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			respondError(w, fmt.Errorf("playlist %d: %w", playlistID, repository.ErrMissingReference))
			return
		}
		respondError(w, err)
		return
	}

	songFile, songHeader, err := r.FormFile("songFile")
	if err != nil {
		respondError(w, fmt.Errorf("missing 'songFile' in form: %w", repository.ErrValidation))
		return
	}
	defer songFile.Close()

	// Stage the payload so tags can be read from a file and the same
	// bytes streamed to the blob store afterwards.
	tmp, err := os.CreateTemp("", "mixfm-upload-*")
	if err != nil {
		respondError(w, fmt.Errorf("failed to stage upload: %w", err))
		return
	}
	defer os.Remove(tmp.Name())
	defer tmp.Close()

	size, err := io.Copy(tmp, songFile)
	if err != nil {
		respondError(w, fmt.Errorf("failed to stage upload: %w", err))
		return
	}

	// Tag extraction failure is not fatal; the filename carries enough
	// for a title.
	song := &model.Song{}
	tags, err := meta.Extract(tmp.Name())
	if err != nil {
		logger.Warn("Tag extraction failed, deriving title from filename",
			logger.String("filename", songHeader.Filename),
			logger.ErrorField(err))
		song.Title = meta.TitleFromFilename(songHeader.Filename)
		song.Artist = meta.ArtistFromFilename(songHeader.Filename)
	} else {
		song.Title = tags.Title
		song.Artist = tags.Artist
		song.Duration = tags.Duration
		if song.Title == "" {
			song.Title = meta.TitleFromFilename(songHeader.Filename)
		}
	}

	// The song row must exist before anything is linked to it.
	songID, err := h.songRepo.CreateSong(r.Context(), song)
	if err != nil {
		respondError(w, err)
		return
	}
	song.ID = songID

	// Blob storage is best-effort: a failed copy leaves the song
	// playable-later rather than failing the upload.
	if _, err := tmp.Seek(0, io.SeekStart); err != nil {
		logger.Error("Failed to rewind staged upload", logger.Int64("songId", songID), logger.ErrorField(err))
	} else {
		contentType := songHeader.Header.Get("Content-Type")
		key, err := h.blobs.Put(r.Context(), songID, tmp, size, contentType)
		if err != nil {
			logger.Error("Failed to store audio payload",
				logger.Int64("songId", songID),
				logger.ErrorField(err))
		} else if err := h.songRepo.UpdateSongFilePath(r.Context(), songID, key); err != nil {
			logger.Error("Failed to record audio payload key",
				logger.Int64("songId", songID),
				logger.ErrorField(err))
		} else {
			song.FilePath = key
		}
	}

	if err := h.userSongs.Link(r.Context(), userID, songID); err != nil {
		respondError(w, err)
		return
	}
	if err := h.playlistSongs.Link(r.Context(), playlistID, songID); err != nil {
		respondError(w, err)
		return
	}

	if err := cache.InvalidatePlaylistSongs(r.Context(), playlistID); err != nil {
		logger.Warn("Failed to invalidate playlist cache",
			logger.Int64("playlistId", playlistID),
			logger.ErrorField(err))
	}

	h.publish(r.Context(), events.Event{
		Type:       events.EventTypeSongUploaded,
		UserID:     userID,
		SongID:     songID,
		PlaylistID: playlistID,
	})

	logger.Info("[Upload] Song created",
		logger.Int64("songId", songID),
		logger.Int64("userId", userID),
		logger.Int64("playlistId", playlistID),
		logger.String("title", song.Title))

	respondJSON(w, http.StatusCreated, song)
}

// DeleteSongHandler deletes a song. Only the uploader may delete it; the
// owner link and all playlist memberships go with it.
func (h *APIHandler) DeleteSongHandler(w http.ResponseWriter, r *http.Request) {
	userID, err := GetUserIDFromContext(r.Context())
	if err != nil {
		respondJSON(w, http.StatusUnauthorized, map[string]string{"error": "authentication required"})
		return
	}

	songID, err := pathID(r, "id")
	if err != nil {
		respondError(w, err)
		return
	}

	owner, err := h.userSongs.Owner(r.Context(), songID)
	if err != nil {
		respondError(w, err)
		return
	}
	if owner == 0 || owner != userID {
		logger.Warn("[DeleteSong] Requester is not the owner",
			logger.Int64("songId", songID),
			logger.Int64("userId", userID),
			logger.Int64("ownerId", owner))
		respondJSON(w, http.StatusForbidden, map[string]string{"error": "you are not the owner of this song"})
		return
	}

	song, err := h.songRepo.GetSongByID(r.Context(), songID)
	if err != nil {
		respondError(w, err)
		return
	}

	// Capture memberships before the rows disappear so the cache can be
	// invalidated afterwards.
	playlistIDs, err := h.playlistSongs.Owners(r.Context(), songID)
	if err != nil {
		respondError(w, err)
		return
	}

	if err := h.songRepo.DeleteSongCascade(r.Context(), songID); err != nil {
		respondError(w, err)
		return
	}

	if song.FilePath != "" {
		if err := h.blobs.Remove(r.Context(), song.FilePath); err != nil {
			logger.Warn("Failed to remove audio payload",
				logger.Int64("songId", songID),
				logger.ErrorField(err))
		}
	}

	if err := cache.InvalidatePlaylistSongs(r.Context(), playlistIDs...); err != nil {
		logger.Warn("Failed to invalidate playlist cache", logger.ErrorField(err))
	}

	h.publish(r.Context(), events.Event{
		Type:   events.EventTypeSongDeleted,
		UserID: userID,
		SongID: songID,
	})

	logger.Info("[DeleteSong] Song deleted",
		logger.Int64("songId", songID),
		logger.Int64("userId", userID))

	respondJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

// ServeAudioHandler streams a song's stored audio payload.
func (h *APIHandler) ServeAudioHandler(w http.ResponseWriter, r *http.Request) {
	songID, err := pathID(r, "id")
	if err != nil {
		respondError(w, err)
		return
	}

	song, err := h.songRepo.GetSongByID(r.Context(), songID)
	if err != nil {
		respondError(w, err)
		return
	}
	if song.FilePath == "" {
		respondJSON(w, http.StatusNotFound, map[string]string{"error": "no audio stored for this song"})
		return
	}

	object, err := h.blobs.Open(r.Context(), song.FilePath)
	if err != nil {
		respondError(w, err)
		return
	}
	defer object.Close()

	w.Header().Set("Content-Type", storage.ContentTypeForKey(song.FilePath))
	if _, err := io.Copy(w, object); err != nil {
		logger.Error("Error serving audio payload",
			logger.Int64("songId", songID),
			logger.ErrorField(err))
	}
}

// pathID parses the numeric {name} path variable.
func pathID(r *http.Request, name string) (int64, error) {
	raw := mux.Vars(r)[name]
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid %s %q: %w", name, raw, repository.ErrValidation)
	}
	return id, nil
}
