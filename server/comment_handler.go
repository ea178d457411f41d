package server

import (
	"encoding/json"
	"net/http"

	"MixFM/events"
	"MixFM/logger"
	"MixFM/model"
)

// PostCommentRequest represents the comment posting request body.
type PostCommentRequest struct {
	Text string `json:"text"`
}

// PostCommentHandler adds a comment to a playlist's thread, linking it to
// its author and to the playlist.
func (h *APIHandler) PostCommentHandler(w http.ResponseWriter, r *http.Request) {
	userID, err := GetUserIDFromContext(r.Context())
	if err != nil {
		respondJSON(w, http.StatusUnauthorized, map[string]string{"error": "authentication required"})
		return
	}

	playlistID, err := pathID(r, "id")
	if err != nil {
		respondError(w, err)
		return
	}

	// The thread must exist before the comment row is created, so an
	// unknown playlist never leaves an unlinked comment behind.
	if _, err := h.playlistRepo.GetPlaylistByID(r.Context(), playlistID); err != nil {
		respondError(w, err)
		return
	}

	var req PostCommentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	comment := &model.Comment{Text: req.Text}
	commentID, err := h.commentRepo.CreateComment(r.Context(), comment)
	if err != nil {
		respondError(w, err)
		return
	}

	if err := h.userComments.Link(r.Context(), userID, commentID); err != nil {
		respondError(w, err)
		return
	}
	if err := h.playlistComments.Link(r.Context(), playlistID, commentID); err != nil {
		respondError(w, err)
		return
	}

	h.publish(r.Context(), events.Event{
		Type:       events.EventTypeCommentPosted,
		UserID:     userID,
		PlaylistID: playlistID,
		CommentID:  commentID,
	})

	logger.Info("[PostComment] Comment added",
		logger.Int64("commentId", commentID),
		logger.Int64("playlistId", playlistID),
		logger.Int64("userId", userID))

	respondJSON(w, http.StatusCreated, comment)
}
