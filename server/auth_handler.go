package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"MixFM/core/auth"
	"MixFM/logger"
	"MixFM/model"
	"MixFM/repository"
)

type contextKey string

const (
	contextKeyUserID   contextKey = "userID"
	contextKeyUsername contextKey = "username"
)

// RegisterRequest represents the registration request body.
type RegisterRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// LoginRequest represents the login request body.
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// RegisterHandler handles user registration requests.
func (h *APIHandler) RegisterHandler(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	if strings.TrimSpace(req.Username) == "" || req.Password == "" {
		respondError(w, fmt.Errorf("username and password are required: %w", repository.ErrValidation))
		return
	}

	hashedPassword, err := auth.HashPassword(req.Password)
	if err != nil {
		respondError(w, err)
		return
	}

	user := &model.User{
		Username:     req.Username,
		PasswordHash: hashedPassword,
	}

	userID, err := h.userRepo.CreateUser(r.Context(), user)
	if err != nil {
		if errors.Is(err, repository.ErrDuplicateUser) {
			logger.Warn("[Register] Username already taken", logger.String("username", req.Username))
		}
		respondError(w, err)
		return
	}

	token, err := auth.GenerateToken(userID, user.Username)
	if err != nil {
		respondError(w, err)
		return
	}

	logger.Info("[Register] User created",
		logger.Int64("userId", userID),
		logger.String("username", user.Username))

	respondJSON(w, http.StatusCreated, map[string]interface{}{
		"token": token,
		"user": map[string]interface{}{
			"id":       userID,
			"username": user.Username,
		},
	})
}

// LoginHandler handles user login requests.
func (h *APIHandler) LoginHandler(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	if req.Username == "" || req.Password == "" {
		respondError(w, fmt.Errorf("username and password are required: %w", repository.ErrValidation))
		return
	}

	user, err := h.userRepo.GetUserByUsername(r.Context(), req.Username)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			logger.Warn("[Login] Unknown user", logger.String("username", req.Username))
			respondJSON(w, http.StatusUnauthorized, map[string]string{"error": "invalid username or password"})
			return
		}
		respondError(w, err)
		return
	}

	if !auth.VerifyPassword(req.Password, user.PasswordHash) {
		logger.Warn("[Login] Password verification failed", logger.String("username", req.Username))
		respondJSON(w, http.StatusUnauthorized, map[string]string{"error": "invalid username or password"})
		return
	}

	token, err := auth.GenerateToken(user.ID, user.Username)
	if err != nil {
		respondError(w, err)
		return
	}

	logger.Info("[Login] Login succeeded", logger.String("username", user.Username))

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"token": token,
		"user": map[string]interface{}{
			"id":       user.ID,
			"username": user.Username,
		},
	})
}

// LogoutHandler ends a session. Tokens are stateless, so there is nothing
// to revoke server-side; the client discards its token and this endpoint
// gives it a definite point to do so.
func (h *APIHandler) LogoutHandler(w http.ResponseWriter, r *http.Request) {
	if username, err := GetUsernameFromContext(r.Context()); err == nil {
		logger.Info("[Logout] User logged out", logger.String("username", username))
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "logged out"})
}

// AuthMiddleware requires a valid bearer token and places the requester's
// identity in the request context.
func (h *APIHandler) AuthMiddleware(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, err := claimsFromRequest(r)
		if err != nil {
			respondJSON(w, http.StatusUnauthorized, map[string]string{"error": "authentication required"})
			return
		}

		ctx := context.WithValue(r.Context(), contextKeyUserID, claims.UserID)
		ctx = context.WithValue(ctx, contextKeyUsername, claims.Username)
		next.ServeHTTP(w, r.WithContext(ctx))
	}
}

// OptionalAuthMiddleware places the identity in the context when a valid
// token is present and otherwise lets the request through anonymously.
// Pages like the playlist detail view render for everyone but annotate
// ownership for logged-in requesters.
func (h *APIHandler) OptionalAuthMiddleware(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if claims, err := claimsFromRequest(r); err == nil {
			ctx := context.WithValue(r.Context(), contextKeyUserID, claims.UserID)
			ctx = context.WithValue(ctx, contextKeyUsername, claims.Username)
			r = r.WithContext(ctx)
		}
		next.ServeHTTP(w, r)
	}
}

func claimsFromRequest(r *http.Request) (*auth.Claims, error) {
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		return nil, fmt.Errorf("authorization header is required")
	}

	parts := strings.Split(authHeader, " ")
	if len(parts) != 2 || parts[0] != "Bearer" {
		return nil, fmt.Errorf("invalid authorization header format")
	}

	return auth.ParseToken(parts[1])
}

// GetUserIDFromContext extracts the requester's user ID from the request
// context.
func GetUserIDFromContext(ctx context.Context) (int64, error) {
	userID, ok := ctx.Value(contextKeyUserID).(int64)
	if !ok {
		return 0, fmt.Errorf("user ID not found in context")
	}
	return userID, nil
}

// GetUsernameFromContext extracts the requester's username from the
// request context.
func GetUsernameFromContext(ctx context.Context) (string, error) {
	username, ok := ctx.Value(contextKeyUsername).(string)
	if !ok {
		return "", fmt.Errorf("username not found in context")
	}
	return username, nil
}
