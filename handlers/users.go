package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"reelist/internal/database"
	"reelist/services/auth"
)

// UsersHandler handles registration, login, and token verification.
type UsersHandler struct {
	auth  *auth.Service
	store *database.UserStore
}

// NewUsersHandler creates a new users handler.
func NewUsersHandler(authService *auth.Service, store *database.UserStore) *UsersHandler {
	return &UsersHandler{
		auth:  authService,
		store: store,
	}
}

type registerRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type sessionResponse struct {
	Token    string `json:"token"`
	UserID   string `json:"userId"`
	Username string `json:"username,omitempty"`
}

// Register creates a new account.
// POST /api/users/register
func (h *UsersHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		jsonError(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if req.Username == "" || req.Email == "" || req.Password == "" {
		jsonError(w, "Missing required fields", http.StatusBadRequest)
		return
	}

	session, err := h.auth.Register(r.Context(), req.Username, req.Email, req.Password)
	if err != nil {
		var validationErr *auth.ValidationError
		var duplicateErr *auth.DuplicateError
		switch {
		case errors.As(err, &validationErr):
			jsonError(w, "Validation failed: "+validationErr.Error(), http.StatusBadRequest)
		case errors.As(err, &duplicateErr):
			jsonError(w, duplicateErr.Field+" already in use", http.StatusBadRequest)
		default:
			slog.Error("auth.register_failed", "error", err)
			jsonError(w, "Server error during registration", http.StatusInternalServerError)
		}
		return
	}

	writeJSON(w, http.StatusCreated, sessionResponse{
		Token:    session.Token,
		UserID:   session.UserID,
		Username: session.Username,
	})
}

// Login validates credentials and issues a session token.
// POST /api/users/login
func (h *UsersHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		jsonError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	session, err := h.auth.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, auth.ErrInvalidCredentials) {
			jsonError(w, "Invalid credentials", http.StatusBadRequest)
			return
		}
		slog.Error("auth.login_failed", "error", err)
		jsonError(w, "Server error during login", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, sessionResponse{
		Token:  session.Token,
		UserID: session.UserID,
	})
}

// Profile returns the authenticated user's record sans password.
// GET /api/users/verify and GET /api/users/profile
func (h *UsersHandler) Profile(w http.ResponseWriter, r *http.Request) {
	userID := userIDFromContext(r.Context())

	user, err := h.store.UserByID(r.Context(), userID)
	if err != nil {
		if errors.Is(err, database.ErrUserNotFound) {
			jsonError(w, "User not found", http.StatusNotFound)
			return
		}
		slog.Error("auth.profile_failed", "error", err)
		jsonError(w, "Error fetching profile", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, user)
}
