package http

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"time"

	"contas/internal/domain/user"
	"contas/internal/shared/auth"
	"contas/internal/shared/middleware"
)

// AuthHandler handles registration, login and the current-user endpoint
type AuthHandler struct {
	users *user.Service
	jwt   *auth.JWT
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(users *user.Service, jwt *auth.JWT) *AuthHandler {
	return &AuthHandler{users: users, jwt: jwt}
}

type RegisterRequest struct {
	Email    string `json:"email"`
	Name     string `json:"name"`
	Password string `json:"password"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type AuthResponse struct {
	Token string     `json:"token"`
	User  *user.User `json:"user"`
}

// HandleRegister creates a new user account and returns a signed token
func (h *AuthHandler) HandleRegister(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	u, err := h.users.Register(r.Context(), req.Email, req.Name, req.Password)
	if err != nil {
		if errors.Is(err, user.ErrEmailTaken) {
			http.Error(w, "Email already registered", http.StatusConflict)
			return
		}
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	h.respondWithToken(w, u, http.StatusCreated)
}

// HandleLogin authenticates a user and returns a signed token
func (h *AuthHandler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	u, err := h.users.Authenticate(r.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, user.ErrInvalidCredentials) {
			http.Error(w, "Invalid email or password", http.StatusUnauthorized)
			return
		}
		log.Printf("Error authenticating %s: %v", req.Email, err)
		http.Error(w, "Failed to authenticate", http.StatusInternalServerError)
		return
	}

	h.respondWithToken(w, u, http.StatusOK)
}

// HandleMe returns the authenticated user
func (h *AuthHandler) HandleMe(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	userID, ok := r.Context().Value(middleware.UserIDKey).(int64)
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	u, err := h.users.GetUser(r.Context(), userID)
	if err != nil {
		http.Error(w, "User not found", http.StatusNotFound)
		return
	}

	writeJSON(w, http.StatusOK, u)
}

func (h *AuthHandler) respondWithToken(w http.ResponseWriter, u *user.User, status int) {
	token, err := h.jwt.Generate(u.ID, u.Email)
	if err != nil {
		log.Printf("Error generating token for user %d: %v", u.ID, err)
		http.Error(w, "Failed to generate token", http.StatusInternalServerError)
		return
	}

	// Browser clients authenticate via the HttpOnly cookie; API clients use
	// the token from the body.
	http.SetCookie(w, &http.Cookie{
		Name:     "access_token",
		Value:    token,
		Path:     "/",
		Expires:  time.Now().Add(24 * time.Hour),
		HttpOnly: true,
		SameSite: http.SameSiteStrictMode,
	})

	writeJSON(w, status, AuthResponse{Token: token, User: u})
}
