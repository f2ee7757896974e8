package api

import (
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/samber/lo"

	"github.com/bean-noodles/recon-server/internal/store"
)

// RegisterRequest creates a new user.
type RegisterRequest struct {
	// ID is an optional caller-chosen identifier; one is assigned when empty
	ID string `json:"id,omitempty"`
	// Email is the unique address for the account
	Email string `json:"email"`
	// Name is an optional display name
	Name string `json:"name,omitempty"`
}

// LoginRequest looks a user up by a unique key.
type LoginRequest struct {
	// ID looks the user up by identifier
	ID string `json:"id,omitempty"`
	// Email looks the user up by address
	Email string `json:"email,omitempty"`
}

// UserResponse is the public representation of a user.
type UserResponse struct {
	ID        string `json:"id"`
	Email     string `json:"email"`
	Name      string `json:"name,omitempty"`
	CreatedAt string `json:"createdAt"`
}

// toUserResponse converts a stored user into its public form.
func toUserResponse(user store.User) UserResponse {
	return UserResponse{
		ID:        user.ID,
		Email:     user.Email,
		Name:      user.Name,
		CreatedAt: user.CreatedAt.UTC().Format(time.RFC3339),
	}
}

// handleRegister creates a new user, rejecting duplicates with a conflict.
func (h *Handler) handleRegister(w http.ResponseWriter, r *http.Request) {
	if h.maxBodySize > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, h.maxBodySize)
	}

	var req RegisterRequest
	if err := decodeJSONBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, errCodeInvalidRequest, ErrInvalidRequestBody.Error())
		return
	}

	if req.Email == "" {
		writeError(w, http.StatusBadRequest, errCodeValidation, ErrEmailRequired.Error())
		return
	}

	user := &store.User{
		ID:    req.ID,
		Email: req.Email,
		Name:  req.Name,
	}

	if err := h.users.CreateUser(r.Context(), user); err != nil {
		if errors.Is(err, store.ErrUserExists) {
			writeError(w, http.StatusConflict, errCodeConflict, err.Error())
			return
		}

		writeError(w, http.StatusInternalServerError, errCodeInternal, "failed to register user")

		return
	}

	writeJSON(w, http.StatusCreated, toUserResponse(*user))
}

// handleLogin resolves a user by unique key and returns it.
func (h *Handler) handleLogin(w http.ResponseWriter, r *http.Request) {
	if h.maxBodySize > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, h.maxBodySize)
	}

	var req LoginRequest
	if err := decodeJSONBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, errCodeInvalidRequest, ErrInvalidRequestBody.Error())
		return
	}

	var (
		user *store.User
		err  error
	)

	switch {
	case req.ID != "":
		user, err = h.users.FindUserByID(r.Context(), req.ID)
	case req.Email != "":
		user, err = h.users.FindUserByEmail(r.Context(), req.Email)
	default:
		writeError(w, http.StatusBadRequest, errCodeValidation, ErrLoginKeyRequired.Error())
		return
	}

	if err != nil {
		writeError(w, http.StatusInternalServerError, errCodeInternal, "failed to look up user")
		return
	}

	if user == nil {
		writeError(w, http.StatusNotFound, errCodeNotFound, ErrUserNotFound.Error())
		return
	}

	writeJSON(w, http.StatusOK, toUserResponse(*user))
}

// handleListUsers returns all registered users.
func (h *Handler) handleListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.users.ListUsers(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, errCodeInternal, "failed to list users")
		return
	}

	writeJSON(w, http.StatusOK, lo.Map(users, func(user store.User, _ int) UserResponse {
		return toUserResponse(user)
	}))
}

// handleGetUser returns a single user by path ID.
func (h *Handler) handleGetUser(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	user, err := h.users.FindUserByID(r.Context(), id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, errCodeInternal, "failed to look up user")
		return
	}

	if user == nil {
		writeError(w, http.StatusNotFound, errCodeNotFound, ErrUserNotFound.Error())
		return
	}

	writeJSON(w, http.StatusOK, toUserResponse(*user))
}
