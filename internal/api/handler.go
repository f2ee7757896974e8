// Package api provides the HTTP surface of the recon service: the site
// reconnaissance endpoint and the user registration and lookup endpoints.
package api

import (
	"context"
	"net/http"
	"time"

	"github.com/bean-noodles/recon-server/internal/recon"
	"github.com/bean-noodles/recon-server/internal/store"
)

// ReconService runs the classification pipeline for one request.
type ReconService interface {
	SiteRecon(ctx context.Context, req recon.Request) (recon.Result, error)
}

// UserStore provides the user operations backing the user endpoints.
type UserStore interface {
	CreateUser(ctx context.Context, user *store.User) error
	FindUserByID(ctx context.Context, id string) (*store.User, error)
	FindUserByEmail(ctx context.Context, email string) (*store.User, error)
	ListUsers(ctx context.Context) ([]store.User, error)
}

// Handler manages API endpoints
type Handler struct {
	recon       ReconService
	users       UserStore
	maxBodySize int64
}

// HealthResponse represents the health check response
type HealthResponse struct {
	Status    string `json:"status"`
	Service   string `json:"service"`
	Timestamp string `json:"timestamp"`
}

// handleHealth returns service health status
func (h *Handler) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, HealthResponse{
		Status:    "healthy",
		Service:   "recon-server",
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	})
}
