package api

import (
	"context"
	"errors"
	"net"
	"net/http"

	"github.com/bean-noodles/recon-server/internal/classifier"
	"github.com/bean-noodles/recon-server/internal/recon"
)

// SiteMetadataPayload carries the scraped page metadata on the wire. Fields
// are pointers so absent keys can be told apart from empty strings; empty is
// allowed, missing is not.
type SiteMetadataPayload struct {
	// Title is the scraped page title
	Title *string `json:"title"`
	// URL is the scraped page address
	URL *string `json:"url"`
	// Description is the scraped page description
	Description *string `json:"description"`
}

// SiteReconRequest accepts both supported wire shapes: the canonical
// webData-wrapped form and the deprecated flat form with top-level metadata
// fields. Exactly one of the two shapes must be used.
type SiteReconRequest struct {
	// WebData is the canonical metadata wrapper
	WebData *SiteMetadataPayload `json:"webData,omitempty"`
	// Title is the deprecated flat-shape page title
	Title *string `json:"title,omitempty"`
	// URL is the deprecated flat-shape page address
	URL *string `json:"url,omitempty"`
	// Description is the deprecated flat-shape page description
	Description *string `json:"description,omitempty"`
	// UserID optionally links the scan to a requesting user
	UserID string `json:"userId,omitempty"`
}

// SiteReconResponse is the verdict returned to the caller. The record ID and
// timestamp assigned during persistence are deliberately not echoed.
type SiteReconResponse struct {
	// Degree is the risk verdict
	Degree recon.Degree `json:"degree"`
	// Reason is the human-readable justification
	Reason string `json:"reason"`
}

// handleSiteRecon normalizes an inbound recon request, runs the pipeline, and
// returns the verdict.
func (h *Handler) handleSiteRecon(w http.ResponseWriter, r *http.Request) {
	if h.maxBodySize > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, h.maxBodySize)
	}

	var req SiteReconRequest
	if err := decodeJSONBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, errCodeInvalidRequest, ErrInvalidRequestBody.Error())
		return
	}

	metadata, err := normalizeMetadata(req)
	if err != nil {
		writeError(w, http.StatusBadRequest, errCodeValidation, err.Error())
		return
	}

	result, err := h.recon.SiteRecon(r.Context(), recon.Request{
		WebData:  metadata,
		UserID:   req.UserID,
		ClientIP: clientIP(r),
	})
	if err != nil {
		respondSiteReconError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, SiteReconResponse{
		Degree: result.Degree,
		Reason: result.Reason,
	})
}

// normalizeMetadata converts either accepted wire shape into the canonical
// internal metadata record. The webData wrapper wins when both shapes are
// present. Missing required fields reject the request before any downstream
// component runs.
func normalizeMetadata(req SiteReconRequest) (recon.SiteMetadata, error) {
	payload := SiteMetadataPayload{
		Title:       req.Title,
		URL:         req.URL,
		Description: req.Description,
	}
	if req.WebData != nil {
		payload = *req.WebData
	}

	if payload.Title == nil || payload.URL == nil || payload.Description == nil {
		return recon.SiteMetadata{}, ErrMissingMetadataField
	}

	return recon.SiteMetadata{
		Title:       *payload.Title,
		URL:         *payload.URL,
		Description: *payload.Description,
	}, nil
}

// respondSiteReconError maps pipeline failures onto HTTP statuses. The caller
// only ever sees a generic failure; verdict-shaped data is never guessed.
func respondSiteReconError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		writeError(w, http.StatusGatewayTimeout, errCodeTimeout, "site analysis timed out")
	case errors.Is(err, classifier.ErrUnavailable):
		writeError(w, http.StatusBadGateway, errCodeUnavailable, "site analysis is temporarily unavailable")
	case errors.Is(err, recon.ErrMalformedOutput), errors.Is(err, recon.ErrSchemaViolation):
		writeError(w, http.StatusBadGateway, errCodeUnavailable, "site analysis produced no usable verdict")
	default:
		writeError(w, http.StatusInternalServerError, errCodeInternal, "site analysis failed")
	}
}

// clientIP extracts the requester address from the connection. The RealIP
// middleware has already folded forwarded-for headers into RemoteAddr.
func clientIP(r *http.Request) string {
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return host
	}

	return r.RemoteAddr
}
