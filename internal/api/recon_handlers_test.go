package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/bean-noodles/recon-server/internal/classifier"
	"github.com/bean-noodles/recon-server/internal/recon"
)

// stubRecon returns a canned pipeline result or error and records the request.
type stubRecon struct {
	result  recon.Result
	err     error
	lastReq recon.Request
}

func (s *stubRecon) SiteRecon(_ context.Context, req recon.Request) (recon.Result, error) {
	s.lastReq = req

	if s.err != nil {
		return recon.Result{}, s.err
	}

	return s.result, nil
}

func postSiteRecon(t *testing.T, h *Handler, payload string) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest(http.MethodPost, "/api/recon/site", bytes.NewBufferString(payload))
	req.Header.Set("Content-Type", "application/json")
	req.RemoteAddr = "203.0.113.7:51234"
	w := httptest.NewRecorder()

	h.handleSiteRecon(w, req)

	return w
}

func TestHandleSiteRecon_WrappedShape(t *testing.T) {
	svc := &stubRecon{result: recon.Result{Degree: recon.DegreeDanger, Reason: "brand impersonation"}}
	h := &Handler{recon: svc, maxBodySize: 1024}

	w := postSiteRecon(t, h, `{
		"webData": {"title": "Example Bank Login", "url": "http://examp1e-bank.tk/login", "description": "Verify your account now"},
		"userId": "user-1"
	}`)

	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", w.Code, w.Body.String())
	}

	var resp SiteReconResponse
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}

	if resp.Degree != recon.DegreeDanger {
		t.Errorf("expected degree danger, got %s", resp.Degree)
	}

	if resp.Reason != "brand impersonation" {
		t.Errorf("unexpected reason %q", resp.Reason)
	}

	if svc.lastReq.WebData.Title != "Example Bank Login" {
		t.Errorf("unexpected normalized title %q", svc.lastReq.WebData.Title)
	}

	if svc.lastReq.UserID != "user-1" {
		t.Errorf("expected user id to pass through, got %q", svc.lastReq.UserID)
	}

	if svc.lastReq.ClientIP != "203.0.113.7" {
		t.Errorf("expected client IP from connection, got %q", svc.lastReq.ClientIP)
	}
}

func TestHandleSiteRecon_DeprecatedFlatShape(t *testing.T) {
	svc := &stubRecon{result: recon.Result{Degree: recon.DegreeSafe, Reason: "ok"}}
	h := &Handler{recon: svc, maxBodySize: 1024}

	w := postSiteRecon(t, h, `{"title": "Blog", "url": "https://example.com", "description": "A blog"}`)

	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", w.Code, w.Body.String())
	}

	if svc.lastReq.WebData.URL != "https://example.com" {
		t.Errorf("unexpected normalized url %q", svc.lastReq.WebData.URL)
	}
}

func TestHandleSiteRecon_EmptyFieldsAllowed(t *testing.T) {
	svc := &stubRecon{result: recon.Result{Degree: recon.DegreeCaution, Reason: "thin metadata"}}
	h := &Handler{recon: svc, maxBodySize: 1024}

	w := postSiteRecon(t, h, `{"webData": {"title": "", "url": "", "description": ""}}`)

	if w.Code != http.StatusOK {
		t.Fatalf("expected empty strings to be accepted, got %d: %s", w.Code, w.Body.String())
	}
}

func TestHandleSiteRecon_MissingFields(t *testing.T) {
	tests := []struct {
		name    string
		payload string
	}{
		{name: "empty object", payload: `{}`},
		{name: "wrapped missing description", payload: `{"webData": {"title": "t", "url": "u"}}`},
		{name: "flat missing url", payload: `{"title": "t", "description": "d"}`},
		{name: "null title", payload: `{"webData": {"title": null, "url": "u", "description": "d"}}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &stubRecon{}
			h := &Handler{recon: svc, maxBodySize: 1024}

			w := postSiteRecon(t, h, tt.payload)

			if w.Code != http.StatusBadRequest {
				t.Errorf("expected status 400, got %d", w.Code)
			}

			if svc.lastReq.WebData != (recon.SiteMetadata{}) {
				t.Error("expected pipeline not to be invoked for an invalid request")
			}
		})
	}
}

func TestHandleSiteRecon_InvalidBody(t *testing.T) {
	h := &Handler{recon: &stubRecon{}, maxBodySize: 1024}

	w := postSiteRecon(t, h, `not json`)

	if w.Code != http.StatusBadRequest {
		t.Errorf("expected status 400, got %d", w.Code)
	}
}

func TestHandleSiteRecon_ErrorMapping(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
	}{
		{name: "classifier unavailable", err: fmt.Errorf("%w: connection refused", classifier.ErrUnavailable), wantStatus: http.StatusBadGateway},
		{name: "malformed output", err: fmt.Errorf("%w: prose", recon.ErrMalformedOutput), wantStatus: http.StatusBadGateway},
		{name: "schema violation", err: fmt.Errorf("%w: degree", recon.ErrSchemaViolation), wantStatus: http.StatusBadGateway},
		{name: "persistence failure", err: fmt.Errorf("%w: disk full", recon.ErrRecordFailed), wantStatus: http.StatusInternalServerError},
		{name: "deadline exceeded", err: context.DeadlineExceeded, wantStatus: http.StatusGatewayTimeout},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := &Handler{recon: &stubRecon{err: tt.err}, maxBodySize: 1024}

			w := postSiteRecon(t, h, `{"webData": {"title": "t", "url": "u", "description": "d"}}`)

			if w.Code != tt.wantStatus {
				t.Errorf("expected status %d, got %d", tt.wantStatus, w.Code)
			}

			var resp ErrorResponse
			if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
				t.Fatalf("failed to decode error response: %v", err)
			}

			if resp.Success {
				t.Error("expected success=false")
			}

			if resp.Error == nil || resp.Error.Code == "" {
				t.Error("expected a normalized error payload")
			}
		})
	}
}

func TestHandleSiteRecon_BodyTooLarge(t *testing.T) {
	h := &Handler{recon: &stubRecon{}, maxBodySize: 16}

	w := postSiteRecon(t, h, `{"webData": {"title": "a very long title indeed", "url": "u", "description": "d"}}`)

	if w.Code != http.StatusBadRequest {
		t.Errorf("expected status 400 for oversized body, got %d", w.Code)
	}
}
