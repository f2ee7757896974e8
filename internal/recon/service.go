package recon

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/bean-noodles/recon-server/internal/classifier"
	"github.com/bean-noodles/recon-server/internal/store"
)

// UserDirectory resolves user references. Lookups must return (nil, nil) for
// an unknown ID rather than an error.
type UserDirectory interface {
	FindUserByID(ctx context.Context, id string) (*store.User, error)
}

// ScanLedger persists completed scans. Implementations must treat records as
// append-only.
type ScanLedger interface {
	CreateScanRecord(ctx context.Context, record *store.ScanRecord) error
}

// Service runs the classification pipeline. All dependencies are injected at
// construction and never mutated afterwards; a Service is safe for concurrent
// use, with each SiteRecon call an independent pipeline instance.
type Service struct {
	classifier classifier.Classifier
	users      UserDirectory
	ledger     ScanLedger
}

// NewService creates the recon pipeline service.
func NewService(c classifier.Classifier, users UserDirectory, ledger ScanLedger) (*Service, error) {
	if c == nil {
		return nil, ErrNilClassifier
	}

	if ledger == nil {
		return nil, ErrNilLedger
	}

	return &Service{
		classifier: c,
		users:      users,
		ledger:     ledger,
	}, nil
}

// SiteRecon classifies one site's metadata and records the verdict.
//
// The stages run strictly in order: prompt synthesis, classification,
// validation, user resolution, audit write. Any stage failure aborts the
// remainder and no partial record is written; the lone exception is user
// resolution, which degrades to an unlinked record instead of failing. The
// verdict is returned only after the record is durably stored.
func (s *Service) SiteRecon(ctx context.Context, req Request) (Result, error) {
	prompt := BuildPrompt(req.WebData)

	raw, err := s.classifier.Classify(ctx, SystemInstruction, prompt)
	if err != nil {
		log.Error().Err(err).
			Str("request", serializeMetadata(req.WebData)).
			Msg("classifier request failed")

		return Result{}, err
	}

	result, err := ParseResult(raw)
	if err != nil {
		log.Error().Err(err).
			Str("request", serializeMetadata(req.WebData)).
			Str("raw_response", raw).
			Msg("classifier response rejected")

		return Result{}, err
	}

	userID := s.resolveUser(ctx, req.UserID)

	record := &store.ScanRecord{
		Degree:        string(result.Degree),
		Reason:        result.Reason,
		ClientIP:      req.ClientIP,
		RequestTime:   time.Now().UTC(),
		RequestObject: serializeMetadata(req.WebData),
		UserID:        userID,
	}

	if err := s.ledger.CreateScanRecord(ctx, record); err != nil {
		log.Error().Err(err).
			Str("degree", string(result.Degree)).
			Msg("failed to store scan record")

		return Result{}, fmt.Errorf("%w: %v", ErrRecordFailed, err)
	}

	return result, nil
}

// resolveUser confirms an optional user reference against the directory.
// An unresolvable or failing lookup downgrades to "no linked user" with a
// warning; an invalid reference must never abort an otherwise valid scan.
func (s *Service) resolveUser(ctx context.Context, userID string) string {
	if userID == "" {
		return ""
	}

	if s.users == nil {
		log.Warn().Str("user_id", userID).Msg("no user directory configured, storing scan without user link")
		return ""
	}

	user, err := s.users.FindUserByID(ctx, userID)
	if err != nil {
		log.Warn().Err(err).Str("user_id", userID).Msg("user lookup failed, storing scan without user link")
		return ""
	}

	if user == nil {
		log.Warn().Str("user_id", userID).Msg("unknown user id, storing scan without user link")
		return ""
	}

	return user.ID
}

// serializeMetadata renders the canonical stored form of the site metadata.
func serializeMetadata(meta SiteMetadata) string {
	// a flat struct of three strings always marshals
	data, _ := json.Marshal(meta)

	return string(data)
}
