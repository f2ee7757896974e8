package recon

import (
	"encoding/json"
	"fmt"
	"strings"
)

// ParseResult validates a raw classifier completion against the result schema.
// The parse is fail-closed: a response that is not valid JSON fails with
// ErrMalformedOutput, and valid JSON that is missing either field, carries a
// degree outside the verdict enum, or carries a reason that is neither a
// string nor a list of strings fails with ErrSchemaViolation. There is no
// partial acceptance; nothing from a rejected response reaches the caller or
// the audit trail.
func ParseResult(raw string) (Result, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal([]byte(raw), &fields); err != nil {
		return Result{}, fmt.Errorf("%w: %v", ErrMalformedOutput, err)
	}

	if fields == nil {
		return Result{}, fmt.Errorf("%w: response is not a JSON object", ErrMalformedOutput)
	}

	rawDegree, ok := fields["degree"]
	if !ok {
		return Result{}, fmt.Errorf("%w: missing degree", ErrSchemaViolation)
	}

	rawReason, ok := fields["reason"]
	if !ok {
		return Result{}, fmt.Errorf("%w: missing reason", ErrSchemaViolation)
	}

	var degreeText string
	if err := json.Unmarshal(rawDegree, &degreeText); err != nil {
		return Result{}, fmt.Errorf("%w: degree is not a string", ErrSchemaViolation)
	}

	degree, err := ParseDegree(degreeText)
	if err != nil {
		return Result{}, fmt.Errorf("%w: degree %q", ErrSchemaViolation, degreeText)
	}

	reason, err := parseReason(rawReason)
	if err != nil {
		return Result{}, err
	}

	return Result{Degree: degree, Reason: reason}, nil
}

// parseReason accepts the canonical string reason as well as the deprecated
// list-of-reasons shape produced by earlier template revisions, which is
// normalized into a single string.
func parseReason(raw json.RawMessage) (string, error) {
	var reason string
	if err := json.Unmarshal(raw, &reason); err == nil {
		return reason, nil
	}

	var reasons []string
	if err := json.Unmarshal(raw, &reasons); err == nil {
		return strings.Join(reasons, "; "), nil
	}

	return "", fmt.Errorf("%w: reason is neither a string nor a list of strings", ErrSchemaViolation)
}
