package recon

import "errors"

var (
	// ErrUnknownDegree is returned when a verdict string is not one of safe, caution, danger
	ErrUnknownDegree = errors.New("unknown verdict degree")
	// ErrMalformedOutput is returned when the classifier response is not parseable JSON
	ErrMalformedOutput = errors.New("classifier output is not valid JSON")
	// ErrSchemaViolation is returned when the classifier response parses but does not match the result schema
	ErrSchemaViolation = errors.New("classifier output violates result schema")
	// ErrRecordFailed is returned when the scan record could not be durably stored
	ErrRecordFailed = errors.New("failed to store scan record")
	// ErrNilClassifier is returned when constructing a Service without a classifier
	ErrNilClassifier = errors.New("classifier is required")
	// ErrNilLedger is returned when constructing a Service without a scan ledger
	ErrNilLedger = errors.New("scan ledger is required")
)
