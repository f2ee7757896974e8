// Package classifier provides access to the external text-completion model
// that produces candidate risk verdicts for the recon pipeline.
package classifier

import "context"

// Classifier is the capability the recon pipeline depends on. Exactly one
// method keeps the concrete provider out of the pipeline core and lets tests
// substitute a deterministic stub.
type Classifier interface {
	// Classify sends the synthesized analysis prompt with the fixed system
	// instruction and returns the raw completion text. The model is asked for
	// JSON-shaped output, but callers must still validate the response; the
	// model's cooperation is not guaranteed.
	Classify(ctx context.Context, systemInstruction, prompt string) (string, error)
}
