package domain

import "errors"

// Failure classes surfaced by the pipeline. Callers classify with errors.Is;
// lower layers wrap these with operation context.
var (
	ErrMissingAPIKey = errors.New("provider api key is not set")
	ErrExtraction    = errors.New("text extraction failed")
	ErrEmbedding     = errors.New("embedding failed")
	ErrSynthesis     = errors.New("answer synthesis failed")
	ErrNoDocument    = errors.New("no document ingested")
	ErrEmptyQuestion = errors.New("question is empty")
)
