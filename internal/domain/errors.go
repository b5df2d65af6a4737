package domain

import (
	"errors"
	"fmt"
)

// ErrUnknownEncoding indicates that no tokenizer encoding is mapped to a model.
var ErrUnknownEncoding = errors.New("no encoding mapped to model")

// TokenizerLoadError is returned when a tokenizer for a model cannot be created.
type TokenizerLoadError struct {
	Model    string
	Encoding string // empty when the model has no mapping
	Err      error
}

func (e *TokenizerLoadError) Error() string {
	if e.Encoding == "" {
		return fmt.Sprintf("failed to load tokenizer for model %q: %v", e.Model, e.Err)
	}
	return fmt.Sprintf("failed to load tokenizer %s for model %q: %v", e.Encoding, e.Model, e.Err)
}

func (e *TokenizerLoadError) Unwrap() error {
	return e.Err
}

// PricingFetchError describes a failed remote pricing lookup.
type PricingFetchError struct {
	URL        string
	StatusCode int // zero when no response was received
	Err        error
}

func (e *PricingFetchError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("pricing fetch from %s failed with status %d: %v", e.URL, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("pricing fetch from %s failed: %v", e.URL, e.Err)
}

func (e *PricingFetchError) Unwrap() error {
	return e.Err
}
