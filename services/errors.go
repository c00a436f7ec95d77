package services

import (
	"errors"
	"fmt"
)

// ErrNoInput is returned when a generation request carries neither a
// description nor any files. Surfaced before any network call is made.
var ErrNoInput = errors.New("no description or files provided")

// GenerationError means the completion service could not produce usable
// structured data. Callers may retry with adjusted input or fall back to
// manual entry; the engine itself never retries a parse failure.
type GenerationError struct {
	Reason string
	Err    error
}

func (e *GenerationError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("quote generation failed: %s: %v", e.Reason, e.Err)
	}
	return fmt.Sprintf("quote generation failed: %s", e.Reason)
}

func (e *GenerationError) Unwrap() error { return e.Err }
