package pipeline

import (
	"errors"
	"fmt"
)

var (
	// ErrNoDocument is returned by steps that need a fetched page when
	// none is available.
	ErrNoDocument = errors.New("no page document available")

	// ErrEmptyTarget is returned when a report has no target URL.
	ErrEmptyTarget = errors.New("empty scan target")
)

// HaltError stops the pipeline after the step that returned it. Err is the
// underlying failure.
type HaltError struct {
	Err error
}

// Error implements error.
func (e *HaltError) Error() string {
	return e.Err.Error()
}

// Unwrap returns the underlying failure.
func (e *HaltError) Unwrap() error {
	return e.Err
}

// Halt wraps err so that the pipeline stops after the current step.
func Halt(err error) error {
	if err == nil {
		return nil
	}
	return &HaltError{Err: err}
}

// IsHalt reports whether err stops the pipeline.
func IsHalt(err error) bool {
	var h *HaltError
	return errors.As(err, &h)
}

func stepError(step string, err error) error {
	return fmt.Errorf("%s: %w", step, err)
}
