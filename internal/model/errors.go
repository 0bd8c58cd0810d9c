package model

import (
	"errors"
	"fmt"
)

// ErrorCode is the machine-readable failure taxonomy of the pipeline.
type ErrorCode string

const (
	ErrUnclearQuery      ErrorCode = "UNCLEAR_QUERY"
	ErrGeocodeFailed     ErrorCode = "GEOCODE_FAILED"
	ErrAmbiguousLocation ErrorCode = "AMBIGUOUS_LOCATION"
	ErrNoDateResolved    ErrorCode = "NO_DATE_RESOLVED"

	// Response-formatter codes, raised outside the pipeline.
	ErrInvalidRequest ErrorCode = "INVALID_REQUEST"
	ErrInternal       ErrorCode = "INTERNAL_ERROR"
)

// PipelineError is a tagged pipeline failure carrying a human-readable
// message and the stage that raised it. It is always surfaced to the
// response formatter as a single structured failure, never swallowed.
type PipelineError struct {
	Code    ErrorCode `json:"error"`
	Stage   string    `json:"stage"`
	Message string    `json:"message"`
}

func (e *PipelineError) Error() string {
	return fmt.Sprintf("%s at %s: %s", e.Code, e.Stage, e.Message)
}

// NewPipelineError builds a tagged failure for the given stage.
func NewPipelineError(code ErrorCode, stage, message string) *PipelineError {
	return &PipelineError{Code: code, Stage: stage, Message: message}
}

// AsPipelineError unwraps err into a *PipelineError if it carries one.
func AsPipelineError(err error) (*PipelineError, bool) {
	var pe *PipelineError
	if errors.As(err, &pe) {
		return pe, true
	}
	return nil, false
}
