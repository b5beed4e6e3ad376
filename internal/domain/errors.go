package domain

import (
	"fmt"
	"strings"
)

// TransportError is a network failure or a non-2xx answer from an upstream service.
type TransportError struct {
	Op         string
	StatusCode int
	Status     string
	// Snippet is a redacted, truncated hint of the response body.
	Snippet string
	Err     error
}

func (e *TransportError) Error() string {
	if e == nil {
		return "transport error"
	}
	parts := []string{"transport error: op=" + e.Op}
	if e.Status != "" {
		parts = append(parts, "status="+e.Status)
	}
	if e.Snippet != "" {
		parts = append(parts, "body="+e.Snippet)
	}
	if e.Err != nil {
		parts = append(parts, e.Err.Error())
	}
	return strings.Join(parts, " ")
}

func (e *TransportError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// FormatError means a response did not have the expected shape.
type FormatError struct {
	Op          string
	ContentType string
	Err         error
}

func (e *FormatError) Error() string {
	if e == nil {
		return "format error"
	}
	msg := "format error: op=" + e.Op
	if e.ContentType != "" {
		msg += " content-type=" + e.ContentType
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *FormatError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// ValidationError is malformed input to a fetch.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e == nil {
		return "validation error"
	}
	return fmt.Sprintf("validation error: %s %s", e.Field, e.Reason)
}

// NotFoundError means the listing service has no such resource.
type NotFoundError struct {
	Resource string
	ID       string
}

func (e *NotFoundError) Error() string {
	if e == nil {
		return "not found"
	}
	return fmt.Sprintf("%s %s not found", e.Resource, e.ID)
}

// ExtractionFailure means no structured payload could be taken from model output.
// It is informational: the narrative is still usable.
type ExtractionFailure struct {
	Reason string
	Err    error
}

func (e *ExtractionFailure) Error() string {
	if e == nil {
		return "extraction failure"
	}
	if e.Err != nil {
		return "extraction failure: " + e.Reason + ": " + e.Err.Error()
	}
	return "extraction failure: " + e.Reason
}

func (e *ExtractionFailure) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}
