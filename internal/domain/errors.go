package domain

import (
	"errors"
	"fmt"
	"strings"
)

// FailureKind enumerates the ways a fetch job can fail
type FailureKind string

const (
	// FailureTransient is a likely-recoverable extractor error; the
	// runner retries once with degraded options before surfacing it
	FailureTransient FailureKind = "transient"
	// FailureMissingOutput means extraction reported success but no file
	// matched the expected patterns; never retried
	FailureMissingOutput FailureKind = "missing_output"
	// FailureEmptyCollection means a multi-item source yielded zero files
	FailureEmptyCollection FailureKind = "empty_collection"
	// FailureTimeout means the job's wall-clock deadline expired
	FailureTimeout FailureKind = "timeout"
	// FailureStaleReference means a callback token was not found in the
	// registry; the user is prompted to resend the URL
	FailureStaleReference FailureKind = "stale_reference"
	// FailureDownstream is any other extractor or transcoder error,
	// surfaced verbatim
	FailureDownstream FailureKind = "downstream"
)

// FetchError is a job failure with an enumerated kind, so callers can
// branch on the kind instead of matching error strings
type FetchError struct {
	Kind FailureKind
	Err  error
}

func (e *FetchError) Error() string {
	if e.Err == nil {
		return string(e.Kind)
	}
	return fmt.Sprintf("%s: %v", e.Kind, e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

// NewFetchError wraps err with a failure kind
func NewFetchError(kind FailureKind, err error) *FetchError {
	return &FetchError{Kind: kind, Err: err}
}

// Failuref creates a fetch error from a format string
func Failuref(kind FailureKind, format string, args ...interface{}) *FetchError {
	return &FetchError{Kind: kind, Err: fmt.Errorf(format, args...)}
}

// KindOf returns the failure kind of err, or FailureDownstream when err
// carries no explicit kind
func KindOf(err error) FailureKind {
	var fe *FetchError
	if errors.As(err, &fe) {
		return fe.Kind
	}
	return FailureDownstream
}

// ClassifyExtractorError decides whether an extractor error is worth one
// retry with degraded options. The match is against the wrapped tool's
// error wording: webpage-fetch failures and fragment-download failures.
// If the tool ever changes its messages this silently stops matching,
// which is why the patterns live in exactly one place.
func ClassifyExtractorError(err error) FailureKind {
	if err == nil {
		return FailureDownstream
	}
	msg := err.Error()
	if strings.Contains(msg, "Unable to download webpage") {
		return FailureTransient
	}
	if strings.Contains(strings.ToLower(msg), "fragment") {
		return FailureTransient
	}
	return FailureDownstream
}
