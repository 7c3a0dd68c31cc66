package domain

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

// These patterns track the wrapped extraction tool's error wording. If
// the tool rewords its network or fragment errors the transient
// classification silently stops firing, so keep these cases in sync
// with the strings in ClassifyExtractorError.
func TestClassifyExtractorError(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected FailureKind
	}{
		{"webpage fetch failure", errors.New("ERROR: Unable to download webpage: timed out"), FailureTransient},
		{"fragment failure", errors.New("ERROR: fragment 3 not found"), FailureTransient},
		{"fragment failure uppercase", errors.New("Fragment download interrupted"), FailureTransient},
		{"unrelated error", errors.New("ERROR: Unsupported URL"), FailureDownstream},
		{"nil error", nil, FailureDownstream},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, ClassifyExtractorError(tt.err))
		})
	}
}

func TestFetchError_KindOf(t *testing.T) {
	base := errors.New("no items downloaded")
	fe := NewFetchError(FailureEmptyCollection, base)

	assert.Equal(t, FailureEmptyCollection, KindOf(fe))
	assert.ErrorIs(t, fe, base)

	// wrapping preserves the kind
	wrapped := fmt.Errorf("album fetch: %w", fe)
	assert.Equal(t, FailureEmptyCollection, KindOf(wrapped))

	// errors without a kind default to downstream
	assert.Equal(t, FailureDownstream, KindOf(errors.New("boom")))
}

func TestFailuref(t *testing.T) {
	err := Failuref(FailureMissingOutput, "no file matching stem %q", "job_abc")
	assert.Equal(t, FailureMissingOutput, KindOf(err))
	assert.Contains(t, err.Error(), "job_abc")
}
