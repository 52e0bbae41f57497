package pipeline

import (
	"errors"
	"fmt"
	"testing"
)

func TestErrorClassification(t *testing.T) {
	tests := []struct {
		name          string
		err           error
		wantType      string
		wantRetryable bool
	}{
		{
			name:          "content error is terminal",
			err:           &ContentError{Stage: "parse", Message: "corrupt pdf"},
			wantType:      "ContentError",
			wantRetryable: false,
		},
		{
			name:          "validation error is terminal",
			err:           &ValidationError{Stage: "chunk", Message: "invalid overlap"},
			wantType:      "ValidationError",
			wantRetryable: false,
		},
		{
			name:          "provider error is retryable",
			err:           &TransientProviderError{Stage: "embed", Provider: "embedding", Err: errors.New("rate limited")},
			wantType:      "TransientProviderError",
			wantRetryable: true,
		},
		{
			name:          "persistence error is retryable",
			err:           &PersistenceError{Op: "upsert chunks", Err: errors.New("connection reset")},
			wantType:      "PersistenceError",
			wantRetryable: true,
		},
		{
			name:          "unknown error defaults to retryable",
			err:           errors.New("something unexpected"),
			wantType:      "UnknownError",
			wantRetryable: true,
		},
		{
			name:          "wrapped content error keeps its classification",
			err:           fmt.Errorf("stage failed: %w", &ContentError{Stage: "parse", Message: "unreadable"}),
			wantType:      "ContentError",
			wantRetryable: false,
		},
		{
			name:          "wrapped provider error keeps its classification",
			err:           fmt.Errorf("stage failed: %w", &TransientProviderError{Stage: "index", Provider: "vector store", Err: errors.New("timeout")}),
			wantType:      "TransientProviderError",
			wantRetryable: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ErrorType(tt.err); got != tt.wantType {
				t.Errorf("ErrorType = %q, want %q", got, tt.wantType)
			}
			if got := Retryable(tt.err); got != tt.wantRetryable {
				t.Errorf("Retryable = %v, want %v", got, tt.wantRetryable)
			}
		})
	}
}

func TestErrorUnwrap(t *testing.T) {
	cause := errors.New("root cause")

	for _, err := range []error{
		&ContentError{Stage: "parse", Message: "bad file", Err: cause},
		&TransientProviderError{Stage: "embed", Provider: "embedding", Err: cause},
		&PersistenceError{Op: "write", Err: cause},
	} {
		if !errors.Is(err, cause) {
			t.Errorf("%T does not unwrap to its cause", err)
		}
	}
}
