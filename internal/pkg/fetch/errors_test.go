package fetch

import (
	"errors"
	"fmt"
	"testing"

	"github.com/projetoswmfa/football-api/internal/pkg/models"
)

func TestErrorClassification(t *testing.T) {
	cause := errors.New("dial tcp: connection refused")

	tests := []struct {
		err   error
		kind  error
		label string
	}{
		{Timeout(models.SourceESPN, cause), ErrTimeout, "timeout"},
		{RateLimited(models.SourceESPN), ErrRateLimited, "rate_limited"},
		{Malformed(models.SourceESPN, cause), ErrMalformed, "malformed"},
		{Unreachable(models.SourceESPN, cause), ErrUnreachable, "unreachable"},
	}

	for _, tt := range tests {
		t.Run(tt.label, func(t *testing.T) {
			if !errors.Is(tt.err, tt.kind) {
				t.Errorf("errors.Is(%v, kind) = false", tt.err)
			}
			if KindOf(tt.err) != tt.kind {
				t.Errorf("KindOf(%v) = %v", tt.err, KindOf(tt.err))
			}
			if KindLabel(tt.err) != tt.label {
				t.Errorf("KindLabel(%v) = %q, want %q", tt.err, KindLabel(tt.err), tt.label)
			}
		})
	}
}

func TestErrorUnwrapsCause(t *testing.T) {
	cause := errors.New("boom")
	err := Unreachable(models.SourceFootballData, cause)

	if !errors.Is(err, cause) {
		t.Error("classified error should unwrap to its cause")
	}

	wrapped := fmt.Errorf("cycle: %w", err)
	if !errors.Is(wrapped, ErrUnreachable) {
		t.Error("kind must survive further wrapping")
	}
}

func TestKindOfUnclassified(t *testing.T) {
	if KindOf(errors.New("plain")) != nil {
		t.Error("plain errors have no kind")
	}
	if KindLabel(errors.New("plain")) != "unknown" {
		t.Error("plain errors label as unknown")
	}
}
