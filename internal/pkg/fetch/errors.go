package fetch

import (
	"errors"
	"fmt"

	"github.com/projetoswmfa/football-api/internal/pkg/models"
)

// Error kinds. Adapter failures are recoverable by excluding the source from
// the cycle; the kind decides retry policy and accounting, nothing else.
var (
	ErrTimeout     = errors.New("source timeout")
	ErrRateLimited = errors.New("source rate limited")
	ErrMalformed   = errors.New("malformed response")
	ErrUnreachable = errors.New("source unreachable")
)

// Error is a classified provider failure.
type Error struct {
	Source models.Source
	Kind   error // one of ErrTimeout, ErrRateLimited, ErrMalformed, ErrUnreachable
	Err    error // underlying cause, may be nil
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v: %v", e.Source, e.Kind, e.Err)
	}
	return fmt.Sprintf("%s: %v", e.Source, e.Kind)
}

func (e *Error) Unwrap() []error {
	if e.Err != nil {
		return []error{e.Kind, e.Err}
	}
	return []error{e.Kind}
}

func Timeout(source models.Source, err error) *Error {
	return &Error{Source: source, Kind: ErrTimeout, Err: err}
}

func RateLimited(source models.Source) *Error {
	return &Error{Source: source, Kind: ErrRateLimited}
}

func Malformed(source models.Source, err error) *Error {
	return &Error{Source: source, Kind: ErrMalformed, Err: err}
}

func Unreachable(source models.Source, err error) *Error {
	return &Error{Source: source, Kind: ErrUnreachable, Err: err}
}

// KindOf returns the classified kind of err, or nil for unclassified errors.
func KindOf(err error) error {
	for _, kind := range []error{ErrTimeout, ErrRateLimited, ErrMalformed, ErrUnreachable} {
		if errors.Is(err, kind) {
			return kind
		}
	}
	return nil
}

// KindLabel returns a short accounting label for the error kind.
func KindLabel(err error) string {
	switch KindOf(err) {
	case ErrTimeout:
		return "timeout"
	case ErrRateLimited:
		return "rate_limited"
	case ErrMalformed:
		return "malformed"
	case ErrUnreachable:
		return "unreachable"
	default:
		return "unknown"
	}
}
