package service

import (
	"fmt"
	"time"

	"github.com/pkg/errors"
)

// OutcomeKind classifies the result of a single refresh attempt.
type OutcomeKind int

const (
	OutcomeSuccess OutcomeKind = iota
	OutcomeNetworkUnreachable
	OutcomeHTTPError
	OutcomeParseError
)

func (kind OutcomeKind) String() string {
	switch kind {
	case OutcomeSuccess:
		return "success"
	case OutcomeNetworkUnreachable:
		return "network_unreachable"
	case OutcomeHTTPError:
		return "http_error"
	case OutcomeParseError:
		return "parse_error"
	default:
		return fmt.Sprintf("unknown(%d)", int(kind))
	}
}

var (
	// ErrNetworkUnreachable is the cause class of attempts that never received a response.
	ErrNetworkUnreachable = errors.New("rates API unreachable")
	// ErrHTTPStatus is the cause class of non-200 responses.
	ErrHTTPStatus = errors.New("rates API returned non-200 status")
	// ErrParse is the cause class of 200 responses without a usable rates object.
	ErrParse = errors.New("rates API response could not be parsed")
	// ErrWorkerStopped is reported for refreshes submitted after the worker stopped.
	ErrWorkerStopped = errors.New("refresh worker stopped")
)

// RefreshError describes a failed refresh attempt.
type RefreshError struct {
	Kind       OutcomeKind
	StatusCode int
	Cause      error
}

func (e *RefreshError) Error() string {
	switch {
	case e.Kind == OutcomeHTTPError:
		return fmt.Sprintf("%s: HTTP %d", e.Kind, e.StatusCode)
	case e.Cause != nil:
		return fmt.Sprintf("%s: %v", e.Kind, e.Cause)
	default:
		return e.Kind.String()
	}
}

func (e *RefreshError) Unwrap() error {
	return e.Cause
}

// Is matches the sentinel for the error's kind so callers can use errors.Is
// without inspecting Kind.
func (e *RefreshError) Is(target error) bool {
	switch target {
	case ErrNetworkUnreachable:
		return e.Kind == OutcomeNetworkUnreachable
	case ErrHTTPStatus:
		return e.Kind == OutcomeHTTPError
	case ErrParse:
		return e.Kind == OutcomeParseError
	}
	return false
}

// RefreshOutcome is the result of one refresh attempt.
type RefreshOutcome struct {
	Kind       OutcomeKind
	StatusCode int
	// RateCount is the size of the installed table; zero unless Kind is OutcomeSuccess.
	RateCount int
	// InternetAccessible is the connectivity flag after this attempt.
	InternetAccessible bool
	Err                error
	CompletedAt        time.Time
	Duration           time.Duration
}

// Succeeded reports whether the table was replaced.
func (outcome RefreshOutcome) Succeeded() bool {
	return outcome.Kind == OutcomeSuccess
}
