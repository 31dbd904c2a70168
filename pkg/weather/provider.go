// Package weather answers weather questions: it resolves a location, fetches
// current conditions and has a chat model summarize them.
package weather

import (
	"context"
	"errors"
)

// ErrNotFound marks a lookup the provider could not resolve to a place.
var ErrNotFound = errors.New("location not found")

// Status is the outcome class of a provider lookup.
type Status int

const (
	StatusOK Status = iota
	StatusNotFound
	StatusFailed
)

func (s Status) String() string {
	switch s {
	case StatusOK:
		return "ok"
	case StatusNotFound:
		return "not_found"
	default:
		return "failed"
	}
}

// Lookup is the result of asking a provider for one location. Not-found is an
// expected outcome the cascade recovers from; Failed is not.
type Lookup struct {
	Status   Status
	Location string
	Report   string
	Err      error
}

// Found builds a successful lookup.
func Found(location, report string) Lookup {
	return Lookup{Status: StatusOK, Location: location, Report: report}
}

// NotFound builds a not-found lookup. The error wraps ErrNotFound.
func NotFound(location string, err error) Lookup {
	if err == nil || !errors.Is(err, ErrNotFound) {
		err = wrapNotFound(err)
	}
	return Lookup{Status: StatusNotFound, Location: location, Err: err}
}

// Failed builds a lookup that failed for a reason other than the location.
func Failed(location string, err error) Lookup {
	return Lookup{Status: StatusFailed, Location: location, Err: err}
}

// Provider fetches a raw weather report for a location string.
type Provider interface {
	Lookup(ctx context.Context, location string) Lookup
}

type notFoundError struct {
	cause error
}

func (e *notFoundError) Error() string {
	if e.cause == nil {
		return ErrNotFound.Error()
	}
	return ErrNotFound.Error() + ": " + e.cause.Error()
}

func (e *notFoundError) Is(target error) bool { return target == ErrNotFound }

func (e *notFoundError) Unwrap() error { return e.cause }

func wrapNotFound(cause error) error {
	return &notFoundError{cause: cause}
}
