package http

import (
	"errors"
	"fmt"
)

// FetchErrorKind tells apart the ways a fetch can fail.
type FetchErrorKind string

const (
	// KindRequest means the request could not be built (malformed URL).
	KindRequest FetchErrorKind = "request"

	// KindConnect covers DNS, dial, TLS and other transport failures.
	KindConnect FetchErrorKind = "connect"

	// KindTimeout means the client timeout or the context deadline expired.
	KindTimeout FetchErrorKind = "timeout"

	// KindCanceled means the caller canceled the context.
	KindCanceled FetchErrorKind = "canceled"

	// KindStatus means the server answered with a non-2xx status.
	KindStatus FetchErrorKind = "status"

	// KindRead means the connection broke while reading the body.
	KindRead FetchErrorKind = "read"
)

// FetchError is returned by every failing Client call.
type FetchError struct {
	Kind       FetchErrorKind
	URL        string
	StatusCode int
	Status     string
	Err        error
}

func (e *FetchError) Error() string {
	switch e.Kind {
	case KindStatus:
		if e.Status != "" {
			return fmt.Sprintf("GET %s: HTTP %s", e.URL, e.Status)
		}
		return fmt.Sprintf("GET %s: HTTP %d", e.URL, e.StatusCode)
	default:
		if e.Err != nil {
			return fmt.Sprintf("GET %s: %s: %v", e.URL, e.Kind, e.Err)
		}
		return fmt.Sprintf("GET %s: %s", e.URL, e.Kind)
	}
}

func (e *FetchError) Unwrap() error { return e.Err }

// IsTimeout reports whether err is a FetchError caused by a timeout.
func IsTimeout(err error) bool {
	var fe *FetchError
	return errors.As(err, &fe) && fe.Kind == KindTimeout
}

// StatusCode returns the HTTP status carried by err, or 0.
func StatusCode(err error) int {
	var fe *FetchError
	if errors.As(err, &fe) {
		return fe.StatusCode
	}
	return 0
}
