package download

import (
	"errors"
	"fmt"

	"github.com/handiism/tapmusic-collage/internal/http"
	"github.com/handiism/tapmusic-collage/internal/model"
)

// ErrOutputCollision is matched by CollisionError via errors.Is.
var ErrOutputCollision = errors.New("output already exists")

// CollisionError means the destination path is taken. No request was made,
// or, if the path was taken while the collage downloaded, nothing was written.
type CollisionError struct {
	Path string
	Err  error
}

func (e *CollisionError) Error() string {
	return fmt.Sprintf("refusing to overwrite: %v", e.Err)
}

func (e *CollisionError) Unwrap() error { return e.Err }

// Is makes errors.Is(err, ErrOutputCollision) hold.
func (e *CollisionError) Is(target error) bool {
	return target == ErrOutputCollision
}

// PersistError wraps a failure to create or write the output file.
type PersistError struct {
	Path string
	Err  error
}

func (e *PersistError) Error() string {
	return fmt.Sprintf("save %s: %v", e.Path, e.Err)
}

func (e *PersistError) Unwrap() error { return e.Err }

// ProcessError wraps a failure to downscale the downloaded collage.
type ProcessError struct {
	Err error
}

func (e *ProcessError) Error() string {
	return fmt.Sprintf("resize collage: %v", e.Err)
}

func (e *ProcessError) Unwrap() error { return e.Err }

// ErrorKind names the failure classes a single run can end with.
type ErrorKind string

const (
	KindNone            ErrorKind = ""
	KindInvalidArgument ErrorKind = "invalid_argument"
	KindOutputCollision ErrorKind = "output_collision"
	KindFetchFailed     ErrorKind = "fetch_failed"
	KindPersistFailed   ErrorKind = "persist_failed"
	KindProcessFailed   ErrorKind = "process_failed"
	KindUnknown         ErrorKind = "unknown"
)

// Kind classifies err. A nil error is KindNone.
func Kind(err error) ErrorKind {
	if err == nil {
		return KindNone
	}

	var (
		fe *http.FetchError
		pe *PersistError
		xe *ProcessError
	)
	switch {
	case errors.Is(err, model.ErrInvalidArgument):
		return KindInvalidArgument
	case errors.Is(err, ErrOutputCollision):
		return KindOutputCollision
	case errors.As(err, &fe):
		return KindFetchFailed
	case errors.As(err, &pe):
		return KindPersistFailed
	case errors.As(err, &xe):
		return KindProcessFailed
	default:
		return KindUnknown
	}
}
