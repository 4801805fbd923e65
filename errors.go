package blaze

import (
	"errors"
	"fmt"
)

// unknownError is reported when a backend fails without saying why.
const unknownError = "Unknown error"

var (
	// ErrCapacityExceeded is matched by every *CapacityError.
	ErrCapacityExceeded = errors.New("blaze: capacity exceeded")

	// ErrInvalidArgument reports a caller error detected before any backend call.
	ErrInvalidArgument = errors.New("blaze: invalid argument")

	// ErrFreed reports use of a batch or texture after Free.
	ErrFreed = errors.New("blaze: use of freed resource")
)

// CapacityResource names the limit a CapacityError refers to.
type CapacityResource uint8

const (
	CapacityBuckets CapacityResource = iota // distinct textures per batch
	CapacitySprites                         // quads per bucket
)

func (r CapacityResource) String() string {
	switch r {
	case CapacityBuckets:
		return "buckets"
	case CapacitySprites:
		return "sprites"
	default:
		return fmt.Sprintf("CapacityResource(%d)", uint8(r))
	}
}

// CapacityError is returned when a submission would exceed MaxBuckets or
// MaxSpritesPerBucket. Nothing is truncated; the rejected quad is dropped.
type CapacityError struct {
	Resource CapacityResource
	Limit    int
}

func (e *CapacityError) Error() string {
	return fmt.Sprintf("blaze: capacity exceeded: %s (limit %d)", e.Resource, e.Limit)
}

// Is makes errors.Is(err, ErrCapacityExceeded) report true.
func (e *CapacityError) Is(target error) bool {
	return target == ErrCapacityExceeded
}

// DecodeError reports image data the decoder could not understand.
type DecodeError struct {
	Err error
}

func (e *DecodeError) Error() string {
	return "blaze: decode image: " + e.Err.Error()
}

func (e *DecodeError) Unwrap() error { return e.Err }

// BackendError reports a failed backend call. Message is the backend's own
// description, or "Unknown error" when it gave none.
type BackendError struct {
	Op      string
	Message string
	Err     error
}

func (e *BackendError) Error() string {
	return fmt.Sprintf("blaze: backend %s: %s", e.Op, e.Message)
}

func (e *BackendError) Unwrap() error { return e.Err }

// backendError wraps err as a *BackendError unless it already carries one of
// the package's own error kinds.
func backendError(op string, err error) error {
	if err == nil {
		return &BackendError{Op: op, Message: unknownError}
	}
	var be *BackendError
	var de *DecodeError
	if errors.As(err, &be) || errors.As(err, &de) ||
		errors.Is(err, ErrInvalidArgument) || errors.Is(err, ErrCapacityExceeded) {
		return err
	}
	msg := err.Error()
	if msg == "" {
		msg = unknownError
	}
	return &BackendError{Op: op, Message: msg, Err: err}
}

// invalidArg builds an ErrInvalidArgument with context.
func invalidArg(format string, args ...any) error {
	return fmt.Errorf("%w: "+format, append([]any{ErrInvalidArgument}, args...)...)
}
