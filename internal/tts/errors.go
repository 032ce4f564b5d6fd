package tts

import (
	"errors"
	"fmt"
)

// Session failure classes. Match with errors.Is.
var (
	// ErrFetch indicates the synthesis service was unreachable or rejected
	// the request.
	ErrFetch = errors.New("speech fetch failed")

	// ErrDecode indicates a payload could not be turned into playable audio.
	ErrDecode = errors.New("speech decode failed")

	// ErrPlayback indicates the audio output failed.
	ErrPlayback = errors.New("speech playback failed")
)

// ErrorCode identifies the stage at which a session failed.
type ErrorCode string

const (
	ErrorCodeFetch    ErrorCode = "FETCH_FAILURE"
	ErrorCodeDecode   ErrorCode = "DECODE_FAILURE"
	ErrorCodePlayback ErrorCode = "PLAYBACK_FAILURE"
)

// Error is a session failure with the segment it happened on.
type Error struct {
	Code    ErrorCode
	Segment int
	Cause   error
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Segment < 0 {
		return fmt.Sprintf("%s: %v", e.Code, e.Cause)
	}
	return fmt.Sprintf("%s: segment %d: %v", e.Code, e.Segment+1, e.Cause)
}

// Unwrap returns the underlying error.
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is matches the sentinel for the error's code.
func (e *Error) Is(target error) bool {
	switch e.Code {
	case ErrorCodeFetch:
		return target == ErrFetch
	case ErrorCodeDecode:
		return target == ErrDecode
	case ErrorCodePlayback:
		return target == ErrPlayback
	}
	return false
}

func newError(code ErrorCode, segment int, cause error) *Error {
	return &Error{Code: code, Segment: segment, Cause: cause}
}
