package gemini

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strings"
)

// Failures surfaced to the user. The underlying API error stays wrapped.
var (
	ErrInvalidAPIKey = errors.New("invalid API key: check that the key is correct and has the necessary permissions")
	ErrNetwork       = errors.New("network error: check your internet connection")
	ErrUnavailable   = errors.New("failed to get a response from the Gemini API: the service may be temporarily unavailable")
	ErrEmptyResponse = errors.New("the Gemini API returned an empty response")
	ErrNoAudio       = errors.New("no audio data received from API")
)

// classify maps an API error onto one of the user-facing failures.
func classify(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}

	msg := err.Error()
	lower := strings.ToLower(msg)
	var netErr net.Error
	switch {
	case strings.Contains(msg, "API key not valid"), strings.Contains(msg, "API_KEY_INVALID"):
		return fmt.Errorf("%w: %w", ErrInvalidAPIKey, err)
	case errors.As(err, &netErr),
		strings.Contains(lower, "network"),
		strings.Contains(lower, "fetch failed"),
		strings.Contains(lower, "no such host"),
		strings.Contains(lower, "connection refused"):
		return fmt.Errorf("%w: %w", ErrNetwork, err)
	default:
		return fmt.Errorf("%w: %w", ErrUnavailable, err)
	}
}
