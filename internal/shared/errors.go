package shared

import (
	"context"
	"errors"
	"fmt"
	"net"
)

var (
	// Configuration errors
	ErrMissingConfig      = fmt.Errorf("configuration not found")
	ErrInvalidConfig      = fmt.Errorf("invalid configuration")
	ErrMissingCredentials = fmt.Errorf("missing credentials")

	// Authentication errors
	ErrAuthExchange       = fmt.Errorf("token exchange failed")
	ErrNotAuthenticated   = fmt.Errorf("not authenticated")
	ErrCredentialsChanged = fmt.Errorf("credentials changed during token exchange")
	ErrTimeout            = fmt.Errorf("operation timed out")

	// Playback errors
	ErrPlaybackQuery     = fmt.Errorf("playback query failed")
	ErrMalformedResponse = fmt.Errorf("malformed response")
	ErrNothingPlaying    = fmt.Errorf("nothing is playing")
	ErrPollInFlight      = fmt.Errorf("poll already in flight")

	// Asset errors
	ErrAssetLoad = fmt.Errorf("asset load failed")

	// Input validation errors
	ErrMissingArgument = fmt.Errorf("missing required argument")
	ErrInvalidArgument = fmt.Errorf("invalid argument")
)

// WrapTimeout returns err wrapped with [ErrTimeout] when it represents a deadline or network timeout,
// and err unchanged otherwise.
func WrapTimeout(err error) error {
	if err == nil || errors.Is(err, ErrTimeout) {
		return err
	}

	var netErr net.Error
	if errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &netErr) && netErr.Timeout()) {
		return fmt.Errorf("%w: %w", ErrTimeout, err)
	}
	return err
}
