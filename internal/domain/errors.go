package domain

import (
	"errors"
	"fmt"
)

// Error taxonomy. Every error returned by TranslationService wraps exactly
// one of these sentinels; none of them is retried internally.
var (
	// ErrTimeout indicates the runtime did not answer within the request window.
	ErrTimeout = errors.New("translation request timed out")

	// ErrConnectionFailed indicates a transport failure: refused connection,
	// DNS failure or a stream interrupted mid-read.
	ErrConnectionFailed = errors.New("connection failed")

	// ErrAPI indicates a non-2xx status or a response body of the wrong shape.
	ErrAPI = errors.New("api error")

	// ErrInsufficientCapability indicates the model is too small for summarize or reply.
	ErrInsufficientCapability = errors.New("model too small for this feature")

	// ErrInvalidRequest indicates caller input that cannot be dispatched.
	ErrInvalidRequest = errors.New("invalid request")
)

// CapabilityError is returned by RequireAdvancedCapability.
type CapabilityError struct {
	SizeBillions uint
}

func (e *CapabilityError) Error() string {
	return fmt.Sprintf(
		"this model does not support summarize or reply; use a model with %dB or more parameters (current: %dB)",
		MinAdvancedModelSizeBillions, e.SizeBillions,
	)
}

// Is makes errors.Is(err, ErrInsufficientCapability) hold.
func (e *CapabilityError) Is(target error) bool {
	return target == ErrInsufficientCapability
}

// NewConnectionError wraps ErrConnectionFailed with a display message.
func NewConnectionError(detail string) error {
	return fmt.Errorf("%w: %s", ErrConnectionFailed, detail)
}

// NewAPIError wraps ErrAPI with a display message.
func NewAPIError(detail string) error {
	return fmt.Errorf("%w: %s", ErrAPI, detail)
}

// NewStatusError wraps ErrAPI for a non-2xx response.
func NewStatusError(statusCode int, body string) error {
	return fmt.Errorf("%w: status %d: %s", ErrAPI, statusCode, body)
}
