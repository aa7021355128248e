package transport

import (
	"context"
	"errors"
	"net"
	"os"
	"syscall"

	"github.com/davidbz/transly/internal/domain"
)

// Display messages for transport failures.
const (
	MessageNotRunning = "Ollama is not running. Please start Ollama."
	MessageTimedOut   = "Connection timed out."
	MessageCancelled  = "Request was cancelled."
)

// Classify maps a transport error onto the domain error taxonomy.
func Classify(err error) error {
	if err == nil {
		return nil
	}

	switch {
	case errors.Is(err, domain.ErrTimeout),
		errors.Is(err, domain.ErrConnectionFailed),
		errors.Is(err, domain.ErrAPI):
		return err
	case IsTimeout(err):
		return domain.ErrTimeout
	case errors.Is(err, context.Canceled):
		return domain.NewConnectionError(MessageCancelled)
	case IsRefused(err):
		return domain.NewConnectionError(MessageNotRunning)
	default:
		return domain.NewConnectionError(err.Error())
	}
}

// IsTimeout reports whether err is a deadline or network timeout.
func IsTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, os.ErrDeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}

// IsRefused reports whether err means nothing listens at the endpoint,
// including an unresolvable host.
func IsRefused(err error) bool {
	if errors.Is(err, syscall.ECONNREFUSED) {
		return true
	}
	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return true
	}
	var opErr *net.OpError
	return errors.As(err, &opErr) && opErr.Op == "dial"
}
