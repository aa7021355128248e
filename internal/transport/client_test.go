package transport_test

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/davidbz/transly/internal/domain"
	"github.com/davidbz/transly/internal/transport"
)

func TestShared(t *testing.T) {
	t.Run("should return one client for the process", func(t *testing.T) {
		require.Same(t, transport.Shared(), transport.Shared())
	})

	t.Run("should bound headers but not bodies", func(t *testing.T) {
		client := transport.Shared()
		require.Zero(t, client.Timeout)

		tr, ok := client.Transport.(*http.Transport)
		require.True(t, ok)
		require.Equal(t, transport.MaxIdleConnsPerHost, tr.MaxIdleConnsPerHost)
		require.Equal(t, transport.ResponseHeaderTimeout, tr.ResponseHeaderTimeout)
	})

	t.Run("should keep the health client separate", func(t *testing.T) {
		require.NotSame(t, transport.Shared(), transport.Health())
		require.Equal(t, transport.HealthTimeout, transport.Health().Timeout)
	})
}

func TestClassify(t *testing.T) {
	t.Run("should pass nil through", func(t *testing.T) {
		require.NoError(t, transport.Classify(nil))
	})

	t.Run("should map deadlines to timeout", func(t *testing.T) {
		err := transport.Classify(fmt.Errorf("post: %w", context.DeadlineExceeded))
		require.ErrorIs(t, err, domain.ErrTimeout)
	})

	t.Run("should map client timeouts to timeout", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(_ http.ResponseWriter, _ *http.Request) {
			time.Sleep(200 * time.Millisecond)
		}))
		defer server.Close()

		client := &http.Client{Timeout: 20 * time.Millisecond}
		_, err := client.Get(server.URL)
		require.Error(t, err)

		require.ErrorIs(t, transport.Classify(err), domain.ErrTimeout)
	})

	t.Run("should map refused connections to a not-running message", func(t *testing.T) {
		listener, err := net.Listen("tcp", "127.0.0.1:0")
		require.NoError(t, err)
		addr := listener.Addr().String()
		require.NoError(t, listener.Close())

		_, err = http.Get("http://" + addr)
		require.Error(t, err)

		classified := transport.Classify(err)
		require.ErrorIs(t, classified, domain.ErrConnectionFailed)
		require.Contains(t, classified.Error(), transport.MessageNotRunning)
	})

	t.Run("should keep domain errors unchanged", func(t *testing.T) {
		original := domain.NewStatusError(500, "boom")
		require.Equal(t, original, transport.Classify(original))
	})

	t.Run("should map cancellation to a connection failure", func(t *testing.T) {
		err := transport.Classify(context.Canceled)
		require.ErrorIs(t, err, domain.ErrConnectionFailed)
	})

	t.Run("should wrap unknown errors as connection failures", func(t *testing.T) {
		err := transport.Classify(errors.New("unexpected EOF"))
		require.ErrorIs(t, err, domain.ErrConnectionFailed)
		require.Contains(t, err.Error(), "unexpected EOF")
	})
}
