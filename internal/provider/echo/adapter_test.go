package echo_test

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/davidbz/transly/internal/domain"
	"github.com/davidbz/transly/internal/provider/echo"
)

func newRequest(content string) *domain.ChatRequest {
	return &domain.ChatRequest{
		Model: "echo",
		Messages: []domain.ChatMessage{
			{Role: "system", Content: "ignored"},
			{Role: "user", Content: content},
		},
	}
}

func TestNewProvider(t *testing.T) {
	provider := echo.NewProvider()

	require.NotNil(t, provider)
	require.Equal(t, "echo", provider.Name())
}

func TestChat(t *testing.T) {
	t.Run("should echo the payload after the instruction line", func(t *testing.T) {
		provider := echo.NewProvider()

		resp, err := provider.Chat(context.Background(), newRequest("Translate the following text:\nHello world"))

		require.NoError(t, err)
		require.Equal(t, "Hello world", resp.Content)
	})

	t.Run("should echo single-line messages whole", func(t *testing.T) {
		resp, err := echo.NewProvider().Chat(context.Background(), newRequest("Hello"))

		require.NoError(t, err)
		require.Equal(t, "Hello", resp.Content)
	})

	t.Run("should reject nil request", func(t *testing.T) {
		resp, err := echo.NewProvider().Chat(context.Background(), nil)

		require.ErrorIs(t, err, domain.ErrInvalidRequest)
		require.Nil(t, resp)
	})
}

func TestChatStream(t *testing.T) {
	t.Run("should stream words then done", func(t *testing.T) {
		fragments, err := echo.NewProvider().ChatStream(context.Background(), newRequest("Translate:\nHello big world"))
		require.NoError(t, err)

		var got []domain.StreamFragment
		for f := range fragments {
			got = append(got, f)
		}

		require.Len(t, got, 4)
		var builder strings.Builder
		for _, f := range got {
			builder.WriteString(f.Content)
		}
		require.Equal(t, "Hello big world", builder.String())
		require.True(t, got[3].Done)
		require.False(t, got[2].Done)
	})

	t.Run("should stop on cancellation", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())

		fragments, err := echo.NewProvider().ChatStream(ctx, newRequest("Translate:\none two three four five"))
		require.NoError(t, err)

		<-fragments
		cancel()

		done := make(chan struct{})
		go func() {
			for range fragments {
			}
			close(done)
		}()

		select {
		case <-done:
		case <-time.After(time.Second):
			t.Fatal("stream did not close after cancellation")
		}
	})
}

func TestStatusAndModels(t *testing.T) {
	provider := echo.NewProvider()

	require.True(t, provider.Status(context.Background(), "").IsAvailable())
	require.NoError(t, provider.Preload(context.Background(), "", "echo"))

	models, err := provider.ListModels(context.Background(), "")
	require.NoError(t, err)
	require.Equal(t, []domain.ModelInfo{{Name: "echo"}}, models)
}
