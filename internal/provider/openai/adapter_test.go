package openai_test

import (
	"context"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/davidbz/transly/internal/domain"
	"github.com/davidbz/transly/internal/provider/openai"
	"github.com/davidbz/transly/internal/transport"
)

const completionBody = `{
	"id": "chatcmpl-1",
	"object": "chat.completion",
	"created": 1700000000,
	"model": "qwen2.5-7b-instruct",
	"choices": [{"index": 0, "message": {"role": "assistant", "content": "Hello"}, "finish_reason": "stop"}],
	"usage": {"prompt_tokens": 10, "completion_tokens": 2, "total_tokens": 12}
}`

func newProvider() *openai.Provider {
	return openai.NewProvider(openai.Config{APIKey: "local", MaxRetries: 0})
}

func newChatRequest(endpoint string) *domain.ChatRequest {
	return &domain.ChatRequest{
		Endpoint: endpoint,
		Model:    "qwen2.5-7b-instruct",
		Messages: []domain.ChatMessage{
			{Role: "system", Content: "You MUST respond in English only."},
			{Role: "user", Content: "Summarize this."},
		},
		Params:    domain.SelectParameters(domain.ClassifyModel("qwen2.5-7b-instruct")),
		KeepAlive: domain.DefaultKeepAlive,
	}
}

func sseChunk(content, finishReason string) string {
	finish := "null"
	if finishReason != "" {
		finish = fmt.Sprintf("%q", finishReason)
	}
	return fmt.Sprintf(
		`data: {"id":"c1","object":"chat.completion.chunk","created":1700000000,"model":"m","choices":[{"index":0,"delta":{"content":%q},"finish_reason":%s}]}`+"\n\n",
		content, finish,
	)
}

func TestProvider_Name(t *testing.T) {
	require.Equal(t, "openai", newProvider().Name())
}

func TestProvider_Chat(t *testing.T) {
	t.Run("should map the request and response", func(t *testing.T) {
		var body map[string]interface{}
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			require.Equal(t, "/v1/chat/completions", r.URL.Path)
			require.NoError(t, json.NewDecoder(r.Body).Decode(&body))

			w.Header().Set("Content-Type", "application/json")
			fmt.Fprint(w, completionBody)
		}))
		defer server.Close()

		resp, err := newProvider().Chat(context.Background(), newChatRequest(server.URL+"/v1"))

		require.NoError(t, err)
		require.Equal(t, "Hello", resp.Content)
		require.Equal(t, "qwen2.5-7b-instruct", body["model"])
		require.InDelta(t, 0.2, body["temperature"], 1e-9)
		require.InDelta(t, 0.9, body["top_p"], 1e-9)
		require.InDelta(t, 1.1, body["repeat_penalty"], 1e-9)
		require.InDelta(t, 4096, body["max_tokens"], 1e-9)

		messages, ok := body["messages"].([]interface{})
		require.True(t, ok)
		require.Len(t, messages, 2)
		first, ok := messages[0].(map[string]interface{})
		require.True(t, ok)
		require.Equal(t, "system", first["role"])
	})

	t.Run("should map error statuses to api errors", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusNotFound)
			fmt.Fprint(w, `{"error":{"message":"model not found","type":"invalid_request_error"}}`)
		}))
		defer server.Close()

		_, err := newProvider().Chat(context.Background(), newChatRequest(server.URL+"/v1"))

		require.ErrorIs(t, err, domain.ErrAPI)
		require.Contains(t, err.Error(), "404")
	})

	t.Run("should report a stopped server", func(t *testing.T) {
		_, err := newProvider().Chat(context.Background(), newChatRequest(closedEndpoint(t)))

		require.ErrorIs(t, err, domain.ErrConnectionFailed)
	})

	t.Run("should reject nil request", func(t *testing.T) {
		_, err := newProvider().Chat(context.Background(), nil)
		require.ErrorIs(t, err, domain.ErrInvalidRequest)
	})
}

func TestProvider_ChatStream(t *testing.T) {
	t.Run("should convert chunks to fragments", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.Header().Set("Content-Type", "text/event-stream")
			flusher := w.(http.Flusher)
			for _, event := range []string{
				sseChunk("Hel", ""),
				sseChunk("lo", ""),
				sseChunk("", "stop"),
				"data: [DONE]\n\n",
			} {
				fmt.Fprint(w, event)
				flusher.Flush()
			}
		}))
		defer server.Close()

		fragments, err := newProvider().ChatStream(context.Background(), newChatRequest(server.URL+"/v1"))
		require.NoError(t, err)

		var got []domain.StreamFragment
		for f := range fragments {
			got = append(got, f)
		}

		require.Len(t, got, 3)
		require.Equal(t, "Hel", got[0].Content)
		require.Equal(t, "lo", got[1].Content)
		require.False(t, got[1].Done)
		require.True(t, got[2].Done)
		for _, f := range got {
			require.NoError(t, f.Err)
		}
	})

	t.Run("should skip the role-only opening chunk", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.Header().Set("Content-Type", "text/event-stream")
			flusher := w.(http.Flusher)
			for _, event := range []string{
				`data: {"id":"c1","object":"chat.completion.chunk","created":1700000000,"model":"m","choices":[{"index":0,"delta":{"role":"assistant","content":""},"finish_reason":null}]}` + "\n\n",
				sseChunk("Hello", ""),
				sseChunk("", "stop"),
				"data: [DONE]\n\n",
			} {
				fmt.Fprint(w, event)
				flusher.Flush()
			}
		}))
		defer server.Close()

		fragments, err := newProvider().ChatStream(context.Background(), newChatRequest(server.URL+"/v1"))
		require.NoError(t, err)

		var got []domain.StreamFragment
		for f := range fragments {
			got = append(got, f)
		}

		require.Len(t, got, 2)
		require.Equal(t, "Hello", got[0].Content)
		require.False(t, got[0].Done)
		require.True(t, got[1].Done)
	})

	t.Run("should surface request failures as error fragments", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusInternalServerError)
			fmt.Fprint(w, `{"error":{"message":"boom"}}`)
		}))
		defer server.Close()

		fragments, err := newProvider().ChatStream(context.Background(), newChatRequest(server.URL+"/v1"))
		require.NoError(t, err)

		var got []domain.StreamFragment
		for f := range fragments {
			got = append(got, f)
		}

		require.Len(t, got, 1)
		require.ErrorIs(t, got[0].Err, domain.ErrAPI)
	})
}

func TestProvider_Status(t *testing.T) {
	t.Run("should be available when models answer", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			require.Equal(t, "/v1/models", r.URL.Path)
			w.Header().Set("Content-Type", "application/json")
			fmt.Fprint(w, `{"object":"list","data":[{"id":"qwen2.5-7b-instruct","object":"model","created":1,"owned_by":"local"}]}`)
		}))
		defer server.Close()

		status := newProvider().Status(context.Background(), server.URL+"/v1")

		require.True(t, status.IsAvailable())
	})

	t.Run("should explain a stopped server", func(t *testing.T) {
		status := newProvider().Status(context.Background(), closedEndpoint(t))

		require.False(t, status.IsAvailable())
		require.Equal(t, transport.MessageNotRunning, status.Reason)
	})
}

func TestProvider_ListModels(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"object":"list","data":[{"id":"a","object":"model","created":1,"owned_by":"x"},{"id":"b","object":"model","created":1,"owned_by":"x"}]}`)
	}))
	defer server.Close()

	models, err := newProvider().ListModels(context.Background(), server.URL+"/v1")

	require.NoError(t, err)
	require.Equal(t, []domain.ModelInfo{{Name: "a"}, {Name: "b"}}, models)
}

func TestProvider_Preload(t *testing.T) {
	t.Run("should request a single token", func(t *testing.T) {
		var body map[string]interface{}
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
			w.Header().Set("Content-Type", "application/json")
			fmt.Fprint(w, completionBody)
		}))
		defer server.Close()

		err := newProvider().Preload(context.Background(), server.URL+"/v1", "qwen2.5-7b-instruct")

		require.NoError(t, err)
		require.InDelta(t, 1, body["max_tokens"], 1e-9)
	})

	t.Run("should time out with the caller deadline", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
			select {
			case <-r.Context().Done():
			case <-time.After(2 * time.Second):
			}
		}))
		defer server.Close()

		ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
		defer cancel()

		err := newProvider().Preload(ctx, server.URL+"/v1", "m")

		require.EqualError(t, err, "Preload timed out.")
	})
}

func closedEndpoint(t *testing.T) string {
	t.Helper()
	listener, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := listener.Addr().String()
	require.NoError(t, listener.Close())
	return "http://" + addr + "/v1"
}
