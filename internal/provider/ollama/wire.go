package ollama

import "github.com/davidbz/transly/internal/domain"

// chatRequest is the body of POST /api/chat.
type chatRequest struct {
	Model     string                 `json:"model"`
	Messages  []domain.ChatMessage   `json:"messages"`
	Stream    bool                   `json:"stream"`
	Options   map[string]interface{} `json:"options,omitempty"`
	KeepAlive string                 `json:"keep_alive,omitempty"`
}

// chatResponse is a whole response or one NDJSON line of a stream.
// Message is a pointer so an absent message is distinguishable from an
// empty content string.
type chatResponse struct {
	Message *domain.ChatMessage `json:"message,omitempty"`
	Done    bool                `json:"done"`
	Error   string              `json:"error,omitempty"`
}

func newChatRequest(req *domain.ChatRequest, stream bool) chatRequest {
	return chatRequest{
		Model:     req.Model,
		Messages:  req.Messages,
		Stream:    stream,
		Options:   req.Params.Options(),
		KeepAlive: req.KeepAlive,
	}
}
