package ollama

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/davidbz/transly/internal/domain"
	"github.com/davidbz/transly/internal/observability"
	"github.com/davidbz/transly/internal/transport"
)

const (
	initialLineBuffer = 64 * 1024
	maxLineBytes      = 4 * 1024 * 1024
)

// ChatStream sends a streaming request and decodes the NDJSON body in a
// goroutine. Cancelling ctx closes the connection and the channel.
func (p *Provider) ChatStream(ctx context.Context, req *domain.ChatRequest) (<-chan domain.StreamFragment, error) {
	if req == nil {
		return nil, fmt.Errorf("%w: request cannot be nil", domain.ErrInvalidRequest)
	}

	logger := observability.FromContext(ctx)
	logger.Debug("calling Ollama streaming chat API", observability.String("endpoint", req.Endpoint))

	resp, err := p.http.R().
		SetContext(ctx).
		SetBody(newChatRequest(req, true)).
		SetDoNotParseResponse(true).
		Post(chatURL(req.Endpoint))
	if err != nil {
		logger.Error("Ollama streaming request failed", observability.Error(err))
		return nil, transport.Classify(err)
	}

	body := resp.RawBody()
	if resp.IsError() {
		defer body.Close()
		data, _ := io.ReadAll(io.LimitReader(body, maxErrorBodyBytes))
		return nil, domain.NewStatusError(resp.StatusCode(), errorBody(data))
	}

	fragments := make(chan domain.StreamFragment)

	go func() {
		defer close(fragments)
		defer body.Close()
		defer logger.Debug("Ollama stream completed")

		decodeStream(ctx, body, fragments)
	}()

	return fragments, nil
}

// decodeStream turns newline-delimited JSON into fragments. Lines are
// reassembled across network reads, so an object split over two reads is
// decoded once whole. Lines that are not valid JSON are skipped. Decoding
// stops after a done line, an error line, or the end of the body.
func decodeStream(ctx context.Context, r io.Reader, out chan<- domain.StreamFragment) {
	logger := observability.FromContext(ctx)

	send := func(fragment domain.StreamFragment) bool {
		select {
		case out <- fragment:
			return true
		case <-ctx.Done():
			return false
		}
	}

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, initialLineBuffer), maxLineBytes)

	for scanner.Scan() {
		line := bytes.TrimSpace(scanner.Bytes())
		if len(line) == 0 {
			continue
		}

		var msg chatResponse
		if err := json.Unmarshal(line, &msg); err != nil {
			logger.Debug("skipping undecodable stream line", observability.Error(err))
			continue
		}

		if msg.Error != "" {
			send(domain.StreamFragment{Err: domain.NewAPIError(msg.Error)})
			return
		}

		fragment := domain.StreamFragment{Done: msg.Done}
		if msg.Message != nil {
			fragment.Content = msg.Message.Content
			fragment.HasContent = true
		}

		if !send(fragment) || msg.Done {
			return
		}
	}

	if err := scanner.Err(); err != nil && ctx.Err() == nil {
		logger.Warn("Ollama stream read failed", observability.Error(err))
		send(domain.StreamFragment{Err: transport.Classify(err)})
	}
}
