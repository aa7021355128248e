package domain

import (
	"context"
	"fmt"
	"strings"
	"time"
)

// dispatchStream drains fragments in order, reports each content-bearing
// fragment to listener and finishes with exactly one OnComplete. A fragment
// error or a cancelled ctx ends the stream without OnComplete.
func dispatchStream(
	ctx context.Context,
	fragments <-chan StreamFragment,
	source string,
	start time.Time,
	listener StreamListener,
) (StreamCompleteEvent, error) {
	var accumulated strings.Builder

	for fragment := range fragments {
		if fragment.Err != nil {
			return StreamCompleteEvent{}, fragment.Err
		}

		// Empty deltas before the end would repeat the accumulated text.
		if fragment.HasContent && (fragment.Content != "" || fragment.Done) {
			accumulated.WriteString(fragment.Content)
			listener.OnChunk(StreamChunkEvent{
				Chunk:       fragment.Content,
				Accumulated: accumulated.String(),
				Done:        fragment.Done,
			})
		}

		if fragment.Done {
			break
		}
	}

	// A closed channel after cancellation is an aborted stream, not a finished one.
	if err := ctx.Err(); err != nil {
		return StreamCompleteEvent{}, fmt.Errorf("%w: stream aborted: %w", ErrConnectionFailed, err)
	}

	complete := StreamCompleteEvent{
		TranslatedText: Clean(accumulated.String(), source),
		DurationMs:     elapsedMs(start),
	}
	listener.OnComplete(complete)

	return complete, nil
}
