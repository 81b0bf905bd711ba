package core

import (
	"context"
	"strings"
)

// ChatStream represents a streaming response from a provider.
//
// Channel rules:
//   - Providers MUST close Ch, Err, and Final when finished
//   - On context cancellation, providers MUST terminate promptly and close channels
//   - Err emits at most one error
//   - Final emits exactly once on success (zero times on failure)
//   - If providers cannot compute Usage for streaming, they MAY leave it zeroed
type ChatStream struct {
	// Ch emits text deltas in order. Closed when stream ends.
	Ch <-chan ChatChunk

	// Err emits at most one error. Closed when stream ends.
	Err <-chan error

	// Final is sent once after the stream completes successfully.
	// Output may be empty; callers fall back to the accumulated deltas.
	Final <-chan *ChatResponse
}

// DrainStream accumulates all deltas and returns the final ChatResponse.
// It blocks until the stream completes or ctx is done.
func DrainStream(ctx context.Context, s *ChatStream) (*ChatResponse, error) {
	return ConsumeStream(ctx, s, nil)
}

// ConsumeStream calls fn for every delta in delivery order, then waits for
// the terminal Err/Final pair. An error returned by fn stops consumption and
// is returned as is; the caller should cancel the stream's context.
// Output of the returned response is the concatenation of all deltas when
// the provider did not set it.
func ConsumeStream(ctx context.Context, s *ChatStream, fn func(ChatChunk) error) (*ChatResponse, error) {
	if s == nil {
		return nil, ErrBadRequest
	}

	var text strings.Builder
	for done := false; !done; {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case chunk, ok := <-s.Ch:
			if !ok {
				done = true
				continue
			}
			text.WriteString(chunk.Delta)
			if fn != nil {
				if err := fn(chunk); err != nil {
					return nil, err
				}
			}
		}
	}

	return finishStream(ctx, s, text.String())
}

// finishStream waits for the terminal Err/Final pair after Ch has closed.
// The accumulated text fills in Output when the provider left it empty.
func finishStream(ctx context.Context, s *ChatStream, text string) (*ChatResponse, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case err, ok := <-s.Err:
		if ok && err != nil {
			return nil, err
		}
	}

	var final *ChatResponse
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case resp, ok := <-s.Final:
		if ok {
			final = resp
		}
	}

	if final == nil {
		final = &ChatResponse{}
	}
	if final.Output == "" {
		final.Output = text
	}
	return final, nil
}
