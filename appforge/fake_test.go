package appforge

import (
	"context"
	"sync"

	"github.com/petal-labs/appforge/core"
)

// fakeProvider streams scripted deltas and records every request.
type fakeProvider struct {
	mu       sync.Mutex
	requests []core.ChatRequest

	deltas    []string
	final     *core.ChatResponse
	openErr   error // returned by StreamChat
	streamErr error // sent on Err after the deltas
	hold      bool  // wait for cancellation after the deltas
	textOnly  bool  // Supports reports no vision
	models    []core.ModelInfo
}

func (f *fakeProvider) ID() string               { return "fake" }
func (f *fakeProvider) Models() []core.ModelInfo { return f.models }

func (f *fakeProvider) Supports(feature core.Feature) bool {
	return feature != core.FeatureVision || !f.textOnly
}

func (f *fakeProvider) Chat(context.Context, *core.ChatRequest) (*core.ChatResponse, error) {
	return nil, core.ErrBadRequest
}

func (f *fakeProvider) StreamChat(ctx context.Context, req *core.ChatRequest) (*core.ChatStream, error) {
	f.mu.Lock()
	f.requests = append(f.requests, *req)
	f.mu.Unlock()

	if f.openErr != nil {
		return nil, f.openErr
	}

	ch := make(chan core.ChatChunk)
	errCh := make(chan error, 1)
	finalCh := make(chan *core.ChatResponse, 1)

	go func() {
		defer close(finalCh)
		defer close(errCh)
		defer close(ch)

		for _, d := range f.deltas {
			select {
			case ch <- core.ChatChunk{Delta: d}:
			case <-ctx.Done():
				errCh <- ctx.Err()
				return
			}
		}
		if f.hold {
			<-ctx.Done()
			errCh <- ctx.Err()
			return
		}
		if f.streamErr != nil {
			errCh <- f.streamErr
			return
		}
		final := f.final
		if final == nil {
			final = &core.ChatResponse{}
		}
		finalCh <- final
	}()

	return &core.ChatStream{Ch: ch, Err: errCh, Final: finalCh}, nil
}

func (f *fakeProvider) calls() []core.ChatRequest {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]core.ChatRequest(nil), f.requests...)
}

func newTestBuilder(p *fakeProvider, opts ...Option) *Builder {
	opts = append([]Option{WithAPIKey(core.NewSecret("sk-test"))}, opts...)
	return NewBuilder(core.NewClient(p), opts...)
}
