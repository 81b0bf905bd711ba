package openai

import (
	"bufio"
	"context"
	"encoding/json"
	"io"
	"strings"

	"github.com/petal-labs/appforge/core"
)

// doStreamChat performs a streaming chat completion request.
func (p *OpenAI) doStreamChat(ctx context.Context, req *core.ChatRequest) (*core.ChatStream, error) {
	httpReq, err := p.newRequest(ctx, buildRequest(req, true))
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Accept", "text/event-stream")

	resp, err := p.config.HTTPClient.Do(httpReq)
	if err != nil {
		return nil, newNetworkError(err)
	}

	requestID := resp.Header.Get("x-request-id")
	if resp.StatusCode >= 400 {
		defer resp.Body.Close()
		respBody, _ := io.ReadAll(resp.Body)
		return nil, normalizeError(resp.StatusCode, respBody, requestID)
	}

	chunkCh := make(chan core.ChatChunk, 100)
	errCh := make(chan error, 1)
	finalCh := make(chan *core.ChatResponse, 1)

	go p.processSSEStream(ctx, resp.Body, requestID, chunkCh, errCh, finalCh)

	return &core.ChatStream{
		Ch:    chunkCh,
		Err:   errCh,
		Final: finalCh,
	}, nil
}

// processSSEStream reads the SSE stream and emits chunks.
// It ends on "data: [DONE]" or at EOF, whichever comes first. An error
// event ends it with a ProviderError and no final response.
func (p *OpenAI) processSSEStream(
	ctx context.Context,
	body io.ReadCloser,
	requestID string,
	chunkCh chan<- core.ChatChunk,
	errCh chan<- error,
	finalCh chan<- *core.ChatResponse,
) {
	defer body.Close()
	defer close(chunkCh)
	defer close(errCh)
	defer close(finalCh)

	reader := bufio.NewReader(body)
	final := &core.ChatResponse{}

	for {
		select {
		case <-ctx.Done():
			errCh <- ctx.Err()
			return
		default:
		}

		line, err := reader.ReadString('\n')
		if err != nil && err != io.EOF {
			if ctx.Err() != nil {
				errCh <- ctx.Err()
			} else {
				errCh <- newNetworkError(err)
			}
			return
		}
		eof := err == io.EOF

		payload, ok := ssePayload(line)
		if ok {
			if payload == "[DONE]" {
				break
			}

			var chunk openAIStreamChunk
			if err := json.Unmarshal([]byte(payload), &chunk); err != nil {
				errCh <- newDecodeError(err)
				return
			}
			if chunk.Error != nil {
				errCh <- streamError(chunk.Error, requestID)
				return
			}

			if chunk.ID != "" {
				final.ID = chunk.ID
			}
			if chunk.Model != "" {
				final.Model = core.ModelID(chunk.Model)
			}
			if chunk.Usage != nil {
				final.Usage = mapUsage(*chunk.Usage)
			}

			for _, choice := range chunk.Choices {
				if choice.FinishReason != nil {
					final.FinishReason = *choice.FinishReason
				}
				if choice.Delta.Content == nil || *choice.Delta.Content == "" {
					continue
				}
				select {
				case chunkCh <- core.ChatChunk{Delta: *choice.Delta.Content}:
				case <-ctx.Done():
					errCh <- ctx.Err()
					return
				}
			}
		}

		if eof {
			break
		}
	}

	finalCh <- final
}

// ssePayload returns the data of an SSE "data:" line. Comments, blank
// lines and other fields report ok=false.
func ssePayload(line string) (string, bool) {
	line = strings.TrimSpace(line)
	if line == "" || strings.HasPrefix(line, ":") {
		return "", false
	}
	if !strings.HasPrefix(line, "data:") {
		return "", false
	}
	return strings.TrimSpace(strings.TrimPrefix(line, "data:")), true
}
