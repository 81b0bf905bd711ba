package openai

import (
	"github.com/petal-labs/appforge/core"
	"github.com/petal-labs/appforge/providers/internal/normalize"
)

// normalizeError converts an HTTP error response to a ProviderError with the appropriate sentinel.
func normalizeError(status int, body []byte, requestID string) error {
	return normalize.OpenAIStyleProviderError(providerID, status, body, requestID)
}

func newNetworkError(err error) error {
	return normalize.NetworkError(providerID, err)
}

func newDecodeError(err error) error {
	return normalize.DecodeError(providerID, err)
}

// streamError converts an in-stream error event. The HTTP status was already
// 200, so the sentinel is ErrServer.
func streamError(e *openAIStreamError, requestID string) error {
	code := e.Code
	if code == "" {
		code = e.Type
	}
	return normalize.ProviderError(providerID, 0, requestID, code, e.Message, core.ErrServer)
}
