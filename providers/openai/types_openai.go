package openai

import "encoding/json"

// openAIRequest represents a request to the OpenAI chat completions API.
type openAIRequest struct {
	Model         string               `json:"model"`
	Messages      []openAIMessage      `json:"messages"`
	MaxTokens     *int                 `json:"max_tokens,omitempty"`
	Stream        bool                 `json:"stream"`
	StreamOptions *openAIStreamOptions `json:"stream_options,omitempty"`
}

// openAIStreamOptions asks the API to append a usage-only chunk to the stream.
type openAIStreamOptions struct {
	IncludeUsage bool `json:"include_usage"`
}

// openAIMessage represents a message in the OpenAI format.
// Content is a plain string unless Items is set.
type openAIMessage struct {
	Role    string
	Content string
	Items   []openAIContentItem
}

// MarshalJSON emits content as a string or as an array of typed items.
func (m openAIMessage) MarshalJSON() ([]byte, error) {
	if len(m.Items) > 0 {
		return json.Marshal(struct {
			Role    string              `json:"role"`
			Content []openAIContentItem `json:"content"`
		}{m.Role, m.Items})
	}
	return json.Marshal(struct {
		Role    string `json:"role"`
		Content string `json:"content"`
	}{m.Role, m.Content})
}

// openAIContentItem is one entry of a multimodal content array.
type openAIContentItem struct {
	Type     string          `json:"type"`
	Text     string          `json:"text,omitempty"`
	ImageURL *openAIImageURL `json:"image_url,omitempty"`
}

// openAIImageURL references an image by URL or data URL.
type openAIImageURL struct {
	URL    string `json:"url"`
	Detail string `json:"detail,omitempty"`
}

// openAIResponse represents a response from the OpenAI chat completions API.
type openAIResponse struct {
	ID      string         `json:"id"`
	Object  string         `json:"object"`
	Created int64          `json:"created"`
	Model   string         `json:"model"`
	Choices []openAIChoice `json:"choices"`
	Usage   openAIUsage    `json:"usage"`
}

// openAIChoice represents a single choice in an OpenAI response.
type openAIChoice struct {
	Index        int           `json:"index"`
	Message      openAIRespMsg `json:"message"`
	FinishReason string        `json:"finish_reason"`
}

// openAIRespMsg represents the assistant message in a response.
type openAIRespMsg struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// openAIUsage represents token usage in an OpenAI response.
type openAIUsage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// openAIStreamChunk is one SSE data payload of a streaming completion.
type openAIStreamChunk struct {
	ID      string               `json:"id"`
	Model   string               `json:"model"`
	Choices []openAIStreamChoice `json:"choices"`
	Usage   *openAIUsage         `json:"usage,omitempty"`
	// Error is set when the API aborts the stream after headers were sent.
	Error *openAIStreamError `json:"error,omitempty"`
}

// openAIStreamError is the error envelope delivered as an SSE event.
type openAIStreamError struct {
	Message string `json:"message"`
	Type    string `json:"type"`
	Code    string `json:"code"`
}

// openAIStreamChoice carries the delta for one choice.
type openAIStreamChoice struct {
	Index        int               `json:"index"`
	Delta        openAIStreamDelta `json:"delta"`
	FinishReason *string           `json:"finish_reason"`
}

// openAIStreamDelta holds incremental content. Content is null on role-only
// and final chunks.
type openAIStreamDelta struct {
	Role    *string `json:"role,omitempty"`
	Content *string `json:"content"`
}
