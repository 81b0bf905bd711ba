package openai

import (
	"github.com/petal-labs/appforge/core"
)

// mapMessages converts core messages to OpenAI message format.
func mapMessages(msgs []core.Message) []openAIMessage {
	result := make([]openAIMessage, len(msgs))
	for i, msg := range msgs {
		result[i] = openAIMessage{
			Role:    string(msg.Role),
			Content: msg.Content,
			Items:   mapParts(msg.Parts),
		}
	}
	return result
}

// mapParts converts multimodal parts to chat completions content items.
// Unknown part types are skipped.
func mapParts(parts []core.ContentPart) []openAIContentItem {
	if len(parts) == 0 {
		return nil
	}

	items := make([]openAIContentItem, 0, len(parts))
	for _, part := range parts {
		switch p := part.(type) {
		case core.InputText:
			items = append(items, openAIContentItem{Type: "text", Text: p.Text})
		case *core.InputText:
			items = append(items, openAIContentItem{Type: "text", Text: p.Text})
		case core.InputImage:
			items = append(items, imageItem(p))
		case *core.InputImage:
			items = append(items, imageItem(*p))
		}
	}
	return items
}

func imageItem(img core.InputImage) openAIContentItem {
	return openAIContentItem{
		Type: "image_url",
		ImageURL: &openAIImageURL{
			URL:    img.ImageURL,
			Detail: string(img.Detail),
		},
	}
}

// buildRequest creates an OpenAI API request from a core ChatRequest.
func buildRequest(req *core.ChatRequest, stream bool) *openAIRequest {
	oaiReq := &openAIRequest{
		Model:     string(req.Model),
		Messages:  mapMessages(req.Messages),
		MaxTokens: req.MaxTokens,
		Stream:    stream,
	}
	if stream {
		oaiReq.StreamOptions = &openAIStreamOptions{IncludeUsage: true}
	}
	return oaiReq
}
