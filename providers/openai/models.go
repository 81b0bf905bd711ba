// Package openai provides an OpenAI chat completions provider for appforge.
package openai

import "github.com/petal-labs/appforge/core"

// Model constants for OpenAI chat models.
const (
	ModelGPT4o     core.ModelID = "gpt-4o"
	ModelGPT4oMini core.ModelID = "gpt-4o-mini"
	ModelGPT41     core.ModelID = "gpt-4.1"
	ModelGPT41Mini core.ModelID = "gpt-4.1-mini"
	ModelGPT4Turbo core.ModelID = "gpt-4-turbo"
	ModelGPT35     core.ModelID = "gpt-3.5-turbo"
)

var textChat = []core.Feature{
	core.FeatureChat,
	core.FeatureChatStreaming,
}

var visionChat = []core.Feature{
	core.FeatureChat,
	core.FeatureChatStreaming,
	core.FeatureVision,
}

// models is the static list of known models. Unknown model IDs are still
// passed through to the API unchanged.
var models = []core.ModelInfo{
	{ID: ModelGPT4o, DisplayName: "GPT-4o", Capabilities: visionChat},
	{ID: ModelGPT4oMini, DisplayName: "GPT-4o mini", Capabilities: visionChat},
	{ID: ModelGPT41, DisplayName: "GPT-4.1", Capabilities: visionChat},
	{ID: ModelGPT41Mini, DisplayName: "GPT-4.1 mini", Capabilities: visionChat},
	{ID: ModelGPT4Turbo, DisplayName: "GPT-4 Turbo", Capabilities: visionChat},
	{ID: ModelGPT35, DisplayName: "GPT-3.5 Turbo", Capabilities: textChat},
}
