// Package core defines the provider-neutral chat types used by appforge.
//
// # Client and Provider
//
// [Client] wraps a [Provider] and adds telemetry and a fluent builder:
//
//	provider := openai.New(apiKey)
//	client := core.NewClient(provider, core.WithTelemetry(hook))
//
//	stream, err := client.Chat("gpt-4o").
//	    System("You are an experienced Python developer.").
//	    User("Build a counter app").
//	    MaxTokens(1280).
//	    Stream(ctx)
//
// # Streaming
//
// A [ChatStream] exposes three channels:
//   - Ch: text deltas in delivery order
//   - Err: at most one error
//   - Final: the completed response with usage, sent once on success
//
// Read Ch until it closes, then read Err and Final. [DrainStream] does this
// and returns the accumulated response.
//
// # Multimodal messages
//
// Vision requests carry [ContentPart] values in [Message.Parts] and are
// passed with [ChatBuilder.Messages]:
//
//	msg := core.Message{Role: core.RoleUser, Parts: []core.ContentPart{
//	    core.InputText{Text: "Convert this mock-up."},
//	    core.InputImage{ImageURL: "data:image/png;base64,..."},
//	}}
//	client.Chat(model).Messages(msg)
//
// # Errors
//
// Providers return [*ProviderError] wrapping one of the sentinel errors
// ([ErrUnauthorized], [ErrRateLimited], [ErrBadRequest], [ErrServer],
// [ErrNetwork], [ErrDecode]). Match them with errors.Is.
//
// # Thread safety
//
// [Client] is safe for concurrent use. [ChatBuilder] is not. A [ChatStream]
// may be read by one goroutine at a time.
package core
