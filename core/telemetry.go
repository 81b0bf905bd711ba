package core

import "time"

// TelemetryHook receives notifications about request lifecycle events.
//
// Events carry operational metadata only: provider, model, timing and token
// counts. They never include API keys, prompt text, images or model output,
// so hook implementations may log them freely.
type TelemetryHook interface {
	// OnRequestStart is called when a request to a provider begins.
	OnRequestStart(e RequestStartEvent)

	// OnRequestEnd is called when a request to a provider completes.
	// For streams this fires once the stream has finished.
	OnRequestEnd(e RequestEndEvent)
}

// RequestStartEvent contains metadata about a starting request.
type RequestStartEvent struct {
	Provider string
	Model    ModelID
	Start    time.Time
	Stream   bool
}

// RequestEndEvent contains metadata about a completed request.
type RequestEndEvent struct {
	Provider string
	Model    ModelID
	Start    time.Time
	End      time.Time
	Stream   bool
	Usage    TokenUsage
	Err      error // nil on success
}

// Duration returns the elapsed time for the request.
func (e RequestEndEvent) Duration() time.Duration {
	return e.End.Sub(e.Start)
}

// NoopTelemetryHook is the default hook when none is configured.
type NoopTelemetryHook struct{}

func (NoopTelemetryHook) OnRequestStart(RequestStartEvent) {}

func (NoopTelemetryHook) OnRequestEnd(RequestEndEvent) {}

var _ TelemetryHook = NoopTelemetryHook{}
