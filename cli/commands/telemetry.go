package commands

import (
	"github.com/apex/log"

	"github.com/petal-labs/appforge/core"
)

// logTelemetry reports provider requests through apex/log. Events carry no
// prompt or response text.
type logTelemetry struct {
	log log.Interface
}

func (h logTelemetry) OnRequestStart(e core.RequestStartEvent) {
	h.log.WithFields(log.Fields{
		"provider": e.Provider,
		"model":    e.Model,
		"stream":   e.Stream,
	}).Debug("request started")
}

func (h logTelemetry) OnRequestEnd(e core.RequestEndEvent) {
	entry := h.log.WithFields(log.Fields{
		"provider":          e.Provider,
		"model":             e.Model,
		"prompt_tokens":     e.Usage.PromptTokens,
		"completion_tokens": e.Usage.CompletionTokens,
		"total_tokens":      e.Usage.TotalTokens,
	}).WithDuration(e.Duration())

	if e.Err != nil {
		entry.WithError(e.Err).Warn("request failed")
		return
	}
	entry.Info("request finished")
}

var _ core.TelemetryHook = logTelemetry{}
