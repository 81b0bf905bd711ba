package commands

import (
	"context"
	"errors"
	"fmt"

	"github.com/petal-labs/appforge/appforge"
	"github.com/petal-labs/appforge/core"
)

// Exit codes
const (
	ExitSuccess    = 0
	ExitValidation = 1
	ExitProvider   = 2
	ExitNetwork    = 3
	ExitExtraction = 4
)

// exitError wraps an error with an exit code.
type exitError struct {
	code int
	err  error
}

func (e *exitError) Error() string {
	return e.err.Error()
}

func (e *exitError) Unwrap() error {
	return e.err
}

func (e *exitError) ExitCode() int {
	return e.code
}

func exitWithCode(code int, err error) error {
	return &exitError{code: code, err: err}
}

// exitCodeFor classifies err into one of the exit codes.
func exitCodeFor(err error) int {
	switch {
	case err == nil:
		return ExitSuccess
	case errors.Is(err, appforge.ErrMissingAPIKey),
		errors.Is(err, appforge.ErrNoImage),
		errors.Is(err, appforge.ErrEmptyText),
		errors.Is(err, appforge.ErrUnknownMode),
		errors.Is(err, appforge.ErrUnsupportedImage),
		errors.Is(err, appforge.ErrUnknownExample),
		errors.Is(err, appforge.ErrVisionUnsupported),
		errors.Is(err, core.ErrModelRequired),
		errors.Is(err, core.ErrNoMessages):
		return ExitValidation
	case errors.Is(err, appforge.ErrNoCodeBlock):
		return ExitExtraction
	case errors.Is(err, core.ErrNetwork), errors.Is(err, context.DeadlineExceeded):
		return ExitNetwork
	default:
		return ExitProvider
	}
}

// handleError reports err on stderr and returns it with its exit code.
// An *exitError keeps the code it carries.
func (a *App) handleError(err error) error {
	code := exitCodeFor(err)
	var ee *exitError
	if errors.As(err, &ee) {
		code, err = ee.code, ee.err
	}

	var provErr *core.ProviderError
	isProvider := errors.As(err, &provErr)

	if a.jsonOutput {
		a.writeErrorJSON(err, code, provErr)
	} else {
		fmt.Fprintf(a.stderr, "Error: %v\n", err)
		if isProvider && provErr.RequestID != "" {
			fmt.Fprintf(a.stderr, "  Provider: %s, Request ID: %s\n", provErr.Provider, provErr.RequestID)
		}
	}

	return exitWithCode(code, err)
}

func (a *App) writeErrorJSON(err error, code int, provErr *core.ProviderError) {
	body := map[string]any{
		"type":    errorType(code),
		"message": err.Error(),
	}
	if provErr != nil {
		body["message"] = provErr.Message
		body["code"] = provErr.Code
		body["provider"] = provErr.Provider
		body["request_id"] = provErr.RequestID
	}

	_ = writeJSON(a.stderr, map[string]any{"error": body})
}

func errorType(code int) string {
	switch code {
	case ExitValidation:
		return "validation_error"
	case ExitExtraction:
		return "extraction_error"
	case ExitNetwork:
		return "network_error"
	default:
		return "provider_error"
	}
}
