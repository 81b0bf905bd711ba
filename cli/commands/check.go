package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/petal-labs/appforge/appforge"
	"github.com/petal-labs/appforge/core"
)

const checkTimeout = 30 * time.Second

func (a *App) newCheckCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "Verify the API key and model with a one-token request",
		Args:  cobra.NoArgs,
		RunE:  a.runCheck,
	}
}

func (a *App) runCheck(cmd *cobra.Command, args []string) error {
	key, source, err := a.resolveAPIKey(a.provider)
	if err != nil {
		return a.handleError(exitWithCode(ExitValidation, fmt.Errorf("failed to read API key: %w", err)))
	}
	if key == "" {
		return a.handleError(appforge.ErrMissingAPIKey)
	}

	provider, err := a.createProvider(a.provider, key, a.cfg)
	if err != nil {
		return a.handleError(exitWithCode(ExitValidation, err))
	}
	client := core.NewClient(provider, core.WithTelemetry(logTelemetry{log: a.log}))

	ctx, cancel := context.WithTimeout(cmd.Context(), checkTimeout)
	defer cancel()

	start := time.Now()
	resp, err := client.Chat(core.ModelID(a.model)).
		Messages(core.Message{Role: core.RoleUser, Content: "Reply with OK."}).
		MaxTokens(5).
		GetResponse(ctx)
	if err != nil {
		return a.handleError(err)
	}
	latency := time.Since(start)

	model := string(resp.Model)
	if model == "" {
		model = a.model
	}

	if a.jsonOutput {
		return writeJSON(a.stdout, map[string]any{
			"provider":   a.provider,
			"model":      model,
			"key_source": source,
			"latency_ms": latency.Milliseconds(),
		})
	}
	fmt.Fprintf(a.stdout, "OK: %s/%s (key from %s, %s)\n", a.provider, model, source, latency.Round(time.Millisecond))
	return nil
}
