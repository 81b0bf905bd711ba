package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/petal-labs/appforge/appforge"
)

func (a *App) newPromptCommand() *cobra.Command {
	var mode string
	cmd := &cobra.Command{
		Use:   "prompt",
		Short: "Print the instructions sent to the model",
		Long: `Print the instructions sent to the model. Show mode sends the instruction
text alongside the image; tell mode sends the system persona before the
description.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := appforge.ParseMode(mode)
			if err != nil {
				return a.handleError(err)
			}
			text := appforge.Instructions
			if m == appforge.ModeTell {
				text = appforge.SystemPersona
			}
			if a.jsonOutput {
				return writeJSON(a.stdout, map[string]string{"mode": string(m), "prompt": text})
			}
			fmt.Fprintln(a.stdout, text)
			return nil
		},
	}
	cmd.Flags().StringVar(&mode, "mode", string(appforge.ModeShow), "show or tell")
	return cmd
}
