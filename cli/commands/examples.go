package commands

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/petal-labs/appforge/appforge"
)

func (a *App) newExamplesCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "examples",
		Short: "List the bundled example mock-ups",
		Long: `List the bundled example mock-ups. Pass an ID to 'appforge build --example'
to generate an app from it.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			examples := appforge.Examples()
			if a.jsonOutput {
				type exampleJSON struct {
					ID    string `json:"id"`
					Title string `json:"title"`
				}
				out := make([]exampleJSON, 0, len(examples))
				for _, ex := range examples {
					out = append(out, exampleJSON{ID: ex.ID, Title: ex.Title})
				}
				return writeJSON(a.stdout, out)
			}

			tw := tabwriter.NewWriter(a.stdout, 0, 0, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tTITLE")
			for _, ex := range examples {
				fmt.Fprintf(tw, "%s\t%s\n", ex.ID, ex.Title)
			}
			return tw.Flush()
		},
	}
}
