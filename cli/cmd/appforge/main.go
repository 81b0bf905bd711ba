// appforge CLI - generate Streamlit apps from mock-ups and descriptions.
package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/petal-labs/appforge/cli/commands"
)

// ExitCoder is an interface for errors that have an exit code.
type ExitCoder interface {
	ExitCode() int
}

func main() {
	if err := commands.Execute(); err != nil {
		var ec ExitCoder
		if errors.As(err, &ec) {
			os.Exit(ec.ExitCode())
		}
		// Usage errors from cobra have not been reported yet.
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
