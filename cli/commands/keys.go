package commands

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/petal-labs/appforge/cli/keystore"
)

func (a *App) newKeysCommand() *cobra.Command {
	keysCmd := &cobra.Command{
		Use:   "keys",
		Short: "Manage API keys",
		Long:  `Manage provider API keys. Keys are stored encrypted in ~/.appforge/keys.enc.`,
	}

	keysCmd.AddCommand(&cobra.Command{
		Use:   "set <provider>",
		Short: "Set API key for a provider",
		Long:  `Set the API key for a provider. On a terminal the key is read without echo.`,
		Args:  cobra.ExactArgs(1),
		RunE:  a.runKeysSet,
	})
	keysCmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List stored API keys",
		Long:  `List stored API keys. Only provider names are shown, never key values.`,
		Args:  cobra.NoArgs,
		RunE:  a.runKeysList,
	})
	keysCmd.AddCommand(&cobra.Command{
		Use:   "delete <provider>",
		Short: "Delete API key for a provider",
		Args:  cobra.ExactArgs(1),
		RunE:  a.runKeysDelete,
	})

	return keysCmd
}

func (a *App) runKeysSet(cmd *cobra.Command, args []string) error {
	provider := args[0]

	fmt.Fprintf(a.stderr, "Enter API key for %s: ", provider)
	apiKey, err := a.readSecret()
	if err != nil {
		return a.handleError(exitWithCode(ExitValidation, fmt.Errorf("failed to read key: %w", err)))
	}
	if apiKey == "" {
		return a.handleError(exitWithCode(ExitValidation, errors.New("API key cannot be empty")))
	}

	ks, err := a.newKeystore()
	if err != nil {
		return a.handleError(exitWithCode(ExitValidation, fmt.Errorf("failed to open keystore: %w", err)))
	}
	if err := ks.Set(provider, apiKey); err != nil {
		return a.handleError(exitWithCode(ExitValidation, fmt.Errorf("failed to store key: %w", err)))
	}

	fmt.Fprintf(a.stdout, "API key for %s stored successfully.\n", provider)
	return nil
}

// readSecret reads one line from stdin, without echo when stdin is a terminal.
func (a *App) readSecret() (string, error) {
	if f, ok := a.stdin.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		b, err := term.ReadPassword(int(f.Fd()))
		fmt.Fprintln(a.stderr)
		return strings.TrimSpace(string(b)), err
	}

	line, err := bufio.NewReader(a.stdin).ReadString('\n')
	if err != nil && line == "" {
		return "", err
	}
	return strings.TrimSpace(line), nil
}

func (a *App) runKeysList(cmd *cobra.Command, args []string) error {
	ks, err := a.newKeystore()
	if err != nil {
		return a.handleError(exitWithCode(ExitValidation, fmt.Errorf("failed to open keystore: %w", err)))
	}

	names, err := ks.List()
	if err != nil {
		return a.handleError(exitWithCode(ExitValidation, fmt.Errorf("failed to list keys: %w", err)))
	}

	if a.jsonOutput {
		if names == nil {
			names = []string{}
		}
		return writeJSON(a.stdout, map[string]any{"keys": names})
	}

	if len(names) == 0 {
		fmt.Fprintln(a.stdout, "No API keys stored.")
		return nil
	}
	fmt.Fprintln(a.stdout, "Stored keys:")
	for _, name := range names {
		fmt.Fprintf(a.stdout, "  - %s\n", name)
	}
	return nil
}

func (a *App) runKeysDelete(cmd *cobra.Command, args []string) error {
	provider := args[0]

	ks, err := a.newKeystore()
	if err != nil {
		return a.handleError(exitWithCode(ExitValidation, fmt.Errorf("failed to open keystore: %w", err)))
	}

	if err := ks.Delete(provider); err != nil {
		var nf *keystore.ErrKeyNotFound
		if errors.As(err, &nf) {
			return a.handleError(exitWithCode(ExitValidation, fmt.Errorf("no key stored for %s", provider)))
		}
		return a.handleError(exitWithCode(ExitValidation, fmt.Errorf("failed to delete key: %w", err)))
	}

	fmt.Fprintf(a.stdout, "API key for %s deleted.\n", provider)
	return nil
}
