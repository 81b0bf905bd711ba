package commands

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/petal-labs/appforge/appforge"
	"github.com/petal-labs/appforge/core"
)

type buildFlags struct {
	text      string
	image     string
	example   string
	lang      string
	maxTokens int
	maxDim    int
	out       string
	project   string
	raw       bool
	quiet     bool
}

func (a *App) newBuildCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "build",
		Short: "Generate a Streamlit app from a mock-up or a description",
		Long: `Generate the source code of a Streamlit app.

The response streams to stderr while it is generated; the extracted code is
printed to stdout when the stream ends.

Examples:
  appforge build --text "A unit converter with a slider" > app.py
  appforge build --image mockup.png --out app.py
  appforge build --example example-1 --project ./dashboard
  appforge build --text "A todo list" --raw --json`,
		Args: cobra.NoArgs,
		RunE: a.runBuild,
	}

	f := cmd.Flags()
	f.StringVar(&a.build.text, "text", "", "describe the app in words (tell mode)")
	f.StringVar(&a.build.image, "image", "", "path to a PNG or JPEG mock-up (show mode)")
	f.StringVar(&a.build.example, "example", "", "bundled mock-up ID, see 'appforge examples' (show mode)")
	f.StringVar(&a.build.lang, "lang", "", "fence language of the code block to extract (default from config)")
	f.IntVar(&a.build.maxTokens, "max-tokens", 0, "response token cap (0 = config default)")
	f.IntVar(&a.build.maxDim, "max-dim", -1, "longest image side in pixels before upload, 0 disables (-1 = config default)")
	f.StringVar(&a.build.out, "out", "", "write the extracted code to this file")
	f.StringVar(&a.build.project, "project", "", "write app.py, requirements.txt and README.md into this new directory")
	f.BoolVar(&a.build.raw, "raw", false, "print the full response instead of the extracted code")
	f.BoolVar(&a.build.quiet, "quiet", false, "do not stream the response to stderr")
	cmd.MarkFlagsMutuallyExclusive("text", "image", "example")

	return cmd
}

func (a *App) runBuild(cmd *cobra.Command, args []string) error {
	in, source, err := a.buildInput(cmd)
	if err != nil {
		return a.handleError(err)
	}

	b, err := a.newBuilder(a.build.maxTokens, a.build.lang, a.build.maxDim)
	if err != nil {
		return a.handleError(err)
	}

	// Nothing is sent until every local check has passed.
	if err := b.Check(in); err != nil {
		return a.handleError(err)
	}
	if a.build.project != "" {
		if err := validateProjectDir(a.build.project); err != nil {
			return a.handleError(exitWithCode(ExitValidation, err))
		}
	}

	live := !a.jsonOutput && !a.build.quiet
	streamed := false
	res, err := b.Build(cmd.Context(), in, func(f appforge.Fragment) {
		if live {
			fmt.Fprint(a.stderr, f.Delta)
			streamed = true
		}
	})
	if streamed {
		fmt.Fprintln(a.stderr)
	}

	extractErr := errors.Is(err, appforge.ErrNoCodeBlock) && res != nil
	if err != nil && !extractErr {
		return a.handleError(err)
	}
	if res.Truncated {
		a.log.Warn("response stopped at the token limit, the code may be incomplete")
	}

	var files []string
	if !extractErr {
		if files, err = a.writeBuildFiles(res, source, b.Config().Model); err != nil {
			return a.handleError(exitWithCode(ExitValidation, err))
		}
	}

	if a.jsonOutput {
		if err := a.writeBuildJSON(res, files); err != nil {
			return err
		}
	} else if a.build.raw || extractErr {
		fmt.Fprintln(a.stdout, res.Response)
	} else {
		fmt.Fprint(a.stdout, res.Code)
	}

	if extractErr && !a.build.raw {
		if a.jsonOutput {
			return a.handleError(fmt.Errorf("%w (full response in the JSON output)", appforge.ErrNoCodeBlock))
		}
		return a.handleError(fmt.Errorf("%w (full response printed above)", appforge.ErrNoCodeBlock))
	}
	return nil
}

// buildInput turns the mode flags into an Input and a short description of
// its origin.
func (a *App) buildInput(cmd *cobra.Command) (appforge.Input, string, error) {
	flags := cmd.Flags()
	switch {
	case flags.Changed("image"):
		img, err := appforge.ReadImageFile(a.build.image)
		if err != nil {
			return appforge.Input{}, "", exitWithCode(ExitValidation, err)
		}
		return appforge.Input{Mode: appforge.ModeShow, Image: img}, "mock-up " + filepath.Base(a.build.image), nil
	case flags.Changed("example"):
		img, err := appforge.LoadExample(a.build.example)
		if err != nil {
			return appforge.Input{}, "", err
		}
		return appforge.Input{Mode: appforge.ModeShow, Image: img}, "example " + a.build.example, nil
	case flags.Changed("text"):
		return appforge.Input{Mode: appforge.ModeTell, Text: a.build.text}, "a text description", nil
	default:
		return appforge.Input{}, "", exitWithCode(ExitValidation, errors.New("one of --text, --image or --example is required"))
	}
}

// newBuilder resolves the API key and wires provider, telemetry and build
// settings. Flag values override the config; zero values keep it.
func (a *App) newBuilder(maxTokens int, lang string, maxDim int) (*appforge.Builder, error) {
	key, source, err := a.resolveAPIKey(a.provider)
	if err != nil {
		return nil, exitWithCode(ExitValidation, fmt.Errorf("failed to read API key: %w", err))
	}
	if key == "" {
		a.log.Warnf("no API key for %s: run 'appforge keys set %s' or set %s", a.provider, a.provider, envVarForProvider(a.provider))
	} else {
		a.log.WithField("source", source).Debug("api key resolved")
	}

	provider, err := a.createProvider(a.provider, key, a.cfg)
	if err != nil {
		return nil, exitWithCode(ExitValidation, err)
	}

	client := core.NewClient(provider, core.WithTelemetry(logTelemetry{log: a.log}))
	opts := []appforge.Option{
		appforge.WithAPIKey(core.NewSecret(key)),
		appforge.WithModel(core.ModelID(a.model)),
		appforge.WithMaxTokens(a.cfg.Build.MaxTokens),
		appforge.WithCodeLang(a.cfg.Build.CodeLang),
		appforge.WithMaxImageDim(a.cfg.MaxImageDim()),
		appforge.WithMaxTokens(maxTokens),
		appforge.WithCodeLang(lang),
	}
	if maxDim >= 0 {
		opts = append(opts, appforge.WithMaxImageDim(maxDim))
	}

	return appforge.NewBuilder(client, opts...), nil
}

func (a *App) writeBuildFiles(res *appforge.Result, source string, model core.ModelID) ([]string, error) {
	var files []string
	if a.build.out != "" {
		if err := os.WriteFile(a.build.out, []byte(res.Code), 0644); err != nil {
			return nil, err
		}
		a.log.WithField("file", a.build.out).Info("code written")
		files = append(files, a.build.out)
	}
	if a.build.project != "" {
		written, err := writeProject(a.build.project, res.Code, source, string(model))
		if err != nil {
			return nil, err
		}
		a.log.WithField("dir", a.build.project).Infof("project created, run: cd %s && streamlit run app.py", a.build.project)
		files = append(files, written...)
	}
	return files, nil
}

type buildOutput struct {
	ID         string    `json:"id"`
	Model      string    `json:"model"`
	Response   string    `json:"response"`
	Code       string    `json:"code"`
	Usage      usageJSON `json:"usage"`
	Truncated  bool      `json:"truncated"`
	DurationMS int64     `json:"duration_ms"`
	Files      []string  `json:"files,omitempty"`
}

type usageJSON struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

func (a *App) writeBuildJSON(res *appforge.Result, files []string) error {
	out := buildOutput{
		ID:       res.ID,
		Model:    string(res.Model),
		Response: res.Response,
		Code:     res.Code,
		Usage: usageJSON{
			PromptTokens:     res.Usage.PromptTokens,
			CompletionTokens: res.Usage.CompletionTokens,
			TotalTokens:      res.Usage.TotalTokens,
		},
		Truncated:  res.Truncated,
		DurationMS: res.Duration.Milliseconds(),
		Files:      files,
	}

	return writeJSON(a.stdout, out)
}
