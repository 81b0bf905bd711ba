package appforge

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/petal-labs/appforge/core"
)

const (
	// DefaultModel is the model used when none is configured.
	DefaultModel core.ModelID = "gpt-4o"

	// DefaultMaxTokens caps the length of a generated response.
	DefaultMaxTokens = 1280
)

// Config holds build settings.
type Config struct {
	APIKey      core.Secret
	Model       core.ModelID
	MaxTokens   int
	CodeLang    string
	MaxImageDim int
}

// Option configures a Builder.
type Option func(*Config)

// WithAPIKey sets the key the provider was created with. A Builder without
// a key refuses to build.
func WithAPIKey(key core.Secret) Option {
	return func(c *Config) { c.APIKey = key }
}

// WithModel sets the model. An empty ID keeps the default.
func WithModel(model core.ModelID) Option {
	return func(c *Config) {
		if model != "" {
			c.Model = model
		}
	}
}

// WithMaxTokens sets the response token cap. Non-positive values keep the default.
func WithMaxTokens(n int) Option {
	return func(c *Config) {
		if n > 0 {
			c.MaxTokens = n
		}
	}
}

// WithCodeLang sets the fence language of the extracted code block.
func WithCodeLang(lang string) Option {
	return func(c *Config) {
		if lang != "" {
			c.CodeLang = lang
		}
	}
}

// WithMaxImageDim bounds the longer side of images before upload. Zero disables scaling.
func WithMaxImageDim(n int) Option {
	return func(c *Config) {
		if n >= 0 {
			c.MaxImageDim = n
		}
	}
}

// Builder runs builds against a chat client.
// Builder is safe for concurrent use.
type Builder struct {
	client *core.Client
	cfg    Config
}

// NewBuilder creates a Builder that sends requests through client.
func NewBuilder(client *core.Client, opts ...Option) *Builder {
	cfg := Config{
		Model:       DefaultModel,
		MaxTokens:   DefaultMaxTokens,
		CodeLang:    DefaultCodeLang,
		MaxImageDim: DefaultMaxImageDim,
	}
	for _, opt := range opts {
		opt(&cfg)
	}
	return &Builder{client: client, cfg: cfg}
}

// Config returns the effective settings.
func (b *Builder) Config() Config {
	return b.cfg
}

// Ready reports whether the builder has an API key.
func (b *Builder) Ready() error {
	if b.cfg.APIKey.IsEmpty() {
		return ErrMissingAPIKey
	}
	return nil
}

// Check reports whether in can be built without sending anything. Models the
// provider does not list are assumed to accept images.
func (b *Builder) Check(in Input) error {
	if err := b.Ready(); err != nil {
		return err
	}
	if err := in.Validate(); err != nil {
		return err
	}
	if in.Mode != ModeShow {
		return nil
	}

	p := b.client.Provider()
	if !p.Supports(core.FeatureVision) {
		return fmt.Errorf("%w: provider %s", ErrVisionUnsupported, p.ID())
	}
	for _, m := range p.Models() {
		if m.ID == b.cfg.Model && !m.HasCapability(core.FeatureVision) {
			return fmt.Errorf("%w: %s", ErrVisionUnsupported, m.ID)
		}
	}
	return nil
}

// Result is a finished build.
type Result struct {
	ID       string
	Model    core.ModelID
	Response string
	// Code is the extracted code block. Empty when extraction failed.
	Code      string
	Usage     core.TokenUsage
	Truncated bool
	Duration  time.Duration
}

// Stream starts a build and returns immediately. The input is checked and
// composed before any request is sent.
func (b *Builder) Stream(ctx context.Context, in Input) (*Run, error) {
	if err := b.Check(in); err != nil {
		return nil, err
	}

	if in.Mode == ModeShow {
		img, err := in.Image.Downscale(b.cfg.MaxImageDim)
		if err != nil {
			return nil, err
		}
		in.Image = img
	}

	msgs, err := Compose(in)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithCancel(ctx)
	start := time.Now()
	stream, err := b.client.Chat(b.cfg.Model).
		Messages(msgs...).
		MaxTokens(b.cfg.MaxTokens).
		Stream(ctx)
	if err != nil {
		cancel()
		return nil, err
	}

	run := &Run{
		fragments: make(chan Fragment),
		done:      make(chan struct{}),
	}
	go run.consume(ctx, cancel, stream, b.cfg, start)
	return run, nil
}

// Build runs a build to completion, calling onFragment for every non-empty
// delta in order. onFragment may be nil.
//
// When the response has no code block the returned Result still holds the
// full response and the error wraps ErrNoCodeBlock.
func (b *Builder) Build(ctx context.Context, in Input, onFragment func(Fragment)) (*Result, error) {
	run, err := b.Stream(ctx, in)
	if err != nil {
		return nil, err
	}
	for f := range run.Fragments() {
		if onFragment != nil {
			onFragment(f)
		}
	}
	return run.Wait()
}

// Run is a build in progress.
type Run struct {
	fragments chan Fragment
	done      chan struct{}

	result *Result
	err    error
}

// Fragments returns the streamed fragments. The channel is closed when the
// stream ends, whether it succeeded or not.
func (r *Run) Fragments() <-chan Fragment {
	return r.fragments
}

// Wait blocks until the run finishes. Fragments not yet received are discarded.
func (r *Run) Wait() (*Result, error) {
	for range r.fragments {
	}
	<-r.done
	return r.result, r.err
}

func (r *Run) consume(ctx context.Context, cancel context.CancelFunc, stream *core.ChatStream, cfg Config, start time.Time) {
	defer cancel()
	defer close(r.done)
	defer close(r.fragments)

	var acc Accumulator
	resp, err := core.ConsumeStream(ctx, stream, func(chunk core.ChatChunk) error {
		if chunk.Delta == "" {
			return nil
		}
		select {
		case r.fragments <- acc.Add(chunk.Delta):
			return nil
		case <-ctx.Done():
			return ctx.Err()
		}
	})
	if err != nil {
		r.err = err
		return
	}

	res := &Result{
		ID:        resp.ID,
		Model:     resp.Model,
		Response:  acc.String(),
		Usage:     resp.Usage,
		Truncated: resp.Truncated(),
		Duration:  time.Since(start),
	}
	if res.ID == "" {
		res.ID = uuid.NewString()
	}
	if res.Model == "" {
		res.Model = cfg.Model
	}

	code, err := ExtractCode(res.Response, cfg.CodeLang)
	if err != nil {
		r.result, r.err = res, err
		return
	}
	res.Code = code
	r.result = res
}
