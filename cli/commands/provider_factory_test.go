package commands

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/petal-labs/appforge/cli/config"
	"github.com/petal-labs/appforge/core"
)

func TestProviderFactoryUsesConfig(t *testing.T) {
	var org, auth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		org = r.Header.Get("OpenAI-Organization")
		auth = r.Header.Get("Authorization")
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"id":"chatcmpl-cfg","model":"gpt-4o","choices":[{"index":0,"message":{"role":"assistant","content":"OK"},"finish_reason":"stop"}],"usage":{"prompt_tokens":3,"completion_tokens":1,"total_tokens":4}}`))
	}))
	defer srv.Close()

	cfg := config.Default()
	cfg.Providers["openai"] = config.ProviderConfig{
		BaseURL:      srv.URL,
		Organization: "org-forge",
		Timeout:      5 * time.Second,
	}

	p, err := defaultProviderFactory()("openai", "sk-cfg", cfg)
	require.NoError(t, err)
	assert.Equal(t, "openai", p.ID())

	resp, err := core.NewClient(p).Chat("gpt-4o").
		Messages(core.Message{Role: core.RoleUser, Content: "Reply with OK."}).
		GetResponse(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "chatcmpl-cfg", resp.ID)
	assert.Equal(t, "org-forge", org)
	assert.Equal(t, "Bearer sk-cfg", auth)
}

func TestProviderFactoryWithoutConfig(t *testing.T) {
	p, err := defaultProviderFactory()("openai", "sk-test", nil)
	require.NoError(t, err)
	assert.True(t, p.Supports(core.FeatureVision))

	assert.Empty(t, openAIOptions(nil))
	assert.Len(t, openAIOptions(&config.ProviderConfig{BaseURL: "http://localhost:1", Timeout: time.Second}), 2)
}

func TestProviderFactoryUnknown(t *testing.T) {
	_, err := defaultProviderFactory()("no-such-provider", "sk-test", config.Default())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported provider: no-such-provider")
	assert.Contains(t, err.Error(), "openai")
}
