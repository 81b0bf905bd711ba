package commands

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const todoResponse = "Here is your app:\n```python\nimport streamlit as st\nimport pandas as pd\nst.title(\"Todo\")\n```\nEnjoy!\n"

const todoCode = "import streamlit as st\nimport pandas as pd\nst.title(\"Todo\")\n"

func TestBuildTell(t *testing.T) {
	srv := newOpenAIServer(t, todoResponse)
	app := newTestApp(t, testAppConfig{
		baseURL: srv.URL,
		env:     map[string]string{"OPENAI_API_KEY": "sk-env"},
	})

	require.NoError(t, app.run("build", "--text", "A todo app"))
	assert.Equal(t, todoCode, app.stdout.String())
	assert.Contains(t, app.stderr.String(), "Here is your app:")

	calls := srv.calls()
	require.Len(t, calls, 1)
	assert.Equal(t, "gpt-4o", calls[0]["model"])
	assert.EqualValues(t, 1280, calls[0]["max_tokens"])
	assert.Equal(t, true, calls[0]["stream"])
	assert.Equal(t, "Bearer sk-env", srv.auth[0])

	msgs, ok := calls[0]["messages"].([]any)
	require.True(t, ok)
	require.Len(t, msgs, 2)
	assert.Equal(t, "system", msgs[0].(map[string]any)["role"])
	assert.Equal(t, "A todo app", msgs[1].(map[string]any)["content"])
}

func TestBuildFlagsOverrideConfig(t *testing.T) {
	srv := newOpenAIServer(t, todoResponse)
	app := newTestApp(t, testAppConfig{
		baseURL: srv.URL,
		ks:      newMemKeystore("openai", "sk-ks"),
	})

	require.NoError(t, app.run("build", "--quiet", "--model", "gpt-4o-mini", "--max-tokens", "200", "--text", "A todo app"))
	assert.NotContains(t, app.stderr.String(), "Here is your app:")

	calls := srv.calls()
	require.Len(t, calls, 1)
	assert.Equal(t, "gpt-4o-mini", calls[0]["model"])
	assert.EqualValues(t, 200, calls[0]["max_tokens"])
}

func TestBuildExample(t *testing.T) {
	srv := newOpenAIServer(t, todoResponse)
	app := newTestApp(t, testAppConfig{
		baseURL: srv.URL,
		ks:      newMemKeystore("openai", "sk-ks"),
	})

	require.NoError(t, app.run("build", "--quiet", "--example", "example-1"))
	assert.Equal(t, todoCode, app.stdout.String())

	calls := srv.calls()
	require.Len(t, calls, 1)
	msgs := calls[0]["messages"].([]any)
	require.Len(t, msgs, 1)
	parts := msgs[0].(map[string]any)["content"].([]any)
	require.Len(t, parts, 2)
	img := parts[1].(map[string]any)
	assert.Equal(t, "image_url", img["type"])
	url := img["image_url"].(map[string]any)["url"].(string)
	assert.True(t, strings.HasPrefix(url, "data:image/png;base64,"))
}

func TestBuildJSONWithFiles(t *testing.T) {
	srv := newOpenAIServer(t, todoResponse)
	app := newTestApp(t, testAppConfig{
		baseURL: srv.URL,
		ks:      newMemKeystore("openai", "sk-ks"),
	})

	dir := t.TempDir()
	out := filepath.Join(dir, "app.py")
	project := filepath.Join(dir, "todo")

	require.NoError(t, app.run("build", "--json", "--text", "A todo app", "--out", out, "--project", project))

	var got buildOutput
	require.NoError(t, json.Unmarshal(app.stdout.Bytes(), &got))
	assert.Equal(t, "chatcmpl-build", got.ID)
	assert.Equal(t, todoCode, got.Code)
	assert.Equal(t, todoResponse, got.Response)
	assert.Equal(t, 60, got.Usage.TotalTokens)
	assert.False(t, got.Truncated)
	assert.Equal(t, []string{
		out,
		filepath.Join(project, "app.py"),
		filepath.Join(project, "README.md"),
		filepath.Join(project, "requirements.txt"),
	}, got.Files)

	code, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Equal(t, todoCode, string(code))

	reqs, err := os.ReadFile(filepath.Join(project, "requirements.txt"))
	require.NoError(t, err)
	assert.Equal(t, "pandas\nstreamlit\n", string(reqs))

	readme, err := os.ReadFile(filepath.Join(project, "README.md"))
	require.NoError(t, err)
	assert.Contains(t, string(readme), "# todo")
	assert.Contains(t, string(readme), "streamlit run app.py")
}

func TestBuildNoCodeBlock(t *testing.T) {
	srv := newOpenAIServer(t, "Sorry, I can only build Streamlit apps.\n")
	app := newTestApp(t, testAppConfig{
		baseURL: srv.URL,
		ks:      newMemKeystore("openai", "sk-ks"),
	})

	err := app.run("build", "--quiet", "--text", "Write a poem")
	assert.Equal(t, ExitExtraction, exitCode(err))
	assert.Contains(t, app.stdout.String(), "Sorry, I can only build Streamlit apps.")
	assert.Contains(t, app.stderr.String(), "no code block")
}

func TestBuildNoCodeBlockJSON(t *testing.T) {
	srv := newOpenAIServer(t, "Sorry, I can only build Streamlit apps.\n")
	app := newTestApp(t, testAppConfig{
		baseURL: srv.URL,
		ks:      newMemKeystore("openai", "sk-ks"),
	})

	err := app.run("build", "--json", "--text", "Write a poem")
	assert.Equal(t, ExitExtraction, exitCode(err))

	var out buildOutput
	require.NoError(t, json.Unmarshal(app.stdout.Bytes(), &out))
	assert.Equal(t, "Sorry, I can only build Streamlit apps.\n", out.Response)
	assert.Contains(t, app.stderr.String(), "full response in the JSON output")
	assert.NotContains(t, app.stderr.String(), "printed above")
}

func TestBuildNoCodeBlockRaw(t *testing.T) {
	srv := newOpenAIServer(t, "Sorry.\n")
	app := newTestApp(t, testAppConfig{
		baseURL: srv.URL,
		ks:      newMemKeystore("openai", "sk-ks"),
	})

	require.NoError(t, app.run("build", "--quiet", "--raw", "--text", "Write a poem"))
	assert.Equal(t, "Sorry.\n\n", app.stdout.String())
}

func TestBuildValidation(t *testing.T) {
	busy := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(busy, "app.py"), []byte("pass\n"), 0644))

	tests := []struct {
		name string
		args []string
		key  bool
		want string
	}{
		{"missing key", []string{"build", "--text", "A todo app"}, false, "API key is not configured"},
		{"no input", []string{"build"}, true, "one of --text, --image or --example is required"},
		{"empty text", []string{"build", "--text", "   "}, true, "no app description"},
		{"unknown example", []string{"build", "--example", "example-42"}, true, "unknown example"},
		{"missing image file", []string{"build", "--image", "does-not-exist.png"}, true, "does-not-exist.png"},
		{"project not empty", []string{"build", "--text", "A todo app", "--project", busy}, true, "already exists and is not empty"},
		{"model without vision", []string{"build", "--model", "gpt-3.5-turbo", "--example", "example-1"}, true, "does not accept images"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := newOpenAIServer(t, todoResponse)
			ks := newMemKeystore()
			if tt.key {
				ks = newMemKeystore("openai", "sk-ks")
			}
			app := newTestApp(t, testAppConfig{baseURL: srv.URL, ks: ks})

			err := app.run(tt.args...)
			assert.Equal(t, ExitValidation, exitCode(err))
			assert.Contains(t, app.stderr.String(), tt.want)
			assert.Empty(t, srv.calls())
			assert.Empty(t, app.stdout.String())
		})
	}
}

func TestBuildProviderErrors(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		want   int
	}{
		{"unauthorized", http.StatusUnauthorized, `{"error":{"message":"Incorrect API key provided","type":"invalid_request_error","code":"invalid_api_key"}}`, ExitProvider},
		{"rate limited", http.StatusTooManyRequests, `{"error":{"message":"Rate limit reached","type":"requests","code":"rate_limit_exceeded"}}`, ExitProvider},
		{"server", http.StatusInternalServerError, `{"error":{"message":"boom","type":"server_error"}}`, ExitProvider},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(tt.status)
				w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			app := newTestApp(t, testAppConfig{baseURL: srv.URL, ks: newMemKeystore("openai", "sk-ks")})
			err := app.run("build", "--quiet", "--json", "--text", "A todo app")
			assert.Equal(t, tt.want, exitCode(err))

			// Log lines precede the JSON error body.
			stderr := app.stderr.String()
			i := strings.Index(stderr, "{\n  \"error\"")
			require.GreaterOrEqual(t, i, 0, stderr)
			var body map[string]map[string]any
			require.NoError(t, json.Unmarshal([]byte(stderr[i:]), &body))
			assert.Equal(t, "provider_error", body["error"]["type"])
			assert.Equal(t, "openai", body["error"]["provider"])
		})
	}
}

func TestBuildNetworkError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	app := newTestApp(t, testAppConfig{baseURL: url, ks: newMemKeystore("openai", "sk-ks")})
	err := app.run("build", "--quiet", "--text", "A todo app")
	assert.Equal(t, ExitNetwork, exitCode(err))
}
