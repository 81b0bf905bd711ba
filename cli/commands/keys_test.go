package commands

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKeysSet(t *testing.T) {
	ks := newMemKeystore()
	app := newTestApp(t, testAppConfig{ks: ks, stdin: "  sk-new  \n"})

	require.NoError(t, app.run("keys", "set", "openai"))
	assert.Equal(t, "API key for openai stored successfully.\n", app.stdout.String())
	assert.Contains(t, app.stderr.String(), "Enter API key for openai: ")

	got, err := ks.Get("openai")
	require.NoError(t, err)
	assert.Equal(t, "sk-new", got)
}

func TestKeysSetEmpty(t *testing.T) {
	ks := newMemKeystore()
	app := newTestApp(t, testAppConfig{ks: ks, stdin: "\n"})

	err := app.run("keys", "set", "openai")
	assert.Equal(t, ExitValidation, exitCode(err))
	assert.Contains(t, app.stderr.String(), "API key cannot be empty")

	names, _ := ks.List()
	assert.Empty(t, names)
}

func TestKeysList(t *testing.T) {
	app := newTestApp(t, testAppConfig{})
	require.NoError(t, app.run("keys", "list"))
	assert.Equal(t, "No API keys stored.\n", app.stdout.String())

	ks := newMemKeystore("openai", "sk-1", "azure", "sk-2")
	app = newTestApp(t, testAppConfig{ks: ks})
	require.NoError(t, app.run("keys", "list"))
	assert.Equal(t, "Stored keys:\n  - azure\n  - openai\n", app.stdout.String())
	assert.NotContains(t, app.stdout.String(), "sk-")

	app = newTestApp(t, testAppConfig{ks: ks})
	require.NoError(t, app.run("keys", "list", "--json"))
	var got map[string][]string
	require.NoError(t, json.Unmarshal(app.stdout.Bytes(), &got))
	assert.Equal(t, []string{"azure", "openai"}, got["keys"])
}

func TestKeysDelete(t *testing.T) {
	ks := newMemKeystore("openai", "sk-1")
	app := newTestApp(t, testAppConfig{ks: ks})

	require.NoError(t, app.run("keys", "delete", "openai"))
	assert.Equal(t, "API key for openai deleted.\n", app.stdout.String())

	app = newTestApp(t, testAppConfig{ks: ks})
	err := app.run("keys", "delete", "openai")
	assert.Equal(t, ExitValidation, exitCode(err))
	assert.Contains(t, app.stderr.String(), "no key stored for openai")
}
