//go:build integration

package appforge

import (
	"context"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/petal-labs/appforge/core"
	"github.com/petal-labs/appforge/providers/openai"
)

func isCI() bool {
	for _, v := range []string{"CI", "GITHUB_ACTIONS", "GITLAB_CI", "CIRCLECI", "JENKINS_URL"} {
		if os.Getenv(v) != "" {
			return true
		}
	}
	return false
}

// liveBuilder returns a builder against the real API. In CI a missing key
// fails the test unless APPFORGE_SKIP_INTEGRATION is set.
func liveBuilder(t *testing.T) *Builder {
	t.Helper()
	key := os.Getenv("OPENAI_API_KEY")
	if key == "" {
		if isCI() && os.Getenv("APPFORGE_SKIP_INTEGRATION") == "" {
			t.Fatal("OPENAI_API_KEY not set (CI environment detected; set APPFORGE_SKIP_INTEGRATION=1 to skip)")
		}
		t.Skip("OPENAI_API_KEY not set")
	}
	return NewBuilder(core.NewClient(openai.New(key)),
		WithAPIKey(core.NewSecret(key)),
		WithModel(openai.ModelGPT4oMini),
	)
}

func TestLiveBuildTell(t *testing.T) {
	b := liveBuilder(t)
	ctx, cancel := context.WithTimeout(context.Background(), 90*time.Second)
	defer cancel()

	var n int
	res, err := b.Build(ctx, Input{Mode: ModeTell, Text: "A page with a title and a button that shows balloons."},
		func(Fragment) { n++ })
	require.NoError(t, err)
	assert.Greater(t, n, 1)
	assert.Contains(t, res.Code, "streamlit")
	assert.Positive(t, res.Usage.TotalTokens)
}

func TestLiveBuildShow(t *testing.T) {
	b := liveBuilder(t)
	ctx, cancel := context.WithTimeout(context.Background(), 120*time.Second)
	defer cancel()

	img, err := LoadExample("example-1")
	require.NoError(t, err)

	res, err := b.Build(ctx, Input{Mode: ModeShow, Image: img}, nil)
	require.NoError(t, err)
	assert.True(t, strings.Contains(res.Code, "import streamlit"), res.Response)
}
