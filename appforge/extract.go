package appforge

import (
	"fmt"
	"strings"
)

const (
	codeFence = "```"

	// DefaultCodeLang is the fence language searched for by ExtractCode.
	DefaultCodeLang = "python"
)

// ExtractCode returns the body of the first code block fenced with "```"+lang.
// Leading newlines are dropped and the body ends at the next fence, or at the
// end of text when the block is never closed. An empty lang means
// DefaultCodeLang.
func ExtractCode(text, lang string) (string, error) {
	if lang == "" {
		lang = DefaultCodeLang
	}
	open := codeFence + lang

	_, rest, ok := strings.Cut(text, open)
	if !ok {
		return "", fmt.Errorf("%w: missing %q fence", ErrNoCodeBlock, open)
	}

	code, _, _ := strings.Cut(strings.TrimLeft(rest, "\n"), codeFence)
	return code, nil
}
