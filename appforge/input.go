package appforge

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrMissingAPIKey is returned when no API key is configured. No request is sent.
	ErrMissingAPIKey = errors.New("appforge: API key is not configured")
	// ErrNoImage is returned when a Show input carries no image.
	ErrNoImage = errors.New("appforge: no mock-up image provided")
	// ErrEmptyText is returned when a Tell input carries no description.
	ErrEmptyText = errors.New("appforge: no app description provided")
	// ErrUnknownMode is returned for an Input with an unrecognized Mode.
	ErrUnknownMode = errors.New("appforge: unknown input mode")
	// ErrUnsupportedImage is returned for images that are not PNG or JPEG.
	ErrUnsupportedImage = errors.New("appforge: unsupported image format")
	// ErrUnknownExample is returned by LoadExample for an unknown ID.
	ErrUnknownExample = errors.New("appforge: unknown example")
	// ErrVisionUnsupported is returned for a Show input when the provider or
	// the configured model cannot read images.
	ErrVisionUnsupported = errors.New("appforge: model does not accept images")
	// ErrNoCodeBlock is returned when a response has no opening code fence.
	ErrNoCodeBlock = errors.New("appforge: no code block in response")
)

// Mode selects how the app is described.
type Mode string

const (
	// ModeShow describes the app with a mock-up image.
	ModeShow Mode = "show"
	// ModeTell describes the app in free-form text.
	ModeTell Mode = "tell"
)

// ParseMode parses a mode name, case-insensitively.
func ParseMode(s string) (Mode, error) {
	switch m := Mode(strings.ToLower(strings.TrimSpace(s))); m {
	case ModeShow, ModeTell:
		return m, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownMode, s)
	}
}

// Input is what the user asked for. Only the field matching Mode is used.
type Input struct {
	Mode  Mode
	Image *Image
	Text  string
}

// Validate checks that the input carries what its mode needs.
func (in Input) Validate() error {
	switch in.Mode {
	case ModeShow:
		if in.Image == nil || len(in.Image.Data) == 0 {
			return ErrNoImage
		}
	case ModeTell:
		if strings.TrimSpace(in.Text) == "" {
			return ErrEmptyText
		}
	default:
		return fmt.Errorf("%w: %q", ErrUnknownMode, in.Mode)
	}
	return nil
}
