package appforge

import (
	"embed"
	"fmt"
	"path"
)

//go:embed assets/*.png
var assets embed.FS

// Example is a bundled mock-up image.
type Example struct {
	ID    string
	Title string
	Path  string
}

var examples = []Example{
	{ID: "example-1", Title: "Dashboard with sidebar filters and a line chart", Path: "assets/example-1.png"},
	{ID: "example-2", Title: "Input form with a select box and a submit button", Path: "assets/example-2.png"},
}

// Examples lists the bundled mock-ups.
func Examples() []Example {
	out := make([]Example, len(examples))
	copy(out, examples)
	return out
}

// LoadExample returns the image of the bundled example with the given ID.
func LoadExample(id string) (*Image, error) {
	for _, ex := range examples {
		if ex.ID != id {
			continue
		}
		data, err := assets.ReadFile(ex.Path)
		if err != nil {
			return nil, fmt.Errorf("read example %s: %w", id, err)
		}
		return LoadImage(path.Base(ex.Path), data)
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownExample, id)
}
