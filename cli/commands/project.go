package commands

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
	"text/template"
	"time"
)

// pipPackages maps Python import roots to the packages that provide them.
// Imports not listed here are assumed to be standard library.
var pipPackages = map[string]string{
	"streamlit":  "streamlit",
	"pandas":     "pandas",
	"numpy":      "numpy",
	"plotly":     "plotly",
	"altair":     "altair",
	"matplotlib": "matplotlib",
	"seaborn":    "seaborn",
	"PIL":        "pillow",
	"sklearn":    "scikit-learn",
	"requests":   "requests",
	"pydeck":     "pydeck",
	"bokeh":      "bokeh",
	"scipy":      "scipy",
}

var importPattern = regexp.MustCompile(`(?m)^\s*(?:import|from)\s+([A-Za-z_][A-Za-z0-9_]*)`)

// requirementsFor lists the pip packages imported by code, always including streamlit.
func requirementsFor(code string) []string {
	set := map[string]bool{"streamlit": true}
	for _, m := range importPattern.FindAllStringSubmatch(code, -1) {
		if pkg, ok := pipPackages[m[1]]; ok {
			set[pkg] = true
		}
	}

	reqs := make([]string, 0, len(set))
	for pkg := range set {
		reqs = append(reqs, pkg)
	}
	sort.Strings(reqs)
	return reqs
}

func validateProjectDir(dir string) error {
	if strings.TrimSpace(dir) == "" {
		return fmt.Errorf("project directory cannot be empty")
	}

	entries, err := os.ReadDir(dir)
	switch {
	case os.IsNotExist(err):
		return nil
	case err != nil:
		return err
	case len(entries) > 0:
		return fmt.Errorf("directory %q already exists and is not empty", dir)
	}
	return nil
}

type projectData struct {
	Name         string
	Source       string
	Model        string
	Generated    string
	Requirements []string
}

// writeProject lays out a runnable Streamlit project holding code.
func writeProject(dir, code, source, model string) ([]string, error) {
	if err := validateProjectDir(dir); err != nil {
		return nil, err
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create directory %s: %w", dir, err)
	}

	data := projectData{
		Name:         filepath.Base(filepath.Clean(dir)),
		Source:       source,
		Model:        model,
		Generated:    time.Now().UTC().Format(time.RFC3339),
		Requirements: requirementsFor(code),
	}

	appPath := filepath.Join(dir, "app.py")
	if err := os.WriteFile(appPath, []byte(code), 0644); err != nil {
		return nil, err
	}
	written := []string{appPath}

	for name, tmpl := range map[string]string{
		"requirements.txt": requirementsTemplate,
		"README.md":        readmeTemplate,
	} {
		path := filepath.Join(dir, name)
		if err := generateFile(path, tmpl, data); err != nil {
			return written, fmt.Errorf("failed to create %s: %w", path, err)
		}
		written = append(written, path)
	}
	sort.Strings(written[1:])
	return written, nil
}

func generateFile(path string, tmplContent string, data projectData) error {
	tmpl, err := template.New(filepath.Base(path)).Parse(tmplContent)
	if err != nil {
		return err
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	return tmpl.Execute(f, data)
}

var requirementsTemplate = `{{range .Requirements}}{{.}}
{{end}}`

var readmeTemplate = `# {{.Name}}

Streamlit app generated by appforge from {{.Source}} with {{.Model}} on {{.Generated}}.

## Run

` + "```" + `bash
pip install -r requirements.txt
streamlit run app.py
` + "```" + `
`
