// Package templates holds the starter configs written by qboxup init.
package templates

import (
	"embed"
	"fmt"
	"slices"
	"strings"

	"github.com/qbox-app/qboxup/internal/config"
)

//go:embed *.yaml
var files embed.FS

// DefaultTemplate is used when init is run without --template.
const DefaultTemplate = "minimal"

// Template is one starter config.
type Template struct {
	Name        string
	Description string
	Content     []byte
}

var descriptions = map[string]string{
	"minimal": "Repository and log level only",
	"full":    "Every option with its default",
	"server":  "Download redirect service, updates off",
}

// List returns the embedded template names in alphabetical order.
func List() []string {
	matches, err := files.ReadDir(".")
	if err != nil {
		return nil
	}

	var names []string
	for _, m := range matches {
		if name, ok := strings.CutSuffix(m.Name(), ".yaml"); ok && !m.IsDir() {
			names = append(names, name)
		}
	}
	slices.Sort(names)
	return names
}

// Get returns the raw template called name.
func Get(name string) (*Template, error) {
	if !slices.Contains(List(), name) {
		return nil, fmt.Errorf("template '%s' not found (available: %s)", name, strings.Join(List(), ", "))
	}

	content, err := files.ReadFile(name + ".yaml")
	if err != nil {
		return nil, fmt.Errorf("read template '%s': %w", name, err)
	}
	return &Template{Name: name, Description: GetDescription(name), Content: content}, nil
}

// GetDescription returns the one-line summary shown by init.
func GetDescription(name string) string {
	if d, ok := descriptions[name]; ok {
		return d
	}
	return "Custom template"
}

// GetExpanded is Get with environment references substituted.
func GetExpanded(name string) (*Template, error) {
	t, err := Get(name)
	if err != nil {
		return nil, err
	}
	t.Content = config.ExpandEnv(t.Content)
	return t, nil
}
