// Package output renders command results as text, JSON or YAML.
package output

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// Format selects how results are rendered.
type Format string

const (
	FormatText Format = "text"
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

var formatNames = map[string]Format{
	"":     FormatText,
	"text": FormatText,
	"json": FormatJSON,
	"yaml": FormatYAML,
	"yml":  FormatYAML,
}

// ParseFormat maps the --output flag value to a Format.
func ParseFormat(s string) (Format, error) {
	if f, ok := formatNames[strings.ToLower(s)]; ok {
		return f, nil
	}
	return "", fmt.Errorf("unknown format: %s", s)
}

// Writer renders values to an underlying stream.
type Writer struct {
	w      io.Writer
	format Format
}

// NewWriter returns a Writer for format.
func NewWriter(w io.Writer, format Format) *Writer {
	return &Writer{w: w, format: format}
}

// Format returns the configured format.
func (w *Writer) Format() Format {
	return w.format
}

// IsText reports whether human-readable output is selected.
func (w *Writer) IsText() bool {
	return w.format != FormatJSON && w.format != FormatYAML
}

// Write renders v. Text mode uses v's String method when it has one.
func (w *Writer) Write(v any) error {
	switch w.format {
	case FormatJSON:
		return w.writeJSON(v)
	case FormatYAML:
		return w.writeYAML(v)
	}
	return w.writeText(v)
}

// Textf prints a line in text mode only.
func (w *Writer) Textf(format string, args ...any) {
	if w.IsText() {
		_, _ = fmt.Fprintf(w.w, format+"\n", args...)
	}
}

func (w *Writer) writeJSON(v any) error {
	enc := json.NewEncoder(w.w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func (w *Writer) writeYAML(v any) error {
	enc := yaml.NewEncoder(w.w)
	defer enc.Close()
	enc.SetIndent(2)
	return enc.Encode(v)
}

func (w *Writer) writeText(v any) error {
	var text string
	if s, ok := v.(fmt.Stringer); ok {
		text = s.String()
	} else {
		text = fmt.Sprintf("%+v", v)
	}
	_, err := fmt.Fprintln(w.w, text)
	return err
}

// Formats lists the accepted --output values.
func Formats() []string {
	names := make([]string, 0, len(formatNames))
	for name, f := range formatNames {
		if name == string(f) {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names
}
