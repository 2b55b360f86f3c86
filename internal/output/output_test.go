package output

import (
	"bytes"
	"testing"

	"github.com/qbox-app/qboxup/internal/platform"
	"github.com/qbox-app/qboxup/internal/update"
)

func TestParseFormat(t *testing.T) {
	tests := []struct {
		input   string
		want    Format
		wantErr bool
	}{
		{input: "", want: FormatText},
		{input: "text", want: FormatText},
		{input: "json", want: FormatJSON},
		{input: "yaml", want: FormatYAML},
		{input: "yml", want: FormatYAML},
		{input: "JSON", want: FormatJSON},
		{input: "xml", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseFormat(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseFormat() error = %v, wantErr %v", err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ParseFormat() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestFormats(t *testing.T) {
	got := Formats()
	want := []string{"json", "text", "yaml"}
	if len(got) != len(want) {
		t.Fatalf("Formats() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Formats() = %v, want %v", got, want)
		}
	}
}

func TestWriterWrite(t *testing.T) {
	p := platform.Platform{OS: platform.OSMacOS, Arch: platform.ArchARM64, Label: "Apple Silicon", Display: "macOS"}
	snap := update.Snapshot{State: update.StateAvailable, UpdateInfo: &update.UpdateInfo{Version: "2.0.0"}, IsVisible: true}

	tests := []struct {
		name   string
		format Format
		value  any
		want   string
	}{
		{name: "text stringer", format: FormatText, value: p, want: "macOS (Apple Silicon)\n"},
		{name: "text snapshot", format: FormatText, value: snap, want: "Update 2.0.0 available\n"},
		{name: "text plain value", format: FormatText, value: struct{ N int }{N: 3}, want: "{N:3}\n"},
		{
			name:   "json",
			format: FormatJSON,
			value:  snap,
			want:   "{\n  \"state\": \"available\",\n  \"updateInfo\": {\n    \"version\": \"2.0.0\"\n  },\n  \"isVisible\": true\n}\n",
		},
		{
			name:   "yaml",
			format: FormatYAML,
			value:  p,
			want:   "os: macos\narch: arm64\nlabel: Apple Silicon\ndisplay: macOS\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			if err := NewWriter(&buf, tt.format).Write(tt.value); err != nil {
				t.Fatalf("Write() error = %v", err)
			}
			if buf.String() != tt.want {
				t.Errorf("Write() = %q, want %q", buf.String(), tt.want)
			}
		})
	}
}

func TestWriterTextf(t *testing.T) {
	var text, js bytes.Buffer
	NewWriter(&text, FormatText).Textf("Downloading %s", "QBox.dmg")
	NewWriter(&js, FormatJSON).Textf("Downloading %s", "QBox.dmg")

	if text.String() != "Downloading QBox.dmg\n" {
		t.Errorf("text Textf() = %q", text.String())
	}
	if js.Len() != 0 {
		t.Errorf("json Textf() wrote %q, want nothing", js.String())
	}
}
