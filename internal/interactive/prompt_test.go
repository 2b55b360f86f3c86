package interactive

import (
	"bytes"
	"strings"
	"testing"
)

func TestPrompterAsk(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  Response
	}{
		{name: "yes", input: "y\n", want: ResponseYes},
		{name: "yes word", input: "YES\n", want: ResponseYes},
		{name: "no", input: "n\n", want: ResponseNo},
		{name: "empty defaults to no", input: "\n", want: ResponseNo},
		{name: "invalid defaults to no", input: "maybe\n", want: ResponseNo},
		{name: "quit", input: "q\n", want: ResponseQuit},
		{name: "end of input", input: "", want: ResponseQuit},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			output := &bytes.Buffer{}
			p := NewPrompterWithIO(strings.NewReader(tt.input), output)

			if got := p.Ask("Download update %s?", "2.0.0"); got != tt.want {
				t.Errorf("Ask() = %v, want %v", got, tt.want)
			}
			if !strings.Contains(output.String(), "Download update 2.0.0? [y/n/a/q]") {
				t.Errorf("prompt not shown, output = %q", output.String())
			}
		})
	}
}

func TestPrompterAllResponse(t *testing.T) {
	output := &bytes.Buffer{}
	p := NewPrompterWithIO(strings.NewReader("a\n"), output)

	if !p.Confirm("Download?") {
		t.Error("expected yes after 'a'")
	}

	// Subsequent prompts should auto-approve without reading input
	output.Reset()
	if !p.Confirm("Install?") {
		t.Error("expected auto-approve")
	}
	if output.Len() != 0 {
		t.Errorf("auto-approved prompt should print nothing, got %q", output.String())
	}
}

func TestPrompterQuitSticks(t *testing.T) {
	p := NewPrompterWithIO(strings.NewReader("q\ny\n"), &bytes.Buffer{})

	if p.Confirm("Download?") {
		t.Error("Confirm() = true after quit")
	}
	if !p.Quit() {
		t.Error("Quit() = false, want true")
	}
	if got := p.Ask("Install?"); got != ResponseQuit {
		t.Errorf("Ask() after quit = %v, want quit", got)
	}
}

func TestPrompterSequence(t *testing.T) {
	p := NewPrompterWithIO(strings.NewReader("n\ny\n"), &bytes.Buffer{})

	if p.Confirm("Download?") {
		t.Error("first Confirm() = true, want false")
	}
	if !p.Confirm("Open releases page?") {
		t.Error("second Confirm() = false, want true")
	}
	if p.Quit() {
		t.Error("Quit() = true, want false")
	}
}

func TestResponseString(t *testing.T) {
	if ResponseAll.String() != "all" || Response(9).String() != "Response(9)" {
		t.Error("unexpected Response.String() output")
	}
}
