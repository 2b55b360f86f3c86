// Package interactive asks the user to approve download and install steps.
package interactive

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"
)

// Response is the answer to one question.
type Response int

const (
	ResponseYes Response = iota
	ResponseNo
	ResponseAll  // yes to this and every later question
	ResponseQuit // no to this and every later question
)

var responseNames = [...]string{"yes", "no", "all", "quit"}

func (r Response) String() string {
	if r >= 0 && int(r) < len(responseNames) {
		return responseNames[r]
	}
	return fmt.Sprintf("Response(%d)", int(r))
}

var answers = map[string]Response{
	"":     ResponseNo,
	"y":    ResponseYes,
	"yes":  ResponseYes,
	"n":    ResponseNo,
	"no":   ResponseNo,
	"a":    ResponseAll,
	"all":  ResponseAll,
	"q":    ResponseQuit,
	"quit": ResponseQuit,
}

// Prompter reads answers line by line. "all" and "quit" stick for the rest
// of the session.
type Prompter struct {
	lines  *bufio.Scanner
	out    io.Writer
	sticky *Response
}

// NewPrompterWithIO creates a prompter reading from in and writing
// questions to out.
func NewPrompterWithIO(in io.Reader, out io.Writer) *Prompter {
	return &Prompter{lines: bufio.NewScanner(in), out: out}
}

// IsTerminal reports whether stdin is a terminal.
func IsTerminal() bool {
	return term.IsTerminal(int(os.Stdin.Fd()))
}

// Ask prints the question and reads one answer. End of input counts as quit.
// ResponseAll is reported to the caller as ResponseYes.
func (p *Prompter) Ask(format string, args ...any) Response {
	if p.sticky != nil {
		return p.answer(*p.sticky)
	}

	_, _ = fmt.Fprintf(p.out, format+" [y/n/a/q] ", args...)
	if !p.lines.Scan() {
		return p.stick(ResponseQuit)
	}

	r, ok := answers[strings.ToLower(strings.TrimSpace(p.lines.Text()))]
	switch {
	case !ok:
		_, _ = fmt.Fprintln(p.out, "Invalid response, skipping.")
		return ResponseNo
	case r == ResponseAll, r == ResponseQuit:
		return p.stick(r)
	}
	return r
}

func (p *Prompter) stick(r Response) Response {
	p.sticky = &r
	return p.answer(r)
}

func (p *Prompter) answer(r Response) Response {
	if r == ResponseAll {
		return ResponseYes
	}
	return r
}

// Confirm reports whether the answer was yes.
func (p *Prompter) Confirm(format string, args ...any) bool {
	return p.Ask(format, args...) == ResponseYes
}

// Quit reports whether the user aborted.
func (p *Prompter) Quit() bool {
	return p.sticky != nil && *p.sticky == ResponseQuit
}
