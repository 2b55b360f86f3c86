// Package platform infers the user's operating system and CPU architecture
// from loosely structured client signals.
//
// Signals come from a browser (user-agent, navigator platform, WebGL renderer)
// or from the local host. Resolution never touches the network and never
// fails: anything it cannot decide degrades to the unknown platform.
package platform

import (
	"errors"
	"fmt"
)

// OS identifies an operating system family.
type OS string

const (
	OSMacOS   OS = "macos"
	OSWindows OS = "windows"
	OSLinux   OS = "linux"
	OSUnknown OS = "unknown"
)

// Arch identifies a CPU architecture.
type Arch string

const (
	ArchARM64   Arch = "arm64"
	ArchX64     Arch = "x64"
	ArchX86     Arch = "x86"
	ArchUnknown Arch = "unknown"
)

// Display names used when the platform is shown to a user.
const (
	DisplayMacOS   = "macOS"
	DisplayWindows = "Windows"
	DisplayLinux   = "Linux"
	DisplayUnknown = "your platform"
)

// Platform is the resolved OS/architecture pair plus human labels.
// It is derived once per session and never mutated.
type Platform struct {
	OS      OS     `json:"os" yaml:"os"`
	Arch    Arch   `json:"arch" yaml:"arch"`
	Label   string `json:"label" yaml:"label"`
	Display string `json:"display" yaml:"display"`
}

// Unknown is the platform returned when no signal matches.
var Unknown = Platform{
	OS:      OSUnknown,
	Arch:    ArchUnknown,
	Label:   "",
	Display: DisplayUnknown,
}

// IsKnown reports whether the OS was recognised.
func (p Platform) IsKnown() bool {
	return p.OS != OSUnknown && p.OS != ""
}

// String returns e.g. "macOS (Apple Silicon)" or "your platform".
func (p Platform) String() string {
	if p.Label == "" {
		return p.Display
	}
	return fmt.Sprintf("%s (%s)", p.Display, p.Label)
}

// GPUClass is the outcome of the renderer heuristic. Unknown is kept distinct
// from the two confirmed outcomes so callers apply their own default.
type GPUClass int

const (
	GPUUnknown GPUClass = iota
	GPUAppleSilicon
	GPUOther
)

func (g GPUClass) String() string {
	switch g {
	case GPUAppleSilicon:
		return "apple-silicon"
	case GPUOther:
		return "other"
	case GPUUnknown:
		return "unknown"
	}
	return "unknown"
}

// ErrNoGraphicsContext is returned by probes that have no renderer to report.
var ErrNoGraphicsContext = errors.New("graphics context unavailable")

// RendererProbe reports the GPU renderer string. Failures are expected and
// are treated as an unknown GPU.
type RendererProbe interface {
	Renderer() (string, error)
}

// StaticProbe is a RendererProbe over a value that is already known, such as
// a renderer string forwarded by a browser.
type StaticProbe struct {
	Value string
}

// Renderer returns the value, or ErrNoGraphicsContext when it is empty.
func (s StaticProbe) Renderer() (string, error) {
	if s.Value == "" {
		return "", ErrNoGraphicsContext
	}
	return s.Value, nil
}

// ProbeFunc adapts a function to RendererProbe.
type ProbeFunc func() (string, error)

// Renderer calls f.
func (f ProbeFunc) Renderer() (string, error) {
	return f()
}

// Signals are the raw environment hints used for resolution.
type Signals struct {
	UserAgent string
	Platform  string
	// Probe may be nil when no graphics context exists.
	Probe RendererProbe
}
