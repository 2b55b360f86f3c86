package platform

import "strings"

// Renderer substrings. Matching is done on the lowercased renderer string.
var (
	appleSiliconRenderers = []string{"apple m", "apple gpu"}
	otherRenderers        = []string{"intel", "amd", "radeon"}
)

// ClassifyRenderer maps a GPU renderer string to a GPUClass.
func ClassifyRenderer(renderer string) GPUClass {
	r := strings.ToLower(renderer)
	if containsAny(r, appleSiliconRenderers) {
		return GPUAppleSilicon
	}
	if containsAny(r, otherRenderers) {
		return GPUOther
	}
	return GPUUnknown
}

// DetectGPU asks the probe for a renderer and classifies it. A nil probe, a
// probe error or a panic inside the probe all yield GPUUnknown.
func DetectGPU(probe RendererProbe) (class GPUClass) {
	if probe == nil {
		return GPUUnknown
	}
	defer func() {
		if recover() != nil {
			class = GPUUnknown
		}
	}()

	renderer, err := probe.Renderer()
	if err != nil {
		return GPUUnknown
	}
	return ClassifyRenderer(renderer)
}

// Resolve infers the platform from the given signals.
//
// macOS is checked before Windows because "darwin" contains "win". On macOS
// only an explicit non-Apple GPU selects x64; an unknown GPU resolves to
// arm64, since Intel builds also run under Rosetta on Apple silicon.
func Resolve(s Signals) Platform {
	ua := strings.ToLower(s.UserAgent)
	plat := strings.ToLower(s.Platform)
	all := ua + " " + plat

	switch {
	case strings.Contains(all, "mac") || strings.Contains(all, "darwin"):
		return resolveMacOS(DetectGPU(s.Probe))
	case strings.Contains(all, "win"):
		return resolveWindows(ua, plat)
	case strings.Contains(all, "linux"):
		return Platform{OS: OSLinux, Arch: ArchX64, Label: "x64", Display: DisplayLinux}
	}
	return Unknown
}

func resolveMacOS(gpu GPUClass) Platform {
	p := Platform{OS: OSMacOS, Display: DisplayMacOS}
	switch gpu {
	case GPUOther:
		p.Arch, p.Label = ArchX64, "Intel"
	case GPUAppleSilicon, GPUUnknown:
		p.Arch, p.Label = ArchARM64, "Apple Silicon"
	}
	return p
}

func resolveWindows(ua, plat string) Platform {
	p := Platform{OS: OSWindows, Display: DisplayWindows}
	if strings.Contains(plat, "64") || strings.Contains(ua, "wow64") || strings.Contains(ua, "x64") {
		p.Arch, p.Label = ArchX64, "64-bit"
	} else {
		p.Arch, p.Label = ArchX86, "32-bit"
	}
	return p
}

func containsAny(s string, subs []string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
