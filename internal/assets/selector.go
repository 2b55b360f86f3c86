// Package assets picks the installer that matches a resolved platform out of
// a release's asset list.
package assets

import (
	"fmt"
	"strings"

	"github.com/qbox-app/qboxup/internal/platform"
	"github.com/qbox-app/qboxup/internal/release"
)

// rule matches a lowercased asset name.
type rule struct {
	name  string
	match func(name string) bool
}

type key struct {
	os   platform.OS
	arch platform.Arch
}

func suffix(ext string) rule {
	return rule{
		name:  "*" + ext,
		match: func(n string) bool { return strings.HasSuffix(n, ext) },
	}
}

func containsWithSuffix(sub, ext string) rule {
	return rule{
		name:  "*" + sub + "*" + ext,
		match: func(n string) bool { return strings.Contains(n, sub) && strings.HasSuffix(n, ext) },
	}
}

// rules lists, per platform, the filename rules in priority order.
var rules = map[key][]rule{
	{platform.OSMacOS, platform.ArchARM64}: {
		containsWithSuffix("arm64", ".dmg"),
		suffix(".dmg"),
	},
	{platform.OSMacOS, platform.ArchX64}: {
		containsWithSuffix("x64", ".dmg"),
		containsWithSuffix("intel", ".dmg"),
		suffix(".dmg"),
	},
	{platform.OSWindows, platform.ArchX64}: {suffix(".exe")},
	{platform.OSWindows, platform.ArchX86}: {suffix(".exe")},
	{platform.OSLinux, platform.ArchX64}: {
		suffix(".appimage"),
		suffix(".deb"),
	},
}

// installerExts lists the extensions each OS can install, in fallback order.
var installerExts = map[platform.OS][]string{
	platform.OSMacOS:   {".dmg"},
	platform.OSWindows: {".exe"},
	platform.OSLinux:   {".appimage", ".deb"},
}

// anyInstallerExts is the fallback order when the OS is unknown.
var anyInstallerExts = []string{".dmg", ".exe", ".deb", ".appimage"}

// IsInstaller reports whether name has an installer extension for any OS.
// The match ignores case.
func IsInstaller(name string) bool {
	lower := strings.ToLower(name)
	for _, ext := range anyInstallerExts {
		if strings.HasSuffix(lower, ext) {
			return true
		}
	}
	return false
}

// Selection records why an asset was chosen.
type Selection struct {
	Platform platform.Platform `json:"platform" yaml:"platform"`
	Asset    release.Asset     `json:"asset" yaml:"asset"`
	Rule     string            `json:"rule" yaml:"rule"`
	Fallback bool              `json:"fallback" yaml:"fallback"`
}

func (s Selection) String() string {
	how := "rule " + s.Rule
	if s.Fallback {
		how = "fallback " + s.Rule
	}
	return fmt.Sprintf("%s for %s via %s", s.Asset, s.Platform, how)
}

// Rules returns the rule names for p in priority order, or nil when the
// platform has no rule set.
func Rules(p platform.Platform) []string {
	rs := rules[key{p.OS, p.Arch}]
	if len(rs) == 0 {
		return nil
	}
	names := make([]string, len(rs))
	for i, r := range rs {
		names[i] = r.name
	}
	return names
}

// Select returns the best asset for p. See Explain.
func Select(list []release.Asset, p platform.Platform) (release.Asset, bool) {
	sel, ok := Explain(list, p)
	return sel.Asset, ok
}

// Explain returns the best asset for p together with the rule that chose it.
//
// Rules are tried in priority order and the first rule with any match wins;
// within a rule the earliest asset in list order is taken. When no rule
// matches, the first installer valid for the resolved OS is returned, or for
// an unknown OS the first .dmg/.exe/.deb/.AppImage in that order.
func Explain(list []release.Asset, p platform.Platform) (Selection, bool) {
	if len(list) == 0 {
		return Selection{Platform: p}, false
	}

	lower := make([]string, len(list))
	for i, a := range list {
		lower[i] = strings.ToLower(a.Name)
	}

	for _, r := range rules[key{p.OS, p.Arch}] {
		for i, n := range lower {
			if r.match(n) {
				return Selection{Platform: p, Asset: list[i], Rule: r.name}, true
			}
		}
	}

	exts, ok := installerExts[p.OS]
	if !ok {
		exts = anyInstallerExts
	}
	for i, n := range lower {
		for _, ext := range exts {
			if strings.HasSuffix(n, ext) {
				return Selection{Platform: p, Asset: list[i], Rule: "*" + ext, Fallback: true}, true
			}
		}
	}

	return Selection{Platform: p}, false
}
