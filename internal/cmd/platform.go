package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/qbox-app/qboxup/internal/assets"
	"github.com/qbox-app/qboxup/internal/platform"
)

// platformReport is the result of `qboxup platform`.
type platformReport struct {
	Source   string            `json:"source" yaml:"source"`
	Platform platform.Platform `json:"platform" yaml:"platform"`
	Known    bool              `json:"known" yaml:"known"`
	Rules    []string          `json:"rules" yaml:"rules"`
}

func (r platformReport) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "Platform: %s [%s/%s]\n", r.Platform, r.Platform.OS, r.Platform.Arch)
	fmt.Fprintf(&b, "Source:   %s\n", r.Source)
	if len(r.Rules) == 0 {
		b.WriteString("Rules:    none, downloads fall back to the releases page")
	} else {
		fmt.Fprintf(&b, "Rules:    %s", strings.Join(r.Rules, ", "))
	}
	return b.String()
}

func newPlatformCmd() *cobra.Command {
	var sig signalFlags

	cmd := &cobra.Command{
		Use:   "platform",
		Short: "Show the resolved platform and its asset rules",
		Long: `Resolve the platform of this machine, or of a browser described by flags,
and list the asset rules that apply to it in priority order.

Examples:
  qboxup platform
  qboxup platform --user-agent "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7)" --renderer "Apple M2"
  qboxup platform --platform "Linux x86_64" -o json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd)
			if err != nil {
				return err
			}

			signals, source := sig.signals(cmd.Context())
			p := platform.Resolve(signals)
			a.logger.Debug("resolved platform", "source", source, "os", p.OS, "arch", p.Arch)

			return a.out.Write(newPlatformReport(p, source))
		},
	}

	sig.register(cmd)
	return cmd
}

func newPlatformReport(p platform.Platform, source string) platformReport {
	rules := assets.Rules(p)
	if rules == nil {
		rules = []string{}
	}
	return platformReport{Source: source, Platform: p, Known: p.IsKnown(), Rules: rules}
}
