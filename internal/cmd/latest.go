package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/qbox-app/qboxup/internal/assets"
	"github.com/qbox-app/qboxup/internal/platform"
	"github.com/qbox-app/qboxup/internal/release"
)

// latestReport is the result of `qboxup latest`.
type latestReport struct {
	Platform    platform.Platform `json:"platform" yaml:"platform"`
	Release     *release.Info     `json:"release" yaml:"release"`
	Selection   *assets.Selection `json:"selection,omitempty" yaml:"selection,omitempty"`
	DownloadURL string            `json:"downloadUrl" yaml:"downloadUrl"`
}

func (r latestReport) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "Platform: %s\n", r.Platform)
	if r.Release == nil {
		b.WriteString("Release:  unavailable\n")
	} else {
		fmt.Fprintf(&b, "Release:  %s\n", r.Release.Version)
	}
	if r.Selection != nil {
		fmt.Fprintf(&b, "Asset:    %s\n", r.Selection.Asset)
		if r.Selection.Fallback {
			fmt.Fprintf(&b, "Matched:  fallback %s\n", r.Selection.Rule)
		} else {
			fmt.Fprintf(&b, "Matched:  %s\n", r.Selection.Rule)
		}
	} else if r.Release != nil {
		b.WriteString("Asset:    no installer for this platform\n")
	}
	fmt.Fprintf(&b, "Download: %s", r.DownloadURL)
	return b.String()
}

func newLatestCmd() *cobra.Command {
	var (
		sig  signalFlags
		open bool
	)

	cmd := &cobra.Command{
		Use:   "latest",
		Short: "Show the download for the latest release",
		Long: `Fetch the latest release, pick the installer for the platform and print its
download URL. When no installer matches, or the release cannot be fetched,
the releases page is printed instead.

Examples:
  qboxup latest
  qboxup latest --open
  qboxup latest --user-agent "Mozilla/5.0 (Windows NT 10.0; Win64; x64)" -o json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd)
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			client := a.releaseClient()
			signals, _ := sig.signals(ctx)
			p := platform.Resolve(signals)

			report := buildLatestReport(p, client.FetchLatest(ctx), client.ReleasesPage())
			if err := a.out.Write(report); err != nil {
				return err
			}

			if open {
				a.logger.Debug("opening download", "url", report.DownloadURL)
				if err := openURL(report.DownloadURL); err != nil {
					return fmt.Errorf("open %s: %w", report.DownloadURL, err)
				}
			}
			return nil
		},
	}

	sig.register(cmd)
	cmd.Flags().BoolVar(&open, "open", false, "Open the download in a browser")
	return cmd
}

func buildLatestReport(p platform.Platform, info *release.Info, releasesPage string) latestReport {
	report := latestReport{Platform: p, Release: info}
	if info == nil {
		report.DownloadURL = release.DownloadTarget(release.Asset{}, false, releasesPage)
		return report
	}

	sel, ok := assets.Explain(info.Assets, p)
	if ok {
		report.Selection = &sel
	}
	report.DownloadURL = release.DownloadTarget(sel.Asset, ok, releasesPage)
	return report
}
