package cmd

import (
	"context"
	"log/slog"
	"net/http"
	"os"

	"github.com/pkg/browser"
	"github.com/spf13/cobra"

	"github.com/qbox-app/qboxup/internal/config"
	"github.com/qbox-app/qboxup/internal/interactive"
	"github.com/qbox-app/qboxup/internal/logging"
	"github.com/qbox-app/qboxup/internal/output"
	"github.com/qbox-app/qboxup/internal/platform"
	"github.com/qbox-app/qboxup/internal/release"
)

// Replaced in tests.
var (
	openURL         = browser.OpenURL
	openInstaller   = browser.OpenFile
	stdinIsTerminal = interactive.IsTerminal
)

// app bundles what every command needs after flags are parsed.
type app struct {
	cfg    *config.Config
	logger *slog.Logger
	out    *output.Writer
}

// newApp loads the config and builds the logger and output writer from the
// global flags.
func newApp(cmd *cobra.Command) (*app, error) {
	format, err := output.ParseFormat(outputFormat)
	if err != nil {
		return nil, err
	}

	cfg, err := config.FindAndLoad(configPath)
	if err != nil {
		return nil, err
	}

	level, err := logging.ParseLevel(cfg.Log.Level)
	if err != nil {
		return nil, err
	}
	switch {
	case quiet:
		level = slog.LevelError
	case verbose:
		level = slog.LevelDebug
	}

	stderr := cmd.ErrOrStderr()
	color := false
	if f, ok := stderr.(*os.File); ok {
		color = logging.ColorEnabled(f, cfg.Log.Color)
	}
	logger := logging.New(stderr, level, color)

	if cfg.Path != "" {
		logger.Debug("loaded config", "path", cfg.Path)
	} else {
		logger.Debug("no config file found, using defaults")
	}

	return &app{
		cfg:    cfg,
		logger: logger,
		out:    output.NewWriter(cmd.OutOrStdout(), format),
	}, nil
}

// releaseClient builds the release client for the configured repository.
func (a *app) releaseClient() *release.Client {
	return release.NewClient(a.cfg.Repository.Owner, a.cfg.Repository.Name,
		release.WithBaseURL(a.cfg.APIBaseURL),
		release.WithToken(a.cfg.Token),
		release.WithHTTPClient(&http.Client{Timeout: a.cfg.Timeout()}),
		release.WithLogger(a.logger),
		release.WithUserAgent("qboxup/"+buildVersion),
		release.WithReleasesPage(a.cfg.ReleasesPage),
	)
}

// signalFlags overrides host detection with explicit resolution signals.
type signalFlags struct {
	userAgent string
	platform  string
	renderer  string
}

func (f *signalFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.userAgent, "user-agent", "", "Resolve for this browser user agent instead of the host")
	cmd.Flags().StringVar(&f.platform, "platform", "", "Platform string (navigator.platform or Sec-CH-UA-Platform)")
	cmd.Flags().StringVar(&f.renderer, "renderer", "", "GPU renderer string")
}

func (f *signalFlags) set() bool {
	return f.userAgent != "" || f.platform != "" || f.renderer != ""
}

// signals returns the flag signals, or the host's when no flag is set.
func (f *signalFlags) signals(ctx context.Context) (platform.Signals, string) {
	if !f.set() {
		return platform.HostSignals(ctx), "host"
	}
	return platform.Signals{
		UserAgent: f.userAgent,
		Platform:  f.platform,
		Probe:     platform.StaticProbe{Value: f.renderer},
	}, "flags"
}

// confirmer asks yes/no questions.
type confirmer interface {
	Confirm(format string, args ...any) bool
}

// assumeYes answers every question with yes.
type assumeYes struct{}

func (assumeYes) Confirm(string, ...any) bool { return true }
