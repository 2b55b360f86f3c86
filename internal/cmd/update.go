package cmd

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/spf13/cobra"

	"github.com/qbox-app/qboxup/internal/downloads"
	"github.com/qbox-app/qboxup/internal/interactive"
	"github.com/qbox-app/qboxup/internal/output"
	"github.com/qbox-app/qboxup/internal/platform"
	"github.com/qbox-app/qboxup/internal/update"
)

type updateOptions struct {
	current  string
	check    bool
	platform platform.Platform
	// confirm is nil when nobody can answer prompts.
	confirm confirmer
}

func newUpdateCmd() *cobra.Command {
	var (
		sig     signalFlags
		current string
		check   bool
		yes     bool
	)

	cmd := &cobra.Command{
		Use:   "update",
		Short: "Check for, download and install a QBox update",
		Long: `Check the latest release against the installed version. When it is newer,
download the installer for this platform and launch it.

Each step asks for confirmation unless --yes is given. Without a terminal and
without --yes the update is only reported.

Examples:
  qboxup update --current 1.4.2           # Prompt before download and install
  qboxup update --current 1.4.2 --check   # Only report
  qboxup update --current 1.4.2 --yes     # No prompts`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd)
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			signals, source := sig.signals(ctx)
			opts := updateOptions{
				current:  current,
				check:    check,
				platform: platform.Resolve(signals),
			}
			a.logger.Debug("resolved platform", "source", source, "platform", opts.platform.String())

			switch {
			case yes:
				opts.confirm = assumeYes{}
			case stdinIsTerminal():
				opts.confirm = interactive.NewPrompterWithIO(cmd.InOrStdin(), cmd.ErrOrStderr())
			}

			return runUpdate(ctx, a, opts)
		},
	}

	sig.register(cmd)
	cmd.Flags().StringVar(&current, "current", buildVersion, "Installed QBox version to compare against")
	cmd.Flags().BoolVar(&check, "check", false, "Only report whether an update is available")
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Download and install without prompting")
	return cmd
}

func runUpdate(ctx context.Context, a *app, opts updateOptions) error {
	if !a.cfg.UpdatesEnabled() {
		a.out.Textf("Updates are disabled by configuration.")
		return writeStructured(a.out, update.NewController(nil).Snapshot())
	}

	bus := update.NewEventBus()
	engine := update.NewHTTPEngine(bus, a.cfg.Updates.DownloadDir,
		update.WithEngineLogger(a.logger),
		update.WithOpener(openInstaller))
	ctrl := update.NewController(engine, update.WithControllerLogger(a.logger))
	ctrl.Attach(bus)
	ctrl.Subscribe((&snapshotPrinter{out: a.out}).print)

	checker := update.NewChecker(opts.current, a.releaseClient(),
		update.WithBus(bus),
		update.WithCheckerLogger(a.logger))

	info, ok := checker.Check(ctx, opts.platform)
	if !ok {
		if update.IsDevBuild(opts.current) {
			a.out.Textf("Development build, update check skipped. Pass --current to compare a release.")
		} else {
			a.out.Textf("No update available for QBox %s.", opts.current)
		}
		return writeStructured(a.out, ctrl.Snapshot())
	}

	if info.AssetURL == "" {
		a.out.Textf("No installer for %s. Download it from %s", opts.platform, info.ReleaseURL)
		return writeStructured(a.out, ctrl.Snapshot())
	}
	if opts.check {
		return writeStructured(a.out, ctrl.Snapshot())
	}
	if opts.confirm == nil {
		a.out.Textf("Run with --yes to download without prompting.")
		return writeStructured(a.out, ctrl.Snapshot())
	}

	if !opts.confirm.Confirm("Download %s?", info.AssetName) {
		ctrl.DismissUpdate()
		return writeStructured(a.out, ctrl.Snapshot())
	}

	if !ctrl.DownloadUpdate(ctx) {
		return errors.New("download could not start")
	}
	if err := engine.Wait(ctx); err != nil {
		engine.Cancel()
		return fmt.Errorf("download %s: %w", info.AssetName, err)
	}
	if ctrl.Snapshot().State != update.StateDownloaded {
		return fmt.Errorf("download %s did not complete", info.AssetName)
	}
	pruneDownloads(a)

	if !opts.confirm.Confirm("Install QBox %s now?", info.Version) {
		a.out.Textf("Installer saved to %s", engine.Path())
		return writeStructured(a.out, ctrl.Snapshot())
	}
	if !ctrl.InstallUpdate(ctx) {
		return fmt.Errorf("launch installer %s failed", engine.Path())
	}

	a.out.Textf("Launched installer %s", engine.Path())
	return writeStructured(a.out, ctrl.Snapshot())
}

// pruneDownloads drops installers beyond updates.keep. Failures only warn.
func pruneDownloads(a *app) {
	result, err := downloads.NewManager(a.cfg.Updates.DownloadDir).Prune(a.cfg.KeepInstallers())
	if err != nil {
		a.logger.Warn("prune downloads failed", "dir", a.cfg.Updates.DownloadDir, "err", err)
		return
	}
	for _, inst := range result.Deleted {
		a.logger.Info("removed old installer", "name", inst.Name)
	}
}

// writeStructured writes v in json or yaml mode. Text mode has already
// printed as it went.
func writeStructured(out *output.Writer, v any) error {
	if out.IsText() {
		return nil
	}
	return out.Write(v)
}

// snapshotPrinter prints a line per state change and per 10% of download
// progress.
type snapshotPrinter struct {
	mu     sync.Mutex
	out    *output.Writer
	seen   bool
	state  update.State
	bucket int
}

func (p *snapshotPrinter) print(s update.Snapshot) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.seen && s.State == p.state {
		if s.State != update.StateDownloading || s.DownloadProgress == nil {
			return
		}
		b := int(s.DownloadProgress.Percent) / 10
		if b <= p.bucket {
			return
		}
		p.bucket = b
	} else {
		p.bucket = 0
	}

	p.seen, p.state = true, s.State
	p.out.Textf("%s", s)
}
