package cmd

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/qbox-app/qboxup/internal/platform"
	"github.com/qbox-app/qboxup/internal/server"
	"github.com/qbox-app/qboxup/internal/update"
)

func newServeCmd() *cobra.Command {
	var (
		listen  string
		current string
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the download redirect and update API",
		Long: `Start an HTTP server with:

  GET  /download               302 to the installer for the requesting browser
  GET  /api/platform           resolved platform and asset rules
  GET  /api/release            latest release and the selected asset
  GET  /api/update             update state snapshot
  POST /api/update/download    start downloading the available update
  POST /api/update/install     launch the downloaded installer
  POST /api/update/dismiss     hide the update banner

The /api/update routes answer 404 when updates are disabled in the config.

Examples:
  qboxup serve
  qboxup serve --listen :8080`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd)
			if err != nil {
				return err
			}
			if listen == "" {
				listen = a.cfg.Server.Listen
			}
			return runServe(cmd.Context(), a, listen, current)
		},
	}

	cmd.Flags().StringVar(&listen, "listen", "", "Address to listen on (default from config)")
	cmd.Flags().StringVar(&current, "current", buildVersion, "Installed QBox version checked on start")
	return cmd
}

func runServe(ctx context.Context, a *app, listen, current string) error {
	client := a.releaseClient()

	var (
		ctrl *update.Controller
		bus  *update.EventBus
	)
	if a.cfg.UpdatesEnabled() {
		bus = update.NewEventBus()
		engine := update.NewHTTPEngine(bus, a.cfg.Updates.DownloadDir,
			update.WithEngineLogger(a.logger),
			update.WithOpener(openInstaller))
		ctrl = update.NewController(engine, update.WithControllerLogger(a.logger))
		ctrl.Attach(bus)
	} else {
		ctrl = update.NewController(nil)
	}

	srv := server.New(client, ctrl,
		server.WithCacheTTL(a.cfg.CacheTTL()),
		server.WithLogger(a.logger))

	if ctrl.Enabled() && a.cfg.Updates.CheckOnStart {
		checker := update.NewChecker(current, client,
			update.WithBus(bus),
			update.WithCheckerLogger(a.logger))
		go func() {
			if info, ok := checker.Check(ctx, platform.DetectHost(ctx)); ok {
				a.logger.Info("update available", "version", info.Version, "asset", info.AssetName)
			}
		}()
	}

	a.logger.Info("starting server", "listen", listen, "repository", a.cfg.Repository.String(), "updates", ctrl.Enabled())
	return srv.ListenAndServe(ctx, listen)
}
