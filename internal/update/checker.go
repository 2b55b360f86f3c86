package update

import (
	"context"
	"log/slog"

	"github.com/qbox-app/qboxup/internal/assets"
	"github.com/qbox-app/qboxup/internal/platform"
	"github.com/qbox-app/qboxup/internal/release"
)

// LatestFetcher returns the latest release, or nil when none is available.
type LatestFetcher interface {
	FetchLatest(ctx context.Context) *release.Info
	ReleasesPage() string
}

// Checker decides whether the latest release is an update for the running
// version and, if so, which asset to download.
type Checker struct {
	currentVersion string
	fetcher        LatestFetcher
	bus            *EventBus
	logger         *slog.Logger
}

// CheckerOption configures a Checker.
type CheckerOption func(*Checker)

// WithBus publishes EventUpdateAvailable when an update is found.
func WithBus(bus *EventBus) CheckerOption {
	return func(c *Checker) { c.bus = bus }
}

// WithCheckerLogger sets the logger.
func WithCheckerLogger(l *slog.Logger) CheckerOption {
	return func(c *Checker) {
		if l != nil {
			c.logger = l
		}
	}
}

// NewChecker creates a checker for the running version.
func NewChecker(currentVersion string, fetcher LatestFetcher, opts ...CheckerOption) *Checker {
	c := &Checker{
		currentVersion: currentVersion,
		fetcher:        fetcher,
		logger:         slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Check fetches the latest release and reports it when it is newer than the
// running version. Dev builds never see updates. When no asset matches p the
// update is still reported, with an empty AssetURL and ReleaseURL pointing at
// the releases page.
func (c *Checker) Check(ctx context.Context, p platform.Platform) (*UpdateInfo, bool) {
	if IsDevBuild(c.currentVersion) {
		c.logger.Debug("skipping update check for dev build")
		return nil, false
	}

	latest := c.fetcher.FetchLatest(ctx)
	if latest == nil {
		return nil, false
	}

	newer, err := IsNewer(latest.Version, c.currentVersion)
	if err != nil {
		c.logger.Warn("cannot compare versions",
			"current", c.currentVersion, "latest", latest.Version, "err", err)
		return nil, false
	}
	if !newer {
		c.logger.Debug("already running latest version", "version", c.currentVersion)
		return nil, false
	}

	info := &UpdateInfo{
		Version:      latest.Version,
		ReleaseNotes: latest.Notes,
		ReleaseURL:   c.fetcher.ReleasesPage(),
	}
	if asset, ok := assets.Select(latest.Assets, p); ok {
		info.AssetName = asset.Name
		info.AssetURL = asset.DownloadURL
		info.AssetSize = asset.Size
	} else {
		c.logger.Info("no asset for platform", "platform", p.String(), "version", latest.Version)
	}

	c.bus.Publish(Event{Type: EventUpdateAvailable, Payload: *info})
	return info, true
}
