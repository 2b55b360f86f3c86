package update

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"path"
	"path/filepath"
	"sync"
	"time"

	"github.com/pkg/browser"
)

// DefaultProgressInterval bounds how often HTTPEngine publishes progress.
const DefaultProgressInterval = 100 * time.Millisecond

// HTTPEngine is the default updater engine. It downloads the release asset
// over HTTP into a directory, reports progress on an EventBus and installs
// by opening the downloaded installer with the OS handler.
type HTTPEngine struct {
	bus      *EventBus
	dir      string
	client   *http.Client
	logger   *slog.Logger
	interval time.Duration
	open     func(path string) error
	now      func() time.Time

	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
	path   string // last completed download
	err    error  // last download error
}

// EngineOption configures an HTTPEngine.
type EngineOption func(*HTTPEngine)

// WithEngineHTTPClient sets the HTTP client used for downloads.
func WithEngineHTTPClient(hc *http.Client) EngineOption {
	return func(e *HTTPEngine) {
		if hc != nil {
			e.client = hc
		}
	}
}

// WithEngineLogger sets the logger.
func WithEngineLogger(l *slog.Logger) EngineOption {
	return func(e *HTTPEngine) {
		if l != nil {
			e.logger = l
		}
	}
}

// WithProgressInterval sets the minimum time between progress events.
func WithProgressInterval(d time.Duration) EngineOption {
	return func(e *HTTPEngine) { e.interval = d }
}

// WithOpener replaces the function used to launch the installer.
func WithOpener(open func(path string) error) EngineOption {
	return func(e *HTTPEngine) {
		if open != nil {
			e.open = open
		}
	}
}

// NewHTTPEngine creates an engine that downloads into dir and publishes on
// bus.
func NewHTTPEngine(bus *EventBus, dir string, opts ...EngineOption) *HTTPEngine {
	e := &HTTPEngine{
		bus:      bus,
		dir:      dir,
		client:   &http.Client{Timeout: 30 * time.Minute},
		logger:   slog.New(slog.DiscardHandler),
		interval: DefaultProgressInterval,
		open:     browser.OpenFile,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// StartDownload starts downloading info's asset in the background. The
// download outlives ctx's cancellation but keeps its values.
func (e *HTTPEngine) StartDownload(ctx context.Context, info UpdateInfo) error {
	if info.AssetURL == "" {
		return fmt.Errorf("update %s: %w", info.Version, ErrNoDownload)
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if e.cancel != nil {
		return ErrDownloadInProgress
	}

	dctx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	e.cancel = cancel
	e.done = make(chan struct{})
	e.err = nil

	go e.run(dctx, info, e.done)
	return nil
}

func (e *HTTPEngine) run(ctx context.Context, info UpdateInfo, done chan struct{}) {
	defer close(done)

	dst := filepath.Join(e.dir, assetFileName(info))
	start := e.now()
	var last time.Time

	e.logger.Info("downloading update", "version", info.Version, "asset", info.AssetName, "dest", dst)
	err := Download(ctx, e.client, info.AssetURL, dst, info.AssetSize, func(downloaded, total int64) {
		now := e.now()
		if downloaded != total && now.Sub(last) < e.interval {
			return
		}
		last = now
		e.bus.Publish(Event{Type: EventDownloadProgress, Payload: progressOf(downloaded, total, now.Sub(start))})
	})

	e.mu.Lock()
	cancel := e.cancel
	e.cancel = nil
	e.err = err
	if err == nil {
		e.path = dst
	}
	e.mu.Unlock()
	cancel()

	if err != nil {
		if errors.Is(err, context.Canceled) {
			e.logger.Info("download cancelled", "version", info.Version)
		} else {
			e.logger.Error("download failed", "version", info.Version, "err", err)
		}
		e.bus.Publish(Event{Type: EventDownloadReset, Payload: StateIdle})
		return
	}

	e.logger.Info("update downloaded", "version", info.Version, "path", dst)
	e.bus.Publish(Event{Type: EventDownloadComplete})
}

// Cancel stops the running download, if any. The controller sees a reset to
// idle.
func (e *HTTPEngine) Cancel() {
	e.mu.Lock()
	cancel := e.cancel
	e.mu.Unlock()
	if cancel != nil {
		cancel()
	}
}

// Wait blocks until the current download finishes or ctx is done, and
// returns the download's error.
func (e *HTTPEngine) Wait(ctx context.Context) error {
	e.mu.Lock()
	done := e.done
	e.mu.Unlock()
	if done == nil {
		return ErrNoDownload
	}

	select {
	case <-done:
	case <-ctx.Done():
		return ctx.Err()
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	return e.err
}

// Path returns the downloaded installer, or "" before a download completes.
func (e *HTTPEngine) Path() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.path
}

// Install opens the downloaded installer.
func (e *HTTPEngine) Install(ctx context.Context) error {
	p := e.Path()
	if p == "" {
		return ErrNoDownload
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	e.logger.Info("launching installer", "path", p)
	if err := e.open(p); err != nil {
		return fmt.Errorf("open installer %s: %w", p, err)
	}
	return nil
}

func progressOf(downloaded, total int64, elapsed time.Duration) DownloadProgress {
	var p DownloadProgress
	if total > 0 {
		p.Percent = float64(downloaded) / float64(total) * 100
	}
	if secs := elapsed.Seconds(); secs > 0 {
		p.BytesPerSecond = float64(downloaded) / secs
	}
	return clampProgress(p)
}

// assetFileName picks a safe local name for the download.
func assetFileName(info UpdateInfo) string {
	name := filepath.Base(info.AssetName)
	if name == "." || name == string(filepath.Separator) || name == "" {
		name = path.Base(info.AssetURL)
	}
	if name == "." || name == "/" || name == "" {
		name = "qbox-" + info.Version
	}
	return name
}
