// Package update tracks the in-app update lifecycle and checks for, downloads
// and installs new releases.
package update

import (
	"context"
	"log/slog"
	"math"
	"sync"
)

// Controller owns the update state machine:
//
//	idle -> available -> downloading -> downloaded -> install
//	             \                           /
//	              +-------> dismissed <-----+
//
// External notifications (availability, progress, completion, reset) and
// user intents (download, install, dismiss) are applied serially in arrival
// order. Requests that are not valid in the current state are ignored and
// reported as false.
//
// A Controller without an Engine has no update capability: it stays idle,
// is never visible and ignores everything.
type Controller struct {
	engine Engine
	logger *slog.Logger

	mu       sync.Mutex
	state    State
	info     *UpdateInfo
	progress *DownloadProgress
	finished bool // install was handed to the engine

	// deliverMu keeps listener calls in transition order.
	deliverMu sync.Mutex
	listeners []func(Snapshot)
}

// ControllerOption configures a Controller.
type ControllerOption func(*Controller)

// WithControllerLogger sets the logger.
func WithControllerLogger(l *slog.Logger) ControllerOption {
	return func(c *Controller) {
		if l != nil {
			c.logger = l
		}
	}
}

// NewController creates a controller in the idle state. Pass a nil engine
// when the host has no updater.
func NewController(engine Engine, opts ...ControllerOption) *Controller {
	c := &Controller{
		engine: engine,
		logger: slog.New(slog.DiscardHandler),
		state:  StateIdle,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Enabled reports whether the update capability is present.
func (c *Controller) Enabled() bool {
	return c.engine != nil
}

// Subscribe registers fn to receive a snapshot after every accepted change.
// Listeners run on the goroutine that caused the change and must not call
// back into the controller's intents or notifications.
func (c *Controller) Subscribe(fn func(Snapshot)) {
	if !c.Enabled() {
		return
	}
	c.mu.Lock()
	c.listeners = append(c.listeners, fn)
	c.mu.Unlock()
}

// Attach routes the engine's bus events into the controller.
func (c *Controller) Attach(bus *EventBus) {
	if !c.Enabled() || bus == nil {
		return
	}
	bus.Subscribe(EventUpdateAvailable, func(e Event) {
		if info, ok := e.Payload.(UpdateInfo); ok {
			c.NotifyAvailable(info)
		}
	})
	bus.Subscribe(EventDownloadProgress, func(e Event) {
		if p, ok := e.Payload.(DownloadProgress); ok {
			c.NotifyProgress(p)
		}
	})
	bus.Subscribe(EventDownloadComplete, func(Event) {
		c.NotifyComplete()
	})
	bus.Subscribe(EventDownloadReset, func(e Event) {
		target, ok := e.Payload.(State)
		if !ok {
			target = StateIdle
		}
		c.NotifyReset(target)
	})
}

// Snapshot returns the current presentation view.
func (c *Controller) Snapshot() Snapshot {
	if !c.Enabled() {
		return Snapshot{State: StateIdle}
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshotLocked()
}

func (c *Controller) snapshotLocked() Snapshot {
	s := Snapshot{
		State:     c.state,
		IsVisible: c.state.Visible() && !c.finished,
	}
	if c.info != nil {
		info := *c.info
		s.UpdateInfo = &info
	}
	if c.progress != nil {
		p := *c.progress
		s.DownloadProgress = &p
	}
	return s
}

// apply runs fn under the lock. When fn reports a change the new snapshot is
// delivered to listeners before apply returns.
func (c *Controller) apply(fn func() bool) bool {
	if !c.Enabled() {
		return false
	}

	c.mu.Lock()
	if c.finished || !fn() {
		c.mu.Unlock()
		return false
	}
	snap := c.snapshotLocked()
	listeners := c.listeners
	c.deliverMu.Lock()
	c.mu.Unlock()

	defer c.deliverMu.Unlock()
	for _, l := range listeners {
		l(snap)
	}
	return true
}

// NotifyAvailable records a new update. Only accepted while idle.
func (c *Controller) NotifyAvailable(info UpdateInfo) bool {
	ok := c.apply(func() bool {
		if c.state != StateIdle {
			return false
		}
		c.state = StateAvailable
		c.info = &info
		c.progress = nil
		return true
	})
	if ok {
		c.logger.Info("update available", "version", info.Version)
	}
	return ok
}

// NotifyProgress replaces the current progress while downloading. Values are
// not required to increase; the latest one is shown.
func (c *Controller) NotifyProgress(p DownloadProgress) bool {
	p = clampProgress(p)
	return c.apply(func() bool {
		if c.state != StateDownloading {
			return false
		}
		c.progress = &p
		return true
	})
}

// NotifyComplete moves a finished download to downloaded.
func (c *Controller) NotifyComplete() bool {
	ok := c.apply(func() bool {
		if c.state != StateDownloading {
			return false
		}
		c.state = StateDownloaded
		return true
	})
	if ok {
		c.logger.Info("update downloaded")
	}
	return ok
}

// NotifyReset is how the engine reports a cancelled or failed download. The
// target must be StateIdle, which forgets the update, or StateDismissed,
// which keeps it.
func (c *Controller) NotifyReset(target State) bool {
	if target != StateIdle && target != StateDismissed {
		return false
	}

	ok := c.apply(func() bool {
		if c.state == target {
			return false
		}
		c.state = target
		c.progress = nil
		if target == StateIdle {
			c.info = nil
		}
		return true
	})
	if ok {
		c.logger.Info("update reset", "state", target)
	}
	return ok
}

// DownloadUpdate asks the engine to download the available update.
func (c *Controller) DownloadUpdate(ctx context.Context) bool {
	var info UpdateInfo
	ok := c.apply(func() bool {
		if c.state != StateAvailable {
			return false
		}
		c.state = StateDownloading
		c.progress = &DownloadProgress{}
		info = *c.info
		return true
	})
	if !ok {
		return false
	}

	if err := c.engine.StartDownload(ctx, info); err != nil {
		c.logger.Warn("download could not start", "version", info.Version, "err", err)
		c.apply(func() bool {
			if c.state != StateDownloading {
				return false
			}
			c.state = StateAvailable
			c.progress = nil
			return true
		})
		return false
	}
	return true
}

// InstallUpdate hands the downloaded update to the engine. On success the
// controller is finished and ignores all further input.
func (c *Controller) InstallUpdate(ctx context.Context) bool {
	ok := c.apply(func() bool {
		if c.state != StateDownloaded {
			return false
		}
		c.finished = true
		return true
	})
	if !ok {
		return false
	}

	if err := c.engine.Install(ctx); err != nil {
		c.logger.Error("install failed", "err", err)
		c.mu.Lock()
		c.finished = false
		c.mu.Unlock()
		c.apply(func() bool { return true })
		return false
	}
	return true
}

// DismissUpdate hides the banner. The update info is kept.
func (c *Controller) DismissUpdate() bool {
	return c.apply(func() bool {
		switch c.state {
		case StateAvailable, StateDownloaded:
			c.state = StateDismissed
			return true
		case StateIdle, StateDownloading, StateDismissed:
			return false
		}
		return false
	})
}

func clampProgress(p DownloadProgress) DownloadProgress {
	switch {
	case math.IsNaN(p.Percent) || p.Percent < 0:
		p.Percent = 0
	case p.Percent > 100:
		p.Percent = 100
	}
	if math.IsNaN(p.BytesPerSecond) || p.BytesPerSecond < 0 {
		p.BytesPerSecond = 0
	}
	return p
}
