package update

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/dustin/go-humanize"
)

// UpdateInfo describes an available update.
type UpdateInfo struct {
	Version      string `json:"version" yaml:"version"`
	ReleaseNotes string `json:"releaseNotes,omitempty" yaml:"releaseNotes,omitempty"`
	ReleaseURL   string `json:"releaseUrl,omitempty" yaml:"releaseUrl,omitempty"`
	AssetName    string `json:"assetName,omitempty" yaml:"assetName,omitempty"`
	AssetURL     string `json:"assetUrl,omitempty" yaml:"assetUrl,omitempty"`
	AssetSize    int64  `json:"assetSize,omitempty" yaml:"assetSize,omitempty"`
}

// DownloadProgress is the latest progress report of one download. Each
// report replaces the previous one.
type DownloadProgress struct {
	Percent        float64 `json:"percent" yaml:"percent"`
	BytesPerSecond float64 `json:"bytesPerSecond" yaml:"bytesPerSecond"`
}

func (p DownloadProgress) String() string {
	return fmt.Sprintf("%.0f%% (%s/s)", p.Percent, humanize.Bytes(uint64(p.BytesPerSecond)))
}

// Snapshot is the read-only view handed to the presentation layer.
type Snapshot struct {
	State            State             `json:"state" yaml:"state"`
	UpdateInfo       *UpdateInfo       `json:"updateInfo,omitempty" yaml:"updateInfo,omitempty"`
	DownloadProgress *DownloadProgress `json:"downloadProgress,omitempty" yaml:"downloadProgress,omitempty"`
	IsVisible        bool              `json:"isVisible" yaml:"isVisible"`
}

// String renders the snapshot as a single status line.
func (s Snapshot) String() string {
	version := ""
	if s.UpdateInfo != nil {
		version = " " + s.UpdateInfo.Version
	}

	var b strings.Builder
	switch s.State {
	case StateIdle:
		b.WriteString("No update")
	case StateAvailable:
		fmt.Fprintf(&b, "Update%s available", version)
		if s.UpdateInfo != nil && s.UpdateInfo.AssetSize > 0 {
			fmt.Fprintf(&b, " (%s)", humanize.Bytes(uint64(s.UpdateInfo.AssetSize)))
		}
	case StateDownloading:
		fmt.Fprintf(&b, "Downloading update%s", version)
		if s.DownloadProgress != nil {
			b.WriteString(": " + s.DownloadProgress.String())
		}
	case StateDownloaded:
		fmt.Fprintf(&b, "Update%s ready to install", version)
	case StateDismissed:
		fmt.Fprintf(&b, "Update%s dismissed", version)
	}
	return b.String()
}

// Engine performs the actual download and install. The Controller only
// tracks and exposes its state; progress and completion come back through
// the EventBus.
type Engine interface {
	// StartDownload begins downloading info's asset and returns without
	// waiting for it to finish.
	StartDownload(ctx context.Context, info UpdateInfo) error
	// Install applies the downloaded update. The session is over after a
	// successful call.
	Install(ctx context.Context) error
}

var (
	// ErrDownloadInProgress is returned when a second download is started.
	ErrDownloadInProgress = errors.New("download already in progress")
	// ErrNoDownload is returned when there is nothing to download or install.
	ErrNoDownload = errors.New("no update downloaded")
)
