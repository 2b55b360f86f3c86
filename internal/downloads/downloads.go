// Package downloads manages installers saved by the updater.
package downloads

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/qbox-app/qboxup/internal/assets"
)

// Installer is one file in the download directory.
type Installer struct {
	Name    string    `json:"name" yaml:"name"`
	Path    string    `json:"path" yaml:"path"`
	Size    int64     `json:"size" yaml:"size"`
	ModTime time.Time `json:"modTime" yaml:"modTime"`
}

func (i Installer) String() string {
	return fmt.Sprintf("%-40s %10s  %s", i.Name, humanize.Bytes(uint64(max(i.Size, 0))), humanize.Time(i.ModTime))
}

// Manager lists and prunes installers in one directory.
type Manager struct {
	dir string
}

// NewManager creates a manager for dir.
func NewManager(dir string) *Manager {
	return &Manager{dir: dir}
}

// Dir returns the managed directory.
func (m *Manager) Dir() string {
	return m.dir
}

// List returns the finished installers, newest first. Files without an
// installer extension, including partial downloads, are not listed and so
// never pruned. A missing directory is empty.
func (m *Manager) List() ([]Installer, error) {
	entries, err := os.ReadDir(m.dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return []Installer{}, nil
		}
		return nil, fmt.Errorf("read download directory: %w", err)
	}

	installers := []Installer{}
	for _, entry := range entries {
		if entry.IsDir() || !assets.IsInstaller(entry.Name()) {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		installers = append(installers, Installer{
			Name:    entry.Name(),
			Path:    filepath.Join(m.dir, entry.Name()),
			Size:    info.Size(),
			ModTime: info.ModTime(),
		})
	}

	sort.SliceStable(installers, func(i, j int) bool {
		if installers[i].ModTime.Equal(installers[j].ModTime) {
			return installers[i].Name > installers[j].Name
		}
		return installers[i].ModTime.After(installers[j].ModTime)
	})

	return installers, nil
}

// Delete removes the installer with the given file name.
func (m *Manager) Delete(name string) error {
	if name != filepath.Base(name) {
		return fmt.Errorf("invalid installer name: %s", name)
	}
	if !assets.IsInstaller(name) {
		return fmt.Errorf("not an installer: %s", name)
	}
	path := filepath.Join(m.dir, name)

	if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("installer not found: %s", name)
	}
	if err := os.Remove(path); err != nil {
		return fmt.Errorf("delete installer: %w", err)
	}
	return nil
}

// PruneResult contains information about what was pruned.
type PruneResult struct {
	Deleted []Installer `json:"deleted" yaml:"deleted"`
	Kept    int         `json:"kept" yaml:"kept"`
}

func (r PruneResult) String() string {
	if len(r.Deleted) == 0 {
		return fmt.Sprintf("Nothing to prune, %d installer(s) kept", r.Kept)
	}
	var b strings.Builder
	for _, inst := range r.Deleted {
		fmt.Fprintf(&b, "Deleted %s\n", inst.Name)
	}
	fmt.Fprintf(&b, "%d installer(s) kept", r.Kept)
	return b.String()
}

// Prune removes old installers, keeping only the most recent keep.
func (m *Manager) Prune(keep int) (*PruneResult, error) {
	if keep < 0 {
		return nil, fmt.Errorf("keep count must be non-negative")
	}

	installers, err := m.List()
	if err != nil {
		return nil, err
	}

	result := &PruneResult{Deleted: []Installer{}}
	if len(installers) <= keep {
		result.Kept = len(installers)
		return result, nil
	}

	result.Kept = keep
	for _, inst := range installers[keep:] {
		if err := m.Delete(inst.Name); err != nil {
			return nil, fmt.Errorf("prune %s: %w", inst.Name, err)
		}
		result.Deleted = append(result.Deleted, inst)
	}

	return result, nil
}
