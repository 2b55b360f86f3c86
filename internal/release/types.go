// Package release fetches the latest published release from the hosting
// service and normalizes it for asset selection.
package release

import (
	"fmt"
	"strings"

	"github.com/dustin/go-humanize"
)

// Asset is a single downloadable file attached to a release.
type Asset struct {
	Name        string `json:"name" yaml:"name"`
	Size        int64  `json:"size" yaml:"size"`
	DownloadURL string `json:"downloadUrl" yaml:"downloadUrl"`
}

// String returns "name (size)".
func (a Asset) String() string {
	return fmt.Sprintf("%s (%s)", a.Name, humanize.Bytes(uint64(max(a.Size, 0))))
}

// Info describes a release. It is write-once: callers hold it for the
// session and pass it to the asset selector without mutating it.
type Info struct {
	Version string  `json:"version" yaml:"version"` // tag without the leading "v"
	Tag     string  `json:"tag" yaml:"tag"`
	HTMLURL string  `json:"htmlUrl,omitempty" yaml:"htmlUrl,omitempty"`
	Notes   string  `json:"notes,omitempty" yaml:"notes,omitempty"`
	Assets  []Asset `json:"assets" yaml:"assets"`
}

// githubRelease maps the fields consumed from the releases API.
type githubRelease struct {
	TagName string        `json:"tag_name"`
	Body    string        `json:"body"`
	HTMLURL string        `json:"html_url"`
	Assets  []githubAsset `json:"assets"`
}

type githubAsset struct {
	Name               string `json:"name"`
	Size               int64  `json:"size"`
	BrowserDownloadURL string `json:"browser_download_url"`
}

func (r *githubRelease) toInfo() *Info {
	info := &Info{
		Version: NormalizeVersion(r.TagName),
		Tag:     r.TagName,
		HTMLURL: r.HTMLURL,
		Notes:   r.Body,
		Assets:  make([]Asset, 0, len(r.Assets)),
	}
	for _, a := range r.Assets {
		info.Assets = append(info.Assets, Asset{
			Name:        a.Name,
			Size:        a.Size,
			DownloadURL: a.BrowserDownloadURL,
		})
	}
	return info
}

// NormalizeVersion removes a single leading "v" from a tag.
func NormalizeVersion(tag string) string {
	return strings.TrimPrefix(tag, "v")
}

// ReleasesPageURL is the fallback navigation target for a repository.
func ReleasesPageURL(owner, repo string) string {
	return fmt.Sprintf("https://github.com/%s/%s/releases", owner, repo)
}

// DownloadTarget returns where a download action should navigate: the
// asset's URL when there is one, otherwise the releases page.
func DownloadTarget(asset Asset, found bool, releasesPage string) string {
	if !found || asset.DownloadURL == "" {
		return releasesPage
	}
	return asset.DownloadURL
}
