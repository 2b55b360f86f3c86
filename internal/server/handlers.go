package server

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/qbox-app/qboxup/internal/assets"
	"github.com/qbox-app/qboxup/internal/platform"
	"github.com/qbox-app/qboxup/internal/release"
	"github.com/qbox-app/qboxup/internal/update"
)

type platformResponse struct {
	Platform platform.Platform `json:"platform"`
	Known    bool              `json:"known"`
	Rules    []string          `json:"rules"`
}

type releaseResponse struct {
	Platform    platform.Platform `json:"platform"`
	Release     *release.Info     `json:"release"`
	Selection   *assets.Selection `json:"selection,omitempty"`
	DownloadURL string            `json:"downloadUrl"`
}

type intentResponse struct {
	Accepted bool            `json:"accepted"`
	Snapshot update.Snapshot `json:"snapshot"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func (s *Server) handleDownload(w http.ResponseWriter, r *http.Request) {
	info := s.latest(r.Context())
	p, sel, ok := selectFor(r, info)
	target := release.DownloadTarget(sel.Asset, ok, s.fetcher.ReleasesPage())

	s.logger.Info("download redirect", "platform", p.String(), "asset", sel.Asset.Name, "target", target)
	http.Redirect(w, r, target, http.StatusFound)
}

func (s *Server) handlePlatform(w http.ResponseWriter, r *http.Request) {
	p := platform.Resolve(signalsFrom(r))
	rules := assets.Rules(p)
	if rules == nil {
		rules = []string{}
	}
	writeJSON(w, http.StatusOK, platformResponse{Platform: p, Known: p.IsKnown(), Rules: rules})
}

func (s *Server) handleRelease(w http.ResponseWriter, r *http.Request) {
	info := s.latest(r.Context())
	p, sel, ok := selectFor(r, info)

	resp := releaseResponse{
		Platform:    p,
		Release:     info,
		DownloadURL: release.DownloadTarget(sel.Asset, ok, s.fetcher.ReleasesPage()),
	}
	if ok {
		resp.Selection = &sel
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleUpdateSnapshot(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.controller.Snapshot())
}

// handleIntent runs a controller intent. A rejected transition is a 409 with
// the unchanged snapshot.
func (s *Server) handleIntent(intent func(ctx context.Context) bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		accepted := intent(r.Context())
		status := http.StatusOK
		if !accepted {
			status = http.StatusConflict
		}
		writeJSON(w, status, intentResponse{Accepted: accepted, Snapshot: s.controller.Snapshot()})
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}
