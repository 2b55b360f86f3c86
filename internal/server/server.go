// Package server exposes platform resolution, the download redirect and the
// update controller over HTTP.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/hashicorp/golang-lru/v2/expirable"
	"golang.org/x/sync/errgroup"

	"github.com/qbox-app/qboxup/internal/assets"
	"github.com/qbox-app/qboxup/internal/platform"
	"github.com/qbox-app/qboxup/internal/release"
	"github.com/qbox-app/qboxup/internal/update"
)

// Request signal sources.
const (
	HeaderPlatform = "Sec-CH-UA-Platform"
	HeaderRenderer = "X-GPU-Renderer"
	QueryPlatform  = "platform"
	QueryRenderer  = "renderer"
)

// DefaultCacheTTL is how long the latest release is reused.
const DefaultCacheTTL = 5 * time.Minute

const latestKey = "latest"

// Server serves the HTTP adapter.
type Server struct {
	fetcher    update.LatestFetcher
	controller *update.Controller
	cache      *expirable.LRU[string, *release.Info]
	logger     *slog.Logger
	router     chi.Router
}

// Option configures a Server.
type Option func(*options)

type options struct {
	cacheTTL time.Duration
	logger   *slog.Logger
}

// WithCacheTTL sets how long the latest release is cached.
func WithCacheTTL(d time.Duration) Option {
	return func(o *options) {
		if d > 0 {
			o.cacheTTL = d
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}

// New creates a server. controller may be disabled, in which case every
// /api/update route answers 404.
func New(fetcher update.LatestFetcher, controller *update.Controller, opts ...Option) *Server {
	o := options{
		cacheTTL: DefaultCacheTTL,
		logger:   slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(&o)
	}

	s := &Server{
		fetcher:    fetcher,
		controller: controller,
		cache:      expirable.NewLRU[string, *release.Info](1, nil, o.cacheTTL),
		logger:     o.logger,
	}
	s.router = s.routes()
	return s
}

// Handler returns the root handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.logRequests)
	r.Use(middleware.Recoverer)

	r.Get("/download", s.handleDownload)

	r.Route("/api", func(r chi.Router) {
		r.Get("/platform", s.handlePlatform)
		r.Get("/release", s.handleRelease)

		r.Route("/update", func(r chi.Router) {
			r.Use(s.requireUpdates)
			r.Get("/", s.handleUpdateSnapshot)
			r.Post("/download", s.handleIntent(func(ctx context.Context) bool {
				return s.controller.DownloadUpdate(ctx)
			}))
			r.Post("/install", s.handleIntent(func(ctx context.Context) bool {
				return s.controller.InstallUpdate(ctx)
			}))
			r.Post("/dismiss", s.handleIntent(func(context.Context) bool {
				return s.controller.DismissUpdate()
			}))
		})
	})

	return r
}

// latest returns the cached release, fetching it on a miss. Failed fetches
// are not cached.
func (s *Server) latest(ctx context.Context) *release.Info {
	if info, ok := s.cache.Get(latestKey); ok {
		return info
	}
	info := s.fetcher.FetchLatest(ctx)
	if info != nil {
		s.cache.Add(latestKey, info)
	}
	return info
}

// signalsFrom builds resolution signals from a browser request.
func signalsFrom(r *http.Request) platform.Signals {
	q := r.URL.Query()

	plat := strings.Trim(r.Header.Get(HeaderPlatform), `"`)
	if plat == "" {
		plat = q.Get(QueryPlatform)
	}
	renderer := r.Header.Get(HeaderRenderer)
	if renderer == "" {
		renderer = q.Get(QueryRenderer)
	}

	return platform.Signals{
		UserAgent: r.UserAgent(),
		Platform:  plat,
		Probe:     platform.StaticProbe{Value: renderer},
	}
}

func (s *Server) requireUpdates(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.controller == nil || !s.controller.Enabled() {
			writeError(w, http.StatusNotFound, "updates are not available")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		s.logger.Debug("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"duration", time.Since(start),
			"request_id", middleware.GetReqID(r.Context()))
	})
}

// selectFor resolves the request's platform and picks an asset from info.
func selectFor(r *http.Request, info *release.Info) (platform.Platform, assets.Selection, bool) {
	p := platform.Resolve(signalsFrom(r))
	if info == nil {
		return p, assets.Selection{Platform: p}, false
	}
	sel, ok := assets.Explain(info.Assets, p)
	return p, sel, ok
}

// ShutdownTimeout bounds graceful shutdown in ListenAndServe.
const ShutdownTimeout = 5 * time.Second

// ListenAndServe serves on addr until ctx is cancelled, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", addr, err)
	}
	return s.Serve(ctx, ln)
}

// Serve accepts connections on ln until ctx is cancelled.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		s.logger.Info("listening", "addr", ln.Addr().String())
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("serve: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), ShutdownTimeout)
		defer cancel()
		s.logger.Info("shutting down")
		return srv.Shutdown(shutdownCtx)
	})

	return g.Wait()
}
