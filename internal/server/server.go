package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/matzehuels/claimgraph/pkg/explore"
	"github.com/matzehuels/claimgraph/pkg/fetch"
	"github.com/matzehuels/claimgraph/pkg/layout"
	"github.com/matzehuels/claimgraph/pkg/render/nodelink"
	"github.com/matzehuels/claimgraph/pkg/style"
)

// Defaults for [Config].
const (
	DefaultAddr     = ":8080"
	DefaultViewTTL  = 30 * time.Minute
	DefaultMaxViews = 256

	requestTimeout = 60 * time.Second
	maxBodyBytes   = 1 << 20
)

// Config holds server configuration.
type Config struct {
	Addr            string
	AllowAllOrigins bool     // allow all CORS origins (dev mode)
	AllowedOrigins  []string // used when AllowAllOrigins is false
	ViewTTL         time.Duration
	MaxViews        int
}

// StrategyFunc builds the layout strategy for a kind.
type StrategyFunc func(kind layout.Kind) (layout.Strategy, error)

// SVGFunc renders DOT source to SVG.
type SVGFunc func(ctx context.Context, dot string) ([]byte, error)

// Option configures a [Server].
type Option func(*Server)

// WithExploreOptions sets the limits, page size and merge policy of new views.
func WithExploreOptions(o explore.Options) Option {
	return func(s *Server) { s.explore = o }
}

// WithStrategies sets how layout names are turned into strategies.
func WithStrategies(fn StrategyFunc) Option {
	return func(s *Server) {
		if fn != nil {
			s.strategies = fn
		}
	}
}

// WithResolver sets the style resolver shared by all views.
func WithResolver(r *style.Resolver) Option {
	return func(s *Server) {
		if r != nil {
			s.resolver = r
		}
	}
}

// WithSVG sets the SVG renderer.
func WithSVG(fn SVGFunc) Option {
	return func(s *Server) {
		if fn != nil {
			s.svg = fn
		}
	}
}

// WithLogger sets the server logger.
func WithLogger(l *log.Logger) Option {
	return func(s *Server) {
		if l != nil {
			s.logger = l
		}
	}
}

// Server serves exploration views.
type Server struct {
	cfg        Config
	src        fetch.Source
	explore    explore.Options
	strategies StrategyFunc
	resolver   *style.Resolver
	svg        SVGFunc
	logger     *log.Logger

	views      *registry
	router     chi.Router
	httpServer *http.Server
}

// New creates a server that loads graphs from src.
func New(cfg Config, src fetch.Source, opts ...Option) *Server {
	if cfg.Addr == "" {
		cfg.Addr = DefaultAddr
	}
	if cfg.ViewTTL <= 0 {
		cfg.ViewTTL = DefaultViewTTL
	}
	if cfg.MaxViews <= 0 {
		cfg.MaxViews = DefaultMaxViews
	}
	s := &Server{
		cfg:     cfg,
		src:     src,
		explore: explore.DefaultOptions(),
		strategies: func(kind layout.Kind) (layout.Strategy, error) {
			return layout.New(kind, layout.Options{})
		},
		resolver: style.Default(),
		svg:      nodelink.RenderSVG,
		logger:   log.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.views = newRegistry(cfg.MaxViews, s.logger)
	s.router = s.buildRouter()
	return s
}

func (s *Server) buildRouter() chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger(s.logger))
	r.Use(middleware.Recoverer)

	corsOpts := cors.Options{
		AllowedOrigins:   []string{"http://localhost:*", "http://127.0.0.1:*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}
	if len(s.cfg.AllowedOrigins) > 0 {
		corsOpts.AllowedOrigins = s.cfg.AllowedOrigins
	}
	if s.cfg.AllowAllOrigins {
		corsOpts.AllowedOrigins = []string{"*"}
		corsOpts.AllowCredentials = false
	}
	r.Use(cors.Handler(corsOpts))

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/api", func(r chi.Router) {
		r.Get("/version", s.handleVersion)

		r.Group(func(r chi.Router) {
			r.Use(middleware.Timeout(requestTimeout))
			r.Post("/views", s.handleCreateView)
		})

		r.Route("/views/{viewID}", func(r chi.Router) {
			r.Use(s.withView)

			// The stream outlives any request timeout.
			r.Get("/ws", s.handleStream)

			r.Group(func(r chi.Router) {
				r.Use(middleware.Timeout(requestTimeout))
				r.Get("/", s.handleGetView)
				r.Delete("/", s.handleDeleteView)
				r.Put("/layout", s.handleSetLayout)
				r.Post("/nodes/{nodeID}/expand", s.handleExpand)
				r.Post("/gestures", s.handleGesture)
				r.Get("/dot", s.handleDOT)
				r.Get("/svg", s.handleSVG)
			})
		})
	})

	return r
}

// Router returns the HTTP handler.
func (s *Server) Router() chi.Router { return s.router }

// Views returns the number of open views.
func (s *Server) Views() int { return s.views.len() }

// Start listens on the configured address until ctx is canceled, then
// shuts down gracefully and closes every view.
func (s *Server) Start(ctx context.Context) error {
	s.httpServer = &http.Server{
		Addr:              s.cfg.Addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	go s.sweep(ctx)

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("claimgraph server listening", "addr", s.cfg.Addr)
		errCh <- s.httpServer.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		s.views.closeAll()
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return s.Shutdown(shutdownCtx)
	}
}

// Shutdown stops accepting requests and closes every view.
func (s *Server) Shutdown(ctx context.Context) error {
	defer s.views.closeAll()
	if s.httpServer != nil {
		return s.httpServer.Shutdown(ctx)
	}
	return nil
}

// sweep closes views idle for longer than the configured TTL.
func (s *Server) sweep(ctx context.Context) {
	ticker := time.NewTicker(s.cfg.ViewTTL / 4)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			if n := s.views.expire(now.Add(-s.cfg.ViewTTL)); n > 0 {
				s.logger.Info("closed idle views", "count", n)
			}
		}
	}
}

// requestLogger logs each request with its status and duration.
func requestLogger(logger *log.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()
			next.ServeHTTP(ww, r)
			logger.Debug("request",
				"method", r.Method,
				"path", r.URL.Path,
				"status", ww.Status(),
				"duration", time.Since(start),
				"request_id", middleware.GetReqID(r.Context()))
		})
	}
}
