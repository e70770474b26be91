// Package server is the reference Brain AI backend. It serves the
// /api/v1/brain-ai endpoints from an engine.Engine over gin.
package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/abhisek/brainkit/internal/config"
	"github.com/abhisek/brainkit/internal/engine"
)

const shutdownTimeout = 10 * time.Second

// Server is the HTTP front of an engine.
type Server struct {
	engine   *engine.Engine
	cfg      config.ServerConfig
	logger   *zap.Logger
	registry *prometheus.Registry
	router   *gin.Engine
}

// Option configures a Server.
type Option func(*Server)

func WithLogger(l *zap.Logger) Option {
	return func(s *Server) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithRegistry exposes metrics from reg instead of a private registry.
func WithRegistry(reg *prometheus.Registry) Option {
	return func(s *Server) { s.registry = reg }
}

// New builds the router. An empty JWTSecret disables authentication and a
// zero request rate disables rate limiting.
func New(eng *engine.Engine, cfg config.ServerConfig, opts ...Option) *Server {
	s := &Server{
		engine: eng,
		cfg:    cfg,
		logger: zap.NewNop(),
	}
	for _, o := range opts {
		o(s)
	}
	if s.registry == nil {
		s.registry = prometheus.NewRegistry()
	}
	if cfg.Mode != "" {
		gin.SetMode(cfg.Mode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(Trace())
	r.Use(RequestLogger(s.logger))
	r.Use(NewMetrics(s.registry).Middleware())
	r.NoRoute(func(c *gin.Context) {
		respondError(c, http.StatusNotFound, CodeNotFound, errors.New("resource not found"))
	})
	s.router = r
	s.registerRoutes()
	return s
}

// Handler returns the server's http.Handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Run serves on the configured address until ctx is cancelled, then shuts
// down gracefully.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.cfg.Addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("server listening", zap.String("addr", s.cfg.Addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	s.logger.Info("server shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func (s *Server) registerRoutes() {
	s.router.GET("/healthz", s.health)
	s.router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{})))

	api := s.router.Group("/api/v1/brain-ai")
	api.Use(RateLimiter(s.cfg.RateLimit.RequestsPerSecond, s.cfg.RateLimit.Burst))
	if s.cfg.JWTSecret != "" {
		api.Use(RequireJWT(s.cfg.JWTSecret))
	}
	{
		api.GET("/recommendations", s.recommendations)
		api.POST("/recommendations/interact", s.recordInteraction)
		api.POST("/recommendations/skill-based", s.skillRecommendations)
		api.POST("/learning-path", s.learningPath)
		api.PUT("/learning-path", s.updateLearningPath)
		api.GET("/learning-path/:id/status", s.learningPathStatus)
		api.GET("/analytics", s.analytics)
		api.POST("/analytics/engagement", s.recordEngagement)
		api.POST("/search", s.search)
		api.POST("/search/suggestions", s.suggestions)
		api.POST("/tutor", s.tutor)
		api.POST("/skills/assess", s.assess)
		api.GET("/skills/gap-analysis", s.skillGap)
		api.POST("/content/summarize", s.summarize)
		api.POST("/content/concepts", s.concepts)
		api.POST("/content/quiz", s.quiz)
	}
}
