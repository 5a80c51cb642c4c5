package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"

	"github.com/alexanderramin/strengthscope/internal/metrics"
	"github.com/alexanderramin/strengthscope/internal/render"
	"github.com/alexanderramin/strengthscope/internal/service"
)

const shutdownTimeout = 10 * time.Second

// Config holds listener and document settings for the HTTP API.
type Config struct {
	Addr        string
	CORSOrigins []string
	// FontPath enables PDF downloads. Without it the PDF route answers 503.
	FontPath     string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	// NarrativeTimeout is the bound on one narrative call. The effective
	// write timeout never drops below it plus writeMargin.
	NarrativeTimeout time.Duration
}

// writeMargin covers scoring, rendering and writing once the narrative
// call has returned.
const writeMargin = 30 * time.Second

// EffectiveWriteTimeout is the write timeout the listener uses: WriteTimeout,
// raised when needed so a report request outlives its narrative call.
func (c Config) EffectiveWriteTimeout() time.Duration {
	if c.NarrativeTimeout <= 0 {
		return c.WriteTimeout
	}
	return max(c.WriteTimeout, c.NarrativeTimeout+writeMargin)
}

// DefaultConfig returns a local listener with permissive CORS. The write
// timeout leaves room for one narrative call at the default 90s bound.
func DefaultConfig() Config {
	return Config{
		Addr:         ":8080",
		CORSOrigins:  []string{"*"},
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 120 * time.Second,
	}
}

// Server exposes the assessment service over HTTP.
type Server struct {
	cfg       Config
	svc       service.AssessmentService
	metrics   *metrics.Metrics
	gatherer  prometheus.Gatherer
	logger    *slog.Logger
	renderers map[render.Format]render.Renderer
	pdfErr    error
	engine    *gin.Engine
}

// Option configures a Server.
type Option func(*Server)

// WithMetrics records request metrics and serves gatherer on /metrics.
func WithMetrics(m *metrics.Metrics, gatherer prometheus.Gatherer) Option {
	return func(s *Server) {
		s.metrics = m
		s.gatherer = gatherer
	}
}

// WithLogger sets the request logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Server) { s.logger = l }
}

// New builds the router. A configured but unusable font is a startup error.
func New(svc service.AssessmentService, cfg Config, opts ...Option) (*Server, error) {
	s := &Server{
		cfg:    cfg,
		svc:    svc,
		logger: slog.New(slog.DiscardHandler),
		renderers: map[render.Format]render.Renderer{
			render.FormatMarkdown: render.Markdown{},
			render.FormatHTML:     render.NewHTML(),
			render.FormatJSON:     render.JSON{Indent: true},
		},
	}
	for _, o := range opts {
		o(s)
	}

	if cfg.FontPath != "" {
		pdf, err := render.NewPDF(cfg.FontPath)
		if err != nil {
			return nil, err
		}
		s.renderers[render.FormatPDF] = pdf
	} else {
		s.pdfErr = render.ErrFontRequired
	}

	s.engine = s.routes()
	return s, nil
}

// Handler returns the root HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.engine
}

func (s *Server) routes() *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.Use(requestLogger(s.logger))
	engine.Use(requestMetrics(s.metrics))

	corsConfig := cors.DefaultConfig()
	if len(s.cfg.CORSOrigins) == 0 || (len(s.cfg.CORSOrigins) == 1 && s.cfg.CORSOrigins[0] == "*") {
		corsConfig.AllowAllOrigins = true
	} else {
		corsConfig.AllowOrigins = s.cfg.CORSOrigins
	}
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Accept"}
	corsConfig.ExposeHeaders = []string{"Content-Disposition"}
	engine.Use(cors.New(corsConfig))

	engine.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	if s.gatherer != nil {
		engine.GET("/metrics", gin.WrapH(promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{})))
	}

	api := engine.Group("/api")
	api.GET("/editions", s.listEditions)
	api.POST("/sessions", s.startSession)
	api.GET("/sessions/:id", s.getSession)
	api.PUT("/sessions/:id/answers", s.saveAnswers)
	api.POST("/sessions/:id/report", s.generateReport)
	api.GET("/sessions/:id/report", s.lastReport)
	for _, f := range []render.Format{render.FormatPDF, render.FormatHTML, render.FormatMarkdown, render.FormatJSON} {
		api.GET("/sessions/:id/report."+string(f), s.downloadReport(f))
	}
	return engine
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:         s.cfg.Addr,
		Handler:      s.engine,
		ReadTimeout:  s.cfg.ReadTimeout,
		WriteTimeout: s.cfg.EffectiveWriteTimeout(),
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		s.logger.Info("http server listening", "addr", s.cfg.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		s.logger.Info("http server shutting down")
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}
