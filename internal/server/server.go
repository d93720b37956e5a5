package server

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/ppiankov/truthlens/internal/model"
	"github.com/ppiankov/truthlens/internal/pipeline"
	"github.com/ppiankov/truthlens/internal/worker"
)

// MsgInvalidBody is returned for requests that are not a JSON object
const MsgInvalidBody = "Request body must be a JSON object"

// Server is the HTTP entry point
type Server struct {
	engine   *gin.Engine
	analyzer worker.Analyzer
	cfg      model.ServerConfig
	logger   *slog.Logger
	now      func() time.Time
}

type analyzeRequest struct {
	Content string `json:"content"`
	URL     string `json:"url"`
}

// New creates a server routing requests to analyzer
func New(analyzer worker.Analyzer, cfg model.ServerConfig, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	if cfg.Addr == "" {
		cfg.Addr = ":5000"
	}

	s := &Server{
		analyzer: analyzer,
		cfg:      cfg,
		logger:   logger.With("component", "server"),
		now:      time.Now,
	}

	g := gin.New()
	g.Use(gin.Logger(), gin.Recovery())
	s.attachRoutes(g)
	s.engine = g
	return s
}

func (s *Server) attachRoutes(r *gin.Engine) {
	origins := s.cfg.AllowedOrigins
	corsCfg := cors.Config{
		AllowMethods:  []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type"},
		ExposeHeaders: []string{"Content-Length"},
		MaxAge:        12 * time.Hour,
	}
	if len(origins) == 0 || (len(origins) == 1 && origins[0] == "*") {
		corsCfg.AllowAllOrigins = true
	} else {
		corsCfg.AllowOrigins = origins
	}
	r.Use(cors.New(corsCfg))

	r.GET("/health", s.health)

	api := r.Group("/api")
	api.Use(s.limitBody())
	{
		api.POST("/analyze", s.analyze)
	}
}

// Handler returns the HTTP handler
func (s *Server) Handler() http.Handler {
	return s.engine
}

// Run serves until ctx is cancelled, then shuts down gracefully
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.cfg.Addr,
		Handler:           s.engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("listening", "addr", s.cfg.Addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		s.logger.Info("shutting down")
		return srv.Shutdown(shutdownCtx)
	}
}

func (s *Server) limitBody() gin.HandlerFunc {
	limit := s.cfg.MaxBodyBytes
	return func(c *gin.Context) {
		if limit > 0 {
			c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, limit)
		}
		c.Next()
	}
}

func (s *Server) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "OK",
		"timestamp": s.now().UTC().Format(time.RFC3339),
	})
}

func (s *Server) analyze(c *gin.Context) {
	var req analyzeRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "Request body too large"})
			return
		}
		c.JSON(http.StatusBadRequest, gin.H{"error": MsgInvalidBody})
		return
	}

	result, err := s.analyzer.Analyze(c.Request.Context(), model.AnalysisRequest{
		Content: req.Content,
		URL:     req.URL,
	})
	if err != nil {
		msg, isInput := pipeline.PublicMessage(err)
		if isInput {
			c.JSON(http.StatusBadRequest, gin.H{"error": msg})
			return
		}
		s.logger.Error("analysis failed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": msg})
		return
	}

	c.JSON(http.StatusOK, result)
}
