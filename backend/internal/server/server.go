package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"

	"fitgraph/backend/internal/agent"
	"fitgraph/backend/internal/graph"
	"go.uber.org/zap"
)

// FitService is the feedback and fit-risk pipeline
type FitService interface {
	ProcessFeedback(ctx context.Context, userID, productID, text string) (*agent.FeedbackOutcome, error)
	CheckFitRisk(ctx context.Context, userID, productID string) (*graph.Verdict, error)
}

// CatalogReader serves read-only graph lookups
type CatalogReader interface {
	ListProducts(ctx context.Context) ([]graph.Product, error)
	GetUserConstraints(ctx context.Context, userID string) ([]string, error)
}

// Server exposes the fit pipeline over HTTP
type Server struct {
	service  FitService
	catalog  CatalogReader
	metrics  *Metrics
	registry *prometheus.Registry
	logger   *zap.Logger
}

// New creates a server with its own metrics registry
func New(service FitService, catalog CatalogReader, log *zap.Logger) (*Server, error) {
	registry := prometheus.NewRegistry()
	metrics, err := NewMetrics(registry)
	if err != nil {
		return nil, err
	}
	return &Server{
		service:  service,
		catalog:  catalog,
		metrics:  metrics,
		registry: registry,
		logger:   log,
	}, nil
}

type feedbackRequest struct {
	UserID    string `json:"user_id" binding:"required"`
	ProductID string `json:"product_id" binding:"required"`
	Text      string `json:"text" binding:"required"`
}

// Router builds the gin engine
func (s *Server) Router() *gin.Engine {
	router := gin.New()
	router.Use(requestID())
	router.Use(ginLogger(s.logger, s.metrics))
	router.Use(gin.Recovery())

	// Health check
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{})))

	api := router.Group("/api")
	{
		api.POST("/feedback", s.handleFeedback)
		api.GET("/users/:id/fit-risk", s.handleFitRisk)
		api.GET("/users/:id/constraints", s.handleConstraints)
		api.GET("/products", s.handleProducts)
	}

	return router
}

func (s *Server) handleFeedback(c *gin.Context) {
	var req feedbackRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	outcome, err := s.service.ProcessFeedback(c.Request.Context(), req.UserID, req.ProductID, req.Text)
	if err != nil {
		s.logger.Error("Failed to process feedback", zap.String("user_id", req.UserID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to process feedback"})
		return
	}

	s.metrics.observeInsight(outcome.Insight.Source, outcome.Stored)
	c.JSON(http.StatusOK, outcome)
}

func (s *Server) handleFitRisk(c *gin.Context) {
	userID := c.Param("id")
	productID := c.Query("product_id")
	if productID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "product_id is required"})
		return
	}

	verdict, err := s.service.CheckFitRisk(c.Request.Context(), userID, productID)
	if err != nil {
		s.logger.Error("Failed to check fit risk", zap.String("user_id", userID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to check fit risk"})
		return
	}

	s.metrics.observeVerdict(verdict.Blocked)
	c.JSON(http.StatusOK, verdict)
}

func (s *Server) handleConstraints(c *gin.Context) {
	userID := c.Param("id")
	constraints, err := s.catalog.GetUserConstraints(c.Request.Context(), userID)
	if err != nil {
		s.logger.Error("Failed to fetch constraints", zap.String("user_id", userID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch constraints"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"user_id": userID, "constraints": constraints})
}

func (s *Server) handleProducts(c *gin.Context) {
	products, err := s.catalog.ListProducts(c.Request.Context())
	if err != nil {
		s.logger.Error("Failed to list products", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list products"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"products": products})
}

// Run serves on addr until ctx is cancelled, then shuts down within 5s
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:    addr,
		Handler: s.Router(),
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		s.logger.Info("Server started", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		s.logger.Info("Shutting down server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	return g.Wait()
}
