package server

import (
	"context"
	"errors"
	"expvar"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/rezonia/xrechnung-generator/internal/generator"
	"github.com/rezonia/xrechnung-generator/internal/inspect"
	"github.com/rezonia/xrechnung-generator/internal/metrics"
	"github.com/rezonia/xrechnung-generator/internal/model"
	"github.com/rezonia/xrechnung-generator/internal/validation"
)

// RequestIDHeader carries the request ID in both directions
const RequestIDHeader = "X-Request-ID"

const requestIDKey = "request_id"

// Config holds server configuration
type Config struct {
	Address      string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	MaxBodyBytes int64
	Debug        bool
	Logger       *slog.Logger
}

// Server represents the HTTP API server
type Server struct {
	config    *Config
	router    *gin.Engine
	validator validation.Validator
	logger    *slog.Logger
}

// NewServer creates a new API server
func NewServer(config *Config) *Server {
	if !config.Debug {
		gin.SetMode(gin.ReleaseMode)
	}

	logger := config.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	router := gin.New()
	router.Use(gin.Recovery())
	if config.Debug {
		router.Use(gin.Logger())
	}
	router.Use(requestID(logger))

	s := &Server{
		config:    config,
		router:    router,
		validator: validation.New(),
		logger:    logger,
	}

	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	s.router.GET("/health", s.handleHealth)
	s.router.GET("/debug/vars", gin.WrapH(expvar.Handler()))

	v1 := s.router.Group("/api/v1")
	{
		v1.POST("/generate", s.handleGenerate)
		v1.POST("/validate", s.handleValidate)
		v1.POST("/inspect", s.handleInspect)
	}
}

// Run starts the HTTP server and shuts it down gracefully when ctx is done
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:         s.config.Address,
		Handler:      s.router,
		ReadTimeout:  s.config.ReadTimeout,
		WriteTimeout: s.config.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	s.logger.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Handler returns the http.Handler for use with custom servers
func (s *Server) Handler() http.Handler {
	return s.router
}

func requestID(logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(RequestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		c.Set(requestIDKey, id)
		c.Header(RequestIDHeader, id)

		start := time.Now()
		c.Next()

		logger.Debug("request handled",
			"request_id", id,
			"method", c.Request.Method,
			"path", c.FullPath(),
			"status", c.Writer.Status(),
			"latency", time.Since(start),
		)
	}
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "ok",
		"time":   time.Now().UTC().Format(time.RFC3339),
	})
}

func (s *Server) handleGenerate(c *gin.Context) {
	inv, ok := s.decodeInvoice(c)
	if !ok {
		return
	}

	g, err := generator.New(inv,
		generator.WithValidator(s.validator),
		generator.WithLogger(s.logger.With(requestIDKey, c.GetString(requestIDKey))),
	)
	if err != nil {
		var verrs model.ValidationErrors
		switch {
		case errors.As(err, &verrs):
			metrics.Inc(metrics.ValidationFailedTotal)
			c.JSON(http.StatusUnprocessableEntity, ErrorResponse{Error: verrs.Error(), Fields: verrs})
		case errors.Is(err, model.ErrContractViolation):
			c.JSON(http.StatusUnprocessableEntity, ErrorResponse{Error: err.Error()})
		default:
			s.logger.Error("generate failed", requestIDKey, c.GetString(requestIDKey), "error", err)
			c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "failed to generate invoice"})
		}
		return
	}

	metrics.Inc(metrics.GeneratedTotal)
	c.Header("X-Invoice-ID", g.InvoiceID())
	c.Data(http.StatusOK, generator.MIMEType, g.Bytes())
}

func (s *Server) handleValidate(c *gin.Context) {
	inv, ok := s.decodeInvoice(c)
	if !ok {
		return
	}

	err := s.validator.Validate(inv)
	if err == nil {
		c.JSON(http.StatusOK, ValidationResponse{Valid: true, Errors: []*model.ValidationError{}})
		return
	}

	var verrs model.ValidationErrors
	if !errors.As(err, &verrs) {
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: err.Error()})
		return
	}

	metrics.Inc(metrics.ValidationFailedTotal)
	c.JSON(http.StatusOK, ValidationResponse{Valid: false, Errors: verrs})
}

func (s *Server) handleInspect(c *gin.Context) {
	body, ok := s.readBody(c)
	if !ok {
		return
	}

	if !inspect.LooksLikeInvoice(body) {
		c.JSON(http.StatusUnprocessableEntity, ErrorResponse{Error: "not a UBL invoice document"})
		return
	}

	summary, err := inspect.Read(body)
	if err != nil {
		c.JSON(http.StatusUnprocessableEntity, ErrorResponse{Error: err.Error()})
		return
	}

	metrics.Inc(metrics.InspectedTotal)
	c.JSON(http.StatusOK, summary)
}

// decodeInvoice reads the request body as a JSON invoice and writes a
// 400 response when that fails
func (s *Server) decodeInvoice(c *gin.Context) (*model.Invoice, bool) {
	body, ok := s.readBody(c)
	if !ok {
		return nil, false
	}

	inv, err := model.DecodeJSON(body)
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid invoice JSON", Details: err.Error()})
		return nil, false
	}
	return inv, true
}

func (s *Server) readBody(c *gin.Context) ([]byte, bool) {
	if s.config.MaxBodyBytes > 0 {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, s.config.MaxBodyBytes)
	}

	body, err := c.GetRawData()
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			c.JSON(http.StatusRequestEntityTooLarge, ErrorResponse{Error: "request body too large"})
			return nil, false
		}
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "failed to read request body"})
		return nil, false
	}

	if len(body) == 0 {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "empty request body"})
		return nil, false
	}
	return body, true
}
