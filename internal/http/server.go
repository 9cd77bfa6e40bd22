package http

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	cardHTTP "github.com/epiccms/cardvault/internal/card/http"
	"github.com/epiccms/cardvault/internal/config"
	"github.com/epiccms/cardvault/internal/metrics"
	payloadHTTP "github.com/epiccms/cardvault/internal/payload/http"
	payloadUseCase "github.com/epiccms/cardvault/internal/payload/usecase"
)

// envelopeSkipPaths lists path prefixes exempt from the encryption envelope
// middlewares. Key issuance must stay in the clear (the client has no session
// yet) and operational endpoints are never encrypted.
var envelopeSkipPaths = []string{
	"/v1/encryption",
	"/health",
	"/ready",
}

// Server represents the HTTP API server.
type Server struct {
	server            *http.Server
	router            *gin.Engine
	cleanupCancel     context.CancelFunc
	cfg               *config.Config
	logger            *slog.Logger
	metricsProvider   *metrics.Provider
	payloadCodec      payloadUseCase.PayloadCodec
	encryptionHandler *payloadHTTP.EncryptionHandler
	cardHandler       *cardHTTP.CardHandler
}

// NewServer creates a new HTTP API server with all routes and middleware
// configured.
func NewServer(
	cfg *config.Config,
	logger *slog.Logger,
	metricsProvider *metrics.Provider,
	payloadCodec payloadUseCase.PayloadCodec,
	encryptionHandler *payloadHTTP.EncryptionHandler,
	cardHandler *cardHTTP.CardHandler,
) *Server {
	s := &Server{
		cfg:               cfg,
		logger:            logger,
		metricsProvider:   metricsProvider,
		payloadCodec:      payloadCodec,
		encryptionHandler: encryptionHandler,
		cardHandler:       cardHandler,
	}

	// Background work owned by the router (stale rate-limiter cleanup) is
	// bound to this context and stopped on Shutdown.
	cleanupCtx, cleanupCancel := context.WithCancel(context.Background())
	s.cleanupCancel = cleanupCancel

	s.router = s.setupRouter(cleanupCtx)
	s.server = &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.ServerHost, cfg.ServerPort),
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return s
}

// setupRouter builds the Gin engine with the full middleware chain.
//
// Middleware order matters: the response encryption middleware wraps the
// recovery middleware so that panic responses are still sealed (or rejected
// under fail-closed policy) and the session is invalidated, and the request
// decryption middleware runs innermost so handlers always see plaintext.
func (s *Server) setupRouter(cleanupCtx context.Context) *gin.Engine {
	gin.SetMode(s.cfg.GetGinMode())

	router := gin.New()

	router.Use(requestid.New(requestid.WithGenerator(func() string {
		return uuid.Must(uuid.NewV7()).String()
	})))
	router.Use(CustomLoggerMiddleware(s.logger))

	if corsMiddleware := createCORSMiddleware(s.cfg.CORSEnabled, s.cfg.CORSAllowOrigins, s.logger); corsMiddleware != nil {
		router.Use(corsMiddleware)
	}

	if s.metricsProvider != nil {
		router.Use(metrics.HTTPMetricsMiddleware(s.metricsProvider.MeterProvider(), s.cfg.MetricsNamespace))
	}

	if s.cfg.RateLimitEnabled {
		router.Use(RateLimitMiddleware(s.cfg.RateLimitRequestsPerSec, s.cfg.RateLimitBurst, s.logger))
	}

	router.Use(payloadHTTP.ResponseEncryptionMiddleware(
		s.payloadCodec,
		envelopeSkipPaths,
		s.cfg.ResponseEncryptionFailClosed,
		s.logger,
	))
	router.Use(gin.Recovery())
	router.Use(payloadHTTP.RequestDecryptionMiddleware(s.payloadCodec, envelopeSkipPaths, s.logger))

	// Operational endpoints
	router.GET("/health", s.healthHandler)
	router.GET("/ready", s.readinessHandler)

	v1 := router.Group("/v1")

	// Encryption session endpoints (always in the clear)
	encryption := v1.Group("/encryption")
	if s.cfg.RateLimitPublicKeyEnabled {
		encryption.GET("/public-key",
			PublicKeyRateLimitMiddleware(
				cleanupCtx,
				s.cfg.RateLimitPublicKeyRequestsPerSec,
				s.cfg.RateLimitPublicKeyBurst,
				s.logger,
			),
			s.encryptionHandler.PublicKeyHandler,
		)
	} else {
		encryption.GET("/public-key", s.encryptionHandler.PublicKeyHandler)
	}
	encryption.GET("/key-count", s.encryptionHandler.KeyCountHandler)

	// Card number endpoints (covered by the envelope middlewares)
	cardNumbers := v1.Group("/cardnumbers")
	cardNumbers.POST("/storage/encrypt", s.cardHandler.StorageEncryptHandler)
	cardNumbers.POST("/storage/decrypt", s.cardHandler.StorageDecryptHandler)
	cardNumbers.POST("/mask", s.cardHandler.MaskHandler)
	cardNumbers.POST("/reveal", s.cardHandler.RevealHandler)

	// Round-trip diagnostic for client integrations: echoes the decrypted
	// payload back through the response encryption path.
	v1.POST("/echo", s.echoHandler)

	return router
}

// echoHandler returns the request payload unchanged.
func (s *Server) echoHandler(c *gin.Context) {
	var body map[string]any
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "bad_request", "message": "request body must be a JSON object"})
		return
	}
	c.JSON(http.StatusOK, body)
}

// healthHandler reports process liveness.
func (s *Server) healthHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "healthy"})
}

// readinessHandler reports whether the server can serve traffic.
func (s *Server) readinessHandler(c *gin.Context) {
	components := gin.H{
		"encryption_sessions": "ok",
		"card_codec":          "ok",
	}
	ready := true

	if s.payloadCodec == nil {
		components["encryption_sessions"] = "error"
		ready = false
	}
	if s.cardHandler == nil {
		components["card_codec"] = "error"
		ready = false
	}

	if !ready {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status":     "not_ready",
			"components": components,
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":     "ready",
		"components": components,
	})
}

// GetHandler returns the http.Handler for testing purposes.
func (s *Server) GetHandler() http.Handler {
	return s.router
}

// Start starts the HTTP API server.
func (s *Server) Start(ctx context.Context) error {
	s.logger.Info("starting http server", slog.String("addr", s.server.Addr))

	if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("failed to start server: %w", err)
	}

	return nil
}

// Shutdown gracefully shuts down the HTTP API server and stops the router's
// background cleanup work.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("shutting down http server")
	s.cleanupCancel()
	return s.server.Shutdown(ctx)
}
