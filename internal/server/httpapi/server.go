// Package httpapi exposes the broker's operations over a JSON REST API:
// batch credential issuance, credential renewal, upload confirmation, and
// the confirmed-files manifest.
package httpapi

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/ameledin/studiovault/internal/common"
	"github.com/ameledin/studiovault/internal/logging"
	"github.com/ameledin/studiovault/internal/server/services"
)

// Service is the domain surface the API exposes.
type Service interface {
	IssueCredentials(ctx context.Context, collectionID string, files []services.FileSpec) (*services.CredentialBatch, error)
	RenewCredential(ctx context.Context, collectionID, key string) (*services.IssuedCredential, error)
	ConfirmBatch(ctx context.Context, collectionID, batchToken string, claims []services.Claim) (*services.ConfirmVerdict, error)
	Manifest(ctx context.Context, collectionID string) ([]services.ManifestEntry, error)
}

type Server struct {
	engine     *gin.Engine
	httpServer *http.Server
	service    Service
	log        logging.Logger
}

func NewServer(addr string, service Service, log logging.Logger) *Server {
	gin.SetMode(gin.ReleaseMode)

	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.Use(requestLogger(log))

	corsConfig := cors.DefaultConfig()
	corsConfig.AllowAllOrigins = true
	corsConfig.AllowMethods = []string{"GET", "POST", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", common.BatchTokenHeaderName}
	engine.Use(cors.New(corsConfig))

	s := &Server{
		engine:  engine,
		service: service,
		log:     log,
		httpServer: &http.Server{
			Addr:         addr,
			Handler:      engine,
			ReadTimeout:  30 * time.Second,
			WriteTimeout: 30 * time.Second,
		},
	}
	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	s.engine.GET("/ping", s.handlePing)

	api := s.engine.Group("/api/v1")
	collections := api.Group("/collections/:id")
	{
		collections.POST("/credentials", s.handleIssueCredentials)
		collections.POST("/credentials/renew", s.handleRenewCredential)
		collections.POST("/confirm", s.handleConfirm)
		collections.GET("/manifest", s.handleManifest)
	}
}

// Run serves until the listener fails or Shutdown is called.
func (s *Server) Run() error {
	s.log.Info(context.Background(), "http api listening", "addr", s.httpServer.Addr)
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// requestLogger logs one line per request with method, path, status and
// latency.
func requestLogger(log logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		log.Info(c.Request.Context(), "request",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"duration", time.Since(start).String(),
		)
	}
}
