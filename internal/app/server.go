package app

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"hireboard_backend/internal/application"
	"hireboard_backend/internal/config"
	"hireboard_backend/internal/firebase"
	"hireboard_backend/internal/job"
	"hireboard_backend/internal/middleware"
	platformES "hireboard_backend/internal/platform/elasticsearch"
	"hireboard_backend/internal/shared"
	"hireboard_backend/internal/user"
	"hireboard_backend/internal/webhook"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Server struct holds the dependencies for the HTTP server.
type Server struct {
	httpServer *http.Server
	router     *gin.Engine
	cfg        *config.Config

	// Exposed for cmd/server: the logger for shutdown messages and the ES
	// client for index bootstrap.
	AppLogger *zap.Logger
	DB        *gorm.DB
	ESClient  *platformES.ESClientWrapper

	userHandler        *user.Handler
	jobHandler         *job.Handler
	applicationHandler *application.Handler
	webhookHandler     *webhook.Handler

	authMW gin.HandlerFunc
}

// NewServer creates a new instance of our application server.
func NewServer(
	cfg *config.Config,
	logger *zap.Logger,
	userHandler *user.Handler,
	jobHandler *job.Handler,
	applicationHandler *application.Handler,
	webhookHandler *webhook.Handler,
	db *gorm.DB,
	esClient *platformES.ESClientWrapper,
	firebaseService *firebase.FirebaseService,
	userService shared.Service,
) (*Server, error) {
	gin.SetMode(cfg.GinMode)
	router := gin.New()

	router.Use(middleware.ZapLogger(logger, cfg))
	router.Use(middleware.ErrorHandler(logger))
	router.Use(gin.Recovery())

	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = []string{"*"}
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Accept", "Authorization", middleware.RequestIDHeader}
	corsConfig.AllowCredentials = true
	corsConfig.ExposeHeaders = []string{"Content-Length", middleware.RequestIDHeader}
	router.Use(cors.New(corsConfig))

	authMW := middleware.AuthMiddleware(firebaseService, userService, logger.Named("AuthMiddleware"))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "UP", "message": "Hireboard API is healthy!"})
	})

	// Uploaded resumes are served straight from disk under the public base URL.
	router.Static(cfg.ResumePublicBaseURL, cfg.ResumeStoragePath)

	v1 := router.Group("/api/v1")

	// Webhooks stay outside the session middleware; the shared secret is
	// checked inside the handler.
	webhookHandler.RegisterRoutes(v1)

	userHandler.RegisterRoutes(v1, authMW)
	jobHandler.RegisterRoutes(v1, authMW)
	applicationHandler.RegisterRoutes(v1, authMW)

	addr := fmt.Sprintf("%s:%s", cfg.ServerHost, cfg.ServerPort)
	httpServer := &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	return &Server{
		httpServer:         httpServer,
		router:             router,
		cfg:                cfg,
		AppLogger:          logger,
		DB:                 db,
		ESClient:           esClient,
		userHandler:        userHandler,
		jobHandler:         jobHandler,
		applicationHandler: applicationHandler,
		webhookHandler:     webhookHandler,
		authMW:             authMW,
	}, nil
}

// Router exposes the gin engine, mainly for tests.
func (s *Server) Router() *gin.Engine {
	return s.router
}

func (s *Server) Start() error {
	s.AppLogger.Info("HTTP Server starting",
		zap.String("address", s.httpServer.Addr),
		zap.String("gin_mode", s.cfg.GinMode),
	)
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		s.AppLogger.Error("Failed to start HTTP server", zap.Error(err))
		return err
	}
	s.AppLogger.Info("HTTP Server stopped")
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	s.AppLogger.Info("Attempting graceful server shutdown...")
	return s.httpServer.Shutdown(ctx)
}
