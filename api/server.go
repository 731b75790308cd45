package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	swaggoFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/havenhealth/ops-engine/api/handlers"
	"github.com/havenhealth/ops-engine/api/middleware"
	"github.com/havenhealth/ops-engine/api/websocket"
	_ "github.com/havenhealth/ops-engine/docs"
	"github.com/havenhealth/ops-engine/internal/alerting"
	"github.com/havenhealth/ops-engine/internal/auth"
	"github.com/havenhealth/ops-engine/internal/engine"
	"github.com/havenhealth/ops-engine/internal/telemetry"
	"github.com/havenhealth/ops-engine/pkg/config"
	"github.com/havenhealth/ops-engine/pkg/database"
	"github.com/havenhealth/ops-engine/pkg/database/queries"
	"github.com/havenhealth/ops-engine/pkg/models"
)

// Deps carries the runtime components the API surfaces.
type Deps struct {
	DB     *database.DB
	Engine *engine.Engine
	Alerts *alerting.Manager
	Source telemetry.Source
	Events <-chan *models.Event
}

type Server struct {
	router      *gin.Engine
	httpServer  *http.Server
	config      config.APIConfig
	deps        Deps
	authService *auth.Service
	wsHub       *websocket.Hub
	wsBridge    *websocket.EventBridge
}

func NewServer(cfg config.APIConfig, wsCfg *config.WebSocketConfig, deps Deps) *Server {
	if cfg.JWTSecret == "" || cfg.JWTSecret == "change-me-in-production" {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	jwtDuration := cfg.JWTDuration
	if jwtDuration == 0 {
		jwtDuration = 24 * time.Hour
	}

	router := gin.New()
	authService := auth.NewService(cfg.JWTSecret, jwtDuration)
	wsHub := websocket.NewHub(wsCfg)

	s := &Server{
		router:      router,
		config:      cfg,
		deps:        deps,
		authService: authService,
		wsHub:       wsHub,
	}

	s.setupMiddleware()
	s.setupRoutes()

	// Start WebSocket hub
	go wsHub.Run()

	// Forward engine events to WebSocket clients
	if deps.Events != nil {
		s.wsBridge = websocket.NewEventBridge(wsHub, deps.Events)
		s.wsBridge.Start()
	}

	return s
}

// maxRequestBody caps request payloads. The largest legitimate body is
// a login request; 1 MiB leaves generous headroom.
const maxRequestBody = 1 << 20

func (s *Server) setupMiddleware() {
	s.router.Use(gin.Recovery())
	s.router.Use(middleware.SecurityHeaders())
	s.router.Use(middleware.RequestSizeLimit(maxRequestBody))
	s.router.Use(middleware.CORS(s.corsConfig()))
	s.router.Use(middleware.RequestLogger())
	s.router.Use(middleware.TraceID())

	rateLimiter := middleware.NewRateLimiter(s.config.RateLimit, time.Minute)
	s.router.Use(middleware.RateLimit(rateLimiter))
}

// corsConfig narrows the default CORS policy with whatever api.cors
// sets; unset fields keep their defaults.
func (s *Server) corsConfig() middleware.CORSConfig {
	cfg := middleware.DefaultCORSConfig()
	if len(s.config.CORS.AllowedOrigins) > 0 {
		cfg.AllowOrigins = s.config.CORS.AllowedOrigins
	}
	if len(s.config.CORS.AllowedMethods) > 0 {
		cfg.AllowMethods = s.config.CORS.AllowedMethods
	}
	if len(s.config.CORS.AllowedHeaders) > 0 {
		cfg.AllowHeaders = s.config.CORS.AllowedHeaders
	}
	if len(s.config.CORS.ExposedHeaders) > 0 {
		cfg.ExposeHeaders = s.config.CORS.ExposedHeaders
	}
	cfg.AllowCredentials = cfg.AllowCredentials || s.config.CORS.AllowCredentials
	return cfg
}

func (s *Server) setupRoutes() {
	var userRepo *queries.UserRepository
	if s.deps.DB != nil {
		userRepo = queries.NewUserRepository(s.deps.DB.DB)
	}

	// Handlers
	healthHandler := handlers.NewHealthHandler(s.deps.DB, s.deps.Source)
	authHandler := handlers.NewAuthHandler(userRepo, s.authService)
	predictionHandler := handlers.NewPredictionHandler(s.deps.Engine)
	alertHandler := handlers.NewAlertHandler(s.deps.Alerts)
	historyHandler := handlers.NewHistoryHandler(s.deps.Engine, s.config.DefaultLimit, s.config.MaxLimit)

	// Public routes
	s.router.GET("/health", healthHandler.Health)
	s.router.GET("/health/ready", healthHandler.Ready)
	s.router.GET("/health/live", healthHandler.Live)

	// Auth routes
	s.router.POST("/auth/login", middleware.AuthRateLimiter(), authHandler.Login)

	// WebSocket route
	s.router.GET("/ws", websocket.ServeWebSocket(s.wsHub))

	// Swagger documentation
	s.router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggoFiles.Handler))

	// Write endpoints trigger engine work; cap them tighter than the
	// global limit.
	endpointLimiter := middleware.NewEndpointRateLimiter()
	endpointLimiter.AddEndpoint("/predictions/refresh", 10, time.Minute)
	endpointLimiter.AddEndpoint("/alerts/:id/recommendations/:recId/execute", 20, time.Minute)

	// Protected routes
	protected := s.router.Group("/")
	protected.Use(middleware.JWTAuth(s.authService))
	protected.Use(endpointLimiter.Middleware())
	{
		// Auth
		protected.GET("/auth/me", authHandler.Me)

		// Predictions
		protected.GET("/predictions", predictionHandler.List)
		protected.POST("/predictions/refresh", predictionHandler.Refresh)
		protected.GET("/predictions/:resource", predictionHandler.Get)

		// Alerts
		protected.GET("/alerts", alertHandler.List)
		protected.GET("/alerts/:id", alertHandler.Get)
		protected.POST("/alerts/:id/ack", alertHandler.Acknowledge)
		protected.POST("/alerts/:id/resolve", alertHandler.Resolve)
		protected.POST("/alerts/:id/recommendations/:recId/execute", alertHandler.Execute)

		// History
		protected.GET("/history", historyHandler.List)
	}
}

func (s *Server) Start() error {
	addr := fmt.Sprintf(":%d", s.config.Port)

	s.httpServer = &http.Server{
		Addr:         addr,
		Handler:      s.router,
		ReadTimeout:  s.config.ReadTimeout,
		WriteTimeout: s.config.WriteTimeout,
		IdleTimeout:  60 * time.Second,
	}

	return s.httpServer.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	// Stop the event bridge first
	if s.wsBridge != nil {
		s.wsBridge.Stop()
	}

	if s.httpServer == nil {
		return nil
	}
	return s.httpServer.Shutdown(ctx)
}

func (s *Server) Router() *gin.Engine {
	return s.router
}

func (s *Server) WebSocketHub() *websocket.Hub {
	return s.wsHub
}
