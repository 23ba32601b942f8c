package http

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/saradorri/edrewards/internal/domain"
	"github.com/saradorri/edrewards/internal/http/handlers"
	"github.com/saradorri/edrewards/internal/http/middleware"
	"github.com/saradorri/edrewards/internal/infrastructure/auth"
	"github.com/saradorri/edrewards/internal/infrastructure/logger"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"
)

// Handlers groups the route handlers served by the API
type Handlers struct {
	User        *handlers.UserHandler
	Machine     *handlers.MachineHandler
	Payment     *handlers.PaymentHandler
	Ad          *handlers.AdHandler
	Transaction *handlers.TransactionHandler
	Withdrawal  *handlers.WithdrawalHandler
	Admin       *handlers.AdminHandler
}

// Options holds the server settings
type Options struct {
	Address        string
	RequestTimeout time.Duration
	WebhookSecret  string
}

// Server represents the HTTP server
type Server struct {
	router       *gin.Engine
	httpServer   *http.Server
	jwtService   auth.JWTService
	handlers     Handlers
	errorHandler *middleware.ErrorHandler
	opts         Options
	logger       *logger.Logger
}

// NewServer creates a new HTTP server
func NewServer(
	jwtService auth.JWTService,
	h Handlers,
	errorHandler *middleware.ErrorHandler,
	opts Options,
	log *logger.Logger,
) (*Server, error) {
	if err := handlers.RegisterValidators(); err != nil {
		return nil, err
	}
	if opts.RequestTimeout <= 0 {
		opts.RequestTimeout = 30 * time.Second
	}

	gin.SetMode(gin.ReleaseMode)
	router := gin.New()

	router.Use(errorHandler.RequestIDMiddleware())
	router.Use(errorHandler.ErrorHandlerMiddleware())
	router.Use(middleware.LoggerMiddleware(log))
	router.Use(errorHandler.TimeoutMiddleware(opts.RequestTimeout))

	server := &Server{
		router:       router,
		jwtService:   jwtService,
		handlers:     h,
		errorHandler: errorHandler,
		opts:         opts,
		logger:       log.Named("http"),
	}
	server.httpServer = &http.Server{
		Addr:              opts.Address,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	server.setupRoutes()
	return server, nil
}

// Router exposes the gin engine, mainly for tests
func (s *Server) Router() *gin.Engine {
	return s.router
}

// setupRoutes configures all the routes
func (s *Server) setupRoutes() {
	s.router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	s.router.GET("/metrics", gin.WrapH(promhttp.Handler()))
	s.router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	v1 := s.router.Group("/api/v1")
	{
		authRoutes := v1.Group("/auth")
		{
			authRoutes.POST("/login", s.handlers.User.Login)
		}

		webhooks := v1.Group("/webhooks")
		webhooks.Use(middleware.WebhookSecret(s.opts.WebhookSecret))
		{
			webhooks.POST("/payment", s.handlers.Payment.Webhook)
		}

		protected := v1.Group("/")
		protected.Use(middleware.JWTMiddleware(s.jwtService))
		{
			userRoutes := protected.Group("/users")
			{
				userRoutes.GET("/me", s.handlers.User.GetUserInfo)
			}

			notificationRoutes := protected.Group("/notifications")
			{
				notificationRoutes.GET("", s.handlers.User.ListNotifications)
				notificationRoutes.POST("/:id/read", s.handlers.User.MarkNotificationRead)
			}

			machineRoutes := protected.Group("/machines")
			{
				machineRoutes.GET("/types", s.handlers.Machine.ListTypes)
				machineRoutes.GET("", s.handlers.Machine.ListMachines)
				machineRoutes.POST("/:id/activate", s.handlers.Machine.Activate)
				machineRoutes.POST("/:id/claim", s.handlers.Machine.Claim)
			}

			paymentRoutes := protected.Group("/payments")
			{
				paymentRoutes.POST("/intents", s.handlers.Payment.CreateIntent)
				paymentRoutes.POST("/:external_id/reconcile", s.handlers.Payment.Reconcile)
			}

			adRoutes := protected.Group("/ads")
			{
				adRoutes.POST("/sessions", s.handlers.Ad.StartSession)
				adRoutes.POST("/sessions/:id/reward", s.handlers.Ad.Reward)
			}

			protected.GET("/balance", s.handlers.Transaction.Balance)
			protected.GET("/transactions", s.handlers.Transaction.List)

			withdrawalRoutes := protected.Group("/withdrawals")
			{
				withdrawalRoutes.POST("", s.handlers.Withdrawal.Request)
				withdrawalRoutes.GET("", s.handlers.Withdrawal.List)
			}

			adminRoutes := protected.Group("/admin")
			adminRoutes.Use(middleware.RequireRole(domain.RoleAdmin))
			{
				adminRoutes.POST("/users/:id/restore", s.handlers.Admin.RestoreBalance)
				adminRoutes.POST("/users/:id/balance", s.handlers.Admin.AdjustBalance)
				adminRoutes.POST("/users/:id/reconcile", s.handlers.Admin.ReconcileUser)
				adminRoutes.GET("/withdrawals", s.handlers.Admin.ListPendingWithdrawals)
				adminRoutes.POST("/withdrawals/:id/approve", s.handlers.Admin.ApproveWithdrawal)
				adminRoutes.POST("/withdrawals/:id/reject", s.handlers.Admin.RejectWithdrawal)
			}
		}
	}
}

// Start serves until Shutdown is called
func (s *Server) Start() error {
	s.logger.Info("HTTP server listening", zap.String("address", s.opts.Address))
	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown stops accepting requests and waits for in-flight ones
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("Shutting down HTTP server")
	return s.httpServer.Shutdown(ctx)
}
