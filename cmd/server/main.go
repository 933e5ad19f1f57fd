package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	zlog "github.com/rs/zerolog/log"

	"github.com/ksred/mt5-portal-api/internal/accounts"
	"github.com/ksred/mt5-portal-api/internal/admin"
	"github.com/ksred/mt5-portal-api/internal/auth"
	"github.com/ksred/mt5-portal-api/internal/balance"
	"github.com/ksred/mt5-portal-api/internal/config"
	"github.com/ksred/mt5-portal-api/internal/database"
	"github.com/ksred/mt5-portal-api/internal/mt5"
	"github.com/ksred/mt5-portal-api/internal/payment"
	"github.com/ksred/mt5-portal-api/pkg/middleware"
	"github.com/ksred/mt5-portal-api/pkg/response"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

var startedAt = time.Now()

// setupLogging configures application logging from the loaded config.
// Outside production it enables pretty printing with timestamps; DEBUG
// raises the level.
func setupLogging(cfg *config.Config) {
	if !cfg.IsProduction() {
		output := zerolog.ConsoleWriter{
			Out:        os.Stdout,
			TimeFormat: time.RFC3339,
		}
		zlog.Logger = zerolog.New(output).With().Timestamp().Logger()
	}

	zerolog.SetGlobalLevel(zerolog.InfoLevel)
	if cfg.Debug {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	}
}

// main initializes and runs the portal API server with graceful shutdown
// support. A store failure during startup is fatal.
func main() {
	// .env is optional; real deployments set the environment directly
	_ = godotenv.Load()

	cfg := config.Load()
	setupLogging(cfg)

	db, err := database.NewDatabase(cfg.DatabasePath)
	if err != nil {
		zlog.Fatal().Err(err).Msg("Failed to initialize database")
	}

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.Default()

	// Initialize services and handlers
	gateway := mt5.NewMockGateway()

	authService := auth.NewService(db, cfg.JWTSecret)
	authHandlers := auth.NewGinHandlers(authService)

	accountsService := accounts.NewService(db, gateway)
	accountsHandlers := accounts.NewGinHandlers(accountsService, authService)

	balanceService := balance.NewService(db)
	balanceHandlers := balance.NewGinHandlers(balanceService)

	paymentHandlers := payment.NewGinHandlers()
	adminHandlers := admin.NewGinHandlers(authService, accountsService)

	// Setup middleware
	router.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.AllowedOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))
	router.Use(middleware.RateLimit())

	setupRoutes(router, authService, authHandlers, accountsHandlers, balanceHandlers, paymentHandlers, adminHandlers)

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	// Graceful shutdown setup
	go func() {
		zlog.Info().Str("port", cfg.Port).Str("env", cfg.Env).Msg("Starting server")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			zlog.Fatal().Err(err).Msg("listen")
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	zlog.Info().Msg("Shutting down server...")

	// Give outstanding operations 5 seconds to complete
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		zlog.Fatal().Err(err).Msg("Server forced to shutdown")
	}

	zlog.Info().Msg("Server exiting")
}

// setupRoutes configures all API endpoints and their handlers.
// Every session-gated group shares the single JWTAuth middleware backed
// by the authentication service; admin routes add a role check on top.
func setupRoutes(
	router *gin.Engine,
	authService *auth.Service,
	authHandlers *auth.GinHandlers,
	accountsHandlers *accounts.GinHandlers,
	balanceHandlers *balance.GinHandlers,
	paymentHandlers *payment.GinHandlers,
	adminHandlers *admin.GinHandlers,
) {
	router.GET("/health", func(c *gin.Context) {
		response.OK(c, gin.H{
			"status": "ok",
			"uptime": time.Since(startedAt).String(),
		})
	})

	api := router.Group("/api")
	{
		// Public auth routes
		authGroup := api.Group("/auth")
		{
			authGroup.POST("/register", authHandlers.RegisterHandler())
			authGroup.POST("/login", authHandlers.LoginHandler())
		}

		// Session-gated auth routes
		session := api.Group("/auth")
		session.Use(middleware.JWTAuth(authService))
		{
			session.GET("/profile", authHandlers.ProfileHandler())
			session.POST("/change-password", authHandlers.ChangePasswordHandler())
		}

		// Trading accounts
		accountsGroup := api.Group("/accounts")
		accountsGroup.Use(middleware.JWTAuth(authService))
		{
			accountsGroup.POST("", accountsHandlers.CreateAccountHandler())
			accountsGroup.GET("", accountsHandlers.ListAccountsHandler())
			accountsGroup.GET("/:login", accountsHandlers.GetAccountHandler())
			accountsGroup.POST("/:login/sync", accountsHandlers.SyncHandler())
			accountsGroup.GET("/:login/positions", accountsHandlers.PositionsHandler())
			accountsGroup.GET("/:login/trades", accountsHandlers.TradesHandler())
		}

		// Balance operations
		balanceGroup := api.Group("/balance")
		balanceGroup.Use(middleware.JWTAuth(authService))
		{
			balanceGroup.POST("/deposit", balanceHandlers.DepositHandler())
			balanceGroup.POST("/withdraw", balanceHandlers.WithdrawHandler())
			balanceGroup.GET("/history", balanceHandlers.HistoryHandler())
		}

		// Payments
		paymentGroup := api.Group("/payment")
		paymentGroup.Use(middleware.JWTAuth(authService))
		{
			paymentGroup.POST("/create-intent", paymentHandlers.CreateIntentHandler())
		}

		// Admin panel
		adminGroup := api.Group("/admin")
		adminGroup.Use(middleware.JWTAuth(authService), middleware.RequireAdmin())
		{
			adminGroup.GET("/users", adminHandlers.ListUsersHandler())
			adminGroup.POST("/users/:id/deactivate", adminHandlers.DeactivateUserHandler())
			adminGroup.GET("/accounts", adminHandlers.ListAccountsHandler())
			adminGroup.POST("/accounts/:login/balance", adminHandlers.UpdateBalanceHandler())
			adminGroup.POST("/accounts/:login/deactivate", adminHandlers.DeactivateAccountHandler())
		}
	}
}
