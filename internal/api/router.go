package api

import (
	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"
	echoSwagger "github.com/swaggo/echo-swagger"
	"go.mongodb.org/mongo-driver/mongo"

	_ "github.com/rinkside/pickup-api/docs"
	"github.com/rinkside/pickup-api/internal/api/handler"
	"github.com/rinkside/pickup-api/internal/api/middleware"
	"github.com/rinkside/pickup-api/internal/core/domain"
	"github.com/rinkside/pickup-api/internal/core/ports"
	"github.com/rinkside/pickup-api/internal/core/service"
	"github.com/rinkside/pickup-api/internal/infrastructure/config"
	mongostore "github.com/rinkside/pickup-api/internal/infrastructure/db/mongo"
	redisstore "github.com/rinkside/pickup-api/internal/infrastructure/db/redis"
	"github.com/rinkside/pickup-api/pkg/logger"
)

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(cfg config.Config, db *mongo.Database, rdb *redis.Client, email ports.EmailSender) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(logger.Get())

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(echomiddleware.Logger())
	e.Use(echoprometheus.NewMiddleware("pickup"))

	// --- Dependencies ---
	userRepo := mongostore.NewUserRepository(db)
	blacklist := redisstore.NewBlacklistStore(rdb)
	oneTime := redisstore.NewOneTimeTokenStore(rdb)

	tokenService := service.NewTokenService(cfg.JWTSecret, cfg.JWTTTL, blacklist)
	authService := service.NewAuthService(userRepo, tokenService, oneTime, email, cfg.InviteCodes, logger.Get())
	userService := service.NewUserService(userRepo, logger.Get())

	authHandler := handler.NewAuthHandler(authService, tokenService, cfg.FrontendURL)
	userHandler := handler.NewUserHandler(userService)
	authMiddleware := middleware.Auth(tokenService)

	// --- Auth routes ---
	// Logout stays outside the Auth middleware so a missing token is a
	// 400, not a 401.
	auth := e.Group("/api/auth")
	auth.POST("/login", authHandler.Login)
	auth.POST("/logout", authHandler.Logout)
	auth.POST("/register", authHandler.Register)
	auth.POST("/confirm-email", authHandler.ConfirmEmail)
	auth.POST("/change-password", authHandler.ChangePassword, authMiddleware)
	auth.POST("/forgot-password", authHandler.ForgotPassword)
	auth.POST("/reset-password", authHandler.ResetPassword)

	// --- User routes ---
	users := e.Group("/api/users", authMiddleware)
	users.GET("", userHandler.List)
	users.PUT("/me", userHandler.SaveProfile)
	users.GET("/:id", userHandler.Get, middleware.RequireRole(domain.RoleAdmin))

	// --- Health probes (no auth required) ---
	healthHandler := handler.NewHealthHandler()
	readinessHandler := handler.NewReadinessHandler(db, rdb)

	e.GET("/health", healthHandler.Liveness)          // liveness  – is the process alive?
	e.GET("/health/ready", readinessHandler.Readiness) // readiness – are dependencies up?

	// --- Observability & docs ---
	e.GET("/metrics", echoprometheus.NewHandler())
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	return e
}
