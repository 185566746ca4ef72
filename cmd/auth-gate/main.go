package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"auth-gate/config"
	"auth-gate/internal/adapter/gateway"
	adapterhandler "auth-gate/internal/adapter/handler"
	infracache "auth-gate/internal/infrastructure/cache"
	"auth-gate/internal/infrastructure/postgres"
	infratoken "auth-gate/internal/infrastructure/token"
	"auth-gate/internal/usecase"
	appmiddleware "auth-gate/middleware"
	"auth-gate/utils/logger"
	"auth-gate/utils/otel"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"go.opentelemetry.io/contrib/instrumentation/github.com/labstack/echo/otelecho"
	"golang.org/x/sync/errgroup"
)

func main() {
	// Handle healthcheck subcommand (for Docker healthcheck in distroless image)
	if len(os.Args) > 1 && os.Args[1] == "healthcheck" {
		if err := runHealthcheck(); err != nil {
			fmt.Fprintf(os.Stderr, "Healthcheck failed: %v\n", err)
			os.Exit(1)
		}
		os.Exit(0)
	}

	// Optional .env for local development
	_ = godotenv.Load()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
	defer stop()

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		slog.ErrorContext(ctx, "failed to load configuration", "error", err)
		os.Exit(1)
	}

	// Initialize OpenTelemetry
	otelCfg := otel.ConfigFromEnv()
	otelShutdown, err := otel.InitProvider(ctx, otelCfg)
	if err != nil {
		slog.Warn("failed to initialize OpenTelemetry, continuing without tracing", "error", err)
		otelCfg.Enabled = false
	}

	// Initialize structured logger
	logger.Init(cfg.LogLevel, otelCfg.Enabled)

	slog.InfoContext(ctx, "configuration loaded",
		"port", cfg.Port,
		"profile_cache_ttl", cfg.ProfileCacheTTL,
		"guild_cache_ttl", cfg.GuildCacheTTL,
		"profile_sweep_interval", cfg.ProfileSweepInterval,
		"guild_sweep_interval", cfg.GuildSweepInterval)

	// Infrastructure
	db, err := postgres.NewConnection(ctx, cfg.DatabaseURL, slog.Default())
	if err != nil {
		slog.ErrorContext(ctx, "failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	userRepo := postgres.NewUserRepository(db.Pool(), slog.Default())

	discordGateway := gateway.NewDiscordGateway(gateway.DiscordConfig{
		ClientID:     cfg.DiscordClientID,
		ClientSecret: cfg.DiscordClientSecret,
		RedirectURI:  cfg.DiscordRedirectURI,
		BaseURL:      cfg.DiscordAPIBaseURL,
	}, 10*time.Second)

	identityCache := infracache.NewIdentityCache(discordGateway, infracache.Config{
		ProfileTTL:           cfg.ProfileCacheTTL,
		GuildTTL:             cfg.GuildCacheTTL,
		ProfileSweepInterval: cfg.ProfileSweepInterval,
		GuildSweepInterval:   cfg.GuildSweepInterval,
	}, slog.Default())
	identityCache.Start(ctx)

	sessionCodec := infratoken.NewJWTCodec(infratoken.JWTConfig{
		Secret: cfg.SigningSecret,
		Issuer: "auth-gate",
		TTL:    cfg.CredentialTTL,
	})

	// Usecases
	authenticateUC := usecase.NewAuthenticate(sessionCodec, userRepo, identityCache, slog.Default())
	loginUC := usecase.NewLogin(discordGateway, userRepo, sessionCodec, slog.Default())
	guildsUC := usecase.NewResolveGuilds(identityCache, slog.Default())
	logoutUC := usecase.NewLogout(identityCache, slog.Default())

	// Handlers
	authHandler := adapterhandler.NewAuthHandler(loginUC, logoutUC, discordGateway,
		adapterhandler.CookieConfig{ExpiryDays: cfg.CookieExpiryDays})
	meHandler := adapterhandler.NewMeHandler()
	guildsHandler := adapterhandler.NewGuildsHandler(guildsUC)
	healthHandler := adapterhandler.NewHealthHandler(db)
	sweepHandler := adapterhandler.NewSweepHandler(identityCache)

	sessionAuth := appmiddleware.NewSessionAuth(authenticateUC, slog.Default())

	// Setup Echo server
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	// Security middleware
	e.Use(appmiddleware.SecurityHeaders())

	// OpenTelemetry tracing
	if otelCfg.Enabled {
		e.Use(otelecho.Middleware(otelCfg.ServiceName))
		e.Use(appmiddleware.OTelStatusMiddleware())
	}

	// Request logging
	e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		Skipper: func(c echo.Context) bool {
			return c.Request().URL.Path == "/health"
		},
		LogStatus:   true,
		LogURI:      true,
		LogError:    true,
		LogMethod:   true,
		LogLatency:  true,
		HandleError: true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			rctx := c.Request().Context()
			if v.Error == nil {
				slog.InfoContext(rctx, "request completed",
					"method", v.Method,
					"uri", v.URI,
					"status", v.Status,
					"latency_ms", v.Latency.Milliseconds())
			} else {
				slog.ErrorContext(rctx, "request failed",
					"method", v.Method,
					"uri", v.URI,
					"status", v.Status,
					"latency_ms", v.Latency.Milliseconds(),
					"error", v.Error.Error())
			}
			return nil
		},
	}))

	e.Use(middleware.Recover())

	// Rate limiters per endpoint group
	loginRL := appmiddleware.NewRateLimiter(30.0/60.0, 5)     // 30 req/min
	sessionRL := appmiddleware.NewRateLimiter(100.0/60.0, 10) // 100 req/min
	internalRL := appmiddleware.NewRateLimiter(10.0/60.0, 3)  // 10 req/min

	// OAuth flow
	e.GET("/auth/login", authHandler.HandleLogin, loginRL.Middleware())
	e.GET("/auth/callback", authHandler.HandleCallback, loginRL.Middleware())

	// Authenticated routes
	authenticated := e.Group("/auth", sessionRL.Middleware(), sessionAuth.RequireSession())
	authenticated.GET("/me", meHandler.Handle)
	authenticated.GET("/guilds", guildsHandler.Handle)
	authenticated.POST("/logout", authHandler.HandleLogout)

	e.GET("/health", healthHandler.Handle)

	// Internal routes (protected by shared secret)
	internalGroup := e.Group("/internal", internalRL.Middleware())
	if cfg.AuthSharedSecret != "" {
		internalGroup.Use(appmiddleware.InternalAuth(cfg.AuthSharedSecret))
	}
	internalGroup.POST("/sweep", sweepHandler.Handle)

	// Start server with errgroup for graceful shutdown
	address := fmt.Sprintf(":%s", cfg.Port)
	slog.InfoContext(ctx, "starting auth-gate server", "address", address)

	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		if err := e.Start(address); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-gCtx.Done()
		slog.Info("shutting down server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return e.Shutdown(shutdownCtx)
	})

	g.Go(func() error {
		<-gCtx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return otelShutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		slog.Error("shutdown error", "error", err)
		os.Exit(1)
	}

	slog.Info("server exited properly")
}

// runHealthcheck performs a health check against the local server.
func runHealthcheck() error {
	port := os.Getenv("PORT")
	if port == "" {
		port = "8890"
	}

	client := &http.Client{Timeout: 2 * time.Second}
	resp, err := client.Get(fmt.Sprintf("http://127.0.0.1:%s/health", port))
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("health endpoint returned status: %d", resp.StatusCode)
	}
	return nil
}
