package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dafibh/fieldops/fieldops-backend/internal/config"
	"github.com/dafibh/fieldops/fieldops-backend/internal/handler"
	"github.com/dafibh/fieldops/fieldops-backend/internal/middleware"
	"github.com/dafibh/fieldops/fieldops-backend/internal/repository/postgres"
	"github.com/dafibh/fieldops/fieldops-backend/internal/repository/storage"
	"github.com/dafibh/fieldops/fieldops-backend/internal/service"
	"github.com/dafibh/fieldops/fieldops-backend/internal/websocket"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	echoSwagger "github.com/swaggo/echo-swagger"
)

func main() {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	if os.Getenv("ENV") != "production" {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	rootCtx, stopBackground := context.WithCancel(context.Background())
	defer stopBackground()

	pool, err := pgxpool.New(rootCtx, cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to database")
	}
	defer pool.Close()

	if err := pool.Ping(rootCtx); err != nil {
		log.Fatal().Err(err).Msg("Failed to ping database")
	}
	log.Info().Msg("Connected to database")

	// Repositories
	workspaceRepo := postgres.NewWorkspaceRepository(pool)
	projectRepo := postgres.NewProjectRepository(pool)
	invoiceRepo := postgres.NewInvoiceRepository(pool)

	var reportStorage storage.ReportRepository
	if cfg.S3.Enabled() {
		s3Repo, err := storage.NewS3ReportRepository(rootCtx, cfg.S3)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to initialize report storage")
		}
		reportStorage = s3Repo
		log.Info().Str("bucket", cfg.S3.Bucket).Msg("Report exports enabled")
	} else {
		log.Warn().Msg("S3_BUCKET not set, report exports disabled")
	}

	hub := websocket.NewHub()

	// Services
	policy := service.DefaultBalancePolicy()
	policy.ValueFallback = cfg.Outstanding.ValueFallback

	workspaceService := service.NewWorkspaceService(workspaceRepo)
	projectService := service.NewProjectService(projectRepo)
	outstandingService := service.NewOutstandingService(projectRepo, invoiceRepo, policy)
	invoiceService := service.NewInvoiceService(invoiceRepo)
	invoiceService.SetEventPublisher(hub)

	var exportService *service.ReportExportService
	if reportStorage != nil {
		exportService = service.NewReportExportService(outstandingService, reportStorage, cfg.Outstanding.ExportPresignExpiry)
	}

	refreshWorker := service.NewRefreshWorker(outstandingService, workspaceRepo, hub, log.Logger, service.RefreshWorkerConfig{
		Interval: cfg.Outstanding.RefreshInterval,
	})

	// Auth
	workspaceProvider := &workspaceProviderAdapter{workspaceService: workspaceService}

	authMiddleware, err := middleware.NewAuthMiddleware(cfg.Auth0Domain, cfg.Auth0Audience, workspaceProvider)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create auth middleware")
	}

	wsValidator, err := websocket.NewAuth0JWTValidator(cfg.Auth0Domain, cfg.Auth0Audience, workspaceProvider)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create websocket token validator")
	}

	exportLimiter := middleware.NewRateLimiterWithConfig(cfg.Outstanding.ExportRatePerMinute, middleware.DefaultBurstSize)
	defer exportLimiter.Stop()

	// Handlers
	invoiceHandler := handler.NewInvoiceHandler(invoiceService)
	invoiceHandler.SetRefresher(refreshWorker)

	handlers := handler.Handlers{
		Outstanding: handler.NewOutstandingHandler(outstandingService, exportService),
		Project:     handler.NewProjectHandler(projectService),
		Invoice:     invoiceHandler,
		WebSocket:   handler.NewWebSocketHandler(hub, wsValidator, outstandingService, cfg.CORSOrigins),
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(echomiddleware.RequestID())

	e.Use(echomiddleware.CORSWithConfig(echomiddleware.CORSConfig{
		AllowOrigins:     cfg.CORSOrigins,
		AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodOptions},
		AllowHeaders:     []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization},
		AllowCredentials: true,
		MaxAge:           86400,
	}))

	e.Use(echomiddleware.SecureWithConfig(echomiddleware.SecureConfig{
		XSSProtection:      "1; mode=block",
		ContentTypeNosniff: "nosniff",
		XFrameOptions:      "DENY",
		HSTSMaxAge:         31536000,
		ReferrerPolicy:     "strict-origin-when-cross-origin",
	}))

	e.Use(zerologMiddleware())
	e.Use(echomiddleware.Recover())

	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	})
	e.GET("/openapi.json", handler.ServeOpenAPI3Spec)
	if cfg.Env != "production" {
		e.GET("/swagger/*", echoSwagger.WrapHandler)
	}

	handler.RegisterRoutes(e, authMiddleware, exportLimiter, handlers)

	refreshWorker.Start(rootCtx)

	go func() {
		log.Info().Str("port", cfg.Port).Msg("Starting server")
		if err := e.Start(":" + cfg.Port); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Server failed")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")

	refreshWorker.Stop()
	stopBackground()
	hub.CloseAll()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := e.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server exited")
}

// workspaceProviderAdapter adapts WorkspaceService to middleware.WorkspaceProvider
// and websocket.WorkspaceLookup
type workspaceProviderAdapter struct {
	workspaceService *service.WorkspaceService
}

// GetWorkspaceByAuth0ID implements middleware.WorkspaceProvider
func (a *workspaceProviderAdapter) GetWorkspaceByAuth0ID(auth0ID string) (int32, error) {
	workspace, err := a.workspaceService.GetWorkspaceByAuth0ID(auth0ID)
	if err != nil {
		return 0, err
	}
	return workspace.ID, nil
}

// zerologMiddleware returns a middleware that logs requests using zerolog
func zerologMiddleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()

			err := next(c)
			if err != nil {
				c.Error(err)
			}

			req := c.Request()
			res := c.Response()

			event := log.Info()
			if res.Status >= http.StatusInternalServerError {
				event = log.Error()
			}
			event.
				Str("method", req.Method).
				Str("path", req.URL.Path).
				Int("status", res.Status).
				Dur("latency", time.Since(start)).
				Str("request_id", res.Header().Get(echo.HeaderXRequestID)).
				Int32("workspace_id", middleware.GetWorkspaceID(c)).
				Msg("request")

			return nil
		}
	}
}
