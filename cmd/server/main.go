package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/bizdocs/backend/internal/application/document"
	"github.com/bizdocs/backend/internal/infrastructure/auth"
	"github.com/bizdocs/backend/internal/infrastructure/cache"
	"github.com/bizdocs/backend/internal/infrastructure/config"
	"github.com/bizdocs/backend/internal/infrastructure/event"
	"github.com/bizdocs/backend/internal/infrastructure/logger"
	"github.com/bizdocs/backend/internal/infrastructure/persistence"
	"github.com/bizdocs/backend/internal/infrastructure/printing"
	"github.com/bizdocs/backend/internal/infrastructure/qrcode"
	"github.com/bizdocs/backend/internal/infrastructure/storage"
	"github.com/bizdocs/backend/internal/infrastructure/telemetry"
	"github.com/bizdocs/backend/internal/interfaces/http/handler"
	"github.com/bizdocs/backend/internal/interfaces/http/middleware"
	"github.com/bizdocs/backend/internal/interfaces/http/router"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// version is set at build time with -ldflags "-X main.version=..."
var version = "dev"

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	log, err := logger.New(&logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: cfg.Log.Output,
	})
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer func() {
		_ = log.Sync()
	}()

	telemetry.ServiceVersion = version
	ctx := context.Background()

	// Telemetry providers are no-ops when disabled
	telemetryCfg := telemetry.ConfigFrom(cfg.Telemetry)
	tracerProvider, err := telemetry.NewTracerProvider(ctx, telemetryCfg, log)
	if err != nil {
		log.Fatal("Failed to initialize tracer provider", zap.Error(err))
	}
	meterCfg := telemetryCfg
	meterCfg.Enabled = cfg.Telemetry.Enabled && cfg.Telemetry.MetricsEnabled
	meterProvider, err := telemetry.NewMeterProvider(ctx, meterCfg, cfg.Telemetry.MetricsInterval, log)
	if err != nil {
		log.Fatal("Failed to initialize meter provider", zap.Error(err))
	}
	logsCfg := telemetryCfg
	logsCfg.Enabled = cfg.Telemetry.Enabled && cfg.Telemetry.LogsEnabled
	loggerProvider, err := telemetry.NewLoggerProvider(ctx, logsCfg, log)
	if err != nil {
		log.Fatal("Failed to initialize logger provider", zap.Error(err))
	}
	log = loggerProvider.Bridge(log, cfg.Telemetry.ServiceName, logger.ParseLevel(cfg.Telemetry.LogsLevel))

	log.Info("Starting bizdocs backend",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
		zap.String("version", version),
		zap.Bool("telemetry", telemetryCfg.Enabled))

	db, err := persistence.NewDatabaseWithLogger(&cfg.Database, log, logger.GormLogLevel(cfg.Log.Level))
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()
	if cfg.Telemetry.Enabled && cfg.Telemetry.DBTracing {
		dbTracing := telemetry.DefaultDBTracingConfig()
		dbTracing.DBName = cfg.Database.DBName
		if err := telemetry.RegisterDBTracing(db.DB, dbTracing, log); err != nil {
			log.Fatal("Failed to register database tracing", zap.Error(err))
		}
	}
	log.Info("Database connected successfully")

	templateRepo := persistence.NewGormDocumentTemplateRepository(db.DB)
	variableRepo := persistence.NewGormVariableRepository(db.DB)

	// QR codes are cached in Redis when reachable
	qrCache, err := cache.NewQRCodeCacheFactory(cfg.Redis, cfg.ZATCA.QRCacheTTL, cache.WithLogger(log)).CreateCache()
	if err != nil {
		log.Fatal("Failed to create QR code cache", zap.Error(err))
	}
	defer func() {
		_ = qrCache.Close()
	}()
	qrGenerator := qrcode.NewGenerator(qrcode.Config{
		Encoding:      qrcode.PayloadEncoding(cfg.ZATCA.QREncoding),
		Size:          cfg.ZATCA.QRSize,
		RecoveryLevel: cfg.ZATCA.QRRecoveryLevel,
	}, qrcode.WithCache(qrCache), qrcode.WithLogger(log))

	engine := printing.NewTemplateEngine(
		printing.WithMissingValuePolicy(printing.MissingValuePolicy(cfg.Render.MissingValuePolicy)),
		printing.WithFallbackValue(cfg.Render.FallbackValue),
		printing.WithCurrency(cfg.Render.Currency),
		printing.WithTemplateLogger(log),
	)

	pdfRenderer, pdfStore := setupPDF(ctx, cfg, log)
	defer func() {
		if err := pdfRenderer.Close(); err != nil {
			log.Error("Error closing PDF renderer", zap.Error(err))
		}
	}()

	eventBus := event.NewInMemoryEventBus(log, event.WithAsyncDispatch())
	documentMetrics, err := telemetry.NewDocumentMetrics(meterProvider.Meter("bizdocs/document"))
	if err != nil {
		log.Fatal("Failed to create document metrics", zap.Error(err))
	}

	opts := []document.Option{
		document.WithLogger(log),
		document.WithEventBus(eventBus),
		document.WithQRGenerator(qrGenerator),
		document.WithMetrics(documentMetrics),
		document.WithDefaultLocale(cfg.Render.Locale),
	}
	if pdfStore != nil {
		opts = append(opts, document.WithPDF(pdfRenderer, pdfStore))
	}
	documentService := document.NewService(templateRepo, variableRepo, engine, opts...)

	// Set Gin mode based on environment
	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	middleware.SetupValidator()

	ginEngine := gin.New()
	if err := ginEngine.SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
		log.Fatal("Invalid trusted proxies", zap.Error(err))
	}

	ginEngine.Use(middleware.RequestID())
	ginEngine.Use(middleware.TracingWithConfig(middleware.TracingConfig{
		ServiceName: cfg.Telemetry.ServiceName,
		Enabled:     cfg.Telemetry.Enabled,
	}))
	ginEngine.Use(logger.GinMiddleware(log))
	ginEngine.Use(logger.Recovery(log))
	ginEngine.Use(middleware.SpanErrorMarker())
	ginEngine.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins:     cfg.HTTP.CORSAllowOrigins,
		AllowMethods:     cfg.HTTP.CORSAllowMethods,
		AllowHeaders:     cfg.HTTP.CORSAllowHeaders,
		ExposeHeaders:    []string{middleware.RequestIDHeader},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))
	ginEngine.Use(middleware.Secure())
	ginEngine.Use(middleware.BodyLimit(cfg.HTTP.MaxBodySize))

	checks := map[string]handler.HealthCheck{
		"database": db.Ping,
	}
	if redisCache, ok := qrCache.(*cache.RedisQRCodeCache); ok {
		checks["redis"] = redisCache.Ping
	}
	ginEngine.GET("/health", handler.NewHealthHandler(version, checks).Health)

	verifier := auth.NewTokenVerifier(cfg.JWT)
	authCfg := middleware.AuthConfig{
		HeaderEnabled: cfg.App.Env != "production" || !verifier.Enabled(),
		Logger:        log,
	}
	if verifier.Enabled() {
		authCfg.Verifier = verifier
	}
	if cfg.App.Env == "production" && !verifier.Enabled() {
		log.Warn("JWT secret not set; trusting the company header in production")
	}

	r := router.NewRouter(ginEngine, router.WithMiddleware(
		middleware.Authenticate(authCfg),
		middleware.TracingAttributeInjector(),
	))
	r.Register(
		handler.TemplateRoutes(handler.NewTemplateHandler(documentService)),
		handler.VariableRoutes(handler.NewVariableHandler(documentService)),
		handler.DocumentRoutes(handler.NewDocumentHandler(documentService)),
		handler.ZATCARoutes(handler.NewZATCAHandler(documentService)),
	)
	r.Setup()

	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        ginEngine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	go func() {
		log.Info("Server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown", zap.Error(err))
	}
	if err := eventBus.Stop(shutdownCtx); err != nil {
		log.Warn("Event bus did not drain", zap.Error(err))
	}
	if err := meterProvider.Shutdown(shutdownCtx); err != nil {
		log.Warn("Meter provider shutdown failed", zap.Error(err))
	}
	if err := tracerProvider.Shutdown(shutdownCtx); err != nil {
		log.Warn("Tracer provider shutdown failed", zap.Error(err))
	}
	log.Info("Server exited gracefully")
	if err := loggerProvider.Shutdown(shutdownCtx); err != nil {
		log.Warn("Logger provider shutdown failed", zap.Error(err))
	}
}

// setupPDF builds the PDF renderer and store. The store is nil when object
// storage is disabled, which turns PDF generation off.
func setupPDF(ctx context.Context, cfg *config.Config, log *zap.Logger) (printing.PDFRenderer, *printing.PDFStore) {
	var renderer printing.PDFRenderer = printing.DisabledRenderer{}
	if cfg.Chrome.Enabled {
		renderer = printing.NewChromedpRenderer(printing.ChromedpConfig{
			DefaultTimeout: cfg.Chrome.Timeout,
			RemoteURL:      cfg.Chrome.RemoteURL,
			NoSandbox:      cfg.Chrome.NoSandbox,
			Logger:         log,
		})
		log.Info("PDF rendering enabled", zap.Bool("remote", cfg.Chrome.RemoteURL != ""))
	}

	if !cfg.Storage.Enabled {
		log.Info("Object storage disabled; PDF generation is unavailable")
		return renderer, nil
	}

	s3, err := storage.NewS3ObjectStorage(&cfg.Storage,
		storage.WithLogger(log),
		storage.WithPresignExpiration(cfg.Storage.PresignExpiration))
	if err != nil {
		log.Fatal("Failed to initialize object storage", zap.Error(err))
	}
	if err := s3.EnsureBucket(ctx); err != nil {
		log.Fatal("Object storage bucket unavailable", zap.Error(err), zap.String("bucket", s3.Bucket()))
	}
	return renderer, printing.NewPDFStore(s3, cfg.Storage.PresignExpiration, log)
}
