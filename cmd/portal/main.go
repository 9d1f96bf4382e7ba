package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	_ "github.com/noah-isme/sma-student-portal/api/swagger"
	"github.com/noah-isme/sma-student-portal/internal/handler"
	"github.com/noah-isme/sma-student-portal/internal/middleware"
	"github.com/noah-isme/sma-student-portal/internal/repository"
	"github.com/noah-isme/sma-student-portal/internal/service"
	"github.com/noah-isme/sma-student-portal/internal/views"
	"github.com/noah-isme/sma-student-portal/pkg/cache"
	"github.com/noah-isme/sma-student-portal/pkg/config"
	"github.com/noah-isme/sma-student-portal/pkg/database"
	"github.com/noah-isme/sma-student-portal/pkg/jobs"
	"github.com/noah-isme/sma-student-portal/pkg/logger"
	corsmiddleware "github.com/noah-isme/sma-student-portal/pkg/middleware/cors"
	reqidmiddleware "github.com/noah-isme/sma-student-portal/pkg/middleware/requestid"
)

// @title Student Portal
// @version 1.0.0
// @description Server-rendered student roster portal in front of the student REST backend
// @BasePath /
// @schemes http

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	startCtx, cancelStart := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancelStart()

	checks := map[string]handler.ReadinessCheck{}

	var redisClient *redis.Client
	if cfg.Storage.Backend == config.StorageBackendRedis {
		redisClient, err = cache.NewRedis(startCtx, cfg.Redis)
		if err != nil {
			logr.Fatal("failed to connect redis", zap.Error(err))
		}
		defer redisClient.Close()
		checks["redis"] = func(ctx context.Context) error { return redisClient.Ping(ctx).Err() }
	}

	var auditDB *sqlx.DB
	auditSvc := service.NewAuditService(nil, logr)
	if cfg.Audit.Enabled {
		auditDB, err = database.NewPostgres(startCtx, cfg.Database)
		if err != nil {
			logr.Fatal("failed to connect audit database", zap.Error(err))
		}
		defer auditDB.Close()
		auditSvc = service.NewAuditService(repository.NewAuditRepository(auditDB), logr)
		auditSvc.StartAsync(jobs.Config{Workers: 2, MaxRetries: 3})
		checks["audit_db"] = auditDB.PingContext
	}

	metricsSvc := service.NewMetricsService()
	backend := repository.NewBackendClient(cfg.Backend, metricsSvc, logr)
	authSvc := service.NewAuthService(backend, backend.BaseURL(), cfg.Auth, metricsSvc, logr)
	gate := service.NewSessionGate(authSvc, metricsSvc, logr)
	studentSvc := service.NewStudentService(backend, authSvc, service.NewFormValidator(), logr)
	exportSvc := service.NewExportService(logr, nil, nil)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metricsSvc))
	r.Use(middleware.Browser(middleware.NewBrowserFactory(cfg, redisClient)))

	if err := views.Install(r); err != nil {
		logr.Fatal("failed to parse templates", zap.Error(err))
	}
	r.Static("/profiles", cfg.ProfilesDir)

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	handler.Register(r, handler.Routes{
		Auth:         handler.NewAuthHandler(authSvc, cfg.Auth.DefaultProvider, cfg.Auth.CallbackErrorDelay),
		Students:     handler.NewStudentHandler(studentSvc, exportSvc, logr),
		Metrics:      handler.NewMetricsHandler(metricsSvc, checks),
		AuthService:  authSvc,
		Gate:         gate,
		Audit:        auditSvc,
		AutoRedirect: cfg.Auth.AutoRedirect,
		Logger:       logr,
	})

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logr.Sugar().Infow("server starting", "addr", srv.Addr, "env", cfg.Env, "backend", cfg.Backend.BaseURL, "storage", cfg.Storage.Backend)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logr.Sugar().Fatalw("server failed", "error", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	logr.Info("shutting down")
	if err := srv.Shutdown(ctx); err != nil {
		logr.Error("graceful shutdown failed", zap.Error(err))
	}
	if err := auditSvc.Close(ctx); err != nil {
		logr.Warn("audit queue not drained", zap.Error(err))
	}
}
