package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	_ "github.com/noah-isme/therapy-students-api/api/swagger"
	"github.com/noah-isme/therapy-students-api/internal/handler"
	internalmiddleware "github.com/noah-isme/therapy-students-api/internal/middleware"
	"github.com/noah-isme/therapy-students-api/internal/models"
	"github.com/noah-isme/therapy-students-api/internal/repository"
	"github.com/noah-isme/therapy-students-api/internal/service"
	"github.com/noah-isme/therapy-students-api/pkg/config"
	"github.com/noah-isme/therapy-students-api/pkg/database"
	"github.com/noah-isme/therapy-students-api/pkg/export"
	"github.com/noah-isme/therapy-students-api/pkg/logger"
	corsmiddleware "github.com/noah-isme/therapy-students-api/pkg/middleware/cors"
	reqidmiddleware "github.com/noah-isme/therapy-students-api/pkg/middleware/requestid"
)

const shutdownTimeout = 15 * time.Second

// @title Therapy Students API
// @version 1.0.0
// @description Student directory and enrollment for the therapy practice
// @BasePath /api
// @schemes http
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

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
	if cfg.JWT.Secret == "" {
		logr.Fatal("JWT_SECRET must be set")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := database.NewPostgres(ctx, cfg.Database)
	if err != nil {
		logr.Fatal("failed to connect to postgres", zap.Error(err))
	}
	defer db.Close()

	var metricsSvc *service.MetricsService
	if cfg.Metrics.Enabled {
		metricsSvc = service.NewMetricsService()
	}

	studentRepo := repository.NewStudentRepository(db)
	studentSvc := service.NewStudentService(service.StudentServiceParams{
		Repo:      studentRepo,
		Validator: validator.New(),
		Metrics:   metricsSvc,
		Logger:    logr.Named("students"),
	})
	authSvc := service.NewAuthService(service.AuthConfig{AccessTokenSecret: cfg.JWT.Secret, Issuer: cfg.JWT.Issuer})

	studentHandler := handler.NewStudentHandler(studentSvc, nil)
	if cfg.Exports.Enabled {
		exporter := service.NewCaseloadExporter(studentSvc, export.NewRenderer(), cfg.Exports.PDFTitle)
		studentHandler = handler.NewStudentHandler(studentSvc, exporter)
	}
	metricsHandler := handler.NewMetricsHandler(metricsSvc, db, logr)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS))
	r.Use(internalmiddleware.Metrics(metricsSvc))

	r.GET("/health", metricsHandler.Health)
	r.GET("/ready", metricsHandler.Ready)
	if metricsSvc != nil {
		r.GET("/metrics", metricsHandler.Prometheus)
	}
	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(cfg.APIPrefix)
	api.Use(internalmiddleware.JWT(authSvc))
	therapistOnly := internalmiddleware.RequireRoles(models.RoleTherapist)

	api.GET("/students", studentHandler.List)
	api.GET("/students/:id", therapistOnly, studentHandler.Get)
	api.GET("/my-students", therapistOnly, studentHandler.Mine)
	api.GET("/my-students/export", therapistOnly, studentHandler.Export)
	api.GET("/temp-students", therapistOnly, studentHandler.Temporary)
	api.POST("/enroll-student", therapistOnly, internalmiddleware.Audit(logr, "enroll", "student"), studentHandler.Enroll)

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logr.Sugar().Infow("server starting", "addr", srv.Addr, "env", cfg.Env, "prefix", cfg.APIPrefix)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logr.Sugar().Fatalw("server failed", "error", err)
		}
	}()

	<-ctx.Done()
	logr.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logr.Error("graceful shutdown failed", zap.Error(err))
	}
}
