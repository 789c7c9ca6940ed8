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

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/redis/go-redis/v9"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	_ "github.com/noah-isme/studylab-api/api/swagger"
	"github.com/noah-isme/studylab-api/internal/handler"
	"github.com/noah-isme/studylab-api/internal/middleware"
	"github.com/noah-isme/studylab-api/internal/repository"
	"github.com/noah-isme/studylab-api/internal/service"
	"github.com/noah-isme/studylab-api/pkg/cache"
	"github.com/noah-isme/studylab-api/pkg/config"
	"github.com/noah-isme/studylab-api/pkg/database"
	"github.com/noah-isme/studylab-api/pkg/logger"
	corsmiddleware "github.com/noah-isme/studylab-api/pkg/middleware/cors"
	reqidmiddleware "github.com/noah-isme/studylab-api/pkg/middleware/requestid"
	"github.com/noah-isme/studylab-api/web"
)

// @title StudyLab API
// @version 1.0.0
// @description Admissions CRM: leads, conversion to students, fee ledger and EMI schedules
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

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Fatal("failed to connect database", zap.Error(err), zap.String("driver", cfg.Database.Driver))
	}
	defer db.Close()

	var redisClient *redis.Client
	if cfg.Dashboard.CacheEnabled {
		redisClient, err = cache.NewRedis(cfg.Redis)
		if err != nil {
			logr.Warn("redis unavailable, dashboard cache disabled", zap.Error(err))
			redisClient = nil
		}
	}

	validate := validator.New()
	metrics := service.NewMetricsService()

	userRepo := repository.NewUserRepository(db)
	leadRepo := repository.NewLeadRepository(db)
	courseRepo := repository.NewCourseRepository(db)
	studentRepo := repository.NewStudentRepository(db)
	paymentRepo := repository.NewPaymentRepository(db)
	admissionRepo := repository.NewAdmissionRepository(db)
	cacheRepo := repository.NewCacheRepository(redisClient, logr)
	defer cacheRepo.Close() //nolint:errcheck

	cacheSvc := service.NewCacheService(cacheRepo, metrics, cfg.Dashboard.CacheTTL, logr, cacheRepo.Enabled())
	billingCfg := service.BillingConfig{
		FullPaymentTolerance: cfg.Billing.FullPaymentTolerance,
		MaxInstallments:      cfg.Billing.MaxInstallments,
	}

	authSvc := service.NewAuthService(userRepo, validate, logr, service.AuthConfig{
		AccessTokenSecret: cfg.JWT.Secret,
		AccessTokenExpiry: cfg.JWT.Expiration,
		Issuer:            cfg.JWT.Issuer,
	})
	leadSvc := service.NewLeadService(leadRepo, courseRepo, userRepo, validate, logr)
	conversionSvc := service.NewConversionService(admissionRepo, service.NewUsernameAllocator(cfg.Accounts.UsernamePolicy), cacheSvc, metrics, validate, logr, billingCfg)
	billingSvc := service.NewBillingService(admissionRepo, studentRepo, paymentRepo, cacheSvc, metrics, validate, logr, billingCfg)
	dashboardSvc := service.NewDashboardService(paymentRepo, leadRepo, cacheSvc, cfg.Dashboard.CacheTTL, logr)
	exportSvc := service.NewExportService(paymentRepo, cfg.Billing.Currency, logr, nil, nil)

	authHandler := handler.NewAuthHandler(authSvc)
	enquiryHandler := handler.NewEnquiryHandler(leadSvc)
	leadHandler := handler.NewLeadHandler(leadSvc)
	conversionHandler := handler.NewConversionHandler(leadSvc, conversionSvc)
	billingHandler := handler.NewBillingHandler(billingSvc, exportSvc)
	dashboardHandler := handler.NewDashboardHandler(dashboardSvc, billingSvc, courseRepo)
	metricsHandler := handler.NewMetricsHandler(metrics, map[string]handler.Pinger{
		"database": db,
		"redis":    handler.PingFunc(cacheRepo.Ping),
	})

	templates, err := web.Templates(cfg.Billing.Currency)
	if err != nil {
		logr.Fatal("failed to parse templates", zap.Error(err))
	}

	store := cookie.NewStore([]byte(cfg.Session.Secret))
	store.Options(sessions.Options{
		Path:     "/",
		MaxAge:   int(cfg.Session.MaxAge.Seconds()),
		HttpOnly: true,
		Secure:   cfg.Session.Secure,
		SameSite: http.SameSiteLaxMode,
	})

	r := gin.New()
	r.SetHTMLTemplate(templates)
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr, "/health", "/ready", "/metrics"))
	r.Use(middleware.Metrics(metrics))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(sessions.Sessions(cfg.Session.Name, store))

	r.GET("/health", metricsHandler.Health)
	r.GET("/ready", metricsHandler.Ready)
	r.GET("/metrics", metricsHandler.Prometheus)
	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	public := r.Group("/", middleware.OptionalJWT(authSvc))
	public.GET("/", func(c *gin.Context) { c.Redirect(http.StatusFound, "/dashboard") })
	public.GET("/login", authHandler.LoginForm)
	public.POST("/login", authHandler.Login)
	public.POST("/logout", authHandler.Logout)
	public.GET("/enquiry", enquiryHandler.Form)
	public.POST("/enquiry", enquiryHandler.Submit)

	authed := r.Group("/", middleware.JWT(authSvc))
	authed.GET("/dashboard", dashboardHandler.Home)

	bdm := authed.Group("/bdm", middleware.RequireBDM())
	bdm.GET("/dashboard", dashboardHandler.BDM)
	bdm.GET("/leads", leadHandler.List)
	bdm.GET("/leads/new", leadHandler.NewForm)
	bdm.POST("/leads/new", leadHandler.Create)
	bdm.GET("/leads/:id", leadHandler.Show)
	bdm.POST("/leads/:id/interactions", leadHandler.LogInteraction)
	bdm.POST("/leads/:id/status", leadHandler.UpdateStatus)
	bdm.GET("/leads/:id/convert", conversionHandler.Form)
	bdm.POST("/leads/:id/convert", conversionHandler.Convert)
	bdm.GET("/admissions", billingHandler.Admissions)
	bdm.GET("/admissions/:id", billingHandler.Admission)
	bdm.GET("/admissions/:id/pay", billingHandler.PayForm)
	bdm.POST("/admissions/:id/pay", billingHandler.Pay)
	bdm.GET("/payments", billingHandler.Payments)
	bdm.GET("/payments/pending-emis", billingHandler.PendingEMIs)
	bdm.GET("/payments/export", billingHandler.Export)
	bdm.POST("/installments/:id/settle", billingHandler.Settle)

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logr.Sugar().Infow("server starting", "addr", srv.Addr, "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logr.Fatal("server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logr.Error("graceful shutdown failed", zap.Error(err))
	}
	logr.Info("server stopped")
}
