package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	"ueesync/internal/alert"
	"ueesync/internal/client/ueeshop"
	"ueesync/internal/config"
	cronrunner "ueesync/internal/cron"
	"ueesync/internal/db"
	"ueesync/internal/handler"
	"ueesync/internal/logger"
	gormrepository "ueesync/internal/repository/gorm"
	"ueesync/internal/service"
)

func main() {
	cfgPath := os.Getenv("UEE_CONFIG")
	if cfgPath == "" {
		cfgPath = "config/config.yaml"
	}

	envOnly := false
	if envOnlyRaw := os.Getenv("UEE_ENV_ONLY"); envOnlyRaw != "" {
		envOnly = strings.EqualFold(envOnlyRaw, "true") || envOnlyRaw == "1"
	}

	cfg, err := config.Load(cfgPath, envOnly)
	if err != nil {
		panic(err)
	}

	logger, err := logger.New(cfg.Log)
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	dbConn, err := db.Open(cfg.DB)
	if err != nil {
		logger.Fatal("db open failed", zap.Error(err))
	}
	defer db.Close(dbConn)

	if err := db.SetTimezone(dbConn, cfg.DB.Timezone); err != nil {
		logger.Warn("failed to set timezone", zap.Error(err))
	}
	if err := db.AutoMigrate(dbConn); err != nil {
		logger.Fatal("auto-migrate failed", zap.Error(err))
	}

	shopHTTP := &http.Client{Timeout: cfg.Ueeshop.Timeout}
	shopClient := ueeshop.NewClient(shopHTTP, ueeshop.Config{
		BaseURL: cfg.Ueeshop.BaseURL(),
		APIName: cfg.Ueeshop.APIName,
		Number:  cfg.Ueeshop.Number,
		Secret:  cfg.Ueeshop.Secret,
		APIFrom: cfg.Ueeshop.APIFrom,
	})
	store := gormrepository.New(dbConn.Gorm)

	recorder := &service.SyncLogRecorder{Store: store, Logger: logger}
	resolver := &service.AttributionResolver{Store: store, Logger: logger}
	orderSync := &service.OrderSyncService{
		Store:         store,
		Client:        shopClient,
		Resolver:      resolver,
		Recorder:      recorder,
		Logger:        logger,
		SafetyBackSec: cfg.OrderSync.SafetyBackSec,
		PageSize:      cfg.OrderSync.PageSize,
		OrderStatus:   cfg.OrderSync.OrderStatus,
	}
	productSync := &service.ProductSyncService{
		Store:    store,
		Client:   shopClient,
		Recorder: recorder,
		Logger:   logger,
		PageSize: cfg.ProductSync.PageSize,
		MaxPages: cfg.ProductSync.MaxPages,
	}
	recompute := &service.RecomputeService{Store: store, Logger: logger}
	alerter := &alert.Webhook{
		URL:        cfg.Alert.WebhookURL,
		Recipients: cfg.Alert.Recipients,
		HTTP:       &http.Client{Timeout: cfg.Alert.Timeout},
	}
	monitor := &service.MonitorService{
		Store:              store,
		Alerter:            alerter,
		Recorder:           recorder,
		Logger:             logger,
		DelayThresholdSec:  cfg.Monitor.DelayThresholdSec,
		SampleSize:         cfg.Monitor.SampleSize,
		ErrorRateThreshold: cfg.Monitor.ErrorRateThreshold,
		MinErrorCount:      cfg.Monitor.MinErrorCount,
	}

	if strings.EqualFold(cfg.App.Env, "dev") {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}
	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.Use(corsMiddleware())

	healthHandler := &handler.HealthHandler{DB: dbConn.Gorm}
	healthHandler.Register(engine)
	syncHandler := &handler.SyncHandler{Repo: store, Orders: orderSync, Products: productSync}
	syncHandler.Register(engine)
	adminHandler := &handler.AdminHandler{Recompute: recompute}
	adminHandler.Register(engine)
	monitorHandler := &handler.MonitorHandler{Repo: store, Monitor: monitor}
	monitorHandler.Register(engine)

	engine.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	srv := &http.Server{
		Addr:    cfg.Server.HTTPAddr,
		Handler: engine,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cronRunner := cronrunner.New(logger, ctx)

	_, err = cronRunner.Add(cfg.Cron.OrderSync, func(ctx context.Context) {
		result, err := orderSync.Run(ctx, service.RunOptions{})
		if err != nil {
			logger.Warn("cron order sync failed", zap.Error(err))
			return
		}
		logger.Info("cron order sync ok",
			zap.Int64("from_sec", result.FromSec),
			zap.Int64("to_sec", result.ToSec),
			zap.Int("pages", result.Pages),
			zap.Int("fetched", result.Fetched),
			zap.Int("applied", result.Applied),
			zap.Int("stale", result.Stale),
			zap.Int("skipped", result.Skipped),
		)
	})
	if err != nil {
		logger.Warn("cron register order sync failed", zap.Error(err))
	}

	if cfg.ProductSync.Enabled {
		_, err = cronRunner.Add(cfg.Cron.ProductSync, func(ctx context.Context) {
			result, err := productSync.Run(ctx)
			if err != nil {
				logger.Warn("cron product sync failed", zap.Error(err))
				return
			}
			logger.Info("cron product sync ok",
				zap.Int("pages", result.Pages),
				zap.Int("fetched", result.Fetched),
			)
		})
		if err != nil {
			logger.Warn("cron register product sync failed", zap.Error(err))
		}
	}

	_, err = cronRunner.Add(cfg.Cron.Monitor, func(ctx context.Context) {
		result, err := monitor.Run(ctx)
		if err != nil {
			logger.Warn("cron monitor failed", zap.Error(err))
			return
		}
		if len(result.Issues) > 0 {
			logger.Warn("cron monitor found issues", zap.Strings("issues", result.Issues))
		}
	})
	if err != nil {
		logger.Warn("cron register monitor failed", zap.Error(err))
	}

	cronRunner.Start()
	defer cronRunner.Stop()

	errCh := make(chan error, 2)

	go func() {
		logger.Info("http server starting", zap.String("addr", cfg.Server.HTTPAddr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		logger.Info("shutdown requested")
	case err := <-errCh:
		logger.Error("server error", zap.Error(err))
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = srv.Shutdown(shutdownCtx)
}

func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET,POST,PUT,DELETE,OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type,Authorization")
		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(204)
			return
		}
		c.Next()
	}
}
