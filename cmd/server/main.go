package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/quocanhngo/farmiot/internal/config"
	"github.com/quocanhngo/farmiot/internal/database"
	"github.com/quocanhngo/farmiot/internal/handler"
	"github.com/quocanhngo/farmiot/internal/liveness"
	"github.com/quocanhngo/farmiot/internal/middleware"
	"github.com/quocanhngo/farmiot/internal/repository"
	"github.com/quocanhngo/farmiot/internal/router"
	"github.com/quocanhngo/farmiot/internal/service"
	"github.com/quocanhngo/farmiot/pkg/auth"
	"github.com/quocanhngo/farmiot/pkg/lock"
	"github.com/quocanhngo/farmiot/pkg/logger"
	"github.com/quocanhngo/farmiot/pkg/metrics"
	"github.com/sirupsen/logrus"
)

// @title           Farm IoT API
// @version         1.0
// @description     Device registry and sensor telemetry for farm installations.

// @license.name  MIT
// @license.url   https://opensource.org/licenses/MIT

// @host      api.localhost
// @BasePath  /api/v1

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

func main() {
	// ==================== Load Config ====================
	cfg := config.Load()
	logger.Setup(cfg.Log.Level, cfg.Log.Format)
	logrus.WithField("env", cfg.App.Env).Info("🚀 Starting Farm IoT API Server")

	ctx := context.Background()

	// ==================== Database (PostgreSQL) ====================
	db, err := database.OpenPostgres(cfg, nil)
	if err != nil {
		logrus.WithError(err).Fatal("❌ Failed to connect to database")
	}
	logrus.Info("✅ Connected to PostgreSQL")

	// ==================== Run Migrations ====================
	if err := database.Migrate(cfg, db); err != nil {
		logrus.WithError(err).Fatal("❌ Failed to migrate database")
	}
	logrus.Info("✅ Database migrated successfully")

	// ==================== Redis ====================
	rdb, err := database.OpenRedis(ctx, cfg)
	if err != nil {
		logrus.WithError(err).Fatal("❌ Failed to connect to Redis")
	}
	logrus.Info("✅ Connected to Redis")

	// ==================== Initialize Layers ====================
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	appMetrics := metrics.New(reg)

	jwtManager := auth.NewJWTManager(cfg.JWT.Secret, cfg.JWT.Expiry)
	store := repository.NewStore(db)

	// Services
	deviceService := service.NewDeviceService(store)
	readingService := service.NewReadingService(store, appMetrics)
	livenessService := service.NewLivenessService(store, appMetrics)

	// Liveness monitor (Redis lock keeps it to one sweep per tick across replicas)
	monitorCtx, monitorCancel := context.WithCancel(context.Background())
	defer monitorCancel()
	if cfg.Liveness.Enabled {
		hostname, _ := os.Hostname()
		locker := lock.NewRedisLocker(rdb, hostname+"-"+uuid.NewString())
		monitor := liveness.NewMonitor(livenessService, locker, cfg.Liveness.Interval, cfg.Liveness.Timeout, cfg.Liveness.LockTTL)
		go monitor.Run(monitorCtx)
	}

	// ==================== Gin Router ====================
	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	// INGEST_RATE_LIMIT=0 disables the limiter
	var ingestLimiter *middleware.RateLimiter
	if cfg.RateLimit.Enabled() {
		ingestLimiter = middleware.NewRateLimiter(cfg.RateLimit.IngestRPS, cfg.RateLimit.IngestBurst)
	} else {
		logrus.Warn("⚠️  Ingestion rate limit disabled")
	}

	sqlDB, err := db.DB()
	if err != nil {
		logrus.WithError(err).Fatal("❌ Failed to access database pool")
	}

	engine := router.Setup(router.Deps{
		DeviceHandler:      handler.NewDeviceHandler(deviceService),
		ReadingHandler:     handler.NewReadingHandler(readingService),
		MaintenanceHandler: handler.NewMaintenanceHandler(livenessService),
		HealthHandler: handler.NewHealthHandler(map[string]handler.HealthCheck{
			"postgres": sqlDB.PingContext,
			"redis":    func(ctx context.Context) error { return rdb.Ping(ctx).Err() },
		}),
		TokenValidator: jwtManager,
		Revocations:    auth.NewRedisRevocationList(rdb),
		IngestLimiter:  ingestLimiter,
		Metrics:        appMetrics,
		Gatherer:       reg,
		CORSOrigins:    cfg.CORS.Origins,
	})

	// ==================== Start Server ====================
	srv := &http.Server{
		Addr:              ":" + cfg.App.Port,
		Handler:           engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Graceful shutdown
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logrus.WithError(err).Fatal("❌ Server failed")
		}
	}()

	logrus.Infof("🌐 Farm IoT API running on http://0.0.0.0:%s", cfg.App.Port)
	logrus.Infof("📋 API docs: http://0.0.0.0:%s/swagger/index.html", cfg.App.Port)
	logrus.Infof("📈 Metrics: http://0.0.0.0:%s/metrics", cfg.App.Port)

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logrus.Info("🛑 Shutting down server...")

	// Give ongoing requests 5 seconds to complete
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logrus.WithError(err).Fatal("❌ Server forced to shutdown")
	}

	monitorCancel()
	_ = rdb.Close()
	_ = sqlDB.Close()
	logrus.Info("✅ Server exited gracefully")
}
