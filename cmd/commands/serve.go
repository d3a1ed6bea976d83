package commands

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/MohammedAshfaquem/smatdine-backend/internal/handler"
	mid "github.com/MohammedAshfaquem/smatdine-backend/internal/middleware"
	"github.com/MohammedAshfaquem/smatdine-backend/internal/service"
	"github.com/MohammedAshfaquem/smatdine-backend/pkg/database"
	"github.com/MohammedAshfaquem/smatdine-backend/pkg/imagegen"
	"github.com/MohammedAshfaquem/smatdine-backend/pkg/jwtutil"
	"github.com/MohammedAshfaquem/smatdine-backend/pkg/logger"
	"github.com/MohammedAshfaquem/smatdine-backend/prometheus"

	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	autoMigrate     bool
	shutdownTimeout time.Duration
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServe(cmd.Context())
	},
}

func init() {
	serveCmd.Flags().BoolVar(&autoMigrate, "migrate", true, "Run database migrations before serving")
	serveCmd.Flags().DurationVar(&shutdownTimeout, "shutdown-timeout", 15*time.Second, "Grace period for in-flight requests")
	rootCmd.AddCommand(serveCmd)
}

func runServe(ctx context.Context) error {
	cfg, log, err := bootstrap()
	if err != nil {
		return err
	}
	defer log.Sync()

	log.Info("Starting smartdine", cfg.LogConfig()...)

	// Initialize JWT utility
	jwtutil.Initialize(&cfg.JWT)

	// Initialize Prometheus metrics
	prometheus.InitMetrics(cfg)
	log.Info("Prometheus metrics initialized", zap.String("metrics_prefix", cfg.Metrics.Prefix))

	// Initialize database
	db, err := database.InitDB(cfg)
	if err != nil {
		return err
	}
	defer database.Close()
	log.Info("Database connection established")

	if autoMigrate {
		if err := database.MigrateModels(db); err != nil {
			return err
		}
		log.Info("Database migrations applied")
	}

	var images service.ImageGenerator
	if cfg.ImageGen.Enabled() {
		images = imagegen.NewClient(cfg.ImageGen.URL, cfg.ImageGen.Timeout, log)
		log.Info("Custom dish image generation enabled", zap.String("url", cfg.ImageGen.URL))
	}
	svc := service.New(db, log, service.OptionsFromConfig(&cfg.Order), images)

	// Initialize Echo instance
	e := echo.New()
	e.HideBanner = true

	// Middleware - order matters
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.CORS())
	e.Use(mid.RequestIDMiddleware)
	e.Use(logger.Middleware())
	e.Use(mid.MetricsMiddleware)

	handler.RegisterRoutes(e, handler.New(svc))

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	serveErr := make(chan error, 1)
	go func() {
		log.Info("Starting server", zap.String("port", cfg.Server.Port))
		if err := e.Start(":" + cfg.Server.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case err := <-serveErr:
		if err != nil {
			log.Error("Server error", zap.Error(err))
			return err
		}
	case <-ctx.Done():
	}

	log.Info("Shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Error("Graceful shutdown failed", zap.Error(err))
	}

	// let pending image generations store their outcome
	svc.Composer.Wait()
	log.Info("Server stopped")
	return nil
}
