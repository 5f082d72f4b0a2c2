package main

import (
	"bytes"
	"encoding/json"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"

	"scholarscan/internal/config"
	"scholarscan/internal/core/job"
	"scholarscan/internal/core/tracker"
	"scholarscan/internal/logger"
	"scholarscan/internal/platform/gateway"
	"scholarscan/internal/platform/metrics"
	rds "scholarscan/internal/platform/redis"
	"scholarscan/internal/server"
)

func main() {
	logr := logger.New("main")

	cfg, err := config.Load()
	if err != nil {
		logr.LogFatalf("config: %v", err)
	}
	logr.LogInfof("starting at %s (env=%s, gateway=%s)", cfg.HTTPAddr, cfg.AppEnv, cfg.GatewayURL)

	metrics.MustRegister()

	opts := tracker.Options{
		Interval: cfg.PollInterval,
		Logger:   logger.NewWithConfig("Tracker", logger.Config{AppEnv: cfg.AppEnv}),
	}

	// Redis client, only when snapshots are mirrored
	var redisSvc *rds.Service
	if cfg.SnapshotsEnabled {
		redisSvc, err = rds.New(rds.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
		})
		if err != nil {
			logr.LogFatalf("redis: %v", err)
		}
		defer redisSvc.Close()
		opts.Sink = job.NewSnapshotService(redisSvc)
	}

	gw := gateway.New(cfg.GatewayURL, cfg.RequestTimeout)
	ctrl := tracker.New(gw, opts)

	// HTTP server
	app := fiber.New(fiber.Config{
		AppName: "ScholarScan Tracker",
		JSONEncoder: func(v interface{}) ([]byte, error) {
			var buf bytes.Buffer
			encoder := json.NewEncoder(&buf)
			encoder.SetEscapeHTML(false)
			if err := encoder.Encode(v); err != nil {
				return nil, err
			}
			return buf.Bytes(), nil
		},
	})

	deps := server.Dependencies{
		Tracker: ctrl,
		Gateway: gw,
		Redis:   redisSvc,
	}
	healthHandler := server.RegisterRoutes(app, deps)
	app.Hooks().OnListen(func(fiber.ListenData) error {
		healthHandler.SetReady()
		return nil
	})

	// Graceful shutdown
	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-shutdown
		logr.LogInfo("Shutting down...")
		ctrl.Close()
		_ = app.ShutdownWithTimeout(5 * time.Second)
	}()

	if err := app.Listen(cfg.HTTPAddr); err != nil {
		logr.LogErrorf("server listen: %v", err)
	}
}
