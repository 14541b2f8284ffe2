package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Blessan-Corley/fixly-server/internal/bootstrap"
	"github.com/Blessan-Corley/fixly-server/internal/config"
	"github.com/Blessan-Corley/fixly-server/internal/metrics"
	"github.com/Blessan-Corley/fixly-server/internal/server"
	"github.com/Blessan-Corley/fixly-server/internal/utils"
)

func main() {
	cfg, err := config.Load("config.yaml")
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger := utils.NewLogger(cfg.App.Production())
	defer func() {
		_ = logger.Sync()
	}()
	sugar := logger.Sugar()
	sugar.Infof("Starting fixly-server in %s environment on port %d", cfg.App.Env, cfg.App.Port)

	app, err := bootstrap.Init(cfg, logger)
	if err != nil {
		sugar.Fatal(err)
	}

	fiberApp := server.New(cfg, app.Deps, logger)

	go func() {
		listenAddr := fmt.Sprintf(":%d", cfg.App.Port)
		sugar.Infof("Server listening on %s", listenAddr)
		if err := fiberApp.Listen(listenAddr); err != nil {
			sugar.Fatalf("Server failed to start: %v", err)
		}
	}()

	// Metrics live on their own listener so the scrape endpoint never
	// shares the public port.
	var metricsServer *http.Server
	if cfg.App.MetricsPort > 0 {
		mux := http.NewServeMux()
		mux.Handle("/metrics", metrics.Handler())
		metricsServer = &http.Server{
			Addr:    fmt.Sprintf(":%d", cfg.App.MetricsPort),
			Handler: mux,
		}
		go func() {
			sugar.Infof("Metrics listening on :%d", cfg.App.MetricsPort)
			if err := metricsServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				sugar.Errorf("Metrics server error: %v", err)
			}
		}()
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit
	sugar.Info("Shutting down server...")

	ctxShut, cancelShut := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancelShut()

	if err := fiberApp.ShutdownWithContext(ctxShut); err != nil {
		sugar.Errorf("Fiber app shutdown error: %v", err)
	}
	if metricsServer != nil {
		if err := metricsServer.Shutdown(ctxShut); err != nil {
			sugar.Errorf("Metrics server shutdown error: %v", err)
		}
	}
	app.Close(ctxShut)

	sugar.Info("Graceful shutdown complete. Goodbye!")
}
