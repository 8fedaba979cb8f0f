package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"github.com/betbot/opsboard/internal/controlplane/server"
	"github.com/betbot/opsboard/internal/metrics"
	"github.com/betbot/opsboard/pkg/config"
	"github.com/betbot/opsboard/pkg/logger"
	"github.com/betbot/opsboard/pkg/shutdown"
)

func main() {
	// Load .env (best-effort). If missing, fall back to real env vars.
	_ = godotenv.Load()

	var (
		configPath = flag.String("config", os.Getenv("OPSBOARD_CONFIG"), "config file (.yaml/.yml/.json)")
		listenAddr = flag.String("listen", "", "HTTP listen address (overrides config)")
	)
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		logrus.Fatalf("load config failed: %v", err)
	}
	if *listenAddr != "" {
		cfg.Server.Listen = *listenAddr
	}

	if err := logger.Init(logger.Config{
		Level:      cfg.Log.Level,
		OutputFile: cfg.Log.File,
		MaxSize:    cfg.Log.MaxSizeMB,
		MaxBackups: cfg.Log.MaxBackups,
		MaxAge:     cfg.Log.MaxAgeDays,
		Compress:   cfg.Log.Compress,
		JSON:       cfg.Log.JSON,
	}); err != nil {
		logrus.Fatalf("init logger failed: %v", err)
	}
	log := logger.WithField("module", "main")

	loc, err := cfg.Location()
	if err != nil {
		log.Fatalf("invalid location: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if cfg.Metrics.Listen != "" {
		if _, err := metrics.StartAsync(ctx, cfg.Metrics.Listen); err != nil {
			log.Warnf("metrics server start failed: %v", err)
		} else {
			log.Infof("metrics listening on %s", cfg.Metrics.Listen)
		}
	}

	srv, err := server.New(server.Config{
		DBPath:        cfg.Server.DBPath,
		ArtifactDir:   cfg.Server.ArtifactDir,
		ArtifactTTL:   cfg.ArtifactTTL(),
		Location:      loc,
		ViewPeriod:    cfg.ViewPeriod(),
		ClockPeriod:   cfg.ClockPeriod(),
		Seed:          cfg.Fixtures.Seed,
		Symbols:       cfg.Fixtures.Symbols,
		AlertsEnabled: cfg.Alerts.Enabled,
		AlertCooldown: time.Duration(cfg.Alerts.CooldownSeconds) * time.Second,
		LarkWebhook:   cfg.Alerts.LarkWebhook,
		LarkTimeout:   time.Duration(cfg.Alerts.TimeoutSeconds) * time.Second,
	})
	if err != nil {
		log.Fatalf("init server failed: %v", err)
	}

	httpSrv := &http.Server{
		Addr:              cfg.Server.Listen,
		Handler:           srv.Router(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		log.Infof("opsboard listening on %s", cfg.Server.Listen)
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Errorf("http server error: %v", err)
			cancel()
		}
	}()

	stopCh := make(chan os.Signal, 1)
	signal.Notify(stopCh, os.Interrupt, syscall.SIGTERM, syscall.SIGQUIT)
	select {
	case sig := <-stopCh:
		log.Infof("received signal %s, shutting down", sig)
	case <-ctx.Done():
	}

	mgr := shutdown.NewManager()
	mgr.OnShutdown("http", httpSrv.Shutdown)
	mgr.OnShutdown("console", func(context.Context) error { return srv.Close() })

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if !mgr.Shutdown(shutdownCtx) {
		log.Warn("shutdown timed out")
	}
	cancel()
	log.Info("server stopped")
}
