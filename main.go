package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/charmbracelet/log"

	"github.com/nutripeek/nutripeek-go/api"
	"github.com/nutripeek/nutripeek-go/api/notifyhub"
	"github.com/nutripeek/nutripeek-go/detect"
	"github.com/nutripeek/nutripeek-go/nutrient"
	"github.com/nutripeek/nutripeek-go/session"
	"github.com/nutripeek/nutripeek-go/tool"
)

func main() {
	cfg := tool.SetFlags()
	appCfg, err := tool.LoadConfig(cfg.UseConfigPath)
	if err != nil {
		tool.DefaultLogger.Fatalf("%v", err)
	}
	if cfg.UsePort > 0 {
		appCfg.Port = cfg.UsePort
	}
	if cfg.UseBaseURL != "" {
		appCfg.BaseURL = cfg.UseBaseURL
	}
	if cfg.UseInferenceURL != "" {
		appCfg.InferenceURL = cfg.UseInferenceURL
	}
	if cfg.UseDatabasePath != "" {
		appCfg.DatabasePath = cfg.UseDatabasePath
	}

	tool.InitLogger()
	switch strings.ToLower(cfg.Log) {
	case "", "dev":
		tool.DefaultLogger.SetLevel(log.DebugLevel)
	case "prod":
		tool.DefaultLogger.SetLevel(log.InfoLevel)
	case "none":
		tool.DefaultLogger.SetLevel(log.FatalLevel)
	default:
		tool.DefaultLogger.Warnf("Unknown log mode %q, using debug level", cfg.Log)
		tool.DefaultLogger.SetLevel(log.DebugLevel)
	}

	nutrientStore, err := nutrient.Open(appCfg.DatabasePath)
	if err != nil {
		tool.DefaultLogger.Fatalf("Failed to open nutrient database: %v", err)
	}
	defer func() {
		if err := nutrientStore.Close(); err != nil {
			tool.DefaultLogger.Errorf("Failed to close nutrient database: %v", err)
		}
	}()

	store := session.NewStore(appCfg.MaxUploadMB<<20, nil)
	reaper := session.NewReaper(store, time.Duration(appCfg.CleanupIntervalSeconds)*time.Second, tool.DefaultLogger)
	reaper.Start()
	defer reaper.Stop()

	detector := detect.NewClient(appCfg.InferenceURL, appCfg.ConfidenceThreshold)
	healthCtx, cancelHealth := context.WithTimeout(context.Background(), 5*time.Second)
	if err := detector.CheckHealth(healthCtx); err != nil {
		tool.DefaultLogger.Warnf("Inference service not available: %v", err)
	}
	cancelHealth()

	sessionSvc := session.NewService(store, detector, appCfg.BaseURL, appCfg.QRSize, tool.DefaultLogger)
	var hub *notifyhub.Hub
	if !cfg.SkipNotifyWS {
		hub = notifyhub.New()
		sessionSvc.SetNotifier(hub)
	}

	nutrientSvc := nutrient.NewService(nutrientStore, tool.DefaultLogger)

	server := api.NewServer(appCfg, sessionSvc, nutrientSvc, detector, hub)
	go func() {
		if err := server.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			tool.DefaultLogger.Fatalf("API server startup failed: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	tool.DefaultLogger.Info("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		tool.DefaultLogger.Errorf("Server shutdown failed: %v", err)
	}
	reaper.Stop()
}
