package api

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gin-gonic/gin"

	"github.com/nutripeek/nutripeek-go/api/controllers"
	"github.com/nutripeek/nutripeek-go/api/middlewares"
	"github.com/nutripeek/nutripeek-go/api/notifyhub"
	"github.com/nutripeek/nutripeek-go/nutrient"
	"github.com/nutripeek/nutripeek-go/session"
	"github.com/nutripeek/nutripeek-go/tool"
	"github.com/nutripeek/nutripeek-go/types"
)

// Server represents the HTTP API server for the QR handoff and nutrient
// endpoints.
type Server struct {
	cfg    types.AppConfig
	engine *gin.Engine
	server *http.Server
	mu     sync.RWMutex

	sessions  *session.Service
	nutrients *nutrient.Service
	detector  session.Detector
	hub       *notifyhub.Hub
}

// NewServer wires the service layer into a server instance. hub may be nil
// to disable the status WebSocket.
func NewServer(cfg types.AppConfig, sessions *session.Service, nutrients *nutrient.Service, detector session.Detector, hub *notifyhub.Hub) *Server {
	return &Server{
		cfg:       cfg,
		sessions:  sessions,
		nutrients: nutrients,
		detector:  detector,
		hub:       hub,
	}
}

func (s *Server) setupRoutes() *gin.Engine {
	if tool.DefaultLogger.GetLevel() == log.DebugLevel {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}
	engine := gin.Default()
	engine.Use(middlewares.AllowAllCORS())
	engine.Use(gin.Recovery())

	ttl := time.Duration(s.cfg.SessionTTLSeconds) * time.Second
	qrCtrl := controllers.NewQRCodeController(s.sessions, ttl)
	foodCtrl := controllers.NewFoodController(s.detector, s.nutrients)
	nutrientCtrl := controllers.NewNutrientController(s.nutrients)

	qr := engine.Group("/qrcode")
	{
		qr.POST("/generate", middlewares.RateLimit(s.cfg.GenerateRatePerSecond, int(s.cfg.GenerateRatePerSecond)*2), qrCtrl.HandleGenerate)
		qr.POST("/upload/:shortcode", qrCtrl.HandleUpload)
		qr.GET("/status/:shortcode", qrCtrl.HandleStatus)
		qr.GET("/result/:shortcode", qrCtrl.HandleResult)
		if s.hub != nil {
			qr.GET("/notify-ws", notifyhub.HandleNotifyWS(s.hub))
		}
	}

	food := engine.Group("/food")
	{
		food.POST("/detect", foodCtrl.HandleDetect)
		food.GET("/search", foodCtrl.HandleSearch)
		food.POST("/map", foodCtrl.HandleMap)
	}

	engine.POST("/nutrient/gap", nutrientCtrl.HandleGap)
	engine.GET("/health", controllers.HandleHealth)

	return engine
}

// Start starts the HTTP server and blocks until it stops.
func (s *Server) Start() error {
	engine := s.setupRoutes()

	s.mu.Lock()
	s.engine = engine
	s.server = &http.Server{
		Addr:    fmt.Sprintf(":%d", s.cfg.Port),
		Handler: engine,
	}
	srv := s.server
	s.mu.Unlock()

	tool.DefaultLogger.Infof("Starting API server on http://0.0.0.0:%d", s.cfg.Port)
	return srv.ListenAndServe()
}

// Shutdown drains in-flight requests and stops the listener.
func (s *Server) Shutdown(ctx context.Context) error {
	s.mu.RLock()
	srv := s.server
	s.mu.RUnlock()
	if srv == nil {
		return nil
	}
	return srv.Shutdown(ctx)
}
