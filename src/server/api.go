package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"

	"market-monitor/src/config"
	"market-monitor/src/interfaces"
	"market-monitor/src/logger"
	"market-monitor/src/models"

	"github.com/gin-gonic/gin"
)

// -----------------------------------------------------------------------------
// APIServer
// -----------------------------------------------------------------------------

var _ interfaces.IDataExchanger = (*APIServer)(nil)

type APIServer struct {
	Config  *config.Config
	Logger  *logger.Logger
	monitor interfaces.IMonitor
	engine  *gin.Engine
	httpSrv *http.Server

	// WebSocket clients
	clients    map[*Client]struct{}
	broadcast  chan *models.MDisplaySnapshot
	register   chan *Client
	unregister chan *Client
	quit       chan struct{}
	stopOnce   sync.Once

	// Local cache
	latestState *models.MDisplaySnapshot
	stateMutex  sync.RWMutex
}

// -----------------------------------------------------------------------------
// Constructor
// -----------------------------------------------------------------------------

func NewAPIServer(cfg *config.Config, monitor interfaces.IMonitor, logger *logger.Logger) *APIServer {
	if !strings.EqualFold(cfg.LogLevel, "DEBUG") {
		gin.SetMode(gin.ReleaseMode)
	}

	s := &APIServer{
		Config:     cfg,
		Logger:     logger,
		monitor:    monitor,
		engine:     gin.New(),
		clients:    make(map[*Client]struct{}),
		broadcast:  make(chan *models.MDisplaySnapshot, 256),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		quit:       make(chan struct{}),
	}

	s.engine.Use(gin.Recovery())
	s.engine.Use(func(c *gin.Context) {
		origin := c.Request.Header.Get("Origin")
		if strings.HasPrefix(origin, "http://127.0.0.1:") || strings.HasPrefix(origin, "http://localhost:") {
			c.Writer.Header().Set("Access-Control-Allow-Origin", origin)
		}
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Accept, Origin, Cache-Control, X-Requested-With")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT")

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	})

	s.setupRoutes()
	go s.handleWebsockets()
	return s
}

// -----------------------------------------------------------------------------
// Route Setup
// -----------------------------------------------------------------------------

func (s *APIServer) setupRoutes() {
	api := s.engine.Group("/api")
	api.GET("/health", s.getHealth)
	api.GET("/symbols", s.getSymbols)
	api.PUT("/symbols", s.putSymbols)
	api.POST("/symbols/:symbol/toggle", s.toggleSymbol)
	api.GET("/display", s.getDisplay)
	api.GET("/display/:symbol", s.getDisplaySymbol)
	api.GET("/series/:symbol", s.getSeries)
	api.GET("/activity", s.getActivity)

	// WebSocket endpoint
	s.engine.GET("/ws", s.handleWebSocket)
}

// -----------------------------------------------------------------------------

// Handler exposes the router (tests, embedding).
func (s *APIServer) Handler() http.Handler {
	return s.engine
}

// -----------------------------------------------------------------------------
// Server Lifecycle
// -----------------------------------------------------------------------------

// Start serves HTTP until Stop. Returns nil after a clean shutdown.
func (s *APIServer) Start() error {
	addr := fmt.Sprintf("%s:%d", s.Config.Host, s.Config.Port)
	s.httpSrv = &http.Server{Addr: addr, Handler: s.engine}
	s.Logger.Info("Starting server on %s", addr)

	if err := s.httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// -----------------------------------------------------------------------------

// Stop shuts the HTTP server down and stops the hub.
func (s *APIServer) Stop(ctx context.Context) error {
	var err error
	if s.httpSrv != nil {
		err = s.httpSrv.Shutdown(ctx)
	}
	s.stopOnce.Do(func() { close(s.quit) })
	return err
}

// -----------------------------------------------------------------------------
// Route Handlers
// -----------------------------------------------------------------------------

func (s *APIServer) getHealth(c *gin.Context) {
	s.stateMutex.RLock()
	connections := len(s.clients)
	var timestamp int64
	if s.latestState != nil {
		timestamp = s.latestState.Timestamp
	}
	s.stateMutex.RUnlock()

	c.JSON(http.StatusOK, gin.H{
		"status":        "ok",
		"connected":     s.monitor.IsConnected(),
		"connections":   connections,
		"latest_update": timestamp,
	})
}

// -----------------------------------------------------------------------------

func (s *APIServer) getSymbols(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"symbols":   s.monitor.Symbols(),
		"available": s.Config.Subscription.AvailableSymbols,
	})
}

// -----------------------------------------------------------------------------

type setSymbolsRequest struct {
	Symbols []string `json:"symbols"`
}

func (s *APIServer) putSymbols(c *gin.Context) {
	var req setSymbolsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "body must be {\"symbols\": [...]}"})
		return
	}

	symbols, invalid := s.parseSymbols(req.Symbols)
	if len(invalid) > 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unknown symbols", "symbols": invalid})
		return
	}

	if err := s.monitor.SetSymbols(c.Request.Context(), symbols); err != nil {
		s.Logger.Error("SetSymbols failed: %v", err)
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"symbols": s.monitor.Symbols()})
}

// -----------------------------------------------------------------------------

func (s *APIServer) toggleSymbol(c *gin.Context) {
	symbol := models.NormalizeSymbol(c.Param("symbol"))
	if symbol == "" || !s.Config.IsAvailable(symbol) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unknown symbol", "symbol": symbol})
		return
	}

	present, err := s.monitor.ToggleSymbol(c.Request.Context(), symbol)
	if err != nil {
		s.Logger.Error("ToggleSymbol failed: %v", err)
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"symbol":  symbol,
		"present": present,
		"symbols": s.monitor.Symbols(),
	})
}

// -----------------------------------------------------------------------------

func (s *APIServer) getDisplay(c *gin.Context) {
	c.JSON(http.StatusOK, s.monitor.Snapshot())
}

// -----------------------------------------------------------------------------

func (s *APIServer) getDisplaySymbol(c *gin.Context) {
	symbol := models.NormalizeSymbol(c.Param("symbol"))
	value, ok := s.monitor.Display(symbol)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "no data for symbol", "symbol": symbol})
		return
	}
	c.JSON(http.StatusOK, value)
}

// -----------------------------------------------------------------------------

func (s *APIServer) getSeries(c *gin.Context) {
	symbol := models.NormalizeSymbol(c.Param("symbol"))
	series, ok := s.monitor.Series(symbol)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "no series for symbol", "symbol": symbol})
		return
	}
	c.JSON(http.StatusOK, models.MSeriesUpdate{Symbol: symbol, Chart: series})
}

// -----------------------------------------------------------------------------

func (s *APIServer) getActivity(c *gin.Context) {
	limit := parseLimit(c.Query("limit"), 50, 200)
	c.JSON(http.StatusOK, gin.H{"events": s.monitor.Activity(limit)})
}
