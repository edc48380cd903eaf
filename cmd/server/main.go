package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	appinvoice "github.com/invoicedesk/backend/internal/application/invoice"
	"github.com/invoicedesk/backend/internal/domain/invoice"
	"github.com/invoicedesk/backend/internal/infrastructure/config"
	"github.com/invoicedesk/backend/internal/infrastructure/logger"
	"github.com/invoicedesk/backend/internal/interfaces/http/handler"
	"github.com/invoicedesk/backend/internal/interfaces/http/middleware"
	"github.com/invoicedesk/backend/internal/interfaces/http/router"
	"github.com/invoicedesk/backend/internal/interfaces/mcp"
	"github.com/invoicedesk/backend/web/widget"
)

const serverVersion = "1.0.0"

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	// Initialize logger
	log, err := logger.New(&logger.Config{
		Level:      cfg.Log.Level,
		Format:     cfg.Log.Format,
		Output:     cfg.Log.Output,
		TimeFormat: "2006-01-02T15:04:05.000Z07:00",
	})
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer func() {
		_ = logger.Sync(log)
	}()

	log.Info("Starting invoice server",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
	)

	// The document every connected surface shares. State lives in
	// memory only; a restart starts a fresh invoice.
	doc := invoice.NewDocumentWith(time.Now(), cfg.Invoice.Number, cfg.Invoice.Currency, cfg.Invoice.NetDays)
	svc := appinvoice.NewDocumentService(doc, log)

	mcpServer := mcp.NewInvoiceServer(cfg.App.Name, serverVersion, svc, widget.HTML, log)

	// Set Gin mode based on environment
	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	engine := gin.New()

	// Middleware stack: request ID first so everything downstream can
	// correlate, then recovery, logging, security headers, CORS.
	engine.Use(middleware.RequestID())
	engine.Use(logger.Recovery(log))
	engine.Use(logger.GinMiddleware(log))
	engine.Use(middleware.Secure())
	engine.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins:  cfg.HTTP.CORSAllowOrigins,
		AllowMethods:  cfg.HTTP.CORSAllowMethods,
		AllowHeaders:  cfg.HTTP.CORSAllowHeaders,
		ExposeHeaders: []string{"X-Request-ID", "Mcp-Session-Id"},
		MaxAge:        12 * time.Hour,
	}))

	// MCP transport sits outside the versioned API group.
	mcpHandler := handler.NewMCPHandler(mcpServer, log)
	engine.Any(cfg.HTTP.MCPPath, mcpHandler.Handle)

	// Versioned REST mirror of the tool set.
	r := router.NewRouter(engine, router.WithAPIVersion("v1"))
	r.Register(handler.NewInvoiceHandler(svc))
	r.Setup()

	// Direct preview of the embedded widget document.
	engine.GET("/widget", func(c *gin.Context) {
		c.Data(http.StatusOK, "text/html; charset=utf-8", []byte(widget.HTML))
	})

	engine.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	engine.GET("/", func(c *gin.Context) {
		c.String(http.StatusOK, "Invoice MCP Server Running. POST %s to connect.", cfg.HTTP.MCPPath)
	})

	// Create HTTP server with config
	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	// Start server in goroutine
	go func() {
		log.Info("Server starting", zap.String("addr", srv.Addr), zap.String("mcp_path", cfg.HTTP.MCPPath))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server forced to shutdown", zap.Error(err))
	}

	log.Info("Server exited gracefully")
}
