package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"slices"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"simlab-dashboard/internal/config"
	"simlab-dashboard/internal/handler"
	"simlab-dashboard/internal/pkg/logger"
	"simlab-dashboard/internal/router"
	"simlab-dashboard/internal/service"
	"simlab-dashboard/internal/session"
)

func main() {
	cfg := config.LoadConfig()

	appLogger, err := logger.NewLogger(cfg.Logging.Level, cfg.Logging.Format)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer appLogger.Sync()

	if err := cfg.Validate(); err != nil {
		appLogger.Fatal("Invalid configuration", zap.Error(err))
	}
	if cfg.SSH.InsecureIgnoreHostKey {
		appLogger.Warn("SSH host key verification is disabled; connections can be intercepted")
	}
	if cfg.Session.Secret == "" {
		appLogger.Warn("SESSION_SECRET not set; sessions will not survive a restart")
	}

	// services
	connector := service.NewSSHConnector(cfg.RemoteTarget())
	catalog := service.NewNodeCatalog(cfg.Cluster.Nodes)
	sshService := service.NewSSHService(connector, connector.Target(), appLogger)
	metricsService := service.NewMetricsService(connector, catalog, cfg.Cluster.ScontrolBin, appLogger)

	tokens, err := session.NewTokens(cfg.Session.Secret)
	if err != nil {
		appLogger.Fatal("Failed to initialize session tokens", zap.Error(err))
	}
	sessions := handler.NewSessions(session.NewMemoryStore(cfg.Session.TTL), tokens,
		cfg.Session.CookieName, cfg.Session.CookieSecure)

	// handlers
	authHandler := handler.NewAuthHandler(sshService, sessions)
	nodeHandler := handler.NewNodeHandler(metricsService, sessions)
	wsHandler := handler.NewWSHandler(metricsService, sessions, cfg.Server.AllowOrigins, appLogger)

	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(handler.RequestLogger(appLogger))
	r.Use(gin.Recovery())

	corsConfig := cors.DefaultConfig()
	if slices.Contains(cfg.Server.AllowOrigins, "*") {
		corsConfig.AllowAllOrigins = true
	} else {
		corsConfig.AllowOrigins = cfg.Server.AllowOrigins
	}
	corsConfig.AllowMethods = []string{"GET", "POST", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Length", "Content-Type"}
	corsConfig.AllowCredentials = true
	corsConfig.MaxAge = 12 * time.Hour
	r.Use(cors.New(corsConfig))

	router.RegisterRoutes(r, sessions, authHandler, nodeHandler, wsHandler)

	srv := &http.Server{
		Addr:         cfg.Server.ListenAddr(),
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		appLogger.Info("Server starting",
			zap.String("address", srv.Addr),
			zap.String("cluster", connector.Target()),
			zap.Int("nodes", len(catalog.Nodes())),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			appLogger.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	appLogger.Info("Shutting down server")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		appLogger.Error("Server forced to shutdown", zap.Error(err))
	}
}
