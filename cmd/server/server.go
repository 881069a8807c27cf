package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/System-rat/mcsmp/cmd/root"
	"github.com/System-rat/mcsmp/controllers"
	"github.com/System-rat/mcsmp/internal/config"
	"github.com/System-rat/mcsmp/internal/logger"
	"github.com/System-rat/mcsmp/internal/middleware"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
)

const shutdownTimeout = 30 * time.Second

var listenAddr string

var serverCmd = &cobra.Command{
	Use:   "server",
	Short: "启动HTTP服务",
	Long:  `加载实例目录中的所有服务器，启动带有.autostart标记的服务器，并提供管理API`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		return startServer(ctx)
	},
}

/**
 * Run the management API until ctx ends
 * @param {context.Context} ctx - Cancelled on SIGINT/SIGTERM
 * @returns {error} Listener or load errors
 * @description
 * - Loads all instances, autostarts marked ones and starts the cache invalidator
 * - On shutdown drains HTTP requests, then stops every running server
 */
func startServer(ctx context.Context) error {
	cfg := config.Get()
	if listenAddr != "" {
		cfg.Server.Address = listenAddr
	}
	gin.SetMode(cfg.Server.Mode)

	connector := root.NewConnector(cfg, false, nil)
	if err := connector.Load(ctx); err != nil {
		return fmt.Errorf("加载实例失败: %w", err)
	}
	connector.Autostart()
	connector.StartInvalidator(ctx, cfg.Instances.InvalidateDuration())

	router := gin.New()
	router.Use(gin.Recovery(), middleware.RequestIDMiddleware(), middleware.MetricsMiddleware())
	controllers.NewAPIController(connector).RegisterRoutes(router)
	controllers.NewServerController(connector).RegisterRoutes(router)
	controllers.NewVersionController(connector.Catalog()).RegisterRoutes(router)

	srv := &http.Server{Addr: cfg.Server.Address, Handler: router}
	errCh := make(chan error, 1)
	go func() {
		logger.Infof("Listening on %s, instances in %s", cfg.Server.Address, connector.Path())
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	var serveErr error
	select {
	case serveErr = <-errCh:
	case <-ctx.Done():
		logger.Info("Shutting down")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Errorf("HTTP shutdown failed: %v", err)
	}
	if err := connector.StopAll(context.Background()); err != nil {
		logger.Errorf("Stopping servers failed: %v", err)
	}
	return serveErr
}

func init() {
	serverCmd.Flags().StringVarP(&listenAddr, "listen", "l", "", "Listen address, overrides server.address")
	root.RootCmd.AddCommand(serverCmd)
}
