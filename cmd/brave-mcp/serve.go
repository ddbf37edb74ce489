package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/mark3labs/mcp-go/server"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"github.com/entrhq/brave-mcp/pkg/browser"
	"github.com/entrhq/brave-mcp/pkg/logging"
	browsertools "github.com/entrhq/brave-mcp/pkg/tools/browser"
)

const shutdownTimeout = 20 * time.Second

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the MCP server on stdin/stdout",
	Long: `Starts the MCP server over stdio. The browser is launched lazily on the
first tool call and closed when the client disconnects or the process is
interrupted. Logs go to ~/.brave-mcp/logs, never to stdout.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		metricsAddr, _ := cmd.Flags().GetString("metrics-addr")
		return runServe(cmd, metricsAddr)
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().String("metrics-addr", "", "Serve Prometheus metrics on this address, e.g. 127.0.0.1:9464")
}

func runServe(cmd *cobra.Command, metricsAddr string) error {
	// On error NewLogger has already fallen back to stderr
	logger, _ := logging.NewLogger("server")
	defer logger.Close()

	st, err := loadSettings(cmd.Flags())
	if err != nil {
		return err
	}
	logger.Infof("brave-mcp %s starting (settings %s, headless=%t, ports %d-%d)",
		version, st.ConfigPath, st.Browser.Headless, st.Browser.PortRangeStart, st.Browser.PortRangeEnd)

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	metrics := browser.NewMetrics(registry)

	launcher := browser.NewPlaywrightLauncher(logger.With("launcher"))
	manager, err := browser.NewSessionManager(launcher, st.Browser,
		browser.WithLogger(logger.With("session")),
		browser.WithMetrics(metrics),
	)
	if err != nil {
		return err
	}

	var metricsServer *http.Server
	if metricsAddr != "" {
		metricsServer = startMetricsServer(metricsAddr, registry, logger)
	}

	s := server.NewMCPServer("brave-mcp", version,
		server.WithToolCapabilities(false),
		server.WithRecovery(),
	)
	browsertools.NewToolset(manager, st.Launch, logger.With("tools")).Register(s)

	logger.Infof("serving MCP over stdio")
	serveErr := server.ServeStdio(s)

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := manager.Shutdown(ctx); err != nil {
		logger.Errorf("shutdown: %v", err)
	}
	if metricsServer != nil {
		if err := metricsServer.Shutdown(ctx); err != nil {
			logger.Errorf("metrics server shutdown: %v", err)
		}
	}

	if serveErr != nil && !errors.Is(serveErr, context.Canceled) {
		return fmt.Errorf("mcp server: %w", serveErr)
	}
	logger.Infof("stopped")
	return nil
}

func startMetricsServer(addr string, registry *prometheus.Registry, logger *logging.Logger) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{Registry: registry}))

	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		logger.Infof("metrics listening on %s", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Errorf("metrics server: %v", err)
		}
	}()
	return srv
}
