package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/schedbot/schedbot/internal/instrumentation"
	"github.com/schedbot/schedbot/internal/logging"
	"github.com/schedbot/schedbot/internal/meetinglog"
	"github.com/schedbot/schedbot/internal/server"
	"github.com/schedbot/schedbot/internal/tools/common"
	"github.com/schedbot/schedbot/internal/tools/schedule_tools"
)

// MetricsConfig holds configuration for the metrics server
type MetricsConfig struct {
	// Enabled determines whether to start the metrics server (default: false)
	Enabled bool

	// Addr is the address for the metrics server (e.g., ":9090")
	Addr string
}

func newServeCmd() *cobra.Command {
	var (
		debugMode      bool
		account        string
		dbPath         string
		metricsEnabled bool
		metricsAddr    string
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the MCP server",
		Long: `Start the Model Context Protocol (MCP) server to expose the scheduling
tools (check_calendar, schedule_meeting, find_free_time) to AI assistants
over stdio.

The scheduled meetings are recorded in a local meeting log database in
addition to Google Calendar.

Authentication:
  Calendar access uses the OAuth token stored by 'schedbot auth'. A missing
  token does not prevent startup; tool calls report the problem instead.

Metrics:
  With --metrics-enabled, Prometheus metrics and health endpoints are served
  on a dedicated port (--metrics-addr), away from the stdio transport.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			metricsConfig := MetricsConfig{
				Enabled: metricsEnabled,
				Addr:    metricsAddr,
			}
			if !cmd.Flags().Changed("metrics-enabled") && os.Getenv("METRICS_ENABLED") == "true" {
				metricsConfig.Enabled = true
			}
			if !cmd.Flags().Changed("metrics-addr") {
				if addr := os.Getenv("METRICS_ADDR"); addr != "" {
					metricsConfig.Addr = addr
				}
			}
			if !cmd.Flags().Changed("meeting-log") {
				if path := os.Getenv("SCHEDBOT_DB"); path != "" {
					dbPath = path
				}
			}

			return runServe(debugMode, account, dbPath, metricsConfig)
		},
	}

	cmd.Flags().BoolVar(&debugMode, "debug", false, "Enable debug logging")
	cmd.Flags().StringVar(&account, "account", "default", "Google account name to use (default: 'default')")
	cmd.Flags().StringVar(&dbPath, "meeting-log", meetinglog.DefaultPath, "Path of the meeting log database file. Can also use SCHEDBOT_DB env var.")
	cmd.Flags().BoolVar(&metricsEnabled, "metrics-enabled", false, "Enable the metrics server on a dedicated port. Can also use METRICS_ENABLED env var.")
	cmd.Flags().StringVar(&metricsAddr, "metrics-addr", server.DefaultMetricsAddr, "Metrics server address. Can also use METRICS_ADDR env var.")

	return cmd
}

func runServe(debugMode bool, account, dbPath string, metricsConfig MetricsConfig) error {
	_ = godotenv.Load()

	level := slog.LevelInfo
	if debugMode {
		level = slog.LevelDebug
	}
	logger := logging.NewLogger(level)

	// Setup graceful shutdown
	shutdownCtx, cancel := signal.NotifyContext(context.Background(),
		os.Interrupt, syscall.SIGTERM)
	defer cancel()

	// Initialize instrumentation provider
	instrConfig := instrumentation.DefaultConfig()
	instrConfig.ServiceVersion = version

	provider, err := instrumentation.NewProvider(shutdownCtx, instrConfig)
	if err != nil {
		return fmt.Errorf("failed to create instrumentation provider: %w", err)
	}
	defer func() {
		if err := provider.Shutdown(shutdownCtx); err != nil {
			logger.Error("error during instrumentation shutdown", logging.Err(err))
		}
	}()

	// Create server context
	serverContext, err := server.NewServerContext(shutdownCtx, meetinglog.NewStore(dbPath), logger)
	if err != nil {
		return fmt.Errorf("failed to create server context: %w", err)
	}

	// Start metrics server if enabled
	var metricsServer *server.MetricsServer
	if metricsConfig.Enabled && provider.Enabled() {
		metricsServer, err = server.NewMetricsServer(server.MetricsServerConfig{
			Addr:                    metricsConfig.Addr,
			InstrumentationProvider: provider,
			HealthChecker:           server.NewHealthChecker(serverContext),
		})
		if err != nil {
			return fmt.Errorf("failed to create metrics server: %w", err)
		}

		// Use ready channel to confirm metrics server started successfully
		metricsReady := make(chan struct{})
		metricsErr := make(chan error, 1)
		go func() {
			if err := metricsServer.StartWithReadySignal(metricsReady); err != nil && err != http.ErrServerClosed {
				metricsErr <- err
			}
			close(metricsErr)
		}()

		select {
		case <-metricsReady:
			logger.Info("metrics server started", "addr", metricsServer.Addr())
		case err := <-metricsErr:
			return fmt.Errorf("metrics server failed to start: %w", err)
		case <-time.After(5 * time.Second):
			return fmt.Errorf("metrics server startup timed out")
		}
	}

	defer func() {
		if metricsServer != nil {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			if err := metricsServer.Shutdown(shutdownCtx); err != nil {
				logger.Error("error during metrics server shutdown", logging.Err(err))
			}
		}
		if err := serverContext.Shutdown(); err != nil {
			logger.Error("error during server context shutdown", logging.Err(err))
		}
	}()

	// Create MCP server
	mcpSrv := mcpserver.NewMCPServer("schedbot", version,
		mcpserver.WithToolCapabilities(true),
	)

	// Build and register the scheduling tools
	var metrics *instrumentation.Metrics
	if provider.Enabled() {
		metrics = provider.Metrics()
	}

	registry, err := schedule_tools.NewToolset(
		server.NewGateway(serverContext, account),
		serverContext.Store(),
		logger,
		metrics,
	)
	if err != nil {
		return fmt.Errorf("failed to build toolset: %w", err)
	}
	registry, err = common.InstrumentAll(registry, metrics, logger)
	if err != nil {
		return fmt.Errorf("failed to instrument toolset: %w", err)
	}

	if err := schedule_tools.RegisterScheduleTools(mcpSrv, registry); err != nil {
		return fmt.Errorf("failed to register scheduling tools: %w", err)
	}

	return runStdioServer(mcpSrv)
}

func runStdioServer(mcpSrv *mcpserver.MCPServer) error {
	serverDone := make(chan error, 1)
	go func() {
		defer close(serverDone)
		if err := mcpserver.ServeStdio(mcpSrv); err != nil {
			serverDone <- err
		}
	}()

	err := <-serverDone
	if err != nil {
		return fmt.Errorf("server stopped with error: %w", err)
	}
	return nil
}
