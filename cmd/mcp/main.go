// Package main runs the notebook as a Model Context Protocol server.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/Sk16er/Scholar-chat/infrastructure/config"
	"github.com/Sk16er/Scholar-chat/infrastructure/di"
	"github.com/Sk16er/Scholar-chat/interfaces/mcp"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var rootCmd = &cobra.Command{
	Use:   "scholar-mcp",
	Short: "Serve research notebooks over MCP",
	Long: `Start a Model Context Protocol server exposing projects, sources and
grounded chat to AI assistants.

By default the server speaks JSON-RPC over stdio. Use --port to serve the
streamable HTTP transport instead.

Examples:
  # Stdio mode
  scholar-mcp

  # HTTP mode
  scholar-mcp --port 8090`,
	SilenceUsage: true,
	RunE:         runServe,
}

func init() {
	rootCmd.Flags().IntP("port", "p", 0, "HTTP port (0 = use stdio)")
}

func runServe(cmd *cobra.Command, _ []string) error {
	port, err := cmd.Flags().GetInt("port")
	if err != nil {
		return fmt.Errorf("getting port flag: %w", err)
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	container, err := di.InitializeContainer(ctx, cfg)
	if err != nil {
		return fmt.Errorf("initializing container: %w", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		if err := container.Shutdown(shutdownCtx); err != nil {
			container.Logger.Error("Cleanup error", zap.Error(err))
		}
	}()

	server, err := mcp.NewServer(container.CommandBus, container.QueryBus, container.Logger)
	if err != nil {
		return err
	}

	if port > 0 {
		addr := fmt.Sprintf(":%d", port)
		// stdout stays free for the stdio transport, so announce on stderr
		fmt.Fprintf(cmd.ErrOrStderr(), "MCP server listening on http://localhost%s\n", addr)
		return server.RunHTTP(ctx, addr)
	}
	return server.Run(ctx)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		stop()
		os.Exit(1)
	}
}
