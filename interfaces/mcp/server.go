// Package mcp exposes the notebook as Model Context Protocol tools and
// resources over the same command and query buses as the REST API.
package mcp

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/Sk16er/Scholar-chat/application/commands/bus"
	querybus "github.com/Sk16er/Scholar-chat/application/queries/bus"
	"github.com/modelcontextprotocol/go-sdk/mcp"
	"go.uber.org/zap"
)

// Version is the MCP server version.
const Version = "0.1.0"

// Server is the MCP server for the notebook.
type Server struct {
	commandBus *bus.CommandBus
	queryBus   *querybus.QueryBus
	logger     *zap.Logger
	server     *mcp.Server
}

// NewServer creates a new MCP server over the buses.
func NewServer(commandBus *bus.CommandBus, queryBus *querybus.QueryBus, logger *zap.Logger) (*Server, error) {
	if commandBus == nil || queryBus == nil {
		return nil, errors.New("mcp: command and query buses are required")
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	s := &Server{
		commandBus: commandBus,
		queryBus:   queryBus,
		logger:     logger,
		server: mcp.NewServer(&mcp.Implementation{
			Name:    "scholar",
			Version: Version,
		}, nil),
	}

	s.registerTools()
	s.registerResources()

	return s, nil
}

// Run serves over stdio until ctx is cancelled or the client disconnects.
func (s *Server) Run(ctx context.Context) error {
	return s.server.Run(ctx, &mcp.StdioTransport{})
}

// Handler returns the streamable HTTP handler for the server.
func (s *Server) Handler() http.Handler {
	return mcp.NewStreamableHTTPHandler(func(_ *http.Request) *mcp.Server {
		return s.server
	}, nil)
}

// RunHTTP serves streamable HTTP on addr until ctx is cancelled.
func (s *Server) RunHTTP(ctx context.Context, addr string) error {
	httpServer := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			s.logger.Warn("MCP HTTP shutdown failed", zap.Error(err))
		}
	}()

	s.logger.Info("MCP server listening", zap.String("address", addr))
	if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("mcp http: %w", err)
	}
	return nil
}
