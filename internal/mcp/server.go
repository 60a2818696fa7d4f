// Package mcp exposes training load, coaching and session queries as MCP tools.
package mcp

import (
	"context"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"go.uber.org/zap"

	"trainingload/internal/service"
)

// Server wraps the MCP server with service access.
type Server struct {
	mcpServer *mcp.Server
	query     *service.QueryService
	importer  *service.ImportService
	log       *zap.SugaredLogger
	now       func() time.Time
}

// NewServer creates a new MCP server backed by the given services.
func NewServer(query *service.QueryService, importer *service.ImportService, log *zap.SugaredLogger) *Server {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	mcpServer := mcp.NewServer(
		&mcp.Implementation{
			Name:    "trainingload",
			Version: "1.0.0",
		},
		nil,
	)

	s := &Server{
		mcpServer: mcpServer,
		query:     query,
		importer:  importer,
		log:       log,
		now:       time.Now,
	}

	s.registerTools()
	s.registerResources()

	return s
}

// Serve runs the MCP server over stdio until ctx is done or the client disconnects.
func (s *Server) Serve(ctx context.Context) error {
	s.log.Info("Starting MCP server")
	err := s.mcpServer.Run(ctx, &mcp.StdioTransport{})
	s.log.Infow("MCP server stopped", "error", err)
	return err
}
