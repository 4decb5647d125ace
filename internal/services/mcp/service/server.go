package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/louisbranch/leaveledger/internal/services/mcp/domain"
	"github.com/modelcontextprotocol/go-sdk/mcp"
	"go.uber.org/zap"
)

const (
	// serverName identifies this MCP server to clients.
	serverName = "leaveledger"
	// serverVersion identifies the MCP server version.
	serverVersion = "0.1.0"
)

// TransportKind identifies the MCP transport implementation.
type TransportKind string

const (
	// TransportStdio uses standard input/output for MCP.
	TransportStdio TransportKind = "stdio"
	// TransportHTTP serves MCP over the streamable HTTP transport.
	TransportHTTP TransportKind = "http"
)

// Config configures the MCP server.
type Config struct {
	Transport TransportKind
	// HTTPAddr defaults to localhost:8081 for HTTP transport.
	HTTPAddr string
	// AllowedHosts extends the loopback hosts accepted in Host and Origin
	// headers.
	AllowedHosts []string
}

// Server hosts the MCP server.
type Server struct {
	mcpServer *mcp.Server
	logger    *zap.Logger
}

// New creates an MCP server with every leave tool registered against deps.
func New(deps domain.Deps) (*Server, error) {
	if deps.Sessions == nil || deps.Directory == nil || deps.Ledger == nil || deps.Engine == nil {
		return nil, errors.New("mcp server dependencies are incomplete")
	}
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	mcpServer := mcp.NewServer(&mcp.Implementation{Name: serverName, Version: serverVersion}, &mcp.ServerOptions{
		Instructions: "Call login first and pass the returned token to every other tool.",
	})

	for _, module := range newMCPRegistrationModules(deps) {
		if err := module.register(mcpServerRegistrationAdapter{server: mcpServer}); err != nil {
			return nil, fmt.Errorf("register MCP module %q: %w", module.name, err)
		}
		logger.Debug("registered mcp module", zap.String("module", module.name))
	}

	return &Server{mcpServer: mcpServer, logger: logger}, nil
}

// Run serves the MCP server over the configured transport and blocks until
// ctx is canceled.
func (s *Server) Run(ctx context.Context, cfg Config) error {
	if cfg.Transport == "" {
		cfg.Transport = TransportStdio
	}

	switch cfg.Transport {
	case TransportStdio:
		s.logger.Info("serving mcp", zap.String("transport", string(TransportStdio)))
		return s.serveWithTransport(ctx, &mcp.StdioTransport{})
	case TransportHTTP:
		return NewHTTPTransport(cfg, s.mcpServer, s.logger).Start(ctx)
	default:
		return fmt.Errorf("transport %q is not supported", cfg.Transport)
	}
}

// serveWithTransport runs the MCP server on transport. Cancellation is a
// normal exit.
func (s *Server) serveWithTransport(ctx context.Context, transport mcp.Transport) error {
	if s == nil || s.mcpServer == nil {
		return fmt.Errorf("MCP server is not configured")
	}
	if ctx == nil {
		ctx = context.Background()
	}
	err := s.mcpServer.Run(ctx, transport)
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		err = nil
	}
	return err
}
