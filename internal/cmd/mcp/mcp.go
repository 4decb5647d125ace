// Package mcp parses MCP command flags and selects stdio or HTTP transport.
package mcp

import (
	"context"
	"flag"

	platformcmd "github.com/louisbranch/leaveledger/internal/platform/cmd"
	"github.com/louisbranch/leaveledger/internal/platform/logging"
	"github.com/louisbranch/leaveledger/internal/services/leave/app"
	"github.com/louisbranch/leaveledger/internal/services/mcp/domain"
	"github.com/louisbranch/leaveledger/internal/services/mcp/service"
	"go.uber.org/zap"
)

// Config holds MCP command configuration.
type Config struct {
	HTTPAddr     string   `env:"LEAVELEDGER_MCP_HTTP_ADDR"     envDefault:"localhost:8081"`
	Transport    string   `env:"LEAVELEDGER_MCP_TRANSPORT"     envDefault:"stdio"`
	AllowedHosts []string `env:"LEAVELEDGER_MCP_ALLOWED_HOSTS" envSeparator:","`
	Runtime      app.Settings
	Log          logging.Settings
}

// ParseConfig parses environment and flags into a Config.
func ParseConfig(fs *flag.FlagSet, args []string) (Config, error) {
	var cfg Config
	if err := platformcmd.ParseConfig(&cfg); err != nil {
		return Config{}, err
	}

	fs.StringVar(&cfg.HTTPAddr, "http-addr", cfg.HTTPAddr, "HTTP server address (for HTTP transport)")
	fs.StringVar(&cfg.Transport, "transport", cfg.Transport, "Transport type: stdio or http")
	fs.StringVar(&cfg.Runtime.DBPath, "db", cfg.Runtime.DBPath, "SQLite database path")
	fs.StringVar(&cfg.Log.Level, "log-level", cfg.Log.Level, "log level: debug, info, warn or error")
	if err := platformcmd.ParseArgs(fs, args); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Run starts the MCP server. Logs go to stderr so stdio stays clean for the
// protocol.
func Run(ctx context.Context, cfg Config) error {
	logger, closeLog, err := logging.New(cfg.Log)
	if err != nil {
		return err
	}
	defer func() { _ = closeLog() }()
	logger = logger.With(zap.String("service", platformcmd.ServiceMCP))

	options := platformcmd.RunOptions{Logger: logger}
	return platformcmd.RunWithTelemetry(ctx, platformcmd.ServiceMCP, options, func(ctx context.Context) error {
		rt, err := app.Open(ctx, cfg.Runtime.Config(), logger)
		if err != nil {
			return err
		}
		defer func() {
			if err := rt.Close(); err != nil {
				logger.Warn("close leave store", zap.Error(err))
			}
		}()

		server, err := service.New(domain.Deps{
			Sessions:  rt.Sessions,
			Directory: rt.Directory,
			Ledger:    rt.Ledger,
			Engine:    rt.Engine,
			Logger:    logger,
		})
		if err != nil {
			return err
		}
		return server.Run(ctx, service.Config{
			Transport:    service.TransportKind(cfg.Transport),
			HTTPAddr:     cfg.HTTPAddr,
			AllowedHosts: cfg.AllowedHosts,
		})
	})
}
