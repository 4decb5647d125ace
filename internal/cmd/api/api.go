// Package api parses REST command flags and runs the leave HTTP API.
package api

import (
	"context"
	"flag"

	"github.com/gin-gonic/gin"
	platformcmd "github.com/louisbranch/leaveledger/internal/platform/cmd"
	"github.com/louisbranch/leaveledger/internal/platform/logging"
	"github.com/louisbranch/leaveledger/internal/services/leave/app"
	"go.uber.org/zap"
)

// Config holds REST command configuration.
type Config struct {
	HTTPAddr string `env:"LEAVELEDGER_HTTP_ADDR" envDefault:"localhost:8000"`
	Runtime  app.Settings
	Log      logging.Settings
}

// ParseConfig parses environment and flags into a Config.
func ParseConfig(fs *flag.FlagSet, args []string) (Config, error) {
	var cfg Config
	if err := platformcmd.ParseConfig(&cfg); err != nil {
		return Config{}, err
	}

	fs.StringVar(&cfg.HTTPAddr, "http-addr", cfg.HTTPAddr, "HTTP listen address")
	fs.StringVar(&cfg.Runtime.DBPath, "db", cfg.Runtime.DBPath, "SQLite database path")
	fs.StringVar(&cfg.Log.Level, "log-level", cfg.Log.Level, "log level: debug, info, warn or error")
	if err := platformcmd.ParseArgs(fs, args); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Run serves the REST API until ctx is canceled.
func Run(ctx context.Context, cfg Config) error {
	logger, closeLog, err := logging.New(cfg.Log)
	if err != nil {
		return err
	}
	defer func() { _ = closeLog() }()
	logger = logger.With(zap.String("service", platformcmd.ServiceAPI))

	gin.SetMode(gin.ReleaseMode)

	options := platformcmd.RunOptions{Logger: logger}
	return platformcmd.RunWithTelemetry(ctx, platformcmd.ServiceAPI, options, func(ctx context.Context) error {
		rt, err := app.Open(ctx, cfg.Runtime.Config(), logger)
		if err != nil {
			return err
		}
		defer func() {
			if err := rt.Close(); err != nil {
				logger.Warn("close leave store", zap.Error(err))
			}
		}()
		return rt.ServeHTTP(ctx, cfg.HTTPAddr)
	})
}
