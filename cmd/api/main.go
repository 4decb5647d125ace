package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	apicmd "github.com/louisbranch/leaveledger/internal/cmd/api"
	"github.com/louisbranch/leaveledger/internal/platform/config"
)

// main serves the leave REST API.
func main() {
	cfg, err := apicmd.ParseConfig(flag.CommandLine, os.Args[1:])
	if err != nil {
		config.Exitf("parse flags: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := apicmd.Run(ctx, cfg); err != nil {
		config.Exitf("failed to serve leave API: %v", err)
	}
}
