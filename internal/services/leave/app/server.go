package app

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"

	"github.com/louisbranch/leaveledger/internal/platform/timeouts"
	"github.com/louisbranch/leaveledger/internal/services/leave/api/httpapi"
	"go.uber.org/zap"
	"golang.org/x/net/netutil"
	"golang.org/x/sync/errgroup"
)

var listenTCP = net.Listen

// HTTPHandler returns the REST router bound to the runtime.
func (r *Runtime) HTTPHandler() http.Handler {
	return httpapi.NewRouter(httpapi.NewHandler(httpapi.Deps{
		Directory: r.Directory,
		Ledger:    r.Ledger,
		Engine:    r.Engine,
		Logger:    r.Logger,
	}))
}

// ServeHTTP serves the REST API on addr until ctx is canceled, then drains
// in-flight requests. Connections beyond the configured cap wait in accept.
func (r *Runtime) ServeHTTP(ctx context.Context, addr string) error {
	listener, err := listenTCP("tcp", addr)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", addr, err)
	}
	if r.maxConnections > 0 {
		listener = netutil.LimitListener(listener, r.maxConnections)
	}
	return serve(ctx, listener, r.HTTPHandler(), r.Logger)
}

func serve(ctx context.Context, listener net.Listener, handler http.Handler, logger *zap.Logger) error {
	if logger == nil {
		logger = zap.NewNop()
	}
	server := &http.Server{
		Handler:           handler,
		ReadHeaderTimeout: timeouts.ReadHeader,
	}

	group, groupCtx := errgroup.WithContext(ctx)
	group.Go(func() error {
		logger.Info("leave api listening", zap.String("addr", listener.Addr().String()))
		if err := server.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("serve http: %w", err)
		}
		return nil
	})
	group.Go(func() error {
		<-groupCtx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), timeouts.Shutdown)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown http: %w", err)
		}
		logger.Info("leave api stopped")
		return nil
	})
	return group.Wait()
}
