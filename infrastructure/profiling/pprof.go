// Package profiling exposes the runtime pprof endpoints on a separate,
// loopback-only listener.
//
// Endpoints:
//   - /debug/pprof/heap
//   - /debug/pprof/goroutine
//   - /debug/pprof/profile (CPU, 30s default)
//   - /debug/pprof/trace
package profiling

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/http/pprof"
	"time"

	"github.com/jonesrussell/north-cloud/place-schema/infrastructure/logger"
)

const shutdownTimeout = 5 * time.Second

// Handler returns a mux serving the pprof endpoints.
func Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/debug/pprof/", pprof.Index)
	mux.HandleFunc("/debug/pprof/cmdline", pprof.Cmdline)
	mux.HandleFunc("/debug/pprof/profile", pprof.Profile)
	mux.HandleFunc("/debug/pprof/symbol", pprof.Symbol)
	mux.HandleFunc("/debug/pprof/trace", pprof.Trace)
	return mux
}

// Addr returns the loopback address for port.
func Addr(port int) string {
	return fmt.Sprintf("localhost:%d", port)
}

// Serve serves the pprof endpoints on ln until ctx ends.
func Serve(ctx context.Context, ln net.Listener, log logger.Logger) error {
	srv := &http.Server{
		Handler:           Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	log.Info("Starting pprof server", logger.String("address", ln.Addr().String()))
	if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("pprof server: %w", err)
	}
	return nil
}

// Start listens on localhost:port and serves pprof in the background until
// ctx ends. A port of 0 disables profiling.
func Start(ctx context.Context, port int, log logger.Logger) error {
	if port == 0 {
		return nil
	}

	var lc net.ListenConfig
	ln, err := lc.Listen(ctx, "tcp", Addr(port))
	if err != nil {
		return fmt.Errorf("listen for pprof: %w", err)
	}

	go func() {
		if serveErr := Serve(ctx, ln, log); serveErr != nil {
			log.Error("pprof server stopped", logger.Error(serveErr))
		}
	}()
	return nil
}
