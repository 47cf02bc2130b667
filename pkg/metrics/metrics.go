// Package metrics serves wordsmith's Prometheus metrics over HTTP.
//
// # Basic Usage
//
//	reg := metrics.NewRegistry()
//	if err := runMetrics.Register(reg); err != nil {
//	    return err
//	}
//	srv, err := metrics.Serve("127.0.0.1:9090", reg, logger)
//	if err != nil {
//	    return err
//	}
//	defer srv.Shutdown(ctx)
//
// The endpoint is /metrics. Counters are read at scrape time, so a scrape
// during a run observes live totals.
package metrics

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// Path is the scrape endpoint
const Path = "/metrics"

// NewRegistry creates a registry preloaded with Go runtime and process
// collectors.
func NewRegistry() *prometheus.Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return reg
}

// Server exposes a Gatherer on Path
type Server struct {
	srv    *http.Server
	ln     net.Listener
	done   chan struct{}
	logger *zap.Logger
}

// Serve starts listening on addr and serves gatherer in the background.
// Use port 0 to pick a free port; Addr reports the bound address.
func Serve(addr string, gatherer prometheus.Gatherer, logger *zap.Logger) (*Server, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("failed to listen on %s: %w", addr, err)
	}

	mux := http.NewServeMux()
	mux.Handle(Path, promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))

	s := &Server{
		srv: &http.Server{
			Handler:           mux,
			ReadHeaderTimeout: 5 * time.Second,
		},
		ln:     ln,
		done:   make(chan struct{}),
		logger: logger.With(zap.String("component", "metrics")),
	}

	go func() {
		defer close(s.done)
		if err := s.srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("metrics server stopped", zap.Error(err))
		}
	}()
	s.logger.Info("serving metrics", zap.String("addr", s.Addr()), zap.String("path", Path))
	return s, nil
}

// Addr returns the address the server is bound to
func (s *Server) Addr() string {
	return s.ln.Addr().String()
}

// Shutdown stops the server and waits for the serve loop to exit
func (s *Server) Shutdown(ctx context.Context) error {
	err := s.srv.Shutdown(ctx)
	<-s.done
	return err
}
