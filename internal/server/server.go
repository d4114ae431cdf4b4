// Package server exposes live topology charts over HTTP.
//
// Each chart created through the API lives in memory as a [chart.Chart]
// bound to its own scene container and is mirrored to a [store.Store] so
// it survives a restart: a request for a chart that is not in memory
// reloads it from its last snapshot. Static renders go through the
// cached [pipeline.Runner].
package server

import (
	"context"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/matzehuels/topochart/pkg/chart"
	"github.com/matzehuels/topochart/pkg/errors"
	"github.com/matzehuels/topochart/pkg/force"
	"github.com/matzehuels/topochart/pkg/pipeline"
	"github.com/matzehuels/topochart/pkg/registry"
	"github.com/matzehuels/topochart/pkg/store"
	"github.com/matzehuels/topochart/pkg/vizutil"
)

// Timeouts applied by [Server.ListenAndServe].
const (
	ReadTimeout     = 10 * time.Second
	WriteTimeout    = 30 * time.Second
	IdleTimeout     = 60 * time.Second
	ShutdownTimeout = 5 * time.Second
)

// Options configures a Server.
type Options struct {
	// Chart is applied to every chart before request overrides.
	Chart []chart.Option

	// StepInterval paces live charts. Zero means force.DefaultInterval.
	StepInterval time.Duration

	// HoverEndpoint embeds the hover POST endpoint in served svgs.
	HoverEndpoint bool
}

// Server holds the live charts and the HTTP routes over them.
type Server struct {
	opts     Options
	logger   *log.Logger
	registry *registry.Registry
	runner   *pipeline.Runner
	store    store.Store
	resizer  *vizutil.Resizer
	router   chi.Router
	newID    func() string

	ctx    context.Context
	cancel context.CancelFunc

	mu       sync.RWMutex
	sessions map[string]*session
}

// New creates a server. A nil runner gets an uncached one, a nil store an
// in-memory store and a nil logger discards output.
func New(runner *pipeline.Runner, st store.Store, logger *log.Logger, opts Options) *Server {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	if runner == nil {
		runner = pipeline.NewRunner(nil, nil, nil, logger)
	}
	if st == nil {
		st = store.NewMemory()
	}
	if opts.StepInterval <= 0 {
		opts.StepInterval = force.DefaultInterval
	}

	ctx, cancel := context.WithCancel(context.Background())
	s := &Server{
		opts:     opts,
		logger:   logger,
		registry: runner.Registry,
		runner:   runner,
		store:    st,
		resizer:  vizutil.NewResizer(logger),
		newID:    uuid.NewString,
		ctx:      ctx,
		cancel:   cancel,
		sessions: make(map[string]*session),
	}
	s.router = s.routes()
	return s
}

// Handler returns the root HTTP handler.
func (s *Server) Handler() http.Handler { return s.router }

// ListenAndServe serves on addr until ctx is cancelled, then shuts down
// gracefully and stops every live chart.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:         addr,
		Handler:      s.router,
		ReadTimeout:  ReadTimeout,
		WriteTimeout: WriteTimeout,
		IdleTimeout:  IdleTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("listening", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		s.Close()
		if err == http.ErrServerClosed {
			return nil
		}
		return errors.Wrap(errors.ErrCodeInternal, err, "listen on %s", addr)
	case <-ctx.Done():
	}

	s.logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), ShutdownTimeout)
	defer cancel()
	err := srv.Shutdown(shutdownCtx)
	s.Close()
	if err != nil {
		return errors.Wrap(errors.ErrCodeTimeout, err, "shutdown")
	}
	return nil
}

// Close stops every live chart and drops them from memory. Snapshots stay
// in the store.
func (s *Server) Close() {
	s.cancel()

	s.mu.Lock()
	sessions := s.sessions
	s.sessions = make(map[string]*session)
	s.mu.Unlock()

	for _, sess := range sessions {
		sess.close()
	}
}

// Len returns the number of charts held in memory.
func (s *Server) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}
