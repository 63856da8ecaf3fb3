package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/rs/cors"
	"golang.org/x/net/netutil"

	"tareas-api/internal/config"
	"tareas-api/internal/docs"
	"tareas-api/internal/tasks"
)

const shutdownTimeout = 5 * time.Second

type Server struct {
	cfg     *config.Config
	log     *log.Logger
	handler http.Handler
}

// New wires routes, docs and middleware around repo.
func New(cfg *config.Config, logger *log.Logger, repo tasks.Repository) (*Server, error) {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /health", tasks.Health)
	tasks.NewHandler(repo, logger).Register(mux)

	if err := docs.Register(mux); err != nil {
		return nil, err
	}

	c := cors.New(cors.Options{
		AllowedOrigins: cfg.AllowedOrigins,
		AllowedMethods: []string{
			http.MethodGet,
			http.MethodHead,
			http.MethodPost,
			http.MethodPatch,
			http.MethodDelete,
		},
		AllowedHeaders: []string{"Content-Type"},
	})

	var h http.Handler = mux
	h = jsonFallback(mux)
	h = recoverPanics(logger, h)
	h = logRequests(logger, h)
	h = c.Handler(h)

	return &Server{cfg: cfg, log: logger, handler: h}, nil
}

func (s *Server) Handler() http.Handler { return s.handler }

// ListenAndServe binds the configured address and serves until ctx is
// cancelled.
func (s *Server) ListenAndServe(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.cfg.Addr())
	if err != nil {
		return fmt.Errorf("listen %s: %w", s.cfg.Addr(), err)
	}
	return s.Serve(ctx, ln)
}

// Serve accepts connections on ln until ctx is cancelled, then shuts down
// gracefully. It returns nil after a clean shutdown.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	if s.cfg.MaxConns > 0 {
		ln = netutil.LimitListener(ln, s.cfg.MaxConns)
	}

	port := s.cfg.Port
	if addr, ok := ln.Addr().(*net.TCPAddr); ok {
		port = addr.Port
	}

	srv := &http.Server{
		Handler:           s.handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Cancelled on return too, so the shutdown goroutine never outlives Serve.
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	s.log.Infof("API en http://localhost:%d", port)
	s.log.Infof("Docs en http://localhost:%d%s", port, docs.RoutePrefix)

	if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
