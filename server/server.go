// Package server implements the TimeFlow HTTP server: REST API, SSE
// real-time events, and the static day-view shell.
package server

import (
	"context"
	"io/fs"
	"log/slog"
	"net/http"
	"time"

	"github.com/timeflowapp/timeflow/clock"
	"github.com/timeflowapp/timeflow/comms"
	"github.com/timeflowapp/timeflow/config"
	"github.com/timeflowapp/timeflow/server/api"
	"github.com/timeflowapp/timeflow/server/sse"
	"github.com/timeflowapp/timeflow/task"
)

// Server is the TimeFlow HTTP server.
type Server struct {
	cfg     config.Config
	mux     *http.ServeMux
	httpSrv *http.Server
	logger  *slog.Logger

	store    task.Store
	planner  api.Planner
	bus      comms.Bus
	hub      *sse.Hub
	detach   func()
	handlers *api.Handlers

	startTime time.Time
	version   string
}

// New creates a new Server with the given config and logger.
func New(cfg config.Config, ver string, logger *slog.Logger) *Server {
	return &Server{
		cfg:       cfg,
		mux:       http.NewServeMux(),
		logger:    logger,
		hub:       sse.NewHub(logger),
		startTime: time.Now(),
		version:   ver,
	}
}

// SetStore attaches the task store the read endpoints query.
func (s *Server) SetStore(store task.Store) {
	s.store = store
}

// SetPlanner attaches the application core mutations go through.
func (s *Server) SetPlanner(p api.Planner) {
	s.planner = p
}

// SetBus attaches the event bus; its events stream out over SSE.
func (s *Server) SetBus(bus comms.Bus) {
	s.bus = bus
}

// SetStaticFS sets the filesystem to serve shell assets from.
// Call before Start.
func (s *Server) SetStaticFS(fsys fs.FS) {
	s.mux.Handle("/", http.FileServerFS(fsys))
}

// Start registers routes and begins listening.
func (s *Server) Start() error {
	s.registerRoutes()

	addr := s.cfg.Server.Addr
	if addr == "" {
		addr = ":8735"
	}
	s.httpSrv = &http.Server{
		Addr:              addr,
		Handler:           s.mux,
		ReadHeaderTimeout: 15 * time.Second,
	}
	s.logger.Info("server listening", slog.String("addr", addr))
	return s.httpSrv.ListenAndServe()
}

// Stop gracefully shuts down the HTTP server.
func (s *Server) Stop(ctx context.Context) error {
	if s.detach != nil {
		s.detach()
	}
	if s.httpSrv == nil {
		return nil
	}
	return s.httpSrv.Shutdown(ctx)
}

// registerRoutes sets up all HTTP routes.
func (s *Server) registerRoutes() {
	h := &api.Handlers{
		Store:   s.store,
		Planner: s.planner,
		Logger:  s.logger,
		Locale:  clock.MatchLocale(s.cfg.Locale),
		Version: s.version,
		StartAt: s.startTime.Unix(),
	}
	s.handlers = h
	h.RegisterRoutes(s.mux)

	s.mux.HandleFunc("GET /events", s.hub.ServeSSE)
	if s.bus != nil {
		s.detach = s.hub.Attach(s.bus)
	}
}
