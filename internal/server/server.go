package server

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/marildoC/runroom/internal/config"
	"github.com/marildoC/runroom/internal/lang"
	"github.com/marildoC/runroom/internal/room"
	"github.com/marildoC/runroom/internal/runner"
)

// Server exposes the execution engine and exam rooms over HTTP and
// WebSocket.
type Server struct {
	cfg    *config.Config
	engine *runner.Engine
	langs  *lang.Registry
	conns  *connRegistry
	hub    *room.Hub
	router chi.Router
	http   *http.Server
}

// New creates a new Server.
func New(cfg *config.Config, engine *runner.Engine, langs *lang.Registry) *Server {
	s := &Server{
		cfg:    cfg,
		engine: engine,
		langs:  langs,
		conns:  newConnRegistry(),
		router: chi.NewRouter(),
	}
	s.hub = room.NewHub(s.conns)
	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	r := s.router

	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)

	r.Get("/", s.handleIndex)
	r.Get("/healthz", s.handleHealthz)
	r.Get("/api/languages", s.handleLanguages)
	r.Get("/ws", s.handleWebSocket)
}

// Start begins listening on the given port.
func (s *Server) Start(port int) error {
	addr := fmt.Sprintf(":%d", port)
	s.http = &http.Server{
		Addr:    addr,
		Handler: s.router,
	}

	log.Printf("runroom server starting on http://localhost%s", addr)
	return s.http.ListenAndServe()
}

// Shutdown tears down every live session and stops the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	log.Println("Shutting down server...")
	s.engine.Shutdown()

	shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	return s.http.Shutdown(shutdownCtx)
}
