// Package ipc implements the local command channel between a running
// spotbeam instance and later `-c` invocations: a small JSON API served
// over a per-user unix domain socket.
package ipc

import (
	"context"
	"net"
	"net/http"
	"os"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
)

// Executor is the running instance's command surface.
type Executor interface {
	// Execute runs one command string ("spot=on", "quit", ...).
	Execute(cmd string) error

	// Status describes the instance state.
	Status() map[string]interface{}

	// Properties returns the effective value of every settings property.
	Properties() (map[string]string, error)
}

type Server struct {
	socketPath string
	handler    *Handler
	server     *http.Server
	log        zerolog.Logger
}

// Timeouts bounds the HTTP exchanges on the IPC socket. Zero values fall
// back to defaults.
type Timeouts struct {
	Read  time.Duration
	Write time.Duration
	Idle  time.Duration
}

func (t Timeouts) withDefaults() Timeouts {
	if t.Read <= 0 {
		t.Read = 10 * time.Second
	}
	if t.Write <= 0 {
		t.Write = 10 * time.Second
	}
	if t.Idle <= 0 {
		t.Idle = 60 * time.Second
	}
	return t
}

func NewServer(socketPath string, exec Executor, timeouts Timeouts, log zerolog.Logger) *Server {
	handler := NewHandler(exec, log)
	mux := http.NewServeMux()
	handler.SetupRoutes(mux)

	timeouts = timeouts.withDefaults()
	httpServer := &http.Server{
		Handler:      mux,
		ReadTimeout:  timeouts.Read,
		WriteTimeout: timeouts.Write,
		IdleTimeout:  timeouts.Idle,
	}

	return &Server{
		socketPath: socketPath,
		handler:    handler,
		server:     httpServer,
		log:        log,
	}
}

// Start listens on the unix socket and serves until Shutdown. A stale
// socket file left by a crashed instance is removed first; the instance
// guard already ensures no live instance owns it.
func (s *Server) Start() error {
	if err := os.Remove(s.socketPath); err != nil && !os.IsNotExist(err) {
		return errors.Wrap(err, "failed to remove stale IPC socket")
	}

	listener, err := net.Listen("unix", s.socketPath)
	if err != nil {
		return errors.Wrapf(err, "failed to listen on %s", s.socketPath)
	}

	s.log.Info().Str("socket", s.socketPath).Msg("IPC server listening")
	return s.server.Serve(listener)
}

func (s *Server) Shutdown(ctx context.Context) error {
	s.log.Info().Msg("shutting down IPC server")
	err := s.server.Shutdown(ctx)
	if removeErr := os.Remove(s.socketPath); removeErr != nil && !os.IsNotExist(removeErr) && err == nil {
		err = removeErr
	}
	return err
}

func (s *Server) SocketPath() string {
	return s.socketPath
}
