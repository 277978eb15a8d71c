// Package server implements the GRASS listener, per-connection session
// state machine, and command handlers. Its shape is grounded on the
// teacher's Server/session split: a listener that accepts and hands off
// connections (Server.Serve/handleConnection), and a per-connection value
// that owns all mutable state for its lifetime (session.serve).
package server

import (
	"log/slog"
	"net"
	"os"
	"path/filepath"
	"strconv"
	"sync"
	"sync/atomic"

	"github.com/gonzalop/grass/internal/grass/config"
)

// Server listens for GRASS control connections and spawns one session per
// accepted connection. Construction follows the teacher's functional-
// options pattern.
type Server struct {
	addr    string
	config  *config.Config
	logger  *slog.Logger
	root    *os.Root
	tempDir string

	activeConns atomic.Int32
	maxConns    int32

	mu       sync.Mutex
	listener net.Listener
	conns    map[*session]struct{}
	shutdown bool
}

// Option configures a Server at construction time.
type Option func(*Server)

// WithLogger overrides the default slog.Logger (which writes to stderr).
func WithLogger(l *slog.Logger) Option {
	return func(s *Server) { s.logger = l }
}

// WithMaxConnections caps the number of simultaneously active sessions. 0
// (the default) means unlimited.
func WithMaxConnections(n int32) Option {
	return func(s *Server) { s.maxConns = n }
}

// New builds a Server bound to addr ("host:port", matching cfg.Port when
// addr's port segment is empty) using cfg as the immutable server
// configuration (base directory, listen port, user directory). The base
// directory is opened once, at construction, as a jailed os.Root shared
// read-only by every session.
func New(addr string, cfg *config.Config, opts ...Option) (*Server, error) {
	root, err := openRoot(cfg.BaseDir)
	if err != nil {
		return nil, err
	}
	if host, port, err := net.SplitHostPort(addr); err == nil && port == "" {
		addr = net.JoinHostPort(host, strconv.Itoa(int(cfg.Port)))
	}

	s := &Server{
		addr:    addr,
		config:  cfg,
		logger:  slog.New(slog.NewTextHandler(os.Stderr, nil)),
		root:    root,
		// Per spec.md §3, output_temp_path must canonicalize to the same
		// directory base_dir itself resides in, not into cwd (which may be
		// any subdirectory a session has cd'd into).
		tempDir: filepath.Dir(cfg.BaseDir),
		conns:   make(map[*session]struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// ListenAndServe binds addr and serves connections until the listener is
// closed or Shutdown is called.
func (s *Server) ListenAndServe() error {
	ln, err := net.Listen("tcp", s.addr)
	if err != nil {
		return err
	}
	return s.Serve(ln)
}

// Serve accepts connections on ln, spawning one session goroutine per
// accepted connection, until ln is closed.
func (s *Server) Serve(ln net.Listener) error {
	s.mu.Lock()
	s.listener = ln
	s.mu.Unlock()

	s.logger.Info("listening", "addr", ln.Addr().String(), "base_dir", s.config.BaseDir)

	for {
		conn, err := ln.Accept()
		if err != nil {
			s.mu.Lock()
			down := s.shutdown
			s.mu.Unlock()
			if down {
				return nil
			}
			return err
		}
		go s.handleConnection(conn)
	}
}

// Shutdown stops accepting new connections. In-flight sessions run to
// completion.
func (s *Server) Shutdown() error {
	s.mu.Lock()
	s.shutdown = true
	ln := s.listener
	s.mu.Unlock()
	s.root.Close()
	if ln != nil {
		return ln.Close()
	}
	return nil
}

func (s *Server) handleConnection(conn net.Conn) {
	if s.maxConns > 0 && s.activeConns.Load() >= s.maxConns {
		conn.Close()
		return
	}
	s.activeConns.Add(1)
	defer s.activeConns.Add(-1)

	sess := newSession(s, conn)

	s.mu.Lock()
	s.conns[sess] = struct{}{}
	s.mu.Unlock()
	defer func() {
		s.mu.Lock()
		delete(s.conns, sess)
		s.mu.Unlock()
	}()

	sess.serve()
}
