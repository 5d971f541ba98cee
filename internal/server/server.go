package server

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"
	"github.com/gorilla/websocket"

	"github.com/lox/blackjack/internal/game"
	"github.com/lox/blackjack/internal/protocol"
)

const writeWait = 5 * time.Second

// Server exposes a game.Table over HTTP
type Server struct {
	addr         string
	table        *game.Table
	upgrader     websocket.Upgrader
	logger       *log.Logger
	clock        quartz.Clock
	pollInterval time.Duration
	httpServer   *http.Server

	mu       sync.Mutex
	watchers int
	ctx      context.Context
	cancel   context.CancelFunc
}

// Option configures a Server
type Option func(*Server)

// WithClock sets the clock driving /ws pushes
func WithClock(clock quartz.Clock) Option {
	return func(s *Server) {
		s.clock = clock
	}
}

// WithPollInterval sets how often /ws pushes a snapshot
func WithPollInterval(d time.Duration) Option {
	return func(s *Server) {
		s.pollInterval = d
	}
}

// NewServer creates a server for table listening on addr
func NewServer(addr string, table *game.Table, logger *log.Logger, opts ...Option) *Server {
	ctx, cancel := context.WithCancel(context.Background())

	s := &Server{
		addr:  addr,
		table: table,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				// Browsers on any origin may watch the table
				return true
			},
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
		logger:       logger.WithPrefix("server"),
		clock:        quartz.NewReal(),
		pollInterval: time.Second,
		ctx:          ctx,
		cancel:       cancel,
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Handler returns the HTTP routes for the table
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST "+protocol.PathJoin, s.handleJoin)
	mux.HandleFunc("POST "+protocol.PathStart, s.handleStart)
	mux.HandleFunc("POST "+protocol.PathBet, s.handleBet)
	mux.HandleFunc("POST "+protocol.PathHit, s.handleHit)
	mux.HandleFunc("POST "+protocol.PathStand, s.handleStand)
	mux.HandleFunc("GET "+protocol.PathState, s.handleState)
	mux.HandleFunc("GET "+protocol.PathHealth, s.handleHealth)
	mux.HandleFunc("GET "+protocol.PathWatch, s.handleWatch)
	return mux
}

// Start serves until Shutdown is called. It returns http.ErrServerClosed
// after a clean shutdown.
func (s *Server) Start() error {
	s.mu.Lock()
	s.httpServer = &http.Server{
		Addr:              s.addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	srv := s.httpServer
	s.mu.Unlock()

	if s.ctx.Err() != nil {
		return http.ErrServerClosed
	}

	s.logger.Info("Starting table server", "addr", s.addr)
	return srv.ListenAndServe()
}

// Shutdown stops accepting requests, closes watchers and halts the table's
// timers
func (s *Server) Shutdown(ctx context.Context) error {
	s.cancel()
	s.table.Stop()

	s.mu.Lock()
	srv := s.httpServer
	s.mu.Unlock()

	if srv == nil {
		return nil
	}
	return srv.Shutdown(ctx)
}

func (s *Server) handleJoin(w http.ResponseWriter, r *http.Request) {
	var req protocol.Join
	if !s.decode(w, r, &req) {
		return
	}

	id := s.table.Join(req.Name)
	s.writeJSON(w, http.StatusOK, protocol.Joined{PlayerID: id, Game: s.table.Snapshot()})
}

func (s *Server) handleStart(w http.ResponseWriter, r *http.Request) {
	s.reject(r, "", s.table.Start())
	s.writeSnapshot(w)
}

func (s *Server) handleBet(w http.ResponseWriter, r *http.Request) {
	var req protocol.Bet
	if !s.decode(w, r, &req) {
		return
	}

	s.reject(r, req.PlayerID, s.table.PlaceBet(req.PlayerID, req.Amount))
	s.writeSnapshot(w)
}

func (s *Server) handleHit(w http.ResponseWriter, r *http.Request) {
	var req protocol.Action
	if !s.decode(w, r, &req) {
		return
	}

	s.reject(r, req.PlayerID, s.table.Hit(req.PlayerID))
	s.writeSnapshot(w)
}

func (s *Server) handleStand(w http.ResponseWriter, r *http.Request) {
	var req protocol.Action
	if !s.decode(w, r, &req) {
		return
	}

	s.reject(r, req.PlayerID, s.table.Stand(req.PlayerID))
	s.writeSnapshot(w)
}

func (s *Server) handleState(w http.ResponseWriter, r *http.Request) {
	s.writeSnapshot(w)
}

// handleHealth handles health check requests
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = fmt.Fprintf(w, "OK") // Ignore write errors for health check
}

// handleWatch streams a snapshot on connect and then every poll interval
func (s *Server) handleWatch(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Error("Failed to upgrade connection", "error", err)
		return
	}
	defer func() { _ = conn.Close() }()

	s.mu.Lock()
	s.watchers++
	total := s.watchers
	s.mu.Unlock()
	s.logger.Info("Watcher connected", "total", total)

	defer func() {
		s.mu.Lock()
		s.watchers--
		total := s.watchers
		s.mu.Unlock()
		s.logger.Info("Watcher disconnected", "total", total)
	}()

	// Watchers never send anything we act on; reading only detects close.
	closed := make(chan struct{})
	go func() {
		defer close(closed)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	ticker := s.clock.NewTicker(s.pollInterval, "server", "watch")
	defer ticker.Stop()

	for {
		if err := s.push(conn); err != nil {
			s.logger.Debug("Watcher write failed", "error", err)
			return
		}

		select {
		case <-ticker.C:
		case <-closed:
			return
		case <-s.ctx.Done():
			_ = conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseGoingAway, "server shutting down"),
				time.Now().Add(writeWait))
			return
		}
	}
}

func (s *Server) push(conn *websocket.Conn) error {
	data, err := protocol.Marshal(s.table.Snapshot())
	if err != nil {
		return err
	}
	_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
	return conn.WriteMessage(websocket.TextMessage, data)
}

// Watchers returns the number of connected /ws clients
func (s *Server) Watchers() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.watchers
}

func (s *Server) decode(w http.ResponseWriter, r *http.Request, v interface{}) bool {
	if err := protocol.Decode(r.Body, v); err != nil {
		s.logger.Debug("Bad request", "path", r.URL.Path, "error", err)
		s.writeJSON(w, http.StatusBadRequest, protocol.Error{Error: err.Error()})
		return false
	}
	return true
}

// reject logs an action the table refused. The caller still gets the
// unchanged snapshot; rejection is visible only as an absent state change.
func (s *Server) reject(r *http.Request, playerID string, err error) {
	if err == nil {
		return
	}
	s.logger.Debug("Action ignored", "path", r.URL.Path, "player", playerID, "reason", err)
}

func (s *Server) writeSnapshot(w http.ResponseWriter) {
	s.writeJSON(w, http.StatusOK, s.table.Snapshot())
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v interface{}) {
	data, err := protocol.Marshal(v)
	if err != nil {
		s.logger.Error("Failed to encode response", "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(data)
}
