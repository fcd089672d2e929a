// Package server streams engine frames and collision events to websocket
// and QUIC clients.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"
	"github.com/quic-go/quic-go"

	"github.com/zeusync/physim/internal/core/events/bus"
	"github.com/zeusync/physim/internal/core/observability/log"
	"github.com/zeusync/physim/internal/core/systems"
	"github.com/zeusync/physim/internal/core/systems/physics/engine"
)

// Message types sent to clients.
const (
	MessageFrame     = "frame"
	MessageCollision = "collision"
)

// Message is the envelope of everything written to clients.
type Message struct {
	Type      string                 `json:"type"`
	Frame     json.RawMessage        `json:"frame,omitempty"`
	Collision *engine.CollisionEvent `json:"collision,omitempty"`
}

// Stats is a point-in-time view of the server.
type Stats struct {
	Clients int    `json:"clients"`
	Frames  uint64 `json:"frames"`
	Dropped uint64 `json:"dropped"`
}

var _ systems.Sink[engine.Frame] = (*Server)(nil)

// Server is a frame sink. Consume never blocks: a client whose send buffer
// is full misses the message.
type Server struct {
	cfg      Config
	logger   log.Log
	upgrader websocket.Upgrader
	sub      bus.Subscription

	mu      sync.RWMutex
	clients map[*client]struct{}
	latest  []byte // last frame as JSON
	closed  bool
	httpSrv *http.Server
	quicLn  *quic.Listener
	wg      sync.WaitGroup

	running atomic.Bool
	frames  atomic.Uint64
	dropped atomic.Uint64
}

// client is one subscriber of the hub, whatever its transport.
type client struct {
	send chan []byte
}

// New creates a server. When eventBus is non-nil, collision events are
// forwarded to clients.
func New(cfg Config, logger log.Log, eventBus bus.EventBus) (*Server, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = log.NewNop()
	}
	s := &Server{
		cfg:    cfg,
		logger: logger.With(log.Component("server")),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
		clients: make(map[*client]struct{}),
	}
	if eventBus != nil {
		sub, err := eventBus.Subscribe(engine.EventCollision, s.onCollision)
		if err != nil {
			return nil, fmt.Errorf("subscribe to %s: %w", engine.EventCollision, err)
		}
		s.sub = sub
	}
	return s, nil
}

func (s *Server) Name() string { return "server" }

func (s *Server) Stats() Stats {
	s.mu.RLock()
	n := len(s.clients)
	s.mu.RUnlock()
	return Stats{Clients: n, Frames: s.frames.Load(), Dropped: s.dropped.Load()}
}

// Consume publishes frame to every client and keeps it as the latest frame.
func (s *Server) Consume(_ context.Context, frame engine.Frame) error {
	data, err := json.Marshal(frame)
	if err != nil {
		return fmt.Errorf("encode frame %d: %w", frame.Tick, err)
	}
	msg, err := json.Marshal(Message{Type: MessageFrame, Frame: data})
	if err != nil {
		return fmt.Errorf("encode frame %d: %w", frame.Tick, err)
	}

	s.mu.Lock()
	s.latest = data
	s.mu.Unlock()

	s.frames.Add(1)
	s.broadcast(msg)
	return nil
}

func (s *Server) onCollision(event bus.Event) error {
	ce, ok := event.Data().(engine.CollisionEvent)
	if !ok {
		return fmt.Errorf("%w: %s carries %T", ErrInvalidMessage, event.Type(), event.Data())
	}
	msg, err := json.Marshal(Message{Type: MessageCollision, Collision: &ce})
	if err != nil {
		return fmt.Errorf("encode collision: %w", err)
	}
	s.broadcast(msg)
	return nil
}

func (s *Server) broadcast(msg []byte) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for c := range s.clients {
		select {
		case c.send <- msg:
		default:
			s.dropped.Add(1)
		}
	}
}

// Handler serves /ws, /frame and /healthz.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /ws", s.handleWebSocket)
	mux.HandleFunc("GET /frame", s.handleFrame)
	mux.HandleFunc("GET /healthz", s.handleHealth)
	return mux
}

func (s *Server) handleFrame(w http.ResponseWriter, _ *http.Request) {
	s.mu.RLock()
	data := s.latest
	s.mu.RUnlock()

	if data == nil {
		http.Error(w, "no frame yet", http.StatusServiceUnavailable)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write(data)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(s.Stats())
}

func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn("websocket upgrade failed", log.Error(err))
		return
	}

	c := &client{send: make(chan []byte, s.cfg.SendBuffer)}
	if !s.register(c) {
		_ = conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseGoingAway, ErrServerClosed.Error()),
			time.Now().Add(s.cfg.WriteTimeout))
		_ = conn.Close()
		return
	}
	defer s.wg.Done()

	s.logger.Debug("client connected", log.String("remote", conn.RemoteAddr().String()))
	go s.writePump(c, conn)
	s.readPump(c, conn)
	s.logger.Debug("client disconnected", log.String("remote", conn.RemoteAddr().String()))
}

// register adds c and queues the latest frame for it. It reserves wait group
// slots for the connection handler and the write pump of the client.
func (s *Server) register(c *client) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return false
	}
	s.clients[c] = struct{}{}
	s.wg.Add(2)
	if s.latest != nil {
		if msg, err := json.Marshal(Message{Type: MessageFrame, Frame: s.latest}); err == nil {
			c.send <- msg
		}
	}
	return true
}

// unregister is idempotent; closing send stops the write pump.
func (s *Server) unregister(c *client) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.clients[c]; ok {
		delete(s.clients, c)
		close(c.send)
	}
}

// readPump discards client input and returns once the connection fails.
func (s *Server) readPump(c *client, conn *websocket.Conn) {
	defer s.unregister(c)
	conn.SetReadLimit(512)
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (s *Server) writePump(c *client, conn *websocket.Conn) {
	defer s.wg.Done()
	defer conn.Close()

	for msg := range c.send {
		_ = conn.SetWriteDeadline(time.Now().Add(s.cfg.WriteTimeout))
		if err := conn.WriteMessage(websocket.TextMessage, msg); err != nil {
			s.logger.Debug("websocket write failed", log.Error(err))
			s.unregister(c)
			return
		}
	}
	_ = conn.SetWriteDeadline(time.Now().Add(s.cfg.WriteTimeout))
	_ = conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseGoingAway, ""))
}

// Run listens on the configured address and serves until ctx is cancelled.
func (s *Server) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.cfg.Addr)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrListenerFailed, err)
	}
	return s.Serve(ctx, ln)
}

// Serve serves on ln until ctx is cancelled, then shuts down gracefully
// within the configured shutdown timeout.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	if !s.running.CompareAndSwap(false, true) {
		_ = ln.Close()
		return ErrServerAlreadyRunning
	}

	srv := &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		_ = ln.Close()
		return ErrServerClosed
	}
	s.httpSrv = srv
	s.mu.Unlock()

	s.logger.Info("server listening", log.String("addr", ln.Addr().String()))

	serveErr := make(chan error, 1)
	go func() { serveErr <- srv.Serve(ln) }()

	var err error
	select {
	case err = <-serveErr:
		s.logger.Error("server failed", log.Error(err))
		_ = s.Shutdown(context.Background())
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.cfg.ShutdownTimeout)
	defer cancel()
	err = s.Shutdown(shutdownCtx)
	if e := <-serveErr; e != nil && !errors.Is(e, http.ErrServerClosed) {
		err = errors.Join(err, e)
	}

	s.logger.Info("server stopped", log.Uint64("frames", s.frames.Load()), log.Uint64("dropped", s.dropped.Load()))
	return err
}

// Shutdown stops accepting connections, closes every client and waits for
// their goroutines. Later frames are ignored.
func (s *Server) Shutdown(ctx context.Context) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return ErrServerClosed
	}
	s.closed = true
	srv, quicLn := s.httpSrv, s.quicLn
	for c := range s.clients {
		delete(s.clients, c)
		close(c.send)
	}
	s.mu.Unlock()

	if s.sub != nil {
		_ = s.sub.Cancel()
	}
	if quicLn != nil {
		_ = quicLn.Close()
	}

	var err error
	if srv != nil {
		err = srv.Shutdown(ctx)
	}

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-ctx.Done():
		err = errors.Join(err, ctx.Err())
	}
	return err
}
