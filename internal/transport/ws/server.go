package ws

import (
	"context"
	"fmt"
	"log"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/tkymnr/ptt-relay/internal/relay"
)

var upgrader = websocket.Upgrader{
	// The relay performs no origin-based auth; browsers connect from
	// anywhere, same as raw TCP clients do.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// Server accepts WebSocket connections over HTTP and delegates each to
// the shared Room.
type Server struct {
	address  string
	listener net.Listener
	server   *http.Server
	room     *relay.Room
	wg       sync.WaitGroup

	mu    sync.Mutex
	conns map[*relay.Client]struct{}
}

// New creates a WebSocket server that feeds the provided Room.
func New(address string, room *relay.Room) *Server {
	return &Server{
		address: address,
		room:    room,
		conns:   make(map[*relay.Client]struct{}),
	}
}

// Start listens and serves upgrade requests on "/". It blocks until Stop
// is called or the listener fails.
func (s *Server) Start() error {
	listener, err := net.Listen("tcp", s.address)
	if err != nil {
		return fmt.Errorf("failed to start WebSocket server: %w", err)
	}
	s.listener = listener

	mux := http.NewServeMux()
	mux.HandleFunc("/", s.handleUpgrade)
	s.server = &http.Server{Handler: mux}

	log.Printf("WebSocket relay listening on %s", listener.Addr().String())

	if err := s.server.Serve(listener); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Stop shuts down the HTTP server, closes the upgraded connections it is
// still carrying (Shutdown does not touch hijacked sockets), and waits
// for every handler to drain through its own teardown.
func (s *Server) Stop() {
	if s.server != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		s.server.Shutdown(ctx)
	}
	s.mu.Lock()
	for client := range s.conns {
		client.Conn.Close()
	}
	s.mu.Unlock()
	s.wg.Wait()
}

// Addr returns the listening address.
func (s *Server) Addr() string {
	if s.listener != nil {
		return s.listener.Addr().String()
	}
	return ""
}

func (s *Server) handleUpgrade(w http.ResponseWriter, r *http.Request) {
	wsConn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("Failed to upgrade WebSocket connection: %v", err)
		return
	}

	client := relay.NewClient(NewConn(wsConn))
	s.mu.Lock()
	s.conns[client] = struct{}{}
	s.mu.Unlock()

	s.wg.Add(2)
	go func() {
		defer s.wg.Done()
		s.room.HandleClient(client)
		s.mu.Lock()
		delete(s.conns, client)
		s.mu.Unlock()
	}()
	go func() {
		defer s.wg.Done()
		client.WriteLoop()
	}()
}
