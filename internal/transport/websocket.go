// SPDX-License-Identifier: MIT
package transport

import (
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"

	applog "ddm/internal/log"

	"github.com/gorilla/websocket"
)

// WebSocketPath is where clients subscribe to pass events.
const WebSocketPath = "/passes"

// WebSocketTransport broadcasts events as JSON to every connected client.
type WebSocketTransport struct {
	upgrader  websocket.Upgrader
	clients   map[*websocket.Conn]bool
	clientsMu sync.Mutex
	broadcast chan any
	server    *http.Server
	listener  net.Listener

	closeMu sync.Mutex
	closed  bool
	done    chan struct{} // Closed when the broadcast loop exits
}

// NewWebSocketTransport listens on addr and starts serving clients.
// Use port 0 to pick a free port; Addr reports the one chosen.
func NewWebSocketTransport(addr string) (*WebSocketTransport, error) {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("websocket listen on %s: %w", addr, err)
	}

	wst := &WebSocketTransport{
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
		},
		clients:   make(map[*websocket.Conn]bool),
		broadcast: make(chan any, 256),
		listener:  ln,
		done:      make(chan struct{}),
	}
	wst.start()
	return wst, nil
}

// Addr returns the listening address.
func (wst *WebSocketTransport) Addr() string {
	return wst.listener.Addr().String()
}

func (wst *WebSocketTransport) start() {
	mux := http.NewServeMux()
	mux.HandleFunc(WebSocketPath, wst.handleWebSocket)
	wst.server = &http.Server{Handler: mux}

	go func() {
		applog.Infof("WebSocketTransport: Serving pass events on ws://%s%s", wst.Addr(), WebSocketPath)
		if err := wst.server.Serve(wst.listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			applog.Errorf("WebSocketTransport: Server error: %v", err)
		}
	}()

	go wst.handleBroadcasts()
}

// ClientCount returns the number of connected clients.
func (wst *WebSocketTransport) ClientCount() int {
	wst.clientsMu.Lock()
	defer wst.clientsMu.Unlock()
	return len(wst.clients)
}

func (wst *WebSocketTransport) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := wst.upgrader.Upgrade(w, r, nil)
	if err != nil {
		applog.Warnf("WebSocketTransport: Upgrade error: %v", err)
		return
	}

	wst.clientsMu.Lock()
	wst.clients[conn] = true
	total := len(wst.clients)
	wst.clientsMu.Unlock()
	applog.Infof("WebSocketTransport: Client connected, total: %d", total)

	// Clients never send; a read error means they went away.
	go func() {
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				break
			}
		}
		wst.clientsMu.Lock()
		if wst.clients[conn] {
			delete(wst.clients, conn)
			conn.Close()
		}
		total := len(wst.clients)
		wst.clientsMu.Unlock()
		applog.Infof("WebSocketTransport: Client disconnected, total: %d", total)
	}()
}

func (wst *WebSocketTransport) handleBroadcasts() {
	defer close(wst.done)
	for data := range wst.broadcast {
		wst.clientsMu.Lock()
		for client := range wst.clients {
			if err := client.WriteJSON(data); err != nil {
				applog.Warnf("WebSocketTransport: Error sending to client: %v", err)
				client.Close()
				delete(wst.clients, client)
			}
		}
		wst.clientsMu.Unlock()
	}
}

// Send queues data for broadcast. Events are dropped while the queue is full.
func (wst *WebSocketTransport) Send(data any) error {
	wst.closeMu.Lock()
	defer wst.closeMu.Unlock()
	if wst.closed {
		return errors.New("websocket transport is closed")
	}

	select {
	case wst.broadcast <- data:
	default:
		applog.Warnf("WebSocketTransport: Broadcast queue full, dropping %T", data)
	}
	return nil
}

// Close flushes queued events, disconnects clients and stops the server.
func (wst *WebSocketTransport) Close() error {
	wst.closeMu.Lock()
	if wst.closed {
		wst.closeMu.Unlock()
		return nil
	}
	wst.closed = true
	close(wst.broadcast)
	wst.closeMu.Unlock()

	<-wst.done
	applog.Infof("WebSocketTransport: Closing server")

	wst.clientsMu.Lock()
	for client := range wst.clients {
		client.Close()
	}
	wst.clients = make(map[*websocket.Conn]bool)
	wst.clientsMu.Unlock()

	return wst.server.Close()
}

// Ensure WebSocketTransport satisfies the interface
var _ Transport = (*WebSocketTransport)(nil)
