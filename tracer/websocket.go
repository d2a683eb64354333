/*
Copyright (C) 2024  Carl-Philip Hänsch

    This program is free software: you can redistribute it and/or modify
    it under the terms of the GNU General Public License as published by
    the Free Software Foundation, either version 3 of the License, or
    (at your option) any later version.

    This program is distributed in the hope that it will be useful,
    but WITHOUT ANY WARRANTY; without even the implied warranty of
    MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
    GNU General Public License for more details.

    You should have received a copy of the GNU General Public License
    along with this program.  If not, see <https://www.gnu.org/licenses/>.
*/

package tracer

import (
	"log"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// WebSocketTee wraps an underlying Tracer and additionally fans every
// event out, as a text line, to every currently connected websocket
// client (used by `mcsctl tail` for live tailing). A slow or gone client
// never blocks Record: the event line is dropped for a client whose
// outbound channel is full.
type WebSocketTee struct {
	inner Tracer

	mu      sync.Mutex
	clients map[*websocket.Conn]chan string
}

// NewWebSocketTee wraps inner; inner may be Nop{} if events should only
// be broadcast, never durably recorded.
func NewWebSocketTee(inner Tracer) *WebSocketTee {
	return &WebSocketTee{inner: inner, clients: make(map[*websocket.Conn]chan string)}
}

func (t *WebSocketTee) Record(e Event) {
	t.inner.Record(e)
	line := e.String()

	t.mu.Lock()
	defer t.mu.Unlock()
	for _, ch := range t.clients {
		select {
		case ch <- line:
		default:
			// client too slow; drop this line rather than block tracing.
		}
	}
}

// ServeHTTP upgrades the request to a websocket and streams every
// subsequent Record call as a text message until the client disconnects.
func (t *WebSocketTee) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("tracer: websocket upgrade failed: %v", err)
		return
	}

	ch := make(chan string, 64)
	t.mu.Lock()
	t.clients[conn] = ch
	t.mu.Unlock()

	closed := make(chan struct{})
	defer func() {
		t.mu.Lock()
		delete(t.clients, conn)
		t.mu.Unlock()
		conn.Close()
	}()

	// a websocket tail has no client->server traffic; read only to detect
	// close frames so the loop below can exit promptly.
	go func() {
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				close(closed)
				return
			}
		}
	}()

	for {
		select {
		case line := <-ch:
			if err := conn.WriteMessage(websocket.TextMessage, []byte(line)); err != nil {
				return
			}
		case <-closed:
			return
		}
	}
}
