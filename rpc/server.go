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

package rpc

import (
	"log"
	"net"

	"github.com/cc-hpc-itwm/mcs/codec"
	"github.com/cc-hpc-itwm/mcs/tracer"
)

// Server accepts connections and serves a fixed Dispatcher. Each
// connection is handled by one goroutine that reads a request, handles
// it and writes its response before reading the next one — a
// Concurrent-policy client may still have multiple calls outstanding,
// and their responses come back in the order the requests arrived.
type Server struct {
	Dispatcher Dispatcher
	Tracer     tracer.Tracer
}

// NewServer constructs a Server for d, tracing to t (tracer.Nop{} if nil).
func NewServer(d Dispatcher, t tracer.Tracer) *Server {
	if t == nil {
		t = tracer.Nop{}
	}
	return &Server{Dispatcher: d, Tracer: t}
}

// Serve accepts connections on ln until it returns an error (typically
// because the listener was closed by the caller's shutdown path).
func (s *Server) Serve(ln net.Listener) error {
	for {
		conn, err := ln.Accept()
		if err != nil {
			return err
		}
		go s.handleConn(conn)
	}
}

func (s *Server) handleConn(conn net.Conn) {
	defer conn.Close()
	defer func() {
		if r := recover(); r != nil {
			log.Printf("rpc: connection handler panicked: %v", r)
		}
	}()

	if err := serverHandshake(conn, s.Dispatcher); err != nil {
		log.Printf("rpc: handshake: %v", err)
		return
	}

	for {
		callID, cmdIndex, body, err := readRequestFrame(conn)
		if err != nil {
			return
		}
		if cmdIndex < 0 || cmdIndex >= len(s.Dispatcher) {
			log.Printf("rpc: request with out-of-range command index %d", cmdIndex)
			return
		}
		spec := s.Dispatcher[cmdIndex]
		s.Tracer.Record(tracer.Event{Kind: "rpc_call", Detail: spec.Tag})

		req := spec.NewRequest()
		r := codec.NewReader(body)
		if err := req.DecodeMCS(r); err != nil {
			s.writeError(conn, callID, err.Error())
			continue
		}
		if err := r.FinishArchive(); err != nil {
			s.writeError(conn, callID, err.Error())
			continue
		}

		if rs, ok := req.(ReceiveStreamer); ok {
			if err := rs.ReceiveStream(conn); err != nil {
				s.writeError(conn, callID, err.Error())
				continue
			}
		}

		resp, err := spec.Handle(req, conn)
		if err != nil {
			s.Tracer.Record(tracer.Event{Kind: "rpc_call", Detail: spec.Tag, Err: err.Error()})
			s.writeError(conn, callID, err.Error())
			continue
		}

		if err := writeResponse(conn, callID, encodeResult(resp)); err != nil {
			return
		}
		if sender, ok := resp.(Streamer); ok {
			if err := sender.Stream(conn); err != nil {
				return
			}
		}
	}
}

func (s *Server) writeError(conn net.Conn, callID CallID, reason string) {
	_ = writeResponse(conn, callID, encodeHandlerError(reason))
}
