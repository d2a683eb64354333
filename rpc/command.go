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

// Package rpc is the command dispatcher and transport runtime (component
// C6): a wire envelope over net.Conn, a handshake verifying the client's
// dispatcher is a prefix of the server's, three access policies gating
// concurrent use of one socket, and a multi-client fan-out engine.
package rpc

import (
	"net"

	"github.com/cc-hpc-itwm/mcs/codec"
)

// Command is a serializable request with an associated response type.
// Go has no compile-time dispatcher list, so the list of registered
// commands becomes a runtime-ordered []Spec instead — the same "trait
// object table keyed by a stable index" substitution used for storage.Backend.
type Command interface {
	codec.Encoder
	codec.Decoder
}

// Streamer is implemented by a Command whose payload travels outside the
// serialized envelope. Stream is invoked on the sender immediately after
// the envelope is written, giving it exclusive access to conn until it
// returns (component C6 §4.4.6).
type Streamer interface {
	Stream(conn net.Conn) error
}

// Handler processes one decoded request and produces a response, or an
// error that is serialized back to the caller as HandlerError. If req
// implements ReceiveStreamer, the server has already consumed the
// payload via ReceiveStream before Handler is invoked.
type Handler func(req Command, conn net.Conn) (resp Command, err error)

// ReceiveStreamer is implemented by a Command whose handler needs to read
// additional bytes directly from the socket, symmetric to Streamer on the
// sender side (e.g. transport.Put streams its payload on send and is
// consumed directly by the receiver instead of via codec).
type ReceiveStreamer interface {
	ReceiveStream(conn net.Conn) error
}

// Spec describes one command slot in a dispatcher: its stable tag (used
// for the handshake fingerprint), how to allocate a zero request/response
// to decode into, and the handler invoked on the server side.
type Spec struct {
	Tag         string
	NewRequest  func() Command
	NewResponse func() Command
	Handle      Handler
}

// Dispatcher is the ordered list of command specs a client or server
// supports. Index within the slice is the wire CommandIndex.
type Dispatcher []Spec

// IndexOf returns the position of tag in d, or -1.
func (d Dispatcher) IndexOf(tag string) int {
	for i, s := range d {
		if s.Tag == tag {
			return i
		}
	}
	return -1
}

// Tags returns the dispatcher's fingerprint: its tags in order.
func (d Dispatcher) Tags() []string {
	tags := make([]string, len(d))
	for i, s := range d {
		tags[i] = s.Tag
	}
	return tags
}
