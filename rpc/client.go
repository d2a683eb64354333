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
	"fmt"
	"net"
)

// PolicyKind selects the AccessPolicy a Client wraps its connection in
// (component C6 §4.4.3).
type PolicyKind int

const (
	PolicyExclusive PolicyKind = iota
	PolicySequential
	PolicyConcurrent
)

// Client is one connection to an rpc.Server, handshaken against a fixed
// Dispatcher and gated by an AccessPolicy.
type Client struct {
	conn       net.Conn
	dispatcher Dispatcher
	policy     AccessPolicy
}

// Dial connects to addr, performs the handshake against d, and wraps the
// connection in the chosen access policy.
func Dial(network, addr string, d Dispatcher, kind PolicyKind) (*Client, error) {
	conn, err := net.Dial(network, addr)
	if err != nil {
		return nil, err
	}
	c, err := newClient(conn, d, kind)
	if err != nil {
		conn.Close()
		return nil, err
	}
	return c, nil
}

// NewClient wraps an already-connected conn (e.g. one obtained from a
// listener's Accept on a loopback pair, or by a caller managing dialing
// itself) in the handshake and chosen access policy.
func NewClient(conn net.Conn, d Dispatcher, kind PolicyKind) (*Client, error) {
	return newClient(conn, d, kind)
}

func newClient(conn net.Conn, d Dispatcher, kind PolicyKind) (*Client, error) {
	if err := clientHandshake(conn, d); err != nil {
		return nil, err
	}
	var policy AccessPolicy
	switch kind {
	case PolicyExclusive:
		policy = NewExclusive(conn)
	case PolicySequential:
		policy = NewSequential(conn)
	case PolicyConcurrent:
		policy = NewConcurrent(conn)
	default:
		return nil, fmt.Errorf("rpc: unknown access policy kind %d", kind)
	}
	return &Client{conn: conn, dispatcher: d, policy: policy}, nil
}

// Close closes the underlying connection, which also unblocks and fails
// any outstanding Concurrent/Sequential completions.
func (c *Client) Close() error { return c.conn.Close() }

// Call issues req under tag and blocks for the response, type-asserted
// to Resp. newResp allocates the zero Resp value the decoder fills in.
func Call[Resp Command](c *Client, tag string, req Command, newResp func() Command) (Resp, error) {
	var zero Resp
	index := c.dispatcher.IndexOf(tag)
	if index < 0 {
		return zero, fmt.Errorf("rpc: unknown command tag %q", tag)
	}
	future, err := c.policy.StartCall(index, req, newResp)
	if err != nil {
		return zero, err
	}
	resp, err := future.Wait()
	if err != nil {
		return zero, err
	}
	typed, ok := resp.(Resp)
	if !ok {
		return zero, fmt.Errorf("rpc: response for %q has unexpected type %T", tag, resp)
	}
	return typed, nil
}

// StartCall issues req under tag without blocking, returning a Future
// the caller can Wait on later. Used for explicit fan-out over a
// Concurrent-policy client.
func StartCall(c *Client, tag string, req Command, newResp func() Command) (*Future, error) {
	index := c.dispatcher.IndexOf(tag)
	if index < 0 {
		return nil, fmt.Errorf("rpc: unknown command tag %q", tag)
	}
	return c.policy.StartCall(index, req, newResp)
}
