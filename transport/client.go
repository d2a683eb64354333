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

package transport

import (
	"github.com/cc-hpc-itwm/mcs/rangeio"
	"github.com/cc-hpc-itwm/mcs/rpc"
)

// ClientDispatcher is the fixed two-command fingerprint a transport
// client presents during its handshake; it must be a prefix of the
// provider's (which is typically exactly this Dispatcher).
var ClientDispatcher = rpc.Dispatcher{
	{Tag: GetTag, NewRequest: func() rpc.Command { return &GetRequest{} }, NewResponse: func() rpc.Command { return &GetResponse{} }},
	{Tag: PutTag, NewRequest: func() rpc.Command { return &PutRequest{} }, NewResponse: func() rpc.Command { return &PutResponse{} }},
}

// Client wraps an rpc.Client dialed against a transport provider.
type Client struct{ rpc *rpc.Client }

// NewClient adopts an already-handshaken rpc.Client as a transport Client.
func NewClient(c *rpc.Client) *Client { return &Client{rpc: c} }

// Dial connects to addr and performs the handshake.
func Dial(network, addr string, kind rpc.PolicyKind) (*Client, error) {
	c, err := rpc.Dial(network, addr, ClientDispatcher, kind)
	if err != nil {
		return nil, err
	}
	return &Client{rpc: c}, nil
}

func (c *Client) Close() error { return c.rpc.Close() }

// Get reads size bytes at source directly into dst, which must be at
// least size bytes long.
func (c *Client) Get(source Address, size rangeio.Size, dst []byte) error {
	req := &GetRequest{Source: source, Size: size}
	_, err := rpc.Call[*GetResponse](c.rpc, GetTag, req, newGetResponse(NewDestination(dst)))
	return err
}

// Put writes bytes to destination.
func (c *Client) Put(destination Address, bytes []byte) error {
	req := NewPutRequest(destination, bytes)
	_, err := rpc.Call[*PutResponse](c.rpc, PutTag, req, func() rpc.Command { return &PutResponse{} })
	return err
}
