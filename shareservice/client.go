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

package shareservice

import (
	"github.com/cc-hpc-itwm/mcs/connectable"
	"github.com/cc-hpc-itwm/mcs/rangeio"
	"github.com/cc-hpc-itwm/mcs/rpc"
	"github.com/cc-hpc-itwm/mcs/storageid"
)

// clientDispatcher is the fixed fingerprint a share service client
// presents during handshake.
var clientDispatcher = rpc.Dispatcher{
	{Tag: CreateTag, NewRequest: func() rpc.Command { return &createRequest{} }, NewResponse: func() rpc.Command { return &createResponse{} }},
	{Tag: AttachTag, NewRequest: func() rpc.Command { return &nameRequest{} }, NewResponse: func() rpc.Command { return &attachResponse{} }},
	{Tag: RemoveTag, NewRequest: func() rpc.Command { return &nameRequest{} }, NewResponse: func() rpc.Command { return &empty{} }},
}

// Client is a connection to a share service. Create/Attach/Remove each
// name their own entry, so a Client is dialed under PolicyConcurrent.
type Client struct {
	rpc *rpc.Client
}

// Dial connects to a share service at addr.
func Dial(network, addr string) (*Client, error) {
	c, err := rpc.Dial(network, addr, clientDispatcher, rpc.PolicyConcurrent)
	if err != nil {
		return nil, err
	}
	return &Client{rpc: c}, nil
}

// DialConnectable connects to a share service named by c, for callers
// that only have a connectable.Connectable read back from an endpoint
// file rather than a bare network/address pair.
func DialConnectable(c connectable.Connectable) (*Client, error) {
	conn, err := c.Dial()
	if err != nil {
		return nil, err
	}
	rpcClient, err := rpc.NewClient(conn, clientDispatcher, rpc.PolicyConcurrent)
	if err != nil {
		conn.Close()
		return nil, err
	}
	return &Client{rpc: rpcClient}, nil
}

func (c *Client) Close() error { return c.rpc.Close() }

func (c *Client) Create(name string, size rangeio.Size) (storageid.SegmentID, error) {
	resp, err := rpc.Call[*createResponse](c.rpc, CreateTag, &createRequest{Name: name, Size: size}, func() rpc.Command { return &createResponse{} })
	if err != nil {
		return 0, err
	}
	return resp.Segment, nil
}

func (c *Client) Attach(name string) (storageid.ID, storageid.SegmentID, error) {
	resp, err := rpc.Call[*attachResponse](c.rpc, AttachTag, &nameRequest{Name: name}, func() rpc.Command { return &attachResponse{} })
	if err != nil {
		return 0, 0, err
	}
	return resp.Storage, resp.Segment, nil
}

func (c *Client) Remove(name string) error {
	_, err := rpc.Call[*empty](c.rpc, RemoveTag, &nameRequest{Name: name}, func() rpc.Command { return &empty{} })
	return err
}
