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

package blockdevice

import (
	"sync"

	"github.com/cc-hpc-itwm/mcs/connectable"
	"github.com/cc-hpc-itwm/mcs/rpc"
	"github.com/cc-hpc-itwm/mcs/storage"
)

// clientDispatcher is the fixed fingerprint a meta-data client presents
// during handshake — identical in shape to the provider's own
// Dispatcher, since a client never handles inbound calls.
var clientDispatcher = rpc.Dispatcher{
	{Tag: BlockSizeTag, NewRequest: func() rpc.Command { return &empty{} }, NewResponse: func() rpc.Command { return &blockSizeResponse{} }},
	{Tag: NumberOfBlocksTag, NewRequest: func() rpc.Command { return &empty{} }, NewResponse: func() rpc.Command { return &numberOfBlocksResponse{} }},
	{Tag: BlocksTag, NewRequest: func() rpc.Command { return &empty{} }, NewResponse: func() rpc.Command { return &blocksResponse{} }},
	{Tag: AddTag, NewRequest: func() rpc.Command { return &addRequest{} }, NewResponse: func() rpc.Command { return &addResponse{} }},
	{Tag: RemoveTag, NewRequest: func() rpc.Command { return &removeRequest{} }, NewResponse: func() rpc.Command { return &removeResponse{} }},
	{Tag: LocationTag, NewRequest: func() rpc.Command { return &locationRequest{} }, NewResponse: func() rpc.Command { return &locationResponse{} }},
}

// Client is a meta-data client, strictly serial per spec.md §4.6 (always
// dialed under rpc.PolicyExclusive).
type Client struct {
	rpc *rpc.Client

	mu        sync.Mutex
	blockSize Size
	cached    bool
}

// Dial connects to a meta-data provider at addr.
func Dial(network, addr string) (*Client, error) {
	c, err := rpc.Dial(network, addr, clientDispatcher, rpc.PolicyExclusive)
	if err != nil {
		return nil, err
	}
	return &Client{rpc: c}, nil
}

// DialConnectable connects to a meta-data provider named by c, for
// callers (e.g. cmd/cat) that only have a connectable.Connectable read
// back from an endpoint file rather than a bare network/address pair.
func DialConnectable(c connectable.Connectable) (*Client, error) {
	conn, err := c.Dial()
	if err != nil {
		return nil, err
	}
	rpcClient, err := rpc.NewClient(conn, clientDispatcher, rpc.PolicyExclusive)
	if err != nil {
		conn.Close()
		return nil, err
	}
	return &Client{rpc: rpcClient}, nil
}

func (c *Client) Close() error { return c.rpc.Close() }

// BlockSize returns the device's fixed block size, cached after the
// first call.
func (c *Client) BlockSize() (Size, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.cached {
		return c.blockSize, nil
	}
	resp, err := rpc.Call[*blockSizeResponse](c.rpc, BlockSizeTag, &empty{}, func() rpc.Command { return &blockSizeResponse{} })
	if err != nil {
		return 0, err
	}
	c.blockSize, c.cached = resp.Size, true
	return c.blockSize, nil
}

func (c *Client) NumberOfBlocks() (Count, error) {
	resp, err := rpc.Call[*numberOfBlocksResponse](c.rpc, NumberOfBlocksTag, &empty{}, func() rpc.Command { return &numberOfBlocksResponse{} })
	if err != nil {
		return 0, err
	}
	return resp.Count, nil
}

func (c *Client) Blocks() ([]Range, error) {
	resp, err := rpc.Call[*blocksResponse](c.rpc, BlocksTag, &empty{}, func() rpc.Command { return &blocksResponse{} })
	if err != nil {
		return nil, err
	}
	return resp.Ranges, nil
}

func (c *Client) Add(rec storage.Record, blockCount Count) (Range, error) {
	resp, err := rpc.Call[*addResponse](c.rpc, AddTag, &addRequest{Storage: rec, BlockCount: blockCount}, func() rpc.Command { return &addResponse{} })
	if err != nil {
		return Range{}, err
	}
	return resp.Assigned, nil
}

func (c *Client) Remove(rng Range) ([]storage.Record, error) {
	resp, err := rpc.Call[*removeResponse](c.rpc, RemoveTag, &removeRequest{Range: rng}, func() rpc.Command { return &removeResponse{} })
	if err != nil {
		return nil, err
	}
	return resp.Unused, nil
}

func (c *Client) Location(block ID) (Location, error) {
	resp, err := rpc.Call[*locationResponse](c.rpc, LocationTag, &locationRequest{Block: block}, func() rpc.Command { return &locationResponse{} })
	if err != nil {
		return Location{}, err
	}
	return resp.Location, nil
}
