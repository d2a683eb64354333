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

package storage

import (
	"github.com/cc-hpc-itwm/mcs/rangeio"
	"github.com/cc-hpc-itwm/mcs/rpc"
	"github.com/cc-hpc-itwm/mcs/storageid"
)

// ClientDispatcher is the fixed fingerprint a remote storages client
// presents during handshake.
var ClientDispatcher = rpc.Dispatcher{
	{Tag: SizeMaxTag, NewRequest: func() rpc.Command { return &idRequest{} }, NewResponse: func() rpc.Command { return &sizeMaxResponse{} }},
	{Tag: SizeUsedTag, NewRequest: func() rpc.Command { return &idRequest{} }, NewResponse: func() rpc.Command { return &sizeUsedResponse{} }},
	{Tag: SegmentCreateTag, NewRequest: func() rpc.Command { return &segmentCreateRequest{} }, NewResponse: func() rpc.Command { return &segmentCreateResponse{} }},
	{Tag: SegmentRemoveTag, NewRequest: func() rpc.Command { return &segmentRemoveRequest{} }, NewResponse: func() rpc.Command { return &segmentRemoveResponse{} }},
}

// Client is a connection to a remote Storages registry, used by the iov
// backend's StoragesClients table to manage segments on storages it does
// not host in-process. Calls are independent of one another, so a Client
// is dialed under PolicyConcurrent.
type Client struct {
	rpc *rpc.Client
}

// Dial connects to a storages provider at addr.
func Dial(network, addr string) (*Client, error) {
	c, err := rpc.Dial(network, addr, ClientDispatcher, rpc.PolicyConcurrent)
	if err != nil {
		return nil, err
	}
	return &Client{rpc: c}, nil
}

// NewClient wraps an already-dialed rpc.Client.
func NewClient(c *rpc.Client) *Client { return &Client{rpc: c} }

func (c *Client) Close() error { return c.rpc.Close() }

func (c *Client) SizeMax(id storageid.ID) (rangeio.MaxSize, error) {
	resp, err := rpc.Call[*sizeMaxResponse](c.rpc, SizeMaxTag, &idRequest{ID: id}, func() rpc.Command { return &sizeMaxResponse{} })
	if err != nil {
		return rangeio.MaxSize{}, err
	}
	return resp.Max, nil
}

func (c *Client) SizeUsed(id storageid.ID) (rangeio.Size, error) {
	resp, err := rpc.Call[*sizeUsedResponse](c.rpc, SizeUsedTag, &idRequest{ID: id}, func() rpc.Command { return &sizeUsedResponse{} })
	if err != nil {
		return 0, err
	}
	return resp.Used, nil
}

func (c *Client) SegmentCreate(id storageid.ID, size rangeio.Size, persistency Persistency) (storageid.SegmentID, error) {
	resp, err := rpc.Call[*segmentCreateResponse](c.rpc, SegmentCreateTag, &segmentCreateRequest{ID: id, Size: size, Persistency: persistency}, func() rpc.Command { return &segmentCreateResponse{} })
	if err != nil {
		return 0, err
	}
	return resp.Segment, nil
}

func (c *Client) SegmentRemove(id storageid.ID, segID storageid.SegmentID, force ForceRemoval) (rangeio.Size, error) {
	resp, err := rpc.Call[*segmentRemoveResponse](c.rpc, SegmentRemoveTag, &segmentRemoveRequest{ID: id, Segment: segID, Force: force}, func() rpc.Command { return &segmentRemoveResponse{} })
	if err != nil {
		return 0, err
	}
	return resp.Freed, nil
}
