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

package iov

import (
	"github.com/cc-hpc-itwm/mcs/connectable"
	"github.com/cc-hpc-itwm/mcs/rangeio"
	"github.com/cc-hpc-itwm/mcs/rpc"
	"github.com/cc-hpc-itwm/mcs/storage"
	"github.com/cc-hpc-itwm/mcs/storageid"
)

// clientDispatcher is the fixed fingerprint an iov client presents
// during handshake.
var clientDispatcher = rpc.Dispatcher{
	{Tag: StateTag, NewRequest: func() rpc.Command { return &empty{} }, NewResponse: func() rpc.Command { return &stateResponse{} }},
	{Tag: RangeTag, NewRequest: func() rpc.Command { return &collectionRequest{} }, NewResponse: func() rpc.Command { return &rangeResponse{} }},
	{Tag: LocationsTag, NewRequest: func() rpc.Command { return &locationsRequest{} }, NewResponse: func() rpc.Command { return &locationsResponse{} }},
	{Tag: CollectionCreateTag, NewRequest: func() rpc.Command { return &collectionCreateRequest{} }, NewResponse: func() rpc.Command { return &usedStoragesResponse{} }},
	{Tag: CollectionAppendTag, NewRequest: func() rpc.Command { return &collectionAppendRequest{} }, NewResponse: func() rpc.Command { return &sizeResponse{} }},
	{Tag: CollectionDeleteTag, NewRequest: func() rpc.Command { return &collectionRequest{} }, NewResponse: func() rpc.Command { return &empty{} }},
	{Tag: StorageAddTag, NewRequest: func() rpc.Command { return &storageAddRequest{} }, NewResponse: func() rpc.Command { return &storageIDResponse{} }},
}

// Client is a connection to an IOV provider. Calls are independent of
// one another (each names its own collection or storage), so a Client
// is dialed under PolicyConcurrent.
type Client struct {
	rpc *rpc.Client
}

// Dial connects to an iov provider at addr.
func Dial(network, addr string) (*Client, error) {
	c, err := rpc.Dial(network, addr, clientDispatcher, rpc.PolicyConcurrent)
	if err != nil {
		return nil, err
	}
	return &Client{rpc: c}, nil
}

// DialConnectable connects to an iov provider named by c, for callers
// that only have a connectable.Connectable read back from an endpoint
// file or printed to stdout by the provider binary.
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

func (c *Client) State() ([]StorageSnapshot, []CollectionSnapshot, error) {
	resp, err := rpc.Call[*stateResponse](c.rpc, StateTag, &empty{}, func() rpc.Command { return &stateResponse{} })
	if err != nil {
		return nil, nil, err
	}
	return resp.Storages, resp.Collections, nil
}

func (c *Client) Range(cid CollectionID) (rangeio.Range, error) {
	resp, err := rpc.Call[*rangeResponse](c.rpc, RangeTag, &collectionRequest{ID: cid}, func() rpc.Command { return &rangeResponse{} })
	if err != nil {
		return rangeio.Range{}, err
	}
	return resp.Range, nil
}

func (c *Client) Locations(cid CollectionID, rng rangeio.Range) ([]Location, error) {
	resp, err := rpc.Call[*locationsResponse](c.rpc, LocationsTag, &locationsRequest{ID: cid, Range: rng}, func() rpc.Command { return &locationsResponse{} })
	if err != nil {
		return nil, err
	}
	return resp.Locations, nil
}

func (c *Client) CollectionCreate(cid CollectionID, size rangeio.Size) ([]UsedStorage, error) {
	resp, err := rpc.Call[*usedStoragesResponse](c.rpc, CollectionCreateTag, &collectionCreateRequest{ID: cid, Size: size}, func() rpc.Command { return &usedStoragesResponse{} })
	if err != nil {
		return nil, err
	}
	return resp.Used, nil
}

func (c *Client) CollectionAppend(cid CollectionID, rng rangeio.Range) (rangeio.Size, error) {
	resp, err := rpc.Call[*sizeResponse](c.rpc, CollectionAppendTag, &collectionAppendRequest{ID: cid, Range: rng}, func() rpc.Command { return &sizeResponse{} })
	if err != nil {
		return 0, err
	}
	return resp.Size, nil
}

func (c *Client) CollectionDelete(cid CollectionID) error {
	_, err := rpc.Call[*empty](c.rpc, CollectionDeleteTag, &collectionRequest{ID: cid}, func() rpc.Command { return &empty{} })
	return err
}

func (c *Client) StorageAdd(rec storage.Record, capacity rangeio.Size) (storageid.ID, error) {
	resp, err := rpc.Call[*storageIDResponse](c.rpc, StorageAddTag, &storageAddRequest{Record: rec, Capacity: capacity}, func() rpc.Command { return &storageIDResponse{} })
	if err != nil {
		return 0, err
	}
	return resp.ID, nil
}
