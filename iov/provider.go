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
	"fmt"
	"net"
	"sync/atomic"

	"github.com/cc-hpc-itwm/mcs/rpc"
)

// Provider serves the IOV backend's RPC surface over a State and the
// StoragesClients table that State's Create/Append/Delete dial through.
type Provider struct {
	state   *State
	clients *StoragesClients

	nextCallID atomic.Uint64
}

// NewProvider constructs an empty provider. When launching from a
// persisted snapshot, use RestoreState instead, which builds the
// Provider itself (spec.md §4.5.4).
func NewProvider() *Provider {
	return &Provider{state: NewState(), clients: NewStoragesClients()}
}

// State exposes the live State, e.g. for Persist.
func (p *Provider) State() *State { return p.state }

func (p *Provider) callID() string {
	return fmt.Sprintf("delete-%d", p.nextCallID.Add(1))
}

func (p *Provider) handleState(req rpc.Command, conn net.Conn) (rpc.Command, error) {
	storages := p.state.Storages()
	snapshot := stateResponse{Storages: make([]StorageSnapshot, 0, len(storages))}
	for _, id := range storages {
		entry, err := p.state.StorageEntry(id)
		if err != nil {
			continue
		}
		snapshot.Storages = append(snapshot.Storages, StorageSnapshot{
			ID: id, Record: entry.Record, Capacity: entry.Capacity, Used: entry.used,
		})
	}
	for _, cid := range p.state.Collections() {
		used, err := p.state.UsedStoragesOf(cid)
		if err != nil {
			continue
		}
		rng, err := p.state.Range(cid)
		if err != nil {
			continue
		}
		snapshot.Collections = append(snapshot.Collections, CollectionSnapshot{
			ID: cid, Collection: Collection{Used: used, Size: rng.Size()},
		})
	}
	return &snapshot, nil
}

func (p *Provider) handleRange(req rpc.Command, conn net.Conn) (rpc.Command, error) {
	rng, err := p.state.Range(req.(*collectionRequest).ID)
	if err != nil {
		return nil, err
	}
	return &rangeResponse{Range: rng}, nil
}

func (p *Provider) handleLocations(req rpc.Command, conn net.Conn) (rpc.Command, error) {
	lr := req.(*locationsRequest)
	locs, err := p.state.Locations(lr.ID, lr.Range)
	if err != nil {
		return nil, err
	}
	return &locationsResponse{Locations: locs}, nil
}

func (p *Provider) handleCollectionCreate(req rpc.Command, conn net.Conn) (rpc.Command, error) {
	cc := req.(*collectionCreateRequest)
	used, err := p.state.Create(p.clients, cc.ID, cc.Size)
	if err != nil {
		return nil, err
	}
	return &usedStoragesResponse{Used: used}, nil
}

func (p *Provider) handleCollectionAppend(req rpc.Command, conn net.Conn) (rpc.Command, error) {
	ca := req.(*collectionAppendRequest)
	size, err := p.state.Append(p.clients, ca.ID, ca.Range)
	if err != nil {
		return nil, err
	}
	return &sizeResponse{Size: size}, nil
}

func (p *Provider) handleCollectionDelete(req rpc.Command, conn net.Conn) (rpc.Command, error) {
	cid := req.(*collectionRequest).ID
	if err := p.state.Delete(p.clients, cid, p.callID()); err != nil {
		return nil, err
	}
	return &empty{}, nil
}

func (p *Provider) handleStorageAdd(req rpc.Command, conn net.Conn) (rpc.Command, error) {
	sa := req.(*storageAddRequest)
	id := p.state.AddStorage(storageEntry{Record: sa.Record, Capacity: sa.Capacity})
	if err := p.clients.Open(id, sa.Record); err != nil {
		return nil, err
	}
	return &storageIDResponse{ID: id}, nil
}

// Dispatcher builds p's rpc.Dispatcher.
func Dispatcher(p *Provider) rpc.Dispatcher {
	return rpc.Dispatcher{
		{Tag: StateTag, NewRequest: func() rpc.Command { return &empty{} }, NewResponse: func() rpc.Command { return &stateResponse{} }, Handle: p.handleState},
		{Tag: RangeTag, NewRequest: func() rpc.Command { return &collectionRequest{} }, NewResponse: func() rpc.Command { return &rangeResponse{} }, Handle: p.handleRange},
		{Tag: LocationsTag, NewRequest: func() rpc.Command { return &locationsRequest{} }, NewResponse: func() rpc.Command { return &locationsResponse{} }, Handle: p.handleLocations},
		{Tag: CollectionCreateTag, NewRequest: func() rpc.Command { return &collectionCreateRequest{} }, NewResponse: func() rpc.Command { return &usedStoragesResponse{} }, Handle: p.handleCollectionCreate},
		{Tag: CollectionAppendTag, NewRequest: func() rpc.Command { return &collectionAppendRequest{} }, NewResponse: func() rpc.Command { return &sizeResponse{} }, Handle: p.handleCollectionAppend},
		{Tag: CollectionDeleteTag, NewRequest: func() rpc.Command { return &collectionRequest{} }, NewResponse: func() rpc.Command { return &empty{} }, Handle: p.handleCollectionDelete},
		{Tag: StorageAddTag, NewRequest: func() rpc.Command { return &storageAddRequest{} }, NewResponse: func() rpc.Command { return &storageIDResponse{} }, Handle: p.handleStorageAdd},
	}
}
