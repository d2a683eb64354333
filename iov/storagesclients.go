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
	"sync"

	"github.com/cc-hpc-itwm/mcs/rpc"
	"github.com/cc-hpc-itwm/mcs/storage"
	"github.com/cc-hpc-itwm/mcs/storageid"
)

// newStorageRPCClient wraps an already-dialed conn in the handshake and
// PolicyConcurrent access policy a storage.Client expects — segment
// creates and removes on one storage are independent of one another, so
// many can be outstanding on the same connection at once.
func newStorageRPCClient(conn net.Conn) (*storage.Client, error) {
	rpcClient, err := rpc.NewClient(conn, storage.ClientDispatcher, rpc.PolicyConcurrent)
	if err != nil {
		conn.Close()
		return nil, err
	}
	return storage.NewClient(rpcClient), nil
}

// StoragesClients is a shared table of persistent connections to every
// storage a provider has registered, opened once at storage::Add time
// (or on restart) and reused for every subsequent segment_create /
// segment_remove this provider issues against that storage (spec.md
// §4.5.2/§4.5.4).
type StoragesClients struct {
	mu      sync.Mutex
	clients map[storageid.ID]*storage.Client
}

// NewStoragesClients constructs an empty table.
func NewStoragesClients() *StoragesClients {
	return &StoragesClients{clients: make(map[storageid.ID]*storage.Client)}
}

// Open dials rec's StoragesProvider and files the resulting client under
// id, closing and replacing any prior connection for that id.
func (t *StoragesClients) Open(id storageid.ID, rec storage.Record) error {
	conn, err := rec.StoragesProvider.Dial()
	if err != nil {
		return fmt.Errorf("iov: dial storages provider for %s: %w", id, err)
	}
	rpcClient, err := newStorageRPCClient(conn)
	if err != nil {
		return fmt.Errorf("iov: handshake with storages provider for %s: %w", id, err)
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	if prev, ok := t.clients[id]; ok {
		prev.Close()
	}
	t.clients[id] = rpcClient
	return nil
}

// At returns the client registered for id.
func (t *StoragesClients) At(id storageid.ID) (*storage.Client, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	c, ok := t.clients[id]
	if !ok {
		return nil, ErrUnknownStorage{ID: id}
	}
	return c, nil
}

// CloseAll closes every open connection, used on provider shutdown.
func (t *StoragesClients) CloseAll() {
	t.mu.Lock()
	defer t.mu.Unlock()
	for _, c := range t.clients {
		c.Close()
	}
	t.clients = make(map[storageid.ID]*storage.Client)
}
