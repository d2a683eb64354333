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
	"net"
	"testing"

	"github.com/google/uuid"

	"github.com/cc-hpc-itwm/mcs/connectable"
	"github.com/cc-hpc-itwm/mcs/rangeio"
	"github.com/cc-hpc-itwm/mcs/rpc"
	"github.com/cc-hpc-itwm/mcs/storage"
	"github.com/cc-hpc-itwm/mcs/storage/heap"
	"github.com/cc-hpc-itwm/mcs/storageid"
)

// startStoragesProvider serves a storage.Storages registry backed by a
// single heap storage of the given capacity, returning its connectable
// address and the remote storage's own storageid.ID.
func startStoragesProvider(t *testing.T, capacity rangeio.Size) (connectable.Connectable, *storage.Storages, storageid.ID) {
	t.Helper()
	storages := storage.New()
	id, err := storages.Create(heap.New(rangeio.Limit(capacity)))
	if err != nil {
		t.Fatalf("create storage: %v", err)
	}

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	server := rpc.NewServer(storage.Dispatcher(storages), nil)
	go server.Serve(ln)
	t.Cleanup(func() { ln.Close() })

	host, port, err := net.SplitHostPort(ln.Addr().String())
	if err != nil {
		t.Fatalf("split host port: %v", err)
	}
	var p uint64
	for _, r := range port {
		p = p*10 + uint64(r-'0')
	}
	return connectable.NewTCP(host, false, uint16(p)), storages, id
}

func startIOVProvider(t *testing.T) (*Client, *Provider, func()) {
	t.Helper()
	p := NewProvider()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	server := rpc.NewServer(Dispatcher(p), nil)
	go server.Serve(ln)

	c, err := Dial("tcp", ln.Addr().String())
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	return c, p, func() { c.Close(); ln.Close() }
}

func TestCollectionLifecycle(t *testing.T) {
	provAddr, _, remoteID := startStoragesProvider(t, 1<<20)
	client, _, closeFn := startIOVProvider(t)
	defer closeFn()

	rec := storage.Record{
		ImplementationID: "heap",
		StoragesProvider: provAddr,
		StorageID:        remoteID,
	}
	_, err := client.StorageAdd(rec, rangeio.Size(1<<20))
	if err != nil {
		t.Fatalf("storage add: %v", err)
	}

	cid := uuid.New()
	used, err := client.CollectionCreate(cid, 4096)
	if err != nil {
		t.Fatalf("collection create: %v", err)
	}
	if len(used) != 1 {
		t.Fatalf("used = %v, want one placement", used)
	}
	if used[0].Range.Size() != 4096 {
		t.Fatalf("placed size = %s, want 4096", used[0].Range.Size())
	}

	rng, err := client.Range(cid)
	if err != nil {
		t.Fatalf("range: %v", err)
	}
	if rng.Size() != 4096 {
		t.Fatalf("range size = %s, want 4096", rng.Size())
	}

	newSize, err := client.CollectionAppend(cid, rangeio.NewRange(0, 8192))
	if err != nil {
		t.Fatalf("append: %v", err)
	}
	if newSize != 8192 {
		t.Fatalf("new size = %s, want 8192", newSize)
	}

	locs, err := client.Locations(cid, rangeio.NewRange(0, 8192))
	if err != nil {
		t.Fatalf("locations: %v", err)
	}
	var total rangeio.Size
	for _, l := range locs {
		total += l.Range.Size()
	}
	if total != 8192 {
		t.Fatalf("locations cover %s, want 8192", total)
	}

	if err := client.CollectionDelete(cid); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := client.Range(cid); err == nil {
		t.Fatalf("expected unknown collection error after delete")
	}
}

func TestCollectionCreateDuplicateID(t *testing.T) {
	provAddr, _, remoteID := startStoragesProvider(t, 1<<20)
	client, _, closeFn := startIOVProvider(t)
	defer closeFn()

	rec := storage.Record{ImplementationID: "heap", StoragesProvider: provAddr, StorageID: remoteID}
	if _, err := client.StorageAdd(rec, rangeio.Size(1<<20)); err != nil {
		t.Fatalf("storage add: %v", err)
	}

	cid := uuid.New()
	if _, err := client.CollectionCreate(cid, 1024); err != nil {
		t.Fatalf("first create: %v", err)
	}
	if _, err := client.CollectionCreate(cid, 1024); err == nil {
		t.Fatalf("expected duplicate collection id error")
	}
}

func TestStateSnapshotOrdering(t *testing.T) {
	provAddr, _, remoteID := startStoragesProvider(t, 1<<20)
	client, _, closeFn := startIOVProvider(t)
	defer closeFn()

	rec := storage.Record{ImplementationID: "heap", StoragesProvider: provAddr, StorageID: remoteID}
	if _, err := client.StorageAdd(rec, rangeio.Size(1<<20)); err != nil {
		t.Fatalf("storage add: %v", err)
	}

	var ids []CollectionID
	for i := 0; i < 5; i++ {
		cid := uuid.New()
		if _, err := client.CollectionCreate(cid, 256); err != nil {
			t.Fatalf("create: %v", err)
		}
		ids = append(ids, cid)
	}

	storages, collections, err := client.State()
	if err != nil {
		t.Fatalf("state: %v", err)
	}
	if len(storages) != 1 {
		t.Fatalf("storages = %v, want one", storages)
	}
	if len(collections) != len(ids) {
		t.Fatalf("collections = %d, want %d", len(collections), len(ids))
	}
	for i := 1; i < len(collections); i++ {
		if !less(collections[i-1].ID, collections[i].ID) {
			t.Fatalf("collections not in ascending order at index %d", i)
		}
	}
}

func less(a, b CollectionID) bool {
	for i := range a {
		if a[i] != b[i] {
			return a[i] < b[i]
		}
	}
	return false
}
