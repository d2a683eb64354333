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
	"net"
	"testing"

	"github.com/cc-hpc-itwm/mcs/rangeio"
	"github.com/cc-hpc-itwm/mcs/rpc"
	"github.com/cc-hpc-itwm/mcs/storage"
	"github.com/cc-hpc-itwm/mcs/storage/heap"
	"github.com/cc-hpc-itwm/mcs/storageid"
)

func startProvider(t *testing.T, storages *storage.Storages) (addr string, closeFn func()) {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	server := rpc.NewServer(Dispatcher(storages), nil)
	go server.Serve(ln)
	return ln.Addr().String(), func() { ln.Close() }
}

func newHeapStorage(t *testing.T, size rangeio.Size) (*storage.Storages, storageid.ID, storageid.SegmentID) {
	t.Helper()
	storages := storage.New()
	id, err := storages.Create(heap.New(rangeio.Limit(size)))
	if err != nil {
		t.Fatalf("create storage: %v", err)
	}
	segID, err := storages.SegmentCreate(id, size, storage.RemoveOnSegmentRemoval)
	if err != nil {
		t.Fatalf("create segment: %v", err)
	}
	return storages, id, segID
}

func TestGetPutRoundTrip(t *testing.T) {
	storages, id, segID := newHeapStorage(t, 64)
	addr, closeFn := startProvider(t, storages)
	defer closeFn()

	client, err := Dial("tcp", addr, rpc.PolicyExclusive)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer client.Close()

	payload := []byte("hello, transport")
	dest := Address{StorageID: id, SegmentID: segID, Offset: 0}
	if err := client.Put(dest, payload); err != nil {
		t.Fatalf("put: %v", err)
	}

	buf := make([]byte, len(payload))
	if err := client.Get(dest, rangeio.Size(len(payload)), buf); err != nil {
		t.Fatalf("get: %v", err)
	}
	if string(buf) != string(payload) {
		t.Fatalf("round trip mismatch: got %q want %q", buf, payload)
	}
}

func TestGetDestinationTooSmall(t *testing.T) {
	storages, id, segID := newHeapStorage(t, 64)
	addr, closeFn := startProvider(t, storages)
	defer closeFn()

	client, err := Dial("tcp", addr, rpc.PolicyExclusive)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer client.Close()

	source := Address{StorageID: id, SegmentID: segID, Offset: 0}
	small := make([]byte, 2)
	err = client.Get(source, 8, small)
	if err == nil {
		t.Fatalf("expected ErrDestinationTooSmall")
	}
}

func TestConcurrentPolicyInterleavesGets(t *testing.T) {
	storages, id, segID := newHeapStorage(t, 64)
	addr, closeFn := startProvider(t, storages)
	defer closeFn()

	client, err := Dial("tcp", addr, rpc.PolicyConcurrent)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer client.Close()

	dest := Address{StorageID: id, SegmentID: segID, Offset: 0}
	if err := client.Put(dest, []byte("0123456789")); err != nil {
		t.Fatalf("put: %v", err)
	}

	errs := make(chan error, 4)
	for i := 0; i < 4; i++ {
		go func() {
			buf := make([]byte, 10)
			errs <- client.Get(dest, 10, buf)
		}()
	}
	for i := 0; i < 4; i++ {
		if err := <-errs; err != nil {
			t.Errorf("concurrent get: %v", err)
		}
	}
}
