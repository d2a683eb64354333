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
	"net"
	"testing"

	"github.com/cc-hpc-itwm/mcs/connectable"
	"github.com/cc-hpc-itwm/mcs/rangeio"
	"github.com/cc-hpc-itwm/mcs/rpc"
	"github.com/cc-hpc-itwm/mcs/storage"
	"github.com/cc-hpc-itwm/mcs/storage/heap"
	"github.com/cc-hpc-itwm/mcs/transport"
)

func TestNewRangeRejectsEmptyAndInverted(t *testing.T) {
	for _, c := range []struct{ begin, end ID }{{5, 5}, {6, 5}} {
		func() {
			defer func() {
				if r := recover(); r == nil {
					t.Fatalf("expected panic for range [%d, %d)", c.begin, c.end)
				}
			}()
			NewRange(c.begin, c.end)
		}()
	}
}

func startMetaProvider(t *testing.T, blockSize Size) (addr string, provider *Provider, closeFn func()) {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	provider = NewProvider(blockSize)
	server := rpc.NewServer(Dispatcher(provider), nil)
	go server.Serve(ln)
	return ln.Addr().String(), provider, func() { ln.Close() }
}

func startTransportProvider(t *testing.T, storages *storage.Storages) string {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	server := rpc.NewServer(transport.Dispatcher(storages), nil)
	go server.Serve(ln)
	return ln.Addr().String()
}

func TestAddLocationRoundTrip(t *testing.T) {
	const blockSize = Size(16)
	metaAddr, _, closeFn := startMetaProvider(t, blockSize)
	defer closeFn()

	storages := storage.New()
	storageID, err := storages.Create(heap.New(rangeio.Limit(rangeio.Size(4 * blockSize))))
	if err != nil {
		t.Fatalf("create storage: %v", err)
	}
	segID, err := storages.SegmentCreate(storageID, rangeio.Size(4*blockSize), storage.RemoveOnSegmentRemoval)
	if err != nil {
		t.Fatalf("create segment: %v", err)
	}
	transportAddr := startTransportProvider(t, storages)

	meta, err := Dial("tcp", metaAddr)
	if err != nil {
		t.Fatalf("dial meta: %v", err)
	}
	defer meta.Close()

	size, err := meta.BlockSize()
	if err != nil {
		t.Fatalf("block size: %v", err)
	}
	if size != blockSize {
		t.Fatalf("block size = %s, want %s", size, blockSize)
	}

	rec := storage.Record{
		ImplementationID:  "heap",
		TransportProvider: mustParseTCP(t, transportAddr),
		StorageID:         storageID,
		SegmentID:         segID,
	}
	assigned, err := meta.Add(rec, 4)
	if err != nil {
		t.Fatalf("add: %v", err)
	}
	if assigned.Begin() != 0 || assigned.End() != 4 {
		t.Fatalf("assigned = %s, want [0, 4)", assigned)
	}

	loc, err := meta.Location(2)
	if err != nil {
		t.Fatalf("location: %v", err)
	}
	if loc.Address.Offset != rangeio.Offset(2*uint64(blockSize)) {
		t.Fatalf("offset = %d, want %d", loc.Address.Offset, 2*uint64(blockSize))
	}

	writer, err := NewWriter(meta, DialTransport)
	if err != nil {
		t.Fatalf("new writer: %v", err)
	}
	defer writer.Close()
	payload := make([]byte, blockSize)
	copy(payload, "0123456789ABCDE")
	if err := writer.WriteBlock(2, payload); err != nil {
		t.Fatalf("write block: %v", err)
	}

	reader, err := NewReader(meta, DialTransport)
	if err != nil {
		t.Fatalf("new reader: %v", err)
	}
	defer reader.Close()
	got := make([]byte, blockSize)
	if err := reader.ReadBlock(2, got); err != nil {
		t.Fatalf("read block: %v", err)
	}
	if string(got) != string(payload) {
		t.Fatalf("read back %q, want %q", got, payload)
	}
}

func mustParseTCP(t *testing.T, addr string) connectable.Connectable {
	t.Helper()
	host, port, err := net.SplitHostPort(addr)
	if err != nil {
		t.Fatalf("split host port: %v", err)
	}
	var p uint64
	for _, r := range port {
		p = p*10 + uint64(r-'0')
	}
	return connectable.NewTCP(host, false, uint16(p))
}
