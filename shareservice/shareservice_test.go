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
	"net"
	"testing"

	"github.com/cc-hpc-itwm/mcs/rangeio"
	"github.com/cc-hpc-itwm/mcs/rpc"
	"github.com/cc-hpc-itwm/mcs/storage"
	"github.com/cc-hpc-itwm/mcs/storage/heap"
)

func startService(t *testing.T) *Client {
	t.Helper()
	storages := storage.New()
	id, err := storages.Create(heap.New(rangeio.Limit(1 << 20)))
	if err != nil {
		t.Fatalf("create storage: %v", err)
	}
	svc := NewService(storages, id, NewMemoryCatalog())

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	server := rpc.NewServer(Dispatcher(svc), nil)
	go server.Serve(ln)
	t.Cleanup(func() { ln.Close() })

	c, err := Dial("tcp", ln.Addr().String())
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() { c.Close() })
	return c
}

func TestCreateAttachRemove(t *testing.T) {
	c := startService(t)

	if _, err := c.Create("chunk-a", 1024); err != nil {
		t.Fatalf("create: %v", err)
	}

	storageID, segID, err := c.Attach("chunk-a")
	if err != nil {
		t.Fatalf("attach: %v", err)
	}
	_ = storageID
	_ = segID

	if err := c.Remove("chunk-a"); err != nil {
		t.Fatalf("remove: %v", err)
	}
	if _, _, err := c.Attach("chunk-a"); err == nil {
		t.Fatalf("expected unknown name after remove")
	}
}

func TestCreateDuplicateName(t *testing.T) {
	c := startService(t)

	if _, err := c.Create("dup", 256); err != nil {
		t.Fatalf("first create: %v", err)
	}
	if _, err := c.Create("dup", 256); err == nil {
		t.Fatalf("expected duplicate name error")
	}
}

func TestAttachUnknownName(t *testing.T) {
	c := startService(t)
	if _, _, err := c.Attach("never-created"); err == nil {
		t.Fatalf("expected unknown name error")
	}
}
