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
	"fmt"
	"sync"

	"github.com/cc-hpc-itwm/mcs/connectable"
	"github.com/cc-hpc-itwm/mcs/rangeio"
	"github.com/cc-hpc-itwm/mcs/rpc"
	"github.com/cc-hpc-itwm/mcs/transport"
)

// TransportDialer opens a transport client to a provider named by a
// connectable's text form. Reader/Writer take this as a factory so tests
// can substitute an in-process pair without a real listener.
type TransportDialer func(connectableAddr string) (*transport.Client, error)

// DialTransport is the default TransportDialer: it parses connectableAddr
// (TCP or UNIX, per connectable.Parse) and dials it directly, under
// PolicyConcurrent so a Reader or Writer can have many blocks in flight
// on one connection.
func DialTransport(connectableAddr string) (*transport.Client, error) {
	c, err := connectable.Parse(connectableAddr)
	if err != nil {
		return nil, err
	}
	conn, err := c.Dial()
	if err != nil {
		return nil, err
	}
	rpcClient, err := rpc.NewClient(conn, transport.ClientDispatcher, rpc.PolicyConcurrent)
	if err != nil {
		conn.Close()
		return nil, err
	}
	return transport.NewClient(rpcClient), nil
}

// clientPool hands out one cached transport.Client per distinct
// provider address, matching spec.md §5's "StoragesClients owns one
// persistent connection per storage" resource-ownership rule.
type clientPool struct {
	dial TransportDialer

	mu      sync.Mutex
	clients map[string]*transport.Client
}

func newClientPool(dial TransportDialer) *clientPool {
	return &clientPool{dial: dial, clients: make(map[string]*transport.Client)}
}

func (p *clientPool) get(addr string) (*transport.Client, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if c, ok := p.clients[addr]; ok {
		return c, nil
	}
	c, err := p.dial(addr)
	if err != nil {
		return nil, err
	}
	p.clients[addr] = c
	return c, nil
}

func (p *clientPool) closeAll() {
	p.mu.Lock()
	defer p.mu.Unlock()
	for _, c := range p.clients {
		c.Close()
	}
	p.clients = make(map[string]*transport.Client)
}

// Reader translates block IDs into memory_get calls against whichever
// transport provider a block's meta-data Location names.
type Reader struct {
	meta  *Client
	pool  *clientPool
	sizes Size
}

// NewReader composes meta with a transport-client factory.
func NewReader(meta *Client, dial TransportDialer) (*Reader, error) {
	size, err := meta.BlockSize()
	if err != nil {
		return nil, err
	}
	return &Reader{meta: meta, pool: newClientPool(dial), sizes: size}, nil
}

// Close releases every transport connection the Reader opened.
func (r *Reader) Close() { r.pool.closeAll() }

// ReadBlock reads one block's bytes into dst, which must be at least
// BlockSize() bytes long.
func (r *Reader) ReadBlock(id ID, dst []byte) error {
	loc, err := r.meta.Location(id)
	if err != nil {
		return err
	}
	client, err := r.pool.get(loc.TransportProvider.String())
	if err != nil {
		return err
	}
	return client.Get(loc.Address, rangeio.Size(r.sizes), dst)
}

// Writer translates block IDs into memory_put calls against whichever
// transport provider a block's meta-data Location names.
type Writer struct {
	meta  *Client
	pool  *clientPool
	sizes Size
}

// NewWriter composes meta with a transport-client factory.
func NewWriter(meta *Client, dial TransportDialer) (*Writer, error) {
	size, err := meta.BlockSize()
	if err != nil {
		return nil, err
	}
	return &Writer{meta: meta, pool: newClientPool(dial), sizes: size}, nil
}

// Close releases every transport connection the Writer opened.
func (w *Writer) Close() { w.pool.closeAll() }

// WriteBlock writes exactly BlockSize() bytes of src to block id.
func (w *Writer) WriteBlock(id ID, src []byte) error {
	if Size(len(src)) != w.sizes {
		return fmt.Errorf("blockdevice: write of %d bytes does not match block size %s", len(src), w.sizes)
	}
	loc, err := w.meta.Location(id)
	if err != nil {
		return err
	}
	client, err := w.pool.get(loc.TransportProvider.String())
	if err != nil {
		return err
	}
	return client.Put(loc.Address, src)
}
