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
	"net"
	"sync"

	"github.com/cc-hpc-itwm/mcs/rpc"
	"github.com/cc-hpc-itwm/mcs/storage"
)

// extent is one contiguous run of blocks backed by a single storage,
// carved out of that storage's pre-sized segment starting at offset 0.
type extent struct {
	blocks  Range
	storage storage.Record
}

// Provider holds a block device's meta-data: its fixed block size and
// the ordered, non-overlapping extents that make up its address space.
// All operations run under a single mutex, matching spec.md §4.6's
// "strictly serial under Exclusive" requirement.
type Provider struct {
	blockSize Size

	mu      sync.Mutex
	extents []extent
	total   Count
}

// NewProvider constructs an empty meta-data provider for a device whose
// blocks are blockSize bytes each.
func NewProvider(blockSize Size) *Provider {
	return &Provider{blockSize: blockSize}
}

func (p *Provider) handleBlockSize(req rpc.Command, conn net.Conn) (rpc.Command, error) {
	return &blockSizeResponse{Size: p.blockSize}, nil
}

func (p *Provider) handleNumberOfBlocks(req rpc.Command, conn net.Conn) (rpc.Command, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return &numberOfBlocksResponse{Count: p.total}, nil
}

func (p *Provider) handleBlocks(req rpc.Command, conn net.Conn) (rpc.Command, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	ranges := make([]Range, len(p.extents))
	for i, e := range p.extents {
		ranges[i] = e.blocks
	}
	return &blocksResponse{Ranges: ranges}, nil
}

func (p *Provider) handleAdd(req rpc.Command, conn net.Conn) (rpc.Command, error) {
	add := req.(*addRequest)
	p.mu.Lock()
	defer p.mu.Unlock()

	begin := ID(p.total)
	end := begin + ID(add.BlockCount)
	assigned := NewRange(begin, end)
	p.extents = append(p.extents, extent{blocks: assigned, storage: add.Storage})
	p.total += add.BlockCount
	return &addResponse{Assigned: assigned}, nil
}

func (p *Provider) handleRemove(req rpc.Command, conn net.Conn) (rpc.Command, error) {
	rm := req.(*removeRequest)
	p.mu.Lock()
	defer p.mu.Unlock()

	var unused []storage.Record
	kept := p.extents[:0:0]
	for _, e := range p.extents {
		if rm.Range.Contains(e.blocks.End() - 1) {
			unused = append(unused, e.storage)
			continue
		}
		kept = append(kept, e)
	}
	p.extents = kept
	return &removeResponse{Unused: unused}, nil
}

func (p *Provider) handleLocation(req rpc.Command, conn net.Conn) (rpc.Command, error) {
	loc := req.(*locationRequest)
	p.mu.Lock()
	defer p.mu.Unlock()

	for _, e := range p.extents {
		if !e.blocks.Contains(loc.Block) {
			continue
		}
		within := uint64(loc.Block-e.blocks.Begin()) * uint64(p.blockSize)
		return &locationResponse{Location: Location{
			TransportProvider: e.storage.TransportProvider,
			Address: transportAddress(e.storage, within),
		}}, nil
	}
	return nil, fmt.Errorf("blockdevice: unknown block %s", loc.Block)
}
