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
	"github.com/cc-hpc-itwm/mcs/storageid"
)

// Backend is the concept every storage implementation conforms to
// (component C4): heap, shmem, files, virtual, s3 and ceph all implement
// it. A compile-time-declared list of supported implementations
// (spec.md §4.1) becomes, in Go, a closed set of concrete types behind
// this single interface plus Typed[B] for downcasting — the "enum of
// variant tags plus a trait-object table" spec.md §9 prescribes in place
// of heavy template specialization.
type Backend interface {
	// Kind identifies the implementation for diagnostics and for the text
	// format of Storage records (e.g. "heap", "shmem", "files", "s3").
	Kind() string

	SizeMax() rangeio.MaxSize

	// SegmentCreate allocates a new segment of the given size and returns
	// its ID. The registry has already checked the quota before calling
	// this; a Backend only needs to perform the actual allocation.
	// persistency governs what SegmentRemove later does to this segment's
	// backing bytes; backends with no backing store of their own (Heap)
	// are free to ignore it.
	SegmentCreate(size rangeio.Size, persistency Persistency) (storageid.SegmentID, error)

	// SegmentRemove drops a segment from the backend's bookkeeping and
	// reports the bytes to release from the storage's quota — always the
	// segment's full size, whether or not its backing bytes were
	// physically deleted. force overrides the segment's own Persistency
	// for this call, letting a caller reclaim a Keep segment's disk/shm
	// space outright.
	SegmentRemove(id storageid.SegmentID, force ForceRemoval) (freed rangeio.Size, err error)

	// ChunkDescription resolves a byte-range view for the given access
	// mode. Implementations must validate that rng fits inside the
	// segment, returning ErrOutOfRange (wrapped in ErrChunkDescription by
	// the registry) otherwise.
	ChunkDescription(id storageid.SegmentID, rng rangeio.Range, access Access) (ChunkView, error)

	// FileRead/FileWrite transfer the whole content of a segment to/from
	// a filesystem path, returning the number of bytes transferred.
	FileRead(id storageid.SegmentID, path string) (rangeio.Size, error)
	FileWrite(id storageid.SegmentID, path string) (rangeio.Size, error)

	// Close releases any resources held by the backend itself (sockets,
	// mmaps, plugin handles). It does not remove segments; Storages.Remove
	// calls Close after all segments have been individually accounted for.
	Close() error
}

// Flusher is an optional capability of a Backend whose Mutable ChunkViews
// are not true aliases of the backing store (s3, ceph): writes through
// Bytes only become durable once Flush is called for that range. Heap,
// Shmem and Files don't need it — their ChunkView.Bytes already point
// straight at the backing memory or mmap.
type Flusher interface {
	Flush(id storageid.SegmentID, rng rangeio.Range) error
}
