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

// ChunkView is a per-access-mode view over a byte range of a segment
// (component C5). Description is what Storages.ChunkDescription resolves;
// Bytes is the zero-copy byte span the description denotes. Whether Bytes
// may be safely mutated is governed by Access: callers obtaining a
// ChunkView with Access == Const must not write through Bytes — this is a
// documented contract, not a compiler-enforced one, the same tradeoff
// spec.md §9's design notes flag for the Rust port's `as<T>()` aliasing
// point.
type ChunkView struct {
	StorageID storageid.ID
	SegmentID storageid.SegmentID
	Range     rangeio.Range
	Access    Access
	Bytes     []byte
}

// As reinterprets the chunk's byte span as a []T of length
// len(Bytes)/sizeof(T). This is the one defined aliasing point in the
// system (spec.md §4.3); callers are responsible for T's alignment and
// for not outliving the chunk's backing segment.
func As[T any](c ChunkView) []T {
	var zero T
	sz := sizeOf(zero)
	if sz == 0 {
		return nil
	}
	n := len(c.Bytes) / sz
	return unsafeBytesAsSlice[T](c.Bytes[:n*sz])
}
