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

// Package iov implements the IOV backend provider (component C9): a
// collection-oriented layer on top of the storage registry that spreads
// one logical byte range across many physical storages "as equal as
// possible" and tracks, per collection, which sub-ranges live where.
package iov

import (
	"github.com/google/uuid"

	"github.com/cc-hpc-itwm/mcs/rangeio"
	"github.com/cc-hpc-itwm/mcs/storage"
	"github.com/cc-hpc-itwm/mcs/storageid"
)

// CollectionID identifies a collection. It is a uuid.UUID rather than a
// bare counter so collections can be named by a caller before the
// provider has seen them (matching the original's IOV_UUID identity).
type CollectionID = uuid.UUID

// UsedStorage is one sub-range of a collection backed by a single
// physical storage: the collection-relative byte range it covers and
// the storage record that owns the bytes.
type UsedStorage struct {
	Range   rangeio.Range
	Storage storageid.ID
	Segment storageid.SegmentID
}

// Collection is the ordered, touching list of UsedStorage entries that
// make up one collection's address space, plus its total size.
type Collection struct {
	Used []UsedStorage
	Size rangeio.Size
}

// storageEntry is what the provider keeps per registered storage: the
// Record a restart needs to reopen it, and its declared capacity.
type storageEntry struct {
	Record   storage.Record
	Capacity rangeio.Size
	used     rangeio.Size
}

func (e storageEntry) remaining() rangeio.Size {
	if e.used >= e.Capacity {
		return 0
	}
	return e.Capacity - e.used
}
