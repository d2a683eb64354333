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
	"github.com/cc-hpc-itwm/mcs/connectable"
	"github.com/cc-hpc-itwm/mcs/rangeio"
	"github.com/cc-hpc-itwm/mcs/storage"
	"github.com/cc-hpc-itwm/mcs/storageid"
	"github.com/cc-hpc-itwm/mcs/transport"
)

// Location is one tuple of a Locations(cid, range) reply: the sub-range
// it covers (in collection-absolute offsets) and everything a caller
// needs to route to the bytes directly, without going back through the
// iov provider (spec.md §4.5.2).
type Location struct {
	Range              rangeio.Range
	StoragesProvider   connectable.Connectable
	ImplementationID   string
	FileReadParameter  storageid.Parameter
	FileWriteParameter storageid.Parameter
	TransportProvider  connectable.Connectable
	Address            transport.Address
}

// Locations resolves rng against cid's placement table, returning one
// Location per touching sub-range that overlaps it. The returned
// locations are ordered and partition rng exactly, covering it in full;
// if rng reaches past the collection's current size, Locations fails
// with storage.ErrOutOfRange instead.
func (s *State) Locations(cid CollectionID, rng rangeio.Range) ([]Location, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	item, ok := s.collections.Get(collectionItem{id: cid})
	if !ok {
		return nil, ErrUnknownCollection{ID: cid}
	}
	if uint64(rng.End()) > uint64(item.collection.Size) {
		return nil, storage.ErrOutOfRange{Requested: rng, Available: item.collection.Size}
	}

	var out []Location
	for _, u := range item.collection.Used {
		lo, hi := maxOffset(u.Range.Begin(), rng.Begin()), minOffset(u.Range.End(), rng.End())
		if lo >= hi {
			continue
		}
		entry, ok := s.storageRecord(u.Storage)
		if !ok {
			return nil, ErrUnknownStorage{ID: u.Storage}
		}
		withinSegment := uint64(lo - u.Range.Begin())
		out = append(out, Location{
			Range:              rangeio.NewRange(lo, hi),
			StoragesProvider:   entry.Record.StoragesProvider,
			ImplementationID:   entry.Record.ImplementationID,
			FileReadParameter:  entry.Record.FileReadParameter,
			FileWriteParameter: entry.Record.FileWriteParameter,
			TransportProvider:  entry.Record.TransportProvider,
			Address: transport.Address{
				StorageID:                 entry.Record.StorageID,
				ChunkDescriptionParameter: storageid.Parameter{},
				SegmentID:                 u.Segment,
				Offset:                    rangeio.Offset(withinSegment),
			},
		})
	}
	return out, nil
}

func maxOffset(a, b rangeio.Offset) rangeio.Offset {
	if a > b {
		return a
	}
	return b
}

func minOffset(a, b rangeio.Offset) rangeio.Offset {
	if a < b {
		return a
	}
	return b
}
