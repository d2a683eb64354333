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
	"bytes"
	"fmt"
	"sync"

	"github.com/google/btree"
	"github.com/google/uuid"

	"github.com/cc-hpc-itwm/mcs/rangeio"
	"github.com/cc-hpc-itwm/mcs/storage"
	"github.com/cc-hpc-itwm/mcs/storageid"
)

func lessStorageID(a, b storageEntryItem) bool { return a.id < b.id }
func lessCollectionID(a, b collectionItem) bool {
	return bytes.Compare(a.id[:], b.id[:]) < 0
}

type storageEntryItem struct {
	id    storageid.ID
	entry storageEntry
}

type collectionItem struct {
	id         CollectionID
	collection Collection
}

// State is the IOV provider's whole in-memory picture: every registered
// storage and every collection's sub-range table, protected by one
// shared mutex (spec.md §4.5.1). The two maps are *btree.BTreeG instead
// of a Go map so State, Storages and Collections snapshot in a
// deterministic, reproducible order.
type State struct {
	mu sync.RWMutex

	nextStorageID storageid.ID
	storages      *btree.BTreeG[storageEntryItem]
	collections   *btree.BTreeG[collectionItem]
}

// NewState constructs an empty provider state.
func NewState() *State {
	return &State{
		storages:    btree.NewG(32, lessStorageID),
		collections: btree.NewG(32, lessCollectionID),
	}
}

// ErrDuplicateCollectionID is returned by Create when cid already names a
// collection.
type ErrDuplicateCollectionID struct{ ID CollectionID }

func (e ErrDuplicateCollectionID) Error() string {
	return fmt.Sprintf("iov: duplicate collection id %s", e.ID)
}

// ErrUnknownCollection is returned by any operation on a collection id
// that does not exist.
type ErrUnknownCollection struct{ ID CollectionID }

func (e ErrUnknownCollection) Error() string {
	return fmt.Sprintf("iov: unknown collection %s", e.ID)
}

// ErrUnknownStorage is returned when a collection references a storage
// id this provider never registered.
type ErrUnknownStorage struct{ ID storageid.ID }

func (e ErrUnknownStorage) Error() string {
	return fmt.Sprintf("iov: unknown storage %s", e.ID)
}

// AddStorage registers a storage for future distribution, returning the
// provider-local ID it is known by (storage::Add, spec.md §4.5.2).
func (s *State) AddStorage(record storageEntry) storageid.ID {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.nextStorageID
	s.nextStorageID = s.nextStorageID.Next()
	s.storages.ReplaceOrInsert(storageEntryItem{id: id, entry: record})
	return id
}

func (s *State) storageCapacities() []storageCapacity {
	out := make([]storageCapacity, 0, s.storages.Len())
	s.storages.Ascend(func(item storageEntryItem) bool {
		out = append(out, storageCapacity{ID: item.id, Remaining: item.entry.remaining()})
		return true
	})
	return out
}

func (s *State) storageRecord(id storageid.ID) (storageEntry, bool) {
	item, ok := s.storages.Get(storageEntryItem{id: id})
	return item.entry, ok
}

// reserve debits n bytes of used capacity from the given storages, used
// after a distribution succeeds so later Create/Append calls see the
// updated remaining capacity without re-querying every storage.
func (s *State) reserve(used []UsedStorage) {
	for _, u := range used {
		item, ok := s.storages.Get(storageEntryItem{id: u.Storage})
		if !ok {
			continue
		}
		item.entry.used += u.Range.Size()
		s.storages.ReplaceOrInsert(item)
	}
}

func (s *State) release(used []UsedStorage) {
	for _, u := range used {
		item, ok := s.storages.Get(storageEntryItem{id: u.Storage})
		if !ok {
			continue
		}
		freed := u.Range.Size()
		if freed > item.entry.used {
			freed = item.entry.used
		}
		item.entry.used -= freed
		s.storages.ReplaceOrInsert(item)
	}
}

// Create opens a new collection distributed "as equal as possible" over
// every registered storage and returns the UsedStorages it was placed
// at (collection::Create, spec.md §4.5.2). Each placement also opens a
// real segment on its storage, via clients, sized to match.
func (s *State) Create(clients *StoragesClients, cid CollectionID, size rangeio.Size) ([]UsedStorage, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.collections.Get(collectionItem{id: cid}); ok {
		return nil, ErrDuplicateCollectionID{ID: cid}
	}

	used := asEqualAsPossible(size, s.storageCapacities())
	if err := s.createSegments(clients, used); err != nil {
		return nil, err
	}
	s.reserve(used)
	s.collections.ReplaceOrInsert(collectionItem{id: cid, collection: Collection{Used: used, Size: size}})
	return used, nil
}

// Append grows a collection to cover rng, returning the new total size.
// If rng already lies within the collection's current extent, nothing
// new is allocated (collection::Append, spec.md §4.5.2).
func (s *State) Append(clients *StoragesClients, cid CollectionID, rng rangeio.Range) (rangeio.Size, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	item, ok := s.collections.Get(collectionItem{id: cid})
	if !ok {
		return 0, ErrUnknownCollection{ID: cid}
	}

	if rng.End() <= rangeio.Offset(item.collection.Size) {
		return item.collection.Size, nil
	}

	growBy := rangeio.Size(rng.End()) - item.collection.Size
	added := asEqualAsPossible(growBy, s.storageCapacities())
	if err := s.createSegments(clients, added); err != nil {
		return 0, err
	}
	s.reserve(added)

	offset := item.collection.Size
	for i := range added {
		added[i].Range = added[i].Range.Shift(rangeio.Offset(offset))
	}
	item.collection.Used = append(item.collection.Used, added...)
	item.collection.Size = rangeio.Size(rng.End())
	s.collections.ReplaceOrInsert(item)
	return item.collection.Size, nil
}

// createSegments opens one segment per placement, filling in its
// SegmentID in place. Called with s.mu already held.
func (s *State) createSegments(clients *StoragesClients, placements []UsedStorage) error {
	for i, p := range placements {
		client, err := clients.At(p.Storage)
		if err != nil {
			return err
		}
		entry, ok := s.storageRecord(p.Storage)
		if !ok {
			return ErrUnknownStorage{ID: p.Storage}
		}
		segID, err := client.SegmentCreate(entry.Record.StorageID, p.Range.Size(), storage.RemoveOnSegmentRemoval)
		if err != nil {
			return fmt.Errorf("iov: segment create on storage %s: %w", p.Storage, err)
		}
		placements[i].Segment = segID
	}
	return nil
}

// Range returns [0, total_size) for a collection.
func (s *State) Range(cid CollectionID) (rangeio.Range, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	item, ok := s.collections.Get(collectionItem{id: cid})
	if !ok {
		return rangeio.Range{}, ErrUnknownCollection{ID: cid}
	}
	return rangeio.NewRangeOfSize(0, item.collection.Size), nil
}

// UsedStoragesOf returns the full placement table for a collection, used
// by Delete's fan-out and by Locations.
func (s *State) UsedStoragesOf(cid CollectionID) ([]UsedStorage, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	item, ok := s.collections.Get(collectionItem{id: cid})
	if !ok {
		return nil, ErrUnknownCollection{ID: cid}
	}
	return append([]UsedStorage(nil), item.collection.Used...), nil
}

// Forget removes cid from the collection table (the local half of
// collection::Delete; the caller issues the remote segment_remove
// fan-out first and only calls Forget once it has collected every
// result).
func (s *State) Forget(cid CollectionID) {
	s.mu.Lock()
	defer s.mu.Unlock()

	item, ok := s.collections.Get(collectionItem{id: cid})
	if !ok {
		return
	}
	s.release(item.collection.Used)
	s.collections.Delete(collectionItem{id: cid})
}

// StorageEntry exposes one registered storage's record, used when a
// caller (e.g. the Delete fan-out) needs the connectable to dial.
func (s *State) StorageEntry(id storageid.ID) (storageEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.storageRecord(id)
	if !ok {
		return storageEntry{}, ErrUnknownStorage{ID: id}
	}
	return e, nil
}

// Storages returns every registered storage ID in ascending order — the
// deterministic ordering the btree backing gives State (spec.md §4.8's
// State snapshot command relies on this for reproducible output).
func (s *State) Storages() []storageid.ID {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ids := make([]storageid.ID, 0, s.storages.Len())
	s.storages.Ascend(func(item storageEntryItem) bool {
		ids = append(ids, item.id)
		return true
	})
	return ids
}

// Collections returns every registered collection ID in ascending order.
func (s *State) Collections() []CollectionID {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ids := make([]uuid.UUID, 0, s.collections.Len())
	s.collections.Ascend(func(item collectionItem) bool {
		ids = append(ids, item.id)
		return true
	})
	return ids
}
