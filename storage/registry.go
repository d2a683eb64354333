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
// Package storage implements the storage registry and chunk/access model
// (components C3 and C5): a type-indexed, polymorphic, concurrency-safe
// container of heterogeneous backing storage implementations.
package storage

import (
	"fmt"
	"sync"
	"sync/atomic"

	nlrm "github.com/launix-de/NonLockingReadMap"

	"github.com/cc-hpc-itwm/mcs/rangeio"
	"github.com/cc-hpc-itwm/mcs/storageid"
)

// entry is the unit stored in the registry's lock-free lookup map; it owns
// its own read/write discipline independently of the map itself, so a
// segment_create on storage A never blocks a size_used read on storage B.
type entry struct {
	id      storageid.ID
	backend Backend

	mu   sync.RWMutex
	used rangeio.Size
}

func (e entry) ComputeSize() uint    { return 64 }
func (e entry) GetKey() storageid.ID { return e.id }

// Storages is the polymorphic collection mapping storage IDs to
// heterogeneous Backend implementations (spec.md §4.1). Storage creation
// and removal go through a read-optimized NonLockingReadMap — readers
// (lookups performed by every other operation) are always lock-free;
// per-storage mutation (segment create/remove) is additionally guarded by
// that storage's own RWMutex so concurrent segment operations on
// *different* storages never contend.
type Storages struct {
	byID  nlrm.NonLockingReadMap[entry, storageid.ID]
	nextID atomic.Uint64
}

// New constructs an empty registry.
func New() *Storages {
	s := &Storages{byID: nlrm.New[entry, storageid.ID]()}
	return s
}

func (s *Storages) lookup(id storageid.ID) (*entry, error) {
	e := s.byID.Get(id)
	if e == nil {
		return nil, ErrUnknownID{ID: id}
	}
	return e, nil
}

// Create constructs a new storage from the given backend, issues the next
// storage ID and inserts it. Backend construction (parsing the Create
// parameter, opening the underlying resource) is the caller's
// responsibility — Create only takes ownership of an already-built
// Backend, keeping the registry itself implementation-agnostic.
func (s *Storages) Create(backend Backend) (storageid.ID, error) {
	id := storageid.ID(s.nextID.Add(1) - 1)
	e := &entry{id: id, backend: backend}
	if prev := s.byID.Set(e); prev != nil {
		// the monotonic counter guarantees this cannot happen; treat it as
		// the fatal invariant violation spec.md §3 calls for.
		panic(ErrDuplicateID{ID: id})
	}
	return id, nil
}

// Remove drops the storage under a write lock and closes its backend. The
// caller is responsible for ensuring no other goroutine still holds a
// reference to segments of this storage; Remove does not scan for live
// chunks.
func (s *Storages) Remove(id storageid.ID) error {
	e, err := s.lookup(id)
	if err != nil {
		return err
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	s.byID.Remove(id)
	return e.backend.Close()
}

// SizeMax returns the storage's configured quota.
func (s *Storages) SizeMax(id storageid.ID) (rangeio.MaxSize, error) {
	e, err := s.lookup(id)
	if err != nil {
		return rangeio.MaxSize{}, err
	}
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.backend.SizeMax(), nil
}

// SizeUsed returns the bytes currently allocated across the storage's
// segments, maintained exactly by SegmentCreate/SegmentRemove.
func (s *Storages) SizeUsed(id storageid.ID) (rangeio.Size, error) {
	e, err := s.lookup(id)
	if err != nil {
		return 0, err
	}
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.used, nil
}

// SegmentCreate allocates a segment of the given size and persistency.
// BadAlloc is returned (and no state changed) if used+requested would
// exceed max.
func (s *Storages) SegmentCreate(id storageid.ID, size rangeio.Size, persistency Persistency) (storageid.SegmentID, error) {
	e, err := s.lookup(id)
	if err != nil {
		return 0, err
	}
	e.mu.Lock()
	defer e.mu.Unlock()

	max := e.backend.SizeMax()
	if !max.Allows(e.used + size) {
		return 0, ErrBadAlloc{Requested: size, Used: e.used, Max: max}
	}
	segID, err := e.backend.SegmentCreate(size, persistency)
	if err != nil {
		return 0, err
	}
	e.used += size
	return segID, nil
}

// SegmentRemove releases a segment's share of the quota and returns the
// bytes freed. force overrides the segment's own Persistency, so a
// caller can delete a Keep segment's backing bytes outright; size_used
// drops by the full segment size either way, since a removed segment —
// kept on disk or not — is no longer this storage's to account for.
func (s *Storages) SegmentRemove(id storageid.ID, segID storageid.SegmentID, force ForceRemoval) (rangeio.Size, error) {
	e, err := s.lookup(id)
	if err != nil {
		return 0, err
	}
	e.mu.Lock()
	defer e.mu.Unlock()

	freed, err := e.backend.SegmentRemove(segID, force)
	if err != nil {
		return 0, err
	}
	e.used -= freed
	return freed, nil
}

// ChunkDescription resolves a byte-range view for the given segment/range
// under a read lock.
func (s *Storages) ChunkDescription(id storageid.ID, segID storageid.SegmentID, rng rangeio.Range, access Access) (ChunkView, error) {
	e, err := s.lookup(id)
	if err != nil {
		return ChunkView{}, err
	}
	e.mu.RLock()
	defer e.mu.RUnlock()

	cv, err := e.backend.ChunkDescription(segID, rng, access)
	if err != nil {
		return ChunkView{}, ErrChunkDescription{Segment: segID, Range: rng, Cause: err}
	}
	cv.StorageID = id
	return cv, nil
}

// FileRead transfers a segment's content to path under a read lock.
func (s *Storages) FileRead(id storageid.ID, segID storageid.SegmentID, path string) (rangeio.Size, error) {
	e, err := s.lookup(id)
	if err != nil {
		return 0, err
	}
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.backend.FileRead(segID, path)
}

// FileWrite transfers path's content into a segment under a write lock.
func (s *Storages) FileWrite(id storageid.ID, segID storageid.SegmentID, path string) (rangeio.Size, error) {
	e, err := s.lookup(id)
	if err != nil {
		return 0, err
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.backend.FileWrite(segID, path)
}

// Typed downcasts the backend behind id to B, failing with
// ErrWrongImplementation if the runtime type doesn't match — the
// type-checked downcast spec.md §9 calls for in place of compile-time
// template specialization.
func Typed[B Backend](s *Storages, id storageid.ID) (B, error) {
	var zero B
	e, err := s.lookup(id)
	if err != nil {
		return zero, err
	}
	e.mu.RLock()
	defer e.mu.RUnlock()
	b, ok := e.backend.(B)
	if !ok {
		return zero, ErrWrongImplementation{ID: id, Want: fmt.Sprintf("%T", zero)}
	}
	return b, nil
}

// Flusher returns the backend behind id as a Flusher if it implements
// that optional capability (s3, ceph); ok is false for backends whose
// ChunkView.Bytes are already true aliases of the backing store.
func (s *Storages) Flusher(id storageid.ID) (flusher Flusher, ok bool, err error) {
	e, err := s.lookup(id)
	if err != nil {
		return nil, false, err
	}
	e.mu.RLock()
	defer e.mu.RUnlock()
	f, ok := e.backend.(Flusher)
	return f, ok, nil
}

// IDs returns a snapshot of all live storage IDs (used by State-style
// snapshots and the iov backend's restart path).
func (s *Storages) IDs() []storageid.ID {
	all := s.byID.GetAll()
	ids := make([]storageid.ID, 0, len(all))
	for _, e := range all {
		ids = append(ids, e.id)
	}
	return ids
}
