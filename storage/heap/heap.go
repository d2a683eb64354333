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

// Package heap implements the simplest storage backend: segments backed by
// plain process-heap byte slices. No persistence, no IPC — useful for
// tests and for ephemeral scratch storages.
package heap

import (
	"os"
	"sync"

	"github.com/cc-hpc-itwm/mcs/rangeio"
	"github.com/cc-hpc-itwm/mcs/storage"
	"github.com/cc-hpc-itwm/mcs/storageid"
)

type segment struct {
	data []byte
}

// Storage is a storage.Backend keeping every segment as a Go []byte.
type Storage struct {
	max rangeio.MaxSize

	mu       sync.Mutex
	segments map[storageid.SegmentID]*segment
}

// New constructs a Heap storage bounded by max.
func New(max rangeio.MaxSize) *Storage {
	return &Storage{max: max, segments: make(map[storageid.SegmentID]*segment)}
}

func (s *Storage) Kind() string            { return "heap" }
func (s *Storage) SizeMax() rangeio.MaxSize { return s.max }

// SegmentCreate ignores persistency: a heap segment's only backing store
// is this process's memory, which SegmentRemove always reclaims.
func (s *Storage) SegmentCreate(size rangeio.Size, _ storage.Persistency) (storageid.SegmentID, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := storageid.SegmentID(0).Next()
	for {
		if _, taken := s.segments[id]; !taken {
			break
		}
		id = id.Next()
	}
	s.segments[id] = &segment{data: make([]byte, size)}
	return id, nil
}

func (s *Storage) SegmentRemove(id storageid.SegmentID, _ storage.ForceRemoval) (rangeio.Size, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	seg, ok := s.segments[id]
	if !ok {
		return 0, storage.ErrUnknownSegmentID{Segment: id}
	}
	freed := rangeio.Size(len(seg.data))
	delete(s.segments, id)
	return freed, nil
}

func (s *Storage) ChunkDescription(id storageid.SegmentID, rng rangeio.Range, access storage.Access) (storage.ChunkView, error) {
	s.mu.Lock()
	seg, ok := s.segments[id]
	s.mu.Unlock()
	if !ok {
		return storage.ChunkView{}, storage.ErrUnknownSegmentID{Segment: id}
	}
	available := rangeio.Size(len(seg.data))
	if uint64(rng.End()) > uint64(available) {
		return storage.ChunkView{}, storage.ErrOutOfRange{Requested: rng, Available: available}
	}
	return storage.ChunkView{
		SegmentID: id,
		Range:     rng,
		Access:    access,
		Bytes:     seg.data[rng.Begin():rng.End()],
	}, nil
}

func (s *Storage) FileRead(id storageid.SegmentID, path string) (rangeio.Size, error) {
	s.mu.Lock()
	seg, ok := s.segments[id]
	s.mu.Unlock()
	if !ok {
		return 0, storage.ErrUnknownSegmentID{Segment: id}
	}
	if err := os.WriteFile(path, seg.data, 0644); err != nil {
		return 0, err
	}
	return rangeio.Size(len(seg.data)), nil
}

func (s *Storage) FileWrite(id storageid.SegmentID, path string) (rangeio.Size, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return 0, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	seg, ok := s.segments[id]
	if !ok {
		return 0, storage.ErrUnknownSegmentID{Segment: id}
	}
	n := copy(seg.data, content)
	return rangeio.Size(n), nil
}

func (s *Storage) Close() error { return nil }
