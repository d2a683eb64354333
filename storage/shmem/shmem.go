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

// Package shmem implements a storage backend whose segments live in POSIX
// shared memory (/dev/shm), mapped with mmap so that multiple processes on
// the same host can share a segment's bytes without copying.
package shmem

import (
	"fmt"
	"os"
	"sync"

	"golang.org/x/sys/unix"

	"github.com/cc-hpc-itwm/mcs/rangeio"
	"github.com/cc-hpc-itwm/mcs/storage"
	"github.com/cc-hpc-itwm/mcs/storageid"
)

type segment struct {
	file        *os.File
	data        []byte // mmap'd region
	persistency storage.Persistency
}

// Storage is a storage.Backend backed by named shared-memory regions under
// a configurable base directory (typically /dev/shm).
type Storage struct {
	baseDir string
	max     rangeio.MaxSize

	mu       sync.Mutex
	segments map[storageid.SegmentID]*segment
}

// New constructs a Shmem storage rooted at baseDir (e.g. "/dev/shm/mcs").
func New(baseDir string, max rangeio.MaxSize) (*Storage, error) {
	if err := os.MkdirAll(baseDir, 0750); err != nil {
		return nil, err
	}
	return &Storage{baseDir: baseDir, max: max, segments: make(map[storageid.SegmentID]*segment)}, nil
}

func (s *Storage) Kind() string            { return "shmem" }
func (s *Storage) SizeMax() rangeio.MaxSize { return s.max }

func (s *Storage) segmentPath(id storageid.SegmentID) string {
	return fmt.Sprintf("%s/%s", s.baseDir, id)
}

func (s *Storage) SegmentCreate(size rangeio.Size, persistency storage.Persistency) (storageid.SegmentID, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := storageid.SegmentID(0).Next()
	for {
		if _, taken := s.segments[id]; !taken {
			break
		}
		id = id.Next()
	}

	f, err := os.OpenFile(s.segmentPath(id), os.O_RDWR|os.O_CREATE|os.O_EXCL, 0600)
	if err != nil {
		return 0, err
	}
	if err := f.Truncate(int64(size)); err != nil {
		f.Close()
		os.Remove(s.segmentPath(id))
		return 0, err
	}

	var data []byte
	if size > 0 {
		data, err = unix.Mmap(int(f.Fd()), 0, int(size), unix.PROT_READ|unix.PROT_WRITE, unix.MAP_SHARED)
		if err != nil {
			f.Close()
			os.Remove(s.segmentPath(id))
			return 0, err
		}
	}

	s.segments[id] = &segment{file: f, data: data, persistency: persistency}
	return id, nil
}

// SegmentRemove drops id from the live segment table and reports its full
// size as freed. The /dev/shm-backed object is unlinked unless the
// segment was created with storage.Keep and force doesn't override it, so
// a caller can hand a segment off to another process sharing baseDir
// without its bytes disappearing the moment this process removes it.
func (s *Storage) SegmentRemove(id storageid.SegmentID, force storage.ForceRemoval) (rangeio.Size, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	seg, ok := s.segments[id]
	if !ok {
		return 0, storage.ErrUnknownSegmentID{Segment: id}
	}
	freed := rangeio.Size(len(seg.data))
	if len(seg.data) > 0 {
		unix.Munmap(seg.data)
	}
	seg.file.Close()
	if force == storage.ForceDelete || seg.persistency != storage.Keep {
		os.Remove(s.segmentPath(id))
	}
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

func (s *Storage) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, seg := range s.segments {
		if len(seg.data) > 0 {
			unix.Munmap(seg.data)
		}
		seg.file.Close()
		os.Remove(s.segmentPath(id))
	}
	return nil
}
