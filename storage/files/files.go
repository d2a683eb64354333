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

// Package files implements a storage backend persisting each segment as a
// plain regular file under a directory prefix, memory-mapped for
// zero-copy chunk access. Opening a prefix that already contains files
// from a previous run recovers the existing segments.
package files

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"

	"golang.org/x/sys/unix"

	"github.com/cc-hpc-itwm/mcs/rangeio"
	"github.com/cc-hpc-itwm/mcs/storage"
	"github.com/cc-hpc-itwm/mcs/storageid"
)

const filePrefix = "sg_"

type segment struct {
	file        *os.File
	data        []byte
	persistency storage.Persistency
}

// Storage is a storage.Backend whose segments are files named "sg_<id>"
// under prefix.
type Storage struct {
	prefix string
	max    rangeio.MaxSize

	mu       sync.Mutex
	segments map[storageid.SegmentID]*segment
	nextID   uint64
}

// Open opens (creating if necessary) a Files storage rooted at prefix. Any
// existing "sg_*" files are recovered as live segments; any other file in
// the directory is rejected with ErrPrefixContainsNonSegmentFile.
func Open(prefix string, max rangeio.MaxSize) (*Storage, error) {
	if err := os.MkdirAll(prefix, 0750); err != nil {
		return nil, storage.ErrCreate{Cause: err}
	}
	entries, err := os.ReadDir(prefix)
	if err != nil {
		return nil, storage.ErrCreate{Cause: err}
	}

	s := &Storage{prefix: prefix, max: max, segments: make(map[storageid.SegmentID]*segment)}
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		name := e.Name()
		if !strings.HasPrefix(name, filePrefix) {
			return nil, storage.ErrCreate{Cause: storage.ErrPrefixContainsNonSegmentFile{Name: name}}
		}
		n, err := strconv.ParseUint(strings.TrimPrefix(name, filePrefix), 10, 64)
		if err != nil {
			return nil, storage.ErrCreate{Cause: storage.ErrPrefixContainsNonSegmentFile{Name: name}}
		}
		id := storageid.SegmentID(n)
		seg, err := s.open(id)
		if err != nil {
			return nil, storage.ErrCreate{Cause: err}
		}
		s.segments[id] = seg
		if n+1 > s.nextID {
			s.nextID = n + 1
		}
	}
	return s, nil
}

func (s *Storage) path(id storageid.SegmentID) string {
	return filepath.Join(s.prefix, filePrefix+strconv.FormatUint(uint64(id), 10))
}

func (s *Storage) open(id storageid.SegmentID) (*segment, error) {
	f, err := os.OpenFile(s.path(id), os.O_RDWR, 0640)
	if err != nil {
		return nil, err
	}
	fi, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, err
	}
	var data []byte
	if fi.Size() > 0 {
		data, err = unix.Mmap(int(f.Fd()), 0, int(fi.Size()), unix.PROT_READ|unix.PROT_WRITE, unix.MAP_SHARED)
		if err != nil {
			f.Close()
			return nil, err
		}
	}
	return &segment{file: f, data: data}, nil
}

func (s *Storage) Kind() string            { return "files" }
func (s *Storage) SizeMax() rangeio.MaxSize { return s.max }

func (s *Storage) SegmentCreate(size rangeio.Size, persistency storage.Persistency) (storageid.SegmentID, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := storageid.SegmentID(s.nextID)
	s.nextID++

	f, err := os.OpenFile(s.path(id), os.O_RDWR|os.O_CREATE|os.O_EXCL, 0640)
	if err != nil {
		return 0, err
	}
	if err := f.Truncate(int64(size)); err != nil {
		f.Close()
		os.Remove(s.path(id))
		return 0, err
	}
	var data []byte
	if size > 0 {
		data, err = unix.Mmap(int(f.Fd()), 0, int(size), unix.PROT_READ|unix.PROT_WRITE, unix.MAP_SHARED)
		if err != nil {
			f.Close()
			os.Remove(s.path(id))
			return 0, err
		}
	}
	s.segments[id] = &segment{file: f, data: data, persistency: persistency}
	return id, nil
}

// SegmentRemove drops id from the live segment table and reports its full
// size as freed (the quota is always released). The backing file under
// prefix is deleted unless the segment was created with storage.Keep and
// force doesn't override it, in which case the bytes are left in place
// for a later Open of the same prefix to recover.
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
		os.Remove(s.path(id))
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
	if err := seg.file.Sync(); err != nil {
		return 0, err
	}
	if err := copyFile(s.path(id), path); err != nil {
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
	for _, seg := range s.segments {
		if len(seg.data) > 0 {
			unix.Munmap(seg.data)
		}
		seg.file.Close()
	}
	return nil
}

func copyFile(src, dst string) error {
	content, err := os.ReadFile(src)
	if err != nil {
		return err
	}
	return os.WriteFile(dst, content, 0644)
}
