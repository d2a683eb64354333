//go:build ceph

/*
Copyright (C) 2024-2026  Carl-Philip Hänsch

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

// Package ceph implements a storage backend over a RADOS pool: one object
// per segment, read and written at byte offsets via Ioctx.Read/Write —
// RADOS supports offset writes (unlike S3), so chunks can be synced
// in-place without a read-modify-write round trip. Built only with
// -tags=ceph; see ceph_stub.go for the no-op fallback.
package ceph

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"sync"

	"github.com/ceph/go-ceph/rados"

	"github.com/cc-hpc-itwm/mcs/rangeio"
	"github.com/cc-hpc-itwm/mcs/storage"
	"github.com/cc-hpc-itwm/mcs/storageid"
)

// Config names the RADOS cluster connection and pool to use.
type Config struct {
	UserName    string
	ClusterName string
	ConfFile    string
	Pool        string
	Prefix      string
	Max         rangeio.MaxSize
}

type segmentInfo struct {
	size rangeio.Size
	// pending holds buffers handed out as Mutable ChunkViews, keyed by
	// range, until Flush writes them back at their offset.
	pending     map[rangeio.Range][]byte
	persistency storage.Persistency
}

// Storage is a storage.Backend backed by a RADOS pool.
type Storage struct {
	cfg  Config
	conn *rados.Conn
	ioc  *rados.IOContext

	mu       sync.Mutex
	segments map[storageid.SegmentID]segmentInfo
	nextID   uint64
}

// Open connects to the RADOS cluster described by cfg and opens its pool.
func Open(cfg Config) (*Storage, error) {
	conn, err := rados.NewConnWithClusterAndUser(cfg.ClusterName, cfg.UserName)
	if err != nil {
		return nil, storage.ErrCreate{Cause: fmt.Errorf("ceph: new conn: %w", err)}
	}
	if cfg.ConfFile != "" {
		if err := conn.ReadConfigFile(cfg.ConfFile); err != nil {
			return nil, storage.ErrCreate{Cause: fmt.Errorf("ceph: read config: %w", err)}
		}
	} else if err := conn.ReadDefaultConfigFile(); err != nil {
		return nil, storage.ErrCreate{Cause: fmt.Errorf("ceph: read default config: %w", err)}
	}
	if err := conn.Connect(); err != nil {
		return nil, storage.ErrCreate{Cause: fmt.Errorf("ceph: connect: %w", err)}
	}
	ioc, err := conn.OpenIOContext(cfg.Pool)
	if err != nil {
		conn.Shutdown()
		return nil, storage.ErrCreate{Cause: fmt.Errorf("ceph: open pool %s: %w", cfg.Pool, err)}
	}
	return &Storage{cfg: cfg, conn: conn, ioc: ioc, segments: make(map[storageid.SegmentID]segmentInfo)}, nil
}

func (s *Storage) object(id storageid.SegmentID) string {
	pfx := strings.TrimSuffix(s.cfg.Prefix, "/")
	if pfx == "" {
		return "sg_" + strconv.FormatUint(uint64(id), 10)
	}
	return pfx + "/sg_" + strconv.FormatUint(uint64(id), 10)
}

func (s *Storage) Kind() string            { return "ceph" }
func (s *Storage) SizeMax() rangeio.MaxSize { return s.cfg.Max }

func (s *Storage) SegmentCreate(size rangeio.Size, persistency storage.Persistency) (storageid.SegmentID, error) {
	s.mu.Lock()
	id := storageid.SegmentID(s.nextID)
	s.nextID++
	s.mu.Unlock()

	zero := make([]byte, size)
	if err := s.ioc.WriteFull(s.object(id), zero); err != nil {
		return 0, err
	}
	s.mu.Lock()
	s.segments[id] = segmentInfo{size: size, pending: make(map[rangeio.Range][]byte), persistency: persistency}
	s.mu.Unlock()
	return id, nil
}

// SegmentRemove drops id from the live segment table and reports its
// full size as freed. The RADOS object is only deleted when the segment
// wasn't created with storage.Keep, or force overrides that — otherwise
// it is left in the pool under its object name for later recovery.
func (s *Storage) SegmentRemove(id storageid.SegmentID, force storage.ForceRemoval) (rangeio.Size, error) {
	s.mu.Lock()
	info, ok := s.segments[id]
	if ok {
		delete(s.segments, id)
	}
	s.mu.Unlock()
	if !ok {
		return 0, storage.ErrUnknownSegmentID{Segment: id}
	}
	if force == storage.ForceDelete || info.persistency != storage.Keep {
		if err := s.ioc.Delete(s.object(id)); err != nil {
			return 0, err
		}
	}
	return info.size, nil
}

func (s *Storage) ChunkDescription(id storageid.SegmentID, rng rangeio.Range, access storage.Access) (storage.ChunkView, error) {
	s.mu.Lock()
	info, ok := s.segments[id]
	s.mu.Unlock()
	if !ok {
		return storage.ChunkView{}, storage.ErrUnknownSegmentID{Segment: id}
	}
	if uint64(rng.End()) > uint64(info.size) {
		return storage.ChunkView{}, storage.ErrOutOfRange{Requested: rng, Available: info.size}
	}

	buf := make([]byte, rng.Size())
	n, err := s.ioc.Read(s.object(id), buf, uint64(rng.Begin()))
	if err != nil {
		return storage.ChunkView{}, err
	}
	buf = buf[:n]

	if access == storage.Mutable {
		s.mu.Lock()
		info.pending[rng] = buf
		s.mu.Unlock()
	}
	return storage.ChunkView{SegmentID: id, Range: rng, Access: access, Bytes: buf}, nil
}

// Flush writes a previously handed-out Mutable chunk's bytes back to the
// object at its original offset, implementing storage.Flusher.
func (s *Storage) Flush(id storageid.SegmentID, rng rangeio.Range) error {
	s.mu.Lock()
	info, ok := s.segments[id]
	if !ok {
		s.mu.Unlock()
		return storage.ErrUnknownSegmentID{Segment: id}
	}
	buf, pending := info.pending[rng]
	s.mu.Unlock()
	if !pending {
		return nil
	}
	return s.ioc.Write(s.object(id), buf, uint64(rng.Begin()))
}

func (s *Storage) FileRead(id storageid.SegmentID, path string) (rangeio.Size, error) {
	s.mu.Lock()
	info, ok := s.segments[id]
	s.mu.Unlock()
	if !ok {
		return 0, storage.ErrUnknownSegmentID{Segment: id}
	}
	buf := make([]byte, info.size)
	n, err := s.ioc.Read(s.object(id), buf, 0)
	if err != nil {
		return 0, err
	}
	if err := os.WriteFile(path, buf[:n], 0644); err != nil {
		return 0, err
	}
	return rangeio.Size(n), nil
}

func (s *Storage) FileWrite(id storageid.SegmentID, path string) (rangeio.Size, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return 0, err
	}
	if err := s.ioc.Write(s.object(id), content, 0); err != nil {
		return 0, err
	}
	return rangeio.Size(len(content)), nil
}

func (s *Storage) Close() error {
	s.ioc.Destroy()
	s.conn.Shutdown()
	return nil
}
