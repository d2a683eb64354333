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

// Package virtual implements the "virtual" storage backend: a shared
// object loaded at runtime via Go's plugin loader, exporting the same
// vtable shape the C-ABI contract describes (init/destroy/size_max/
// segment_create/segment_remove/chunk_description/file_read/file_write).
// Errors never unwind across this boundary: every exported symbol except
// SizeMax returns an error (alone or with a value), formatted from
// whatever the plugin reports.
package virtual

import (
	"fmt"
	"plugin"

	"github.com/cc-hpc-itwm/mcs/rangeio"
	"github.com/cc-hpc-itwm/mcs/storage"
	"github.com/cc-hpc-itwm/mcs/storageid"
)

// VTable is the set of entry points a virtual storage plugin must export
// as package-level functions with these exact names and signatures (Go's
// plugin.Lookup resolves them by name, standing in for the C-ABI symbol
// table the original backend dlopen's).
type VTable struct {
	Init             func(param []byte) (any, error)
	Destroy          func(state any) error
	SizeMax          func(state any) rangeio.MaxSize
	SegmentCreate    func(state any, size rangeio.Size, persistency storage.Persistency) (storageid.SegmentID, error)
	SegmentRemove    func(state any, id storageid.SegmentID, force storage.ForceRemoval) (rangeio.Size, error)
	ChunkDescription func(state any, id storageid.SegmentID, rng rangeio.Range, access storage.Access) (storage.ChunkView, error)
	FileRead         func(state any, id storageid.SegmentID, path string) (rangeio.Size, error)
	FileWrite        func(state any, id storageid.SegmentID, path string) (rangeio.Size, error)
}

func lookupSymbol[F any](p *plugin.Plugin, name string) (F, error) {
	var zero F
	sym, err := p.Lookup(name)
	if err != nil {
		return zero, storage.ErrMethodNotProvided{Method: name}
	}
	f, ok := sym.(F)
	if !ok {
		// plugin exports a symbol by this name but with the wrong
		// signature; treat it the same as not providing it at all.
		return zero, storage.ErrMethodNotProvided{Method: name}
	}
	return f, nil
}

func loadVTable(p *plugin.Plugin) (VTable, error) {
	var v VTable
	var err error
	if v.Init, err = lookupSymbol[func([]byte) (any, error)](p, "Init"); err != nil {
		return v, err
	}
	if v.Destroy, err = lookupSymbol[func(any) error](p, "Destroy"); err != nil {
		return v, err
	}
	if v.SizeMax, err = lookupSymbol[func(any) rangeio.MaxSize](p, "SizeMax"); err != nil {
		return v, err
	}
	if v.SegmentCreate, err = lookupSymbol[func(any, rangeio.Size, storage.Persistency) (storageid.SegmentID, error)](p, "SegmentCreate"); err != nil {
		return v, err
	}
	if v.SegmentRemove, err = lookupSymbol[func(any, storageid.SegmentID, storage.ForceRemoval) (rangeio.Size, error)](p, "SegmentRemove"); err != nil {
		return v, err
	}
	if v.ChunkDescription, err = lookupSymbol[func(any, storageid.SegmentID, rangeio.Range, storage.Access) (storage.ChunkView, error)](p, "ChunkDescription"); err != nil {
		return v, err
	}
	if v.FileRead, err = lookupSymbol[func(any, storageid.SegmentID, string) (rangeio.Size, error)](p, "FileRead"); err != nil {
		return v, err
	}
	if v.FileWrite, err = lookupSymbol[func(any, storageid.SegmentID, string) (rangeio.Size, error)](p, "FileWrite"); err != nil {
		return v, err
	}
	return v, nil
}

// Storage wraps a loaded plugin and the opaque state its Init returned.
type Storage struct {
	path  string
	vt    VTable
	state any
}

// Load opens the shared object at path, resolves its vtable and calls
// Init with param. path is reported back by Kind for diagnostics; the
// plugin itself decides what param means.
func Load(path string, param []byte) (*Storage, error) {
	p, err := plugin.Open(path)
	if err != nil {
		return nil, storage.ErrCreate{Cause: fmt.Errorf("virtual: open %s: %w", path, err)}
	}
	vt, err := loadVTable(p)
	if err != nil {
		return nil, storage.ErrCreate{Cause: err}
	}
	state, err := vt.Init(param)
	if err != nil {
		return nil, storage.ErrCreate{Cause: err}
	}
	return &Storage{path: path, vt: vt, state: state}, nil
}

func (s *Storage) Kind() string            { return "virtual:" + s.path }
func (s *Storage) SizeMax() rangeio.MaxSize { return s.vt.SizeMax(s.state) }

func (s *Storage) SegmentCreate(size rangeio.Size, persistency storage.Persistency) (storageid.SegmentID, error) {
	return s.vt.SegmentCreate(s.state, size, persistency)
}

func (s *Storage) SegmentRemove(id storageid.SegmentID, force storage.ForceRemoval) (rangeio.Size, error) {
	return s.vt.SegmentRemove(s.state, id, force)
}

func (s *Storage) ChunkDescription(id storageid.SegmentID, rng rangeio.Range, access storage.Access) (storage.ChunkView, error) {
	return s.vt.ChunkDescription(s.state, id, rng, access)
}

func (s *Storage) FileRead(id storageid.SegmentID, path string) (rangeio.Size, error) {
	return s.vt.FileRead(s.state, id, path)
}

func (s *Storage) FileWrite(id storageid.SegmentID, path string) (rangeio.Size, error) {
	return s.vt.FileWrite(s.state, id, path)
}

func (s *Storage) Close() error { return s.vt.Destroy(s.state) }
