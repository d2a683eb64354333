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

// Package shareservice implements the named-chunk create/attach/remove
// micro-service (component C10): a thin name table in front of a
// storage.Storages registry, letting unrelated clients rendezvous on a
// segment by a shared string instead of exchanging storage/segment IDs
// out of band.
package shareservice

import (
	"fmt"
	"sync"

	"github.com/cc-hpc-itwm/mcs/storageid"
)

// shareEntry is one published name's location.
type shareEntry struct {
	Storage storageid.ID
	Segment storageid.SegmentID
}

// ErrDuplicateName is returned by Catalog.Put when name is already taken.
type ErrDuplicateName struct{ Name string }

func (e ErrDuplicateName) Error() string { return fmt.Sprintf("shareservice: name %q already exists", e.Name) }

// ErrUnknownName is returned by Catalog.Get/Delete for a name never
// published, or already removed.
type ErrUnknownName struct{ Name string }

func (e ErrUnknownName) Error() string { return fmt.Sprintf("shareservice: unknown name %q", e.Name) }

// Catalog is the name -> (storage, segment) table a Service sits on top
// of. The default is memoryCatalog; SQLCatalog is the durable
// alternative (spec.md's restart-recovery supplement).
type Catalog interface {
	Put(name string, entry shareEntry) error
	Get(name string) (shareEntry, error)
	Delete(name string) error
}

// memoryCatalog is the default Catalog: a map behind a RWMutex. Entries
// do not survive a restart.
type memoryCatalog struct {
	mu      sync.RWMutex
	entries map[string]shareEntry
}

// NewMemoryCatalog constructs the default, non-durable Catalog.
func NewMemoryCatalog() Catalog {
	return &memoryCatalog{entries: make(map[string]shareEntry)}
}

func (c *memoryCatalog) Put(name string, entry shareEntry) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.entries[name]; ok {
		return ErrDuplicateName{Name: name}
	}
	c.entries[name] = entry
	return nil
}

func (c *memoryCatalog) Get(name string) (shareEntry, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	e, ok := c.entries[name]
	if !ok {
		return shareEntry{}, ErrUnknownName{Name: name}
	}
	return e, nil
}

func (c *memoryCatalog) Delete(name string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.entries[name]; !ok {
		return ErrUnknownName{Name: name}
	}
	delete(c.entries, name)
	return nil
}
