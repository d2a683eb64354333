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
	"fmt"
	"io"
	"os"

	"github.com/ulikunitz/xz"

	"github.com/cc-hpc-itwm/mcs/codec"
)

// Persist writes an xz-compressed snapshot of p's whole state to path,
// the serialized form spec.md §4.5.4 calls "State is itself
// serializable". Capacity/used bookkeeping is written back out exactly
// as handleState would report it, so a restart can reopen every storage
// with the same remaining-capacity view it had before the snapshot.
func (p *Provider) Persist(path string) error {
	resp, _ := p.handleState(&empty{}, nil)
	snapshot := resp.(*stateResponse)

	w := codec.NewWriter()
	snapshot.EncodeMCS(w)

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("iov: persist: %w", err)
	}
	defer f.Close()

	zw, err := xz.NewWriter(f)
	if err != nil {
		return fmt.Errorf("iov: persist: xz writer: %w", err)
	}
	if _, err := zw.Write(w.Bytes()); err != nil {
		zw.Close()
		return fmt.Errorf("iov: persist: write: %w", err)
	}
	return zw.Close()
}

// RestoreState loads a snapshot written by Persist, re-registers every
// storage (reopening its StoragesClients connection) and every
// collection, and returns the provider ready to accept calls. Callers
// receiving requests during this process queue behind State's write
// lock, exactly as if restart were itself holding it (spec.md §4.5.4).
func RestoreState(path string) (*Provider, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("iov: restore: %w", err)
	}
	defer f.Close()

	zr, err := xz.NewReader(f)
	if err != nil {
		return nil, fmt.Errorf("iov: restore: xz reader: %w", err)
	}
	data, err := io.ReadAll(zr)
	if err != nil {
		return nil, fmt.Errorf("iov: restore: read: %w", err)
	}

	var snapshot stateResponse
	if err := codec.Unmarshal(data, &snapshot); err != nil {
		return nil, fmt.Errorf("iov: restore: decode: %w", err)
	}

	p := NewProvider()
	p.state.mu.Lock()
	for _, s := range snapshot.Storages {
		if s.ID >= p.state.nextStorageID {
			p.state.nextStorageID = s.ID.Next()
		}
		p.state.storages.ReplaceOrInsert(storageEntryItem{
			id: s.ID,
			entry: storageEntry{Record: s.Record, Capacity: s.Capacity, used: s.Used},
		})
	}
	for _, c := range snapshot.Collections {
		p.state.collections.ReplaceOrInsert(collectionItem{id: c.ID, collection: c.Collection})
	}
	p.state.mu.Unlock()

	var errs []error
	for _, s := range snapshot.Storages {
		if err := p.clients.Open(s.ID, s.Record); err != nil {
			errs = append(errs, err)
		}
	}
	if len(errs) > 0 {
		return p, fmt.Errorf("iov: restore: reopening storages clients: %v", errs)
	}
	return p, nil
}
