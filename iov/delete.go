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
	"strings"
	"sync"

	"github.com/jtolds/gls"

	"github.com/cc-hpc-itwm/mcs/storage"
	"github.com/cc-hpc-itwm/mcs/storageid"
)

// ErrDelete aggregates every storage's segment_remove failure during a
// collection::Delete fan-out.
type ErrDelete struct {
	Collection CollectionID
	Causes     map[storageid.ID]error
}

func (e ErrDelete) Error() string {
	parts := make([]string, 0, len(e.Causes))
	for id, cause := range e.Causes {
		parts = append(parts, fmt.Sprintf("%s: %v", id, cause))
	}
	return fmt.Sprintf("iov: delete collection %s: %s", e.Collection, strings.Join(parts, "; "))
}

// Delete issues segment_remove against every storage backing cid
// concurrently (multi-client fan-out, spec.md §4.5.2), then erases the
// collection once every removal has succeeded. callID tags the fan-out's
// worker goroutines via gls so a tracer can correlate the concurrent
// segment_remove calls with the Delete call that triggered them.
func (s *State) Delete(clients *StoragesClients, cid CollectionID, callID string) error {
	used, err := s.UsedStoragesOf(cid)
	if err != nil {
		return err
	}

	var mu sync.Mutex
	causes := make(map[storageid.ID]error)
	var wg sync.WaitGroup
	wg.Add(len(used))

	callCtxMgr.SetValues(gls.Values{callIDKey: callID}, func() {
		for _, u := range used {
			gls.Go(func(u UsedStorage) func() {
				return func() {
					defer wg.Done()
					if err := s.removeSegment(clients, u); err != nil {
						mu.Lock()
						causes[u.Storage] = err
						mu.Unlock()
					}
				}
			}(u))
		}
		wg.Wait()
	})

	if len(causes) > 0 {
		return ErrDelete{Collection: cid, Causes: causes}
	}
	s.Forget(cid)
	return nil
}

func (s *State) removeSegment(clients *StoragesClients, u UsedStorage) error {
	client, err := clients.At(u.Storage)
	if err != nil {
		return err
	}
	entry, err := s.StorageEntry(u.Storage)
	if err != nil {
		return err
	}
	_, err = client.SegmentRemove(entry.Record.StorageID, u.Segment, storage.RespectPersistency)
	return err
}
