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
package storage

// Persistency is chosen at SegmentCreate time and governs what a backend
// does to the segment's backing bytes once it is removed from the
// registry (spec.md §3, §4.2): Files and Shmem segments can outlive the
// process that created them on disk or in /dev/shm, which lets a second
// process recover a handed-off segment instead of losing it the moment
// the first process calls segment_remove.
type Persistency uint8

const (
	// RemoveOnSegmentRemoval frees the backing bytes as soon as the
	// segment is removed — the default. Heap, whose only backing store is
	// process memory, behaves this way regardless of persistency.
	RemoveOnSegmentRemoval Persistency = iota

	// Keep leaves the backing file or shared-memory object in place when
	// the segment is removed, so its bytes survive for a later FileRead,
	// a recovering process, or a subsequent Open/New call over the same
	// prefix. SegmentRemove still drops the segment from the backend's
	// own bookkeeping and releases its share of the quota; only the bytes
	// on disk/in shm are left behind.
	Keep
)

func (p Persistency) String() string {
	if p == Keep {
		return "keep"
	}
	return "remove_on_segment_removal"
}

// ForceRemoval overrides a segment's Persistency for a single
// SegmentRemove call: true deletes the backing bytes even if the segment
// was created with Keep, the escape hatch for an operator who wants to
// actually reclaim disk/shm space despite the segment's own persistency.
type ForceRemoval bool

const (
	RespectPersistency ForceRemoval = false
	ForceDelete        ForceRemoval = true
)
