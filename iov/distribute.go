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
	"container/heap"

	"github.com/cc-hpc-itwm/mcs/rangeio"
	"github.com/cc-hpc-itwm/mcs/storageid"
)

// storageCapacity pairs a storage with its remaining capacity, the unit
// the "as equal as possible" distribution queue orders by.
type storageCapacity struct {
	ID        storageid.ID
	Remaining rangeio.Size
}

// capacityQueue is a binary min-heap ordered by remaining capacity,
// smallest first — filling the tightest storages first avoids stranding
// them with a sliver too small to be useful later.
type capacityQueue []storageCapacity

func (q capacityQueue) Len() int           { return len(q) }
func (q capacityQueue) Less(i, j int) bool { return q[i].Remaining < q[j].Remaining }
func (q capacityQueue) Swap(i, j int)      { q[i], q[j] = q[j], q[i] }
func (q *capacityQueue) Push(x any)        { *q = append(*q, x.(storageCapacity)) }
func (q *capacityQueue) Pop() any {
	old := *q
	n := len(old)
	item := old[n-1]
	*q = old[:n-1]
	return item
}

// divru is B/N rounded up, the "ideal share" computation the original
// calls util::distribution::equal::size.
func divru(b rangeio.Size, n int) rangeio.Size {
	if n == 0 {
		return 0
	}
	return (b + rangeio.Size(n) - 1) / rangeio.Size(n)
}

// asEqualAsPossible spreads size bytes over the given storages, smallest
// remaining capacity first, dividing the remainder by the number of
// storages left at each step so the tail stays balanced (spec.md
// §4.5.3). Storages with insufficient combined capacity are filled to
// their limit; the returned UsedStorages are touching and partition
// [0, size) as far as total capacity allows.
func asEqualAsPossible(size rangeio.Size, capacities []storageCapacity) []UsedStorage {
	q := make(capacityQueue, len(capacities))
	copy(q, capacities)
	heap.Init(&q)

	var out []UsedStorage
	var begin rangeio.Offset

	for q.Len() > 0 {
		sc := heap.Pop(&q).(storageCapacity)

		ideal := divru(size, q.Len()+1)
		take := ideal
		if take > sc.Remaining {
			take = sc.Remaining
		}
		if take == 0 {
			continue
		}

		out = append(out, UsedStorage{
			Range:   rangeio.NewRangeOfSize(begin, take),
			Storage: sc.ID,
		})
		begin += rangeio.Offset(take)
		size -= take
	}
	return out
}
