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
	"testing"

	"github.com/cc-hpc-itwm/mcs/rangeio"
	"github.com/cc-hpc-itwm/mcs/storageid"
)

func TestAsEqualAsPossibleTouchingAndBalanced(t *testing.T) {
	caps := []storageCapacity{
		{ID: 0, Remaining: 100},
		{ID: 1, Remaining: 100},
		{ID: 2, Remaining: 100},
	}
	out := asEqualAsPossible(90, caps)

	var total rangeio.Size
	var prevEnd rangeio.Offset
	sizes := make([]rangeio.Size, len(out))
	for i, u := range out {
		if u.Range.Begin() != prevEnd {
			t.Fatalf("ranges not touching: entry %d begins at %s, previous ended at %s", i, u.Range.Begin(), prevEnd)
		}
		prevEnd = u.Range.End()
		total += u.Range.Size()
		sizes[i] = u.Range.Size()
	}
	if total != 90 {
		t.Fatalf("total = %d, want 90", total)
	}
	for i := 1; i < len(sizes); i++ {
		diff := int64(sizes[i]) - int64(sizes[i-1])
		if diff < -1 || diff > 1 {
			t.Fatalf("sizes %v differ by more than one", sizes)
		}
	}
}

func TestAsEqualAsPossibleFillsSmallestFirstAndRespectsCapacity(t *testing.T) {
	caps := []storageCapacity{
		{ID: 0, Remaining: 2},
		{ID: 1, Remaining: 50},
	}
	out := asEqualAsPossible(40, caps)

	byID := map[storageid.ID]rangeio.Size{}
	for _, u := range out {
		byID[u.Storage] += u.Range.Size()
	}
	if byID[0] > 2 {
		t.Fatalf("storage 0 took %d bytes, exceeds its capacity of 2", byID[0])
	}
	var total rangeio.Size
	for _, s := range byID {
		total += s
	}
	if total != 40 {
		t.Fatalf("total placed = %d, want 40", total)
	}
}

func TestAsEqualAsPossibleEmptyQueue(t *testing.T) {
	out := asEqualAsPossible(10, nil)
	if len(out) != 0 {
		t.Fatalf("expected no placements, got %v", out)
	}
}

func TestAsEqualAsPossibleTightCapacities(t *testing.T) {
	caps := []storageCapacity{
		{ID: 0, Remaining: 5},
		{ID: 1, Remaining: 50},
		{ID: 2, Remaining: 500},
	}
	out := asEqualAsPossible(300, caps)

	want := map[storageid.ID]rangeio.Range{
		0: rangeio.NewRangeOfSize(0, 5),
		1: rangeio.NewRangeOfSize(5, 50),
		2: rangeio.NewRangeOfSize(55, 245),
	}
	if len(out) != len(want) {
		t.Fatalf("got %d placements, want %d", len(out), len(want))
	}
	var total rangeio.Size
	for _, u := range out {
		if u.Range != want[u.Storage] {
			t.Fatalf("storage %s got range %s, want %s", u.Storage, u.Range, want[u.Storage])
		}
		total += u.Range.Size()
	}
	if total != 300 {
		t.Fatalf("total = %d, want 300", total)
	}
}

func TestDivruCeilingDivision(t *testing.T) {
	for _, d := range []int{1, 2, 3, 7, 16} {
		for b := rangeio.Size(0); b < 50; b++ {
			got := divru(b, d)
			if uint64(got)*uint64(d) < uint64(b) {
				t.Fatalf("divru(%d, %d) = %d: %d*%d < %d", b, d, got, got, d, b)
			}
			if uint64(got)*uint64(d) >= uint64(b)+uint64(d) {
				t.Fatalf("divru(%d, %d) = %d: %d*%d >= %d+%d", b, d, got, got, d, b, d)
			}
		}
	}
}
