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

import (
	"errors"
	"testing"

	"github.com/cc-hpc-itwm/mcs/rangeio"
	"github.com/cc-hpc-itwm/mcs/storage/heap"
)

func TestUnknownIDAfterRemove(t *testing.T) {
	s := New()
	id, err := s.Create(heap.New(rangeio.Limit(1024)))
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := s.Remove(id); err != nil {
		t.Fatalf("remove: %v", err)
	}

	if _, err := s.SizeMax(id); !errors.As(err, &ErrUnknownID{}) {
		t.Fatalf("size_max after remove: got %v, want ErrUnknownID", err)
	}
	if _, err := s.SegmentCreate(id, 8, RemoveOnSegmentRemoval); !errors.As(err, &ErrUnknownID{}) {
		t.Fatalf("segment_create after remove: got %v, want ErrUnknownID", err)
	}
}

func TestSegmentCreateAccountsSize(t *testing.T) {
	s := New()
	id, err := s.Create(heap.New(rangeio.Limit(100)))
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	segID, err := s.SegmentCreate(id, 40, RemoveOnSegmentRemoval)
	if err != nil {
		t.Fatalf("segment_create: %v", err)
	}
	if used, err := s.SizeUsed(id); err != nil || used != 40 {
		t.Fatalf("size_used = %v, %v; want 40, nil", used, err)
	}

	freed, err := s.SegmentRemove(id, segID, RespectPersistency)
	if err != nil {
		t.Fatalf("segment_remove: %v", err)
	}
	if freed != 40 {
		t.Fatalf("freed = %s, want 40", freed)
	}
	if used, err := s.SizeUsed(id); err != nil || used != 0 {
		t.Fatalf("size_used after remove = %v, %v; want 0, nil", used, err)
	}
}

// TestSegmentRemoveKeptSegmentStillFreesQuota confirms that Persistency
// only governs a backend's own backing bytes — size_used always drops by
// a removed segment's full size, kept on disk or not, since the registry
// no longer accounts for a segment once it is removed.
func TestSegmentRemoveKeptSegmentStillFreesQuota(t *testing.T) {
	s := New()
	id, err := s.Create(heap.New(rangeio.Limit(100)))
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	segID, err := s.SegmentCreate(id, 40, Keep)
	if err != nil {
		t.Fatalf("segment_create: %v", err)
	}
	if _, err := s.SegmentRemove(id, segID, RespectPersistency); err != nil {
		t.Fatalf("segment_remove: %v", err)
	}
	if used, err := s.SizeUsed(id); err != nil || used != 0 {
		t.Fatalf("size_used after removing a kept segment = %v, %v; want 0, nil", used, err)
	}
}

func TestSegmentCreateBadAllocLeavesStateUnchanged(t *testing.T) {
	s := New()
	id, err := s.Create(heap.New(rangeio.Limit(10)))
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	if _, err := s.SegmentCreate(id, 20, RemoveOnSegmentRemoval); err == nil {
		t.Fatalf("expected BadAlloc for oversized segment_create")
	}
	if used, err := s.SizeUsed(id); err != nil || used != 0 {
		t.Fatalf("size_used after failed create = %v, %v; want 0, nil", used, err)
	}
}

func TestTypedWrongImplementation(t *testing.T) {
	s := New()
	id, err := s.Create(heap.New(rangeio.Limit(10)))
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := Typed[*notAHeap](s, id); err == nil {
		t.Fatalf("expected ErrWrongImplementation")
	}
}

type notAHeap struct{}
