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

package heap_test

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/cc-hpc-itwm/mcs/rangeio"
	"github.com/cc-hpc-itwm/mcs/storage"
	"github.com/cc-hpc-itwm/mcs/storage/heap"
)

func TestChunkDescriptionReflectsWrites(t *testing.T) {
	s := heap.New(rangeio.Limit(1024))
	id, err := s.SegmentCreate(16, storage.RemoveOnSegmentRemoval)
	if err != nil {
		t.Fatalf("SegmentCreate: %v", err)
	}

	view, err := s.ChunkDescription(id, rangeio.NewRange(0, 16), storage.Mutable)
	if err != nil {
		t.Fatalf("ChunkDescription: %v", err)
	}
	copy(view.Bytes, []byte("hello, segment!!"))

	view2, err := s.ChunkDescription(id, rangeio.NewRange(0, 5), storage.Const)
	if err != nil {
		t.Fatalf("ChunkDescription: %v", err)
	}
	if !bytes.Equal(view2.Bytes, []byte("hello")) {
		t.Fatalf("got %q, want \"hello\"", view2.Bytes)
	}
}

func TestChunkDescriptionRejectsOutOfRange(t *testing.T) {
	s := heap.New(rangeio.Limit(1024))
	id, err := s.SegmentCreate(16, storage.RemoveOnSegmentRemoval)
	if err != nil {
		t.Fatalf("SegmentCreate: %v", err)
	}
	_, err = s.ChunkDescription(id, rangeio.NewRange(0, 17), storage.Const)
	var outOfRange storage.ErrOutOfRange
	if !errors.As(err, &outOfRange) {
		t.Fatalf("ChunkDescription past end: got %v, want ErrOutOfRange", err)
	}
}

func TestSegmentRemoveUnknownID(t *testing.T) {
	s := heap.New(rangeio.Unlimited())
	_, err := s.SegmentRemove(999, storage.RespectPersistency)
	var unknown storage.ErrUnknownSegmentID
	if !errors.As(err, &unknown) {
		t.Fatalf("SegmentRemove unknown id: got %v, want ErrUnknownSegmentID", err)
	}
}

func TestFileReadFileWriteRoundTrip(t *testing.T) {
	s := heap.New(rangeio.Unlimited())
	id, err := s.SegmentCreate(5, storage.RemoveOnSegmentRemoval)
	if err != nil {
		t.Fatalf("SegmentCreate: %v", err)
	}
	view, err := s.ChunkDescription(id, rangeio.NewRange(0, 5), storage.Mutable)
	if err != nil {
		t.Fatalf("ChunkDescription: %v", err)
	}
	copy(view.Bytes, []byte("abcde"))

	path := filepath.Join(t.TempDir(), "segment.bin")
	if _, err := s.FileRead(id, path); err != nil {
		t.Fatalf("FileRead: %v", err)
	}
	got, err := os.ReadFile(path)
	if err != nil || string(got) != "abcde" {
		t.Fatalf("ReadFile = %q, %v, want \"abcde\", nil", got, err)
	}

	if err := os.WriteFile(path, []byte("fghij"), 0644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	id2, err := s.SegmentCreate(5, storage.RemoveOnSegmentRemoval)
	if err != nil {
		t.Fatalf("SegmentCreate: %v", err)
	}
	if _, err := s.FileWrite(id2, path); err != nil {
		t.Fatalf("FileWrite: %v", err)
	}
	view2, err := s.ChunkDescription(id2, rangeio.NewRange(0, 5), storage.Const)
	if err != nil {
		t.Fatalf("ChunkDescription: %v", err)
	}
	if !bytes.Equal(view2.Bytes, []byte("fghij")) {
		t.Fatalf("after FileWrite got %q, want \"fghij\"", view2.Bytes)
	}
}
