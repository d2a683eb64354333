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

package files_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/cc-hpc-itwm/mcs/rangeio"
	"github.com/cc-hpc-itwm/mcs/storage"
	"github.com/cc-hpc-itwm/mcs/storage/files"
)

func TestSegmentRemoveDeletesFileByDefault(t *testing.T) {
	dir := t.TempDir()
	s, err := files.Open(dir, rangeio.Unlimited())
	if err != nil {
		t.Fatalf("Open: %v", err)
	}

	id, err := s.SegmentCreate(16, storage.RemoveOnSegmentRemoval)
	if err != nil {
		t.Fatalf("SegmentCreate: %v", err)
	}
	if _, err := s.SegmentRemove(id, storage.RespectPersistency); err != nil {
		t.Fatalf("SegmentRemove: %v", err)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("ReadDir: %v", err)
	}
	if len(entries) != 0 {
		t.Fatalf("directory not empty after removing a default-persistency segment: %v", entries)
	}
}

func TestSegmentRemoveKeepsFileWhenPersistencyIsKeep(t *testing.T) {
	dir := t.TempDir()
	s, err := files.Open(dir, rangeio.Unlimited())
	if err != nil {
		t.Fatalf("Open: %v", err)
	}

	id, err := s.SegmentCreate(5, storage.Keep)
	if err != nil {
		t.Fatalf("SegmentCreate: %v", err)
	}
	view, err := s.ChunkDescription(id, rangeio.NewRange(0, 5), storage.Mutable)
	if err != nil {
		t.Fatalf("ChunkDescription: %v", err)
	}
	copy(view.Bytes, []byte("abcde"))

	if _, err := s.SegmentRemove(id, storage.RespectPersistency); err != nil {
		t.Fatalf("SegmentRemove: %v", err)
	}

	path := filepath.Join(dir, id.String())
	got, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("kept segment file missing: %v", err)
	}
	if string(got) != "abcde" {
		t.Fatalf("kept segment content = %q, want \"abcde\"", got)
	}
}

func TestSegmentRemoveForceDeleteOverridesKeep(t *testing.T) {
	dir := t.TempDir()
	s, err := files.Open(dir, rangeio.Unlimited())
	if err != nil {
		t.Fatalf("Open: %v", err)
	}

	id, err := s.SegmentCreate(8, storage.Keep)
	if err != nil {
		t.Fatalf("SegmentCreate: %v", err)
	}
	if _, err := s.SegmentRemove(id, storage.ForceDelete); err != nil {
		t.Fatalf("SegmentRemove: %v", err)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("ReadDir: %v", err)
	}
	if len(entries) != 0 {
		t.Fatalf("directory not empty after ForceDelete of a kept segment: %v", entries)
	}
}

func TestOpenRecoversKeptSegment(t *testing.T) {
	dir := t.TempDir()
	s1, err := files.Open(dir, rangeio.Unlimited())
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	id, err := s1.SegmentCreate(4, storage.Keep)
	if err != nil {
		t.Fatalf("SegmentCreate: %v", err)
	}
	if _, err := s1.SegmentRemove(id, storage.RespectPersistency); err != nil {
		t.Fatalf("SegmentRemove: %v", err)
	}

	s2, err := files.Open(dir, rangeio.Unlimited())
	if err != nil {
		t.Fatalf("reopening a prefix holding a kept segment: %v", err)
	}
	if _, err := s2.ChunkDescription(id, rangeio.NewRange(0, 4), storage.Const); err != nil {
		t.Fatalf("ChunkDescription on recovered segment: %v", err)
	}
}
