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

package tracer

import (
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/pierrec/lz4/v4"
)

func TestLogFileRecordsOneLinePerEvent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "trace.log")
	l, err := OpenLogFile(path)
	if err != nil {
		t.Fatalf("OpenLogFile: %v", err)
	}
	l.Record(Event{Kind: "segment_create", Storage: "bi_1"})
	l.Record(Event{Kind: "segment_remove", Storage: "bi_1"})
	if err := l.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	lines := splitLines(string(data))
	if len(lines) != 2 {
		t.Fatalf("got %d lines, want 2: %q", len(lines), data)
	}
	if !contains(lines[0], "segment_create") || !contains(lines[1], "segment_remove") {
		t.Fatalf("unexpected log contents: %q", data)
	}
}

func TestLogFileRotateCompressesAndTruncates(t *testing.T) {
	path := filepath.Join(t.TempDir(), "trace.log")
	l, err := OpenLogFile(path)
	if err != nil {
		t.Fatalf("OpenLogFile: %v", err)
	}
	defer l.Close()

	l.Record(Event{Kind: "a"})
	l.Record(Event{Kind: "b"})

	if err := l.Rotate(); err != nil {
		t.Fatalf("Rotate: %v", err)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("stat rotated path: %v", err)
	}
	if info.Size() != 0 {
		t.Fatalf("path after rotate has size %d, want 0", info.Size())
	}

	archive, err := os.Open(path + ".lz4")
	if err != nil {
		t.Fatalf("open archive: %v", err)
	}
	defer archive.Close()
	decompressed, err := io.ReadAll(lz4.NewReader(archive))
	if err != nil {
		t.Fatalf("decompress archive: %v", err)
	}
	lines := splitLines(string(decompressed))
	if len(lines) != 2 {
		t.Fatalf("archive contains %d lines, want 2: %q", len(lines), decompressed)
	}

	l.Record(Event{Kind: "c"})
	l.Record(Event{Kind: "d"})
}

func splitLines(s string) []string {
	var out []string
	start := 0
	for i := 0; i < len(s); i++ {
		if s[i] == '\n' {
			if i > start {
				out = append(out, s[start:i])
			}
			start = i + 1
		}
	}
	if start < len(s) {
		out = append(out, s[start:])
	}
	return out
}
