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
	"bufio"
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/pierrec/lz4/v4"
)

// LogFile is a Tracer that appends one text line per event to a file,
// flushing after every write so a crash doesn't lose the tail.
type LogFile struct {
	mu   sync.Mutex
	path string
	f    *os.File
	w    *bufio.Writer
}

// OpenLogFile opens path for appending, creating it if necessary.
func OpenLogFile(path string) (*LogFile, error) {
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_APPEND, 0640)
	if err != nil {
		return nil, err
	}
	return &LogFile{path: path, f: f, w: bufio.NewWriter(f)}, nil
}

func (l *LogFile) Record(e Event) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.w.WriteString(e.String())
	l.w.WriteByte('\n')
	l.w.Flush()
}

func (l *LogFile) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.w.Flush()
	return l.f.Close()
}

// Rotate compresses the current log to "<path>.lz4" and reopens path as a
// fresh, empty file, so operators can bound an always-on trace's disk use.
// Each Rotate replaces any "<path>.lz4" left by an earlier one.
func (l *LogFile) Rotate() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.w.Flush()
	if _, err := l.f.Seek(0, io.SeekStart); err != nil {
		return fmt.Errorf("tracer: rotate: seek: %w", err)
	}

	compressed, err := os.Create(l.path + ".lz4")
	if err != nil {
		return fmt.Errorf("tracer: rotate: create: %w", err)
	}
	zw := lz4.NewWriter(compressed)
	if _, err := io.Copy(zw, l.f); err != nil {
		zw.Close()
		compressed.Close()
		return fmt.Errorf("tracer: rotate: compress: %w", err)
	}
	if err := zw.Close(); err != nil {
		compressed.Close()
		return fmt.Errorf("tracer: rotate: close compressor: %w", err)
	}
	if err := compressed.Close(); err != nil {
		return fmt.Errorf("tracer: rotate: close %s.lz4: %w", l.path, err)
	}

	l.f.Close()
	f, err := os.OpenFile(l.path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0640)
	if err != nil {
		return fmt.Errorf("tracer: rotate: reopen: %w", err)
	}
	l.f = f
	l.w = bufio.NewWriter(f)
	return nil
}
