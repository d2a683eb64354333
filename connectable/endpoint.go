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
package connectable

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/fsnotify/fsnotify"
)

// Endpoint file names, per spec.md §6.
const (
	ProviderFile = "PROVIDER"
	PIDFile      = "PID"
)

// PublishEndpoint atomically writes dir/PROVIDER and dir/PID. Atomicity is
// achieved by writing to a temp file in dir and renaming into place, so a
// concurrent WaitForEndpoint reader (via fsnotify, watching for a create or
// rename event) never observes a partially-written file.
func PublishEndpoint(dir string, c Connectable) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("connectable: mkdir %s: %w", dir, err)
	}
	if err := atomicWriteLine(filepath.Join(dir, ProviderFile), c.String()); err != nil {
		return err
	}
	if err := atomicWriteLine(filepath.Join(dir, PIDFile), strconv.Itoa(os.Getpid())); err != nil {
		return err
	}
	return nil
}

func atomicWriteLine(path, line string) error {
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, []byte(line+"\n"), 0o644); err != nil {
		return fmt.Errorf("connectable: write %s: %w", tmp, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("connectable: rename %s -> %s: %w", tmp, path, err)
	}
	return nil
}

// ReadEndpoint reads and parses dir/PROVIDER. It does not wait for the
// file to appear; see WaitForEndpoint for that.
func ReadEndpoint(dir string) (Connectable, error) {
	data, err := os.ReadFile(filepath.Join(dir, ProviderFile))
	if err != nil {
		return Connectable{}, fmt.Errorf("connectable: read %s: %w", ProviderFile, err)
	}
	return Parse(trimLine(string(data)))
}

func trimLine(s string) string {
	for len(s) > 0 && (s[len(s)-1] == '\n' || s[len(s)-1] == '\r') {
		s = s[:len(s)-1]
	}
	return s
}

// WaitForEndpoint blocks until dir/PROVIDER exists and can be parsed,
// giving callers an explicit "the provider is ready" signal instead of
// polling or relying on timing (spec.md §9's "successful start" semantics
// open question). It watches dir with fsnotify for Create/Rename events
// and falls back to an immediate read in case the file already exists.
func WaitForEndpoint(ctx context.Context, dir string) (Connectable, error) {
	if c, err := ReadEndpoint(dir); err == nil {
		return c, nil
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return Connectable{}, fmt.Errorf("connectable: mkdir %s: %w", dir, err)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return Connectable{}, fmt.Errorf("connectable: fsnotify: %w", err)
	}
	defer watcher.Close()

	if err := watcher.Add(dir); err != nil {
		return Connectable{}, fmt.Errorf("connectable: watch %s: %w", dir, err)
	}

	// Re-check immediately after the watch is armed: PublishEndpoint may
	// have raced us between the first ReadEndpoint and Add.
	if c, err := ReadEndpoint(dir); err == nil {
		return c, nil
	}

	target := filepath.Join(dir, ProviderFile)
	for {
		select {
		case <-ctx.Done():
			return Connectable{}, ctx.Err()
		case ev, ok := <-watcher.Events:
			if !ok {
				return Connectable{}, fmt.Errorf("connectable: watcher closed")
			}
			if ev.Name != target {
				continue
			}
			if ev.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Rename) == 0 {
				continue
			}
			// Rename-into-place may still be mid-flight; retry briefly.
			for attempt := 0; attempt < 10; attempt++ {
				if c, err := ReadEndpoint(dir); err == nil {
					return c, nil
				}
				time.Sleep(2 * time.Millisecond)
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return Connectable{}, fmt.Errorf("connectable: watcher closed")
			}
			return Connectable{}, fmt.Errorf("connectable: watch error: %w", err)
		}
	}
}

// ReadPID reads dir/PID.
func ReadPID(dir string) (int, error) {
	data, err := os.ReadFile(filepath.Join(dir, PIDFile))
	if err != nil {
		return 0, fmt.Errorf("connectable: read %s: %w", PIDFile, err)
	}
	return strconv.Atoi(trimLine(string(data)))
}
