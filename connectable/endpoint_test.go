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
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestPublishEndpointThenReadEndpoint(t *testing.T) {
	dir := t.TempDir()
	want := NewTCP("127.0.0.1", false, 9001)

	if err := PublishEndpoint(dir, want); err != nil {
		t.Fatalf("PublishEndpoint: %v", err)
	}
	got, err := ReadEndpoint(dir)
	if err != nil {
		t.Fatalf("ReadEndpoint: %v", err)
	}
	if got.String() != want.String() {
		t.Fatalf("ReadEndpoint = %q, want %q", got, want)
	}

	pid, err := ReadPID(dir)
	if err != nil {
		t.Fatalf("ReadPID: %v", err)
	}
	if pid != os.Getpid() {
		t.Fatalf("ReadPID = %d, want %d", pid, os.Getpid())
	}
}

func TestReadEndpointMissingFile(t *testing.T) {
	if _, err := ReadEndpoint(t.TempDir()); err == nil {
		t.Fatalf("expected error reading endpoint from empty directory")
	}
}

func TestWaitForEndpointReturnsImmediatelyWhenAlreadyPublished(t *testing.T) {
	dir := t.TempDir()
	want := NewUnix(filepath.Join(dir, "x.sock"))
	if err := PublishEndpoint(dir, want); err != nil {
		t.Fatalf("PublishEndpoint: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	got, err := WaitForEndpoint(ctx, dir)
	if err != nil {
		t.Fatalf("WaitForEndpoint: %v", err)
	}
	if got.String() != want.String() {
		t.Fatalf("WaitForEndpoint = %q, want %q", got, want)
	}
}

func TestWaitForEndpointObservesLatePublish(t *testing.T) {
	dir := t.TempDir()
	want := NewTCP("example", true, 4242)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	done := make(chan struct{})
	var got Connectable
	var waitErr error
	go func() {
		got, waitErr = WaitForEndpoint(ctx, dir)
		close(done)
	}()

	time.Sleep(20 * time.Millisecond)
	if err := PublishEndpoint(dir, want); err != nil {
		t.Fatalf("PublishEndpoint: %v", err)
	}

	select {
	case <-done:
		if waitErr != nil {
			t.Fatalf("WaitForEndpoint: %v", waitErr)
		}
		if got.String() != want.String() {
			t.Fatalf("WaitForEndpoint = %q, want %q", got, want)
		}
	case <-time.After(5 * time.Second):
		t.Fatalf("WaitForEndpoint did not observe the late publish in time")
	}
}

func TestWaitForEndpointRespectsContextCancellation(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	if _, err := WaitForEndpoint(ctx, t.TempDir()); err == nil {
		t.Fatalf("expected WaitForEndpoint to return an error on context deadline")
	}
}
