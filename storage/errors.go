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
	"fmt"

	"github.com/cc-hpc-itwm/mcs/rangeio"
	"github.com/cc-hpc-itwm/mcs/storageid"
)

// ErrUnknownID is returned when a storage ID is absent from the registry.
type ErrUnknownID struct{ ID storageid.ID }

func (e ErrUnknownID) Error() string { return fmt.Sprintf("storage: unknown storage id %s", e.ID) }

// ErrUnknownSegmentID is returned when a segment ID is absent from its
// owning storage.
type ErrUnknownSegmentID struct {
	Storage storageid.ID
	Segment storageid.SegmentID
}

func (e ErrUnknownSegmentID) Error() string {
	return fmt.Sprintf("storage: unknown segment id %s on storage %s", e.Segment, e.Storage)
}

// ErrWrongImplementation is returned by Typed[B] when the runtime backend
// behind a storage ID does not implement B.
type ErrWrongImplementation struct {
	ID   storageid.ID
	Want string
}

func (e ErrWrongImplementation) Error() string {
	return fmt.Sprintf("storage: storage %s is not a %s implementation", e.ID, e.Want)
}

// ErrDuplicateID is fatal: registry IDs are issued monotonically and a
// collision means the registry's invariant has already been broken
// elsewhere.
type ErrDuplicateID struct{ ID storageid.ID }

func (e ErrDuplicateID) Error() string { return fmt.Sprintf("storage: duplicate storage id %s", e.ID) }

// ErrDuplicateSegmentID mirrors ErrDuplicateID at the segment level.
type ErrDuplicateSegmentID struct {
	Storage storageid.ID
	Segment storageid.SegmentID
}

func (e ErrDuplicateSegmentID) Error() string {
	return fmt.Sprintf("storage: duplicate segment id %s on storage %s", e.Segment, e.Storage)
}

// ErrBadAlloc is returned by SegmentCreate when requested bytes would push
// size_used past size_max. Thrown before any state change, so the registry
// is left unchanged on failure.
type ErrBadAlloc struct {
	Requested rangeio.Size
	Used      rangeio.Size
	Max       rangeio.MaxSize
}

func (e ErrBadAlloc) Error() string {
	return fmt.Sprintf("storage: bad alloc: requested %s, used %s, max %s", e.Requested, e.Used, e.Max)
}

// ErrChunkDescription wraps a failure to resolve a chunk description,
// carrying the segment and range that were requested.
type ErrChunkDescription struct {
	Segment storageid.SegmentID
	Range   rangeio.Range
	Cause   error
}

func (e ErrChunkDescription) Error() string {
	return fmt.Sprintf("storage: chunk description for segment %s range %s: %v", e.Segment, e.Range, e.Cause)
}

func (e ErrChunkDescription) Unwrap() error { return e.Cause }

// ErrOutOfRange is wrapped by ErrChunkDescription when the requested range
// does not fit in the segment.
type ErrOutOfRange struct {
	Requested rangeio.Range
	Available rangeio.Size
}

func (e ErrOutOfRange) Error() string {
	return fmt.Sprintf("storage: range %s out of bounds (segment size %s)", e.Requested, e.Available)
}

// ErrCreate wraps a storage-create-time failure, such as
// ErrPrefixContainsNonSegmentFile for the Files backend.
type ErrCreate struct {
	Cause error
}

func (e ErrCreate) Error() string { return fmt.Sprintf("storage: create: %v", e.Cause) }
func (e ErrCreate) Unwrap() error { return e.Cause }

// ErrPrefixContainsNonSegmentFile is returned when a Files storage opens a
// directory containing a file whose name does not parse as a segment ID.
type ErrPrefixContainsNonSegmentFile struct{ Name string }

func (e ErrPrefixContainsNonSegmentFile) Error() string {
	return fmt.Sprintf("storage: prefix contains non-segment file %q", e.Name)
}

// ErrMethodNotProvided is returned by the Virtual backend when the loaded
// plugin's vtable does not provide the requested entry point.
type ErrMethodNotProvided struct{ Method string }

func (e ErrMethodNotProvided) Error() string {
	return fmt.Sprintf("storage: method %q not provided by virtual storage", e.Method)
}
