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

// Package blockdevice implements the block-device meta-data layer
// (component C7): a provider mapping contiguous block ranges to the
// storage that backs them, and a Reader/Writer translating block IDs
// into transport Get/Put calls.
package blockdevice

import (
	"fmt"

	"github.com/cc-hpc-itwm/mcs/codec"
)

// ID identifies one block, unique within a block device (spec.md §3;
// printed the same way as storageid.ID since both are "bi_<u>" in the
// original text format, despite belonging to different namespaces).
type ID uint64

func (id ID) String() string { return fmt.Sprintf("bi_%d", uint64(id)) }

func (id ID) EncodeMCS(w *codec.Writer) { w.WriteUint64(uint64(id)) }

func (id *ID) DecodeMCS(r *codec.Reader) error {
	v, err := r.ReadUint64()
	if err != nil {
		return err
	}
	*id = ID(v)
	return nil
}

// Range is a half-open [Begin, End) interval over block IDs. Unlike
// rangeio.Range it additionally forbids Begin == End — an empty block
// range can never denote real storage, so the original treats it as a
// construction error rather than a legal degenerate case.
type Range struct {
	begin ID
	end   ID
}

// ErrMustNotBeZero is the value NewRange panics with when it would
// construct an empty block range (begin == end).
type ErrMustNotBeZero struct{}

func (ErrMustNotBeZero) Error() string { return "block range must not be empty" }

// ErrBeginMustBeSmallerThanEnd is the value NewRange panics with when
// its begin is larger than end.
type ErrBeginMustBeSmallerThanEnd struct{ Begin, End ID }

func (e ErrBeginMustBeSmallerThanEnd) Error() string {
	return fmt.Sprintf("begin (%s) must be smaller than end (%s)", e.Begin, e.End)
}

// NewRange constructs [begin, end). It panics with ErrMustNotBeZero if
// begin == end and with ErrBeginMustBeSmallerThanEnd if begin > end —
// constructing an invalid block range is a programmer error, not a
// recoverable condition.
func NewRange(begin, end ID) Range {
	if begin >= end {
		if begin == end {
			panic(ErrMustNotBeZero{})
		}
		panic(ErrBeginMustBeSmallerThanEnd{Begin: begin, End: end})
	}
	return Range{begin: begin, end: end}
}

func (r Range) Begin() ID    { return r.begin }
func (r Range) End() ID      { return r.end }
func (r Range) Count() Count { return Count(r.end - r.begin) }

func (r Range) Contains(id ID) bool { return id >= r.begin && id < r.end }

func (r Range) String() string { return fmt.Sprintf("[%s, %s)", r.begin, r.end) }

func (r Range) EncodeMCS(w *codec.Writer) {
	w.WriteUint64(uint64(r.begin))
	w.WriteUint64(uint64(r.end))
}

func (r *Range) DecodeMCS(rd *codec.Reader) error {
	begin, err := rd.ReadUint64()
	if err != nil {
		return err
	}
	end, err := rd.ReadUint64()
	if err != nil {
		return err
	}
	if begin >= end {
		return ErrBeginMustBeSmallerThanEnd{Begin: ID(begin), End: ID(end)}
	}
	r.begin, r.end = ID(begin), ID(end)
	return nil
}

// Count is the number of blocks in a device or a Range.
type Count uint64

func (c Count) String() string { return fmt.Sprintf("%d", uint64(c)) }

// Size is the fixed byte size of one block.
type Size uint64

func (s Size) String() string { return fmt.Sprintf("%d", uint64(s)) }
