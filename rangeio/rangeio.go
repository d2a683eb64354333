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
// Package rangeio holds the core scalar and range types shared by every
// other package in this module: byte offsets/sizes, half-open memory
// ranges, and the Unlimited-or-Limit size bound used by storage quotas.
package rangeio

import (
	"fmt"

	"github.com/cc-hpc-itwm/mcs/codec"
)

// Offset is an unsigned byte position within a segment.
type Offset uint64

// Size is an unsigned byte count.
type Size uint64

func (o Offset) String() string { return fmt.Sprintf("%d", uint64(o)) }
func (s Size) String() string   { return fmt.Sprintf("%d", uint64(s)) }

// Range is a half-open interval [Begin, End) over byte offsets. It can only
// be constructed through NewRange, which enforces Begin <= End.
type Range struct {
	begin Offset
	end   Offset
}

// ErrBeginMustNotBeLargerThanEnd is returned (wrapped) when NewRange would
// violate the Range invariant; NewRange panics with it since constructing
// an invalid Range is a programmer error, not a recoverable condition.
type ErrBeginMustNotBeLargerThanEnd struct {
	Begin, End Offset
}

func (e ErrBeginMustNotBeLargerThanEnd) Error() string {
	return fmt.Sprintf("begin (%s) must not be larger than end (%s)", e.Begin, e.End)
}

// NewRange constructs the half-open range [begin, end). It panics with
// ErrBeginMustNotBeLargerThanEnd if begin > end.
func NewRange(begin, end Offset) Range {
	if begin > end {
		panic(ErrBeginMustNotBeLargerThanEnd{Begin: begin, End: end})
	}
	return Range{begin: begin, end: end}
}

// NewRangeOfSize constructs [begin, begin+size).
func NewRangeOfSize(begin Offset, size Size) Range {
	return NewRange(begin, begin+Offset(size))
}

func (r Range) Begin() Offset { return r.begin }
func (r Range) End() Offset   { return r.end }
func (r Range) Size() Size    { return Size(r.end - r.begin) }

// Shift translates the range by the given offset.
func (r Range) Shift(by Offset) Range {
	return Range{begin: r.begin + by, end: r.end + by}
}

// Contains reports whether o lies in [begin, end).
func (r Range) Contains(o Offset) bool {
	return o >= r.begin && o < r.end
}

func (r Range) String() string {
	return fmt.Sprintf("[%s, %s)", r.begin, r.end)
}

// Equal reports structural equality.
func (r Range) Equal(other Range) bool {
	return r.begin == other.begin && r.end == other.end
}

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
	if begin > end {
		return ErrBeginMustNotBeLargerThanEnd{Begin: Offset(begin), End: Offset(end)}
	}
	r.begin, r.end = Offset(begin), Offset(end)
	return nil
}

// MaxSize is Unlimited or a concrete Limit(Size). The zero value is
// Limit(0), not Unlimited, on purpose: use Unlimited() explicitly so a
// forgotten initialization doesn't silently grant infinite quota.
type MaxSize struct {
	unlimited bool
	limit     Size
}

// Unlimited returns the "no quota" MaxSize.
func Unlimited() MaxSize { return MaxSize{unlimited: true} }

// Limit returns a MaxSize bounded at the given size.
func Limit(s Size) MaxSize { return MaxSize{limit: s} }

func (m MaxSize) IsUnlimited() bool { return m.unlimited }

// Limit returns the bound and whether it is finite.
func (m MaxSize) Limit() (Size, bool) {
	if m.unlimited {
		return 0, false
	}
	return m.limit, true
}

// Allows reports whether requested fits under the bound: any Size is
// <= Unlimited, and s <= m.limit otherwise.
func (m MaxSize) Allows(s Size) bool {
	if m.unlimited {
		return true
	}
	return s <= m.limit
}

func (m MaxSize) String() string {
	if m.unlimited {
		return "unlimited"
	}
	return m.limit.String()
}

func (m MaxSize) EncodeMCS(w *codec.Writer) {
	w.WriteBool(m.unlimited)
	w.WriteUint64(uint64(m.limit))
}

func (m *MaxSize) DecodeMCS(r *codec.Reader) error {
	unlimited, err := r.ReadBool()
	if err != nil {
		return err
	}
	limit, err := r.ReadUint64()
	if err != nil {
		return err
	}
	m.unlimited, m.limit = unlimited, Size(limit)
	return nil
}
