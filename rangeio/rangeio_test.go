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

package rangeio_test

import (
	"testing"

	"github.com/cc-hpc-itwm/mcs/codec"
	"github.com/cc-hpc-itwm/mcs/rangeio"
)

func TestNewRangeOfSize(t *testing.T) {
	r := rangeio.NewRangeOfSize(10, 5)
	if r.Begin() != 10 || r.End() != 15 || r.Size() != 5 {
		t.Fatalf("NewRangeOfSize(10, 5) = %s, want [10, 15)", r)
	}
}

func TestNewRangePanicsWhenBeginAfterEnd(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatalf("NewRange(5, 1) did not panic")
		}
	}()
	rangeio.NewRange(5, 1)
}

func TestRangeContains(t *testing.T) {
	r := rangeio.NewRange(10, 20)
	if !r.Contains(10) || !r.Contains(19) {
		t.Fatalf("expected [10, 20) to contain 10 and 19")
	}
	if r.Contains(20) || r.Contains(9) {
		t.Fatalf("expected [10, 20) not to contain 20 or 9")
	}
}

func TestRangeShift(t *testing.T) {
	r := rangeio.NewRange(10, 20).Shift(5)
	if !r.Equal(rangeio.NewRange(15, 25)) {
		t.Fatalf("Shift(5) = %s, want [15, 25)", r)
	}
}

func TestRangeEncodeDecodeRoundTrip(t *testing.T) {
	want := rangeio.NewRange(3, 300)
	blob, err := codec.Marshal(want)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var got rangeio.Range
	if err := codec.Unmarshal(blob, &got); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if !got.Equal(want) {
		t.Fatalf("round trip: got %s, want %s", got, want)
	}
}

func TestRangeDecodeRejectsBeginAfterEnd(t *testing.T) {
	w := codec.NewWriter()
	w.WriteUint64(20)
	w.WriteUint64(10)

	var r rangeio.Range
	if err := r.DecodeMCS(codec.NewReader(w.Bytes())); err == nil {
		t.Fatalf("expected decode error for begin > end")
	}
}

func TestMaxSizeUnlimitedAllowsEverything(t *testing.T) {
	m := rangeio.Unlimited()
	if !m.IsUnlimited() {
		t.Fatalf("Unlimited().IsUnlimited() = false")
	}
	if !m.Allows(^rangeio.Size(0)) {
		t.Fatalf("Unlimited() should allow any size")
	}
}

func TestMaxSizeLimitAllows(t *testing.T) {
	m := rangeio.Limit(100)
	if !m.Allows(100) {
		t.Fatalf("Limit(100).Allows(100) = false, want true")
	}
	if m.Allows(101) {
		t.Fatalf("Limit(100).Allows(101) = true, want false")
	}
	if limit, ok := m.Limit(); !ok || limit != 100 {
		t.Fatalf("Limit() = %d, %v, want 100, true", limit, ok)
	}
}

func TestMaxSizeEncodeDecodeRoundTrip(t *testing.T) {
	for _, want := range []rangeio.MaxSize{rangeio.Unlimited(), rangeio.Limit(0), rangeio.Limit(12345)} {
		blob, err := codec.Marshal(want)
		if err != nil {
			t.Fatalf("marshal: %v", err)
		}
		var got rangeio.MaxSize
		if err := codec.Unmarshal(blob, &got); err != nil {
			t.Fatalf("unmarshal: %v", err)
		}
		if got.IsUnlimited() != want.IsUnlimited() || got.String() != want.String() {
			t.Fatalf("round trip: got %s, want %s", got, want)
		}
	}
}
