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

package storageid_test

import (
	"testing"

	"github.com/cc-hpc-itwm/mcs/codec"
	"github.com/cc-hpc-itwm/mcs/storageid"
)

func TestIDEncodeDecodeRoundTrip(t *testing.T) {
	for _, want := range []storageid.ID{0, 1, 42} {
		blob, err := codec.Marshal(want)
		if err != nil {
			t.Fatalf("marshal: %v", err)
		}
		var got storageid.ID
		if err := codec.Unmarshal(blob, &got); err != nil {
			t.Fatalf("unmarshal: %v", err)
		}
		if got != want {
			t.Fatalf("round trip: got %s, want %s", got, want)
		}
	}
}

func TestIDString(t *testing.T) {
	if got, want := storageid.ID(7).String(), "bi_7"; got != want {
		t.Fatalf("String() = %q, want %q", got, want)
	}
}

func TestSegmentIDString(t *testing.T) {
	if got, want := storageid.SegmentID(3).String(), "sg_3"; got != want {
		t.Fatalf("String() = %q, want %q", got, want)
	}
}

func TestIDNextIsSuccessor(t *testing.T) {
	if got := storageid.ID(5).Next(); got != 6 {
		t.Fatalf("Next() = %s, want bi_6", got)
	}
}

type blob struct{ V []byte }

func (b blob) EncodeMCS(w *codec.Writer) { w.WriteBytes(b.V) }
func (b *blob) DecodeMCS(r *codec.Reader) error {
	v, err := r.ReadBytes()
	if err != nil {
		return err
	}
	b.V = v
	return nil
}

func TestParameterRoundTripsThroughParameterAs(t *testing.T) {
	want := blob{V: []byte("hello parameter")}
	p, err := storageid.NewParameter(want)
	if err != nil {
		t.Fatalf("NewParameter: %v", err)
	}
	got, err := storageid.ParameterAs[blob](p)
	if err != nil {
		t.Fatalf("ParameterAs: %v", err)
	}
	if string(got.V) != string(want.V) {
		t.Fatalf("round trip: got %q, want %q", got.V, want.V)
	}
}

func TestParameterEqual(t *testing.T) {
	a := storageid.RawParameter([]byte{1, 2, 3})
	b := storageid.RawParameter([]byte{1, 2, 3})
	c := storageid.RawParameter([]byte{1, 2, 4})
	if !a.Equal(b) {
		t.Fatalf("identical parameters compared unequal")
	}
	if a.Equal(c) {
		t.Fatalf("differing parameters compared equal")
	}
}

func TestParameterEncodeDecodeRoundTrip(t *testing.T) {
	want := storageid.RawParameter([]byte{9, 8, 7, 6})
	blob, err := codec.Marshal(want)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var got storageid.Parameter
	if err := codec.Unmarshal(blob, &got); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if !got.Equal(want) {
		t.Fatalf("round trip mismatch: got %x, want %x", got.Bytes(), want.Bytes())
	}
}
