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

package codec_test

import (
	"errors"
	"testing"

	"github.com/cc-hpc-itwm/mcs/codec"
)

type point struct {
	X, Y int64
	Name string
}

func (p point) EncodeMCS(w *codec.Writer) {
	w.WriteInt64(p.X)
	w.WriteInt64(p.Y)
	w.WriteString(p.Name)
}

func (p *point) DecodeMCS(r *codec.Reader) error {
	x, err := r.ReadInt64()
	if err != nil {
		return err
	}
	y, err := r.ReadInt64()
	if err != nil {
		return err
	}
	name, err := r.ReadString()
	if err != nil {
		return err
	}
	p.X, p.Y, p.Name = x, y, name
	return nil
}

func TestMarshalUnmarshalRoundTrip(t *testing.T) {
	cases := []point{
		{X: 1, Y: -2, Name: "a"},
		{X: 0, Y: 0, Name: ""},
		{X: -9223372036854775808, Y: 9223372036854775807, Name: "edge"},
	}
	for _, want := range cases {
		blob, err := codec.Marshal(want)
		if err != nil {
			t.Fatalf("marshal: %v", err)
		}
		var got point
		if err := codec.Unmarshal(blob, &got); err != nil {
			t.Fatalf("unmarshal: %v", err)
		}
		if got != want {
			t.Fatalf("round trip mismatch: got %+v, want %+v", got, want)
		}
	}
}

func TestUnmarshalRejectsAdditionalBytes(t *testing.T) {
	blob, err := codec.Marshal(point{X: 1, Y: 2, Name: "x"})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	blob = append(blob, 0xff, 0xff, 0xff)

	var got point
	err = codec.Unmarshal(blob, &got)
	var addl codec.ErrAdditionalBytes
	if !errors.As(err, &addl) {
		t.Fatalf("unmarshal with trailing bytes: got %v, want ErrAdditionalBytes", err)
	}
	if addl.N != 3 {
		t.Fatalf("ErrAdditionalBytes.N = %d, want 3", addl.N)
	}
}

func TestReaderReportsUnexpectedEOF(t *testing.T) {
	r := codec.NewReader([]byte{0, 0, 0})
	if _, err := r.ReadUint64(); !errors.Is(err, codec.ErrUnexpectedEOF) {
		t.Fatalf("short read: got %v, want ErrUnexpectedEOF", err)
	}
}

func TestWriteBytesReadBytesRoundTrip(t *testing.T) {
	w := codec.NewWriter()
	w.WriteBytes([]byte("hello"))
	w.WriteBool(true)
	w.WriteBytes(nil)

	r := codec.NewReader(w.Bytes())
	got, err := r.ReadBytes()
	if err != nil || string(got) != "hello" {
		t.Fatalf("ReadBytes = %q, %v, want \"hello\", nil", got, err)
	}
	b, err := r.ReadBool()
	if err != nil || !b {
		t.Fatalf("ReadBool = %v, %v, want true, nil", b, err)
	}
	empty, err := r.ReadBytes()
	if err != nil || len(empty) != 0 {
		t.Fatalf("ReadBytes (empty) = %v, %v, want empty, nil", empty, err)
	}
	if err := r.FinishArchive(); err != nil {
		t.Fatalf("FinishArchive: %v", err)
	}
}
