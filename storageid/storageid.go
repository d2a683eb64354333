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
// Package storageid holds the identifiers issued by a storage registry:
// StorageID (unique per registry), SegmentID (unique per storage), and the
// type-erased Parameter blob implementations exchange through the codec.
package storageid

import (
	"fmt"

	"github.com/cc-hpc-itwm/mcs/codec"
)

// ID is a storage identifier, unique within the Storages registry that
// issued it. A registry issues IDs starting at 0, so the zero value is a
// legitimate first ID and callers must not treat it as "unset".
type ID uint64

func (id ID) String() string { return fmt.Sprintf("bi_%d", uint64(id)) }

// Next returns the successor ID.
func (id ID) Next() ID { return id + 1 }

func (id ID) EncodeMCS(w *codec.Writer) { w.WriteUint64(uint64(id)) }

func (id *ID) DecodeMCS(r *codec.Reader) error {
	v, err := r.ReadUint64()
	if err != nil {
		return err
	}
	*id = ID(v)
	return nil
}

// SegmentID is a segment identifier, unique within its owning storage.
type SegmentID uint64

func (id SegmentID) String() string { return fmt.Sprintf("sg_%d", uint64(id)) }

func (id SegmentID) Next() SegmentID { return id + 1 }

func (id SegmentID) EncodeMCS(w *codec.Writer) { w.WriteUint64(uint64(id)) }

func (id *SegmentID) DecodeMCS(r *codec.Reader) error {
	v, err := r.ReadUint64()
	if err != nil {
		return err
	}
	*id = SegmentID(v)
	return nil
}

// Parameter is an opaque, serialized, implementation-specific value:
// a storage's Create parameter, a segment's Create/Remove parameter, a
// chunk description parameter, or a file read/write parameter. It is
// produced with NewParameter and recovered with ParameterAs.
type Parameter struct {
	blob []byte
}

// NewParameter erases v's concrete type behind a Parameter via codec.Marshal.
func NewParameter(v any) (Parameter, error) {
	blob, err := codec.Marshal(v)
	if err != nil {
		return Parameter{}, err
	}
	return Parameter{blob: blob}, nil
}

// RawParameter wraps an already-serialized blob (used when a Parameter
// round-trips through storage without ever needing to be inspected).
func RawParameter(blob []byte) Parameter {
	cp := make([]byte, len(blob))
	copy(cp, blob)
	return Parameter{blob: cp}
}

// Bytes returns the serialized blob.
func (p Parameter) Bytes() []byte { return p.blob }

// ParameterAs decodes p into a *T via codec.Unmarshal; T must implement
// codec.Decoder on a pointer receiver.
func ParameterAs[T any](p Parameter) (T, error) {
	var out T
	err := codec.Unmarshal(p.blob, &out)
	return out, err
}

func (p Parameter) EncodeMCS(w *codec.Writer) { w.WriteBytes(p.blob) }

func (p *Parameter) DecodeMCS(r *codec.Reader) error {
	b, err := r.ReadBytes()
	if err != nil {
		return err
	}
	p.blob = b
	return nil
}

func (p Parameter) Equal(other Parameter) bool {
	if len(p.blob) != len(other.blob) {
		return false
	}
	for i := range p.blob {
		if p.blob[i] != other.blob[i] {
			return false
		}
	}
	return true
}
