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

// Package transport implements the Get/Put memory commands (component
// C8): the globally routable Address a block device location resolves
// to, and the rpc.Dispatcher a transport provider serves.
package transport

import (
	"github.com/cc-hpc-itwm/mcs/codec"
	"github.com/cc-hpc-itwm/mcs/rangeio"
	"github.com/cc-hpc-itwm/mcs/storageid"
)

// Address is the globally routable pointer to a byte range: which
// storage, which segment, at what offset, together with the
// implementation-specific chunk-description parameter the storage needs
// to resolve it (spec.md §3).
type Address struct {
	StorageID                 storageid.ID
	ChunkDescriptionParameter storageid.Parameter
	SegmentID                 storageid.SegmentID
	Offset                    rangeio.Offset
}

func (a Address) EncodeMCS(w *codec.Writer) {
	a.StorageID.EncodeMCS(w)
	a.ChunkDescriptionParameter.EncodeMCS(w)
	a.SegmentID.EncodeMCS(w)
	w.WriteUint64(uint64(a.Offset))
}

func (a *Address) DecodeMCS(r *codec.Reader) error {
	if err := a.StorageID.DecodeMCS(r); err != nil {
		return err
	}
	if err := a.ChunkDescriptionParameter.DecodeMCS(r); err != nil {
		return err
	}
	if err := a.SegmentID.DecodeMCS(r); err != nil {
		return err
	}
	offset, err := r.ReadUint64()
	if err != nil {
		return err
	}
	a.Offset = rangeio.Offset(offset)
	return nil
}
