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
	"github.com/cc-hpc-itwm/mcs/codec"
	"github.com/cc-hpc-itwm/mcs/connectable"
	"github.com/cc-hpc-itwm/mcs/storageid"
)

// Record is the externally-visible, serializable description of one
// physical storage (spec.md §3's "Storage (record)"): what a block
// device or an IOV collection needs to route to it and to reconstruct
// its Backend from scratch on a remote peer, without that peer ever
// seeing the live Backend value itself.
type Record struct {
	ImplementationID  string
	CreateParameter   storageid.Parameter
	StoragesProvider  connectable.Connectable
	TransportProvider connectable.Connectable
	StorageID         storageid.ID
	SegmentID         storageid.SegmentID
	FileReadParameter  storageid.Parameter
	FileWriteParameter storageid.Parameter
}

func (r Record) EncodeMCS(w *codec.Writer) {
	w.WriteString(r.ImplementationID)
	r.CreateParameter.EncodeMCS(w)
	w.WriteString(r.StoragesProvider.String())
	w.WriteString(r.TransportProvider.String())
	r.StorageID.EncodeMCS(w)
	r.SegmentID.EncodeMCS(w)
	r.FileReadParameter.EncodeMCS(w)
	r.FileWriteParameter.EncodeMCS(w)
}

func (r *Record) DecodeMCS(rd *codec.Reader) error {
	var err error
	if r.ImplementationID, err = rd.ReadString(); err != nil {
		return err
	}
	if err := r.CreateParameter.DecodeMCS(rd); err != nil {
		return err
	}
	storagesProvider, err := rd.ReadString()
	if err != nil {
		return err
	}
	if r.StoragesProvider, err = connectable.Parse(storagesProvider); err != nil {
		return err
	}
	transportProvider, err := rd.ReadString()
	if err != nil {
		return err
	}
	if r.TransportProvider, err = connectable.Parse(transportProvider); err != nil {
		return err
	}
	if err := r.StorageID.DecodeMCS(rd); err != nil {
		return err
	}
	if err := r.SegmentID.DecodeMCS(rd); err != nil {
		return err
	}
	if err := r.FileReadParameter.DecodeMCS(rd); err != nil {
		return err
	}
	return r.FileWriteParameter.DecodeMCS(rd)
}
