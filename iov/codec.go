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

package iov

import (
	"github.com/cc-hpc-itwm/mcs/codec"
	"github.com/cc-hpc-itwm/mcs/connectable"
	"github.com/cc-hpc-itwm/mcs/storageid"
)

// CollectionID has no methods of its own (it is a type alias for
// uuid.UUID), so its wire encoding lives here alongside the rest of the
// package's codec glue.
func encodeCollectionID(w *codec.Writer, id CollectionID) { w.WriteBytes(id[:]) }

func decodeCollectionID(r *codec.Reader) (CollectionID, error) {
	b, err := r.ReadBytes()
	if err != nil {
		return CollectionID{}, err
	}
	var id CollectionID
	copy(id[:], b)
	return id, nil
}

func encodeUsedStorage(w *codec.Writer, u UsedStorage) {
	u.Range.EncodeMCS(w)
	w.WriteUint64(uint64(u.Storage))
	w.WriteUint64(uint64(u.Segment))
}

func decodeUsedStorage(r *codec.Reader) (UsedStorage, error) {
	var u UsedStorage
	if err := u.Range.DecodeMCS(r); err != nil {
		return u, err
	}
	storID, err := r.ReadUint64()
	if err != nil {
		return u, err
	}
	segID, err := r.ReadUint64()
	if err != nil {
		return u, err
	}
	u.Storage, u.Segment = storageid.ID(storID), storageid.SegmentID(segID)
	return u, nil
}

func encodeUsedStorages(w *codec.Writer, us []UsedStorage) {
	w.WriteUint64(uint64(len(us)))
	for _, u := range us {
		encodeUsedStorage(w, u)
	}
}

func decodeUsedStorages(r *codec.Reader) ([]UsedStorage, error) {
	n, err := r.ReadUint64()
	if err != nil {
		return nil, err
	}
	out := make([]UsedStorage, 0, n)
	for i := uint64(0); i < n; i++ {
		u, err := decodeUsedStorage(r)
		if err != nil {
			return nil, err
		}
		out = append(out, u)
	}
	return out, nil
}

func encodeLocation(w *codec.Writer, l Location) {
	l.Range.EncodeMCS(w)
	w.WriteString(l.StoragesProvider.String())
	w.WriteString(l.ImplementationID)
	l.FileReadParameter.EncodeMCS(w)
	l.FileWriteParameter.EncodeMCS(w)
	w.WriteString(l.TransportProvider.String())
	l.Address.EncodeMCS(w)
}

func decodeLocation(r *codec.Reader) (Location, error) {
	var l Location
	if err := l.Range.DecodeMCS(r); err != nil {
		return l, err
	}
	storagesProvider, err := r.ReadString()
	if err != nil {
		return l, err
	}
	if l.StoragesProvider, err = connectable.Parse(storagesProvider); err != nil {
		return l, err
	}
	if l.ImplementationID, err = r.ReadString(); err != nil {
		return l, err
	}
	if err := l.FileReadParameter.DecodeMCS(r); err != nil {
		return l, err
	}
	if err := l.FileWriteParameter.DecodeMCS(r); err != nil {
		return l, err
	}
	transportProvider, err := r.ReadString()
	if err != nil {
		return l, err
	}
	if l.TransportProvider, err = connectable.Parse(transportProvider); err != nil {
		return l, err
	}
	if err := l.Address.DecodeMCS(r); err != nil {
		return l, err
	}
	return l, nil
}

func encodeLocations(w *codec.Writer, ls []Location) {
	w.WriteUint64(uint64(len(ls)))
	for _, l := range ls {
		encodeLocation(w, l)
	}
}

func decodeLocations(r *codec.Reader) ([]Location, error) {
	n, err := r.ReadUint64()
	if err != nil {
		return nil, err
	}
	out := make([]Location, 0, n)
	for i := uint64(0); i < n; i++ {
		l, err := decodeLocation(r)
		if err != nil {
			return nil, err
		}
		out = append(out, l)
	}
	return out, nil
}
