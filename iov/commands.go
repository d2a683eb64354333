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
	"github.com/cc-hpc-itwm/mcs/rangeio"
	"github.com/cc-hpc-itwm/mcs/storage"
	"github.com/cc-hpc-itwm/mcs/storageid"
)

const (
	StateTag            = "iov::state"
	RangeTag            = "iov::range"
	LocationsTag        = "iov::locations"
	CollectionCreateTag = "iov::collection::create"
	CollectionAppendTag = "iov::collection::append"
	CollectionDeleteTag = "iov::collection::delete"
	StorageAddTag       = "iov::storage::add"
)

type empty struct{}

func (empty) EncodeMCS(*codec.Writer)        {}
func (*empty) DecodeMCS(*codec.Reader) error { return nil }

// StorageSnapshot is one entry of a State snapshot (storage::Add's
// record plus the capacity declared for it and bytes reserved so far).
type StorageSnapshot struct {
	ID       storageid.ID
	Record   storage.Record
	Capacity rangeio.Size
	Used     rangeio.Size
}

// CollectionSnapshot is one entry of a State snapshot.
type CollectionSnapshot struct {
	ID         CollectionID
	Collection Collection
}

// stateResponse is the whole-provider snapshot the State command
// returns (spec.md §4.5.2's "State → returns the whole snapshot").
type stateResponse struct {
	Storages    []StorageSnapshot
	Collections []CollectionSnapshot
}

func (r stateResponse) EncodeMCS(w *codec.Writer) {
	w.WriteUint64(uint64(len(r.Storages)))
	for _, s := range r.Storages {
		s.ID.EncodeMCS(w)
		s.Record.EncodeMCS(w)
		w.WriteUint64(uint64(s.Capacity))
		w.WriteUint64(uint64(s.Used))
	}
	w.WriteUint64(uint64(len(r.Collections)))
	for _, c := range r.Collections {
		encodeCollectionID(w, c.ID)
		encodeUsedStorages(w, c.Collection.Used)
		w.WriteUint64(uint64(c.Collection.Size))
	}
}

func (r *stateResponse) DecodeMCS(rd *codec.Reader) error {
	n, err := rd.ReadUint64()
	if err != nil {
		return err
	}
	r.Storages = make([]StorageSnapshot, 0, n)
	for i := uint64(0); i < n; i++ {
		var s StorageSnapshot
		if err := s.ID.DecodeMCS(rd); err != nil {
			return err
		}
		if err := s.Record.DecodeMCS(rd); err != nil {
			return err
		}
		cap, err := rd.ReadUint64()
		if err != nil {
			return err
		}
		used, err := rd.ReadUint64()
		if err != nil {
			return err
		}
		s.Capacity, s.Used = rangeio.Size(cap), rangeio.Size(used)
		r.Storages = append(r.Storages, s)
	}
	m, err := rd.ReadUint64()
	if err != nil {
		return err
	}
	r.Collections = make([]CollectionSnapshot, 0, m)
	for i := uint64(0); i < m; i++ {
		var c CollectionSnapshot
		if c.ID, err = decodeCollectionID(rd); err != nil {
			return err
		}
		if c.Collection.Used, err = decodeUsedStorages(rd); err != nil {
			return err
		}
		size, err := rd.ReadUint64()
		if err != nil {
			return err
		}
		c.Collection.Size = rangeio.Size(size)
		r.Collections = append(r.Collections, c)
	}
	return nil
}

type collectionRequest struct{ ID CollectionID }

func (r collectionRequest) EncodeMCS(w *codec.Writer) { encodeCollectionID(w, r.ID) }
func (r *collectionRequest) DecodeMCS(rd *codec.Reader) error {
	id, err := decodeCollectionID(rd)
	if err != nil {
		return err
	}
	r.ID = id
	return nil
}

type rangeResponse struct{ Range rangeio.Range }

func (r rangeResponse) EncodeMCS(w *codec.Writer) { r.Range.EncodeMCS(w) }
func (r *rangeResponse) DecodeMCS(rd *codec.Reader) error { return r.Range.DecodeMCS(rd) }

type locationsRequest struct {
	ID    CollectionID
	Range rangeio.Range
}

func (r locationsRequest) EncodeMCS(w *codec.Writer) {
	encodeCollectionID(w, r.ID)
	r.Range.EncodeMCS(w)
}

func (r *locationsRequest) DecodeMCS(rd *codec.Reader) error {
	id, err := decodeCollectionID(rd)
	if err != nil {
		return err
	}
	r.ID = id
	return r.Range.DecodeMCS(rd)
}

type locationsResponse struct{ Locations []Location }

func (r locationsResponse) EncodeMCS(w *codec.Writer) { encodeLocations(w, r.Locations) }
func (r *locationsResponse) DecodeMCS(rd *codec.Reader) error {
	ls, err := decodeLocations(rd)
	if err != nil {
		return err
	}
	r.Locations = ls
	return nil
}

type collectionCreateRequest struct {
	ID   CollectionID
	Size rangeio.Size
}

func (r collectionCreateRequest) EncodeMCS(w *codec.Writer) {
	encodeCollectionID(w, r.ID)
	w.WriteUint64(uint64(r.Size))
}

func (r *collectionCreateRequest) DecodeMCS(rd *codec.Reader) error {
	id, err := decodeCollectionID(rd)
	if err != nil {
		return err
	}
	size, err := rd.ReadUint64()
	if err != nil {
		return err
	}
	r.ID, r.Size = id, rangeio.Size(size)
	return nil
}

type usedStoragesResponse struct{ Used []UsedStorage }

func (r usedStoragesResponse) EncodeMCS(w *codec.Writer) { encodeUsedStorages(w, r.Used) }
func (r *usedStoragesResponse) DecodeMCS(rd *codec.Reader) error {
	used, err := decodeUsedStorages(rd)
	if err != nil {
		return err
	}
	r.Used = used
	return nil
}

type collectionAppendRequest struct {
	ID    CollectionID
	Range rangeio.Range
}

func (r collectionAppendRequest) EncodeMCS(w *codec.Writer) {
	encodeCollectionID(w, r.ID)
	r.Range.EncodeMCS(w)
}

func (r *collectionAppendRequest) DecodeMCS(rd *codec.Reader) error {
	id, err := decodeCollectionID(rd)
	if err != nil {
		return err
	}
	r.ID = id
	return r.Range.DecodeMCS(rd)
}

type sizeResponse struct{ Size rangeio.Size }

func (r sizeResponse) EncodeMCS(w *codec.Writer) { w.WriteUint64(uint64(r.Size)) }
func (r *sizeResponse) DecodeMCS(rd *codec.Reader) error {
	v, err := rd.ReadUint64()
	if err != nil {
		return err
	}
	r.Size = rangeio.Size(v)
	return nil
}

type storageAddRequest struct {
	Record   storage.Record
	Capacity rangeio.Size
}

func (r storageAddRequest) EncodeMCS(w *codec.Writer) {
	r.Record.EncodeMCS(w)
	w.WriteUint64(uint64(r.Capacity))
}

func (r *storageAddRequest) DecodeMCS(rd *codec.Reader) error {
	if err := r.Record.DecodeMCS(rd); err != nil {
		return err
	}
	cap, err := rd.ReadUint64()
	if err != nil {
		return err
	}
	r.Capacity = rangeio.Size(cap)
	return nil
}

type storageIDResponse struct{ ID storageid.ID }

func (r storageIDResponse) EncodeMCS(w *codec.Writer) { r.ID.EncodeMCS(w) }
func (r *storageIDResponse) DecodeMCS(rd *codec.Reader) error { return r.ID.DecodeMCS(rd) }
