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

package shareservice

import (
	"github.com/cc-hpc-itwm/mcs/codec"
	"github.com/cc-hpc-itwm/mcs/rangeio"
	"github.com/cc-hpc-itwm/mcs/storageid"
)

const (
	CreateTag = "shareservice::create"
	AttachTag = "shareservice::attach"
	RemoveTag = "shareservice::remove"
)

type createRequest struct {
	Name string
	Size rangeio.Size
}

func (r createRequest) EncodeMCS(w *codec.Writer) {
	w.WriteString(r.Name)
	w.WriteUint64(uint64(r.Size))
}

func (r *createRequest) DecodeMCS(rd *codec.Reader) error {
	name, err := rd.ReadString()
	if err != nil {
		return err
	}
	size, err := rd.ReadUint64()
	if err != nil {
		return err
	}
	r.Name, r.Size = name, rangeio.Size(size)
	return nil
}

type createResponse struct{ Segment storageid.SegmentID }

func (r createResponse) EncodeMCS(w *codec.Writer)        { r.Segment.EncodeMCS(w) }
func (r *createResponse) DecodeMCS(rd *codec.Reader) error { return r.Segment.DecodeMCS(rd) }

type nameRequest struct{ Name string }

func (r nameRequest) EncodeMCS(w *codec.Writer) { w.WriteString(r.Name) }
func (r *nameRequest) DecodeMCS(rd *codec.Reader) error {
	name, err := rd.ReadString()
	if err != nil {
		return err
	}
	r.Name = name
	return nil
}

type attachResponse struct {
	Storage storageid.ID
	Segment storageid.SegmentID
}

func (r attachResponse) EncodeMCS(w *codec.Writer) {
	r.Storage.EncodeMCS(w)
	r.Segment.EncodeMCS(w)
}

func (r *attachResponse) DecodeMCS(rd *codec.Reader) error {
	if err := r.Storage.DecodeMCS(rd); err != nil {
		return err
	}
	return r.Segment.DecodeMCS(rd)
}

type empty struct{}

func (empty) EncodeMCS(*codec.Writer)        {}
func (*empty) DecodeMCS(*codec.Reader) error { return nil }
