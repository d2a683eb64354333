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
	"net"

	"github.com/cc-hpc-itwm/mcs/codec"
	"github.com/cc-hpc-itwm/mcs/rangeio"
	"github.com/cc-hpc-itwm/mcs/rpc"
	"github.com/cc-hpc-itwm/mcs/storageid"
)

// A remote Storages registry is reached the same way a block device or
// transport provider is: a fixed rpc.Dispatcher over net.Conn. This is
// what storage.Record's StoragesProvider field names — the service the
// iov backend dials to create/remove segments on a storage it does not
// host itself.
const (
	SizeMaxTag       = "storages::size_max"
	SizeUsedTag      = "storages::size_used"
	SegmentCreateTag = "storages::segment_create"
	SegmentRemoveTag = "storages::segment_remove"
)

type idRequest struct{ ID storageid.ID }

func (r idRequest) EncodeMCS(w *codec.Writer) { r.ID.EncodeMCS(w) }
func (r *idRequest) DecodeMCS(rd *codec.Reader) error { return r.ID.DecodeMCS(rd) }

type sizeMaxResponse struct{ Max rangeio.MaxSize }

func (r sizeMaxResponse) EncodeMCS(w *codec.Writer) { r.Max.EncodeMCS(w) }
func (r *sizeMaxResponse) DecodeMCS(rd *codec.Reader) error { return r.Max.DecodeMCS(rd) }

type sizeUsedResponse struct{ Used rangeio.Size }

func (r sizeUsedResponse) EncodeMCS(w *codec.Writer) { w.WriteUint64(uint64(r.Used)) }
func (r *sizeUsedResponse) DecodeMCS(rd *codec.Reader) error {
	v, err := rd.ReadUint64()
	if err != nil {
		return err
	}
	r.Used = rangeio.Size(v)
	return nil
}

type segmentCreateRequest struct {
	ID          storageid.ID
	Size        rangeio.Size
	Persistency Persistency
}

func (r segmentCreateRequest) EncodeMCS(w *codec.Writer) {
	r.ID.EncodeMCS(w)
	w.WriteUint64(uint64(r.Size))
	w.WriteUint64(uint64(r.Persistency))
}

func (r *segmentCreateRequest) DecodeMCS(rd *codec.Reader) error {
	if err := r.ID.DecodeMCS(rd); err != nil {
		return err
	}
	v, err := rd.ReadUint64()
	if err != nil {
		return err
	}
	r.Size = rangeio.Size(v)
	p, err := rd.ReadUint64()
	if err != nil {
		return err
	}
	r.Persistency = Persistency(p)
	return nil
}

type segmentCreateResponse struct{ Segment storageid.SegmentID }

func (r segmentCreateResponse) EncodeMCS(w *codec.Writer) { r.Segment.EncodeMCS(w) }
func (r *segmentCreateResponse) DecodeMCS(rd *codec.Reader) error { return r.Segment.DecodeMCS(rd) }

type segmentRemoveRequest struct {
	ID      storageid.ID
	Segment storageid.SegmentID
	Force   ForceRemoval
}

func (r segmentRemoveRequest) EncodeMCS(w *codec.Writer) {
	r.ID.EncodeMCS(w)
	r.Segment.EncodeMCS(w)
	var force uint64
	if r.Force {
		force = 1
	}
	w.WriteUint64(force)
}

func (r *segmentRemoveRequest) DecodeMCS(rd *codec.Reader) error {
	if err := r.ID.DecodeMCS(rd); err != nil {
		return err
	}
	if err := r.Segment.DecodeMCS(rd); err != nil {
		return err
	}
	force, err := rd.ReadUint64()
	if err != nil {
		return err
	}
	r.Force = force != 0
	return nil
}

type segmentRemoveResponse struct{ Freed rangeio.Size }

func (r segmentRemoveResponse) EncodeMCS(w *codec.Writer) { w.WriteUint64(uint64(r.Freed)) }
func (r *segmentRemoveResponse) DecodeMCS(rd *codec.Reader) error {
	v, err := rd.ReadUint64()
	if err != nil {
		return err
	}
	r.Freed = rangeio.Size(v)
	return nil
}

// Dispatcher exposes s's quota and segment lifecycle operations over rpc,
// so a remote caller (the iov backend's StoragesClients table) can manage
// segments on a storage it does not host in-process.
func Dispatcher(s *Storages) rpc.Dispatcher {
	return rpc.Dispatcher{
		{
			Tag:         SizeMaxTag,
			NewRequest:  func() rpc.Command { return &idRequest{} },
			NewResponse: func() rpc.Command { return &sizeMaxResponse{} },
			Handle: func(req rpc.Command, conn net.Conn) (rpc.Command, error) {
				max, err := s.SizeMax(req.(*idRequest).ID)
				if err != nil {
					return nil, err
				}
				return &sizeMaxResponse{Max: max}, nil
			},
		},
		{
			Tag:         SizeUsedTag,
			NewRequest:  func() rpc.Command { return &idRequest{} },
			NewResponse: func() rpc.Command { return &sizeUsedResponse{} },
			Handle: func(req rpc.Command, conn net.Conn) (rpc.Command, error) {
				used, err := s.SizeUsed(req.(*idRequest).ID)
				if err != nil {
					return nil, err
				}
				return &sizeUsedResponse{Used: used}, nil
			},
		},
		{
			Tag:         SegmentCreateTag,
			NewRequest:  func() rpc.Command { return &segmentCreateRequest{} },
			NewResponse: func() rpc.Command { return &segmentCreateResponse{} },
			Handle: func(req rpc.Command, conn net.Conn) (rpc.Command, error) {
				sc := req.(*segmentCreateRequest)
				segID, err := s.SegmentCreate(sc.ID, sc.Size, sc.Persistency)
				if err != nil {
					return nil, err
				}
				return &segmentCreateResponse{Segment: segID}, nil
			},
		},
		{
			Tag:         SegmentRemoveTag,
			NewRequest:  func() rpc.Command { return &segmentRemoveRequest{} },
			NewResponse: func() rpc.Command { return &segmentRemoveResponse{} },
			Handle: func(req rpc.Command, conn net.Conn) (rpc.Command, error) {
				sr := req.(*segmentRemoveRequest)
				freed, err := s.SegmentRemove(sr.ID, sr.Segment, sr.Force)
				if err != nil {
					return nil, err
				}
				return &segmentRemoveResponse{Freed: freed}, nil
			},
		},
	}
}
