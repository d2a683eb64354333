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
	"net"

	"github.com/cc-hpc-itwm/mcs/rangeio"
	"github.com/cc-hpc-itwm/mcs/rpc"
	"github.com/cc-hpc-itwm/mcs/storage"
	"github.com/cc-hpc-itwm/mcs/storageid"
)

// Service is the share service provider: a name table in front of a
// single storage.Storages registry it owns directly (spec.md §4.9).
// Unlike the iov backend, a share service never routes to a remote
// storage — Create allocates on storages itself.
type Service struct {
	storages *storage.Storages
	storage  storageid.ID
	catalog  Catalog
}

// NewService constructs a share service backed by storages, allocating
// all future segments on storageID (a storage already registered in
// storages), with the given Catalog (NewMemoryCatalog for the default).
func NewService(storages *storage.Storages, storageID storageid.ID, catalog Catalog) *Service {
	return &Service{storages: storages, storage: storageID, catalog: catalog}
}

func (s *Service) create(name string, size rangeio.Size) (storageid.SegmentID, error) {
	segID, err := s.storages.SegmentCreate(s.storage, size, storage.RemoveOnSegmentRemoval)
	if err != nil {
		return 0, err
	}
	if err := s.catalog.Put(name, shareEntry{Storage: s.storage, Segment: segID}); err != nil {
		s.storages.SegmentRemove(s.storage, segID, storage.RespectPersistency)
		return 0, err
	}
	return segID, nil
}

func (s *Service) attach(name string) (storageid.ID, storageid.SegmentID, error) {
	e, err := s.catalog.Get(name)
	if err != nil {
		return 0, 0, err
	}
	return e.Storage, e.Segment, nil
}

func (s *Service) remove(name string) error {
	e, err := s.catalog.Get(name)
	if err != nil {
		return err
	}
	if _, err := s.storages.SegmentRemove(e.Storage, e.Segment, storage.RespectPersistency); err != nil {
		return err
	}
	return s.catalog.Delete(name)
}

func (s *Service) handleCreate(req rpc.Command, conn net.Conn) (rpc.Command, error) {
	cr := req.(*createRequest)
	segID, err := s.create(cr.Name, cr.Size)
	if err != nil {
		return nil, err
	}
	return &createResponse{Segment: segID}, nil
}

func (s *Service) handleAttach(req rpc.Command, conn net.Conn) (rpc.Command, error) {
	storageID, segID, err := s.attach(req.(*nameRequest).Name)
	if err != nil {
		return nil, err
	}
	return &attachResponse{Storage: storageID, Segment: segID}, nil
}

func (s *Service) handleRemove(req rpc.Command, conn net.Conn) (rpc.Command, error) {
	if err := s.remove(req.(*nameRequest).Name); err != nil {
		return nil, err
	}
	return &empty{}, nil
}

// Dispatcher builds s's rpc.Dispatcher.
func Dispatcher(s *Service) rpc.Dispatcher {
	return rpc.Dispatcher{
		{Tag: CreateTag, NewRequest: func() rpc.Command { return &createRequest{} }, NewResponse: func() rpc.Command { return &createResponse{} }, Handle: s.handleCreate},
		{Tag: AttachTag, NewRequest: func() rpc.Command { return &nameRequest{} }, NewResponse: func() rpc.Command { return &attachResponse{} }, Handle: s.handleAttach},
		{Tag: RemoveTag, NewRequest: func() rpc.Command { return &nameRequest{} }, NewResponse: func() rpc.Command { return &empty{} }, Handle: s.handleRemove},
	}
}
