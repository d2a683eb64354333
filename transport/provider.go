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

package transport

import (
	"net"

	"github.com/cc-hpc-itwm/mcs/rangeio"
	"github.com/cc-hpc-itwm/mcs/rpc"
	"github.com/cc-hpc-itwm/mcs/storage"
)

// Dispatcher returns the fixed two-command rpc.Dispatcher a transport
// provider serves, resolving addresses against storages.
func Dispatcher(storages *storage.Storages) rpc.Dispatcher {
	return rpc.Dispatcher{
		{
			Tag:         GetTag,
			NewRequest:  func() rpc.Command { return &GetRequest{} },
			NewResponse: func() rpc.Command { return &GetResponse{} },
			Handle:      getHandler(storages),
		},
		{
			Tag:         PutTag,
			NewRequest:  func() rpc.Command { return &PutRequest{} },
			NewResponse: func() rpc.Command { return &PutResponse{} },
			Handle:      putHandler(storages),
		},
	}
}

func getHandler(storages *storage.Storages) rpc.Handler {
	return func(req rpc.Command, conn net.Conn) (rpc.Command, error) {
		get := req.(*GetRequest)
		rng := rangeio.NewRangeOfSize(get.Source.Offset, get.Size)
		view, err := storages.ChunkDescription(get.Source.StorageID, get.Source.SegmentID, rng, storage.Const)
		if err != nil {
			return nil, err
		}
		return NewGetResponse(view.Bytes), nil
	}
}

func putHandler(storages *storage.Storages) rpc.Handler {
	return func(req rpc.Command, conn net.Conn) (rpc.Command, error) {
		put := req.(*PutRequest)
		rng := rangeio.NewRangeOfSize(put.Destination.Offset, put.Size)
		view, err := storages.ChunkDescription(put.Destination.StorageID, put.Destination.SegmentID, rng, storage.Mutable)
		if err != nil {
			return nil, err
		}
		copy(view.Bytes, put.Received())
		if flusher, ok, _ := storages.Flusher(put.Destination.StorageID); ok {
			if err := flusher.Flush(put.Destination.SegmentID, rng); err != nil {
				return nil, err
			}
		}
		return &PutResponse{}, nil
	}
}
