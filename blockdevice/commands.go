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

package blockdevice

import (
	"github.com/cc-hpc-itwm/mcs/codec"
	"github.com/cc-hpc-itwm/mcs/rpc"
	"github.com/cc-hpc-itwm/mcs/storage"
)

const (
	BlockSizeTag      = "block_size"
	NumberOfBlocksTag = "number_of_blocks"
	BlocksTag         = "blocks"
	AddTag            = "add"
	RemoveTag         = "remove"
	LocationTag       = "location"
)

// empty is a no-field command/response, used for the two zero-argument
// queries (block_size, number_of_blocks have no request beyond it).
type empty struct{}

func (empty) EncodeMCS(w *codec.Writer)        {}
func (*empty) DecodeMCS(r *codec.Reader) error { return nil }

// blockSizeResponse carries the device's fixed block size.
type blockSizeResponse struct{ Size Size }

func (b blockSizeResponse) EncodeMCS(w *codec.Writer) { w.WriteUint64(uint64(b.Size)) }
func (b *blockSizeResponse) DecodeMCS(r *codec.Reader) error {
	v, err := r.ReadUint64()
	if err != nil {
		return err
	}
	b.Size = Size(v)
	return nil
}

// numberOfBlocksResponse carries the device's current block count.
type numberOfBlocksResponse struct{ Count Count }

func (n numberOfBlocksResponse) EncodeMCS(w *codec.Writer) { w.WriteUint64(uint64(n.Count)) }
func (n *numberOfBlocksResponse) DecodeMCS(r *codec.Reader) error {
	v, err := r.ReadUint64()
	if err != nil {
		return err
	}
	n.Count = Count(v)
	return nil
}

// blocksResponse carries the ordered list of contiguous block ranges
// currently present.
type blocksResponse struct{ Ranges []Range }

func (b blocksResponse) EncodeMCS(w *codec.Writer) {
	w.WriteUint64(uint64(len(b.Ranges)))
	for _, r := range b.Ranges {
		r.EncodeMCS(w)
	}
}

func (b *blocksResponse) DecodeMCS(r *codec.Reader) error {
	n, err := r.ReadUint64()
	if err != nil {
		return err
	}
	b.Ranges = make([]Range, n)
	for i := range b.Ranges {
		if err := b.Ranges[i].DecodeMCS(r); err != nil {
			return err
		}
	}
	return nil
}

// addRequest appends blockCount contiguous free blocks backed by Storage.
type addRequest struct {
	Storage    storage.Record
	BlockCount Count
}

func (a addRequest) EncodeMCS(w *codec.Writer) {
	a.Storage.EncodeMCS(w)
	w.WriteUint64(uint64(a.BlockCount))
}

func (a *addRequest) DecodeMCS(r *codec.Reader) error {
	if err := a.Storage.DecodeMCS(r); err != nil {
		return err
	}
	n, err := r.ReadUint64()
	if err != nil {
		return err
	}
	a.BlockCount = Count(n)
	return nil
}

// addResponse returns the block range the new storage was assigned.
type addResponse struct{ Assigned Range }

func (a addResponse) EncodeMCS(w *codec.Writer) { a.Assigned.EncodeMCS(w) }
func (a *addResponse) DecodeMCS(r *codec.Reader) error {
	return a.Assigned.DecodeMCS(r)
}

// removeRequest removes the given block range.
type removeRequest struct{ Range Range }

func (rq removeRequest) EncodeMCS(w *codec.Writer) { rq.Range.EncodeMCS(w) }
func (rq *removeRequest) DecodeMCS(r *codec.Reader) error {
	return rq.Range.DecodeMCS(r)
}

// removeResponse reports which storages became entirely unused as a
// result of the removal.
type removeResponse struct{ Unused []storage.Record }

func (rr removeResponse) EncodeMCS(w *codec.Writer) {
	w.WriteUint64(uint64(len(rr.Unused)))
	for _, s := range rr.Unused {
		s.EncodeMCS(w)
	}
}

func (rr *removeResponse) DecodeMCS(r *codec.Reader) error {
	n, err := r.ReadUint64()
	if err != nil {
		return err
	}
	rr.Unused = make([]storage.Record, n)
	for i := range rr.Unused {
		if err := rr.Unused[i].DecodeMCS(r); err != nil {
			return err
		}
	}
	return nil
}

// locationRequest asks where a single block physically lives.
type locationRequest struct{ Block ID }

func (lr locationRequest) EncodeMCS(w *codec.Writer) { lr.Block.EncodeMCS(w) }
func (lr *locationRequest) DecodeMCS(r *codec.Reader) error {
	return lr.Block.DecodeMCS(r)
}

// locationResponse carries the routing information for one block.
type locationResponse struct{ Location Location }

func (lr locationResponse) EncodeMCS(w *codec.Writer) { lr.Location.EncodeMCS(w) }
func (lr *locationResponse) DecodeMCS(r *codec.Reader) error {
	return lr.Location.DecodeMCS(r)
}

// Dispatcher returns the fixed rpc.Dispatcher a meta-data provider
// serves, delegating each command to p.
func Dispatcher(p *Provider) rpc.Dispatcher {
	return rpc.Dispatcher{
		{Tag: BlockSizeTag,
			NewRequest:  func() rpc.Command { return &empty{} },
			NewResponse: func() rpc.Command { return &blockSizeResponse{} },
			Handle:      p.handleBlockSize,
		},
		{Tag: NumberOfBlocksTag,
			NewRequest:  func() rpc.Command { return &empty{} },
			NewResponse: func() rpc.Command { return &numberOfBlocksResponse{} },
			Handle:      p.handleNumberOfBlocks,
		},
		{Tag: BlocksTag,
			NewRequest:  func() rpc.Command { return &empty{} },
			NewResponse: func() rpc.Command { return &blocksResponse{} },
			Handle:      p.handleBlocks,
		},
		{Tag: AddTag,
			NewRequest:  func() rpc.Command { return &addRequest{} },
			NewResponse: func() rpc.Command { return &addResponse{} },
			Handle:      p.handleAdd,
		},
		{Tag: RemoveTag,
			NewRequest:  func() rpc.Command { return &removeRequest{} },
			NewResponse: func() rpc.Command { return &removeResponse{} },
			Handle:      p.handleRemove,
		},
		{Tag: LocationTag,
			NewRequest:  func() rpc.Command { return &locationRequest{} },
			NewResponse: func() rpc.Command { return &locationResponse{} },
			Handle:      p.handleLocation,
		},
	}
}
