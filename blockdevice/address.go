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
	"github.com/cc-hpc-itwm/mcs/rangeio"
	"github.com/cc-hpc-itwm/mcs/storage"
	"github.com/cc-hpc-itwm/mcs/storageid"
	"github.com/cc-hpc-itwm/mcs/transport"
)

// transportAddress resolves a byte offset within s's pre-sized segment
// into the globally routable Address a transport client Gets/Puts. No
// backend in this port needs a chunk-description parameter beyond the
// segment/range/access triple storage.Storages.ChunkDescription already
// takes, so it stays zero; the field exists on Address purely for wire
// compatibility with spec.md §3's Address tuple.
func transportAddress(s storage.Record, byteOffset uint64) transport.Address {
	return transport.Address{
		StorageID:                 s.StorageID,
		ChunkDescriptionParameter: storageid.Parameter{},
		SegmentID:                 s.SegmentID,
		Offset:                    rangeio.Offset(byteOffset),
	}
}
