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
	"github.com/cc-hpc-itwm/mcs/connectable"
	"github.com/cc-hpc-itwm/mcs/transport"
)

// Location is where a block's bytes physically live: which
// transport-provider to dial, and the Address to Get/Put within it
// (spec.md §4.6).
type Location struct {
	TransportProvider connectable.Connectable
	Address           transport.Address
}

func (l Location) EncodeMCS(w *codec.Writer) {
	w.WriteString(l.TransportProvider.String())
	l.Address.EncodeMCS(w)
}

func (l *Location) DecodeMCS(r *codec.Reader) error {
	s, err := r.ReadString()
	if err != nil {
		return err
	}
	if l.TransportProvider, err = connectable.Parse(s); err != nil {
		return err
	}
	return l.Address.DecodeMCS(r)
}
