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
	"fmt"

	"github.com/cc-hpc-itwm/mcs/rangeio"
)

// ErrCouldNotReadAllData is returned by Get when fewer bytes than
// requested arrived on the wire before the connection was exhausted.
type ErrCouldNotReadAllData struct {
	Wanted rangeio.Size
	Read   rangeio.Size
}

func (e ErrCouldNotReadAllData) Error() string {
	return fmt.Sprintf("transport: could not read all data: wanted %s, read %s", e.Wanted, e.Read)
}

// ErrDestinationTooSmall is returned client-side when the buffer handed
// to Get is smaller than the response's reported size.
type ErrDestinationTooSmall struct {
	Wanted    rangeio.Size
	Available rangeio.Size
}

func (e ErrDestinationTooSmall) Error() string {
	return fmt.Sprintf("transport: destination too small: wanted %s, have %s", e.Wanted, e.Available)
}
