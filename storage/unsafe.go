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

import "unsafe"

// sizeOf returns sizeof(T) the way the C++ original's as<T>() uses
// sizeof(T) to compute a span's element count.
func sizeOf[T any](v T) int { return int(unsafe.Sizeof(v)) }

// unsafeBytesAsSlice reinterprets b (already truncated to a whole number
// of T) as a []T without copying. b must outlive the returned slice and
// must be aligned for T; callers get this from ChunkView.Bytes, which
// implementations are responsible for allocating with suitable alignment.
func unsafeBytesAsSlice[T any](b []byte) []T {
	if len(b) == 0 {
		return nil
	}
	var zero T
	sz := int(unsafe.Sizeof(zero))
	return unsafe.Slice((*T)(unsafe.Pointer(&b[0])), len(b)/sz)
}
