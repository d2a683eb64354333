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

// Access is a chunk's access mode (component C5). Go slices carry no
// const/mutable distinction the way C++'s std::span<T const> vs.
// std::span<T> does, so Access is carried as a runtime tag rather than a
// generic type parameter: giving Const and Mutable each their own
// parallel Chunk[Access] implementation (as spec.md §9's design note
// sketches for Rust) would duplicate every accessor for no benefit in a
// language that can't enforce the distinction at compile time anyway.
// Access is still tracked explicitly so callers and the tracer can see
// which mode a chunk was opened under, and a backend's ChunkDescription
// still acts on it where its behavior differs (s3 marks the segment
// dirty and ceph keeps the buffer for a later Flush only for Mutable).
type Access uint8

const (
	Const Access = iota
	Mutable
)

func (a Access) String() string {
	if a == Mutable {
		return "mutable"
	}
	return "const"
}
