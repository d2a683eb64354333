//go:build !ceph

/*
Copyright (C) 2024-2026  Carl-Philip Hänsch

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

// Package ceph is a stub when Ceph support is not compiled in. Build with
// -tags=ceph to enable the real backend in ceph.go.
package ceph

import "github.com/cc-hpc-itwm/mcs/rangeio"

// Config mirrors the real package's Config so callers can compile
// unconditionally and only fail at Open time.
type Config struct {
	UserName    string
	ClusterName string
	ConfFile    string
	Pool        string
	Prefix      string
	Max         rangeio.MaxSize
}

// Storage is never constructed in a non-ceph build.
type Storage struct{}

// Open always fails: Ceph support not compiled in.
func Open(cfg Config) (*Storage, error) {
	panic("ceph support not compiled in. Build with: go build -tags=ceph")
}
