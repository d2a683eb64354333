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

// Command remove drops a block range from a meta-data provider's device
// and prints the storage records that fell out of use:
//
//	remove <meta_data_dir> <block_range>
//
// block_range is "<begin>,<end>" over block IDs, half-open [begin, end).
package main

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/cc-hpc-itwm/mcs/blockdevice"
	"github.com/cc-hpc-itwm/mcs/cmd/internal/cmdutil"
	"github.com/cc-hpc-itwm/mcs/connectable"
)

func main() {
	cmdutil.Main(run)
}

func run() error {
	if len(os.Args) != 3 {
		return fmt.Errorf("usage: remove <meta_data_dir> <block_range>")
	}
	rng, err := parseRange(os.Args[2])
	if err != nil {
		return err
	}

	c, err := connectable.ReadEndpoint(os.Args[1])
	if err != nil {
		return err
	}
	meta, err := blockdevice.DialConnectable(c)
	if err != nil {
		return err
	}
	defer meta.Close()

	unused, err := meta.Remove(rng)
	if err != nil {
		return err
	}
	for _, rec := range unused {
		fmt.Printf("%s: %s/%s\n", rec.StorageID, rec.ImplementationID, rec.SegmentID)
	}
	return nil
}

func parseRange(s string) (blockdevice.Range, error) {
	parts := strings.SplitN(s, ",", 2)
	if len(parts) != 2 {
		return blockdevice.Range{}, fmt.Errorf("block_range: expected \"<begin>,<end>\", got %q", s)
	}
	begin, err := strconv.ParseUint(strings.TrimSpace(parts[0]), 10, 64)
	if err != nil {
		return blockdevice.Range{}, fmt.Errorf("block_range begin: %w", err)
	}
	end, err := strconv.ParseUint(strings.TrimSpace(parts[1]), 10, 64)
	if err != nil {
		return blockdevice.Range{}, fmt.Errorf("block_range end: %w", err)
	}
	return blockdevice.NewRange(blockdevice.ID(begin), blockdevice.ID(end)), nil
}
