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

// Command cat reads one block to stdout:
//
//	cat <meta_data_dir> <block_id>
package main

import (
	"fmt"
	"os"
	"strconv"

	"github.com/cc-hpc-itwm/mcs/blockdevice"
	"github.com/cc-hpc-itwm/mcs/cmd/internal/cmdutil"
	"github.com/cc-hpc-itwm/mcs/connectable"
)

func main() {
	cmdutil.Main(run)
}

func run() error {
	if len(os.Args) != 3 {
		return fmt.Errorf("usage: cat <meta_data_dir> <block_id>")
	}
	dir := os.Args[1]
	blockID, err := strconv.ParseUint(os.Args[2], 10, 64)
	if err != nil {
		return fmt.Errorf("block_id: %w", err)
	}

	c, err := connectable.ReadEndpoint(dir)
	if err != nil {
		return err
	}

	meta, err := blockdevice.DialConnectable(c)
	if err != nil {
		return err
	}
	defer meta.Close()

	reader, err := blockdevice.NewReader(meta, blockdevice.DialTransport)
	if err != nil {
		return err
	}
	defer reader.Close()

	size, err := meta.BlockSize()
	if err != nil {
		return err
	}
	buf := make([]byte, size)
	if err := reader.ReadBlock(blockdevice.ID(blockID), buf); err != nil {
		return fmt.Errorf("Could not read all data.: %w", err)
	}

	if n, err := os.Stdout.Write(buf); err != nil || n != len(buf) {
		return fmt.Errorf("Failure, broken pipe.")
	}
	return nil
}
