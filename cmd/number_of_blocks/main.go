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

// Command number_of_blocks prints the block count of a meta-data
// provider's device:
//
//	number_of_blocks <meta_data_dir>
package main

import (
	"fmt"
	"os"

	"github.com/cc-hpc-itwm/mcs/blockdevice"
	"github.com/cc-hpc-itwm/mcs/cmd/internal/cmdutil"
	"github.com/cc-hpc-itwm/mcs/connectable"
)

func main() {
	cmdutil.Main(run)
}

func run() error {
	if len(os.Args) != 2 {
		return fmt.Errorf("usage: number_of_blocks <meta_data_dir>")
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

	count, err := meta.NumberOfBlocks()
	if err != nil {
		return err
	}
	fmt.Println(count)
	return nil
}
