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

// Command meta_data_provider starts a block-device meta-data provider:
//
//	meta_data_provider <endpoint> <dir> <block_size> <n_threads>
package main

import (
	"context"
	"fmt"
	"net"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/cc-hpc-itwm/mcs/blockdevice"
	"github.com/cc-hpc-itwm/mcs/cmd/internal/cmdutil"
	"github.com/cc-hpc-itwm/mcs/connectable"
	"github.com/cc-hpc-itwm/mcs/rpc"
)

func main() {
	cmdutil.Main(run)
}

func run() error {
	if len(os.Args) != 5 {
		return fmt.Errorf("usage: meta_data_provider <endpoint> <dir> <block_size> <n_threads>")
	}
	endpoint, dir := os.Args[1], os.Args[2]
	blockSize, err := strconv.ParseUint(os.Args[3], 10, 64)
	if err != nil {
		return fmt.Errorf("block_size: %w", err)
	}
	nThreads, err := strconv.Atoi(os.Args[4])
	if err != nil {
		return fmt.Errorf("n_threads: %w", err)
	}
	cmdutil.SetGOMAXPROCS(nThreads)

	ln, err := net.Listen("tcp", endpoint)
	if err != nil {
		return fmt.Errorf("listen %s: %w", endpoint, err)
	}
	defer ln.Close()
	cmdutil.RegisterCleanup(func() { ln.Close() })

	tcpAddr, ok := ln.Addr().(*net.TCPAddr)
	if !ok {
		return fmt.Errorf("unexpected listener address type %T", ln.Addr())
	}
	c, err := connectable.FromTCPAddr(tcpAddr)
	if err != nil {
		return err
	}
	if err := connectable.PublishEndpoint(dir, c); err != nil {
		return err
	}

	provider := blockdevice.NewProvider(blockdevice.Size(blockSize))
	server := rpc.NewServer(blockdevice.Dispatcher(provider), nil)

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()
	go func() {
		<-ctx.Done()
		ln.Close()
	}()

	if err := server.Serve(ln); err != nil && ctx.Err() == nil {
		return fmt.Errorf("serve: %w", err)
	}
	return nil
}
