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

// Command share_service runs, or talks to, a named-chunk share service:
//
//	share_service provider <endpoint> <dir> <n_threads>
//	share_service create <dir> <size> <storage-spec>
//
// storage-spec is the name under which the created share is later
// attached. size accepts go-units notation ("10MB", "1g", or a plain
// byte count).
package main

import (
	"context"
	"fmt"
	"net"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/docker/go-units"

	"github.com/cc-hpc-itwm/mcs/cmd/internal/cmdutil"
	"github.com/cc-hpc-itwm/mcs/connectable"
	"github.com/cc-hpc-itwm/mcs/rangeio"
	"github.com/cc-hpc-itwm/mcs/rpc"
	"github.com/cc-hpc-itwm/mcs/shareservice"
	"github.com/cc-hpc-itwm/mcs/storage"
	"github.com/cc-hpc-itwm/mcs/storage/heap"
)

func main() {
	cmdutil.Main(run)
}

func run() error {
	if len(os.Args) < 2 {
		return fmt.Errorf("usage: share_service provider|create ...")
	}
	switch os.Args[1] {
	case "provider":
		return runProvider(os.Args[2:])
	case "create":
		return runCreate(os.Args[2:])
	default:
		return fmt.Errorf("unknown subcommand %q", os.Args[1])
	}
}

func runProvider(args []string) error {
	if len(args) != 3 {
		return fmt.Errorf("usage: share_service provider <endpoint> <dir> <n_threads>")
	}
	endpoint, dir := args[0], args[1]
	nThreads, err := strconv.Atoi(args[2])
	if err != nil {
		return fmt.Errorf("n_threads: %w", err)
	}
	cmdutil.SetGOMAXPROCS(nThreads)

	storages := storage.New()
	storageID, err := storages.Create(heap.New(rangeio.Unlimited()))
	if err != nil {
		return err
	}
	svc := shareservice.NewService(storages, storageID, shareservice.NewMemoryCatalog())

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

	server := rpc.NewServer(shareservice.Dispatcher(svc), nil)

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

func runCreate(args []string) error {
	if len(args) != 3 {
		return fmt.Errorf("usage: share_service create <dir> <size> <storage-spec>")
	}
	dir, name := args[0], args[2]
	bytes, err := units.RAMInBytes(args[1])
	if err != nil {
		return fmt.Errorf("size: %w", err)
	}
	size := uint64(bytes)

	c, err := connectable.ReadEndpoint(dir)
	if err != nil {
		return err
	}
	client, err := shareservice.DialConnectable(c)
	if err != nil {
		return err
	}
	defer client.Close()

	segID, err := client.Create(name, rangeio.Size(size))
	if err != nil {
		return err
	}
	fmt.Printf("%s: %s\n", name, segID)
	return nil
}
