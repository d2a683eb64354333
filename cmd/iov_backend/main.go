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

// Command iov_backend runs, or talks to, an IOV backend provider:
//
//	iov_backend provider <endpoint> <n_threads> [state_file]
//	iov_backend collection_create <provider> <cid> <size>
//	iov_backend locations <provider> <cid> <range>
//
// <provider> is the Connectable text the provider subcommand printed on
// stdout at startup. <range> is "<begin>,<end>" over byte offsets. <size>
// accepts go-units notation ("10MB", "1g", or a plain byte count).
package main

import (
	"context"
	"fmt"
	"net"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"

	"github.com/docker/go-units"
	"github.com/google/uuid"

	"github.com/cc-hpc-itwm/mcs/cmd/internal/cmdutil"
	"github.com/cc-hpc-itwm/mcs/connectable"
	"github.com/cc-hpc-itwm/mcs/iov"
	"github.com/cc-hpc-itwm/mcs/rangeio"
	"github.com/cc-hpc-itwm/mcs/rpc"
)

func main() {
	cmdutil.Main(run)
}

func run() error {
	if len(os.Args) < 2 {
		return fmt.Errorf("usage: iov_backend provider|collection_create|locations ...")
	}
	switch os.Args[1] {
	case "provider":
		return runProvider(os.Args[2:])
	case "collection_create":
		return runCollectionCreate(os.Args[2:])
	case "locations":
		return runLocations(os.Args[2:])
	default:
		return fmt.Errorf("unknown subcommand %q", os.Args[1])
	}
}

func runProvider(args []string) error {
	if len(args) != 2 && len(args) != 3 {
		return fmt.Errorf("usage: iov_backend provider <endpoint> <n_threads> [state_file]")
	}
	endpoint := args[0]
	nThreads, err := strconv.Atoi(args[1])
	if err != nil {
		return fmt.Errorf("n_threads: %w", err)
	}
	cmdutil.SetGOMAXPROCS(nThreads)

	var provider *iov.Provider
	if len(args) == 3 {
		provider, err = iov.RestoreState(args[2])
		if err != nil {
			return err
		}
	} else {
		provider = iov.NewProvider()
	}

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
	fmt.Println(c.String())

	server := rpc.NewServer(iov.Dispatcher(provider), nil)

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

func runCollectionCreate(args []string) error {
	if len(args) != 3 {
		return fmt.Errorf("usage: iov_backend collection_create <provider> <cid> <size>")
	}
	client, err := dialProvider(args[0])
	if err != nil {
		return err
	}
	defer client.Close()

	cid, err := uuid.Parse(args[1])
	if err != nil {
		return fmt.Errorf("cid: %w", err)
	}
	bytes, err := units.RAMInBytes(args[2])
	if err != nil {
		return fmt.Errorf("size: %w", err)
	}

	used, err := client.CollectionCreate(cid, rangeio.Size(bytes))
	if err != nil {
		return err
	}
	for _, u := range used {
		fmt.Printf("%s: %s/%s\n", u.Storage, u.Segment, u.Range)
	}
	return nil
}

func runLocations(args []string) error {
	if len(args) != 3 {
		return fmt.Errorf("usage: iov_backend locations <provider> <cid> <range>")
	}
	client, err := dialProvider(args[0])
	if err != nil {
		return err
	}
	defer client.Close()

	cid, err := uuid.Parse(args[1])
	if err != nil {
		return fmt.Errorf("cid: %w", err)
	}
	rng, err := parseByteRange(args[2])
	if err != nil {
		return err
	}

	locs, err := client.Locations(cid, rng)
	if err != nil {
		return err
	}
	for _, l := range locs {
		fmt.Printf("%s: %s/%s via %s/(%x, %x)\n",
			l.Range, l.TransportProvider, l.Address,
			l.StoragesProvider, l.FileReadParameter.Bytes(), l.FileWriteParameter.Bytes())
	}
	return nil
}

func dialProvider(spec string) (*iov.Client, error) {
	c, err := connectable.Parse(spec)
	if err != nil {
		return nil, fmt.Errorf("provider: %w", err)
	}
	return iov.DialConnectable(c)
}

func parseByteRange(s string) (rangeio.Range, error) {
	parts := strings.SplitN(s, ",", 2)
	if len(parts) != 2 {
		return rangeio.Range{}, fmt.Errorf("range: expected \"<begin>,<end>\", got %q", s)
	}
	begin, err := strconv.ParseUint(strings.TrimSpace(parts[0]), 10, 64)
	if err != nil {
		return rangeio.Range{}, fmt.Errorf("range begin: %w", err)
	}
	end, err := strconv.ParseUint(strings.TrimSpace(parts[1]), 10, 64)
	if err != nil {
		return rangeio.Range{}, fmt.Errorf("range end: %w", err)
	}
	return rangeio.NewRange(rangeio.Offset(begin), rangeio.Offset(end)), nil
}
