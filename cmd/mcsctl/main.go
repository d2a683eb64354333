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

// Command mcsctl is an interactive control shell for a running fabric:
//
//	mcsctl shell
//	mcsctl tail <ws-url>
//
// shell is a readline REPL issuing `number_of_blocks <dir>` / `cat <dir>
// <block_id>` against a meta-data provider named by its endpoint
// directory; tail connects to a tracer.WebSocketTee endpoint and prints
// every traced event as it arrives.
package main

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/chzyer/readline"
	"github.com/gorilla/websocket"

	"github.com/cc-hpc-itwm/mcs/blockdevice"
	"github.com/cc-hpc-itwm/mcs/cmd/internal/cmdutil"
	"github.com/cc-hpc-itwm/mcs/connectable"
)

func main() {
	cmdutil.Main(run)
}

func run() error {
	if len(os.Args) < 2 {
		return fmt.Errorf("usage: mcsctl shell|tail ...")
	}
	switch os.Args[1] {
	case "shell":
		return runShell()
	case "tail":
		if len(os.Args) != 3 {
			return fmt.Errorf("usage: mcsctl tail <ws-url>")
		}
		return runTail(os.Args[2])
	default:
		return fmt.Errorf("unknown subcommand %q", os.Args[1])
	}
}

const prompt = "\033[32mmcs>\033[0m "

func runShell() error {
	l, err := readline.NewEx(&readline.Config{
		Prompt:            prompt,
		HistoryFile:       ".mcsctl-history.tmp",
		InterruptPrompt:   "^C",
		EOFPrompt:         "exit",
		HistorySearchFold: true,
	})
	if err != nil {
		return err
	}
	defer l.Close()
	l.CaptureExitSignal()

	for {
		line, err := l.Readline()
		if err == readline.ErrInterrupt {
			continue
		} else if err == io.EOF {
			return nil
		} else if err != nil {
			return err
		}
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if line == "exit" || line == "quit" {
			return nil
		}
		if err := dispatchShellLine(line); err != nil {
			fmt.Println("error:", err)
		}
	}
}

func dispatchShellLine(line string) error {
	fields := strings.Fields(line)
	switch fields[0] {
	case "number_of_blocks":
		if len(fields) != 2 {
			return fmt.Errorf("usage: number_of_blocks <meta_data_dir>")
		}
		c, err := connectable.ReadEndpoint(fields[1])
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
	case "cat":
		if len(fields) != 3 {
			return fmt.Errorf("usage: cat <meta_data_dir> <block_id>")
		}
		blockID, err := strconv.ParseUint(fields[2], 10, 64)
		if err != nil {
			return err
		}
		c, err := connectable.ReadEndpoint(fields[1])
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
			return err
		}
		os.Stdout.Write(buf)
	default:
		return fmt.Errorf("unknown command %q", fields[0])
	}
	return nil
}

func runTail(url string) error {
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		return fmt.Errorf("tail: dial %s: %w", url, err)
	}
	defer conn.Close()

	for {
		_, msg, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsCloseError(err, websocket.CloseNormalClosure) {
				return nil
			}
			return fmt.Errorf("tail: read: %w", err)
		}
		fmt.Println(string(msg))
	}
}
