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

package rpc

import (
	"io"
	"net"

	"github.com/cc-hpc-itwm/mcs/codec"
)

// sendFingerprint writes the size-prefixed, codec-encoded dispatcher
// fingerprint: count followed by each tag.
func sendFingerprint(conn net.Conn, tags []string) error {
	w := codec.NewWriter()
	w.WriteUint64(uint64(len(tags)))
	for _, t := range tags {
		w.WriteString(t)
	}
	return writeSized(conn, w.Bytes())
}

func readFingerprint(r io.Reader) ([]string, error) {
	size, err := readSize(r)
	if err != nil {
		return nil, err
	}
	buf := make([]byte, size)
	if _, err := io.ReadFull(r, buf); err != nil {
		return nil, err
	}
	rd := codec.NewReader(buf)
	n, err := rd.ReadUint64()
	if err != nil {
		return nil, err
	}
	tags := make([]string, n)
	for i := range tags {
		tags[i], err = rd.ReadString()
		if err != nil {
			return nil, err
		}
	}
	if err := rd.FinishArchive(); err != nil {
		return nil, err
	}
	return tags, nil
}

// isPrefix reports whether client is a prefix of server.
func isPrefix(client, server []string) bool {
	if len(client) > len(server) {
		return false
	}
	for i, t := range client {
		if server[i] != t {
			return false
		}
	}
	return true
}

// serverHandshake sends the server's fingerprint and waits for nothing
// further — the client verifies locally and simply proceeds to issue
// calls, so there is no handshake ack on the wire.
func serverHandshake(conn net.Conn, d Dispatcher) error {
	return sendFingerprint(conn, d.Tags())
}

// clientHandshake reads the server's fingerprint and verifies that d's
// tags are a prefix of it.
func clientHandshake(conn net.Conn, d Dispatcher) error {
	serverTags, err := readFingerprint(conn)
	if err != nil {
		return err
	}
	clientTags := d.Tags()
	if !isPrefix(clientTags, serverTags) {
		return ErrHandshakeFailed{Client: clientTags, Server: serverTags}
	}
	return nil
}
