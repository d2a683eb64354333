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
	"encoding/binary"
	"fmt"
	"io"
	"net"

	"github.com/cc-hpc-itwm/mcs/codec"
)

// CallID is the client-chosen correlation ID on every frame.
type CallID uint64

func writeSized(conn net.Conn, parts ...[]byte) error {
	var total int
	for _, p := range parts {
		total += len(p)
	}
	var sizePrefix [8]byte
	binary.BigEndian.PutUint64(sizePrefix[:], uint64(total))
	if _, err := conn.Write(sizePrefix[:]); err != nil {
		return err
	}
	for _, p := range parts {
		if _, err := conn.Write(p); err != nil {
			return err
		}
	}
	return nil
}

// writeRequest writes a request frame: size, call ID, command index, body.
func writeRequest(conn net.Conn, callID CallID, commandIndex int, body []byte) error {
	var hdr [16]byte
	binary.BigEndian.PutUint64(hdr[0:8], uint64(callID))
	binary.BigEndian.PutUint64(hdr[8:16], uint64(commandIndex))
	return writeSized(conn, hdr[:], body)
}

// writeResponse writes a response frame: size, call ID, body (no command
// index — the client already knows which command it called).
func writeResponse(conn net.Conn, callID CallID, body []byte) error {
	var hdr [8]byte
	binary.BigEndian.PutUint64(hdr[:], uint64(callID))
	return writeSized(conn, hdr[:], body)
}

// readSize reads the u64 size prefix.
func readSize(r io.Reader) (uint64, error) {
	var buf [8]byte
	if _, err := io.ReadFull(r, buf[:]); err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint64(buf[:]), nil
}

// readRequestFrame reads one request frame's header and raw body bytes.
func readRequestFrame(r io.Reader) (CallID, int, []byte, error) {
	size, err := readSize(r)
	if err != nil {
		return 0, 0, nil, err
	}
	if size < 16 {
		return 0, 0, nil, fmt.Errorf("rpc: malformed request frame: size %d smaller than header", size)
	}
	buf := make([]byte, size)
	if _, err := io.ReadFull(r, buf); err != nil {
		return 0, 0, nil, err
	}
	callID := CallID(binary.BigEndian.Uint64(buf[0:8]))
	cmdIndex := int(binary.BigEndian.Uint64(buf[8:16]))
	return callID, cmdIndex, buf[16:], nil
}

// readResponseFrame reads one response frame's header and raw body bytes.
func readResponseFrame(r io.Reader) (CallID, []byte, error) {
	size, err := readSize(r)
	if err != nil {
		return 0, nil, err
	}
	if size < 8 {
		return 0, nil, fmt.Errorf("rpc: malformed response frame: size %d smaller than header", size)
	}
	buf := make([]byte, size)
	if _, err := io.ReadFull(r, buf); err != nil {
		return 0, nil, err
	}
	callID := CallID(binary.BigEndian.Uint64(buf[0:8]))
	return callID, buf[8:], nil
}

// resultOrError is the response envelope body: either a decoded Command
// or a HandlerError, distinguished by a leading tag byte.
const (
	tagResult byte = 0
	tagError  byte = 1
)

func encodeResult(resp Command) []byte {
	w := codec.NewWriter()
	w.WriteUint8(tagResult)
	resp.EncodeMCS(w)
	return w.Bytes()
}

func encodeHandlerError(reason string) []byte {
	w := codec.NewWriter()
	w.WriteUint8(tagError)
	w.WriteString(reason)
	return w.Bytes()
}

// decodeResult reads the response body, calling newResp to allocate the
// response value on success.
func decodeResult(body []byte, newResp func() Command) (Command, error) {
	r := codec.NewReader(body)
	tag, err := r.ReadUint8()
	if err != nil {
		return nil, err
	}
	if tag == tagError {
		reason, err := r.ReadString()
		if err != nil {
			return nil, err
		}
		return nil, ErrHandlerError{Reason: reason}
	}
	resp := newResp()
	if err := resp.DecodeMCS(r); err != nil {
		return nil, err
	}
	if err := r.FinishArchive(); err != nil {
		return nil, err
	}
	return resp, nil
}
