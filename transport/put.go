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

package transport

import (
	"io"
	"net"

	"github.com/cc-hpc-itwm/mcs/codec"
	"github.com/cc-hpc-itwm/mcs/rangeio"
)

// PutTag is the handshake-fingerprint tag for the Put command.
const PutTag = "memory_put"

// PutRequest writes Bytes to Destination. On encode it streams Bytes
// after the envelope; on decode it reads only the length from the
// envelope, leaving the handler to consume exactly that many bytes from
// the socket into the resolved storage target (ReceiveStream).
type PutRequest struct {
	Destination Address
	Bytes       []byte // set when sending
	Size        rangeio.Size

	received []byte // set by ReceiveStream for the handler to read
}

// NewPutRequest constructs a client-side request that streams bytes.
func NewPutRequest(destination Address, bytes []byte) *PutRequest {
	return &PutRequest{Destination: destination, Bytes: bytes, Size: rangeio.Size(len(bytes))}
}

func (p *PutRequest) EncodeMCS(w *codec.Writer) {
	p.Destination.EncodeMCS(w)
	w.WriteUint64(uint64(p.Size))
}

func (p *PutRequest) DecodeMCS(r *codec.Reader) error {
	if err := p.Destination.DecodeMCS(r); err != nil {
		return err
	}
	size, err := r.ReadUint64()
	if err != nil {
		return err
	}
	p.Size = rangeio.Size(size)
	return nil
}

// Stream writes Bytes to conn, invoked client-side immediately after the
// request envelope.
func (p *PutRequest) Stream(conn net.Conn) error {
	_, err := conn.Write(p.Bytes)
	return err
}

// ReceiveStream reads exactly Size bytes from conn, invoked server-side
// immediately after decoding the request envelope. The handler reads
// them back via Received.
func (p *PutRequest) ReceiveStream(conn net.Conn) error {
	buf := make([]byte, p.Size)
	n, err := io.ReadFull(conn, buf)
	if err != nil || rangeio.Size(n) < p.Size {
		return ErrCouldNotReadAllData{Wanted: p.Size, Read: rangeio.Size(n)}
	}
	p.received = buf
	return nil
}

// Received returns the bytes ReceiveStream consumed from the socket.
func (p *PutRequest) Received() []byte { return p.received }

// PutResponse is the empty acknowledgement a successful Put returns.
type PutResponse struct{}

func (PutResponse) EncodeMCS(w *codec.Writer)       {}
func (*PutResponse) DecodeMCS(r *codec.Reader) error { return nil }
