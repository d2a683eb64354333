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
	"github.com/cc-hpc-itwm/mcs/rpc"
)

// GetTag is the handshake-fingerprint tag for the Get command.
const GetTag = "memory_get"

// GetRequest asks the provider to read Size bytes starting at Source.
type GetRequest struct {
	Source Address
	Size   rangeio.Size
}

func (g *GetRequest) EncodeMCS(w *codec.Writer) {
	g.Source.EncodeMCS(w)
	w.WriteUint64(uint64(g.Size))
}

func (g *GetRequest) DecodeMCS(r *codec.Reader) error {
	if err := g.Source.DecodeMCS(r); err != nil {
		return err
	}
	size, err := r.ReadUint64()
	if err != nil {
		return err
	}
	g.Size = rangeio.Size(size)
	return nil
}

// GetResponse carries the byte count the provider is about to stream;
// the bytes themselves travel outside the envelope (Stream on the
// sending/server side, ReceiveStream on the receiving/client side).
type GetResponse struct {
	Size rangeio.Size

	// Destination is client-side only: where ReceiveStream writes the
	// retrieved bytes. payload is server-side only: the bytes Stream sends.
	Destination Destination
	payload     []byte
}

// NewGetResponse constructs a server-side response carrying payload,
// which Stream sends immediately after the envelope.
func NewGetResponse(payload []byte) *GetResponse {
	return &GetResponse{Size: rangeio.Size(len(payload)), payload: payload}
}

// newGetResponse constructs a client-side response shell; ReceiveStream
// fills dst with the bytes the server streams.
func newGetResponse(dst Destination) func() rpc.Command {
	return func() rpc.Command { return &GetResponse{Destination: dst} }
}

func (g *GetResponse) EncodeMCS(w *codec.Writer) { w.WriteUint64(uint64(g.Size)) }

func (g *GetResponse) DecodeMCS(r *codec.Reader) error {
	size, err := r.ReadUint64()
	if err != nil {
		return err
	}
	g.Size = rangeio.Size(size)
	return nil
}

// Stream writes the retrieved payload to conn, invoked server-side
// immediately after the response envelope.
func (g *GetResponse) Stream(conn net.Conn) error {
	_, err := conn.Write(g.payload)
	return err
}

// ReceiveStream reads exactly Size bytes from conn into Destination,
// invoked client-side immediately after decoding the response envelope.
func (g *GetResponse) ReceiveStream(conn net.Conn) error {
	buf := g.Destination.Data()
	if rangeio.Size(len(buf)) < g.Size {
		return ErrDestinationTooSmall{Wanted: g.Size, Available: rangeio.Size(len(buf))}
	}
	n, err := io.ReadFull(conn, buf[:g.Size])
	if err != nil || rangeio.Size(n) < g.Size {
		return ErrCouldNotReadAllData{Wanted: g.Size, Read: rangeio.Size(n)}
	}
	return nil
}
