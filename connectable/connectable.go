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
// Package connectable implements the protocol-agnostic Connectable/Endpoint
// union (component C12) and the file-based endpoint exchange a provider
// uses to publish where it is listening.
package connectable

import (
	"fmt"
	"net"
	"os"
	"strconv"
	"strings"

	"github.com/cc-hpc-itwm/mcs/textfmt"
)

// Kind distinguishes the two transports a Connectable can describe.
type Kind uint8

const (
	TCP Kind = iota
	Unix
)

// Connectable is a serializable, round-trippable network address: either a
// TCP (address-or-hostname, port) pair or a UNIX domain socket path.
type Connectable struct {
	kind Kind

	// TCP fields.
	addressOrHostname string
	isHostname        bool
	port              uint16

	// Unix field.
	path string
}

// NewTCP builds a TCP Connectable. If the listen address was unspecified
// (e.g. "0.0.0.0" or "::"), isHostname should be true and
// addressOrHostname should be the local hostname, mirroring the original's
// substitution of a hostname for an unspecified bind address at publish
// time.
func NewTCP(addressOrHostname string, isHostname bool, port uint16) Connectable {
	return Connectable{kind: TCP, addressOrHostname: addressOrHostname, isHostname: isHostname, port: port}
}

// NewUnix builds a UNIX domain socket Connectable.
func NewUnix(path string) Connectable {
	return Connectable{kind: Unix, path: path}
}

// FromTCPAddr builds a Connectable from a resolved *net.TCPAddr, filling
// in the local hostname when the address is unspecified (bound to all
// interfaces).
func FromTCPAddr(addr *net.TCPAddr) (Connectable, error) {
	if addr.IP == nil || addr.IP.IsUnspecified() {
		host, err := os.Hostname()
		if err != nil {
			return Connectable{}, fmt.Errorf("connectable: resolve hostname: %w", err)
		}
		return NewTCP(host, true, uint16(addr.Port)), nil
	}
	return NewTCP(addr.IP.String(), false, uint16(addr.Port)), nil
}

func (c Connectable) Kind() Kind { return c.kind }

// Dial opens a connection described by this Connectable.
func (c Connectable) Dial() (net.Conn, error) {
	switch c.kind {
	case TCP:
		return net.Dial("tcp", net.JoinHostPort(c.addressOrHostname, strconv.Itoa(int(c.port))))
	case Unix:
		return net.Dial("unix", c.path)
	default:
		return nil, fmt.Errorf("connectable: unknown kind %d", c.kind)
	}
}

// String implements the text round-trip format from spec.md §6:
//
//	TCP:  ip::tcp { "<addr|host>" , <port> }
//	UNIX: local::stream_protocol { "<path>" }
func (c Connectable) String() string {
	var b strings.Builder
	switch c.kind {
	case TCP:
		b.WriteString("ip::tcp { ")
		textfmt.WriteQuotedString(&b, c.addressOrHostname)
		fmt.Fprintf(&b, " , %d }", c.port)
	case Unix:
		b.WriteString("local::stream_protocol { ")
		textfmt.WriteQuotedString(&b, c.path)
		b.WriteString(" }")
	}
	return b.String()
}

// Parse parses the output of String.
func Parse(s string) (Connectable, error) {
	sc := textfmt.NewScanner(s)
	sc.SkipSpace()
	tag := sc.ReadIdent()
	switch tag {
	case "ip::tcp":
		sc.SkipSpace()
		if err := sc.Expect('{'); err != nil {
			return Connectable{}, err
		}
		sc.SkipSpace()
		addr, err := sc.ReadQuotedString()
		if err != nil {
			return Connectable{}, err
		}
		sc.SkipSpace()
		if err := sc.Expect(','); err != nil {
			return Connectable{}, err
		}
		sc.SkipSpace()
		port, err := sc.ReadUint64()
		if err != nil {
			return Connectable{}, err
		}
		sc.SkipSpace()
		if err := sc.Expect('}'); err != nil {
			return Connectable{}, err
		}
		if err := sc.FinishOrError(); err != nil {
			return Connectable{}, err
		}
		return NewTCP(addr, false, uint16(port)), nil
	case "local::stream_protocol":
		sc.SkipSpace()
		if err := sc.Expect('{'); err != nil {
			return Connectable{}, err
		}
		sc.SkipSpace()
		path, err := sc.ReadQuotedString()
		if err != nil {
			return Connectable{}, err
		}
		sc.SkipSpace()
		if err := sc.Expect('}'); err != nil {
			return Connectable{}, err
		}
		if err := sc.FinishOrError(); err != nil {
			return Connectable{}, err
		}
		return NewUnix(path), nil
	default:
		return Connectable{}, &textfmt.ParseError{Pos: sc.Pos(), Context: "expected 'ip::tcp' or 'local::stream_protocol'"}
	}
}
