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
	"net"
	"sync/atomic"
	"testing"
	"time"

	"github.com/cc-hpc-itwm/mcs/codec"
)

func TestIsPrefixMatchesEveryPrefixOfServerDispatcher(t *testing.T) {
	server := []string{"A", "B", "C"}
	for _, client := range [][]string{{}, {"A"}, {"A", "B"}, {"A", "B", "C"}} {
		if !isPrefix(client, server) {
			t.Fatalf("isPrefix(%v, %v) = false, want true", client, server)
		}
	}
}

func TestIsPrefixRejectsNonPrefixOrdering(t *testing.T) {
	server := []string{"A", "B", "C"}
	for _, client := range [][]string{{"B", "A"}, {"A", "C"}, {"D"}, {"A", "B", "C", "D"}} {
		if isPrefix(client, server) {
			t.Fatalf("isPrefix(%v, %v) = true, want false", client, server)
		}
	}
}

func TestAtMostRejectsNonPositive(t *testing.T) {
	if _, err := AtMost(0); err == nil {
		t.Fatalf("AtMost(0) succeeded, want ErrMustBePositive")
	}
	if _, err := AtMost(-1); err == nil {
		t.Fatalf("AtMost(-1) succeeded, want ErrMustBePositive")
	}
}

type sleepRequest struct{ Microseconds uint64 }

func (r sleepRequest) EncodeMCS(w *codec.Writer) { w.WriteUint64(r.Microseconds) }
func (r *sleepRequest) DecodeMCS(rd *codec.Reader) error {
	v, err := rd.ReadUint64()
	if err != nil {
		return err
	}
	r.Microseconds = v
	return nil
}

type sleepResponse struct{ Microseconds uint64 }

func (r sleepResponse) EncodeMCS(w *codec.Writer) { w.WriteUint64(r.Microseconds) }
func (r *sleepResponse) DecodeMCS(rd *codec.Reader) error {
	v, err := rd.ReadUint64()
	if err != nil {
		return err
	}
	r.Microseconds = v
	return nil
}

const sleepTag = "test::sleep"

func sleepDispatcher(current, max *atomic.Int64) Dispatcher {
	return Dispatcher{{
		Tag:         sleepTag,
		NewRequest:  func() Command { return &sleepRequest{} },
		NewResponse: func() Command { return &sleepResponse{} },
		Handle: func(req Command, conn net.Conn) (Command, error) {
			n := current.Add(1)
			for {
				m := max.Load()
				if n <= m || max.CompareAndSwap(m, n) {
					break
				}
			}
			time.Sleep(100 * time.Microsecond)
			current.Add(-1)
			return &sleepResponse{Microseconds: req.(*sleepRequest).Microseconds}, nil
		},
	}}
}

// TestFanoutRespectsAtMost issues many sleeping calls across several
// dialed clients to one server and checks the fan-out never runs more
// than its AtMost bound concurrently, and that every call still
// completes with its own request value intact (spec.md §8's throttling
// scenario, scaled down from 10 000 calls for test speed).
func TestFanoutRespectsAtMost(t *testing.T) {
	var current, max atomic.Int64
	d := sleepDispatcher(&current, &max)

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	defer ln.Close()
	server := NewServer(d, nil)
	go server.Serve(ln)

	const nClients = 8
	clients := make([]*Client, nClients)
	for i := range clients {
		c, err := Dial("tcp", ln.Addr().String(), d, PolicyConcurrent)
		if err != nil {
			t.Fatalf("dial %d: %v", i, err)
		}
		defer c.Close()
		clients[i] = c
	}

	const bound = 4
	p, err := AtMost(bound)
	if err != nil {
		t.Fatalf("AtMost: %v", err)
	}

	const nCalls = 400
	targets := make([]*Client, nCalls)
	for i := range targets {
		targets[i] = clients[i%nClients]
	}

	results := Fanout(targets, p, func(c *Client) (uint64, error) {
		resp, err := Call[*sleepResponse](c, sleepTag, &sleepRequest{Microseconds: 100}, func() Command { return &sleepResponse{} })
		if err != nil {
			return 0, err
		}
		return resp.Microseconds, nil
	})

	if got := max.Load(); got > bound {
		t.Fatalf("observed %d concurrent in-flight calls, want at most %d", got, bound)
	}
	for i, r := range results {
		if r.Err != nil {
			t.Fatalf("result %d: %v", i, r.Err)
		}
		if r.Value != 100 {
			t.Fatalf("result %d: value = %d, want 100", i, r.Value)
		}
	}
}
