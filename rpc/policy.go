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
	"sync"
	"sync/atomic"

	"github.com/cc-hpc-itwm/mcs/codec"
)

// AccessPolicy gates concurrent use of a single socket (component C6
// §4.4.3). StartCall sends a request and returns a Future for its
// response; Error poisons the policy, failing every outstanding and
// future call with the given cause.
type AccessPolicy interface {
	StartCall(cmdIndex int, req Command, newResp func() Command) (*Future, error)
	Error(err error)
}

type pendingCall struct {
	future  *Future
	newResp func() Command
}

func encodeCommand(req Command) []byte {
	w := codec.NewWriter()
	req.EncodeMCS(w)
	return w.Bytes()
}

// Exclusive allows at most one outstanding call: StartCall blocks until
// the response is read, inline on the calling goroutine.
type Exclusive struct {
	conn   net.Conn
	mu     sync.Mutex
	nextID atomic.Uint64
	err    error
}

func NewExclusive(conn net.Conn) *Exclusive { return &Exclusive{conn: conn} }

func (p *Exclusive) StartCall(cmdIndex int, req Command, newResp func() Command) (*Future, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return nil, ErrAccessPolicyPoisoned{Cause: p.err}
	}

	callID := CallID(p.nextID.Add(1))
	if err := writeRequest(p.conn, callID, cmdIndex, encodeCommand(req)); err != nil {
		p.err = err
		return nil, ErrCompletion{Cause: err}
	}
	if sender, ok := req.(Streamer); ok {
		if err := sender.Stream(p.conn); err != nil {
			p.err = err
			return nil, ErrCompletion{Cause: err}
		}
	}
	_, body, err := readResponseFrame(p.conn)
	if err != nil {
		p.err = err
		return nil, ErrCompletion{Cause: err}
	}
	resp, derr := decodeResult(body, newResp)
	if derr == nil {
		if rs, ok := resp.(ReceiveStreamer); ok {
			derr = rs.ReceiveStream(p.conn)
		}
	}
	f := newFuture()
	f.complete(resp, derr)
	return f, nil
}

func (p *Exclusive) Error(err error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err == nil {
		p.err = err
	}
}

// Sequential serializes sends with a mutex but lets calls return a
// Future; a single background goroutine reads responses in send order
// and completes the oldest outstanding call (FIFO), so dropping a
// Future never desynchronizes the stream — the queue entry is consumed
// regardless of whether anything reads its result.
type Sequential struct {
	conn   net.Conn
	sendMu sync.Mutex
	nextID atomic.Uint64

	queueMu sync.Mutex
	queue   []*pendingCall
	err     error
}

func NewSequential(conn net.Conn) *Sequential {
	p := &Sequential{conn: conn}
	go p.receiveLoop()
	return p
}

func (p *Sequential) receiveLoop() {
	for {
		_, body, err := readResponseFrame(p.conn)
		if err != nil {
			p.Error(err)
			return
		}
		p.queueMu.Lock()
		if len(p.queue) == 0 {
			p.queueMu.Unlock()
			continue
		}
		pc := p.queue[0]
		p.queue = p.queue[1:]
		p.queueMu.Unlock()

		resp, derr := decodeResult(body, pc.newResp)
		if derr == nil {
			if rs, ok := resp.(ReceiveStreamer); ok {
				derr = rs.ReceiveStream(p.conn)
			}
		}
		pc.future.complete(resp, derr)
	}
}

func (p *Sequential) StartCall(cmdIndex int, req Command, newResp func() Command) (*Future, error) {
	p.sendMu.Lock()
	defer p.sendMu.Unlock()

	p.queueMu.Lock()
	if p.err != nil {
		cause := p.err
		p.queueMu.Unlock()
		return nil, ErrAccessPolicyPoisoned{Cause: cause}
	}
	f := newFuture()
	p.queue = append(p.queue, &pendingCall{future: f, newResp: newResp})
	p.queueMu.Unlock()

	callID := CallID(p.nextID.Add(1))
	if err := writeRequest(p.conn, callID, cmdIndex, encodeCommand(req)); err != nil {
		p.Error(err)
		return nil, ErrCompletion{Cause: err}
	}
	if sender, ok := req.(Streamer); ok {
		if err := sender.Stream(p.conn); err != nil {
			p.Error(err)
			return nil, ErrCompletion{Cause: err}
		}
	}
	return f, nil
}

func (p *Sequential) Error(err error) {
	p.queueMu.Lock()
	if p.err != nil {
		p.queueMu.Unlock()
		return
	}
	p.err = err
	queue := p.queue
	p.queue = nil
	p.queueMu.Unlock()

	for _, pc := range queue {
		pc.future.complete(nil, ErrCompletion{Cause: err})
	}
}

// Concurrent allows arbitrarily many in-flight calls; sends are
// serialized by a short mutex, responses are multiplexed by call ID and
// may complete out of order.
type Concurrent struct {
	conn   net.Conn
	sendMu sync.Mutex
	nextID atomic.Uint64

	mu      sync.Mutex
	pending map[CallID]*pendingCall
	err     error
}

func NewConcurrent(conn net.Conn) *Concurrent {
	p := &Concurrent{conn: conn, pending: make(map[CallID]*pendingCall)}
	go p.receiveLoop()
	return p
}

func (p *Concurrent) receiveLoop() {
	for {
		callID, body, err := readResponseFrame(p.conn)
		if err != nil {
			p.Error(err)
			return
		}
		p.mu.Lock()
		pc, ok := p.pending[callID]
		if ok {
			delete(p.pending, callID)
		}
		p.mu.Unlock()
		if !ok {
			continue
		}
		resp, derr := decodeResult(body, pc.newResp)
		if derr == nil {
			if rs, ok := resp.(ReceiveStreamer); ok {
				derr = rs.ReceiveStream(p.conn)
			}
		}
		pc.future.complete(resp, derr)
	}
}

func (p *Concurrent) StartCall(cmdIndex int, req Command, newResp func() Command) (*Future, error) {
	callID := CallID(p.nextID.Add(1))
	f := newFuture()

	p.mu.Lock()
	if p.err != nil {
		cause := p.err
		p.mu.Unlock()
		return nil, ErrAccessPolicyPoisoned{Cause: cause}
	}
	p.pending[callID] = &pendingCall{future: f, newResp: newResp}
	p.mu.Unlock()

	p.sendMu.Lock()
	err := writeRequest(p.conn, callID, cmdIndex, encodeCommand(req))
	if err == nil {
		if sender, ok := req.(Streamer); ok {
			err = sender.Stream(p.conn)
		}
	}
	p.sendMu.Unlock()
	if err != nil {
		p.Error(err)
		return nil, ErrCompletion{Cause: err}
	}
	return f, nil
}

func (p *Concurrent) Error(err error) {
	p.mu.Lock()
	if p.err != nil {
		p.mu.Unlock()
		return
	}
	p.err = err
	pending := p.pending
	p.pending = make(map[CallID]*pendingCall)
	p.mu.Unlock()

	for _, pc := range pending {
		pc.future.complete(nil, ErrCompletion{Cause: err})
	}
}
