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

// Package tracer records events for diagnostics so operators can replay
// what a provider process did. rpc.Server records one event per RPC call
// it serves; storage operations are not traced.
package tracer

import "time"

// Event is one recorded occurrence. Storage and Segment are zero when not
// applicable (e.g. a handshake event has neither).
type Event struct {
	Time      time.Time
	Kind      string // "segment_create", "segment_remove", "chunk_description", "rpc_call", ...
	Storage   string
	Segment   string
	Detail    string
	Err       string
}

// String renders an Event the way LogFile persists it: one line, fields
// space-separated, detail last and free-form.
func (e Event) String() string {
	line := e.Time.UTC().Format(time.RFC3339Nano) + " " + e.Kind
	if e.Storage != "" {
		line += " storage=" + e.Storage
	}
	if e.Segment != "" {
		line += " segment=" + e.Segment
	}
	if e.Err != "" {
		line += " err=" + e.Err
	}
	if e.Detail != "" {
		line += " " + e.Detail
	}
	return line
}

// Tracer is the sink every recordable component writes events to.
type Tracer interface {
	Record(e Event)
}

// Nop discards every event; the zero value Nop{} is ready to use and is
// the default when no tracer is configured.
type Nop struct{}

func (Nop) Record(Event) {}
