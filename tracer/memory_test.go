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

package tracer

import "testing"

func TestMemoryKeepsChronologicalOrderBeforeWrap(t *testing.T) {
	m := NewMemory(4)
	m.Record(Event{Kind: "a"})
	m.Record(Event{Kind: "b"})
	m.Record(Event{Kind: "c"})

	got := m.Events()
	if len(got) != 3 {
		t.Fatalf("len(Events()) = %d, want 3", len(got))
	}
	for i, want := range []string{"a", "b", "c"} {
		if got[i].Kind != want {
			t.Fatalf("Events()[%d].Kind = %q, want %q", i, got[i].Kind, want)
		}
	}
}

func TestMemoryWrapsAndDropsOldest(t *testing.T) {
	m := NewMemory(3)
	for _, kind := range []string{"a", "b", "c", "d", "e"} {
		m.Record(Event{Kind: kind})
	}
	got := m.Events()
	if len(got) != 3 {
		t.Fatalf("len(Events()) = %d, want 3", len(got))
	}
	for i, want := range []string{"c", "d", "e"} {
		if got[i].Kind != want {
			t.Fatalf("Events()[%d].Kind = %q, want %q", i, got[i].Kind, want)
		}
	}
}

func TestNewMemoryClampsNonPositiveCapacity(t *testing.T) {
	m := NewMemory(0)
	m.Record(Event{Kind: "a"})
	m.Record(Event{Kind: "b"})
	if got := m.Events(); len(got) != 1 || got[0].Kind != "b" {
		t.Fatalf("Events() = %v, want single most recent event", got)
	}
}

func TestNopDiscardsEverything(t *testing.T) {
	var n Nop
	n.Record(Event{Kind: "ignored"})
}

func TestEventStringIncludesNonEmptyFields(t *testing.T) {
	e := Event{Kind: "segment_create", Storage: "bi_1", Segment: "sg_2", Detail: "size=40", Err: "boom"}
	s := e.String()
	for _, want := range []string{"segment_create", "storage=bi_1", "segment=sg_2", "err=boom", "size=40"} {
		if !contains(s, want) {
			t.Fatalf("String() = %q, missing %q", s, want)
		}
	}
}

func contains(s, substr string) bool {
	for i := 0; i+len(substr) <= len(s); i++ {
		if s[i:i+len(substr)] == substr {
			return true
		}
	}
	return false
}
