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

package connectable

import "testing"

func TestTextRoundTrip(t *testing.T) {
	cases := []Connectable{
		NewTCP("127.0.0.1", false, 4711),
		NewTCP("some-host", true, 0),
		NewUnix("/tmp/mcs.sock"),
		NewUnix(`/tmp/weird"quote.sock`),
	}
	for _, c := range cases {
		s := c.String()
		got, err := Parse(s)
		if err != nil {
			t.Fatalf("Parse(%q): %v", s, err)
		}
		if got.String() != s {
			t.Fatalf("round trip mismatch: %q -> %q", s, got.String())
		}
	}
}

func TestParseRejectsUnknownTag(t *testing.T) {
	if _, err := Parse(`weird::tag { "x" }`); err == nil {
		t.Fatalf("expected parse error for unknown tag")
	}
}

func TestTCPQuotesEmbeddedDoubleQuotes(t *testing.T) {
	c := NewTCP(`host"with"quotes`, true, 1)
	s := c.String()
	got, err := Parse(s)
	if err != nil {
		t.Fatalf("Parse(%q): %v", s, err)
	}
	if got.String() != s {
		t.Fatalf("round trip mismatch: %q -> %q", s, got.String())
	}
}
