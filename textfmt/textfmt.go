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
// Package textfmt implements the round-trip text format used for every
// core value type (component C2): read(fmt(x)) == x. It backs the
// file-based endpoint exchange in package connectable and the human
// readable CLI output in cmd/iov_backend.
//
// The format is a small hand-written recursive-descent scanner rather than
// a generated grammar: the value grammar here is a handful of fixed shapes
// (tagged tuples, quoted strings, decimal integers) that don't earn their
// keep behind a parser-generator dependency, and the reference sources
// (util/read/*) show the original implementation is itself a family of
// small by-hand parsers, one per type.
package textfmt

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/cc-hpc-itwm/mcs/rangeio"
	"github.com/cc-hpc-itwm/mcs/storageid"
)

// ParseError reports a failure at a specific byte position with a
// human-oriented context string, matching spec.md §7's Parse category.
type ParseError struct {
	Pos     int
	Context string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse error at position %d: %s", e.Pos, e.Context)
}

// Scanner is a minimal cursor over a string used by every Parse* function
// in this package and by package connectable's Connectable parser.
type Scanner struct {
	s   string
	pos int
}

func NewScanner(s string) *Scanner { return &Scanner{s: s} }

func (sc *Scanner) Pos() int { return sc.pos }

func (sc *Scanner) fail(context string) error {
	return &ParseError{Pos: sc.pos, Context: context}
}

func (sc *Scanner) AtEnd() bool { return sc.pos >= len(sc.s) }

func (sc *Scanner) SkipSpace() {
	for sc.pos < len(sc.s) && (sc.s[sc.pos] == ' ' || sc.s[sc.pos] == '\t') {
		sc.pos++
	}
}

// Expect consumes the literal byte b or fails.
func (sc *Scanner) Expect(b byte) error {
	if sc.pos >= len(sc.s) || sc.s[sc.pos] != b {
		return sc.fail(fmt.Sprintf("expected '%c'", b))
	}
	sc.pos++
	return nil
}

// ExpectString consumes the literal string lit or fails.
func (sc *Scanner) ExpectString(lit string) error {
	if !strings.HasPrefix(sc.s[sc.pos:], lit) {
		return sc.fail(fmt.Sprintf("expected %q", lit))
	}
	sc.pos += len(lit)
	return nil
}

// ReadUint64 reads one or more decimal digits.
func (sc *Scanner) ReadUint64() (uint64, error) {
	start := sc.pos
	for sc.pos < len(sc.s) && sc.s[sc.pos] >= '0' && sc.s[sc.pos] <= '9' {
		sc.pos++
	}
	if sc.pos == start {
		return 0, sc.fail("expected digits")
	}
	v, err := strconv.ParseUint(sc.s[start:sc.pos], 10, 64)
	if err != nil {
		return 0, sc.fail("malformed integer: " + err.Error())
	}
	return v, nil
}

// ReadIdent reads a maximal run of letters, digits, ':' and '_' — enough
// for tags like "ip::tcp" and "local::stream_protocol".
func (sc *Scanner) ReadIdent() string {
	start := sc.pos
	for sc.pos < len(sc.s) {
		c := sc.s[sc.pos]
		if c == ':' || c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9') {
			sc.pos++
		} else {
			break
		}
	}
	return sc.s[start:sc.pos]
}

// ReadQuotedString reads a "..."-delimited string where embedded quotes are
// doubled ("" within the string means a literal ").
func (sc *Scanner) ReadQuotedString() (string, error) {
	if err := sc.Expect('"'); err != nil {
		return "", err
	}
	var b strings.Builder
	for {
		if sc.pos >= len(sc.s) {
			return "", sc.fail("unterminated quoted string")
		}
		c := sc.s[sc.pos]
		if c == '"' {
			if sc.pos+1 < len(sc.s) && sc.s[sc.pos+1] == '"' {
				b.WriteByte('"')
				sc.pos += 2
				continue
			}
			sc.pos++
			return b.String(), nil
		}
		b.WriteByte(c)
		sc.pos++
	}
}

// WriteQuotedString formats s as a "..." literal, doubling embedded quotes.
func WriteQuotedString(b *strings.Builder, s string) {
	b.WriteByte('"')
	for i := 0; i < len(s); i++ {
		if s[i] == '"' {
			b.WriteString(`""`)
		} else {
			b.WriteByte(s[i])
		}
	}
	b.WriteByte('"')
}

// FinishOrError returns ParseError if the scanner has unconsumed input.
func (sc *Scanner) FinishOrError() error {
	sc.SkipSpace()
	if !sc.AtEnd() {
		return sc.fail("unexpected trailing input")
	}
	return nil
}

// --- rangeio.Range -----------------------------------------------------

// FormatRange prints "[begin, end)".
func FormatRange(r rangeio.Range) string {
	return fmt.Sprintf("[%d, %d)", uint64(r.Begin()), uint64(r.End()))
}

// ParseRange parses the output of FormatRange.
func ParseRange(s string) (rangeio.Range, error) {
	sc := NewScanner(s)
	r, err := parseRange(sc)
	if err != nil {
		return rangeio.Range{}, err
	}
	if err := sc.FinishOrError(); err != nil {
		return rangeio.Range{}, err
	}
	return r, nil
}

func parseRange(sc *Scanner) (rangeio.Range, error) {
	sc.SkipSpace()
	if err := sc.Expect('['); err != nil {
		return rangeio.Range{}, err
	}
	sc.SkipSpace()
	begin, err := sc.ReadUint64()
	if err != nil {
		return rangeio.Range{}, err
	}
	sc.SkipSpace()
	if err := sc.Expect(','); err != nil {
		return rangeio.Range{}, err
	}
	sc.SkipSpace()
	end, err := sc.ReadUint64()
	if err != nil {
		return rangeio.Range{}, err
	}
	sc.SkipSpace()
	if err := sc.Expect(')'); err != nil {
		return rangeio.Range{}, err
	}
	if begin > end {
		return rangeio.Range{}, &ParseError{Pos: sc.Pos(), Context: "begin must not be larger than end"}
	}
	return rangeio.NewRange(rangeio.Offset(begin), rangeio.Offset(end)), nil
}

// --- rangeio.MaxSize -----------------------------------------------------

func FormatMaxSize(m rangeio.MaxSize) string {
	if m.IsUnlimited() {
		return "unlimited"
	}
	limit, _ := m.Limit()
	return strconv.FormatUint(uint64(limit), 10)
}

func ParseMaxSize(s string) (rangeio.MaxSize, error) {
	sc := NewScanner(s)
	sc.SkipSpace()
	if strings.HasPrefix(sc.s[sc.pos:], "unlimited") {
		sc.pos += len("unlimited")
		if err := sc.FinishOrError(); err != nil {
			return rangeio.MaxSize{}, err
		}
		return rangeio.Unlimited(), nil
	}
	v, err := sc.ReadUint64()
	if err != nil {
		return rangeio.MaxSize{}, err
	}
	if err := sc.FinishOrError(); err != nil {
		return rangeio.MaxSize{}, err
	}
	return rangeio.Limit(rangeio.Size(v)), nil
}

// --- storageid.ID / storageid.SegmentID ---------------------------------

// FormatStorageID prints "bi_<u>"; storageid.ID.String already does this,
// FormatStorageID exists for symmetry with ParseStorageID.
func FormatStorageID(id storageid.ID) string { return id.String() }

func ParseStorageID(s string) (storageid.ID, error) {
	sc := NewScanner(s)
	if err := sc.ExpectString("bi_"); err != nil {
		return 0, err
	}
	v, err := sc.ReadUint64()
	if err != nil {
		return 0, err
	}
	if err := sc.FinishOrError(); err != nil {
		return 0, err
	}
	return storageid.ID(v), nil
}

func FormatSegmentID(id storageid.SegmentID) string { return id.String() }

func ParseSegmentID(s string) (storageid.SegmentID, error) {
	sc := NewScanner(s)
	if err := sc.ExpectString("sg_"); err != nil {
		return 0, err
	}
	v, err := sc.ReadUint64()
	if err != nil {
		return 0, err
	}
	if err := sc.FinishOrError(); err != nil {
		return 0, err
	}
	return storageid.SegmentID(v), nil
}
