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
// Package codec implements the frame-delimited, length-prefixed binary
// wire codec used by the rpc, transport, blockdevice and iov packages
// (component C1 of the memory-chunk service). It favours small, explicit
// Write*/Read* helpers over reflection-driven (de)serialization, the way
// cloudwego/gopkg's ttheader package hand-writes its frame header instead
// of reaching for encoding/gob — predictable size, no allocation surprises,
// and every wire type documents its own layout.
package codec

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
)

// Writer accumulates the serialized body of one wire message. Bytes written
// here are what the size prefix in the envelope (see rpc.envelope) counts;
// bytes written directly to a socket by a streaming command are not.
type Writer struct {
	buf bytes.Buffer
}

func NewWriter() *Writer { return &Writer{} }

func (w *Writer) Bytes() []byte { return w.buf.Bytes() }
func (w *Writer) Len() int      { return w.buf.Len() }

func (w *Writer) WriteUint8(v uint8) { w.buf.WriteByte(v) }

func (w *Writer) WriteUint64(v uint64) {
	var b [8]byte
	binary.BigEndian.PutUint64(b[:], v)
	w.buf.Write(b[:])
}

func (w *Writer) WriteInt64(v int64) { w.WriteUint64(uint64(v)) }

func (w *Writer) WriteBool(v bool) {
	if v {
		w.WriteUint8(1)
	} else {
		w.WriteUint8(0)
	}
}

// WriteBytes writes a length-prefixed byte blob.
func (w *Writer) WriteBytes(b []byte) {
	w.WriteUint64(uint64(len(b)))
	w.buf.Write(b)
}

// WriteString writes a length-prefixed UTF-8 string.
func (w *Writer) WriteString(s string) { w.WriteBytes([]byte(s)) }

// Reader consumes a serialized body produced by Writer. It tracks how many
// bytes have been consumed so additional-bytes-at-end-of-archive can be
// detected by the caller (see ErrAdditionalBytes).
type Reader struct {
	data []byte
	pos  int
}

func NewReader(data []byte) *Reader { return &Reader{data: data} }

// ErrUnexpectedEOF is wrapped into every short-read failure.
var ErrUnexpectedEOF = io.ErrUnexpectedEOF

func (r *Reader) need(n int) error {
	if r.pos+n > len(r.data) {
		return fmt.Errorf("codec: need %d bytes, have %d: %w", n, len(r.data)-r.pos, ErrUnexpectedEOF)
	}
	return nil
}

func (r *Reader) ReadUint8() (uint8, error) {
	if err := r.need(1); err != nil {
		return 0, err
	}
	v := r.data[r.pos]
	r.pos++
	return v, nil
}

func (r *Reader) ReadUint64() (uint64, error) {
	if err := r.need(8); err != nil {
		return 0, err
	}
	v := binary.BigEndian.Uint64(r.data[r.pos : r.pos+8])
	r.pos += 8
	return v, nil
}

func (r *Reader) ReadInt64() (int64, error) {
	v, err := r.ReadUint64()
	return int64(v), err
}

func (r *Reader) ReadBool() (bool, error) {
	v, err := r.ReadUint8()
	return v != 0, err
}

func (r *Reader) ReadBytes() ([]byte, error) {
	n, err := r.ReadUint64()
	if err != nil {
		return nil, err
	}
	if err := r.need(int(n)); err != nil {
		return nil, err
	}
	out := make([]byte, n)
	copy(out, r.data[r.pos:r.pos+int(n)])
	r.pos += int(n)
	return out, nil
}

func (r *Reader) ReadString() (string, error) {
	b, err := r.ReadBytes()
	return string(b), err
}

// Remaining reports how many unconsumed bytes are left in the archive.
func (r *Reader) Remaining() int { return len(r.data) - r.pos }

// ErrAdditionalBytes is returned by FinishArchive when bytes remain after a
// Load operation is supposed to have consumed the whole archive.
type ErrAdditionalBytes struct{ N int }

func (e ErrAdditionalBytes) Error() string {
	return fmt.Sprintf("codec: %d additional bytes at end of archive", e.N)
}

// FinishArchive fails with ErrAdditionalBytes unless the reader is
// exhausted; call it after Load<T> finishes decoding a self-contained blob.
func (r *Reader) FinishArchive() error {
	if n := r.Remaining(); n != 0 {
		return ErrAdditionalBytes{N: n}
	}
	return nil
}

// Encoder/Decoder are the pluggable hooks a value provides to (de)serialize
// itself; types implement these instead of relying on reflection.
type Encoder interface {
	EncodeMCS(w *Writer)
}

type Decoder interface {
	DecodeMCS(r *Reader) error
}

// Marshal serializes v (which must implement Encoder) to a standalone byte
// slice, suitable for storageid.NewParameter or for saving a Parameter to a
// state file.
func Marshal(v any) ([]byte, error) {
	enc, ok := v.(Encoder)
	if !ok {
		return nil, fmt.Errorf("codec: %T does not implement Encoder", v)
	}
	w := NewWriter()
	enc.EncodeMCS(w)
	return w.Bytes(), nil
}

// Unmarshal decodes data into v (which must implement Decoder as a
// pointer receiver) and requires the whole archive to be consumed.
func Unmarshal(data []byte, v any) error {
	dec, ok := v.(Decoder)
	if !ok {
		return fmt.Errorf("codec: %T does not implement Decoder", v)
	}
	r := NewReader(data)
	if err := dec.DecodeMCS(r); err != nil {
		return fmt.Errorf("codec: load: %w", err)
	}
	return r.FinishArchive()
}
