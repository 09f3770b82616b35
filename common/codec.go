// Copyright 2026 The emberchain Authors
// This file is part of the emberchain library.
//
// The emberchain library is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// The emberchain library is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Lesser General Public License for more details.
//
// You should have received a copy of the GNU Lesser General Public License
// along with the emberchain library. If not, see <http://www.gnu.org/licenses/>.

package common

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"math"
)

func float64bits(v float64) uint64    { return math.Float64bits(v) }
func float64frombits(v uint64) float64 { return math.Float64frombits(v) }

// Encoder accumulates the canonical on-disk encoding: fixed-width
// integers big-endian, byte slices and vectors length-prefixed with a
// big-endian uint32. Every wire type in this module (Slip,
// Transaction, Hop, Block, and the golden-ticket record) is built out
// of these primitives so the codec never needs reflection.
type Encoder struct {
	buf bytes.Buffer
}

func NewEncoder() *Encoder { return &Encoder{} }

func (e *Encoder) Bytes() []byte { return e.buf.Bytes() }

func (e *Encoder) PutUint8(v uint8)   { e.buf.WriteByte(v) }
func (e *Encoder) PutInt8(v int8)     { e.buf.WriteByte(byte(v)) }
func (e *Encoder) PutUint32(v uint32) { var b [4]byte; binary.BigEndian.PutUint32(b[:], v); e.buf.Write(b[:]) }
func (e *Encoder) PutUint64(v uint64) { var b [8]byte; binary.BigEndian.PutUint64(b[:], v); e.buf.Write(b[:]) }
func (e *Encoder) PutFloat64(v float64) {
	e.PutUint64(float64bits(v))
}

// PutBytes writes a uint32 length prefix followed by b.
func (e *Encoder) PutBytes(b []byte) {
	e.PutUint32(uint32(len(b)))
	e.buf.Write(b)
}

// PutRaw writes b with no length prefix, for fixed-size fields (like
// a 32-byte hash or 33-byte address) embedded in a larger digest.
func (e *Encoder) PutRaw(b []byte) {
	e.buf.Write(b)
}

// Decoder consumes a buffer written by Encoder.
type Decoder struct {
	buf []byte
	pos int
}

func NewDecoder(b []byte) *Decoder { return &Decoder{buf: b} }

func (d *Decoder) need(n int) error {
	if d.pos+n > len(d.buf) {
		return fmt.Errorf("common: decode underrun: need %d bytes at offset %d, have %d", n, d.pos, len(d.buf))
	}
	return nil
}

func (d *Decoder) GetUint8() (uint8, error) {
	if err := d.need(1); err != nil {
		return 0, err
	}
	v := d.buf[d.pos]
	d.pos++
	return v, nil
}

func (d *Decoder) GetInt8() (int8, error) {
	v, err := d.GetUint8()
	return int8(v), err
}

func (d *Decoder) GetUint32() (uint32, error) {
	if err := d.need(4); err != nil {
		return 0, err
	}
	v := binary.BigEndian.Uint32(d.buf[d.pos:])
	d.pos += 4
	return v, nil
}

func (d *Decoder) GetUint64() (uint64, error) {
	if err := d.need(8); err != nil {
		return 0, err
	}
	v := binary.BigEndian.Uint64(d.buf[d.pos:])
	d.pos += 8
	return v, nil
}

func (d *Decoder) GetFloat64() (float64, error) {
	v, err := d.GetUint64()
	if err != nil {
		return 0, err
	}
	return float64frombits(v), nil
}

// GetBytes reads a uint32 length prefix and returns that many bytes.
func (d *Decoder) GetBytes() ([]byte, error) {
	n, err := d.GetUint32()
	if err != nil {
		return nil, err
	}
	if err := d.need(int(n)); err != nil {
		return nil, err
	}
	b := make([]byte, n)
	copy(b, d.buf[d.pos:d.pos+int(n)])
	d.pos += int(n)
	return b, nil
}

func (d *Decoder) Remaining() int { return len(d.buf) - d.pos }
