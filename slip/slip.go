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

// Package slip implements the single unspent-output record (a UTXO).
// A Slip is immutable once created; its spend state lives in
// utxoindex, never on the slip itself.
package slip

import (
	"github.com/emberchain/core/common"
)

// Type tags the purpose of a slip's output, replacing the sentinel
// u8 flags of the source implementation with an explicit enumeration.
type Type string

const (
	Normal       Type = "normal"
	GoldenTicket Type = "golden_ticket"
	Fee          Type = "fee"
	Rebroadcast  Type = "rebroadcast"
	VIP          Type = "vip"
	GoldenChunk  Type = "golden_chunk"
)

// Slip is an output record: who may spend it, how much, and where it
// originated. A zero Amount is a valid signalling output (Open
// Question in spec.md §9, resolved in SPEC_FULL.md §3).
type Slip struct {
	Address         common.Address
	Amount          uint64
	Type            Type
	OriginBlockID   uint32
	OriginTxID      uint32
	SlotIndex       uint32
	OriginBlockHash common.Hash
}

// Equal reports whether two slips have identical body fields.
func (s Slip) Equal(o Slip) bool {
	return s.Address == o.Address &&
		s.Amount == o.Amount &&
		s.Type == o.Type &&
		s.OriginBlockID == o.OriginBlockID &&
		s.OriginTxID == o.OriginTxID &&
		s.SlotIndex == o.SlotIndex &&
		s.OriginBlockHash == o.OriginBlockHash
}

// Fingerprint is the canonical serialization of the slip body — the
// key used throughout utxoindex to track spend state.
func (s Slip) Fingerprint() string {
	return string(s.MarshalBinary())
}

// MarshalBinary writes the canonical encoding of the slip body.
func (s Slip) MarshalBinary() []byte {
	e := common.NewEncoder()
	e.PutBytes(s.Address[:])
	e.PutUint64(s.Amount)
	e.PutBytes([]byte(s.Type))
	e.PutUint32(s.OriginBlockID)
	e.PutUint32(s.OriginTxID)
	e.PutUint32(s.SlotIndex)
	e.PutBytes(s.OriginBlockHash[:])
	return e.Bytes()
}

// UnmarshalBinary decodes a slip body previously produced by
// MarshalBinary.
func UnmarshalBinary(b []byte) (Slip, error) {
	d := common.NewDecoder(b)
	var s Slip
	addr, err := d.GetBytes()
	if err != nil {
		return s, err
	}
	s.Address = common.BytesToAddress(addr)
	if s.Amount, err = d.GetUint64(); err != nil {
		return s, err
	}
	typ, err := d.GetBytes()
	if err != nil {
		return s, err
	}
	s.Type = Type(typ)
	if s.OriginBlockID, err = d.GetUint32(); err != nil {
		return s, err
	}
	if s.OriginTxID, err = d.GetUint32(); err != nil {
		return s, err
	}
	if s.SlotIndex, err = d.GetUint32(); err != nil {
		return s, err
	}
	hash, err := d.GetBytes()
	if err != nil {
		return s, err
	}
	s.OriginBlockHash = common.BytesToHash(hash)
	return s, nil
}
