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

// Package transaction implements the transaction body: input/output
// slips, routing hops, and the opaque type-tagged payload.
package transaction

import (
	"github.com/emberchain/core/common"
	"github.com/emberchain/core/crypto"
	"github.com/emberchain/core/slip"
)

// Type tags the purpose of a transaction, replacing the source's raw
// enum-as-integer encoding with an explicit string enumeration.
type Type string

const (
	Normal       Type = "normal"
	GoldenTicket Type = "golden_ticket"
	Fee          Type = "fee"
	Rebroadcast  Type = "rebroadcast"
	VIP          Type = "vip"
	GoldenChunk  Type = "golden_chunk"
)

// Hop is a single routing-path entry: the addresses a transaction
// passed through on the way to inclusion, plus that hop's signature.
type Hop struct {
	From      common.Address
	To        common.Address
	Signature []byte
}

func (h Hop) MarshalBinary(e *common.Encoder) {
	e.PutBytes(h.From[:])
	e.PutBytes(h.To[:])
	e.PutBytes(h.Signature)
}

func unmarshalHop(d *common.Decoder) (Hop, error) {
	var h Hop
	from, err := d.GetBytes()
	if err != nil {
		return h, err
	}
	h.From = common.BytesToAddress(from)
	to, err := d.GetBytes()
	if err != nil {
		return h, err
	}
	h.To = common.BytesToAddress(to)
	if h.Signature, err = d.GetBytes(); err != nil {
		return h, err
	}
	return h, nil
}

// Transaction is a body of input slips, output slips, a signature over
// that body, routing hops, a type tag, and an opaque payload.
type Transaction struct {
	ID        uint32
	Timestamp uint64 // milliseconds since epoch
	From      []slip.Slip
	To        []slip.Slip
	Signature []byte
	Version   uint32
	Type      Type
	Hops      []Hop
	Payload   []byte
	PaySplit  bool
}

// New returns an empty transaction of the given type. Its Timestamp is
// left zero for the caller to set (nothing in this module stamps it),
// so tests can control timestamps deterministically.
func New(typ Type) *Transaction {
	return &Transaction{Type: typ, Version: 1}
}

// InputSum is the sum of every input slip's amount.
func (t *Transaction) InputSum() uint64 {
	var sum uint64
	for _, s := range t.From {
		sum += s.Amount
	}
	return sum
}

// OutputSum is the sum of every output slip's amount.
func (t *Transaction) OutputSum() uint64 {
	var sum uint64
	for _, s := range t.To {
		sum += s.Amount
	}
	return sum
}

// Fee is inputs minus outputs, clamped at zero when outputs exceed
// inputs.
func (t *Transaction) Fee() uint64 {
	in, out := t.InputSum(), t.OutputSum()
	if out > in {
		return 0
	}
	return in - out
}

// UsableFeeFor returns the creator's usable fee: inputs minus outputs
// attributable to addr, clamped at zero per spec.md §3.
func (t *Transaction) UsableFeeFor(addr common.Address) uint64 {
	var in, outToCreator uint64
	for _, s := range t.From {
		in += s.Amount
	}
	for _, s := range t.To {
		if s.Address == addr {
			outToCreator += s.Amount
		}
	}
	if outToCreator > in {
		return 0
	}
	return in - outToCreator
}

// SignatureBody returns the canonical bytes a transaction's signature
// and hash are computed over: everything except the signature itself.
func (t *Transaction) SignatureBody() []byte {
	e := common.NewEncoder()
	e.PutUint32(t.ID)
	e.PutUint64(t.Timestamp)
	e.PutUint32(t.Version)
	e.PutBytes([]byte(t.Type))
	e.PutUint32(uint32(len(t.From)))
	for _, s := range t.From {
		e.PutBytes(s.MarshalBinary())
	}
	e.PutUint32(uint32(len(t.To)))
	for _, s := range t.To {
		e.PutBytes(s.MarshalBinary())
	}
	e.PutUint32(uint32(len(t.Hops)))
	for _, h := range t.Hops {
		h.MarshalBinary(e)
	}
	e.PutBytes(t.Payload)
	if t.PaySplit {
		e.PutUint8(1)
	} else {
		e.PutUint8(0)
	}
	return e.Bytes()
}

// Hash is the SHA-256 digest of SignatureBody, used as the
// transaction's leaf in the block merkle root. It equals the digest
// crypto.Sign and crypto.Verify compute over SignatureBody.
func (t *Transaction) Hash() common.Hash {
	return crypto.Sha256(t.SignatureBody())
}

// MarshalBinary writes the complete on-disk encoding, including the
// signature.
func (t *Transaction) MarshalBinary() []byte {
	e := common.NewEncoder()
	e.PutBytes(t.SignatureBody())
	e.PutBytes(t.Signature)
	return e.Bytes()
}

// UnmarshalBinary decodes a transaction previously produced by
// MarshalBinary.
func UnmarshalBinary(b []byte) (*Transaction, error) {
	outer := common.NewDecoder(b)
	body, err := outer.GetBytes()
	if err != nil {
		return nil, err
	}
	sig, err := outer.GetBytes()
	if err != nil {
		return nil, err
	}

	d := common.NewDecoder(body)
	t := &Transaction{Signature: sig}
	if t.ID, err = d.GetUint32(); err != nil {
		return nil, err
	}
	if t.Timestamp, err = d.GetUint64(); err != nil {
		return nil, err
	}
	if t.Version, err = d.GetUint32(); err != nil {
		return nil, err
	}
	typ, err := d.GetBytes()
	if err != nil {
		return nil, err
	}
	t.Type = Type(typ)

	nFrom, err := d.GetUint32()
	if err != nil {
		return nil, err
	}
	for i := uint32(0); i < nFrom; i++ {
		raw, err := d.GetBytes()
		if err != nil {
			return nil, err
		}
		s, err := slip.UnmarshalBinary(raw)
		if err != nil {
			return nil, err
		}
		t.From = append(t.From, s)
	}

	nTo, err := d.GetUint32()
	if err != nil {
		return nil, err
	}
	for i := uint32(0); i < nTo; i++ {
		raw, err := d.GetBytes()
		if err != nil {
			return nil, err
		}
		s, err := slip.UnmarshalBinary(raw)
		if err != nil {
			return nil, err
		}
		t.To = append(t.To, s)
	}

	nHops, err := d.GetUint32()
	if err != nil {
		return nil, err
	}
	for i := uint32(0); i < nHops; i++ {
		h, err := unmarshalHop(d)
		if err != nil {
			return nil, err
		}
		t.Hops = append(t.Hops, h)
	}

	if t.Payload, err = d.GetBytes(); err != nil {
		return nil, err
	}
	paySplit, err := d.GetUint8()
	if err != nil {
		return nil, err
	}
	t.PaySplit = paySplit == 1
	return t, nil
}
