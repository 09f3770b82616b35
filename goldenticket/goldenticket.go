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

// Package goldenticket implements the golden-ticket wire record and
// its validity predicate. The search for a winning preimage (the
// mining loop) is an external collaborator (spec.md §1 Lottery) and
// is explicitly out of scope here.
package goldenticket

import (
	"math"
	"math/bits"

	"github.com/emberchain/core/common"
	"github.com/emberchain/core/crypto"
)

// Vote a golden ticket carries: 0 lowers difficulty/paysplit, 1 raises
// them.
type Vote uint8

const (
	VoteDown Vote = 0
	VoteUp   Vote = 1
)

// Ticket is the payload carried by a transaction.GoldenTicket
// transaction.
type Ticket struct {
	TargetBsh    common.Hash
	Vote         Vote
	Preimage     [32]byte
	SolverPubKey common.Address
}

// MarshalBinary writes the canonical encoding used as a transaction's
// Payload.
func (t Ticket) MarshalBinary() []byte {
	e := common.NewEncoder()
	e.PutBytes(t.TargetBsh[:])
	e.PutUint8(uint8(t.Vote))
	e.PutBytes(t.Preimage[:])
	e.PutBytes(t.SolverPubKey[:])
	return e.Bytes()
}

// UnmarshalBinary decodes a ticket previously produced by
// MarshalBinary.
func UnmarshalBinary(b []byte) (Ticket, error) {
	d := common.NewDecoder(b)
	var t Ticket
	bsh, err := d.GetBytes()
	if err != nil {
		return t, err
	}
	t.TargetBsh = common.BytesToHash(bsh)
	vote, err := d.GetUint8()
	if err != nil {
		return t, err
	}
	t.Vote = Vote(vote)
	preimage, err := d.GetBytes()
	if err != nil {
		return t, err
	}
	copy(t.Preimage[:], preimage)
	pub, err := d.GetBytes()
	if err != nil {
		return t, err
	}
	t.SolverPubKey = common.BytesToAddress(pub)
	return t, nil
}

// IsValid implements the golden-ticket validity predicate of
// spec.md §6: hash(preimage) must match target.bsh over the leading
// N = floor(difficulty) bits; the fractional remainder of difficulty
// permits a bounded numeric distance over the following nibble.
func IsValid(t Ticket, difficulty float64) bool {
	digest := crypto.Sha256(t.Preimage[:])
	target := t.TargetBsh

	wholeBits := int(math.Floor(difficulty))
	if wholeBits < 0 {
		wholeBits = 0
	}
	if wholeBits > len(digest)*8 {
		wholeBits = len(digest) * 8
	}
	if !matchBits(digest[:], target[:], wholeBits) {
		return false
	}

	frac := difficulty - math.Floor(difficulty)
	if frac == 0 {
		return true
	}

	// Bounded numeric distance over the nibble following the matched
	// bits: the fractional difficulty scales how far the candidate's
	// nibble may drift from the target's nibble.
	nibbleIdx := wholeBits / 4
	if nibbleIdx >= len(digest)*2 {
		return true
	}
	candNibble := nibbleAt(digest[:], wholeBits)
	targetNibble := nibbleAt(target[:], wholeBits)
	maxDistance := int(frac * 16)
	dist := candNibble - targetNibble
	if dist < 0 {
		dist = -dist
	}
	return dist <= maxDistance
}

// matchBits reports whether a and b agree on their leading n bits.
func matchBits(a, b []byte, n int) bool {
	fullBytes := n / 8
	for i := 0; i < fullBytes; i++ {
		if a[i] != b[i] {
			return false
		}
	}
	rem := n % 8
	if rem == 0 {
		return true
	}
	mask := byte(0xFF << (8 - rem))
	return a[fullBytes]&mask == b[fullBytes]&mask
}

// nibbleAt extracts the 4 bits starting at bit offset n (counting from
// the most significant bit of data[0]); bits past the end read as 0.
func nibbleAt(data []byte, n int) int {
	var v int
	for i := n; i < n+4; i++ {
		bit := 0
		if byteIdx := i / 8; byteIdx < len(data) {
			bit = int(data[byteIdx]>>uint(7-i%8)) & 1
		}
		v = v<<1 | bit
	}
	return v
}

// BitCount is a small helper retained for diagnostics/logging call
// sites that want to report the Hamming distance between a solution
// and its target.
func BitCount(a, b [32]byte) int {
	var n int
	for i := range a {
		n += bits.OnesCount8(a[i] ^ b[i])
	}
	return n
}
