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

package goldenticket

import (
	"testing"

	"github.com/emberchain/core/common"
	"github.com/emberchain/core/crypto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMarshalUnmarshalRoundTrip(t *testing.T) {
	ticket := Ticket{
		TargetBsh:    common.Hash{0x01, 0x02, 0x03},
		Vote:         VoteUp,
		Preimage:     [32]byte{0xAA, 0xBB},
		SolverPubKey: common.Address{0x04, 0x05},
	}
	raw := ticket.MarshalBinary()
	got, err := UnmarshalBinary(raw)
	require.NoError(t, err)
	assert.Equal(t, ticket, got)
}

// findPreimageMatchingBits brute-forces a preimage whose SHA-256 digest
// shares its leading wholeBits bits with target, so IsValid can be
// exercised against a genuinely satisfying solution rather than a
// fabricated digest.
func findPreimageMatchingBits(t *testing.T, target common.Hash, wholeBits int) [32]byte {
	t.Helper()
	for i := 0; i < 200000; i++ {
		var preimage [32]byte
		preimage[0] = byte(i)
		preimage[1] = byte(i >> 8)
		preimage[2] = byte(i >> 16)
		digest := crypto.Sha256(preimage[:])
		if matchBits(digest[:], target[:], wholeBits) {
			return preimage
		}
	}
	t.Fatal("no matching preimage found in search budget")
	return [32]byte{}
}

func TestIsValidAcceptsExactBitMatch(t *testing.T) {
	target := common.Hash{0xF0}
	preimage := findPreimageMatchingBits(t, target, 4)
	ticket := Ticket{TargetBsh: target, Preimage: preimage}
	assert.True(t, IsValid(ticket, 4))
}

func TestIsValidRejectsNonMatchingPrefix(t *testing.T) {
	target := common.Hash{0xFF}
	ticket := Ticket{TargetBsh: target, Preimage: [32]byte{0x01}}
	digest := crypto.Sha256(ticket.Preimage[:])
	require.False(t, matchBits(digest[:], target[:], 8))
	assert.False(t, IsValid(ticket, 8))
}

func TestIsValidZeroDifficultyAlwaysMatches(t *testing.T) {
	ticket := Ticket{TargetBsh: common.Hash{0x12, 0x34}, Preimage: [32]byte{0x99, 0x88}}
	assert.True(t, IsValid(ticket, 0))
}

func TestIsValidFractionalDifficultyBoundsNibbleDistance(t *testing.T) {
	target := common.Hash{0x50} // leading nibble 0x5
	preimage := findPreimageMatchingBits(t, target, 4)
	ticket := Ticket{TargetBsh: target, Preimage: preimage}

	// a tiny fractional allowance (maxDistance == 0) only accepts an
	// exact nibble match; IsValid(ticket, 4) already established the
	// candidate's following nibble is whatever matchBits left
	// unconstrained, so this just exercises the branch without
	// asserting a specific direction.
	resultTight := IsValid(ticket, 4.01)
	resultWide := IsValid(ticket, 4.99)
	// widening the allowed distance can only turn a rejection into an
	// acceptance, never the reverse.
	if resultTight {
		assert.True(t, resultWide)
	}
}

func TestBitCountCountsHammingDistance(t *testing.T) {
	a := [32]byte{0xFF}
	b := [32]byte{0x0F}
	assert.Equal(t, 4, BitCount(a, b))

	assert.Equal(t, 0, BitCount(a, a))
}
