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

// Package common holds the small fixed-size value types shared across
// every other package in the module.
package common

import (
	"encoding/hex"
	"fmt"

	"github.com/emberchain/core/params"
)

// Hash is a 32-byte SHA-256 digest — a block signature hash (bsh), a
// merkle root, or an origin-block-hash embedded in a slip.
type Hash [params.HashSize]byte

// IsZero reports whether h is the all-zero hash (the previous-hash of
// a genesis block).
func (h Hash) IsZero() bool {
	return h == Hash{}
}

func (h Hash) String() string {
	return hex.EncodeToString(h[:])
}

// BytesToHash truncates or zero-pads b into a Hash.
func BytesToHash(b []byte) Hash {
	var h Hash
	if len(b) > len(h) {
		b = b[len(b)-len(h):]
	}
	copy(h[len(h)-len(b):], b)
	return h
}

// HashFromHex parses a hex string (with or without the usual file
// naming hyphen already stripped) into a Hash.
func HashFromHex(s string) (Hash, error) {
	b, err := hex.DecodeString(s)
	if err != nil {
		return Hash{}, fmt.Errorf("common: invalid hash hex %q: %w", s, err)
	}
	if len(b) != params.HashSize {
		return Hash{}, fmt.Errorf("common: hash %q has %d bytes, want %d", s, len(b), params.HashSize)
	}
	return BytesToHash(b), nil
}

// Address is a 33-byte compressed secp256k1 public key identifying a
// slip recipient or a block creator.
type Address [params.AddressSize]byte

func (a Address) String() string {
	return hex.EncodeToString(a[:])
}

// IsZero reports whether a is the all-zero address.
func (a Address) IsZero() bool {
	return a == Address{}
}

// BytesToAddress truncates or zero-pads b into an Address.
func BytesToAddress(b []byte) Address {
	var a Address
	if len(b) > len(a) {
		b = b[len(b)-len(a):]
	}
	copy(a[len(a)-len(b):], b)
	return a
}
