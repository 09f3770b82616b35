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

// Package params holds protocol-wide constants.
package params

// TreasuryInitial is the genesis treasury balance, in base units.
const TreasuryInitial uint64 = 28_681_000_000_000_000

// GenesisPeriod is the number of blocks over which the initial
// treasury is released as coinbase.
const GenesisPeriod uint32 = 21500

// HeartbeatMillis is the protocol's target block interval, in
// milliseconds. The burn-fee curve treats a chain as stalled once
// elapsed time exceeds 2x this value.
const HeartbeatMillis uint64 = 100_000

// MinBurnFeeStart is the floor applied to BurnFee.Start during
// adjustment so the curve cannot collapse to zero and be gamed into
// perpetually-free blocks. Not present in original_source/; added to
// close the gap left by its unbounded adjust() formula.
const MinBurnFeeStart float64 = 1.0

// AddressSize is the length in bytes of a compressed secp256k1 public
// key used as a recipient/creator address.
const AddressSize = 33

// HashSize is the length in bytes of a SHA-256 digest (bsh, merkle
// root, origin-block-hash).
const HashSize = 32
