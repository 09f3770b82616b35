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

package block

import (
	"errors"

	"github.com/emberchain/core/params"
)

// ErrArithmeticOverflow is returned by the checked treasury/coinbase
// arithmetic below when a u64 computation would wrap. Per spec.md §9,
// treasury and amount arithmetic must be checked, with overflow
// treated as ValidationFailed by the caller.
var ErrArithmeticOverflow = errors.New("block: treasury/coinbase arithmetic overflow")

// NextCoinbase computes coinbase_new = round((treasury_prev +
// reclaimed_prev) / GENESIS_PERIOD), the amount released from the
// treasury this block.
func NextCoinbase(prevTreasury, prevReclaimed uint64) (uint64, error) {
	pool, err := addChecked(prevTreasury, prevReclaimed)
	if err != nil {
		return 0, err
	}
	period := uint64(params.GenesisPeriod)
	// round-half-up division
	return (pool + period/2) / period, nil
}

// NextTreasury computes treasury_next = treasury_prev + reclaimed_prev
// - coinbase_new.
func NextTreasury(prevTreasury, prevReclaimed, coinbase uint64) (uint64, error) {
	pool, err := addChecked(prevTreasury, prevReclaimed)
	if err != nil {
		return 0, err
	}
	if coinbase > pool {
		return 0, ErrArithmeticOverflow
	}
	return pool - coinbase, nil
}

func addChecked(a, b uint64) (uint64, error) {
	sum := a + b
	if sum < a {
		return 0, ErrArithmeticOverflow
	}
	return sum, nil
}
