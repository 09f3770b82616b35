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

// Package burnfee implements the fee-curve math: the work a block
// creator must supply as a function of time elapsed since the prior
// block, and the rule adjusting that curve between blocks.
package burnfee

import "github.com/emberchain/core/params"

// BurnFee is the pair of scalars stored in every block: the curve's
// y-intercept for this block (Start) and the amount actually burned
// by this block's creator (Current).
type BurnFee struct {
	Start   float64
	Current float64
}

// New returns a BurnFee with the given start/current values.
func New(start, current float64) BurnFee {
	return BurnFee{Start: start, Current: current}
}

// WorkNeeded computes the fee-denominated work required of a
// candidate block given the previous block's timestamp, the
// candidate's timestamp, the curve's y-intercept, and the protocol
// heartbeat (all in milliseconds).
//
// The curve is a decaying hyperbola: work = start / max(elapsed, 1).
// Past 2x the heartbeat the chain is considered stalled and anyone
// may mint for free to recover. The formula varies across the
// original_source/ revisions (spec.md §9 Open Question); this pins it
// to the plain hyperbola from the earliest burnfee.rs revision kept in
// the pack.
func WorkNeeded(prevTs, ts uint64, start float64, heartbeat uint64) uint64 {
	if ts < prevTs {
		ts = prevTs
	}
	elapsed := ts - prevTs
	if elapsed > 2*heartbeat {
		return 0
	}
	if elapsed == 0 {
		elapsed = 1
	}
	work := start / float64(elapsed)
	if work < 0 {
		return 0
	}
	return uint64(work + 0.5)
}

// Adjust computes the successor block's curve start as a function of
// the gap between consecutive block timestamps: a faster-than-
// heartbeat cadence raises the bar, a slower cadence lowers it. The
// result is floored at params.MinBurnFeeStart so the curve cannot
// collapse to zero (see SPEC_FULL.md §4.2).
func Adjust(prevStart float64, prevTs, nextTs uint64, heartbeat uint64) BurnFee {
	gap := nextTs - prevTs
	if nextTs < prevTs {
		gap = 0
	}
	if gap == 0 {
		gap = 1
	}
	newStart := prevStart * float64(heartbeat) / float64(gap)
	if newStart < params.MinBurnFeeStart {
		newStart = params.MinBurnFeeStart
	}
	return BurnFee{Start: newStart, Current: 0}
}
